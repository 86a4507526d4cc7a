package render

import (
	"image"
	"math"
)

// Wireframe draws triangle edges as depth-tested lines.
type Wireframe struct{}

// DrawTriangle draws the three edges of a screen-space triangle in the
// material color.
func (w *Wireframe) DrawTriangle(t *Triangle, fb PixelWriter) {
	if t.V[0].P.Z == 0 || t.V[1].P.Z == 0 || t.V[2].P.Z == 0 {
		return
	}

	col := t.V[0].Color
	if t.Material != nil {
		col = t.Material.Color
	}
	alpha := materialAlpha(t.Material)

	for i := range t.V {
		w.DrawLine(fb, t.V[i], t.V[(i+1)%3], col, alpha)
	}
}

// DrawLine draws a screen-space line from a to b with Bresenham's
// algorithm. 1/z is interpolated linearly along the line. The segment is
// clipped to fb.Bounds() first so off-screen endpoints cost nothing.
func (w *Wireframe) DrawLine(fb PixelWriter, a, b Vertex, c Color, alpha uint8) {
	if a.P.Z == 0 || b.P.Z == 0 {
		return
	}

	x0, y0, iz0 := a.P.X, a.P.Y, 1/a.P.Z
	x1, y1, iz1 := b.P.X, b.P.Y, 1/b.P.Z

	t0, t1, ok := clipSegment(x0, y0, x1, y1, fb.Bounds())
	if !ok {
		return
	}
	dx, dy, diz := x1-x0, y1-y0, iz1-iz0
	x0, y0, iz0, x1, y1, iz1 = x0+t0*dx, y0+t0*dy, iz0+t0*diz, x0+t1*dx, y0+t1*dy, iz0+t1*diz

	// Rounding in the clip can leave an endpoint a hair outside.
	r := fb.Bounds()
	ix0, iy0 := clampInt(int(x0), r.Min.X, r.Max.X-1), clampInt(int(y0), r.Min.Y, r.Max.Y-1)
	ix1, iy1 := clampInt(int(x1), r.Min.X, r.Max.X-1), clampInt(int(y1), r.Min.Y, r.Max.Y-1)

	adx := abs(ix1 - ix0)
	ady := -abs(iy1 - iy0)
	sx := 1
	if ix0 > ix1 {
		sx = -1
	}
	sy := 1
	if iy0 > iy1 {
		sy = -1
	}
	err := adx + ady

	steps := max(adx, -ady)
	izStep := 0.0
	if steps > 0 {
		izStep = (iz1 - iz0) / float64(steps)
	}
	iz := iz0

	for {
		fb.WritePixel(ix0, iy0, c, iz, alpha)
		if ix0 == ix1 && iy0 == iy1 {
			break
		}
		e2 := 2 * err
		if e2 >= ady {
			err += ady
			ix0 += sx
		}
		if e2 <= adx {
			err += adx
			iy0 += sy
		}
		iz += izStep
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// clipSegment clips the segment p0-p1 to the pixel rectangle r with the
// Liang-Barsky algorithm and returns the parameter range that survives.
func clipSegment(x0, y0, x1, y1 float64, r image.Rectangle) (t0, t1 float64, ok bool) {
	if math.IsNaN(x0) || math.IsNaN(y0) || math.IsNaN(x1) || math.IsNaN(y1) {
		return 0, 0, false
	}

	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	// Largest coordinate that still truncates into the last pixel.
	maxX := math.Nextafter(float64(r.Max.X), math.Inf(-1))
	maxY := math.Nextafter(float64(r.Max.Y), math.Inf(-1))

	dx, dy := x1-x0, y1-y0
	t0, t1 = 0, 1

	edges := [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

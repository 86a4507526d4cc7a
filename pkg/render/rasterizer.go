package render

import (
	"image"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Rasterizer fills screen-space triangles with Gouraud shading.
// Color and 1/z are interpolated linearly in screen space along the edges
// and then along each scanline.
type Rasterizer struct {
	wire Wireframe
}

// NewRasterizer creates a rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Draw rasterizes t according to its material: wire materials are drawn as
// edges, everything else is filled.
func (r *Rasterizer) Draw(t *Triangle, fb PixelWriter) {
	if t.Material != nil && t.Material.Mode == ShadeWire {
		r.wire.DrawTriangle(t, fb)
		return
	}
	r.DrawTriangle(t, fb)
}

// interp is the set of values carried along an edge and across a span.
type interp struct {
	x  float64
	iz float64 // 1/z
	c  rgb
}

func vertexInterp(v Vertex) interp {
	return interp{x: v.P.X, iz: 1 / v.P.Z, c: toRGB(v.Color)}
}

func (a interp) add(b interp) interp {
	return interp{x: a.x + b.x, iz: a.iz + b.iz, c: a.c.add(b.c)}
}

func (a interp) sub(b interp) interp {
	return interp{x: a.x - b.x, iz: a.iz - b.iz, c: a.c.add(b.c.scale(-1))}
}

func (a interp) scale(s float64) interp {
	return interp{x: a.x * s, iz: a.iz * s, c: a.c.scale(s)}
}

// slope returns the per-row change from a to b.
func slope(a, b Vertex) interp {
	return vertexInterp(b).sub(vertexInterp(a)).scale(1 / (b.P.Y - a.P.Y))
}

// DrawTriangle fills a screen-space triangle.
//
// Vertices are sorted top to bottom. The long edge runs from the top vertex
// to the bottom one; the two short edges meet at the middle vertex, which
// splits the fill into an upper and a lower half. Rows and spans are clamped
// to fb.Bounds(); a triangle entirely outside the bounds writes nothing.
func (r *Rasterizer) DrawTriangle(t *Triangle, fb PixelWriter) {
	top, mid, bot := t.V[0], t.V[1], t.V[2]
	if top.P.Z == 0 || mid.P.Z == 0 || bot.P.Z == 0 {
		return
	}

	if mid.P.Y < top.P.Y {
		top, mid = mid, top
	}
	if bot.P.Y < top.P.Y {
		top, bot = bot, top
	}
	if bot.P.Y < mid.P.Y {
		mid, bot = bot, mid
	}

	bounds := fb.Bounds()
	if !overlaps(top, mid, bot, bounds) {
		return
	}

	longDY := bot.P.Y - top.P.Y
	if !(longDY > math3d.Epsilon) {
		return
	}
	longSlope := slope(top, bot)

	// Which side of the long edge the middle vertex is on.
	longXAtMid := top.P.X + longSlope.x*(mid.P.Y-top.P.Y)
	midLeft := mid.P.X < longXAtMid

	alpha := materialAlpha(t.Material)
	topRow := math.Trunc(top.P.Y)
	midRow := math.Trunc(mid.P.Y)
	botRow := math.Trunc(bot.P.Y)

	switch {
	case mid.P.Y-top.P.Y > math3d.Epsilon:
		shortSlope := slope(top, mid)
		start := vertexInterp(top)
		if midLeft {
			scanHalf(fb, bounds, topRow, midRow, start, shortSlope, start, longSlope, alpha)
		} else {
			scanHalf(fb, bounds, topRow, midRow, start, longSlope, start, shortSlope, alpha)
		}
	case midRow > topRow:
		flatRow(fb, bounds, topRow, top, mid, alpha)
	}

	switch {
	case bot.P.Y-mid.P.Y > math3d.Epsilon:
		shortSlope := slope(mid, bot)
		shortStart := vertexInterp(mid)
		longStart := vertexInterp(top).add(longSlope.scale(midRow - topRow))
		if midLeft {
			scanHalf(fb, bounds, midRow, botRow, shortStart, shortSlope, longStart, longSlope, alpha)
		} else {
			scanHalf(fb, bounds, midRow, botRow, longStart, longSlope, shortStart, shortSlope, alpha)
		}
	case botRow > midRow:
		flatRow(fb, bounds, midRow, mid, bot, alpha)
	}
}

// flatRow fills row y between a and b. It covers an edge too flat to walk
// whose endpoints still fall on different rows.
func flatRow(fb PixelWriter, bounds image.Rectangle, y float64, a, b Vertex, alpha uint8) {
	left, right := vertexInterp(a), vertexInterp(b)
	if right.x < left.x {
		left, right = right, left
	}
	scanHalf(fb, bounds, y, y+1, left, interp{}, right, interp{}, alpha)
}

// scanHalf walks rows [y0, y1) with left and right holding the edge values
// at row y0.
func scanHalf(fb PixelWriter, bounds image.Rectangle, y0, y1 float64, left, dLeft, right, dRight interp, alpha uint8) {
	first := math.Max(y0, float64(bounds.Min.Y))
	last := math.Min(y1, float64(bounds.Max.Y))
	if first >= last {
		return
	}

	if skip := first - y0; skip > 0 {
		left = left.add(dLeft.scale(skip))
		right = right.add(dRight.scale(skip))
	}

	for y := int(first); y < int(last); y++ {
		span(fb, bounds, y, left, right, alpha)
		left = left.add(dLeft)
		right = right.add(dRight)
	}
}

// span writes pixels [trunc(left.x), trunc(right.x)) on row y.
func span(fb PixelWriter, bounds image.Rectangle, y int, left, right interp, alpha uint8) {
	width := right.x - left.x
	if !(width > math3d.EpsilonE6) {
		return
	}
	delta := right.sub(left).scale(1 / width)

	x0 := math.Trunc(left.x)
	first := math.Max(x0, float64(bounds.Min.X))
	last := math.Min(math.Trunc(right.x), float64(bounds.Max.X))
	if first >= last {
		return
	}

	p := left
	if skip := first - x0; skip > 0 {
		p = p.add(delta.scale(skip))
	}

	for x := int(first); x < int(last); x++ {
		fb.WritePixel(x, y, p.c.color(), p.iz, alpha)
		p = p.add(delta)
	}
}

// overlaps reports whether the triangle's screen bounding box touches bounds.
func overlaps(a, b, c Vertex, bounds image.Rectangle) bool {
	minX := math.Min(a.P.X, math.Min(b.P.X, c.P.X))
	maxX := math.Max(a.P.X, math.Max(b.P.X, c.P.X))
	minY := math.Min(a.P.Y, math.Min(b.P.Y, c.P.Y))
	maxY := math.Max(a.P.Y, math.Max(b.P.Y, c.P.Y))

	return maxX >= float64(bounds.Min.X) && minX < float64(bounds.Max.X) &&
		maxY >= float64(bounds.Min.Y) && minY < float64(bounds.Max.Y)
}

func materialAlpha(m *Material) uint8 {
	if m == nil {
		return 255
	}
	return m.Alpha
}

package render

import (
	"image"
	"math"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

type fragment struct {
	x, y  int
	c     Color
	invZ  float64
	alpha uint8
}

// recordingWriter implements PixelWriter and keeps every fragment.
type recordingWriter struct {
	bounds    image.Rectangle
	fragments []fragment
}

func newRecordingWriter(w, h int) *recordingWriter {
	return &recordingWriter{bounds: image.Rect(0, 0, w, h)}
}

func (r *recordingWriter) Bounds() image.Rectangle { return r.bounds }

func (r *recordingWriter) WritePixel(x, y int, c Color, invZ float64, alpha uint8) {
	r.fragments = append(r.fragments, fragment{x, y, c, invZ, alpha})
}

func (r *recordingWriter) at(x, y int) (fragment, bool) {
	for _, f := range r.fragments {
		if f.x == x && f.y == y {
			return f, true
		}
	}
	return fragment{}, false
}

// screenTriangle builds a screen-space triangle of a single color.
func screenTriangle(c Color, a, b, d math3d.Vec3) *Triangle {
	return &Triangle{
		V: [3]Vertex{
			{P: a, Color: c},
			{P: b, Color: c},
			{P: d, Color: c},
		},
		Material: NewMaterial(c, ShadeGouraud),
	}
}

func TestDrawTriangleFillsInterior(t *testing.T) {
	w := newRecordingWriter(64, 64)
	tri := screenTriangle(ColorGreen,
		math3d.V3(10, 10, 2),
		math3d.V3(40, 10, 2),
		math3d.V3(10, 40, 2),
	)

	NewRasterizer().DrawTriangle(tri, w)

	if len(w.fragments) == 0 {
		t.Fatal("no fragments written")
	}
	for _, f := range w.fragments {
		if f.x < 10 || f.x >= 40 || f.y < 10 || f.y >= 40 {
			t.Errorf("fragment (%d, %d) outside the triangle's box", f.x, f.y)
		}
		if f.x-10+f.y-10 > 31 {
			t.Errorf("fragment (%d, %d) past the hypotenuse", f.x, f.y)
		}
		if f.c != ColorGreen {
			t.Errorf("fragment color = %v, want green", f.c)
		}
		if math.Abs(f.invZ-0.5) > 1e-9 {
			t.Errorf("invZ = %v, want 0.5", f.invZ)
		}
		if f.alpha != 255 {
			t.Errorf("alpha = %d, want 255", f.alpha)
		}
	}
	if _, ok := w.at(15, 15); !ok {
		t.Error("interior pixel (15, 15) not written")
	}
}

func TestDrawTriangleVertexOrderIndependent(t *testing.T) {
	a, b, c := math3d.V3(5, 3, 1), math3d.V3(30, 12, 1), math3d.V3(12, 28, 1)
	orders := [][3]math3d.Vec3{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}

	var want int
	for i, o := range orders {
		w := newRecordingWriter(40, 40)
		NewRasterizer().DrawTriangle(screenTriangle(ColorWhite, o[0], o[1], o[2]), w)
		if i == 0 {
			want = len(w.fragments)
			if want == 0 {
				t.Fatal("no fragments written")
			}
			continue
		}
		if len(w.fragments) != want {
			t.Errorf("order %d wrote %d fragments, want %d", i, len(w.fragments), want)
		}
	}
}

func TestDrawTriangleOutOfBoundsWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		v    [3]math3d.Vec3
	}{
		{"left", [3]math3d.Vec3{{X: -50, Y: 10, Z: 1}, {X: -20, Y: 10, Z: 1}, {X: -30, Y: 30, Z: 1}}},
		{"right", [3]math3d.Vec3{{X: 100, Y: 10, Z: 1}, {X: 130, Y: 10, Z: 1}, {X: 110, Y: 30, Z: 1}}},
		{"above", [3]math3d.Vec3{{X: 10, Y: -50, Z: 1}, {X: 30, Y: -40, Z: 1}, {X: 20, Y: -10, Z: 1}}},
		{"below", [3]math3d.Vec3{{X: 10, Y: 80, Z: 1}, {X: 30, Y: 90, Z: 1}, {X: 20, Y: 120, Z: 1}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newRecordingWriter(64, 64)
			NewRasterizer().DrawTriangle(screenTriangle(ColorRed, tc.v[0], tc.v[1], tc.v[2]), w)
			if len(w.fragments) != 0 {
				t.Errorf("wrote %d fragments, want 0", len(w.fragments))
			}
		})
	}
}

func TestDrawTriangleClampsWithoutShifting(t *testing.T) {
	// A triangle with per-vertex colors and depths, much larger than the
	// small target. Every fragment inside the small bounds must match the
	// one an unbounded walk produces.
	tri := &Triangle{
		V: [3]Vertex{
			{P: math3d.V3(-40, -30, 2), Color: RGB(255, 0, 0)},
			{P: math3d.V3(90, -10, 4), Color: RGB(0, 255, 0)},
			{P: math3d.V3(20, 100, 8), Color: RGB(0, 0, 255)},
		},
		Material: NewMaterial(ColorWhite, ShadeGouraud),
	}

	large := &recordingWriter{bounds: image.Rect(-100, -100, 200, 200)}
	small := newRecordingWriter(32, 24)

	r := NewRasterizer()
	r.DrawTriangle(tri, large)
	r.DrawTriangle(tri, small)

	if len(small.fragments) == 0 {
		t.Fatal("no fragments in the small target")
	}

	reference := make(map[[2]int]fragment, len(large.fragments))
	for _, f := range large.fragments {
		reference[[2]int{f.x, f.y}] = f
	}

	inBounds := 0
	for _, f := range large.fragments {
		if image.Pt(f.x, f.y).In(small.bounds) {
			inBounds++
		}
	}
	if len(small.fragments) != inBounds {
		t.Errorf("small target got %d fragments, want %d", len(small.fragments), inBounds)
	}

	for _, f := range small.fragments {
		if !image.Pt(f.x, f.y).In(small.bounds) {
			t.Fatalf("fragment (%d, %d) outside bounds", f.x, f.y)
		}
		ref, ok := reference[[2]int{f.x, f.y}]
		if !ok {
			t.Fatalf("fragment (%d, %d) not produced without clamping", f.x, f.y)
		}
		if math.Abs(f.invZ-ref.invZ) > 1e-9 {
			t.Errorf("(%d, %d) invZ = %v, want %v", f.x, f.y, f.invZ, ref.invZ)
		}
		if absInt(int(f.c.R)-int(ref.c.R)) > 1 || absInt(int(f.c.G)-int(ref.c.G)) > 1 || absInt(int(f.c.B)-int(ref.c.B)) > 1 {
			t.Errorf("(%d, %d) color = %v, want %v", f.x, f.y, f.c, ref.c)
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestDrawTriangleInterpolatesColorAndDepth(t *testing.T) {
	// Left edge black and near, right vertex white and far.
	tri := &Triangle{
		V: [3]Vertex{
			{P: math3d.V3(0, 0, 1), Color: ColorBlack},
			{P: math3d.V3(0, 40, 1), Color: ColorBlack},
			{P: math3d.V3(40, 20, 4), Color: ColorWhite},
		},
		Material: NewMaterial(ColorWhite, ShadeGouraud),
	}

	w := newRecordingWriter(64, 64)
	NewRasterizer().DrawTriangle(tri, w)

	var prev fragment
	first := true
	for x := 0; x < 40; x++ {
		f, ok := w.at(x, 20)
		if !ok {
			continue
		}
		if !first {
			if f.c.R < prev.c.R {
				t.Errorf("red decreased from %d to %d at x=%d", prev.c.R, f.c.R, x)
			}
			if f.invZ > prev.invZ {
				t.Errorf("invZ increased from %v to %v at x=%d", prev.invZ, f.invZ, x)
			}
		}
		prev, first = f, false
	}
	if first {
		t.Fatal("row 20 not written")
	}

	left, ok := w.at(0, 20)
	if !ok {
		t.Fatal("(0, 20) not written")
	}
	if left.c.R > 8 || math.Abs(left.invZ-1) > 0.05 {
		t.Errorf("left edge fragment = %+v, want near black with invZ near 1", left)
	}
	if prev.c.R < 200 || prev.invZ > 0.35 {
		t.Errorf("rightmost fragment = %+v, want near white with invZ near 0.25", prev)
	}
}

func TestDrawTriangleDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		v         [3]math3d.Vec3
		wantEmpty bool
	}{
		{"horizontal line", [3]math3d.Vec3{{X: 1, Y: 5, Z: 1}, {X: 10, Y: 5, Z: 1}, {X: 20, Y: 5, Z: 1}}, true},
		{"vertical line", [3]math3d.Vec3{{X: 5, Y: 1, Z: 1}, {X: 5, Y: 10, Z: 1}, {X: 5, Y: 20, Z: 1}}, true},
		{"single point", [3]math3d.Vec3{{X: 5, Y: 5, Z: 1}, {X: 5, Y: 5, Z: 1}, {X: 5, Y: 5, Z: 1}}, true},
		{"zero depth", [3]math3d.Vec3{{X: 1, Y: 1, Z: 0}, {X: 20, Y: 1, Z: 1}, {X: 1, Y: 20, Z: 1}}, true},
		{"nan", [3]math3d.Vec3{{X: math.NaN(), Y: 1, Z: 1}, {X: 20, Y: 1, Z: 1}, {X: 1, Y: 20, Z: 1}}, true},
		{"diagonal line", [3]math3d.Vec3{{X: 1, Y: 1, Z: 1}, {X: 10, Y: 10, Z: 1}, {X: 20, Y: 20, Z: 1}}, false},
		{"flat top", [3]math3d.Vec3{{X: 2, Y: 2, Z: 1}, {X: 20, Y: 2, Z: 1}, {X: 10, Y: 20, Z: 1}}, false},
		{"flat bottom", [3]math3d.Vec3{{X: 10, Y: 2, Z: 1}, {X: 2, Y: 20, Z: 1}, {X: 20, Y: 20, Z: 1}}, false},
		{"huge", [3]math3d.Vec3{{X: -1e12, Y: -1e12, Z: 1}, {X: 1e12, Y: 0, Z: 1}, {X: 0, Y: 1e12, Z: 1}}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newRecordingWriter(32, 32)
			NewRasterizer().DrawTriangle(screenTriangle(ColorBlue, tc.v[0], tc.v[1], tc.v[2]), w)
			if tc.wantEmpty && len(w.fragments) != 0 {
				t.Errorf("wrote %d fragments, want 0", len(w.fragments))
			}
			for _, f := range w.fragments {
				if !image.Pt(f.x, f.y).In(w.bounds) {
					t.Fatalf("fragment (%d, %d) outside bounds", f.x, f.y)
				}
			}
		})
	}
}

// An edge flatter than the slope guard can still cross a row boundary;
// that row must be filled.
func TestDrawTriangleNearFlatEdgeKeepsRow(t *testing.T) {
	const eps = 4e-13
	tests := []struct {
		name string
		v    [3]math3d.Vec3
	}{
		{"upper half", [3]math3d.Vec3{{X: 0, Y: 5 - eps, Z: 2}, {X: 8, Y: 5 + eps, Z: 2}, {X: 4, Y: 9, Z: 2}}},
		{"lower half", [3]math3d.Vec3{{X: 4, Y: 1, Z: 2}, {X: 0, Y: 5 - eps, Z: 2}, {X: 8, Y: 5 + eps, Z: 2}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newRecordingWriter(16, 16)
			NewRasterizer().DrawTriangle(screenTriangle(ColorBlue, tc.v[0], tc.v[1], tc.v[2]), w)

			row := 0
			for _, f := range w.fragments {
				if f.y == 4 {
					row++
					if f.iz != 0.5 {
						t.Errorf("fragment (%d, 4) invZ = %v, want 0.5", f.x, f.iz)
					}
				}
			}
			if row != 8 {
				t.Errorf("row 4 has %d fragments, want 8", row)
			}
		})
	}
}

func TestDrawTriangleUsesMaterialAlpha(t *testing.T) {
	tri := screenTriangle(ColorRed, math3d.V3(0, 0, 1), math3d.V3(10, 0, 1), math3d.V3(0, 10, 1))
	tri.Material.Alpha = 100

	w := newRecordingWriter(16, 16)
	NewRasterizer().DrawTriangle(tri, w)

	if len(w.fragments) == 0 {
		t.Fatal("no fragments written")
	}
	for _, f := range w.fragments {
		if f.alpha != 100 {
			t.Fatalf("alpha = %d, want 100", f.alpha)
		}
	}
}

func TestRasterizerDrawWireMaterial(t *testing.T) {
	tri := screenTriangle(ColorRed, math3d.V3(2, 2, 1), math3d.V3(28, 2, 1), math3d.V3(2, 28, 1))
	tri.Material.Mode = ShadeWire

	w := newRecordingWriter(32, 32)
	NewRasterizer().Draw(tri, w)

	if _, ok := w.at(8, 8); ok {
		t.Error("wire triangle filled its interior")
	}
	for _, p := range []image.Point{{2, 2}, {28, 2}, {2, 28}, {15, 2}, {2, 15}} {
		if _, ok := w.at(p.X, p.Y); !ok {
			t.Errorf("edge pixel %v not written", p)
		}
	}
}

func TestWireframeDrawLine(t *testing.T) {
	var wf Wireframe

	t.Run("endpoints and depth", func(t *testing.T) {
		w := newRecordingWriter(32, 32)
		wf.DrawLine(w, Vertex{P: math3d.V3(0, 0, 1)}, Vertex{P: math3d.V3(10, 0, 2)}, ColorWhite, 255)

		if len(w.fragments) != 11 {
			t.Fatalf("wrote %d fragments, want 11", len(w.fragments))
		}
		first, _ := w.at(0, 0)
		last, _ := w.at(10, 0)
		if math.Abs(first.invZ-1) > 1e-9 || math.Abs(last.invZ-0.5) > 1e-9 {
			t.Errorf("invZ endpoints = %v, %v, want 1, 0.5", first.invZ, last.invZ)
		}
	})

	t.Run("clipped to bounds", func(t *testing.T) {
		w := newRecordingWriter(32, 32)
		wf.DrawLine(w, Vertex{P: math3d.V3(-1e9, 5, 1)}, Vertex{P: math3d.V3(1e9, 5, 1)}, ColorWhite, 255)

		if len(w.fragments) != 32 {
			t.Errorf("wrote %d fragments, want 32", len(w.fragments))
		}
		for _, f := range w.fragments {
			if !image.Pt(f.x, f.y).In(w.bounds) {
				t.Fatalf("fragment (%d, %d) outside bounds", f.x, f.y)
			}
		}
	})

	t.Run("entirely outside", func(t *testing.T) {
		w := newRecordingWriter(32, 32)
		wf.DrawLine(w, Vertex{P: math3d.V3(-10, -10, 1)}, Vertex{P: math3d.V3(-1, -20, 1)}, ColorWhite, 255)
		if len(w.fragments) != 0 {
			t.Errorf("wrote %d fragments, want 0", len(w.fragments))
		}
	})
}

func BenchmarkDrawTriangle(b *testing.B) {
	fb := NewFramebuffer(160, 120)
	r := NewRasterizer()
	tri := &Triangle{
		V: [3]Vertex{
			{P: math3d.V3(10, 10, 2), Color: RGB(255, 0, 0)},
			{P: math3d.V3(150, 30, 3), Color: RGB(0, 255, 0)},
			{P: math3d.V3(60, 110, 4), Color: RGB(0, 0, 255)},
		},
		Material: NewMaterial(ColorWhite, ShadeGouraud),
	}

	for b.Loop() {
		fb.ClearDepth()
		r.DrawTriangle(tri, fb)
	}
}

func BenchmarkDrawTriangleClamped(b *testing.B) {
	fb := NewFramebuffer(160, 120)
	r := NewRasterizer()
	tri := screenTriangle(ColorWhite,
		math3d.V3(-5000, -3000, 2),
		math3d.V3(8000, -100, 2),
		math3d.V3(80, 9000, 2),
	)

	for b.Loop() {
		fb.ClearDepth()
		r.DrawTriangle(tri, fb)
	}
}

package render

import "github.com/taigrr/scanline/pkg/math3d"

// Vertex is a position plus a color. P is overwritten in place as the
// triangle moves from world to camera to screen space.
type Vertex struct {
	P     math3d.Vec3
	Color Color
}

// Triangle is the unit of work of the pipeline.
// Clipped only ever goes from false to true within a frame.
type Triangle struct {
	V        [3]Vertex
	Material *Material
	Clipped  bool
}

// AvgZ returns the mean depth of the three vertices.
func (t *Triangle) AvgZ() float64 {
	return (t.V[0].P.Z + t.V[1].P.Z + t.V[2].P.Z) / 3
}

// Transform applies m to the three vertex positions.
func (t *Triangle) Transform(m math3d.Mat4) {
	for i := range t.V {
		t.V[i].P = m.MulVec3(t.V[i].P)
	}
}

// Normal returns the unit face normal for counter-clockwise winding.
func (t *Triangle) Normal() math3d.Vec3 {
	e1 := t.V[1].P.Sub(t.V[0].P)
	e2 := t.V[2].P.Sub(t.V[0].P)
	return e1.Cross(e2).Normalize()
}

// Centroid returns the mean of the three vertex positions.
func (t *Triangle) Centroid() math3d.Vec3 {
	return t.V[0].P.Add(t.V[1].P).Add(t.V[2].P).Scale(1.0 / 3)
}

// clip marks the triangle as rejected for the rest of the frame.
func (t *Triangle) clip() {
	t.Clipped = true
}

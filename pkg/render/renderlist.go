package render

import (
	"slices"

	"github.com/taigrr/scanline/pkg/math3d"
)

// MeshKind tells a RenderList how to read a mesh's vertex data.
type MeshKind int

const (
	MeshUndefined MeshKind = iota
	IndexedTriangleList
	TriangleList
)

func (k MeshKind) String() string {
	switch k {
	case IndexedTriangleList:
		return "indexed-triangle-list"
	case TriangleList:
		return "triangle-list"
	default:
		return "undefined"
	}
}

// Mesh is the view of mesh data a RenderList consumes.
// Positions are in world space. Materials holds one entry per triangle, or
// is empty to request the default material.
type Mesh interface {
	Kind() MeshKind
	Positions() []math3d.Vec3
	Indices() []int
	Materials() []*Material
}

// RenderList is the ordered set of triangles for one frame.
type RenderList struct {
	triangles []Triangle
}

// NewRenderList creates an empty render list.
func NewRenderList() *RenderList {
	return &RenderList{}
}

// Triangles returns the list's triangles. Pipeline stages mutate them in
// place through this slice.
func (rl *RenderList) Triangles() []Triangle {
	return rl.triangles
}

// Len returns the number of triangles, clipped or not.
func (rl *RenderList) Len() int {
	return len(rl.triangles)
}

// Visible returns the number of triangles not yet clipped.
func (rl *RenderList) Visible() int {
	n := 0
	for i := range rl.triangles {
		if !rl.triangles[i].Clipped {
			n++
		}
	}
	return n
}

// Reset empties the list, keeping its storage for the next frame.
func (rl *RenderList) Reset() {
	rl.triangles = rl.triangles[:0]
}

// Append expands mesh into triangles at the end of the list.
// Trailing vertices or indices that do not complete a triangle are dropped.
// An unsupported mesh kind adds nothing and logs a warning.
func (rl *RenderList) Append(mesh Mesh) {
	positions := mesh.Positions()

	switch mesh.Kind() {
	case IndexedTriangleList:
		indices := mesh.Indices()
		materials := mesh.Materials()
		def := DefaultMaterial()

		for i, t := 0, 0; i+2 < len(indices); i, t = i+3, t+1 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if !inRange(a, positions) || !inRange(b, positions) || !inRange(c, positions) {
				Logger().Warn("render list: index out of range, triangle dropped",
					"triangle", t, "vertices", len(positions))
				continue
			}

			mat := def
			if t < len(materials) && materials[t] != nil {
				mat = materials[t]
			}
			rl.push(positions[a], positions[b], positions[c], mat)
		}

	case TriangleList:
		def := DefaultMaterial()
		for i := 0; i+2 < len(positions); i += 3 {
			rl.push(positions[i], positions[i+1], positions[i+2], def)
		}

	default:
		Logger().Warn("render list: unsupported mesh kind", "kind", mesh.Kind())
	}
}

// push appends a triangle whose vertices start out in the material's color.
func (rl *RenderList) push(a, b, c math3d.Vec3, mat *Material) {
	col := mat.Color
	rl.triangles = append(rl.triangles, Triangle{
		V: [3]Vertex{
			{P: a, Color: col},
			{P: b, Color: col},
			{P: c, Color: col},
		},
		Material: mat,
	})
}

// ZSort orders triangles farthest first by average vertex depth.
// Triangles with equal depth keep their relative order.
func (rl *RenderList) ZSort() {
	slices.SortStableFunc(rl.triangles, func(a, b Triangle) int {
		za, zb := a.AvgZ(), b.AvgZ()
		switch {
		case za > zb:
			return -1
		case za < zb:
			return 1
		default:
			return 0
		}
	})
}

func inRange(i int, s []math3d.Vec3) bool {
	return i >= 0 && i < len(s)
}

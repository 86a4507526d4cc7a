// Package models provides mesh representation, procedural builders and
// glTF loading for the scanline renderer.
package models

import (
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

// Mesh is triangle geometry in local space plus a world placement.
// It satisfies render.Mesh and render.SceneObject.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3      // local positions
	Index    []int              // triangle corners; nil for a flat triangle list
	Mats     []*render.Material // one per triangle, or empty for the default

	// Bounding box of the local vertices (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	kind     render.MeshKind
	position math3d.Vec3
	yaw      float64
	pitch    float64
	roll     float64
	sphere   math3d.Sphere

	world      []math3d.Vec3
	worldDirty bool
}

// NewIndexedMesh creates a mesh whose triangles are read from index.
func NewIndexedMesh(name string, vertices []math3d.Vec3, index []int, mats []*render.Material) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Index:    index,
		Mats:     mats,
		kind:     render.IndexedTriangleList,
	}
	m.CalculateBounds()
	return m
}

// NewTriangleListMesh creates a mesh whose vertices are consumed three at a
// time. Such meshes always render with the default material.
func NewTriangleListMesh(name string, vertices []math3d.Vec3) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		kind:     render.TriangleList,
	}
	m.CalculateBounds()
	return m
}

// CalculateBounds recomputes the bounding box and bounding sphere from the
// local vertices.
func (m *Mesh) CalculateBounds() {
	m.worldDirty = true
	m.sphere = math3d.BoundingSphere(m.Vertices)
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of whole triangles.
func (m *Mesh) TriangleCount() int {
	if m.kind == render.IndexedTriangleList {
		return len(m.Index) / 3
	}
	return len(m.Vertices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Transform bakes mat into the local vertices and recomputes the bounds.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	m.CalculateBounds()
}

// Clone creates a copy of the mesh with its own vertex and index storage.
// Materials are shared.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = append([]math3d.Vec3(nil), m.Vertices...)
	if m.Index != nil {
		clone.Index = append([]int(nil), m.Index...)
	}
	clone.Mats = append([]*render.Material(nil), m.Mats...)
	clone.world = nil
	clone.worldDirty = true
	return &clone
}

// SetPosition places the mesh origin in world space.
func (m *Mesh) SetPosition(p math3d.Vec3) {
	m.position = p
	m.worldDirty = true
}

// SetRotation orients the mesh about its origin. Roll is applied first,
// then pitch, then yaw.
func (m *Mesh) SetRotation(yaw, pitch, roll float64) {
	m.yaw, m.pitch, m.roll = yaw, pitch, roll
	m.worldDirty = true
}

// Rotation returns yaw, pitch and roll in radians.
func (m *Mesh) Rotation() (yaw, pitch, roll float64) {
	return m.yaw, m.pitch, m.roll
}

// LocalToWorld returns the placement transform.
func (m *Mesh) LocalToWorld() math3d.Mat4 {
	return math3d.Translate(m.position).Mul(math3d.RotateYawPitchRoll(m.yaw, m.pitch, m.roll))
}

// Kind implements render.Mesh.
func (m *Mesh) Kind() render.MeshKind {
	return m.kind
}

// Positions implements render.Mesh. It returns world-space vertices; the
// slice is reused until the placement or vertices change.
func (m *Mesh) Positions() []math3d.Vec3 {
	if !m.worldDirty && len(m.world) == len(m.Vertices) {
		return m.world
	}

	xf := m.LocalToWorld()
	m.world = m.world[:0]
	for _, v := range m.Vertices {
		m.world = append(m.world, xf.MulVec3(v))
	}
	m.worldDirty = false
	return m.world
}

// Indices implements render.Mesh.
func (m *Mesh) Indices() []int {
	return m.Index
}

// Materials implements render.Mesh.
func (m *Mesh) Materials() []*render.Material {
	return m.Mats
}

// Position implements render.SceneObject.
func (m *Mesh) Position() math3d.Vec3 {
	return m.position
}

// BoundingSphere implements render.SceneObject. The sphere is centered on
// the mesh origin, so rotation does not change it.
func (m *Mesh) BoundingSphere() math3d.Sphere {
	return m.sphere
}

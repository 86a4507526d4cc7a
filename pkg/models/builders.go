package models

import (
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

// cubeIndex lists the cube faces counter-clockwise when viewed from outside.
var cubeIndex = []int{
	0, 3, 2, 0, 2, 1, // front (-z)
	4, 5, 6, 4, 6, 7, // back (+z)
	4, 7, 3, 4, 3, 0, // left (-x)
	1, 2, 6, 1, 6, 5, // right (+x)
	3, 7, 6, 3, 6, 2, // top (+y)
	0, 1, 5, 0, 5, 4, // bottom (-y)
}

// NewCube builds an axis-aligned cube of edge length size centered on the
// origin. Every triangle shares mat; a nil mat renders with the default.
func NewCube(size float64, mat *render.Material) *Mesh {
	h := size / 2
	vertices := []math3d.Vec3{
		{X: -h, Y: -h, Z: -h},
		{X: h, Y: -h, Z: -h},
		{X: h, Y: h, Z: -h},
		{X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h},
		{X: h, Y: -h, Z: h},
		{X: h, Y: h, Z: h},
		{X: -h, Y: h, Z: h},
	}
	index := append([]int(nil), cubeIndex...)
	return NewIndexedMesh("cube", vertices, index, repeatMaterial(mat, len(index)/3))
}

// NewQuad builds a w by h rectangle in the XY plane facing -z.
func NewQuad(w, h float64, mat *render.Material) *Mesh {
	hw, hh := w/2, h/2
	vertices := []math3d.Vec3{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	return NewIndexedMesh("quad", vertices, []int{0, 3, 2, 0, 2, 1}, repeatMaterial(mat, 2))
}

func repeatMaterial(mat *render.Material, n int) []*render.Material {
	if mat == nil {
		return nil
	}
	mats := make([]*render.Material, n)
	for i := range mats {
		mats[i] = mat
	}
	return mats
}

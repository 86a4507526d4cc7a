package models

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

// ErrMalformed is returned when a glTF accessor points outside its buffer
// or has a layout the loader cannot read.
var ErrMalformed = errors.New("models: malformed gltf")

// LoadGLTF loads every triangle primitive of a .gltf or .glb file into one
// indexed mesh. Node transforms are ignored; geometry stays in mesh space.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := decodeDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return mesh, nil
}

func decodeDocument(doc *gltf.Document, name string) (*Mesh, error) {
	var (
		vertices []math3d.Vec3
		index    []int
		mats     []*render.Material
	)
	cache := make(map[int]*render.Material)

	for _, m := range doc.Meshes {
		for p, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}

			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := readVec3Accessor(doc, posIdx)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d positions: %w", m.Name, p, err)
			}

			var corners []int
			if prim.Indices != nil {
				corners, err = readIndices(doc, *prim.Indices)
				if err != nil {
					return nil, fmt.Errorf("mesh %q primitive %d indices: %w", m.Name, p, err)
				}
			} else {
				corners = make([]int, len(positions))
				for i := range corners {
					corners[i] = i
				}
			}

			mat := primitiveMaterial(doc, prim.Material, cache)
			base := len(vertices)
			vertices = append(vertices, positions...)

			for i := 0; i+2 < len(corners); i += 3 {
				index = append(index, base+corners[i], base+corners[i+1], base+corners[i+2])
				mats = append(mats, mat)
			}
		}
	}

	if len(index) == 0 {
		return nil, fmt.Errorf("%w: no triangle primitives", ErrMalformed)
	}
	return NewIndexedMesh(name, vertices, index, mats), nil
}

// primitiveMaterial converts a glTF material into a Gouraud material.
// Primitives without one get nil, which renders with the default material.
func primitiveMaterial(doc *gltf.Document, idx *int, cache map[int]*render.Material) *render.Material {
	if idx == nil || *idx < 0 || *idx >= len(doc.Materials) {
		return nil
	}
	if mat, ok := cache[*idx]; ok {
		return mat
	}

	src := doc.Materials[*idx]
	base := [4]float64{1, 1, 1, 1}
	if src.PBRMetallicRoughness != nil && src.PBRMetallicRoughness.BaseColorFactor != nil {
		base = *src.PBRMetallicRoughness.BaseColorFactor
	}

	mat := render.NewMaterial(render.RGB(unit(base[0]), unit(base[1]), unit(base[2])), render.ShadeGouraud)
	mat.Emissive = render.RGB(unit(src.EmissiveFactor[0]), unit(src.EmissiveFactor[1]), unit(src.EmissiveFactor[2]))
	if src.DoubleSided {
		mat.Side = render.TwoSided
	}
	if src.AlphaMode == gltf.AlphaBlend {
		mat.Alpha = unit(base[3])
	}

	cache[*idx] = mat
	return mat
}

// unit maps a [0, 1] factor to a color channel.
func unit(f float64) uint8 {
	return uint8(math.Round(max(0, min(f, 1)) * 255))
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrMalformed, idx)
	}
	return doc.Accessors[idx], nil
}

// readVec3Accessor reads float VEC3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	acc, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: expected float VEC3, got %v/%v", ErrMalformed, acc.Type, acc.ComponentType)
	}
	if err := checkAccessor(doc, acc, 12); err != nil {
		return nil, err
	}

	raw, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	result := make([]math3d.Vec3, len(raw))
	for i, p := range raw {
		result[i] = math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
	}
	return result, nil
}

// readIndices reads unsigned scalar index data from a glTF accessor.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	acc, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("%w: expected SCALAR indices, got %v", ErrMalformed, acc.Type)
	}

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("%w: unsupported index type %v", ErrMalformed, acc.ComponentType)
	}
	if err := checkAccessor(doc, acc, size); err != nil {
		return nil, err
	}

	raw, err := modeler.ReadIndices(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	result := make([]int, len(raw))
	for i, v := range raw {
		result[i] = int(v)
	}
	return result, nil
}

// checkAccessor verifies that every element of acc lies inside its buffer,
// so decoding never reads past the data.
func checkAccessor(doc *gltf.Document, acc *gltf.Accessor, elemSize int) error {
	if acc.BufferView == nil {
		return fmt.Errorf("%w: accessor has no buffer view", ErrMalformed)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return fmt.Errorf("%w: buffer view %d out of range", ErrMalformed, *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return fmt.Errorf("%w: buffer %d out of range", ErrMalformed, view.Buffer)
	}
	buf := doc.Buffers[view.Buffer].Data
	if buf == nil {
		return fmt.Errorf("%w: buffer %d has no data", ErrMalformed, view.Buffer)
	}
	if acc.Count == 0 {
		return nil
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + acc.ByteOffset
	end := start + (acc.Count-1)*stride + elemSize
	if start < 0 || end > len(buf) {
		return fmt.Errorf("%w: accessor reads bytes %d..%d of a %d byte buffer", ErrMalformed, start, end, len(buf))
	}
	return nil
}

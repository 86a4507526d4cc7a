package render

// ShadeMode selects how a triangle is rasterized and lit.
type ShadeMode int

const (
	ShadeWire    ShadeMode = iota // edges only, material color, unlit
	ShadeFlat                     // one lit color per triangle
	ShadeGouraud                  // lit per vertex, interpolated
)

func (m ShadeMode) String() string {
	switch m {
	case ShadeWire:
		return "wire"
	case ShadeFlat:
		return "flat"
	case ShadeGouraud:
		return "gouraud"
	default:
		return "unknown"
	}
}

// Sidedness controls whether a surface is lit from behind.
type Sidedness int

const (
	OneSided Sidedness = iota
	TwoSided
)

// Material describes the surface of a triangle.
// Materials are shared by pointer between many triangles and are read-only
// while a frame renders.
type Material struct {
	Mode     ShadeMode
	Side     Sidedness
	Color    Color // base (ambient and diffuse) reflectance
	Specular Color
	Emissive Color
	Alpha    uint8 // 255 is opaque
}

// NewMaterial returns an opaque, one-sided material.
func NewMaterial(c Color, mode ShadeMode) *Material {
	return &Material{
		Mode:  mode,
		Color: c,
		Alpha: 255,
	}
}

// DefaultMaterial returns the material given to triangles whose mesh
// carries none: flat red wireframe.
func DefaultMaterial() *Material {
	return NewMaterial(ColorRed, ShadeWire)
}

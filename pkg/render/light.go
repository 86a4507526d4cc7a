package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// MaxLights is the number of lights a LightSet can hold.
const MaxLights = 8

var (
	ErrTooManyLights = errors.New("render: too many lights")
	ErrInvalidLight  = errors.New("render: invalid light")
	ErrNoSuchLight   = errors.New("render: no such light")
)

// LightKind selects the lighting model of a Light.
type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
	PointLight
	SpotLight
)

func (k LightKind) String() string {
	switch k {
	case AmbientLight:
		return "ambient"
	case DirectionalLight:
		return "directional"
	case PointLight:
		return "point"
	case SpotLight:
		return "spot"
	default:
		return "unknown"
	}
}

// Light is a light source. Which fields matter depends on Kind.
type Light struct {
	Kind      LightKind
	Intensity Color

	Position  math3d.Vec3 // point, spot
	Direction math3d.Vec3 // directional, spot: the way the light travels

	// Attenuation 1 / (Kc + Kl*d + Kq*d*d) for point and spot lights.
	Kc, Kl, Kq float64

	// Spot cone half-angles in radians. Full intensity inside Inner,
	// nothing outside Outer, Falloff shapes the band between.
	Inner, Outer float64
	Falloff      float64
}

// NewAmbientLight creates a light that reaches every surface equally.
func NewAmbientLight(intensity Color) Light {
	return Light{Kind: AmbientLight, Intensity: intensity}
}

// NewDirectionalLight creates a light at infinity shining along dir.
func NewDirectionalLight(intensity Color, dir math3d.Vec3) Light {
	return Light{Kind: DirectionalLight, Intensity: intensity, Direction: dir}
}

// NewPointLight creates an omnidirectional light at pos.
func NewPointLight(intensity Color, pos math3d.Vec3, kc, kl, kq float64) Light {
	return Light{Kind: PointLight, Intensity: intensity, Position: pos, Kc: kc, Kl: kl, Kq: kq}
}

// NewSpotLight creates a cone light at pos shining along dir, with no
// distance attenuation.
func NewSpotLight(intensity Color, pos, dir math3d.Vec3, inner, outer, falloff float64) Light {
	return Light{
		Kind:      SpotLight,
		Intensity: intensity,
		Position:  pos,
		Direction: dir,
		Kc:        1,
		Inner:     inner,
		Outer:     outer,
		Falloff:   falloff,
	}
}

func (l Light) validate() error {
	switch l.Kind {
	case AmbientLight:
	case DirectionalLight:
		if l.Direction.LenSq() == 0 {
			return fmt.Errorf("%w: directional light with zero direction", ErrInvalidLight)
		}
	case PointLight:
		if !(l.Kc+l.Kl+l.Kq > 0) {
			return fmt.Errorf("%w: non-positive attenuation", ErrInvalidLight)
		}
	case SpotLight:
		if l.Direction.LenSq() == 0 {
			return fmt.Errorf("%w: spot light with zero direction", ErrInvalidLight)
		}
		if !(l.Kc+l.Kl+l.Kq > 0) {
			return fmt.Errorf("%w: non-positive attenuation", ErrInvalidLight)
		}
		if l.Outer < l.Inner {
			return fmt.Errorf("%w: spot outer angle below inner angle", ErrInvalidLight)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidLight, l.Kind)
	}
	return nil
}

// Shade returns the light's contribution at point p with unit normal n on
// a surface of material m.
func (l Light) Shade(m *Material, n, p math3d.Vec3) Color {
	return l.shade(m, n, p).color()
}

func (l Light) shade(m *Material, n, p math3d.Vec3) rgb {
	lit := toRGB(m.Color).modulate(toRGB(l.Intensity))

	switch l.Kind {
	case AmbientLight:
		return lit

	case DirectionalLight:
		toLight := l.Direction.Normalize().Negate()
		return lit.scale(lambert(m, n, toLight))

	case PointLight, SpotLight:
		toLight := l.Position.Sub(p)
		d := toLight.Len()
		ndl := 1.0
		if d > math3d.Epsilon {
			toLight = toLight.Scale(1 / d)
			ndl = lambert(m, n, toLight)
		}
		f := ndl / (l.Kc + l.Kl*d + l.Kq*d*d)
		if l.Kind == SpotLight && d > math3d.Epsilon {
			f *= l.cone(toLight.Negate())
		}
		return lit.scale(f)

	default:
		return rgb{}
	}
}

// cone returns the spot factor for a ray leaving the light along dir.
func (l Light) cone(dir math3d.Vec3) float64 {
	cosAngle := dir.Dot(l.Direction.Normalize())
	cosInner := math.Cos(l.Inner)
	cosOuter := math.Cos(l.Outer)

	switch {
	case cosAngle >= cosInner:
		return 1
	case cosAngle < cosOuter:
		return 0
	}
	t := (cosAngle - cosOuter) / (cosInner - cosOuter)
	if l.Falloff > 0 {
		t = math.Pow(t, l.Falloff)
	}
	return t
}

// lambert is the diffuse cosine term. Two-sided surfaces are lit from
// either side.
func lambert(m *Material, n, toLight math3d.Vec3) float64 {
	ndl := n.Dot(toLight)
	if m.Side == TwoSided {
		return math.Abs(ndl)
	}
	return max(0, ndl)
}

type lightSlot struct {
	light   Light
	enabled bool
}

// LightSet holds up to MaxLights lights. Ids are assigned in order from 0
// and are never reused.
type LightSet struct {
	slots []lightSlot
}

// NewLightSet creates an empty light set.
func NewLightSet() *LightSet {
	return &LightSet{}
}

// Add validates l, stores it enabled and returns its id.
func (s *LightSet) Add(l Light) (int, error) {
	if len(s.slots) >= MaxLights {
		return -1, fmt.Errorf("%w: limit is %d", ErrTooManyLights, MaxLights)
	}
	if err := l.validate(); err != nil {
		return -1, err
	}
	s.slots = append(s.slots, lightSlot{light: l, enabled: true})
	return len(s.slots) - 1, nil
}

// Len returns the number of lights added.
func (s *LightSet) Len() int {
	return len(s.slots)
}

// Get returns the light with the given id.
func (s *LightSet) Get(id int) (Light, error) {
	slot, err := s.slot(id)
	if err != nil {
		return Light{}, err
	}
	return slot.light, nil
}

// Enable turns a light on.
func (s *LightSet) Enable(id int) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	slot.enabled = true
	return nil
}

// Disable turns a light off without forgetting it.
func (s *LightSet) Disable(id int) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	slot.enabled = false
	return nil
}

// Enabled reports whether the light with the given id is on.
func (s *LightSet) Enabled(id int) bool {
	slot, err := s.slot(id)
	return err == nil && slot.enabled
}

func (s *LightSet) slot(id int) (*lightSlot, error) {
	if id < 0 || id >= len(s.slots) {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchLight, id)
	}
	return &s.slots[id], nil
}

// Illuminate replaces vertex colors of world-space triangles with lit
// colors. Flat materials are shaded once at the centroid, Gouraud materials
// once per vertex; wire materials and clipped triangles are left alone.
// The result is the material's emissive color plus every enabled light.
func (s *LightSet) Illuminate(rl *RenderList) {
	tris := rl.Triangles()
	for i := range tris {
		t := &tris[i]
		if t.Clipped || t.Material == nil {
			continue
		}

		switch t.Material.Mode {
		case ShadeFlat:
			c := s.shade(t.Material, t.Normal(), t.Centroid())
			for j := range t.V {
				t.V[j].Color = c
			}
		case ShadeGouraud:
			n := t.Normal()
			for j := range t.V {
				t.V[j].Color = s.shade(t.Material, n, t.V[j].P)
			}
		}
	}
}

func (s *LightSet) shade(m *Material, n, p math3d.Vec3) Color {
	sum := toRGB(m.Emissive)
	for i := range s.slots {
		if s.slots[i].enabled {
			sum = sum.add(s.slots[i].light.shade(m, n, p))
		}
	}
	return sum.color()
}

package math3d

import "math"

// Sphere is a bounding sphere centered on its owner's local origin.
// The zero value is an invalid sphere, which culling treats as "always
// visible".
type Sphere struct {
	Radius float64
	valid  bool
}

// NewSphere returns a valid sphere of radius r.
// A negative radius yields an invalid sphere.
func NewSphere(r float64) Sphere {
	return Sphere{Radius: r, valid: r >= 0}
}

// BoundingSphere returns the smallest origin-centered sphere that contains
// every point. It is invalid when points is empty.
func BoundingSphere(points []Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}
	var maxSq float64
	for _, p := range points {
		maxSq = max(maxSq, p.LenSq())
	}
	return NewSphere(math.Sqrt(maxSq))
}

// Valid reports whether the sphere carries a usable radius.
func (s Sphere) Valid() bool {
	return s.valid
}

// Package render implements a software triangle pipeline: camera transform
// and culling, render lists, scanline rasterization, lighting and a
// depth-tested framebuffer.
package render

import (
	"github.com/taigrr/scanline/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum in camera space.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum builds a camera-space frustum with apex at the origin looking
// down +Z. tanHalf is the tangent of half the field of view and bounds both
// |x|/z and |y|/z.
func NewFrustum(tanHalf, nearZ, farZ float64) Frustum {
	var f Frustum

	// x >= -z*tanHalf
	f.Planes[FrustumLeft] = Plane{Normal: math3d.V3(1, 0, tanHalf)}
	// x <= z*tanHalf
	f.Planes[FrustumRight] = Plane{Normal: math3d.V3(-1, 0, tanHalf)}
	// y >= -z*tanHalf
	f.Planes[FrustumBottom] = Plane{Normal: math3d.V3(0, 1, tanHalf)}
	// y <= z*tanHalf
	f.Planes[FrustumTop] = Plane{Normal: math3d.V3(0, -1, tanHalf)}

	f.Planes[FrustumNear] = Plane{Normal: math3d.V3(0, 0, 1), D: -nearZ}
	f.Planes[FrustumFar] = Plane{Normal: math3d.V3(0, 0, -1), D: farZ}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}

	return f
}

// OutsideSide reports whether every point lies behind one and the same
// side plane (left, right, bottom or top). Points straddling different
// planes do not count as outside.
func (f Frustum) OutsideSide(points ...math3d.Vec3) bool {
	if len(points) == 0 {
		return false
	}
	for i := FrustumLeft; i <= FrustumTop; i++ {
		if f.allBehind(i, points) {
			return true
		}
	}
	return false
}

func (f Frustum) allBehind(plane int, points []math3d.Vec3) bool {
	for _, p := range points {
		if f.Planes[plane].DistanceToPoint(p) >= 0 {
			return false
		}
	}
	return true
}

// IntersectsDepthRange tests a sphere against the near and far planes only.
// It returns false when the sphere is entirely nearer than near or entirely
// farther than far.
func (f Frustum) IntersectsDepthRange(center math3d.Vec3, radius float64) bool {
	return f.Planes[FrustumNear].DistanceToPoint(center) >= -radius &&
		f.Planes[FrustumFar].DistanceToPoint(center) >= -radius
}

// IntersectsSphere tests a sphere against all six planes.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// Frustum returns the camera-space view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustum(0.5*viewPlaneWidth/c.distance, c.nearZ, c.farZ)
}

package render

import (
	"fmt"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// viewPlaneWidth is the width of the projection window in camera units.
// Together with the field of view it fixes the projection distance.
const viewPlaneWidth = 2.0

// Viewport is the pixel rectangle the camera projects onto.
type Viewport struct {
	X, Y          int // pixel origin
	Width, Height int
}

// NewViewport creates a viewport with its origin at (0, 0).
func NewViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

// Aspect returns Width / Height.
func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// SceneObject is anything the camera can reject as a whole before its
// triangles are built.
type SceneObject interface {
	Position() math3d.Vec3
	BoundingSphere() math3d.Sphere
}

// Camera owns the view of the scene.
//
// Euler angles are the authoritative orientation. The right/up/dir basis
// and the world-to-camera transform are derived from them and from the
// position, and are rebuilt in full by every mutator.
type Camera struct {
	position math3d.Vec3

	right math3d.Vec3
	up    math3d.Vec3
	dir   math3d.Vec3

	yaw   float64 // around Y
	pitch float64 // around X
	roll  float64 // around Z

	fov      float64 // horizontal field of view in radians
	distance float64 // projection distance
	nearZ    float64
	farZ     float64

	worldToCamera math3d.Mat4
}

// NewCamera creates a camera at position looking down +Z.
func NewCamera(position math3d.Vec3, fov, nearZ, farZ float64) *Camera {
	c := &Camera{
		position: position,
		right:    math3d.V3(1, 0, 0),
		up:       math3d.V3(0, 1, 0),
		dir:      math3d.V3(0, 0, 1),
		nearZ:    nearZ,
		farZ:     farZ,
	}
	c.setFOV(fov)
	c.BuildCamMatrix()
	return c
}

func (c *Camera) setFOV(fov float64) {
	c.fov = fov
	c.distance = 0.5 * viewPlaneWidth / math.Tan(fov/2)
}

// SetFOV sets the field of view (in radians) and the projection distance
// derived from it.
func (c *Camera) SetFOV(fov float64) {
	c.setFOV(fov)
}

// SetClipPlanes sets the near and far depth bounds used by Culled.
func (c *Camera) SetClipPlanes(nearZ, farZ float64) {
	c.nearZ = nearZ
	c.farZ = farZ
}

// SetPosition moves the camera and rebuilds the transform.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = pos
	c.BuildCamMatrix()
}

// SetDirection stores the normalized direction and rebuilds the transform.
// The rebuild derives the basis from the Euler angles, so dir is replaced
// by the angle-derived direction before this returns.
func (c *Camera) SetDirection(dir math3d.Vec3) {
	c.dir = dir.Normalize()
	c.BuildCamMatrix()
}

// SetEulerAnglesRotation sets the orientation and rebuilds the transform.
func (c *Camera) SetEulerAnglesRotation(yaw, pitch, roll float64) {
	c.yaw = yaw
	c.pitch = pitch
	c.roll = roll
	c.BuildCamMatrix()
}

// BuildCamMatrix recomputes the basis and the world-to-camera transform.
//
// Each axis rotation is inverted and the inverses are composed so that yaw
// applies first, then pitch, then roll. The result is a rigid transform:
// translate by -position, then rotate.
func (c *Camera) BuildCamMatrix() {
	mxInv := math3d.RotateX(c.pitch).Inverse()
	myInv := math3d.RotateY(c.yaw).Inverse()
	mzInv := math3d.RotateZ(c.roll).Inverse()

	rot := mzInv.Mul(mxInv).Mul(myInv)

	c.right = rot.Row(0)
	c.up = rot.Row(1)
	c.dir = rot.Row(2)

	c.worldToCamera = rot.Mul(math3d.Translate(c.position.Negate()))
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 { return c.position }

// Direction returns the world-space view direction.
func (c *Camera) Direction() math3d.Vec3 { return c.dir }

// Right returns the world-space right vector.
func (c *Camera) Right() math3d.Vec3 { return c.right }

// Up returns the world-space up vector.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// EulerAngles returns yaw, pitch and roll in radians.
func (c *Camera) EulerAngles() (yaw, pitch, roll float64) {
	return c.yaw, c.pitch, c.roll
}

// FOV returns the field of view in radians.
func (c *Camera) FOV() float64 { return c.fov }

// Distance returns the projection distance.
func (c *Camera) Distance() float64 { return c.distance }

// NearZ returns the near depth bound.
func (c *Camera) NearZ() float64 { return c.nearZ }

// FarZ returns the far depth bound.
func (c *Camera) FarZ() float64 { return c.farZ }

// WorldToCamera returns the current world-to-camera transform.
func (c *Camera) WorldToCamera() math3d.Mat4 { return c.worldToCamera }

// NearClipZ is the camera-space depth below which ToCamera rejects a
// triangle. It equals the projection distance.
func (c *Camera) NearClipZ() float64 { return c.distance }

// ToCamera moves every unclipped triangle into camera space. A triangle
// with any vertex nearer than NearClipZ is clipped whole.
func (c *Camera) ToCamera(rl *RenderList) {
	tris := rl.Triangles()
	nearClip := c.NearClipZ()

	for i := range tris {
		t := &tris[i]
		if t.Clipped {
			continue
		}

		t.Transform(c.worldToCamera)

		if t.V[0].P.Z < nearClip || t.V[1].P.Z < nearClip || t.V[2].P.Z < nearClip {
			t.clip()
		}
	}
}

// FrustumCull clips every unclipped camera-space triangle whose three
// vertices all lie outside the same side plane of the view frustum.
func (c *Camera) FrustumCull(rl *RenderList) {
	f := c.Frustum()
	tris := rl.Triangles()

	for i := range tris {
		t := &tris[i]
		if t.Clipped {
			continue
		}
		if f.OutsideSide(t.V[0].P, t.V[1].P, t.V[2].P) {
			t.clip()
		}
	}
}

// ToScreen projects every unclipped camera-space triangle onto vp.
// Depth (Z) is left in camera units for the rasterizer.
func (c *Camera) ToScreen(rl *RenderList, vp Viewport) {
	tris := rl.Triangles()

	for i := range tris {
		t := &tris[i]
		if t.Clipped {
			continue
		}
		for j := range t.V {
			t.V[j].P = c.Project(t.V[j].P, vp)
		}
	}
}

// Project maps a camera-space point to vp. The vertical axis is flipped so
// screen y grows downward.
//
// p.Z must not be zero; ToCamera guarantees this for unclipped triangles,
// and a zero here is an internal invariant failure.
func (c *Camera) Project(p math3d.Vec3, vp Viewport) math3d.Vec3 {
	if p.Z == 0 {
		panic(fmt.Sprintf("render: projecting point %v with zero depth", p))
	}

	x := c.distance * p.X / p.Z
	y := c.distance * p.Y * vp.Aspect() / p.Z

	alpha := 0.5*float64(vp.Width) - 0.5
	beta := 0.5*float64(vp.Height) - 0.5

	return math3d.Vec3{
		X: alpha + alpha*x + float64(vp.X),
		Y: beta - beta*y + float64(vp.Y),
		Z: p.Z,
	}
}

// Culled reports whether obj's bounding sphere lies entirely in front of
// the near bound or beyond the far bound. Objects without a valid sphere
// are never culled.
func (c *Camera) Culled(obj SceneObject) bool {
	sphere := obj.BoundingSphere()
	if !sphere.Valid() {
		return false
	}

	center := c.worldToCamera.MulVec3(obj.Position())
	return !c.Frustum().IntersectsDepthRange(center, sphere.Radius)
}

package render

import "github.com/taigrr/scanline/pkg/math3d"

// FrameStats counts what happened to the scene during one frame.
type FrameStats struct {
	Objects       int // meshes submitted
	ObjectsCulled int // meshes rejected by their bounding sphere
	Triangles     int // triangles appended to the render list
	Clipped       int // triangles rejected by near or frustum tests
	Drawn         int // triangles handed to the rasterizer
}

// Pipeline runs the per-frame stages in order: object culling, render list
// build, lighting, camera transform, frustum culling, projection, depth
// sort and rasterization.
type Pipeline struct {
	Camera   *Camera
	Viewport Viewport
	Lights   *LightSet // nil leaves vertex colors as built

	rl   *RenderList
	rast *Rasterizer
}

// NewPipeline creates a pipeline drawing cam's view into vp.
func NewPipeline(cam *Camera, vp Viewport) *Pipeline {
	return &Pipeline{
		Camera:   cam,
		Viewport: vp,
		rl:       NewRenderList(),
		rast:     NewRasterizer(),
	}
}

// RenderList returns the list built by the most recent frame.
func (p *Pipeline) RenderList() *RenderList {
	return p.rl
}

// RenderFrame draws objects into fb. Meshes that also implement
// SceneObject are tested against the camera depth range first.
// fb is neither cleared nor depth-reset.
func (p *Pipeline) RenderFrame(fb PixelWriter, objects ...Mesh) FrameStats {
	var stats FrameStats
	cam := p.Camera
	rl := p.rl
	rl.Reset()

	for _, obj := range objects {
		stats.Objects++
		if so, ok := obj.(SceneObject); ok && cam.Culled(so) {
			stats.ObjectsCulled++
			continue
		}
		rl.Append(obj)
	}
	stats.Triangles = rl.Len()

	if p.Lights != nil {
		p.Lights.Illuminate(rl)
	}

	cam.ToCamera(rl)
	cam.FrustumCull(rl)
	clipZeroDepth(rl)
	cam.ToScreen(rl, p.Viewport)
	rl.ZSort()

	tris := rl.Triangles()
	for i := range tris {
		if tris[i].Clipped {
			stats.Clipped++
			continue
		}
		p.rast.Draw(&tris[i], fb)
		stats.Drawn++
	}

	Logger().Debug("frame rendered",
		"objects", stats.Objects,
		"objects_culled", stats.ObjectsCulled,
		"triangles", stats.Triangles,
		"clipped", stats.Clipped,
		"drawn", stats.Drawn,
	)
	return stats
}

// clipZeroDepth rejects camera-space triangles that cannot be projected.
func clipZeroDepth(rl *RenderList) {
	tris := rl.Triangles()
	for i := range tris {
		t := &tris[i]
		if !t.Clipped && (t.V[0].P.Z == 0 || t.V[1].P.Z == 0 || t.V[2].P.Z == 0) {
			t.clip()
		}
	}
}

// DrawLine3D draws a world-space segment with depth testing. The part of
// the segment nearer than the camera's near clip depth is cut off.
func (p *Pipeline) DrawLine3D(fb PixelWriter, a, b math3d.Vec3, c Color) {
	cam := p.Camera
	w2c := cam.WorldToCamera()
	ca, cb := w2c.MulVec3(a), w2c.MulVec3(b)

	near := cam.NearClipZ()
	if ca.Z < near && cb.Z < near {
		return
	}
	if ca.Z < near {
		ca = ca.Add(cb.Sub(ca).Scale((near - ca.Z) / (cb.Z - ca.Z)))
	} else if cb.Z < near {
		cb = cb.Add(ca.Sub(cb).Scale((near - cb.Z) / (ca.Z - cb.Z)))
	}
	if ca.Z == 0 || cb.Z == 0 {
		return
	}

	va := Vertex{P: cam.Project(ca, p.Viewport)}
	vb := Vertex{P: cam.Project(cb, p.Viewport)}
	p.rast.wire.DrawLine(fb, va, vb, c, 255)
}

// DrawAxes draws the world axes from the origin.
func (p *Pipeline) DrawAxes(fb PixelWriter, length float64) {
	origin := math3d.Zero3()
	p.DrawLine3D(fb, origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	p.DrawLine3D(fb, origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	p.DrawLine3D(fb, origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XZ plane at y.
func (p *Pipeline) DrawGrid(fb PixelWriter, y, size, step float64, c Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	for x := -half; x <= half; x += step {
		p.DrawLine3D(fb, math3d.V3(x, y, -half), math3d.V3(x, y, half), c)
	}
	for z := -half; z <= half; z += step {
		p.DrawLine3D(fb, math3d.V3(-half, y, z), math3d.V3(half, y, z), c)
	}
}

package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
)

const (
	defaultZoom = 5.0
	minZoom     = 2.0
	maxZoom     = 20.0
	eyeHeight   = 1.5
	gridY       = -1.5
)

var gridColor = render.RGB(70, 70, 90)

type sceneOptions struct {
	model     string // empty for the built-in cube
	fov       float64
	near, far float64
	bg        render.Color
}

// scene is the viewer state shared by the terminal loop and snapshots.
type scene struct {
	pipeline *render.Pipeline
	mesh     *models.Mesh
	lights   *render.LightSet
	bg       render.Color

	mode  render.ShadeMode
	lit   bool
	grid  bool
	zoom  float64
	yaw   float64
	pitch float64
}

func newScene(opts sceneOptions) (*scene, error) {
	mesh, err := loadMesh(opts.model)
	if err != nil {
		return nil, err
	}
	fitMesh(mesh, 2)

	lights := render.NewLightSet()
	if _, err := lights.Add(render.NewAmbientLight(render.RGB(60, 60, 60))); err != nil {
		return nil, err
	}
	if _, err := lights.Add(render.NewDirectionalLight(render.RGB(220, 220, 200), math3d.V3(-0.4, -0.6, 1))); err != nil {
		return nil, err
	}

	cam := render.NewCamera(math3d.Zero3(), opts.fov, opts.near, opts.far)
	s := &scene{
		pipeline: render.NewPipeline(cam, render.NewViewport(1, 1)),
		mesh:     mesh,
		lights:   lights,
		bg:       opts.bg,
		mode:     render.ShadeGouraud,
		lit:      true,
		grid:     true,
		zoom:     defaultZoom,
	}
	s.pipeline.Lights = lights
	s.setMode(s.mode)
	return s, nil
}

// loadMesh loads a glTF model, or builds a cube when path is empty.
func loadMesh(path string) (*models.Mesh, error) {
	if path == "" {
		return models.NewCube(2, render.NewMaterial(render.RGB(200, 200, 200), render.ShadeGouraud)), nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		mesh, err := models.LoadGLTF(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return mesh, nil
	default:
		return nil, fmt.Errorf("unsupported format: %q (use .glb or .gltf)", ext)
	}
}

// fitMesh centers the mesh on its origin and scales its largest dimension
// to size.
func fitMesh(m *models.Mesh, size float64) {
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return
	}
	s := size / maxDim
	m.Transform(math3d.ScaleUniform(s).Mul(math3d.Translate(m.Center().Negate())))
}

// setMode switches every material on the mesh to mode. Triangles without a
// material keep the default wireframe.
func (s *scene) setMode(mode render.ShadeMode) {
	s.mode = mode
	for _, mat := range s.mesh.Mats {
		if mat != nil {
			mat.Mode = mode
		}
	}
}

// cycleMode steps wire, flat, gouraud.
func (s *scene) cycleMode() {
	s.setMode((s.mode + 1) % 3)
}

func (s *scene) toggleLights() {
	s.lit = !s.lit
	if s.lit {
		s.pipeline.Lights = s.lights
	} else {
		s.pipeline.Lights = nil
	}
}

// resize points the pipeline at a new framebuffer size.
func (s *scene) resize(width, height int) {
	s.pipeline.Viewport = render.NewViewport(width, height)
}

// placeCamera puts the camera above the -Z axis at the current zoom,
// looking at the origin.
func (s *scene) placeCamera() {
	cam := s.pipeline.Camera
	cam.SetPosition(math3d.V3(0, eyeHeight, -s.zoom))
	cam.SetEulerAnglesRotation(0, math.Atan2(eyeHeight, s.zoom), 0)
}

// draw renders one frame into fb.
func (s *scene) draw(fb *render.Framebuffer) render.FrameStats {
	fb.Clear(s.bg)
	fb.ClearDepth()

	s.placeCamera()
	s.mesh.SetRotation(s.yaw, s.pitch, 0)

	if s.grid {
		s.pipeline.DrawAxes(fb, 1.5)
		s.pipeline.DrawGrid(fb, gridY, 8, 0.5, gridColor)
	}
	return s.pipeline.RenderFrame(fb, s.mesh)
}

// snapshot renders a single frame at a fixed three-quarter view and saves
// it to path.
func (s *scene) snapshot(path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("snapshot size must be positive, got %dx%d", width, height)
	}

	fb := render.NewFramebuffer(width, height)
	s.resize(width, height)
	s.yaw, s.pitch = 0.6, 0.3

	stats := s.draw(fb)
	render.Logger().Info("snapshot rendered",
		"path", path,
		"triangles", stats.Triangles,
		"drawn", stats.Drawn)

	if err := fb.Save(path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// parseColor parses an "R,G,B" triple.
func parseColor(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("color %q: want R,G,B", s)
	}

	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}
	return render.RGB(ch[0], ch[1], ch[2]), nil
}

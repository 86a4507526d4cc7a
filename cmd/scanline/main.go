// scanline - software 3D renderer for the terminal
// Renders a cube or a glTF model with the scanline pipeline, either live in
// the terminal or once into an image file.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Space       - Apply random impulse
//	R           - Reset view
//	M           - Cycle shade mode (wire, flat, gouraud)
//	L           - Toggle lights
//	G           - Toggle grid and axes
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

var (
	targetFPS = flag.Int("fps", 60, "Target FPS")
	bgColor   = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	fovDeg    = flag.Float64("fov", 90, "Horizontal field of view in degrees")
	nearZ     = flag.Float64("near", 0.5, "Near cull distance")
	farZ      = flag.Float64("far", 100, "Far cull distance")
	output    = flag.String("o", "", "Render one frame to this file (.png, .bmp, .tif) and exit")
	outWidth  = flag.Int("width", 320, "Snapshot width in pixels")
	outHeight = flag.Int("height", 240, "Snapshot height in pixels")
	verbose   = flag.Bool("v", false, "Log pipeline activity to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "scanline - software 3D renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scanline [options] [model.glb|model.gltf]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model a cube is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Rotate model\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  M           - Cycle shade mode\n")
		fmt.Fprintf(os.Stderr, "  L           - Toggle lights\n")
		fmt.Fprintf(os.Stderr, "  G           - Toggle grid\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if *verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string) error {
	bg, err := parseColor(*bgColor)
	if err != nil {
		return err
	}
	if *targetFPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", *targetFPS)
	}

	s, err := newScene(sceneOptions{
		model: modelPath,
		fov:   math3d.DegToRad(*fovDeg),
		near:  *nearZ,
		far:   *farZ,
		bg:    bg,
	})
	if err != nil {
		return err
	}

	if *output != "" {
		return s.snapshot(*output, *outWidth, *outHeight)
	}
	return view(s, *targetFPS)
}

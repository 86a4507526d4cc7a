package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/scanline/pkg/render"
)

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewRotationAxis creates an axis whose velocity decays to rest without
// overshoot.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// orbit holds the model rotation and camera zoom, both spring driven.
type orbit struct {
	Yaw, Pitch RotationAxis

	Zoom       float64
	zoomTarget float64
	zoomVel    float64
	zoomSpring harmonica.Spring

	fps int
}

func newOrbit(fps int) *orbit {
	return &orbit{
		Yaw:        NewRotationAxis(fps),
		Pitch:      NewRotationAxis(fps),
		Zoom:       defaultZoom,
		zoomTarget: defaultZoom,
		zoomSpring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		fps:        fps,
	}
}

// Update advances the springs by one frame.
func (o *orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Zoom, o.zoomVel = o.zoomSpring.Update(o.Zoom, o.zoomVel, o.zoomTarget)
}

func (o *orbit) ApplyImpulse(pitch, yaw float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
}

// ZoomBy moves the zoom target, clamped to the allowed range.
func (o *orbit) ZoomBy(d float64) {
	o.zoomTarget = max(minZoom, min(maxZoom, o.zoomTarget+d))
}

func (o *orbit) Reset() {
	o.Yaw = NewRotationAxis(o.fps)
	o.Pitch = NewRotationAxis(o.fps)
	o.zoomTarget = defaultZoom
}

// view runs the interactive terminal loop until Esc, Ctrl+C or a signal.
func view(s *scene, fps int) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	// Two framebuffer rows per terminal row.
	fb := render.NewFramebuffer(width, height*2)
	s.resize(fb.Width, fb.Height)

	motion := newOrbit(fps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	inputTorque := struct{ pitch, yaw float64 }{}
	const torqueStrength = 3.0

	var mouseDown bool
	var lastMouseX, lastMouseY int

	// Events are applied on the render goroutine so the scene is never
	// mutated mid-frame.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	handle := func(ev uv.Event) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			fb = render.NewFramebuffer(width, height*2)
			s.resize(fb.Width, fb.Height)

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				cancel()
			case ev.MatchString("r"):
				motion.Reset()
			case ev.MatchString("w", "up"):
				inputTorque.pitch = -torqueStrength
			case ev.MatchString("s", "down"):
				inputTorque.pitch = torqueStrength
			case ev.MatchString("a", "left"):
				inputTorque.yaw = -torqueStrength
			case ev.MatchString("d", "right"):
				inputTorque.yaw = torqueStrength
			case ev.MatchString("space"):
				motion.ApplyImpulse(
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
				)
			case ev.MatchString("+", "="):
				motion.ZoomBy(-0.5)
			case ev.MatchString("-", "_"):
				motion.ZoomBy(0.5)
			case ev.MatchString("m"):
				s.cycleMode()
			case ev.MatchString("l"):
				s.toggleLights()
			case ev.MatchString("g"):
				s.grid = !s.grid
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w", "up", "s", "down"):
				inputTorque.pitch = 0
			case ev.MatchString("a", "left", "d", "right"):
				inputTorque.yaw = 0
			}

		case uv.MouseClickEvent:
			mouseDown = true
			lastMouseX, lastMouseY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			mouseDown = false

		case uv.MouseMotionEvent:
			if mouseDown {
				dx := ev.X - lastMouseX
				dy := ev.Y - lastMouseY
				motion.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				motion.ZoomBy(-0.5)
			case uv.MouseWheelDown:
				motion.ZoomBy(0.5)
			}
		}
	}

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()

	for {
		// Drain pending input before drawing.
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				handle(ev)
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		// Key release events are unreliable, so held torque also decays.
		motion.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9

		motion.Update()
		s.yaw, s.pitch, s.zoom = motion.Yaw.Position, motion.Pitch.Position, motion.Zoom

		s.draw(fb)
		fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

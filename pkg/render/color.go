package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// rgb is an unclamped float color used while accumulating light and while
// interpolating across a triangle.
type rgb struct {
	r, g, b float64
}

func toRGB(c Color) rgb {
	return rgb{float64(c.R), float64(c.G), float64(c.B)}
}

func (c rgb) add(o rgb) rgb {
	return rgb{c.r + o.r, c.g + o.g, c.b + o.b}
}

func (c rgb) scale(s float64) rgb {
	return rgb{c.r * s, c.g * s, c.b * s}
}

// modulate multiplies two colors channel-wise, treating 255 as 1.
func (c rgb) modulate(o rgb) rgb {
	return rgb{c.r * o.r / 255, c.g * o.g / 255, c.b * o.b / 255}
}

// color clamps to [0, 255] and returns an opaque Color.
func (c rgb) color() Color {
	return RGB(clampChannel(c.r), clampChannel(c.g), clampChannel(c.b))
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// blend mixes src over dst with alpha in [0, 255].
func blend(src, dst Color, alpha uint8) Color {
	a := float64(alpha) / 255
	mix := func(s, d uint8) uint8 {
		return clampChannel(math.Round(float64(s)*a + float64(d)*(1-a)))
	}
	return Color{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: 255,
	}
}

package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestWritePixelDepthTest(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Clear(ColorBlack)

	fb.WritePixel(1, 1, ColorRed, 0.5, 255)
	if got := fb.GetPixel(1, 1); got != ColorRed {
		t.Fatalf("pixel = %v, want red", got)
	}
	if got := fb.DepthAt(1, 1); got != 0.5 {
		t.Fatalf("depth = %v, want 0.5", got)
	}

	tests := []struct {
		name      string
		c         Color
		invZ      float64
		wantColor Color
		wantDepth float64
	}{
		{"farther rejected", ColorGreen, 0.25, ColorRed, 0.5},
		{"equal rejected", ColorGreen, 0.5, ColorRed, 0.5},
		{"nearer accepted", ColorBlue, 0.75, ColorBlue, 0.75},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb.WritePixel(1, 1, tc.c, tc.invZ, 255)
			if got := fb.GetPixel(1, 1); got != tc.wantColor {
				t.Errorf("pixel = %v, want %v", got, tc.wantColor)
			}
			if got := fb.DepthAt(1, 1); got != tc.wantDepth {
				t.Errorf("depth = %v, want %v", got, tc.wantDepth)
			}
		})
	}
}

func TestWritePixelBlend(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Clear(ColorBlack)
	fb.WritePixel(0, 0, ColorWhite, 0.25, 255)

	fb.WritePixel(0, 0, Color{R: 0, G: 0, B: 255, A: 255}, 0.5, 128)

	got := fb.GetPixel(0, 0)
	// 255*(128/255) + 0, 0 + 255*(127/255) on the other channels.
	if got.B != 255 || got.R != 127 || got.G != 127 || got.A != 255 {
		t.Errorf("blended pixel = %v, want {127 127 255 255}", got)
	}
	if d := fb.DepthAt(0, 0); d != 0.25 {
		t.Errorf("depth after blend = %v, want unchanged 0.25", d)
	}

	// A blended fragment behind the stored depth is dropped.
	fb.WritePixel(0, 0, ColorRed, 0.1, 128)
	if fb.GetPixel(0, 0) != got {
		t.Error("fragment behind the surface was blended")
	}
}

func TestWritePixelOutOfBounds(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		fb.WritePixel(p.X, p.Y, ColorRed, 1, 255)
	}
	for i, px := range fb.Pixels {
		if px != (color.RGBA{}) {
			t.Errorf("pixel %d written: %v", i, px)
		}
	}
}

func TestClearDepth(t *testing.T) {
	fb := NewFramebuffer(3, 3)
	fb.WritePixel(2, 2, ColorRed, 0.9, 255)
	fb.ClearDepth()

	for i, d := range fb.Depth {
		if d != 0 {
			t.Errorf("depth[%d] = %v after ClearDepth", i, d)
		}
	}
	fb.WritePixel(2, 2, ColorGreen, 0.01, 255)
	if fb.GetPixel(2, 2) != ColorGreen {
		t.Error("write after ClearDepth rejected")
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.DrawLine(0, 0, 7, 7, ColorWhite)

	for i := range 8 {
		if fb.GetPixel(i, i) != ColorWhite {
			t.Errorf("diagonal pixel (%d, %d) not set", i, i)
		}
	}
	if fb.DepthAt(3, 3) != 0 {
		t.Error("DrawLine wrote depth")
	}
}

func TestSave(t *testing.T) {
	fb := NewFramebuffer(5, 3)
	fb.Clear(ColorBlue)
	fb.SetPixel(4, 2, ColorRed)

	decoders := map[string]func(io.Reader) (image.Image, error){
		"out.png":  png.Decode,
		"out.bmp":  bmp.Decode,
		"out.tif":  tiff.Decode,
		"out.TIFF": tiff.Decode,
	}

	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := fb.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			img, err := decode(f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds() != fb.Bounds() {
				t.Errorf("bounds = %v, want %v", img.Bounds(), fb.Bounds())
			}
			if got := color.RGBAModel.Convert(img.At(4, 2)).(color.RGBA); got != ColorRed {
				t.Errorf("pixel (4, 2) = %v, want red", got)
			}
			if got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA); got != ColorBlue {
				t.Errorf("pixel (0, 0) = %v, want blue", got)
			}
		})
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	path := filepath.Join(t.TempDir(), "out.gif")

	err := fb.Save(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Save = %v, want ErrUnsupportedFormat", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("file created for unsupported format")
	}
}

func TestCellColor(t *testing.T) {
	if cellColor(color.RGBA{}) != nil {
		t.Error("transparent pixel should map to the default terminal color")
	}
	if got := cellColor(ColorRed); got != ColorRed {
		t.Errorf("cellColor(red) = %v", got)
	}
}

package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferSavePNG(t *testing.T) {
	// Create a small framebuffer with a gradient
	fb := NewFramebuffer(100, 100)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			fb.SetPixel(x, y, RGB(uint8(x*2), uint8(y*2), 128))
		}
	}

	path := filepath.Join(t.TempDir(), "test.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("File not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("File is empty")
	}
}

func TestFramebufferToImage(t *testing.T) {
	fb := NewFramebuffer(50, 50)
	fb.SetPixel(10, 20, ColorRed)
	fb.SetPixel(30, 40, ColorGreen)

	img := fb.ToImage()

	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50 {
		t.Errorf("Image dimensions wrong: got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	r, g, b, a := img.At(10, 20).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("Red pixel wrong: got %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}

	r, g, b, a = img.At(30, 40).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("Green pixel wrong: got %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestFramebufferClearAndResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.BG = ColorCyan
	fb.SetPixel(1, 1, ColorRed)
	fb.Clear()
	if fb.GetPixel(1, 1) != ColorCyan {
		t.Errorf("Clear left %v", fb.GetPixel(1, 1))
	}
	fb.Resize(8, 2)
	if fb.Width != 8 || fb.Height != 2 || len(fb.Pixels) != 16 {
		t.Errorf("Resize gave %dx%d with %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}
	if fb.GetPixel(7, 1) != ColorCyan {
		t.Error("Resize should clear to BG")
	}
	// Out of range access is ignored.
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(8, 0, ColorRed)
	if fb.GetPixel(100, 100) != ColorTransparent {
		t.Error("GetPixel out of range should be zero")
	}
}

func countColor(fb *Framebuffer, c color.RGBA) int {
	n := 0
	for _, p := range fb.Pixels {
		if p == c {
			n++
		}
	}
	return n
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 2, 5, 12, 5, 11},
		{"vertical", 3, 1, 3, 9, 9},
		{"diagonal", 0, 0, 9, 9, 10},
		{"reversed", 9, 9, 0, 0, 10},
		{"single point", 4, 4, 4, 4, 1},
		{"steep", 1, 0, 3, 9, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(20, 20)
			fb.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1, ColorGreen)
			if got := countColor(fb, ColorGreen); got != tt.want {
				t.Errorf("drew %d pixels, want %d", got, tt.want)
			}
			if fb.GetPixel(tt.x0, tt.y0) != ColorGreen || fb.GetPixel(tt.x1, tt.y1) != ColorGreen {
				t.Error("endpoints not drawn")
			}
		})
	}
}

func TestDrawLineClipped(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.DrawLine(-20, 5, 30, 5, ColorRed)
	if got := countColor(fb, ColorRed); got != 10 {
		t.Errorf("clipped line drew %d pixels, want 10", got)
	}
}

func TestDrawFrame(t *testing.T) {
	fb := NewFramebuffer(40, 40)
	f := Frame{
		Lines: []Line{
			{From: Pixel{0, 0}, To: Pixel{10, 0}, Kind: LineMarker},
			{From: Pixel{20, 14}, To: Pixel{20, 26}, Kind: LineCrosshair},
		},
		Labels: []Label{{At: Pixel{30, 30}, Text: "+NE"}},
	}
	fb.DrawFrame(f, DefaultPalette)
	if fb.GetPixel(5, 0) != DefaultPalette.Marker {
		t.Error("marker line missing")
	}
	if fb.GetPixel(20, 20) != DefaultPalette.Crosshair {
		t.Error("crosshair missing")
	}
	if countColor(fb, DefaultPalette.Point) != 9 {
		t.Errorf("label point drew %d pixels, want 9", countColor(fb, DefaultPalette.Point))
	}
}

func TestDrawLabels(t *testing.T) {
	fb := NewFramebuffer(80, 40)
	img := fb.ToImage()
	DrawLabels(img, []Label{{At: Pixel{5, 25}, Text: "+SW"}}, ColorWhite)
	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				lit++
				if x < 5 || y > 25 {
					t.Fatalf("text pixel at (%d,%d) outside the label area", x, y)
				}
			}
		}
	}
	if lit == 0 {
		t.Error("no text drawn")
	}
	if w := LabelWidth("+SW"); w != 21 {
		t.Errorf("LabelWidth = %d, want 21", w)
	}
}

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Common colors.
var (
	ColorBlack       = RGB(0, 0, 0)
	ColorWhite       = RGB(255, 255, 255)
	ColorRed         = RGB(255, 0, 0)
	ColorGreen       = RGB(0, 255, 0)
	ColorYellow      = RGB(255, 255, 0)
	ColorCyan        = RGB(0, 255, 255)
	ColorTransparent = color.RGBA{}
)

// Framebuffer is a simple RGBA pixel grid that frontends draw frames into.
type Framebuffer struct {
	Width, Height int
	Pixels        []color.RGBA
	BG            color.RGBA
}

// NewFramebuffer allocates a framebuffer cleared to black.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{BG: ColorBlack}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the pixel grid and clears it.
func (fb *Framebuffer) Resize(width, height int) {
	fb.Width = max(width, 0)
	fb.Height = max(height, 0)
	fb.Pixels = make([]color.RGBA, fb.Width*fb.Height)
	fb.Clear()
}

// Clear fills the framebuffer with BG.
func (fb *Framebuffer) Clear() {
	for i := range fb.Pixels {
		fb.Pixels[i] = fb.BG
	}
}

// SetPixel sets one pixel; out of range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the pixel at x, y or the zero color when out of range.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a segment with Bresenham's algorithm. Pixels outside the
// framebuffer are skipped, so endpoints may lie off screen.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPoint draws a small filled square centred on p.
func (fb *Framebuffer) DrawPoint(p Pixel, radius int, c color.RGBA) {
	for y := p.Y - radius; y <= p.Y+radius; y++ {
		for x := p.X - radius; x <= p.X+radius; x++ {
			fb.SetPixel(x, y, c)
		}
	}
}

// Palette holds the colors DrawFrame uses.
type Palette struct {
	Marker    color.RGBA
	Crosshair color.RGBA
	Point     color.RGBA
}

// DefaultPalette is green boxes, a white crosshair and yellow corner points.
var DefaultPalette = Palette{
	Marker:    ColorGreen,
	Crosshair: ColorWhite,
	Point:     ColorYellow,
}

// DrawFrame draws the frame lines and a point at each label position.
// Label text needs a font and is drawn separately with DrawLabels.
func (fb *Framebuffer) DrawFrame(f Frame, pal Palette) {
	for _, l := range f.Lines {
		c := pal.Marker
		if l.Kind == LineCrosshair {
			c = pal.Crosshair
		}
		fb.DrawLine(l.From.X, l.From.Y, l.To.X, l.To.Y, c)
	}
	for _, lb := range f.Labels {
		fb.DrawPoint(lb.At, 1, pal.Point)
	}
}

// ToImage copies the framebuffer into a new image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG writes the framebuffer to path as PNG.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package render

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
)

func testImage() *image.RGBA {
	fb := NewFramebuffer(16, 8)
	fb.DrawLine(0, 0, 15, 7, ColorGreen)
	return fb.ToImage()
}

func TestSaveImageFormats(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range ImageExtensions {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "frame"+ext)
			if err := SaveImage(path, testImage()); err != nil {
				t.Fatalf("SaveImage failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil || info.Size() == 0 {
				t.Fatalf("no output: %v", err)
			}
		})
	}
}

func TestEncodeWebPHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, testImage(), ".WEBP"); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	b := buf.Bytes()
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Errorf("not a webp container: % x", b[:min(len(b), 12)])
	}
}

func TestEncodeTGARoundTrip(t *testing.T) {
	var buf bytes.Buffer
	src := testImage()
	if err := EncodeImage(&buf, src, ".tga"); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	img, err := tga.Decode(&buf)
	if err != nil {
		t.Fatalf("tga.Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Fatalf("bounds %v", img.Bounds())
	}
	r, g, b, _ := img.At(15, 7).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("pixel (15,7) = %d,%d,%d, want green", r>>8, g>>8, b>>8)
	}
}

func TestSaveImageUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	if err := SaveImage(path, testImage()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("unsupported format should not create a file")
	}
}

func TestDownsample(t *testing.T) {
	src := NewFramebuffer(64, 32)
	src.BG = ColorWhite
	src.Clear()
	out := Downsample(src.ToImage(), 32, 16)
	if out.Bounds().Dx() != 32 || out.Bounds().Dy() != 16 {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if r, _, _, _ := out.At(10, 10).RGBA(); r>>8 < 250 {
		t.Errorf("white stays white, got r=%d", r>>8)
	}
	same := testImage()
	if Downsample(same, 16, 8) != same {
		t.Error("same size should return the input")
	}
}

package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	xdraw "golang.org/x/image/draw"
)

// ErrUnsupportedFormat is returned by SaveImage for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageExtensions lists the extensions SaveImage understands.
var ImageExtensions = []string{".png", ".webp", ".tga"}

// EncodeImage writes img to w in the format named by ext.
func EncodeImage(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	case ".tga":
		return tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q (use .png, .webp or .tga)", ErrUnsupportedFormat, ext)
	}
}

// SaveImage writes img to path, picking the encoder from the file extension.
func SaveImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(ImageExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeImage(f, img, ext); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Downsample scales a supersampled frame down to width x height with
// Catmull-Rom filtering, which smooths the one pixel wireframe lines.
func Downsample(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		if rgba, ok := img.(*image.RGBA); ok {
			return rgba
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelFace is the fixed 7x13 face used for corner and marker names.
var LabelFace font.Face = basicfont.Face7x13

// labelOffset nudges text right of and above the point it names.
var labelOffset = image.Pt(4, -3)

// DrawLabels writes each label's text next to its pixel.
func DrawLabels(dst draw.Image, labels []Label, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: LabelFace,
	}
	for _, lb := range labels {
		at := image.Pt(lb.At.X, lb.At.Y).Add(labelOffset)
		d.Dot = fixed.P(at.X, at.Y)
		d.DrawString(lb.Text)
	}
}

// LabelWidth returns the rendered width of text in pixels.
func LabelWidth(text string) int {
	return font.MeasureString(LabelFace, text).Ceil()
}

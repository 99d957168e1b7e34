package preview

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/smazurov/videoconcat/internal/media"
)

const captionPadding = 3

var captionBand = color.RGBA{A: 160}

// Render converts f to an image with c drawn in its top left corner.
func Render(f media.Frame, c Caption) (*image.RGBA, error) {
	img, err := ToImage(f)
	if err != nil {
		return nil, err
	}
	DrawCaption(img, c)
	return img, nil
}

// DrawCaption draws the caption lines in white over a translucent band.
// Text that does not fit the image is clipped.
func DrawCaption(img *image.RGBA, c Caption) {
	face := basicfont.Face7x13
	lines := strings.Split(c.String(), "\n")

	d := &font.Drawer{Dst: img, Src: image.White, Face: face}
	width := 0
	for _, line := range lines {
		width = max(width, d.MeasureString(line).Ceil())
	}
	band := image.Rect(0, 0, width+2*captionPadding, len(lines)*face.Height+2*captionPadding)
	draw.Draw(img, band.Intersect(img.Bounds()), image.NewUniform(captionBand), image.Point{}, draw.Over)

	for i, line := range lines {
		d.Dot = fixed.P(captionPadding, captionPadding+face.Ascent+i*face.Height)
		d.DrawString(line)
	}
}

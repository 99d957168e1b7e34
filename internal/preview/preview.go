// Package preview shows a sampled frame while a concatenation runs.
package preview

import (
	"fmt"
	"image"

	"github.com/smazurov/videoconcat/internal/media"
)

// Caption identifies a previewed frame within the output.
type Caption struct {
	Index     int     `json:"index" doc:"Output frame index"`
	Timestamp float64 `json:"timestamp" doc:"Output timestamp in seconds"`
}

func (c Caption) String() string {
	return fmt.Sprintf("Frame #%d\nTime %.1fs", c.Index, c.Timestamp)
}

// Previewer displays frames. Show must not block for longer than it takes to
// hand the frame off to the display.
type Previewer interface {
	Show(frame media.Frame, caption Caption) error
}

// Noop discards every frame. It is used when preview is disabled.
type Noop struct{}

// Show implements Previewer.
func (Noop) Show(media.Frame, Caption) error { return nil }

// ToImage copies an RGB24 frame into an RGBA image.
func ToImage(f media.Frame) (*image.RGBA, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	if want := media.FrameSize(f.Width, f.Height); len(f.Pix) < want {
		return nil, fmt.Errorf("short frame: %d bytes, want %d", len(f.Pix), want)
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	src, dst := f.Pix, img.Pix
	for i, j := 0, 0; j < len(dst); i, j = i+3, j+4 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		dst[j+3] = 0xff
	}
	return img, nil
}

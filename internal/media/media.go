// Package media defines the contract between the frame relay and the
// multimedia backend that actually decodes and encodes video.
package media

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Metadata describes the video stream of a file.
type Metadata struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FrameRate   float64 `json:"frame_rate"`
	PixelFormat string  `json:"pixel_format"`
	Codec       string  `json:"codec"`
}

// Size returns the frame size as "WxH".
func (m Metadata) Size() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// FormatFrameRate renders a frame rate with the shortest exact decimal and
// at least one fractional digit: 25 prints as "25.0", 30000/1001 as
// "29.97002997002997".
func FormatFrameRate(rate float64) string {
	s := strconv.FormatFloat(rate, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Frame is one decoded RGB24 image. Pix holds Width*Height*3 bytes, row by
// row. Readers may reuse Pix on the next read, so a frame must not be held
// beyond the iteration that produced it.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// FrameSize returns the number of bytes of an RGB24 frame of the given size.
func FrameSize(width, height int) int {
	return width * height * 3
}

// Reader yields the frames of one input file in order.
type Reader interface {
	// Metadata returns the stream metadata probed when the reader was opened.
	Metadata() Metadata
	// ReadFrame returns the next frame, or io.EOF once the stream is exhausted.
	ReadFrame() (Frame, error)
	// Close releases the decoder.
	Close() error
}

// Writer accepts frames for one output file.
type Writer interface {
	// WriteFrame encodes one frame.
	WriteFrame(f Frame) error
	// Close flushes and finalizes the output.
	Close() error
}

// WriterConfig configures an output encoder.
type WriterConfig struct {
	Width       int
	Height      int
	FrameRate   float64
	PixelFormat string
	Codec       string
	// Quality ranges from 0 to 10, 10 being the best.
	Quality   int
	Overwrite bool
}

// Backend opens readers and writers.
type Backend interface {
	OpenReader(path string) (Reader, error)
	OpenWriter(path string, cfg WriterConfig) (Writer, error)
}

var pixelFormatToken = regexp.MustCompile(`^[0-9A-Za-z]+`)

// SanitizePixelFormat strips decorations such as "(tv, bt709)" from a pixel
// format description, keeping the leading alphanumeric token.
func SanitizePixelFormat(pixfmt string) string {
	return pixelFormatToken.FindString(pixfmt)
}

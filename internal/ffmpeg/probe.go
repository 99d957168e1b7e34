package ffmpeg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smazurov/videoconcat/internal/media"
)

// ProbeOutput is the subset of `ffprobe -of json` output we request.
type ProbeOutput struct {
	Streams []ProbeStream `json:"streams"`
}

// ProbeStream is one stream entry of ffprobe output.
type ProbeStream struct {
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	PixFmt       string `json:"pix_fmt,omitempty"`
	RFrameRate   string `json:"r_frame_rate,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
}

// ErrNoVideoStream is returned when the input has no decodable video stream.
var ErrNoVideoStream = errors.New("no video stream")

// ParseProbeOutput converts ffprobe JSON into stream metadata. The average
// frame rate is preferred; the base rate is used when it is missing or 0/0.
func ParseProbeOutput(data []byte) (media.Metadata, error) {
	var out ProbeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return media.Metadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return media.Metadata{}, ErrNoVideoStream
	}

	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return media.Metadata{}, fmt.Errorf("%w: invalid size %dx%d", ErrNoVideoStream, s.Width, s.Height)
	}

	rate, err := ParseRate(s.AvgFrameRate)
	if err != nil || rate == 0 {
		rate, err = ParseRate(s.RFrameRate)
		if err != nil {
			return media.Metadata{}, fmt.Errorf("frame rate: %w", err)
		}
	}

	return media.Metadata{
		Width:       s.Width,
		Height:      s.Height,
		FrameRate:   rate,
		PixelFormat: s.PixFmt,
		Codec:       s.CodecName,
	}, nil
}

// ParseRate parses an ffprobe rate such as "30000/1001" or "25". "0/0"
// yields 0 without error.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty rate")
	}

	num, den, isFraction := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	if !isFraction {
		return n, nil
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

package ffmpeg

import (
	"errors"
	"math"
	"testing"

	"github.com/smazurov/videoconcat/internal/media"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "25", want: 25},
		{in: "25/1", want: 25},
		{in: "30000/1001", want: 30000.0 / 1001},
		{in: " 24000/1001 ", want: 24000.0 / 1001},
		{in: "0/0", want: 0},
		{in: "", wantErr: true},
		{in: "fast", wantErr: true},
		{in: "30/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRate(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRate(%q): %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseRate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    media.Metadata
		wantErr error
	}{
		{
			name: "average rate",
			json: `{"programs":[],"streams":[{"codec_name":"h264","width":1920,"height":1080,"pix_fmt":"yuv420p","r_frame_rate":"60/1","avg_frame_rate":"30/1"}]}`,
			want: media.Metadata{Width: 1920, Height: 1080, FrameRate: 30, PixelFormat: "yuv420p", Codec: "h264"},
		},
		{
			name: "falls back to base rate",
			json: `{"streams":[{"codec_name":"vp9","width":640,"height":360,"pix_fmt":"yuv420p","r_frame_rate":"25/1","avg_frame_rate":"0/0"}]}`,
			want: media.Metadata{Width: 640, Height: 360, FrameRate: 25, PixelFormat: "yuv420p", Codec: "vp9"},
		},
		{
			name: "missing average rate",
			json: `{"streams":[{"codec_name":"mpeg4","width":320,"height":240,"pix_fmt":"yuv420p","r_frame_rate":"24/1"}]}`,
			want: media.Metadata{Width: 320, Height: 240, FrameRate: 24, PixelFormat: "yuv420p", Codec: "mpeg4"},
		},
		{
			name:    "no streams",
			json:    `{"streams":[]}`,
			wantErr: ErrNoVideoStream,
		},
		{
			name:    "zero size",
			json:    `{"streams":[{"codec_name":"h264","width":0,"height":0,"r_frame_rate":"25/1"}]}`,
			wantErr: ErrNoVideoStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbeOutput([]byte(tt.json))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProbeOutput: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	if _, err := ParseProbeOutput([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

package models

import (
	"github.com/smazurov/videoconcat/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionResponse struct {
	Body version.Info
}

// PreviewInfo describes the most recently previewed frame.
type PreviewInfo struct {
	Index     int     `json:"index" example:"250" doc:"Output frame index"`
	Timestamp float64 `json:"timestamp" example:"10" doc:"Output timestamp in seconds"`
	Sequence  uint64  `json:"sequence" example:"3" doc:"Number of previews shown so far"`
}

// StatusData is the progress of the running concatenation.
type StatusData struct {
	Inputs             []string     `json:"inputs" doc:"Input files in concatenation order"`
	Output             string       `json:"output" example:"out.mp4" doc:"Output file"`
	CurrentIndex       int          `json:"current_index" example:"0" doc:"Index of the input being read, -1 before the first"`
	CurrentInput       string       `json:"current_input,omitempty" example:"clip1.mp4" doc:"Input being read"`
	InputFrames        int          `json:"input_frames" example:"1200" doc:"Frames decoded so far"`
	OutputFrames       int          `json:"output_frames" example:"400" doc:"Frames written so far"`
	DroppedFrames      int          `json:"dropped_frames" example:"800" doc:"Frames dropped by the speedup rule"`
	OutputDuration     float64      `json:"output_duration" example:"16" doc:"Output length at the last status in seconds"`
	ProcessingFPS      float64      `json:"processing_fps" example:"240.5" doc:"Input frames per second of wall time"`
	ProcessingDuration float64      `json:"processing_duration" example:"5" doc:"Wall time at the last status in seconds"`
	Finished           bool         `json:"finished" example:"false" doc:"Whether the output has been closed"`
	Preview            *PreviewInfo `json:"preview,omitempty" doc:"Latest preview, if any"`
}

type StatusResponse struct {
	Body StatusData
}

// PreviewResponse carries the latest preview as a JPEG image.
type PreviewResponse struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Sequence     string `header:"X-Preview-Sequence"`
	Body         []byte
}

package events

// Event type constants for kelindar/event.
const (
	TypeInputOpened uint32 = iota + 1
	TypeStatus
	TypePreview
	TypeFinished
	TypeMetrics
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// InputOpenedEvent is published when the relay starts reading an input.
type InputOpenedEvent struct {
	Index     int    `json:"index" example:"0" doc:"Position of the input in concatenation order"`
	Path      string `json:"path" example:"clip1.mp4" doc:"Input file path"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for InputOpenedEvent.
func (e InputOpenedEvent) Type() uint32 { return TypeInputOpened }

// StatusEvent carries a periodic status report.
type StatusEvent struct {
	ProcessingDuration float64 `json:"processing_duration" example:"12.5" doc:"Seconds since processing started"`
	InputFrames        int     `json:"input_frames" example:"300" doc:"Frames read so far"`
	OutputFrames       int     `json:"output_frames" example:"100" doc:"Frames written so far"`
	OutputDuration     float64 `json:"output_duration" example:"4" doc:"Playback length of the output so far, in seconds"`
	Timestamp          string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StatusEvent.
func (e StatusEvent) Type() uint32 { return TypeStatus }

// PreviewEvent announces a new preview frame.
type PreviewEvent struct {
	Index     int     `json:"index" example:"100" doc:"Output frame index"`
	Time      float64 `json:"time" example:"4" doc:"Output timestamp in seconds"`
	Sequence  uint64  `json:"sequence" example:"2" doc:"Preview sequence number, usable as a cache buster"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PreviewEvent.
func (e PreviewEvent) Type() uint32 { return TypePreview }

// FinishedEvent is published once the output has been finalized.
type FinishedEvent struct {
	ProcessingDuration float64 `json:"processing_duration" example:"42.1" doc:"Total processing time in seconds"`
	InputFrames        int     `json:"input_frames" example:"3000" doc:"Total frames read"`
	OutputFrames       int     `json:"output_frames" example:"1000" doc:"Total frames written"`
	InputRate          float64 `json:"input_rate" example:"71.3" doc:"Input frames per second of processing"`
	OutputRate         float64 `json:"output_rate" example:"23.8" doc:"Output frames per second of processing"`
	Timestamp          string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FinishedEvent.
func (e FinishedEvent) Type() uint32 { return TypeFinished }

// MetricsEvent is a periodic snapshot of relay counters.
type MetricsEvent struct {
	EventType     string `json:"type" example:"relay_metrics" doc:"Event type identifier"`
	InputFrames   string `json:"input_frames" example:"300" doc:"Frames read"`
	OutputFrames  string `json:"output_frames" example:"100" doc:"Frames written"`
	DroppedFrames string `json:"dropped_frames" example:"200" doc:"Frames dropped by speedup"`
	FPS           string `json:"fps" example:"71.30" doc:"Input frames processed per second"`
}

// Type returns the event type identifier for MetricsEvent.
func (e MetricsEvent) Type() uint32 { return TypeMetrics }

package relay

import (
	"fmt"
	"time"
)

// Status is a snapshot of an in-progress run.
type Status struct {
	Elapsed        time.Duration `json:"elapsed"`
	InputFrames    int           `json:"input_frames"`
	OutputFrames   int           `json:"output_frames"`
	OutputDuration float64       `json:"output_duration"`
}

func (s Status) String() string {
	return fmt.Sprintf("Status: processing_duration=%.0fs input_frames=%d output_frames=%d output_duration=%.0fs",
		s.Elapsed.Seconds(), s.InputFrames, s.OutputFrames, s.OutputDuration)
}

// Summary describes a finished run.
type Summary struct {
	Elapsed      time.Duration `json:"elapsed"`
	InputFrames  int           `json:"input_frames"`
	OutputFrames int           `json:"output_frames"`
	FrameRate    float64       `json:"frame_rate"`
}

// InputRate is input frames per second of processing time, 0 when no time
// has elapsed.
func (s Summary) InputRate() float64 {
	return rate(s.InputFrames, s.Elapsed)
}

// OutputRate is output frames per second of processing time, 0 when no time
// has elapsed.
func (s Summary) OutputRate() float64 {
	return rate(s.OutputFrames, s.Elapsed)
}

// OutputDuration is the playback length of the output in seconds.
func (s Summary) OutputDuration() float64 {
	if s.FrameRate <= 0 {
		return 0
	}
	return float64(s.OutputFrames) / s.FrameRate
}

func rate(frames int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(frames) / elapsed.Seconds()
}

// Observer is notified of relay progress. Calls happen on the relay's
// goroutine and must not block. FrameRead reports every decoded frame and
// whether the speedup rule kept it; FrameWritten follows once a kept frame
// was accepted by the encoder.
type Observer interface {
	InputOpened(index int, path string)
	FrameRead(kept bool)
	FrameWritten()
	Status(Status)
	Finished(Summary)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) InputOpened(int, string) {}
func (NopObserver) FrameRead(bool)          {}
func (NopObserver) FrameWritten()           {}
func (NopObserver) Status(Status)           {}
func (NopObserver) Finished(Summary)        {}

// Observers fans notifications out to each observer in order.
type Observers []Observer

func (o Observers) InputOpened(index int, path string) {
	for _, obs := range o {
		obs.InputOpened(index, path)
	}
}

func (o Observers) FrameRead(kept bool) {
	for _, obs := range o {
		obs.FrameRead(kept)
	}
}

func (o Observers) FrameWritten() {
	for _, obs := range o {
		obs.FrameWritten()
	}
}

func (o Observers) Status(s Status) {
	for _, obs := range o {
		obs.Status(s)
	}
}

func (o Observers) Finished(s Summary) {
	for _, obs := range o {
		obs.Finished(s)
	}
}

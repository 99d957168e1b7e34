// Package metrics provides Prometheus metrics for the frame relay.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/videoconcat/internal/relay"
)

const (
	namespace = "videoconcat"
	subsystem = "relay"
)

// Snapshot holds current metric values.
type Snapshot struct {
	InputFrames    int
	OutputFrames   int
	DroppedFrames  int
	InputsOpened   int
	OutputDuration float64
	ProcessingFPS  float64
	Finished       bool
}

// Relay records relay progress as Prometheus metrics. It implements
// relay.Observer.
type Relay struct {
	inputFrames    prometheus.Counter
	outputFrames   prometheus.Counter
	droppedFrames  prometheus.Counter
	inputsOpened   prometheus.Counter
	outputDuration prometheus.Gauge
	processingFPS  prometheus.Gauge

	// Local cache for SSE exporter access.
	mu   sync.RWMutex
	snap Snapshot
}

// NewRelay creates the relay metrics and registers them on reg.
func NewRelay(reg prometheus.Registerer) *Relay {
	factory := promauto.With(reg)
	return &Relay{
		inputFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "input_frames_total",
			Help:      "Frames decoded from all inputs",
		}),
		outputFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "output_frames_total",
			Help:      "Frames written to the output",
		}),
		droppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_frames_total",
			Help:      "Frames dropped by the speedup rule",
		}),
		inputsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inputs_opened_total",
			Help:      "Input files opened for reading",
		}),
		outputDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "output_duration_seconds",
			Help:      "Playback length of the output written so far",
		}),
		processingFPS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "processing_fps",
			Help:      "Input frames processed per second of wall time",
		}),
	}
}

// InputOpened implements relay.Observer.
func (r *Relay) InputOpened(int, string) {
	r.inputsOpened.Inc()
	r.update(func(s *Snapshot) { s.InputsOpened++ })
}

// FrameRead implements relay.Observer.
func (r *Relay) FrameRead(kept bool) {
	r.inputFrames.Inc()
	if !kept {
		r.droppedFrames.Inc()
	}
	r.update(func(s *Snapshot) {
		s.InputFrames++
		if !kept {
			s.DroppedFrames++
		}
	})
}

// FrameWritten implements relay.Observer. Output frames are counted only
// once the encoder accepted them, matching the relay's own count.
func (r *Relay) FrameWritten() {
	r.outputFrames.Inc()
	r.update(func(s *Snapshot) { s.OutputFrames++ })
}

// Status implements relay.Observer.
func (r *Relay) Status(st relay.Status) {
	fps := 0.0
	if st.Elapsed > 0 {
		fps = float64(st.InputFrames) / st.Elapsed.Seconds()
	}
	r.outputDuration.Set(st.OutputDuration)
	r.processingFPS.Set(fps)
	r.update(func(s *Snapshot) {
		s.OutputDuration = st.OutputDuration
		s.ProcessingFPS = fps
	})
}

// Finished implements relay.Observer.
func (r *Relay) Finished(sum relay.Summary) {
	r.outputDuration.Set(sum.OutputDuration())
	r.processingFPS.Set(sum.InputRate())
	r.update(func(s *Snapshot) {
		s.OutputDuration = sum.OutputDuration()
		s.ProcessingFPS = sum.InputRate()
		s.Finished = true
	})
}

// Snapshot returns current metric values.
func (r *Relay) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

func (r *Relay) update(fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.snap)
}

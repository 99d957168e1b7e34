package exporters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/videoconcat/internal/events"
	"github.com/smazurov/videoconcat/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SnapshotSource provides current metric values.
type SnapshotSource interface {
	Snapshot() metrics.Snapshot
}

// SSEExporter periodically publishes relay metrics as events, for consumers
// of the Server-Sent Events stream.
type SSEExporter struct {
	source   SnapshotSource
	eventBus EventPublisher
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(source SnapshotSource, eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		source:   source,
		eventBus: eventBus,
		interval: 1 * time.Second,
	}
}

// Start begins the SSE export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
}

// Stop stops the SSE exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var last metrics.Snapshot
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			// Nothing new since the last tick.
			if snap := s.source.Snapshot(); snap != last {
				s.publishMetrics(snap)
				last = snap
			}
		}
	}
}

func (s *SSEExporter) publishMetrics(m metrics.Snapshot) {
	s.eventBus.Publish(MetricsEvent(m))
}

// MetricsEvent converts a snapshot into its event form.
func MetricsEvent(m metrics.Snapshot) events.MetricsEvent {
	return events.MetricsEvent{
		EventType:     "relay_metrics",
		InputFrames:   strconv.Itoa(m.InputFrames),
		OutputFrames:  strconv.Itoa(m.OutputFrames),
		DroppedFrames: strconv.Itoa(m.DroppedFrames),
		FPS:           strconv.FormatFloat(m.ProcessingFPS, 'f', 2, 64),
	}
}

// GetEventTypes returns event types for SSE endpoint registration.
func GetEventTypes() map[string]any {
	return map[string]any{
		"relay-metrics": events.MetricsEvent{},
	}
}

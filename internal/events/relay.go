package events

import (
	"time"

	"github.com/smazurov/videoconcat/internal/preview"
	"github.com/smazurov/videoconcat/internal/relay"
)

// Publisher is the subset of Bus used by publishers.
type Publisher interface {
	Publish(ev Event)
}

// RelayPublisher turns relay progress and previews into bus events.
type RelayPublisher struct {
	bus Publisher
	now func() time.Time
}

// NewRelayPublisher creates a publisher for bus.
func NewRelayPublisher(bus Publisher) *RelayPublisher {
	return &RelayPublisher{bus: bus, now: time.Now}
}

func (p *RelayPublisher) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}

// InputOpened implements relay.Observer.
func (p *RelayPublisher) InputOpened(index int, path string) {
	p.bus.Publish(InputOpenedEvent{Index: index, Path: path, Timestamp: p.timestamp()})
}

// FrameRead implements relay.Observer. Per-frame notifications are not
// published; MetricsEvent covers frame counts.
func (p *RelayPublisher) FrameRead(bool) {}

// FrameWritten implements relay.Observer.
func (p *RelayPublisher) FrameWritten() {}

// Status implements relay.Observer.
func (p *RelayPublisher) Status(s relay.Status) {
	p.bus.Publish(StatusEvent{
		ProcessingDuration: s.Elapsed.Seconds(),
		InputFrames:        s.InputFrames,
		OutputFrames:       s.OutputFrames,
		OutputDuration:     s.OutputDuration,
		Timestamp:          p.timestamp(),
	})
}

// Finished implements relay.Observer.
func (p *RelayPublisher) Finished(s relay.Summary) {
	p.bus.Publish(FinishedEvent{
		ProcessingDuration: s.Elapsed.Seconds(),
		InputFrames:        s.InputFrames,
		OutputFrames:       s.OutputFrames,
		InputRate:          s.InputRate(),
		OutputRate:         s.OutputRate(),
		Timestamp:          p.timestamp(),
	})
}

// Preview publishes a PreviewEvent. Its signature matches preview.Latest.OnShow.
func (p *RelayPublisher) Preview(c preview.Caption, seq uint64) {
	p.bus.Publish(PreviewEvent{Index: c.Index, Time: c.Timestamp, Sequence: seq, Timestamp: p.timestamp()})
}

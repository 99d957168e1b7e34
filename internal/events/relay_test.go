package events

import (
	"testing"
	"time"

	"github.com/smazurov/videoconcat/internal/preview"
	"github.com/smazurov/videoconcat/internal/relay"
)

type recorder struct {
	events []Event
}

func (r *recorder) Publish(ev Event) {
	r.events = append(r.events, ev)
}

func TestRelayPublisher(t *testing.T) {
	rec := &recorder{}
	p := NewRelayPublisher(rec)
	p.now = func() time.Time { return time.Date(2025, 1, 27, 10, 30, 0, 0, time.UTC) }

	var _ relay.Observer = p

	p.InputOpened(1, "b.mp4")
	p.FrameRead(true)
	p.FrameWritten()
	p.Status(relay.Status{Elapsed: 2 * time.Second, InputFrames: 50, OutputFrames: 25, OutputDuration: 1})
	p.Preview(preview.Caption{Index: 25, Timestamp: 1}, 2)
	p.Finished(relay.Summary{Elapsed: 4 * time.Second, InputFrames: 100, OutputFrames: 50, FrameRate: 25})

	const ts = "2025-01-27T10:30:00Z"
	want := []Event{
		InputOpenedEvent{Index: 1, Path: "b.mp4", Timestamp: ts},
		StatusEvent{ProcessingDuration: 2, InputFrames: 50, OutputFrames: 25, OutputDuration: 1, Timestamp: ts},
		PreviewEvent{Index: 25, Time: 1, Sequence: 2, Timestamp: ts},
		FinishedEvent{ProcessingDuration: 4, InputFrames: 100, OutputFrames: 50, InputRate: 25, OutputRate: 12.5, Timestamp: ts},
	}

	if len(rec.events) != len(want) {
		t.Fatalf("published %d events, want %d: %+v", len(rec.events), len(want), rec.events)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, rec.events[i], want[i])
		}
	}
}

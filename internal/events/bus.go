package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(StatusEvent{...})
func (b *Bus) Publish(ev Event) {
	// Use type switch to call the generic Publish with the correct type
	switch e := ev.(type) {
	case InputOpenedEvent:
		event.Publish(b.dispatcher, e)
	case StatusEvent:
		event.Publish(b.dispatcher, e)
	case PreviewEvent:
		event.Publish(b.dispatcher, e)
	case FinishedEvent:
		event.Publish(b.dispatcher, e)
	case MetricsEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e StatusEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(InputOpenedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StatusEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PreviewEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(MetricsEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}

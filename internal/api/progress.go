package api

import (
	"sync"

	"github.com/smazurov/videoconcat/internal/api/models"
	"github.com/smazurov/videoconcat/internal/events"
)

// progress keeps the last relay events seen on the bus.
type progress struct {
	mu       sync.RWMutex
	input    *events.InputOpenedEvent
	status   *events.StatusEvent
	finished *events.FinishedEvent
}

func (p *progress) subscribe(bus *events.Bus) []func() {
	return []func(){
		bus.Subscribe(func(e events.InputOpenedEvent) {
			p.mu.Lock()
			p.input = &e
			p.mu.Unlock()
		}),
		bus.Subscribe(func(e events.StatusEvent) {
			p.mu.Lock()
			p.status = &e
			p.mu.Unlock()
		}),
		bus.Subscribe(func(e events.FinishedEvent) {
			p.mu.Lock()
			p.finished = &e
			p.mu.Unlock()
		}),
	}
}

// fill copies the tracked events into data.
func (p *progress) fill(data *models.StatusData) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data.CurrentIndex = -1
	if p.input != nil {
		data.CurrentIndex = p.input.Index
		data.CurrentInput = p.input.Path
	}
	if p.status != nil {
		data.ProcessingDuration = p.status.ProcessingDuration
		data.OutputDuration = p.status.OutputDuration
	}
	if p.finished != nil {
		data.ProcessingDuration = p.finished.ProcessingDuration
		data.Finished = true
	}
}

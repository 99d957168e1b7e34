package api

import (
	"context"
	"maps"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/videoconcat/internal/api/models"
	"github.com/smazurov/videoconcat/internal/events"
	"github.com/smazurov/videoconcat/internal/metrics/exporters"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of opened inputs, status lines, previews and relay metrics",
		Tags:        []string{"events"},
	}, func() map[string]any {
		eventTypes := map[string]any{
			"progress":     models.StatusData{},
			"input-opened": events.InputOpenedEvent{},
			"status":       events.StatusEvent{},
			"preview":      events.PreviewEvent{},
			"finished":     events.FinishedEvent{},
		}
		maps.Copy(eventTypes, exporters.GetEventTypes())
		return eventTypes
	}(), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		stream := events.NewStream(s.eventBus, 32)
		defer func() {
			stream.Close()
			if n := stream.Dropped(); n > 0 {
				s.logger.Warn("SSE client fell behind, events dropped", "dropped", n)
			}
		}()

		// The first message is the current progress, so a client that
		// connects mid-run can render without waiting for the next event.
		if err := send.Data(s.status()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-stream.Events():
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

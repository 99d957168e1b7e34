package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/smazurov/videoconcat/internal/api/models"
	"github.com/smazurov/videoconcat/internal/events"
	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/metrics"
	"github.com/smazurov/videoconcat/internal/preview"
	"github.com/smazurov/videoconcat/internal/version"
	"github.com/smazurov/videoconcat/ui"
)

// PreviewSource provides the latest previewed frame.
type PreviewSource interface {
	Snapshot() (preview.Snapshot, bool)
}

// MetricsSource provides current relay counters.
type MetricsSource interface {
	Snapshot() metrics.Snapshot
}

// Options configures the status server. Every source is optional.
type Options struct {
	Inputs            []string
	Output            string
	EventBus          *events.Bus
	Previews          PreviewSource
	Metrics           MetricsSource
	PrometheusHandler http.Handler
}

// Server serves progress, previews and metrics of one concatenation.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	listener   net.Listener
	options    *Options
	eventBus   *events.Bus
	progress   *progress
	unsubs     []func()
	stopOnce   sync.Once
	logger     *slog.Logger
}

// NewServer creates the API server with huma on the Go 1.22+ ServeMux.
func NewServer(opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("videoconcat", version.String())
	config.Info.Description = "Progress, preview and metrics of a running concatenation"
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)

	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		eventBus: opts.EventBus,
		progress: &progress{},
		logger:   logging.GetLogger("api"),
	}
	if server.eventBus == nil {
		server.eventBus = events.New()
	}
	server.unsubs = server.progress.subscribe(server.eventBus)

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()

	mux.Handle("GET /{$}", ui.Handler())

	return server
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("Status server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the server and all open connections.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		for _, unsub := range s.unsubs {
			unsub()
		}
		if s.httpServer != nil {
			s.logger.Info("Stopping status server")
			err = s.httpServer.Close()
		}
	})
	return err
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Status",
		Description: "Progress of the running concatenation",
		Tags:        []string{"relay"},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{Body: s.status()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-preview",
		Method:      http.MethodGet,
		Path:        "/api/preview",
		Summary:     "Preview",
		Description: "Latest previewed frame as JPEG",
		Tags:        []string{"relay"},
		Errors:      []int{404},
	}, func(_ context.Context, _ *struct{}) (*models.PreviewResponse, error) {
		if s.options.Previews == nil {
			return nil, huma.Error404NotFound("preview is not enabled")
		}
		snap, ok := s.options.Previews.Snapshot()
		if !ok {
			return nil, huma.Error404NotFound("no frame previewed yet")
		}
		return &models.PreviewResponse{
			ContentType:  "image/jpeg",
			CacheControl: "no-store",
			Sequence:     strconv.FormatUint(snap.Sequence, 10),
			Body:         snap.JPEG,
		}, nil
	})

	s.registerSSERoutes()
}

// status assembles the current progress from the tracked events, the
// metrics snapshot and the latest preview.
func (s *Server) status() models.StatusData {
	data := models.StatusData{
		Inputs: slices.Clone(s.options.Inputs),
		Output: s.options.Output,
	}
	if data.Inputs == nil {
		data.Inputs = []string{}
	}
	s.progress.fill(&data)

	if s.options.Metrics != nil {
		snap := s.options.Metrics.Snapshot()
		data.InputFrames = snap.InputFrames
		data.OutputFrames = snap.OutputFrames
		data.DroppedFrames = snap.DroppedFrames
		data.OutputDuration = snap.OutputDuration
		data.ProcessingFPS = snap.ProcessingFPS
		data.Finished = data.Finished || snap.Finished
	}

	if s.options.Previews != nil {
		if snap, ok := s.options.Previews.Snapshot(); ok {
			data.Preview = &models.PreviewInfo{
				Index:     snap.Caption.Index,
				Timestamp: snap.Caption.Timestamp,
				Sequence:  snap.Sequence,
			}
		}
	}
	return data
}

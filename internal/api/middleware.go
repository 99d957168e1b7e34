package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/videoconcat/internal/logging"
)

// HTTPLoggingMiddleware logs each request once it completes. The status page
// polls previews and status several times a second, so successful reads are
// logged at debug level and only failures surface by default.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()

	next(ctx)

	status := ctx.Status()
	attrs := []slog.Attr{
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.URL().Path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	}
	logging.GetLogger("http").LogAttrs(ctx.Context(), requestLevel(ctx.Method(), ctx.URL().Path, status), "HTTP request completed", attrs...)
}

func requestLevel(method, path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status == http.StatusNotFound && path == "/api/preview":
		// No frame shown yet.
		return slog.LevelDebug
	case status >= 400:
		return slog.LevelWarn
	case method == http.MethodOptions, strings.HasPrefix(path, "/api/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

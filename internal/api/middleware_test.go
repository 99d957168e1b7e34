package api

import (
	"log/slog"
	"net/http"
	"testing"
)

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		method string
		path   string
		status int
		want   slog.Level
	}{
		{http.MethodGet, "/", 200, slog.LevelInfo},
		{http.MethodGet, "/api/status", 200, slog.LevelDebug},
		{http.MethodGet, "/api/preview", 200, slog.LevelDebug},
		{http.MethodGet, "/api/preview", 404, slog.LevelDebug},
		{http.MethodGet, "/api/nope", 404, slog.LevelWarn},
		{http.MethodOptions, "/", 204, slog.LevelDebug},
		{http.MethodGet, "/api/status", 500, slog.LevelError},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.method, tt.path, tt.status); got != tt.want {
			t.Errorf("requestLevel(%s %s %d) = %v, want %v", tt.method, tt.path, tt.status, got, tt.want)
		}
	}
}

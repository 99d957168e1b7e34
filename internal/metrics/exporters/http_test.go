package exporters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smazurov/videoconcat/internal/metrics"
)

func TestHTTPHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRelay(reg)

	handler := HTTPHandler(reg)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	// Record something so there's something to export
	m.FrameRead(true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "videoconcat_relay_input_frames_total 1") {
		t.Errorf("expected relay metrics in response, got:\n%s", body)
	}
}

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/videoconcat/internal/relay"
)

func gather(t *testing.T, m *Relay) map[string]float64 {
	t.Helper()
	return map[string]float64{
		"videoconcat_relay_inputs_opened_total":     testutil.ToFloat64(m.inputsOpened),
		"videoconcat_relay_input_frames_total":      testutil.ToFloat64(m.inputFrames),
		"videoconcat_relay_output_frames_total":     testutil.ToFloat64(m.outputFrames),
		"videoconcat_relay_dropped_frames_total":    testutil.ToFloat64(m.droppedFrames),
		"videoconcat_relay_output_duration_seconds": testutil.ToFloat64(m.outputDuration),
		"videoconcat_relay_processing_fps":          testutil.ToFloat64(m.processingFPS),
	}
}

func TestRelayMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRelay(reg)

	var _ relay.Observer = m

	m.InputOpened(0, "a.mp4")
	m.InputOpened(1, "b.mp4")
	for i := 1; i <= 9; i++ {
		m.FrameRead(i%3 == 0)
		if i%3 == 0 {
			m.FrameWritten()
		}
	}
	m.Status(relay.Status{Elapsed: 3 * time.Second, InputFrames: 9, OutputFrames: 3, OutputDuration: 0.12})

	got := gather(t, m)
	want := map[string]float64{
		"videoconcat_relay_inputs_opened_total":     2,
		"videoconcat_relay_input_frames_total":      9,
		"videoconcat_relay_output_frames_total":     3,
		"videoconcat_relay_dropped_frames_total":    6,
		"videoconcat_relay_output_duration_seconds": 0.12,
		"videoconcat_relay_processing_fps":          3,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s = %v, want %v", name, got[name], v)
		}
	}

	if n, err := testutil.GatherAndCount(reg); err != nil || n != len(want) {
		t.Errorf("registry holds %d metrics (err %v), want %d", n, err, len(want))
	}

	snap := m.Snapshot()
	if snap.InputFrames != 9 || snap.OutputFrames != 3 || snap.DroppedFrames != 6 || snap.InputsOpened != 2 {
		t.Errorf("Snapshot() = %+v", snap)
	}
	if snap.Finished {
		t.Error("Snapshot should not be finished yet")
	}
}

func TestRelayMetricsCountOnlyWrittenFrames(t *testing.T) {
	m := NewRelay(prometheus.NewRegistry())

	// Two kept frames were read but the encoder failed on the second.
	m.FrameRead(true)
	m.FrameWritten()
	m.FrameRead(true)

	if got := testutil.ToFloat64(m.outputFrames); got != 1 {
		t.Errorf("output_frames_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.inputFrames); got != 2 {
		t.Errorf("input_frames_total = %v, want 2", got)
	}
	if snap := m.Snapshot(); snap.OutputFrames != 1 || snap.DroppedFrames != 0 {
		t.Errorf("Snapshot() = %+v, want 1 output frame and none dropped", snap)
	}
}

func TestRelayMetricsFinished(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRelay(reg)

	m.Finished(relay.Summary{Elapsed: 2 * time.Second, InputFrames: 100, OutputFrames: 50, FrameRate: 25})

	got := gather(t, m)
	if got["videoconcat_relay_output_duration_seconds"] != 2 {
		t.Errorf("output duration = %v, want 2", got["videoconcat_relay_output_duration_seconds"])
	}
	if got["videoconcat_relay_processing_fps"] != 50 {
		t.Errorf("processing fps = %v, want 50", got["videoconcat_relay_processing_fps"])
	}
	if !m.Snapshot().Finished {
		t.Error("Snapshot should be finished")
	}
}

func TestRelayMetricsZeroElapsedStatus(t *testing.T) {
	m := NewRelay(prometheus.NewRegistry())
	m.Status(relay.Status{InputFrames: 10})
	if fps := m.Snapshot().ProcessingFPS; fps != 0 {
		t.Errorf("ProcessingFPS = %v, want 0", fps)
	}
}

func TestRelayMetricsConcurrentSnapshot(t *testing.T) {
	m := NewRelay(prometheus.NewRegistry())
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 1000 {
			m.FrameRead(true)
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			_ = m.Snapshot()
		}
	}()
	wg.Wait()

	if got := m.Snapshot().InputFrames; got != 1000 {
		t.Errorf("InputFrames = %d, want 1000", got)
	}
}

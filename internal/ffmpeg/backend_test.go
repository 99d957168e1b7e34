package ffmpeg

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/videoconcat/internal/media"
	"github.com/smazurov/videoconcat/internal/process"
)

const probeJSON = `{"streams":[{"codec_name":"h264","width":4,"height":2,"pix_fmt":"yuv420p","r_frame_rate":"25/1","avg_frame_rate":"25/1"}]}`

// frameBytes is the size of one 4x2 RGB24 frame.
const frameBytes = 4 * 2 * 3

// writeScript writes an executable shell script into dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// fakeBackend builds a Backend whose ffprobe prints probeJSON and whose
// ffmpeg runs decodeBody for decoders and encodeBody for encoders.
func fakeBackend(t *testing.T, decodeBody, encodeBody string) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	ffprobe := writeScript(t, dir, "ffprobe", "cat <<'EOF'\n"+probeJSON+"\nEOF")
	ffmpeg := writeScript(t, dir, "ffmpeg", `
printf '%s\n' "$@" > "`+dir+`/args"
for a in "$@"; do last="$a"; done
case "$last" in
pipe:1)
`+decodeBody+`
;;
*)
`+encodeBody+`
;;
esac`)
	return NewBackend(Config{FFmpegPath: ffmpeg, FFprobePath: ffprobe}), dir
}

func readAll(t *testing.T, r media.Reader) (int, error) {
	t.Helper()
	n := 0
	for {
		f, err := r.ReadFrame()
		if err != nil {
			return n, err
		}
		if len(f.Pix) != frameBytes {
			t.Fatalf("frame %d has %d bytes, want %d", n, len(f.Pix), frameBytes)
		}
		n++
	}
}

func TestBackendProbe(t *testing.T) {
	b, _ := fakeBackend(t, "", "")
	md, err := b.Probe("in.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := media.Metadata{Width: 4, Height: 2, FrameRate: 25, PixelFormat: "yuv420p", Codec: "h264"}
	if md != want {
		t.Errorf("Probe() = %+v, want %+v", md, want)
	}
}

func TestBackendProbeFailure(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeScript(t, dir, "ffprobe", "echo 'in.mp4: Invalid data found when processing input' >&2; exit 1")
	b := NewBackend(Config{FFprobePath: ffprobe})

	_, err := b.Probe("in.mp4")
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Probe error = %v, want *process.ExitError", err)
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Errorf("error should carry ffprobe stderr, got %q", err)
	}
}

func TestReaderReadsAllFrames(t *testing.T) {
	b, dir := fakeBackend(t, "head -c 48 /dev/zero", "")

	r, err := b.OpenReader("in.mp4")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if r.Metadata().Width != 4 {
		t.Errorf("Metadata() = %+v", r.Metadata())
	}

	n, err := readAll(t, r)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("read error = %v, want io.EOF", err)
	}
	if n != 2 {
		t.Errorf("read %d frames, want 2", n)
	}
	if _, err := r.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame after EOF = %v, want io.EOF", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(args), "rawvideo\n-pix_fmt\nrgb24\npipe:1") {
		t.Errorf("decoder args = %q", args)
	}
}

func TestReaderTruncatedFrame(t *testing.T) {
	b, _ := fakeBackend(t, "head -c 30 /dev/zero", "")
	r, err := b.OpenReader("in.mp4")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	n, err := readAll(t, r)
	if n != 1 {
		t.Errorf("read %d frames, want 1", n)
	}
	if err == nil || errors.Is(err, io.EOF) || !strings.Contains(err.Error(), "truncated frame") {
		t.Errorf("error = %v, want truncated frame", err)
	}
}

func TestReaderDecoderFailure(t *testing.T) {
	b, _ := fakeBackend(t, "echo '[error] moov atom not found' >&2; exit 1", "")
	r, err := b.OpenReader("in.mp4")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	_, err = r.ReadFrame()
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("ReadFrame error = %v, want *process.ExitError", err)
	}
	if exitErr.Code != 1 || len(exitErr.Stderr) == 0 || exitErr.Stderr[0] != "moov atom not found" {
		t.Errorf("exit error = %+v", exitErr)
	}
}

func TestReaderCloseBeforeEOF(t *testing.T) {
	b, _ := fakeBackend(t, "head -c 48 /dev/zero; exec sleep 10", "")
	r, err := b.OpenReader("in.mp4")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if _, err := r.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := r.ReadFrame(); err == nil {
		t.Error("ReadFrame after Close should fail")
	}
}

func TestReaderCloseWithoutReading(t *testing.T) {
	b, dir := fakeBackend(t, "head -c 48 /dev/zero", "")
	r, err := b.OpenReader("in.mp4")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	// The decoder is only started on first read.
	if _, err := os.Stat(filepath.Join(dir, "args")); !os.IsNotExist(err) {
		t.Errorf("decoder should not have run, stat err = %v", err)
	}
}

func TestWriterEncodesFrames(t *testing.T) {
	b, dir := fakeBackend(t, "", `cat > "$last"`)
	out := filepath.Join(dir, "out.mp4")

	w, err := b.OpenWriter(out, media.WriterConfig{
		Width: 4, Height: 2, FrameRate: 25,
		PixelFormat: "yuv420p", Codec: "h264", Quality: 10,
	})
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	frame := media.Frame{Width: 4, Height: 2, Pix: make([]byte, frameBytes)}
	for i := 0; i < 3; i++ {
		if err := w.WriteFrame(frame); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := w.WriteFrame(media.Frame{Pix: []byte{1, 2, 3}}); err == nil {
		t.Error("expected error for a frame of the wrong size")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() != 3*frameBytes {
		t.Errorf("output has %d bytes, want %d", info.Size(), 3*frameBytes)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	for _, want := range []string{"-s\n4x2\n", "-r\n25\n", "-c:v\nh264\n", "-crf\n0\n", "-n\n"} {
		if !strings.Contains(string(args), want) {
			t.Errorf("encoder args missing %q:\n%s", want, args)
		}
	}
}

func TestWriterEncoderFailure(t *testing.T) {
	b, dir := fakeBackend(t, "", "echo '[error] Unknown encoder' >&2; exit 1")

	w, err := b.OpenWriter(filepath.Join(dir, "out.mp4"), media.WriterConfig{Width: 4, Height: 2, FrameRate: 25, Codec: "bogus"})
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	// The write may land in the pipe buffer before the encoder exits.
	_ = w.WriteFrame(media.Frame{Width: 4, Height: 2, Pix: make([]byte, frameBytes)})

	err = w.Close()
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Close error = %v, want *process.ExitError", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Errorf("error should carry encoder stderr, got %q", err)
	}
}

func TestOpenWriterRejectsInvalidConfig(t *testing.T) {
	b, _ := fakeBackend(t, "", "")
	if _, err := b.OpenWriter("out.mp4", media.WriterConfig{Width: 0, Height: 2, FrameRate: 25}); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := b.OpenWriter("out.mp4", media.WriterConfig{Width: 4, Height: 2}); err == nil {
		t.Error("expected error for zero frame rate")
	}
}

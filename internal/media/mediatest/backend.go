// Package mediatest provides an in-memory media.Backend for tests.
package mediatest

import (
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/videoconcat/internal/media"
)

// ErrInjected is the default error returned by injected failures.
var ErrInjected = errors.New("mediatest: injected failure")

// File is a scripted input. Each frame's Pix holds its label so tests can
// check ordering of what reached the writer.
type File struct {
	Metadata media.Metadata
	Frames   []media.Frame

	// OpenErr fails OpenReader for this file.
	OpenErr error
	// FailAfter makes ReadFrame fail once this many frames were read.
	// Zero disables the failure.
	FailAfter int
	ReadErr   error
}

// Backend is a fake media.Backend. It is not safe for concurrent use.
type Backend struct {
	Files map[string]*File

	// OpenWriterErr fails OpenWriter.
	OpenWriterErr error
	// FailWriteAt makes the n-th WriteFrame (1-based) fail. Zero disables it.
	FailWriteAt int
	// CloseWriterErr is returned by Writer.Close.
	CloseWriterErr error

	ReaderOpens  map[string]int
	ReaderCloses map[string]int
	Writer       *Writer
	WriterPath   string
}

// NewBackend returns an empty fake backend.
func NewBackend() *Backend {
	return &Backend{
		Files:        make(map[string]*File),
		ReaderOpens:  make(map[string]int),
		ReaderCloses: make(map[string]int),
	}
}

// AddFile registers path with the given metadata and one frame per label.
func (b *Backend) AddFile(path string, md media.Metadata, labels ...string) *File {
	f := &File{Metadata: md}
	for _, l := range labels {
		f.Frames = append(f.Frames, media.Frame{Width: md.Width, Height: md.Height, Pix: []byte(l)})
	}
	b.Files[path] = f
	return f
}

// Labels returns n labels "<prefix>0" .. "<prefix>n-1".
func Labels(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

// TotalReaderOpens returns how many readers were opened across all files.
func (b *Backend) TotalReaderOpens() int {
	n := 0
	for _, c := range b.ReaderOpens {
		n += c
	}
	return n
}

// TotalReaderCloses returns how many readers were closed across all files.
func (b *Backend) TotalReaderCloses() int {
	n := 0
	for _, c := range b.ReaderCloses {
		n += c
	}
	return n
}

// OpenReader implements media.Backend.
func (b *Backend) OpenReader(path string) (media.Reader, error) {
	f, ok := b.Files[path]
	if !ok {
		return nil, fmt.Errorf("mediatest: no such file %q", path)
	}
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	b.ReaderOpens[path]++
	return &reader{backend: b, path: path, file: f}, nil
}

// OpenWriter implements media.Backend.
func (b *Backend) OpenWriter(path string, cfg media.WriterConfig) (media.Writer, error) {
	if b.OpenWriterErr != nil {
		return nil, b.OpenWriterErr
	}
	b.Writer = &Writer{Config: cfg, backend: b}
	b.WriterPath = path
	return b.Writer, nil
}

type reader struct {
	backend *Backend
	path    string
	file    *File
	pos     int
	closed  bool
}

func (r *reader) Metadata() media.Metadata {
	return r.file.Metadata
}

func (r *reader) ReadFrame() (media.Frame, error) {
	if r.closed {
		return media.Frame{}, errors.New("mediatest: read after close")
	}
	if r.file.FailAfter > 0 && r.pos >= r.file.FailAfter {
		if r.file.ReadErr != nil {
			return media.Frame{}, r.file.ReadErr
		}
		return media.Frame{}, ErrInjected
	}
	if r.pos >= len(r.file.Frames) {
		return media.Frame{}, io.EOF
	}
	f := r.file.Frames[r.pos]
	r.pos++
	return f, nil
}

func (r *reader) Close() error {
	r.closed = true
	r.backend.ReaderCloses[r.path]++
	return nil
}

// Writer records every frame it receives.
type Writer struct {
	Config media.WriterConfig
	Frames []string
	Closes int

	backend *Backend
	writes  int
}

// WriteFrame implements media.Writer.
func (w *Writer) WriteFrame(f media.Frame) error {
	if w.Closes > 0 {
		return errors.New("mediatest: write after close")
	}
	w.writes++
	if w.backend.FailWriteAt > 0 && w.writes == w.backend.FailWriteAt {
		return ErrInjected
	}
	w.Frames = append(w.Frames, string(f.Pix))
	return nil
}

// Close implements media.Writer.
func (w *Writer) Close() error {
	w.Closes++
	return w.backend.CloseWriterErr
}

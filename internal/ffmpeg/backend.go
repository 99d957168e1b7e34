package ffmpeg

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/media"
	"github.com/smazurov/videoconcat/internal/process"
)

// Config selects the executables and their verbosity.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	LogLevel    string
}

// Backend decodes and encodes through ffmpeg subprocesses exchanging raw
// RGB24 frames over pipes.
type Backend struct {
	cfg           Config
	logger        logging.Logger
	processLogger logging.Logger
	seq           atomic.Uint64
}

// NewBackend creates a Backend. Diagnostics go to the "media" module logger
// and subprocess output to the "ffmpeg" module logger.
func NewBackend(cfg Config) *Backend {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultFFmpegPath
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = DefaultFFprobePath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return &Backend{
		cfg:           cfg,
		logger:        logging.GetLogger("media"),
		processLogger: logging.GetLogger("ffmpeg"),
	}
}

func (b *Backend) newPipe(kind string, args []string, mode process.Mode, parser process.LogParser) *process.Pipe {
	id := fmt.Sprintf("%s-%d", kind, b.seq.Add(1))
	p := process.NewPipe(id, args, mode, b.logger)
	p.SetLogParser(b.processLogger, parser)
	return p
}

// Probe reads the metadata of the first video stream of path.
func (b *Backend) Probe(path string) (media.Metadata, error) {
	args := BuildProbeArgs(&ProbeParams{FFprobePath: b.cfg.FFprobePath, InputPath: path})
	p := b.newPipe("probe", args, process.ModeRead, ParserFor(SourceFFprobe))
	if err := p.Start(); err != nil {
		return media.Metadata{}, err
	}

	data, readErr := io.ReadAll(p.Stdout())
	if err := p.Wait(); err != nil {
		return media.Metadata{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if readErr != nil {
		return media.Metadata{}, fmt.Errorf("probe %s: %w", path, readErr)
	}

	md, err := ParseProbeOutput(data)
	if err != nil {
		return media.Metadata{}, fmt.Errorf("probe %s: %w", path, err)
	}
	b.logger.Debug("Probed input", "path", path, "metadata", md)
	return md, nil
}

// OpenReader probes path and returns a reader for its frames. The decoder
// subprocess starts on the first ReadFrame.
func (b *Backend) OpenReader(path string) (media.Reader, error) {
	md, err := b.Probe(path)
	if err != nil {
		return nil, err
	}
	return &reader{
		backend: b,
		path:    path,
		md:      md,
		buf:     make([]byte, media.FrameSize(md.Width, md.Height)),
	}, nil
}

// OpenWriter starts an encoder writing to path.
func (b *Backend) OpenWriter(path string, cfg media.WriterConfig) (media.Writer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if !(cfg.FrameRate > 0) {
		return nil, fmt.Errorf("invalid frame rate %v", cfg.FrameRate)
	}

	args := BuildEncodeArgs(&EncodeParams{
		FFmpegPath:  b.cfg.FFmpegPath,
		LogLevel:    b.cfg.LogLevel,
		Width:       cfg.Width,
		Height:      cfg.Height,
		FrameRate:   cfg.FrameRate,
		Codec:       cfg.Codec,
		PixelFormat: cfg.PixelFormat,
		Quality:     cfg.Quality,
		OutputPath:  path,
		Overwrite:   cfg.Overwrite,
	})
	p := b.newPipe("encode", args, process.ModeWrite, ParserFor(SourceFFmpeg))
	if err := p.Start(); err != nil {
		return nil, err
	}
	b.logger.Debug("Encoder started", "path", path, "args", args)

	return &writer{
		path:      path,
		pipe:      p,
		frameSize: media.FrameSize(cfg.Width, cfg.Height),
	}, nil
}

type reader struct {
	backend *Backend
	path    string
	md      media.Metadata
	pipe    *process.Pipe
	buf     []byte
	done    bool
	closed  bool
}

func (r *reader) Metadata() media.Metadata {
	return r.md
}

func (r *reader) start() error {
	args := BuildDecodeArgs(&DecodeParams{
		FFmpegPath: r.backend.cfg.FFmpegPath,
		LogLevel:   r.backend.cfg.LogLevel,
		InputPath:  r.path,
	})
	r.pipe = r.backend.newPipe("decode", args, process.ModeRead, ParserFor(SourceFFmpeg))
	return r.pipe.Start()
}

func (r *reader) ReadFrame() (media.Frame, error) {
	if r.closed {
		return media.Frame{}, errors.New("read from closed reader")
	}
	if r.done {
		return media.Frame{}, io.EOF
	}
	if r.pipe == nil {
		if err := r.start(); err != nil {
			r.done = true
			return media.Frame{}, err
		}
	}

	n, err := io.ReadFull(r.pipe.Stdout(), r.buf)
	switch {
	case err == nil:
		return media.Frame{Width: r.md.Width, Height: r.md.Height, Pix: r.buf}, nil
	case errors.Is(err, io.EOF):
		r.done = true
		if waitErr := r.pipe.Wait(); waitErr != nil {
			return media.Frame{}, waitErr
		}
		return media.Frame{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.done = true
		truncated := fmt.Errorf("truncated frame: got %d of %d bytes", n, len(r.buf))
		return media.Frame{}, errors.Join(truncated, r.pipe.Wait())
	default:
		return media.Frame{}, fmt.Errorf("read frame: %w", err)
	}
}

// Close stops a decoder that has not reached the end of its stream.
func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.pipe == nil || r.done {
		return nil
	}
	return r.pipe.Stop()
}

type writer struct {
	path      string
	pipe      *process.Pipe
	frameSize int
	failed    error
	closed    bool
}

func (w *writer) WriteFrame(f media.Frame) error {
	if w.closed {
		return errors.New("write to closed writer")
	}
	if w.failed != nil {
		return w.failed
	}
	if len(f.Pix) != w.frameSize {
		return fmt.Errorf("frame has %d bytes, encoder expects %d", len(f.Pix), w.frameSize)
	}

	if _, err := w.pipe.Stdin().Write(f.Pix); err != nil {
		// The encoder exit status explains a broken pipe better than EPIPE.
		if waitErr := w.pipe.Wait(); waitErr != nil {
			w.failed = waitErr
		} else {
			w.failed = fmt.Errorf("write frame: %w", err)
		}
		return w.failed
	}
	return nil
}

// Close ends the input stream and waits for the encoder to finalize the file.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.pipe.Wait(); err != nil {
		return fmt.Errorf("finalize %s: %w", w.path, err)
	}
	return nil
}

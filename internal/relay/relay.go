// Package relay streams frames from a list of input videos into a single
// output, applying the speedup (frame subsampling) rule and emitting status
// lines and previews along the way.
//
// The relay is strictly sequential: one input is decoded at a time on the
// calling goroutine, and every kept frame is written before the next one is
// read.
package relay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/media"
	"github.com/smazurov/videoconcat/internal/preview"
)

// OutputQuality is the encoder quality used for every output, on a 0..10
// scale where 10 is the maximum.
const OutputQuality = 10

// Config is the part of a validated run the relay needs.
type Config struct {
	Inputs    []string
	Output    string
	Overwrite bool
	// FrameRate overrides the output frame rate; 0 keeps the first input's.
	FrameRate float64
	// Speedup keeps one frame of every Speedup; 0 keeps all frames.
	Speedup int
	// StatusInterval is the minimum time between status lines; 0 disables them.
	StatusInterval time.Duration
	// PreviewInterval previews every n-th output frame; 0 disables preview.
	PreviewInterval int
}

// Relay runs one concatenation.
type Relay struct {
	cfg       Config
	backend   media.Backend
	previewer preview.Previewer
	observer  Observer
	printer   logging.Printer
	now       func() time.Time
	logger    logging.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithPreviewer sets the previewer used when PreviewInterval is set.
func WithPreviewer(p preview.Previewer) Option {
	return func(r *Relay) {
		if p != nil {
			r.previewer = p
		}
	}
}

// WithObserver sets the observer notified of progress.
func WithObserver(o Observer) Option {
	return func(r *Relay) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithPrinter sets the sink for informational lines.
func WithPrinter(p logging.Printer) Option {
	return func(r *Relay) {
		if p != nil {
			r.printer = p
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a relay for cfg that decodes and encodes through backend.
func New(cfg Config, backend media.Backend, opts ...Option) *Relay {
	r := &Relay{
		cfg:       cfg,
		backend:   backend,
		previewer: preview.Noop{},
		observer:  NopObserver{},
		printer:   logging.Discard,
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Probe opens the first input, reads its metadata and resolves the output
// frame rate: the configured override, or the input's native rate.
func (r *Relay) Probe() (media.Metadata, float64, error) {
	if len(r.cfg.Inputs) == 0 {
		return media.Metadata{}, 0, errors.New("no input files")
	}

	first := r.cfg.Inputs[0]
	reader, err := r.backend.OpenReader(first)
	if err != nil {
		return media.Metadata{}, 0, fmt.Errorf("open input %q: %w", first, err)
	}
	md := reader.Metadata()
	if err := reader.Close(); err != nil {
		return media.Metadata{}, 0, fmt.Errorf("close input %q: %w", first, err)
	}

	md.PixelFormat = media.SanitizePixelFormat(md.PixelFormat)

	rate := r.cfg.FrameRate
	if rate == 0 {
		rate = md.FrameRate
	}
	if !(rate > 0) {
		return media.Metadata{}, 0, fmt.Errorf("input %q: unusable frame rate %v", first, md.FrameRate)
	}
	return md, rate, nil
}

// Run performs the concatenation and returns its summary. Every reader and
// the writer are closed exactly once, whether Run succeeds or not.
func (r *Relay) Run() (Summary, error) {
	md, rate, err := r.Probe()
	if err != nil {
		return Summary{}, err
	}

	r.printer.Infof("Size: %s", md.Size())
	r.printer.Infof("Framerate: %s FPS", media.FormatFrameRate(rate))
	r.printer.Infof("Pixel format: %s", md.PixelFormat)
	r.printer.Infof("Codec: %s", md.Codec)
	r.printer.Infof("Selected quality: %d (10 is max)", OutputQuality)
	r.printer.Info()

	st := &state{rate: rate, start: r.now()}
	st.lastStatus = st.start

	writer, err := r.backend.OpenWriter(r.cfg.Output, media.WriterConfig{
		Width:       md.Width,
		Height:      md.Height,
		FrameRate:   rate,
		PixelFormat: md.PixelFormat,
		Codec:       md.Codec,
		Quality:     OutputQuality,
		Overwrite:   r.cfg.Overwrite,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("open output %q: %w", r.cfg.Output, err)
	}

	for i, input := range r.cfg.Inputs {
		if err := r.relayInput(i, input, writer, st); err != nil {
			if closeErr := writer.Close(); closeErr != nil {
				r.logger.Warn("Failed to close output after error", "output", r.cfg.Output, "error", closeErr)
			}
			return st.summary(r.now()), err
		}
	}
	r.printer.Info()

	if err := writer.Close(); err != nil {
		return st.summary(r.now()), fmt.Errorf("close output %q: %w", r.cfg.Output, err)
	}

	sum := st.summary(r.now())
	r.observer.Finished(sum)
	r.printSummary(sum)
	return sum, nil
}

// relayInput streams one input into writer. The reader is closed before
// returning.
func (r *Relay) relayInput(index int, input string, writer media.Writer, st *state) (err error) {
	r.printer.Infof("Reading: %s", input)

	reader, err := r.backend.OpenReader(input)
	if err != nil {
		return fmt.Errorf("open input %q: %w", input, err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("close input %q: %w", input, closeErr)
			} else {
				r.logger.Warn("Failed to close input after error", "input", input, "error", closeErr)
			}
		}
	}()

	r.observer.InputOpened(index, input)
	r.logger.Debug("Relaying input", "index", index, "input", input)

	for {
		frame, err := reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode frame %d of %q: %w", st.inputFrames+1, input, err)
		}

		st.inputFrames++

		if !r.keep(st.inputFrames) {
			r.observer.FrameRead(false)
			continue
		}
		r.observer.FrameRead(true)

		if r.cfg.StatusInterval > 0 {
			if now := r.now(); now.Sub(st.lastStatus) >= r.cfg.StatusInterval {
				status := st.status(now)
				r.printer.Info(status.String())
				r.observer.Status(status)
				st.lastStatus = now
			}
		}

		// The check uses the count before this frame, so output frame 0 is
		// always previewed.
		if r.cfg.PreviewInterval > 0 && st.outputFrames%r.cfg.PreviewInterval == 0 {
			caption := preview.Caption{Index: st.outputFrames, Timestamp: float64(st.outputFrames) / st.rate}
			if err := r.previewer.Show(frame, caption); err != nil {
				r.logger.Warn("Preview failed", "frame", st.outputFrames, "error", err)
			}
		}

		if err := writer.WriteFrame(frame); err != nil {
			return fmt.Errorf("encode frame %d: %w", st.outputFrames, err)
		}
		st.outputFrames++
		r.observer.FrameWritten()
	}
}

// keep applies the speedup rule to the 1-based global input index.
func (r *Relay) keep(inputIndex int) bool {
	return r.cfg.Speedup <= 0 || inputIndex%r.cfg.Speedup == 0
}

func (r *Relay) printSummary(s Summary) {
	r.printer.Info("Done.")
	r.printer.Infof("Processing duration: %.1fs", s.Elapsed.Seconds())
	r.printer.Info("Input frame count:", s.InputFrames)
	r.printer.Infof("Input processing rate: %.1f FPS", s.InputRate())
	r.printer.Info("Output frame count:", s.OutputFrames)
	r.printer.Infof("Output processing rate: %.1f FPS", s.OutputRate())
}

// state holds the counters and timers of one run.
type state struct {
	rate         float64
	start        time.Time
	lastStatus   time.Time
	inputFrames  int
	outputFrames int
}

func (s *state) status(now time.Time) Status {
	return Status{
		Elapsed:        now.Sub(s.start),
		InputFrames:    s.inputFrames,
		OutputFrames:   s.outputFrames,
		OutputDuration: float64(s.outputFrames) / s.rate,
	}
}

func (s *state) summary(now time.Time) Summary {
	return Summary{
		Elapsed:      now.Sub(s.start),
		InputFrames:  s.inputFrames,
		OutputFrames: s.outputFrames,
		FrameRate:    s.rate,
	}
}

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/spf13/pflag"
)

// Defaults for ambient options.
const (
	DefaultFFmpegPath     = "ffmpeg"
	DefaultFFprobePath    = "ffprobe"
	DefaultFFmpegLogLevel = "error"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
	DefaultPreviewListen  = "127.0.0.1:8790"
	FallbackPreviewListen = "127.0.0.1:0"
)

// Options holds everything the command line accepts. Run arguments are
// CLI-only; ambient settings may also come from the TOML file or environment.
type Options struct {
	Config string

	// Run arguments
	Output    string
	Overwrite bool
	Framerate float64
	Speedup   int
	Status    int
	Preview   int
	Quiet     bool

	// Backend
	FFmpegPath     string `flag:"ffmpeg" toml:"ffmpeg.path" env:"FFMPEG_PATH"`
	FFprobePath    string `flag:"ffprobe" toml:"ffmpeg.probe_path" env:"FFPROBE_PATH"`
	FFmpegLogLevel string `flag:"ffmpeg-loglevel" toml:"ffmpeg.loglevel" env:"FFMPEG_LOGLEVEL"`

	// Diagnostics
	LogLevel   string `toml:"logging.level" env:"LOG_LEVEL"`
	LogFormat  string `toml:"logging.format" env:"LOG_FORMAT"`
	LogJournal bool   `toml:"logging.journal" env:"LOG_JOURNAL"`

	// Status server and preview
	Listen      string `toml:"server.listen" env:"LISTEN"`
	PreviewFile string `toml:"preview.file" env:"PREVIEW_FILE"`
}

// Run is the validated, immutable configuration of one concatenation.
// Zero values mean "not configured" for FrameRate, Speedup, StatusInterval
// and PreviewInterval.
type Run struct {
	Inputs          []string
	Output          string
	Overwrite       bool
	FrameRate       float64
	Speedup         int
	StatusInterval  time.Duration
	PreviewInterval int
	Quiet           bool
}

// UsageError reports malformed or missing command line arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// Validate checks opts and the positional inputs and builds the Run.
// A numeric option counts as given when its flag was changed in flags; with
// a nil flag set any non-zero value counts as given.
func (o *Options) Validate(inputs []string, flags *pflag.FlagSet) (Run, error) {
	given := func(name string, nonZero bool) bool {
		if flags == nil {
			return nonZero
		}
		return flags.Changed(name)
	}

	if len(inputs) == 0 {
		return Run{}, usageErrorf("at least one input file is required")
	}
	for _, in := range inputs {
		if strings.TrimSpace(in) == "" {
			return Run{}, usageErrorf("input path cannot be empty")
		}
	}
	if strings.TrimSpace(o.Output) == "" {
		return Run{}, usageErrorf("the output file is required (-o/--output)")
	}

	run := Run{
		Inputs:    slices.Clone(inputs),
		Output:    o.Output,
		Overwrite: o.Overwrite,
		Quiet:     o.Quiet,
	}

	if given("framerate", o.Framerate != 0) {
		if !(o.Framerate > 0) {
			return Run{}, usageErrorf("framerate must be greater than 0, got %v", o.Framerate)
		}
		run.FrameRate = o.Framerate
	}
	if given("speedup", o.Speedup != 0) {
		if o.Speedup <= 0 {
			return Run{}, usageErrorf("speedup must be greater than 0, got %d", o.Speedup)
		}
		run.Speedup = o.Speedup
	}
	if given("status", o.Status != 0) {
		if o.Status <= 0 {
			return Run{}, usageErrorf("status interval must be greater than 0, got %d", o.Status)
		}
		run.StatusInterval = time.Duration(o.Status) * time.Second
	}
	if given("preview", o.Preview != 0) {
		if o.Preview <= 0 {
			return Run{}, usageErrorf("preview interval must be greater than 0, got %d", o.Preview)
		}
		run.PreviewInterval = o.Preview
	}

	if o.LogLevel != "" && !logging.ValidLevel(o.LogLevel) {
		return Run{}, usageErrorf("unknown log level %q", o.LogLevel)
	}
	if f := strings.ToLower(o.LogFormat); f != "" && f != "text" && f != "json" {
		return Run{}, usageErrorf("unknown log format %q (want text or json)", o.LogFormat)
	}

	return run, nil
}

// PreviewAddr returns the address the preview server should listen on when
// an in-memory preview is used.
func (o *Options) PreviewAddr() string {
	if o.Listen != "" {
		return o.Listen
	}
	return DefaultPreviewListen
}

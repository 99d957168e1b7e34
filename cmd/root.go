package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/smazurov/videoconcat/internal/api"
	"github.com/smazurov/videoconcat/internal/config"
	"github.com/smazurov/videoconcat/internal/events"
	"github.com/smazurov/videoconcat/internal/ffmpeg"
	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/metrics"
	"github.com/smazurov/videoconcat/internal/metrics/exporters"
	"github.com/smazurov/videoconcat/internal/precheck"
	"github.com/smazurov/videoconcat/internal/preview"
	"github.com/smazurov/videoconcat/internal/relay"
	"github.com/smazurov/videoconcat/internal/version"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitRuntime = 2
)

// Execute runs the command line with args and returns the process exit code.
func Execute(args []string, out, errOut io.Writer) int {
	root := CreateRootCmd(out, errOut)
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err == nil {
		return ExitOK
	}

	console := logging.NewConsole(out, errOut, false)
	code := ExitCode(err)

	var checkErr *precheck.Error
	switch {
	case errors.As(err, &checkErr):
		console.Error(checkErr.Error())
	case code == ExitUsage:
		console.Errorf("Error: %v", err)
		console.Error()
		console.Error(cmd.UsageString())
	default:
		console.Errorf("Error: %v", err)
	}
	return code
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usageErr *config.UsageError
	var checkErr *precheck.Error
	if errors.As(err, &usageErr) || errors.As(err, &checkErr) {
		return ExitUsage
	}
	return ExitRuntime
}

// CreateRootCmd builds the concatenation command with its subcommands.
func CreateRootCmd(out, errOut io.Writer) *cobra.Command {
	root, _ := newRootCmd(out, errOut)
	return root
}

func newRootCmd(out, errOut io.Writer) (*cobra.Command, *config.Options) {
	opts := &config.Options{}

	root := &cobra.Command{
		Use:   "videoconcat [flags] input...",
		Short: "Concatenate a bunch of video files",
		Long: `Concatenate one or more video files into a single output video.

The output takes its size, frame rate, pixel format and codec from the first
input. Frames can be dropped to speed the result up (--speedup), the output
frame rate can be overridden (--framerate), and progress can be reported
(--status) and previewed (--preview) while the files are processed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcat(cmd, opts, args, out, errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.UsageError{Message: err.Error()}
	})

	f := root.Flags()
	f.StringVarP(&opts.Output, "output", "o", "", "Video output file")
	f.BoolVarP(&opts.Overwrite, "overwrite", "w", false, "Overwrite output file if it exists")
	f.Float64VarP(&opts.Framerate, "framerate", "f", 0,
		"New frame rate. Defaults to the frame rate of the first input file; a different rate speeds the content up or slows it down")
	f.IntVarP(&opts.Speedup, "speedup", "x", 0, "Speedup. Every N-th frame is used, others are dropped")
	f.IntVarP(&opts.Status, "status", "s", 0, "Show status output every N seconds")
	f.IntVarP(&opts.Preview, "preview", "p", 0, "Preview every N-th output frame")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide informational output")
	f.StringVar(&opts.Listen, "listen", "", "Serve status, preview and metrics over HTTP on this address")
	f.StringVar(&opts.PreviewFile, "preview-file", "", "Write previews to this PNG file instead of the status page")

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.Config, "config", "c", "", "TOML configuration file for the backend and logging options")
	pf.StringVar(&opts.FFmpegPath, "ffmpeg", config.DefaultFFmpegPath, "ffmpeg executable")
	pf.StringVar(&opts.FFprobePath, "ffprobe", config.DefaultFFprobePath, "ffprobe executable")
	pf.StringVar(&opts.FFmpegLogLevel, "ffmpeg-loglevel", config.DefaultFFmpegLogLevel, "ffmpeg -loglevel value")
	pf.StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "Diagnostic log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", config.DefaultLogFormat, "Diagnostic log format (text, json)")
	pf.BoolVar(&opts.LogJournal, "log-journal", false, "Also send diagnostic logs to the systemd journal")

	root.AddCommand(CreateProbeCmd(opts, out, errOut))
	root.AddCommand(CreateVersionCmd(out))

	return root, opts
}

// loadOptions applies the config file and environment to opts and sets up
// diagnostic logging.
func loadOptions(cmd *cobra.Command, opts *config.Options, errOut io.Writer) error {
	if err := config.LoadConfig(opts, cmd); err != nil {
		return &config.UsageError{Message: err.Error()}
	}
	logCfg := config.LoggingConfig(opts)
	logCfg.Output = errOut
	logging.Initialize(logCfg)
	return nil
}

func newBackend(opts *config.Options) *ffmpeg.Backend {
	return ffmpeg.NewBackend(ffmpeg.Config{
		FFmpegPath:  opts.FFmpegPath,
		FFprobePath: opts.FFprobePath,
		LogLevel:    opts.FFmpegLogLevel,
	})
}

func runConcat(cmd *cobra.Command, opts *config.Options, inputs []string, out, errOut io.Writer) error {
	if err := loadOptions(cmd, opts, errOut); err != nil {
		return err
	}
	run, err := opts.Validate(inputs, cmd.Flags())
	if err != nil {
		return err
	}

	console := logging.NewConsole(out, errOut, run.Quiet)
	console.Infof("Version: %s", version.String())
	console.Info()

	if err := precheck.CheckWithReporter(run.Inputs, run.Output, run.Overwrite, &listing{printer: console}); err != nil {
		return err
	}
	console.Info()

	stopWatching := watchLogging(cmd, opts, errOut)
	defer stopWatching()

	return concat(run, opts, console)
}

// listing prints the checked paths the way the checks visit them.
type listing struct {
	printer logging.Printer
	started bool
}

func (l *listing) Input(path string) {
	if !l.started {
		l.printer.Info("Input files (in order):")
		l.started = true
	}
	l.printer.Info("-", path)
}

func (l *listing) Output(path string) {
	l.printer.Info()
	l.printer.Info("Output file:", path)
}

// startServer listens on the configured address. Without an explicit
// --listen a busy default port falls back to an ephemeral one, so parallel
// runs each get their own status page.
func startServer(server *api.Server, opts *config.Options, logger *slog.Logger) error {
	err := server.Start(opts.PreviewAddr())
	if err == nil || opts.Listen != "" {
		return err
	}
	logger.Info("Default status address busy, using an ephemeral port", "addr", config.DefaultPreviewListen, "error", err)
	return server.Start(config.FallbackPreviewListen)
}

func concat(run config.Run, opts *config.Options, console logging.Printer) error {
	logger := logging.GetLogger("main")

	reg := prometheus.NewRegistry()
	relayMetrics := metrics.NewRelay(reg)
	eventBus := events.New()
	publisher := events.NewRelayPublisher(eventBus)

	var previewer preview.Previewer = preview.Noop{}
	var latest *preview.Latest
	if run.PreviewInterval > 0 {
		if opts.PreviewFile != "" {
			previewer = preview.NewFile(opts.PreviewFile, logging.GetLogger("preview"))
		} else {
			latest = preview.NewLatest()
			latest.OnShow(publisher.Preview)
			previewer = latest
		}
	}

	if opts.Listen != "" || latest != nil {
		apiOpts := &api.Options{
			Inputs:            run.Inputs,
			Output:            run.Output,
			EventBus:          eventBus,
			Metrics:           relayMetrics,
			PrometheusHandler: exporters.HTTPHandler(reg),
		}
		if latest != nil {
			apiOpts.Previews = latest
		}

		server := api.NewServer(apiOpts)
		if err := startServer(server, opts, logger); err != nil {
			logger.Warn("Status server unavailable, continuing without it", "error", err)
			_ = server.Stop()
			if latest != nil {
				previewer = preview.Noop{}
			}
		} else {
			defer func() {
				if err := server.Stop(); err != nil {
					logger.Warn("Failed to stop status server", "error", err)
				}
			}()

			sseExporter := exporters.NewSSEExporter(relayMetrics, eventBus)
			sseExporter.Start(context.Background())
			defer sseExporter.Stop()

			console.Infof("Status page: http://%s/", server.Addr())
			console.Info()
		}
	}

	r := relay.New(relay.Config{
		Inputs:          run.Inputs,
		Output:          run.Output,
		Overwrite:       run.Overwrite,
		FrameRate:       run.FrameRate,
		Speedup:         run.Speedup,
		StatusInterval:  run.StatusInterval,
		PreviewInterval: run.PreviewInterval,
	}, newBackend(opts),
		relay.WithPreviewer(previewer),
		relay.WithObserver(relay.Observers{relayMetrics, publisher}),
		relay.WithPrinter(console),
		relay.WithLogger(logging.GetLogger("relay")),
	)

	sum, err := r.Run()
	if err != nil {
		return err
	}
	logger.Info("Concatenation finished",
		"inputs", len(run.Inputs),
		"input_frames", sum.InputFrames,
		"output_frames", sum.OutputFrames,
		"duration", sum.Elapsed)
	return nil
}

// Package logging provides the two kinds of output the tool produces.
//
// # Console
//
// [Console] is the user-facing sink: informational lines go to stdout and are
// suppressed entirely in quiet mode, error lines always go to stderr.
//
//	console := logging.NewConsole(os.Stdout, os.Stderr, quiet)
//	console.Infof("Reading: %s", path)
//	console.Errorf("Input file does not exist: %s", path)
//
// # Diagnostic logging
//
// Structured diagnostics use log/slog with per-module levels. They are
// written to stderr (never stdout) and optionally mirrored to the systemd
// journal.
//
//	logging.Initialize(logging.Config{
//		Level:  "warn",
//		Format: "text",
//		Modules: map[string]string{
//			"ffmpeg": "info", // show ffmpeg's own stderr
//		},
//	})
//
//	logger := logging.GetLogger("relay")
//	logger.Debug("Opened input", "path", path)
//
// Loggers obtained before Initialize are cached and pick up the configured
// level once Initialize runs.
//
// # Configuration
//
//	[logging]
//	level = "warn"
//	format = "text"
//	journal = false
//
//	[logging.modules]
//	ffmpeg = "info"
//
// With journal enabled, records are tagged SYSLOG_IDENTIFIER=videoconcat:
//
//	journalctl -t videoconcat MODULE=ffmpeg
package logging

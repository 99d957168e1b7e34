package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/videoconcat/internal/config"
	"github.com/smazurov/videoconcat/internal/logging"
)

// reloadOptions returns a loader that resolves a fresh copy of opts from the
// config file at path. Flags set on the command line keep their values.
func reloadOptions(cmd *cobra.Command, opts *config.Options) func(path string) (config.Options, error) {
	base := *opts
	return func(path string) (config.Options, error) {
		fresh := base
		fresh.Config = path
		if err := config.LoadConfig(&fresh, cmd); err != nil {
			return config.Options{}, err
		}
		if fresh.LogLevel != "" && !logging.ValidLevel(fresh.LogLevel) {
			return config.Options{}, &config.UsageError{Message: "unknown log level " + fresh.LogLevel}
		}
		return fresh, nil
	}
}

// watchLogging applies logging changes made to the config file while a
// concatenation runs. It returns a function that stops watching.
func watchLogging(cmd *cobra.Command, opts *config.Options, errOut io.Writer) func() {
	if opts.Config == "" {
		return func() {}
	}
	logger := logging.GetLogger("config")

	w := config.NewConfigWatcher(opts.Config, reloadOptions(cmd, opts), logger)
	w.OnReload(func(fresh config.Options) {
		logCfg := config.LoggingConfig(&fresh)
		logCfg.Output = errOut
		logging.Initialize(logCfg)
	})
	if err := w.Start(); err != nil {
		logger.Warn("Config changes will not be applied", "path", opts.Config, "error", err)
		return func() {}
	}
	return func() {
		if err := w.Stop(); err != nil {
			logger.Warn("Failed to stop config watcher", "error", err)
		}
	}
}

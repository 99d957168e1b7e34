package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/videoconcat/internal/config"
	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/version"
)

// CreateVersionCmd builds the version subcommand.
func CreateVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &config.UsageError{Message: "version takes no arguments"}
			}
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()
			p := logging.NewConsole(out, nil, false)
			p.Infof("Version:    %s", info.Version)
			p.Infof("Git commit: %s", info.GitCommit)
			p.Infof("Build date: %s", info.BuildDate)
			p.Infof("Go version: %s", info.GoVersion)
			p.Infof("Platform:   %s", info.Platform)
		},
	}
}

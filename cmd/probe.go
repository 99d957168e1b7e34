package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/videoconcat/internal/config"
	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/media"
	"github.com/smazurov/videoconcat/internal/precheck"
)

// ProbeResult is the metadata of one probed input.
type ProbeResult struct {
	Path string `json:"path"`
	media.Metadata
}

// CreateProbeCmd builds the probe subcommand, which prints the metadata the
// relay would take from each input.
func CreateProbeCmd(opts *config.Options, out, errOut io.Writer) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe input...",
		Short: "Show the video metadata of input files",
		Long: `Probe each input with ffprobe and print its size, frame rate, pixel format
and codec. The first input's values are the ones a concatenation uses for the
output.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &config.UsageError{Message: "at least one input file is required"}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadOptions(cmd, opts, errOut); err != nil {
				return err
			}
			for _, path := range args {
				if err := precheck.CheckInput(path); err != nil {
					return err
				}
			}

			backend := newBackend(opts)
			results := make([]ProbeResult, 0, len(args))
			for _, path := range args {
				md, err := backend.Probe(path)
				if err != nil {
					return err
				}
				md.PixelFormat = media.SanitizePixelFormat(md.PixelFormat)
				results = append(results, ProbeResult{Path: path, Metadata: md})
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printProbeResults(logging.NewConsole(out, errOut, false), results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the results as JSON")
	return cmd
}

func printProbeResults(p logging.Printer, results []ProbeResult) {
	for i, r := range results {
		if i > 0 {
			p.Info()
		}
		p.Infof("%s:", r.Path)
		p.Infof("  Size: %s", r.Size())
		p.Infof("  Framerate: %s FPS", media.FormatFrameRate(r.FrameRate))
		p.Infof("  Pixel format: %s", r.PixelFormat)
		p.Infof("  Codec: %s", r.Codec)
	}
}

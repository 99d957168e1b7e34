package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func runFlags(opts *Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVarP(&opts.Output, "output", "o", "", "")
	fs.BoolVarP(&opts.Overwrite, "overwrite", "w", false, "")
	fs.Float64VarP(&opts.Framerate, "framerate", "f", 0, "")
	fs.IntVarP(&opts.Speedup, "speedup", "x", 0, "")
	fs.IntVarP(&opts.Status, "status", "s", 0, "")
	fs.IntVarP(&opts.Preview, "preview", "p", 0, "")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "")
	return fs
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, run Run)
	}{
		{
			name: "minimal",
			args: []string{"a.mp4", "-o", "out.mp4"},
			check: func(t *testing.T, run Run) {
				if run.FrameRate != 0 || run.Speedup != 0 || run.StatusInterval != 0 || run.PreviewInterval != 0 {
					t.Errorf("optional values should be unset, got %+v", run)
				}
			},
		},
		{
			name: "all options",
			args: []string{"a.mp4", "b.mp4", "-o", "out.mp4", "-w", "-f", "60", "-x", "3", "-s", "5", "-p", "100", "-q"},
			check: func(t *testing.T, run Run) {
				if len(run.Inputs) != 2 || run.Inputs[0] != "a.mp4" || run.Inputs[1] != "b.mp4" {
					t.Errorf("Inputs = %v", run.Inputs)
				}
				if !run.Overwrite || !run.Quiet {
					t.Errorf("flags not carried: %+v", run)
				}
				if run.FrameRate != 60 || run.Speedup != 3 || run.PreviewInterval != 100 {
					t.Errorf("numeric options not carried: %+v", run)
				}
				if run.StatusInterval != 5*time.Second {
					t.Errorf("StatusInterval = %v, want 5s", run.StatusInterval)
				}
			},
		},
		{name: "no inputs", args: []string{"-o", "out.mp4"}, wantErr: true},
		{name: "no output", args: []string{"a.mp4"}, wantErr: true},
		{name: "zero framerate", args: []string{"a.mp4", "-o", "o.mp4", "-f", "0"}, wantErr: true},
		{name: "negative framerate", args: []string{"a.mp4", "-o", "o.mp4", "-f", "-24"}, wantErr: true},
		{name: "zero speedup", args: []string{"a.mp4", "-o", "o.mp4", "-x", "0"}, wantErr: true},
		{name: "negative status", args: []string{"a.mp4", "-o", "o.mp4", "-s", "-1"}, wantErr: true},
		{name: "zero preview", args: []string{"a.mp4", "-o", "o.mp4", "-p", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{}
			fs := runFlags(opts)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			run, err := opts.Validate(fs.Args(), fs)
			if tt.wantErr {
				var usageErr *UsageError
				if !errors.As(err, &usageErr) {
					t.Fatalf("expected *UsageError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, run)
		})
	}
}

func TestValidateWithoutFlagSet(t *testing.T) {
	opts := &Options{Output: "out.mp4", Speedup: 2}
	run, err := opts.Validate([]string{"a.mp4"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Speedup != 2 {
		t.Errorf("Speedup = %d, want 2", run.Speedup)
	}
}

func TestValidateCopiesInputs(t *testing.T) {
	inputs := []string{"a.mp4", "b.mp4"}
	opts := &Options{Output: "out.mp4"}
	run, err := opts.Validate(inputs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inputs[0] = "changed.mp4"
	if run.Inputs[0] != "a.mp4" {
		t.Errorf("Run.Inputs aliases the caller's slice")
	}
}

func TestValidateAmbientOptions(t *testing.T) {
	opts := &Options{Output: "out.mp4", LogLevel: "loud"}
	if _, err := opts.Validate([]string{"a.mp4"}, nil); err == nil {
		t.Error("expected error for unknown log level")
	}

	opts = &Options{Output: "out.mp4", LogFormat: "xml"}
	if _, err := opts.Validate([]string{"a.mp4"}, nil); err == nil {
		t.Error("expected error for unknown log format")
	}
}

func TestPreviewAddr(t *testing.T) {
	if got := (&Options{}).PreviewAddr(); got != DefaultPreviewListen {
		t.Errorf("PreviewAddr() = %q, want %q", got, DefaultPreviewListen)
	}
	if got := (&Options{Listen: ":9000"}).PreviewAddr(); got != ":9000" {
		t.Errorf("PreviewAddr() = %q, want :9000", got)
	}
}

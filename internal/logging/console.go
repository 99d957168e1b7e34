package logging

import (
	"fmt"
	"io"
	"os"
)

// Printer is the informational/error output used by the command line tool.
type Printer interface {
	Info(args ...any)
	Infof(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}

// Console writes informational lines to one writer and errors to another.
// Informational output is dropped entirely when quiet is set; errors are
// always written.
type Console struct {
	out   io.Writer
	err   io.Writer
	quiet bool
}

// NewConsole creates a console writing to out and errOut.
func NewConsole(out, errOut io.Writer, quiet bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Console{out: out, err: errOut, quiet: quiet}
}

// Info prints its arguments separated by spaces, followed by a newline.
// Info with no arguments prints an empty line.
func (c *Console) Info(args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, args...)
}

// Infof prints a formatted informational line.
func (c *Console) Infof(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Error prints its arguments to the error writer.
func (c *Console) Error(args ...any) {
	fmt.Fprintln(c.err, args...)
}

// Errorf prints a formatted line to the error writer.
func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.err, format+"\n", args...)
}

// Quiet reports whether informational output is suppressed.
func (c *Console) Quiet() bool {
	return c.quiet
}

// Discard is a Printer that drops everything.
var Discard Printer = discard{}

type discard struct{}

func (discard) Info(...any)           {}
func (discard) Infof(string, ...any)  {}
func (discard) Error(...any)          {}
func (discard) Errorf(string, ...any) {}

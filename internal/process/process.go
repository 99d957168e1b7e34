package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/videoconcat/internal/logging"
)

// LogParser parses a log line and returns the log level and message.
// Used to extract structured log info from process output (ffmpeg, ffprobe).
type LogParser func(line string) (level, msg string)

// Mode selects which standard stream of the subprocess is piped to the caller.
type Mode int

const (
	// ModeRead pipes the subprocess stdout to the caller.
	ModeRead Mode = iota
	// ModeWrite pipes the caller into the subprocess stdin.
	ModeWrite
)

// stderrTail is the number of trailing stderr lines kept for ExitError.
const stderrTail = 10

// ExitError reports a subprocess that did not exit cleanly.
type ExitError struct {
	Name   string
	Code   int
	Stderr []string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
	if len(e.Stderr) > 0 {
		msg += ": " + e.Stderr[len(e.Stderr)-1]
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Pipe is one subprocess with either its stdout or its stdin connected to
// the caller. Stderr is streamed line by line into the logger.
type Pipe struct {
	id            string
	args          []string
	mode          Mode
	cmd           *exec.Cmd
	logger        logging.Logger
	processLogger logging.Logger // logger for process output (nil = use logger)
	logParser     LogParser      // parses process output for log level (nil = no parsing)

	stdout io.ReadCloser
	stdin  io.WriteCloser

	stderrDone chan struct{}
	tailMu     sync.Mutex
	tail       []string

	waitOnce sync.Once
	waitErr  error
	exited   chan struct{}

	gracefulTimeout time.Duration // timeout for graceful shutdown before force kill
	killTimeout     time.Duration // timeout after Kill() before giving up
}

// NewPipe creates a subprocess running args[0] with args[1:]. It is not
// started until Start is called.
func NewPipe(id string, args []string, mode Mode, logger logging.Logger) *Pipe {
	return &Pipe{
		id:              id,
		args:            args,
		mode:            mode,
		logger:          logger,
		exited:          make(chan struct{}),
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
	}
}

// SetLogParser sets a custom logger and log parser for process output.
// The logger is used for process output (e.g., module="ffmpeg").
// The parser extracts log level from process-specific output formats.
func (p *Pipe) SetLogParser(logger logging.Logger, parser LogParser) {
	p.processLogger = logger
	p.logParser = parser
}

// SetTimeouts overrides the graceful and kill timeouts used by Stop.
func (p *Pipe) SetTimeouts(graceful, kill time.Duration) {
	p.gracefulTimeout = graceful
	p.killTimeout = kill
}

// Name returns the base name of the executable.
func (p *Pipe) Name() string {
	if len(p.args) == 0 {
		return p.id
	}
	name := p.args[0]
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Start launches the subprocess.
func (p *Pipe) Start() error {
	if len(p.args) == 0 {
		return errors.New("empty command")
	}
	if p.cmd != nil {
		return fmt.Errorf("process %s already started", p.id)
	}

	p.cmd = exec.Command(p.args[0], p.args[1:]...)
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var err error
	switch p.mode {
	case ModeRead:
		p.stdout, err = p.cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("create stdout pipe: %w", err)
		}
	case ModeWrite:
		p.stdin, err = p.cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("create stdin pipe: %w", err)
		}
	}

	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.Name(), err)
	}

	p.logger.Debug("Process started", "id", p.id, "pid", p.cmd.Process.Pid, "args", p.args)

	p.stderrDone = make(chan struct{})
	go func() {
		p.streamOutput(stderr)
		close(p.stderrDone)
	}()

	return nil
}

// Stdout returns the subprocess stdout in read mode, nil otherwise.
func (p *Pipe) Stdout() io.Reader {
	if p.stdout == nil {
		return nil
	}
	return p.stdout
}

// Stdin returns the subprocess stdin in write mode, nil otherwise.
func (p *Pipe) Stdin() io.Writer {
	if p.stdin == nil {
		return nil
	}
	return p.stdin
}

// CloseStdin closes the subprocess stdin, signalling end of input.
func (p *Pipe) CloseStdin() error {
	if p.stdin == nil {
		return nil
	}
	err := p.stdin.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Wait waits for the subprocess to exit. In read mode stdout must have been
// consumed first. A non-zero exit is reported as *ExitError. Wait may be
// called more than once and always returns the same result.
func (p *Pipe) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process %s not started", p.id)
	}
	p.waitOnce.Do(func() {
		if err := p.CloseStdin(); err != nil {
			p.logger.Debug("Failed to close stdin", "id", p.id, "error", err)
		}
		<-p.stderrDone
		p.waitErr = p.exitError(p.cmd.Wait())
		close(p.exited)
		p.logger.Debug("Process exited", "id", p.id, "error", p.waitErr)
	})
	return p.waitErr
}

// Stop interrupts the subprocess with SIGINT and waits for it, force-killing
// it after the graceful timeout. The exit status of a stopped process is not
// reported.
func (p *Pipe) Stop() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	// Closing our end unblocks a subprocess stuck writing to a full pipe.
	if p.stdout != nil {
		_ = p.stdout.Close()
	}

	select {
	case <-p.exited:
		return nil
	default:
	}

	p.sendStopSignal()
	go func() { _ = p.Wait() }()
	return p.waitForExit()
}

// sendStopSignal sends SIGINT to the subprocess without waiting.
func (p *Pipe) sendStopSignal() {
	p.logger.Debug("Sending SIGINT to process", "id", p.id, "pid", p.cmd.Process.Pid)
	if err := p.cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("Failed to send SIGINT", "id", p.id, "error", err)
	}
}

// waitForExit waits for the process to exit with a timeout, force-killing if needed.
func (p *Pipe) waitForExit() error {
	select {
	case <-p.exited:
		return nil
	case <-time.After(p.gracefulTimeout):
		p.logger.Warn("Graceful shutdown timeout, forcing kill", "id", p.id, "timeout", p.gracefulTimeout)
		if err := p.cmd.Process.Kill(); err != nil {
			// "os: process already finished" is OK - process exited between timeout and kill
			if !errors.Is(err, os.ErrProcessDone) {
				return fmt.Errorf("kill %s: %w", p.Name(), err)
			}
		}
		// Wait for process to exit with a secondary timeout to prevent hanging
		select {
		case <-p.exited:
			return nil
		case <-time.After(p.killTimeout):
			return fmt.Errorf("%s did not exit after kill signal", p.Name())
		}
	}
}

func (p *Pipe) exitError(err error) error {
	if err == nil {
		return nil
	}
	exitErr := &ExitError{Name: p.Name(), Code: 1, Stderr: p.Stderr(), Err: err}
	var execErr *exec.ExitError
	if errors.As(err, &execErr) {
		exitErr.Code = execErr.ExitCode()
	}
	return exitErr
}

// Stderr returns the last lines the subprocess wrote to stderr.
func (p *Pipe) Stderr() []string {
	p.tailMu.Lock()
	defer p.tailMu.Unlock()
	return append([]string(nil), p.tail...)
}

// streamOutput streams stderr from the subprocess.
// Uses the configured processLogger (or falls back to default logger).
// Uses the configured LogParser to extract log levels from process output.
func (p *Pipe) streamOutput(reader io.Reader) {
	scanner := bufio.NewScanner(reader)

	logger := p.processLogger
	if logger == nil {
		logger = p.logger
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		level, msg := "info", line
		if p.logParser != nil {
			level, msg = p.logParser(line)
		}

		p.tailMu.Lock()
		p.tail = append(p.tail, msg)
		if len(p.tail) > stderrTail {
			p.tail = p.tail[len(p.tail)-stderrTail:]
		}
		p.tailMu.Unlock()

		switch level {
		case "panic", "fatal", "error":
			logger.Error(msg, "process", p.id)
		case "warning":
			logger.Warn(msg, "process", p.id)
		case "debug", "trace", "verbose":
			logger.Debug(msg, "process", p.id)
		default:
			logger.Info(msg, "process", p.id)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		p.logger.Warn("Error reading output", "id", p.id, "error", err)
	}
}

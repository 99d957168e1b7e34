// Package process runs helper subprocesses connected to the caller by a pipe.
//
// Pipe wraps os/exec for a single subprocess:
//   - Either stdout (ModeRead) or stdin (ModeWrite) is piped to the caller
//   - Stderr is streamed line by line into a logger, with pluggable log parsing
//   - The last stderr lines are kept and attached to ExitError
//   - Stop interrupts with SIGINT and force kills with SIGKILL after a timeout
//
// Example usage:
//
//	p := process.NewPipe("decode", []string{"ffmpeg", "-i", "in.mp4", "-f", "rawvideo", "pipe:1"},
//	    process.ModeRead, logger)
//	p.SetLogParser(logging.GetLogger("ffmpeg"), ffmpeg.ParserFor(ffmpeg.SourceFFmpeg))
//	if err := p.Start(); err != nil {
//	    return err
//	}
//	io.Copy(dst, p.Stdout())
//	return p.Wait()
package process

package ffmpeg

import (
	"strings"

	"github.com/smazurov/videoconcat/internal/process"
)

// LogSource names the tool whose stderr is being parsed.
type LogSource int

const (
	// SourceFFmpeg is ffmpeg run with -loglevel level+<x>, which tags every
	// line as "[level] message" or "[component @ 0x...] [level] message".
	SourceFFmpeg LogSource = iota
	// SourceFFprobe is ffprobe run with -v error, which prints bare text
	// only when something went wrong.
	SourceFFprobe
)

func (s LogSource) untaggedLevel() string {
	if s == SourceFFprobe {
		return "warning"
	}
	return "info"
}

// ParserFor returns the process.LogParser for lines written by source.
func ParserFor(source LogSource) process.LogParser {
	return func(line string) (string, string) {
		return ParseLogLevel(source, line)
	}
}

// ParseLogLevel splits a stderr line into its level and the message with the
// level tag removed. A component prefix stays in the message. Untagged lines
// get the source's default level.
func ParseLogLevel(source LogSource, line string) (level, msg string) {
	if tag, rest, ok := cutTag(line); ok {
		if isLogLevel(tag) {
			return tag, rest
		}
		if next, msg, ok := cutTag(rest); ok && isLogLevel(next) {
			return next, line[:len(line)-len(rest)] + msg
		}
	}
	return source.untaggedLevel(), line
}

// cutTag splits "[tag] rest" into tag and rest.
func cutTag(s string) (tag, rest string, ok bool) {
	if len(s) < 3 || s[0] != '[' {
		return "", s, false
	}
	tag, rest, ok = strings.Cut(s[1:], "] ")
	if !ok {
		return "", s, false
	}
	return tag, rest, true
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}

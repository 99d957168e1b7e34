// Package precheck verifies that the input and output paths of a run are
// usable before any video processing starts. It never creates, truncates or
// otherwise modifies a file.
package precheck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Condition identifies which accessibility requirement a path failed.
type Condition string

// Failure conditions.
const (
	ConditionMissing        Condition = "missing"
	ConditionNotRegular     Condition = "not_regular"
	ConditionUnreadable     Condition = "unreadable"
	ConditionOutputExists   Condition = "output_exists"
	ConditionDirNotWritable Condition = "dir_not_writable"
)

// Error reports the first path that failed a check.
type Error struct {
	Path      string
	Condition Condition
	Input     bool
	Cause     error
}

func (e *Error) Error() string {
	switch e.Condition {
	case ConditionMissing:
		return "Input file does not exist: " + e.Path
	case ConditionNotRegular:
		if e.Input {
			return "Input file is not a file: " + e.Path
		}
		return "Output file exists but is not a file: " + e.Path
	case ConditionUnreadable:
		return "Input file is not readable: " + e.Path
	case ConditionOutputExists:
		return "Output file already exists: " + e.Path
	case ConditionDirNotWritable:
		return "Output file is not in writable directory: " + e.Path
	default:
		return fmt.Sprintf("%s: %s", e.Condition, e.Path)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Reporter receives each path as it is checked, in order. It lets callers
// print the listing that accompanies the checks.
type Reporter interface {
	Input(path string)
	Output(path string)
}

// Check verifies every input, then the output. It stops at the first
// violation.
func Check(inputs []string, output string, overwrite bool) error {
	return CheckWithReporter(inputs, output, overwrite, nil)
}

// CheckWithReporter is Check with a per-path callback.
func CheckWithReporter(inputs []string, output string, overwrite bool, r Reporter) error {
	for _, in := range inputs {
		if r != nil {
			r.Input(in)
		}
		if err := CheckInput(in); err != nil {
			return err
		}
	}
	if r != nil {
		r.Output(output)
	}
	return CheckOutput(output, overwrite)
}

// CheckInput verifies that path names an existing, readable regular file.
func CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Path: path, Condition: ConditionMissing, Input: true, Cause: err}
		}
		return &Error{Path: path, Condition: ConditionUnreadable, Input: true, Cause: err}
	}
	if !info.Mode().IsRegular() {
		return &Error{Path: path, Condition: ConditionNotRegular, Input: true}
	}
	if err := canRead(path); err != nil {
		return &Error{Path: path, Condition: ConditionUnreadable, Input: true, Cause: err}
	}
	return nil
}

// CheckOutput verifies that path may be written: it either does not exist,
// or it is a regular file and overwrite is allowed. Its directory must be
// writable in both cases.
func CheckOutput(path string, overwrite bool) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !overwrite {
			return &Error{Path: path, Condition: ConditionOutputExists}
		}
		if !info.Mode().IsRegular() {
			return &Error{Path: path, Condition: ConditionNotRegular}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return &Error{Path: filepath.Dir(path), Condition: ConditionDirNotWritable, Cause: err}
	}

	dir := filepath.Dir(path)
	if err := canWriteDir(dir); err != nil {
		return &Error{Path: dir, Condition: ConditionDirNotWritable, Cause: err}
	}
	return nil
}

package git

import (
	"errors"
	"fmt"
	"os/exec"
)

// CommandError reports a git subprocess that could not be started or exited
// with a non-zero status. Stderr holds the captured diagnostic output.
type CommandError struct {
	Command  string // e.g. "git log"
	ExitCode int    // -1 when the process never ran
	Stderr   string
	Err      error
}

// Error returns the error message.
func (e *CommandError) Error() string {
	msg := e.Command + " failed"
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error { return e.Err }

// UnresolvableObjectError reports an abbreviated object id that the
// repository could not expand. It is kept distinct from CommandError so
// callers can choose to skip the record instead of aborting the run.
type UnresolvableObjectError struct {
	Object string
	Err    error
}

// Error returns the error message.
func (e *UnresolvableObjectError) Error() string {
	return fmt.Sprintf("unresolvable object %q", e.Object)
}

// Unwrap returns the underlying command failure.
func (e *UnresolvableObjectError) Unwrap() error { return e.Err }

// MalformedRecordError reports a stream line that violates the expected git
// output grammar. Line carries the offending raw line; Commit names the
// commit being parsed when one is known.
type MalformedRecordError struct {
	Reason string
	Line   string
	Commit string
}

// Error returns the error message.
func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("unexpected git output (%s): %q", e.Reason, e.Line)
	if e.Commit != "" {
		msg += fmt.Sprintf(" in commit %s", e.Commit)
	}
	return msg
}

// exitCodeOf extracts the process exit code from a Run/Wait error,
// or -1 when the process never reached exit.
func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

package git

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"strings"
)

// maxLineBytes bounds a single stream line. Commit subjects and paths stay
// far below this; pathological bodies are cut off rather than exhausting
// memory.
const maxLineBytes = 1 << 20

// LineScanner exposes a git subprocess's stdout as a lazy sequence of lines.
// Lines are yielded in stream order with terminators stripped; a final
// unterminated line is yielded as well. After Scan returns false, Err
// reports whether the stream ended cleanly or the command failed.
type LineScanner struct {
	scanner *bufio.Scanner
	cmd     *exec.Cmd
	command string
	stderr  *bytes.Buffer
	err     error
	closed  bool
}

// newLineScanner wraps an already-open reader. The command starters attach
// the process afterwards; tests feed in-memory readers directly.
func newLineScanner(r io.Reader) *LineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineScanner{scanner: sc}
}

// Scan advances to the next line. It returns false at end of stream or on
// error; consult Err afterwards.
func (s *LineScanner) Scan() bool {
	if s.err != nil || s.closed {
		return false
	}
	if s.scanner.Scan() {
		return true
	}
	s.finish()
	return false
}

// Text returns the current line without its terminator.
func (s *LineScanner) Text() string {
	return s.scanner.Text()
}

// Err returns the terminal error of the stream: nil on a clean exit, a
// *CommandError when the subprocess failed.
func (s *LineScanner) Err() error {
	return s.err
}

// Close abandons the stream, killing the subprocess if it is still running.
// Errors caused by the deliberate shutdown are discarded.
func (s *LineScanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cmd != nil {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
		s.cmd = nil
	}
	return nil
}

// finish reaps the subprocess once the stream is exhausted and records the
// terminal error, if any.
func (s *LineScanner) finish() {
	if scanErr := s.scanner.Err(); scanErr != nil {
		s.err = &CommandError{Command: s.command, ExitCode: -1, Err: scanErr, Stderr: s.stderrText()}
	}
	if s.cmd == nil {
		return
	}
	waitErr := s.cmd.Wait()
	s.cmd = nil
	if waitErr != nil && s.err == nil {
		s.err = &CommandError{
			Command:  s.command,
			ExitCode: exitCodeOf(waitErr),
			Stderr:   s.stderrText(),
			Err:      waitErr,
		}
	}
}

func (s *LineScanner) stderrText() string {
	if s.stderr == nil {
		return ""
	}
	return strings.TrimSpace(s.stderr.String())
}

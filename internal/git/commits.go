package git

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// gitTimeLayout matches git's %ai/%ci textual format.
const gitTimeLayout = "2006-01-02 15:04:05 -0700"

// commitParser turns the NUL-framed log stream into Commit records.
//
// Commits whose headers carry an empty timestamp cannot be emitted yet: they
// are buffered until the next fully dated commit arrives, take its dates for
// their missing fields, and are emitted ahead of it in stream order. At end
// of stream the buffer drains against the last dated commit seen.
type commitParser struct {
	lines   *LineScanner
	queue   []*Commit
	pending []*Commit
	last    *Commit // most recent fully dated commit
	cur     *Commit
	body    []string
	done    bool
	err     error
}

func newCommitParser(lines *LineScanner) *commitParser {
	return &commitParser{lines: lines}
}

// Next returns the next commit, or io.EOF when the stream is exhausted.
func (p *commitParser) Next() (*Commit, error) {
	for {
		if p.err != nil {
			return nil, p.err
		}
		if len(p.queue) > 0 {
			c := p.queue[0]
			p.queue = p.queue[1:]
			return c, nil
		}
		if p.done {
			return nil, io.EOF
		}
		p.advance()
	}
}

// ForEach calls fn for every remaining commit.
func (p *commitParser) ForEach(fn func(*Commit) error) error {
	return forEach(p.Next, fn)
}

// Close abandons the stream.
func (p *commitParser) Close() {
	p.lines.Close()
}

// advance consumes stream lines until the queue gains at least one commit or
// the stream ends.
func (p *commitParser) advance() {
	for p.lines.Scan() {
		line := p.lines.Text()
		if strings.HasPrefix(line, "\x00") {
			p.flushCurrent()
			header, err := parseCommitHeader(line)
			if err != nil {
				p.fail(err)
				return
			}
			p.cur = header
			p.body = p.body[:0]
			if len(p.queue) > 0 {
				return
			}
			continue
		}
		if p.cur == nil {
			p.fail(&MalformedRecordError{Reason: "log line outside any commit", Line: line})
			return
		}
		p.body = append(p.body, line)
	}
	if err := p.lines.Err(); err != nil {
		p.fail(err)
		return
	}
	p.flushCurrent()
	p.drainPending()
	p.done = true
}

// flushCurrent seals the commit under construction. Fully dated commits
// release the pending buffer ahead of themselves; undated ones join it.
func (p *commitParser) flushCurrent() {
	if p.cur == nil {
		return
	}
	c := p.cur
	p.cur = nil
	c.Body = strings.Join(p.body, "\n")
	if c.Author.When.IsZero() || c.Committer.When.IsZero() {
		p.pending = append(p.pending, c)
		return
	}
	p.backfillPending(c)
	p.queue = append(p.queue, c)
	p.last = c
}

// backfillPending stamps the buffered commits with ref's dates and queues
// them, preserving stream order.
func (p *commitParser) backfillPending(ref *Commit) {
	for _, c := range p.pending {
		if c.Author.When.IsZero() {
			c.Author.When = ref.Author.When
		}
		if c.Committer.When.IsZero() {
			c.Committer.When = ref.Committer.When
		}
		p.queue = append(p.queue, c)
	}
	p.pending = p.pending[:0]
}

// drainPending backfills buffered commits at end of stream. A stream that
// never produced a dated commit cannot be repaired.
func (p *commitParser) drainPending() {
	if len(p.pending) == 0 {
		return
	}
	if p.last == nil {
		p.fail(&MalformedRecordError{
			Reason: "no dated commit to backfill timestamps from",
			Commit: p.pending[0].Hash,
		})
		return
	}
	p.backfillPending(p.last)
}

func (p *commitParser) fail(err error) {
	p.err = err
	p.lines.Close()
}

// parseCommitHeader dissects one NUL-framed header line. Splitting on NUL
// must yield exactly 12 parts: the empty flanks plus ten fields.
func parseCommitHeader(line string) (*Commit, error) {
	fields := strings.Split(line, "\x00")
	if len(fields) != 12 {
		return nil, &MalformedRecordError{
			Reason: fmt.Sprintf("log header has %d fields, expected 12", len(fields)),
			Line:   line,
		}
	}
	c := &Commit{
		Hash:      fields[1],
		Tree:      fields[2],
		Parents:   splitParents(fields[3]),
		Author:    Signature{Name: fields[4], Email: fields[5]},
		Committer: Signature{Name: fields[7], Email: fields[8]},
		Subject:   fields[10],
	}
	var err error
	if c.Author.When, err = parseGitTime(fields[6], line); err != nil {
		return nil, err
	}
	if c.Committer.When, err = parseGitTime(fields[9], line); err != nil {
		return nil, err
	}
	return c, nil
}

// parseGitTime parses a git timestamp field, preserving its UTC offset.
// An empty field is a missing date and parses to the zero time.
func parseGitTime(s, line string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(gitTimeLayout, s)
	if err != nil {
		return time.Time{}, &MalformedRecordError{Reason: "commit timestamp", Line: line}
	}
	return t, nil
}

func splitParents(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

package git

import (
	"io"
	"strconv"
	"strings"
)

// statParser turns the `--numstat` stream into Stat records. Marker lines
// set the commit, stat lines carry `<added>\t<removed>\t<path>`.
type statParser struct {
	lines  *LineScanner
	commit string
	err    error
}

func newStatParser(lines *LineScanner) *statParser {
	return &statParser{lines: lines}
}

// Next returns the next stat record, or io.EOF when the stream is exhausted.
func (p *statParser) Next() (*Stat, error) {
	if p.err != nil {
		return nil, p.err
	}
	for p.lines.Scan() {
		line := p.lines.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "\x00") {
			hash, err := parseCommitMarker(line)
			if err != nil {
				return nil, p.fail(err)
			}
			p.commit = hash
			continue
		}
		if p.commit == "" {
			return nil, p.fail(&MalformedRecordError{Reason: "stat entry before any commit marker", Line: line})
		}
		stat, err := p.parseLine(line)
		if err != nil {
			return nil, p.fail(err)
		}
		return stat, nil
	}
	if err := p.lines.Err(); err != nil {
		return nil, p.fail(err)
	}
	return nil, io.EOF
}

// ForEach calls fn for every remaining stat record.
func (p *statParser) ForEach(fn func(*Stat) error) error {
	return forEach(p.Next, fn)
}

// Close abandons the stream.
func (p *statParser) Close() {
	p.lines.Close()
}

func (p *statParser) fail(err error) error {
	p.err = err
	p.lines.Close()
	return err
}

func (p *statParser) parseLine(line string) (*Stat, error) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return nil, &MalformedRecordError{Reason: "numstat fields", Line: line, Commit: p.commit}
	}
	added, ok := parseStatCount(fields[0])
	if !ok {
		return nil, &MalformedRecordError{Reason: "numstat added count", Line: line, Commit: p.commit}
	}
	removed, ok := parseStatCount(fields[1])
	if !ok {
		return nil, &MalformedRecordError{Reason: "numstat removed count", Line: line, Commit: p.commit}
	}
	src, dst := splitRenamePath(fields[2])
	return &Stat{
		Commit:  p.commit,
		SrcPath: src,
		DstPath: dst,
		Added:   added,
		Removed: removed,
	}, nil
}

// parseStatCount parses a numstat count. Binary files show "-", which counts
// as zero.
func parseStatCount(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// splitRenamePath expands numstat rename notation into the full source and
// destination paths:
//
//	"dir/{old => new}/file" -> "dir/old/file", "dir/new/file"
//
// A path without the notation maps to itself on both sides.
func splitRenamePath(path string) (src, dst string) {
	open := strings.IndexByte(path, '{')
	arrow := strings.Index(path, " => ")
	end := strings.IndexByte(path, '}')
	if open == -1 || arrow == -1 || end == -1 || open > arrow || arrow+4 > end {
		return path, path
	}
	prefix, suffix := path[:open], path[end+1:]
	src = joinRenamePart(prefix, path[open+1:arrow], suffix)
	dst = joinRenamePart(prefix, path[arrow+4:end], suffix)
	return src, dst
}

// joinRenamePart glues prefix+segment+suffix. An empty segment means one
// side gained or lost a directory level, leaving a doubled separator at the
// junction that git's own rendering would not contain; exactly one survives.
func joinRenamePart(prefix, segment, suffix string) string {
	if segment != "" {
		return prefix + segment + suffix
	}
	p := strings.TrimSuffix(prefix, "/")
	s := strings.TrimPrefix(suffix, "/")
	switch {
	case p == "":
		return s
	case s == "":
		return p
	default:
		return p + "/" + s
	}
}

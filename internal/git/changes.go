package git

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// changeParser turns the `--raw` diff stream into Change records. Marker
// lines (`\x00<hash>\x00`) set the commit every following change belongs to.
type changeParser struct {
	ctx      context.Context
	lines    *LineScanner
	resolver HashResolver
	commit   string
	err      error
}

func newChangeParser(ctx context.Context, lines *LineScanner, resolver HashResolver) *changeParser {
	return &changeParser{ctx: ctx, lines: lines, resolver: resolver}
}

// Next returns the next change, or io.EOF when the stream is exhausted.
// Lines with a status letter outside the known set are skipped.
func (p *changeParser) Next() (*Change, error) {
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
			return nil, p.fail(&MalformedRecordError{Reason: "change entry before any commit marker", Line: line})
		}
		change, err := p.parseLine(line)
		if err != nil {
			return nil, p.fail(err)
		}
		if change == nil {
			continue
		}
		return change, nil
	}
	if err := p.lines.Err(); err != nil {
		return nil, p.fail(err)
	}
	return nil, io.EOF
}

// ForEach calls fn for every remaining change.
func (p *changeParser) ForEach(fn func(*Change) error) error {
	return forEach(p.Next, fn)
}

// Close abandons the stream.
func (p *changeParser) Close() {
	p.lines.Close()
}

func (p *changeParser) fail(err error) error {
	p.err = err
	p.lines.Close()
	return err
}

func (p *changeParser) malformed(reason, line string) error {
	return &MalformedRecordError{Reason: reason, Line: line, Commit: p.commit}
}

// parseLine dissects one raw change line:
//
//	:<src-mode> <dst-mode> <src-hash> <dst-hash> <status>[<score>]\t<path>[\t<path>]
//
// The first four fields never contain spaces, so splitting off four fields
// leaves the status-and-path segment intact even for paths with spaces.
func (p *changeParser) parseLine(line string) (*Change, error) {
	fields := strings.SplitN(line, " ", 5)
	if len(fields) != 5 {
		return nil, p.malformed("change fields", line)
	}

	srcMode, err := ParseFileMode(strings.TrimPrefix(fields[0], ":"))
	if err != nil {
		return nil, p.malformed("source file mode", line)
	}
	dstMode, err := ParseFileMode(fields[1])
	if err != nil {
		return nil, p.malformed("destination file mode", line)
	}

	parts := strings.Split(fields[4], "\t")
	token := parts[0]
	if token == "" {
		return nil, p.malformed("change status", line)
	}
	status := changeStatusFromByte(token[0])
	if status == StatusUnknown {
		return nil, nil
	}
	score := 0
	if len(token) > 1 {
		score, err = strconv.Atoi(token[1:])
		if err != nil || score < 0 {
			return nil, p.malformed("similarity score", line)
		}
	}

	// Abbreviated hashes may carry trailing dots.
	srcHash, err := p.resolver.ResolveHash(p.ctx, strings.TrimRight(fields[2], "."))
	if err != nil {
		return nil, err
	}
	dstHash, err := p.resolver.ResolveHash(p.ctx, strings.TrimRight(fields[3], "."))
	if err != nil {
		return nil, err
	}

	var srcPath, dstPath string
	switch status {
	case StatusAdded:
		if len(parts) != 2 || parts[1] == "" {
			return nil, p.malformed("added path", line)
		}
		dstPath = parts[1]
	case StatusDeleted:
		if len(parts) != 2 || parts[1] == "" {
			return nil, p.malformed("deleted path", line)
		}
		srcPath = parts[1]
	case StatusModified, StatusTypeChange:
		if len(parts) != 2 || parts[1] == "" {
			return nil, p.malformed("changed path", line)
		}
		srcPath, dstPath = parts[1], parts[1]
	case StatusRenamed, StatusCopied:
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" || parts[1] == parts[2] {
			return nil, p.malformed("rename paths", line)
		}
		srcPath, dstPath = parts[1], parts[2]
	case StatusUnmerged:
		// Unmerged entries carry both sides like a rename, but the paths
		// may coincide.
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return nil, p.malformed("unmerged paths", line)
		}
		srcPath, dstPath = parts[1], parts[2]
	}

	if status == StatusDeleted && srcHash == NullHash {
		return nil, p.malformed("deletion with null source hash", line)
	}
	if status == StatusAdded && dstHash == NullHash {
		return nil, p.malformed("addition with null destination hash", line)
	}

	return &Change{
		Commit:  p.commit,
		SrcMode: srcMode,
		DstMode: dstMode,
		SrcHash: srcHash,
		DstHash: dstHash,
		Status:  status,
		Score:   score,
		SrcPath: srcPath,
		DstPath: dstPath,
	}, nil
}

// parseCommitMarker dissects a `\x00<hash>\x00` line.
func parseCommitMarker(line string) (string, error) {
	fields := strings.Split(line, "\x00")
	if len(fields) != 3 || fields[1] == "" {
		return "", &MalformedRecordError{Reason: "commit marker", Line: line}
	}
	return fields[1], nil
}

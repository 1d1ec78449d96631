package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Job names one repository to process. Path is either a local directory or
// a clone URL.
type Job struct {
	Name string
	Path string
}

// IsRemote reports whether the job path must be cloned before processing.
func (j Job) IsRemote() bool {
	for _, prefix := range []string{"http://", "https://", "git://", "ssh://"} {
		if strings.HasPrefix(j.Path, prefix) {
			return true
		}
	}
	// scp-like syntax: git@host:owner/repo.git
	if at := strings.IndexByte(j.Path, '@'); at > 0 {
		rest := j.Path[at+1:]
		if colon := strings.IndexByte(rest, ':'); colon > 0 && !strings.Contains(rest[:colon], "/") {
			return true
		}
	}
	return false
}

// ParseListFile reads a job list from a file.
func ParseListFile(name string) ([]Job, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open job list %s: %w", name, err)
	}
	defer file.Close()
	return ParseList(file)
}

// ParseList reads newline-delimited job entries. Each line is a
// "name;path" pair; blank lines are skipped, and a line without a
// semicolon is treated as a bare path named after its final element.
func ParseList(r io.Reader) ([]Job, error) {
	var jobs []Job
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		jobs = append(jobs, parseJobLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read job list: %w", err)
	}
	return jobs, nil
}

func parseJobLine(line string) Job {
	name, rest, found := strings.Cut(line, ";")
	if !found {
		return Job{Name: baseName(line), Path: line}
	}
	name = strings.TrimSpace(name)
	rest = strings.TrimSpace(rest)
	if name == "" {
		name = baseName(rest)
	}
	return Job{Name: name, Path: rest}
}

// baseName derives a job name from the final path element, dropping a
// trailing .git.
func baseName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	base = strings.TrimSuffix(base, ".git")
	if base == "." || base == "/" || base == "" {
		return "repository"
	}
	return base
}

// SanitizeName maps a job name to a string safe for file names.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "repository"
	}
	return b.String()
}

package aggregation

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pathFilter applies include/exclude glob patterns to file paths. Patterns
// are validated once at construction; matching is then infallible.
type pathFilter struct {
	include []string
	exclude []string
}

func newPathFilter(include, exclude []string) (*pathFilter, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return &pathFilter{include: include, exclude: exclude}, nil
}

func (f *pathFilter) empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

// match checks a path against the filters: excludes win, and a non-empty
// include list admits only matching paths.
func (f *pathFilter) match(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}

package git

import (
	"context"
	"errors"

	"github.com/patrickmn/go-cache"
)

// HashResolver expands abbreviated object ids to their canonical
// 40-character form.
type HashResolver interface {
	ResolveHash(ctx context.Context, short string) (string, error)
}

// isZeroHash reports whether short is an abbreviation of the null hash:
// at least 7 characters, all of them '0'.
func isZeroHash(short string) bool {
	if len(short) < 7 {
		return false
	}
	for i := 0; i < len(short); i++ {
		if short[i] != '0' {
			return false
		}
	}
	return true
}

// ResolveHash expands an abbreviated object id. Null-hash abbreviations
// return NullHash without touching the repository; everything else goes
// through `git rev-parse --verify`, memoized for the handle's lifetime.
// An id the repository cannot verify yields *UnresolvableObjectError.
func (r *Repository) ResolveHash(ctx context.Context, short string) (string, error) {
	if isZeroHash(short) {
		return NullHash, nil
	}
	if v, ok := r.hashes.Get(short); ok {
		return v.(string), nil
	}
	out, err := r.runOutput(ctx, "rev-parse", "--verify", short)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			return "", &UnresolvableObjectError{Object: short, Err: err}
		}
		return "", err
	}
	r.hashes.Set(short, out, cache.NoExpiration)
	return out, nil
}

package git

import (
	"context"
	"io"
)

// CommitIter iterates commit records in stream order.
type CommitIter interface {
	Next() (*Commit, error)
	ForEach(fn func(*Commit) error) error
	Close()
}

// ChangeIter iterates file change records in stream order.
type ChangeIter interface {
	Next() (*Change, error)
	ForEach(fn func(*Change) error) error
	Close()
}

// StatIter iterates line delta records in stream order.
type StatIter interface {
	Next() (*Stat, error)
	ForEach(fn func(*Stat) error) error
	Close()
}

// HistorySource produces the three history record streams of one repository.
// This abstraction allows for easier testing and potential alternative
// implementations.
type HistorySource interface {
	Commits(ctx context.Context, opts HistoryOptions) (CommitIter, error)
	Changes(ctx context.Context, opts HistoryOptions) (ChangeIter, error)
	Stats(ctx context.Context, opts HistoryOptions) (StatIter, error)
}

// Compile-time interface conformance checks.
var (
	_ HistorySource = (*Repository)(nil)
	_ HistorySource = (*MockHistorySource)(nil)
	_ HashResolver  = (*Repository)(nil)

	_ CommitIter = (*commitParser)(nil)
	_ ChangeIter = (*changeParser)(nil)
	_ StatIter   = (*statParser)(nil)
)

// forEach drains next, passing every value to fn. io.EOF ends the iteration
// cleanly; any other error propagates.
func forEach[T any](next func() (T, error), fn func(T) error) error {
	for {
		v, err := next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

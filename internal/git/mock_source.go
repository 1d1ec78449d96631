package git

import (
	"context"
	"io"
)

// MockHistorySource is a test double for Repository. It serves canned
// history records without needing a real git repository.
type MockHistorySource struct {
	CommitList []*Commit
	ChangeList []*Change
	StatList   []*Stat
	Error      error
}

// Commits returns an iterator over the predefined commits.
func (m *MockHistorySource) Commits(_ context.Context, _ HistoryOptions) (CommitIter, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return &sliceIter[*Commit]{items: m.CommitList}, nil
}

// Changes returns an iterator over the predefined changes.
func (m *MockHistorySource) Changes(_ context.Context, _ HistoryOptions) (ChangeIter, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return &sliceIter[*Change]{items: m.ChangeList}, nil
}

// Stats returns an iterator over the predefined stat records.
func (m *MockHistorySource) Stats(_ context.Context, _ HistoryOptions) (StatIter, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return &sliceIter[*Stat]{items: m.StatList}, nil
}

// sliceIter adapts an in-memory slice to the iterator interfaces.
type sliceIter[T any] struct {
	items []T
	pos   int
}

func (it *sliceIter[T]) Next() (T, error) {
	var zero T
	if it.pos >= len(it.items) {
		return zero, io.EOF
	}
	v := it.items[it.pos]
	it.pos++
	return v, nil
}

func (it *sliceIter[T]) ForEach(fn func(T) error) error {
	return forEach(it.Next, fn)
}

func (it *sliceIter[T]) Close() {}

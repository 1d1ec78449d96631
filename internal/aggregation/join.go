package aggregation

import "github.com/masmgr/repometrics-go/internal/git"

// FileDelta is one file's change joined with its line counts for a commit.
// Entries present on only one side keep zero values for the other side's
// fields.
type FileDelta struct {
	SrcPath string
	DstPath string
	Status  git.ChangeStatus
	Score   int
	Added   int
	Removed int
}

// Path returns the surviving path of the delta: the destination when the
// file still exists, the source for deletions.
func (d FileDelta) Path() string {
	if d.DstPath != "" {
		return d.DstPath
	}
	return d.SrcPath
}

// Churn returns total lines changed (added + removed).
func (d FileDelta) Churn() int {
	return d.Added + d.Removed
}

type pathPair struct {
	src, dst string
}

// joinKey normalizes a path pair for matching: change records leave the
// absent side empty while stat records repeat the surviving path, so an
// empty side takes the present path's value.
func joinKey(src, dst string) pathPair {
	if src == "" {
		src = dst
	}
	if dst == "" {
		dst = src
	}
	return pathPair{src, dst}
}

// joinDeltas matches a commit's change records with its stat records on
// their (source path, destination path) pairs. Stat records without a
// matching change survive with StatusUnknown.
func joinDeltas(changes []*git.Change, stats []*git.Stat) []FileDelta {
	deltas := make([]FileDelta, 0, len(changes))
	index := make(map[pathPair]int, len(changes))
	for _, c := range changes {
		key := joinKey(c.SrcPath, c.DstPath)
		index[key] = len(deltas)
		deltas = append(deltas, FileDelta{
			SrcPath: c.SrcPath,
			DstPath: c.DstPath,
			Status:  c.Status,
			Score:   c.Score,
		})
	}
	for _, s := range stats {
		key := joinKey(s.SrcPath, s.DstPath)
		if i, ok := index[key]; ok {
			deltas[i].Added += s.Added
			deltas[i].Removed += s.Removed
			continue
		}
		deltas = append(deltas, FileDelta{
			SrcPath: s.SrcPath,
			DstPath: s.DstPath,
			Status:  git.StatusUnknown,
			Added:   s.Added,
			Removed: s.Removed,
		})
	}
	return deltas
}

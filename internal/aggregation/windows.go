package aggregation

import (
	"sort"
	"time"

	"github.com/masmgr/repometrics-go/internal/git"
)

// windowSet counts commits and distinct authors inside trailing windows
// measured back from a shared reference instant.
type windowSet struct {
	ref     time.Time
	windows []windowAcc
}

type windowAcc struct {
	days    int
	commits int
	authors map[string]struct{}
}

func newWindowSet(days []int, ref time.Time) *windowSet {
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)
	ws := &windowSet{ref: ref}
	for _, d := range sorted {
		ws.windows = append(ws.windows, windowAcc{days: d, authors: make(map[string]struct{})})
	}
	return ws
}

// add counts c into every window its committer time falls inside. Commits
// after the reference instant are outside all windows.
func (ws *windowSet) add(c *git.Commit) {
	when := c.Committer.When
	if when.After(ws.ref) {
		return
	}
	age := ws.ref.Sub(when)
	for i := range ws.windows {
		if age <= time.Duration(ws.windows[i].days)*24*time.Hour {
			ws.windows[i].commits++
			ws.windows[i].authors[c.ContributorKey()] = struct{}{}
		}
	}
}

func (ws *windowSet) finish() []WindowStats {
	out := make([]WindowStats, 0, len(ws.windows))
	for _, w := range ws.windows {
		out = append(out, WindowStats{Days: w.days, Commits: w.commits, Authors: len(w.authors)})
	}
	return out
}

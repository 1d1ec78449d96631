package aggregation

import (
	"sort"
	"time"

	"github.com/masmgr/repometrics-go/internal/git"
)

// authorAcc accumulates one author's activity, keyed by normalized email.
// The same email often appears under several display names; the most
// frequent one wins.
type authorAcc struct {
	email   string
	names   map[string]int
	commits int
	added   int
	removed int
	first   time.Time
	last    time.Time
}

func authorFor(authors map[string]*authorAcc, c *git.Commit) *authorAcc {
	key := c.ContributorKey()
	acc, ok := authors[key]
	if !ok {
		acc = &authorAcc{email: c.Author.Email, names: make(map[string]int)}
		authors[key] = acc
	}
	return acc
}

// observe records one commit. Commits arrive in chronological order, so
// first is set once and last follows the stream.
func (acc *authorAcc) observe(c *git.Commit) {
	acc.names[c.Author.Name]++
	acc.commits++
	when := c.Committer.When
	if acc.first.IsZero() {
		acc.first = when
	}
	acc.last = when
}

// displayName returns the name most frequently paired with the email. Ties
// break toward the lexicographically smaller name.
func (acc *authorAcc) displayName() string {
	best, bestCount := "", -1
	for name, n := range acc.names {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}

// finishAuthors flattens the accumulators, sorted by commit count descending
// with email as the tiebreak.
func finishAuthors(authors map[string]*authorAcc) []AuthorStats {
	out := make([]AuthorStats, 0, len(authors))
	for _, acc := range authors {
		out = append(out, AuthorStats{
			Name:         acc.displayName(),
			Email:        acc.email,
			Commits:      acc.commits,
			LinesAdded:   acc.added,
			LinesRemoved: acc.removed,
			FirstCommit:  acc.first,
			LastCommit:   acc.last,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Email < out[j].Email
	})
	return out
}

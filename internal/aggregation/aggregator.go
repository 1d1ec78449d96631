package aggregation

import (
	"context"
	"sort"
	"time"

	"github.com/masmgr/repometrics-go/internal/git"
)

// ReferencePolicy selects the instant trailing windows are measured back
// from.
type ReferencePolicy int

const (
	// ReferenceLatestCommit anchors windows at the newest commit, making
	// output deterministic for a fixed history.
	ReferenceLatestCommit ReferencePolicy = iota
	// ReferenceNow anchors windows at the wall clock.
	ReferenceNow
)

// BucketZone selects the time zone calendar histograms are bucketed in.
type BucketZone int

const (
	// ZoneUTC buckets every commit in UTC.
	ZoneUTC BucketZone = iota
	// ZoneCommit buckets each commit in its own recorded UTC offset.
	ZoneCommit
)

// Options configures an aggregation run.
type Options struct {
	Reference    ReferencePolicy
	Now          time.Time // reference instant for ReferenceNow; zero means time.Now()
	Zone         BucketZone
	WindowDays   []int // trailing window lengths; nil means 7, 30, 90
	Include      []string
	Exclude      []string
	SkipVendored bool
}

func (o Options) windowDays() []int {
	if len(o.WindowDays) == 0 {
		return []int{7, 30, 90}
	}
	return o.WindowDays
}

// Aggregator indexes history records by commit hash and computes the report
// in a single pass over the chronologically sorted commits.
type Aggregator struct {
	opts    Options
	commits []*git.Commit
	changes map[string][]*git.Change
	stats   map[string][]*git.Stat
}

// New creates an aggregator.
func New(opts Options) *Aggregator {
	return &Aggregator{
		opts:    opts,
		changes: make(map[string][]*git.Change),
		stats:   make(map[string][]*git.Stat),
	}
}

// AddCommit indexes one commit record.
func (a *Aggregator) AddCommit(c *git.Commit) {
	a.commits = append(a.commits, c)
}

// AddChange indexes one change record under its commit.
func (a *Aggregator) AddChange(c *git.Change) {
	a.changes[c.Commit] = append(a.changes[c.Commit], c)
}

// AddStat indexes one stat record under its commit.
func (a *Aggregator) AddStat(s *git.Stat) {
	a.stats[s.Commit] = append(a.stats[s.Commit], s)
}

// Run drains all three history streams of src and returns the finished
// report.
func Run(ctx context.Context, src git.HistorySource, opts git.HistoryOptions, aggOpts Options) (*Report, error) {
	a := New(aggOpts)

	commits, err := src.Commits(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer commits.Close()
	if err := commits.ForEach(func(c *git.Commit) error {
		a.AddCommit(c)
		return nil
	}); err != nil {
		return nil, err
	}

	changes, err := src.Changes(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer changes.Close()
	if err := changes.ForEach(func(c *git.Change) error {
		a.AddChange(c)
		return nil
	}); err != nil {
		return nil, err
	}

	stats, err := src.Stats(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer stats.Close()
	if err := stats.ForEach(func(s *git.Stat) error {
		a.AddStat(s)
		return nil
	}); err != nil {
		return nil, err
	}

	return a.Finalize()
}

// Finalize sorts the indexed commits and computes every aggregate. An empty
// history yields an empty report.
func (a *Aggregator) Finalize() (*Report, error) {
	rep := &Report{}
	if len(a.commits) == 0 {
		rep.Windows = newWindowSet(a.opts.windowDays(), time.Time{}).finish()
		return rep, nil
	}

	sorted := make([]*git.Commit, len(a.commits))
	copy(sorted, a.commits)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Committer.When, sorted[j].Committer.When
		if ti.Equal(tj) {
			return sorted[i].Hash < sorted[j].Hash
		}
		return ti.Before(tj)
	})

	first := sorted[0].Committer.When
	last := sorted[len(sorted)-1].Committer.When

	filter, err := newPathFilter(a.opts.Include, a.opts.Exclude)
	if err != nil {
		return nil, err
	}

	activity := ActivityStats{
		Weekly: make([]int, weekIndex(first, last)+1),
	}
	windows := newWindowSet(a.opts.windowDays(), a.referenceTime(last))
	authors := make(map[string]*authorAcc)
	langs := newLanguageCounter(a.opts.SkipVendored)
	days := make(map[civilDay]int)

	for _, c := range sorted {
		bt := bucketTime(c.Committer.When, a.opts.Zone)
		activity.Hourly[bt.Hour()]++
		activity.Weekday[int(bt.Weekday())]++
		activity.Monthly[int(bt.Month())-1]++
		activity.MonthDay[bt.Day()-1]++
		activity.WeekdayHour[int(bt.Weekday())][bt.Hour()]++
		activity.Weekly[weekIndex(first, c.Committer.When)]++
		days[civilDayOf(bt)]++
		windows.add(c)

		acc := authorFor(authors, c)
		acc.observe(c)

		added, removed := 0, 0
		for _, d := range a.deltasFor(c.Hash, filter) {
			added += d.Added
			removed += d.Removed
			langs.add(d.Path())
		}
		acc.added += added
		acc.removed += removed
		rep.LinesAdded += added
		rep.LinesRemoved += removed
	}

	activity.InactiveDays = inactiveDays(days)
	activity.PerDay = perDayCounts(days)

	rep.TotalCommits = len(sorted)
	rep.FirstCommit = first
	rep.LastCommit = last
	rep.Authors = finishAuthors(authors)
	rep.Activity = activity
	rep.Windows = windows.finish()
	rep.Languages = langs.finish()
	return rep, nil
}

// deltasFor joins the commit's change and stat records and applies the path
// filters.
func (a *Aggregator) deltasFor(hash string, filter *pathFilter) []FileDelta {
	all := joinDeltas(a.changes[hash], a.stats[hash])
	if filter.empty() {
		return all
	}
	kept := make([]FileDelta, 0, len(all))
	for _, d := range all {
		if filter.match(d.Path()) {
			kept = append(kept, d)
		}
	}
	return kept
}

// referenceTime resolves the window reference instant.
func (a *Aggregator) referenceTime(latest time.Time) time.Time {
	if a.opts.Reference == ReferenceNow {
		if !a.opts.Now.IsZero() {
			return a.opts.Now
		}
		return time.Now()
	}
	return latest
}

// weekIndex returns t's bucket in the weekly histogram: whole weeks elapsed
// since the first commit.
func weekIndex(first, t time.Time) int {
	return int(t.Sub(first).Hours() / (24 * 7))
}

// bucketTime shifts t into the configured histogram zone.
func bucketTime(t time.Time, zone BucketZone) time.Time {
	if zone == ZoneUTC {
		return t.UTC()
	}
	return t
}

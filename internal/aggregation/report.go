package aggregation

import "time"

// Report is the aggregated view of one repository history.
type Report struct {
	Repository   string
	Branch       string
	TotalCommits int
	FirstCommit  time.Time
	LastCommit   time.Time
	LinesAdded   int
	LinesRemoved int
	Authors      []AuthorStats
	Activity     ActivityStats
	Windows      []WindowStats
	Languages    []LanguageStats
}

// AuthorStats holds per-author aggregates, keyed by email. Name is the
// display name most frequently paired with the email.
type AuthorStats struct {
	Name         string
	Email        string
	Commits      int
	LinesAdded   int
	LinesRemoved int
	FirstCommit  time.Time
	LastCommit   time.Time
}

// Churn returns total lines changed (added + removed).
func (a AuthorStats) Churn() int {
	return a.LinesAdded + a.LinesRemoved
}

// ActivityStats holds the commit time histograms. Every histogram sums to
// the total commit count.
type ActivityStats struct {
	Hourly       [24]int
	Weekday      [7]int
	Monthly      [12]int
	MonthDay     [31]int
	WeekdayHour  [7][24]int
	Weekly       []int
	InactiveDays int
	PerDay       []DayCount
}

// DayCount is the commit count of one active calendar day.
type DayCount struct {
	Date    time.Time
	Commits int
}

// WindowStats counts commits and distinct authors inside one trailing
// window measured back from the reference point.
type WindowStats struct {
	Days    int
	Commits int
	Authors int
}

// LanguageStats counts the distinct files classified into one language.
type LanguageStats struct {
	Language string
	Files    int
}

// ExtensionCount counts the files of a tree listing sharing one extension.
type ExtensionCount struct {
	Extension string
	Files     int
}

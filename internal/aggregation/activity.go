package aggregation

import (
	"sort"
	"time"
)

// civilDay is a calendar date independent of time zone arithmetic.
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func civilDayOf(t time.Time) civilDay {
	y, m, d := t.Date()
	return civilDay{y, m, d}
}

func (d civilDay) midnightUTC() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the calendar days from a to b, computed on UTC
// midnights so commit offsets cannot skew the count.
func daysBetween(a, b civilDay) int {
	return int(b.midnightUTC().Sub(a.midnightUTC()).Hours() / 24)
}

// before orders calendar dates.
func (d civilDay) before(o civilDay) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// inactiveDays counts the calendar days inside the active span without a
// single commit. The span bounds come from the observed day keys: with
// per-commit bucketing zones the absolutely first commit need not carry the
// earliest local date, so the commit stream's endpoints cannot bound the
// span.
func inactiveDays(active map[civilDay]int) int {
	if len(active) == 0 {
		return 0
	}
	var first, last civilDay
	started := false
	for d := range active {
		if !started {
			first, last = d, d
			started = true
			continue
		}
		if d.before(first) {
			first = d
		}
		if last.before(d) {
			last = d
		}
	}
	span := daysBetween(first, last) + 1
	return span - len(active)
}

// perDayCounts flattens the per-day map into a date-ordered series.
func perDayCounts(days map[civilDay]int) []DayCount {
	out := make([]DayCount, 0, len(days))
	for d, n := range days {
		out = append(out, DayCount{Date: d.midnightUTC(), Commits: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

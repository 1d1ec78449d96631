package output

import "time"

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

// weekdayNames index by time.Weekday.
var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(reportDateLayout)
}

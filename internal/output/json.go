package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/masmgr/repometrics-go/internal/aggregation"
)

// JSONReportWriter writes metrics reports as JSON.
type JSONReportWriter struct{}

// JSONReport is the JSON output structure for a metrics report.
type JSONReport struct {
	Repository   string         `json:"repo"`
	Branch       string         `json:"branch,omitempty"`
	GeneratedAt  string         `json:"generatedAt"`
	TotalCommits int            `json:"totalCommits"`
	FirstCommit  *string        `json:"firstCommit,omitempty"`
	LastCommit   *string        `json:"lastCommit,omitempty"`
	LinesAdded   int            `json:"linesAdded"`
	LinesRemoved int            `json:"linesRemoved"`
	Authors      []JSONAuthor   `json:"authors"`
	Activity     *JSONActivity  `json:"activity,omitempty"`
	Windows      []JSONWindow   `json:"windows"`
	Languages    []JSONLanguage `json:"languages,omitempty"`
}

// JSONAuthor is the JSON output structure for a single author.
type JSONAuthor struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Commits      int    `json:"commits"`
	LinesAdded   int    `json:"linesAdded"`
	LinesRemoved int    `json:"linesRemoved"`
	FirstCommit  string `json:"firstCommit"`
	LastCommit   string `json:"lastCommit"`
}

// JSONActivity holds the commit time histograms in JSON format.
type JSONActivity struct {
	Hourly       []int          `json:"hourly"`
	Weekday      []int          `json:"weekday"`
	Monthly      []int          `json:"monthly"`
	MonthDay     []int          `json:"monthDay"`
	WeekdayHour  [][]int        `json:"weekdayHour"`
	Weekly       []int          `json:"weekly"`
	InactiveDays int            `json:"inactiveDays"`
	PerDay       []JSONDayCount `json:"perDay,omitempty"`
}

// JSONDayCount is the JSON output structure for a single day of activity.
type JSONDayCount struct {
	Date    string `json:"date"`
	Commits int    `json:"commits"`
}

// JSONWindow is the JSON output structure for a trailing activity window.
type JSONWindow struct {
	Days    int `json:"days"`
	Commits int `json:"commits"`
	Authors int `json:"authors"`
}

// JSONLanguage is the JSON output structure for a language entry.
type JSONLanguage struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
}

// Write outputs the metrics report as JSON.
func (w *JSONReportWriter) Write(report *aggregation.Report, options OutputOptions) error {
	jsonReport := JSONReport{
		Repository:   report.Repository,
		Branch:       report.Branch,
		GeneratedAt:  time.Now().Format(time.RFC3339),
		TotalCommits: report.TotalCommits,
		LinesAdded:   report.LinesAdded,
		LinesRemoved: report.LinesRemoved,
		Windows:      make([]JSONWindow, 0, len(report.Windows)),
	}
	if !report.FirstCommit.IsZero() {
		s := report.FirstCommit.Format(time.RFC3339)
		jsonReport.FirstCommit = &s
	}
	if !report.LastCommit.IsZero() {
		s := report.LastCommit.Format(time.RFC3339)
		jsonReport.LastCommit = &s
	}

	if options.wantSection(SectionAuthors) {
		authors := limitTop(report.Authors, options.Top)
		jsonReport.Authors = make([]JSONAuthor, len(authors))
		for i, a := range authors {
			jsonReport.Authors[i] = JSONAuthor{
				Name:         a.Name,
				Email:        a.Email,
				Commits:      a.Commits,
				LinesAdded:   a.LinesAdded,
				LinesRemoved: a.LinesRemoved,
				FirstCommit:  a.FirstCommit.Format(time.RFC3339),
				LastCommit:   a.LastCommit.Format(time.RFC3339),
			}
		}
	}

	if options.wantSection(SectionActivity) {
		jsonReport.Activity = newJSONActivity(report.Activity)
	}

	if options.wantSection(SectionWindows) {
		for _, w := range report.Windows {
			jsonReport.Windows = append(jsonReport.Windows, JSONWindow{
				Days:    w.Days,
				Commits: w.Commits,
				Authors: w.Authors,
			})
		}
	}

	if options.wantSection(SectionLanguages) {
		jsonReport.Languages = make([]JSONLanguage, 0, len(report.Languages))
		for _, l := range limitTop(report.Languages, options.Top) {
			jsonReport.Languages = append(jsonReport.Languages, JSONLanguage{
				Language: l.Language,
				Files:    l.Files,
			})
		}
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func newJSONActivity(activity aggregation.ActivityStats) *JSONActivity {
	out := &JSONActivity{
		Hourly:       activity.Hourly[:],
		Weekday:      activity.Weekday[:],
		Monthly:      activity.Monthly[:],
		MonthDay:     activity.MonthDay[:],
		Weekly:       activity.Weekly,
		InactiveDays: activity.InactiveDays,
	}
	out.WeekdayHour = make([][]int, len(activity.WeekdayHour))
	for d := range activity.WeekdayHour {
		out.WeekdayHour[d] = activity.WeekdayHour[d][:]
	}
	out.PerDay = make([]JSONDayCount, len(activity.PerDay))
	for i, d := range activity.PerDay {
		out.PerDay[i] = JSONDayCount{
			Date:    d.Date.Format(reportDateLayout),
			Commits: d.Commits,
		}
	}
	return out
}

func writeJSON(data interface{}, outputPath string) error {
	encoder := json.NewEncoder(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder = json.NewEncoder(file)
	}

	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

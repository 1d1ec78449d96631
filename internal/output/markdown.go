package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/masmgr/repometrics-go/internal/aggregation"
)

// MarkdownReportWriter writes metrics reports as Markdown.
type MarkdownReportWriter struct{}

// Write outputs the metrics report as Markdown.
func (w *MarkdownReportWriter) Write(report *aggregation.Report, options OutputOptions) error {
	out, file, err := createWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Repository Metrics")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.Repository)
	if report.Branch != "" {
		fmt.Fprintf(out, "**Branch:** %s\n\n", report.Branch)
	}

	if report.TotalCommits == 0 {
		fmt.Fprintln(out, "No commits found.")
		return nil
	}

	if options.wantSection(SectionSummary) {
		writeMarkdownSummary(out, report)
	}
	if options.wantSection(SectionAuthors) {
		writeMarkdownAuthors(out, report, options.Top)
	}
	if options.wantSection(SectionActivity) {
		writeMarkdownActivity(out, report)
	}
	if options.wantSection(SectionWindows) {
		writeMarkdownWindows(out, report)
	}
	if options.wantSection(SectionLanguages) {
		writeMarkdownLanguages(out, report, options.Top)
	}

	return nil
}

func writeMarkdownSummary(out io.Writer, report *aggregation.Report) {
	fmt.Fprintf(out, "**Period:** %s to %s\n\n", formatDay(report.FirstCommit), formatDay(report.LastCommit))
	fmt.Fprintf(out, "**Total Commits:** %d\n\n", report.TotalCommits)
	fmt.Fprintf(out, "**Lines:** +%d / -%d\n\n", report.LinesAdded, report.LinesRemoved)
	fmt.Fprintf(out, "**Authors:** %d\n\n", len(report.Authors))
	fmt.Fprintf(out, "**Inactive Days:** %d\n\n", report.Activity.InactiveDays)
}

func writeMarkdownAuthors(out io.Writer, report *aggregation.Report, top int) {
	if len(report.Authors) == 0 {
		return
	}
	fmt.Fprintln(out, "## Authors")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Name | Email | Commits | Added | Removed | First | Last |")
	fmt.Fprintln(out, "|---|------|-------|---------|-------|---------|-------|------|")
	for i, a := range limitTop(report.Authors, top) {
		fmt.Fprintf(out, "| %d | %s | %s | %d | %d | %d | %s | %s |\n",
			i+1, escapeMarkdown(a.Name), a.Email, a.Commits, a.LinesAdded, a.LinesRemoved,
			formatDay(a.FirstCommit), formatDay(a.LastCommit))
	}
	fmt.Fprintln(out)
}

func writeMarkdownActivity(out io.Writer, report *aggregation.Report) {
	activity := report.Activity

	fmt.Fprintln(out, "## Commits by Hour")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Hour | Commits |")
	fmt.Fprintln(out, "|------|---------|")
	for h, n := range activity.Hourly {
		fmt.Fprintf(out, "| %02d:00 | %d |\n", h, n)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Commits by Weekday")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Weekday | Commits |")
	fmt.Fprintln(out, "|---------|---------|")
	for d, n := range activity.Weekday {
		fmt.Fprintf(out, "| %s | %d |\n", weekdayNames[d], n)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Commits by Month")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Month | Commits |")
	fmt.Fprintln(out, "|-------|---------|")
	for m, n := range activity.Monthly {
		fmt.Fprintf(out, "| %s | %d |\n", monthNames[m], n)
	}
	fmt.Fprintln(out)
}

func writeMarkdownWindows(out io.Writer, report *aggregation.Report) {
	if len(report.Windows) == 0 {
		return
	}
	fmt.Fprintln(out, "## Recent Activity")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Window | Commits | Authors |")
	fmt.Fprintln(out, "|--------|---------|---------|")
	for _, w := range report.Windows {
		fmt.Fprintf(out, "| %d days | %d | %d |\n", w.Days, w.Commits, w.Authors)
	}
	fmt.Fprintln(out)
}

func writeMarkdownLanguages(out io.Writer, report *aggregation.Report, top int) {
	if len(report.Languages) == 0 {
		return
	}
	fmt.Fprintln(out, "## Languages")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Language | Files |")
	fmt.Fprintln(out, "|----------|-------|")
	for _, l := range limitTop(report.Languages, top) {
		fmt.Fprintf(out, "| %s | %d |\n", l.Language, l.Files)
	}
	fmt.Fprintln(out)
}

func createWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return file, file, nil
	}
	return os.Stdout, nil, nil
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}

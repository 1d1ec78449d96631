package output

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/masmgr/repometrics-go/internal/aggregation"
)

// monthNames index by time.Month - 1.
var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ConsoleReportWriter renders reports for human eyes. It always writes to
// stdout; file output belongs to the structured formats.
type ConsoleReportWriter struct{}

// Write outputs the report to the console.
func (w *ConsoleReportWriter) Write(report *aggregation.Report, options OutputOptions) error {
	if options.wantSection(SectionSummary) {
		writeConsoleSummary(report)
	}
	if options.wantSection(SectionAuthors) {
		writeConsoleAuthors(report, options.Top)
	}
	if options.wantSection(SectionActivity) {
		writeConsoleActivity(report)
	}
	if options.wantSection(SectionWindows) {
		writeConsoleWindows(report)
	}
	if options.wantSection(SectionLanguages) {
		writeConsoleLanguages(report, options.Top)
	}
	return nil
}

func writeConsoleSummary(report *aggregation.Report) {
	color.Green("Repository Metrics")
	fmt.Printf("Repository: %s\n", report.Repository)
	if report.Branch != "" {
		fmt.Printf("Branch: %s\n", report.Branch)
	}
	if report.TotalCommits == 0 {
		fmt.Println("No commits found.")
		fmt.Println()
		return
	}
	fmt.Printf("Commits: %s\n", humanize.Comma(int64(report.TotalCommits)))
	fmt.Printf("Period: %s to %s\n", formatDay(report.FirstCommit), formatDay(report.LastCommit))
	fmt.Printf("Last activity: %s\n", humanize.Time(report.LastCommit))
	fmt.Printf("Lines: +%s / -%s\n",
		humanize.Comma(int64(report.LinesAdded)),
		humanize.Comma(int64(report.LinesRemoved)))
	fmt.Printf("Authors: %d\n", len(report.Authors))
	fmt.Printf("Inactive days: %d\n", report.Activity.InactiveDays)
	fmt.Println()
}

func writeConsoleAuthors(report *aggregation.Report, top int) {
	if len(report.Authors) == 0 {
		return
	}
	color.Green("Authors")
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Name", "Email", "Commits", "Added", "Removed", "First", "Last"})
	for i, a := range limitTop(report.Authors, top) {
		tbl.AppendRow(table.Row{
			i + 1,
			a.Name,
			a.Email,
			a.Commits,
			a.LinesAdded,
			a.LinesRemoved,
			formatDay(a.FirstCommit),
			formatDay(a.LastCommit),
		})
	}
	fmt.Println(tbl.Render())
	fmt.Println()
}

func writeConsoleActivity(report *aggregation.Report) {
	if report.TotalCommits == 0 {
		return
	}
	activity := report.Activity

	color.Green("Commits by hour")
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	maxHour := maxOf(activity.Hourly[:])
	for h, n := range activity.Hourly {
		fmt.Fprintf(tw, "%02d:00\t%d\t%s\n", h, n, histogramBar(n, maxHour))
	}
	tw.Flush()
	fmt.Println()

	color.Green("Commits by weekday")
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	maxDay := maxOf(activity.Weekday[:])
	for d, n := range activity.Weekday {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", weekdayNames[d], n, histogramBar(n, maxDay))
	}
	tw.Flush()
	fmt.Println()

	color.Green("Commits by month")
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	maxMonth := maxOf(activity.Monthly[:])
	for m, n := range activity.Monthly {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", monthNames[m], n, histogramBar(n, maxMonth))
	}
	tw.Flush()
	fmt.Println()
}

func writeConsoleWindows(report *aggregation.Report) {
	if len(report.Windows) == 0 {
		return
	}
	color.Green("Recent activity")
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Window", "Commits", "Authors"})
	for _, w := range report.Windows {
		tbl.AppendRow(table.Row{fmt.Sprintf("%d days", w.Days), w.Commits, w.Authors})
	}
	fmt.Println(tbl.Render())
	fmt.Println()
}

func writeConsoleLanguages(report *aggregation.Report, top int) {
	if len(report.Languages) == 0 {
		return
	}
	color.Green("Languages")
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Language", "Files"})
	for _, l := range limitTop(report.Languages, top) {
		tbl.AppendRow(table.Row{l.Language, l.Files})
	}
	fmt.Println(tbl.Render())
	fmt.Println()
}

// histogramBar renders n scaled against max as a fixed-width bar.
func histogramBar(n, max int) string {
	const barLength = 20
	if max <= 0 {
		return strings.Repeat("░", barLength)
	}
	filled := n * barLength / max
	return strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled)
}

func maxOf(values []int) int {
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

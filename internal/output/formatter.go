package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/repometrics-go/internal/aggregation"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleReportWriter)(nil)
	_ ReportWriter = (*JSONReportWriter)(nil)
	_ ReportWriter = (*CSVReportWriter)(nil)
	_ ReportWriter = (*MarkdownReportWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// Section names a report section writers can be restricted to.
type Section string

const (
	SectionSummary   Section = "summary"
	SectionAuthors   Section = "authors"
	SectionActivity  Section = "activity"
	SectionWindows   Section = "windows"
	SectionLanguages Section = "languages"
)

// ParseSection maps a section name to its Section.
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(s) {
	case "summary":
		return SectionSummary, nil
	case "authors":
		return SectionAuthors, nil
	case "activity":
		return SectionActivity, nil
	case "windows":
		return SectionWindows, nil
	case "languages":
		return SectionLanguages, nil
	default:
		return "", fmt.Errorf("unknown report section %q", s)
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
	Sections   []Section // nil means every section
}

// wantSection reports whether a section should be rendered.
func (o OutputOptions) wantSection(name Section) bool {
	if len(o.Sections) == 0 {
		return true
	}
	for _, s := range o.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// ReportWriter renders an aggregated repository report.
type ReportWriter interface {
	Write(report *aggregation.Report, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONReportWriter{}
	case FormatCSV:
		return &CSVReportWriter{}
	case FormatMarkdown:
		return &MarkdownReportWriter{}
	default:
		return &ConsoleReportWriter{}
	}
}

// FileExtension returns the conventional file extension for the format.
func (f OutputFormat) FileExtension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// ParseOutputFormat maps a format name to its OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "", "console":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return FormatConsole, fmt.Errorf("unknown output format %q", s)
	}
}

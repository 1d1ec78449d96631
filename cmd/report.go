package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/internal/output"
)

// ReportCmd returns the report command.
func ReportCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringSliceFlag{
			Name:  "sections",
			Usage: "Report sections to render (summary, authors, activity, windows, languages)",
		},
	)

	return &cli.Command{
		Name:      "report",
		Aliases:   []string{"r"},
		Usage:     "Full metrics report for a repository",
		ArgsUsage: "[repository path]",
		Flags:     flags,
		Action:    reportAction,
	}
}

func reportAction(c *cli.Context) error {
	sections, err := sectionsFlag(c)
	if err != nil {
		return err
	}
	return runReport(c, sections)
}

// runReport executes the shared report pipeline, restricted to the given
// sections (nil means all).
func runReport(c *cli.Context, sections []output.Section) error {
	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	report, err := cc.BuildReport(c.Context)
	if err != nil {
		return err
	}

	opts, err := outputOptions(c, cc.Config)
	if err != nil {
		return err
	}
	opts.Sections = sections

	writer := output.NewReportWriter(opts.Format)
	return writer.Write(report, opts)
}

// sectionsFlag parses the --sections flag values.
func sectionsFlag(c *cli.Context) ([]output.Section, error) {
	names := c.StringSlice("sections")
	if len(names) == 0 {
		return nil, nil
	}
	sections := make([]output.Section, 0, len(names))
	for _, name := range names {
		s, err := output.ParseSection(name)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/internal/output"
)

// ActivityCmd returns the activity command.
func ActivityCmd() *cli.Command {
	return &cli.Command{
		Name:      "activity",
		Usage:     "Commit time histograms for a repository",
		ArgsUsage: "[repository path]",
		Flags:     commonFlags(),
		Action:    activityAction,
	}
}

func activityAction(c *cli.Context) error {
	return runReport(c, []output.Section{output.SectionActivity, output.SectionWindows})
}

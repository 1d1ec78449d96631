package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/internal/output"
)

// AuthorsCmd returns the authors command.
func AuthorsCmd() *cli.Command {
	return &cli.Command{
		Name:      "authors",
		Usage:     "Author contribution table for a repository",
		ArgsUsage: "[repository path]",
		Flags:     commonFlags(),
		Action:    authorsAction,
	}
}

func authorsAction(c *cli.Context) error {
	return runReport(c, []output.Section{output.SectionAuthors})
}

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/internal/aggregation"
	"github.com/masmgr/repometrics-go/internal/git"
)

// FilesCmd returns the files command.
func FilesCmd() *cli.Command {
	return &cli.Command{
		Name:      "files",
		Usage:     "List the tracked files of a repository by extension",
		ArgsUsage: "[repository path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   "Check out this branch before listing",
			},
			&cli.IntFlag{
				Name:    "top",
				Aliases: []string{"n"},
				Usage:   "Limit the extension table to the top N rows",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "Print every file path",
			},
		},
		Action: filesAction,
	}
}

func filesAction(c *cli.Context) error {
	repo, err := git.Open(repoArg(c))
	if err != nil {
		return err
	}

	if branch := c.String("branch"); branch != "" {
		if err := repo.Checkout(c.Context, branch); err != nil {
			return err
		}
	}

	entries, err := repo.Files(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("list") {
		for _, entry := range entries {
			fmt.Printf("%s %s\n", entry.Mode, entry.Path)
		}
		fmt.Println()
	}

	color.Green("Files by extension")
	counts := aggregation.CountExtensions(entries)
	if top := c.Int("top"); top > 0 && top < len(counts) {
		counts = counts[:top]
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Extension", "Files"})
	for _, ec := range counts {
		tbl.AppendRow(table.Row{ec.Extension, ec.Files})
	}
	fmt.Println(tbl.Render())
	fmt.Printf("Total: %d files\n", len(entries))
	return nil
}

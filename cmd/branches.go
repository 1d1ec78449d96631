package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/internal/git"
)

// BranchesCmd returns the branches command.
func BranchesCmd() *cli.Command {
	return &cli.Command{
		Name:      "branches",
		Usage:     "List the branches of a repository",
		ArgsUsage: "[repository path]",
		Action:    branchesAction,
	}
}

func branchesAction(c *cli.Context) error {
	repo, err := git.Open(repoArg(c))
	if err != nil {
		return err
	}

	branches, err := repo.Branches()
	if err != nil {
		return err
	}
	current, err := repo.CurrentBranch()
	if err != nil {
		current = ""
	}

	for _, branch := range branches {
		if branch == current {
			color.Green("* %s", branch)
		} else {
			fmt.Printf("  %s\n", branch)
		}
	}
	return nil
}

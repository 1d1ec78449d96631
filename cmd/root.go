package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "repometrics",
		Usage:   "Commit history metrics for Git repositories",
		Version: "1.0.0",
		Commands: []*cli.Command{
			ReportCmd(),
			AuthorsCmd(),
			ActivityCmd(),
			BranchesCmd(),
			FilesCmd(),
			BatchCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: defaultAction,
	}
}

// Common flags shared across report-producing commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch to read history from (default: from config)",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Include commits since this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "until",
			Usage: "Include commits until this date (YYYY-MM-DD)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "reference",
			Usage: "Window reference instant: latest or now (default: from config)",
		},
		&cli.StringFlag{
			Name:  "timezone",
			Usage: "Histogram bucketing zone: utc or commit (default: from config)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Limit ranked tables to the top N rows",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

// parseDateFlag parses a date string flag.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

// repoArg returns the repository path argument, defaulting to the working
// directory.
func repoArg(c *cli.Context) string {
	if c.NArg() > 0 {
		return c.Args().Get(0)
	}
	return "."
}

// loadConfig loads configuration from file or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply filter overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	return cfg, nil
}

// defaultAction handles invocation without a subcommand. A bare repository
// path argument runs the report command on it.
func defaultAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return reportAction(c)
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

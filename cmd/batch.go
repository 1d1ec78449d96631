package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/config"
	"github.com/masmgr/repometrics-go/internal/aggregation"
	"github.com/masmgr/repometrics-go/internal/batch"
	"github.com/masmgr/repometrics-go/internal/git"
	"github.com/masmgr/repometrics-go/internal/output"
)

// BatchCmd returns the batch command.
func BatchCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Concurrent jobs (default: from config)",
		},
		&cli.StringFlag{
			Name:  "work-dir",
			Usage: "Scratch directory for clones (default: from config)",
		},
		&cli.BoolFlag{
			Name:  "keep-clones",
			Usage: "Keep cloned repositories after processing",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for per-repository reports (default: from config)",
		},
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Report on every repository in a list file",
		ArgsUsage: "<list file>",
		Description: "The list file holds one `name;path` entry per line, where path\n" +
			"is a local directory or a clone URL. Remote repositories are cloned\n" +
			"into scratch directories first.",
		Flags:  flags,
		Action: batchAction,
	}
}

func batchAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("batch requires a job list file")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	jobs, err := batch.ParseListFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs in list file.")
		return nil
	}

	history, err := historyOptions(c, cfg)
	if err != nil {
		return err
	}
	aggOpts, err := aggregationOptions(c, cfg)
	if err != nil {
		return err
	}
	outOpts, err := outputOptions(c, cfg)
	if err != nil {
		return err
	}
	// Console writes to stdout only; batch jobs need file targets.
	if outOpts.Format == output.FormatConsole {
		outOpts.Format = output.FormatJSON
	}

	outputDir := cfg.Batch.OutputDir
	if c.IsSet("output-dir") {
		outputDir = c.String("output-dir")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	logger := logrus.New()
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	runner := &batch.Runner{
		Workers:    batchWorkers(c, cfg),
		WorkDir:    batchWorkDir(c, cfg),
		KeepClones: cfg.Batch.KeepClones || c.Bool("keep-clones"),
		Logger:     logger,
	}

	process := func(ctx context.Context, job batch.Job, repoPath string) error {
		return runBatchJob(ctx, job, repoPath, history, aggOpts, outOpts, outputDir)
	}

	results := runner.Run(c.Context, jobs, process)

	failed := batch.FailedCount(results)
	color.Green("Processed %d repositories, %d failed", len(results), failed)
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", res.Job.Name, res.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}

// runBatchJob builds one repository's report and writes it under outputDir.
func runBatchJob(ctx context.Context, job batch.Job, repoPath string, history git.HistoryOptions, aggOpts aggregation.Options, outOpts output.OutputOptions, outputDir string) error {
	repo, err := git.Open(repoPath)
	if err != nil {
		return err
	}

	report, err := aggregation.Run(ctx, repo, history, aggOpts)
	if err != nil {
		return err
	}
	report.Repository = job.Path
	report.Branch = branchLabel(repo, history.Branch)

	name := fmt.Sprintf("%s.%s", batch.SanitizeName(job.Name), outOpts.Format.FileExtension())
	outOpts.OutputPath = filepath.Join(outputDir, name)

	writer := output.NewReportWriter(outOpts.Format)
	return writer.Write(report, outOpts)
}

func batchWorkers(c *cli.Context, cfg *config.Config) int {
	if c.IsSet("jobs") {
		return c.Int("jobs")
	}
	return cfg.Batch.Jobs
}

func batchWorkDir(c *cli.Context, cfg *config.Config) string {
	if c.IsSet("work-dir") {
		return c.String("work-dir")
	}
	return cfg.Batch.WorkDir
}

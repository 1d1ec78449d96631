package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/repometrics-go/config"
	"github.com/masmgr/repometrics-go/internal/aggregation"
	"github.com/masmgr/repometrics-go/internal/git"
	"github.com/masmgr/repometrics-go/internal/output"
)

// CommandContext holds common state for command execution. It bundles the
// loaded configuration, the opened repository, and the parsed options.
type CommandContext struct {
	Config  *config.Config
	Repo    *git.Repository
	History git.HistoryOptions
	Options aggregation.Options
}

// NewCommandContext creates a context from CLI flags. It loads the
// configuration, parses the date flags, and opens the repository.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	history, err := historyOptions(c, cfg)
	if err != nil {
		return nil, err
	}
	aggOpts, err := aggregationOptions(c, cfg)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(repoArg(c))
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:  cfg,
		Repo:    repo,
		History: history,
		Options: aggOpts,
	}, nil
}

// BuildReport reads the repository's history and aggregates it.
func (cc *CommandContext) BuildReport(ctx context.Context) (*aggregation.Report, error) {
	report, err := aggregation.Run(ctx, cc.Repo, cc.History, cc.Options)
	if err != nil {
		return nil, err
	}
	report.Repository = cc.Repo.Path()
	report.Branch = branchLabel(cc.Repo, cc.History.Branch)
	return report, nil
}

// branchLabel resolves the branch name shown on reports. An empty or HEAD
// selection falls back to the checked-out branch.
func branchLabel(repo *git.Repository, requested string) string {
	label := strings.TrimSpace(requested)
	if label != "" && !strings.EqualFold(label, "HEAD") {
		return label
	}
	current, err := repo.CurrentBranch()
	if err != nil {
		return ""
	}
	return current
}

// historyOptions builds the history selection from CLI flags and config.
func historyOptions(c *cli.Context, cfg *config.Config) (git.HistoryOptions, error) {
	since, err := parseDateFlag(c.String("since"))
	if err != nil {
		return git.HistoryOptions{}, fmt.Errorf("invalid since date: %w", err)
	}
	until, err := parseDateFlag(c.String("until"))
	if err != nil {
		return git.HistoryOptions{}, fmt.Errorf("invalid until date: %w", err)
	}

	branch := c.String("branch")
	if branch == "" {
		branch = cfg.History.Branch
	}

	return git.HistoryOptions{
		Branch: branch,
		Since:  since,
		Until:  until,
	}, nil
}

// aggregationOptions builds the aggregation options from CLI flags and
// config.
func aggregationOptions(c *cli.Context, cfg *config.Config) (aggregation.Options, error) {
	refName := c.String("reference")
	if refName == "" {
		refName = cfg.Aggregation.Reference
	}
	reference, err := parseReferenceFlag(refName)
	if err != nil {
		return aggregation.Options{}, err
	}

	zoneName := c.String("timezone")
	if zoneName == "" {
		zoneName = cfg.Aggregation.Timezone
	}
	zone, err := parseZoneFlag(zoneName)
	if err != nil {
		return aggregation.Options{}, err
	}

	return aggregation.Options{
		Reference:    reference,
		Zone:         zone,
		WindowDays:   cfg.Aggregation.WindowDays,
		Include:      cfg.Filters.Include,
		Exclude:      cfg.Filters.Exclude,
		SkipVendored: cfg.Aggregation.SkipVendored,
	}, nil
}

// parseReferenceFlag parses the window reference policy name.
func parseReferenceFlag(s string) (aggregation.ReferencePolicy, error) {
	switch strings.ToLower(s) {
	case "", "latest":
		return aggregation.ReferenceLatestCommit, nil
	case "now":
		return aggregation.ReferenceNow, nil
	default:
		return aggregation.ReferenceLatestCommit, fmt.Errorf("invalid reference %q (expected latest or now)", s)
	}
}

// parseZoneFlag parses the histogram bucketing zone name.
func parseZoneFlag(s string) (aggregation.BucketZone, error) {
	switch strings.ToLower(s) {
	case "", "utc":
		return aggregation.ZoneUTC, nil
	case "commit", "local":
		return aggregation.ZoneCommit, nil
	default:
		return aggregation.ZoneUTC, fmt.Errorf("invalid timezone %q (expected utc or commit)", s)
	}
}

// outputOptions builds the writer options from CLI flags and config.
func outputOptions(c *cli.Context, cfg *config.Config) (output.OutputOptions, error) {
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseOutputFormat(name)
	if err != nil {
		return output.OutputOptions{}, err
	}

	top := cfg.Output.Top
	if c.IsSet("top") {
		top = c.Int("top")
	}

	return output.OutputOptions{
		Format:     format,
		Top:        top,
		OutputPath: c.String("output"),
	}, nil
}

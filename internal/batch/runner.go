package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/masmgr/repometrics-go/internal/git"
)

// DefaultWorkers bounds job concurrency when Runner.Workers is unset.
const DefaultWorkers = 4

// ProcessFunc handles a single job once its repository is available at a
// local path.
type ProcessFunc func(ctx context.Context, job Job, repoPath string) error

// Result records the outcome of one job.
type Result struct {
	Job      Job
	Err      error
	Duration time.Duration
}

// Runner executes repository jobs with a bounded worker pool. Remote jobs
// are cloned into scratch directories under WorkDir first.
type Runner struct {
	Workers    int
	WorkDir    string
	KeepClones bool
	Logger     *logrus.Logger
}

// Run processes every job and returns one result per job, in input order.
// A failing job never stops the others; its error is carried in the result.
func (r *Runner) Run(ctx context.Context, jobs []Job, process ProcessFunc) []Result {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = r.runJob(ctx, job, process)
			return nil
		})
	}
	// Worker funcs never return errors; failures live in results.
	_ = g.Wait()

	return results
}

func (r *Runner) runJob(ctx context.Context, job Job, process ProcessFunc) Result {
	log := r.logger().WithFields(logrus.Fields{
		"job":  job.Name,
		"path": job.Path,
	})
	start := time.Now()
	log.Info("Processing repository")

	repoPath := job.Path
	if job.IsRemote() {
		dir, err := r.clone(ctx, job)
		if err != nil {
			log.WithError(err).Error("Clone failed")
			return Result{Job: job, Err: err, Duration: time.Since(start)}
		}
		if !r.KeepClones {
			defer os.RemoveAll(dir)
		}
		repoPath = dir
		log = log.WithField("clone", dir)
	}

	err := process(ctx, job, repoPath)
	duration := time.Since(start)
	if err != nil {
		log.WithError(err).WithField("duration", duration.String()).Error("Job failed")
	} else {
		log.WithField("duration", duration.String()).Info("Job completed")
	}
	return Result{Job: job, Err: err, Duration: duration}
}

// clone fetches a remote job into a scratch directory with a unique suffix
// so concurrent jobs never collide.
func (r *Runner) clone(ctx context.Context, job Job) (string, error) {
	workDir := r.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir %s: %w", workDir, err)
	}
	dir := filepath.Join(workDir, fmt.Sprintf("%s-%s", SanitizeName(job.Name), uuid.NewString()))
	if _, err := git.Clone(ctx, job.Path, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return DefaultWorkers
}

func (r *Runner) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}

// FailedCount reports how many results carry errors.
func FailedCount(results []Result) int {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	return failed
}

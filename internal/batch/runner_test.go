package batch

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunnerRun_ProcessesEveryJob(t *testing.T) {
	jobs := []Job{
		{Name: "a", Path: "/repos/a"},
		{Name: "b", Path: "/repos/b"},
		{Name: "c", Path: "/repos/c"},
	}

	var mu sync.Mutex
	seen := map[string]string{}
	runner := &Runner{Logger: quietLogger()}
	results := runner.Run(context.Background(), jobs, func(ctx context.Context, job Job, repoPath string) error {
		mu.Lock()
		seen[job.Name] = repoPath
		mu.Unlock()
		return nil
	})

	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, expected %d", len(results), len(jobs))
	}
	for i, res := range results {
		if res.Job != jobs[i] {
			t.Errorf("results[%d].Job = %+v, expected %+v", i, res.Job, jobs[i])
		}
		if res.Err != nil {
			t.Errorf("results[%d].Err = %v, expected nil", i, res.Err)
		}
	}
	for _, job := range jobs {
		if seen[job.Name] != job.Path {
			t.Errorf("process saw path %q for %q, expected %q", seen[job.Name], job.Name, job.Path)
		}
	}
}

func TestRunnerRun_FailureDoesNotStopOthers(t *testing.T) {
	jobs := []Job{
		{Name: "good", Path: "/repos/good"},
		{Name: "bad", Path: "/repos/bad"},
		{Name: "also-good", Path: "/repos/also-good"},
	}
	boom := errors.New("boom")

	runner := &Runner{Logger: quietLogger()}
	results := runner.Run(context.Background(), jobs, func(ctx context.Context, job Job, repoPath string) error {
		if job.Name == "bad" {
			return boom
		}
		return nil
	})

	if got := FailedCount(results); got != 1 {
		t.Fatalf("FailedCount() = %d, expected 1", got)
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("results[1].Err = %v, expected %v", results[1].Err, boom)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("expected surrounding jobs to succeed, got %v and %v", results[0].Err, results[2].Err)
	}
}

func TestRunnerRun_BoundsConcurrency(t *testing.T) {
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{Name: "job", Path: "/repos/job"}
	}

	var inFlight, peak atomic.Int32
	runner := &Runner{Workers: 2, Logger: quietLogger()}
	runner.Run(context.Background(), jobs, func(ctx context.Context, job Job, repoPath string) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return nil
	})

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, expected at most 2", got)
	}
}

func TestRunnerWorkersDefault(t *testing.T) {
	runner := &Runner{}
	if got := runner.workers(); got != DefaultWorkers {
		t.Errorf("workers() = %d, expected %d", got, DefaultWorkers)
	}
	runner.Workers = 9
	if got := runner.workers(); got != 9 {
		t.Errorf("workers() = %d, expected 9", got)
	}
}

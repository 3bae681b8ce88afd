package pipeline

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

// Manifest lists jobs for RunAll
type Manifest struct {
	// Workers bounds concurrent jobs; 0 means one per CPU
	Workers int   `yaml:"workers" json:"workers"`
	Jobs    []Job `yaml:"jobs" json:"jobs"`
}

// LoadManifest reads a YAML manifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read manifest").
			WithDetail("path", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse manifest").
			WithDetail("path", path)
	}
	if len(m.Jobs) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "manifest has no jobs").
			WithDetail("path", path)
	}
	for i, job := range m.Jobs {
		if job.Estimator == "" {
			return nil, errors.Newf(errors.ErrorTypeConfig, "manifest job %d has no estimator", i).
				WithDetail("path", path)
		}
	}
	return &m, nil
}

// RunAll runs jobs on a bounded set of workers. Results come back in job
// order; a failed job does not stop the others. Jobs not started before
// ctx is done fail with the context error.
func (p *Pipeline) RunAll(ctx context.Context, jobs []Job, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	start := time.Now()
	p.logger.Info("starting batch",
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", workers))

	results := make([]Result, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				res, _ := p.Run(ctx, jobs[i])
				results[i] = *res
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for j := i; j < len(jobs); j++ {
				results[j] = Result{Job: jobs[j].label(), Err: ctx.Err()}
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info("batch completed",
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
	return results
}

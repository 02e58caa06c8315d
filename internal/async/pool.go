// Package async runs independent per-file jobs on a bounded worker pool.
package async

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is the smallest useful unit: one file to process.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes one job. Errors are recorded per job and never stop the pool.
type Handler func(ctx context.Context, job Job) error

// Outcome is the result of one job.
type Outcome struct {
	Job     Job
	Err     error
	Elapsed time.Duration
}

// Pool bounds how many jobs run at once and how long each may take.
type Pool struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Run processes every job and returns outcomes in job order. Once ctx is done no new
// jobs start; those not started carry ctx's error.
func (p *Pool) Run(ctx context.Context, jobs []Job, h Handler) []Outcome {
	out := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, job := range jobs {
		out[i].Job = job
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			start := time.Now()
			jctx, cancel := context.WithTimeout(ctx, p.timeout)
			err := h(jctx, job)
			cancel()

			out[i].Err = err
			out[i].Elapsed = time.Since(start)
			if err != nil {
				p.logger.Error("batch.job.failed", "path", job.Path, "trace_id", job.TraceID, "error", err,
					"elapsed_ms", out[i].Elapsed.Milliseconds())
			} else {
				p.logger.Info("batch.job.ok", "path", job.Path, "trace_id", job.TraceID,
					"elapsed_ms", out[i].Elapsed.Milliseconds())
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("batch.pool.drained", "jobs", len(jobs), "workers", p.workers)
	return out
}

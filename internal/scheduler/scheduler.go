// Package scheduler runs file jobs on a bounded pool, largest file first.
//
// Dispatch is Longest-Processing-Time-first: the job list is ordered by size
// descending and a single dispatcher goroutine hands jobs out in that order,
// blocking on a counting semaphore of size W whenever W jobs are in flight.
// Only the dispatcher reads the job list, and every job ends in exactly one
// Outcome, so success and failure are reported explicitly instead of being
// inferred from how many workers are alive.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"csvxform/internal/jobs"
)

// DefaultWorkers is the concurrency bound used when none is configured.
const DefaultWorkers = 8

var (
	// ErrNotStarted marks jobs that were never dispatched because the context
	// ended first. It is joined with the context error.
	ErrNotStarted = errors.New("not started")

	// ErrPanic marks a job whose function panicked.
	ErrPanic = errors.New("worker panic")
)

// Func processes one job.
type Func func(ctx context.Context, job jobs.FileJob) (jobs.Result, error)

// Option customises Run.
type Option func(*options)

type options struct {
	onStart func(seq int, job jobs.FileJob)
}

// WithOnStart registers fn to be called from the dispatcher, in dispatch
// order, right after a slot was acquired for job and before it runs. seq
// counts from 0.
func WithOnStart(fn func(seq int, job jobs.FileJob)) Option {
	return func(o *options) { o.onStart = fn }
}

// LargestFirst returns a copy of js ordered by size descending; equal sizes
// keep path order so runs are reproducible.
func LargestFirst(js []jobs.FileJob) []jobs.FileJob {
	out := make([]jobs.FileJob, len(js))
	copy(out, js)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Run processes every job with at most workers concurrent calls to fn and
// returns one Outcome per job, in dispatch order (largest first).
//
// A failing or panicking job does not stop the others. When ctx ends, jobs
// not yet dispatched are reported with ErrNotStarted; jobs already running
// see the cancelled ctx and decide for themselves. Run returns only after
// every dispatched job has returned.
func Run(ctx context.Context, js []jobs.FileJob, workers int, fn Func, opts ...Option) []jobs.Outcome {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if workers < 1 {
		workers = 1
	}

	queue := LargestFirst(js)
	outs := make([]jobs.Outcome, len(queue))
	sem := semaphore.NewWeighted(int64(workers))

	var g errgroup.Group
	for i, job := range queue {
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			for j := i; j < len(queue); j++ {
				outs[j] = jobs.Outcome{Job: queue[j], Err: fmt.Errorf("%w: %w", ErrNotStarted, err)}
			}
			break
		}

		if o.onStart != nil {
			o.onStart(i, job)
		}
		i, job := i, job
		g.Go(func() error {
			defer sem.Release(1)
			outs[i] = runOne(ctx, fn, job)
			return nil
		})
	}
	_ = g.Wait()

	return outs
}

// runOne calls fn and turns a panic into a failed Outcome.
func runOne(ctx context.Context, fn Func, job jobs.FileJob) (out jobs.Outcome) {
	out.Job = job
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	out.Result, out.Err = fn(ctx, job)
	return out
}

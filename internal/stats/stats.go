// Package stats aggregates per-file worker totals for the end-of-run report.
// The totals are never used for scheduling decisions.
package stats

import (
	"sync"
	"time"
)

// Totals is a point-in-time copy of the aggregated counters.
type Totals struct {
	Files   int64
	Lines   int64
	Elapsed time.Duration // sum of per-worker elapsed, not wall time
}

// Aggregator merges worker results under a mutex. The zero value is ready to
// use; share it by pointer.
type Aggregator struct {
	mu      sync.Mutex
	files   int64
	lines   int64
	elapsed time.Duration
}

// New returns an empty aggregator.
func New() *Aggregator { return &Aggregator{} }

// Merge adds one worker's line count and elapsed time.
func (a *Aggregator) Merge(lines int64, elapsed time.Duration) {
	a.mu.Lock()
	a.files++
	a.lines += lines
	a.elapsed += elapsed
	a.mu.Unlock()
}

// Snapshot returns the current totals.
func (a *Aggregator) Snapshot() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Totals{Files: a.files, Lines: a.lines, Elapsed: a.elapsed}
}

// Rate returns lines per second of the given wall-clock duration.
func (t Totals) Rate(wall time.Duration) float64 {
	if wall <= 0 {
		return 0
	}
	return float64(t.Lines) / wall.Seconds()
}

// NormalizedRate returns lines per second of summed worker time, i.e. the
// throughput a single worker would have had running every file serially.
func (t Totals) NormalizedRate() float64 {
	return t.Rate(t.Elapsed)
}

// Package jobs holds the value types passed between discovery, the scheduler
// and file workers.
package jobs

import (
	"fmt"
	"time"
)

// FileJob is one input file scheduled for transformation. It is created once
// by discovery and never mutated.
type FileJob struct {
	Path string
	Size int64
}

// Result is what a worker reports after fully writing one output file.
type Result struct {
	Job      FileJob
	Output   string        // destination path
	Lines    int64         // lines read and written
	Batches  int64         // bulk writes issued
	Elapsed  time.Duration // wall time spent on this file
	Checksum uint64        // xxh3 of the bytes written
}

// Rate returns lines per second for this file, or 0 when no time elapsed.
func (r Result) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Lines) / r.Elapsed.Seconds()
}

// Outcome is the scheduler's record of one dispatched job. Err is nil on
// success; otherwise Result may be partially filled.
type Outcome struct {
	Job    FileJob
	Result Result
	Err    error
}

// OK reports whether the job completed successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// String formats the outcome for logs.
func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: failed: %v", o.Job.Path, o.Err)
	}
	return fmt.Sprintf("%s: ok lines=%d", o.Job.Path, o.Result.Lines)
}

// Split partitions outcomes into successes and failures, preserving order.
func Split(outs []Outcome) (ok, failed []Outcome) {
	for _, o := range outs {
		if o.OK() {
			ok = append(ok, o)
		} else {
			failed = append(failed, o)
		}
	}
	return ok, failed
}

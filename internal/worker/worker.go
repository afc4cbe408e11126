// Package worker rewrites one input file into its output file.
//
// A worker streams the source line by line, runs every line body through the
// transform chain and appends the result to an in-memory batch. The batch is
// written with a single Write call whenever it holds more than BatchSize
// lines, and once more at end of input, so output order always equals input
// order. Finished files are merged into the shared stats aggregator.
package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"

	"csvxform/internal/datasource/file"
	"csvxform/internal/jobs"
	"csvxform/internal/metrics"
	"csvxform/internal/stats"
	"csvxform/internal/transform"
)

const (
	// DefaultBatchSize is the number of buffered lines that triggers a flush.
	DefaultBatchSize = 1000

	readBufSize = 256 << 10 // 256 KiB
)

// Config carries a worker's dependencies. Stats is required.
type Config struct {
	OutputDir string
	BatchSize int             // <= 0 means DefaultBatchSize
	Chain     transform.Chain // nil means transform.Default()
	Encoding  string          // input charset; empty means UTF-8
	Stats     *stats.Aggregator
	Job       string           // metrics job label
	Report    func(jobs.Result) // called once per finished file; may be nil

	clockNowFn func() time.Time
}

// Worker processes FileJobs. One Worker may be shared by many goroutines:
// it holds no per-file state.
type Worker struct {
	cfg Config
}

// New returns a Worker with defaults applied.
func New(cfg Config) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Chain == nil {
		cfg.Chain = transform.Default()
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.New()
	}
	if cfg.clockNowFn == nil {
		cfg.clockNowFn = time.Now
	}
	return &Worker{cfg: cfg}
}

// OutputPath returns where job's rewritten file is written.
func (w *Worker) OutputPath(job jobs.FileJob) string {
	return filepath.Join(w.cfg.OutputDir, filepath.Base(job.Path))
}

// Process rewrites job into OutputPath(job).
//
// Any stale destination file is removed first. On error the destination may
// be left truncated and nothing is merged into the aggregator; the returned
// Result still names the job and output path.
func (w *Worker) Process(ctx context.Context, job jobs.FileJob) (res jobs.Result, err error) {
	start := w.cfg.clockNowFn()
	res = jobs.Result{Job: job, Output: w.OutputPath(job)}
	defer func() {
		metrics.RecordFile(w.cfg.Job, err, w.cfg.clockNowFn().Sub(start))
	}()

	if err := os.Remove(res.Output); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("remove stale %s: %w", res.Output, err)
	}

	src, err := file.NewLocal(job.Path).WithEncoding(w.cfg.Encoding).Open(ctx)
	if err != nil {
		return res, err
	}
	defer src.Close()

	out, err := os.OpenFile(res.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return res, fmt.Errorf("open output: %w", err)
	}

	if err := w.copyLines(ctx, src, out, &res); err != nil {
		_ = out.Close()
		return res, fmt.Errorf("%s: %w", job.Path, err)
	}
	if err := out.Close(); err != nil {
		return res, fmt.Errorf("close %s: %w", res.Output, err)
	}

	res.Elapsed = w.cfg.clockNowFn().Sub(start)
	w.cfg.Stats.Merge(res.Lines, res.Elapsed)
	metrics.RecordLines(w.cfg.Job, res.Lines)
	metrics.RecordBatches(w.cfg.Job, res.Batches)

	if w.cfg.Report != nil {
		w.cfg.Report(res)
	}
	return res, nil
}

// copyLines streams src through the chain into dst in batches, filling
// res.Lines, res.Batches and res.Checksum.
func (w *Worker) copyLines(ctx context.Context, src io.Reader, dst io.Writer, res *jobs.Result) error {
	br := bufio.NewReaderSize(src, readBufSize)
	h := xxh3.New()

	buf := make([]byte, 0, readBufSize)
	pending := 0

	flush := func() error {
		if pending == 0 {
			return nil
		}
		if _, err := dst.Write(buf); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
		_, _ = h.Write(buf)
		res.Batches++
		buf = buf[:0]
		pending = 0
		return nil
	}

	for {
		line, rerr := br.ReadString('\n')
		if len(line) > 0 {
			body, term := splitTerminator(line)
			buf = append(buf, w.cfg.Chain.Apply(body)...)
			buf = append(buf, term...)
			res.Lines++
			pending++

			if pending > w.cfg.BatchSize {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read: %w", rerr)
		}
	}

	if err := flush(); err != nil {
		return err
	}
	res.Checksum = h.Sum64()
	return nil
}

// splitTerminator separates a line into its body and its "\n" or "\r\n"
// terminator. The last line of a file may have no terminator.
func splitTerminator(line string) (body, term string) {
	n := len(line)
	if n == 0 || line[n-1] != '\n' {
		return line, ""
	}
	if n >= 2 && line[n-2] == '\r' {
		return line[:n-2], line[n-2:]
	}
	return line[:n-1], line[n-1:]
}

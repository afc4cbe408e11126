package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"csvxform/internal/config"
	"csvxform/internal/datasource/file"
	"csvxform/internal/jobs"
	"csvxform/internal/metrics"
	"csvxform/internal/metrics/datadog"
	"csvxform/internal/metrics/prompush"
	"csvxform/internal/report"
	"csvxform/internal/scheduler"
	"csvxform/internal/stats"
	"csvxform/internal/transform"
	"csvxform/internal/worker"
)

const (
	exitOK       = 0
	exitSetup    = 1 // usage, configuration or discovery error
	exitFailures = 2 // at least one file failed
)

// run is main without the process globals, so tests can drive a whole run.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "", log.LstdFlags)

	fs := flag.NewFlagSet("csvxform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: csvxform [flags] <input-dir>")
		fs.PrintDefaults()
	}

	cfg, err := config.LoadFromArgs(fs, getenv, args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, config.ErrUsage):
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitSetup
	case err != nil:
		// the flag package already printed the error and usage
		return exitSetup
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		logger.Printf("configuration is invalid")
		return exitSetup
	}

	runID := uuid.NewString()
	if cfg.Verbose {
		logger.Printf("run: id=%s %s", runID, cfg)
	}

	if flush := setupMetrics(cfg, runID, logger); flush != nil {
		defer flush()
	}

	js, err := file.Discover(cfg.InputDir, cfg.Ext)
	if err != nil {
		logger.Printf("discover: %v", err)
		return exitSetup
	}
	if err := os.MkdirAll(cfg.OutputPath(), 0o755); err != nil {
		logger.Printf("create output dir: %v", err)
		return exitSetup
	}
	if cfg.Verbose {
		logger.Printf("discover: files=%d bytes=%d", len(js), file.TotalSize(js))
	}

	printer := report.ForWriter(stdout, getenv)
	agg := stats.New()

	chain := transform.Default()
	if cfg.BareTimestamps {
		chain = transform.WithBareTimestamps()
	}
	w := worker.New(worker.Config{
		OutputDir: cfg.OutputPath(),
		BatchSize: cfg.BatchSize,
		Chain:     chain,
		Encoding:  cfg.InputEncoding,
		Stats:     agg,
		Job:       cfg.Job,
		Report:    printer.File,
	})

	var opts []scheduler.Option
	if cfg.Verbose {
		opts = append(opts, scheduler.WithOnStart(func(seq int, job jobs.FileJob) {
			logger.Printf("dispatch: seq=%d path=%s size=%d", seq, job.Path, job.Size)
		}))
	}

	start := time.Now()
	outs := scheduler.Run(ctx, js, cfg.Workers, w.Process, opts...)
	wall := time.Since(start)

	ok, failed := jobs.Split(outs)
	for _, o := range failed {
		printer.Failed(o)
	}
	printer.Summary(report.Summary{
		RunID:  runID,
		Wall:   wall,
		Totals: agg.Snapshot(),
		OK:     len(ok),
		Failed: len(failed),
	})

	if len(failed) > 0 {
		return exitFailures
	}
	return exitOK
}

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at the end of the run, or nil when metrics are off.
// A backend that cannot be built is logged and left as the nop default.
func setupMetrics(cfg *config.Config, runID string, logger *log.Logger) func() {
	var b metrics.Backend
	switch cfg.MetricsBackend {
	case config.MetricsPushgateway:
		pb, err := prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
		if err != nil {
			logger.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return nil
		}
		b = pb.WithRunID(runID)
		logger.Printf("metrics: url=%v, backend=%v, job_name=%v", cfg.PushgatewayURL, cfg.MetricsBackend, cfg.Job)

	case config.MetricsDatadog:
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.DogStatsDAddr,
			GlobalTags: []string{"run_id:" + runID},
		})
		if err != nil {
			logger.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return nil
		}
		b = db
		logger.Printf("metrics: addr=%v, backend=%v", cfg.DogStatsDAddr, cfg.MetricsBackend)

	default:
		if cfg.Verbose {
			logger.Printf("metrics: disabled (backend=%q)", cfg.MetricsBackend)
		}
		return nil
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Printf("metrics: flush error: %v", err)
		}
	}
}

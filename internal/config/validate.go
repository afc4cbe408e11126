package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"csvxform/internal/datasource/file"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// maxSaneWorkers is the point past which open file descriptors (two per
// worker) start to matter on default ulimits.
const maxSaneWorkers = 256

// Issue describes a single validation finding. Path is the flag name.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over cfg and returns every finding. It does
// not touch the filesystem.
func Validate(cfg *Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, a ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, a...)})
	}

	if strings.TrimSpace(cfg.InputDir) == "" {
		add(SeverityError, "input_dir", "input directory must not be empty")
	}

	switch out := cfg.OutputDir; {
	case strings.TrimSpace(out) == "":
		add(SeverityError, "output_dir", "output directory must not be empty")
	case filepath.IsAbs(out), strings.ContainsAny(out, `/\`), out == ".", out == "..":
		add(SeverityError, "output_dir", "output directory %q must be a single relative name inside the input directory", out)
	}

	if strings.TrimSpace(cfg.Ext) == "" {
		add(SeverityError, "ext", "extension must not be empty")
	}

	if cfg.Workers < 1 {
		add(SeverityError, "workers", "workers must be >= 1, got %d", cfg.Workers)
	} else if cfg.Workers > maxSaneWorkers {
		add(SeverityWarning, "workers", "workers=%d keeps %d files open at once; check the descriptor limit", cfg.Workers, 2*cfg.Workers)
	}
	if cfg.BatchSize < 1 {
		add(SeverityError, "batch_size", "batch_size must be >= 1, got %d", cfg.BatchSize)
	}

	if _, err := file.ResolveEncoding(cfg.InputEncoding); err != nil {
		add(SeverityError, "input_encoding", "%v", err)
	}

	switch cfg.MetricsBackend {
	case "", MetricsNone:
	case MetricsPushgateway:
		if strings.TrimSpace(cfg.PushgatewayURL) == "" {
			add(SeverityError, "pushgateway_url", "pushgateway backend requires a URL")
		}
	case MetricsDatadog:
		if strings.TrimSpace(cfg.DogStatsDAddr) == "" {
			add(SeverityError, "dogstatsd_addr", "datadog backend requires an address")
		}
	default:
		add(SeverityError, "metrics_backend", "unknown metrics backend %q (want none, pushgateway or datadog)", cfg.MetricsBackend)
	}

	return issues
}

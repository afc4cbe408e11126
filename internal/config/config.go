// Package config centralizes csvxform configuration. Every tunable is a
// command-line flag whose default is seeded from an environment variable, so
// `-help` lists all knobs and deployments can stay 12-factor.
//
// Typical usage:
//
//	cfg, err := config.Load() // reads os.Args and os.Environ
//
// Tests use LoadFromArgs with a private FlagSet and a map-backed getenv:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	cfg, err := config.LoadFromArgs(fs, func(k string) string { return env[k] }, []string{"-workers=4", "in"})
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUsage is returned when the positional arguments are wrong.
var ErrUsage = errors.New("expected exactly one argument: the input directory")

// Metrics backend names accepted by -metrics_backend.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Config holds all process configuration. It is a plain value and safe to
// share read-only across goroutines after Load returns.
type Config struct {
	// IO
	InputDir      string // positional argument
	OutputDir     string // subdirectory of InputDir receiving rewritten files
	Ext           string // input file extension, e.g. ".csv"
	InputEncoding string // charset of input files; empty means UTF-8

	// Throughput
	Workers   int // files processed concurrently
	BatchSize int // lines buffered before one bulk write

	// Output dialect
	BareTimestamps bool // unquote normalised timestamps

	// Observability
	Job            string // metrics job name
	MetricsBackend string // none, pushgateway or datadog
	PushgatewayURL string
	DogStatsDAddr  string
	Verbose        bool
}

// LoadFromArgs defines flags on fs with defaults seeded through getenv, parses
// args and takes the single positional argument as InputDir.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// A flag parse error is returned as is; a wrong positional argument count
// returns ErrUsage. In both cases the partially filled Config is returned so
// callers can still read flags like -v.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	fs.StringVar(&cfg.OutputDir, "output_dir", envOrDefaultFn("CSVXFORM_OUTPUT_DIR", "output"), "Subdirectory of the input directory that receives rewritten files")
	fs.StringVar(&cfg.Ext, "ext", envOrDefaultFn("CSVXFORM_EXT", ".csv"), "Extension of input files to rewrite")
	fs.StringVar(&cfg.InputEncoding, "input_encoding", getenv("CSVXFORM_INPUT_ENCODING"), "Charset of input files (e.g. windows-1250); empty means UTF-8")

	fs.IntVar(&cfg.Workers, "workers", intEnvOrDefaultFn("CSVXFORM_WORKERS", 8), "Number of files processed concurrently")
	fs.IntVar(&cfg.BatchSize, "batch_size", intEnvOrDefaultFn("CSVXFORM_BATCH_SIZE", 1000), "Lines buffered before one bulk write")

	fs.BoolVar(&cfg.BareTimestamps, "bare_timestamps", boolEnvOrDefaultFn("CSVXFORM_BARE_TIMESTAMPS", true), "Write normalised timestamps without quotes")

	fs.StringVar(&cfg.Job, "job", envOrDefaultFn("CSVXFORM_JOB", "csvxform"), "Job name used for metrics")
	fs.StringVar(&cfg.MetricsBackend, "metrics_backend", envOrDefaultFn("METRICS_BACKEND", MetricsNone), "Metrics backend: none, pushgateway or datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", envOrDefaultFn("PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")
	fs.StringVar(&cfg.DogStatsDAddr, "dogstatsd_addr", envOrDefaultFn("DOGSTATSD_ADDR", "127.0.0.1:8125"), "DogStatsD address")
	fs.BoolVar(&cfg.Verbose, "v", boolEnvOrDefaultFn("CSVXFORM_VERBOSE", false), "Enable verbose logs")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() != 1 {
		return cfg, ErrUsage
	}
	cfg.InputDir = fs.Arg(0)
	return cfg, nil
}

// Load is the production entry point: process flag set, os.Getenv and
// os.Args[1:].
func Load() (*Config, error) {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// OutputPath returns the directory rewritten files are written to.
func (c *Config) OutputPath() string {
	return filepath.Join(c.InputDir, c.OutputDir)
}

// String renders the effective runtime knobs for a startup log line.
func (c *Config) String() string {
	return fmt.Sprintf("input=%s output=%s ext=%s workers=%d batch=%d bare_timestamps=%t encoding=%q metrics=%s",
		c.InputDir, c.OutputPath(), c.Ext, c.Workers, c.BatchSize, c.BareTimestamps, c.InputEncoding, c.MetricsBackend)
}

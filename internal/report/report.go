// Package report prints the console view of a run: one line per finished
// file, one line per failed file and a closing summary.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"csvxform/internal/jobs"
	"csvxform/internal/stats"
)

const (
	red   = "\033[1;91m"
	reset = "\033[0m"
)

// Printer writes report lines to w. Workers call File concurrently, so every
// write is serialised.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// New returns a Printer writing to w without colour.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// ForWriter returns a Printer on w that colours failures when w is a
// terminal, NO_COLOR is unset and TERM is not "dumb".
func ForWriter(w io.Writer, getenv func(string) string) *Printer {
	p := New(w)
	if f, ok := w.(*os.File); ok {
		p.color = ColorEnabled(f.Fd(), getenv)
	}
	return p
}

// ColorEnabled decides whether escape codes may be written to fd.
func ColorEnabled(fd uintptr, getenv func(string) string) bool {
	if getenv("NO_COLOR") != "" || strings.EqualFold(getenv("TERM"), "dumb") {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// File prints the completion line for one rewritten file.
func (p *Printer) File(r jobs.Result) {
	p.printf("%s: %s lines in %s (%s lines/s) xxh3=%016x\n",
		r.Job.Path, humanize.Comma(r.Lines), seconds(r.Elapsed), rate(r.Rate()), r.Checksum)
}

// Failed prints one line per failed outcome.
func (p *Printer) Failed(o jobs.Outcome) {
	if p.color {
		p.printf("%sFAILED%s %s: %v\n", red, reset, o.Job.Path, o.Err)
		return
	}
	p.printf("FAILED %s: %v\n", o.Job.Path, o.Err)
}

// Summary describes a whole run.
type Summary struct {
	RunID  string
	Wall   time.Duration
	Totals stats.Totals
	OK     int
	Failed int
}

// Summary prints the closing line. Wall rate uses elapsed wall time; the
// normalised rate uses the summed worker time.
func (p *Printer) Summary(s Summary) {
	p.printf("done in %s: %s lines (%s lines/s wall), worker time %s (%s lines/s normalised), files ok=%d failed=%d run_id=%s\n",
		seconds(s.Wall), humanize.Comma(s.Totals.Lines), rate(s.Totals.Rate(s.Wall)),
		seconds(s.Totals.Elapsed), rate(s.Totals.NormalizedRate()),
		s.OK, s.Failed, s.RunID)
}

func (p *Printer) printf(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, a...)
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

func rate(r float64) string {
	return humanize.CommafWithDigits(r, 0)
}

package report

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"csvxform/internal/jobs"
	"csvxform/internal/stats"
)

func TestPrinter_File(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf).File(jobs.Result{
		Job:      jobs.FileJob{Path: "in/a.csv", Size: 10},
		Lines:    12345,
		Elapsed:  2 * time.Second,
		Checksum: 0xabc,
	})

	want := "in/a.csv: 12,345 lines in 2.000s (6,172 lines/s) xxh3=0000000000000abc\n"
	if got := buf.String(); got != want {
		t.Fatalf("File line:\n got %q\nwant %q", got, want)
	}
}

func TestPrinter_Failed(t *testing.T) {
	t.Parallel()

	o := jobs.Outcome{Job: jobs.FileJob{Path: "in/b.csv"}, Err: errors.New("boom")}

	tests := []struct {
		name  string
		color bool
		want  string
	}{
		{"plain", false, "FAILED in/b.csv: boom\n"},
		{"color", true, red + "FAILED" + reset + " in/b.csv: boom\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			p := New(&buf)
			p.color = tt.color
			p.Failed(o)
			if got := buf.String(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf).Summary(Summary{
		RunID:  "run-1",
		Wall:   time.Second,
		Totals: stats.Totals{Files: 2, Lines: 3000, Elapsed: 2 * time.Second},
		OK:     2,
		Failed: 1,
	})

	got := buf.String()
	for _, want := range []string{
		"done in 1.000s",
		"3,000 lines (3,000 lines/s wall)",
		"worker time 2.000s (1,500 lines/s normalised)",
		"files ok=2 failed=1",
		"run_id=run-1",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}

func TestPrinter_SummaryZeroDurations(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf).Summary(Summary{})
	if !strings.Contains(buf.String(), "0 lines (0 lines/s wall)") {
		t.Fatalf("unexpected zero summary: %q", buf.String())
	}
}

func TestPrinter_ConcurrentLinesStayWhole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.File(jobs.Result{Job: jobs.FileJob{Path: "x.csv"}, Lines: 1})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("got %d lines, want %d", len(lines), n)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "x.csv: 1 lines") {
			t.Fatalf("interleaved line %q", l)
		}
	}
}

func TestColorEnabled(t *testing.T) {
	t.Parallel()

	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	// A bogus descriptor is never a terminal.
	if ColorEnabled(^uintptr(0), env(nil)) {
		t.Fatal("invalid fd reported as terminal")
	}
	if ColorEnabled(^uintptr(0), env(map[string]string{"NO_COLOR": "1"})) {
		t.Fatal("NO_COLOR ignored")
	}
	if ColorEnabled(^uintptr(0), env(map[string]string{"TERM": "dumb"})) {
		t.Fatal("TERM=dumb ignored")
	}
}

func TestForWriter_BufferIsPlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := ForWriter(&buf, func(string) string { return "" })
	p.Failed(jobs.Outcome{Job: jobs.FileJob{Path: "c.csv"}, Err: errors.New("x")})
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("escape codes written to a buffer: %q", buf.String())
	}
}

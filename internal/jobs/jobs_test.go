package jobs

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestResultRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    Result
		want float64
	}{
		{"zero elapsed", Result{Lines: 10}, 0},
		{"two seconds", Result{Lines: 10, Elapsed: 2 * time.Second}, 5},
		{"no lines", Result{Elapsed: time.Second}, 0},
	}
	for _, tt := range tests {
		if got := tt.r.Rate(); got != tt.want {
			t.Fatalf("%s: Rate() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	outs := []Outcome{
		{Job: FileJob{Path: "a"}},
		{Job: FileJob{Path: "b"}, Err: boom},
		{Job: FileJob{Path: "c"}},
	}
	ok, failed := Split(outs)
	if len(ok) != 2 || ok[0].Job.Path != "a" || ok[1].Job.Path != "c" {
		t.Fatalf("ok = %+v", ok)
	}
	if len(failed) != 1 || !errors.Is(failed[0].Err, boom) {
		t.Fatalf("failed = %+v", failed)
	}
	if s := failed[0].String(); !strings.Contains(s, "failed: boom") {
		t.Fatalf("String() = %q", s)
	}
	if s := ok[0].String(); !strings.Contains(s, "ok lines=0") {
		t.Fatalf("String() = %q", s)
	}
}

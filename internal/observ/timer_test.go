package observ

import (
	"strings"
	"testing"
)

func TestTimerMergeSumsPhases(t *testing.T) {
	a, b := NewTimer(), NewTimer()
	a.Measure("parse", func() string { return "a.own" })
	a.Measure("check", func() string { return "" })
	b.Measure("parse", func() string { return "b.own" })
	b.Measure("lower", func() string { return "" })

	total := NewTimer()
	total.Merge(a)
	total.Merge(b)

	report := total.Report()
	if len(report.Phases) != 3 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Count != 2 {
		t.Fatalf("parse not merged: %+v", report.Phases[0])
	}
	if report.Phases[0].Note != "" {
		t.Fatalf("merged note must be dropped, got %q", report.Phases[0].Note)
	}
	if !strings.Contains(total.Summary(), "x2") {
		t.Fatalf("summary misses count:\n%s", total.Summary())
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("unexpected report %+v", r)
	}
}

package ui

import (
	"strings"
	"testing"

	"borrowck/internal/pipeline"
)

func TestApplyEvent(t *testing.T) {
	m := newProgressModel("check", []string{"a.own", "b.own"}, nil)

	steps := []struct {
		ev         pipeline.Event
		wantStatus string
		wantPct    float64
	}{
		{pipeline.Event{File: "a.own", Stage: pipeline.StageParse, Status: pipeline.StatusWorking}, "parsing", 2.0 / 6 / 2},
		{pipeline.Event{File: "a.own", Stage: pipeline.StageLex, Status: pipeline.StatusWorking}, "lexing", 2.0 / 6 / 2},
		{pipeline.Event{File: "a.own", Stage: pipeline.StageCheck, Status: pipeline.StatusFailed}, "failed", 0.5},
		{pipeline.Event{File: "b.own", Stage: pipeline.StageCache, Status: pipeline.StatusDone}, "done", 1},
		{pipeline.Event{File: "missing.own", Stage: pipeline.StageLex, Status: pipeline.StatusWorking}, "", 1},
	}
	for _, st := range steps {
		m.applyEvent(st.ev)
		if idx, ok := m.index[st.ev.File]; ok && m.items[idx].status != st.wantStatus {
			t.Errorf("%s: status = %q, want %q", st.ev.File, m.items[idx].status, st.wantStatus)
		}
		if got := m.percent(); got < st.wantPct-1e-9 || got > st.wantPct+1e-9 {
			t.Errorf("after %+v: percent = %v, want %v", st.ev, got, st.wantPct)
		}
	}
}

func TestRunLevelEventSetsLabel(t *testing.T) {
	m := newProgressModel("check", []string{"a.own"}, nil)
	m.applyEvent(pipeline.Event{Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
	m.done = true
	view := m.View()
	if !strings.Contains(view, "done: check (loading)") {
		t.Fatalf("header missing:\n%s", view)
	}
	if !strings.Contains(view, "queued a.own") {
		t.Fatalf("file line missing:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.own", 20, "short.own"},
		{"a/very/long/path.own", 10, "a/very/..."},
		{"日本語.own", 5, "日..."},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/driver"
	"borrowck/internal/pipeline"
)

const bookDir = "../../testdata/book"

func TestBookSuiteMatchesExpectations(t *testing.T) {
	for _, jobs := range []int{1, 4} {
		report, err := driver.CheckDir(context.Background(), bookDir, driver.Options{Jobs: jobs})
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		if len(report.Files) < 9 {
			t.Fatalf("jobs=%d: files = %d", jobs, len(report.Files))
		}
		for _, m := range report.Mismatches() {
			t.Errorf("jobs=%d: %s", jobs, m)
		}
	}
}

func TestCheckDirIsDeterministic(t *testing.T) {
	render := func(jobs int) string {
		report, err := driver.CheckDir(context.Background(), bookDir, driver.Options{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		var paths []string
		for _, f := range report.Files {
			paths = append(paths, filepath.Base(f.Path))
		}
		return strings.Join(paths, ",") + "\n" + diag.FormatShortDiagnostics(report.Diagnostics(), report.FileSet, true)
	}
	first := render(1)
	for range 3 {
		if got := render(8); got != first {
			t.Fatalf("parallel output differs:\n%s\n---\n%s", first, got)
		}
	}
}

func TestCheckDirAggregatesTimings(t *testing.T) {
	var rec pipeline.Recorder
	report, err := driver.CheckDir(context.Background(), bookDir, driver.Options{Progress: &rec})
	if err != nil {
		t.Fatal(err)
	}
	phases := report.Timer.Report().Phases
	if len(phases) == 0 || phases[0].Name != "lex" || phases[0].Count != len(report.Files) {
		t.Fatalf("phases = %+v", phases)
	}
	final := rec.Final()
	if len(final) != len(report.Files) {
		t.Fatalf("progress saw %d files, want %d", len(final), len(report.Files))
	}
	for file, status := range final {
		if !status.Finished() {
			t.Errorf("%s ended as %s", file, status)
		}
	}
}

func TestVerifyReportsMismatches(t *testing.T) {
	report, err := driver.CheckDir(context.Background(), "../../testdata/broken", driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, m := range report.Mismatches() {
		got = append(got, m.String())
	}
	want := []string{
		"mismatch.own:4: expected use_after_move, not reported",
		"mismatch.own:4: expected alias_conflict, not reported",
		"mismatch.own:5: unexpected use_after_move: use of moved value 's1'",
		`mismatch.own:7: malformed expectation "ERROR nonsense"`,
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("mismatches:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCheckPathsLoadErrors(t *testing.T) {
	if _, err := driver.CheckPaths(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, driver.Options{}); err == nil {
		t.Fatal("expected error for missing path")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.own"), []byte("fn main() {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	report, err := driver.CheckPaths(context.Background(), []string{dir}, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.FormatShortDiagnostics(report.Diagnostics(), report.FileSet, false))
	}
}

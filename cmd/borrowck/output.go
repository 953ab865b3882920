package main

import (
	"encoding/json"
	"fmt"
	"io"

	"borrowck/internal/diag"
	"borrowck/internal/diagfmt"
	"borrowck/internal/driver"
)

// fileJSON is one entry of `check --format json`, keyed by path.
type fileJSON struct {
	diagfmt.DiagnosticsOutput
	Error     string     `json:"error,omitempty"`
	Cached    bool       `json:"cached,omitempty"`
	Functions []funcJSON `json:"functions,omitempty"`
	Skipped   []string   `json:"skipped,omitempty"`
}

type funcJSON struct {
	Name    string   `json:"name"`
	Ops     int      `json:"ops"`
	Verdict string   `json:"verdict"`
	Events  []string `json:"events,omitempty"`
	Trace   string   `json:"trace,omitempty"`
}

// renderReport prints the diagnostics of a report in the chosen format.
// With emit set, function event logs and traces follow the diagnostics.
func renderReport(w io.Writer, report *driver.Report, out outputSettings, emit bool) error {
	switch out.format {
	case "json":
		return renderJSON(w, report, out, emit)
	case "short":
		return renderShort(w, report, out, emit)
	default:
		return renderPretty(w, report, out, emit)
	}
}

func displayPath(report *driver.Report, f *driver.FileResult) string {
	if f.File == nil {
		return f.Path
	}
	return f.File.FormatPath("relative", report.FileSet.BaseDir())
}

func renderPretty(w io.Writer, report *driver.Report, out outputSettings, emit bool) error {
	opts := diagfmt.PrettyOpts{
		Color:     out.color,
		Context:   1,
		PathMode:  out.pathMode,
		ShowNotes: out.withNotes,
	}
	multi := len(report.Files) > 1
	printed := false
	failed := 0
	for _, f := range report.Files {
		if f == nil {
			continue
		}
		if f.HasErrors() {
			failed++
		}
		if f.Err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", f.Path, f.Err)
			printed = true
			continue
		}
		if f.Bag.Len() == 0 && !emit {
			continue
		}
		if printed {
			fmt.Fprintln(w)
		}
		printed = true
		if multi {
			fmt.Fprintf(w, "== %s ==\n", displayPath(report, f))
		}
		f.Bag.Sort()
		diagfmt.Pretty(w, f.Bag, report.FileSet, opts)
		if emit {
			if f.Bag.Len() > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprint(w, driver.FormatEvents(f))
		}
	}
	if printed {
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "checked %d %s: %d clean, %d failed\n",
		len(report.Files), plural(len(report.Files), "file", "files"), len(report.Files)-failed, failed)
	return err
}

func renderShort(w io.Writer, report *driver.Report, out outputSettings, emit bool) error {
	bag := diag.NewBag(len(report.Diagnostics()))
	for _, f := range report.Files {
		if f == nil {
			continue
		}
		if f.Err != nil {
			fmt.Fprintf(w, "error %s %s: %v\n", diag.IOLoadFileError.ID(), f.Path, f.Err)
			continue
		}
		bag.Merge(f.Bag)
	}
	if err := diagfmt.Short(w, bag, report.FileSet, out.withNotes); err != nil {
		return err
	}
	if emit {
		for _, f := range report.Files {
			if f != nil && f.Err == nil {
				fmt.Fprint(w, driver.FormatEvents(f))
			}
		}
	}
	return nil
}

func renderJSON(w io.Writer, report *driver.Report, out outputSettings, emit bool) error {
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         out.pathMode,
		Max:              out.maxDiagnostics,
		IncludeNotes:     out.withNotes,
	}
	output := make(map[string]fileJSON, len(report.Files))
	for _, f := range report.Files {
		if f == nil {
			continue
		}
		entry := fileJSON{Cached: f.Cached, Skipped: f.Skipped}
		if f.Err != nil {
			entry.Error = f.Err.Error()
			entry.Diagnostics = []diagfmt.DiagnosticJSON{}
		} else {
			f.Bag.Sort()
			entry.DiagnosticsOutput = diagfmt.BuildDiagnosticsOutput(f.Bag, report.FileSet, jsonOpts)
		}
		if emit {
			entry.Functions = functionsJSON(f)
		}
		output[displayPath(report, f)] = entry
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func functionsJSON(f *driver.FileResult) []funcJSON {
	out := make([]funcJSON, 0, len(f.Funcs))
	for _, fn := range f.Funcs {
		item := funcJSON{Name: fn.Name, Ops: fn.Ops, Verdict: "ok", Trace: fn.Trace}
		if fn.Violation != nil {
			item.Verdict = fn.Violation.Kind.String()
		}
		for _, ev := range fn.Events {
			item.Events = append(item.Events, ev.String())
		}
		out = append(out, item)
	}
	return out
}

// renderTimings prints --timings for the whole run.
func renderTimings(w io.Writer, report *driver.Report, format string) error {
	if format == "json" {
		payload := driver.NewTimingPayload("suite", "", report.Timer)
		encoder := json.NewEncoder(w)
		return encoder.Encode(payload)
	}
	_, err := fmt.Fprint(w, report.Timer.Summary())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"borrowck/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// group is one diagnostic with its notes; key is the line it is sorted by.
type group struct {
	key   shortDiagnostic
	lines []shortDiagnostic
}

// FormatShortDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation used by the short CLI format and by golden tests. Entries are
// sorted by path, line, column, severity, code and message of the primary
// span; when includeNotes is set, the notes of an entry follow it as separate
// "note" lines in their original order.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	groups := make([]group, 0, len(diags))
	for i := range diags {
		if g, ok := renderDiagnostic(&diags[i], fs, includeNotes); ok {
			groups = append(groups, g)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		di, dj := groups[i].key, groups[j].key
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		for _, d := range g.lines {
			lines = append(lines, fmt.Sprintf("%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message))
		}
	}
	return strings.Join(lines, "\n")
}

// renderDiagnostic resolves the primary line and, optionally, the notes. A
// diagnostic whose primary span is unknown is keyed by its first note.
func renderDiagnostic(d *Diagnostic, fs *source.FileSet, includeNotes bool) (group, bool) {
	var g group
	if loc, ok := resolveSpan(fs, d.Primary); ok {
		g.lines = append(g.lines, shortDiagnostic{
			Severity: SeverityLabel(d.Severity),
			Code:     d.Code.ID(),
			Path:     loc.Path,
			Line:     loc.Line,
			Column:   loc.Column,
			Message:  sanitizeMessage(d.Message),
		})
	}

	if includeNotes {
		for _, note := range d.Notes {
			nloc, nok := resolveSpan(fs, note.Span)
			if !nok {
				continue
			}
			g.lines = append(g.lines, shortDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     nloc.Path,
				Line:     nloc.Line,
				Column:   nloc.Column,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	if len(g.lines) == 0 {
		return group{}, false
	}
	g.key = g.lines[0]
	return g, true
}

type resolvedSpan struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveSpan(fs *source.FileSet, span source.Span) (resolvedSpan, bool) {
	file := fs.Get(span.File)
	if file == nil {
		return resolvedSpan{}, false
	}
	start, _ := fs.Resolve(span)
	return resolvedSpan{
		Path:   normalizePath(file.FormatPath("relative", fs.BaseDir())),
		Line:   start.Line,
		Column: start.Col,
	}, true
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

// SeverityLabel returns the lowercase label used in short output.
func SeverityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

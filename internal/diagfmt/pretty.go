package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

const tabWidth = 4

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle    = lipgloss.NewStyle().Bold(true)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := prettyPrinter{w: w, fs: fs, opts: opts}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		p.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *prettyPrinter) paint(st lipgloss.Style, text string) string {
	if !p.opts.Color {
		return text
	}
	return st.Render(text)
}

func severityStyle(sev diag.Severity) lipgloss.Style {
	switch sev {
	case diag.SevError:
		return errorStyle
	case diag.SevWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

func (p *prettyPrinter) location(sp source.Span) string {
	f := p.fs.Get(sp.File)
	start, _ := p.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, p.fs, p.opts.PathMode), start.Line, start.Col)
}

func (p *prettyPrinter) diagnostic(d diag.Diagnostic) {
	head := fmt.Sprintf("%s %s:", d.Severity, d.Code.ID())
	fmt.Fprintf(p.w, "%s: %s %s\n",
		p.paint(pathStyle, p.location(d.Primary)),
		p.paint(severityStyle(d.Severity), head),
		d.Message)
	p.excerpt(d.Primary, int(p.opts.Context), severityStyle(d.Severity))

	for _, n := range d.Notes {
		fmt.Fprintf(p.w, "  %s %s: %s\n", p.paint(noteStyle, "note:"), p.location(n.Span), n.Msg)
		if p.opts.ShowNotes {
			p.excerpt(n.Span, 0, noteStyle)
		}
	}
}

// excerpt prints the line of sp with `context` lines above it and the
// span underlined on the first line.
func (p *prettyPrinter) excerpt(sp source.Span, context int, mark lipgloss.Style) {
	f := p.fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := p.fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	gutter := len(fmt.Sprintf("%d", start.Line))
	for ln := first; ln <= int(start.Line); ln++ {
		text := expandTabs(f.GetLine(uint32(ln)))
		if p.opts.Width > 0 {
			text = runewidth.Truncate(text, int(p.opts.Width), "…")
		}
		fmt.Fprintf(p.w, "%s %s\n", p.paint(gutterStyle, fmt.Sprintf("%*d |", gutter, ln)), text)
	}

	line := f.GetLine(start.Line)
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	stop := len(line)
	if end.Line == start.Line && int(end.Col)-1 <= len(line) {
		stop = int(end.Col) - 1
	}
	if stop < col {
		stop = col
	}
	pad := runewidth.StringWidth(expandTabs(line[:col]))
	width := runewidth.StringWidth(expandTabs(line[col:stop]))
	underline := "^" + strings.Repeat("~", max(width-1, 0))
	fmt.Fprintf(p.w, "%s %s%s\n",
		p.paint(gutterStyle, strings.Repeat(" ", gutter)+" |"),
		strings.Repeat(" ", pad),
		p.paint(mark, underline))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

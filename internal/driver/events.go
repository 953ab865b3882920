package driver

import (
	"fmt"
	"strings"
)

// FormatEvents renders the evaluator event logs kept by EmitEvents and the
// traces kept by EmitTrace.
func FormatEvents(res *FileResult) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	for _, fn := range res.Funcs {
		if len(fn.Events) == 0 && fn.Trace == "" {
			continue
		}
		verdict := "ok"
		if fn.Violation != nil {
			verdict = fn.Violation.Kind.String()
		}
		fmt.Fprintf(&b, "fn %s (%d ops, %s)\n", fn.Name, fn.Ops, verdict)
		if fn.Trace != "" {
			b.WriteString(indent(fn.Trace))
		}
		for _, ev := range fn.Events {
			b.WriteString("  ")
			b.WriteString(ev.String())
			b.WriteByte('\n')
		}
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(&b, "fn %s skipped: semantic errors\n", name)
	}
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

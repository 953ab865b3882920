package driver_test

import (
	"context"
	"strings"
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/driver"
	"borrowck/internal/ownership"
	"borrowck/internal/pipeline"
	"borrowck/internal/source"
)

func checkString(t *testing.T, src string, opts driver.Options) *driver.FileResult {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("case.own", []byte(src))
	res, err := driver.CheckSource(context.Background(), fs, id, opts)
	if err != nil {
		t.Fatalf("CheckSource: %v", err)
	}
	return res
}

func codes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestCheckSourceVerdicts(t *testing.T) {
	res := checkString(t, `
fn ok() {
    let s = String("a");
    let r = &s;
    use r;
}

fn moved() {
    let s1 = String("hello");
    let s2 = s1;
    use s1; //~ ERROR use_after_move
}
`, driver.Options{})

	if len(res.Funcs) != 2 {
		t.Fatalf("funcs = %+v", res.Funcs)
	}
	if res.Funcs[0].Violation != nil {
		t.Fatalf("ok: unexpected %v", res.Funcs[0].Violation)
	}
	if v := res.Funcs[1].Violation; v == nil || v.Kind != ownership.UseAfterMove {
		t.Fatalf("moved: got %v", v)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != "OWN4001" {
		t.Fatalf("diagnostics = %v", got)
	}
	if res.Violations() != 1 || !res.HasErrors() {
		t.Fatalf("violations = %d", res.Violations())
	}
	if m := driver.Verify(res); len(m) != 0 {
		t.Fatalf("mismatches = %v", m)
	}
}

func TestCheckSourceStopsAfterSyntaxErrors(t *testing.T) {
	res := checkString(t, "fn main() { let = ; }\n", driver.Options{})
	if !res.HasErrors() {
		t.Fatal("expected syntax errors")
	}
	if len(res.Funcs) != 0 {
		t.Fatalf("functions must not be evaluated: %+v", res.Funcs)
	}
	for _, id := range codes(res.Bag) {
		if !strings.HasPrefix(id, "SYN") {
			t.Fatalf("unexpected non-syntax diagnostic %s", id)
		}
	}
}

func TestCheckSourceSkipsInvalidFunctions(t *testing.T) {
	res := checkString(t, `
fn bad() { let x: i32 = "no"; }
fn good() { let x = 1; use x; }
`, driver.Options{})
	if len(res.Skipped) != 1 || res.Skipped[0] != "bad" {
		t.Fatalf("skipped = %v", res.Skipped)
	}
	if len(res.Funcs) != 1 || res.Funcs[0].Name != "good" {
		t.Fatalf("funcs = %+v", res.Funcs)
	}
}

func TestCheckSourceTimingsAndProgress(t *testing.T) {
	var rec pipeline.Recorder
	res := checkString(t, "fn main() { let x = 5; use x; }\n", driver.Options{Progress: &rec})

	var phases []string
	for _, p := range res.Timer.Report().Phases {
		phases = append(phases, p.Name)
	}
	if got := strings.Join(phases, " "); got != "lex parse sema lower check" {
		t.Fatalf("phases = %q", got)
	}
	if final := rec.Final(); final["case.own"] != pipeline.StatusDone {
		t.Fatalf("final status = %v", final)
	}
}

func TestEmitEvents(t *testing.T) {
	res := checkString(t, `
fn main() {
    let mut s = String("hello");
    let r = &mut s;
    r.push_str("!");
}
`, driver.Options{EmitEvents: true, EmitTrace: true})
	out := driver.FormatEvents(res)
	for _, want := range []string{"fn main (", "ok)", "borrow_start", "borrow_end", "drop"} {
		if !strings.Contains(out, want) {
			t.Fatalf("events output misses %q:\n%s", want, out)
		}
	}
}

func TestCheckSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := source.NewFileSet()
	id := fs.AddVirtual("case.own", []byte("fn main() {}\n"))
	if _, err := driver.CheckSource(ctx, fs, id, driver.Options{}); err == nil {
		t.Fatal("expected context error")
	}
}

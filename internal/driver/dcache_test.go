package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/driver"
	"borrowck/internal/project"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var key project.Digest
	key[0] = 7

	var miss driver.DiskPayload
	if ok, err := cache.Get(key, &miss); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	in := &driver.DiskPayload{
		Schema: 1,
		Path:   "a.own",
		Diagnostics: []driver.CachedDiagnostic{{
			Severity: uint8(diag.SevError), Code: uint16(diag.OwnUseAfterMove), Message: "use of moved value 's'",
			Start: 10, End: 11, Notes: []driver.CachedNote{{Start: 3, End: 4, Msg: "value moved here"}},
		}},
		Funcs: []driver.CachedFunc{{Name: "main", Ops: 5, Violation: 1, Message: "use of moved value 's'", Start: 10, End: 11}},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatal(err)
	}
	var out driver.DiskPayload
	ok, err := cache.Get(key, &out)
	if !ok || err != nil {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Path != "a.own" || len(out.Diagnostics) != 1 || out.Diagnostics[0].Notes[0].Msg != "value moved here" || out.Funcs[0].Ops != 5 {
		t.Fatalf("payload = %+v", out)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatal("entry survived DropAll")
	}
}

func TestCheckUsesDiskCache(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "moves.own")
	src := "fn main() {\n    let s = String(\"a\");\n    let t = s;\n    use s;\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Cache: cache, BaseDir: dir}

	first, err := driver.CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := driver.CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("cached: first=%v second=%v", first.Cached, second.Cached)
	}
	want := diag.FormatShortDiagnostics(first.Bag.Items(), first.FileSet, true)
	got := diag.FormatShortDiagnostics(second.Bag.Items(), second.FileSet, true)
	if want == "" || got != want {
		t.Fatalf("cached diagnostics differ:\n%s\n---\n%s", want, got)
	}
	if second.Violations() != 1 || second.Funcs[0].Name != "main" {
		t.Fatalf("cached funcs = %+v", second.Funcs)
	}

	// событийный лог не кешируется
	third, err := driver.CheckFile(context.Background(), path, driver.Options{Cache: cache, EmitEvents: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached || len(third.Funcs[0].Events) == 0 {
		t.Fatalf("emit-events run must bypass the cache: cached=%v", third.Cached)
	}

	if err := os.WriteFile(path, []byte("fn main() {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	changed, err := driver.CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if changed.Cached || changed.HasErrors() {
		t.Fatalf("changed file: cached=%v errors=%v", changed.Cached, changed.HasErrors())
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"borrowck/internal/diagfmt"
	"borrowck/internal/driver"
)

const movedScript = `fn main() {
    let s1 = String("hello");
    let s2 = s1;
    use s1;
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// flagCommand mirrors the flags loadSettings reads from check.
func flagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "check"}
	cmd.Flags().String("format", "pretty", "")
	cmd.Flags().Int("jobs", 0, "")
	cmd.Flags().Bool("no-cache", false, "")
	cmd.Flags().Bool("with-notes", true, "")
	cmd.Flags().String("path-mode", "relative", "")
	cmd.Flags().String("color", "auto", "")
	cmd.Flags().Bool("timings", false, "")
	cmd.Flags().Int("max-diagnostics", 100, "")
	return cmd
}

func TestLoadSettingsMergesManifestAndFlags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "borrowck.toml", `
[suite]
name = "moves"
paths = ["cases"]
jobs = 3

[output]
format = "short"
color = "off"
max_diagnostics = 7

[cache]
enabled = false
`)
	if err := os.Mkdir(filepath.Join(dir, "cases"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "cases"), "a.own", movedScript)

	t.Run("manifest", func(t *testing.T) {
		s, err := loadSettings(flagCommand(), []string{filepath.Join(dir, "cases")})
		if err != nil {
			t.Fatal(err)
		}
		if s.name != "moves" || s.jobs != 3 || s.cache || s.out.format != "short" || s.out.color || s.out.maxDiagnostics != 7 {
			t.Fatalf("settings = %+v", s)
		}
		if s.baseDir != dir {
			t.Fatalf("baseDir = %q, want %q", s.baseDir, dir)
		}
	})

	t.Run("flags override", func(t *testing.T) {
		cmd := flagCommand()
		for name, value := range map[string]string{"jobs": "1", "format": "json", "no-cache": "false", "max-diagnostics": "9", "path-mode": "basename"} {
			if err := cmd.Flags().Set(name, value); err != nil {
				t.Fatal(err)
			}
		}
		s, err := loadSettings(cmd, []string{filepath.Join(dir, "cases", "a.own")})
		if err != nil {
			t.Fatal(err)
		}
		if s.jobs != 1 || !s.cache || s.out.format != "json" || s.out.maxDiagnostics != 9 || s.out.pathMode != diagfmt.PathModeBasename {
			t.Fatalf("settings = %+v", s)
		}
		if len(s.paths) != 1 || filepath.Base(s.paths[0]) != "a.own" {
			t.Fatalf("paths = %v", s.paths)
		}
	})

	t.Run("invalid flag", func(t *testing.T) {
		cmd := flagCommand()
		if err := cmd.Flags().Set("format", "sarif"); err != nil {
			t.Fatal(err)
		}
		if _, err := loadSettings(cmd, []string{dir}); err == nil {
			t.Fatal("expected error for unknown format")
		}
	})
}

func checkTempScript(t *testing.T) *driver.Report {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "moves.own", movedScript)
	report, err := driver.CheckDir(context.Background(), dir, driver.Options{Jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func TestRenderShort(t *testing.T) {
	report := checkTempScript(t)
	var buf bytes.Buffer
	if err := renderReport(&buf, report, outputSettings{format: "short", maxDiagnostics: 100, pathMode: diagfmt.PathModeRelative}, false); err != nil {
		t.Fatal(err)
	}
	want := "error OWN4001 moves.own:4:9 use of moved value 's1'\n"
	if buf.String() != want {
		t.Fatalf("short = %q, want %q", buf.String(), want)
	}
}

func TestRenderJSON(t *testing.T) {
	report := checkTempScript(t)
	var buf bytes.Buffer
	if err := renderReport(&buf, report, outputSettings{format: "json", maxDiagnostics: 100, pathMode: diagfmt.PathModeRelative}, true); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]fileJSON
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	entry, ok := decoded["moves.own"]
	if !ok {
		t.Fatalf("missing file entry: %s", buf.String())
	}
	if entry.Count != 1 || entry.Diagnostics[0].Kind != "use_after_move" {
		t.Fatalf("diagnostics = %+v", entry.Diagnostics)
	}
	if len(entry.Functions) != 1 || entry.Functions[0].Verdict != "use_after_move" {
		t.Fatalf("functions = %+v", entry.Functions)
	}
}

func TestRenderPrettySummary(t *testing.T) {
	report := checkTempScript(t)
	var buf bytes.Buffer
	if err := renderReport(&buf, report, outputSettings{format: "pretty", maxDiagnostics: 100, pathMode: diagfmt.PathModeRelative}, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "moves.own:4:9: ERROR OWN4001: use of moved value 's1'") {
		t.Fatalf("pretty output:\n%s", out)
	}
	if !strings.HasSuffix(out, "checked 1 file: 0 clean, 1 failed\n") {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestRenderSuite(t *testing.T) {
	report, err := driver.CheckDir(context.Background(), filepath.Join("..", "..", "testdata", "broken"), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	summary := summarize(report)
	var buf bytes.Buffer
	renderSuite(&buf, "broken", report, summary, true)
	out := buf.String()
	for _, want := range []string{
		"FAIL mismatch.own\n",
		"mismatch.own:7: malformed expectation \"ERROR nonsense\"\n",
		"FAIL broken: 1 script,",
		"4 mismatches\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestExplain(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.Flags().Bool("list", false, "")
	cmd.SetOut(&buf)
	if err := runExplain(cmd, []string{"use_after_move"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "OWN4001 Use of moved value\nkind: use_after_move") {
		t.Fatalf("explain output:\n%s", buf.String())
	}
	if err := runExplain(cmd, []string{"OWN9999"}); err == nil {
		t.Fatal("expected error for unknown code")
	}

	buf.Reset()
	if err := runExplain(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "OWN4003  dangling_reference") {
		t.Fatalf("list output:\n%s", buf.String())
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error")
	}
	if !shouldUseTUI(uiModeOn, 0) || shouldUseTUI(uiModeOff, 10) {
		t.Error("explicit modes must win")
	}
}

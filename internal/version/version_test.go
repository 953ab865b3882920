package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit, date, msg string) {
	t.Helper()
	orig := [4]string{Version, GitCommit, BuildDate, GitMessage}
	Version, GitCommit, BuildDate, GitMessage = v, commit, date, msg
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, GitMessage = orig[0], orig[1], orig[2], orig[3]
	})
}

func TestColoredPlainWhenNoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"weird", "weird"},
	}
	for _, tt := range tests {
		withVersion(t, tt.version, "", "", "")
		if got := Colored(); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestBanner(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	withVersion(t, "1.2.3", "abc123def456789", "2024-01-15T10:30:00Z", "fix borrow release")
	got := Banner()
	for _, want := range []string{"borrowck 1.2.3", "(abc123def456)", "built 2024-01-15T10:30:00Z", "fix borrow release"} {
		if !strings.Contains(got, want) {
			t.Errorf("banner %q misses %q", got, want)
		}
	}

	withVersion(t, "1.2.3", "", "", "")
	if got := Banner(); got != "borrowck 1.2.3" {
		t.Errorf("minimal banner = %q", got)
	}
}

func TestStringIsPlain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })
	if strings.Contains(String(), "\x1b[") {
		t.Fatalf("String() must not carry escape codes: %q", String())
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"borrowck/internal/diagfmt"
	"borrowck/internal/project"
)

// settings is the manifest merged with command-line flags. Flags that were
// set explicitly win over borrowck.toml.
type settings struct {
	manifest *project.Manifest
	name     string
	paths    []string
	baseDir  string
	jobs     int
	cache    bool
	out      outputSettings
}

type outputSettings struct {
	format         string
	color          bool
	pathMode       diagfmt.PathMode
	maxDiagnostics int
	withNotes      bool
	timings        bool
}

// loadSettings finds the manifest above the first argument (or the working
// directory) and applies the flags of cmd on top of it.
func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	manifest, found, err := project.Load(start)
	if err != nil {
		return nil, err
	}

	cfg := project.DefaultConfig()
	s := &settings{}
	if found {
		cfg = manifest.Config
		s.manifest = manifest
		s.name = cfg.Suite.Name
		s.baseDir = manifest.Root
	}
	switch {
	case len(args) > 0:
		s.paths = args
	case found:
		s.paths = manifest.SuitePaths()
	default:
		s.paths = cfg.Suite.Paths
	}
	if s.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.baseDir = wd
		}
	}
	if s.name == "" {
		s.name = filepath.Base(s.baseDir)
	}

	s.jobs = cfg.Suite.Jobs
	s.cache = cfg.Cache.Enabled
	s.out.format = cfg.Output.Format
	s.out.maxDiagnostics = cfg.Output.MaxDiagnostics
	colorMode := cfg.Output.Color

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
		if s.jobs < 0 {
			return nil, fmt.Errorf("--jobs must not be negative")
		}
	}
	if flags.Changed("format") {
		if s.out.format, err = flags.GetString("format"); err != nil {
			return nil, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Changed("no-cache") {
		noCache, err := flags.GetBool("no-cache")
		if err != nil {
			return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
		}
		s.cache = !noCache
	}
	if flags.Changed("max-diagnostics") {
		if s.out.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("color") {
		if colorMode, err = flags.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if s.out.color, err = resolveColor(colorMode); err != nil {
		return nil, err
	}
	if s.out.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if flags.Lookup("with-notes") != nil {
		if s.out.withNotes, err = flags.GetBool("with-notes"); err != nil {
			return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
		}
	}
	if flags.Lookup("path-mode") != nil {
		mode, err := flags.GetString("path-mode")
		if err != nil {
			return nil, fmt.Errorf("failed to get path-mode flag: %w", err)
		}
		if s.out.pathMode, err = diagfmt.ParsePathMode(mode); err != nil {
			return nil, err
		}
	}

	switch s.out.format {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unknown format %q (expected pretty|json|short)", s.out.format)
	}
	if s.out.maxDiagnostics <= 0 {
		return nil, fmt.Errorf("--max-diagnostics must be positive")
	}
	return s, nil
}

// resolveColor maps auto|on|off to a decision; auto follows stdout.
func resolveColor(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

package project

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded borrowck.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of borrowck.toml.
type Config struct {
	Suite  SuiteConfig  `toml:"suite"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
}

type SuiteConfig struct {
	Name string `toml:"name"`
	// Paths are files or directories relative to the manifest.
	Paths []string `toml:"paths"`
	// Jobs limits parallel checks; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

type OutputConfig struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
}

var (
	outputFormats = []string{"pretty", "json", "short"}
	colorModes    = []string{"auto", "on", "off"}
)

// DefaultConfig is used when no manifest exists; a loaded manifest starts
// from it too, so omitted keys keep these values.
func DefaultConfig() Config {
	return Config{
		Suite:  SuiteConfig{Paths: []string{"."}},
		Output: OutputConfig{Format: "pretty", Color: "auto", MaxDiagnostics: 100},
		Cache:  CacheConfig{Enabled: true},
	}
}

// Load finds borrowck.toml above startDir and parses it. ok is false when
// there is no manifest.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses and validates a manifest file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("suite") {
		return Config{}, fmt.Errorf("%s: missing [suite]", path)
	}
	if meta.IsDefined("suite", "paths") && len(cfg.Suite.Paths) == 0 {
		return Config{}, fmt.Errorf("%s: [suite].paths is empty", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that TOML types alone cannot express.
func (c Config) Validate() error {
	if c.Suite.Jobs < 0 {
		return fmt.Errorf("[suite].jobs must not be negative, got %d", c.Suite.Jobs)
	}
	for _, p := range c.Suite.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("[suite].paths contains an empty entry")
		}
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("[output].format must be one of %s, got %q", strings.Join(outputFormats, "|"), c.Output.Format)
	}
	if !slices.Contains(colorModes, c.Output.Color) {
		return fmt.Errorf("[output].color must be one of %s, got %q", strings.Join(colorModes, "|"), c.Output.Color)
	}
	if c.Output.MaxDiagnostics <= 0 {
		return fmt.Errorf("[output].max_diagnostics must be positive, got %d", c.Output.MaxDiagnostics)
	}
	return nil
}

// SuitePaths returns the suite paths resolved against the manifest root.
func (m *Manifest) SuitePaths() []string {
	out := make([]string, 0, len(m.Config.Suite.Paths))
	for _, p := range m.Config.Suite.Paths {
		p = filepath.FromSlash(strings.TrimSpace(p))
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Root, p)
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

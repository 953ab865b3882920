package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScriptExt is the extension of checked scripts.
const ScriptExt = ".own"

// ErrNoScripts is returned when the given paths contain no scripts.
var ErrNoScripts = errors.New("no " + ScriptExt + " scripts found")

// CollectScripts expands files and directories into a sorted, duplicate-free
// list of script paths. Directories are walked recursively; hidden
// directories and testdata-style underscores are skipped.
func CollectScripts(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", root, err)
		}
		if !info.IsDir() {
			if filepath.Ext(root) != ScriptExt {
				return nil, fmt.Errorf("%s: not a %s script", root, ScriptExt)
			}
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == ScriptExt {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", root, err)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoScripts
	}
	slices.Sort(out)
	return out, nil
}

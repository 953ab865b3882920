package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"borrowck/internal/project"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addLanguageSeeds(f)
}

// addTestdataSeeds adds every script under testdata.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != project.ScriptExt {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addLanguageSeeds covers constructs the book scripts do not.
func addLanguageSeeds(f *testing.F) {
	for _, seed := range []string{
		"",
		"fn main() {}\n",
		"@copy struct P { x: i32 }\nfn main() { let p = P { x: 1 }; let q = p; use p, q; }\n",
		"fn f(s: &mut String) -> &str { s.push_str(\"!\"); return &s[0..1]; }\n",
		"fn main() { let r; { let x = 5; r = &x; } use r; }\n",
		"fn main() { let t = (String(\"a\"), [1, 2]); let (a, b) = t; use a, b; }\n",
		"fn main() { let s = String(\"日本\"); let v = &s[0..1]; } //~ ERROR invalid_operation\n",
	} {
		f.Add([]byte(seed))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

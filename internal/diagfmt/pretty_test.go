package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

const movedSrc = "fn main() {\n    let s1 = String(\"hello\");\n    let s2 = s1;\n    use s1;\n}\n"

func movedBag(t *testing.T, fs *source.FileSet, name string) *diag.Bag {
	t.Helper()
	fileID := fs.AddVirtual(name, []byte(movedSrc))
	useAt := uint32(strings.Index(movedSrc, "use s1") + 4)
	moveAt := uint32(strings.Index(movedSrc, "= s1") + 2)
	d := diag.NewError(diag.OwnUseAfterMove, source.Span{File: fileID, Start: useAt, End: useAt + 2}, "use of moved value 's1'").
		WithNote(source.Span{File: fileID, Start: moveAt, End: moveAt + 2}, "value moved here")
	bag := diag.NewBag(10)
	bag.Add(d)
	return bag
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	bag := movedBag(t, fs, "/home/user/project/book/moves.own")
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/book/moves.own:4:9"},
		{"relative", PathModeRelative, "book/moves.own:4:9"},
		{"basename", PathModeBasename, "moves.own:4:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("expected %q in:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR OWN4001:") || !strings.Contains(output, "use of moved value 's1'") {
				t.Errorf("header missing in:\n%s", output)
			}
		})
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs := source.NewFileSet()
	bag := movedBag(t, fs, "moves.own")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1, ShowNotes: true})
	want := strings.Join([]string{
		"moves.own:4:9: ERROR OWN4001: use of moved value 's1'",
		"3 |     let s2 = s1;",
		"4 |     use s1;",
		"  |         ^~",
		"  note: moves.own:3:14: value moved here",
		"3 |     let s2 = s1;",
		"  |              ^~",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("pretty output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	fs := source.NewFileSet()
	src := "let t = \"日本\"; use t;\n"
	fileID := fs.AddVirtual("wide.own", []byte(src))
	at := uint32(strings.Index(src, "use t") + 4)
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.OwnUninitialized, source.Span{File: fileID, Start: at, End: at + 1}, "x"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	// два широких символа занимают четыре колонки
	if want := "  | " + strings.Repeat(" ", 20) + "^"; lines[2] != want {
		t.Fatalf("underline = %q, want %q", lines[2], want)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	bag := movedBag(t, fs, "moves.own")
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	Pretty(&colored, bag, fs, PrettyOpts{PathMode: PathModeBasename, Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output carries escapes:\n%q", plain.String())
	}
	// цвет зависит от профиля терминала, но текст должен сохраниться
	if !strings.Contains(colored.String(), "use of moved value 's1'") {
		t.Fatalf("colored output lost the message:\n%s", colored.String())
	}
}

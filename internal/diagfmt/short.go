package diagfmt

import (
	"fmt"
	"io"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

// Short prints one line per diagnostic in the stable golden format.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

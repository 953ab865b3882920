package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"borrowck/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code|kind>",
	Short: "Explain a diagnostic code",
	Long:  `Explain prints what a diagnostic means. Codes are given as IDs (OWN4001) or kinds (use_after_move).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().Bool("list", false, "list every known code")
}

// explanations describe the ownership rules behind OWN codes.
var explanations = map[diag.Code]string{
	diag.OwnUseAfterMove: `A value with an owning resource was moved to another binding, passed by
value to a function or moved out of a field, and was used afterwards. After a
move the source binding no longer owns anything; only a new assignment makes
it usable again. Copy types (integers, bool, char, @copy structs) are copied
instead of moved.`,
	diag.OwnAliasConflict: `An exclusive borrow (&mut) was created or used while another borrow of an
overlapping place was live, or the owner was read or written while an
exclusive borrow was live. A borrow stays live until its last use, not until
the end of its scope, so ending the use of earlier references before taking
&mut resolves the conflict.`,
	diag.OwnDanglingReference: `A reference outlives the value it points to: it was kept after the referent's
scope ended, or a function returned a reference to one of its own locals.
Return the owned value instead.`,
	diag.OwnNotMutable: `A binding declared without mut was assigned twice, mutated through a method
or borrowed with &mut.`,
	diag.OwnUninitialized: `A binding declared without a value was read before it was assigned.`,
	diag.OwnInvalidOperation: `The operation cannot succeed on the value, such as a string slice outside
the text or one that does not fall on a character boundary.`,
}

func runExplain(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	out := cmd.OutOrStdout()
	if list || len(args) == 0 {
		listCodes(out)
		return nil
	}
	code, ok := diag.LookupCode(strings.TrimSpace(args[0]))
	if !ok {
		return fmt.Errorf("unknown diagnostic code %q (see `borrowck explain --list`)", args[0])
	}
	explainCode(out, code)
	return nil
}

func listCodes(w io.Writer) {
	for _, c := range diag.AllCodes() {
		slug := c.Slug()
		if slug == c.ID() {
			slug = ""
		}
		fmt.Fprintf(w, "%-8s %-20s %s\n", c.ID(), slug, c.Title())
	}
}

func explainCode(w io.Writer, code diag.Code) {
	fmt.Fprintf(w, "%s %s\n", code.ID(), code.Title())
	if slug := code.Slug(); slug != code.ID() {
		fmt.Fprintf(w, "kind: %s (usable in //~ ERROR %s)\n", slug, slug)
	}
	if text, ok := explanations[code]; ok {
		fmt.Fprintf(w, "\n%s\n", text)
	}
}

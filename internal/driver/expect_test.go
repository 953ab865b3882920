package driver

import (
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

func TestParseExpectation(t *testing.T) {
	tests := []struct {
		body      string
		line      uint32
		wantLine  uint32
		wantCode  diag.Code
		malformed bool
	}{
		{"ERROR use_after_move", 4, 4, diag.OwnUseAfterMove, false},
		{"^ ERROR alias_conflict", 4, 3, diag.OwnAliasConflict, false},
		{"^^^ ERROR dangling_reference", 9, 6, diag.OwnDanglingReference, false},
		{"ERROR OWN4005", 2, 2, diag.OwnUninitialized, false},
		{"ERROR type_mismatch", 1, 1, diag.SemaTypeMismatch, false},
		{"ERROR nonsense", 3, 3, 0, true},
		{"WARNING use_after_move", 3, 3, 0, true},
		{"ERROR", 3, 3, 0, true},
		{"^ ERROR use_after_move", 1, 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			got := parseExpectation(tt.body, tt.line, source.Span{})
			if got.Malformed != tt.malformed {
				t.Fatalf("malformed = %v, want %v", got.Malformed, tt.malformed)
			}
			if got.Line != tt.wantLine {
				t.Fatalf("line = %d, want %d", got.Line, tt.wantLine)
			}
			if !tt.malformed && got.Code != tt.wantCode {
				t.Fatalf("code = %s, want %s", got.Code.ID(), tt.wantCode.ID())
			}
		})
	}
}

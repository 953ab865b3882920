package diag

import (
	"fmt"
	"slices"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005
	LexBadEscape                Code = 1006

	// Парсерные
	SynInfo                Code = 2000
	SynUnexpectedToken     Code = 2001
	SynUnclosedDelimiter   Code = 2002
	SynExpectSemicolon     Code = 2012
	SynAttributeNotAllowed Code = 2016
	SynUnexpectedTopLevel  Code = 2101
	SynExpectIdentifier    Code = 2102
	SynExpectType          Code = 2202
	SynExpectExpression    Code = 2203
	SynExpectColon         Code = 2204
	SynInvalidTupleIndex   Code = 2206

	// Семантические
	SemaInfo                 Code = 3000
	SemaError                Code = 3001
	SemaDuplicateSymbol      Code = 3002
	SemaUnresolvedSymbol     Code = 3005
	SemaTypeMismatch         Code = 3015
	SemaNonAddressable       Code = 3023
	SemaArgCount             Code = 3046
	SemaMissingReturn        Code = 3051
	SemaCopyNonCopyField     Code = 3117
	SemaUnknownType          Code = 3126
	SemaUnknownField         Code = 3127
	SemaUnknownMethod        Code = 3128
	SemaMissingLifetime      Code = 3129
	SemaAmbiguousLifetime    Code = 3130
	SemaInvalidTupleAccess   Code = 3131
	SemaInvalidPatternTarget Code = 3132
	SemaRecursiveType        Code = 3133
	SemaLiteralOutOfRange    Code = 3134
	SemaInvalidReceiver      Code = 3135

	// Владение и заимствования
	OwnInfo              Code = 4000
	OwnUseAfterMove      Code = 4001
	OwnAliasConflict     Code = 4002
	OwnDanglingReference Code = 4003
	OwnNotMutable        Code = 4004
	OwnUninitialized     Code = 4005
	OwnInvalidOperation  Code = 4006

	// Ошибки I/O
	IOLoadFileError Code = 5001
	IOCacheError    Code = 5002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Bad number",
		LexUnterminatedChar:         "Unterminated char literal",
		LexBadEscape:                "Bad escape sequence",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnclosedDelimiter:        "Unclosed delimiter",
		SynExpectSemicolon:          "Expect semicolon",
		SynAttributeNotAllowed:      "Attribute not allowed here",
		SynUnexpectedTopLevel:       "Unexpected top level",
		SynExpectIdentifier:         "Expect identifier",
		SynExpectType:               "Expect type",
		SynExpectExpression:         "Expect expression",
		SynExpectColon:              "Expect colon",
		SynInvalidTupleIndex:        "Invalid tuple index",
		SemaInfo:                    "Semantic information",
		SemaError:                   "Semantic error",
		SemaDuplicateSymbol:         "Duplicate symbol",
		SemaUnresolvedSymbol:        "Unresolved symbol",
		SemaTypeMismatch:            "Type mismatch",
		SemaNonAddressable:          "Expression is not addressable",
		SemaArgCount:                "Wrong number of arguments",
		SemaMissingReturn:           "Missing return in function",
		SemaCopyNonCopyField:        "@copy type has a non-copy field",
		SemaUnknownType:             "Unknown type",
		SemaUnknownField:            "Unknown field",
		SemaUnknownMethod:           "Unknown method",
		SemaMissingLifetime:         "Reference field needs a lifetime",
		SemaAmbiguousLifetime:       "Returned reference has no single source",
		SemaInvalidTupleAccess:      "Invalid tuple access",
		SemaInvalidPatternTarget:    "Pattern does not match value",
		SemaRecursiveType:           "Recursive type has infinite size",
		SemaLiteralOutOfRange:       "Literal out of range",
		SemaInvalidReceiver:         "Invalid method receiver",
		OwnInfo:                     "Ownership information",
		OwnUseAfterMove:             "Use of moved value",
		OwnAliasConflict:            "Conflicting borrows",
		OwnDanglingReference:        "Reference outlives its referent",
		OwnNotMutable:               "Mutation of immutable place",
		OwnUninitialized:            "Use of uninitialized binding",
		OwnInvalidOperation:         "Invalid operation",
		IOLoadFileError:             "Failed to load file",
		IOCacheError:                "Cache failure",
	}

	// codeSlug задаёт имена, которыми коды помечаются в ожиданиях `//~ ERROR <slug>`.
	codeSlug = map[Code]string{
		SemaDuplicateSymbol:   "duplicate_symbol",
		SemaUnresolvedSymbol:  "unresolved_symbol",
		SemaTypeMismatch:      "type_mismatch",
		SemaNonAddressable:    "not_addressable",
		SemaArgCount:          "arg_count",
		SemaMissingReturn:     "missing_return",
		SemaCopyNonCopyField:  "copy_non_copy_field",
		SemaUnknownType:       "unknown_type",
		SemaUnknownField:      "unknown_field",
		SemaUnknownMethod:     "unknown_method",
		SemaMissingLifetime:   "missing_lifetime",
		SemaAmbiguousLifetime: "ambiguous_lifetime",
		SemaRecursiveType:     "recursive_type",
		SemaLiteralOutOfRange: "literal_out_of_range",
		SemaInvalidReceiver:   "invalid_receiver",
		OwnUseAfterMove:       "use_after_move",
		OwnAliasConflict:      "alias_conflict",
		OwnDanglingReference:  "dangling_reference",
		OwnNotMutable:         "not_mutable",
		OwnUninitialized:      "uninitialized",
		OwnInvalidOperation:   "invalid_operation",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("OWN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

// Slug returns the snake_case name used by expectation comments,
// falling back to the code ID for codes without one.
func (c Code) Slug() string {
	if s, ok := codeSlug[c]; ok {
		return s
	}
	return c.ID()
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// LookupCode resolves either an ID ("OWN4001") or a slug ("use_after_move").
func LookupCode(name string) (Code, bool) {
	for c, s := range codeSlug {
		if s == name {
			return c, true
		}
	}
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == name {
			return c, true
		}
	}
	return UnknownCode, false
}

// AllCodes returns every known code in ascending order.
func AllCodes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

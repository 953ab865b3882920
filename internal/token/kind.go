package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit is an integer literal such as 42.
	IntLit
	// FloatLit is a floating-point literal such as 3.5.
	FloatLit
	// CharLit is a character literal such as 'z'.
	CharLit
	// StringLit is a string literal such as "hello".
	StringLit

	KwFn     // fn
	KwLet    // let
	KwMut    // mut
	KwStruct // struct
	KwReturn // return
	KwUse    // use
	KwImpl   // impl
	KwEnum   // enum
	KwTrue   // true
	KwFalse  // false

	Amp       // &
	Star      // *
	Plus      // +
	Minus     // -
	Dot       // .
	DotDot    // ..
	Comma     // ,
	Semicolon // ;
	Colon     // :
	PathSep   // ::
	Arrow     // ->
	Assign    // =
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	At        // @
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	FloatLit:  "FloatLit",
	CharLit:   "CharLit",
	StringLit: "StringLit",
	KwFn:      "KwFn",
	KwLet:     "KwLet",
	KwMut:     "KwMut",
	KwStruct:  "KwStruct",
	KwReturn:  "KwReturn",
	KwUse:     "KwUse",
	KwImpl:    "KwImpl",
	KwEnum:    "KwEnum",
	KwTrue:    "KwTrue",
	KwFalse:   "KwFalse",
	Amp:       "Amp",
	Star:      "Star",
	Plus:      "Plus",
	Minus:     "Minus",
	Dot:       "Dot",
	DotDot:    "DotDot",
	Comma:     "Comma",
	Semicolon: "Semicolon",
	Colon:     "Colon",
	PathSep:   "PathSep",
	Arrow:     "Arrow",
	Assign:    "Assign",
	LParen:    "LParen",
	RParen:    "RParen",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
	LBracket:  "LBracket",
	RBracket:  "RBracket",
	At:        "At",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

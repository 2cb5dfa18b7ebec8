// Package ast defines the surface-level tree the lexer/parser (external
// collaborators) are assumed to hand to this module, plus the forward
// macro-expansion direction whose inverse the decompiler recovers.
package ast

// Kind enumerates the token types the external lexer/parser produce.
// Carried verbatim from spec.md §6's external interface list.
type Kind int

const (
	Ident Kind = iota
	Num
	Sym
	Str
	Bool
	Char
	Void
	List
	Form
	Meta
	Quote
	Procedure
	Multi
	LParen
	RParen
	EOF
	Error
	Any
)

var kindNames = [...]string{
	Ident: "IDENT", Num: "NUM", Sym: "SYM", Str: "STR", Bool: "BOOL",
	Char: "CHAR", Void: "VOID", List: "LIST", Form: "FORM", Meta: "META",
	Quote: "QUOTE", Procedure: "PROCEDURE", Multi: "MULTI", LParen: "LPAREN",
	RParen: "RPAREN", EOF: "EOF", Error: "ERROR", Any: "ANY",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "ANY"
}

// Token is a parsed literal: its type plus the printable surface form the
// lexer captured, e.g. Token{Kind: Num, Text: "42"}.
type Token struct {
	Kind Kind
	Text string
}

// illegalIdentRunes are characters the lexer refuses inside a bare
// identifier; a symbol containing one of these must be pipe-quoted
// (|name|) when rendered back to source.
const illegalIdentRunes = "()\"'`;| \t\n\r"

// IsIllegalIdentChar reports whether ch cannot appear in an unquoted
// identifier.
func IsIllegalIdentChar(ch rune) bool {
	for _, r := range illegalIdentRunes {
		if r == ch {
			return true
		}
	}
	return false
}

package decompile

import (
	"fmt"

	"lanf/ast"
)

// renderToken renders a single literal token back to surface text, per
// spec.md §4.G's literal rendering rules. The FORM/LIST pair is the one
// spot Design Notes §9 flags as underspecified in the distilled grammar:
// a FORM token renders unquoted, (...), because it already stands for an
// evaluated call shape; a LIST token renders quoted, '(...), because it
// denotes data that must not be re-evaluated on a later read.
func renderToken(tok ast.Token) string {
	switch tok.Kind {
	case ast.Ident, ast.Num, ast.Bool:
		return tok.Text
	case ast.Void:
		return "#<void>"
	case ast.Sym:
		return renderSymbol(tok.Text)
	case ast.Str:
		return fmt.Sprintf("%q", tok.Text)
	case ast.Char:
		return "#\\" + tok.Text
	case ast.Form:
		return "(" + tok.Text + ")"
	case ast.List:
		return "'(" + tok.Text + ")"
	default:
		return tok.Text
	}
}

// renderSymbol quotes name as a symbol literal, falling back to pipe
// quoting when it contains a character a bare identifier can't carry.
func renderSymbol(name string) string {
	for _, r := range name {
		if ast.IsIllegalIdentChar(r) {
			return "'|" + name + "|"
		}
	}
	return "'" + name
}

package decompile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanf/anf"
	"lanf/ast"
)

func TestRenderFormSingleLine(t *testing.T) {
	got := renderForm([]string{"+", "1", "2"}, DefaultOptions())
	assert.Equal(t, "(+ 1 2)", got)
}

func TestRenderFormWrapsPastThreeElements(t *testing.T) {
	opts := Options{ClosingOnNewLine: true, Indent: "  "}
	got := renderForm([]string{"+", "1", "2", "3"}, opts)
	assert.Equal(t, "(+\n  1\n  2\n  3\n)", got)
}

func TestRenderFormWrapsOnEmbeddedNewline(t *testing.T) {
	opts := Options{ClosingOnNewLine: false, Indent: "  "}
	got := renderForm([]string{"f", "a\nb"}, opts)
	assert.Equal(t, "(f\n  a\n  b)", got)
}

func TestRenderTokenKinds(t *testing.T) {
	assert.Equal(t, "42", renderToken(ast.Token{Kind: ast.Num, Text: "42"}))
	assert.Equal(t, "#t", renderToken(ast.Token{Kind: ast.Bool, Text: "#t"}))
	assert.Equal(t, "#<void>", renderToken(ast.Token{Kind: ast.Void, Text: "#<void>"}))
	assert.Equal(t, `"hi"`, renderToken(ast.Token{Kind: ast.Str, Text: "hi"}))
	assert.Equal(t, "'foo", renderToken(ast.Token{Kind: ast.Sym, Text: "foo"}))
	assert.Equal(t, "'|a b|", renderToken(ast.Token{Kind: ast.Sym, Text: "a b"}))
	assert.Equal(t, `#\c`, renderToken(ast.Token{Kind: ast.Char, Text: "c"}))
}

func TestASTUnexpandsAnd(t *testing.T) {
	surface := ast.SExpr(ast.Id("and"), ast.Id("x"), ast.Id("y"))
	lowered := ast.Expand(surface)
	got := AST(lowered, DefaultOptions())
	assert.Equal(t, "(and x y)", got)
}

func TestASTUnexpandsOr(t *testing.T) {
	surface := ast.SExpr(ast.Id("or"), ast.Id("x"), ast.Id("y"))
	lowered := ast.Expand(surface)
	got := AST(lowered, DefaultOptions())
	assert.Equal(t, "(or x y)", got)
}

func TestASTUnexpandsWhen(t *testing.T) {
	surface := ast.SExpr(ast.Id("when"), ast.Id("ready"), ast.Id("go"))
	lowered := ast.Expand(surface)
	got := AST(lowered, DefaultOptions())
	assert.Equal(t, "(when ready go)", got)
}

func TestASTLeavesPlainIfAlone(t *testing.T) {
	n := ast.SExpr(ast.Id("if"), ast.Id("a"), ast.Id("b"), ast.Id("c"))
	got := AST(n, DefaultOptions())
	assert.Equal(t, "(if\n  a\n  b\n  c\n)", got)
}

func TestASTUnexpandDisabledRendersRawIf(t *testing.T) {
	surface := ast.SExpr(ast.Id("when"), ast.Id("ready"), ast.Id("go"))
	lowered := ast.Expand(surface)
	opts := DefaultOptions()
	opts.UnexpandMacros = false
	got := AST(lowered, opts)
	require.Contains(t, got, "if")
	assert.NotContains(t, got, "when")
}

func TestASTQuoteIdentVsList(t *testing.T) {
	identQuote := ast.QuoteOf(ast.Id("foo"))
	assert.Equal(t, "'foo", AST(identQuote, DefaultOptions()))

	listQuote := ast.QuoteOf(ast.SExpr(ast.Id("a"), ast.Id("b")))
	assert.Equal(t, "'(a b)", AST(listQuote, DefaultOptions()))
}

func TestANFRendersLambdaAndApp(t *testing.T) {
	v := anf.Var{Name: "x", Interned: true}
	body := anf.App(anf.VarRef(v), []*anf.Node{anf.Literal(ast.Token{Kind: ast.Num, Text: "1"})})
	lam := anf.Lambda([]anf.Var{v}, body)
	got := ANF(lam, DefaultOptions())
	assert.Equal(t, "(lambda (x) (x 1))", got)
}

func TestANFRendersLetAndIf(t *testing.T) {
	// if and let each carry 4 child renderings (head plus three operands),
	// so both always cross the n>3 single-line threshold and wrap.
	v := anf.Var{Name: "n", Interned: true}
	ifNode := anf.If(
		anf.VarRef(v),
		anf.Literal(ast.Token{Kind: ast.Num, Text: "1"}),
		anf.Literal(ast.Token{Kind: ast.Num, Text: "2"}),
	)
	let := anf.Let(v, anf.Literal(ast.Token{Kind: ast.Num, Text: "0"}), ifNode)
	got := ANF(let, DefaultOptions())
	want := "(let\n  n\n  0\n  (if\n    n\n    1\n    2\n  )\n)"
	assert.Equal(t, want, got)
}

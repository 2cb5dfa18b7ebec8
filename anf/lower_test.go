package anf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanf/ast"
	"lanf/intern"
)

func num(text string) *ast.Node { return ast.Lit(ast.Token{Kind: ast.Num, Text: text}) }

func TestLowerLiteral(t *testing.T) {
	n, err := Lower(num("42"), intern.New())
	require.NoError(t, err)
	assert.Equal(t, KLiteral, n.Kind)
	assert.Equal(t, "42", n.Tok.Text)
}

func TestLowerIdentInternsOnce(t *testing.T) {
	tbl := intern.New()
	a, err := Lower(ast.Id("x"), tbl)
	require.NoError(t, err)
	b, err := Lower(ast.Id("x"), tbl)
	require.NoError(t, err)
	assert.Equal(t, a.Var.Id, b.Var.Id)
	assert.Equal(t, 1, tbl.Len())
}

func TestLowerIf(t *testing.T) {
	surface := ast.SExpr(ast.Id("if"), ast.Id("c"), num("1"), num("2"))
	n, err := Lower(surface, intern.New())
	require.NoError(t, err)
	assert.Equal(t, KIf, n.Kind)
	assert.Equal(t, KVar, n.Cond.Kind)
	assert.Equal(t, KLiteral, n.Then.Kind)
	assert.Equal(t, KLiteral, n.Else.Kind)
}

func TestLowerIfWrongArity(t *testing.T) {
	surface := ast.SExpr(ast.Id("if"), ast.Id("c"), num("1"))
	_, err := Lower(surface, intern.New())
	assert.ErrorIs(t, err, ErrMalformedSurfaceForm)
}

func TestLowerLet(t *testing.T) {
	surface := ast.SExpr(ast.Id("let"), ast.Id("n"), num("0"), ast.Id("n"))
	n, err := Lower(surface, intern.New())
	require.NoError(t, err)
	assert.Equal(t, KLet, n.Kind)
	assert.Equal(t, "n", n.Name.Name)
	assert.Equal(t, KLiteral, n.Value.Kind)
	assert.Equal(t, KVar, n.Body.Kind)
}

func TestLowerLambda(t *testing.T) {
	surface := ast.SExpr(ast.Id("lambda"), ast.SExpr(ast.Id("x"), ast.Id("y")), ast.Id("x"))
	n, err := Lower(surface, intern.New())
	require.NoError(t, err)
	assert.Equal(t, KLambda, n.Kind)
	require.Len(t, n.Params, 2)
	assert.Equal(t, "x", n.Params[0].Name)
	assert.Equal(t, "y", n.Params[1].Name)
}

func TestLowerApplication(t *testing.T) {
	surface := ast.SExpr(ast.Id("f"), num("1"), num("2"))
	n, err := Lower(surface, intern.New())
	require.NoError(t, err)
	assert.Equal(t, KApp, n.Kind)
	assert.Equal(t, KVar, n.Callee.Kind)
	assert.Len(t, n.Args, 2)
}

func TestLowerExpandsMacrosFirst(t *testing.T) {
	surface := ast.SExpr(ast.Id("when"), ast.Id("ready"), ast.Id("go"))
	n, err := Lower(surface, intern.New())
	require.NoError(t, err)
	assert.Equal(t, KIf, n.Kind)
	assert.Equal(t, KLiteral, n.Else.Kind) // #<void>
}

func TestLowerQuotedSymbol(t *testing.T) {
	surface := ast.QuoteOf(ast.Id("foo"))
	n, err := Lower(surface, intern.New())
	require.NoError(t, err)
	assert.Equal(t, KLiteral, n.Kind)
	assert.Equal(t, ast.Sym, n.Tok.Kind)
	assert.Equal(t, "foo", n.Tok.Text)
}

func TestVarStringFallsBackWhenNotInterned(t *testing.T) {
	v := Var{Name: "x", Id: intern.SymId(3)}
	assert.Equal(t, "x3", v.String())
}

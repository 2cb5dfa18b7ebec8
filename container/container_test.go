package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanf/anf"
	"lanf/ast"
	"lanf/compiler"
	"lanf/intern"
)

func num(text string) *ast.Node { return ast.Lit(ast.Token{Kind: ast.Num, Text: text}) }

func compileProgram(t *testing.T, surface *ast.Node) *compiler.Result {
	t.Helper()
	lowered, err := anf.Lower(surface, intern.New())
	require.NoError(t, err)
	res, err := compiler.Compile(&anf.Program{Name: "p", Body: lowered}, compiler.Options{})
	require.NoError(t, err)
	return res
}

func TestEncodeDecodeRoundTripsSimpleLiteral(t *testing.T) {
	res := compileProgram(t, num("42"))
	data, err := Encode(res, Options{})
	require.NoError(t, err)

	assert.Equal(t, Magic[:], data[0:4])

	loaded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Version, loaded.Version)
	assert.Equal(t, WordSize, loaded.WordSize)
	assert.Equal(t, len(res.Instructions), len(loaded.Instructions))
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	bad := []byte{'X', 'X', 'X', 'X', 1, 0, 4, 0, 4}
	_, err := Decode(bad)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode(Magic[:])
	assert.ErrorIs(t, err, ErrTruncatedBinary)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	res := compileProgram(t, num("1"))
	data, err := Encode(res, Options{})
	require.NoError(t, err)
	data[4] = 99 // low byte of version u16
	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestEncodeDecodeRoundTripsIfAndJumps(t *testing.T) {
	surface := ast.SExpr(ast.Id("if"), ast.Id("c"), num("1"), num("2"))
	res := compileProgram(t, surface)
	data, err := Encode(res, Options{})
	require.NoError(t, err)

	loaded, err := Decode(data)
	require.NoError(t, err)
	// The if_else and if_end LABEL pseudo-instructions are stripped on encode.
	assert.Equal(t, len(res.Instructions)-2, len(loaded.Instructions))
}

func TestEncodeRoundTripsSymbolTable(t *testing.T) {
	surface := ast.SExpr(ast.Id("let"), ast.Id("n"), num("0"), ast.Id("n"))
	res := compileProgram(t, surface)
	data, err := Encode(res, Options{})
	require.NoError(t, err)

	loaded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, res.Interns.Names(), loaded.Interns.Names())
}

func TestGrowBufferOverflow(t *testing.T) {
	buf := newGrowBuffer(1.1, 8)
	err := buf.Write(make([]byte, 100))
	assert.ErrorIs(t, err, ErrBufferOverflow)
}

func TestGrowBufferGrowsWithinMax(t *testing.T) {
	buf := newGrowBuffer(1.5, 1<<20)
	err := buf.Write(make([]byte, 1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, buf.Len())
}

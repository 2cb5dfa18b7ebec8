package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanf/anf"
	"lanf/ast"
	"lanf/bytecode"
	"lanf/intern"
)

func num(text string) *ast.Node { return ast.Lit(ast.Token{Kind: ast.Num, Text: text}) }

func lower(t *testing.T, n *ast.Node) *anf.Node {
	t.Helper()
	lowered, err := anf.Lower(n, intern.New())
	require.NoError(t, err)
	return lowered
}

func TestCompileLiteralEmitsLoadConstAndHalt(t *testing.T) {
	prog := &anf.Program{Name: "p", Body: lower(t, num("42"))}
	res, err := Compile(prog, Options{})
	require.NoError(t, err)

	require.Len(t, res.Instructions, 2)
	assert.Equal(t, bytecode.LoadConst, res.Instructions[0].Op)
	assert.Equal(t, bytecode.Halt, res.Instructions[1].Op)

	idx := int(res.Instructions[0].Operands[0].Int)
	entry, ok := res.Pool.Get(idx)
	require.True(t, ok)
	assert.Equal(t, int32(42), entry.Int)
}

func TestCompileDeterministic(t *testing.T) {
	surface := ast.SExpr(ast.Id("if"), ast.Id("c"), num("1"), num("2"))
	prog1 := &anf.Program{Name: "p", Body: lower(t, surface)}
	prog2 := &anf.Program{Name: "p", Body: lower(t, surface)}

	res1, err := Compile(prog1, Options{})
	require.NoError(t, err)
	res2, err := Compile(prog2, Options{})
	require.NoError(t, err)

	assert.Equal(t, res1.Instructions, res2.Instructions)
	assert.Equal(t, res1.Interns.Names(), res2.Interns.Names())
}

func TestCompileIfHasNoUnresolvedLabels(t *testing.T) {
	surface := ast.SExpr(ast.Id("if"), ast.Id("c"), num("1"), num("2"))
	prog := &anf.Program{Name: "p", Body: lower(t, surface)}
	res, err := Compile(prog, Options{})
	require.NoError(t, err)

	for _, instr := range res.Instructions {
		if instr.Op == bytecode.JmpFalse || instr.Op == bytecode.Jmp {
			target := int(instr.Operands[0].Int)
			assert.GreaterOrEqual(t, target, 0)
			assert.Less(t, target, len(res.Instructions))
		}
	}
}

func TestCompileLambdaEmitsMakeClosure(t *testing.T) {
	surface := ast.SExpr(ast.Id("lambda"), ast.SExpr(ast.Id("x")), ast.Id("x"))
	prog := &anf.Program{Name: "p", Body: lower(t, surface)}
	res, err := Compile(prog, Options{})
	require.NoError(t, err)

	var found bool
	for _, instr := range res.Instructions {
		if instr.Op == bytecode.MakeClosure {
			found = true
			require.Len(t, instr.Operands, 2)
			assert.Equal(t, int32(1), instr.Operands[1].Int) // arity
			target := int(instr.Operands[0].Int)
			assert.GreaterOrEqual(t, target, 0)
			assert.Less(t, target, len(res.Instructions))
		}
	}
	assert.True(t, found, "expected a MAKE_CLOSURE instruction")
}

func TestCompileApplicationUsesTailCallInTailPosition(t *testing.T) {
	surface := ast.SExpr(ast.Id("f"), num("1"))
	prog := &anf.Program{Name: "p", Body: lower(t, surface)}
	res, err := Compile(prog, Options{})
	require.NoError(t, err)

	var sawTailCall bool
	for _, instr := range res.Instructions {
		if instr.Op == bytecode.TailCall {
			sawTailCall = true
		}
		assert.NotEqual(t, bytecode.Call, instr.Op, "top-level application body is in tail position")
	}
	assert.True(t, sawTailCall)
}

func TestEmitterPatchLabelsResolvesJumpsAndMakeClosure(t *testing.T) {
	e := NewEmitter()
	e.Emit(bytecode.Jmp, LabelOperand("skip"))
	e.Label("body")
	e.Emit(bytecode.Return)
	e.Label("skip")
	e.Emit(bytecode.MakeClosure, LabelOperand("body"), DataOperand{bytecode.Int(0)})

	instrs, err := e.PatchLabels()
	require.NoError(t, err)

	// 0:JMP 1:LABEL(body) 2:RETURN 3:LABEL(skip) 4:MAKE_CLOSURE
	assert.Equal(t, int32(3), instrs[0].Operands[0].Int) // jmp -> index of "skip"
	assert.Equal(t, int32(1), instrs[4].Operands[0].Int) // make_closure -> index of "body"
}

func TestEmitterPatchLabelsUnknownLabel(t *testing.T) {
	e := NewEmitter()
	e.Emit(bytecode.Jmp, LabelOperand("nowhere"))
	_, err := e.PatchLabels()
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLiteralToBCDataVoidMapsToNil(t *testing.T) {
	data, err := literalToBCData(ast.Token{Kind: ast.Void, Text: "#<void>"}, intern.New())
	require.NoError(t, err)
	assert.Equal(t, bytecode.TagNil, data.Tag)
}

func TestLiteralToBCDataListUnsupported(t *testing.T) {
	_, err := literalToBCData(ast.Token{Kind: ast.List, Text: "1 2"}, intern.New())
	assert.ErrorIs(t, err, bytecode.ErrUnsupportedTag)
}

// Package compiler lowers an ANF program into a flat bytecode instruction
// stream, per spec.md §4.C/§4.D: emission plus label patching (the
// emitter, emit.go) and the ANF-node-to-instruction lowering contract
// (this file).
package compiler

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"lanf/anf"
	"lanf/ast"
	"lanf/bytecode"
	"lanf/constpool"
	"lanf/intern"
)

// Options configures a single Compile call.
type Options struct {
	// Logger receives Debug-level emission tracing; the zero value
	// (zerolog.Logger{}) behaves like zerolog.Nop().
	Logger zerolog.Logger
}

// Result is everything a program compiles down to: the resolved
// instruction stream plus the intern table and constant pool it
// references.
type Result struct {
	Instructions []bytecode.Instruction
	Interns      *intern.Table
	Pool         *constpool.Pool
}

type state struct {
	emitter      *Emitter
	interns      *intern.Table
	pool         *constpool.Pool
	labelCounter int
	log          zerolog.Logger
}

// Compile lowers prog into a Result. Compilation is deterministic:
// compiling the same program twice with fresh Options produces
// byte-identical instruction streams, intern tables and constant pools
// (testable property 3), since label names and pool/intern insertion
// order only depend on the tree shape.
func Compile(prog *anf.Program, opts Options) (*Result, error) {
	s := &state{
		emitter: NewEmitter().WithLogger(opts.Logger),
		interns: intern.New(),
		pool:    constpool.New(),
		log:     opts.Logger,
	}

	if err := s.compile(prog.Body, true); err != nil {
		return nil, errors.Wrapf(err, "compiling program %q", prog.Name)
	}
	s.emitter.Emit(bytecode.Halt)

	instrs, err := s.emitter.PatchLabels()
	if err != nil {
		return nil, errors.Wrapf(err, "compiling program %q", prog.Name)
	}

	return &Result{Instructions: instrs, Interns: s.interns, Pool: s.pool}, nil
}

func (s *state) newLabel(base string) string {
	s.labelCounter++
	return fmt.Sprintf("%s_%d", base, s.labelCounter)
}

// compile lowers n, emitting instructions that leave exactly one value on
// the operand stack on normal completion. tail reports whether n sits in
// tail position (the top-level program body, last form of a lambda body,
// either arm of a tail if, or the body of a tail let) — only App consults
// it, to choose CALL vs TAILCALL.
func (s *state) compile(n *anf.Node, tail bool) error {
	switch n.Kind {
	case anf.KLiteral:
		return s.compileLiteral(n)
	case anf.KVar:
		id := s.interns.Intern(n.Var.Name)
		s.emitter.Emit(bytecode.LoadVar, DataOperand{bytecode.Ident(id)})
		return nil
	case anf.KLet:
		if err := s.compile(n.Value, false); err != nil {
			return err
		}
		id := s.interns.Intern(n.Name.Name)
		s.emitter.Emit(bytecode.StoreVar, DataOperand{bytecode.Ident(id)})
		return s.compile(n.Body, tail)
	case anf.KIf:
		return s.compileIf(n, tail)
	case anf.KApp:
		return s.compileApp(n, tail)
	case anf.KLambda:
		return s.compileLambda(n)
	default:
		return errors.Errorf("unknown ANF node kind %d", n.Kind)
	}
}

func (s *state) compileLiteral(n *anf.Node) error {
	data, err := literalToBCData(n.Tok, s.interns)
	if err != nil {
		return err
	}
	idx := s.pool.Intern(data)
	s.emitter.Emit(bytecode.LoadConst, DataOperand{bytecode.Int(int32(idx))})
	return nil
}

func (s *state) compileIf(n *anf.Node, tail bool) error {
	if err := s.compile(n.Cond, false); err != nil {
		return err
	}
	elseLabel := s.newLabel("if_else")
	endLabel := s.newLabel("if_end")

	s.emitter.Emit(bytecode.JmpFalse, LabelOperand(elseLabel))
	if err := s.compile(n.Then, tail); err != nil {
		return err
	}
	s.emitter.Emit(bytecode.Jmp, LabelOperand(endLabel))
	s.emitter.Label(elseLabel)
	if err := s.compile(n.Else, tail); err != nil {
		return err
	}
	s.emitter.Label(endLabel)
	return nil
}

func (s *state) compileApp(n *anf.Node, tail bool) error {
	for _, arg := range n.Args {
		if err := s.compile(arg, false); err != nil {
			return err
		}
	}
	if err := s.compile(n.Callee, false); err != nil {
		return err
	}
	op := bytecode.Call
	if tail {
		op = bytecode.TailCall
	}
	s.emitter.Emit(op, DataOperand{bytecode.Int(int32(len(n.Args)))})
	return nil
}

// compileLambda compiles the body into a block reached by jumping past it
// (so the enclosing instruction stream stays linear), then emits
// MAKE_CLOSURE referencing the block's entry label and the arity.
func (s *state) compileLambda(n *anf.Node) error {
	skipLabel := s.newLabel("lambda_skip")
	bodyLabel := s.newLabel("lambda_body")

	s.emitter.Emit(bytecode.Jmp, LabelOperand(skipLabel))
	s.emitter.Label(bodyLabel)
	if err := s.compile(n.Body, true); err != nil {
		return err
	}
	s.emitter.Emit(bytecode.Return)
	s.emitter.Label(skipLabel)
	s.emitter.Emit(bytecode.MakeClosure,
		LabelOperand(bodyLabel),
		DataOperand{bytecode.Int(int32(len(n.Params)))})
	return nil
}

// literalToBCData converts a parsed literal token into its constant-pool
// encoding. LIST/PROCEDURE tokens raise bytecode.ErrUnsupportedTag, as
// spec.md Design Notes requires rather than silently dropping them.
func literalToBCData(tok ast.Token, interns *intern.Table) (bytecode.BCData, error) {
	switch tok.Kind {
	case ast.Num:
		if i, err := strconv.ParseInt(tok.Text, 10, 32); err == nil {
			return bytecode.Int(int32(i)), nil
		}
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return bytecode.BCData{}, errors.Wrapf(err, "malformed numeric literal %q", tok.Text)
		}
		return bytecode.Float(f), nil
	case ast.Sym:
		return bytecode.Sym(interns.Intern(tok.Text)), nil
	case ast.Str:
		return bytecode.Str(tok.Text), nil
	case ast.Bool:
		return bytecode.Bool(tok.Text == "#t"), nil
	case ast.Void:
		return bytecode.Nil(), nil
	case ast.List, ast.Procedure:
		return bytecode.BCData{}, errors.Wrapf(bytecode.ErrUnsupportedTag, "token kind %s", tok.Kind)
	default:
		return bytecode.BCData{}, errors.Errorf("token kind %s is not a literal", tok.Kind)
	}
}

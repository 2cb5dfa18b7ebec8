package anf

import (
	"github.com/pkg/errors"

	"lanf/ast"
	"lanf/intern"
)

// ErrMalformedSurfaceForm is raised when a recognized special form (if,
// let, lambda) is used with the wrong shape.
var ErrMalformedSurfaceForm = errors.New("malformed surface form")

// Lower walks an AST tree and produces its ANF equivalent, interning every
// identifier it sees along the way. Each form is passed through ast.Expand
// before it is lowered, so and/or/when/void macros may appear in the input.
// Surface special forms recognized: if, let (single-binding:
// (let name value body)), lambda ((lambda (p1 p2) body)); any other form,
// whatever its head, is an application.
func Lower(n *ast.Node, interns *intern.Table) (*Node, error) {
	switch n.Kind {
	case ast.NLiteral:
		return Literal(n.Tok), nil
	case ast.NIdent:
		return VarRef(internVar(n.Tok.Text, interns)), nil
	case ast.NQuote:
		return lowerQuote(n, interns)
	case ast.NSExpr:
		return lowerSExpr(n, interns)
	case ast.NProcedure:
		return nil, errors.New("procedure values are not implemented (reserved)")
	default:
		return nil, errors.Errorf("unknown AST node kind %d", n.Kind)
	}
}

func internVar(name string, interns *intern.Table) Var {
	return Var{Name: name, Id: interns.Intern(name), Interned: true}
}

func lowerQuote(n *ast.Node, interns *intern.Table) (*Node, error) {
	if n.Quoted == nil || n.Quoted.Kind != ast.NIdent {
		return nil, errors.Wrap(ErrMalformedSurfaceForm, "only quoted symbols are supported")
	}
	return Literal(ast.Token{Kind: ast.Sym, Text: n.Quoted.Tok.Text}), nil
}

func lowerSExpr(n *ast.Node, interns *intern.Table) (*Node, error) {
	expanded := ast.Expand(n)
	if expanded.Kind != ast.NSExpr {
		return Lower(expanded, interns)
	}
	n = expanded

	if len(n.Children) == 0 {
		return nil, errors.Wrap(ErrMalformedSurfaceForm, "empty form")
	}
	head := n.Children[0]
	if head.Kind == ast.NIdent {
		switch head.Tok.Text {
		case "if":
			return lowerIf(n.Children[1:], interns)
		case "let":
			return lowerLet(n.Children[1:], interns)
		case "lambda":
			return lowerLambda(n.Children[1:], interns)
		}
	}
	return lowerApp(n.Children, interns)
}

func lowerIf(args []*ast.Node, interns *intern.Table) (*Node, error) {
	if len(args) != 3 {
		return nil, errors.Wrapf(ErrMalformedSurfaceForm, "if wants 3 args, got %d", len(args))
	}
	cond, err := Lower(args[0], interns)
	if err != nil {
		return nil, err
	}
	then, err := Lower(args[1], interns)
	if err != nil {
		return nil, err
	}
	els, err := Lower(args[2], interns)
	if err != nil {
		return nil, err
	}
	return If(cond, then, els), nil
}

func lowerLet(args []*ast.Node, interns *intern.Table) (*Node, error) {
	if len(args) != 3 || args[0].Kind != ast.NIdent {
		return nil, errors.Wrap(ErrMalformedSurfaceForm, "let wants (let name value body)")
	}
	value, err := Lower(args[1], interns)
	if err != nil {
		return nil, err
	}
	body, err := Lower(args[2], interns)
	if err != nil {
		return nil, err
	}
	return Let(internVar(args[0].Tok.Text, interns), value, body), nil
}

func lowerLambda(args []*ast.Node, interns *intern.Table) (*Node, error) {
	if len(args) != 2 || args[0].Kind != ast.NSExpr {
		return nil, errors.Wrap(ErrMalformedSurfaceForm, "lambda wants (lambda (params...) body)")
	}
	params := make([]Var, 0, len(args[0].Children))
	for _, p := range args[0].Children {
		if p.Kind != ast.NIdent {
			return nil, errors.Wrap(ErrMalformedSurfaceForm, "lambda parameter must be an identifier")
		}
		params = append(params, internVar(p.Tok.Text, interns))
	}
	body, err := Lower(args[1], interns)
	if err != nil {
		return nil, err
	}
	return Lambda(params, body), nil
}

func lowerApp(children []*ast.Node, interns *intern.Table) (*Node, error) {
	callee, err := Lower(children[0], interns)
	if err != nil {
		return nil, err
	}
	args := make([]*Node, 0, len(children)-1)
	for _, c := range children[1:] {
		lowered, err := Lower(c, interns)
		if err != nil {
			return nil, err
		}
		args = append(args, lowered)
	}
	return App(callee, args), nil
}

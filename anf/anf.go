// Package anf defines the administrative normal form tree the compiler
// consumes: six node shapes (Literal, Var, Lambda, App, Let, If). Lower
// keeps nested applications in place; it does not introduce Let bindings
// for intermediate subexpressions.
package anf

import (
	"fmt"

	"lanf/ast"
	"lanf/intern"
)

// Kind discriminates the six ANF node shapes.
type Kind int

const (
	KLiteral Kind = iota
	KVar
	KLambda
	KApp
	KLet
	KIf
)

// Var names a runtime symbol reference. Name is the surface name;
// Interned reports whether Id was actually assigned via an intern table
// (Var nodes built before compilation may carry a placeholder); printing
// falls back to "name+id" when not interned, matching spec.md §3.
type Var struct {
	Name     string
	Id       intern.SymId
	Interned bool
}

func (v Var) String() string {
	if v.Interned {
		return v.Name
	}
	return fmt.Sprintf("%s%d", v.Name, v.Id)
}

// Node is an ANF tree node, dispatched on Kind; exactly one payload field
// is meaningful per Kind.
type Node struct {
	Kind Kind

	// KLiteral
	Tok ast.Token

	// KVar
	Var Var

	// KLambda
	Params []Var
	Body   *Node

	// KApp
	Callee *Node
	Args   []*Node

	// KLet uses Name and Value, and shares Body with KLambda.
	Name  Var
	Value *Node

	// KIf
	Cond *Node
	Then *Node
	Else *Node
}

func Literal(tok ast.Token) *Node { return &Node{Kind: KLiteral, Tok: tok} }

func VarRef(v Var) *Node { return &Node{Kind: KVar, Var: v} }

func Lambda(params []Var, body *Node) *Node {
	return &Node{Kind: KLambda, Params: params, Body: body}
}

func App(callee *Node, args []*Node) *Node {
	return &Node{Kind: KApp, Callee: callee, Args: args}
}

func Let(name Var, value, body *Node) *Node {
	return &Node{Kind: KLet, Name: name, Value: value, Body: body}
}

func If(cond, then, els *Node) *Node {
	return &Node{Kind: KIf, Cond: cond, Then: then, Else: els}
}

// Program is a named top-level ANF tree.
type Program struct {
	Name string
	Body *Node
}

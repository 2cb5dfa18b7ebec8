package decompile

import "lanf/ast"

// tryUnexpand recognizes the if-shape ast.Expand produces for and/or/when
// and renders the original surface macro call, if n matches. It is the
// inverse of ast.Expand and is what testable property 7 (un-expand then
// re-expand round-trips) exercises.
func tryUnexpand(n *ast.Node, opts Options) (string, bool) {
	if parts := flattenAnd(n); len(parts) >= 2 {
		return renderForm(append([]string{"and"}, renderChildren(parts, opts)...), opts), true
	}
	if parts := flattenOr(n); len(parts) >= 2 {
		return renderForm(append([]string{"or"}, renderChildren(parts, opts)...), opts), true
	}
	if test, body, ok := matchWhen(n); ok {
		return renderForm([]string{"when", AST(test, opts), AST(body, opts)}, opts), true
	}
	return "", false
}

func renderChildren(nodes []*ast.Node, opts Options) []string {
	out := make([]string, len(nodes))
	for i, c := range nodes {
		out[i] = AST(c, opts)
	}
	return out
}

// flattenAnd walks n's nested if-shape as far as it matches
// `(if c1 (if c2 ... #f) #f)` with a __macro hint of "and" or no hint at
// all, returning the flattened operand list. A non-matching n (including
// one hinted for a different macro) comes back as a singleton, which
// callers treat as "no match" since a genuine and needs at least 2 terms.
func flattenAnd(n *ast.Node) []*ast.Node {
	cond, then, els, ok := ifShape(n)
	if !ok || !isFalseLit(els) || !hintAllows(n, "and") {
		return []*ast.Node{n}
	}
	return append([]*ast.Node{cond}, flattenAnd(then)...)
}

// flattenOr is and's mirror image: `(if c1 #t (if c2 #t ... tn))`.
func flattenOr(n *ast.Node) []*ast.Node {
	cond, then, els, ok := ifShape(n)
	if !ok || !isTrueLit(then) || !hintAllows(n, "or") {
		return []*ast.Node{n}
	}
	return append([]*ast.Node{cond}, flattenOr(els)...)
}

// matchWhen recognizes `(if test body #<void>)`.
func matchWhen(n *ast.Node) (test, body *ast.Node, ok bool) {
	cond, then, els, shaped := ifShape(n)
	if !shaped || !isVoidLit(els) || !hintAllows(n, "when") {
		return nil, nil, false
	}
	return cond, then, true
}

func ifShape(n *ast.Node) (cond, then, els *ast.Node, ok bool) {
	if n.Kind != ast.NSExpr || len(n.Children) != 4 {
		return nil, nil, nil, false
	}
	head := n.Children[0]
	if head.Kind != ast.NIdent || head.Tok.Text != "if" {
		return nil, nil, nil, false
	}
	return n.Children[1], n.Children[2], n.Children[3], true
}

func hintAllows(n *ast.Node, macro string) bool {
	hint, ok := n.MacroHint()
	return !ok || hint == macro
}

func isFalseLit(n *ast.Node) bool {
	return n.Kind == ast.NLiteral && n.Tok.Kind == ast.Bool && n.Tok.Text == "#f"
}

func isTrueLit(n *ast.Node) bool {
	return n.Kind == ast.NLiteral && n.Tok.Kind == ast.Bool && n.Tok.Text == "#t"
}

func isVoidLit(n *ast.Node) bool {
	return n.Kind == ast.NLiteral && n.Tok.Kind == ast.Void
}

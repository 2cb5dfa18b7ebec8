package decompile

import "lanf/anf"

// ANF renders an ANF tree back to source-equivalent text. ANF has no
// macro concept of its own by the time a tree reaches it (and/or/when
// were already lowered to if by the ast.Expand pass inside anf.Lower),
// so Options.UnexpandMacros has no effect here; it exists only on AST.
func ANF(n *anf.Node, opts Options) string {
	switch n.Kind {
	case anf.KLiteral:
		return renderToken(n.Tok)
	case anf.KVar:
		return n.Var.String()
	case anf.KLambda:
		return renderForm([]string{"lambda", renderParams(n.Params), ANF(n.Body, opts)}, opts)
	case anf.KApp:
		elems := make([]string, 0, len(n.Args)+1)
		elems = append(elems, ANF(n.Callee, opts))
		for _, a := range n.Args {
			elems = append(elems, ANF(a, opts))
		}
		return renderForm(elems, opts)
	case anf.KLet:
		return renderForm([]string{"let", n.Name.String(), ANF(n.Value, opts), ANF(n.Body, opts)}, opts)
	case anf.KIf:
		return renderForm([]string{"if", ANF(n.Cond, opts), ANF(n.Then, opts), ANF(n.Else, opts)}, opts)
	default:
		return "#<unknown-anf-node>"
	}
}

func renderParams(params []anf.Var) string {
	elems := make([]string, len(params))
	for i, p := range params {
		elems[i] = p.String()
	}
	out := "("
	for i, e := range elems {
		if i > 0 {
			out += " "
		}
		out += e
	}
	return out + ")"
}

package decompile

import "lanf/ast"

// AST renders a surface tree back to source-equivalent text, per
// spec.md §4.G. With Options.UnexpandMacros set, it first checks whether
// n is the lowered if-shape of and/or/when and, if so, recovers the
// original macro call instead of descending into the raw if.
func AST(n *ast.Node, opts Options) string {
	if opts.UnexpandMacros {
		if text, ok := tryUnexpand(n, opts); ok {
			return text
		}
	}

	switch n.Kind {
	case ast.NLiteral:
		return renderToken(n.Tok)
	case ast.NIdent:
		return n.Tok.Text
	case ast.NQuote:
		return renderQuote(n.Quoted, opts)
	case ast.NSExpr:
		elems := make([]string, len(n.Children))
		for i, c := range n.Children {
			elems[i] = AST(c, opts)
		}
		return renderForm(elems, opts)
	case ast.NProcedure:
		return "#<procedure>"
	default:
		return "#<unknown-ast-node>"
	}
}

func renderQuote(quoted *ast.Node, opts Options) string {
	if quoted.Kind == ast.NIdent {
		return renderSymbol(quoted.Tok.Text)
	}
	return "'" + AST(quoted, opts)
}

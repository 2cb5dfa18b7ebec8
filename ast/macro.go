package ast

// Expand lowers the surface macros this module knows about (and, or,
// when, void) into their `if`/literal shape, per spec.md §4.G and §9.
// Any other NSExpr is returned unchanged; this is the forward direction
// whose inverse the decompiler's macro un-expansion recovers, and the one
// testable property 7 (un-expand then re-expand round-trips) exercises.
func Expand(n *Node) *Node {
	if n == nil || n.Kind != NSExpr || len(n.Children) == 0 {
		return n
	}
	head := n.Children[0]
	if head.Kind != NIdent {
		return n
	}
	args := n.Children[1:]
	switch head.Tok.Text {
	case "and":
		return expandAnd(args)
	case "or":
		return expandOr(args)
	case "when":
		if len(args) != 2 {
			return n
		}
		return expandWhen(args[0], args[1])
	case "void":
		if len(args) != 0 {
			return n
		}
		return VoidLit()
	default:
		return n
	}
}

func ifNode(cond, then, els *Node) *Node {
	return SExpr(Id("if"), cond, then, els)
}

// expandAnd lowers (and t1 t2 ... tn) to nested (if t1 (if t2 ... #f) #f).
func expandAnd(args []*Node) *Node {
	switch len(args) {
	case 0:
		return BoolLit(true)
	case 1:
		return args[0]
	default:
		rest := expandAnd(args[1:])
		return ifNode(args[0], rest, BoolLit(false)).WithMacroHint("and")
	}
}

// expandOr lowers (or t1 t2 ... tn) to nested (if t1 #t (if t2 #t ... tn)).
func expandOr(args []*Node) *Node {
	switch len(args) {
	case 0:
		return BoolLit(false)
	case 1:
		return args[0]
	default:
		rest := expandOr(args[1:])
		return ifNode(args[0], BoolLit(true), rest).WithMacroHint("or")
	}
}

// expandWhen lowers (when test body) to (if test body #<void>).
func expandWhen(test, body *Node) *Node {
	return ifNode(test, body, VoidLit()).WithMacroHint("when")
}

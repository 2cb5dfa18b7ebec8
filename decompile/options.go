// Package decompile renders ANF and AST trees back to source-equivalent
// text, per spec.md §4.G: a generic S-expression pretty-printer with a
// line-wrapping policy, plus AST-only macro un-expansion that recovers
// and/or/when surface forms from their lowered if-shape. A void literal
// renders as #<void>, not as (void).
package decompile

// Options configures rendering.
type Options struct {
	// UnexpandMacros enables macro un-expansion when decompiling AST
	// nodes (spec.md §4.G); it has no effect on ANF decompilation, which
	// has no macro concept left by the time a tree reaches ANF.
	UnexpandMacros bool

	// ClosingOnNewLine selects whether a multi-line form's closing paren
	// goes on its own line (true) or is appended to the last child
	// (false), per spec.md §4.G.
	ClosingOnNewLine bool

	// Indent is the per-level indentation string for multi-line forms;
	// defaults to two spaces when empty.
	Indent string
}

func (o Options) indent() string {
	if o.Indent == "" {
		return "  "
	}
	return o.Indent
}

// DefaultOptions matches the teacher corpus's common defaults: macro
// un-expansion on, closing paren on its own line, two-space indent.
func DefaultOptions() Options {
	return Options{UnexpandMacros: true, ClosingOnNewLine: true, Indent: "  "}
}

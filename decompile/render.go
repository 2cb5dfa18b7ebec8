package decompile

import "strings"

// renderForm applies spec.md §4.G's line-wrapping policy to a fully
// parenthesized form: elements[0] is the head (an operator or callee),
// the rest are its arguments. A form with three or fewer elements, none
// of which already spans multiple lines, renders on one line; otherwise
// each element after the head gets its own indented line.
func renderForm(elements []string, opts Options) string {
	if len(elements) == 0 {
		return "()"
	}
	if len(elements) <= 3 && !anyMultiline(elements) {
		return "(" + strings.Join(elements, " ") + ")"
	}

	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(elements[0])
	indent := opts.indent()
	for i, e := range elements[1:] {
		last := i == len(elements)-2
		b.WriteByte('\n')
		block := indentBlock(e, indent)
		b.WriteString(block)
		if last && !opts.ClosingOnNewLine {
			b.WriteByte(')')
		}
	}
	if opts.ClosingOnNewLine {
		b.WriteByte('\n')
		b.WriteByte(')')
	}
	return b.String()
}

func anyMultiline(elements []string) bool {
	for _, e := range elements {
		if strings.Contains(e, "\n") {
			return true
		}
	}
	return false
}

func indentBlock(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

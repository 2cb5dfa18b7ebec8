// Package disasm renders a decoded container back to human-readable text:
// a header block, the intern table, the constant pool, and an annotated
// instruction listing, per spec.md §4.F.
package disasm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"lanf/bytecode"
	"lanf/container"
)

// Disassemble renders l as a multi-section report. For a container
// produced by container.Encode every annotation resolves (testable
// property 6). container.Decode does not check LOAD_VAR/STORE_VAR ids or
// LOAD_CONST indices: an unknown variable id makes Disassemble return an
// error, and an out-of-range constant index renders as "<out of range>".
func Disassemble(l *container.Loaded) (string, error) {
	var b strings.Builder

	writeHeader(&b, l)
	writeSymbolTable(&b, l)
	writeConstantPool(&b, l)
	if err := writeBytecode(&b, l); err != nil {
		return "", err
	}

	return b.String(), nil
}

func writeHeader(b *strings.Builder, l *container.Loaded) {
	fmt.Fprintf(b, "; container version=%d word_size=%d flags=%#02x\n", l.Version, l.WordSize, byte(l.Flags))
}

func writeSymbolTable(b *strings.Builder, l *container.Loaded) {
	b.WriteString("; symbol table\n")
	for id, name := range l.Interns.Names() {
		fmt.Fprintf(b, ";   %-4d %s\n", id, name)
	}
}

func writeConstantPool(b *strings.Builder, l *container.Loaded) {
	b.WriteString("; constant pool\n")
	for i, v := range l.Pool.Entries() {
		fmt.Fprintf(b, ";   %-4d %s\n", i, formatConst(v, l))
	}
}

func formatConst(v bytecode.BCData, l *container.Loaded) string {
	switch v.Tag {
	case bytecode.TagInt:
		return fmt.Sprintf("INT %d", v.Int)
	case bytecode.TagFloat:
		return fmt.Sprintf("FLOAT %g", v.Float)
	case bytecode.TagSym:
		name, ok := l.Interns.Get(v.Sym)
		if !ok {
			name = "?"
		}
		return fmt.Sprintf("SYM %s", name)
	case bytecode.TagStr:
		return fmt.Sprintf("STR %q", v.Str)
	case bytecode.TagBool:
		return fmt.Sprintf("BOOL %t", v.Bool)
	case bytecode.TagNil:
		return "NIL"
	default:
		return fmt.Sprintf("TAG(%#x)", byte(v.Tag))
	}
}

func writeBytecode(b *strings.Builder, l *container.Loaded) error {
	b.WriteString("; bytecode\n")
	offset := 0
	for _, instr := range l.Instructions {
		if instr.Op == bytecode.Label {
			return errors.Wrap(container.ErrIllegalLabelInBinary, "disassembling in-memory LABEL instruction")
		}

		line, size, err := renderInstruction(instr, offset, l)
		if err != nil {
			return errors.Wrapf(err, "at offset %d", offset)
		}
		fmt.Fprintf(b, "%08d  %s\n", offset, line)
		offset += size
	}
	return nil
}

// renderInstruction formats one instruction and reports its encoded size
// in bytes, so callers can compute the next instruction's absolute
// offset the same way the binary layout does.
func renderInstruction(instr bytecode.Instruction, offset int, l *container.Loaded) (string, int, error) {
	size := 1 // opcode byte
	parts := []string{instr.Op.String()}

	for opIdx, operand := range instr.Operands {
		enc, err := operand.Encode()
		if err != nil {
			return "", 0, err
		}
		size += 2 + len(enc) // u16 length prefix + tag byte + payload, per container encoding

		switch {
		case instr.Op == bytecode.LoadConst:
			idx := int(operand.Int)
			if v, ok := l.Pool.Get(idx); ok {
				parts = append(parts, fmt.Sprintf("%d ; %s", idx, formatConstInline(v, l)))
			} else {
				parts = append(parts, fmt.Sprintf("%d ; <out of range>", idx))
			}
		case instr.Op == bytecode.LoadVar || instr.Op == bytecode.StoreVar:
			name, ok := l.Interns.Get(operand.Sym)
			if !ok {
				return "", 0, errors.Errorf("unresolved symbol id %d", operand.Sym)
			}
			parts = append(parts, name)
		case instr.Op == bytecode.Jmp || instr.Op == bytecode.JmpTrue || instr.Op == bytecode.JmpFalse:
			target := int(operand.Int)
			parts = append(parts, fmt.Sprintf("target => %d", offset+target))
		case instr.Op == bytecode.MakeClosure && opIdx == 0:
			// First operand is the lambda body's entry label, resolved to
			// an instruction index during compilation and rewritten by
			// container encoding into a byte displacement from this
			// instruction.
			target := int(operand.Int)
			parts = append(parts, fmt.Sprintf("target => %d", offset+target))
		default:
			parts = append(parts, formatOperand(operand))
		}
	}

	return strings.Join(parts, " "), size, nil
}

func formatConstInline(v bytecode.BCData, l *container.Loaded) string {
	switch v.Tag {
	case bytecode.TagSym:
		if name, ok := l.Interns.Get(v.Sym); ok {
			return name
		}
		return "?"
	case bytecode.TagStr:
		return fmt.Sprintf("%q", v.Str)
	default:
		return formatConst(v, l)
	}
}

func formatOperand(v bytecode.BCData) string {
	switch v.Tag {
	case bytecode.TagInt:
		return fmt.Sprintf("%d", v.Int)
	case bytecode.TagFloat:
		return fmt.Sprintf("%g", v.Float)
	case bytecode.TagBool:
		return fmt.Sprintf("%t", v.Bool)
	case bytecode.TagIdent, bytecode.TagSym:
		return fmt.Sprintf("%d", v.Sym)
	case bytecode.TagStr:
		return fmt.Sprintf("%q", v.Str)
	default:
		return "nil"
	}
}

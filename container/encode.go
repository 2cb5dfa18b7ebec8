package container

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"lanf/bytecode"
	"lanf/compiler"
	"lanf/intern"
)

// Options configures container encoding.
type Options struct {
	Flags Flags
	// GrowthFactor and MaxSize default to DefaultGrowthFactor/DefaultMaxSize
	// when zero.
	GrowthFactor float64
	MaxSize      int
}

func (o Options) normalized() Options {
	if o.GrowthFactor == 0 {
		o.GrowthFactor = DefaultGrowthFactor
	}
	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
	return o
}

// Encode packs a compiled Result into the binary container format
// described in spec.md §4.E.
func Encode(res *compiler.Result, opts Options) ([]byte, error) {
	opts = opts.normalized()

	symbols := encodeSymbolTable(res.Interns)
	constants, err := encodeConstantPool(res.Pool)
	if err != nil {
		return nil, errors.Wrap(err, "encoding constant pool")
	}
	procedures := encodeProcedureTable()
	code, err := encodeBytecode(res.Instructions)
	if err != nil {
		return nil, errors.Wrap(err, "encoding bytecode section")
	}

	sections := []struct {
		tag  SectionTag
		data []byte
	}{
		{SectionSymbolTable, symbols},
		{SectionConstantPool, constants},
		{SectionProcedureTable, procedures},
		{SectionBytecode, code},
	}

	buf := newGrowBuffer(opts.GrowthFactor, opts.MaxSize)

	if err := buf.Write(Magic[:]); err != nil {
		return nil, err
	}
	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], Version)
	if err := buf.Write(u16[:]); err != nil {
		return nil, err
	}
	if err := buf.WriteByte(WordSize); err != nil {
		return nil, err
	}
	if err := buf.WriteByte(byte(opts.Flags)); err != nil {
		return nil, err
	}
	if err := buf.WriteByte(byte(len(sections))); err != nil {
		return nil, err
	}

	sectionTableOffset := buf.Len()
	// Reserve the section table; entries get patched in after we know
	// each section's absolute offset.
	entry := make([]byte, sectionEntrySize)
	for range sections {
		if err := buf.Write(entry); err != nil {
			return nil, err
		}
	}

	offsets := make([]int, len(sections))
	for i, sec := range sections {
		offsets[i] = buf.Len()
		if err := buf.Write(sec.data); err != nil {
			return nil, err
		}
	}

	out := buf.Bytes()
	for i, sec := range sections {
		base := sectionTableOffset + i*sectionEntrySize
		out[base] = byte(sec.tag)
		binary.LittleEndian.PutUint32(out[base+1:base+5], uint32(offsets[i]))
		binary.LittleEndian.PutUint32(out[base+5:base+9], uint32(len(sec.data)))
	}

	return out, nil
}

func encodeSymbolTable(interns *intern.Table) []byte {
	names := interns.Names()
	buf := make([]byte, 0, 4+len(names)*8)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(names)))
	buf = append(buf, u32[:]...)

	for id, name := range names {
		raw := []byte(name)
		binary.LittleEndian.PutUint32(u32[:], uint32(id))
		buf = append(buf, u32[:]...)
		var u16 [2]byte
		binary.LittleEndian.PutUint16(u16[:], uint16(len(raw)))
		buf = append(buf, u16[:]...)
		buf = append(buf, raw...)
	}
	return buf
}

func encodeConstantPool(pool interface {
	Entries() []bytecode.BCData
}) ([]byte, error) {
	entries := pool.Entries()
	buf := make([]byte, 0, 4+len(entries)*8)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(entries)))
	buf = append(buf, u32[:]...)

	for _, v := range entries {
		enc, err := encodeLengthPrefixed(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return buf, nil
}

func encodeProcedureTable() []byte {
	return []byte{0, 0, 0, 0} // u32 count = 0; reserved, never populated
}

// encodeBytecode strips LABEL pseudo-instructions and writes the
// remaining instructions in order. Jump and MAKE_CLOSURE targets arrive
// from the compiler as absolute instruction indices into instrs
// (including the LABEL entries, per emit.go's patch_labels); since LABELs
// contribute zero encoded bytes, those indices are rewritten here into
// relative byte displacements from the referencing instruction, so that
// disasm can recover an absolute offset with the spec's
// "instr_offset + target" formula without needing to know about labels.
func encodeBytecode(instrs []bytecode.Instruction) ([]byte, error) {
	offsets := make([]int, len(instrs))
	running := 0
	for i, instr := range instrs {
		offsets[i] = running
		if instr.Op == bytecode.Label {
			continue
		}
		size := 1
		for _, operand := range instr.Operands {
			enc, err := operand.Encode()
			if err != nil {
				return nil, errors.Wrapf(err, "opcode %s", instr.Op)
			}
			size += 2 + len(enc)
		}
		running += size
	}

	buf := make([]byte, 0, running)
	for i, instr := range instrs {
		if instr.Op == bytecode.Label {
			continue
		}
		buf = append(buf, byte(instr.Op))
		for opIdx, operand := range instr.Operands {
			toEncode := operand
			if isRelocatableTarget(instr.Op, opIdx) {
				targetIdx := int(operand.Int)
				if targetIdx < 0 || targetIdx >= len(offsets) {
					return nil, errors.Errorf("opcode %s operand %d references out-of-range instruction index %d", instr.Op, opIdx, targetIdx)
				}
				toEncode = bytecode.Int(int32(offsets[targetIdx] - offsets[i]))
			}
			enc, err := encodeLengthPrefixed(toEncode)
			if err != nil {
				return nil, errors.Wrapf(err, "opcode %s", instr.Op)
			}
			buf = append(buf, enc...)
		}
	}
	return buf, nil
}

// isRelocatableTarget reports whether operandIdx of op holds an
// instruction-index jump target that needs rewriting to a byte
// displacement at encode time.
func isRelocatableTarget(op bytecode.Opcode, operandIdx int) bool {
	if operandIdx != 0 {
		return false
	}
	switch op {
	case bytecode.Jmp, bytecode.JmpTrue, bytecode.JmpFalse, bytecode.MakeClosure:
		return true
	default:
		return false
	}
}

// encodeLengthPrefixed wraps a BCData's tag-byte + raw-payload encoding
// (bytecode.BCData.Encode) with the explicit u16 length field spec.md
// §4.E specifies for both the constant pool and the bytecode section's
// operand encoding ("the same tag-byte + raw-bytes format as
// constant-pool payloads").
func encodeLengthPrefixed(v bytecode.BCData) ([]byte, error) {
	raw, err := v.Encode()
	if err != nil {
		return nil, err
	}
	payload := raw[1:]
	out := make([]byte, 1+2+len(payload))
	out[0] = raw[0]
	binary.LittleEndian.PutUint16(out[1:3], uint16(len(payload)))
	copy(out[3:], payload)
	return out, nil
}

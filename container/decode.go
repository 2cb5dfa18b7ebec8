package container

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"lanf/bytecode"
	"lanf/constpool"
	"lanf/intern"
)

// Error kinds for the load/decode path, spec.md §7. Each is fatal to the
// decode in progress; there is no partial-success path.
var (
	ErrBadMagic             = errors.New("bad magic bytes")
	ErrUnsupportedVersion   = errors.New("unsupported container version")
	ErrMalformedBinary      = errors.New("malformed binary: missing or inconsistent section")
	ErrTruncatedBinary      = errors.New("truncated binary")
	ErrIllegalLabelInBinary = errors.New("illegal LABEL opcode in loaded binary")
	ErrUnknownOpcode        = errors.New("unknown opcode")
)

// Loaded is the fully reconstructed in-memory form of a decoded
// container: the intern table and constant pool (frozen and read-only
// from here on, per spec.md §5) plus the decoded instruction stream.
type Loaded struct {
	Version  uint16
	WordSize uint8
	Flags    Flags
	Interns  *intern.Table
	Pool     *constpool.Pool

	// BytecodeOffset is the absolute offset of the BYTECODE section within
	// the original buffer. The disassembler renders instruction offsets
	// relative to section start and does not read this field.
	BytecodeOffset int
	Instructions   []bytecode.Instruction
}

type sectionSpan struct {
	offset int
	size   int
}

// Decode parses a binary container, per the five steps of spec.md §4.F.
func Decode(data []byte) (*Loaded, error) {
	if len(data) < 4 || string(data[0:4]) != string(Magic[:]) {
		return nil, errors.Wrap(ErrBadMagic, "at offset 0")
	}
	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrTruncatedBinary, "header at offset %d", 4)
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != Version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, want %d", version, Version)
	}
	wordSize := data[6]
	flags := Flags(data[7])
	sectionCount := int(data[8])

	tableEnd := headerSize + sectionCount*sectionEntrySize
	if len(data) < tableEnd {
		return nil, errors.Wrapf(ErrTruncatedBinary, "section table at offset %d", headerSize)
	}

	spans := make(map[SectionTag]sectionSpan, sectionCount)
	for i := 0; i < sectionCount; i++ {
		base := headerSize + i*sectionEntrySize
		tag := SectionTag(data[base])
		offset := int(binary.LittleEndian.Uint32(data[base+1 : base+5]))
		size := int(binary.LittleEndian.Uint32(data[base+5 : base+9]))
		if offset < 0 || size < 0 || offset+size > len(data) {
			return nil, errors.Wrapf(ErrMalformedBinary, "section %s at offset %d exceeds buffer (size %d)", tag, offset, len(data))
		}
		spans[tag] = sectionSpan{offset: offset, size: size}
	}

	for _, tag := range requiredSections {
		if _, ok := spans[tag]; !ok {
			return nil, errors.Wrapf(ErrMalformedBinary, "missing required section %s", tag)
		}
	}

	symSpan := spans[SectionSymbolTable]
	interns, err := decodeSymbolTable(data[symSpan.offset : symSpan.offset+symSpan.size])
	if err != nil {
		return nil, errors.Wrapf(err, "symbol table at offset %d", symSpan.offset)
	}

	poolSpan := spans[SectionConstantPool]
	pool, err := decodeConstantPool(data[poolSpan.offset:poolSpan.offset+poolSpan.size], interns)
	if err != nil {
		return nil, errors.Wrapf(err, "constant pool at offset %d", poolSpan.offset)
	}

	codeSpan := spans[SectionBytecode]
	instrs, err := decodeBytecode(data[codeSpan.offset : codeSpan.offset+codeSpan.size])
	if err != nil {
		return nil, errors.Wrapf(err, "bytecode section at offset %d", codeSpan.offset)
	}

	return &Loaded{
		Version:        version,
		WordSize:       wordSize,
		Flags:          flags,
		Interns:        interns,
		Pool:           pool,
		BytecodeOffset: codeSpan.offset,
		Instructions:   instrs,
	}, nil
}

func decodeSymbolTable(buf []byte) (*intern.Table, error) {
	if len(buf) < 4 {
		return nil, errors.Wrap(ErrTruncatedBinary, "missing symbol count")
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	off := 4

	names := make([]string, count)
	for i := 0; i < count; i++ {
		if off+4+2 > len(buf) {
			return nil, errors.Wrapf(ErrTruncatedBinary, "symbol entry %d header", i)
		}
		id := binary.LittleEndian.Uint32(buf[off : off+4])
		length := int(binary.LittleEndian.Uint16(buf[off+4 : off+6]))
		off += 6
		if off+length > len(buf) {
			return nil, errors.Wrapf(ErrTruncatedBinary, "symbol entry %d name", i)
		}
		if int(id) >= count {
			return nil, errors.Wrapf(ErrMalformedBinary, "symbol id %d out of range (count %d)", id, count)
		}
		names[id] = string(buf[off : off+length])
		off += length
	}

	tbl := intern.New()
	for _, n := range names {
		tbl.Intern(n)
	}
	return tbl, nil
}

func decodeConstantPool(buf []byte, interns *intern.Table) (*constpool.Pool, error) {
	if len(buf) < 4 {
		return nil, errors.Wrap(ErrTruncatedBinary, "missing constant count")
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	off := 4

	pool := constpool.New()
	for i := 0; i < count; i++ {
		v, n, err := decodeLengthPrefixed(buf[off:])
		if err != nil {
			return nil, errors.Wrapf(err, "constant %d", i)
		}
		if (v.Tag == bytecode.TagSym || v.Tag == bytecode.TagIdent) && interns != nil {
			if _, ok := interns.Get(v.Sym); !ok {
				return nil, errors.Wrapf(bytecode.ErrUnknownSymbol, "constant %d references sym id %d", i, v.Sym)
			}
		}
		pool.Intern(v)
		off += n
	}
	return pool, nil
}

func decodeBytecode(buf []byte) ([]bytecode.Instruction, error) {
	var instrs []bytecode.Instruction
	off := 0
	for off < len(buf) {
		op, ok := bytecode.KnownOpcode(buf[off])
		if !ok {
			return nil, errors.Wrapf(ErrUnknownOpcode, "byte %#x at offset %d", buf[off], off)
		}
		if op == bytecode.Label {
			return nil, errors.Wrapf(ErrIllegalLabelInBinary, "at offset %d", off)
		}
		off++

		arity := op.Arity()
		operands := make([]bytecode.BCData, 0, arity)
		for i := 0; i < arity; i++ {
			if off >= len(buf) {
				return nil, errors.Wrapf(ErrTruncatedBinary, "operand %d of %s at offset %d", i, op, off)
			}
			v, n, err := decodeLengthPrefixed(buf[off:])
			if err != nil {
				return nil, errors.Wrapf(err, "operand %d of %s at offset %d", i, op, off)
			}
			operands = append(operands, v)
			off += n
		}
		instrs = append(instrs, bytecode.Instruction{Op: op, Operands: operands})
	}
	return instrs, nil
}

// decodeLengthPrefixed is the inverse of encodeLengthPrefixed: tag byte,
// u16 length, then that many raw payload bytes, reconstructed and handed
// to bytecode.Decode.
func decodeLengthPrefixed(buf []byte) (bytecode.BCData, int, error) {
	if len(buf) < 3 {
		return bytecode.BCData{}, 0, errors.Wrap(ErrTruncatedBinary, "missing tag/length header")
	}
	tagByte := buf[0]
	length := int(binary.LittleEndian.Uint16(buf[1:3]))
	if len(buf) < 3+length {
		return bytecode.BCData{}, 0, errors.Wrap(ErrTruncatedBinary, "payload shorter than declared length")
	}
	raw := make([]byte, 1+length)
	raw[0] = tagByte
	copy(raw[1:], buf[3:3+length])

	v, _, err := bytecode.Decode(raw)
	if err != nil {
		return bytecode.BCData{}, 0, err
	}
	return v, 3 + length, nil
}

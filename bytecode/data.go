package bytecode

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"lanf/intern"
)

// Tag is the typed-literal discriminant encoded in the high five bits of a
// BCData's tag byte.
type Tag byte

const (
	TagInt   Tag = 0x01
	TagFloat Tag = 0x02
	TagSym   Tag = 0x03
	TagStr   Tag = 0x04
	TagBool  Tag = 0x05
	TagNil   Tag = 0x06
	TagList  Tag = 0x07 // reserved, not implemented
	TagPair  Tag = 0x08 // reserved, not implemented
	TagProc  Tag = 0x09 // reserved, not implemented
	TagIdent Tag = 0x0a
)

// ErrUnsupportedTag is raised whenever a reserved tag (LIST, PAIR, PROC) is
// encoded or decoded; these are defined but deliberately unimplemented.
var ErrUnsupportedTag = errors.New("unsupported tag: not implemented")

// ErrUnknownSymbol is raised when a SYM/IDENT constant references an
// intern id absent from the accompanying intern table.
var ErrUnknownSymbol = errors.New("unknown symbol id")

// BCData is a tagged literal value: one of the constant-pool entry shapes
// or an instruction operand. Exactly one of the fields below is
// meaningful, selected by Tag.
type BCData struct {
	Tag   Tag
	Int   int32
	Float float64
	Sym   intern.SymId
	Str   string
	Bool  bool
}

func Int(v int32) BCData          { return BCData{Tag: TagInt, Int: v} }
func Float(v float64) BCData      { return BCData{Tag: TagFloat, Float: v} }
func Sym(id intern.SymId) BCData  { return BCData{Tag: TagSym, Sym: id} }
func Str(v string) BCData         { return BCData{Tag: TagStr, Str: v} }
func Bool(v bool) BCData          { return BCData{Tag: TagBool, Bool: v} }
func Nil() BCData                 { return BCData{Tag: TagNil} }
func Ident(id intern.SymId) BCData { return BCData{Tag: TagIdent, Sym: id} }

func isReserved(tag Tag) bool {
	return tag == TagList || tag == TagPair || tag == TagProc
}

// tagByte packs tag and low_bits per spec: (tag << 3) | low_bits. Only
// TagBool uses the low bit, to carry the boolean value inline.
func tagByte(tag Tag, lowBits byte) byte {
	return byte(tag)<<3 | lowBits
}

// Encode renders v's tag byte followed by its payload, per the per-tag
// byte shapes in spec.md §3. LIST/PAIR/PROC raise ErrUnsupportedTag.
func (v BCData) Encode() ([]byte, error) {
	if isReserved(v.Tag) {
		return nil, errors.Wrapf(ErrUnsupportedTag, "tag %#x", byte(v.Tag))
	}

	switch v.Tag {
	case TagInt:
		buf := make([]byte, 5)
		buf[0] = tagByte(v.Tag, 0)
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.Int))
		return buf, nil
	case TagFloat:
		buf := make([]byte, 9)
		buf[0] = tagByte(v.Tag, 0)
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v.Float))
		return buf, nil
	case TagSym, TagIdent:
		buf := make([]byte, 5)
		buf[0] = tagByte(v.Tag, 0)
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.Sym))
		return buf, nil
	case TagStr:
		raw := []byte(v.Str)
		if len(raw) > 0xff {
			return nil, errors.Errorf("string constant too long to encode: %d bytes", len(raw))
		}
		buf := make([]byte, 2+len(raw))
		buf[0] = tagByte(v.Tag, 0)
		buf[1] = byte(len(raw))
		copy(buf[2:], raw)
		return buf, nil
	case TagBool:
		var low byte
		if v.Bool {
			low = 1
		}
		return []byte{tagByte(v.Tag, low)}, nil
	case TagNil:
		return []byte{tagByte(v.Tag, 0)}, nil
	default:
		return nil, errors.Errorf("unrecognized tag %#x", byte(v.Tag))
	}
}

// Decode reads one BCData from the front of buf, returning the value and
// the number of bytes consumed.
func Decode(buf []byte) (BCData, int, error) {
	if len(buf) < 1 {
		return BCData{}, 0, errors.New("truncated: missing tag byte")
	}
	tb := buf[0]
	tag := Tag(tb >> 3)
	lowBits := tb & 0x07

	if isReserved(tag) {
		return BCData{}, 0, errors.Wrapf(ErrUnsupportedTag, "tag %#x", byte(tag))
	}

	switch tag {
	case TagInt:
		if len(buf) < 5 {
			return BCData{}, 0, errors.New("truncated INT payload")
		}
		return Int(int32(binary.LittleEndian.Uint32(buf[1:5]))), 5, nil
	case TagFloat:
		if len(buf) < 9 {
			return BCData{}, 0, errors.New("truncated FLOAT payload")
		}
		bits := binary.LittleEndian.Uint64(buf[1:9])
		return Float(math.Float64frombits(bits)), 9, nil
	case TagSym:
		if len(buf) < 5 {
			return BCData{}, 0, errors.New("truncated SYM payload")
		}
		return Sym(intern.SymId(binary.LittleEndian.Uint32(buf[1:5]))), 5, nil
	case TagIdent:
		if len(buf) < 5 {
			return BCData{}, 0, errors.New("truncated IDENT payload")
		}
		return Ident(intern.SymId(binary.LittleEndian.Uint32(buf[1:5]))), 5, nil
	case TagStr:
		if len(buf) < 2 {
			return BCData{}, 0, errors.New("truncated STR length")
		}
		n := int(buf[1])
		if len(buf) < 2+n {
			return BCData{}, 0, errors.New("truncated STR payload")
		}
		return Str(string(buf[2 : 2+n])), 2 + n, nil
	case TagBool:
		return Bool(lowBits&1 != 0), 1, nil
	case TagNil:
		return Nil(), 1, nil
	default:
		return BCData{}, 0, errors.Errorf("unrecognized tag %#x", byte(tag))
	}
}

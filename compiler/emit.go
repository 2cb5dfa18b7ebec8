package compiler

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"lanf/bytecode"
)

// ErrUnknownLabel is raised by PatchLabels when a jump references a label
// that was never emitted.
var ErrUnknownLabel = errors.New("unknown label")

// Operand is either a not-yet-resolved forward label name or an already
// resolved BCData value. Design Notes §9: the source mutates a structural
// "target" field on jump instructions; this models the same idea as an
// explicit sum instead, resolved once by PatchLabels.
type Operand interface {
	isOperand()
}

// LabelOperand names a label an instruction targets (a jump, or
// MAKE_CLOSURE's body entry); PatchLabels replaces it with an INT
// bytecode.BCData holding the label's resolved position.
type LabelOperand string

func (LabelOperand) isOperand() {}

// DataOperand wraps an already-known BCData operand value.
type DataOperand struct {
	Data bytecode.BCData
}

func (DataOperand) isOperand() {}

// PendingInstr is an instruction as emitted, before label patching: its
// operands may still be symbolic label names.
type PendingInstr struct {
	Op       bytecode.Opcode
	Operands []Operand
	LabelName string // set only when Op == bytecode.Label
}

type patch struct {
	instrIndex  int
	operandIdx  int
	label       string
}

// Emitter assembles a flat pending-instruction stream, tracking label
// positions and pending jump patches, per spec.md §4.C.
type Emitter struct {
	instrs  []PendingInstr
	labels  map[string]int
	patches []patch
	log     zerolog.Logger
}

// NewEmitter returns an empty emitter. A disabled logger is used unless
// the caller supplies one via WithLogger.
func NewEmitter() *Emitter {
	return &Emitter{
		labels: make(map[string]int),
		log:    zerolog.Nop(),
	}
}

// WithLogger attaches a structured logger for Debug-level emission
// tracing, in the style rgehrsitz/rex's bytecode compiler logs
// emitInstruction/emitLabel.
func (e *Emitter) WithLogger(log zerolog.Logger) *Emitter {
	e.log = log
	return e
}

// Emit appends an instruction. If op is LABEL, the label's current
// position is recorded. For any other op, each LabelOperand among its
// operands records a pending patch.
func (e *Emitter) Emit(op bytecode.Opcode, operands ...Operand) {
	idx := len(e.instrs)
	instr := PendingInstr{Op: op, Operands: operands}

	if op == bytecode.Label {
		name := string(operands[0].(LabelOperand))
		instr.LabelName = name
		e.labels[name] = idx
		e.log.Debug().Str("label", name).Int("position", idx).Msg("recorded label")
	}

	// Any operand still holding a symbolic label name needs patching once
	// all labels are known, not just jump targets: MAKE_CLOSURE's label
	// operand (the lambda body's entry point) resolves the same way.
	if op != bytecode.Label {
		for i, o := range operands {
			if lbl, ok := o.(LabelOperand); ok {
				e.patches = append(e.patches, patch{instrIndex: idx, operandIdx: i, label: string(lbl)})
			}
		}
	}

	e.instrs = append(e.instrs, instr)
	e.log.Debug().Str("op", op.String()).Int("position", idx).Msg("emitted instruction")
}

// Label is shorthand for Emit(LABEL, LabelOperand(name)).
func (e *Emitter) Label(name string) {
	e.Emit(bytecode.Label, LabelOperand(name))
}

// PatchLabels resolves every pending jump-to-label patch into a concrete
// INT operand holding the label's absolute instruction index, and returns
// the now fully-resolved instruction stream (LABEL instructions are still
// present; stripping happens at serialization time).
func (e *Emitter) PatchLabels() ([]bytecode.Instruction, error) {
	resolved := make([][]bytecode.BCData, len(e.instrs))
	for i, instr := range e.instrs {
		ops := make([]bytecode.BCData, len(instr.Operands))
		for j, o := range instr.Operands {
			switch v := o.(type) {
			case DataOperand:
				ops[j] = v.Data
			case LabelOperand:
				// Only a LABEL instruction's own operand reaches here
				// unresolved (jump operands are handled by the patch loop
				// below); it is never serialized, so its own name is kept
				// as a STR payload purely for in-memory introspection.
				ops[j] = bytecode.Str(string(v))
			}
		}
		resolved[i] = ops
	}

	for _, p := range e.patches {
		target, ok := e.labels[p.label]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownLabel, "%q", p.label)
		}
		resolved[p.instrIndex][p.operandIdx] = bytecode.Int(int32(target))
		e.log.Debug().Str("label", p.label).Int("target", target).Msg("patched jump")
	}

	out := make([]bytecode.Instruction, len(e.instrs))
	for i, instr := range e.instrs {
		out[i] = bytecode.Instruction{Op: instr.Op, Operands: resolved[i]}
	}
	return out, nil
}

// Len reports how many instructions have been emitted so far.
func (e *Emitter) Len() int { return len(e.instrs) }

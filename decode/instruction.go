package decode

import (
	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
	"github.com/dmillard/thumbsim/ops"
)

// Class groups a variant's registration for tree partitioning diagnostics
// and for the format package's rendering conventions; it plays no part in
// the decode algorithm itself, which only ever partitions by encoding
// width.
type Class int

const (
	ClassDataProcessing Class = iota
	ClassBranch
	ClassMemory
	ClassMultiple
	ClassMisc
)

func (c Class) String() string {
	switch c {
	case ClassDataProcessing:
		return "data-processing"
	case ClassBranch:
		return "branch"
	case ClassMemory:
		return "memory"
	case ClassMultiple:
		return "multiple"
	case ClassMisc:
		return "misc"
	default:
		return "unknown"
	}
}

// Operand is the tagged union of operand kinds a handler may append to an
// Instruction. The format package renders these by type switch; decode
// owns the types because handlers, not the formatter, construct them.
type Operand interface{ isOperand() }

// RegOperand names a register by its cpu package index, optionally marked
// for write-back rendering (a trailing '!').
type RegOperand struct {
	Reg       int
	WriteBack bool
}

// RegListOperand is a PUSH/POP/LDM/STM register list, rendered as
// contiguous runs collapsed to "rX-rY".
type RegListOperand struct {
	Regs []int
}

// ImmOperand is a decimal immediate, with an optional hex comment and an
// elide-if-zero flag (used by the offset of a load/store immediate).
type ImmOperand struct {
	Value bitstring.Bits
	Elide bool
}

// LabelOperand is a PC-relative branch or literal-pool target, rendered as
// a signed decimal offset with an absolute-address comment.
type LabelOperand struct {
	Offset int32
}

// ShiftOperand is a shifted-register suffix ("LSL #2"); SRTypeNone means
// the operand is omitted entirely.
type ShiftOperand struct {
	Type   ops.SRType
	Amount uint
}

// MemOperand is a "[...]" addressing-mode operand wrapping its inner
// operands (base register, optional offset register or immediate), with
// an optional trailing write-back marker.
type MemOperand struct {
	Inner     []Operand
	WriteBack bool
}

// SpecialRegOperand names an MRS/MSR special register by its 8-bit SYSm
// selector.
type SpecialRegOperand struct {
	SYSm uint8
}

// BarrierOperand is a DSB/DMB/ISB option field.
type BarrierOperand struct {
	Option uint8
}

func (RegOperand) isOperand()        {}
func (RegListOperand) isOperand()    {}
func (ImmOperand) isOperand()        {}
func (LabelOperand) isOperand()      {}
func (ShiftOperand) isOperand()      {}
func (MemOperand) isOperand()        {}
func (SpecialRegOperand) isOperand() {}
func (BarrierOperand) isOperand()    {}

// Eval is a variant's evaluator: it reads the instruction's operands and
// attribute bag, applies its effect to cpu, and advances PC. The default
// (nil Eval) simply advances PC by Size().
type Eval func(i *Instruction, c *cpu.CPU) error

// Instruction is one decoded Thumb instruction: mnemonic, encoding width,
// raw word, load address, rendering operands, an attribute bag the
// handler and evaluator share, and the evaluator itself.
type Instruction struct {
	Mnemonic string
	Class    Class
	Is32Bit  bool
	Word     uint32
	Address  uint32
	Operands []Operand
	Attrs    map[string]any

	eval Eval
}

// Size returns the instruction's encoded length in bytes: 2 or 4.
func (i *Instruction) Size() uint32 {
	if i.Is32Bit {
		return 4
	}
	return 2
}

// Bytes returns the little-endian encoding of Word, truncated to Size().
func (i *Instruction) Bytes() []byte {
	n := i.Size()
	out := make([]byte, n)
	for k := uint32(0); k < n; k++ {
		out[k] = byte(i.Word >> (8 * k))
	}
	return out
}

// Execute runs the instruction's evaluator against c, or — for variants
// that never set one (the "does nothing architecturally interesting but
// retire" case) — just advances PC by Size().
func (i *Instruction) Execute(c *cpu.CPU) error {
	if i.eval != nil {
		return i.eval(i, c)
	}
	c.SetPC(c.PC() + i.Size())
	return nil
}

// SetEval installs the instruction's evaluator. Handlers call this once,
// typically with a closure over the decoded fields' derived attributes
// rather than re-reading instr.Attrs by name.
func (i *Instruction) SetEval(e Eval) { i.eval = e }

// Attr fetches an attribute from the bag, returning ok=false if absent.
func (i *Instruction) Attr(name string) (any, bool) {
	v, ok := i.Attrs[name]
	return v, ok
}

// AttrBool fetches a boolean attribute, defaulting to false if absent or
// of the wrong type.
func (i *Instruction) AttrBool(name string) bool {
	v, ok := i.Attrs[name]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// AttrInt fetches an int attribute, defaulting to 0 if absent or of the
// wrong type.
func (i *Instruction) AttrInt(name string) int {
	v, ok := i.Attrs[name]
	if !ok {
		return 0
	}
	n, _ := v.(int)
	return n
}

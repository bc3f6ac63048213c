package decode

import (
	"fmt"

	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/specgrammar"
)

// Handler receives a freshly constructed Instruction (Mnemonic, Class,
// Is32Bit, Word, Address and const_attrs already stamped into Attrs) and
// the named fields extracted from the encoding, at their declared widths.
// It populates Operands and any derived Attrs, and installs an Eval with
// SetEval. Returning a *DecodeError rejects this candidate in favor of the
// next one registered at the same leaf; returning *UnpredictableError
// rejects the encoding outright.
type Handler func(i *Instruction, fields map[string]bitstring.Bits) error

// Registration is one declared instruction variant: a bit-pattern-derived
// mask/match/field layout plus the handler that interprets it. A variant
// registers (mnemonic, class, spec16[, spec32], const_attrs); this is the
// one registration record both the 16-bit and 32-bit partitions of the
// tree share.
type Registration struct {
	Mnemonic   string
	Class      Class
	Is32Bit    bool
	mask       uint32
	match      uint32
	width      uint
	positions  []specgrammar.FieldPos
	constAttrs map[string]any
	handler    Handler
}

func layoutSpec(spec string) (mask, match uint64, positions []specgrammar.FieldPos, width uint, err error) {
	fields, err := specgrammar.Parse(spec)
	if err != nil {
		return 0, 0, nil, 0, err
	}
	return specgrammar.Layout(fields)
}

// newRegistration builds a single-halfword (16-bit) registration.
func newRegistration(mnemonic string, class Class, spec string, constAttrs map[string]any, handler Handler) (*Registration, error) {
	mask, match, positions, width, err := layoutSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("decode: %s: %w", mnemonic, err)
	}
	if width != 16 {
		return nil, fmt.Errorf("decode: %s: 16-bit spec has width %d, want 16", mnemonic, width)
	}
	return &Registration{
		Mnemonic:   mnemonic,
		Class:      class,
		Is32Bit:    false,
		mask:       uint32(mask),
		match:      uint32(match),
		width:      16,
		positions:  positions,
		constAttrs: constAttrs,
		handler:    handler,
	}, nil
}

// newRegistration32 builds a two-halfword (32-bit) registration. The
// combined word is laid out as "hi | (lo2 << 16)": the
// halfword fetched first (spec16) occupies the low 16 bits of the
// combined word, and the halfword fetched second (spec32) occupies the
// high 16 bits. Field positions from spec32 are shifted up by 16 to match.
func newRegistration32(mnemonic string, class Class, spec16, spec32 string, constAttrs map[string]any, handler Handler) (*Registration, error) {
	mask1, match1, pos1, w1, err := layoutSpec(spec16)
	if err != nil {
		return nil, fmt.Errorf("decode: %s: first halfword: %w", mnemonic, err)
	}
	if w1 != 16 {
		return nil, fmt.Errorf("decode: %s: first halfword spec has width %d, want 16", mnemonic, w1)
	}
	mask2, match2, pos2, w2, err := layoutSpec(spec32)
	if err != nil {
		return nil, fmt.Errorf("decode: %s: second halfword: %w", mnemonic, err)
	}
	if w2 != 16 {
		return nil, fmt.Errorf("decode: %s: second halfword spec has width %d, want 16", mnemonic, w2)
	}

	positions := make([]specgrammar.FieldPos, 0, len(pos1)+len(pos2))
	positions = append(positions, pos1...)
	for _, p := range pos2 {
		positions = append(positions, specgrammar.FieldPos{Name: p.Name, Pos: p.Pos + 16, Width: p.Width})
	}

	return &Registration{
		Mnemonic:   mnemonic,
		Class:      class,
		Is32Bit:    true,
		mask:       uint32(mask1) | uint32(mask2)<<16,
		match:      uint32(match1) | uint32(match2)<<16,
		width:      32,
		positions:  positions,
		constAttrs: constAttrs,
		handler:    handler,
	}, nil
}

// extractFields pulls each named field out of word at its declared
// position and width.
func (r *Registration) extractFields(word uint32) map[string]bitstring.Bits {
	fields := make(map[string]bitstring.Bits, len(r.positions))
	for _, p := range r.positions {
		v := (uint64(word) >> p.Pos) & ((uint64(1) << p.Width) - 1)
		fields[p.Name] = bitstring.New(v, p.Width)
	}
	return fields
}

// build constructs the Instruction, stamps const_attrs, extracts fields
// and invokes the handler. A *DecodeError or *UnpredictableError from the
// handler propagates unchanged; the tree's leaf traversal decides what to
// do with a *DecodeError.
func (r *Registration) build(word, address uint32) (*Instruction, error) {
	instr := &Instruction{
		Mnemonic: r.Mnemonic,
		Class:    r.Class,
		Is32Bit:  r.Is32Bit,
		Word:     word,
		Address:  address,
		Attrs:    make(map[string]any, len(r.constAttrs)),
	}
	for k, v := range r.constAttrs {
		instr.Attrs[k] = v
	}
	if err := r.handler(instr, r.extractFields(word)); err != nil {
		return nil, err
	}
	return instr, nil
}

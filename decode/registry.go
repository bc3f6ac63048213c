package decode

import "sync"

var (
	regs16 []*Registration
	regs32 []*Registration

	treeOnce sync.Once
	tree16   *node
	tree32   *node
)

// mustRegister16 (and mustRegister32, for spec16+spec32 of a 32-bit
// variant) parses spec and appends the resulting Registration to the
// package's build-time list. Specs are always compile-time string
// literals; a parse failure here is a programming error in a handler
// file, so both panic the way
// regexp.MustCompile does rather than threading an error through every
// package-level init().
func mustRegister16(mnemonic string, class Class, spec string, constAttrs map[string]any, handler Handler) {
	r, err := newRegistration(mnemonic, class, spec, constAttrs, handler)
	if err != nil {
		panic(err)
	}
	regs16 = append(regs16, r)
}

func mustRegister32(mnemonic string, class Class, spec16, spec32 string, constAttrs map[string]any, handler Handler) {
	r, err := newRegistration32(mnemonic, class, spec16, spec32, constAttrs, handler)
	if err != nil {
		panic(err)
	}
	regs32 = append(regs32, r)
}

// buildTrees builds the 16-bit and 32-bit decoder trees once, from
// whatever each handler file's init() has registered. The tree is built
// once at startup and is read-only (and so safe to share) thereafter.
func buildTrees() {
	treeOnce.Do(func() {
		tree16 = buildTree(regs16)
		tree32 = buildTree(regs32)
	})
}

// classify32Bit reports whether the first halfword of a Thumb encoding
// announces a 32-bit instruction: first[11:16] ∈
// {0b11101, 0b11110, 0b11111}.
func classify32Bit(first uint32) bool {
	switch first & 0xF800 {
	case 0xE800, 0xF000, 0xF800:
		return true
	default:
		return false
	}
}

// Decode decodes a single instruction from data at the given load address.
// data must hold at least 2 bytes; a 32-bit encoding additionally needs 4.
// A short read that is classified as 32-bit returns *UndefinedInstruction —
// the streaming disassembler in the disasm package treats this specially
// when it happens at the tail of a buffer.
func Decode(data []byte, address uint32) (*Instruction, error) {
	buildTrees()

	if len(data) < 2 {
		return nil, &UndefinedInstruction{Width: 16, Cause: "fewer than 2 bytes available"}
	}
	first := uint32(data[0]) | uint32(data[1])<<8
	if !classify32Bit(first) {
		return tree16.decode(first, address, 16)
	}
	if len(data) < 4 {
		return nil, &UndefinedInstruction{Word: first, Width: 32, Cause: "truncated 32-bit encoding"}
	}
	second := uint32(data[2]) | uint32(data[3])<<8
	word := first | (second << 16)
	return tree32.decode(word, address, 32)
}

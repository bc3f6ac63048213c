// Package ops implements the ARM pseudocode semantic helpers shared by the
// decode handlers and their evaluators: carry/overflow-aware addition, the
// five shift-with-carry variants, Thumb immediate expansion, alignment,
// and condition-code evaluation.
package ops

import (
	"fmt"
	"math/bits"

	"github.com/dmillard/thumbsim/bitstring"
)

// SRType names the five ARM shift/rotate kinds. SRTypeNone marks "no
// shift" for operand forms that omit one.
type SRType int

const (
	SRTypeNone SRType = iota
	SRTypeLSL
	SRTypeLSR
	SRTypeASR
	SRTypeROR
	SRTypeRRX
)

func (t SRType) String() string {
	switch t {
	case SRTypeLSL:
		return "LSL"
	case SRTypeLSR:
		return "LSR"
	case SRTypeASR:
		return "ASR"
	case SRTypeROR:
		return "ROR"
	case SRTypeRRX:
		return "RRX"
	default:
		return "none"
	}
}

func signedRange(width uint) (min, max int64) {
	if width == 0 {
		return 0, 0
	}
	max = int64(uint64(1)<<(width-1)) - 1
	min = -int64(uint64(1) << (width - 1))
	return min, max
}

// AddWithCarry computes x + y + carryIn truncated to x's width, along with
// the unsigned carry-out and signed overflow flags. x and y must share a
// width. Subtraction a-b is realised by the caller as
// AddWithCarry(a, b.Invert(), 1).
func AddWithCarry(x, y bitstring.Bits, carryIn uint) (result bitstring.Bits, carryOut, overflow uint, err error) {
	if x.Width() != y.Width() {
		return bitstring.Bits{}, 0, 0, fmt.Errorf("ops: AddWithCarry width mismatch %d vs %d", x.Width(), y.Width())
	}
	width := x.Width()
	unsignedSum := x.Unsigned() + y.Unsigned() + uint64(carryIn&1)
	result = bitstring.New(unsignedSum, width)

	if unsignedSum > bitstring.New(^uint64(0), width).Unsigned() {
		carryOut = 1
	}

	signedSum := x.Signed() + y.Signed() + int64(carryIn&1)
	min, max := signedRange(width)
	if signedSum < min || signedSum > max {
		overflow = 1
	}
	return result, carryOut, overflow, nil
}

// LSL_C shifts left by shift (> 0) bits, returning the result and the last
// bit shifted out.
func LSL_C(value bitstring.Bits, shift uint) (bitstring.Bits, uint) {
	if shift == 0 {
		panic("ops: LSL_C requires shift > 0")
	}
	width := value.Width()
	var carry uint
	if shift <= width {
		carry = uint((value.Unsigned() >> (width - shift)) & 1)
	}
	return value.Lsl(shift), carry
}

// LSR_C shifts right (logical) by shift (> 0) bits, returning the result
// and the last bit shifted out.
func LSR_C(value bitstring.Bits, shift uint) (bitstring.Bits, uint) {
	if shift == 0 {
		panic("ops: LSR_C requires shift > 0")
	}
	width := value.Width()
	var carry uint
	if shift <= width {
		carry = uint((value.Unsigned() >> (shift - 1)) & 1)
	}
	return value.Rsl(shift), carry
}

// ASR_C shifts right (arithmetic, sign-extending) by shift (> 0) bits,
// returning the result and the last bit shifted out.
func ASR_C(value bitstring.Bits, shift uint) (bitstring.Bits, uint) {
	if shift == 0 {
		panic("ops: ASR_C requires shift > 0")
	}
	width := value.Width()
	signed := value.Signed()
	amt := shift
	if amt > 63 {
		amt = 63
	}
	result := bitstring.New(uint64(signed>>amt), width)

	var carry uint
	if shift <= width {
		carry = uint((value.Unsigned() >> (shift - 1)) & 1)
	} else {
		carry = uint((value.Unsigned() >> (width - 1)) & 1) // sign bit
	}
	return result, carry
}

// ROR_C rotates right by shift (> 0) bits, returning the result and its
// new most-significant bit (the bit rotated into the carry position).
func ROR_C(value bitstring.Bits, shift uint) (bitstring.Bits, uint) {
	if shift == 0 {
		panic("ops: ROR_C requires shift > 0")
	}
	width := value.Width()
	if width == 0 {
		return value, 0
	}
	m := shift % width
	var rotated uint64
	if m == 0 {
		rotated = value.Unsigned()
	} else {
		rotated = (value.Unsigned() >> m) | (value.Unsigned() << (width - m))
	}
	result := bitstring.New(rotated, width)
	carry := uint((result.Unsigned() >> (width - 1)) & 1)
	return result, carry
}

// RRX_C performs a one-bit rotate right through the supplied carry-in,
// returning the result and the bit rotated out (the original bit 0).
func RRX_C(value bitstring.Bits, carryIn uint) (bitstring.Bits, uint) {
	width := value.Width()
	carryOut := uint(value.Unsigned() & 1)
	rotated := (value.Unsigned() >> 1) | (uint64(carryIn&1) << (width - 1))
	return bitstring.New(rotated, width), carryOut
}

// LSL, LSR, ASR, ROR and RRX are the carry-discarding counterparts of the
// _C functions above, for contexts that don't need the carry flag.
func LSL(value bitstring.Bits, shift uint) bitstring.Bits {
	r, _ := LSL_C(value, shift)
	return r
}

func LSR(value bitstring.Bits, shift uint) bitstring.Bits {
	r, _ := LSR_C(value, shift)
	return r
}

func ASR(value bitstring.Bits, shift uint) bitstring.Bits {
	r, _ := ASR_C(value, shift)
	return r
}

func ROR(value bitstring.Bits, shift uint) bitstring.Bits {
	r, _ := ROR_C(value, shift)
	return r
}

func RRX(value bitstring.Bits, carryIn uint) bitstring.Bits {
	r, _ := RRX_C(value, carryIn)
	return r
}

// Shift_C dispatches to the appropriate _C function. When amount is 0 or
// srType is SRTypeNone, value and carryIn pass through unchanged. RRX is
// only legal with amount == 1 (the caller's DecodeImmShift guarantees
// this).
func Shift_C(value bitstring.Bits, srType SRType, amount uint, carryIn uint) (bitstring.Bits, uint) {
	if amount == 0 || srType == SRTypeNone {
		return value, carryIn
	}
	switch srType {
	case SRTypeLSL:
		return LSL_C(value, amount)
	case SRTypeLSR:
		return LSR_C(value, amount)
	case SRTypeASR:
		return ASR_C(value, amount)
	case SRTypeROR:
		return ROR_C(value, amount)
	case SRTypeRRX:
		return RRX_C(value, carryIn)
	default:
		return value, carryIn
	}
}

// DecodeImmShift maps the 2-bit type field and 5-bit immediate from a
// data-processing encoding to an SRType and shift amount, applying the
// architectural 0-means-32 rule for LSR/ASR and the 0-means-RRX rule for
// ROR.
func DecodeImmShift(type2 uint8, imm5 uint8) (SRType, uint) {
	switch type2 & 0b11 {
	case 0b00:
		return SRTypeLSL, uint(imm5)
	case 0b01:
		if imm5 == 0 {
			return SRTypeLSR, 32
		}
		return SRTypeLSR, uint(imm5)
	case 0b10:
		if imm5 == 0 {
			return SRTypeASR, 32
		}
		return SRTypeASR, uint(imm5)
	default: // 0b11
		if imm5 == 0 {
			return SRTypeRRX, 1
		}
		return SRTypeROR, uint(imm5)
	}
}

// ThumbExpandImm_C expands the 12-bit modified-immediate encoding used by
// Thumb-2 data-processing (immediate) instructions into a 32-bit value and
// its accompanying carry-out.
func ThumbExpandImm_C(imm12 bitstring.Bits, carryIn uint) (imm32 bitstring.Bits, carryOut uint, err error) {
	if imm12.Width() != 12 {
		return bitstring.Bits{}, 0, fmt.Errorf("ops: ThumbExpandImm_C requires a 12-bit operand, got %d", imm12.Width())
	}
	top2, err := imm12.Slice(10, 12)
	if err != nil {
		return bitstring.Bits{}, 0, err
	}
	if top2.Unsigned() == 0 {
		pattern, err := imm12.Slice(8, 10)
		if err != nil {
			return bitstring.Bits{}, 0, err
		}
		low8, err := imm12.Slice(0, 8)
		if err != nil {
			return bitstring.Bits{}, 0, err
		}
		zero8 := bitstring.New(0, 8)
		var parts []bitstring.Bits
		switch pattern.Unsigned() {
		case 0:
			parts = []bitstring.Bits{zero8, zero8, zero8, low8}
		case 1:
			parts = []bitstring.Bits{zero8, low8, zero8, low8}
		case 2:
			parts = []bitstring.Bits{low8, zero8, low8, zero8}
		default:
			parts = []bitstring.Bits{low8, low8, low8, low8}
		}
		imm32 = parts[0]
		for _, p := range parts[1:] {
			imm32, err = imm32.Concat(p)
			if err != nil {
				return bitstring.Bits{}, 0, err
			}
		}
		return imm32, carryIn, nil
	}

	low7, err := imm12.Slice(0, 7)
	if err != nil {
		return bitstring.Bits{}, 0, err
	}
	value8, err := bitstring.New(1, 1).Concat(low7)
	if err != nil {
		return bitstring.Bits{}, 0, err
	}
	unrotated, err := value8.ZeroExtend(32)
	if err != nil {
		return bitstring.Bits{}, 0, err
	}
	rotateBits, err := imm12.Slice(7, 12)
	if err != nil {
		return bitstring.Bits{}, 0, err
	}
	imm32, carryOut = ROR_C(unrotated, uint(rotateBits.Unsigned()))
	return imm32, carryOut, nil
}

// Align clears the low log2(n) bits of x; n must be a power of two.
func Align(x bitstring.Bits, n uint) bitstring.Bits {
	shift := uint(bits.TrailingZeros(n))
	m := ^uint64(0) << shift
	return bitstring.New(x.Unsigned()&m, x.Width())
}

// ConditionCode is the 4-bit Thumb condition field.
type ConditionCode uint8

const (
	CondEQ ConditionCode = iota
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondReserved // 0b1111; neither 0b1110 nor 0b1111 is decoded as a B condition
)

var conditionNames = [...]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "",
}

func (c ConditionCode) String() string {
	if int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return "??"
}

// ParseConditionCode looks up a condition mnemonic, case-insensitively
// normalized by the caller. The empty string is accepted as an alias for
// "al" (the unconditional suffix).
func ParseConditionCode(s string) (ConditionCode, bool) {
	if s == "" {
		return CondAL, true
	}
	for i, name := range conditionNames {
		if name == s {
			return ConditionCode(i), true
		}
	}
	return 0, false
}

// EvaluateCondition applies a condition's predicate to the APSR N/Z/C/V
// flags.
func EvaluateCondition(cond ConditionCode, n, z, c, v bool) bool {
	switch cond {
	case CondEQ:
		return z
	case CondNE:
		return !z
	case CondCS:
		return c
	case CondCC:
		return !c
	case CondMI:
		return n
	case CondPL:
		return !n
	case CondVS:
		return v
	case CondVC:
		return !v
	case CondHI:
		return c && !z
	case CondLS:
		return !c || z
	case CondGE:
		return n == v
	case CondLT:
		return n != v
	case CondGT:
		return !z && (n == v)
	case CondLE:
		return z || (n != v)
	case CondAL:
		return true
	default:
		return false
	}
}

// Package bitstring implements a variable-width, bit-precise integer value
// type used throughout the decoder and CPU model. A Bits value is a
// (width, value) pair with the invariant value < 2^width; width 0 is valid
// and holds only the value 0.
package bitstring

import (
	"errors"
	"fmt"
)

// MaxWidth is the largest width a Bits value can carry; instruction words
// never exceed 32 bits and register values never exceed 64, so a uint64
// backing store covers every case this simulator needs.
const MaxWidth = 64

// ErrWidth reports an unsupported combination of operand widths (the
// TypeError cases of the bit-string contract): arithmetic or concatenation
// between mismatched widths, or a width outside [0, MaxWidth].
var ErrWidth = errors.New("bitstring: unsupported width")

// ErrOperand reports an otherwise well-typed but invalid operand (the
// ValueError cases): widening to a smaller width, concatenating an integer
// other than 0 or 1, a slice or bit index out of range, or a slice
// assignment with step other than 1.
var ErrOperand = errors.New("bitstring: invalid operand")

// Bits is an immutable (width, value) pair. The zero value is the 0-bit
// empty bit-string.
type Bits struct {
	width uint
	value uint64
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// New constructs a width-bit value, masking value modulo 2^width. It panics
// if width exceeds MaxWidth: an out-of-range width is a programming error,
// not a runtime data error.
func New(value uint64, width uint) Bits {
	if width > MaxWidth {
		panic(fmt.Sprintf("bitstring: width %d exceeds MaxWidth", width))
	}
	return Bits{width: width, value: value & mask(width)}
}

// New32 constructs a 32-bit value, the default width for instruction words.
func New32(value uint32) Bits {
	return New(uint64(value), 32)
}

// New64 constructs a 64-bit value, the default width for register pairs.
func New64(value uint64) Bits {
	return New(value, 64)
}

// NewSigned constructs a width-bit value from a signed integer, wrapping
// modulo 2^width the same way unsigned New does.
func NewSigned(value int64, width uint) Bits {
	return New(uint64(value), width)
}

// FromBinaryString parses a string of '0'/'1' characters, most significant
// bit first; width is the string length. It fails with ErrWidth if the
// string is longer than MaxWidth, and with ErrOperand if any character is
// not '0' or '1'.
func FromBinaryString(s string) (Bits, error) {
	if len(s) > MaxWidth {
		return Bits{}, fmt.Errorf("%w: binary string of %d bits", ErrWidth, len(s))
	}
	var value uint64
	for _, c := range s {
		value <<= 1
		switch c {
		case '0':
		case '1':
			value |= 1
		default:
			return Bits{}, fmt.Errorf("%w: non-binary digit %q", ErrOperand, c)
		}
	}
	return Bits{width: uint(len(s)), value: value}, nil
}

// FromBits constructs a value from a sequence of 0/1 integers, most
// significant first; width is len(bits). It fails with ErrOperand if any
// element is not 0 or 1.
func FromBits(bits []int) (Bits, error) {
	if len(bits) > MaxWidth {
		return Bits{}, fmt.Errorf("%w: bit sequence of %d bits", ErrWidth, len(bits))
	}
	var value uint64
	for _, b := range bits {
		if b != 0 && b != 1 {
			return Bits{}, fmt.Errorf("%w: non-binary element %d", ErrOperand, b)
		}
		value = (value << 1) | uint64(b)
	}
	return Bits{width: uint(len(bits)), value: value}, nil
}

// FromBytes constructs a value from a little-endian byte sequence; width is
// len(b)*8.
func FromBytes(b []byte) (Bits, error) {
	if len(b)*8 > MaxWidth {
		return Bits{}, fmt.Errorf("%w: byte sequence of %d bits", ErrWidth, len(b)*8)
	}
	var value uint64
	for i, by := range b {
		value |= uint64(by) << (8 * uint(i))
	}
	return Bits{width: uint(len(b)) * 8, value: value}, nil
}

// Width reports the declared bit width.
func (b Bits) Width() uint { return b.width }

// Unsigned returns the raw unsigned value.
func (b Bits) Unsigned() uint64 { return b.value }

// Value is an alias for Unsigned, matching the §3 data model's naming.
func (b Bits) Value() uint64 { return b.value }

// Signed interprets the value as two's complement in its declared width.
func (b Bits) Signed() int64 {
	if b.width == 0 || b.value&(uint64(1)<<(b.width-1)) == 0 {
		return int64(b.value)
	}
	return int64(b.value) - int64(uint64(1)<<b.width)
}

// Bytes returns the little-endian byte encoding, padded to ceil(width/8)
// bytes.
func (b Bits) Bytes() []byte {
	n := (b.width + 7) / 8
	out := make([]byte, n)
	for i := uint(0); i < n; i++ {
		out[i] = byte(b.value >> (8 * i))
	}
	return out
}

// String renders the value as a zero-padded binary string, most
// significant bit first.
func (b Bits) String() string {
	if b.width == 0 {
		return ""
	}
	out := make([]byte, b.width)
	for i := uint(0); i < b.width; i++ {
		bit := (b.value >> (b.width - 1 - i)) & 1
		out[i] = byte('0' + bit)
	}
	return string(out)
}

// Invert returns the bitwise complement within the declared width. The
// Python draft this is grounded on mutates in place; this type is
// immutable value semantics throughout, so Invert returns the inverted
// value rather than mutating the receiver.
func (b Bits) Invert() Bits {
	return New(^b.value, b.width)
}

// Equal reports whether both the width and value match.
func (b Bits) Equal(o Bits) bool {
	return b.width == o.width && b.value == o.value
}

// CompareInt compares b against a raw integer: unsigned comparison, except
// that a negative v compares against b.Signed() instead.
func (b Bits) CompareInt(v int64) int {
	if v < 0 {
		s := b.Signed()
		switch {
		case s < v:
			return -1
		case s > v:
			return 1
		default:
			return 0
		}
	}
	u := uint64(v)
	switch {
	case b.value < u:
		return -1
	case b.value > u:
		return 1
	default:
		return 0
	}
}

func widthCheckBinary(a, b Bits) error {
	if a.width != b.width {
		return fmt.Errorf("%w: %d bits vs %d bits", ErrWidth, a.width, b.width)
	}
	return nil
}

// Add returns a+b truncated to the shared width, wrapping modulo 2^width.
// Both operands must share a width.
func (b Bits) Add(o Bits) (Bits, error) {
	if err := widthCheckBinary(b, o); err != nil {
		return Bits{}, err
	}
	return New(b.value+o.value, b.width), nil
}

// Sub returns b-o truncated to the shared width, wrapping modulo 2^width.
func (b Bits) Sub(o Bits) (Bits, error) {
	if err := widthCheckBinary(b, o); err != nil {
		return Bits{}, err
	}
	return New(b.value-o.value, b.width), nil
}

// Mul returns b*o truncated to the shared width, wrapping modulo 2^width.
func (b Bits) Mul(o Bits) (Bits, error) {
	if err := widthCheckBinary(b, o); err != nil {
		return Bits{}, err
	}
	return New(b.value*o.value, b.width), nil
}

// Div returns the unsigned floor division b//o, truncated to the shared
// width.
func (b Bits) Div(o Bits) (Bits, error) {
	if err := widthCheckBinary(b, o); err != nil {
		return Bits{}, err
	}
	if o.value == 0 {
		return Bits{}, fmt.Errorf("%w: division by zero", ErrOperand)
	}
	return New(b.value/o.value, b.width), nil
}

// Lsl shifts left by n bits, preserving width: bits shifted past the top
// are discarded, never growing the result the way the unresolved Python
// draft does.
func (b Bits) Lsl(n uint) Bits {
	if n >= b.width {
		return Bits{width: b.width}
	}
	return New(b.value<<n, b.width)
}

// Rsl shifts right (logical) by n bits, preserving width.
func (b Bits) Rsl(n uint) Bits {
	if n >= b.width {
		return Bits{width: b.width}
	}
	return New(b.value>>n, b.width)
}

// Concat returns b ∥ o: width b.width+o.width, with b in the high-order
// bits.
func (b Bits) Concat(o Bits) (Bits, error) {
	if b.width+o.width > MaxWidth {
		return Bits{}, fmt.Errorf("%w: concatenated width %d", ErrWidth, b.width+o.width)
	}
	return New((b.value<<o.width)|o.value, b.width+o.width), nil
}

// ConcatBit appends a single 0 or 1 bit in the lowest position. It fails
// with ErrOperand if bit is not 0 or 1.
func (b Bits) ConcatBit(bit int) (Bits, error) {
	if bit != 0 && bit != 1 {
		return Bits{}, fmt.Errorf("%w: concatenation bit must be 0 or 1, got %d", ErrOperand, bit)
	}
	o, _ := FromBits([]int{bit})
	return b.Concat(o)
}

// ConcatString parses s as a binary string and appends it in the low-order
// position.
func (b Bits) ConcatString(s string) (Bits, error) {
	o, err := FromBinaryString(s)
	if err != nil {
		return Bits{}, err
	}
	return b.Concat(o)
}

func (b Bits) normalizeSlice(lo, hi int) (uint, uint, error) {
	w := int(b.width)
	if lo < 0 {
		lo += w
	}
	if hi < 0 {
		hi += w
	}
	if lo < 0 || hi > w || lo > hi {
		return 0, 0, fmt.Errorf("%w: slice [%d:%d] out of range for width %d", ErrOperand, lo, hi, w)
	}
	return uint(lo), uint(hi), nil
}

// Slice returns B[lo:hi], width hi-lo, with bit 0 the least significant
// bit. Negative indices count from the most significant bit.
func (b Bits) Slice(lo, hi int) (Bits, error) {
	l, h, err := b.normalizeSlice(lo, hi)
	if err != nil {
		return Bits{}, err
	}
	return New(b.value>>l, h-l), nil
}

// SetSlice returns a copy of b with bits [lo:hi) replaced by val, widened
// or narrowed to the slice width (truncating or zero-extending val). Step
// is always 1; there is no strided form.
func (b Bits) SetSlice(lo, hi int, val Bits) (Bits, error) {
	l, h, err := b.normalizeSlice(lo, hi)
	if err != nil {
		return Bits{}, err
	}
	width := h - l
	m := mask(width)
	cleared := b.value &^ (m << l)
	return New(cleared|((val.value&m)<<l), b.width), nil
}

// GetBit returns the 0/1 value of the bit at pos (0 = least significant).
// A negative pos counts from the most significant bit.
func (b Bits) GetBit(pos int) (int, error) {
	p := pos
	if p < 0 {
		p += int(b.width)
	}
	if p < 0 || p >= int(b.width) {
		return 0, fmt.Errorf("%w: bit index %d out of range for width %d", ErrOperand, pos, b.width)
	}
	return int((b.value >> uint(p)) & 1), nil
}

// SignExtend widens to w bits, sign-extending the current value. It fails
// with ErrOperand if w is smaller than the current width.
func (b Bits) SignExtend(w uint) (Bits, error) {
	if w < b.width {
		return Bits{}, fmt.Errorf("%w: sign_extend to narrower width %d < %d", ErrOperand, w, b.width)
	}
	if w > MaxWidth {
		return Bits{}, fmt.Errorf("%w: sign_extend to width %d", ErrWidth, w)
	}
	return New(uint64(b.Signed()), w), nil
}

// ZeroExtend widens to w bits, zero-extending the current value. It fails
// with ErrOperand if w is smaller than the current width.
func (b Bits) ZeroExtend(w uint) (Bits, error) {
	if w < b.width {
		return Bits{}, fmt.Errorf("%w: zero_extend to narrower width %d < %d", ErrOperand, w, b.width)
	}
	if w > MaxWidth {
		return Bits{}, fmt.Errorf("%w: zero_extend to width %d", ErrWidth, w)
	}
	return New(b.value, w), nil
}

// Reverse reverses the bit order within the declared width.
func (b Bits) Reverse() Bits {
	var out uint64
	for i := uint(0); i < b.width; i++ {
		out = (out << 1) | ((b.value >> i) & 1)
	}
	return New(out, b.width)
}

// BitCount returns the number of set bits.
func (b Bits) BitCount() int {
	n := 0
	v := b.value
	for v != 0 {
		n++
		v &= v - 1
	}
	return n
}

// LowestSetBit returns the index of the least significant set bit, or
// width if the value is zero.
func (b Bits) LowestSetBit() int {
	if b.value == 0 {
		return int(b.width)
	}
	for i := uint(0); i < b.width; i++ {
		if (b.value>>i)&1 == 1 {
			return int(i)
		}
	}
	return int(b.width)
}

// HighestSetBit returns the index of the most significant set bit, or -1
// if the value is zero.
func (b Bits) HighestSetBit() int {
	if b.value == 0 {
		return -1
	}
	for i := int(b.width) - 1; i >= 0; i-- {
		if (b.value>>uint(i))&1 == 1 {
			return i
		}
	}
	return -1
}

package cpu

import (
	"fmt"

	"github.com/dmillard/thumbsim/bitstring"
)

// MemoryBackend is the interface the CPU model reads and writes through.
// All integer exchange with the backend is by plain integer; the CPU
// model itself wraps and unwraps bit-strings at the boundary. A
// conforming backend covers a set of disjoint byte ranges: reads
// outside any range return 0, writes outside any range are dropped.
type MemoryBackend interface {
	ReadByte(addr uint32) byte
	ReadHalfword(addr uint32) uint16
	ReadWord(addr uint32) uint32
	WriteByte(addr uint32, v byte)
	WriteHalfword(addr uint32, v uint16)
	WriteWord(addr uint32, v uint32)
}

// ReadMem reads width bits (8, 16 or 32) from addr and returns them as a
// bit-string of that width.
func (c *CPU) ReadMem(addr bitstring.Bits, width uint) (bitstring.Bits, error) {
	a := uint32(addr.Unsigned())
	switch width {
	case 8:
		return bitstring.New(uint64(c.Mem.ReadByte(a)), 8), nil
	case 16:
		return bitstring.New(uint64(c.Mem.ReadHalfword(a)), 16), nil
	case 32:
		return bitstring.New(uint64(c.Mem.ReadWord(a)), 32), nil
	default:
		return bitstring.Bits{}, fmt.Errorf("cpu: unsupported memory access width %d", width)
	}
}

// WriteMem writes value to addr, at value's own width (8, 16 or 32 bits).
func (c *CPU) WriteMem(addr bitstring.Bits, value bitstring.Bits) error {
	a := uint32(addr.Unsigned())
	switch value.Width() {
	case 8:
		c.Mem.WriteByte(a, byte(value.Unsigned()))
	case 16:
		c.Mem.WriteHalfword(a, uint16(value.Unsigned()))
	case 32:
		c.Mem.WriteWord(a, uint32(value.Unsigned()))
	default:
		return fmt.Errorf("cpu: unsupported memory write width %d", value.Width())
	}
	return nil
}

// Range is one disjoint, contiguous byte range of a Memory backend.
type Range struct {
	start uint32
	data  []byte
}

// Memory is the in-process MemoryBackend used by tests, the disassembler
// demo harness, and the debugger/gui front ends: a small list of disjoint
// byte ranges. No permissions, no alignment faults — out-of-range reads
// return 0 and out-of-range writes are silently dropped.
type Memory struct {
	ranges []Range
}

// NewMemory constructs an empty Memory with no mapped ranges.
func NewMemory() *Memory {
	return &Memory{}
}

// AddRange maps a new byte range starting at start, taking ownership of
// data. Ranges are expected not to overlap; AddRange does not check this —
// staying disjoint is an invariant the caller maintains.
func (m *Memory) AddRange(start uint32, data []byte) {
	m.ranges = append(m.ranges, Range{start: start, data: data})
}

func (m *Memory) find(addr uint32) (Range, int, bool) {
	for _, r := range m.ranges {
		end := r.start + uint32(len(r.data)) // exclusive
		if addr >= r.start && addr < end {
			return r, int(addr - r.start), true
		}
	}
	return Range{}, 0, false
}

func (m *Memory) ReadByte(addr uint32) byte {
	r, off, ok := m.find(addr)
	if !ok {
		return 0
	}
	return r.data[off]
}

func (m *Memory) ReadHalfword(addr uint32) uint16 {
	var v uint16
	for i := uint32(0); i < 2; i++ {
		v |= uint16(m.ReadByte(addr+i)) << (8 * i)
	}
	return v
}

func (m *Memory) ReadWord(addr uint32) uint32 {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		v |= uint32(m.ReadByte(addr+i)) << (8 * i)
	}
	return v
}

func (m *Memory) WriteByte(addr uint32, v byte) {
	r, off, ok := m.find(addr)
	if !ok {
		return
	}
	r.data[off] = v
}

func (m *Memory) WriteHalfword(addr uint32, v uint16) {
	for i := uint32(0); i < 2; i++ {
		m.WriteByte(addr+i, byte(v>>(8*i)))
	}
}

func (m *Memory) WriteWord(addr uint32, v uint32) {
	for i := uint32(0); i < 4; i++ {
		m.WriteByte(addr+i, byte(v>>(8*i)))
	}
}

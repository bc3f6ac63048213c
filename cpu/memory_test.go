package cpu

import (
	"testing"

	"github.com/dmillard/thumbsim/bitstring"
)

func TestMemoryReadOutsideRangeReturnsZero(t *testing.T) {
	m := NewMemory()
	if got := m.ReadByte(0x1000); got != 0 {
		t.Errorf("ReadByte outside any range = %d, want 0", got)
	}
	if got := m.ReadWord(0x1000); got != 0 {
		t.Errorf("ReadWord outside any range = %d, want 0", got)
	}
}

func TestMemoryWriteOutsideRangeIsDropped(t *testing.T) {
	m := NewMemory()
	m.WriteWord(0x1000, 0xDEADBEEF) // no range mapped: should not panic
	if got := m.ReadWord(0x1000); got != 0 {
		t.Errorf("ReadWord after out-of-range write = %#x, want 0", got)
	}
}

func TestMemoryLittleEndianWordRoundTrip(t *testing.T) {
	m := NewMemory()
	m.AddRange(0x8000, make([]byte, 16))
	m.WriteWord(0x8000, 0x01020304)
	if got := m.ReadByte(0x8000); got != 0x04 {
		t.Errorf("ReadByte(base) = %#x, want 0x04 (little-endian low byte)", got)
	}
	if got := m.ReadWord(0x8000); got != 0x01020304 {
		t.Errorf("ReadWord roundtrip = %#x, want 0x01020304", got)
	}
}

func TestMemoryHalfwordRoundTrip(t *testing.T) {
	m := NewMemory()
	m.AddRange(0x8000, make([]byte, 16))
	m.WriteHalfword(0x8004, 0xBEEF)
	if got := m.ReadHalfword(0x8004); got != 0xBEEF {
		t.Errorf("ReadHalfword roundtrip = %#x, want 0xbeef", got)
	}
}

func TestCPUReadWriteMemWrapsBitstrings(t *testing.T) {
	m := NewMemory()
	m.AddRange(0x8000, make([]byte, 16))
	c := New(m)

	addr := bitstring.New32(0x8000)
	if err := c.WriteMem(addr, bitstring.New(0xABCD, 16)); err != nil {
		t.Fatalf("WriteMem: unexpected error: %v", err)
	}
	got, err := c.ReadMem(addr, 16)
	if err != nil {
		t.Fatalf("ReadMem: unexpected error: %v", err)
	}
	if got.Unsigned() != 0xABCD || got.Width() != 16 {
		t.Errorf("ReadMem = %v, want 16-bit 0xabcd", got)
	}
}

func TestCPUReadMemRejectsUnsupportedWidth(t *testing.T) {
	c := New(NewMemory())
	if _, err := c.ReadMem(bitstring.New32(0), 7); err == nil {
		t.Errorf("ReadMem with width 7 expected error, got none")
	}
}

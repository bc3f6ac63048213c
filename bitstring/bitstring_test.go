package bitstring

import "testing"

func TestNewMasksToWidth(t *testing.T) {
	tests := []struct {
		value uint64
		width uint
		want  uint64
	}{
		{0, 8, 0},
		{0xFF, 8, 0xFF},
		{0x1FF, 8, 0xFF},
		{0, 0, 0},
		{1, 0, 0},
	}
	for _, tt := range tests {
		got := New(tt.value, tt.width)
		if got.Unsigned() != tt.want {
			t.Errorf("New(%d, %d).Unsigned() = %d, want %d", tt.value, tt.width, got.Unsigned(), tt.want)
		}
		if got.Width() != tt.width {
			t.Errorf("New(%d, %d).Width() = %d, want %d", tt.value, tt.width, got.Width(), tt.width)
		}
	}
}

func TestNewPanicsOnOversizeWidth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("New with width > MaxWidth should panic")
		}
	}()
	New(0, MaxWidth+1)
}

func TestSigned(t *testing.T) {
	tests := []struct {
		value uint64
		width uint
		want  int64
	}{
		{0x7F, 8, 127},
		{0x80, 8, -128},
		{0xFF, 8, -1},
		{0, 8, 0},
	}
	for _, tt := range tests {
		got := New(tt.value, tt.width).Signed()
		if got != tt.want {
			t.Errorf("New(%#x, %d).Signed() = %d, want %d", tt.value, tt.width, got, tt.want)
		}
	}
}

func TestBytesLittleEndian(t *testing.T) {
	b := New32(0x01020304)
	got := b.Bytes()
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if len(got) != len(want) {
		t.Fatalf("Bytes() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bytes()[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestFromBytesRoundTrip(t *testing.T) {
	b, err := FromBytes([]byte{0x04, 0x03, 0x02, 0x01})
	if err != nil {
		t.Fatalf("FromBytes: unexpected error: %v", err)
	}
	if b.Unsigned() != 0x01020304 {
		t.Errorf("FromBytes(...).Unsigned() = %#x, want %#x", b.Unsigned(), 0x01020304)
	}
	if b.Width() != 32 {
		t.Errorf("FromBytes(...).Width() = %d, want 32", b.Width())
	}
}

func TestFromBinaryString(t *testing.T) {
	b, err := FromBinaryString("1011")
	if err != nil {
		t.Fatalf("FromBinaryString: unexpected error: %v", err)
	}
	if b.Width() != 4 || b.Unsigned() != 0b1011 {
		t.Errorf("FromBinaryString(\"1011\") = (width=%d, value=%#x), want (4, 0xb)", b.Width(), b.Unsigned())
	}
	if _, err := FromBinaryString("102"); err == nil {
		t.Errorf("FromBinaryString(\"102\") expected error, got none")
	}
}

func TestLslRslPreserveWidth(t *testing.T) {
	b := New(0b1010, 4)
	shl := b.Lsl(1)
	if shl.Width() != 4 {
		t.Errorf("Lsl must preserve width, got %d", shl.Width())
	}
	if shl.Unsigned() != 0b0100 {
		t.Errorf("Lsl(1) on 0b1010/4 = %#b, want 0b0100", shl.Unsigned())
	}

	shr := b.Rsl(1)
	if shr.Width() != 4 {
		t.Errorf("Rsl must preserve width, got %d", shr.Width())
	}
	if shr.Unsigned() != 0b0101 {
		t.Errorf("Rsl(1) on 0b1010/4 = %#b, want 0b0101", shr.Unsigned())
	}

	if b.Lsl(4).Unsigned() != 0 {
		t.Errorf("Lsl past the top must zero out, got %#b", b.Lsl(4).Unsigned())
	}
}

func TestConcat(t *testing.T) {
	hi := New(0b101, 3)
	lo := New(0b11, 2)
	got, err := hi.Concat(lo)
	if err != nil {
		t.Fatalf("Concat: unexpected error: %v", err)
	}
	if got.Width() != 5 {
		t.Errorf("Concat width = %d, want 5", got.Width())
	}
	if got.Unsigned() != 0b10111 {
		t.Errorf("Concat value = %#b, want 0b10111", got.Unsigned())
	}
}

func TestConcatBitRejectsNonBinary(t *testing.T) {
	b := New(0b1, 1)
	if _, err := b.ConcatBit(2); err == nil {
		t.Errorf("ConcatBit(2) expected error, got none")
	}
}

func TestSlice(t *testing.T) {
	b := New(0b11010110, 8)
	got, err := b.Slice(2, 6)
	if err != nil {
		t.Fatalf("Slice: unexpected error: %v", err)
	}
	if got.Width() != 4 {
		t.Errorf("Slice width = %d, want 4", got.Width())
	}
	if got.Unsigned() != 0b0101 {
		t.Errorf("Slice value = %#b, want 0b0101", got.Unsigned())
	}
}

func TestSliceNegativeIndex(t *testing.T) {
	b := New(0b1101, 4)
	got, err := b.Slice(-4, -3)
	if err != nil {
		t.Fatalf("Slice: unexpected error: %v", err)
	}
	if got.Unsigned() != 1 {
		t.Errorf("Slice(-4,-3) on 0b1101/4 = %d, want 1 (bit 0)", got.Unsigned())
	}
}

func TestSetSlice(t *testing.T) {
	b := New(0b0000, 4)
	got, err := b.SetSlice(1, 3, New(0b11, 2))
	if err != nil {
		t.Fatalf("SetSlice: unexpected error: %v", err)
	}
	if got.Unsigned() != 0b0110 {
		t.Errorf("SetSlice(1,3,0b11) on 0b0000/4 = %#b, want 0b0110", got.Unsigned())
	}
}

func TestSignExtendRejectsNarrowing(t *testing.T) {
	b := New(0xFF, 8)
	if _, err := b.SignExtend(4); err == nil {
		t.Errorf("SignExtend to a smaller width expected error, got none")
	}
	got, err := b.SignExtend(16)
	if err != nil {
		t.Fatalf("SignExtend: unexpected error: %v", err)
	}
	if got.Unsigned() != 0xFFFF {
		t.Errorf("SignExtend(16) on 0xFF/8 = %#x, want 0xffff", got.Unsigned())
	}
}

func TestZeroExtend(t *testing.T) {
	b := New(0xFF, 8)
	got, err := b.ZeroExtend(16)
	if err != nil {
		t.Fatalf("ZeroExtend: unexpected error: %v", err)
	}
	if got.Unsigned() != 0x00FF {
		t.Errorf("ZeroExtend(16) on 0xFF/8 = %#x, want 0xff", got.Unsigned())
	}
}

func TestReverse(t *testing.T) {
	b := New(0b1000, 4)
	got := b.Reverse()
	if got.Unsigned() != 0b0001 {
		t.Errorf("Reverse(0b1000/4) = %#b, want 0b0001", got.Unsigned())
	}
}

func TestLowestHighestSetBit(t *testing.T) {
	zero := New(0, 8)
	if zero.LowestSetBit() != 8 {
		t.Errorf("LowestSetBit of zero = %d, want 8 (width)", zero.LowestSetBit())
	}
	if zero.HighestSetBit() != -1 {
		t.Errorf("HighestSetBit of zero = %d, want -1", zero.HighestSetBit())
	}

	b := New(0b00100100, 8)
	if b.LowestSetBit() != 2 {
		t.Errorf("LowestSetBit(0b00100100) = %d, want 2", b.LowestSetBit())
	}
	if b.HighestSetBit() != 5 {
		t.Errorf("HighestSetBit(0b00100100) = %d, want 5", b.HighestSetBit())
	}
}

func TestBitCount(t *testing.T) {
	b := New(0b10110110, 8)
	if got := b.BitCount(); got != 5 {
		t.Errorf("BitCount(0b10110110) = %d, want 5", got)
	}
}

func TestCompareIntNegativeUsesSigned(t *testing.T) {
	b := New(0xFF, 8) // -1 signed, 255 unsigned
	if b.CompareInt(-1) != 0 {
		t.Errorf("CompareInt(-1) on 0xff/8 = %d, want 0 (signed match)", b.CompareInt(-1))
	}
	if b.CompareInt(255) != 0 {
		t.Errorf("CompareInt(255) on 0xff/8 = %d, want 0 (unsigned match)", b.CompareInt(255))
	}
}

func TestAddWrapsModuloWidth(t *testing.T) {
	a := New(0xFF, 8)
	b := New(1, 8)
	got, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if got.Unsigned() != 0 {
		t.Errorf("0xff + 1 (8-bit) = %#x, want 0", got.Unsigned())
	}
}

func TestAddRejectsWidthMismatch(t *testing.T) {
	a := New(1, 8)
	b := New(1, 16)
	if _, err := a.Add(b); err == nil {
		t.Errorf("Add with mismatched widths expected error, got none")
	}
}

func TestInvertIsInvolution(t *testing.T) {
	b := New(0b10110010, 8)
	got := b.Invert().Invert()
	if !got.Equal(b) {
		t.Errorf("Invert().Invert() = %v, want %v (involution)", got, b)
	}
	if b.Invert().Unsigned() != 0b01001101 {
		t.Errorf("Invert() = %#b, want 0b01001101", b.Invert().Unsigned())
	}
}

func TestString(t *testing.T) {
	b := New(0b0101, 4)
	if b.String() != "0101" {
		t.Errorf("String() = %q, want %q", b.String(), "0101")
	}
}

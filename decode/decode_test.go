package decode

import (
	"errors"
	"testing"

	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
)

func TestDecodeMovsImmediate(t *testing.T) {
	// movs r0, #0x42 -> 0x2042
	instr, err := Decode([]byte{0x42, 0x20}, 0x1000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "movs" {
		t.Errorf("Mnemonic = %q, want movs", instr.Mnemonic)
	}
	if instr.Is32Bit {
		t.Errorf("Is32Bit = true, want false")
	}
	if instr.Size() != 2 {
		t.Errorf("Size() = %d, want 2", instr.Size())
	}

	c := cpu.New(cpu.NewMemory())
	c.SetPC(0x1000)
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	got, _ := c.Reg(cpu.R0)
	if got.Unsigned() != 0x42 {
		t.Errorf("r0 = %#x, want 0x42", got.Unsigned())
	}
	if c.PC() != 0x1002 {
		t.Errorf("PC = %#x, want 0x1002", c.PC())
	}
}

func TestDecodeBxLr(t *testing.T) {
	// bx lr -> 0x4770
	instr, err := Decode([]byte{0x70, 0x47}, 0x2000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "bx" {
		t.Errorf("Mnemonic = %q, want bx", instr.Mnemonic)
	}

	c := cpu.New(cpu.NewMemory())
	c.SetLR(0x3001)
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	if c.PC() != 0x3000 {
		t.Errorf("PC = %#x, want 0x3000 (bit 0 of LR masked off)", c.PC())
	}
}

func TestDecodeNop(t *testing.T) {
	// nop -> 0xBF00
	instr, err := Decode([]byte{0x00, 0xBF}, 0)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "nop" {
		t.Errorf("Mnemonic = %q, want nop", instr.Mnemonic)
	}
}

func TestDecodeUdfIsNotAnError(t *testing.T) {
	// udf #0 -> 0xDE00: a defined-but-undefined-behavior instruction, not a
	// decode failure.
	instr, err := Decode([]byte{0x00, 0xDE}, 0)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "udf" {
		t.Errorf("Mnemonic = %q, want udf", instr.Mnemonic)
	}
}

func TestDecodeSvc(t *testing.T) {
	// svc #0 -> 0xDF00
	instr, err := Decode([]byte{0x00, 0xDF}, 0)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "svc" {
		t.Errorf("Mnemonic = %q, want svc", instr.Mnemonic)
	}
	if got, ok := instr.Attr("memsize"); ok {
		t.Errorf("svc has an unexpected memsize attr: %v", got)
	}
}

func TestDecodeDsbSy32Bit(t *testing.T) {
	// dsb sy -> first halfword 0xF3BF, second halfword 0x8F4F
	instr, err := Decode([]byte{0xBF, 0xF3, 0x4F, 0x8F}, 0x4000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "dsb" {
		t.Errorf("Mnemonic = %q, want dsb", instr.Mnemonic)
	}
	if !instr.Is32Bit {
		t.Errorf("Is32Bit = false, want true")
	}
	if instr.Size() != 4 {
		t.Errorf("Size() = %d, want 4", instr.Size())
	}
	op, ok := instr.Operands[0].(BarrierOperand)
	if !ok {
		t.Fatalf("Operands[0] = %T, want BarrierOperand", instr.Operands[0])
	}
	if op.Option != 0xF {
		t.Errorf("Option = %#x, want 0xf (SY)", op.Option)
	}
}

func TestDecodeShortBufferIsUndefined(t *testing.T) {
	_, err := Decode([]byte{0x00}, 0)
	var undef *UndefinedInstruction
	if !errors.As(err, &undef) {
		t.Fatalf("Decode: error = %v, want *UndefinedInstruction", err)
	}
	if !errors.Is(err, ErrUndefined) {
		t.Errorf("errors.Is(err, ErrUndefined) = false, want true")
	}
}

func TestDecodeTruncated32BitIsUndefined(t *testing.T) {
	// First halfword of dsb sy announces a 32-bit instruction, but only
	// two bytes are available.
	_, err := Decode([]byte{0xBF, 0xF3}, 0)
	var undef *UndefinedInstruction
	if !errors.As(err, &undef) {
		t.Fatalf("Decode: error = %v, want *UndefinedInstruction", err)
	}
	if undef.Width != 32 {
		t.Errorf("Width = %d, want 32", undef.Width)
	}
}

func TestDecodeAddressIsPreserved(t *testing.T) {
	instr, err := Decode([]byte{0x00, 0xBF}, 0x8000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Address != 0x8000 {
		t.Errorf("Address = %#x, want 0x8000", instr.Address)
	}
}

func TestDecodePushPopRoundTrip(t *testing.T) {
	// push {r4, lr} -> 1011 0 10 1 00010000 = 0xB510
	instr, err := Decode([]byte{0x10, 0xB5}, 0)
	if err != nil {
		t.Fatalf("Decode push: unexpected error: %v", err)
	}
	if instr.Mnemonic != "push" {
		t.Errorf("Mnemonic = %q, want push", instr.Mnemonic)
	}

	mem := cpu.NewMemory()
	mem.AddRange(0x1000, make([]byte, 0x1000)) // stack at 0x1000-0x1fff
	c := cpu.New(mem)
	c.SetSP(0x2000)
	if err := c.SetReg(cpu.R4, bitstring.New32(0xAAAAAAAA)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	c.SetLR(0xBBBBBBBB)
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute push: unexpected error: %v", err)
	}
	if c.SP() != 0x2000-8 {
		t.Errorf("SP after push = %#x, want %#x", c.SP(), 0x2000-8)
	}

	// pop {r4, pc} -> 1011 1 10 1 00010000 = 0xBD10
	popInstr, err := Decode([]byte{0x10, 0xBD}, 0x100)
	if err != nil {
		t.Fatalf("Decode pop: unexpected error: %v", err)
	}
	if popInstr.Mnemonic != "pop" {
		t.Errorf("Mnemonic = %q, want pop", popInstr.Mnemonic)
	}
	if err := popInstr.Execute(c); err != nil {
		t.Fatalf("Execute pop: unexpected error: %v", err)
	}
	if c.SP() != 0x2000 {
		t.Errorf("SP after pop = %#x, want 0x2000", c.SP())
	}
	if c.PC() != 0xBBBBBBBA {
		t.Errorf("PC after pop {pc} = %#x, want 0xbbbbbbba", c.PC())
	}
}

func TestDecodeAddRegisterHigh(t *testing.T) {
	// add r3, r4 -> DN=0, Rm=0100, Rdn=011 = 0x4423
	instr, err := Decode([]byte{0x23, 0x44}, 0x8000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "add" {
		t.Errorf("Mnemonic = %q, want add", instr.Mnemonic)
	}

	c := cpu.New(cpu.NewMemory())
	if err := c.SetReg(cpu.R3, bitstring.New32(150)); err != nil {
		t.Fatalf("SetReg r3: unexpected error: %v", err)
	}
	if err := c.SetReg(cpu.R4, bitstring.New32(1000)); err != nil {
		t.Fatalf("SetReg r4: unexpected error: %v", err)
	}
	c.SetPC(0x8000)
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	got, _ := c.Reg(cpu.R3)
	if got.Unsigned() != 1150 {
		t.Errorf("r3 = %d, want 1150", got.Unsigned())
	}
	if c.PC() != 0x8002 {
		t.Errorf("PC = %#x, want 0x8002", c.PC())
	}
}

func TestDecodeAddSPImmediate(t *testing.T) {
	// add r1, sp, #20 -> 0xa905
	instr, err := Decode([]byte{0x05, 0xA9}, 0x8000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "add" {
		t.Errorf("Mnemonic = %q, want add", instr.Mnemonic)
	}

	c := cpu.New(cpu.NewMemory())
	c.SetSP(0x20004000)
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	got, _ := c.Reg(cpu.R1)
	if got.Unsigned() != uint64(0x20004000+20) {
		t.Errorf("r1 = %#x, want %#x", got.Unsigned(), 0x20004000+20)
	}
}

func TestDecodeRorImmediate32Bit(t *testing.T) {
	// ror.w r0, r1, #4 -> first halfword 0xEA4F, second halfword 0x1031
	instr, err := Decode([]byte{0x4F, 0xEA, 0x31, 0x10}, 0x4000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "ror" {
		t.Errorf("Mnemonic = %q, want ror", instr.Mnemonic)
	}
	if !instr.Is32Bit {
		t.Errorf("Is32Bit = false, want true")
	}

	c := cpu.New(cpu.NewMemory())
	if err := c.SetReg(cpu.R1, bitstring.New32(0x80000001)); err != nil {
		t.Fatalf("SetReg r1: unexpected error: %v", err)
	}
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	got, _ := c.Reg(cpu.R0)
	if got.Unsigned() != 0x18000000 {
		t.Errorf("r0 = %#x, want 0x18000000", got.Unsigned())
	}
}

func TestDecodeRrx32Bit(t *testing.T) {
	// rrx r2, r1 -> first halfword 0xEA4F, second halfword 0x0231
	instr, err := Decode([]byte{0x4F, 0xEA, 0x31, 0x02}, 0x4000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "rrx" {
		t.Errorf("Mnemonic = %q, want rrx", instr.Mnemonic)
	}

	c := cpu.New(cpu.NewMemory())
	if err := c.SetReg(cpu.R1, bitstring.New32(0x00000003)); err != nil {
		t.Fatalf("SetReg r1: unexpected error: %v", err)
	}
	// APSR.C starts clear, so RRX rotates in a 0 at bit 31.
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	got, _ := c.Reg(cpu.R2)
	if got.Unsigned() != 0x00000001 {
		t.Errorf("r2 = %#x, want 0x1", got.Unsigned())
	}
}

func TestDecodeBlxRegister(t *testing.T) {
	// blx r3 -> 0x4798
	instr, err := Decode([]byte{0x98, 0x47}, 0x8000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if instr.Mnemonic != "blx" {
		t.Errorf("Mnemonic = %q, want blx", instr.Mnemonic)
	}

	c := cpu.New(cpu.NewMemory())
	c.SetPC(0x8000)
	if err := c.SetReg(cpu.R3, bitstring.New32(0x3001)); err != nil {
		t.Fatalf("SetReg r3: unexpected error: %v", err)
	}
	if err := instr.Execute(c); err != nil {
		t.Fatalf("Execute: unexpected error: %v", err)
	}
	if c.PC() != 0x3000 {
		t.Errorf("PC = %#x, want 0x3000 (bit 0 of target masked)", c.PC())
	}
	if c.LR() != 0x8003 {
		t.Errorf("LR = %#x, want 0x8003 (pcForInstr-2, Thumb bit set)", c.LR())
	}
}

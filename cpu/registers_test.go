package cpu

import (
	"testing"

	"github.com/dmillard/thumbsim/bitstring"
)

func TestNewSetsThumbBit(t *testing.T) {
	c := New(NewMemory())
	if c.XPSR()&(1<<24) == 0 {
		t.Errorf("New() must set the xPSR T-bit at reset, xPSR = %#x", c.XPSR())
	}
	if c.Mode != ModeThread {
		t.Errorf("New() mode = %v, want ModeThread", c.Mode)
	}
}

func TestGeneralRegisterRoundTrip(t *testing.T) {
	c := New(NewMemory())
	if err := c.SetReg(R5, bitstring.New32(0x1234)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	got, err := c.Reg(R5)
	if err != nil {
		t.Fatalf("Reg: unexpected error: %v", err)
	}
	if got.Unsigned() != 0x1234 {
		t.Errorf("Reg(R5) = %#x, want 0x1234", got.Unsigned())
	}
}

func TestUnknownRegisterIsError(t *testing.T) {
	c := New(NewMemory())
	if _, err := c.Reg(1000); err == nil {
		t.Errorf("Reg(1000) expected error, got none")
	}
}

func TestPrimaskKeepsOnlyBitZero(t *testing.T) {
	c := New(NewMemory())
	if err := c.SetReg(RPRIMASK, bitstring.New32(0xFF)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	got, _ := c.Reg(RPRIMASK)
	if got.Unsigned() != 1 {
		t.Errorf("PRIMASK = %#x, want 1 (only bit 0 kept)", got.Unsigned())
	}
}

func TestBasepriKeepsLowByte(t *testing.T) {
	c := New(NewMemory())
	if err := c.SetReg(RBASEPRI, bitstring.New32(0x1FF)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	got, _ := c.Reg(RBASEPRI)
	if got.Unsigned() != 0xFF {
		t.Errorf("BASEPRI = %#x, want 0xff (low byte kept)", got.Unsigned())
	}
}

func TestSPClassRegistersClearLowTwoBits(t *testing.T) {
	c := New(NewMemory())
	if err := c.SetReg(RSP, bitstring.New32(0x20001003)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	if c.SP() != 0x20001000 {
		t.Errorf("SP = %#x, want 0x20001000 (low two bits cleared)", c.SP())
	}
}

func TestSPMirrorsMSPByDefault(t *testing.T) {
	c := New(NewMemory())
	c.SetSP(0x20001000)
	if c.MSP() != 0x20001000 {
		t.Errorf("MSP = %#x, want 0x20001000 (SPSEL=0 mirrors MSP)", c.MSP())
	}
	if c.PSP() != 0 {
		t.Errorf("PSP = %#x, want 0 (untouched)", c.PSP())
	}
}

func TestSPMirrorsPSPWhenSPSELSet(t *testing.T) {
	c := New(NewMemory())
	c.SetControl(0b10) // SPSEL
	c.SetSP(0x20002000)
	if c.PSP() != 0x20002000 {
		t.Errorf("PSP = %#x, want 0x20002000 (SPSEL=1 mirrors PSP)", c.PSP())
	}
}

func TestWriteToMSPMirrorsBackToSPWhenActive(t *testing.T) {
	c := New(NewMemory())
	// SPSEL=0: MSP is the active stack; writing MSP should mirror to SP.
	if err := c.SetReg(RMSP, bitstring.New32(0x20003000)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	if c.SP() != 0x20003000 {
		t.Errorf("SP = %#x, want 0x20003000 (MSP write mirrors back when active)", c.SP())
	}
}

func TestWriteToInactiveAltStackDoesNotMirror(t *testing.T) {
	c := New(NewMemory())
	// SPSEL=0: PSP is NOT the active stack; writing PSP must not move SP.
	c.SetSP(0x20001000)
	if err := c.SetReg(RPSP, bitstring.New32(0x20004000)); err != nil {
		t.Fatalf("SetReg: unexpected error: %v", err)
	}
	if c.SP() != 0x20001000 {
		t.Errorf("SP = %#x, want unchanged 0x20001000", c.SP())
	}
}

func TestFloatRegistersAreRegisterFileOnly(t *testing.T) {
	c := New(NewMemory())
	s0 := RS0First
	if err := c.SetReg(s0, bitstring.New32(0xDEADBEEF)); err != nil {
		t.Fatalf("SetReg(S0): unexpected error: %v", err)
	}
	got, err := c.Reg(s0)
	if err != nil {
		t.Fatalf("Reg(S0): unexpected error: %v", err)
	}
	if got.Unsigned() != 0xDEADBEEF {
		t.Errorf("Reg(S0) = %#x, want 0xdeadbeef", got.Unsigned())
	}
}

package decode

import (
	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
)

// pcForInstr is the architectural "PC as read during execution" value:
// the instruction's own address plus 4, regardless of encoding width.
func pcForInstr(c *cpu.CPU) uint32 { return c.PC() + 4 }

// readReg reads a general register (0-15) as a 32-bit value. Register
// indices produced by the decoder are always in range, so the error
// return from cpu.Reg is not architecturally reachable here.
func readReg(c *cpu.CPU, n int) bitstring.Bits {
	v, _ := c.Reg(n)
	return v
}

func writeReg(c *cpu.CPU, n int, v bitstring.Bits) {
	_ = c.SetReg(n, v)
}

// setNZCV applies the full flag-write discipline: N from the result's
// sign bit, Z from result==0, and the supplied carry and overflow bits.
func setNZCV(c *cpu.CPU, result bitstring.Bits, carry, overflow uint) {
	apsr := c.APSR()
	bit, _ := result.GetBit(int(result.Width()) - 1)
	apsr.SetN(bit != 0)
	apsr.SetZ(result.Unsigned() == 0)
	apsr.SetC(carry != 0)
	apsr.SetV(overflow != 0)
}

// setNZC applies N/Z/C only, leaving V untouched — the discipline for
// logical (non-arithmetic) data-processing variants whose carry comes
// from the operand shifter rather than an add/subtract.
func setNZC(c *cpu.CPU, result bitstring.Bits, carry uint) {
	apsr := c.APSR()
	bit, _ := result.GetBit(int(result.Width()) - 1)
	apsr.SetN(bit != 0)
	apsr.SetZ(result.Unsigned() == 0)
	apsr.SetC(carry != 0)
}

// advancePC advances PC by the instruction's own size — the fallthrough
// every non-branch evaluator ends with.
func advancePC(i *Instruction, c *cpu.CPU) {
	c.SetPC(c.PC() + i.Size())
}

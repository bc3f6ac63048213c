package decode

import (
	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
)

func init() {
	mustRegister16("bkpt", ClassMisc, "10111110 imm8(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		imm8 := f["imm8"]
		i.Operands = []Operand{ImmOperand{Value: imm8}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			advancePC(i, c)
			return nil
		})
		return nil
	})

	mustRegister16("udf", ClassMisc, "11011110 imm8(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		i.Operands = []Operand{ImmOperand{Value: f["imm8"]}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			advancePC(i, c)
			return nil
		})
		return nil
	})

	mustRegister16("svc", ClassMisc, "11011111 imm8(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		i.Operands = []Operand{ImmOperand{Value: f["imm8"]}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			advancePC(i, c)
			return nil
		})
		return nil
	})

	mustRegister16("cps", ClassMisc, "10110110 011 im(1) 00 I(1) F(1)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		enable := f["im"].Unsigned() == 0
		i.Attrs["enable"] = enable
		i.Attrs["affectsI"] = f["I"].Unsigned() != 0
		i.Attrs["affectsF"] = f["F"].Unsigned() != 0
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			// CPS only takes effect in privileged execution; this simulator
			// never leaves unprivileged Thread mode, so the priority-mask
			// writes below are always skipped.
			if isPrivileged(c) {
				disable := !enable
				if i.AttrBool("affectsI") {
					if disable {
						_ = c.SetReg(cpu.RPRIMASK, bitstring.New32(1))
					} else {
						_ = c.SetReg(cpu.RPRIMASK, bitstring.New32(0))
					}
				}
				if i.AttrBool("affectsF") {
					if disable {
						_ = c.SetReg(cpu.RFAULTMASK, bitstring.New32(1))
					} else {
						_ = c.SetReg(cpu.RFAULTMASK, bitstring.New32(0))
					}
				}
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})

	registerHint("nop", "0000")
	registerHint("yield", "0001")
	registerHint("wfe", "0010")
	registerHint("wfi", "0011")
	registerHint("sev", "0100")

	registerBarrier("dsb", "0100")
	registerBarrier("dmb", "0101")
	registerBarrier("isb", "0110")

	mustRegister32("mrs", ClassMisc, "1111 0011 1110 1111", "1000 Rd(4) SYSm(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		sysm := uint8(f["SYSm"].Unsigned())
		i.Operands = []Operand{regOperand(rd), SpecialRegOperand{SYSm: sysm}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			writeReg(c, rd, specialRegRead(c, sysm))
			advancePC(i, c)
			return nil
		})
		return nil
	})

	mustRegister32("msr", ClassMisc, "1111 0011 1000 Rn(4)", "1000 1000 SYSm(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		sysm := uint8(f["SYSm"].Unsigned())
		i.Operands = []Operand{SpecialRegOperand{SYSm: sysm}, regOperand(rn)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			specialRegWrite(c, sysm, readReg(c, rn))
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

// isPrivileged reports whether execution is currently privileged. This
// simulator has no exception model (Mode never leaves ModeThread) and
// does not implement CONTROL.nPRIV's effect on privilege, so execution is
// always unprivileged and CPS's priority-mask writes are always a no-op.
func isPrivileged(c *cpu.CPU) bool {
	return c.Mode != cpu.ModeThread
}

// specialRegRead/specialRegWrite map the MRS/MSR SYSm selector to the
// cpu.CPU register it names. Only the subset this simulator models is
// covered: PRIMASK (16), BASEPRI (17, and BASEPRI_MAX 18, which is
// treated as a plain BASEPRI access), FAULTMASK (19), CONTROL (20) and
// the two stack pointer banks (8, 9); any other selector reads/writes
// xPSR, matching the architecture's "unallocated SYSm reads 0" leniency
// in spirit (this simulator never faults on a bad selector).
func specialRegRead(c *cpu.CPU, sysm uint8) bitstring.Bits {
	switch sysm {
	case 8:
		return bitstring.New32(c.MSP())
	case 9:
		return bitstring.New32(c.PSP())
	case 16:
		v, _ := c.Reg(cpu.RPRIMASK)
		return v
	case 17, 18:
		v, _ := c.Reg(cpu.RBASEPRI)
		return v
	case 19:
		v, _ := c.Reg(cpu.RFAULTMASK)
		return v
	case 20:
		return bitstring.New32(c.Control())
	default:
		return bitstring.New32(c.XPSR())
	}
}

func specialRegWrite(c *cpu.CPU, sysm uint8, v bitstring.Bits) {
	switch sysm {
	case 8:
		c.SetSP(uint32(v.Unsigned()))
	case 9:
		_ = c.SetReg(cpu.RPSP, v)
	case 16:
		_ = c.SetReg(cpu.RPRIMASK, v)
	case 17, 18:
		_ = c.SetReg(cpu.RBASEPRI, v)
	case 19:
		_ = c.SetReg(cpu.RFAULTMASK, v)
	case 20:
		c.SetControl(uint32(v.Unsigned()))
	default:
		c.SetXPSR(uint32(v.Unsigned()))
	}
}

func registerHint(mnemonic, opBits string) {
	mustRegister16(mnemonic, ClassMisc, "10111111 "+opBits+" 0000", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func registerBarrier(mnemonic, opBits string) {
	spec16 := "1111 0011 1011 1111"
	spec32 := "1000 1111 " + opBits + " option(4)"
	mustRegister32(mnemonic, ClassMisc, spec16, spec32, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		option := uint8(f["option"].Unsigned())
		i.Operands = []Operand{BarrierOperand{Option: option}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

package decode

import (
	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
	"github.com/dmillard/thumbsim/ops"
)

// branchTo applies the final step shared by the branch variants: when
// link is set, LR becomes pc_for_instr | 1, then PC is set to target.
// Callers compute target themselves (and clear bit 0 of a register
// target before passing it in).
func branchTo(c *cpu.CPU, target uint32, link bool) {
	if link {
		c.SetLR(pcForInstr(c) | 1)
	}
	c.SetPC(target)
}

func init() {
	mustRegister16("b", ClassBranch, "1101 cond(4) imm8(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		condVal := ops.ConditionCode(f["cond"].Unsigned())
		if condVal == ops.CondAL || condVal == ops.CondReserved {
			return &UnpredictableError{Reason: "b: cond 0b1110 and 0b1111 are not B conditions"}
		}
		imm8 := f["imm8"]
		offset, _ := imm8.SignExtend(32)
		offset = offset.Lsl(1)
		i.Attrs["cond"] = condVal
		i.Operands = []Operand{LabelOperand{Offset: int32(offset.Signed())}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			n, z, cf, v := c.APSR().N(), c.APSR().Z(), c.APSR().C(), c.APSR().V()
			if !ops.EvaluateCondition(condVal, n, z, cf, v) {
				advancePC(i, c)
				return nil
			}
			target := uint32(int64(pcForInstr(c)) + offset.Signed())
			branchTo(c, target, false)
			return nil
		})
		return nil
	})

	mustRegister16("b", ClassBranch, "11100 imm11(11)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		imm11 := f["imm11"]
		offset, _ := imm11.SignExtend(32)
		offset = offset.Lsl(1)
		i.Operands = []Operand{LabelOperand{Offset: int32(offset.Signed())}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			target := uint32(int64(pcForInstr(c)) + offset.Signed())
			branchTo(c, target, false)
			return nil
		})
		return nil
	})

	mustRegister32("bl", ClassBranch, "11110 S(1) imm10(10)", "11 J1(1) 1 J2(1) imm11(11)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		s := f["S"].Unsigned()
		j1 := f["J1"].Unsigned()
		j2 := f["J2"].Unsigned()
		i1 := 1 - (j1 ^ s)
		i2 := 1 - (j2 ^ s)
		imm25, _ := bitstring.New(s, 1).Concat(bitstring.New(i1, 1))
		imm25, _ = imm25.Concat(bitstring.New(i2, 1))
		imm25, _ = imm25.Concat(f["imm10"])
		imm25, _ = imm25.Concat(f["imm11"])
		imm25, _ = imm25.Concat(bitstring.New(0, 1))
		offset, _ := imm25.SignExtend(32)
		i.Operands = []Operand{LabelOperand{Offset: int32(offset.Signed())}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			target := uint32(int64(pcForInstr(c)) + offset.Signed())
			branchTo(c, target, true)
			return nil
		})
		return nil
	})

	mustRegister16("bx", ClassBranch, "010001110 Rm(4) 000", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			branchTo(c, uint32(readReg(c, rm).Unsigned())&^1, false)
			return nil
		})
		return nil
	})

	mustRegister16("blx", ClassBranch, "010001111 Rm(4) 000", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			target := uint32(readReg(c, rm).Unsigned()) &^ 1
			// blx is a 16-bit encoding: its link value is the address of the
			// following instruction, pcForInstr(c)-2, not branchTo's bl-shaped
			// pcForInstr(c) formula (which assumes a 32-bit caller).
			c.SetLR((pcForInstr(c) - 2) | 1)
			c.SetPC(target)
			return nil
		})
		return nil
	})
}

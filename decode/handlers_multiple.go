package decode

import (
	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
)

// regListFromMask expands an 8-bit low-register mask (bit i ⇒ register i)
// into ascending register indices, optionally appending one more register
// (LR for PUSH, PC for POP) when extra >= 0.
func regListFromMask(mask uint64, extra int) []int {
	var regs []int
	for i := 0; i < 8; i++ {
		if mask&(1<<uint(i)) != 0 {
			regs = append(regs, i)
		}
	}
	if extra >= 0 {
		regs = append(regs, extra)
	}
	return regs
}

func init() {
	mustRegister16("push", ClassMultiple, "1011 0 10 M(1) reglist(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		extra := -1
		if f["M"].Unsigned() != 0 {
			extra = cpu.RLR
		}
		regs := regListFromMask(f["reglist"].Unsigned(), extra)
		i.Operands = []Operand{RegListOperand{Regs: regs}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			sp := c.SP() - 4*uint32(len(regs))
			addr := sp
			for _, r := range regs {
				if err := c.WriteMem(bitstring.New32(addr), readReg(c, r)); err != nil {
					return err
				}
				addr += 4
			}
			c.SetSP(sp)
			advancePC(i, c)
			return nil
		})
		return nil
	})

	mustRegister16("pop", ClassMultiple, "1011 1 10 P(1) reglist(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		extra := -1
		if f["P"].Unsigned() != 0 {
			extra = cpu.RPC
		}
		regs := regListFromMask(f["reglist"].Unsigned(), extra)
		i.Operands = []Operand{RegListOperand{Regs: regs}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			addr := c.SP()
			loadedPC := false
			for _, r := range regs {
				v, err := c.ReadMem(bitstring.New32(addr), 32)
				if err != nil {
					return err
				}
				if r == cpu.RPC {
					c.SetPC(uint32(v.Unsigned()) &^ 1)
					loadedPC = true
				} else {
					writeReg(c, r, v)
				}
				addr += 4
			}
			c.SetSP(addr)
			if !loadedPC {
				advancePC(i, c)
			}
			return nil
		})
		return nil
	})

	mustRegister16("stm", ClassMultiple, "11000 Rn(3) reglist(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		regs := regListFromMask(f["reglist"].Unsigned(), -1)
		if len(regs) > 0 && regs[0] != rn {
			for _, r := range regs {
				if r == rn {
					return &UnpredictableError{Reason: "stm: base register in list but not lowest"}
				}
			}
		}
		i.Operands = []Operand{RegOperand{Reg: rn, WriteBack: true}, RegListOperand{Regs: regs}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			addr := readReg(c, rn).Unsigned()
			for _, r := range regs {
				if err := c.WriteMem(bitstring.New32(uint32(addr)), readReg(c, r)); err != nil {
					return err
				}
				addr += 4
			}
			writeReg(c, rn, bitstring.New32(uint32(addr)))
			advancePC(i, c)
			return nil
		})
		return nil
	})

	mustRegister16("ldm", ClassMultiple, "11001 Rn(3) reglist(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		regs := regListFromMask(f["reglist"].Unsigned(), -1)
		writeback := true
		for _, r := range regs {
			if r == rn {
				writeback = false
			}
		}
		i.Operands = []Operand{RegOperand{Reg: rn, WriteBack: writeback}, RegListOperand{Regs: regs}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			addr := readReg(c, rn).Unsigned()
			for _, r := range regs {
				v, err := c.ReadMem(bitstring.New32(uint32(addr)), 32)
				if err != nil {
					return err
				}
				writeReg(c, r, v)
				addr += 4
			}
			if writeback {
				writeReg(c, rn, bitstring.New32(uint32(addr)))
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

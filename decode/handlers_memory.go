package decode

import (
	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
	"github.com/dmillard/thumbsim/ops"
)

// loadStoreImm registers one Rn+#imm offset load/store: width is the
// memory access size in bits (8/16/32), scale is the immediate's implicit
// left shift (0 for byte, 1 for halfword, 2 for word), signed marks a
// sign-extending load (never true for a store).
func loadStoreImm(mnemonic, spec string, width, scale uint, isLoad, signed bool) {
	mustRegister16(mnemonic, ClassMemory, spec, map[string]any{"memsize": width}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rt := int(f["Rt"].Unsigned())
		imm := f["imm5"]
		i.Operands = []Operand{regOperand(rt), MemOperand{Inner: []Operand{
			regOperand(rn),
			ImmOperand{Value: bitstring.New(imm.Unsigned()<<scale, 32), Elide: true},
		}}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			addr := readReg(c, rn).Unsigned() + (imm.Unsigned() << scale)
			return execLoadStore(i, c, rt, bitstring.New32(uint32(addr)), width, isLoad, signed)
		})
		return nil
	})
}

func loadStoreSP(mnemonic, spec string, isLoad bool) {
	mustRegister16(mnemonic, ClassMemory, spec, map[string]any{"memsize": uint(32)}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rt := int(f["Rt"].Unsigned())
		imm8 := f["imm8"]
		i.Operands = []Operand{regOperand(rt), MemOperand{Inner: []Operand{
			regOperand(cpu.RSP),
			ImmOperand{Value: bitstring.New(imm8.Unsigned()<<2, 32), Elide: true},
		}}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			addr := c.SP() + uint32(imm8.Unsigned()<<2)
			return execLoadStore(i, c, rt, bitstring.New32(addr), 32, isLoad, false)
		})
		return nil
	})
}

func loadStoreReg(mnemonic, spec string, width uint, isLoad, signed bool) {
	mustRegister16(mnemonic, ClassMemory, spec, map[string]any{"memsize": width}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		rt := int(f["Rt"].Unsigned())
		i.Operands = []Operand{regOperand(rt), MemOperand{Inner: []Operand{regOperand(rn), regOperand(rm)}}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			addr := readReg(c, rn).Unsigned() + readReg(c, rm).Unsigned()
			return execLoadStore(i, c, rt, bitstring.New32(uint32(addr)), width, isLoad, signed)
		})
		return nil
	})
}

func execLoadStore(i *Instruction, c *cpu.CPU, rt int, addr bitstring.Bits, width uint, isLoad, signed bool) error {
	if isLoad {
		v, err := c.ReadMem(addr, width)
		if err != nil {
			return err
		}
		var result bitstring.Bits
		if signed {
			result, _ = v.SignExtend(32)
		} else {
			result, _ = v.ZeroExtend(32)
		}
		writeReg(c, rt, result)
	} else {
		v := readReg(c, rt)
		narrow, _ := v.Slice(0, int(width))
		if err := c.WriteMem(addr, narrow); err != nil {
			return err
		}
	}
	advancePC(i, c)
	return nil
}

func init() {
	loadStoreImm("str", "01100 imm5(5) Rn(3) Rt(3)", 32, 2, false, false)
	loadStoreImm("ldr", "01101 imm5(5) Rn(3) Rt(3)", 32, 2, true, false)
	loadStoreImm("strb", "01110 imm5(5) Rn(3) Rt(3)", 8, 0, false, false)
	loadStoreImm("ldrb", "01111 imm5(5) Rn(3) Rt(3)", 8, 0, true, false)
	loadStoreImm("strh", "10000 imm5(5) Rn(3) Rt(3)", 16, 1, false, false)
	loadStoreImm("ldrh", "10001 imm5(5) Rn(3) Rt(3)", 16, 1, true, false)

	loadStoreSP("str", "1001 0 Rt(3) imm8(8)", false)
	loadStoreSP("ldr", "1001 1 Rt(3) imm8(8)", true)

	loadStoreReg("str", "0101000 Rm(3) Rn(3) Rt(3)", 32, false, false)
	loadStoreReg("strh", "0101001 Rm(3) Rn(3) Rt(3)", 16, false, false)
	loadStoreReg("strb", "0101010 Rm(3) Rn(3) Rt(3)", 8, false, false)
	loadStoreReg("ldrsb", "0101011 Rm(3) Rn(3) Rt(3)", 8, true, true)
	loadStoreReg("ldr", "0101100 Rm(3) Rn(3) Rt(3)", 32, true, false)
	loadStoreReg("ldrh", "0101101 Rm(3) Rn(3) Rt(3)", 16, true, false)
	loadStoreReg("ldrb", "0101110 Rm(3) Rn(3) Rt(3)", 8, true, false)
	loadStoreReg("ldrsh", "0101111 Rm(3) Rn(3) Rt(3)", 16, true, true)

	mustRegister16("ldr", ClassMemory, "01001 Rt(3) imm8(8)", map[string]any{"memsize": uint(32), "literal": true}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rt := int(f["Rt"].Unsigned())
		imm8 := f["imm8"]
		i.Operands = []Operand{regOperand(rt), LabelOperand{Offset: int32(imm8.Unsigned() << 2)}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			base := ops.Align(bitstring.New32(pcForInstr(c)), 4)
			addr, _ := base.Add(bitstring.New(imm8.Unsigned()<<2, 32))
			return execLoadStore(i, c, rt, addr, 32, true, false)
		})
		return nil
	})
}

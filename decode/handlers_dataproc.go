package decode

import (
	"fmt"

	"github.com/dmillard/thumbsim/bitstring"
	"github.com/dmillard/thumbsim/cpu"
	"github.com/dmillard/thumbsim/ops"
)

func regOperand(n int) Operand { return RegOperand{Reg: n} }

// thumb1ThreeReg registers a Thumb-1 "op Rd, Rn, Rm" or "op Rdn, Rm" family
// member whose result is a pure function of the two source values plus the
// incoming carry (for ADC/SBC) — the common shape shared by the ALU
// low-register encodings at 0100 00xx xx.
func thumb1ThreeReg(mnemonic, spec string, compute func(c *cpu.CPU, x, y bitstring.Bits) (result bitstring.Bits, carry, overflow uint, writeV bool)) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rdn := int(f["Rdn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rdn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rdn)
			y := readReg(c, rm)
			result, carry, overflow, writeV := compute(c, x, y)
			writeReg(c, rdn, result)
			if writeV {
				setNZCV(c, result, carry, overflow)
			} else {
				setNZC(c, result, carry)
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func init() {
	thumb1ThreeReg("ands", "0100000000 Rm(3) Rdn(3)", func(c *cpu.CPU, x, y bitstring.Bits) (bitstring.Bits, uint, uint, bool) {
		r := bitstring.New(x.Unsigned()&y.Unsigned(), 32)
		return r, boolToUint(c.APSR().C()), 0, false
	})
	thumb1ThreeReg("eors", "0100000001 Rm(3) Rdn(3)", func(c *cpu.CPU, x, y bitstring.Bits) (bitstring.Bits, uint, uint, bool) {
		r := bitstring.New(x.Unsigned()^y.Unsigned(), 32)
		return r, boolToUint(c.APSR().C()), 0, false
	})
	thumb1ThreeReg("adcs", "0100000101 Rm(3) Rdn(3)", func(c *cpu.CPU, x, y bitstring.Bits) (bitstring.Bits, uint, uint, bool) {
		carryIn := boolToUint(c.APSR().C())
		r, carry, overflow, _ := ops.AddWithCarry(x, y, carryIn)
		return r, carry, overflow, true
	})
	thumb1ThreeReg("sbcs", "0100000110 Rm(3) Rdn(3)", func(c *cpu.CPU, x, y bitstring.Bits) (bitstring.Bits, uint, uint, bool) {
		carryIn := boolToUint(c.APSR().C())
		r, carry, overflow, _ := ops.AddWithCarry(x, y.Invert(), carryIn)
		return r, carry, overflow, true
	})
	thumb1ThreeReg("orrs", "0100001100 Rm(3) Rdn(3)", func(c *cpu.CPU, x, y bitstring.Bits) (bitstring.Bits, uint, uint, bool) {
		r := bitstring.New(x.Unsigned()|y.Unsigned(), 32)
		return r, boolToUint(c.APSR().C()), 0, false
	})
	thumb1ThreeReg("bics", "0100001110 Rm(3) Rdn(3)", func(c *cpu.CPU, x, y bitstring.Bits) (bitstring.Bits, uint, uint, bool) {
		r := bitstring.New(x.Unsigned()&^y.Unsigned(), 32)
		return r, boolToUint(c.APSR().C()), 0, false
	})

	registerShiftByRegister("lsls", "0100000010 Rm(3) Rdn(3)", ops.SRTypeLSL)
	registerShiftByRegister("lsrs", "0100000011 Rm(3) Rdn(3)", ops.SRTypeLSR)
	registerShiftByRegister("asrs", "0100000100 Rm(3) Rdn(3)", ops.SRTypeASR)
	registerShiftByRegister("rors", "0100000111 Rm(3) Rdn(3)", ops.SRTypeROR)

	registerShiftByImmediate("lsls", "00000 imm5(5) Rm(3) Rd(3)", ops.SRTypeLSL)
	registerShiftByImmediate("lsrs", "00001 imm5(5) Rm(3) Rd(3)", ops.SRTypeLSR)
	registerShiftByImmediate("asrs", "00010 imm5(5) Rm(3) Rd(3)", ops.SRTypeASR)

	registerAddSubThreeReg("adds", "0001100 Rm(3) Rn(3) Rd(3)", false)
	registerAddSubThreeReg("subs", "0001101 Rm(3) Rn(3) Rd(3)", true)
	registerAddSubImm3("adds", "0001110 imm3(3) Rn(3) Rd(3)", false)
	registerAddSubImm3("subs", "0001111 imm3(3) Rn(3) Rd(3)", true)
	registerAddSubImm8("cmp", "00101 Rn(3) imm8(8)", true, true)
	registerAddSubImm8("adds", "00110 Rdn(3) imm8(8)", false, false)
	registerAddSubImm8("subs", "00111 Rdn(3) imm8(8)", true, false)
	registerMovImm8("movs", "00100 Rd(3) imm8(8)")

	mustRegister16("tst", ClassDataProcessing, "0100001000 Rm(3) Rn(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			result := bitstring.New(readReg(c, rn).Unsigned()&readReg(c, rm).Unsigned(), 32)
			setNZC(c, result, boolToUint(c.APSR().C()))
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("cmp", ClassDataProcessing, "0100001010 Rm(3) Rn(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rn)
			y := readReg(c, rm)
			result, carry, overflow, _ := ops.AddWithCarry(x, y.Invert(), 1)
			setNZCV(c, result, carry, overflow)
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("cmn", ClassDataProcessing, "0100001011 Rm(3) Rn(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rn)
			y := readReg(c, rm)
			result, carry, overflow, _ := ops.AddWithCarry(x, y, 0)
			setNZCV(c, result, carry, overflow)
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("rsbs", ClassDataProcessing, "0100001001 Rn(3) Rd(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rd := int(f["Rd"].Unsigned())
		i.Operands = []Operand{regOperand(rd), regOperand(rn), ImmOperand{Value: bitstring.New(0, 32)}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rn)
			zero := bitstring.New(0, 32)
			result, carry, overflow, _ := ops.AddWithCarry(zero, x.Invert(), 1)
			writeReg(c, rd, result)
			setNZCV(c, result, carry, overflow)
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("muls", ClassDataProcessing, "0100001101 Rn(3) Rdm(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rdm := int(f["Rdm"].Unsigned())
		i.Operands = []Operand{regOperand(rdm), regOperand(rn), regOperand(rdm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rn).Unsigned()
			y := readReg(c, rdm).Unsigned()
			result := bitstring.New(x*y, 32)
			writeReg(c, rdm, result)
			apsr := c.APSR()
			bit, _ := result.GetBit(31)
			apsr.SetN(bit != 0)
			apsr.SetZ(result.Unsigned() == 0)
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("mvns", ClassDataProcessing, "0100001111 Rm(3) Rd(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rm := int(f["Rm"].Unsigned())
		rd := int(f["Rd"].Unsigned())
		i.Operands = []Operand{regOperand(rd), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			result := readReg(c, rm).Invert()
			writeReg(c, rd, result)
			setNZC(c, result, boolToUint(c.APSR().C()))
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("mov", ClassDataProcessing, "010001 10 D(1) Rm(4) Rdn(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		d := int(f["D"].Unsigned())
		rdn := int(f["Rdn"].Unsigned()) | d<<3
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rdn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			v := readReg(c, rm)
			writeReg(c, rdn, v)
			if rdn == cpu.RPC {
				c.SetPC(uint32(v.Unsigned()) &^ 1)
				return nil
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("add", ClassDataProcessing, "010001 00 DN(1) Rm(4) Rdn(3)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		dn := int(f["DN"].Unsigned())
		rdn := int(f["Rdn"].Unsigned()) | dn<<3
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rdn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rdn)
			y := readReg(c, rm)
			result, _, _, _ := ops.AddWithCarry(x, y, 0)
			writeReg(c, rdn, result)
			if rdn == cpu.RPC {
				c.SetPC(uint32(result.Unsigned()) &^ 1)
				return nil
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("adr", ClassDataProcessing, "10100 Rd(3) imm8(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		imm8 := f["imm8"]
		i.Operands = []Operand{regOperand(rd), LabelOperand{Offset: int32(imm8.Unsigned() << 2)}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			base := ops.Align(bitstring.New32(pcForInstr(c)), 4)
			result, _ := base.Add(bitstring.New(imm8.Unsigned()<<2, 32))
			writeReg(c, rd, result)
			advancePC(i, c)
			return nil
		})
		return nil
	})
	mustRegister16("add", ClassDataProcessing, "10101 Rd(3) imm8(8)", nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		imm8 := f["imm8"]
		i.Operands = []Operand{regOperand(rd), regOperand(cpu.RSP), ImmOperand{Value: bitstring.New(imm8.Unsigned()<<2, 32)}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			sp := readReg(c, cpu.RSP)
			imm32 := bitstring.New(imm8.Unsigned()<<2, 32)
			result, _, _, _ := ops.AddWithCarry(sp, imm32, 0)
			writeReg(c, rd, result)
			advancePC(i, c)
			return nil
		})
		return nil
	})

	registerExtend("sxth", "1011001000 Rm(3) Rd(3)", 16, true)
	registerExtend("sxtb", "1011001001 Rm(3) Rd(3)", 8, true)
	registerExtend("uxth", "1011001010 Rm(3) Rd(3)", 16, false)
	registerExtend("uxtb", "1011001011 Rm(3) Rd(3)", 8, false)

	registerReverse("rev", "1011101000 Rm(3) Rd(3)", reverseWord)
	registerReverse("rev16", "1011101001 Rm(3) Rd(3)", reverseHalfwords)
	registerReverse("revsh", "1011101011 Rm(3) Rd(3)", reverseSignedHalfword)

	registerModifiedImm32("ands", 0b0000, false)
	registerModifiedImm32("bics", 0b0001, false)
	registerModifiedImm32("orrs", 0b0010, false)
	registerModifiedImm32("eors", 0b0100, false)
	registerModifiedImm32("adds", 0b1000, true)
	registerModifiedImm32("adcs", 0b1010, true)
	registerModifiedImm32("sbcs", 0b1011, true)
	registerModifiedImm32("subs", 0b1101, true)
	registerModifiedImm32("rsbs", 0b1110, true)

	registerMOVW()
	registerShiftByImmediate32()
}

func boolToUint(b bool) uint {
	if b {
		return 1
	}
	return 0
}

func registerShiftByRegister(mnemonic, spec string, srType ops.SRType) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rdn := int(f["Rdn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rdn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			value := readReg(c, rdn)
			amount := uint(readReg(c, rm).Unsigned() & 0xFF)
			carryIn := boolToUint(c.APSR().C())
			var result bitstring.Bits
			var carry uint
			if amount == 0 {
				result, carry = value, carryIn
			} else {
				result, carry = ops.Shift_C(value, srType, amount, carryIn)
			}
			writeReg(c, rdn, result)
			setNZC(c, result, carry)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func registerShiftByImmediate(mnemonic, spec string, srType ops.SRType) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		amount := uint(f["imm5"].Unsigned())
		if srType == ops.SRTypeLSR || srType == ops.SRTypeASR {
			if amount == 0 {
				amount = 32
			}
		}
		i.Operands = []Operand{regOperand(rd), regOperand(rm), ShiftOperand{Type: srType, Amount: amount}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			carryIn := boolToUint(c.APSR().C())
			result, carry := ops.Shift_C(readReg(c, rm), srType, amount, carryIn)
			writeReg(c, rd, result)
			setNZC(c, result, carry)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func registerAddSubThreeReg(mnemonic, spec string, sub bool) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, map[string]any{"sub": sub}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		rn := int(f["Rn"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		i.Operands = []Operand{regOperand(rd), regOperand(rn), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rn)
			y := readReg(c, rm)
			var result bitstring.Bits
			var carry, overflow uint
			if sub {
				result, carry, overflow, _ = ops.AddWithCarry(x, y.Invert(), 1)
			} else {
				result, carry, overflow, _ = ops.AddWithCarry(x, y, 0)
			}
			writeReg(c, rd, result)
			setNZCV(c, result, carry, overflow)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func registerAddSubImm3(mnemonic, spec string, sub bool) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, map[string]any{"sub": sub}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		rn := int(f["Rn"].Unsigned())
		imm3 := f["imm3"]
		imm32, _ := imm3.ZeroExtend(32)
		i.Operands = []Operand{regOperand(rd), regOperand(rn), ImmOperand{Value: imm3}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rn)
			var result bitstring.Bits
			var carry, overflow uint
			if sub {
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32.Invert(), 1)
			} else {
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32, 0)
			}
			writeReg(c, rd, result)
			setNZCV(c, result, carry, overflow)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

// registerAddSubImm8 handles the three Thumb-1 "Rdn(or Rn), #imm8" forms:
// CMP (compareOnly), and the ADDS/SUBS forms that write back to Rdn.
func registerAddSubImm8(mnemonic, spec string, sub, compareOnly bool) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, map[string]any{"sub": sub}, func(i *Instruction, f map[string]bitstring.Bits) error {
		name := "Rdn"
		if compareOnly {
			name = "Rn"
		}
		rdn := int(f[name].Unsigned())
		imm8 := f["imm8"]
		imm32, _ := imm8.ZeroExtend(32)
		i.Operands = []Operand{regOperand(rdn), ImmOperand{Value: imm8}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			x := readReg(c, rdn)
			var result bitstring.Bits
			var carry, overflow uint
			if sub {
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32.Invert(), 1)
			} else {
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32, 0)
			}
			if !compareOnly {
				writeReg(c, rdn, result)
			}
			setNZCV(c, result, carry, overflow)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func registerMovImm8(mnemonic, spec string) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		imm8 := f["imm8"]
		i.Operands = []Operand{regOperand(rd), ImmOperand{Value: imm8}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			result, _ := imm8.ZeroExtend(32)
			writeReg(c, rd, result)
			setNZC(c, result, boolToUint(c.APSR().C()))
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func registerExtend(mnemonic, spec string, fromWidth uint, signed bool) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rm := int(f["Rm"].Unsigned())
		rd := int(f["Rd"].Unsigned())
		i.Operands = []Operand{regOperand(rd), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			narrow, _ := readReg(c, rm).Slice(0, int(fromWidth))
			var result bitstring.Bits
			if signed {
				result, _ = narrow.SignExtend(32)
			} else {
				result, _ = narrow.ZeroExtend(32)
			}
			writeReg(c, rd, result)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func reverseWord(v bitstring.Bits) bitstring.Bits {
	b := v.Bytes()
	out := []byte{b[3], b[2], b[1], b[0]}
	r, _ := bitstring.FromBytes(out)
	return r
}

func reverseHalfwords(v bitstring.Bits) bitstring.Bits {
	b := v.Bytes()
	out := []byte{b[1], b[0], b[3], b[2]}
	r, _ := bitstring.FromBytes(out)
	return r
}

func reverseSignedHalfword(v bitstring.Bits) bitstring.Bits {
	b := v.Bytes()
	low, _ := bitstring.FromBytes([]byte{b[1], b[0]})
	result, _ := low.SignExtend(32)
	return result
}

func registerReverse(mnemonic, spec string, transform func(bitstring.Bits) bitstring.Bits) {
	mustRegister16(mnemonic, ClassDataProcessing, spec, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rm := int(f["Rm"].Unsigned())
		rd := int(f["Rd"].Unsigned())
		i.Operands = []Operand{regOperand(rd), regOperand(rm)}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			writeReg(c, rd, transform(readReg(c, rm)))
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

// registerModifiedImm32 registers one Thumb-2 "op.W Rd, Rn, #<ThumbExpandImm>"
// variant (T3 modified-immediate data-processing encoding). opcode is the
// 4-bit family selector, isAddSub chooses AddWithCarry vs bitwise compute.
func registerModifiedImm32(mnemonic string, opcode uint8, isAddSub bool) {
	spec16 := fmt.Sprintf("11110 i(1) 0 %s S(1) Rn(4)", toBin4(opcode))
	spec32 := "0 imm3(3) Rd(4) imm8(8)"
	mustRegister32(mnemonic, ClassDataProcessing, spec16, spec32, map[string]any{"opcode": opcode}, func(i *Instruction, f map[string]bitstring.Bits) error {
		rn := int(f["Rn"].Unsigned())
		rd := int(f["Rd"].Unsigned())
		imm12, err := f["i"].Concat(f["imm3"])
		if err != nil {
			return &DecodeError{Reason: err.Error()}
		}
		imm12, err = imm12.Concat(f["imm8"])
		if err != nil {
			return &DecodeError{Reason: err.Error()}
		}
		i.Operands = []Operand{regOperand(rd), regOperand(rn), ImmOperand{Value: imm12}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			carryIn := boolToUint(c.APSR().C())
			imm32, carryOut, err := ops.ThumbExpandImm_C(imm12, carryIn)
			if err != nil {
				return err
			}
			x := readReg(c, rn)
			var result bitstring.Bits
			var carry, overflow uint
			switch opcode {
			case 0b0000:
				result = bitstring.New(x.Unsigned()&imm32.Unsigned(), 32)
				carry = carryOut
			case 0b0001:
				result = bitstring.New(x.Unsigned()&^imm32.Unsigned(), 32)
				carry = carryOut
			case 0b0010:
				result = bitstring.New(x.Unsigned()|imm32.Unsigned(), 32)
				carry = carryOut
			case 0b0100:
				result = bitstring.New(x.Unsigned()^imm32.Unsigned(), 32)
				carry = carryOut
			case 0b1000:
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32, 0)
			case 0b1010:
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32, carryIn)
			case 0b1011:
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32.Invert(), carryIn)
			case 0b1101:
				result, carry, overflow, _ = ops.AddWithCarry(x, imm32.Invert(), 1)
			case 0b1110:
				result, carry, overflow, _ = ops.AddWithCarry(imm32, x.Invert(), 1)
			}
			writeReg(c, rd, result)
			if isAddSub {
				setNZCV(c, result, carry, overflow)
			} else {
				setNZC(c, result, carry)
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

func toBin4(v uint8) string {
	out := make([]byte, 4)
	for i := 0; i < 4; i++ {
		out[3-i] = byte('0' + (v>>uint(i))&1)
	}
	return string(out)
}

// registerShiftByImmediate32 registers the Thumb-2 "MOV (register-shifted
// immediate)" 32-bit encoding. This is the only Thumb-encodable form of
// ROR-immediate and RRX (via DecodeImmShift's imm5=0 rule); it also covers
// the .W-suffixed wide forms of LSL/LSR/ASR immediate.
func registerShiftByImmediate32() {
	spec16 := "11101010010 S(1) 1111"
	spec32 := "0 imm3(3) Rd(4) imm2(2) stype(2) Rm(4)"
	mustRegister32("mov", ClassDataProcessing, spec16, spec32, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		rm := int(f["Rm"].Unsigned())
		sBit := f["S"].Unsigned()
		type2 := uint8(f["stype"].Unsigned())
		imm5, err := f["imm3"].Concat(f["imm2"])
		if err != nil {
			return &DecodeError{Reason: err.Error()}
		}
		srType, amount := ops.DecodeImmShift(type2, uint8(imm5.Unsigned()))
		switch srType {
		case ops.SRTypeROR:
			i.Mnemonic = "ror"
		case ops.SRTypeRRX:
			i.Mnemonic = "rrx"
		case ops.SRTypeLSL:
			i.Mnemonic = "lsl"
		case ops.SRTypeLSR:
			i.Mnemonic = "lsr"
		case ops.SRTypeASR:
			i.Mnemonic = "asr"
		}
		if sBit != 0 {
			i.Mnemonic += "s"
		}
		if srType == ops.SRTypeRRX {
			i.Operands = []Operand{regOperand(rd), regOperand(rm)}
		} else {
			i.Operands = []Operand{regOperand(rd), regOperand(rm), ShiftOperand{Type: srType, Amount: amount}}
		}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			carryIn := boolToUint(c.APSR().C())
			result, carry := ops.Shift_C(readReg(c, rm), srType, amount, carryIn)
			writeReg(c, rd, result)
			if sBit != 0 {
				setNZC(c, result, carry)
			}
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

// registerMOVW registers the T3 MOVW Rd, #imm16 encoding.
func registerMOVW() {
	spec16 := "11110 i(1) 100100 imm4(4)"
	spec32 := "0 imm3(3) Rd(4) imm8(8)"
	mustRegister32("movw", ClassDataProcessing, spec16, spec32, nil, func(i *Instruction, f map[string]bitstring.Bits) error {
		rd := int(f["Rd"].Unsigned())
		parts := []bitstring.Bits{f["imm4"], f["i"], f["imm3"], f["imm8"]}
		imm16 := parts[0]
		var err error
		for _, p := range parts[1:] {
			imm16, err = imm16.Concat(p)
			if err != nil {
				return &DecodeError{Reason: err.Error()}
			}
		}
		i.Operands = []Operand{regOperand(rd), ImmOperand{Value: imm16}}
		i.SetEval(func(i *Instruction, c *cpu.CPU) error {
			result, _ := imm16.ZeroExtend(32)
			writeReg(c, rd, result)
			advancePC(i, c)
			return nil
		})
		return nil
	})
}

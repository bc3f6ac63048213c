// Package format renders a decoded decode.Instruction as one line of
// disassembly text.
package format

import (
	"fmt"
	"strings"

	"github.com/dmillard/thumbsim/cpu"
	"github.com/dmillard/thumbsim/decode"
)

// Formatter renders decode.Instruction values. It holds no state between
// calls; Address is read off the instruction itself rather than a live
// CPU, since a disassembly listing renders instructions that may never
// execute.
type Formatter struct{}

// New returns a Formatter. There is nothing to configure; New exists so
// callers have a value to hang future options off rather than calling a
// bare package-level Format.
func New() *Formatter { return &Formatter{} }

// Format renders one line: hex bytes, mnemonic column, comma-separated
// operands, and a trailing "; comment" when any operand contributed one.
func (fmtr *Formatter) Format(i *decode.Instruction) string {
	b := i.Bytes()
	byteString := fmt.Sprintf("%02x%02x", b[1], b[0])
	if len(b) == 4 {
		byteString += fmt.Sprintf(" %02x%02x", b[3], b[2])
	}

	var comments []string
	var operands []string
	for _, op := range i.Operands {
		rendered, comment := formatOperand(op, i.Address)
		if comment != "" {
			comments = append(comments, comment)
		}
		if rendered != "" {
			operands = append(operands, rendered)
		}
	}

	result := fmt.Sprintf("%-12s %-8s", byteString, i.Mnemonic)
	result += strings.Join(operands, ", ")

	if len(comments) > 0 {
		result = fmt.Sprintf("%-36s ; %s", result, strings.Join(comments, " "))
	}
	return result
}

// formatOperand renders a single operand, returning ("", "") for an
// operand kind that elects to be omitted entirely (a hidden-if-zero
// immediate, a None-type shift).
func formatOperand(op decode.Operand, address uint32) (rendered, comment string) {
	switch o := op.(type) {
	case decode.RegOperand:
		name := cpu.RegisterName(o.Reg)
		if o.WriteBack {
			name += "!"
		}
		return name, ""

	case decode.RegListOperand:
		return formatRegList(o.Regs), ""

	case decode.ImmOperand:
		v := o.Value.Unsigned()
		if v == 0 && o.Elide {
			return "", ""
		}
		if v > 9 {
			comment = fmt.Sprintf("0x%x", v)
		}
		return fmt.Sprintf("#%d", v), comment

	case decode.LabelOperand:
		comment = fmt.Sprintf("0x%x", int64(address)+4+int64(o.Offset))
		return fmt.Sprintf(".%+d", o.Offset), comment

	case decode.ShiftOperand:
		if o.Type == 0 { // ops.SRTypeNone
			return "", ""
		}
		return fmt.Sprintf("%s #%d", o.Type, o.Amount), ""

	case decode.MemOperand:
		var parts []string
		for _, inner := range o.Inner {
			r, c := formatOperand(inner, address)
			if c != "" {
				comment = c
			}
			if r != "" {
				parts = append(parts, r)
			}
		}
		result := "[" + strings.Join(parts, ", ") + "]"
		if o.WriteBack {
			result += "!"
		}
		return result, comment

	case decode.SpecialRegOperand:
		return specialRegisterName(o.SYSm), ""

	case decode.BarrierOperand:
		if o.Option == 0xF {
			return "sy", ""
		}
		return fmt.Sprintf("#%d", o.Option), ""

	default:
		return fmt.Sprintf("<%T>", op), ""
	}
}

// formatRegList collapses a register-index list into contiguous "rX-rY"
// runs, matching original_source/cmdis/formatter.py's ReglistOperand.
func formatRegList(regs []int) string {
	if len(regs) == 0 {
		return "{}"
	}
	sorted := append([]int(nil), regs...)
	// Registration helpers always build these in ascending order, but a
	// formatter shouldn't assume that of an arbitrary Operand value.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	var runs []string
	start := sorted[0]
	prev := sorted[0]
	flush := func(end int) {
		if start == end {
			runs = append(runs, cpu.RegisterName(start))
		} else {
			runs = append(runs, fmt.Sprintf("%s-%s", cpu.RegisterName(start), cpu.RegisterName(end)))
		}
	}
	for _, r := range sorted[1:] {
		if r == prev+1 {
			prev = r
			continue
		}
		flush(prev)
		start, prev = r, r
	}
	flush(prev)

	return "{" + strings.Join(runs, ",") + "}"
}

// specialRegisterName decodes an MRS/MSR SYSm selector into its mnemonic
// name, per original_source/cmdis/formatter.py's SpecialRegisterOperand
// table. The APSR execution-state mask suffixes that table also renders
// (_nzcvq, _g, _nzcvqg) depend on a mask field this simulator's MRS/MSR
// encodings don't carry, so they're omitted here.
func specialRegisterName(sysm uint8) string {
	upper, lower := sysm>>3, sysm&0x7
	switch upper {
	case 0:
		switch lower {
		case 0:
			return "APSR"
		case 1:
			return "IAPSR"
		case 2:
			return "EAPSR"
		case 3:
			return "XPSR"
		case 5:
			return "IPSR"
		case 6:
			return "EPSR"
		case 7:
			return "IEPSR"
		}
	case 1:
		switch lower {
		case 0:
			return "MSP"
		case 1:
			return "PSP"
		}
	case 2:
		switch lower {
		case 0:
			return "PRIMASK"
		case 1:
			return "BASEPRI"
		case 2:
			return "BASEPRI_MAX"
		case 3:
			return "FAULTMASK"
		case 4:
			return "CONTROL"
		}
	}
	return fmt.Sprintf("SYSm(%d)", sysm)
}

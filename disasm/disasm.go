// Package disasm streams decoded instructions from a byte buffer,
// grounded on original_source/cmdis/disasm.py's decode-yield-advance loop.
package disasm

import (
	"errors"
	"iter"

	"github.com/dmillard/thumbsim/decode"
)

// Disassembler decodes a byte buffer one instruction at a time. It holds
// no state between calls; New exists so callers have a value to extend
// with future options.
type Disassembler struct{}

// New returns a Disassembler.
func New() *Disassembler { return &Disassembler{} }

// Disasm streams instructions from data, starting at address and
// advancing by each instruction's own size. A trailing 1-3 byte tail
// that can't hold a full encoding is silently dropped rather than
// reported as an error, matching the Python original's "ignore the
// undefined error if it's the last few bytes" rule; any other decode
// failure is yielded and ends the sequence. The consumer's yield
// function can stop early by returning false, same as any other
// iter.Seq2.
func (d *Disassembler) Disasm(data []byte, address uint32) iter.Seq2[*decode.Instruction, error] {
	return func(yield func(*decode.Instruction, error) bool) {
		end := address + uint32(len(data))
		offset := 0
		for address < end {
			instr, err := decode.Decode(data[offset:], address)
			if err != nil {
				var undef *decode.UndefinedInstruction
				if errors.As(err, &undef) && end-address < 4 {
					return
				}
				yield(nil, err)
				return
			}
			if !yield(instr, nil) {
				return
			}
			address += instr.Size()
			offset += int(instr.Size())
		}
	}
}

// All collects every instruction in data into a slice, stopping at the
// first decode error (other than a dropped trailing tail).
func (d *Disassembler) All(data []byte, address uint32) ([]*decode.Instruction, error) {
	var out []*decode.Instruction
	for instr, err := range d.Disasm(data, address) {
		if err != nil {
			return out, err
		}
		out = append(out, instr)
	}
	return out, nil
}

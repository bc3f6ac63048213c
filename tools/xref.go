// Package tools annotates branch, BL, and PC-relative literal-pool
// targets in a disassembly listing with a resolved symbol name instead
// of a bare address.
package tools

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/dmillard/thumbsim/decode"
)

// SymbolTable maps an address to the name of the symbol defined there.
type SymbolTable map[uint32]string

// SymbolsFromELF recovers a SymbolTable from an ELF image's symbol
// table, retargeted from tools/xref.go's cross-reference table
// construction — originally built by parsing assembly-source labels —
// to ELF symtab entries recovered by the loader package. Only function
// and object symbols are kept; section and file symbols add noise
// without naming anything a branch or load would target.
func SymbolsFromELF(f *elf.File) (SymbolTable, error) {
	syms, err := f.Symbols()
	if err != nil {
		if err == elf.ErrNoSymbols {
			return SymbolTable{}, nil
		}
		return nil, fmt.Errorf("tools: reading ELF symbols: %w", err)
	}
	table := make(SymbolTable, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_FUNC, elf.STT_OBJECT:
		default:
			continue
		}
		table[uint32(s.Value)&^1] = s.Name
	}
	return table, nil
}

// ReferenceKind classifies why an instruction names another address.
type ReferenceKind int

const (
	RefBranch ReferenceKind = iota
	RefCall
	RefLiteral
)

func (k ReferenceKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefCall:
		return "call"
	case RefLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Reference is one resolved cross-reference: an instruction address that
// names another address, and the symbol name at that target, if known.
type Reference struct {
	From   uint32
	To     uint32
	Symbol string
	Kind   ReferenceKind
}

// Collect scans instrs for branch/BL/PC-relative-literal operands and
// resolves each target's address against table, in instruction address
// order. An unresolved target still produces a Reference, with an empty
// Symbol — the caller (a disassembly listing) renders those as bare hex.
func Collect(instrs []*decode.Instruction, table SymbolTable) []*Reference {
	var refs []*Reference
	for _, instr := range instrs {
		kind, ok := referenceKind(instr.Mnemonic)
		if !ok {
			continue
		}
		for _, op := range instr.Operands {
			label, ok := op.(decode.LabelOperand)
			if !ok {
				continue
			}
			to := uint32(int64(instr.Address) + 4 + int64(label.Offset))
			refs = append(refs, &Reference{
				From:   instr.Address,
				To:     to,
				Symbol: table[to],
				Kind:   kind,
			})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].From < refs[j].From })
	return refs
}

func referenceKind(mnemonic string) (ReferenceKind, bool) {
	switch mnemonic {
	case "bl":
		return RefCall, true
	case "b":
		return RefBranch, true
	case "ldr":
		return RefLiteral, true
	default:
		return 0, false
	}
}

// Annotate renders target as a bare hex address, or "name (0xhex)" when
// table names it.
func Annotate(target uint32, table SymbolTable) string {
	if name, ok := table[target]; ok {
		return fmt.Sprintf("%s (%#x)", name, target)
	}
	return fmt.Sprintf("%#x", target)
}

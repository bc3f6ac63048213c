package tools

import (
	"testing"

	"github.com/dmillard/thumbsim/decode"
)

func TestCollectResolvesBranchTarget(t *testing.T) {
	// b .+4 at address 0x1000: target = 0x1000 + 4 + 4 = 0x1008
	instr, err := decode.Decode([]byte{0x02, 0xE0}, 0x1000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	table := SymbolTable{0x1008: "loop_start"}

	refs := Collect([]*decode.Instruction{instr}, table)
	if len(refs) != 1 {
		t.Fatalf("Collect: got %d references, want 1", len(refs))
	}
	r := refs[0]
	if r.To != 0x1008 {
		t.Errorf("To = %#x, want 0x1008", r.To)
	}
	if r.Symbol != "loop_start" {
		t.Errorf("Symbol = %q, want loop_start", r.Symbol)
	}
	if r.Kind != RefBranch {
		t.Errorf("Kind = %v, want RefBranch", r.Kind)
	}
}

func TestCollectUnresolvedTargetHasEmptySymbol(t *testing.T) {
	instr, err := decode.Decode([]byte{0x02, 0xE0}, 0x1000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	refs := Collect([]*decode.Instruction{instr}, SymbolTable{})
	if len(refs) != 1 {
		t.Fatalf("Collect: got %d references, want 1", len(refs))
	}
	if refs[0].Symbol != "" {
		t.Errorf("Symbol = %q, want empty", refs[0].Symbol)
	}
}

func TestCollectSkipsNonReferencingInstructions(t *testing.T) {
	instr, err := decode.Decode([]byte{0x01, 0x20}, 0) // movs r0, #1
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	refs := Collect([]*decode.Instruction{instr}, SymbolTable{})
	if len(refs) != 0 {
		t.Errorf("Collect: got %d references, want 0", len(refs))
	}
}

func TestAnnotateFallsBackToHex(t *testing.T) {
	got := Annotate(0x2000, SymbolTable{})
	if got != "0x2000" {
		t.Errorf("Annotate = %q, want 0x2000", got)
	}
}

func TestAnnotateUsesSymbolName(t *testing.T) {
	got := Annotate(0x2000, SymbolTable{0x2000: "main"})
	if got != "main (0x2000)" {
		t.Errorf("Annotate = %q, want main (0x2000)", got)
	}
}

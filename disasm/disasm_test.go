package disasm

import (
	"testing"
)

func TestAllDecodesSequentialInstructions(t *testing.T) {
	// movs r0, #1 (0x2001); bx lr (0x4770)
	data := []byte{0x01, 0x20, 0x70, 0x47}
	instrs, err := New().All(data, 0x1000)
	if err != nil {
		t.Fatalf("All: unexpected error: %v", err)
	}
	if len(instrs) != 2 {
		t.Fatalf("All: got %d instructions, want 2", len(instrs))
	}
	if instrs[0].Mnemonic != "movs" || instrs[0].Address != 0x1000 {
		t.Errorf("instrs[0] = %q@%#x, want movs@0x1000", instrs[0].Mnemonic, instrs[0].Address)
	}
	if instrs[1].Mnemonic != "bx" || instrs[1].Address != 0x1002 {
		t.Errorf("instrs[1] = %q@%#x, want bx@0x1002", instrs[1].Mnemonic, instrs[1].Address)
	}
}

func TestAllDropsTrailingShortTail(t *testing.T) {
	// One valid 16-bit instruction followed by a single stray byte.
	data := []byte{0x01, 0x20, 0x00}
	instrs, err := New().All(data, 0)
	if err != nil {
		t.Fatalf("All: unexpected error: %v", err)
	}
	if len(instrs) != 1 {
		t.Fatalf("All: got %d instructions, want 1 (trailing byte dropped)", len(instrs))
	}
}

func TestDisasmStopsEarlyWhenConsumerStops(t *testing.T) {
	data := []byte{0x01, 0x20, 0x01, 0x20, 0x01, 0x20}
	count := 0
	for range New().Disasm(data, 0) {
		count++
		if count == 1 {
			break
		}
	}
	if count != 1 {
		t.Errorf("consumer saw %d instructions before breaking, want 1", count)
	}
}

package format

import (
	"strings"
	"testing"

	"github.com/dmillard/thumbsim/decode"
)

func TestFormatMovsImmediate(t *testing.T) {
	instr, err := decode.Decode([]byte{0x42, 0x20}, 0x1000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	got := New().Format(instr)
	if !strings.Contains(got, "2042") {
		t.Errorf("Format() = %q, want hex bytes 2042", got)
	}
	if !strings.Contains(got, "movs") {
		t.Errorf("Format() = %q, want mnemonic movs", got)
	}
	if !strings.Contains(got, "#66") {
		t.Errorf("Format() = %q, want immediate #66 (0x42)", got)
	}
	if !strings.Contains(got, "0x42") {
		t.Errorf("Format() = %q, want hex comment 0x42", got)
	}
}

func TestFormatBxLrHasNoComment(t *testing.T) {
	instr, err := decode.Decode([]byte{0x70, 0x47}, 0)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	got := New().Format(instr)
	if strings.Contains(got, ";") {
		t.Errorf("Format() = %q, want no comment suffix", got)
	}
	if !strings.Contains(got, "bx") || !strings.Contains(got, "lr") {
		t.Errorf("Format() = %q, want bx lr", got)
	}
}

func TestFormatPushRegListCollapsesRuns(t *testing.T) {
	rendered := formatRegList([]int{0, 1, 2, 4})
	if rendered != "{r0-r2,r4}" {
		t.Errorf("formatRegList = %q, want {r0-r2,r4}", rendered)
	}
}

func TestFormatDsbBarrierOption(t *testing.T) {
	instr, err := decode.Decode([]byte{0xBF, 0xF3, 0x4F, 0x8F}, 0)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	got := New().Format(instr)
	if !strings.Contains(got, "sy") {
		t.Errorf("Format() = %q, want barrier option sy", got)
	}
}

func TestFormatLabelOperandAddsAbsoluteComment(t *testing.T) {
	// b.n with a positive 2-byte-aligned offset.
	instr, err := decode.Decode([]byte{0x02, 0xE0}, 0x2000)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	got := New().Format(instr)
	if !strings.Contains(got, "0x") {
		t.Errorf("Format() = %q, want an absolute-address comment", got)
	}
}

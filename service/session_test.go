package service

import "testing"

func TestStepAdvancesPC(t *testing.T) {
	s := NewSessionFromBytes([]byte{0x01, 0x20, 0x70, 0x47}, 0x1000, 0) // movs r0, #1; bx lr
	if err := s.Step(); err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	if got := s.RegisterState().PC; got != 0x1002 {
		t.Errorf("PC = %#x, want 0x1002", got)
	}
	if got := s.RegisterState().Registers[0]; got != 1 {
		t.Errorf("r0 = %d, want 1", got)
	}
}

func TestStepHaltsOnSVC(t *testing.T) {
	s := NewSessionFromBytes([]byte{0x00, 0xDF}, 0x1000, 0) // svc #0
	if err := s.Step(); err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	if got := s.ExecutionState(); got != StateHalted {
		t.Errorf("ExecutionState = %v, want StateHalted", got)
	}
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	// movs r0,#1 ; movs r1,#2 ; movs r2,#3 ; bx lr
	data := []byte{0x01, 0x20, 0x02, 0x21, 0x03, 0x22, 0x70, 0x47}
	s := NewSessionFromBytes(data, 0x1000, 0)
	s.AddBreakpoint(0x1004)

	if err := s.Continue(); err != nil {
		t.Fatalf("Continue: unexpected error: %v", err)
	}
	if got := s.ExecutionState(); got != StateBreakpoint {
		t.Errorf("ExecutionState = %v, want StateBreakpoint", got)
	}
	if got := s.RegisterState().PC; got != 0x1004 {
		t.Errorf("PC = %#x, want 0x1004", got)
	}
	if got := s.RegisterState().Registers[2]; got != 0 {
		t.Errorf("r2 = %d, want 0 (not yet executed)", got)
	}
}

func TestMemoryWriteIsTracked(t *testing.T) {
	// movs r0,#0x10 ; movs r1,#0x2A ; str r1,[r0]
	data := []byte{0x10, 0x20, 0x2A, 0x21, 0x01, 0x60}
	s := NewSessionFromBytes(data, 0x1000, 0)
	for i := 0; i < 3; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i, err)
		}
	}
	w := s.LastMemoryWrite()
	if w.Address != 0x10 || w.Value != 0x2A || w.Width != 32 {
		t.Errorf("LastMemoryWrite = %+v, want {Address:0x10 Value:0x2A Width:32}", w)
	}
}

func TestResetRewindsPC(t *testing.T) {
	s := NewSessionFromBytes([]byte{0x00, 0xBF}, 0x2000, 0) // nop
	if err := s.Step(); err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	s.Reset()
	if got := s.RegisterState().PC; got != 0x2000 {
		t.Errorf("PC after Reset = %#x, want 0x2000", got)
	}
}

func TestDisassemblyAnnotatesSymbols(t *testing.T) {
	s := NewSessionFromBytes([]byte{0x00, 0xBF, 0x70, 0x47}, 0x1000, 0) // nop; bx lr
	s.SetSymbols(map[uint32]string{0x1000: "start"})

	lines := s.Disassembly(0x1000, 2)
	if len(lines) != 2 {
		t.Fatalf("Disassembly returned %d lines, want 2", len(lines))
	}
	if lines[0].Symbol != "start" {
		t.Errorf("lines[0].Symbol = %q, want start", lines[0].Symbol)
	}
	if lines[1].Symbol != "" {
		t.Errorf("lines[1].Symbol = %q, want empty", lines[1].Symbol)
	}
}

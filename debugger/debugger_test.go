package debugger

import (
	"strings"
	"testing"

	"github.com/dmillard/thumbsim/service"
)

func newTestDebugger() *Debugger {
	s := service.NewSessionFromBytes([]byte{0x01, 0x20, 0x02, 0x21, 0x70, 0x47}, 0x1000, 0) // movs r0,#1; movs r1,#2; bx lr
	return NewDebugger(s)
}

func TestStepCommandAdvancesPC(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	regs := d.Session.RegisterState()
	if regs.PC != 0x1002 {
		t.Errorf("PC = %#x, want 0x1002", regs.PC)
	}
}

func TestBreakAndDeleteCommands(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("break 0x1002"); err != nil {
		t.Fatalf("break: %v", err)
	}
	if bps := d.Session.Breakpoints(); len(bps) != 1 || bps[0].Address != 0x1002 {
		t.Fatalf("Breakpoints = %v, want one at 0x1002", bps)
	}

	if err := d.ExecuteCommand("delete 0x1002"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if bps := d.Session.Breakpoints(); len(bps) != 0 {
		t.Errorf("Breakpoints = %v, want none", bps)
	}
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("break 0x1002"); err != nil {
		t.Fatalf("break: %v", err)
	}
	if err := d.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue: %v", err)
	}
	regs := d.Session.RegisterState()
	if regs.PC != 0x1002 {
		t.Errorf("PC = %#x, want 0x1002", regs.PC)
	}
	if d.Session.ExecutionState() != service.StateBreakpoint {
		t.Errorf("ExecutionState = %v, want StateBreakpoint", d.Session.ExecutionState())
	}
}

func TestEmptyCommandRepeatsLast(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := d.ExecuteCommand(""); err != nil {
		t.Fatalf("repeat step: %v", err)
	}
	regs := d.Session.RegisterState()
	if regs.PC != 0x1004 {
		t.Errorf("PC after repeated step = %#x, want 0x1004", regs.PC)
	}
}

func TestUnknownCommandReturnsError(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("frobnicate"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestListShowsDisassemblyAroundPC(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("list 0x1000"); err != nil {
		t.Fatalf("list: %v", err)
	}
	out := d.GetOutput()
	if !strings.Contains(out, "0x00001000") {
		t.Errorf("list output = %q, want a line for 0x1000", out)
	}
}

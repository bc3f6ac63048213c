// Package debugger implements an interactive front-end — CLI and TUI — over
// a service.Session, for stepping a Thumb image instruction by instruction
// and inspecting its register file, memory, and disassembly.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmillard/thumbsim/service"
)

// Debugger holds the interactive session state: the simulated session
// itself, plus the last command for repeat-on-enter (no further history).
//
// Unlike a source-level debugger, there is no call stack or source-line
// concept to step over or out of — Thumb images carry no symbol-scoped
// frame information — so the only stepping granularity offered is a
// single instruction. Breakpoints are address-only; there is no
// conditional-expression language to evaluate against them.
type Debugger struct {
	Session *service.Session

	Running     bool
	LastCommand string

	Output strings.Builder
}

// NewDebugger wraps session for interactive use.
func NewDebugger(session *service.Session) *Debugger {
	return &Debugger{Session: session}
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// ExecuteCommand parses and executes a single debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	return d.handleCommand(cmd, args)
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r", "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "print", "p", "info", "i":
		return d.cmdInfo(args)
	case "x":
		return d.cmdExamine(args)
	case "list", "l":
		return d.cmdList(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) cmdContinue(_ []string) error {
	d.Running = true
	if err := d.Session.Continue(); err != nil {
		d.Running = false
		return err
	}
	state := d.Session.ExecutionState()
	d.Running = state == service.StateRunning
	regs := d.Session.RegisterState()
	d.Printf("stopped: %s at PC=0x%08X\n", state, regs.PC)
	return nil
}

func (d *Debugger) cmdStep(_ []string) error {
	if err := d.Session.Step(); err != nil {
		return err
	}
	regs := d.Session.RegisterState()
	d.Printf("PC=0x%08X\n", regs.PC)
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	d.Session.AddBreakpoint(addr)
	d.Printf("breakpoint set at 0x%08X\n", addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: delete <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	d.Session.RemoveBreakpoint(addr)
	d.Printf("breakpoint removed at 0x%08X\n", addr)
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) > 0 && (args[0] == "breakpoints" || args[0] == "break") {
		for _, bp := range d.Session.Breakpoints() {
			d.Printf("  0x%08X\n", bp.Address)
		}
		return nil
	}

	regs := d.Session.RegisterState()
	for i := 0; i < 13; i++ {
		d.Printf("R%-2d: 0x%08X  ", i, regs.Registers[i])
		if i%4 == 3 {
			d.Println()
		}
	}
	d.Println()
	d.Printf("SP: 0x%08X  LR: 0x%08X  PC: 0x%08X\n", regs.Registers[13], regs.Registers[14], regs.PC)
	d.Printf("APSR: N=%v Z=%v C=%v V=%v\n", regs.APSR.N, regs.APSR.Z, regs.APSR.C, regs.APSR.V)
	return nil
}

func (d *Debugger) cmdExamine(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: x <address> [count]")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	count := uint32(16)
	if len(args) > 1 {
		n, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid count: %s", args[1])
		}
		count = uint32(n)
	}

	data := d.Session.Memory(addr, count)
	for i, b := range data {
		if i%16 == 0 {
			if i > 0 {
				d.Println()
			}
			d.Printf("0x%08X: ", addr+uint32(i)) // #nosec G115 -- i bounded by count
		}
		d.Printf("%02X ", b)
	}
	d.Println()
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	addr := d.Session.RegisterState().PC
	if len(args) > 0 {
		a, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		addr = a
	}

	for _, line := range d.Session.Disassembly(addr, 16) {
		marker := "  "
		if line.Address == d.Session.RegisterState().PC {
			marker = "->"
		}
		if line.Symbol != "" {
			d.Printf("%s 0x%08X <%s>: %s\n", marker, line.Address, line.Symbol, line.Text)
		} else {
			d.Printf("%s 0x%08X: %s\n", marker, line.Address, line.Text)
		}
	}
	return nil
}

func (d *Debugger) cmdReset(_ []string) error {
	d.Session.Reset()
	d.Running = false
	d.Println("session reset")
	return nil
}

func (d *Debugger) cmdHelp(_ []string) error {
	d.Println("commands:")
	d.Println("  run | continue  - run until breakpoint or halt")
	d.Println("  step            - execute one instruction")
	d.Println("  break <addr>    - set a breakpoint")
	d.Println("  delete <addr>   - remove a breakpoint")
	d.Println("  info            - show registers")
	d.Println("  info breakpoints - list breakpoints")
	d.Println("  x <addr> [n]    - examine memory")
	d.Println("  list [addr]     - disassemble from addr (default PC)")
	d.Println("  reset           - rewind PC to entry point")
	return nil
}

func parseAddress(s string) (uint32, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint32(v), nil
}

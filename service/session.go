// Package service wraps a cpu.CPU with the stepping, breakpoint, and
// inspection operations a debugger front-end needs, independent of
// whether that front-end is the TUI, the GUI, or the HTTP API.
package service

import (
	"debug/elf"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/dmillard/thumbsim/cpu"
	"github.com/dmillard/thumbsim/decode"
	"github.com/dmillard/thumbsim/format"
	"github.com/dmillard/thumbsim/loader"
	"github.com/dmillard/thumbsim/tools"
)

const (
	maxDisassemblyCount = 1000
	stepsBeforeYield    = 1000
)

var sessionLog *log.Logger

func init() {
	if os.Getenv("THUMBSIM_DEBUG") != "" {
		logPath := os.TempDir() + "/thumbsim-service-debug.log"
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			sessionLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			sessionLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		sessionLog = log.New(io.Discard, "", 0)
	}
}

// Session wraps a cpu.CPU plus a breakpoint set and run-state for a
// single simulated image. It is shared, behind its own mutex, by the
// TUI, GUI, and HTTP API front-ends — none of them touch the CPU
// directly.
type Session struct {
	mu sync.RWMutex

	cpu         *cpu.CPU
	mem         *cpu.Memory
	entryPoint  uint32
	symbols     tools.SymbolTable
	breakpoints map[uint32]bool
	running     bool
	state       ExecutionState
	lastWrite   MemoryWriteInfo
	fmtr        *format.Formatter
}

// NewSession wraps a freshly loaded CPU. opts.StackTop is honored by the
// loader before this constructor runs; NewSession only takes ownership of
// the already-loaded CPU and memory. The CPU's memory backend is rewrapped
// in a tracking shim so LastMemoryWrite has something to report.
func NewSession(c *cpu.CPU, mem *cpu.Memory, entryPoint uint32) *Session {
	s := &Session{
		cpu:         c,
		mem:         mem,
		entryPoint:  entryPoint,
		symbols:     tools.SymbolTable{},
		breakpoints: make(map[uint32]bool),
		state:       StateHalted,
		fmtr:        format.New(),
	}
	c.Mem = &trackingMemory{Memory: mem, onWrite: s.recordWrite}
	return s
}

// NewSessionFromBytes is a convenience constructor for a raw Thumb image,
// generalized from loader/loader.go's role of producing a ready-to-run
// CPU.
func NewSessionFromBytes(data []byte, loadAddress uint32, stackTop uint32) *Session {
	mem := cpu.NewMemory()
	mem.AddRange(loadAddress, append([]byte(nil), data...))
	c := cpu.New(mem)
	c.SetPC(loadAddress)
	if stackTop != 0 {
		c.SetSP(stackTop)
	}
	return NewSession(c, mem, loadAddress)
}

// NewSessionFromELF loads an ELF32 ARM image via loader.LoadELF and wraps
// the result in a Session, with the image's symbol table pre-installed.
func NewSessionFromELF(r io.ReaderAt, stackTop uint32) (*Session, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	defer f.Close()

	c, err := loader.LoadELF(r, loader.Options{StackTop: stackTop})
	if err != nil {
		return nil, err
	}
	mem, ok := c.Mem.(*cpu.Memory)
	if !ok {
		return nil, fmt.Errorf("service: unexpected memory backend from loader")
	}
	s := NewSession(c, mem, c.PC())

	table, err := tools.SymbolsFromELF(f)
	if err != nil {
		return nil, err
	}
	s.SetSymbols(table)
	return s, nil
}

// recordWrite is only ever invoked from within stepLocked, via the CPU's
// memory backend, while s.mu is already held — it must not lock it again.
func (s *Session) recordWrite(addr uint32, value uint32, width uint) {
	s.lastWrite = MemoryWriteInfo{Address: addr, Value: value, Width: width}
}

// trackingMemory wraps a *cpu.Memory so a Session can observe the most
// recent write without cpu.Memory itself needing any debugger-only
// bookkeeping.
type trackingMemory struct {
	*cpu.Memory
	onWrite func(addr, value uint32, width uint)
}

func (t *trackingMemory) WriteByte(addr uint32, v byte) {
	t.Memory.WriteByte(addr, v)
	t.onWrite(addr, uint32(v), 8)
}

func (t *trackingMemory) WriteHalfword(addr uint32, v uint16) {
	t.Memory.WriteHalfword(addr, v)
	t.onWrite(addr, uint32(v), 16)
}

func (t *trackingMemory) WriteWord(addr uint32, v uint32) {
	t.Memory.WriteWord(addr, v)
	t.onWrite(addr, v, 32)
}

// SetSymbols installs a symbol table recovered from an ELF image (see
// tools.SymbolsFromELF), used to annotate disassembly and breakpoint
// validation.
func (s *Session) SetSymbols(table tools.SymbolTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = table
}

// RegisterState returns the current register file (thread-safe).
func (s *Session) RegisterState() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs [16]uint32
	for i := 0; i < 13; i++ {
		v, _ := s.cpu.Reg(i)
		regs[i] = uint32(v.Unsigned())
	}
	regs[cpu.RSP] = s.cpu.SP()
	regs[cpu.RLR] = s.cpu.LR()
	regs[cpu.RPC] = s.cpu.PC()

	apsr := s.cpu.APSR()
	return RegisterState{
		Registers: regs,
		APSR: APSRState{
			N: apsr.N(),
			Z: apsr.Z(),
			C: apsr.C(),
			V: apsr.V(),
		},
		PC: s.cpu.PC(),
	}
}

// fetch reads up to 4 bytes at addr from memory, little-endian, for
// decode.Decode — which itself determines whether 2 or 4 of them are
// actually consumed.
func (s *Session) fetch(addr uint32) []byte {
	w := s.mem.ReadWord(addr)
	return []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
}

// haltsOn reports whether mnemonic is one of this session's halt triggers.
// The architecture itself has no notion of "the program is done" — no OS
// personality is implemented here — so a Session treats svc, bkpt, and
// udf as the conventional "stop the run loop" signal, the same role
// SWI #0 plays for a hosted ARM2 program.
func haltsOn(mnemonic string) bool {
	switch mnemonic {
	case "svc", "bkpt", "udf":
		return true
	default:
		return false
	}
}

// Step decodes and executes a single instruction at PC.
func (s *Session) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

func (s *Session) stepLocked() error {
	pc := s.cpu.PC()
	instr, err := decode.Decode(s.fetch(pc), pc)
	if err != nil {
		s.state = StateError
		return fmt.Errorf("service: decode at %#x: %w", pc, err)
	}
	if err := instr.Execute(s.cpu); err != nil {
		s.state = StateError
		return fmt.Errorf("service: execute %s at %#x: %w", instr.Mnemonic, pc, err)
	}
	if haltsOn(instr.Mnemonic) {
		s.running = false
		s.state = StateHalted
	}
	return nil
}

// AddBreakpoint arms a breakpoint at address.
func (s *Session) AddBreakpoint(address uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakpoints[address] = true
}

// RemoveBreakpoint disarms a breakpoint at address.
func (s *Session) RemoveBreakpoint(address uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.breakpoints, address)
}

// Breakpoints returns all armed breakpoints, sorted by address is not
// guaranteed — callers that need a stable order should sort.
func (s *Session) Breakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]BreakpointInfo, 0, len(s.breakpoints))
	for addr, enabled := range s.breakpoints {
		result = append(result, BreakpointInfo{Address: addr, Enabled: enabled})
	}
	return result
}

// ClearBreakpoints removes every armed breakpoint.
func (s *Session) ClearBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakpoints = make(map[uint32]bool)
}

// Pause stops a Continue loop at its next opportunity.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Reset rewinds PC to the session's entry point without reloading memory.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cpu.SetPC(s.entryPoint)
	s.running = false
	s.state = StateHalted
}

// ExecutionState returns the run loop's current state.
func (s *Session) ExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Continue steps repeatedly until a breakpoint, a halt trigger (see
// haltsOn), or a decode/execute error stops the loop. It releases the
// session lock after every step, so a caller on another goroutine can
// observe state mid-run or stop the loop via Pause.
func (s *Session) Continue() error {
	s.mu.Lock()
	s.running = true
	s.state = StateRunning
	s.mu.Unlock()
	sessionLog.Println("Continue() started")

	steps := 0
	for {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			sessionLog.Println("Continue() paused")
			return nil
		}
		if s.breakpoints[s.cpu.PC()] {
			s.running = false
			s.state = StateBreakpoint
			s.mu.Unlock()
			sessionLog.Printf("Continue() hit breakpoint at %#x", s.cpu.PC())
			return nil
		}
		err := s.stepLocked()
		halted := s.state == StateHalted
		s.mu.Unlock()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		steps++
		if steps >= stepsBeforeYield {
			steps = 0
		}
	}
}

// Memory returns size bytes starting at address.
func (s *Session) Memory(address uint32, size uint32) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := make([]byte, size)
	for i := range data {
		data[i] = s.mem.ReadByte(address + uint32(i))
	}
	return data
}

// LastMemoryWrite returns the most recent write Step observed, for a UI
// to highlight without re-reading the whole address space.
func (s *Session) LastMemoryWrite() MemoryWriteInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastWrite
}

// Disassembly renders up to count instructions starting at startAddr.
// Each line's Symbol is the symbol defined at the instruction's own
// address, if any; branch, call and literal targets are not resolved to
// symbol names.
func (s *Session) Disassembly(startAddr uint32, count int) []DisassemblyLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count > maxDisassemblyCount {
		count = maxDisassemblyCount
	}
	lines := make([]DisassemblyLine, 0, count)
	addr := startAddr
	for i := 0; i < count; i++ {
		instr, err := decode.Decode(s.fetch(addr), addr)
		if err != nil {
			break
		}
		lines = append(lines, DisassemblyLine{
			Address: addr,
			Text:    s.fmtr.Format(instr),
			Symbol:  s.symbols[addr],
		})
		addr += instr.Size()
	}
	return lines
}

// Symbols returns the session's symbol table.
func (s *Session) Symbols() tools.SymbolTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbols
}

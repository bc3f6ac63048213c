package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmillard/thumbsim/service"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var debugLog *log.Logger

func init() {
	if os.Getenv("THUMBSIM_DEBUG") != "" {
		f, err := os.OpenFile("/tmp/thumbsim-gui-debug.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open debug log: %v\n", err)
			debugLog = log.New(os.Stderr, "GUI: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			debugLog = log.New(f, "GUI: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		debugLog = log.New(io.Discard, "", 0)
	}
}

// App is the Go-side binding for the Wails webview frontend. Its exported
// methods are callable directly from the embedded JS frontend.
type App struct {
	ctx     context.Context
	session *service.Session
}

// NewApp creates a new App with an empty image loaded at address 0.
func NewApp() *App {
	return &App{session: service.NewSessionFromBytes(nil, 0, 0)}
}

// startup is called when the webview starts.
func (a *App) startup(ctx context.Context) {
	debugLog.Println("startup() called")
	a.ctx = ctx
}

// LoadImage loads a raw Thumb byte image at loadAddr.
func (a *App) LoadImage(data []byte, loadAddr uint32, stackTop uint32) error {
	const maxImageSize = 16 * 1024 * 1024
	if len(data) > maxImageSize {
		return fmt.Errorf("image too large: %d bytes (maximum %d bytes)", len(data), maxImageSize)
	}
	a.session = service.NewSessionFromBytes(data, loadAddr, stackTop)
	runtime.EventsEmit(a.ctx, "sim:state-changed")
	runtime.EventsEmit(a.ctx, "sim:image-loaded")
	return nil
}

// LoadImageFromFile opens a file dialog and loads a raw or ELF Thumb image.
func (a *App) LoadImageFromFile(elf bool, loadAddr uint32, stackTop uint32) error {
	filePath, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Load Thumb Image",
		Filters: []runtime.FileFilter{
			{DisplayName: "Binary images (*.bin, *.elf)", Pattern: "*.bin;*.elf"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open file dialog: %w", err)
	}
	if filePath == "" {
		return nil
	}

	const maxImageSize = 16 * 1024 * 1024
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > maxImageSize {
		return fmt.Errorf("file too large: %d bytes (maximum %d bytes)", info.Size(), maxImageSize)
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath comes from a user-driven OS file dialog
	if err != nil {
		runtime.EventsEmit(a.ctx, "sim:error", err.Error())
		return fmt.Errorf("failed to read file: %w", err)
	}

	if elf {
		s, err := service.NewSessionFromELF(newByteReaderAt(data), stackTop)
		if err != nil {
			runtime.EventsEmit(a.ctx, "sim:error", err.Error())
			return err
		}
		a.session = s
	} else {
		a.session = service.NewSessionFromBytes(data, loadAddr, stackTop)
	}

	runtime.EventsEmit(a.ctx, "sim:state-changed")
	runtime.EventsEmit(a.ctx, "sim:image-loaded", filePath)
	return nil
}

// GetRegisters returns the current register state.
func (a *App) GetRegisters() service.RegisterState {
	return a.session.RegisterState()
}

// Step executes a single instruction.
func (a *App) Step() error {
	debugLog.Println("Step() called")
	err := a.session.Step()
	if err == nil {
		runtime.EventsEmit(a.ctx, "sim:state-changed")
	} else {
		debugLog.Printf("Step() error: %v", err)
		runtime.EventsEmit(a.ctx, "sim:error", err.Error())
	}
	return err
}

// Continue runs until breakpoint or halt, asynchronously.
func (a *App) Continue() error {
	debugLog.Println("Continue() called - starting goroutine")
	ctx := a.ctx
	go func() {
		err := a.session.Continue()
		runtime.EventsEmit(ctx, "sim:state-changed")
		if err != nil {
			runtime.EventsEmit(ctx, "sim:error", err.Error())
		}
		if a.session.ExecutionState() == service.StateBreakpoint {
			runtime.EventsEmit(ctx, "sim:breakpoint-hit")
		}
	}()
	return nil
}

// Pause stops a Continue loop at its next opportunity.
func (a *App) Pause() {
	a.session.Pause()
	runtime.EventsEmit(a.ctx, "sim:state-changed")
}

// Reset rewinds PC to the session's entry point.
func (a *App) Reset() {
	a.session.Reset()
	runtime.EventsEmit(a.ctx, "sim:state-changed")
}

// AddBreakpoint arms a breakpoint at address.
func (a *App) AddBreakpoint(address uint32) {
	a.session.AddBreakpoint(address)
	runtime.EventsEmit(a.ctx, "sim:state-changed")
}

// RemoveBreakpoint disarms a breakpoint at address.
func (a *App) RemoveBreakpoint(address uint32) {
	a.session.RemoveBreakpoint(address)
	runtime.EventsEmit(a.ctx, "sim:state-changed")
}

// ToggleBreakpoint arms or disarms a breakpoint at address.
func (a *App) ToggleBreakpoint(address uint32) {
	for _, bp := range a.session.Breakpoints() {
		if bp.Address == address {
			a.RemoveBreakpoint(address)
			return
		}
	}
	a.AddBreakpoint(address)
}

// GetBreakpoints returns all armed breakpoints.
func (a *App) GetBreakpoints() []service.BreakpointInfo {
	return a.session.Breakpoints()
}

// GetMemory returns size bytes starting at address.
func (a *App) GetMemory(address uint32, size uint32) []byte {
	debugLog.Printf("GetMemory called: address=0x%08X, size=%d", address, size)
	return a.session.Memory(address, size)
}

// GetDisassembly returns count disassembled instructions starting at startAddr.
func (a *App) GetDisassembly(startAddr uint32, count int) []service.DisassemblyLine {
	return a.session.Disassembly(startAddr, count)
}

// GetLastMemoryWrite returns the most recent memory write observed.
func (a *App) GetLastMemoryWrite() service.MemoryWriteInfo {
	result := a.session.LastMemoryWrite()
	debugLog.Printf("GetLastMemoryWrite: address=0x%08X, width=%d", result.Address, result.Width)
	return result
}

// GetExecutionState returns the run loop's current state.
func (a *App) GetExecutionState() string {
	return string(a.session.ExecutionState())
}

// GetSymbols returns the loaded image's symbol table.
func (a *App) GetSymbols() map[uint32]string {
	return a.session.Symbols()
}

// byteReaderAt adapts a byte slice to io.ReaderAt, for service.NewSessionFromELF.
type byteReaderAt struct {
	data []byte
}

func newByteReaderAt(data []byte) *byteReaderAt {
	return &byteReaderAt{data: data}
}

func (r *byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

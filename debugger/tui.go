package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the full-screen terminal front-end for a Debugger.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

// NewTUI builds a TUI bound to dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 1, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text)) // ignore write errors in TUI
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from the session's current state.
func (t *TUI) RefreshAll() {
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateRegisterView redraws the register panel.
func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	regs := t.Debugger.Session.RegisterState()
	var lines []string

	for i := 0; i < 13/RegisterGroupSize+1; i++ {
		var cols []string
		for j := 0; j < RegisterGroupSize; j++ {
			reg := i*RegisterGroupSize + j
			if reg > 12 {
				break
			}
			cols = append(cols, fmt.Sprintf("R%-2d: 0x%08X", reg, regs.Registers[reg]))
		}
		if len(cols) > 0 {
			lines = append(lines, strings.Join(cols, "  "))
		}
	}
	lines = append(lines, fmt.Sprintf("SP : 0x%08X  LR : 0x%08X  PC : 0x%08X", regs.Registers[13], regs.Registers[14], regs.PC))
	lines = append(lines, "")

	flags := flagGlyph('N', regs.APSR.N) + flagGlyph('Z', regs.APSR.Z) + flagGlyph('C', regs.APSR.C) + flagGlyph('V', regs.APSR.V)
	lines = append(lines, fmt.Sprintf("APSR flags: %s", flags))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func flagGlyph(name byte, set bool) string {
	if set {
		return fmt.Sprintf("[green]%c[white]", name)
	}
	return strings.ToLower(string(name))
}

// UpdateMemoryView redraws the memory hex dump panel.
func (t *TUI) UpdateMemoryView() {
	t.MemoryView.Clear()

	addr := t.MemoryAddress
	if addr == 0 {
		addr = t.Debugger.Session.RegisterState().PC
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: 0x%08X[white]", addr))

	data := t.Debugger.Session.Memory(addr, MemoryDisplayRows*MemoryDisplayColumns)
	for row := 0; row < MemoryDisplayRows; row++ {
		rowAddr := addr + uint32(row*MemoryDisplayColumns) // #nosec G115 -- row bounded by const MemoryDisplayRows
		line := fmt.Sprintf("0x%08X: ", rowAddr)

		var hexBytes []string
		var asciiBytes []byte
		for col := 0; col < MemoryDisplayColumns; col++ {
			b := data[row*MemoryDisplayColumns+col]
			hexBytes = append(hexBytes, fmt.Sprintf("%02X", b))
			if b >= 32 && b < 127 {
				asciiBytes = append(asciiBytes, b)
			} else {
				asciiBytes = append(asciiBytes, '.')
			}
		}
		line += strings.Join(hexBytes, " ") + "  " + string(asciiBytes)
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView redraws the stack panel, word by word from SP.
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	regs := t.Debugger.Session.RegisterState()
	sp := regs.Registers[13]

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Stack Pointer: 0x%08X[white]", sp))

	data := t.Debugger.Session.Memory(sp, StackDisplayWords*4)
	symbols := t.Debugger.Session.Symbols()
	for i := 0; i < StackDisplayWords; i++ {
		addr := sp + uint32(i*4) // #nosec G115 -- i bounded by const StackDisplayWords
		word := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24

		marker := "  "
		if addr == sp {
			marker = "->"
		}

		line := fmt.Sprintf("%s 0x%08X: 0x%08X", marker, addr, word)
		if sym, ok := symbols[word]; ok {
			line += fmt.Sprintf(" <%s>", sym)
		}
		lines = append(lines, line)
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateDisassemblyView redraws the disassembly panel around PC.
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()

	pc := t.Debugger.Session.RegisterState().PC
	breakpoints := make(map[uint32]bool)
	for _, bp := range t.Debugger.Session.Breakpoints() {
		breakpoints[bp.Address] = true
	}

	startAddr := pc
	if pc >= DisassemblyLinesBefore*2 {
		startAddr = pc - DisassemblyLinesBefore*2
	}

	var lines []string
	for _, line := range t.Debugger.Session.Disassembly(startAddr, DisassemblyLinesTotal) {
		marker := "  "
		color := "white"
		if line.Address == pc {
			marker = "->"
			color = "yellow"
		} else if breakpoints[line.Address] {
			marker = "* "
		}

		text := fmt.Sprintf("[%s]%s 0x%08X: %s", color, marker, line.Address, line.Text)
		if line.Symbol != "" {
			text += fmt.Sprintf("  <%s>", line.Symbol)
		}
		lines = append(lines, text+"[white]")
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView redraws the breakpoints panel.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	bps := t.Debugger.Session.Breakpoints()
	var lines []string
	if len(bps) == 0 {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	} else {
		symbols := t.Debugger.Session.Symbols()
		for _, bp := range bps {
			line := fmt.Sprintf("  0x%08X", bp.Address)
			if sym, ok := symbols[bp.Address]; ok {
				line += fmt.Sprintf(" <%s>", sym)
			}
			lines = append(lines, line)
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]thumbsim debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for the command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop ends the TUI event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}

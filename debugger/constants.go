package debugger

// Disassembly View Context Constants
const (
	// DisassemblyLinesBefore is the number of instructions to show before PC.
	DisassemblyLinesBefore = 8

	// DisassemblyLinesTotal is the total number of instructions shown.
	DisassemblyLinesTotal = 20
)

// Memory Display Constants
const (
	// MemoryDisplayRows is the number of rows to show in the memory hex dump view.
	MemoryDisplayRows = 16

	// MemoryDisplayColumns is the number of bytes per row in the memory hex dump view.
	MemoryDisplayColumns = 16
)

// Stack Display Constants
const (
	// StackDisplayWords is the number of 32-bit words to show in the stack view.
	StackDisplayWords = 16
)

// Register Display Constants
const (
	// RegisterViewRows is the fixed height of the register view panel.
	RegisterViewRows = 9

	// RegisterGroupSize is the number of registers displayed per row.
	RegisterGroupSize = 4
)

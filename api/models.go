package api

import (
	"time"

	"github.com/dmillard/thumbsim/service"
)

// SessionCreateRequest is a request to create a new session. Image is the
// raw Thumb byte image (or an ELF32 image, when ELF is true), base64
// encoded by encoding/json's []byte handling.
type SessionCreateRequest struct {
	Image    []byte `json:"image"`
	ELF      bool   `json:"elf,omitempty"`
	LoadAddr uint32 `json:"loadAddr,omitempty"`
	StackTop uint32 `json:"stackTop,omitempty"`
}

// SessionCreateResponse is the response from creating a session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse is the current status of a session.
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint32 `json:"pc"`
	HasWrite  bool   `json:"hasWrite"`
	WriteAddr uint32 `json:"writeAddr,omitempty"`
}

// RegistersResponse is the current register state.
type RegistersResponse struct {
	R0   uint32    `json:"r0"`
	R1   uint32    `json:"r1"`
	R2   uint32    `json:"r2"`
	R3   uint32    `json:"r3"`
	R4   uint32    `json:"r4"`
	R5   uint32    `json:"r5"`
	R6   uint32    `json:"r6"`
	R7   uint32    `json:"r7"`
	R8   uint32    `json:"r8"`
	R9   uint32    `json:"r9"`
	R10  uint32    `json:"r10"`
	R11  uint32    `json:"r11"`
	R12  uint32    `json:"r12"`
	SP   uint32    `json:"sp"`
	LR   uint32    `json:"lr"`
	PC   uint32    `json:"pc"`
	APSR APSRFlags `json:"apsr"`
}

// APSRFlags is the APSR condition-flag bits.
type APSRFlags struct {
	N bool `json:"n"`
	Z bool `json:"z"`
	C bool `json:"c"`
	V bool `json:"v"`
}

// MemoryResponse is a block of memory read from a session.
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
	Length  uint32 `json:"length"`
}

// DisassemblyResponse is a run of disassembled instructions.
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// InstructionInfo is a single disassembled instruction.
type InstructionInfo struct {
	Address     uint32 `json:"address"`
	Disassembly string `json:"disassembly"`
	Symbol      string `json:"symbol,omitempty"`
}

// BreakpointRequest adds or removes a breakpoint.
type BreakpointRequest struct {
	Address uint32 `json:"address"`
}

// BreakpointsResponse is a list of armed breakpoints.
type BreakpointsResponse struct {
	Breakpoints []uint32 `json:"breakpoints"`
}

// ErrorResponse is returned on any request failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse is a simple acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ToRegisterResponse converts a service.RegisterState to its API response.
func ToRegisterResponse(regs *service.RegisterState) *RegistersResponse {
	return &RegistersResponse{
		R0:  regs.Registers[0],
		R1:  regs.Registers[1],
		R2:  regs.Registers[2],
		R3:  regs.Registers[3],
		R4:  regs.Registers[4],
		R5:  regs.Registers[5],
		R6:  regs.Registers[6],
		R7:  regs.Registers[7],
		R8:  regs.Registers[8],
		R9:  regs.Registers[9],
		R10: regs.Registers[10],
		R11: regs.Registers[11],
		R12: regs.Registers[12],
		SP:  regs.Registers[13],
		LR:  regs.Registers[14],
		PC:  regs.PC,
		APSR: APSRFlags{
			N: regs.APSR.N,
			Z: regs.APSR.Z,
			C: regs.APSR.C,
			V: regs.APSR.V,
		},
	}
}

// ToInstructionInfo converts a service.DisassemblyLine to its API response.
func ToInstructionInfo(line *service.DisassemblyLine) InstructionInfo {
	return InstructionInfo{
		Address:     line.Address,
		Disassembly: line.Text,
		Symbol:      line.Symbol,
	}
}

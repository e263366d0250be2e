package vm

import "context"

// Opcodes, one per 4-bit value in bits 15..12 of an instruction word.
const (
	opBR   uint16 = 0b0000
	opADD  uint16 = 0b0001
	opLD   uint16 = 0b0010
	opST   uint16 = 0b0011
	opJSR  uint16 = 0b0100
	opAND  uint16 = 0b0101
	opLDR  uint16 = 0b0110
	opSTR  uint16 = 0b0111
	opRTI  uint16 = 0b1000
	opNOT  uint16 = 0b1001
	opLDI  uint16 = 0b1010
	opSTI  uint16 = 0b1011
	opJMP  uint16 = 0b1100
	opRES  uint16 = 0b1101
	opLEA  uint16 = 0b1110
	opTRAP uint16 = 0b1111
)

// Outcome is the three-way result of executing one instruction.
type Outcome int

const (
	stepContinue Outcome = iota
	stepHalt
	stepAbort
)

// Outcome constants exposed for callers outside this package (e.g. a
// -trace execution log) that want to branch on Machine.Step's result.
const (
	OutcomeContinue = stepContinue
	OutcomeHalt     = stepHalt
	OutcomeAbort    = stepAbort
)

// opHandler executes one decoded instruction against m. ctx is threaded
// through so the TRAP handlers that block on a Console read (GETC, IN)
// can honor cancellation; every other handler ignores it.
type opHandler func(ctx context.Context, m *Machine, instr uint16) (Outcome, error)

// dispatch is the dense 16-entry opcode table described in §9/§4.5.1: no
// switch, one function slot per top-4-bits value.
var dispatch = [16]opHandler{
	opBR:   execBR,
	opADD:  execADD,
	opLD:   execLD,
	opST:   execST,
	opJSR:  execJSR,
	opAND:  execAND,
	opLDR:  execLDR,
	opSTR:  execSTR,
	opRTI:  execIllegal,
	opNOT:  execNOT,
	opLDI:  execLDI,
	opSTI:  execSTI,
	opJMP:  execJMP,
	opRES:  execIllegal,
	opLEA:  execLEA,
	opTRAP: execTRAP,
}

func execIllegal(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	return stepAbort, &StepError{Kind: IllegalOpcode, PC: m.pc - 1}
}

package vm

import (
	"context"
	"errors"
)

// Trap vectors. Only these six are defined; anything else executed via
// TRAP is an UnknownTrap fatal abort (§7, §9.1 — the rewrite's chosen
// disposition over the historical silent no-op).
const (
	trapGETC  uint16 = 0x20
	trapOUT   uint16 = 0x21
	trapPUTS  uint16 = 0x22
	trapIN    uint16 = 0x23
	trapPUTSP uint16 = 0x24
	trapHALT  uint16 = 0x25
)

type trapHandler func(ctx context.Context, m *Machine) (Outcome, error)

var trapTable = map[uint16]trapHandler{
	trapGETC:  trapGetc,
	trapOUT:   trapOut,
	trapPUTS:  trapPuts,
	trapIN:    trapIn,
	trapPUTSP: trapPutsp,
	trapHALT:  trapHalt,
}

func execTRAP(ctx context.Context, m *Machine, instr uint16) (Outcome, error) {
	m.reg[R7] = m.pc

	vector := instr & 0xFF
	handler, ok := trapTable[vector]
	if !ok {
		return stepAbort, &StepError{
			Kind:   UnknownTrap,
			PC:     m.pc - 1,
			Detail: hexByte(vector),
		}
	}
	return handler(ctx, m)
}

// readErr classifies a failed Console.ReadByte: a context cancellation
// is a HostInterrupt (the documented blocking-read cancellation point,
// §5), anything else is a HostIOError.
func readErr(m *Machine, err error) *StepError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &StepError{Kind: HostInterrupt, PC: m.pc - 1, Err: err}
	}
	return &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
}

func trapGetc(ctx context.Context, m *Machine) (Outcome, error) {
	b, err := m.console.ReadByte(ctx)
	if err != nil {
		return stepAbort, readErr(m, err)
	}
	m.reg[R0] = uint16(b)
	return stepContinue, nil
}

func trapOut(_ context.Context, m *Machine) (Outcome, error) {
	if err := m.console.WriteByte(byte(m.reg[R0])); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}
	if err := m.console.Flush(); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}
	return stepContinue, nil
}

func trapPuts(_ context.Context, m *Machine) (Outcome, error) {
	addr := m.reg[R0]
	for {
		word := m.read(addr)
		if word == 0 {
			break
		}
		if err := m.console.WriteByte(byte(word)); err != nil {
			return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
		}
		addr++
	}
	if err := m.console.Flush(); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}
	return stepContinue, nil
}

func trapIn(ctx context.Context, m *Machine) (Outcome, error) {
	for _, b := range []byte("Enter a char: ") {
		if err := m.console.WriteByte(b); err != nil {
			return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
		}
	}

	b, err := m.console.ReadByte(ctx)
	if err != nil {
		return stepAbort, readErr(m, err)
	}
	if err := m.console.WriteByte(b); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}
	if err := m.console.Flush(); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}

	m.reg[R0] = uint16(b)
	m.cond = updateFlags(m.reg[R0])
	return stepContinue, nil
}

func trapPutsp(_ context.Context, m *Machine) (Outcome, error) {
	addr := m.reg[R0]
	for {
		word := m.read(addr)
		if word == 0 {
			break
		}

		if lo := byte(word); lo != 0 {
			if err := m.console.WriteByte(lo); err != nil {
				return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
			}
		}

		if hi := byte(word >> 8); hi != 0 {
			if err := m.console.WriteByte(hi); err != nil {
				return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
			}
		}
		addr++
	}
	if err := m.console.Flush(); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}
	return stepContinue, nil
}

func trapHalt(_ context.Context, m *Machine) (Outcome, error) {
	for _, b := range []byte("HALT\n") {
		if err := m.console.WriteByte(b); err != nil {
			return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
		}
	}
	if err := m.console.Flush(); err != nil {
		return stepAbort, &StepError{Kind: HostIOError, PC: m.pc - 1, Err: err}
	}
	return stepHalt, nil
}

func hexByte(v uint16) string {
	const digits = "0123456789abcdef"
	return "0x" + string(digits[(v>>4)&0xF]) + string(digits[v&0xF])
}

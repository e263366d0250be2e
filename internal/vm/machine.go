package vm

import "context"

// Machine owns one LC-3 run end to end: the 65536-word address space, the
// eight general registers, PC, COND, and the Console it talks to for
// keyboard polling and trap I/O. Nothing about instruction semantics is
// package-level state - a test builds its own Machine with a scripted
// Console and inspects it directly.
type Machine struct {
	mem  *memory
	reg  [numRegisters]uint16
	pc   uint16
	cond uint16

	console Console
}

// NewMachine constructs a Machine with PC at the conventional start
// address and COND initialized to ZRO, matching the reference VM's
// reset state.
func NewMachine(console Console) *Machine {
	m := &Machine{
		pc:      PCStart,
		cond:    FlagZro,
		console: console,
	}
	m.mem = newMemory(console)
	return m
}

// LoadWord writes value directly into memory at addr. Used by the image
// loader; bypasses KBSR/KBDR side effects since it is not a guest access.
func (m *Machine) LoadWord(addr, value uint16) {
	m.mem.cells[addr] = value
}

// Reg returns the current value of general register r (0..7).
func (m *Machine) Reg(r int) uint16 {
	return m.reg[r]
}

// PC returns the current program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// Cond returns the current condition flags (exactly one of FlagPos,
// FlagZro, FlagNeg set).
func (m *Machine) Cond() uint16 {
	return m.cond
}

// MemAt returns the raw memory cell at addr, bypassing any KBSR/KBDR
// side effects. Intended for tests and the -trace dump.
func (m *Machine) MemAt(addr uint16) uint16 {
	return m.mem.cells[addr]
}

func (m *Machine) read(addr uint16) uint16 {
	return m.mem.read(addr)
}

func (m *Machine) write(addr uint16, value uint16) {
	m.mem.write(addr, value)
}

// Step fetches, decodes and executes exactly one instruction. ctx is
// only consulted by handlers that block on the Console (GETC, IN); every
// other handler ignores it.
func (m *Machine) Step(ctx context.Context) (Outcome, error) {
	instr := m.read(m.pc)
	m.pc++

	op := instr >> 12
	handler := dispatch[op]
	return handler(ctx, m, instr)
}

// RegisterSnapshot is a point-in-time copy of the register file, used by
// the -trace execution log. It carries no behavior of its own.
type RegisterSnapshot struct {
	R    [numRegisters]uint16
	PC   uint16
	Cond uint16
}

// StepTraced is Step plus a RegisterSnapshot taken immediately after the
// instruction executes, for non-interactive execution logging.
func (m *Machine) StepTraced(ctx context.Context) (Outcome, error, RegisterSnapshot) {
	outcome, err := m.Step(ctx)
	return outcome, err, RegisterSnapshot{R: m.reg, PC: m.pc, Cond: m.cond}
}

// Run executes instructions until Halt, an abort, or ctx is cancelled.
// The context is checked between instructions, and additionally inside
// Step by any handler blocked on a Console read (GETC, IN), matching
// §5's "observed only between instructions or at a blocking read
// boundary" cancellation rule.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return &StepError{Kind: HostInterrupt, PC: m.pc, Err: ctx.Err()}
		default:
		}

		outcome, err := m.Step(ctx)
		switch outcome {
		case stepHalt:
			return nil
		case stepAbort:
			return err
		}
	}
}

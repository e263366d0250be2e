package vm

import "context"

// Each handler receives the already-fetched instruction word; m.pc has
// already been post-incremented past it, so PC-relative offsets are added
// to the address of the *next* instruction, per §4.2.

func execADD(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	sr1 := (instr >> 6) & 0x7

	var result uint16
	if (instr>>5)&0x1 == 1 {
		imm5 := signExtend(instr&0x1F, 5)
		result = m.reg[sr1] + imm5
	} else {
		sr2 := instr & 0x7
		result = m.reg[sr1] + m.reg[sr2]
	}

	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execAND(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	sr1 := (instr >> 6) & 0x7

	var result uint16
	if (instr>>5)&0x1 == 1 {
		imm5 := signExtend(instr&0x1F, 5)
		result = m.reg[sr1] & imm5
	} else {
		sr2 := instr & 0x7
		result = m.reg[sr1] & m.reg[sr2]
	}

	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execNOT(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	sr := (instr >> 6) & 0x7

	result := ^m.reg[sr]
	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execBR(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	nzp := (instr >> 9) & 0x7
	pcOffset9 := instr & 0x1FF

	if nzp&m.cond != 0 {
		m.pc += signExtend(pcOffset9, 9)
	}
	return stepContinue, nil
}

func execJMP(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	baseR := (instr >> 6) & 0x7
	m.pc = m.reg[baseR]
	return stepContinue, nil
}

func execJSR(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	m.reg[R7] = m.pc

	if (instr>>11)&0x1 == 1 {
		pcOffset11 := instr & 0x7FF
		m.pc += signExtend(pcOffset11, 11)
	} else {
		baseR := (instr >> 6) & 0x7
		m.pc = m.reg[baseR]
	}
	return stepContinue, nil
}

func execLD(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	pcOffset9 := instr & 0x1FF

	result := m.read(m.pc + signExtend(pcOffset9, 9))
	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execLDI(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	pcOffset9 := instr & 0x1FF

	addr := m.read(m.pc + signExtend(pcOffset9, 9))
	result := m.read(addr)
	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execLDR(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	baseR := (instr >> 6) & 0x7
	offset6 := instr & 0x3F

	result := m.read(m.reg[baseR] + signExtend(offset6, 6))
	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execLEA(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	dr := (instr >> 9) & 0x7
	pcOffset9 := instr & 0x1FF

	result := m.pc + signExtend(pcOffset9, 9)
	m.reg[dr] = result
	m.cond = updateFlags(result)
	return stepContinue, nil
}

func execST(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	sr := (instr >> 9) & 0x7
	pcOffset9 := instr & 0x1FF

	m.write(m.pc+signExtend(pcOffset9, 9), m.reg[sr])
	return stepContinue, nil
}

func execSTI(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	sr := (instr >> 9) & 0x7
	pcOffset9 := instr & 0x1FF

	addr := m.read(m.pc + signExtend(pcOffset9, 9))
	m.write(addr, m.reg[sr])
	return stepContinue, nil
}

func execSTR(_ context.Context, m *Machine, instr uint16) (Outcome, error) {
	sr := (instr >> 9) & 0x7
	baseR := (instr >> 6) & 0x7
	offset6 := instr & 0x3F

	m.write(m.reg[baseR]+signExtend(offset6, 6), m.reg[sr])
	return stepContinue, nil
}

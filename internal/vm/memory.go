package vm

import "context"

// MemorySize is the total number of 16-bit cells addressable by the
// machine: the full range of a 16-bit address.
const MemorySize = 1 << 16

// Memory-mapped I/O addresses. Reads of KBSR poll the attached Console;
// writes to either address are accepted but have no effect on the host -
// the next KBSR read clobbers them.
const (
	KBSR uint16 = 0xFE00
	KBDR uint16 = 0xFE02
)

// memory is a flat array of 65536 words, zero-initialized, with special
// read semantics at KBSR/KBDR routed through a Console.
type memory struct {
	cells   [MemorySize]uint16
	console Console
}

func newMemory(console Console) *memory {
	return &memory{console: console}
}

// read returns the word at addr, polling the keyboard console first when
// addr is KBSR.
func (m *memory) read(addr uint16) uint16 {
	if addr == KBSR {
		if m.console != nil && m.console.Poll() {
			// Poll already reported a byte ready, so this never blocks;
			// no caller-supplied ctx is available at this call site.
			b, err := m.console.ReadByte(context.Background())
			if err == nil {
				m.cells[KBSR] = 0x8000
				m.cells[KBDR] = uint16(b)
			} else {
				m.cells[KBSR] = 0
			}
		} else {
			m.cells[KBSR] = 0
		}
	}
	return m.cells[addr]
}

// write stores value at addr unconditionally. Guest writes to KBSR/KBDR
// are permitted here; they are simply overwritten on the next read of
// KBSR, matching the spec's documented no-op-on-host behavior.
func (m *memory) write(addr uint16, value uint16) {
	m.cells[addr] = value
}

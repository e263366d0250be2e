package loader

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// fakeMachine is a minimal Writer for exercising Load without pulling in
// the vm package; it just records every word written, matching invariant
// 6 (image load round-trip) from the spec.
type fakeMachine struct {
	cells map[uint16]uint16
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{cells: make(map[uint16]uint16)}
}

func (f *fakeMachine) LoadWord(addr, value uint16) {
	f.cells[addr] = value
}

func encodeImage(origin uint16, words []uint16) []byte {
	buf := make([]byte, 2+2*len(words))
	binary.BigEndian.PutUint16(buf[0:2], origin)
	for i, w := range words {
		binary.BigEndian.PutUint16(buf[2+2*i:4+2*i], w)
	}
	return buf
}

func TestLoadRoundTrip(t *testing.T) {
	origin := uint16(0x3000)
	words := []uint16{0x1111, 0x2222, 0x3333, 0xBEEF}

	m := newFakeMachine()
	if err := Load(m, bytes.NewReader(encodeImage(origin, words))); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	for i, want := range words {
		addr := origin + uint16(i)
		got, ok := m.cells[addr]
		if !ok {
			t.Errorf("mem[0x%04x] not written", addr)
			continue
		}
		if got != want {
			t.Errorf("mem[0x%04x] = 0x%04x, want 0x%04x", addr, got, want)
		}
	}
	if len(m.cells) != len(words) {
		t.Errorf("wrote %d cells, want exactly %d (no stray writes)", len(m.cells), len(words))
	}
}

func TestLoadStopsAtEOF(t *testing.T) {
	m := newFakeMachine()
	// Declares an origin but provides no words at all.
	img := encodeImage(0x3000, nil)
	if err := Load(m, bytes.NewReader(img)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(m.cells) != 0 {
		t.Errorf("wrote %d cells from an empty image, want 0", len(m.cells))
	}
}

func TestLoadSequenceOverwrites(t *testing.T) {
	m := newFakeMachine()

	first := encodeImage(0x3000, []uint16{0xAAAA, 0xBBBB})
	second := encodeImage(0x3001, []uint16{0xCCCC})

	if err := Load(m, bytes.NewReader(first)); err != nil {
		t.Fatalf("first Load returned error: %v", err)
	}
	if err := Load(m, bytes.NewReader(second)); err != nil {
		t.Fatalf("second Load returned error: %v", err)
	}

	if got := m.cells[0x3000]; got != 0xAAAA {
		t.Errorf("mem[0x3000] = 0x%04x, want 0xAAAA (untouched by second image)", got)
	}
	if got := m.cells[0x3001]; got != 0xCCCC {
		t.Errorf("mem[0x3001] = 0x%04x, want 0xCCCC (overwritten by second image)", got)
	}
}

func TestLoadReachesTopOfAddressSpace(t *testing.T) {
	// Origin 0xFFFE with two words must be able to write through 0xFFFF,
	// the documented bound of 1<<16 - origin words.
	origin := uint16(0xFFFE)
	words := []uint16{0xAAAA, 0xBBBB}

	m := newFakeMachine()
	if err := Load(m, bytes.NewReader(encodeImage(origin, words))); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got := m.cells[0xFFFE]; got != 0xAAAA {
		t.Errorf("mem[0xfffe] = 0x%04x, want 0xAAAA", got)
	}
	if got, ok := m.cells[0xFFFF]; !ok || got != 0xBBBB {
		t.Errorf("mem[0xffff] = 0x%04x (ok=%v), want 0xBBBB written", got, ok)
	}
}

func TestLoadRejectsTruncatedOrigin(t *testing.T) {
	m := newFakeMachine()
	if err := Load(m, bytes.NewReader([]byte{0x30})); err == nil {
		t.Fatal("Load returned nil error for a truncated origin, want an error")
	}
}

package vm

import "context"

// Console is the host I/O collaborator the core talks to for keyboard
// polling and trap output. The real terminal-backed implementation lives
// outside this package (internal/term); tests use scriptedConsole below.
type Console interface {
	// Poll reports, without blocking, whether a byte is available to read.
	Poll() bool
	// ReadByte blocks until a byte is available or ctx is done, whichever
	// comes first. This is the one blocking-read boundary a host
	// interrupt can be observed at mid-instruction (§5).
	ReadByte(ctx context.Context) (byte, error)
	// WriteByte writes a single byte to host output.
	WriteByte(b byte) error
	// Flush flushes any buffered output.
	Flush() error
}

// scriptedConsole is a deterministic Console for tests: a fixed input
// sequence and a captured output buffer, no goroutines and no real
// terminal involved.
type scriptedConsole struct {
	input  []byte
	pos    int
	output []byte
}

func newScriptedConsole(input string) *scriptedConsole {
	return &scriptedConsole{input: []byte(input)}
}

func (c *scriptedConsole) Poll() bool {
	return c.pos < len(c.input)
}

func (c *scriptedConsole) ReadByte(ctx context.Context) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if c.pos >= len(c.input) {
		return 0, errEndOfScript
	}
	b := c.input[c.pos]
	c.pos++
	return b, nil
}

func (c *scriptedConsole) WriteByte(b byte) error {
	c.output = append(c.output, b)
	return nil
}

func (c *scriptedConsole) Flush() error {
	return nil
}

func (c *scriptedConsole) String() string {
	return string(c.output)
}

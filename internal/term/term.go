// Package term implements vm.Console against a real host terminal: raw
// mode so GETC/IN see individual keypresses, a background poller feeding
// a buffered channel so KBSR polling never blocks, and a buffered stdout
// writer. This is the terminal-setup-and-restoration collaborator the
// spec keeps outside the instruction-decode core.
package term

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const pollInterval = 5 * time.Millisecond

// Console drives stdin/stdout for one VM run. It satisfies vm.Console.
type Console struct {
	in  *os.File
	out *bufio.Writer

	raw      bool
	orig     unix.Termios
	keyBuf   chan byte
	stopPoll chan struct{}
}

// New builds a Console over stdin/stdout. Raw mode is entered immediately
// if stdin is a terminal (term.IsTerminal); otherwise the console reads
// stdin as a plain byte stream (e.g. piped input, test harnesses), never
// failing just because there is no tty to put in raw mode.
func New() (*Console, error) {
	c := &Console{
		in:       os.Stdin,
		out:      bufio.NewWriter(os.Stdout),
		keyBuf:   make(chan byte, 1),
		stopPoll: make(chan struct{}),
	}

	if term.IsTerminal(int(c.in.Fd())) {
		if err := c.enableRawMode(); err != nil {
			return nil, err
		}
		c.raw = true
	}

	go c.pollKeyboard()
	return c, nil
}

func (c *Console) enableRawMode() error {
	if err := termios.Tcgetattr(c.in.Fd(), &c.orig); err != nil {
		return err
	}
	raw := c.orig
	raw.Lflag &^= unix.ICANON | unix.ECHO
	return termios.Tcsetattr(c.in.Fd(), termios.TCSANOW, &raw)
}

// Close restores the original terminal mode (a no-op if raw mode was
// never entered) and stops the background poller. Safe to call multiple
// times.
func (c *Console) Close() error {
	select {
	case <-c.stopPoll:
	default:
		close(c.stopPoll)
	}

	if !c.raw {
		return nil
	}
	c.raw = false
	return termios.Tcsetattr(c.in.Fd(), termios.TCSANOW, &c.orig)
}

func (c *Console) pollKeyboard() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	buf := make([]byte, 1)
	for {
		select {
		case <-c.stopPoll:
			return
		case <-ticker.C:
			n, err := c.in.Read(buf)
			if err != nil || n == 0 {
				continue
			}
			select {
			case c.keyBuf <- buf[0]:
			case <-c.stopPoll:
				return
			}
		}
	}
}

// Poll reports whether a polled byte is waiting in the buffer.
func (c *Console) Poll() bool {
	return len(c.keyBuf) > 0
}

// ReadByte blocks until a byte arrives from the poller or ctx is done,
// whichever comes first.
func (c *Console) ReadByte(ctx context.Context) (byte, error) {
	select {
	case b, ok := <-c.keyBuf:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WriteByte writes a single byte to buffered stdout.
func (c *Console) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

// Flush flushes buffered stdout.
func (c *Console) Flush() error {
	return c.out.Flush()
}

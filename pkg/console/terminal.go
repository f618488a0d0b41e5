//go:build !windows

package console

import (
	"errors"
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"

	"gochip8/pkg/cpu"
)

var ErrTooSmall = errors.New("terminal too small")

// Console is a runner front end on a raw mode terminal.
type Console struct {
	in     *os.File
	out    *os.File
	logger *log.Logger

	canAttr unix.Termios
	rawAttr unix.Termios

	keypad   *Keypad
	renderer Renderer
}

// Open switches in to raw mode and starts reading keys. Close must be called
// to restore the terminal.
func Open(in, out *os.File, keypad *Keypad, logger *log.Logger) (*Console, error) {
	cols, rows, err := Size(out)
	if err != nil {
		return nil, fmt.Errorf("reading terminal size: %w", err)
	}
	if cols < cpu.DisplayWidth || rows < RenderRows+1 {
		return nil, fmt.Errorf("%w: need %dx%d, have %dx%d",
			ErrTooSmall, cpu.DisplayWidth, RenderRows+1, cols, rows)
	}

	c := &Console{
		in:     in,
		out:    out,
		logger: logger,
		keypad: keypad,
	}
	if err := termios.Tcgetattr(in.Fd(), &c.canAttr); err != nil {
		return nil, fmt.Errorf("reading terminal attributes: %w", err)
	}
	c.rawAttr = c.canAttr
	termios.Cfmakeraw(&c.rawAttr)
	if err := termios.Tcsetattr(in.Fd(), termios.TCIFLUSH, &c.rawAttr); err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}

	_, _ = out.WriteString(hideCursor + clearAll)
	go c.readKeys()
	return c, nil
}

// Size returns the terminal dimensions in character cells.
func Size(f *os.File) (cols, rows int, err error) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

func (c *Console) readKeys() {
	buf := make([]byte, 64)
	for {
		n, err := c.in.Read(buf)
		if n > 0 {
			c.keypad.Feed(buf[:n])
		}
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("key reader stopped", log.Err(err))
			}
			return
		}
	}
}

func (c *Console) PollKeys(keys *[cpu.KeyCount]bool) {
	c.keypad.Poll(keys)
}

func (c *Console) Present(display *[cpu.DisplaySize]byte) error {
	_, err := c.out.Write(c.renderer.Render(display))
	return err
}

func (c *Console) QuitRequested() bool {
	return c.keypad.QuitRequested()
}

// Close restores the terminal to the mode it was in before Open.
func (c *Console) Close() error {
	_, _ = c.out.WriteString(showCursor + "\r\n")
	return termios.Tcsetattr(c.in.Fd(), termios.TCSANOW, &c.canAttr)
}

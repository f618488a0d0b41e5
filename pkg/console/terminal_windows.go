package console

import (
	"errors"
	"os"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cpu"
)

var (
	ErrTooSmall    = errors.New("terminal too small")
	errUnsupported = errors.New("console mode is not supported on windows")
)

type Console struct{}

func Open(_, _ *os.File, _ *Keypad, _ *log.Logger) (*Console, error) {
	return nil, errUnsupported
}

func Size(_ *os.File) (int, int, error) {
	return 0, 0, errUnsupported
}

func (c *Console) PollKeys(_ *[cpu.KeyCount]bool)         {}
func (c *Console) Present(_ *[cpu.DisplaySize]byte) error { return errUnsupported }
func (c *Console) QuitRequested() bool                    { return true }
func (c *Console) Close() error                           { return nil }

// Package runner paces a machine: it runs a fixed number of instructions per
// frame, ticks the timers once per frame and hands the display to a
// front end.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
)

var (
	// ErrStalled is returned once the program has spent StallFrames frames
	// in a jump to its own address, the usual way a ROM ends.
	ErrStalled = errors.New("program stalled in a jump to itself")

	// ErrQuit is returned by a Frontend to end Run without an error.
	ErrQuit = errors.New("quit requested")
)

// Frontend supplies key state and shows frames.
type Frontend interface {
	PollKeys(keys *[cpu.KeyCount]bool)
	Present(display *[cpu.DisplaySize]byte) error
}

// Quitter is implemented by front ends that can ask for the run to end
// between frames, such as on an escape key.
type Quitter interface {
	QuitRequested() bool
}

type Config struct {
	CyclesPerFrame int
	FrameRate      int
	// Strict makes unknown opcodes fatal.
	Strict bool
	// MaxCycles ends Run after this many instructions. Zero means no limit.
	MaxCycles uint64
	// StallFrames is the number of consecutive frames spent in a self jump
	// before ErrStalled. Zero disables the check.
	StallFrames int
}

func (c Config) withDefaults() Config {
	if c.CyclesPerFrame <= 0 {
		c.CyclesPerFrame = config.DefaultCyclesPerFrame
	}
	if c.FrameRate <= 0 {
		c.FrameRate = config.DefaultFrameRate
	}
	return c
}

type Runner struct {
	cpu    *cpu.CPU
	cfg    Config
	logger *log.Logger

	cycles  uint64
	frames  uint64
	stalled int

	// unknown records the addresses already reported for unknown opcodes.
	unknown map[uint16]struct{}
}

func New(c *cpu.CPU, cfg Config, logger *log.Logger) *Runner {
	return &Runner{
		cpu:     c,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		unknown: make(map[uint16]struct{}),
	}
}

func (r *Runner) Config() Config {
	return r.cfg
}

// Cycles returns the number of instructions executed so far.
func (r *Runner) Cycles() uint64 {
	return r.cycles
}

// Frames returns the number of frames run so far.
func (r *Runner) Frames() uint64 {
	return r.frames
}

// Frame runs up to CyclesPerFrame instructions and then ticks the timers
// once. It stops early while the program waits for a key or sits in a self
// jump.
func (r *Runner) Frame() error {
	return r.frame(r.cfg.CyclesPerFrame)
}

func (r *Runner) frame(budget int) error {
	selfJump := false

	for i := 0; i < budget && !r.limitReached(); i++ {
		pc := r.cpu.PC
		opcode, err := r.cpu.Step()
		r.cycles++
		if err != nil {
			if cpu.IsFatal(err, r.cfg.Strict) {
				return err
			}
			r.reportUnknown(err)
		}

		if opcode == 0x1000|pc {
			selfJump = true
			break
		}
		if r.cpu.Waiting {
			break
		}
	}

	r.cpu.TickTimers()
	r.frames++

	if !selfJump {
		r.stalled = 0
		return nil
	}
	r.stalled++
	if r.cfg.StallFrames > 0 && r.stalled >= r.cfg.StallFrames {
		return ErrStalled
	}
	return nil
}

func (r *Runner) reportUnknown(err error) {
	var opErr *cpu.OpcodeError
	if !errors.As(err, &opErr) || r.logger == nil {
		return
	}
	if _, seen := r.unknown[opErr.PC]; seen {
		return
	}
	r.unknown[opErr.PC] = struct{}{}
	r.logger.Warn("skipping unknown opcode",
		log.Hex("opcode", opErr.Opcode),
		log.Hex("pc", opErr.PC))
}

func (r *Runner) limitReached() bool {
	return r.cfg.MaxCycles > 0 && r.cycles >= r.cfg.MaxCycles
}

// RunCycles executes n instructions without pacing, ticking the timers
// after every CyclesPerFrame of them.
func (r *Runner) RunCycles(ctx context.Context, n uint64) error {
	target := r.cycles + n
	for r.cycles < target && !r.limitReached() {
		if err := ctx.Err(); err != nil {
			return err
		}
		budget := r.cfg.CyclesPerFrame
		if remaining := target - r.cycles; remaining < uint64(budget) {
			budget = int(remaining)
		}
		if err := r.frame(budget); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the machine at FrameRate until ctx is cancelled, the front end
// asks to quit, MaxCycles is reached or execution fails.
func (r *Runner) Run(ctx context.Context, fe Frontend) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			done, err := r.Tick(fe)
			if err != nil || done {
				return err
			}
		}
	}
}

// Tick polls keys, runs one frame and presents the display if it changed.
// It reports done once the run should end without error.
func (r *Runner) Tick(fe Frontend) (bool, error) {
	fe.PollKeys(&r.cpu.Keys)
	if q, ok := fe.(Quitter); ok && q.QuitRequested() {
		return true, nil
	}

	frameErr := r.Frame()

	if r.cpu.ScreenUpdated {
		if err := fe.Present(&r.cpu.Display); err != nil {
			if errors.Is(err, ErrQuit) {
				return true, nil
			}
			return true, err
		}
		r.cpu.ClearScreenUpdated()
	}

	if frameErr != nil {
		return true, frameErr
	}
	return r.limitReached(), nil
}

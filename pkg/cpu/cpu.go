package cpu

import (
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/grid"
)

const (
	MemorySize    = 4096
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	// ProgramStart is where ROM images are loaded and execution begins.
	// Everything below it is reserved for the interpreter (font glyphs).
	ProgramStart uint16 = 0x200
	MaxAddress   uint16 = 0xFFF
	MaxROMSize          = MemorySize - int(ProgramStart)

	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight

	FontAddress uint16 = 0x000
	GlyphSize          = 5

	RegF = 0xF
)

// fontSet holds the 16 hexadecimal digit glyphs, 5 rows of 8 pixels each.
var fontSet = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the font rows for a hexadecimal digit.
func Glyph(digit byte) []byte {
	base := int(digit&0xF) * GlyphSize
	return fontSet[base : base+GlyphSize]
}

// CPU is the complete machine state. It is owned by whoever drives Step and
// must not be shared between goroutines without outside synchronisation.
type CPU struct {
	Memory [MemorySize]byte

	V  [RegisterCount]byte
	I  uint16
	DT byte
	ST byte

	PC uint16
	SP uint16

	Stack [StackSize]uint16

	Keys [KeyCount]bool

	Display [DisplaySize]byte

	// ScreenUpdated is raised by CLS and DRW. The presenter clears it once
	// it has consumed a frame.
	ScreenUpdated bool

	// Waiting is true while LD Vx, K is spinning for a key press.
	Waiting bool

	// Trace logs every executed instruction at debug level.
	Trace bool

	rand   func() byte
	logger *log.Logger
}

type Option func(*CPU)

// WithLogger sets the logger used for instruction tracing.
func WithLogger(logger *log.Logger) Option {
	return func(c *CPU) {
		c.logger = logger
	}
}

// WithRand replaces the random byte source used by RND.
func WithRand(fn func() byte) Option {
	return func(c *CPU) {
		c.rand = fn
	}
}

func WithTrace(enabled bool) Option {
	return func(c *CPU) {
		c.Trace = enabled
	}
}

func randomByte() byte {
	return byte(rand.UintN(256))
}

// NewCPU creates a machine in its power-on state.
func NewCPU(opts ...Option) *CPU {
	c := &CPU{
		rand: randomByte,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset zeroes the machine, reinstalls the font and points PC at the start
// of program memory. Options passed to NewCPU survive a reset.
func (c *CPU) Reset() {
	c.Memory = [MemorySize]byte{}
	c.V = [RegisterCount]byte{}
	c.Stack = [StackSize]uint16{}
	c.Keys = [KeyCount]bool{}
	c.Display = [DisplaySize]byte{}
	c.I, c.SP = 0, 0
	c.DT, c.ST = 0, 0
	c.Waiting = false

	copy(c.Memory[FontAddress:], fontSet[:])
	c.PC = ProgramStart

	// Present an initial blank frame.
	c.ScreenUpdated = true
}

// LoadROM copies a program image into memory at ProgramStart.
func (c *CPU) LoadROM(data []byte) error {
	if len(data) > MaxROMSize {
		return ErrROMTooLarge
	}
	copy(c.Memory[ProgramStart:], data)
	return nil
}

// SetKey records the state of one hexadecimal key. Out of range keys are
// ignored.
func (c *CPU) SetKey(key int, down bool) {
	if key >= 0 && key < KeyCount {
		c.Keys[key] = down
	}
}

// TickTimers decrements the delay and sound timers toward zero. The driver
// calls this at 60 Hz; Step never does.
func (c *CPU) TickTimers() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
	}
}

// Pixel reports whether the cell at (x, y) is lit. Coordinates wrap.
func (c *CPU) Pixel(x, y int) bool {
	return c.Display[grid.Index(x, y, DisplayWidth, DisplayHeight)] != 0
}

func (c *CPU) ClearScreenUpdated() {
	c.ScreenUpdated = false
}

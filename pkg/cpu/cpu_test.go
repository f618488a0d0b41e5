package cpu

import (
	"errors"
	"testing"
)

// w16 writes a big-endian opcode at addr.
func w16(c *CPU, addr uint16, val uint16) {
	c.Memory[addr] = byte(val >> 8)
	c.Memory[addr+1] = byte(val & 0xFF)
}

// loadProgram writes opcodes into memory starting at ProgramStart.
func loadProgram(c *CPU, words ...uint16) {
	addr := ProgramStart
	for _, w := range words {
		w16(c, addr, w)
		addr += 2
	}
}

func mustStep(t *testing.T, c *CPU) uint16 {
	t.Helper()
	op, err := c.Step()
	if err != nil {
		t.Fatalf("Step at 0x%03X: %v", c.PC, err)
	}
	return op
}

func TestNewCPU(t *testing.T) {
	c := NewCPU()

	if c.PC != ProgramStart {
		t.Errorf("PC: expected 0x%03X, got 0x%03X", ProgramStart, c.PC)
	}
	if !c.ScreenUpdated {
		t.Errorf("ScreenUpdated: expected true after init")
	}
	if c.SP != 0 || c.I != 0 || c.DT != 0 || c.ST != 0 {
		t.Errorf("expected zeroed SP/I/DT/ST, got %d/%d/%d/%d", c.SP, c.I, c.DT, c.ST)
	}
	for i := 0; i < len(fontSet); i++ {
		if c.Memory[i] != fontSet[i] {
			t.Fatalf("font byte %d: expected 0x%02X, got 0x%02X", i, fontSet[i], c.Memory[i])
		}
	}
	for addr := len(fontSet); addr < MemorySize; addr++ {
		if c.Memory[addr] != 0 {
			t.Fatalf("memory 0x%03X: expected 0, got 0x%02X", addr, c.Memory[addr])
		}
	}
}

func TestResetKeepsOptions(t *testing.T) {
	c := NewCPU(WithTrace(true), WithRand(func() byte { return 0x5A }))
	c.V[3] = 9
	c.PC = 0x300
	c.Display[10] = 1
	c.Reset()

	if c.V[3] != 0 || c.PC != ProgramStart || c.Display[10] != 0 {
		t.Errorf("Reset did not restore power-on state")
	}
	if !c.Trace {
		t.Errorf("Reset dropped the trace option")
	}
	if c.rand() != 0x5A {
		t.Errorf("Reset dropped the random source")
	}
}

func TestJumpSetsPC(t *testing.T) {
	for _, nnn := range []uint16{0x000, 0x200, 0x2A4, 0x7FF, 0xFFE} {
		c := NewCPU()
		loadProgram(c, 0x1000|nnn)
		mustStep(t, c)
		if c.PC != nnn {
			t.Errorf("JP 0x%03X: expected PC=0x%03X, got 0x%03X", nnn, nnn, c.PC)
		}
	}
}

func TestLoadByteOnlyTouchesTarget(t *testing.T) {
	for x := uint16(0); x < 16; x++ {
		c := NewCPU()
		for i := range c.V {
			c.V[i] = byte(0xA0 + i)
		}
		before := c.V
		loadProgram(c, 0x6000|x<<8|0x42)
		mustStep(t, c)

		for i := range c.V {
			want := before[i]
			if uint16(i) == x {
				want = 0x42
			}
			if c.V[i] != want {
				t.Errorf("LD V%X, $42: V%X expected 0x%02X, got 0x%02X", x, i, want, c.V[i])
			}
		}
	}
}

func TestAddByteWrapsWithoutFlag(t *testing.T) {
	c := NewCPU()
	c.V[2] = 0xFF
	c.V[RegF] = 0x07
	loadProgram(c, 0x7202)
	mustStep(t, c)

	if c.V[2] != 0x01 {
		t.Errorf("ADD V2, $02: expected 0x01, got 0x%02X", c.V[2])
	}
	if c.V[RegF] != 0x07 {
		t.Errorf("ADD V2, $02 touched VF: got 0x%02X", c.V[RegF])
	}
}

func TestALU(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		wantVx byte
		wantVF byte
		keepVF bool
	}{
		{"LD", 0x8120, 0x11, 0x22, 0x22, 0, true},
		{"OR", 0x8121, 0xF0, 0x0F, 0xFF, 0, true},
		{"AND", 0x8122, 0xFC, 0x3F, 0x3C, 0, true},
		{"XOR", 0x8123, 0xFF, 0x0F, 0xF0, 0, true},
		{"ADD no carry", 0x8124, 0x10, 0x20, 0x30, 0, false},
		{"ADD carry", 0x8124, 0xFF, 0x01, 0x00, 1, false},
		{"ADD carry high", 0x8124, 0xF0, 0xF0, 0xE0, 1, false},
		{"SUB no borrow", 0x8125, 0x05, 0x03, 0x02, 1, false},
		{"SUB borrow", 0x8125, 0x01, 0x02, 0xFF, 0, false},
		{"SUB equal", 0x8125, 0x07, 0x07, 0x00, 0, false},
		{"SHR odd", 0x8126, 0x05, 0x00, 0x02, 1, false},
		{"SHR even", 0x8126, 0x04, 0x00, 0x02, 0, false},
		{"SUBN no borrow", 0x8127, 0x03, 0x05, 0x02, 1, false},
		{"SUBN borrow", 0x8127, 0x02, 0x01, 0xFF, 0, false},
		{"SUBN equal", 0x8127, 0x09, 0x09, 0x00, 0, false},
		{"SHL high", 0x812E, 0x81, 0x00, 0x02, 1, false},
		{"SHL low", 0x812E, 0x41, 0x00, 0x82, 0, false},
	}

	for _, tc := range tests {
		c := NewCPU()
		c.V[1] = tc.vx
		c.V[2] = tc.vy
		c.V[RegF] = 0xAA
		loadProgram(c, tc.opcode)
		mustStep(t, c)

		if c.V[1] != tc.wantVx {
			t.Errorf("%s: expected V1=0x%02X, got 0x%02X", tc.name, tc.wantVx, c.V[1])
		}
		wantVF := tc.wantVF
		if tc.keepVF {
			wantVF = 0xAA
		}
		if c.V[RegF] != wantVF {
			t.Errorf("%s: expected VF=0x%02X, got 0x%02X", tc.name, wantVF, c.V[RegF])
		}
		if c.V[2] != tc.vy {
			t.Errorf("%s: source register changed to 0x%02X", tc.name, c.V[2])
		}
	}
}

func TestAddRegCommutes(t *testing.T) {
	for _, pair := range [][2]byte{{0xFF, 0x01}, {0x80, 0x80}, {0x12, 0x34}, {0x00, 0x00}} {
		a := NewCPU()
		a.V[0], a.V[1] = pair[0], pair[1]
		loadProgram(a, 0x8014)
		mustStep(t, a)

		b := NewCPU()
		b.V[0], b.V[1] = pair[1], pair[0]
		loadProgram(b, 0x8014)
		mustStep(t, b)

		if a.V[0] != b.V[0] || a.V[RegF] != b.V[RegF] {
			t.Errorf("ADD %02X+%02X: got %02X/%d, reversed %02X/%d",
				pair[0], pair[1], a.V[0], a.V[RegF], b.V[0], b.V[RegF])
		}
	}
}

func TestFlagRegisterAsDestination(t *testing.T) {
	c := NewCPU()
	c.V[RegF] = 0xFF
	c.V[1] = 0x01
	loadProgram(c, 0x8F14)
	mustStep(t, c)

	if c.V[RegF] != 1 {
		t.Errorf("ADD VF, V1: expected the carry flag to win, got 0x%02X", c.V[RegF])
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		skip   bool
	}{
		{"SE byte equal", 0x3A42, 0x42, 0, true},
		{"SE byte differ", 0x3A42, 0x41, 0, false},
		{"SNE byte equal", 0x4A42, 0x42, 0, false},
		{"SNE byte differ", 0x4A42, 0x41, 0, true},
		{"SE reg equal", 0x5AB0, 0x10, 0x10, true},
		{"SE reg differ", 0x5AB0, 0x10, 0x11, false},
		{"SNE reg equal", 0x9AB0, 0x10, 0x10, false},
		{"SNE reg differ", 0x9AB0, 0x10, 0x11, true},
	}

	for _, tc := range tests {
		c := NewCPU()
		c.PC = 0x300
		c.SP = 3
		c.V[0xA] = tc.vx
		c.V[0xB] = tc.vy
		w16(c, 0x300, tc.opcode)
		mustStep(t, c)

		want := uint16(0x302)
		if tc.skip {
			want = 0x304
		}
		if c.PC != want {
			t.Errorf("%s: expected PC=0x%03X, got 0x%03X", tc.name, want, c.PC)
		}
	}
}

func TestCallReturn(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0x2300)
	w16(c, 0x300, 0x00EE)

	mustStep(t, c)
	if c.PC != 0x300 {
		t.Errorf("CALL: expected PC=0x300, got 0x%03X", c.PC)
	}
	if c.SP != 1 || c.Stack[0] != 0x202 {
		t.Errorf("CALL: expected stack [0x202], got SP=%d top=0x%03X", c.SP, c.Stack[0])
	}

	mustStep(t, c)
	if c.PC != 0x202 {
		t.Errorf("RET: expected PC=0x202, got 0x%03X", c.PC)
	}
	if c.SP != 0 {
		t.Errorf("RET: expected SP=0, got %d", c.SP)
	}
}

func TestStackOverflow(t *testing.T) {
	c := NewCPU()
	// A subroutine that calls itself.
	loadProgram(c, 0x2200)

	for i := 0; i < StackSize; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatalf("call %d: unexpected error %v", i+1, err)
		}
	}

	_, err := c.Step()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("call 17: expected ErrStackOverflow, got %v", err)
	}
	var stackErr *StackError
	if !errors.As(err, &stackErr) || stackErr.PC != 0x200 || stackErr.Depth != StackSize {
		t.Errorf("unexpected stack error detail: %+v", stackErr)
	}
	if c.SP != StackSize {
		t.Errorf("SP changed on overflow: %d", c.SP)
	}
	if !IsFatal(err, false) {
		t.Errorf("stack overflow must be fatal")
	}
}

func TestStackUnderflow(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0x00EE)

	_, err := c.Step()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
	if errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("underflow must be distinct from an unknown opcode")
	}
}

func TestDrawCollision(t *testing.T) {
	c := NewCPU()
	c.I = 0x300
	c.Memory[0x300] = 0xFF
	c.V[0] = 4
	c.V[1] = 6
	loadProgram(c, 0xD011, 0xD011)

	c.ClearScreenUpdated()
	mustStep(t, c)
	if c.V[RegF] != 0 {
		t.Errorf("first draw: expected VF=0, got %d", c.V[RegF])
	}
	if !c.ScreenUpdated {
		t.Errorf("first draw: expected ScreenUpdated")
	}
	for x := 4; x < 12; x++ {
		if !c.Pixel(x, 6) {
			t.Errorf("first draw: pixel (%d,6) not lit", x)
		}
	}

	mustStep(t, c)
	if c.V[RegF] != 1 {
		t.Errorf("second draw: expected VF=1, got %d", c.V[RegF])
	}
	for i, cell := range c.Display {
		if cell != 0 {
			t.Fatalf("second draw: cell %d still lit", i)
		}
	}
}

func TestDrawWraps(t *testing.T) {
	c := NewCPU()
	c.I = 0x300
	c.Memory[0x300] = 0xC0 // two pixels
	c.Memory[0x301] = 0xC0
	c.V[0] = 63
	c.V[1] = 31
	loadProgram(c, 0xD012)
	mustStep(t, c)

	lit := [][2]int{{63, 31}, {0, 31}, {63, 0}, {0, 0}}
	for _, p := range lit {
		if !c.Pixel(p[0], p[1]) {
			t.Errorf("expected (%d,%d) lit after wrapping", p[0], p[1])
		}
	}

	count := 0
	for _, cell := range c.Display {
		count += int(cell)
	}
	if count != 4 {
		t.Errorf("expected 4 lit cells, got %d", count)
	}
}

func TestDrawStartPositionWraps(t *testing.T) {
	c := NewCPU()
	c.I = 0x300
	c.Memory[0x300] = 0x80
	c.V[0] = 64 + 5
	c.V[1] = 32 + 2
	loadProgram(c, 0xD011)
	mustStep(t, c)

	if !c.Pixel(5, 2) {
		t.Errorf("expected (5,2) lit")
	}
}

func TestDrawOutOfRange(t *testing.T) {
	c := NewCPU()
	c.I = 0xFFD
	loadProgram(c, 0xD005)

	_, err := c.Step()
	if !errors.Is(err, ErrMemoryOutOfRange) {
		t.Fatalf("expected ErrMemoryOutOfRange, got %v", err)
	}
	for _, cell := range c.Display {
		if cell != 0 {
			t.Fatalf("display changed on failed draw")
		}
	}
}

func TestClearScreen(t *testing.T) {
	c := NewCPU()
	for i := range c.Display {
		c.Display[i] = 1
	}
	c.ClearScreenUpdated()
	loadProgram(c, 0x00E0)
	mustStep(t, c)

	for i, cell := range c.Display {
		if cell != 0 {
			t.Fatalf("cell %d still lit", i)
		}
	}
	if !c.ScreenUpdated {
		t.Errorf("expected ScreenUpdated after CLS")
	}
}

func TestIndexOps(t *testing.T) {
	c := NewCPU()
	c.V[0] = 0x10
	c.V[5] = 0x0B
	loadProgram(c,
		0xA123, // LD I, $123
		0xF51E, // ADD I, V5
		0xF529, // LD F, V5
		0xB300, // JP V0, $300
	)

	mustStep(t, c)
	if c.I != 0x123 {
		t.Errorf("LD I: expected 0x123, got 0x%03X", c.I)
	}
	mustStep(t, c)
	if c.I != 0x12E {
		t.Errorf("ADD I: expected 0x12E, got 0x%03X", c.I)
	}
	mustStep(t, c)
	if c.I != 0x0B*GlyphSize {
		t.Errorf("LD F: expected 0x%03X, got 0x%03X", 0x0B*GlyphSize, c.I)
	}
	mustStep(t, c)
	if c.PC != 0x310 {
		t.Errorf("JP V0: expected 0x310, got 0x%03X", c.PC)
	}
}

func TestFontGlyphAddresses(t *testing.T) {
	for digit := byte(0); digit < 16; digit++ {
		c := NewCPU()
		c.V[2] = digit
		loadProgram(c, 0xF229)
		mustStep(t, c)

		glyph := Glyph(digit)
		for row := 0; row < GlyphSize; row++ {
			if c.Memory[int(c.I)+row] != glyph[row] {
				t.Errorf("digit %X row %d: expected 0x%02X, got 0x%02X", digit, row, glyph[row], c.Memory[int(c.I)+row])
			}
		}
	}
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value byte
		want  [3]byte
	}{
		{0, [3]byte{0, 0, 0}},
		{7, [3]byte{0, 0, 7}},
		{42, [3]byte{0, 4, 2}},
		{100, [3]byte{1, 0, 0}},
		{255, [3]byte{2, 5, 5}},
	}

	for _, tc := range tests {
		c := NewCPU()
		c.I = 0x400
		c.V[7] = tc.value
		loadProgram(c, 0xF733)
		mustStep(t, c)

		got := [3]byte{c.Memory[0x400], c.Memory[0x401], c.Memory[0x402]}
		if got != tc.want {
			t.Errorf("BCD %d: expected %v, got %v", tc.value, tc.want, got)
		}
	}

	c := NewCPU()
	c.I = 0xFFE
	loadProgram(c, 0xF033)
	if _, err := c.Step(); !errors.Is(err, ErrMemoryOutOfRange) {
		t.Errorf("BCD at 0xFFE: expected ErrMemoryOutOfRange, got %v", err)
	}
}

func TestStoreLoadRegistersInclusive(t *testing.T) {
	// x = 0 transfers exactly V0.
	c := NewCPU()
	c.I = 0x400
	c.V[0] = 0x11
	c.V[1] = 0x22
	loadProgram(c, 0xF055)
	mustStep(t, c)
	if c.Memory[0x400] != 0x11 {
		t.Errorf("FX55 x=0: expected memory[I]=0x11, got 0x%02X", c.Memory[0x400])
	}
	if c.Memory[0x401] != 0 {
		t.Errorf("FX55 x=0: wrote past V0: 0x%02X", c.Memory[0x401])
	}
	if c.I != 0x400 {
		t.Errorf("FX55: I changed to 0x%03X", c.I)
	}

	c = NewCPU()
	c.I = 0x400
	c.Memory[0x400] = 0x33
	c.Memory[0x401] = 0x44
	c.V[1] = 0x99
	loadProgram(c, 0xF065)
	mustStep(t, c)
	if c.V[0] != 0x33 {
		t.Errorf("FX65 x=0: expected V0=0x33, got 0x%02X", c.V[0])
	}
	if c.V[1] != 0x99 {
		t.Errorf("FX65 x=0: loaded past V0: V1=0x%02X", c.V[1])
	}

	// x = 3 transfers V0..V3.
	c = NewCPU()
	c.I = 0x500
	for i := 0; i < 16; i++ {
		c.V[i] = byte(i + 1)
	}
	loadProgram(c, 0xF355, 0x6000, 0x6100, 0x6200, 0x6300, 0xF365)
	mustStep(t, c)
	want := []byte{1, 2, 3, 4, 0}
	for i, w := range want {
		if c.Memory[0x500+i] != w {
			t.Errorf("FX55 x=3: memory[I+%d] expected %d, got %d", i, w, c.Memory[0x500+i])
		}
	}
	for i := 0; i < 5; i++ {
		mustStep(t, c)
	}
	for i := 0; i < 4; i++ {
		if c.V[i] != byte(i+1) {
			t.Errorf("FX65 x=3: V%d expected %d, got %d", i, i+1, c.V[i])
		}
	}

	c = NewCPU()
	c.I = 0xFFE
	loadProgram(c, 0xF255)
	if _, err := c.Step(); !errors.Is(err, ErrMemoryOutOfRange) {
		t.Errorf("FX55 past end: expected ErrMemoryOutOfRange, got %v", err)
	}

	c = NewCPU()
	c.I = 0xFFE
	c.Memory[0xFFE] = 0xAA
	c.Memory[0xFFF] = 0xBB
	loadProgram(c, 0xF265)
	if _, err := c.Step(); !errors.Is(err, ErrMemoryOutOfRange) {
		t.Errorf("FX65 past end: expected ErrMemoryOutOfRange, got %v", err)
	}
	if c.V[0] != 0 || c.V[1] != 0 || c.V[2] != 0 {
		t.Errorf("FX65 past end: registers changed to % X", c.V[:3])
	}
}

func TestTimers(t *testing.T) {
	c := NewCPU()
	c.V[1] = 3
	c.V[2] = 1
	loadProgram(c, 0xF115, 0xF218, 0xF307)

	mustStep(t, c)
	mustStep(t, c)
	if c.DT != 3 || c.ST != 1 {
		t.Fatalf("expected DT=3 ST=1, got DT=%d ST=%d", c.DT, c.ST)
	}

	c.TickTimers()
	c.TickTimers()
	if c.DT != 1 || c.ST != 0 {
		t.Errorf("after two ticks expected DT=1 ST=0, got DT=%d ST=%d", c.DT, c.ST)
	}

	mustStep(t, c)
	if c.V[3] != 1 {
		t.Errorf("LD V3, DT: expected 1, got %d", c.V[3])
	}

	c.TickTimers()
	c.TickTimers()
	if c.DT != 0 || c.ST != 0 {
		t.Errorf("timers went below zero: DT=%d ST=%d", c.DT, c.ST)
	}
}

func TestKeySkips(t *testing.T) {
	tests := []struct {
		opcode uint16
		down   bool
		skip   bool
	}{
		{0xE49E, true, true},
		{0xE49E, false, false},
		{0xE4A1, true, false},
		{0xE4A1, false, true},
	}

	for _, tc := range tests {
		c := NewCPU()
		c.V[4] = 0xC
		c.SetKey(0xC, tc.down)
		loadProgram(c, tc.opcode)
		mustStep(t, c)

		want := uint16(0x202)
		if tc.skip {
			want = 0x204
		}
		if c.PC != want {
			t.Errorf("%04X key down=%v: expected PC=0x%03X, got 0x%03X", tc.opcode, tc.down, want, c.PC)
		}
	}
}

func TestWaitForKey(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0xF50A)

	for i := 0; i < 3; i++ {
		mustStep(t, c)
		if c.PC != ProgramStart {
			t.Fatalf("waiting: expected PC to stay at 0x200, got 0x%03X", c.PC)
		}
		if !c.Waiting {
			t.Fatalf("waiting: expected Waiting")
		}
	}

	c.SetKey(0x9, true)
	c.SetKey(0xE, true)
	mustStep(t, c)
	if c.V[5] != 0x9 {
		t.Errorf("expected V5=0x9, got 0x%X", c.V[5])
	}
	if c.PC != 0x202 || c.Waiting {
		t.Errorf("expected to resume at 0x202, got PC=0x%03X waiting=%v", c.PC, c.Waiting)
	}
}

func TestRandomMasksByte(t *testing.T) {
	c := NewCPU(WithRand(func() byte { return 0xB7 }))
	loadProgram(c, 0xC30F, 0xC4F0)
	mustStep(t, c)
	mustStep(t, c)

	if c.V[3] != 0x07 {
		t.Errorf("RND V3, $0F: expected 0x07, got 0x%02X", c.V[3])
	}
	if c.V[4] != 0xB0 {
		t.Errorf("RND V4, $F0: expected 0xB0, got 0x%02X", c.V[4])
	}

	c = NewCPU()
	loadProgram(c, 0xC000)
	mustStep(t, c)
	if c.V[0] != 0 {
		t.Errorf("RND with zero mask: expected 0, got 0x%02X", c.V[0])
	}
}

func TestUnknownOpcode(t *testing.T) {
	for _, opcode := range []uint16{0x0123, 0x00FF, 0x8128, 0x812F, 0xF0FF, 0xF130} {
		c := NewCPU()
		c.V[1] = 0x55
		loadProgram(c, opcode)
		before := *c

		got, err := c.Step()
		if got != opcode {
			t.Errorf("%04X: Step returned opcode %04X", opcode, got)
		}

		var opErr *OpcodeError
		if !errors.As(err, &opErr) {
			t.Fatalf("%04X: expected *OpcodeError, got %v", opcode, err)
		}
		if opErr.Opcode != opcode || opErr.PC != ProgramStart {
			t.Errorf("%04X: unexpected error detail %+v", opcode, opErr)
		}
		if !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("%04X: expected ErrUnknownOpcode", opcode)
		}
		if IsFatal(err, false) {
			t.Errorf("%04X: unknown opcode must not be fatal by default", opcode)
		}
		if !IsFatal(err, true) {
			t.Errorf("%04X: unknown opcode must be fatal in strict mode", opcode)
		}

		before.PC += 2
		if c.V != before.V || c.I != before.I || c.SP != before.SP || c.PC != before.PC || c.Display != before.Display {
			t.Errorf("%04X: state changed beyond PC advance", opcode)
		}
	}
}

func TestFetchOutOfRange(t *testing.T) {
	c := NewCPU()
	c.PC = 0xFFF
	if _, err := c.Step(); !errors.Is(err, ErrMemoryOutOfRange) {
		t.Errorf("fetch at 0xFFF: expected ErrMemoryOutOfRange, got %v", err)
	}
	if c.PC != 0xFFF {
		t.Errorf("PC advanced on failed fetch: 0x%03X", c.PC)
	}

	c.PC = 0xFFE
	if _, err := c.Step(); err != nil && errors.Is(err, ErrMemoryOutOfRange) {
		t.Errorf("fetch at 0xFFE should succeed, got %v", err)
	}
}

func TestLoadROM(t *testing.T) {
	c := NewCPU()
	if err := c.LoadROM([]byte{0x12, 0x34}); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if c.Memory[0x200] != 0x12 || c.Memory[0x201] != 0x34 {
		t.Errorf("ROM bytes not copied verbatim")
	}

	if err := c.LoadROM(make([]byte, MaxROMSize)); err != nil {
		t.Errorf("max size ROM rejected: %v", err)
	}
	if err := c.LoadROM(make([]byte, MaxROMSize+1)); !errors.Is(err, ErrROMTooLarge) {
		t.Errorf("oversized ROM: expected ErrROMTooLarge, got %v", err)
	}
}

func TestEndToEndGlyph(t *testing.T) {
	c := NewCPU()
	program := []byte{
		0x00, 0xE0, // CLS
		0xA2, 0x2A, // LD I, $22A
		0x60, 0x0C, // LD V0, 12
		0x61, 0x08, // LD V1, 8
		0xD0, 0x15, // DRW V0, V1, 5
	}
	image := make([]byte, 0x2A+GlyphSize)
	copy(image, program)
	copy(image[0x2A:], Glyph(0))
	if err := c.LoadROM(image); err != nil {
		t.Fatal(err)
	}

	if err := c.Run(5); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !c.ScreenUpdated {
		t.Errorf("expected ScreenUpdated")
	}

	glyph := Glyph(0)
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			want := false
			if x >= 12 && x < 20 && y >= 8 && y < 8+GlyphSize {
				want = glyph[y-8]&(0x80>>(x-12)) != 0
			}
			if c.Pixel(x, y) != want {
				t.Errorf("pixel (%d,%d): expected %v", x, y, want)
			}
		}
	}
}

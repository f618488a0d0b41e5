package console

import (
	"bytes"

	"gochip8/pkg/cpu"
)

const (
	cursorHome = "\x1b[H"
	clearAll   = "\x1b[2J"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"

	// RenderRows is the number of terminal rows a frame occupies.
	RenderRows = cpu.DisplayHeight / 2
)

// Two display rows share one character cell.
var halfBlocks = [4]string{
	0: " ",
	1: "▀", // upper half
	2: "▄", // lower half
	3: "█", // full block
}

// Renderer turns the display into terminal output, reusing its buffer
// between frames.
type Renderer struct {
	buf bytes.Buffer
}

// Render returns the escape sequence that redraws the whole display from the
// top left corner. The slice is only valid until the next call.
func (r *Renderer) Render(display *[cpu.DisplaySize]byte) []byte {
	r.buf.Reset()
	r.buf.WriteString(cursorHome)

	for y := 0; y < cpu.DisplayHeight; y += 2 {
		top := display[y*cpu.DisplayWidth:]
		bottom := display[(y+1)*cpu.DisplayWidth:]
		for x := 0; x < cpu.DisplayWidth; x++ {
			cell := top[x]&1 | (bottom[x]&1)<<1
			r.buf.WriteString(halfBlocks[cell])
		}
		r.buf.WriteString("\r\n")
	}
	return r.buf.Bytes()
}

package cpu

import "gochip8/pkg/grid"

// checkRange verifies that n bytes starting at addr lie inside memory.
func checkRange(addr uint16, n int) error {
	if n < 1 {
		n = 1
	}
	if int(addr)+n > MemorySize {
		return &MemoryError{Addr: addr, Len: n}
	}
	return nil
}

func (c *CPU) push(addr uint16) error {
	if c.SP >= StackSize {
		return &StackError{Err: ErrStackOverflow, PC: c.PC - 2, Depth: c.SP}
	}
	c.Stack[c.SP] = addr
	c.SP++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.SP == 0 {
		return 0, &StackError{Err: ErrStackUnderflow, PC: c.PC - 2, Depth: 0}
	}
	c.SP--
	return c.Stack[c.SP], nil
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

// Execute applies a single decoded instruction. PC has already been advanced
// past the instruction, so skips add to it and CALL pushes it unchanged.
func (c *CPU) Execute(in Instruction) error {
	vx := &c.V[in.X]
	vy := c.V[in.Y]

	switch in.Op {
	// 00E0 CLS
	case OpCLS:
		c.Display = [DisplaySize]byte{}
		c.ScreenUpdated = true

	// 00EE RET
	case OpRET:
		addr, err := c.pop()
		if err != nil {
			return err
		}
		c.PC = addr

	// 1NNN JP addr
	case OpJP:
		c.PC = in.NNN

	// 2NNN CALL addr
	case OpCALL:
		if err := c.push(c.PC); err != nil {
			return err
		}
		c.PC = in.NNN

	// 3XNN SE Vx, byte
	case OpSEByte:
		c.skipIf(*vx == in.NN)

	// 4XNN SNE Vx, byte
	case OpSNEByte:
		c.skipIf(*vx != in.NN)

	// 5XY0 SE Vx, Vy
	case OpSEReg:
		c.skipIf(*vx == vy)

	// 6XNN LD Vx, byte
	case OpLDByte:
		*vx = in.NN

	// 7XNN ADD Vx, byte (no carry flag)
	case OpADDByte:
		*vx += in.NN

	// 8XY0 LD Vx, Vy
	case OpLDReg:
		*vx = vy

	// 8XY1 OR Vx, Vy
	case OpOR:
		*vx |= vy

	// 8XY2 AND Vx, Vy
	case OpAND:
		*vx &= vy

	// 8XY3 XOR Vx, Vy
	case OpXOR:
		*vx ^= vy

	// 8XY4 ADD Vx, Vy
	case OpADDReg:
		sum := uint16(*vx) + uint16(vy)
		*vx = byte(sum)
		c.V[RegF] = flag(sum > 0xFF)

	// 8XY5 SUB Vx, Vy
	case OpSUB:
		noBorrow := *vx > vy
		*vx -= vy
		c.V[RegF] = flag(noBorrow)

	// 8XY6 SHR Vx
	case OpSHR:
		out := *vx & 0x01
		*vx >>= 1
		c.V[RegF] = out

	// 8XY7 SUBN Vx, Vy
	case OpSUBN:
		noBorrow := vy > *vx
		*vx = vy - *vx
		c.V[RegF] = flag(noBorrow)

	// 8XYE SHL Vx
	case OpSHL:
		out := *vx >> 7
		*vx <<= 1
		c.V[RegF] = out

	// 9XY0 SNE Vx, Vy
	case OpSNEReg:
		c.skipIf(*vx != vy)

	// ANNN LD I, addr
	case OpLDI:
		c.I = in.NNN

	// BNNN JP V0, addr
	case OpJPV0:
		c.PC = in.NNN + uint16(c.V[0])

	// CXNN RND Vx, byte
	case OpRND:
		*vx = c.rand() & in.NN

	// DXYN DRW Vx, Vy, n
	case OpDRW:
		return c.draw(*vx, vy, in.N)

	// EX9E SKP Vx
	case OpSKP:
		c.skipIf(c.Keys[*vx&0xF])

	// EXA1 SKNP Vx
	case OpSKNP:
		c.skipIf(!c.Keys[*vx&0xF])

	// FX07 LD Vx, DT
	case OpLDVxDT:
		*vx = c.DT

	// FX0A LD Vx, K
	case OpLDVxK:
		key, ok := c.firstKeyDown()
		if !ok {
			// Spin on this instruction until a key goes down.
			c.Waiting = true
			c.PC -= 2
			return nil
		}
		c.Waiting = false
		*vx = key

	// FX15 LD DT, Vx
	case OpLDDTVx:
		c.DT = *vx

	// FX18 LD ST, Vx
	case OpLDSTVx:
		c.ST = *vx

	// FX1E ADD I, Vx
	case OpADDIVx:
		c.I += uint16(*vx)

	// FX29 LD F, Vx
	case OpLDFVx:
		c.I = FontAddress + uint16(*vx&0xF)*GlyphSize

	// FX33 LD B, Vx
	case OpLDBVx:
		if err := checkRange(c.I, 3); err != nil {
			return err
		}
		c.Memory[c.I] = *vx / 100
		c.Memory[c.I+1] = (*vx / 10) % 10
		c.Memory[c.I+2] = *vx % 10

	// FX55 LD [I], Vx
	case OpStoreRegs:
		count := int(in.X) + 1
		if err := checkRange(c.I, count); err != nil {
			return err
		}
		copy(c.Memory[c.I:int(c.I)+count], c.V[:count])

	// FX65 LD Vx, [I]
	case OpLoadRegs:
		count := int(in.X) + 1
		if err := checkRange(c.I, count); err != nil {
			return err
		}
		copy(c.V[:count], c.Memory[c.I:int(c.I)+count])

	default:
		return &OpcodeError{Opcode: in.Opcode, PC: c.PC - 2}
	}

	return nil
}

// draw XORs an 8 pixel wide, n row sprite from memory at I onto the display.
// The sprite wraps at both edges. VF reports whether any lit pixel was
// turned off.
func (c *CPU) draw(x, y, n byte) error {
	if err := checkRange(c.I, int(n)); err != nil {
		return err
	}

	originX := int(x) % DisplayWidth
	originY := int(y) % DisplayHeight

	var collision byte
	for row := 0; row < int(n); row++ {
		bits := c.Memory[int(c.I)+row]
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			idx := grid.Index(originX+col, originY+row, DisplayWidth, DisplayHeight)
			if c.Display[idx] != 0 {
				collision = 1
			}
			c.Display[idx] ^= 1
		}
	}

	c.V[RegF] = collision
	c.ScreenUpdated = true
	return nil
}

func (c *CPU) firstKeyDown() (byte, bool) {
	for k, down := range c.Keys {
		if down {
			return byte(k), true
		}
	}
	return 0, false
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

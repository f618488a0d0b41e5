package cpu

import (
	"github.com/retroenv/retrogolib/log"
)

// Fetch reads the big-endian opcode at PC without advancing it.
func (c *CPU) Fetch() (uint16, error) {
	if err := checkRange(c.PC, 2); err != nil {
		return 0, err
	}
	return uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1]), nil
}

// Step runs one fetch, decode and execute cycle and returns the opcode it
// consumed. Errors are returned to the caller, who decides whether to keep
// going; see IsFatal.
func (c *CPU) Step() (uint16, error) {
	opcode, err := c.Fetch()
	if err != nil {
		return 0, err
	}
	pc := c.PC
	c.PC += 2

	in := Decode(opcode)

	if c.Trace && c.logger != nil {
		c.logger.Debug("exec",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("op", in.Op.String()))
	}

	return opcode, c.Execute(in)
}

// Run steps until an error occurs or n instructions have run. It is meant for
// tests and tools; real drivers pace execution themselves.
func (c *CPU) Run(n int) error {
	for i := 0; i < n; i++ {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

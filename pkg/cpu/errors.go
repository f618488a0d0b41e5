package cpu

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrMemoryOutOfRange = errors.New("memory access out of range")
	ErrROMTooLarge      = errors.New("rom does not fit in program memory")
)

// OpcodeError reports an opcode that does not decode to any operation.
// PC is the address the opcode was fetched from.
type OpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X at 0x%03X", e.Opcode, e.PC)
}

func (e *OpcodeError) Unwrap() error { return ErrUnknownOpcode }

// MemoryError reports an access of Len bytes starting at Addr that runs past
// the end of memory.
type MemoryError struct {
	Addr uint16
	Len  int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory access out of range: %d bytes at 0x%04X", e.Len, e.Addr)
}

func (e *MemoryError) Unwrap() error { return ErrMemoryOutOfRange }

// StackError reports a CALL with a full stack or a RET with an empty one.
type StackError struct {
	Err   error
	PC    uint16
	Depth uint16
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%v at 0x%03X (depth %d)", e.Err, e.PC, e.Depth)
}

func (e *StackError) Unwrap() error { return e.Err }

// IsFatal reports whether err must stop execution. Unknown opcodes are only
// fatal in strict mode.
func IsFatal(err error, strict bool) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnknownOpcode) {
		return strict
	}
	return true
}

package asm

import (
	"errors"
	"fmt"
)

var errOperands = errors.New("invalid operands")

func operandError(ops []operand, lineNo int) error {
	tokens := make([]string, len(ops))
	for i, op := range ops {
		tokens[i] = op.token
	}
	return fmt.Errorf("%w %v on line %d", errOperands, tokens, lineNo)
}

func fixed(opcode uint16) encoder {
	return func(_ *Assembler, ops []operand, lineNo int) (uint16, error) {
		if len(ops) != 0 {
			return 0, operandError(ops, lineNo)
		}
		return opcode, nil
	}
}

func (a *Assembler) addr(op operand, lineNo int) (uint16, error) {
	return a.parseValue(op.token, 0xFFF, lineNo)
}

func (a *Assembler) byteValue(op operand, lineNo int) (uint16, error) {
	return a.parseValue(op.token, 0xFF, lineNo)
}

// shape reports whether ops has exactly the given operand kinds.
func shape(ops []operand, kinds ...operandKind) bool {
	if len(ops) != len(kinds) {
		return false
	}
	for i, k := range kinds {
		if ops[i].kind != k {
			return false
		}
	}
	return true
}

func xy(x, y uint16) uint16 {
	return x<<8 | y<<4
}

// jp addr / jp V0, addr
func encodeJP(a *Assembler, ops []operand, lineNo int) (uint16, error) {
	switch {
	case shape(ops, kindValue):
		nnn, err := a.addr(ops[0], lineNo)
		return 0x1000 | nnn, err
	case shape(ops, kindReg, kindValue) && ops[0].reg == 0:
		nnn, err := a.addr(ops[1], lineNo)
		return 0xB000 | nnn, err
	}
	return 0, operandError(ops, lineNo)
}

func encodeCall(a *Assembler, ops []operand, lineNo int) (uint16, error) {
	if !shape(ops, kindValue) {
		return 0, operandError(ops, lineNo)
	}
	nnn, err := a.addr(ops[0], lineNo)
	return 0x2000 | nnn, err
}

// encodeSkip builds se/sne, which compare against a byte or a register.
func encodeSkip(byteForm, regForm uint16) encoder {
	return func(a *Assembler, ops []operand, lineNo int) (uint16, error) {
		switch {
		case shape(ops, kindReg, kindValue):
			nn, err := a.byteValue(ops[1], lineNo)
			return byteForm | ops[0].reg<<8 | nn, err
		case shape(ops, kindReg, kindReg):
			return regForm | xy(ops[0].reg, ops[1].reg), nil
		}
		return 0, operandError(ops, lineNo)
	}
}

func encodeLD(a *Assembler, ops []operand, lineNo int) (uint16, error) {
	switch {
	case shape(ops, kindReg, kindValue):
		nn, err := a.byteValue(ops[1], lineNo)
		return 0x6000 | ops[0].reg<<8 | nn, err
	case shape(ops, kindReg, kindReg):
		return 0x8000 | xy(ops[0].reg, ops[1].reg), nil
	case shape(ops, kindI, kindValue):
		nnn, err := a.addr(ops[1], lineNo)
		return 0xA000 | nnn, err
	case shape(ops, kindReg, kindDT):
		return 0xF007 | ops[0].reg<<8, nil
	case shape(ops, kindReg, kindK):
		return 0xF00A | ops[0].reg<<8, nil
	case shape(ops, kindDT, kindReg):
		return 0xF015 | ops[1].reg<<8, nil
	case shape(ops, kindST, kindReg):
		return 0xF018 | ops[1].reg<<8, nil
	case shape(ops, kindF, kindReg):
		return 0xF029 | ops[1].reg<<8, nil
	case shape(ops, kindB, kindReg):
		return 0xF033 | ops[1].reg<<8, nil
	case shape(ops, kindIndirect, kindReg):
		return 0xF055 | ops[1].reg<<8, nil
	case shape(ops, kindReg, kindIndirect):
		return 0xF065 | ops[0].reg<<8, nil
	}
	return 0, operandError(ops, lineNo)
}

func encodeADD(a *Assembler, ops []operand, lineNo int) (uint16, error) {
	switch {
	case shape(ops, kindReg, kindValue):
		nn, err := a.byteValue(ops[1], lineNo)
		return 0x7000 | ops[0].reg<<8 | nn, err
	case shape(ops, kindReg, kindReg):
		return 0x8004 | xy(ops[0].reg, ops[1].reg), nil
	case shape(ops, kindI, kindReg):
		return 0xF01E | ops[1].reg<<8, nil
	}
	return 0, operandError(ops, lineNo)
}

// encodeALU builds the 8XYN register to register forms.
func encodeALU(n uint16) encoder {
	return func(_ *Assembler, ops []operand, lineNo int) (uint16, error) {
		if !shape(ops, kindReg, kindReg) {
			return 0, operandError(ops, lineNo)
		}
		return 0x8000 | xy(ops[0].reg, ops[1].reg) | n, nil
	}
}

// encodeShift accepts both "shr Vx" and "shr Vx, Vy".
func encodeShift(n uint16) encoder {
	return func(_ *Assembler, ops []operand, lineNo int) (uint16, error) {
		switch {
		case shape(ops, kindReg):
			return 0x8000 | xy(ops[0].reg, 0) | n, nil
		case shape(ops, kindReg, kindReg):
			return 0x8000 | xy(ops[0].reg, ops[1].reg) | n, nil
		}
		return 0, operandError(ops, lineNo)
	}
}

func encodeRND(a *Assembler, ops []operand, lineNo int) (uint16, error) {
	if !shape(ops, kindReg, kindValue) {
		return 0, operandError(ops, lineNo)
	}
	nn, err := a.byteValue(ops[1], lineNo)
	return 0xC000 | ops[0].reg<<8 | nn, err
}

func encodeDRW(a *Assembler, ops []operand, lineNo int) (uint16, error) {
	if !shape(ops, kindReg, kindReg, kindValue) {
		return 0, operandError(ops, lineNo)
	}
	n, err := a.parseValue(ops[2].token, 0xF, lineNo)
	return 0xD000 | xy(ops[0].reg, ops[1].reg) | n, err
}

func encodeKey(nn uint16) encoder {
	return func(_ *Assembler, ops []operand, lineNo int) (uint16, error) {
		if !shape(ops, kindReg) {
			return 0, operandError(ops, lineNo)
		}
		return 0xE000 | ops[0].reg<<8 | nn, nil
	}
}

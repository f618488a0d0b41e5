package cpu

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies a decoded operation. The zero value is OpUnknown.
type Op uint8

const (
	OpUnknown Op = iota
	OpCLS
	OpRET
	OpJP
	OpCALL
	OpSEByte
	OpSNEByte
	OpSEReg
	OpLDByte
	OpADDByte
	OpLDReg
	OpOR
	OpAND
	OpXOR
	OpADDReg
	OpSUB
	OpSHR
	OpSUBN
	OpSHL
	OpSNEReg
	OpLDI
	OpJPV0
	OpRND
	OpDRW
	OpSKP
	OpSKNP
	OpLDVxDT
	OpLDVxK
	OpLDDTVx
	OpLDSTVx
	OpADDIVx
	OpLDFVx
	OpLDBVx
	OpStoreRegs
	OpLoadRegs

	opCount
)

type opInfo struct {
	name     string
	mnemonic string
}

var opTable = [opCount]opInfo{
	OpUnknown:   {"UNKNOWN", ""},
	OpCLS:       {"CLS", chip8.Cls.Name},
	OpRET:       {"RET", chip8.Ret.Name},
	OpJP:        {"JP addr", chip8.Jp.Name},
	OpCALL:      {"CALL addr", chip8.Call.Name},
	OpSEByte:    {"SE Vx, byte", chip8.Se.Name},
	OpSNEByte:   {"SNE Vx, byte", chip8.Sne.Name},
	OpSEReg:     {"SE Vx, Vy", chip8.Se.Name},
	OpLDByte:    {"LD Vx, byte", chip8.Ld.Name},
	OpADDByte:   {"ADD Vx, byte", chip8.Add.Name},
	OpLDReg:     {"LD Vx, Vy", chip8.Ld.Name},
	OpOR:        {"OR Vx, Vy", chip8.Or.Name},
	OpAND:       {"AND Vx, Vy", chip8.And.Name},
	OpXOR:       {"XOR Vx, Vy", chip8.Xor.Name},
	OpADDReg:    {"ADD Vx, Vy", chip8.Add.Name},
	OpSUB:       {"SUB Vx, Vy", chip8.Sub.Name},
	OpSHR:       {"SHR Vx", chip8.Shr.Name},
	OpSUBN:      {"SUBN Vx, Vy", chip8.Subn.Name},
	OpSHL:       {"SHL Vx", chip8.Shl.Name},
	OpSNEReg:    {"SNE Vx, Vy", chip8.Sne.Name},
	OpLDI:       {"LD I, addr", chip8.Ld.Name},
	OpJPV0:      {"JP V0, addr", chip8.Jp.Name},
	OpRND:       {"RND Vx, byte", chip8.Rnd.Name},
	OpDRW:       {"DRW Vx, Vy, n", chip8.Drw.Name},
	OpSKP:       {"SKP Vx", chip8.Skp.Name},
	OpSKNP:      {"SKNP Vx", chip8.Sknp.Name},
	OpLDVxDT:    {"LD Vx, DT", chip8.Ld.Name},
	OpLDVxK:     {"LD Vx, K", chip8.Ld.Name},
	OpLDDTVx:    {"LD DT, Vx", chip8.Ld.Name},
	OpLDSTVx:    {"LD ST, Vx", chip8.Ld.Name},
	OpADDIVx:    {"ADD I, Vx", chip8.Add.Name},
	OpLDFVx:     {"LD F, Vx", chip8.Ld.Name},
	OpLDBVx:     {"LD B, Vx", chip8.Ld.Name},
	OpStoreRegs: {"LD [I], Vx", chip8.Ld.Name},
	OpLoadRegs:  {"LD Vx, [I]", chip8.Ld.Name},
}

func (op Op) String() string {
	if op >= opCount {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return opTable[op].name
}

// Mnemonic returns the lower case assembler mnemonic shared by every form of
// the operation, e.g. "ld" for all the load variants.
func (op Op) Mnemonic() string {
	if op >= opCount {
		return ""
	}
	return opTable[op].mnemonic
}

// Instruction is one decoded opcode.
type Instruction struct {
	Opcode uint16
	X      uint8
	Y      uint8
	N      uint8
	NN     uint8
	NNN    uint16
	Upper  uint8
	Op     Op
}

// Opcodes selected by the top nibble alone.
var primaryOps = [16]Op{
	0x1: OpJP,
	0x2: OpCALL,
	0x3: OpSEByte,
	0x4: OpSNEByte,
	0x5: OpSEReg,
	0x6: OpLDByte,
	0x7: OpADDByte,
	0x9: OpSNEReg,
	0xA: OpLDI,
	0xB: OpJPV0,
	0xC: OpRND,
	0xD: OpDRW,
}

// 0x00NN, selected by the low byte.
var systemOps = map[uint8]Op{
	0xE0: OpCLS,
	0xEE: OpRET,
}

// 0x8XYN, selected by the low nibble.
var aluOps = [16]Op{
	0x0: OpLDReg,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADDReg,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

// 0xFXNN, selected by the low byte.
var miscOps = map[uint8]Op{
	0x07: OpLDVxDT,
	0x0A: OpLDVxK,
	0x15: OpLDDTVx,
	0x18: OpLDSTVx,
	0x1E: OpADDIVx,
	0x29: OpLDFVx,
	0x33: OpLDBVx,
	0x55: OpStoreRegs,
	0x65: OpLoadRegs,
}

// Decode splits an opcode into its fields and resolves the operation. It
// never fails: opcodes outside the instruction set yield OpUnknown.
func Decode(opcode uint16) Instruction {
	in := Instruction{
		Opcode: opcode,
		X:      uint8(opcode>>8) & 0xF,
		Y:      uint8(opcode>>4) & 0xF,
		N:      uint8(opcode) & 0xF,
		NN:     uint8(opcode),
		NNN:    opcode & 0x0FFF,
		Upper:  uint8(opcode >> 12),
	}

	switch in.Upper {
	case 0x0:
		in.Op = systemOps[in.NN]
	case 0x8:
		in.Op = aluOps[in.N]
	case 0xE:
		if in.NN == 0x9E {
			in.Op = OpSKP
		} else {
			in.Op = OpSKNP
		}
	case 0xF:
		in.Op = miscOps[in.NN]
	default:
		in.Op = primaryOps[in.Upper]
	}

	return in
}

func (in Instruction) String() string {
	return fmt.Sprintf("%04X %s", in.Opcode, in.Op)
}

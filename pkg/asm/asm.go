package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"

	"gochip8/pkg/cpu"
)

type operandKind int

const (
	kindValue    operandKind = iota // number or label
	kindReg                         // V0-VF
	kindI                           // I
	kindIndirect                    // [I]
	kindDT
	kindST
	kindK
	kindF
	kindB
)

type operand struct {
	kind  operandKind
	reg   uint16
	token string
}

// encoder turns the operands of one instruction into its opcode.
type encoder func(a *Assembler, ops []operand, lineNo int) (uint16, error)

// Mnemonics are keyed by the lower case names of the reference CHIP-8
// instruction table.
var encoders = map[string]encoder{
	chip8.Cls.Name:  fixed(0x00E0),
	chip8.Ret.Name:  fixed(0x00EE),
	chip8.Jp.Name:   encodeJP,
	chip8.Call.Name: encodeCall,
	chip8.Se.Name:   encodeSkip(0x3000, 0x5000),
	chip8.Sne.Name:  encodeSkip(0x4000, 0x9000),
	chip8.Ld.Name:   encodeLD,
	chip8.Add.Name:  encodeADD,
	chip8.Or.Name:   encodeALU(0x1),
	chip8.And.Name:  encodeALU(0x2),
	chip8.Xor.Name:  encodeALU(0x3),
	chip8.Sub.Name:  encodeALU(0x5),
	chip8.Shr.Name:  encodeShift(0x6),
	chip8.Subn.Name: encodeALU(0x7),
	chip8.Shl.Name:  encodeShift(0xE),
	chip8.Rnd.Name:  encodeRND,
	chip8.Drw.Name:  encodeDRW,
	chip8.Skp.Name:  encodeKey(0x9E),
	chip8.Sknp.Name: encodeKey(0xA1),
}

var reservedNames = map[string]bool{
	"I": true, "DT": true, "ST": true, "K": true, "F": true, "B": true,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates CHIP-8 assembly into a program image that starts at
// cpu.ProgramStart. The returned source map is keyed by absolute address.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// Labels returns the resolved address of every label, keyed by the
// normalised label name.
func (a *Assembler) Labels() map[string]uint16 {
	return a.labels
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(cpu.ProgramStart)
	limit := uint32(cpu.MemorySize)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address > uint32(cpu.MaxAddress) {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue

		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			address += uint32(len(p.operands))

		case ".WORD":
			if len(p.operands) != 1 {
				return fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			address += 2

		default:
			length, ok := instructionLength(p.mnemonic)
			if !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			address += uint32(length)
		}

		if address > limit {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		mnemonic := p.mnemonic
		ops := p.operands

		if mnemonic == ".ORG" {
			target, err := parseOrigin(ops, lineNo)
			if err != nil {
				return nil, nil, err
			}
			padding := int(target) - int(cpu.ProgramStart) - len(program)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			if padding > 0 {
				program = append(program, make([]byte, padding)...)
			}
			continue
		}

		sourceMap[cpu.ProgramStart+uint16(len(program))] = lineNo

		if mnemonic == ".BYTE" {
			for _, op := range ops {
				val, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue
		}

		if mnemonic == ".WORD" {
			val, err := a.parseValue(ops[0], 0xFFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(val>>8), byte(val&0xFF))
			continue
		}

		enc, ok := encoders[strings.ToLower(mnemonic)]
		if !ok {
			return nil, nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
		}
		operands := make([]operand, 0, len(ops))
		for _, tok := range ops {
			operands = append(operands, classify(tok))
		}
		instr, err := enc(a, operands, lineNo)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", mnemonic, err)
		}
		program = append(program, byte(instr>>8), byte(instr&0xFF))
	}

	return program, sourceMap, nil
}

func parseOrigin(ops []string, lineNo int) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := parseNumber(ops[0])
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
	}
	if target < uint64(cpu.ProgramStart) || target > uint64(cpu.MaxAddress) {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, ops[0])
	}
	return uint32(target), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) || isReserved(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = normalizeInstructionText(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	replacer := strings.NewReplacer(",", " ", "[ ", "[", " ]", "]")
	return replacer.Replace(line)
}

func classify(token string) operand {
	upper := strings.ToUpper(token)
	switch upper {
	case "I":
		return operand{kind: kindI, token: token}
	case "[I]":
		return operand{kind: kindIndirect, token: token}
	case "DT":
		return operand{kind: kindDT, token: token}
	case "ST":
		return operand{kind: kindST, token: token}
	case "K":
		return operand{kind: kindK, token: token}
	case "F":
		return operand{kind: kindF, token: token}
	case "B":
		return operand{kind: kindB, token: token}
	}
	if reg, ok := parseRegister(upper); ok {
		return operand{kind: kindReg, reg: reg, token: token}
	}
	return operand{kind: kindValue, token: token}
}

func parseRegister(token string) (uint16, bool) {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return 0, false
	}
	n, err := strconv.ParseUint(token[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// parseNumber accepts $hex, %binary and anything strconv understands with
// base 0 (decimal, 0x, 0b, 0o).
func parseNumber(token string) (uint64, error) {
	switch {
	case strings.HasPrefix(token, "$"):
		return strconv.ParseUint(token[1:], 16, 32)
	case strings.HasPrefix(token, "%"):
		return strconv.ParseUint(token[1:], 2, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

func (a *Assembler) parseValue(token string, limit uint64, lineNo int) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > limit {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if uint64(addr) > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

// instructionLength returns the byte length of an instruction. Every CHIP-8
// instruction is one big-endian word.
func instructionLength(mnemonic string) (uint16, bool) {
	if _, ok := encoders[strings.ToLower(mnemonic)]; ok {
		return 2, true
	}
	return 0, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

// isReserved reports whether a name collides with an operand keyword or a
// register.
func isReserved(s string) bool {
	upper := strings.ToUpper(s)
	if reservedNames[upper] {
		return true
	}
	_, isReg := parseRegister(upper)
	return isReg
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}

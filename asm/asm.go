// Package asm is the single-pass assembler: mnemonic text in, a packed byte
// image out, following the fixed encoding in package isa.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"vc8/bitbyte"
	"vc8/cpu"
	"vc8/isa"
)

// Result is everything assembling a source buffer produces.
type Result struct {
	Image   []byte
	Symbols map[uint8]string // address -> source line, when Options.LineComments is set
}

// Options configures the assembler.
type Options struct {
	// LineComments records a debug symbol for each emitted instruction's
	// address, pointing back at the source line that produced it.
	LineComments bool
}

type constant struct {
	value uint8
}

// Assemble translates assembly source text (one instruction or directive per
// line) into a packed binary image.
func Assemble(source string, opts Options) (Result, error) {
	constants := map[string]constant{}
	var image []byte
	symbols := map[uint8]string{}

	for lineNo, raw := range strings.Split(source, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if strings.EqualFold(fields[0], "%ASSIGN") {
			if len(fields) != 3 {
				return Result{}, fmt.Errorf("asm: line %d: %%ASSIGN needs a name and a value", lineNo+1)
			}
			v, err := resolveOperand(fields[2], constants)
			if err != nil {
				return Result{}, fmt.Errorf("asm: line %d: %w", lineNo+1, err)
			}
			constants[strings.ToUpper(fields[1])] = constant{value: v}
			continue
		}

		instr, err := parseInstruction(fields, constants)
		if err != nil {
			return Result{}, fmt.Errorf("asm: line %d: %w", lineNo+1, err)
		}

		addr := uint8(len(image))
		bytes, err := isa.Encode(instr)
		if err != nil {
			return Result{}, fmt.Errorf("asm: line %d: %w", lineNo+1, err)
		}
		if len(image)+len(bytes) > 256 {
			return Result{}, fmt.Errorf("asm: line %d: program exceeds 256 bytes", lineNo+1)
		}
		image = append(image, bytes...)
		if opts.LineComments {
			symbols[addr] = strings.TrimSpace(raw)
		}
	}

	return Result{Image: image, Symbols: symbols}, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		return line[:i]
	}
	return line
}

var errUnknownMnemonic = fmt.Errorf("asm: unknown mnemonic")

func parseInstruction(fields []string, constants map[string]constant) (isa.Instruction, error) {
	mnemonic := isa.Mnemonic(strings.ToUpper(fields[0]))
	operands := strings.Join(fields[1:], " ")
	operandList := splitOperands(operands)

	reg := func(i int) (cpu.Register, error) { return parseRegister(at(operandList, i)) }
	val := func(i int) (uint8, error) { return resolveOperand(at(operandList, i), constants) }

	switch mnemonic {
	case isa.ADD, isa.SUB, isa.MUL, isa.DIV, isa.AND, isa.OR, isa.XOR, isa.CPY:
		r1, err := reg(0)
		if err != nil {
			return isa.Instruction{}, err
		}
		r2, err := reg(1)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Mnemonic: mnemonic, Reg: r1, Reg2: r2}, nil

	case isa.NOT, isa.OUT, isa.MSG, isa.INC, isa.DEC, isa.CMPNEG, isa.CMPZRO, isa.CMPABV:
		r1, err := reg(0)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Mnemonic: mnemonic, Reg: r1}, nil

	case isa.RPRT, isa.WPRT:
		r1, err := reg(0)
		if err != nil {
			return isa.Instruction{}, err
		}
		p, err := val(1)
		if err != nil {
			return isa.Instruction{}, err
		}
		if p > 7 {
			return isa.Instruction{}, fmt.Errorf("port %d out of range 0..7", p)
		}
		return isa.Instruction{Mnemonic: mnemonic, Reg: r1, Port: p}, nil

	case isa.STR, isa.LDR:
		r1, err := reg(0)
		if err != nil {
			return isa.Instruction{}, err
		}
		addr, err := val(1)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Mnemonic: mnemonic, Reg: r1, Addr: addr}, nil

	case isa.MOV, isa.SHL, isa.SHR:
		r1, err := reg(0)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, err := val(1)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Mnemonic: mnemonic, Reg: r1, Imm: bitbyte.FromUint8(imm)}, nil

	case isa.JMP, isa.JMPNEG, isa.JMPZRO, isa.JMPABV:
		addr, err := val(0)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Mnemonic: mnemonic, Addr: addr}, nil

	case isa.HALT:
		return isa.Instruction{Mnemonic: isa.HALT}, nil
	}

	return isa.Instruction{}, fmt.Errorf("%w: %q", errUnknownMnemonic, fields[0])
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

// splitOperands separates operands on commas and/or whitespace, so both
// "MOV R0, 3" and "MOV R0 3" are accepted.
func splitOperands(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func parseRegister(s string) (cpu.Register, error) {
	switch strings.ToUpper(s) {
	case "R0":
		return cpu.R0, nil
	case "R1":
		return cpu.R1, nil
	case "R2":
		return cpu.R2, nil
	case "R3":
		return cpu.R3, nil
	}
	return 0, fmt.Errorf("asm: %q is not a register", s)
}

// resolveOperand parses a numeric operand in any of the accepted forms:
// binary (#bbbbbbbb), hex (0x..), decimal, or a previously %ASSIGN'd name.
func resolveOperand(s string, constants map[string]constant) (uint8, error) {
	if s == "" {
		return 0, fmt.Errorf("asm: missing operand")
	}

	switch {
	case strings.HasPrefix(s, "#"):
		bits := s[1:]
		if len(bits) != 8 {
			return 0, fmt.Errorf("asm: binary literal %q must have 8 digits", s)
		}
		n, err := strconv.ParseUint(bits, 2, 8)
		if err != nil {
			return 0, fmt.Errorf("asm: invalid binary literal %q: %w", s, err)
		}
		return uint8(n), nil

	case strings.HasPrefix(strings.ToLower(s), "0x"):
		n, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("asm: invalid hex literal %q: %w", s, err)
		}
		return uint8(n), nil

	default:
		if n, err := strconv.ParseUint(s, 10, 8); err == nil {
			return uint8(n), nil
		}
		if c, ok := constants[strings.ToUpper(s)]; ok {
			return c.value, nil
		}
		return 0, fmt.Errorf("asm: %q is neither a number nor a known %%ASSIGN constant", s)
	}
}

package vm

import (
	"fmt"
	"strings"

	"vc8/isa"
)

// Disassemble renders a packed image back into one mnemonic line per
// instruction, address-prefixed. It is a read-only, side-effect-free
// decode loop over the same isa.Decode the VM itself uses.
func Disassemble(image []byte) (string, error) {
	var sb strings.Builder
	for addr := 0; addr < len(image); {
		var window [2]byte
		window[0] = image[addr]
		if addr+1 < len(image) {
			window[1] = image[addr+1]
		}
		instr, err := isa.Decode(window)
		if err != nil {
			return "", fmt.Errorf("vm: disassemble at %d: %w", addr, err)
		}
		fmt.Fprintf(&sb, "%3d: %s\n", addr, formatMnemonic(instr))
		addr += instr.Width
	}
	return sb.String(), nil
}

func formatMnemonic(in isa.Instruction) string {
	switch in.Mnemonic {
	case isa.STR, isa.LDR:
		return fmt.Sprintf("%s %s, %d", in.Mnemonic, in.Reg, in.Addr)
	case isa.MOV, isa.SHL, isa.SHR:
		return fmt.Sprintf("%s %s, %d", in.Mnemonic, in.Reg, in.Imm.ToUint8())
	case isa.CPY, isa.ADD, isa.SUB, isa.MUL, isa.DIV, isa.AND, isa.OR, isa.XOR:
		return fmt.Sprintf("%s %s, %s", in.Mnemonic, in.Reg, in.Reg2)
	case isa.RPRT, isa.WPRT:
		return fmt.Sprintf("%s %s, %d", in.Mnemonic, in.Reg, in.Port)
	case isa.JMP, isa.JMPNEG, isa.JMPZRO, isa.JMPABV:
		return fmt.Sprintf("%s %d", in.Mnemonic, in.Addr)
	case isa.NOT, isa.OUT, isa.MSG, isa.INC, isa.DEC, isa.CMPNEG, isa.CMPZRO, isa.CMPABV:
		return fmt.Sprintf("%s %s", in.Mnemonic, in.Reg)
	default:
		return string(in.Mnemonic)
	}
}

// Package vm implements the fetch/decode/execute loop for the 8-bit virtual
// computer: a VM owns a RAM, a register file and a Ports surface, and steps
// through a loaded program one instruction at a time.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"vc8/bitbyte"
	"vc8/cpu"
	"vc8/isa"
)

// VM is one running instance of the machine.
type VM struct {
	RAM   RAM
	Regs  cpu.Registers
	Ports Ports

	stdout *bufio.Writer

	halted bool
	err    error

	// Debug symbols: byte address -> source line, populated by the loader
	// when assembling with line comments enabled. Optional; nil means no
	// symbol information is available.
	symbols map[uint8]string
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithOutput overrides where OUT/MSG write to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.stdout = bufio.NewWriter(w) }
}

// WithPorts supplies a Ports implementation other than the default in-memory
// one, e.g. a file-backed adapter assembled by the CLI.
func WithPorts(p Ports) Option {
	return func(vm *VM) { vm.Ports = p }
}

// WithSymbols attaches address->source-line debug information produced by
// the assembler when Options.LineComments is set, used to format diagnostics.
func WithSymbols(symbols map[uint8]string) Option {
	return func(vm *VM) { vm.symbols = symbols }
}

// New constructs a VM with a loaded program image.
func New(image []byte, opts ...Option) (*VM, error) {
	vm := &VM{
		Ports:  NewMemoryPorts(),
		stdout: bufio.NewWriter(os.Stdout),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if err := vm.RAM.Load(image); err != nil {
		return nil, err
	}
	return vm, nil
}

// Halted reports whether the machine has executed HALT or hit a fatal error.
func (vm *VM) Halted() bool {
	return vm.halted
}

// Err returns the error that stopped the machine, if any. A clean HALT
// reports nil.
func (vm *VM) Err() error {
	if vm.err == errProgramFinished {
		return nil
	}
	return vm.err
}

func (vm *VM) formatFault(addr uint8, msg string) string {
	line, ok := vm.symbols[addr]
	if !ok {
		return fmt.Sprintf("%s (address %d)", msg, addr)
	}
	return fmt.Sprintf("%s (address %d: %s)", msg, addr, line)
}

// Step executes exactly one instruction. It returns false once the machine
// has halted or faulted; callers should stop looping at that point and
// inspect Err.
func (vm *VM) Step() (ok bool) {
	if vm.halted {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			vm.halted = true
			vm.err = fmt.Errorf("%w: %v", errSegmentationFault, r)
			ok = false
		}
	}()

	addr := vm.RAM.Cursor()
	window := vm.RAM.FetchStream()
	instr, err := isa.Decode(window)
	if err != nil {
		vm.halted = true
		vm.err = fmt.Errorf("%s: %w", vm.formatFault(addr, "decode failed"), err)
		return false
	}
	if instr.Width == 1 {
		vm.RAM.Rewind()
	}

	if err := vm.exec(instr); err != nil {
		vm.halted = true
		if instr.Mnemonic == isa.HALT {
			vm.err = errProgramFinished
		} else {
			vm.err = fmt.Errorf("%s: %w", vm.formatFault(addr, string(instr.Mnemonic)), err)
		}
		return false
	}
	return true
}

var errHalt = fmt.Errorf("halt")

func (vm *VM) exec(in isa.Instruction) error {
	switch in.Mnemonic {
	case isa.ADD:
		return vm.Regs.Arith(cpu.OpAdd, in.Reg, vm.Regs.Get(in.Reg2))
	case isa.SUB:
		return vm.Regs.Arith(cpu.OpSub, in.Reg, vm.Regs.Get(in.Reg2))
	case isa.MUL:
		return vm.Regs.Arith(cpu.OpMul, in.Reg, vm.Regs.Get(in.Reg2))
	case isa.DIV:
		if err := vm.Regs.Arith(cpu.OpDiv, in.Reg, vm.Regs.Get(in.Reg2)); err != nil {
			return fmt.Errorf("%w", errDivisionByZero)
		}
		return nil

	case isa.NOT:
		vm.Regs.Apply(cpu.LogicNot, in.Reg, bitbyte.Zero)
	case isa.AND:
		vm.Regs.Apply(cpu.LogicAnd, in.Reg, vm.Regs.Get(in.Reg2))
	case isa.OR:
		vm.Regs.Apply(cpu.LogicOr, in.Reg, vm.Regs.Get(in.Reg2))
	case isa.XOR:
		vm.Regs.Apply(cpu.LogicXor, in.Reg, vm.Regs.Get(in.Reg2))

	case isa.RPRT:
		vm.Regs.Set(in.Reg, vm.Ports.Read(in.Port))
	case isa.WPRT:
		vm.Ports.Write(in.Port, vm.Regs.Get(in.Reg))

	case isa.STR:
		vm.RAM.Set(in.Addr, vm.Regs.Get(in.Reg))
	case isa.LDR:
		vm.Regs.Set(in.Reg, vm.RAM.Get(in.Addr))
	case isa.MOV:
		vm.Regs.Set(in.Reg, in.Imm)
	case isa.CPY:
		vm.Regs.Set(in.Reg, vm.Regs.Get(in.Reg2))
	case isa.SHL:
		vm.Regs.Set(in.Reg, vm.Regs.Get(in.Reg).Shift(int(in.Imm.ToUint8())))
	case isa.SHR:
		vm.Regs.Set(in.Reg, vm.Regs.Get(in.Reg).Shift(-int(in.Imm.ToUint8())))

	case isa.OUT:
		fmt.Fprint(vm.stdout, vm.Regs.Get(in.Reg).String())
		vm.stdout.Flush()
	case isa.MSG:
		fmt.Fprintf(vm.stdout, "%c", vm.Regs.Get(in.Reg).ToRune())
		vm.stdout.Flush()

	case isa.INC:
		vm.Regs.Set(in.Reg, vm.Regs.Get(in.Reg).Inc())
	case isa.DEC:
		vm.Regs.Set(in.Reg, vm.Regs.Get(in.Reg).Dec())

	case isa.JMP:
		vm.RAM.SetCursor(in.Addr)
	case isa.JMPNEG:
		if vm.Regs.Flags.Negative {
			vm.RAM.SetCursor(in.Addr)
		}
	case isa.JMPZRO:
		if vm.Regs.Flags.Zero {
			vm.RAM.SetCursor(in.Addr)
		}
	case isa.JMPABV:
		if !vm.Regs.Flags.Negative && !vm.Regs.Flags.Zero {
			vm.RAM.SetCursor(in.Addr)
		}

	case isa.CMPNEG:
		vm.Regs.Set(in.Reg, boolByte(vm.Regs.Flags.Negative))
	case isa.CMPZRO:
		vm.Regs.Set(in.Reg, boolByte(vm.Regs.Flags.Zero))
	case isa.CMPABV:
		vm.Regs.Set(in.Reg, boolByte(!vm.Regs.Flags.Negative && !vm.Regs.Flags.Zero))

	case isa.HALT:
		return errHalt

	default:
		return fmt.Errorf("vm: unimplemented mnemonic %q", in.Mnemonic)
	}
	return nil
}

// boolByte is the machine's boolean convention: all-one bits for true,
// all-zero for false. This lets the compiler use the plain bitwise NOT
// instruction as logical negation on any value CMP_ZRO/CMP_NEG/CMP_ABV or a
// bool literal can produce.
func boolByte(b bool) bitbyte.Byte {
	if b {
		return bitbyte.FromUint8(0xFF)
	}
	return bitbyte.Zero
}

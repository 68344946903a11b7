package vm

import (
	"bufio"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
)

// Run executes the loaded program to completion (HALT or a fatal error).
// The garbage collector is disabled for the duration of the tight loop,
// mirroring the reasoning the teacher VM uses for its own hot loop: the
// program's memory is allocated up front, and a GC pause mid-instruction
// would only cost time for no benefit.
func (vm *VM) Run() error {
	restore := pauseGC()
	defer restore()

	for vm.Step() {
	}
	return vm.Err()
}

func pauseGC() func() {
	percent := 100
	if v, ok := os.LookupEnv("GOGC"); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			percent = parsed
		}
	}
	debug.SetGCPercent(-1)
	return func() { debug.SetGCPercent(percent) }
}

// RunInteractive drives a line-oriented single-step debugger over stdin,
// generalizing the same small command set a breakpoint-capable interpreter
// needs: step one instruction, run to completion or to a breakpoint, toggle
// a breakpoint on an address, or dump the current program.
func (vm *VM) RunInteractive(program []byte, out *os.File) {
	restore := pauseGC()
	defer restore()

	fmt.Fprintln(out, "Commands:\n\tn or next: execute next instruction\n\tr or run: run program\n\tb or break <addr>: toggle breakpoint at address")
	vm.printState(out)

	reader := bufio.NewReader(os.Stdin)
	breakpoints := make(map[uint8]struct{})
	running := false
	lastBreak := int(-1)

	for !vm.halted {
		if running {
			addr := int(vm.RAM.Cursor())
			if _, hit := breakpoints[uint8(addr)]; hit && lastBreak != addr {
				fmt.Fprintln(out, "breakpoint")
				vm.printState(out)
				running = false
				lastBreak = addr
				continue
			}
		} else {
			fmt.Fprint(out, "\n->")
			line, _ := reader.ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))

			switch {
			case line == "n" || line == "next":
				lastBreak = -1
				if !vm.Step() {
					vm.reportFault(out)
					return
				}
				vm.printState(out)
				continue
			case line == "r" || line == "run":
				running = true
				continue
			case line == "program":
				vm.printProgram(out, program)
				continue
			case strings.HasPrefix(line, "b"):
				fields := strings.Fields(line)
				if len(fields) != 2 {
					fmt.Fprintln(out, "usage: b <addr>")
					continue
				}
				n, err := strconv.Atoi(fields[1])
				if err != nil || n < 0 || n > 255 {
					fmt.Fprintln(out, "unknown address:", fields[1])
					continue
				}
				addr := uint8(n)
				if _, ok := breakpoints[addr]; ok {
					delete(breakpoints, addr)
				} else {
					breakpoints[addr] = struct{}{}
				}
				continue
			default:
				continue
			}
		}

		lastBreak = -1
		if !vm.Step() {
			vm.reportFault(out)
			return
		}
	}
}

func (vm *VM) reportFault(out *os.File) {
	if err := vm.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

func (vm *VM) printState(out *os.File) {
	fmt.Fprintf(out, "pc=%-3d R0=%-3d R1=%-3d R2=%-3d R3=%-3d flags{C:%v Z:%v N:%v}\n",
		vm.RAM.Cursor(),
		vm.Regs.Get(0).ToUint8(), vm.Regs.Get(1).ToUint8(),
		vm.Regs.Get(2).ToUint8(), vm.Regs.Get(3).ToUint8(),
		vm.Regs.Flags.Carry, vm.Regs.Flags.Zero, vm.Regs.Flags.Negative)
}

func (vm *VM) printProgram(out *os.File, program []byte) {
	for i := 0; i < len(program); i++ {
		marker := "  "
		if uint8(i) == vm.RAM.Cursor() {
			marker = "->"
		}
		fmt.Fprintf(out, "%s %3d: %08b\n", marker, i, program[i])
	}
}

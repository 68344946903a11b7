package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"vc8/isa"
	"vc8/vm"
)

func newDebugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug <program>",
		Short: "interactively step through a program with a breakpoint-aware TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, symbols, err := loadImage(args[0])
			if err != nil {
				return err
			}
			machine, err := vm.New(image, vm.WithSymbols(symbols))
			if err != nil {
				return err
			}
			m := newDebugModel(machine, image)
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
	return cmd
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DD3FC"))
	cursorRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE")).Bold(true)
	breakRowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	faultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type debugModel struct {
	vm      *vm.VM
	program []byte

	breakpoints map[uint8]struct{}
	running     bool
	fault       string

	viewport viewport.Model
}

func newDebugModel(machine *vm.VM, program []byte) debugModel {
	return debugModel{
		vm:          machine,
		program:     program,
		breakpoints: map[uint8]struct{}{},
		viewport:    viewport.New(60, 20),
	}
}

func (m debugModel) Init() tea.Cmd {
	return nil
}

type tickMsg struct{}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 8
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "n":
			m.running = false
			m.step()
			return m, nil
		case "r":
			m.running = true
			return m, m.runUntilStopped
		case "b":
			addr := m.vm.RAM.Cursor()
			if _, ok := m.breakpoints[addr]; ok {
				delete(m.breakpoints, addr)
			} else {
				m.breakpoints[addr] = struct{}{}
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.viewport.SetContent(m.disassemblyListing())
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case tickMsg:
		if m.running {
			m.step()
			if _, hit := m.breakpoints[m.vm.RAM.Cursor()]; hit {
				m.running = false
				return m, nil
			}
			if !m.vm.Halted() {
				return m, m.runUntilStopped
			}
		}
	}
	return m, nil
}

func (m *debugModel) step() {
	if m.vm.Halted() {
		return
	}
	if !m.vm.Step() {
		if err := m.vm.Err(); err != nil {
			m.fault = err.Error()
		}
	}
}

func (m debugModel) runUntilStopped() tea.Msg {
	return tickMsg{}
}

// disassemblyListing renders the full program as one styled row per
// instruction, marking the current cursor and any active breakpoints.
func (m debugModel) disassemblyListing() string {
	var sb strings.Builder

	for addr := 0; addr < len(m.program); {
		var window [2]byte
		window[0] = m.program[addr]
		if addr+1 < len(m.program) {
			window[1] = m.program[addr+1]
		}
		instr, err := isa.Decode(window)
		width := 1
		line := fmt.Sprintf("%3d: ????", addr)
		if err == nil {
			width = instr.Width
			line = fmt.Sprintf("%3d: %s", addr, instr.Mnemonic)
		}

		_, isBreak := m.breakpoints[uint8(addr)]
		switch {
		case uint8(addr) == m.vm.RAM.Cursor():
			sb.WriteString(cursorRowStyle.Render("-> "+line) + "\n")
		case isBreak:
			sb.WriteString(breakRowStyle.Render(" * "+line) + "\n")
		default:
			sb.WriteString("   " + line + "\n")
		}
		addr += width
	}

	return sb.String()
}

func (m debugModel) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("vc8 debugger") + "\n\n")
	sb.WriteString(fmt.Sprintf(
		"pc=%-3d  R0=%-3d R1=%-3d R2=%-3d R3=%-3d  flags{carry:%v zero:%v negative:%v}\n\n",
		m.vm.RAM.Cursor(),
		m.vm.Regs.Get(0).ToUint8(), m.vm.Regs.Get(1).ToUint8(),
		m.vm.Regs.Get(2).ToUint8(), m.vm.Regs.Get(3).ToUint8(),
		m.vm.Regs.Flags.Carry, m.vm.Regs.Flags.Zero, m.vm.Regs.Flags.Negative,
	))

	m.viewport.SetContent(m.disassemblyListing())
	sb.WriteString(m.viewport.View())

	if m.fault != "" {
		sb.WriteString("\n" + faultStyle.Render(m.fault) + "\n")
	} else if m.vm.Halted() {
		sb.WriteString("\n" + headerStyle.Render("program finished") + "\n")
	}

	sb.WriteString("\n" + helpStyle.Render("n: step   r: run   b: toggle breakpoint   arrows: scroll   q: quit"))
	return sb.String()
}

// Package monitor is an interactive bubbletea step-debugger collaborator
// over a system.System: "j"/space steps one instruction, "r" runs free
// until Halted/Stopped, "q" quits. Adapted from hejops-gone/cpu/debugger.go's
// model/status/pageTable/View shape, pointed at the cpu package's real
// register/flag names instead of that teacher's Cpu type.
package monitor

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/bdwalton/mos6502/cpu"
	"github.com/bdwalton/mos6502/disasm"
	"github.com/bdwalton/mos6502/system"
)

type model struct {
	sys      *system.System
	offset   uint16 // top row of the page table view
	prevPC   uint16
	showDump bool
}

const bytesPerRow = 16

// Run starts the interactive monitor on sys, with the page table
// initially scrolled to show pc.
func Run(sys *system.System, pc uint16) error {
	m := model{sys: sys, offset: pc &^ (bytesPerRow - 1)}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.sys.CPU.PC
			m.sys.CPU.Step()

		case "r":
			m.prevPC = m.sys.CPU.PC
			m.sys.Run(context.Background(), true, 0)

		case "d":
			m.showDump = !m.showDump
		}
	}
	return m, nil
}

func (m model) renderRow(start uint16) string {
	row := fmt.Sprintf("%04X | ", start)
	for i := uint16(0); i < bytesPerRow; i++ {
		addr := start + i
		b := m.sys.Memory.Read(addr)
		if addr == m.sys.CPU.PC {
			row += fmt.Sprintf("[%02X]", b)
		} else {
			row += fmt.Sprintf(" %02X ", b)
		}
	}
	return row
}

func (m model) pageTable() string {
	header := "addr | "
	for b := 0; b < bytesPerRow; b++ {
		header += fmt.Sprintf(" %01X  ", b)
	}

	rows := []string{header}
	for r := 0; r < 6; r++ {
		rows = append(rows, m.renderRow(m.offset+uint16(r*bytesPerRow)))
	}
	return strings.Join(rows, "\n")
}

func (m model) status() string {
	c := m.sys.CPU
	flagLetters := "NV_BDIZC"
	var bits strings.Builder
	for i, name := range flagLetters {
		mask := uint8(1) << (7 - i)
		if c.P&mask != 0 {
			bits.WriteRune(name)
		} else {
			bits.WriteByte('.')
		}
	}

	return fmt.Sprintf(
		"PC: $%04X (prev $%04X)\nA:  $%02X\nX:  $%02X\nY:  $%02X\nSP: $%02X\nP:  %s\nstate: %v  cycles: %d  instructions: %d",
		c.PC, m.prevPC, c.A, c.X, c.Y, c.SP, bits.String(),
		c.State(), c.Stats().Cycles, c.Stats().Instructions,
	)
}

func (m model) View() string {
	line := disasm.One(m.sys.Memory, m.sys.CPU.PC)
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), "   ", m.status()),
		"",
		"next: " + line.Text,
	}
	if m.showDump {
		rows = append(rows, dumpOpcode(m.sys.CPU))
	}
	rows = append(rows, "", "space/j: step   r: run   d: dump decode entry   q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// dumpOpcode is a go-spew escape hatch for a deeper look at the decode-
// table entry under PC, toggled by the "d" key, grounded on the
// teacher's spew.Sdump(Opcodes[...]) line in its own View.
func dumpOpcode(c *cpu.CPU) string {
	return spew.Sdump(cpu.Opcodes[c.Read(c.PC)])
}

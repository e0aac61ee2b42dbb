// Package disasm formats 6502 instructions at a given address as
// display text, for viewers and debuggers. It is a pure view: it
// never writes to memory. Grounded on the teacher's cpu.String()/BIOS
// memory-dump case and on master-g-childhood's Disassembly/Stringify
// shape for building a range listing.
package disasm

import (
	"fmt"
	"strings"

	"github.com/bdwalton/mos6502/cpu"
	"github.com/bdwalton/mos6502/mem"
)

// Line is one disassembled instruction: its address, the raw bytes it
// occupies, and its rendered text.
type Line struct {
	Addr  uint16
	Bytes []uint8
	Text  string
}

// One reads up to three bytes at addr and formats them as one
// disassembled line: address, byte dump, mnemonic and operand.
// Relative-mode operands print the absolute branch target
// (addr + signed8(op8) + 2), per §4.7.
func One(m *mem.Memory, addr uint16) Line {
	inst := cpu.Opcodes[m.Read(addr)]
	size := int(inst.Size)
	if size < 1 {
		size = 1
	}

	bytes := make([]uint8, size)
	for i := 0; i < size; i++ {
		bytes[i] = m.Read(addr + uint16(i))
	}

	return Line{
		Addr:  addr,
		Bytes: bytes,
		Text:  format(inst, addr, bytes),
	}
}

// Step returns the address of the instruction immediately following
// the one at addr (§4.7 "step() advances by the current instruction's
// size").
func Step(m *mem.Memory, addr uint16) uint16 {
	inst := cpu.Opcodes[m.Read(addr)]
	size := uint16(inst.Size)
	if size == 0 {
		size = 1
	}
	return addr + size
}

// Listing disassembles every instruction between start and end
// inclusive, walking by instruction size, and returns them as a
// sequence of Lines. Used by a viewer to page through a range in one
// pass (SPEC_FULL "Disassembly index").
func Listing(m *mem.Memory, start, end uint16) []Line {
	var lines []Line
	addr := start
	for {
		l := One(m, addr)
		lines = append(lines, l)
		next := Step(m, addr)
		if addr >= end || next <= addr {
			break
		}
		addr = next
	}
	return lines
}

func format(inst cpu.Instruction, addr uint16, bytes []uint8) string {
	hex := make([]string, len(bytes))
	for i, b := range bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	dump := strings.Join(hex, " ")

	operand := formatOperand(inst, addr, bytes)
	mnem := inst.Mnemonic.String()
	if operand != "" {
		mnem = mnem + " " + operand
	}

	return fmt.Sprintf("%04X: %-8s  %s", addr, dump, mnem)
}

func formatOperand(inst cpu.Instruction, addr uint16, bytes []uint8) string {
	var op8 uint8
	var op16 uint16
	if len(bytes) > 1 {
		op8 = bytes[1]
	}
	if len(bytes) > 2 {
		op16 = uint16(bytes[1]) | uint16(bytes[2])<<8
	}

	switch inst.Mode {
	case cpu.Implied:
		return ""
	case cpu.Accumulator:
		return "A"
	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", op8)
	case cpu.Relative:
		target := addr + uint16(int8(op8)) + 2
		return fmt.Sprintf("$%04X", target)
	case cpu.ZeroPage:
		return fmt.Sprintf("$%02X", op8)
	case cpu.ZeroPageX:
		return fmt.Sprintf("$%02X,X", op8)
	case cpu.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", op8)
	case cpu.Absolute:
		return fmt.Sprintf("$%04X", op16)
	case cpu.AbsoluteX:
		return fmt.Sprintf("$%04X,X", op16)
	case cpu.AbsoluteY:
		return fmt.Sprintf("$%04X,Y", op16)
	case cpu.Indirect:
		return fmt.Sprintf("($%04X)", op16)
	case cpu.IndexedIndirectX:
		return fmt.Sprintf("($%02X,X)", op8)
	case cpu.IndirectIndexedY:
		return fmt.Sprintf("($%02X),Y", op8)
	default:
		return ""
	}
}

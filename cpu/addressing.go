package cpu

// operand is the effective-operand handle described in §9 Design
// Notes: an abstract lvalue over either the accumulator, an immediate
// byte already sitting in memory at PC+1, or a memory cell at some
// effective address. It lets every read-modify-write handler share one
// read/write path regardless of addressing mode.
type operand struct {
	kind operandKind
	addr uint16 // valid when kind == operandMemory or operandImmediate
	cpu  *CPU
}

type operandKind uint8

const (
	operandAccumulator operandKind = iota
	operandImmediate
	operandMemory
	operandNone // Implied/Relative: no operand handle is used
)

func (o operand) read() uint8 {
	switch o.kind {
	case operandAccumulator:
		return o.cpu.A
	case operandImmediate, operandMemory:
		return o.cpu.mem.Read(o.addr)
	default:
		return 0
	}
}

func (o operand) write(v uint8) {
	switch o.kind {
	case operandAccumulator:
		o.cpu.A = v
	case operandMemory:
		o.cpu.mem.Write(o.addr, v)
	default:
		// Immediate/None operands are never written; a write
		// here would indicate a decode-table/handler bug.
	}
}

// prepared is the result of running the addressing-mode unit for one
// instruction: the operand handle plus whether an indexed read crossed
// a page boundary (consumed for cycle accounting, §4.3).
type prepared struct {
	op            operand
	effectiveAddr uint16
	pageCrossed   bool
}

// crossesPage reports whether base and base+offset fall in different
// 256-byte pages.
func crossesPage(base, final uint16) bool {
	return base&0xFF00 != final&0xFF00
}

// prepare computes the effective address and operand handle for mode,
// given the instruction's operand bytes sitting just after the opcode
// byte. PC must already have been advanced past the opcode byte when
// prepare is called, so op8 is read at PC and op16 at PC/PC+1 (§4.2).
func (c *CPU) prepare(mode Mode) prepared {
	pc := c.PC
	op8 := func() uint8 { return c.mem.Read(pc) }
	op16 := func() uint16 { return c.mem.ReadWord(pc) }

	switch mode {
	case Implied, Relative:
		return prepared{op: operand{kind: operandNone}}

	case Accumulator:
		return prepared{op: operand{kind: operandAccumulator, cpu: c}}

	case Immediate:
		return prepared{op: operand{kind: operandImmediate, addr: pc, cpu: c}, effectiveAddr: pc}

	case ZeroPage:
		a := uint16(op8())
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a}

	case ZeroPageX:
		a := uint16(uint8(op8() + c.X))
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a}

	case ZeroPageY:
		a := uint16(uint8(op8() + c.Y))
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a}

	case Absolute:
		a := op16()
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a}

	case AbsoluteX:
		base := op16()
		a := base + uint16(c.X)
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a, pageCrossed: crossesPage(base, a)}

	case AbsoluteY:
		base := op16()
		a := base + uint16(c.Y)
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a, pageCrossed: crossesPage(base, a)}

	case Indirect:
		// §9: the classic $xxFF page-wrap hardware bug is NOT
		// replicated here; a straight 16-bit read is performed,
		// per SPEC_FULL's open-question decision.
		a := c.mem.ReadWord(op16())
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a}

	case IndexedIndirectX:
		ptr := uint16(uint8(op8() + c.X))
		a := c.mem.ReadWord(ptr)
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a}

	case IndirectIndexedY:
		base := c.mem.ReadWord(uint16(op8()))
		a := base + uint16(c.Y)
		return prepared{op: operand{kind: operandMemory, addr: a, cpu: c}, effectiveAddr: a, pageCrossed: crossesPage(base, a)}

	default:
		return prepared{op: operand{kind: operandNone}}
	}
}

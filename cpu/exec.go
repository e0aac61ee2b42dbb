package cpu

// execute dispatches inst's semantic handler against the already-
// prepared operand/effective-address pair (§4.3). This is the
// "decode table ... prep/exec pair ... dispatched through
// match/switch" shape §9 Design Notes recommends, in place of the
// teacher's reflect-based method lookup.
func (c *CPU) execute(inst Instruction, p prepared) {
	switch inst.Mnemonic {
	case ADC:
		c.adc(p.op.read())
	case AND:
		c.A &= p.op.read()
		c.computeNZ(c.A)
	case ASL:
		c.shiftLeft(p.op, false)
	case ROL:
		c.shiftLeft(p.op, true)
	case LSR:
		c.shiftRight(p.op, false)
	case ROR:
		c.shiftRight(p.op, true)
	case BCC:
		c.branch(!c.flag(FlagCarry))
	case BCS:
		c.branch(c.flag(FlagCarry))
	case BEQ:
		c.branch(c.flag(FlagZero))
	case BNE:
		c.branch(!c.flag(FlagZero))
	case BMI:
		c.branch(c.flag(FlagNegative))
	case BPL:
		c.branch(!c.flag(FlagNegative))
	case BVC:
		c.branch(!c.flag(FlagOverflow))
	case BVS:
		c.branch(c.flag(FlagOverflow))
	case BIT:
		c.bit(p.op.read())
	case BRK:
		c.brk()
	case CLC:
		c.flagsOff(FlagCarry)
	case CLD:
		c.flagsOff(FlagDecimal)
	case CLI:
		c.flagsOff(FlagInterrupt)
	case CLV:
		c.flagsOff(FlagOverflow)
	case SEC:
		c.flagsOn(FlagCarry)
	case SED:
		c.flagsOn(FlagDecimal)
	case SEI:
		c.flagsOn(FlagInterrupt)
	case CMP:
		c.compare(c.A, p.op.read())
	case CPX:
		c.compare(c.X, p.op.read())
	case CPY:
		c.compare(c.Y, p.op.read())
	case DEC:
		v := p.op.read() - 1
		p.op.write(v)
		c.computeNZ(v)
	case DEX:
		c.X--
		c.computeNZ(c.X)
	case DEY:
		c.Y--
		c.computeNZ(c.Y)
	case INC:
		v := p.op.read() + 1
		p.op.write(v)
		c.computeNZ(v)
	case INX:
		c.X++
		c.computeNZ(c.X)
	case INY:
		c.Y++
		c.computeNZ(c.Y)
	case EOR:
		c.A ^= p.op.read()
		c.computeNZ(c.A)
	case ORA:
		c.A |= p.op.read()
		c.computeNZ(c.A)
	case JMP:
		c.PC = p.effectiveAddr
	case JSR:
		c.pushWord(c.PC + uint16(inst.Size) - 2)
		c.PC = p.effectiveAddr
	case RTS:
		c.PC = c.popWord() + 1
	case RTI:
		c.popStatus()
		c.PC = c.popWord()
	case LDA:
		c.A = p.op.read()
		c.computeNZ(c.A)
	case LDX:
		c.X = p.op.read()
		c.computeNZ(c.X)
	case LDY:
		c.Y = p.op.read()
		c.computeNZ(c.Y)
	case STA:
		p.op.write(c.A)
	case STX:
		p.op.write(c.X)
	case STY:
		p.op.write(c.Y)
	case TAX:
		c.X = c.A
		c.computeNZ(c.X)
	case TAY:
		c.Y = c.A
		c.computeNZ(c.Y)
	case TSX:
		c.X = c.SP
		c.computeNZ(c.X)
	case TXA:
		c.A = c.X
		c.computeNZ(c.A)
	case TXS:
		c.SP = c.X
	case TYA:
		c.A = c.Y
		c.computeNZ(c.A)
	case PHA:
		c.pushByte(c.A)
	case PHP:
		c.pushStatus()
	case PLA:
		c.A = c.popByte()
		c.computeNZ(c.A)
	case PLP:
		c.popStatus()
	case SBC:
		c.sbc(p.op.read())
	case NOP:
		// no effect
	case halt:
		// unreachable: Step() intercepts halt before execute is called
	}
}

// pushByte stores v at the stack address then decrements SP,
// wrapping modulo 256 (§4.5).
func (c *CPU) pushByte(v uint8) {
	c.mem.Write(c.StackAddr(), v)
	c.SP--
}

// popByte increments SP then returns the byte at the new stack
// address, wrapping modulo 256 (§4.5).
func (c *CPU) popByte() uint8 {
	c.SP++
	return c.mem.Read(c.StackAddr())
}

// pushWord pushes v high byte first, then low byte (§4.5).
func (c *CPU) pushWord(v uint16) {
	c.pushByte(uint8(v >> 8))
	c.pushByte(uint8(v & 0xFF))
}

// popWord pulls the low byte then the high byte, round-tripping with
// pushWord (§4.5).
func (c *CPU) popWord() uint16 {
	lo := uint16(c.popByte())
	hi := uint16(c.popByte())
	return lo | hi<<8
}

// pushStatus pushes P with bit 5 and B forced on, the architected
// convention for a pushed status byte (§4.5).
func (c *CPU) pushStatus() {
	c.pushByte(c.P | FlagUnused | FlagBreak)
}

// popStatus pulls P, preserving only the live flags {N,V,D,I,Z,C}; B
// and bit 5 are phantoms and are not stored back (§4.5). RTI uses this
// directly and restores P verbatim, matching the classical spec
// rather than the source's extra I-flag clear (§9 open question,
// resolved in SPEC_FULL).
func (c *CPU) popStatus() {
	const liveMask = FlagNegative | FlagOverflow | FlagDecimal | FlagInterrupt | FlagZero | FlagCarry
	pulled := c.popByte()
	c.P = (pulled & liveMask) | FlagUnused
}

func (c *CPU) brk() {
	c.pushWord(c.PC + 1)
	c.pushStatus()
	c.flagsOn(FlagInterrupt)
	c.PC = c.mem.ReadWord(VectorIRQ)
}

func (c *CPU) branch(take bool) {
	disp := int8(c.mem.Read(c.PC))
	target := c.PC + 1 + uint16(disp)
	if !take {
		return
	}
	c.pageBoundaryCrossed = c.pageBoundaryCrossed || crossesPage(c.PC+1, target)
	c.stats.Cycles++ // taken branches cost one extra cycle
	if crossesPage(c.PC+1, target) {
		c.stats.Cycles++ // ...plus one more if the branch lands on a new page
	}
	c.PC = target
}

func (c *CPU) bit(m uint8) {
	c.setFlag(FlagZero, c.A&m == 0)
	c.setFlag(FlagNegative, m&FlagNegative != 0)
	c.setFlag(FlagOverflow, m&FlagOverflow != 0)
}

func (c *CPU) compare(reg, m uint8) {
	c.setFlag(FlagCarry, reg >= m)
	c.setFlag(FlagZero, reg == m)
	c.setFlag(FlagNegative, (reg-m)&0x80 != 0)
}

func (c *CPU) shiftLeft(op operand, rotate bool) {
	v := op.read()
	carryIn := uint8(0)
	if rotate && c.flag(FlagCarry) {
		carryIn = 1
	}
	carryOut := v&0x80 != 0
	v = (v << 1) | carryIn
	op.write(v)
	c.setFlag(FlagCarry, carryOut)
	c.computeNZ(v)
}

func (c *CPU) shiftRight(op operand, rotate bool) {
	v := op.read()
	carryIn := uint8(0)
	if rotate && c.flag(FlagCarry) {
		carryIn = 0x80
	}
	carryOut := v&0x01 != 0
	v = (v >> 1) | carryIn
	op.write(v)
	c.setFlag(FlagCarry, carryOut)
	c.computeNZ(v)
}

// adc computes A + m + C, binary mode per §4.3's carry/overflow/NZ
// contract, or BCD-adjusted when D is set (§9 open question, resolved
// to "implement decimal mode" in SPEC_FULL).
func (c *CPU) adc(m uint8) {
	if c.flag(FlagDecimal) {
		c.adcDecimal(m)
		return
	}
	carryIn := uint16(0)
	if c.flag(FlagCarry) {
		carryIn = 1
	}
	sum := uint16(c.A) + uint16(m) + carryIn
	result := uint8(sum)
	c.setFlag(FlagCarry, sum > 0xFF)
	c.setFlag(FlagOverflow, (c.A^result)&(m^result)&0x80 != 0)
	c.A = result
	c.computeNZ(c.A)
}

// sbc is ADC(m XOR 0xFF) in binary mode, which yields the correct
// binary-mode result (§4.3/§9); decimal mode takes the dedicated
// nibble-subtract-with-borrow path instead, since the XOR trick is
// specifically wrong for BCD (§9).
func (c *CPU) sbc(m uint8) {
	if c.flag(FlagDecimal) {
		c.sbcDecimal(m)
		return
	}
	c.adc(m ^ 0xFF)
}

// adcDecimal performs standard nibble-carry BCD addition: each nibble
// is adjusted back into 0-9 range with a +6 correction whenever it
// overflows decimal range, matching the classical 6502 decimal-mode
// contract that §4.3 requires and that §9 flags the source as
// skipping.
func (c *CPU) adcDecimal(m uint8) {
	carryIn := uint8(0)
	if c.flag(FlagCarry) {
		carryIn = 1
	}

	lo := (c.A & 0x0F) + (m & 0x0F) + carryIn
	hiCarry := uint8(0)
	if lo > 9 {
		lo += 6
	}
	hi := (c.A >> 4) + (m >> 4)
	if lo > 0x0F {
		hi++
		lo &= 0x0F
	}

	binResult := c.A + m + carryIn
	c.setFlag(FlagOverflow, (c.A^binResult)&(m^binResult)&0x80 != 0)

	if hi > 9 {
		hi += 6
		hiCarry = 1
	}
	c.setFlag(FlagCarry, hiCarry != 0)

	c.A = (hi << 4) | (lo & 0x0F)
	c.computeNZ(c.A)
}

// sbcDecimal performs standard nibble-borrow BCD subtraction.
func (c *CPU) sbcDecimal(m uint8) {
	borrowIn := uint8(0)
	if !c.flag(FlagCarry) {
		borrowIn = 1
	}

	binResult := c.A - m - borrowIn
	c.setFlag(FlagOverflow, (c.A^m)&(c.A^binResult)&0x80 != 0)
	c.setFlag(FlagCarry, uint16(c.A) >= uint16(m)+uint16(borrowIn))

	lo := int8(c.A&0x0F) - int8(m&0x0F) - int8(borrowIn)
	hi := int8(c.A>>4) - int8(m>>4)
	if lo < 0 {
		lo += 10
		hi--
	}
	if hi < 0 {
		hi += 10
	}

	c.A = (uint8(hi) << 4) | (uint8(lo) & 0x0F)
	c.computeNZ(c.A)
}

// Package asm implements the two-pass 6502 assembler (§4.6): a
// line-oriented lexer/parser, expression evaluation against a symbol
// table, and a ScanForSymbols/EmitCode driver that resolves addressing
// modes (with zero-page shortening) and writes the assembled bytes
// into a mem.Memory. Grounded on the teacher's table-driven-test idiom
// and mo65x's Assembler component (SPEC_FULL "MODULE MAP").
package asm

import (
	"strings"

	"github.com/bdwalton/mos6502/asmsym"
	"github.com/bdwalton/mos6502/cpu"
	"github.com/bdwalton/mos6502/mem"
)

// Result is what a successful Assemble call produced.
type Result struct {
	BytesWritten int
	AddressRange asmsym.AddressRange
	Symbols      *asmsym.SymbolTable
}

// Assembler assembles source text into a mem.Memory.
type Assembler struct {
	mem *mem.Memory
}

// New returns an Assembler that writes into m.
func New(m *mem.Memory) *Assembler {
	return &Assembler{mem: m}
}

// plan is pass 1's per-line decision, replayed verbatim by pass 2 so
// that an identifier resolved by the time pass 2 runs can never shift
// an address pass 1 already committed to (§9 "either accept this and
// document it, or iterate passes until the size table stabilizes" —
// this assembler takes the former, by deciding the addressing mode
// once, in pass 1, and never re-deriving it).
type plan struct {
	parsed parsedLine
	mode   cpu.Mode
	size   int
}

// Assemble runs both passes over source and writes the result into the
// Assembler's memory. Each call starts from a fresh symbol table and
// location counter, so assembling identical source twice is
// idempotent (§8 "two-pass idempotence").
func (a *Assembler) Assemble(source string) (*Result, *Error) {
	lines := splitLines(source)
	symtab := asmsym.NewSymbolTable()

	plans, err := a.scanForSymbols(lines, symtab)
	if err != nil {
		return nil, err
	}

	res, err := a.emitCode(plans, symtab)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func splitLines(source string) []string {
	raw := strings.Split(source, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimRight(l, "\r")
	}
	return out
}

// scanForSymbols is pass 1 (§4.6): builds the symbol table and, for
// each line, decides the final addressing mode / byte size without
// writing anything.
func (a *Assembler) scanForSymbols(lines []string, symtab *asmsym.SymbolTable) ([]plan, *Error) {
	plans := make([]plan, 0, len(lines))
	loc := 0

	for i, raw := range lines {
		lineNo := i + 1
		parsed, ok := parseLine(stripComment(raw))
		if !ok {
			return nil, errf(SyntaxError, lineNo, "unrecognized line %q", raw)
		}

		if parsed.label != "" {
			if !symtab.Put(parsed.label, uint16(loc)) {
				return nil, errf(SymbolAlreadyDefined, lineNo, "label %q already defined", parsed.label)
			}
		}

		p := plan{parsed: parsed}

		switch parsed.kind {
		case lineBlank:
			// no size, nothing to resolve

		case lineOrg:
			val, _, ok := evalExpr(parsed.orgExpr, symtab)
			if !ok {
				return nil, errf(SyntaxError, lineNo, "bad .ORG expression %q", parsed.orgExpr)
			}
			if val.Kind != asmsym.UndefinedIdentifier {
				loc = int(val.Value)
			}

		case lineByte:
			p.size = len(parsed.exprs)
			loc += p.size

		case lineWord:
			p.size = len(parsed.exprs) * 2
			loc += p.size

		case lineInstruction:
			mnemonic, ok := cpu.ParseMnemonic(parsed.mnemonic)
			if !ok {
				return nil, errf(InvalidMnemonic, lineNo, "%q is not a 6502 mnemonic", parsed.mnemonic)
			}

			var val asmsym.OperandValue
			if parsed.form != formNone {
				val, _, ok = evalExpr(parsed.expr, symtab)
				if !ok {
					return nil, errf(SyntaxError, lineNo, "bad operand expression %q", parsed.expr)
				}
			}

			mode, ierr := resolveMode(mnemonic, parsed.form, val)
			if ierr != nil {
				ierr.Line = lineNo
				return nil, ierr
			}

			opcode, found := cpu.Lookup(mnemonic, mode)
			if !found {
				return nil, errf(InvalidInstructionFormat, lineNo, "%s does not support %s addressing", mnemonic, mode)
			}
			inst := cpu.Opcodes[opcode]
			p.mode = mode
			p.size = int(inst.Size)
			loc += p.size
		}

		plans = append(plans, p)
	}

	return plans, nil
}

// emitCode is pass 2 (§4.6): replays the plans pass 1 built, now
// requiring every identifier to resolve, and writes bytes.
func (a *Assembler) emitCode(plans []plan, symtab *asmsym.SymbolTable) (*Result, *Error) {
	loc := 0
	var addrRange asmsym.AddressRange
	bytesWritten := 0

	emit := func(b uint8) {
		a.mem.Write(uint16(loc), b)
		addrRange.Expand(uint16(loc))
		bytesWritten++
		loc++
	}

	for i, p := range plans {
		lineNo := i + 1
		parsed := p.parsed

		switch parsed.kind {
		case lineBlank:
			// nothing to emit

		case lineOrg:
			val, _, _ := evalExpr(parsed.orgExpr, symtab)
			if val.Kind == asmsym.UndefinedIdentifier {
				return nil, errf(SymbolNotDefined, lineNo, "undefined symbol in .ORG expression %q", parsed.orgExpr)
			}
			loc = int(val.Value)

		case lineByte:
			for _, e := range parsed.exprs {
				val, hasPrefix, _ := evalExpr(e, symtab)
				if val.Kind == asmsym.UndefinedIdentifier {
					return nil, errf(SymbolNotDefined, lineNo, "undefined symbol %q", e)
				}
				if !hasPrefix && val.Value > 0xFF {
					return nil, errf(ValueOutOfRange, lineNo, "%q does not fit a byte", e)
				}
				emit(uint8(val.Value))
			}

		case lineWord:
			for _, e := range parsed.exprs {
				val, _, _ := evalExpr(e, symtab)
				if val.Kind == asmsym.UndefinedIdentifier {
					return nil, errf(SymbolNotDefined, lineNo, "undefined symbol %q", e)
				}
				emit(uint8(val.Value & 0xFF))
				emit(uint8(val.Value >> 8))
			}

		case lineInstruction:
			mnemonic, _ := cpu.ParseMnemonic(parsed.mnemonic)
			opcode, _ := cpu.Lookup(mnemonic, p.mode)
			emit(opcode)

			if parsed.form == formNone {
				// BRK is the only Implied/Accumulator instruction
				// wider than one byte; its second byte is a signature
				// byte skipped at runtime, but still occupies the
				// address pass 1 reserved for it.
				for pad := 1; pad < p.size; pad++ {
					emit(0)
				}
				continue
			}

			val, hasPrefix, _ := evalExpr(parsed.expr, symtab)
			if val.Kind == asmsym.UndefinedIdentifier {
				return nil, errf(SymbolNotDefined, lineNo, "undefined symbol %q", parsed.expr)
			}

			if p.mode == cpu.Relative {
				disp, ierr := branchDisplacement(val, loc)
				if ierr != nil {
					ierr.Line = lineNo
					return nil, ierr
				}
				emit(uint8(disp))
				continue
			}

			switch p.mode {
			case cpu.Immediate, cpu.ZeroPage, cpu.ZeroPageX, cpu.ZeroPageY,
				cpu.IndexedIndirectX, cpu.IndirectIndexedY:
				if !hasPrefix && val.Value > 0xFF {
					return nil, errf(ValueOutOfRange, lineNo, "%q does not fit a byte", parsed.expr)
				}
				emit(uint8(val.Value))
			case cpu.Absolute, cpu.AbsoluteX, cpu.AbsoluteY, cpu.Indirect:
				emit(uint8(val.Value & 0xFF))
				emit(uint8(val.Value >> 8))
			}
		}
	}

	return &Result{BytesWritten: bytesWritten, AddressRange: addrRange, Symbols: symtab}, nil
}

// resolveMode picks the addressing mode for one instruction line's
// operand form (§4.6's operand-form table plus zero-page shortening).
// val is the zero value when form is formNone.
func resolveMode(mnemonic cpu.Mnemonic, form operandForm, val asmsym.OperandValue) (cpu.Mode, *Error) {
	switch form {
	case formNone:
		if _, ok := cpu.Lookup(mnemonic, cpu.Implied); ok {
			return cpu.Implied, nil
		}
		if _, ok := cpu.Lookup(mnemonic, cpu.Accumulator); ok {
			return cpu.Accumulator, nil
		}
		return 0, errf(InvalidInstructionFormat, 0, "%s requires an operand", mnemonic)

	case formImmediate:
		return cpu.Immediate, nil

	case formIndirect:
		return cpu.Indirect, nil

	case formIndexedIndirectX:
		return cpu.IndexedIndirectX, nil

	case formIndirectIndexedY:
		return cpu.IndirectIndexedY, nil

	case formIndexedX:
		if shortenable(mnemonic, val) {
			if _, ok := cpu.Lookup(mnemonic, cpu.ZeroPageX); ok {
				return cpu.ZeroPageX, nil
			}
		}
		return cpu.AbsoluteX, nil

	case formIndexedY:
		if shortenable(mnemonic, val) {
			if _, ok := cpu.Lookup(mnemonic, cpu.ZeroPageY); ok {
				return cpu.ZeroPageY, nil
			}
		}
		return cpu.AbsoluteY, nil

	case formPlain:
		// Branch mnemonics only ever have a Relative entry in the
		// instruction table; that alone identifies them (§4.6).
		if _, ok := cpu.Lookup(mnemonic, cpu.Relative); ok {
			return cpu.Relative, nil
		}
		if shortenable(mnemonic, val) {
			if _, ok := cpu.Lookup(mnemonic, cpu.ZeroPage); ok {
				return cpu.ZeroPage, nil
			}
		}
		return cpu.Absolute, nil
	}

	return 0, errf(InvalidInstructionFormat, 0, "unrecognized operand form")
}

// shortenable reports whether a literal-or-resolved operand qualifies
// for the zero-page shortening of an Absolute-family addressing mode
// (§4.6): it must be known (not a forward reference), fit in a byte,
// and the mnemonic must not be JMP/JSR.
func shortenable(mnemonic cpu.Mnemonic, val asmsym.OperandValue) bool {
	if mnemonic == cpu.JMP || mnemonic == cpu.JSR {
		return false
	}
	if val.Kind == asmsym.UndefinedIdentifier {
		return false
	}
	return val.Value <= 0xFF
}

// branchDisplacement computes a Relative operand's displacement byte.
// A literal operand is the displacement itself (§8 scenario 3: "BCC -1
// assembled at any origin -> bytes 90 FF" only holds if a literal
// bypasses the target-address formula entirely). An identifier operand
// is a branch target, and the displacement is targetAddress -
// (locationCounter + 2), where locationCounter is the address of the
// branch opcode itself. operandAddr is the caller's loc, which has
// already been advanced past the emitted opcode byte, so it is
// locationCounter + 1 and the formula becomes target - (operandAddr + 1).
func branchDisplacement(val asmsym.OperandValue, operandAddr int) (int8, *Error) {
	var disp int
	if val.Kind == asmsym.Identifier {
		disp = int(val.Value) - (operandAddr + 1)
	} else {
		disp = int(int16(val.Value))
	}
	if disp < -128 || disp > 127 {
		return 0, errf(ValueOutOfRange, 0, "branch displacement %d out of range", disp)
	}
	return int8(disp), nil
}

package cpu

import "strings"

// Mode identifies one of the 13 addressing modes the 6502 supports.
// https://www.nesdev.org/obelisk-6502-guide/addressing.html
type Mode uint8

const (
	Implied Mode = iota
	Accumulator
	Immediate
	Relative
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirectX // (zp,X)
	IndirectIndexedY // (zp),Y
)

var modeNames = map[Mode]string{
	Implied:          "Implied",
	Accumulator:      "Accumulator",
	Immediate:        "Immediate",
	Relative:         "Relative",
	ZeroPage:         "ZeroPage",
	ZeroPageX:        "ZeroPageX",
	ZeroPageY:        "ZeroPageY",
	Absolute:         "Absolute",
	AbsoluteX:        "AbsoluteX",
	AbsoluteY:        "AbsoluteY",
	Indirect:         "Indirect",
	IndexedIndirectX: "IndexedIndirectX",
	IndirectIndexedY: "IndirectIndexedY",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return "Unknown"
}

// Mnemonic identifies one of the 6502's documented instructions, plus
// the internal halt sentinel used for invalid opcodes (§4.3/§4.4).
type Mnemonic uint8

const (
	ADC Mnemonic = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
	halt // internal sentinel for an unknown opcode byte, §4.3/§4.4
)

var mnemonicNames = map[Mnemonic]string{
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ",
	BIT: "BIT", BMI: "BMI", BNE: "BNE", BPL: "BPL", BRK: "BRK", BVC: "BVC",
	BVS: "BVS", CLC: "CLC", CLD: "CLD", CLI: "CLI", CLV: "CLV", CMP: "CMP",
	CPX: "CPX", CPY: "CPY", DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR",
	INC: "INC", INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", ORA: "ORA", PHA: "PHA",
	PHP: "PHP", PLA: "PLA", PLP: "PLP", ROL: "ROL", ROR: "ROR", RTI: "RTI",
	RTS: "RTS", SBC: "SBC", SEC: "SEC", SED: "SED", SEI: "SEI", STA: "STA",
	STX: "STX", STY: "STY", TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TYA: "TYA", halt: "???",
}

func (m Mnemonic) String() string {
	if n, ok := mnemonicNames[m]; ok {
		return n
	}
	return "???"
}

// Instruction is one decode-table entry: the mnemonic, addressing
// mode, total instruction size in bytes (1-3), and the unconditional
// base-cycle cost before any page-crossing/branch-taken adjustment.
type Instruction struct {
	Mnemonic   Mnemonic
	Mode       Mode
	Size       uint8
	BaseCycles uint8
}

func (i Instruction) String() string {
	return i.Mnemonic.String() + " " + i.Mode.String()
}

// haltInstruction is the decode-table entry substituted for any
// opcode byte the table does not recognize. It halts the CPU with PC
// pointing back at the offending byte (§4.3, §4.4, §7).
var haltInstruction = Instruction{Mnemonic: halt, Mode: Implied, Size: 1, BaseCycles: 0}

// Opcodes is the 256-entry opcode-to-instruction decode table for the
// 151 documented 6502 opcodes. Unlisted byte values decode to
// haltInstruction (§3 "Instruction record").
var Opcodes [256]Instruction

func init() {
	for i := range Opcodes {
		Opcodes[i] = haltInstruction
	}
	for _, e := range opcodeTable {
		Opcodes[e.opcode] = Instruction{e.mnemonic, e.mode, e.size, e.cycles}
	}
	for opcode, inst := range Opcodes {
		if inst.Mnemonic == halt {
			continue
		}
		byMnemonicMode[modeKey{inst.Mnemonic, inst.Mode}] = uint8(opcode)
	}
	for m, n := range mnemonicNames {
		if m != halt {
			byName[n] = m
		}
	}
}

type modeKey struct {
	mnemonic Mnemonic
	mode     Mode
}

var byMnemonicMode = map[modeKey]uint8{}

var byName = map[string]Mnemonic{}

// Lookup returns the opcode byte encoding mnemonic in mode, and
// whether the 6502 defines that combination at all (an assembler uses
// this to reject operand forms a mnemonic doesn't support).
func Lookup(mnemonic Mnemonic, mode Mode) (uint8, bool) {
	op, ok := byMnemonicMode[modeKey{mnemonic, mode}]
	return op, ok
}

// ParseMnemonic resolves a case-insensitive three-letter mnemonic name
// to its Mnemonic constant, for an assembler's front end.
func ParseMnemonic(name string) (Mnemonic, bool) {
	m, ok := byName[strings.ToUpper(name)]
	return m, ok
}

type opcodeEntry struct {
	opcode   uint8
	mnemonic Mnemonic
	mode     Mode
	size     uint8
	cycles   uint8
}

// opcodeTable lists the 151 documented 6502 opcodes. No undocumented
// opcodes are included (§1 Non-goals).
var opcodeTable = []opcodeEntry{
	{0x69, ADC, Immediate, 2, 2}, {0x65, ADC, ZeroPage, 2, 3}, {0x75, ADC, ZeroPageX, 2, 4},
	{0x6D, ADC, Absolute, 3, 4}, {0x7D, ADC, AbsoluteX, 3, 4}, {0x79, ADC, AbsoluteY, 3, 4},
	{0x61, ADC, IndexedIndirectX, 2, 6}, {0x71, ADC, IndirectIndexedY, 2, 5},

	{0x29, AND, Immediate, 2, 2}, {0x25, AND, ZeroPage, 2, 3}, {0x35, AND, ZeroPageX, 2, 4},
	{0x2D, AND, Absolute, 3, 4}, {0x3D, AND, AbsoluteX, 3, 4}, {0x39, AND, AbsoluteY, 3, 4},
	{0x21, AND, IndexedIndirectX, 2, 6}, {0x31, AND, IndirectIndexedY, 2, 5},

	{0x0A, ASL, Accumulator, 1, 2}, {0x06, ASL, ZeroPage, 2, 5}, {0x16, ASL, ZeroPageX, 2, 6},
	{0x0E, ASL, Absolute, 3, 6}, {0x1E, ASL, AbsoluteX, 3, 7},

	{0x90, BCC, Relative, 2, 2}, {0xB0, BCS, Relative, 2, 2}, {0xF0, BEQ, Relative, 2, 2},
	{0x24, BIT, ZeroPage, 2, 3}, {0x2C, BIT, Absolute, 3, 4},
	{0x30, BMI, Relative, 2, 2}, {0xD0, BNE, Relative, 2, 2}, {0x10, BPL, Relative, 2, 2},
	{0x00, BRK, Implied, 2, 7},
	{0x50, BVC, Relative, 2, 2}, {0x70, BVS, Relative, 2, 2},

	{0x18, CLC, Implied, 1, 2}, {0xD8, CLD, Implied, 1, 2}, {0x58, CLI, Implied, 1, 2}, {0xB8, CLV, Implied, 1, 2},

	{0xC9, CMP, Immediate, 2, 2}, {0xC5, CMP, ZeroPage, 2, 3}, {0xD5, CMP, ZeroPageX, 2, 4},
	{0xCD, CMP, Absolute, 3, 4}, {0xDD, CMP, AbsoluteX, 3, 4}, {0xD9, CMP, AbsoluteY, 3, 4},
	{0xC1, CMP, IndexedIndirectX, 2, 6}, {0xD1, CMP, IndirectIndexedY, 2, 5},

	{0xE0, CPX, Immediate, 2, 2}, {0xE4, CPX, ZeroPage, 2, 3}, {0xEC, CPX, Absolute, 3, 4},
	{0xC0, CPY, Immediate, 2, 2}, {0xC4, CPY, ZeroPage, 2, 3}, {0xCC, CPY, Absolute, 3, 4},

	{0xC6, DEC, ZeroPage, 2, 5}, {0xD6, DEC, ZeroPageX, 2, 6}, {0xCE, DEC, Absolute, 3, 6}, {0xDE, DEC, AbsoluteX, 3, 7},
	{0xCA, DEX, Implied, 1, 2}, {0x88, DEY, Implied, 1, 2},

	{0x49, EOR, Immediate, 2, 2}, {0x45, EOR, ZeroPage, 2, 3}, {0x55, EOR, ZeroPageX, 2, 4},
	{0x4D, EOR, Absolute, 3, 4}, {0x5D, EOR, AbsoluteX, 3, 4}, {0x59, EOR, AbsoluteY, 3, 4},
	{0x41, EOR, IndexedIndirectX, 2, 6}, {0x51, EOR, IndirectIndexedY, 2, 5},

	{0xE6, INC, ZeroPage, 2, 5}, {0xF6, INC, ZeroPageX, 2, 6}, {0xEE, INC, Absolute, 3, 6}, {0xFE, INC, AbsoluteX, 3, 7},
	{0xE8, INX, Implied, 1, 2}, {0xC8, INY, Implied, 1, 2},

	{0x4C, JMP, Absolute, 3, 3}, {0x6C, JMP, Indirect, 3, 5},
	{0x20, JSR, Absolute, 3, 6},

	{0xA9, LDA, Immediate, 2, 2}, {0xA5, LDA, ZeroPage, 2, 3}, {0xB5, LDA, ZeroPageX, 2, 4},
	{0xAD, LDA, Absolute, 3, 4}, {0xBD, LDA, AbsoluteX, 3, 4}, {0xB9, LDA, AbsoluteY, 3, 4},
	{0xA1, LDA, IndexedIndirectX, 2, 6}, {0xB1, LDA, IndirectIndexedY, 2, 5},

	{0xA2, LDX, Immediate, 2, 2}, {0xA6, LDX, ZeroPage, 2, 3}, {0xB6, LDX, ZeroPageY, 2, 4},
	{0xAE, LDX, Absolute, 3, 4}, {0xBE, LDX, AbsoluteY, 3, 4},

	{0xA0, LDY, Immediate, 2, 2}, {0xA4, LDY, ZeroPage, 2, 3}, {0xB4, LDY, ZeroPageX, 2, 4},
	{0xAC, LDY, Absolute, 3, 4}, {0xBC, LDY, AbsoluteX, 3, 4},

	{0x4A, LSR, Accumulator, 1, 2}, {0x46, LSR, ZeroPage, 2, 5}, {0x56, LSR, ZeroPageX, 2, 6},
	{0x4E, LSR, Absolute, 3, 6}, {0x5E, LSR, AbsoluteX, 3, 7},

	{0xEA, NOP, Implied, 1, 2},

	{0x09, ORA, Immediate, 2, 2}, {0x05, ORA, ZeroPage, 2, 3}, {0x15, ORA, ZeroPageX, 2, 4},
	{0x0D, ORA, Absolute, 3, 4}, {0x1D, ORA, AbsoluteX, 3, 4}, {0x19, ORA, AbsoluteY, 3, 4},
	{0x01, ORA, IndexedIndirectX, 2, 6}, {0x11, ORA, IndirectIndexedY, 2, 5},

	{0x48, PHA, Implied, 1, 3}, {0x08, PHP, Implied, 1, 3}, {0x68, PLA, Implied, 1, 4}, {0x28, PLP, Implied, 1, 4},

	{0x2A, ROL, Accumulator, 1, 2}, {0x26, ROL, ZeroPage, 2, 5}, {0x36, ROL, ZeroPageX, 2, 6},
	{0x2E, ROL, Absolute, 3, 6}, {0x3E, ROL, AbsoluteX, 3, 7},
	{0x6A, ROR, Accumulator, 1, 2}, {0x66, ROR, ZeroPage, 2, 5}, {0x76, ROR, ZeroPageX, 2, 6},
	{0x6E, ROR, Absolute, 3, 6}, {0x7E, ROR, AbsoluteX, 3, 7},

	{0x40, RTI, Implied, 1, 6}, {0x60, RTS, Implied, 1, 6},

	{0xE9, SBC, Immediate, 2, 2}, {0xE5, SBC, ZeroPage, 2, 3}, {0xF5, SBC, ZeroPageX, 2, 4},
	{0xED, SBC, Absolute, 3, 4}, {0xFD, SBC, AbsoluteX, 3, 4}, {0xF9, SBC, AbsoluteY, 3, 4},
	{0xE1, SBC, IndexedIndirectX, 2, 6}, {0xF1, SBC, IndirectIndexedY, 2, 5},

	{0x38, SEC, Implied, 1, 2}, {0xF8, SED, Implied, 1, 2}, {0x78, SEI, Implied, 1, 2},

	{0x85, STA, ZeroPage, 2, 3}, {0x95, STA, ZeroPageX, 2, 4}, {0x8D, STA, Absolute, 3, 4},
	{0x9D, STA, AbsoluteX, 3, 5}, {0x99, STA, AbsoluteY, 3, 5},
	{0x81, STA, IndexedIndirectX, 2, 6}, {0x91, STA, IndirectIndexedY, 2, 6},

	{0x86, STX, ZeroPage, 2, 3}, {0x96, STX, ZeroPageY, 2, 4}, {0x8E, STX, Absolute, 3, 4},
	{0x84, STY, ZeroPage, 2, 3}, {0x94, STY, ZeroPageX, 2, 4}, {0x8C, STY, Absolute, 3, 4},

	{0xAA, TAX, Implied, 1, 2}, {0xA8, TAY, Implied, 1, 2}, {0xBA, TSX, Implied, 1, 2},
	{0x8A, TXA, Implied, 1, 2}, {0x9A, TXS, Implied, 1, 2}, {0x98, TYA, Implied, 1, 2},
}

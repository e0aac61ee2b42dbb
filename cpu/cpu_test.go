package cpu

import (
	"context"
	"testing"
	"time"

	"github.com/bdwalton/mos6502/mem"
)

func newTestCPU() (*CPU, *mem.Memory) {
	m := mem.New()
	m.WriteWord(VectorReset, 0x8000)
	return New(m), m
}

// §8: every opcode byte decodes to size in {1,2,3} and baseCycles >= 2,
// except the halt sentinel.
func TestEveryOpcodeHasSaneDecode(t *testing.T) {
	for b := 0; b < 256; b++ {
		inst := Opcodes[b]
		if inst.Mnemonic == halt {
			continue
		}
		if inst.Size < 1 || inst.Size > 3 {
			t.Errorf("opcode %#02x: size %d out of [1,3]", b, inst.Size)
		}
		if inst.BaseCycles < 2 {
			t.Errorf("opcode %#02x: baseCycles %d < 2", b, inst.BaseCycles)
		}
	}
}

func TestOpcodeTableHas151DocumentedEntries(t *testing.T) {
	n := 0
	for _, inst := range Opcodes {
		if inst.Mnemonic != halt {
			n++
		}
	}
	if n != 151 {
		t.Errorf("got %d documented opcodes, want 151", n)
	}
}

// §8 scenario 5: reset with vector $FFFC..D = 00 80.
func TestResetVectorScenario(t *testing.T) {
	c, _ := newTestCPU()

	if c.PC != 0x8000 {
		t.Errorf("PC = %#04x, want $8000", c.PC)
	}
	if c.A != 0 || c.X != 0 || c.Y != 0 {
		t.Errorf("A/X/Y = %d/%d/%d, want 0/0/0", c.A, c.X, c.Y)
	}
	if c.SP != 0xFD {
		t.Errorf("SP = %#02x, want $FD", c.SP)
	}
	if !c.flag(FlagInterrupt) {
		t.Errorf("I flag not set after reset")
	}
	for _, f := range []uint8{FlagCarry, FlagZero, FlagDecimal, FlagOverflow, FlagNegative} {
		if c.flag(f) {
			t.Errorf("flag %#02x unexpectedly set after reset", f)
		}
	}
}

// §8 scenario 6: A9 05 69 03 00 from $0200 with C=0 -> A=$08, C=0, Z=0,
// N=0, PC=$0204.
func TestADCImmediateCycleScenario(t *testing.T) {
	c, m := newTestCPU()
	c.PC = 0x0200
	prog := []uint8{0xA9, 0x05, 0x69, 0x03, 0x00}
	for i, b := range prog {
		m.Write(0x0200+uint16(i), b)
	}

	c.Step() // LDA #$05
	c.Step() // ADC #$03

	if c.A != 0x08 {
		t.Errorf("A = %#02x, want $08", c.A)
	}
	if c.flag(FlagCarry) {
		t.Errorf("C set, want clear")
	}
	if c.flag(FlagZero) {
		t.Errorf("Z set, want clear")
	}
	if c.flag(FlagNegative) {
		t.Errorf("N set, want clear")
	}
	if c.PC != 0x0204 {
		t.Errorf("PC = %#04x, want $0204", c.PC)
	}
}

// §8 scenario 7: LDA $00,X with X=$05, mem[$05]=$42 -> A=$42, Z=0, N=0.
func TestZeroPageXScenario(t *testing.T) {
	c, m := newTestCPU()
	c.PC = 0x0200
	c.X = 0x05
	m.Write(0x0005, 0x42)
	m.Write(0x0200, 0xB5) // LDA zp,X
	m.Write(0x0201, 0x00)

	c.Step()

	if c.A != 0x42 {
		t.Errorf("A = %#02x, want $42", c.A)
	}
	if c.flag(FlagZero) || c.flag(FlagNegative) {
		t.Errorf("Z/N set, want both clear")
	}
}

func TestADCBinaryCarryAndOverflow(t *testing.T) {
	for a := 0; a <= 0xFF; a += 17 {
		for m := 0; m <= 0xFF; m += 23 {
			for cin := 0; cin <= 1; cin++ {
				c, mem := newTestCPU()
				c.PC = 0x0200
				c.A = uint8(a)
				if cin == 1 {
					c.flagsOn(FlagCarry)
				}
				mem.Write(0x0200, 0x69) // ADC #imm
				mem.Write(0x0201, uint8(m))
				c.Step()

				wantSum := a + m + cin
				wantA := uint8(wantSum)
				wantCarry := wantSum > 0xFF
				wantOverflow := (uint8(a)^wantA)&(uint8(m)^wantA)&0x80 != 0
				if c.A != wantA {
					t.Fatalf("A=%d M=%d Cin=%d: got A=%#02x want %#02x", a, m, cin, c.A, wantA)
				}
				if c.flag(FlagCarry) != wantCarry {
					t.Fatalf("A=%d M=%d Cin=%d: got C=%v want %v", a, m, cin, c.flag(FlagCarry), wantCarry)
				}
				if c.flag(FlagOverflow) != wantOverflow {
					t.Fatalf("A=%d M=%d Cin=%d: got V=%v want %v", a, m, cin, c.flag(FlagOverflow), wantOverflow)
				}
			}
		}
	}
}

// §4.3: in decimal mode, NZ are set from the BCD-adjusted accumulator,
// not the intermediate binary result.
func TestADCSBCDecimalMode(t *testing.T) {
	cases := []struct {
		a, m, cin    uint8
		wantA        uint8
		wantCarry    bool
		wantNegative bool
		wantZero     bool
	}{
		{a: 0x05, m: 0x05, cin: 0, wantA: 0x10, wantCarry: false, wantNegative: false, wantZero: false},
		{a: 0x50, m: 0x50, cin: 0, wantA: 0x00, wantCarry: true, wantNegative: false, wantZero: true},
		{a: 0x99, m: 0x01, cin: 0, wantA: 0x00, wantCarry: true, wantNegative: false, wantZero: true},
		{a: 0x81, m: 0x92, cin: 0, wantA: 0x73, wantCarry: true, wantNegative: false, wantZero: false},
	}
	for _, tc := range cases {
		c, mem := newTestCPU()
		c.PC = 0x0200
		c.A = tc.a
		c.flagsOn(FlagDecimal)
		if tc.cin == 1 {
			c.flagsOn(FlagCarry)
		}
		mem.Write(0x0200, 0x69) // ADC #imm
		mem.Write(0x0201, tc.m)
		c.Step()

		if c.A != tc.wantA {
			t.Fatalf("ADC decimal A=%#02x M=%#02x: got A=%#02x want %#02x", tc.a, tc.m, c.A, tc.wantA)
		}
		if c.flag(FlagCarry) != tc.wantCarry {
			t.Fatalf("ADC decimal A=%#02x M=%#02x: got C=%v want %v", tc.a, tc.m, c.flag(FlagCarry), tc.wantCarry)
		}
		if c.flag(FlagNegative) != tc.wantNegative {
			t.Fatalf("ADC decimal A=%#02x M=%#02x: got N=%v want %v", tc.a, tc.m, c.flag(FlagNegative), tc.wantNegative)
		}
		if c.flag(FlagZero) != tc.wantZero {
			t.Fatalf("ADC decimal A=%#02x M=%#02x: got Z=%v want %v", tc.a, tc.m, c.flag(FlagZero), tc.wantZero)
		}
	}

	// A=$00, M=$50, C=1 (no borrow): decimal-correct result is $50,
	// so N must be clear even though the raw binary subtraction
	// (0x00-0x50-0 = 0xB0) has bit 7 set.
	c, mem := newTestCPU()
	c.PC = 0x0200
	c.A = 0x00
	c.flagsOn(FlagDecimal)
	c.flagsOn(FlagCarry)
	mem.Write(0x0200, 0xE9) // SBC #imm
	mem.Write(0x0201, 0x50)
	c.Step()

	if c.A != 0x50 {
		t.Fatalf("SBC decimal A=$00 M=$50: got A=%#02x want $50", c.A)
	}
	if c.flag(FlagNegative) {
		t.Errorf("SBC decimal A=$00 M=$50: N set, want clear")
	}
	if c.flag(FlagZero) {
		t.Errorf("SBC decimal A=$00 M=$50: Z set, want clear")
	}
}

func TestCompareFamilyInvariant(t *testing.T) {
	for r := 0; r <= 0xFF; r += 13 {
		for m := 0; m <= 0xFF; m += 29 {
			c, mem := newTestCPU()
			c.PC = 0x0200
			c.A = uint8(r)
			mem.Write(0x0200, 0xC9) // CMP #imm
			mem.Write(0x0201, uint8(m))
			c.Step()

			wantCarry := uint8(r) >= uint8(m)
			wantZero := uint8(r) == uint8(m)
			if c.flag(FlagCarry) != wantCarry {
				t.Fatalf("R=%d M=%d: C=%v want %v", r, m, c.flag(FlagCarry), wantCarry)
			}
			if c.flag(FlagZero) != wantZero {
				t.Fatalf("R=%d M=%d: Z=%v want %v", r, m, c.flag(FlagZero), wantZero)
			}
		}
	}
}

func TestPushPullByteRoundTrip(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		c, _ := newTestCPU()
		sp0 := c.SP
		c.A = uint8(b)
		c.pushByte(c.A)
		c.A = 0
		c.A = c.popByte()
		if c.A != uint8(b) {
			t.Fatalf("b=%d: round-tripped to %d", b, c.A)
		}
		if c.SP != sp0 {
			t.Fatalf("b=%d: SP = %#02x, want %#02x", b, c.SP, sp0)
		}
	}
}

func TestPushPullWordRoundTrip(t *testing.T) {
	words := []uint16{0x0000, 0x00FF, 0x1234, 0xFFFF, 0x8000}
	for _, w := range words {
		c, _ := newTestCPU()
		c.pushWord(w)
		if got := c.popWord(); got != w {
			t.Errorf("w=%#04x: round-tripped to %#04x", w, got)
		}
	}
}

// §8: JSR tgt; ...; RTS returns PC to the instruction immediately
// after JSR.
func TestJSRRTSRoundTrip(t *testing.T) {
	c, m := newTestCPU()
	c.PC = 0x0200
	// JSR $0300 ; BRK (halt if control never returns)
	m.Write(0x0200, 0x20)
	m.Write(0x0201, 0x00)
	m.Write(0x0202, 0x03)
	// at $0300: RTS
	m.Write(0x0300, 0x60)

	c.Step() // JSR
	if c.PC != 0x0300 {
		t.Fatalf("PC after JSR = %#04x, want $0300", c.PC)
	}
	c.Step() // RTS
	if c.PC != 0x0203 {
		t.Fatalf("PC after RTS = %#04x, want $0203", c.PC)
	}
}

func TestRTIRestoresStatusVerbatim(t *testing.T) {
	c, _ := newTestCPU()
	c.P = FlagNegative | FlagZero | FlagUnused
	c.pushWord(0x1234)
	c.pushStatus()

	// change P before pulling it back, so we can tell RTI really
	// restored the pushed value.
	c.P = FlagCarry | FlagUnused

	c.popStatus()
	c.PC = c.popWord() // mirrors RTI's two pulls

	want := FlagNegative | FlagZero | FlagUnused
	if c.P != want {
		t.Errorf("P = %#02x, want %#02x", c.P, want)
	}
	if c.PC != 0x1234 {
		t.Errorf("PC = %#04x, want $1234", c.PC)
	}
}

func TestUnknownOpcodeHalts(t *testing.T) {
	c, m := newTestCPU()
	c.PC = 0x0200
	m.Write(0x0200, 0xFF) // not in opcodeTable in this build (illegal opcodes excluded)

	c.Step()

	if c.State() != Halting {
		t.Errorf("state = %v, want Halting", c.State())
	}
	if c.PC != 0x0200 {
		t.Errorf("PC = %#04x, want to be rewound to the halt byte $0200", c.PC)
	}
}

func TestExecuteSingleStepStopsAfterOneInstruction(t *testing.T) {
	c, m := newTestCPU()
	c.PC = 0x0200
	m.Write(0x0200, 0xEA) // NOP
	m.Write(0x0201, 0xEA) // NOP

	c.Execute(context.Background(), false, 0)

	if c.PC != 0x0201 {
		t.Errorf("PC = %#04x, want $0201 after one step", c.PC)
	}
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle", c.State())
	}
}

func TestExecuteContinuousStopsOnContextCancel(t *testing.T) {
	c, m := newTestCPU()
	c.PC = 0x0200
	for i := uint16(0); i < 16; i++ {
		m.Write(0x0200+i, 0xEA) // NOP
	}
	// After the NOPs, zeroed memory decodes as BRK, which jumps through
	// the zero IRQ vector to another BRK, so the CPU never halts.

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	c.Execute(ctx, true, 0)

	if c.State() != Stopped {
		t.Errorf("state = %v, want Stopped", c.State())
	}
}

// Package cpu implements the MOS 6502 fetch/decode/execute engine:
// the 151-opcode instruction table, the 13 addressing modes, register
// and flag semantics, the stack, and the interrupt/run-level state
// machine described in mo65x's Cpu component. It has no notion of a
// peripheral bus; memory is a plain mem.Memory.
package cpu

import (
	"context"
	"time"

	"github.com/bdwalton/mos6502/mem"
)

// Interrupt/reset vector addresses (§6).
const (
	VectorNMI   uint16 = 0xFFFA
	VectorReset uint16 = 0xFFFC
	VectorIRQ   uint16 = 0xFFFE
)

// RunLevel is the CPU's priority tag for what it services next.
// Priority increases with value: Program < SingleStep < Irq < Nmi <
// Reset (§4.4).
type RunLevel uint8

const (
	Program RunLevel = iota
	SingleStep
	Irq
	Nmi
	Reset
)

// State is the CPU's coarse execution state (§3).
type State uint8

const (
	Idle State = iota
	Running
	Stopping
	Stopped
	Halting
	Halted
)

// ExecutionStatistics accumulates run statistics across Execute calls,
// reset on CPU Reset. Carried over from mo65x's ExecutionStatistics
// (SPEC_FULL §"SUPPLEMENTED FEATURES").
type ExecutionStatistics struct {
	Cycles       int64
	Instructions int64
	Duration     time.Duration
}

func (s *ExecutionStatistics) reset() {
	*s = ExecutionStatistics{}
}

// CPU is the MOS 6502 register file plus the execution engine driving
// it against a shared mem.Memory.
type CPU struct {
	Registers

	mem *mem.Memory

	state    State
	runLevel RunLevel
	stats    ExecutionStatistics

	pageBoundaryCrossed bool

	// OnStep, when set, is invoked after each instruction commits
	// (registers, flags, PC, memory and cycle count all updated
	// together, per §5 ordering guarantees). It is the hook the
	// system package uses to publish stateChanged notifications.
	OnStep func(*CPU)
}

// New returns a CPU wired to mem, with PC loaded from the reset vector
// and registers in their power-up state.
func New(m *mem.Memory) *CPU {
	c := &CPU{mem: m}
	c.powerOn()
	return c
}

func (c *CPU) powerOn() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = FlagInterrupt | FlagUnused
	c.PC = c.mem.ReadWord(VectorReset)
	c.state = Idle
	c.runLevel = Program
	c.stats.reset()
}

// Memory returns the CPU's backing memory, for collaborators that
// need to read/write it directly (the disassembler, a debugger).
func (c *CPU) Memory() *mem.Memory { return c.mem }

// State returns the current execution state.
func (c *CPU) State() State { return c.state }

// RunLevel returns the currently pending/active run level.
func (c *CPU) RunLevel() RunLevel { return c.runLevel }

// Stats returns a copy of the accumulated execution statistics.
func (c *CPU) Stats() ExecutionStatistics { return c.stats }

// Read/Write expose the CPU's Memory under the short names the
// teacher's tests use.
func (c *CPU) Read(addr uint16) uint8        { return c.mem.Read(addr) }
func (c *CPU) Write(addr uint16, val uint8)  { c.mem.Write(addr, val) }
func (c *CPU) ReadWord(addr uint16) uint16   { return c.mem.ReadWord(addr) }

// reset performs the §4.4 reset sequence: PC from the reset vector,
// A=X=Y=0, SP=0xFD, I set and every other flag cleared, statistics
// reset.
func (c *CPU) reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = FlagInterrupt | FlagUnused
	c.PC = c.mem.ReadWord(VectorReset)
	c.stats.reset()
	c.runLevel = Program
}

// requestLevel installs level if it outranks whatever is currently
// pending, per §4.4/§5 ("External callers set the desired run level
// only if the new level has higher priority than the current").
func (c *CPU) requestLevel(level RunLevel) {
	if level > c.runLevel {
		c.runLevel = level
	}
}

// TriggerReset requests a reset. If the CPU is not currently running,
// the reset is serviced synchronously (§4.4).
func (c *CPU) TriggerReset() {
	c.requestLevel(Reset)
	if c.state != Running {
		c.reset()
	}
}

// TriggerNmi requests a non-maskable interrupt, gated by nothing
// (§4.4/§5). If the CPU is not currently running it is serviced
// synchronously.
func (c *CPU) TriggerNmi() {
	c.requestLevel(Nmi)
	if c.state != Running {
		c.serviceNmi()
	}
}

// TriggerIrq requests a maskable interrupt. Servicing is gated by the
// I flag read at service time, not at trigger time (§4.4/§5).
func (c *CPU) TriggerIrq() {
	c.requestLevel(Irq)
	if c.state != Running && !c.flag(FlagInterrupt) {
		c.serviceIrq()
	}
}

// StopExecution requests that a running CPU stop after draining the
// current instruction (§4.4/§5). It does not preempt or roll back the
// in-flight instruction.
func (c *CPU) StopExecution() {
	if c.state == Running {
		c.state = Stopping
	}
}

// Step decodes and executes exactly one instruction, honoring neither
// runLevel dispatch nor clock throttling. It is the single-step
// primitive Execute(continuous=false, ...) builds on, and is also
// handy standalone for tests (§8 scenarios).
func (c *CPU) Step() {
	c.pageBoundaryCrossed = false

	inst := Opcodes[c.mem.Read(c.PC)]
	if inst.Mnemonic == halt {
		c.state = Halting
		return
	}

	c.PC++
	opcodeAt := c.PC - 1
	c.stats.Cycles += int64(inst.BaseCycles)

	p := c.prepare(inst.Mode)
	c.pageBoundaryCrossed = p.pageCrossed

	nextPC := c.PC + uint16(inst.Size) - 1
	c.execute(inst, p)

	// If the handler didn't redirect control flow (branch/jump/
	// call/return), advance past the remaining operand bytes.
	if c.PC == opcodeAt+1 {
		c.PC = nextPC
	}

	if extra := c.readModifyWriteBonus(inst); extra {
		c.stats.Cycles++
	}
	c.stats.Instructions++

	if c.OnStep != nil {
		c.OnStep(c)
	}
}

// readModifyWriteBonus reports whether inst earns the one-cycle page-
// crossing bonus (§4.3): only memory-read instructions using
// AbsoluteX/AbsoluteY/IndirectIndexedY; stores and read-modify-write
// instructions never do, even when indexing crosses a page.
func (c *CPU) readModifyWriteBonus(inst Instruction) bool {
	if !c.pageBoundaryCrossed {
		return false
	}
	switch inst.Mode {
	case AbsoluteX, AbsoluteY, IndirectIndexedY:
	default:
		return false
	}
	switch inst.Mnemonic {
	case STA, STX, STY, ASL, LSR, ROL, ROR, INC, DEC:
		return false
	default:
		return true
	}
}

// Execute runs the CPU until it leaves the Running state. continuous
// selects the steady-state run level: true runs Program (free-running)
// until stopped/halted, false runs exactly one SingleStep. clockPeriod,
// if nonzero, throttles instruction dispatch to approximate that
// period between instructions, mirroring the teacher's
// time.NewTicker-based Run loop and mo65x's execute(continuous,
// clockPeriod) (SPEC_FULL §"SUPPLEMENTED FEATURES").
func (c *CPU) Execute(ctx context.Context, continuous bool, clockPeriod time.Duration) {
	c.state = Running
	if continuous {
		c.runLevel = Program
	} else {
		c.runLevel = SingleStep
	}

	var ticker *time.Ticker
	if clockPeriod > 0 {
		ticker = time.NewTicker(clockPeriod)
		defer ticker.Stop()
	}

runLoop:
	for c.state == Running {
		t0 := time.Now()

		select {
		case <-ctx.Done():
			c.state = Stopping
		default:
		}
		if c.state != Running {
			break
		}

		c.Step()
		c.stats.Duration += time.Since(t0)

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				c.state = Stopping
			}
		}

		switch c.runLevel {
		case Program:
			// keep going
		case SingleStep:
			break runLoop
		case Reset:
			c.reset()
		case Nmi:
			c.serviceNmi()
			c.runLevel = Program
		case Irq:
			if !c.flag(FlagInterrupt) {
				c.serviceIrq()
			}
			c.runLevel = Program
		}

		if c.state == Halting {
			break
		}
	}

	// §4.4 step 3: on exit map Running→Idle, Stopping→Stopped,
	// Halting→Halted.
	switch c.state {
	case Running:
		c.state = Idle
	case Stopping:
		c.state = Stopped
	case Halting:
		c.state = Halted
	}
}

func (c *CPU) serviceNmi() {
	c.pushWord(c.PC)
	c.pushStatus()
	c.flagsOn(FlagInterrupt)
	c.PC = c.mem.ReadWord(VectorNMI)
}

func (c *CPU) serviceIrq() {
	c.pushWord(c.PC)
	c.pushStatus()
	c.flagsOn(FlagInterrupt)
	c.PC = c.mem.ReadWord(VectorIRQ)
}

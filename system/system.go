// Package system wires Memory, CPU and Assembler into the single
// shared top-level object §9 Design Notes calls for ("there is no
// process-wide singleton"; this is that one long-lived owner, built
// once per run). It also exposes §6's transport-agnostic notification
// contract (stateChanged/memoryContentChanged/operationCompleted) as
// plain Go callbacks, adapted from gintendo.go's top-level main/wiring
// shape.
package system

import (
	"context"
	"fmt"
	"time"

	"github.com/bdwalton/mos6502/asm"
	"github.com/bdwalton/mos6502/asmsym"
	"github.com/bdwalton/mos6502/cpu"
	"github.com/bdwalton/mos6502/mem"
)

// Interrupt/reset vector addresses (§6), re-exported from cpu for
// callers that only import system.
const (
	VectorNMI   = cpu.VectorNMI
	VectorReset = cpu.VectorReset
	VectorIRQ   = cpu.VectorIRQ
)

// Snapshot is the register/state view published by stateChanged (§6).
type Snapshot struct {
	A, X, Y  uint8
	PC       uint16
	SP       uint8
	P        uint8
	State    cpu.State
	RunLevel cpu.RunLevel
	Stats    cpu.ExecutionStatistics
}

// System is Memory + CPU + Assembler, glued together with the §6
// notification contract.
type System struct {
	Memory    *mem.Memory
	CPU       *cpu.CPU
	Assembler *asm.Assembler

	// OnStateChanged fires after execution completes or registers
	// change (§6).
	OnStateChanged func(Snapshot)
	// OnMemoryContentChanged fires after a bulk write (§6).
	OnMemoryContentChanged func(asmsym.AddressRange)
	// OnOperationCompleted fires for file I/O and assembly results
	// (§6).
	OnOperationCompleted func(message string, success bool)
}

// New returns a System with a fresh Memory, a CPU reset from it, and
// an Assembler that writes into the same Memory.
func New() *System {
	m := mem.New()
	c := cpu.New(m)
	s := &System{Memory: m, CPU: c, Assembler: asm.New(m)}
	c.OnStep = func(*cpu.CPU) { s.publishState() }
	return s
}

func (s *System) publishState() {
	if s.OnStateChanged != nil {
		s.OnStateChanged(s.Snapshot())
	}
}

// Snapshot captures the CPU's current register/state view.
func (s *System) Snapshot() Snapshot {
	return Snapshot{
		A: s.CPU.A, X: s.CPU.X, Y: s.CPU.Y,
		PC: s.CPU.PC, SP: s.CPU.SP, P: s.CPU.P,
		State:    s.CPU.State(),
		RunLevel: s.CPU.RunLevel(),
		Stats:    s.CPU.Stats(),
	}
}

// LoadImage copies bytes into memory starting at startAddress (§6
// "Load/save memory image"), clipped at the top of the address space
// (bytes that would land past $FFFF are dropped), and publishes
// memoryContentChanged and operationCompleted.
func (s *System) LoadImage(startAddress uint16, bytes []uint8) {
	if room := mem.Size - int(startAddress); len(bytes) > room {
		bytes = bytes[:room]
	}
	first, last, touched := s.Memory.WriteSlice(startAddress, bytes)
	if touched {
		s.publishMemoryChanged(asmsym.AddressRange{First: first, Last: last})
	}
	s.publishOperation(fmt.Sprintf("loaded %d byte(s) at $%04X", len(bytes), startAddress), true)
}

// SaveImage returns a copy of the bytes in [first, last] (§6
// "...or request a byte slice [first, last] to be emitted").
func (s *System) SaveImage(first, last uint16) []uint8 {
	return s.Memory.ReadSlice(first, last)
}

func (s *System) publishMemoryChanged(r asmsym.AddressRange) {
	if s.OnMemoryContentChanged != nil {
		s.OnMemoryContentChanged(r)
	}
}

func (s *System) publishOperation(message string, success bool) {
	if s.OnOperationCompleted != nil {
		s.OnOperationCompleted(message, success)
	}
}

// Assemble runs source through the Assembler, publishing
// memoryContentChanged on success and operationCompleted either way.
func (s *System) Assemble(source string) (*asm.Result, *asm.Error) {
	res, aerr := s.Assembler.Assemble(source)
	if aerr != nil {
		s.publishOperation(aerr.Error(), false)
		return nil, aerr
	}

	if res.AddressRange.Touched() {
		s.publishMemoryChanged(res.AddressRange)
	}
	s.publishOperation(fmt.Sprintf("assembled %d byte(s)", res.BytesWritten), true)
	s.publishState()
	return res, nil
}

// Reset triggers a CPU reset and publishes the resulting state.
func (s *System) Reset() {
	s.CPU.TriggerReset()
	s.publishState()
}

// TriggerNmi requests a non-maskable interrupt and publishes state.
func (s *System) TriggerNmi() {
	s.CPU.TriggerNmi()
	s.publishState()
}

// TriggerIrq requests a maskable interrupt and publishes state.
func (s *System) TriggerIrq() {
	s.CPU.TriggerIrq()
	s.publishState()
}

// Run drives the CPU via CPU.Execute and publishes the final state.
// continuous selects free-running (Program) vs. a single step.
func (s *System) Run(ctx context.Context, continuous bool, clockPeriod time.Duration) {
	s.CPU.Execute(ctx, continuous, clockPeriod)
	s.publishState()
}

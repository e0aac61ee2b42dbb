package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdwalton/mos6502/asmsym"
)

func TestAssembleLoadsMemoryAndPublishesEvents(t *testing.T) {
	s := New()

	var lastOp string
	var lastOK bool
	s.OnOperationCompleted = func(message string, success bool) {
		lastOp, lastOK = message, success
	}

	res, aerr := s.Assemble(".ORG $C000\nSTART: SEI\nCLD\nJMP START")
	require.Nil(t, aerr)
	require.NotNil(t, res)

	assert.True(t, lastOK)
	assert.Contains(t, lastOp, "5 byte")
	assert.Equal(t, []uint8{0x78, 0xD8, 0x4C, 0x00, 0xC0}, s.SaveImage(res.AddressRange.First, res.AddressRange.Last))
}

func TestAssembleFailurePublishesFailedOperation(t *testing.T) {
	s := New()

	var lastOK bool
	s.OnOperationCompleted = func(message string, success bool) {
		lastOK = success
	}

	_, aerr := s.Assemble("L: NOP\nL: NOP")
	require.NotNil(t, aerr)
	assert.False(t, lastOK)
}

func TestLoadImagePublishesMemoryContentChanged(t *testing.T) {
	s := New()

	var got asmsym.AddressRange
	var gotTouched bool
	s.OnMemoryContentChanged = func(r asmsym.AddressRange) {
		got, gotTouched = r, true
	}

	s.LoadImage(0x0200, []uint8{0xAA, 0xBB, 0xCC})

	require.True(t, gotTouched)
	assert.Equal(t, uint16(0x0200), got.First)
	assert.Equal(t, uint16(0x0202), got.Last)
	assert.Equal(t, []uint8{0xAA, 0xBB, 0xCC}, s.SaveImage(0x0200, 0x0202))
}

func TestResetPublishesState(t *testing.T) {
	s := New()
	s.Memory.WriteWord(VectorReset, 0x9000)

	var gotPC uint16
	s.OnStateChanged = func(snap Snapshot) { gotPC = snap.PC }

	s.Reset()

	assert.Equal(t, uint16(0x9000), gotPC)
}

func TestRunPublishesStateOnEachStep(t *testing.T) {
	s := New()
	s.Memory.WriteWord(VectorReset, 0x0200)
	s.Reset()
	s.Memory.Write(0x0200, 0xEA) // NOP

	var updates int
	s.OnStateChanged = func(Snapshot) { updates++ }

	s.Run(context.Background(), false, 0)

	assert.GreaterOrEqual(t, updates, 1)
}

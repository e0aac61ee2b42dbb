package mem

import "testing"

func TestReadWriteWrap(t *testing.T) {
	m := New()

	m.Write(0xFFFF, 0x12)
	m.Write(0x0000, 0x34)

	if got := m.ReadWord(0xFFFF); got != 0x3412 {
		t.Errorf("ReadWord(0xFFFF) = %#04x, wanted 0x3412", got)
	}
}

func TestWriteSliceAndReadSlice(t *testing.T) {
	m := New()

	first, last, touched := m.WriteSlice(0x8000, []uint8{0xA9, 0x05, 0x00})
	if !touched || first != 0x8000 || last != 0x8002 {
		t.Errorf("WriteSlice range = (%#04x, %#04x, %v), wanted (0x8000, 0x8002, true)", first, last, touched)
	}

	got := m.ReadSlice(first, last)
	want := []uint8{0xA9, 0x05, 0x00}
	if len(got) != len(want) {
		t.Fatalf("ReadSlice len = %d, wanted %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadSlice[%d] = %#02x, wanted %#02x", i, got[i], want[i])
		}
	}
}

func TestWriteSliceEmpty(t *testing.T) {
	m := New()
	first, last, touched := m.WriteSlice(0x1234, nil)
	if touched || first != 0x1234 || last != 0x1234 {
		t.Errorf("WriteSlice(nil) = (%#04x, %#04x, %v), wanted (0x1234, 0x1234, false)", first, last, touched)
	}
}

func TestWordRoundTrip(t *testing.T) {
	m := New()
	m.WriteWord(0x0200, 0xBEEF)
	if got := m.ReadWord(0x0200); got != 0xBEEF {
		t.Errorf("ReadWord = %#04x, wanted 0xBEEF", got)
	}
}

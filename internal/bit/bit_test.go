package bit

import "testing"

func TestIsSet(t *testing.T) {
	tests := []struct {
		index    uint
		value    uint32
		expected bool
	}{
		{0, 0b1010, false},
		{1, 0b1010, true},
		{3, 0b1000, true},
		{31, 0x8000_0000, true},
	}
	for _, tt := range tests {
		if got := IsSet(tt.index, tt.value); got != tt.expected {
			t.Errorf("IsSet(%d, %#x) = %v; want %v", tt.index, tt.value, got, tt.expected)
		}
	}
}

func TestSetClear(t *testing.T) {
	v := uint32(0)
	v = Set(3, v)
	if v != 0b1000 {
		t.Errorf("Set(3, 0) = %#x; want 0x8", v)
	}
	v = Clear(3, v)
	if v != 0 {
		t.Errorf("Clear(3, 0x8) = %#x; want 0", v)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		value    uint32
		hi, lo   uint
		expected uint32
	}{
		{0xFFFF_FFFF, 31, 0, 0xFFFF_FFFF},
		{0x0000_00F0, 7, 4, 0xF},
		{0x8000_0000, 31, 31, 1},
		{0x0000_0001, 0, 0, 1},
	}
	for _, tt := range tests {
		if got := Extract(tt.value, tt.hi, tt.lo); got != tt.expected {
			t.Errorf("Extract(%#x, %d, %d) = %#x; want %#x", tt.value, tt.hi, tt.lo, got, tt.expected)
		}
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		value    uint32
		bits     uint
		expected int32
	}{
		{0x1, 1, -1},
		{0x7F, 8, 0x7F},
		{0x80, 8, -128},
		{0xFFFF, 16, -1},
	}
	for _, tt := range tests {
		if got := SignExtend(tt.value, tt.bits); got != tt.expected {
			t.Errorf("SignExtend(%#x, %d) = %d; want %d", tt.value, tt.bits, got, tt.expected)
		}
	}
}

func TestSignExtend16(t *testing.T) {
	if got := SignExtend16(0x8000); got != 0xFFFF_8000 {
		t.Errorf("SignExtend16(0x8000) = %#x; want 0xFFFF8000", got)
	}
	if got := SignExtend16(0x7FFF); got != 0x7FFF {
		t.Errorf("SignExtend16(0x7FFF) = %#x; want 0x7FFF", got)
	}
}

func TestSignExtend8(t *testing.T) {
	if got := SignExtend8(0x80); got != 0xFFFF_FF80 {
		t.Errorf("SignExtend8(0x80) = %#x; want 0xFFFFFF80", got)
	}
	if got := SignExtend8(0x7F); got != 0x7F {
		t.Errorf("SignExtend8(0x7F) = %#x; want 0x7F", got)
	}
}

func TestCombine16(t *testing.T) {
	if got := Combine16(0xAB, 0xCD); got != 0xABCD {
		t.Errorf("Combine16(0xAB, 0xCD) = %#x; want 0xABCD", got)
	}
}

func TestLowHigh32(t *testing.T) {
	v := uint64(0x1234_5678_9ABC_DEF0)
	if got := Low32(v); got != 0x9ABC_DEF0 {
		t.Errorf("Low32(%#x) = %#x; want 0x9ABCDEF0", v, got)
	}
	if got := High32(v); got != 0x1234_5678 {
		t.Errorf("High32(%#x) = %#x; want 0x12345678", v, got)
	}
}

package cop0

import "testing"

func TestNewHasBEVSet(t *testing.T) {
	c := New()
	if c.SR&(1<<srBEVBit) == 0 {
		t.Fatalf("New() SR = %#x; want BEV bit set", c.SR)
	}
}

func TestEnterExceptionPushesModeStackAndSelectsVector(t *testing.T) {
	c := New() // BEV set
	handler := c.EnterException(CauseSyscall, 0x8001_2340, false)
	if handler != 0xBFC0_0180 {
		t.Errorf("EnterException handler = %#x with BEV set; want 0xBFC00180", handler)
	}
	if c.EPC != 0x8001_2340 {
		t.Errorf("EPC = %#x; want 0x80012340", c.EPC)
	}
	if (c.CAUSE>>2)&0x1F != uint32(CauseSyscall) {
		t.Errorf("CAUSE exccode = %#x; want %#x", (c.CAUSE>>2)&0x1F, CauseSyscall)
	}

	c.SR &^= 1 << srBEVBit // clear BEV, retry with the RAM vector
	handler = c.EnterException(CauseBreak, 0x8000_0100, false)
	if handler != 0x8000_0080 {
		t.Errorf("EnterException handler = %#x with BEV clear; want 0x80000080", handler)
	}
}

func TestEnterExceptionSetsDelaySlotBit(t *testing.T) {
	c := New()
	c.EnterException(CauseAddressErrorLoad, 0x8000_0004, true)
	if c.CAUSE&(1<<31) == 0 {
		t.Errorf("CAUSE = %#x; want bit 31 set for a fault in a delay slot", c.CAUSE)
	}

	c.EnterException(CauseAddressErrorLoad, 0x8000_0004, false)
	if c.CAUSE&(1<<31) != 0 {
		t.Errorf("CAUSE = %#x; want bit 31 clear for a non-delay-slot fault", c.CAUSE)
	}
}

func TestEnterExceptionAndRFERoundTrip(t *testing.T) {
	c := New()
	c.SR |= 1 // current interrupts enabled
	if !c.InterruptsEnabled() {
		t.Fatalf("InterruptsEnabled() false right after setting SR bit 0")
	}

	c.EnterException(CauseSyscall, 0x8000_0000, false)
	if c.InterruptsEnabled() {
		t.Fatalf("InterruptsEnabled() true immediately after entering an exception")
	}

	c.RFE()
	if !c.InterruptsEnabled() {
		t.Fatalf("InterruptsEnabled() false after RFE; mode stack should have popped the prior enable bit back")
	}
}

func TestMTC0Allowed(t *testing.T) {
	tests := []struct {
		name           string
		index          uint32
		val            uint32
		wantWritable   bool
		wantHardFault  bool
	}{
		{"SR writable", 12, 0xDEAD, true, false},
		{"CAUSE writable", 13, 0, true, false},
		{"EPC writable", 14, 0, true, false},
		{"reserved zero write tolerated", 3, 0, false, false},
		{"reserved non-zero write faults", 3, 1, false, true},
		{"fully unknown register ignored", 20, 0xFFFF, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writable, hardFault := MTC0Allowed(tt.index, tt.val)
			if writable != tt.wantWritable || hardFault != tt.wantHardFault {
				t.Errorf("MTC0Allowed(%d, %#x) = (%v, %v); want (%v, %v)",
					tt.index, tt.val, writable, hardFault, tt.wantWritable, tt.wantHardFault)
			}
		})
	}
}

func TestWriteCauseOnlyTouchesSoftwareInterruptBits(t *testing.T) {
	c := New()
	c.CAUSE = 0xFFFF_FFFF
	c.WriteCause(0)
	if c.CAUSE&(0x3<<8) != 0 {
		t.Errorf("CAUSE = %#x; software-interrupt bits should have cleared", c.CAUSE)
	}
	if c.CAUSE&^(0x3<<8) != 0xFFFF_FFFF&^(0x3<<8) {
		t.Errorf("CAUSE = %#x; bits outside 8:9 should be untouched by WriteCause", c.CAUSE)
	}
}

// Package cop0 implements the system-control coprocessor register
// file and exception-entry/return semantics: SR/CAUSE/EPC, RFE, and
// the boot-vector selection driven by SR's BEV bit.
package cop0

// Cause is a MIPS exception cause code (bits 6:2 of CAUSE).
type Cause uint32

const (
	CauseInterrupt         Cause = 0x00
	CauseAddressErrorLoad  Cause = 0x04
	CauseAddressErrorStore Cause = 0x05
	CauseSyscall           Cause = 0x08
	CauseBreak             Cause = 0x09
	CauseIllegalInstr      Cause = 0x0A
	CauseCoprocessorError  Cause = 0x0B
	CauseOverflow          Cause = 0x0C
)

// SR bit positions.
const (
	srIEcBit    = 0 // current interrupt enable
	srBEVBit    = 22
	srIsCBit    = 16 // cache isolation
	srIMShift   = 8  // interrupt mask field, bits 8..15
	srModeShift = 0  // 6-bit KU/IE stack, bits 0..5
)

// COP0 is the system control coprocessor state.
type COP0 struct {
	SR    uint32
	CAUSE uint32
	EPC   uint32
}

// New returns a COP0 with BEV set, matching the real console's reset
// state (boot vectors point at the BIOS handler at 0xBFC0_0180).
func New() *COP0 {
	return &COP0{SR: 1 << srBEVBit}
}

// InterruptsEnabled reports whether SR bit 0 (current interrupt
// enable) is set.
func (c *COP0) InterruptsEnabled() bool {
	return c.SR&(1<<srIEcBit) != 0
}

// CacheIsolated reports whether SR bit 16 is set, which causes stores
// outside the scratchpad to be dropped.
func (c *COP0) CacheIsolated() bool {
	return c.SR&(1<<srIsCBit) != 0
}

// InterruptMask returns the 8-bit per-line interrupt mask (SR bits
// 8..15). The CPU does not consult it: the aggregator's own STAT/MASK
// registers are the mask, so the core's top-level check only consults
// InterruptsEnabled and the aggregator's pending signal.
func (c *COP0) InterruptMask() uint32 {
	return (c.SR >> srIMShift) & 0xFF
}

// EnterException pushes the SR interrupt/mode stack, sets CAUSE's
// exception code and branch-delay bit, and returns the handler address
// to jump to.
//
// epc is the address of the faulting instruction; inDelaySlot
// indicates the faulting instruction was itself in a branch-delay
// slot (in that case the caller has already subtracted 4 from the
// faulting instruction's address, so epc is the branch's address).
func (c *COP0) EnterException(cause Cause, epc uint32, inDelaySlot bool) (handler uint32) {
	mode := c.SR & 0x3F
	c.SR = (c.SR &^ 0x3F) | ((mode << 2) & 0x3F)

	c.CAUSE = (c.CAUSE &^ (0x1F << 2)) | (uint32(cause) << 2)
	if inDelaySlot {
		c.CAUSE |= 1 << 31
	} else {
		c.CAUSE &^= 1 << 31
	}

	c.EPC = epc

	if c.SR&(1<<srBEVBit) != 0 {
		return 0xBFC0_0180
	}
	return 0x8000_0080
}

// RFE pops the SR interrupt/mode stack: bits 5:0 shift right 2,
// preserving bits above untouched.
func (c *COP0) RFE() {
	mode := c.SR & 0x3F
	c.SR = (c.SR &^ 0x3F) | (mode >> 2)
}

// regWritable reports whether COP0 register index may be written by
// MTC0; only SR(12), CAUSE(13, only bits 8-9), EPC(14) are writable.
// Reserved registers with a non-zero write are a host-fatal error (the
// caller is responsible for raising that).
func regWritable(index uint32) bool {
	switch index {
	case 12, 13, 14:
		return true
	default:
		return false
	}
}

// MTC0Allowed reports whether a MTC0 write to COP0 register index with
// value val is architecturally legal. Reserved registers accept a
// zero write silently (common BIOS idiom to clear unused regs) but a
// non-zero write to one is a hard fault.
func MTC0Allowed(index uint32, val uint32) (writable bool, hardFault bool) {
	if regWritable(index) {
		return true, false
	}
	switch index {
	case 3, 5, 6, 7, 9, 11:
		return false, val != 0
	default:
		return false, false
	}
}

// WriteCause applies a MTC0 write to CAUSE: only bits 8-9 (the
// software-interrupt bits) are settable.
func (c *COP0) WriteCause(val uint32) {
	c.CAUSE = (c.CAUSE &^ (0x3 << 8)) | (val & (0x3 << 8))
}

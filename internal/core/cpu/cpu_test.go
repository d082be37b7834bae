package cpu

import "testing"

// fakeBus is a flat little-endian RAM implementing cpu.Bus, enough to
// exercise fetch/execute without pulling in the rest of the bus
// package's device wiring.
type fakeBus struct {
	mem        [4096]byte
	irq        bool
	lastNotePC uint32
}

func (b *fakeBus) Tick()             {}
func (b *fakeBus) NotePC(pc uint32)  { b.lastNotePC = pc }
func (b *fakeBus) IRQPending() bool  { return b.irq }

func (b *fakeBus) Load8(addr uint32) uint32 { return uint32(b.mem[addr&0xFFF]) }
func (b *fakeBus) Load16(addr uint32) uint32 {
	a := addr & 0xFFF
	return uint32(b.mem[a]) | uint32(b.mem[a+1])<<8
}
func (b *fakeBus) Load32(addr uint32) uint32 {
	a := addr & 0xFFF
	return uint32(b.mem[a]) | uint32(b.mem[a+1])<<8 | uint32(b.mem[a+2])<<16 | uint32(b.mem[a+3])<<24
}
func (b *fakeBus) Store8(addr uint32, v uint32) { b.mem[addr&0xFFF] = byte(v) }
func (b *fakeBus) Store16(addr uint32, v uint32) {
	a := addr & 0xFFF
	b.mem[a] = byte(v)
	b.mem[a+1] = byte(v >> 8)
}
func (b *fakeBus) Store32(addr uint32, v uint32) {
	a := addr & 0xFFF
	b.mem[a] = byte(v)
	b.mem[a+1] = byte(v >> 8)
	b.mem[a+2] = byte(v >> 16)
	b.mem[a+3] = byte(v >> 24)
}

func (b *fakeBus) storeWord(addr uint32, v uint32) { b.Store32(addr, v) }

func encodeI(op, rs, rt uint32, imm16 uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | imm16&0xFFFF
}

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

func newTestCPU(program ...uint32) (*CPU, *fakeBus) {
	bus := &fakeBus{}
	c := New(bus)
	c.SetPC(0)
	for i, word := range program {
		bus.storeWord(uint32(i*4), word)
	}
	return c, bus
}

func TestADDIUWritesRegisterImmediately(t *testing.T) {
	// addiu $t0, $zero, 5
	c, _ := newTestCPU(encodeI(0x09, 0, 8, 5))
	c.Step()
	if got := c.Reg(8); got != 5 {
		t.Fatalf("Reg(t0) = %d after addiu; want 5", got)
	}
}

func TestRegisterZeroStaysZero(t *testing.T) {
	// addiu $zero, $zero, 5
	c, _ := newTestCPU(encodeI(0x09, 0, 0, 5))
	c.Step()
	if got := c.Reg(0); got != 0 {
		t.Fatalf("Reg(zero) = %d; want 0 always", got)
	}
}

func TestLoadDelaySlotDelaysVisibility(t *testing.T) {
	bus := &fakeBus{}
	bus.Store32(100, 0xDEAD_BEEF)
	c := New(bus)
	c.SetPC(0)

	// lw $t0, 100($zero); addiu $t1, $t0, 0
	bus.storeWord(0, encodeI(0x23, 0, 8, 100))
	bus.storeWord(4, encodeI(0x09, 8, 9, 0))

	c.Step() // issues the load; $t0 not yet updated
	if got := c.Reg(8); got != 0 {
		t.Fatalf("Reg(t0) = %#x right after lw issues; want 0 (load-delay slot not yet committed)", got)
	}

	c.Step() // the instruction reading $t0 here still sees the OLD value
	if got := c.Reg(9); got != 0 {
		t.Fatalf("Reg(t1) = %#x; want 0, since the instruction right after lw reads the pre-load value of $t0", got)
	}
	if got := c.Reg(8); got != 0xDEAD_BEEF {
		t.Fatalf("Reg(t0) = %#x after the delay slot passed; want 0xDEADBEEF", got)
	}
}

func TestBranchDelaySlotAlwaysExecutes(t *testing.T) {
	// beq $zero, $zero, 2   (branch to pc+4+2*4 = pc+12)
	// addiu $t0, $zero, 1   (delay slot, must still execute)
	// addiu $t1, $zero, 2   (skipped by the branch)
	// addiu $t2, $zero, 3   (branch target)
	c, _ := newTestCPU(
		encodeI(0x04, 0, 0, 2),
		encodeI(0x09, 0, 8, 1),
		encodeI(0x09, 0, 9, 2),
		encodeI(0x09, 0, 10, 3),
	)
	c.Step() // branch
	c.Step() // delay slot
	c.Step() // branch target

	if got := c.Reg(8); got != 1 {
		t.Errorf("Reg(t0) = %d; delay slot instruction should have executed", got)
	}
	if got := c.Reg(9); got != 0 {
		t.Errorf("Reg(t1) = %d; instruction after the delay slot should have been skipped", got)
	}
	if got := c.Reg(10); got != 3 {
		t.Errorf("Reg(t2) = %d; branch target should have executed", got)
	}
}

func TestBreakTrapsToDebuggerWhenEnabled(t *testing.T) {
	// break
	c, _ := newTestCPU(encodeR(0, 0, 0, 0, 0x0D))
	c.TrapBreak = true
	c.Step()
	if !c.Halted() {
		t.Fatalf("Halted() = false after BREAK with TrapBreak set")
	}
	if c.LastStopReason() != StopBreakInstruction {
		t.Fatalf("LastStopReason() = %v; want StopBreakInstruction", c.LastStopReason())
	}
}

func TestBreakRaisesExceptionWhenNotTrapped(t *testing.T) {
	// break; followed by a BIOS-vector instruction we never reach because
	// execution diverts into the exception handler
	c, bus := newTestCPU(encodeR(0, 0, 0, 0, 0x0D))
	c.Step()
	if c.Halted() {
		t.Fatalf("Halted() = true after BREAK without TrapBreak; should enter the guest handler instead")
	}
	if c.PC() != 0xBFC0_0180 {
		t.Fatalf("PC() = %#x after BREAK; want the BEV exception vector 0xBFC00180", c.PC())
	}
	_ = bus
}

func TestBreakpointHaltsAtAddress(t *testing.T) {
	c, _ := newTestCPU(
		encodeI(0x09, 0, 8, 1),
		encodeI(0x09, 0, 9, 2),
	)
	c.AddBreakpoint(4)
	c.Step()
	if !c.Halted() {
		t.Fatalf("Halted() = false after stepping onto an armed breakpoint")
	}
	if c.LastStopReason() != StopBreakpoint {
		t.Fatalf("LastStopReason() = %v; want StopBreakpoint", c.LastStopReason())
	}
}

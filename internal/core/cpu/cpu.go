// Package cpu implements the MIPS I interpreter core: decode/execute,
// COP0 exceptions, and the load-delay/branch-delay pipeline semantics,
// dispatching on the instruction's op/funct fields through switch
// statements, with the out-register-snapshot/pending-load
// double buffering the delay slots require.
package cpu

import (
	"fmt"
	"log/slog"

	"github.com/nullterm/psxgo/internal/core/cop0"
	"github.com/nullterm/psxgo/internal/core/gte"
)

// Bus is the interconnect the CPU drives. Defined here (rather than
// imported from the bus package) so the CPU depends only on the
// capability it needs -- ownership still flows CPU -> Bus -> devices.
type Bus interface {
	Tick()
	// NotePC records the instruction address currently executing, so a
	// host-fatal fault raised deep inside a device register write can
	// still report the offending PC.
	NotePC(pc uint32)
	Load8(addr uint32) uint32
	Load16(addr uint32) uint32
	Load32(addr uint32) uint32
	Store8(addr uint32, val uint32)
	Store16(addr uint32, val uint32)
	Store32(addr uint32, val uint32)
	// IRQPending reports the aggregator's (STAT & MASK) != 0 signal.
	IRQPending() bool
}

// pendingLoad is the one-deep load-delay slot: a (destination
// register, value) pair committed at the start of the NEXT step.
type pendingLoad struct {
	reg uint32
	val uint32
}

// CPU is the MIPS R3000A-class interpreter state.
type CPU struct {
	Bus Bus

	pc     uint32
	nextPC uint32
	curPC  uint32 // address of the instruction the current step executes

	regs    [32]uint32 // live/committed register file, read during decode/execute
	outRegs [32]uint32 // write target for the step in progress

	hi, lo uint32

	pending pendingLoad

	branchTaken  bool
	inDelaySlot  bool
	prevInDelay  bool // in_delay_slot value as of the START of the current step
	branchTarget uint32

	COP0 *cop0.COP0
	GTE  *gte.GTE

	// Breakpoints/watchpoints support the remote debug stub; the CPU only exposes the hooks, the stub owns the policy.
	Breakpoints map[uint32]bool
	Watchpoints map[uint32]WatchKind

	// halted suspends stepping; Step sets it on a breakpoint, a
	// watchpoint or a trapped BREAK, and Resume clears it.
	halted bool
	// stopReason carries why the CPU halted, for the debug stub.
	stopReason StopReason

	// TrapBreak makes a BREAK instruction halt with StopBreakInstruction
	// instead of entering the guest exception handler, the behavior a
	// remote debugger expects once attached.
	TrapBreak bool
}

// WatchKind is the access kind a hardware watchpoint triggers on.
type WatchKind uint8

const (
	WatchRead WatchKind = 1 << iota
	WatchWrite
)

// StopReason explains why Step returned with a halt.
type StopReason uint8

const (
	StopNone StopReason = iota
	StopBreakpoint
	StopWatchpoint
	StopBreakInstruction
)

const resetPC = 0xBFC0_0000

// New returns a CPU wired to bus, at the real console's reset vector.
func New(bus Bus) *CPU {
	c := &CPU{
		Bus:         bus,
		pc:          resetPC,
		nextPC:      resetPC + 4,
		COP0:        cop0.New(),
		GTE:         gte.New(),
		Breakpoints: make(map[uint32]bool),
		Watchpoints: make(map[uint32]WatchKind),
	}
	return c
}

// PC returns the program counter of the instruction about to execute.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC forces the program counter (used by the debug stub / snapshot
// restore); nextPC is kept 4 ahead.
func (c *CPU) SetPC(pc uint32) {
	c.pc = pc
	c.nextPC = pc + 4
}

// Reg reads a general-purpose register (always 0 for index 0).
func (c *CPU) Reg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return c.regs[i]
}

// SetReg force-writes a general-purpose register, bypassing the
// load-delay pipeline; used by the debug stub and test setup.
func (c *CPU) SetReg(i uint32, v uint32) {
	if i == 0 {
		return
	}
	c.regs[i] = v
	c.outRegs[i] = v
}

// HI, LO, SetHI, SetLO expose the multiply/divide result registers.
func (c *CPU) HI() uint32      { return c.hi }
func (c *CPU) LO() uint32      { return c.lo }
func (c *CPU) SetHI(v uint32)  { c.hi = v }
func (c *CPU) SetLO(v uint32)  { c.lo = v }

// setOut writes a destination register into the out-register
// snapshot, forcing register 0 to stay zero.
func (c *CPU) setOut(i uint32, v uint32) {
	if i == 0 {
		return
	}
	c.outRegs[i] = v
}

// exception is a guest-visible MIPS exception. It is never surfaced
// to the host; Step handles it by entering the COP0 exception vector.
type exception struct {
	cause cop0.Cause
}

// Step advances the CPU by exactly one instruction.
func (c *CPU) Step() {
	if c.halted {
		return
	}

	// 1. Tick the interconnect once.
	c.Bus.Tick()

	// Record this instruction's address and delay-slot status before
	// the PC advances, for exception reporting.
	c.curPC = c.pc
	c.prevInDelay = c.branchTaken

	// 2. Alignment check before fetch.
	if c.pc%4 != 0 {
		c.raiseException(exception{cause: cop0.CauseAddressErrorLoad})
		return
	}

	// 3. Fetch.
	word := c.Bus.Load32(c.pc)

	// 4. Advance PC.
	currentPC := c.pc
	c.pc = c.nextPC
	c.nextPC += 4
	c.Bus.NotePC(currentPC)

	// 5/6. Commit the pending delayed load into the out-register
	// snapshot, then clear the slot.
	c.outRegs = c.regs
	c.outRegs[0] = 0
	c.setOut(c.pending.reg, c.pending.val)
	c.pending = pendingLoad{}

	// 7. Delay-slot bookkeeping.
	c.inDelaySlot = c.prevInDelay
	c.branchTaken = false

	// 8. Interrupts take priority over decode.
	if c.COP0.InterruptsEnabled() && c.Bus.IRQPending() {
		c.enterException(exception{cause: cop0.CauseInterrupt}, currentPC, c.prevInDelay)
		c.regs = c.outRegs
		return
	}

	// 9. Decode and execute.
	c.execute(Instruction(word), currentPC)

	// 10. Commit the out-register snapshot.
	c.regs = c.outRegs

	if c.Breakpoints[c.pc] {
		c.halted = true
		c.stopReason = StopBreakpoint
	}
}

// Halted reports whether the CPU is suspended (debug stub use).
func (c *CPU) Halted() bool { return c.halted }

// LastStopReason returns why the CPU last halted.
func (c *CPU) LastStopReason() StopReason { return c.stopReason }

// Resume clears a halt set by a breakpoint/watchpoint/BREAK.
func (c *CPU) Resume() {
	c.halted = false
	c.stopReason = StopNone
}

// raiseException enters the exception handler using the address of
// the instruction this step executes (before the PC was advanced) and
// the delay-slot flag, both recorded at the start of Step.
func (c *CPU) raiseException(e exception) {
	c.enterException(e, c.curPC, c.prevInDelay)
}

// enterException computes EPC as the current PC, or current-PC-4 if
// the fault occurred in a branch-delay slot, and jumps to the handler.
func (c *CPU) enterException(e exception, faultPC uint32, inDelaySlot bool) {
	epc := faultPC
	if inDelaySlot {
		epc = faultPC - 4
	}
	handler := c.COP0.EnterException(e.cause, epc, inDelaySlot)
	c.pc = handler
	c.nextPC = handler + 4
}

// hostFatal aborts the process for a configuration/invariant
// violation that indicates a broken emulator or an impossible guest
// action. pc is included for diagnostics.
func hostFatal(pc uint32, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Error("host-fatal fault", "pc", fmt.Sprintf("0x%08X", pc), "error", msg)
	panic(fmt.Sprintf("host-fatal fault at pc=0x%08X: %s", pc, msg))
}

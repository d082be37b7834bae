package cpu

import (
	"github.com/nullterm/psxgo/internal/bit"
	"github.com/nullterm/psxgo/internal/core/addr"
	"github.com/nullterm/psxgo/internal/core/cop0"
)

func (c *CPU) effAddr(instr Instruction) uint32 {
	return c.Reg(instr.RS()) + instr.ImmSE()
}

// checkWatch halts the CPU after a load/store to a watched address,
// per the remote-debug stub's watchpoint contract.
func (c *CPU) checkWatch(vaddr uint32, kind WatchKind) {
	if c.Watchpoints[vaddr]&kind != 0 {
		c.halted = true
		c.stopReason = StopWatchpoint
	}
}

// gatedStore applies the cache-isolation policy from:
// while SR bit 16 is set, stores to anything other than the
// scratchpad are dropped rather than reaching the bus.
func (c *CPU) gatedStore(vaddr uint32) bool {
	if !c.COP0.CacheIsolated() {
		return true
	}
	region, _, ok := addr.Find(addr.Mask(vaddr))
	return ok && region == addr.RegionScratchpad
}

func (c *CPU) opLB(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	c.checkWatch(vaddr, WatchRead)
	v := bit.SignExtend8(uint8(c.Bus.Load8(vaddr)))
	c.pending = pendingLoad{reg: instr.RT(), val: v}
}

func (c *CPU) opLBU(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	c.checkWatch(vaddr, WatchRead)
	c.pending = pendingLoad{reg: instr.RT(), val: c.Bus.Load8(vaddr)}
}

func (c *CPU) opLH(instr Instruction, pc uint32) {
	vaddr := c.effAddr(instr)
	if vaddr%2 != 0 {
		c.raiseException(exception{cause: cop0.CauseAddressErrorLoad})
		_ = pc
		return
	}
	c.checkWatch(vaddr, WatchRead)
	v := bit.SignExtend16(uint16(c.Bus.Load16(vaddr)))
	c.pending = pendingLoad{reg: instr.RT(), val: v}
}

func (c *CPU) opLHU(instr Instruction, pc uint32) {
	vaddr := c.effAddr(instr)
	if vaddr%2 != 0 {
		c.raiseException(exception{cause: cop0.CauseAddressErrorLoad})
		_ = pc
		return
	}
	c.checkWatch(vaddr, WatchRead)
	c.pending = pendingLoad{reg: instr.RT(), val: c.Bus.Load16(vaddr)}
}

func (c *CPU) opLW(instr Instruction, pc uint32) {
	vaddr := c.effAddr(instr)
	if vaddr%4 != 0 {
		c.raiseException(exception{cause: cop0.CauseAddressErrorLoad})
		_ = pc
		return
	}
	c.checkWatch(vaddr, WatchRead)
	c.pending = pendingLoad{reg: instr.RT(), val: c.Bus.Load32(vaddr)}
}

// opLWL/opLWR implement the unaligned-word assembly via the classic
// bit-pattern table. The merge base "r" is read from the out-register
// snapshot (not the live file): this lets a back-to-back LWL+LWR pair
// merge correctly without waiting out the load-delay slot.
func (c *CPU) opLWL(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	aligned := vaddr &^ 3
	w := c.Bus.Load32(aligned)
	r := c.outRegs[instr.RT()]

	var v uint32
	switch vaddr & 3 {
	case 0:
		v = (r & 0x00FF_FFFF) | (w << 24)
	case 1:
		v = (r & 0x0000_FFFF) | (w << 16)
	case 2:
		v = (r & 0x0000_00FF) | (w << 8)
	case 3:
		v = w
	}
	c.pending = pendingLoad{reg: instr.RT(), val: v}
}

func (c *CPU) opLWR(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	aligned := vaddr &^ 3
	w := c.Bus.Load32(aligned)
	r := c.outRegs[instr.RT()]

	var v uint32
	switch vaddr & 3 {
	case 0:
		v = w
	case 1:
		v = (r & 0xFF00_0000) | (w >> 8)
	case 2:
		v = (r & 0xFFFF_0000) | (w >> 16)
	case 3:
		v = (r & 0xFFFF_FF00) | (w >> 24)
	}
	c.pending = pendingLoad{reg: instr.RT(), val: v}
}

func (c *CPU) opSB(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	c.checkWatch(vaddr, WatchWrite)
	if c.gatedStore(vaddr) {
		c.Bus.Store8(vaddr, c.Reg(instr.RT()))
	}
}

func (c *CPU) opSH(instr Instruction, pc uint32) {
	vaddr := c.effAddr(instr)
	if vaddr%2 != 0 {
		c.raiseException(exception{cause: cop0.CauseAddressErrorStore})
		_ = pc
		return
	}
	c.checkWatch(vaddr, WatchWrite)
	if c.gatedStore(vaddr) {
		c.Bus.Store16(vaddr, c.Reg(instr.RT()))
	}
}

func (c *CPU) opSW(instr Instruction, pc uint32) {
	vaddr := c.effAddr(instr)
	if vaddr%4 != 0 {
		c.raiseException(exception{cause: cop0.CauseAddressErrorStore})
		_ = pc
		return
	}
	c.checkWatch(vaddr, WatchWrite)
	if c.gatedStore(vaddr) {
		c.Bus.Store32(vaddr, c.Reg(instr.RT()))
	}
}

func (c *CPU) opSWL(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	aligned := vaddr &^ 3
	m := c.Bus.Load32(aligned)
	v := c.Reg(instr.RT())

	var result uint32
	switch vaddr & 3 {
	case 0:
		result = (m & 0xFFFF_FF00) | (v >> 24)
	case 1:
		result = (m & 0xFFFF_0000) | (v >> 16)
	case 2:
		result = (m & 0xFF00_0000) | (v >> 8)
	case 3:
		result = v
	}
	c.checkWatch(aligned, WatchWrite)
	if c.gatedStore(aligned) {
		c.Bus.Store32(aligned, result)
	}
}

func (c *CPU) opSWR(instr Instruction, pc uint32) {
	_ = pc
	vaddr := c.effAddr(instr)
	aligned := vaddr &^ 3
	m := c.Bus.Load32(aligned)
	v := c.Reg(instr.RT())

	var result uint32
	switch vaddr & 3 {
	case 0:
		result = v
	case 1:
		result = (m & 0x0000_00FF) | (v << 8)
	case 2:
		result = (m & 0x0000_FFFF) | (v << 16)
	case 3:
		result = (m & 0x00FF_FFFF) | (v << 24)
	}
	c.checkWatch(aligned, WatchWrite)
	if c.gatedStore(aligned) {
		c.Bus.Store32(aligned, result)
	}
}

// Package gte implements the geometry-transform coprocessor's (COP2)
// register file. GTE numerics are explicitly out of scope; this
// package exists only so the CPU can satisfy MFC2/MTC2/CFC2/CTC2 and
// COP2 command dispatch without faulting.
package gte

import "log/slog"

// GTE holds the 64 data + control registers (32 each) as opaque
// 32-bit words; numeric transform behavior is a Non-goal.
type GTE struct {
	data    [32]uint32
	control [32]uint32
}

// New returns a GTE with all registers cleared.
func New() *GTE {
	return &GTE{}
}

// ReadData implements MFC2.
func (g *GTE) ReadData(index uint32) uint32 {
	return g.data[index&0x1F]
}

// WriteData implements MTC2.
func (g *GTE) WriteData(index uint32, val uint32) {
	g.data[index&0x1F] = val
}

// ReadControl implements CFC2.
func (g *GTE) ReadControl(index uint32) uint32 {
	return g.control[index&0x1F]
}

// WriteControl implements CTC2.
func (g *GTE) WriteControl(index uint32, val uint32) {
	g.control[index&0x1F] = val
}

// Command implements a COP2 imm25 instruction (the GTE's internal
// opcodes). Numeric execution is out of scope; the command is logged
// and otherwise ignored, matching the warn-and-continue policy for
// unimplemented functionality.
func (g *GTE) Command(command uint32) {
	slog.Debug("gte: unimplemented command", "command", command&0x3F)
}

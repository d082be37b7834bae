package cpu

import "github.com/nullterm/psxgo/internal/core/cop0"

// execCop0 handles MFC0/MTC0/CFC0/CTC0/RFE, decoded on the rs field.
// Only SR(12)/CAUSE(13)/EPC(14) are writable; reserved registers
// written with a non-zero value are host-fatal.
func (c *CPU) execCop0(instr Instruction, pc uint32) {
	if instr.RS() == 0x10 && instr.Funct() == 0x10 {
		c.COP0.RFE()
		return
	}

	switch instr.RS() {
	case 0x00: // MFC0
		c.pending = pendingLoad{reg: instr.RT(), val: c.cop0Read(instr.RD())}
	case 0x02: // CFC0 -- no distinct control bank on this COP0; alias to MFC0
		c.pending = pendingLoad{reg: instr.RT(), val: c.cop0Read(instr.RD())}
	case 0x04: // MTC0
		c.cop0Write(instr.RD(), c.Reg(instr.RT()), pc)
	case 0x06: // CTC0
		c.cop0Write(instr.RD(), c.Reg(instr.RT()), pc)
	default:
		c.illegal(instr, pc)
	}
}

func (c *CPU) cop0Read(index uint32) uint32 {
	switch index {
	case 12:
		return c.COP0.SR
	case 13:
		return c.COP0.CAUSE
	case 14:
		return c.COP0.EPC
	default:
		return 0
	}
}

func (c *CPU) cop0Write(index uint32, val uint32, pc uint32) {
	writable, hardFault := cop0.MTC0Allowed(index, val)
	if hardFault {
		hostFatal(pc, "MTC0 to reserved register %d with non-zero value 0x%08X", index, val)
		return
	}
	if !writable {
		return
	}
	switch index {
	case 12:
		c.COP0.SR = val
	case 13:
		c.COP0.WriteCause(val)
	case 14:
		c.COP0.EPC = val
	}
}

// execCop2 handles COP2 (the geometry transform coprocessor)
// MFC2/CFC2/MTC2/CTC2 and GTE command dispatch, forwarding to the
// GTE register file.
func (c *CPU) execCop2(instr Instruction) {
	if instr>>25&1 == 1 {
		c.GTE.Command(uint32(instr) & 0x1FF_FFFF)
		return
	}

	switch instr.RS() {
	case 0x00: // MFC2
		c.pending = pendingLoad{reg: instr.RT(), val: c.GTE.ReadData(instr.RD())}
	case 0x02: // CFC2
		c.pending = pendingLoad{reg: instr.RT(), val: c.GTE.ReadControl(instr.RD())}
	case 0x04: // MTC2
		c.GTE.WriteData(instr.RD(), c.Reg(instr.RT()))
	case 0x06: // CTC2
		c.GTE.WriteControl(instr.RD(), c.Reg(instr.RT()))
	}
}

package cpu

// opBranch implements the PC-relative conditional branches
// (BEQ/BNE/BLEZ/BGTZ/BXX): on a taken branch it sets branchTaken and
// modifies nextPC. The instruction at the original next-PC always
// executes first (the delay slot).
//
// At the time this runs, c.pc already holds the address of the delay
// slot instruction (currentPC+4) and c.nextPC holds currentPC+8; the
// branch target is relative to the delay slot's address.
func (c *CPU) opBranch(instr Instruction, pc uint32, taken bool) {
	_ = pc
	if !taken {
		return
	}
	offset := instr.ImmSE() << 2
	c.nextPC = c.pc + offset
	c.branchTaken = true
}

// opJ is the unconditional jump (opcode 0x02).
func (c *CPU) opJ(instr Instruction, pc uint32) {
	_ = pc
	c.nextPC = (c.pc & 0xF000_0000) | (instr.Imm26() << 2)
	c.branchTaken = true
}

// opJAL is jump-and-link (opcode 0x03): writes r31 with the address
// of the instruction after the delay slot, using nextPC's value at
// the moment of the jump.
func (c *CPU) opJAL(instr Instruction, pc uint32) {
	link := c.nextPC
	c.opJ(instr, pc)
	c.setOut(31, link)
}

// opJR is jump-register (funct 0x08).
func (c *CPU) opJR(instr Instruction) {
	c.nextPC = c.Reg(instr.RS())
	c.branchTaken = true
}

// opJALR is jump-and-link-register (funct 0x09); the link register is
// explicit (rd), defaulting to 31 when the assembler emits rd=0 is
// not special-cased here since rd is always encoded explicitly.
func (c *CPU) opJALR(instr Instruction, pc uint32) {
	_ = pc
	link := c.nextPC
	target := c.Reg(instr.RS())
	c.nextPC = target
	c.branchTaken = true
	c.setOut(instr.RD(), link)
}

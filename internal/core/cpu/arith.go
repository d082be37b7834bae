package cpu

import "github.com/nullterm/psxgo/internal/core/cop0"

// -- shifts --

func (c *CPU) opSLL(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RT())<<instr.Shamt())
}

func (c *CPU) opSRL(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RT())>>instr.Shamt())
}

func (c *CPU) opSRA(instr Instruction) {
	c.setOut(instr.RD(), uint32(int32(c.Reg(instr.RT()))>>instr.Shamt()))
}

func (c *CPU) opSLLV(instr Instruction) {
	shamt := c.Reg(instr.RS()) & 0x1F
	c.setOut(instr.RD(), c.Reg(instr.RT())<<shamt)
}

func (c *CPU) opSRLV(instr Instruction) {
	shamt := c.Reg(instr.RS()) & 0x1F
	c.setOut(instr.RD(), c.Reg(instr.RT())>>shamt)
}

func (c *CPU) opSRAV(instr Instruction) {
	shamt := c.Reg(instr.RS()) & 0x1F
	c.setOut(instr.RD(), uint32(int32(c.Reg(instr.RT()))>>shamt))
}

// -- arithmetic --

func (c *CPU) opADDI(instr Instruction, pc uint32) {
	a := int32(c.Reg(instr.RS()))
	b := int32(instr.ImmSE())
	result := a + b
	if overflowsAdd(a, b, result) {
		c.raiseException(exception{cause: cop0.CauseOverflow})
		_ = pc
		return
	}
	c.setOut(instr.RT(), uint32(result))
}

func (c *CPU) opADDIU(instr Instruction) {
	c.setOut(instr.RT(), c.Reg(instr.RS())+instr.ImmSE())
}

func (c *CPU) opADD(instr Instruction, pc uint32) {
	a := int32(c.Reg(instr.RS()))
	b := int32(c.Reg(instr.RT()))
	result := a + b
	if overflowsAdd(a, b, result) {
		c.raiseException(exception{cause: cop0.CauseOverflow})
		_ = pc
		return
	}
	c.setOut(instr.RD(), uint32(result))
}

func (c *CPU) opADDU(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RS())+c.Reg(instr.RT()))
}

func (c *CPU) opSUB(instr Instruction, pc uint32) {
	a := int32(c.Reg(instr.RS()))
	b := int32(c.Reg(instr.RT()))
	result := a - b
	if overflowsSub(a, b, result) {
		c.raiseException(exception{cause: cop0.CauseOverflow})
		_ = pc
		return
	}
	c.setOut(instr.RD(), uint32(result))
}

func (c *CPU) opSUBU(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RS())-c.Reg(instr.RT()))
}

func overflowsAdd(a, b, result int32) bool {
	return ((a ^ result) & (b ^ result)) < 0
}

func overflowsSub(a, b, result int32) bool {
	return ((a ^ b) & (a ^ result)) < 0
}

// -- logical --

func (c *CPU) opAND(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RS())&c.Reg(instr.RT()))
}

func (c *CPU) opOR(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RS())|c.Reg(instr.RT()))
}

func (c *CPU) opXOR(instr Instruction) {
	c.setOut(instr.RD(), c.Reg(instr.RS())^c.Reg(instr.RT()))
}

func (c *CPU) opNOR(instr Instruction) {
	c.setOut(instr.RD(), ^(c.Reg(instr.RS()) | c.Reg(instr.RT())))
}

func (c *CPU) opANDI(instr Instruction) {
	c.setOut(instr.RT(), c.Reg(instr.RS())&instr.Imm16())
}

func (c *CPU) opORI(instr Instruction) {
	c.setOut(instr.RT(), c.Reg(instr.RS())|instr.Imm16())
}

func (c *CPU) opXORI(instr Instruction) {
	c.setOut(instr.RT(), c.Reg(instr.RS())^instr.Imm16())
}

func (c *CPU) opLUI(instr Instruction) {
	c.setOut(instr.RT(), instr.Imm16()<<16)
}

// -- compares --

func (c *CPU) opSLT(instr Instruction) {
	v := uint32(0)
	if int32(c.Reg(instr.RS())) < int32(c.Reg(instr.RT())) {
		v = 1
	}
	c.setOut(instr.RD(), v)
}

func (c *CPU) opSLTU(instr Instruction) {
	v := uint32(0)
	if c.Reg(instr.RS()) < c.Reg(instr.RT()) {
		v = 1
	}
	c.setOut(instr.RD(), v)
}

func (c *CPU) opSLTI(instr Instruction) {
	v := uint32(0)
	if int32(c.Reg(instr.RS())) < int32(instr.ImmSE()) {
		v = 1
	}
	c.setOut(instr.RT(), v)
}

func (c *CPU) opSLTIU(instr Instruction) {
	v := uint32(0)
	if c.Reg(instr.RS()) < instr.ImmSE() {
		v = 1
	}
	c.setOut(instr.RT(), v)
}

// -- HI/LO moves --

func (c *CPU) opMFHI(instr Instruction) { c.setOut(instr.RD(), c.hi) }
func (c *CPU) opMTHI(instr Instruction) { c.hi = c.Reg(instr.RS()) }
func (c *CPU) opMFLO(instr Instruction) { c.setOut(instr.RD(), c.lo) }
func (c *CPU) opMTLO(instr Instruction) { c.lo = c.Reg(instr.RS()) }

// -- multiply/divide --

func (c *CPU) opMULT(instr Instruction) {
	a := int64(int32(c.Reg(instr.RS())))
	b := int64(int32(c.Reg(instr.RT())))
	result := uint64(a * b)
	c.lo = uint32(result)
	c.hi = uint32(result >> 32)
}

func (c *CPU) opMULTU(instr Instruction) {
	result := uint64(c.Reg(instr.RS())) * uint64(c.Reg(instr.RT()))
	c.lo = uint32(result)
	c.hi = uint32(result >> 32)
}

// opDIV implements signed division with the two MIPS-defined edge
// cases: divide-by-zero and INT_MIN / -1.
func (c *CPU) opDIV(instr Instruction) {
	n := int32(c.Reg(instr.RS()))
	d := int32(c.Reg(instr.RT()))

	switch {
	case d == 0:
		c.hi = uint32(n)
		if n >= 0 {
			c.lo = 0xFFFF_FFFF
		} else {
			c.lo = 1
		}
	case n == int32(-2147483648) && d == -1:
		c.hi = 0
		c.lo = 0x8000_0000
	default:
		c.hi = uint32(n % d)
		c.lo = uint32(n / d)
	}
}

func (c *CPU) opDIVU(instr Instruction) {
	n := c.Reg(instr.RS())
	d := c.Reg(instr.RT())

	if d == 0 {
		c.hi = n
		c.lo = 0xFFFF_FFFF
		return
	}
	c.hi = n % d
	c.lo = n / d
}

package cpu

import "github.com/nullterm/psxgo/internal/core/cop0"

// execute decodes and runs a single instruction. Reads source
// operands from c.regs (the live file as of the start of this step);
// writes go to c.outRegs via setOut, and loads fill c.pending.
// pc is the address of this instruction; exceptions report the
// address Step recorded in c.curPC.
func (c *CPU) execute(instr Instruction, pc uint32) {
	switch instr.Opcode() {
	case 0x00:
		c.execSpecial(instr, pc)
	case 0x01:
		c.execRegimm(instr, pc)
	case 0x02:
		c.opJ(instr, pc)
	case 0x03:
		c.opJAL(instr, pc)
	case 0x04:
		c.opBranch(instr, pc, c.Reg(instr.RS()) == c.Reg(instr.RT()))
	case 0x05:
		c.opBranch(instr, pc, c.Reg(instr.RS()) != c.Reg(instr.RT()))
	case 0x06:
		c.opBranch(instr, pc, int32(c.Reg(instr.RS())) <= 0)
	case 0x07:
		c.opBranch(instr, pc, int32(c.Reg(instr.RS())) > 0)
	case 0x08:
		c.opADDI(instr, pc)
	case 0x09:
		c.opADDIU(instr)
	case 0x0A:
		c.opSLTI(instr)
	case 0x0B:
		c.opSLTIU(instr)
	case 0x0C:
		c.opANDI(instr)
	case 0x0D:
		c.opORI(instr)
	case 0x0E:
		c.opXORI(instr)
	case 0x0F:
		c.opLUI(instr)
	case 0x10:
		c.execCop0(instr, pc)
	case 0x11:
		c.raiseException(exception{cause: cop0.CauseCoprocessorError})
	case 0x12:
		c.execCop2(instr)
	case 0x13:
		c.raiseException(exception{cause: cop0.CauseCoprocessorError})
	case 0x20:
		c.opLB(instr, pc)
	case 0x21:
		c.opLH(instr, pc)
	case 0x22:
		c.opLWL(instr, pc)
	case 0x23:
		c.opLW(instr, pc)
	case 0x24:
		c.opLBU(instr, pc)
	case 0x25:
		c.opLHU(instr, pc)
	case 0x26:
		c.opLWR(instr, pc)
	case 0x28:
		c.opSB(instr, pc)
	case 0x29:
		c.opSH(instr, pc)
	case 0x2A:
		c.opSWL(instr, pc)
	case 0x2B:
		c.opSW(instr, pc)
	case 0x2E:
		c.opSWR(instr, pc)
	default:
		c.illegal(instr, pc)
	}
}

func (c *CPU) illegal(instr Instruction, pc uint32) {
	_ = instr
	c.raiseException(exception{cause: cop0.CauseIllegalInstr})
	_ = pc
}

// execSpecial handles opcode 0 (SPECIAL), dispatched on the funct
// field.
func (c *CPU) execSpecial(instr Instruction, pc uint32) {
	switch instr.Funct() {
	case 0x00:
		c.opSLL(instr)
	case 0x02:
		c.opSRL(instr)
	case 0x03:
		c.opSRA(instr)
	case 0x04:
		c.opSLLV(instr)
	case 0x06:
		c.opSRLV(instr)
	case 0x07:
		c.opSRAV(instr)
	case 0x08:
		c.opJR(instr)
	case 0x09:
		c.opJALR(instr, pc)
	case 0x0C:
		c.raiseException(exception{cause: cop0.CauseSyscall})
	case 0x0D:
		if c.TrapBreak {
			c.halted = true
			c.stopReason = StopBreakInstruction
			return
		}
		c.raiseException(exception{cause: cop0.CauseBreak})
	case 0x10:
		c.opMFHI(instr)
	case 0x11:
		c.opMTHI(instr)
	case 0x12:
		c.opMFLO(instr)
	case 0x13:
		c.opMTLO(instr)
	case 0x18:
		c.opMULT(instr)
	case 0x19:
		c.opMULTU(instr)
	case 0x1A:
		c.opDIV(instr)
	case 0x1B:
		c.opDIVU(instr)
	case 0x20:
		c.opADD(instr, pc)
	case 0x21:
		c.opADDU(instr)
	case 0x22:
		c.opSUB(instr, pc)
	case 0x23:
		c.opSUBU(instr)
	case 0x24:
		c.opAND(instr)
	case 0x25:
		c.opOR(instr)
	case 0x26:
		c.opXOR(instr)
	case 0x27:
		c.opNOR(instr)
	case 0x2A:
		c.opSLT(instr)
	case 0x2B:
		c.opSLTU(instr)
	default:
		c.illegal(instr, pc)
	}
}

// execRegimm handles opcode 1 (BLTZ/BGEZ/BLTZAL/BGEZAL), decoded per
// rt-field rule.
func (c *CPU) execRegimm(instr Instruction, pc uint32) {
	rt := instr.RT()
	isGE := rt&1 == 1
	link := (rt>>1)&0xF == 8

	cond := int32(c.Reg(instr.RS())) < 0
	if isGE {
		cond = !cond
	}

	if link {
		c.setOut(31, c.nextPC)
	}
	c.opBranch(instr, pc, cond)
}

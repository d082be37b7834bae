// Package disasm renders a raw MIPS I instruction word as a mnemonic
// line, dispatching on the word's op/rs/rt/rd/funct fields through
// switch statements. No other package in this repository imports it.
package disasm

import "fmt"

// gprNames mirrors the conventional MIPS register ABI names, which is
// what a human (or GDB) actually wants to see instead of r0..r31.
var gprNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

func reg(i uint32) string { return "$" + gprNames[i&0x1F] }

type instr uint32

func (i instr) opcode() uint32 { return uint32(i) >> 26 }
func (i instr) rs() uint32     { return (uint32(i) >> 21) & 0x1F }
func (i instr) rt() uint32     { return (uint32(i) >> 16) & 0x1F }
func (i instr) rd() uint32     { return (uint32(i) >> 11) & 0x1F }
func (i instr) shamt() uint32  { return (uint32(i) >> 6) & 0x1F }
func (i instr) funct() uint32  { return uint32(i) & 0x3F }
func (i instr) imm16() uint32  { return uint32(i) & 0xFFFF }
func (i instr) immSE() int32   { return int32(int16(i.imm16())) }
func (i instr) imm26() uint32  { return uint32(i) & 0x03FF_FFFF }

var specialNames = map[uint32]string{
	0x00: "sll", 0x02: "srl", 0x03: "sra", 0x04: "sllv", 0x06: "srlv",
	0x07: "srav", 0x08: "jr", 0x09: "jalr", 0x0C: "syscall", 0x0D: "break",
	0x10: "mfhi", 0x11: "mthi", 0x12: "mflo", 0x13: "mtlo", 0x18: "mult",
	0x19: "multu", 0x1A: "div", 0x1B: "divu", 0x20: "add", 0x21: "addu",
	0x22: "sub", 0x23: "subu", 0x24: "and", 0x25: "or", 0x26: "xor",
	0x27: "nor", 0x2A: "slt", 0x2B: "sltu",
}

var opNames = map[uint32]string{
	0x08: "addi", 0x09: "addiu", 0x0A: "slti", 0x0B: "sltiu", 0x0C: "andi",
	0x0D: "ori", 0x0E: "xori", 0x0F: "lui", 0x20: "lb", 0x21: "lh",
	0x22: "lwl", 0x23: "lw", 0x24: "lbu", 0x25: "lhu", 0x26: "lwr",
	0x28: "sb", 0x29: "sh", 0x2A: "swl", 0x2B: "sw", 0x2E: "swr",
}

// Line is one disassembled instruction.
type Line struct {
	Address uint32
	Text    string
}

// At decodes the word at pc (already fetched by the caller) into a
// human-readable mnemonic line.
func At(pc uint32, word uint32) Line {
	return Line{Address: pc, Text: decode(instr(word))}
}

func decode(i instr) string {
	switch i.opcode() {
	case 0x00:
		return decodeSpecial(i)
	case 0x01:
		return decodeRegimm(i)
	case 0x02:
		return fmt.Sprintf("j 0x%07X", i.imm26()<<2)
	case 0x03:
		return fmt.Sprintf("jal 0x%07X", i.imm26()<<2)
	case 0x04:
		return fmt.Sprintf("beq %s, %s, %d", reg(i.rs()), reg(i.rt()), i.immSE())
	case 0x05:
		return fmt.Sprintf("bne %s, %s, %d", reg(i.rs()), reg(i.rt()), i.immSE())
	case 0x06:
		return fmt.Sprintf("blez %s, %d", reg(i.rs()), i.immSE())
	case 0x07:
		return fmt.Sprintf("bgtz %s, %d", reg(i.rs()), i.immSE())
	case 0x10:
		return decodeCop0(i)
	case 0x12:
		return decodeCop2(i)
	}
	if name, ok := opNames[i.opcode()]; ok {
		switch i.opcode() {
		case 0x0F: // lui has no rs
			return fmt.Sprintf("%s %s, 0x%04X", name, reg(i.rt()), i.imm16())
		case 0x0C, 0x0D, 0x0E: // logical immediates: unsigned imm
			return fmt.Sprintf("%s %s, %s, 0x%04X", name, reg(i.rt()), reg(i.rs()), i.imm16())
		case 0x08, 0x09, 0x0A, 0x0B: // addi/addiu/slti/sltiu
			return fmt.Sprintf("%s %s, %s, %d", name, reg(i.rt()), reg(i.rs()), i.immSE())
		default: // loads and stores: base-register offset form
			return fmt.Sprintf("%s %s, %d(%s)", name, reg(i.rt()), i.immSE(), reg(i.rs()))
		}
	}
	return fmt.Sprintf(".word 0x%08X", uint32(i))
}

func decodeSpecial(i instr) string {
	name, ok := specialNames[i.funct()]
	if !ok {
		return fmt.Sprintf(".word 0x%08X", uint32(i))
	}
	switch i.funct() {
	case 0x00, 0x02, 0x03: // sll/srl/sra
		return fmt.Sprintf("%s %s, %s, %d", name, reg(i.rd()), reg(i.rt()), i.shamt())
	case 0x08: // jr
		return fmt.Sprintf("jr %s", reg(i.rs()))
	case 0x09: // jalr
		return fmt.Sprintf("jalr %s, %s", reg(i.rd()), reg(i.rs()))
	case 0x0C, 0x0D: // syscall/break
		return name
	case 0x10, 0x12: // mfhi/mflo
		return fmt.Sprintf("%s %s", name, reg(i.rd()))
	case 0x11, 0x13: // mthi/mtlo
		return fmt.Sprintf("%s %s", name, reg(i.rs()))
	case 0x18, 0x19, 0x1A, 0x1B: // mult/div family
		return fmt.Sprintf("%s %s, %s", name, reg(i.rs()), reg(i.rt()))
	default:
		return fmt.Sprintf("%s %s, %s, %s", name, reg(i.rd()), reg(i.rs()), reg(i.rt()))
	}
}

func decodeRegimm(i instr) string {
	rt := i.rt()
	names := map[uint32]string{0: "bltz", 1: "bgez", 16: "bltzal", 17: "bgezal"}
	name, ok := names[rt]
	if !ok {
		name = "b?imm"
	}
	return fmt.Sprintf("%s %s, %d", name, reg(i.rs()), i.immSE())
}

func decodeCop0(i instr) string {
	switch i.rs() {
	case 0x00:
		return fmt.Sprintf("mfc0 %s, $%d", reg(i.rt()), i.rd())
	case 0x04:
		return fmt.Sprintf("mtc0 %s, $%d", reg(i.rt()), i.rd())
	case 0x10:
		if i.funct() == 0x10 {
			return "rfe"
		}
	}
	return fmt.Sprintf(".word 0x%08X", uint32(i))
}

func decodeCop2(i instr) string {
	switch i.rs() {
	case 0x00:
		return fmt.Sprintf("mfc2 %s, $%d", reg(i.rt()), i.rd())
	case 0x02:
		return fmt.Sprintf("cfc2 %s, $%d", reg(i.rt()), i.rd())
	case 0x04:
		return fmt.Sprintf("mtc2 %s, $%d", reg(i.rt()), i.rd())
	case 0x06:
		return fmt.Sprintf("ctc2 %s, $%d", reg(i.rt()), i.rd())
	default:
		return fmt.Sprintf("cop2 0x%07X", uint32(i)&0x01FF_FFFF)
	}
}

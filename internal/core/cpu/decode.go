package cpu

// Instruction wraps a raw 32-bit MIPS I word with field accessors.
type Instruction uint32

func (i Instruction) Opcode() uint32 { return uint32(i) >> 26 }
func (i Instruction) RS() uint32     { return (uint32(i) >> 21) & 0x1F }
func (i Instruction) RT() uint32     { return (uint32(i) >> 16) & 0x1F }
func (i Instruction) RD() uint32     { return (uint32(i) >> 11) & 0x1F }
func (i Instruction) Shamt() uint32  { return (uint32(i) >> 6) & 0x1F }
func (i Instruction) Funct() uint32  { return uint32(i) & 0x3F }
func (i Instruction) Imm16() uint32  { return uint32(i) & 0xFFFF }
func (i Instruction) Imm26() uint32  { return uint32(i) & 0x03FF_FFFF }

// ImmSE returns the 16-bit immediate sign-extended to 32 bits.
func (i Instruction) ImmSE() uint32 { return uint32(int32(int16(i.Imm16()))) }

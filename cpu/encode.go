// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Major opcodes of the implemented RV32I subset.
const (
	OPCODE_LOAD   = uint32(0x03)
	OPCODE_OP_IMM = uint32(0x13)
	OPCODE_AUIPC  = uint32(0x17)
	OPCODE_STORE  = uint32(0x23)
	OPCODE_OP     = uint32(0x33)
	OPCODE_LUI    = uint32(0x37)
	OPCODE_BRANCH = uint32(0x63)
	OPCODE_JALR   = uint32(0x67)
	OPCODE_JAL    = uint32(0x6f)
)

// EncodeR builds an R-type instruction word.
func EncodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// EncodeI builds an I-type instruction word. The low 12 bits of imm
// are encoded; sign extension is the decoder's job.
func EncodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	immU := uint32(imm) & 0xfff

	return immU<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// EncodeS builds an S-type instruction word, splitting the 12-bit
// immediate into its high and low fields.
func EncodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	immU := uint32(imm) & 0xfff

	return (immU>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (immU&0x1f)<<7 | opcode
}

// EncodeB builds a B-type instruction word from a byte offset. The
// offset must be even; bit 0 is not encoded.
func EncodeB(opcode, funct3, rs1, rs2 uint32, offset int32) uint32 {
	immU := uint32(offset)

	imm12 := (immU >> 12) & 0x1
	imm11 := (immU >> 11) & 0x1
	imm10_5 := (immU >> 5) & 0x3f
	imm4_1 := (immU >> 1) & 0xf

	return imm12<<31 | imm10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 |
		imm4_1<<8 | imm11<<7 | opcode
}

// EncodeU builds a U-type instruction word from a 20-bit immediate.
func EncodeU(opcode, rd, imm20 uint32) uint32 {
	return imm20<<12 | rd<<7 | opcode
}

// EncodeJ builds a J-type instruction word from a byte offset.
func EncodeJ(opcode, rd uint32, offset int32) uint32 {
	immU := uint32(offset)

	imm20 := (immU >> 20) & 0x1
	imm19_12 := (immU >> 12) & 0xff
	imm11 := (immU >> 11) & 0x1
	imm10_1 := (immU >> 1) & 0x3ff

	return imm20<<31 | imm10_1<<21 | imm11<<20 | imm19_12<<12 | rd<<7 | opcode
}

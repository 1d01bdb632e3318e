// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"log"
)

// State is the snapshot of the CPU at a moment in time.
type State struct {
	Verbose bool // Set to enable verbose logging.

	Regs [32]uint32 // General purpose registers. x0 is hardwired to zero.
	Pc   uint32     // Program counter.
	Mem  []byte     // Flat little-endian byte memory.
}

// New creates a CPU with memSize bytes of zeroed memory.
func New(memSize int) (s *State) {
	s = &State{
		Mem: make([]byte, memSize),
	}

	return
}

// Reset puts the CPU back into a clean starting state: registers and
// pc zeroed, memory cleared.
func (s *State) Reset() {
	if s.Verbose {
		log.Printf("cpu: reset")
	}

	clear(s.Regs[:])
	s.Pc = 0
	clear(s.Mem)
}

// LoadProgram stores a list of 32-bit instruction words into memory
// starting at base, little-endian, and sets pc to base.
func (s *State) LoadProgram(words []uint32, base uint32) (err error) {
	addr := base
	for _, w := range words {
		err = s.storeWord(addr, w)
		if err != nil {
			return
		}
		addr += 4
	}

	s.Pc = base

	return
}

// loadWord reads a 32-bit little-endian word from memory.
func (s *State) loadWord(addr uint32) (value uint32, err error) {
	if uint64(addr)+4 > uint64(len(s.Mem)) {
		err = ErrMemRange(addr)
		return
	}

	value = uint32(s.Mem[addr]) |
		uint32(s.Mem[addr+1])<<8 |
		uint32(s.Mem[addr+2])<<16 |
		uint32(s.Mem[addr+3])<<24

	return
}

// storeWord writes a 32-bit word into memory in little-endian order.
func (s *State) storeWord(addr uint32, value uint32) (err error) {
	if uint64(addr)+4 > uint64(len(s.Mem)) {
		err = ErrMemRange(addr)
		return
	}

	s.Mem[addr] = byte(value)
	s.Mem[addr+1] = byte(value >> 8)
	s.Mem[addr+2] = byte(value >> 16)
	s.Mem[addr+3] = byte(value >> 24)

	return
}

// readReg reads a register, with x0 always reading as zero.
func (s *State) readReg(idx uint32) uint32 {
	if idx == 0 {
		return 0
	}

	return s.Regs[idx]
}

// writeReg writes a register, dropping writes to x0.
func (s *State) writeReg(idx uint32, value uint32) {
	if idx == 0 {
		return
	}

	s.Regs[idx] = value
}

// signExtend sign-extends the low bits of x to 32 bits.
func signExtend(x uint32, bits int) uint32 {
	shift := 32 - bits

	return uint32(int32(x<<shift) >> shift)
}

// Step executes the single instruction at pc.
//
// Unrecognized opcodes and funct fields are ignored and pc advances
// past them. A misaligned pc or an out-of-range memory access stops
// execution with an error.
func (s *State) Step() (err error) {
	if s.Pc%4 != 0 {
		err = ErrPcMisaligned
		return
	}

	instr, err := s.loadWord(s.Pc)
	if err != nil {
		return
	}

	if s.Verbose {
		log.Printf("cpu: %08x: %08x", s.Pc, instr)
	}

	opcode := instr & 0x7f
	rd := (instr >> 7) & 0x1f
	funct3 := (instr >> 12) & 0x07
	rs1 := (instr >> 15) & 0x1f
	rs2 := (instr >> 20) & 0x1f
	funct7 := (instr >> 25) & 0x7f

	nextPc := s.Pc + 4

	switch opcode {
	case OPCODE_OP_IMM:
		imm := signExtend(instr>>20, 12)
		val1 := s.readReg(rs1)

		switch funct3 {
		case 0x0: // addi
			s.writeReg(rd, val1+imm)
		case 0x4: // xori
			s.writeReg(rd, val1^imm)
		case 0x6: // ori
			s.writeReg(rd, val1|imm)
		case 0x7: // andi
			s.writeReg(rd, val1&imm)
		case 0x1: // slli
			shamt := (instr >> 20) & 0x1f
			s.writeReg(rd, val1<<shamt)
		case 0x5: // srli / srai
			shamt := (instr >> 20) & 0x1f
			switch funct7 {
			case 0x00:
				s.writeReg(rd, val1>>shamt)
			case 0x20:
				s.writeReg(rd, uint32(int32(val1)>>shamt))
			}
		}
	case OPCODE_OP:
		val1 := s.readReg(rs1)
		val2 := s.readReg(rs2)

		switch funct3 {
		case 0x0: // add / sub
			switch funct7 {
			case 0x00:
				s.writeReg(rd, val1+val2)
			case 0x20:
				s.writeReg(rd, val1-val2)
			}
		case 0x4: // xor
			s.writeReg(rd, val1^val2)
		case 0x6: // or
			s.writeReg(rd, val1|val2)
		case 0x7: // and
			s.writeReg(rd, val1&val2)
		case 0x1: // sll
			s.writeReg(rd, val1<<(val2&0x1f))
		case 0x5: // srl / sra
			shamt := val2 & 0x1f
			switch funct7 {
			case 0x00:
				s.writeReg(rd, val1>>shamt)
			case 0x20:
				s.writeReg(rd, uint32(int32(val1)>>shamt))
			}
		}
	case OPCODE_LOAD:
		imm := signExtend(instr>>20, 12)
		addr := s.readReg(rs1) + imm

		switch funct3 {
		case 0x2: // lw
			var val uint32
			val, err = s.loadWord(addr)
			if err != nil {
				return
			}
			s.writeReg(rd, val)
		}
	case OPCODE_STORE:
		immU := ((instr >> 25) << 5) | rd
		imm := signExtend(immU, 12)
		addr := s.readReg(rs1) + imm

		switch funct3 {
		case 0x2: // sw
			err = s.storeWord(addr, s.readReg(rs2))
			if err != nil {
				return
			}
		}
	case OPCODE_BRANCH:
		imm12 := (instr >> 31) & 0x1
		imm10_5 := (instr >> 25) & 0x3f
		imm4_1 := (instr >> 8) & 0xf
		imm11 := (instr >> 7) & 0x1

		immU := imm12<<12 | imm11<<11 | imm10_5<<5 | imm4_1<<1
		offset := signExtend(immU, 13)

		val1 := s.readReg(rs1)
		val2 := s.readReg(rs2)

		take := false
		switch funct3 {
		case 0x0: // beq
			take = val1 == val2
		case 0x1: // bne
			take = val1 != val2
		}

		if take {
			nextPc = s.Pc + offset
		}
	case OPCODE_JAL:
		imm20 := (instr >> 31) & 0x1
		imm10_1 := (instr >> 21) & 0x3ff
		imm11 := (instr >> 20) & 0x1
		imm19_12 := (instr >> 12) & 0xff

		immU := imm20<<20 | imm19_12<<12 | imm11<<11 | imm10_1<<1
		offset := signExtend(immU, 21)

		s.writeReg(rd, s.Pc+4)
		nextPc = s.Pc + offset
	case OPCODE_JALR:
		imm := signExtend(instr>>20, 12)
		target := (s.readReg(rs1) + imm) &^ 1

		s.writeReg(rd, s.Pc+4)
		nextPc = target
	case OPCODE_AUIPC:
		s.writeReg(rd, s.Pc+(instr&0xfffff000))
	case OPCODE_LUI:
		s.writeReg(rd, instr&0xfffff000)
	}

	s.Pc = nextPc

	return
}

// Run calls Step up to maxSteps times, stopping at the first error.
func (s *State) Run(maxSteps int) (err error) {
	for i := 0; i < maxSteps; i++ {
		err = s.Step()
		if err != nil {
			return
		}
	}

	return
}

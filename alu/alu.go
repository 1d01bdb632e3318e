// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package alu implements the 32-bit integer ALU: ripple-carry add and
// subtract with N/Z/C/V condition flags.
package alu

import (
	"github.com/ezrec/rvbit/bitvec"
)

// Op is an ALU operation type.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_ADD = Op(0) // add
	OP_SUB = Op(1) // sub
	OP_SLL = Op(2) // sll
	OP_SRL = Op(3) // srl
	OP_SRA = Op(4) // sra
)

// Flags are the condition flags of one ALU operation. Every call
// returns a fresh set; there is no flag register.
type Flags struct {
	N bitvec.Bit // Result is negative in two's-complement
	Z bitvec.Bit // Result is exactly zero
	C bitvec.Bit // Carry out (for Sub: 1 means no borrow)
	V bitvec.Bit // Signed overflow
}

// Result is the output of one ALU operation.
type Result struct {
	Result bitvec.Bits // 32-digit result
	Flags  Flags
}

// add32 adds two 32-digit vectors with a ripple carry, digit 0 upward.
func add32(a, b bitvec.Bits) (sum bitvec.Bits, carry bitvec.Bit) {
	sum = make(bitvec.Bits, 32)

	for i := 0; i < 32; i++ {
		ai := a[i]
		bi := b[i]

		partial := ai ^ bi
		sum[i] = partial ^ carry
		carry = (ai & bi) | (ai & carry) | (bi & carry)
	}

	return
}

// negate32 computes -v: flip every digit, add one through the adder.
func negate32(v bitvec.Bits) bitvec.Bits {
	inv := make(bitvec.Bits, 32)
	for i := 0; i < 32; i++ {
		inv[i] = v[i] ^ 1
	}

	one := make(bitvec.Bits, 32)
	one[0] = 1

	sum, _ := add32(inv, one)
	return sum
}

// zeroFlag is 1 iff every digit of r is 0.
func zeroFlag(r bitvec.Bits) bitvec.Bit {
	for _, bit := range r {
		if bit != 0 {
			return 0
		}
	}

	return 1
}

// Execute runs one ALU operation. Operands are zero-extended to 32
// digits first, so callers may pass shorter vectors.
//
// Shift opcodes are accepted at this entry point but pass the first
// operand through unchanged; shifting lives in the shifter package. The
// flags are still computed from the passthrough value.
func Execute(a, b bitvec.Bits, op Op) (res Result) {
	a32 := a.ZeroExtend(32)
	b32 := b.ZeroExtend(32)

	switch op {
	case OP_ADD:
		sum, carry := add32(a32, b32)
		res.Result = sum

		signA := a32[31]
		signB := b32[31]
		signR := sum[31]

		res.Flags.N = signR
		res.Flags.Z = zeroFlag(sum)
		res.Flags.C = carry
		if signA == signB && signR != signA {
			res.Flags.V = 1
		}

	case OP_SUB:
		sum, carry := add32(a32, negate32(b32))
		res.Result = sum

		signA := a32[31]
		signB := b32[31]
		signR := sum[31]

		res.Flags.N = signR
		res.Flags.Z = zeroFlag(sum)
		res.Flags.C = carry
		if signA != signB && signR != signA {
			res.Flags.V = 1
		}

	default:
		res.Result = a32
		res.Flags.N = a32[31]
		res.Flags.Z = zeroFlag(a32)
	}

	return
}

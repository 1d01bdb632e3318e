// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package mdu implements the multiply/divide unit: signed 32x32->64
// multiply via shift-and-add, and signed 32/32 restoring division.
//
// Both algorithms run on the sign/magnitude decomposition from the twos
// package, so the inner loops only ever see unsigned magnitudes; the
// sign is fixed up afterwards. Each operation returns an ordered trace
// of its intermediate register state for diagnostic replay.
package mdu

import (
	"fmt"

	"github.com/ezrec/rvbit/bitvec"
	"github.com/ezrec/rvbit/twos"
)

// MulOp is a multiply operation type.
type MulOp int

//go:generate go tool stringer -linecomment -type=MulOp
const (
	MUL_OP_MUL    = MulOp(0) // mul
	MUL_OP_MULH   = MulOp(1) // mulh
	MUL_OP_MULHU  = MulOp(2) // mulhu
	MUL_OP_MULHSU = MulOp(3) // mulhsu
)

// DivOp is a divide/remainder operation type.
type DivOp int

//go:generate go tool stringer -linecomment -type=DivOp
const (
	DIV_OP_DIV  = DivOp(0) // div
	DIV_OP_DIVU = DivOp(1) // divu
	DIV_OP_REM  = DivOp(2) // rem
	DIV_OP_REMU = DivOp(3) // remu
)

// MulResult is the outcome of one multiply.
type MulResult struct {
	Lo       bitvec.Bits // Low 32 digits of the 64-digit product
	Hi       bitvec.Bits // High 32 digits
	Overflow bool        // True signed product does not fit in 32 bits
	Trace    []string
}

// DivResult is the outcome of one divide.
type DivResult struct {
	Q        bitvec.Bits // Quotient, rounded toward zero
	R        bitvec.Bits // Remainder, sign of the dividend
	Overflow bool        // Only set for INT_MIN / -1
	Trace    []string
}

// addFixed adds two vectors as unsigned values at the given width,
// padding missing digits with zero.
func addFixed(a, b bitvec.Bits, width int) (sum bitvec.Bits, carry bitvec.Bit) {
	sum = make(bitvec.Bits, width)

	for i := 0; i < width; i++ {
		var ai, bi bitvec.Bit
		if i < len(a) {
			ai = a[i]
		}
		if i < len(b) {
			bi = b[i]
		}

		partial := ai ^ bi
		sum[i] = partial ^ carry
		carry = (ai & bi) | (ai & carry) | (bi & carry)
	}

	return
}

// negateFixed computes the two's-complement of v at the given width.
// The carry past the top digit is dropped.
func negateFixed(v bitvec.Bits, width int) bitvec.Bits {
	inv := make(bitvec.Bits, width)
	for i := 0; i < width; i++ {
		var bit bitvec.Bit
		if i < len(v) {
			bit = v[i]
		}
		inv[i] = bit ^ 1
	}

	one := make(bitvec.Bits, width)
	one[0] = 1

	sum, _ := addFixed(inv, one, width)
	return sum
}

// compareU32 compares two 32-digit vectors as unsigned values,
// returning -1, 0, or 1.
func compareU32(a, b bitvec.Bits) int {
	for i := 31; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}

	return 0
}

// subU32 subtracts b from a as 32-digit unsigned values.
func subU32(a, b bitvec.Bits) bitvec.Bits {
	diff := make(bitvec.Bits, 32)
	var borrow bitvec.Bit

	for i := 0; i < 32; i++ {
		ai := a[i]
		bi := b[i]
		bin := borrow

		diff[i] = ai ^ bi ^ bin

		notAi := ai ^ 1
		borrow = (notAi & (bi | bin)) | (bi & bin)
	}

	return diff
}

func isZero32(x bitvec.Bits) bool {
	for _, bit := range x {
		if bit != 0 {
			return false
		}
	}

	return true
}

func isAllOnes32(x bitvec.Bits) bool {
	for _, bit := range x {
		if bit != 1 {
			return false
		}
	}

	return true
}

// isIntMin32 reports whether x is 0x80000000: digit 31 set, all below 0.
func isIntMin32(x bitvec.Bits) bool {
	if x[31] != 1 {
		return false
	}
	for i := 0; i < 31; i++ {
		if x[i] != 0 {
			return false
		}
	}

	return true
}

// divU32 runs unsigned restoring division on 32-digit magnitudes: shift
// the remainder left, bring in the next dividend digit, and subtract the
// divisor when the remainder is large enough. One trace snapshot is
// recorded per iteration.
func divU32(dividend, divisor bitvec.Bits) (q, r bitvec.Bits, trace []string) {
	r = make(bitvec.Bits, 32)
	q = make(bitvec.Bits, 32)

	snapshot := func(step int) {
		trace = append(trace, fmt.Sprintf("step %d: R=%s Q=%s", step, r.Hex(), q.Hex()))
	}

	for i := 31; i >= 0; i-- {
		// Shift R left by one digit, next dividend digit at the bottom.
		for j := 31; j >= 1; j-- {
			r[j] = r[j-1]
		}
		r[0] = dividend[i]

		if compareU32(r, divisor) >= 0 {
			r = subU32(r, divisor)
			q[i] = 1
		} else {
			q[i] = 0
		}
		snapshot(31 - i)
	}

	return
}

// Mul multiplies two 32-digit values.
//
// Only MUL_OP_MUL is implemented; the mulh/mulhu/mulhsu variants are
// placeholders that return zero until the high-half fixups exist.
func Mul(op MulOp, rs1, rs2 bitvec.Bits) (res MulResult) {
	res.Lo = make(bitvec.Bits, 32)
	res.Hi = make(bitvec.Bits, 32)

	if op != MUL_OP_MUL {
		return
	}

	sm1 := twos.Decompose(rs1.ZeroExtend(32))
	sm2 := twos.Decompose(rs2.ZeroExtend(32))

	signRes := sm1.Sign ^ sm2.Sign

	mag1 := sm1.Mag.ZeroExtend(32)
	mag2 := sm2.Mag.ZeroExtend(32)

	// 64-digit product register, multiplier magnitude in the low half.
	p := make(bitvec.Bits, 64)
	copy(p[:32], mag2)

	snapshot := func(step int) {
		lo := p[:32].ZeroExtend(32)
		hi := p[32:].ZeroExtend(32)
		res.Trace = append(res.Trace,
			fmt.Sprintf("step %d: acc=%s mul=%s", step, hi.Hex(), lo.Hex()))
	}

	for step := 0; step < 32; step++ {
		snapshot(step)

		if p[0] == 1 {
			hi := make(bitvec.Bits, 32)
			copy(hi, p[32:])

			sum, _ := addFixed(hi, mag1, 32)
			copy(p[32:], sum)
		}

		// Shift the whole 64-digit register right by one.
		for i := 0; i+1 < 64; i++ {
			p[i] = p[i+1]
		}
		p[63] = 0
	}

	snapshot(32)

	signedProd := p
	if signRes != 0 {
		signedProd = negateFixed(p, 64)
	}

	copy(res.Lo, signedProd[:32])
	copy(res.Hi, signedProd[32:])

	// The product fits in signed 32 bits iff the high half is the
	// arithmetic sign extension of digit 31.
	sign32 := signedProd[31]
	for i := 32; i < 64; i++ {
		if signedProd[i] != sign32 {
			res.Overflow = true
			break
		}
	}

	return
}

// Div divides one 32-digit value by another.
//
// Only DIV_OP_DIV is implemented; divu/rem/remu are placeholders that
// return zero. The ISA's defined edge cases are honored: dividing by
// zero yields q=-1 and r=dividend with no overflow, and INT_MIN / -1
// yields q=INT_MIN, r=0 with the overflow flag set.
func Div(op DivOp, rs1, rs2 bitvec.Bits) (res DivResult) {
	dividend := rs1.ZeroExtend(32)
	divisor := rs2.ZeroExtend(32)

	if op != DIV_OP_DIV {
		res.Q = make(bitvec.Bits, 32)
		res.R = make(bitvec.Bits, 32)
		return
	}

	sm1 := twos.Decompose(dividend)
	sm2 := twos.Decompose(divisor)

	mag1 := sm1.Mag.ZeroExtend(32)
	mag2 := sm2.Mag.ZeroExtend(32)

	if isZero32(mag2) {
		q := make(bitvec.Bits, 32)
		for i := range q {
			q[i] = 1
		}

		res.Q = q
		res.R = dividend
		res.Trace = []string{"divide-by-zero: q=-1, r=dividend"}
		return
	}

	if isIntMin32(dividend) && isAllOnes32(divisor) {
		res.Q = dividend
		res.R = make(bitvec.Bits, 32)
		res.Overflow = true
		res.Trace = []string{"INT_MIN / -1 special case"}
		return
	}

	signQ := sm1.Sign ^ sm2.Sign

	qAbs, rAbs, trace := divU32(mag1, mag2)

	res.Q = qAbs
	if signQ != 0 {
		res.Q = negateFixed(qAbs, 32)
	}

	// Truncating division: the remainder takes the dividend's sign.
	res.R = rAbs
	if sm1.Sign != 0 {
		res.R = negateFixed(rAbs, 32)
	}

	res.Trace = trace
	return
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package f32 implements the IEEE-754 single-precision unit: pack and
// unpack of the sign/exponent/fraction fields, and bit-level add,
// subtract, and multiply.
//
// Deliberate deviations from full IEEE-754, shared with the hardware
// model this package mirrors: subnormals are flushed to zero, rounding
// is the truncation implicit in shifting, and every NaN produced is the
// canonical quiet NaN 0x7fc00000.
package f32

import (
	"github.com/ezrec/rvbit/bitvec"
)

const (
	fractionWidth    = 23
	exponentWidth    = 8
	significandWidth = 24 // fraction plus the explicit leading 1
	productWidth     = 48
)

// Fields is the decomposed form of a 32-digit IEEE-754 pattern.
type Fields struct {
	Sign     bitvec.Bit
	Exponent bitvec.Bits // 8 digits, biased by 127
	Fraction bitvec.Bits // 23 digits
}

// Flags are the exception flags of one float operation.
type Flags struct {
	Overflow  bool
	Underflow bool
	Invalid   bool
	Inexact   bool
}

// Result is the outcome of one float operation. Trace is an ordered
// log of the algorithm stages reached, usable to assert which code
// path executed.
type Result struct {
	Bits  bitvec.Bits // 32-digit result pattern
	Flags Flags
	Trace []string
}

// Unpack splits a 32-digit float pattern into its fields.
func Unpack(bits bitvec.Bits) (f Fields) {
	b32 := bits.ZeroExtend(32)

	f.Sign = b32[31]

	f.Fraction = make(bitvec.Bits, fractionWidth)
	copy(f.Fraction, b32[:fractionWidth])

	f.Exponent = make(bitvec.Bits, exponentWidth)
	copy(f.Exponent, b32[fractionWidth:fractionWidth+exponentWidth])

	return
}

// Pack reassembles fields into a 32-digit float pattern. Unpack and
// Pack are lossless structural reinterpretations; no arithmetic.
func Pack(f Fields) (b32 bitvec.Bits) {
	b32 = make(bitvec.Bits, 32)

	copy(b32[:fractionWidth], f.Fraction)
	copy(b32[fractionWidth:fractionWidth+exponentWidth], f.Exponent)
	b32[31] = f.Sign

	return
}

// compareU compares two vectors as unsigned values over their common
// width, returning -1, 0, or 1.
func compareU(a, b bitvec.Bits) int {
	width := min(len(a), len(b))

	for i := width - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}

	return 0
}

// addU adds two vectors as unsigned values at the given width.
func addU(a, b bitvec.Bits, width int) (sum bitvec.Bits, carry bitvec.Bit) {
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

// subU computes a - b as unsigned values at the given width.
func subU(a, b bitvec.Bits, width int) (diff bitvec.Bits, borrow bitvec.Bit) {
	diff = make(bitvec.Bits, width)

	for i := 0; i < width; i++ {
		var ai, bi bitvec.Bit
		if i < len(a) {
			ai = a[i]
		}
		if i < len(b) {
			bi = b[i]
		}
		bin := borrow

		diff[i] = ai ^ bi ^ bin

		notAi := ai ^ 1
		borrow = (notAi & (bi | bin)) | (bi & bin)
	}

	return
}

// shr1 shifts v right one digit in place, filling the top with zero.
func shr1(v bitvec.Bits) {
	for i := 0; i+1 < len(v); i++ {
		v[i] = v[i+1]
	}
	v[len(v)-1] = 0
}

// shl1 shifts v left one digit in place, filling the bottom with zero.
func shl1(v bitvec.Bits) {
	for i := len(v) - 1; i > 0; i-- {
		v[i] = v[i-1]
	}
	v[0] = 0
}

func allZero(x bitvec.Bits) bool {
	for _, bit := range x {
		if bit != 0 {
			return false
		}
	}

	return true
}

func allOnes(x bitvec.Bits) bool {
	for _, bit := range x {
		if bit != 1 {
			return false
		}
	}

	return true
}

func onesExponent() (e bitvec.Bits) {
	e = make(bitvec.Bits, exponentWidth)
	for i := range e {
		e[i] = 1
	}

	return
}

// canonicalNaN is the fixed quiet-NaN pattern 0x7fc00000.
func canonicalNaN() bitvec.Bits {
	frac := make(bitvec.Bits, fractionWidth)
	frac[fractionWidth-1] = 1

	return Pack(Fields{Sign: 0, Exponent: onesExponent(), Fraction: frac})
}

// oneExponent is the constant 1 at exponent width.
func oneExponent() (e bitvec.Bits) {
	e = make(bitvec.Bits, exponentWidth)
	e[0] = 1

	return
}

// Add computes a + b.
//
// A zero operand short-circuits to the other operand unchanged. The
// general path builds 24-digit significands with an explicit leading 1,
// aligns the smaller operand to the larger exponent, then either adds
// (same signs) or subtracts smaller-from-larger (different signs) and
// renormalizes. Exponent behavior at the extremes follows the hardware
// model: the alignment loop breaks early when the exponent would
// underflow, and the carry-renormalize increment does not check for
// exponent overflow.
func Add(a, b bitvec.Bits) (out Result) {
	out.Bits = make(bitvec.Bits, 32)
	out.Trace = []string{"fadd start"}

	a32 := a.ZeroExtend(32)
	b32 := b.ZeroExtend(32)

	fa := Unpack(a32)
	fb := Unpack(b32)

	if allZero(fa.Exponent) && allZero(fa.Fraction) {
		out.Bits = b32
		out.Trace = append(out.Trace, "a is zero: return b")
		return
	}
	if allZero(fb.Exponent) && allZero(fb.Fraction) {
		out.Bits = a32
		out.Trace = append(out.Trace, "b is zero: return a")
		return
	}

	sigA := make(bitvec.Bits, significandWidth)
	sigB := make(bitvec.Bits, significandWidth)
	copy(sigA, fa.Fraction)
	copy(sigB, fb.Fraction)
	sigA[significandWidth-1] = 1
	sigB[significandWidth-1] = 1

	var expBig, expSmall bitvec.Bits
	var sigBig, sigSmall bitvec.Bits
	var signBig, signSmall bitvec.Bit

	if compareU(fa.Exponent, fb.Exponent) >= 0 {
		expBig, expSmall = fa.Exponent, fb.Exponent
		sigBig, sigSmall = sigA, sigB
		signBig, signSmall = fa.Sign, fb.Sign
	} else {
		expBig, expSmall = fb.Exponent, fa.Exponent
		sigBig, sigSmall = sigB, sigA
		signBig, signSmall = fb.Sign, fa.Sign
	}

	// Align the smaller significand one digit at a time, walking a
	// working copy of the larger exponent down to the smaller one.
	expTmp := expBig.ZeroExtend(exponentWidth)
	sigSmallAligned := sigSmall.ZeroExtend(significandWidth)

	for compareU(expTmp, expSmall) > 0 {
		shr1(sigSmallAligned)

		var borrow bitvec.Bit
		expTmp, borrow = subU(expTmp, oneExponent(), exponentWidth)
		if borrow == 1 {
			break
		}
	}

	if signBig == signSmall {
		sigSum, carry := addU(sigBig, sigSmallAligned, significandWidth)

		expRes := expBig
		// A carry out of the 24-digit field means the mantissa grew
		// past its range: halve it and bump the exponent.
		if carry == 1 {
			shr1(sigSum)
			expRes, _ = addU(expRes, oneExponent(), exponentWidth)
		}

		fres := Fields{
			Sign:     signBig,
			Exponent: expRes,
			Fraction: make(bitvec.Bits, fractionWidth),
		}
		copy(fres.Fraction, sigSum[:fractionWidth])

		out.Bits = Pack(fres)
		out.Trace = append(out.Trace, "fadd same-sign add")
		return
	}

	sigBigLocal := sigBig.ZeroExtend(significandWidth)
	sigSmallLocal := sigSmallAligned

	resultSign := signBig

	switch cmp := compareU(sigBigLocal, sigSmallLocal); {
	case cmp < 0:
		sigBigLocal, sigSmallLocal = sigSmallLocal, sigBigLocal
		resultSign = signSmall
	case cmp == 0:
		// Exact cancellation is canonical +0.
		out.Bits = Pack(Fields{
			Exponent: make(bitvec.Bits, exponentWidth),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fadd different-sign: exact zero")
		return
	}

	sigDiff, _ := subU(sigBigLocal, sigSmallLocal, significandWidth)

	expRes := expBig.ZeroExtend(exponentWidth)

	if allZero(sigDiff) {
		out.Bits = Pack(Fields{
			Exponent: make(bitvec.Bits, exponentWidth),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fadd different-sign: diff zero")
		return
	}

	// Normalize: shift left until the top significand digit is 1, or
	// the exponent underflows into the subnormal range.
	for sigDiff[significandWidth-1] == 0 && !allZero(sigDiff) {
		shl1(sigDiff)

		var borrow bitvec.Bit
		expRes, borrow = subU(expRes, oneExponent(), exponentWidth)
		if borrow == 1 {
			break
		}
	}

	fres := Fields{
		Sign:     resultSign,
		Exponent: expRes,
		Fraction: make(bitvec.Bits, fractionWidth),
	}
	copy(fres.Fraction, sigDiff[:fractionWidth])

	out.Bits = Pack(fres)
	out.Trace = append(out.Trace, "fadd different-sign subtract")
	return
}

// Sub computes a - b by flipping the sign digit of b and delegating
// to Add.
func Sub(a, b bitvec.Bits) Result {
	bNeg := b.ZeroExtend(32)
	bNeg[31] ^= 1

	return Add(a, bNeg)
}

// Mul computes a * b.
//
// Special values resolve before any arithmetic, in order: NaN operand,
// zero times infinity, infinity, zero. Finite operands go through a
// 9-digit exponent-sum pre-check against 382 that short-circuits
// guaranteed overflow, a bias subtract whose borrow flushes to signed
// zero, a 24x24->48 shift-and-add significand multiply, and a final
// normalize that may saturate to infinity or flush to zero.
func Mul(a, b bitvec.Bits) (out Result) {
	out.Bits = make(bitvec.Bits, 32)
	out.Trace = []string{"fmul start"}

	a32 := a.ZeroExtend(32)
	b32 := b.ZeroExtend(32)

	fa := Unpack(a32)
	fb := Unpack(b32)

	signRes := fa.Sign ^ fb.Sign

	expAZero := allZero(fa.Exponent)
	expBZero := allZero(fb.Exponent)
	expAOnes := allOnes(fa.Exponent)
	expBOnes := allOnes(fb.Exponent)

	fracAZero := allZero(fa.Fraction)
	fracBZero := allZero(fb.Fraction)

	aIsZero := expAZero && fracAZero
	bIsZero := expBZero && fracBZero
	aIsInf := expAOnes && fracAZero
	bIsInf := expBOnes && fracBZero
	aIsNaN := expAOnes && !fracAZero
	bIsNaN := expBOnes && !fracBZero

	if aIsNaN || bIsNaN {
		out.Bits = canonicalNaN()
		out.Flags.Invalid = true
		out.Trace = append(out.Trace, "fmul: NaN operand")
		return
	}

	if (aIsInf && bIsZero) || (bIsInf && aIsZero) {
		out.Bits = canonicalNaN()
		out.Flags.Invalid = true
		out.Trace = append(out.Trace, "fmul: 0 * inf invalid")
		return
	}

	if aIsInf || bIsInf {
		out.Bits = Pack(Fields{
			Sign:     signRes,
			Exponent: onesExponent(),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fmul: inf result")
		return
	}

	if aIsZero || bIsZero {
		out.Bits = Pack(Fields{
			Sign:     signRes,
			Exponent: make(bitvec.Bits, exponentWidth),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fmul: zero result")
		return
	}

	// A 9-digit sum of the biased exponents at or above 382 cannot
	// come back under the exponent range after the bias subtract, so
	// overflow is decided before the expensive significand multiply.
	expA9 := fa.Exponent.ZeroExtend(9)
	expB9 := fb.Exponent.ZeroExtend(9)
	expSum9, _ := addU(expA9, expB9, 9)

	// 382 = 0b101111110
	thresh382 := bitvec.Bits{0, 1, 1, 1, 1, 1, 1, 0, 1}

	if compareU(expSum9, thresh382) >= 0 {
		out.Flags.Overflow = true
		out.Bits = Pack(Fields{
			Sign:     signRes,
			Exponent: onesExponent(),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fmul: pre-check exponent overflow")
		return
	}

	expSum, _ := addU(fa.Exponent, fb.Exponent, exponentWidth)

	// bias = 127 = 0b01111111
	bias := bitvec.Bits{1, 1, 1, 1, 1, 1, 1, 0}

	expTmp, borrowBias := subU(expSum, bias, exponentWidth)
	if borrowBias == 1 {
		out.Flags.Underflow = true
		out.Bits = Pack(Fields{
			Sign:     signRes,
			Exponent: make(bitvec.Bits, exponentWidth),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fmul: exponent underflow before normalization")
		return
	}

	// The implicit leading 1 only applies to normalized operands;
	// zero-exponent patterns keep a 0 there and behave flushed.
	sigA := make(bitvec.Bits, significandWidth)
	sigB := make(bitvec.Bits, significandWidth)
	copy(sigA, fa.Fraction)
	copy(sigB, fb.Fraction)
	if !expAZero {
		sigA[significandWidth-1] = 1
	}
	if !expBZero {
		sigB[significandWidth-1] = 1
	}

	prod := make(bitvec.Bits, productWidth)
	multiplicand := sigA.ZeroExtend(productWidth)
	multiplier := sigB.ZeroExtend(significandWidth)

	for step := 0; step < significandWidth; step++ {
		if multiplier[0] == 1 {
			prod, _ = addU(prod, multiplicand, productWidth)
		}
		shr1(multiplier)
		shl1(multiplicand)
	}

	out.Trace = append(out.Trace, "fmul: after significand multiply")

	high := prod[productWidth-1] == 1
	expRes := expTmp

	if high {
		var carry bitvec.Bit
		expRes, carry = addU(expRes, oneExponent(), exponentWidth)
		if carry == 1 {
			out.Flags.Overflow = true
			out.Bits = Pack(Fields{
				Sign:     signRes,
				Exponent: onesExponent(),
				Fraction: make(bitvec.Bits, fractionWidth),
			})
			out.Trace = append(out.Trace, "fmul: exponent overflow after normalization")
			return
		}
	}

	// Take the 24 significant digits from the product, one position
	// higher when the top digit carried.
	shift := significandWidth - 1
	if high {
		shift = significandWidth
	}
	sigRes := make(bitvec.Bits, significandWidth)
	for i := 0; i < significandWidth; i++ {
		if i+shift < productWidth {
			sigRes[i] = prod[i+shift]
		}
	}

	if allZero(expRes) {
		out.Flags.Underflow = true
		out.Bits = Pack(Fields{
			Sign:     signRes,
			Exponent: make(bitvec.Bits, exponentWidth),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fmul: underflow to zero")
		return
	}

	if allOnes(expRes) {
		out.Flags.Overflow = true
		out.Bits = Pack(Fields{
			Sign:     signRes,
			Exponent: onesExponent(),
			Fraction: make(bitvec.Bits, fractionWidth),
		})
		out.Trace = append(out.Trace, "fmul: overflow to inf")
		return
	}

	fres := Fields{
		Sign:     signRes,
		Exponent: expRes,
		Fraction: make(bitvec.Bits, fractionWidth),
	}
	copy(fres.Fraction, sigRes[:fractionWidth])

	out.Bits = Pack(fres)
	out.Trace = append(out.Trace, "fmul: normal finite result")
	return
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package twos converts between signed integers, sign/magnitude pairs,
// and fixed-width (32-digit) two's-complement bit vectors.
package twos

import (
	"math"

	"github.com/ezrec/rvbit/bitvec"
)

// Width of every two's-complement value handled by this codec.
const Width = 32

// SignMag is the sign/magnitude decomposition of a two's-complement
// value. The magnitude is unsigned, trimmed, and at least one digit.
type SignMag struct {
	Sign bitvec.Bit // 0 = non-negative, 1 = negative
	Mag  bitvec.Bits
}

// EncodeResult is the outcome of encoding a signed integer.
type EncodeResult struct {
	Bits     bitvec.Bits // 32-digit two's-complement pattern
	Hex      string      // Canonical hex form of Bits
	Overflow bool        // Value was outside [-2^31, 2^31-1]
}

func (res EncodeResult) String() string {
	return res.Hex
}

// Encode narrows a signed integer to a 32-digit two's-complement vector.
// Values outside the signed 32-bit range still produce the truncated bit
// pattern (defined wraparound); only the Overflow flag reports the loss.
func Encode(value int64) (res EncodeResult) {
	u := uint64(value)

	res.Bits = make(bitvec.Bits, Width)
	for i := 0; i < Width; i++ {
		res.Bits[i] = bitvec.Bit((u >> i) & 1)
	}

	res.Hex = res.Bits.Hex()
	res.Overflow = value > math.MaxInt32 || value < math.MinInt32

	return
}

// ensure32 widens or narrows a vector to exactly 32 digits, sign
// extending when short.
func ensure32(b bitvec.Bits) bitvec.Bits {
	switch {
	case len(b) == 0:
		return bitvec.Bits{0}.ZeroExtend(Width)
	case len(b) < Width:
		return b.SignExtend(Width)
	case len(b) > Width:
		return b.PadLeft(Width, 0)
	}

	return b
}

// Decode interprets a bit vector as a signed 32-bit two's-complement
// value. Shorter vectors are sign-extended, wider ones truncated. The
// result is int64 so the minimum value needs no special case.
func Decode(b bitvec.Bits) (value int64) {
	w := ensure32(b)

	sumBits := func(x bitvec.Bits) (acc int64) {
		for i, bit := range x {
			if bit != 0 {
				acc += int64(1) << i
			}
		}
		return
	}

	if w[Width-1] == 0 {
		return sumBits(w)
	}

	return -sumBits(w.Negate())
}

// Decompose splits a 32-digit two's-complement vector into sign and
// magnitude, negating when the value is negative. Pure bit-level.
func Decompose(b bitvec.Bits) (sm SignMag) {
	w := ensure32(b)

	sm.Sign = w[Width-1]
	if sm.Sign == 0 {
		sm.Mag = w.Trim()
	} else {
		sm.Mag = w.Negate().Trim()
	}

	return
}

// Compose builds a 32-digit two's-complement vector from a sign and an
// unsigned magnitude: zero-extend to 32, negate if the sign is set.
func Compose(sign bitvec.Bit, mag bitvec.Bits) bitvec.Bits {
	mag32 := mag.ZeroExtend(Width)
	if sign == 0 {
		return mag32
	}

	return mag32.Negate()
}

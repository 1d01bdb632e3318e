// Package bitvec implements a dynamically sized vector of binary digits,
// stored least-significant first (bit 0 is 2^0).
//
// The vector is the common currency of the arithmetic core: every unit
// (codec, ALU, shifter, MDU, FPU) operates on Bits values rather than on
// native integers, so that addition, negation and shifting are visible as
// per-digit logic instead of host arithmetic.
package bitvec

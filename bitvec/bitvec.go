// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package bitvec

import (
	"slices"
	"strings"
)

// Bit is a single binary digit, 0 or 1.
type Bit = byte

// Bits is a bit vector, least-significant digit at index 0.
type Bits []Bit

const hexDigits = "0123456789abcdef"

// nibbleOf converts a single hex character into its 4-bit value.
func nibbleOf(c byte) (nib byte, err error) {
	switch {
	case c >= '0' && c <= '9':
		nib = c - '0'
	case c >= 'a' && c <= 'f':
		nib = 10 + c - 'a'
	case c >= 'A' && c <= 'F':
		nib = 10 + c - 'A'
	default:
		err = ErrHexDigit(c)
	}

	return
}

// FromHex converts a hex string into a bit vector.
// Accepts an optional "0x"/"0X" prefix and ignores '_' digit separators.
// The result is built LSB-first from the rightmost hex character, and is
// trimmed on the MSB side (at least one digit remains).
func FromHex(hex string) (b Bits, err error) {
	if strings.HasPrefix(hex, "0x") || strings.HasPrefix(hex, "0X") {
		hex = hex[2:]
	}
	hex = strings.ReplaceAll(hex, "_", "")

	if len(hex) == 0 {
		b = Bits{0}
		return
	}

	b = make(Bits, 0, len(hex)*4)

	// Last hex character contributes the lowest nibble.
	for n := len(hex) - 1; n >= 0; n-- {
		var nib byte
		nib, err = nibbleOf(hex[n])
		if err != nil {
			b = nil
			return
		}
		for i := 0; i < 4; i++ {
			b = append(b, (nib>>i)&1)
		}
	}

	b = b.Trim()
	return
}

// Hex converts the bit vector into its canonical hex form: lowercase,
// "0x"-prefixed, leading zero digits trimmed but at least one kept.
func (b Bits) Hex() (hex string) {
	v := b
	if len(v) == 0 {
		v = Bits{0}
	}

	// Pad up to a nibble multiple.
	if rem := len(v) % 4; rem != 0 {
		v = v.PadLeft(len(v)+4-rem, 0)
	}

	// Nibbles from LSB upward.
	digits := make([]byte, 0, len(v)/4)
	for i := 0; i < len(v); i += 4 {
		nib := (v[i] & 1) |
			((v[i+1] & 1) << 1) |
			((v[i+2] & 1) << 2) |
			((v[i+3] & 1) << 3)
		digits = append(digits, hexDigits[nib])
	}

	// Reverse to MSB-first for human-readable hex.
	slices.Reverse(digits)

	// Trim leading zeros, keeping at least one digit.
	nz := 0
	for nz+1 < len(digits) && digits[nz] == '0' {
		nz++
	}

	return "0x" + string(digits[nz:])
}

// PadLeft returns the vector at exactly width digits: shorter vectors are
// padded on the MSB side with fill, wider vectors are truncated.
func (b Bits) PadLeft(width int, fill Bit) (out Bits) {
	if len(b) >= width {
		return slices.Clone(b[:width])
	}

	out = make(Bits, width)
	copy(out, b)
	for i := len(b); i < width; i++ {
		out[i] = fill
	}

	return
}

// Slice returns the digits from lo up to hi, both inclusive, LSB-first.
func (b Bits) Slice(hi, lo int) (out Bits, err error) {
	if lo > hi {
		err = ErrSliceReversed
		return
	}
	if hi >= len(b) {
		err = ErrSliceRange
		return
	}

	out = slices.Clone(b[lo : hi+1])
	return
}

// PrettyBin renders the vector MSB-first as a binary string. A nonzero
// group size inserts sep between groups of that many digits.
func (b Bits) PrettyBin(group int, sep byte) string {
	v := b
	if len(v) == 0 {
		v = Bits{0}
	}

	var sb strings.Builder
	cnt := 0
	for i := len(v) - 1; i >= 0; i-- {
		if v[i] != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		cnt++
		if group != 0 && i != 0 && cnt%group == 0 {
			sb.WriteByte(sep)
		}
	}

	return sb.String()
}

// ZeroExtend grows the vector to width by padding the MSB side with zeros.
// A vector already at least width digits wide is truncated to width.
func (b Bits) ZeroExtend(width int) Bits {
	return b.PadLeft(width, 0)
}

// SignExtend grows the vector to width by padding the MSB side with
// copies of the current most-significant digit.
func (b Bits) SignExtend(width int) Bits {
	var sign Bit
	if len(b) != 0 {
		sign = b[len(b)-1]
	}

	return b.PadLeft(width, sign)
}

// Negate computes the two's-complement of the vector at its current
// width: invert every digit, then add one with a ripple carry. A carry
// beyond the MSB is dropped, so negating the minimum representable value
// wraps around as in hardware.
func (b Bits) Negate() (out Bits) {
	if len(b) == 0 {
		return Bits{0}
	}

	out = make(Bits, len(b))
	for i, bit := range b {
		out[i] = bit ^ 1
	}

	carry := Bit(1)
	for i := range out {
		sum := out[i] ^ carry
		carry = out[i] & carry
		out[i] = sum
		if carry == 0 {
			break
		}
	}

	return
}

// Trim drops zero digits from the MSB side, keeping at least one digit so
// zero is Bits{0}, never empty.
func (b Bits) Trim() Bits {
	if len(b) == 0 {
		return Bits{0}
	}

	i := len(b)
	for i > 1 && b[i-1] == 0 {
		i--
	}

	return slices.Clone(b[:i])
}

// Width is the current digit count.
func (b Bits) Width() int {
	return len(b)
}

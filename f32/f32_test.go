package f32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/rvbit/bitvec"
)

func fromHex(t *testing.T, hex string) bitvec.Bits {
	t.Helper()

	b, err := bitvec.FromHex(hex)
	require.NoError(t, err)

	return b.ZeroExtend(32)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	assert := assert.New(t)

	table := []string{
		"0x0",        // +0
		"0x80000000", // -0
		"0x3f800000", // 1.0
		"0xbf800000", // -1.0
		"0x3fc00000", // 1.5
		"0x7f800000", // +inf
		"0x7fc00000", // quiet NaN
		"0x00000001", // smallest subnormal
	}

	for _, hex := range table {
		b := fromHex(t, hex)
		f := Unpack(b)

		assert.Equal(b.Hex(), Pack(f).Hex(), hex)
	}
}

func TestUnpackFields(t *testing.T) {
	assert := assert.New(t)

	f := Unpack(fromHex(t, "0xbfc00000")) // -1.5

	assert.Equal(bitvec.Bit(1), f.Sign)
	assert.Equal("0x7f", f.Exponent.Hex())
	assert.Equal("0x400000", f.Fraction.Hex())
}

func TestAddSameSign(t *testing.T) {
	assert := assert.New(t)

	// 1.5 + 2.25 = 3.75
	res := Add(fromHex(t, "0x3fc00000"), fromHex(t, "0x40100000"))

	assert.Equal("0x40700000", res.Bits.Hex())
	assert.False(res.Flags.Overflow)
	assert.False(res.Flags.Underflow)
	assert.Contains(res.Trace, "fadd same-sign add")
}

func TestAddCommutes(t *testing.T) {
	assert := assert.New(t)

	a := fromHex(t, "0x3fc00000")
	b := fromHex(t, "0x40100000")

	assert.Equal(Add(a, b).Bits.Hex(), Add(b, a).Bits.Hex())
}

func TestAddZeroOperand(t *testing.T) {
	assert := assert.New(t)

	zero := fromHex(t, "0x0")
	x := fromHex(t, "0x40100000")

	res := Add(zero, x)
	assert.Equal("0x40100000", res.Bits.Hex())
	assert.Contains(res.Trace, "a is zero: return b")

	res = Add(x, zero)
	assert.Equal("0x40100000", res.Bits.Hex())
	assert.Contains(res.Trace, "b is zero: return a")
}

func TestAddCarryRenormalize(t *testing.T) {
	assert := assert.New(t)

	// 1.5 + 1.5 = 3.0: the significand sum carries out and the
	// exponent bumps.
	res := Add(fromHex(t, "0x3fc00000"), fromHex(t, "0x3fc00000"))

	assert.Equal("0x40400000", res.Bits.Hex())
}

func TestSub(t *testing.T) {
	assert := assert.New(t)

	// 2.25 - 1.5 = 0.75
	res := Sub(fromHex(t, "0x40100000"), fromHex(t, "0x3fc00000"))

	assert.Equal("0x3f400000", res.Bits.Hex())
	assert.Contains(res.Trace, "fadd different-sign subtract")
}

func TestSubExactCancellation(t *testing.T) {
	assert := assert.New(t)

	// 1.5 - 1.5 is canonical +0.
	res := Sub(fromHex(t, "0x3fc00000"), fromHex(t, "0x3fc00000"))

	assert.Equal("0x0", res.Bits.Hex())
}

func TestSubNegativeResult(t *testing.T) {
	assert := assert.New(t)

	// 1.5 - 2.25 = -0.75
	res := Sub(fromHex(t, "0x3fc00000"), fromHex(t, "0x40100000"))

	assert.Equal("0xbf400000", res.Bits.Hex())
}

func TestMulSimple(t *testing.T) {
	assert := assert.New(t)

	// 1.5 * 2.0 = 3.0
	res := Mul(fromHex(t, "0x3fc00000"), fromHex(t, "0x40000000"))

	assert.Equal("0x40400000", res.Bits.Hex())
	assert.False(res.Flags.Overflow)
	assert.False(res.Flags.Underflow)
	assert.False(res.Flags.Invalid)
}

func TestMulSignRules(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a    string
		b    string
		want string
	}){
		{"0xbfc00000", "0x40000000", "0xc0400000"}, // -1.5 * 2.0 = -3.0
		{"0xbfc00000", "0xc0000000", "0x40400000"}, // -1.5 * -2.0 = 3.0
		{"0x3fc00000", "0xc0000000", "0xc0400000"}, // 1.5 * -2.0 = -3.0
	}

	for _, entry := range table {
		res := Mul(fromHex(t, entry.a), fromHex(t, entry.b))

		assert.Equal(entry.want, res.Bits.Hex(), "%s * %s", entry.a, entry.b)
	}
}

func TestMulOverflow(t *testing.T) {
	assert := assert.New(t)

	// ~1e38 * 10.0 saturates to +inf.
	res := Mul(fromHex(t, "0x7e967699"), fromHex(t, "0x41200000"))

	assert.Equal("0x7f800000", res.Bits.Hex())
	assert.True(res.Flags.Overflow)
}

func TestMulUnderflow(t *testing.T) {
	assert := assert.New(t)

	// ~1e-38 * 1e-2 flushes to zero.
	res := Mul(fromHex(t, "0x006ce3ee"), fromHex(t, "0x3c23d70a"))

	assert.Equal("0x0", res.Bits.Hex())
	assert.True(res.Flags.Underflow)
}

func TestMulNaNOperand(t *testing.T) {
	assert := assert.New(t)

	res := Mul(fromHex(t, "0x7fc00000"), fromHex(t, "0x3f800000"))

	assert.Equal("0x7fc00000", res.Bits.Hex())
	assert.True(res.Flags.Invalid)
	assert.Contains(res.Trace, "fmul: NaN operand")
}

func TestMulZeroTimesInfinity(t *testing.T) {
	assert := assert.New(t)

	res := Mul(fromHex(t, "0x0"), fromHex(t, "0x7f800000"))

	assert.Equal("0x7fc00000", res.Bits.Hex())
	assert.True(res.Flags.Invalid)
	assert.Contains(res.Trace, "fmul: 0 * inf invalid")
}

func TestMulInfinity(t *testing.T) {
	assert := assert.New(t)

	// inf * -2.0 = -inf
	res := Mul(fromHex(t, "0x7f800000"), fromHex(t, "0xc0000000"))

	assert.Equal("0xff800000", res.Bits.Hex())
	assert.False(res.Flags.Invalid)
}

func TestMulZero(t *testing.T) {
	assert := assert.New(t)

	// -2.0 * 0 = -0
	res := Mul(fromHex(t, "0xc0000000"), fromHex(t, "0x0"))

	assert.Equal("0x80000000", res.Bits.Hex())
	assert.Contains(res.Trace, "fmul: zero result")
}

package mdu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/rvbit/bitvec"
	"github.com/ezrec/rvbit/twos"
)

func TestMulZeroOperands(t *testing.T) {
	assert := assert.New(t)

	zero := make(bitvec.Bits, 32)
	res := Mul(MUL_OP_MUL, zero, zero)

	assert.Equal(32, res.Lo.Width())
	assert.Equal(32, res.Hi.Width())
	assert.False(res.Overflow)
	assert.Equal("0x0", res.Lo.Hex())
	assert.Equal("0x0", res.Hi.Hex())
}

func TestMulSigned(t *testing.T) {
	assert := assert.New(t)

	a := twos.Encode(12345678)
	b := twos.Encode(-87654321)

	res := Mul(MUL_OP_MUL, a.Bits, b.Bits)

	assert.Equal("0xd91d0712", res.Lo.Hex())
	assert.True(res.Overflow)
	assert.Len(res.Trace, 33)
}

func TestMulSmallCases(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a  int64
		b  int64
		lo string
	}){
		{6, 7, "0x2a"},
		{-6, 7, "0xffffffd6"},
		{-6, -7, "0x2a"},
		{1, -1, "0xffffffff"},
		{0, -87654321, "0x0"},
	}

	for _, entry := range table {
		res := Mul(MUL_OP_MUL, twos.Encode(entry.a).Bits, twos.Encode(entry.b).Bits)

		assert.Equal(entry.lo, res.Lo.Hex(), "%d * %d", entry.a, entry.b)
		assert.False(res.Overflow, "%d * %d", entry.a, entry.b)
	}
}

func TestMulPlaceholders(t *testing.T) {
	assert := assert.New(t)

	a := twos.Encode(12345678).Bits
	b := twos.Encode(-87654321).Bits

	for _, op := range []MulOp{MUL_OP_MULH, MUL_OP_MULHU, MUL_OP_MULHSU} {
		res := Mul(op, a, b)

		assert.Equal("0x0", res.Lo.Hex(), op.String())
		assert.Equal("0x0", res.Hi.Hex(), op.String())
		assert.False(res.Overflow, op.String())
		assert.Empty(res.Trace, op.String())
	}
}

func TestDivSimple(t *testing.T) {
	assert := assert.New(t)

	a, err := bitvec.FromHex("0x4")
	require.NoError(t, err)
	b, err := bitvec.FromHex("0x2")
	require.NoError(t, err)

	res := Div(DIV_OP_DIV, a, b)

	assert.Equal(32, res.Q.Width())
	assert.Equal(32, res.R.Width())
	assert.False(res.Overflow)
	assert.Equal("0x2", res.Q.Hex())
	assert.Equal("0x0", res.R.Hex())
	assert.Len(res.Trace, 32)
}

func TestDivSigned(t *testing.T) {
	assert := assert.New(t)

	res := Div(DIV_OP_DIV, twos.Encode(-7).Bits, twos.Encode(3).Bits)

	assert.Equal("0xfffffffe", res.Q.Hex()) // -2
	assert.Equal("0xffffffff", res.R.Hex()) // -1
	assert.False(res.Overflow)
}

func TestDivideByZero(t *testing.T) {
	assert := assert.New(t)

	dividend := twos.Encode(42)
	res := Div(DIV_OP_DIV, dividend.Bits, twos.Encode(0).Bits)

	assert.Equal("0xffffffff", res.Q.Hex())
	assert.Equal(dividend.Hex, res.R.Hex())
	assert.False(res.Overflow)

	require.NotEmpty(t, res.Trace)
	assert.True(strings.Contains(res.Trace[0], "divide-by-zero"))
}

func TestIntMinDivMinusOne(t *testing.T) {
	assert := assert.New(t)

	res := Div(DIV_OP_DIV, twos.Encode(-2147483648).Bits, twos.Encode(-1).Bits)

	assert.Equal("0x80000000", res.Q.Hex())
	assert.Equal("0x0", res.R.Hex())
	assert.True(res.Overflow)

	require.NotEmpty(t, res.Trace)
	assert.True(strings.Contains(res.Trace[0], "INT_MIN / -1 special case"))
}

func TestDivPlaceholders(t *testing.T) {
	assert := assert.New(t)

	a := twos.Encode(42).Bits
	b := twos.Encode(5).Bits

	for _, op := range []DivOp{DIV_OP_DIVU, DIV_OP_REM, DIV_OP_REMU} {
		res := Div(op, a, b)

		assert.Equal("0x0", res.Q.Hex(), op.String())
		assert.Equal("0x0", res.R.Hex(), op.String())
		assert.False(res.Overflow, op.String())
	}
}

// Quotient and remainder must reconstruct the dividend when neither
// edge case applies: q*b + r == a under unbounded arithmetic.
func TestDivInverse(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a int64
		b int64
	}){
		{7, 3}, {-7, 3}, {7, -3}, {-7, -3},
		{2147483647, 1}, {2147483647, -1},
		{-2147483648, 2}, {0, 5}, {1, 2147483647},
	}

	for _, entry := range table {
		res := Div(DIV_OP_DIV, twos.Encode(entry.a).Bits, twos.Encode(entry.b).Bits)
		require.False(t, res.Overflow, "%d / %d", entry.a, entry.b)

		q := twos.Decode(res.Q)
		r := twos.Decode(res.R)
		assert.Equal(entry.a, q*entry.b+r, "%d / %d", entry.a, entry.b)
	}
}

// The low half of the product and the overflow flag must agree with
// host arithmetic for in-range and out-of-range products alike.
func TestMulInverse(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a int64
		b int64
	}){
		{3, 5}, {-3, 5}, {65536, 65536}, {-46341, 46341},
		{2147483647, 2}, {-2147483648, -1},
	}

	for _, entry := range table {
		res := Mul(MUL_OP_MUL, twos.Encode(entry.a).Bits, twos.Encode(entry.b).Bits)

		prod := entry.a * entry.b
		assert.Equal(twos.Encode(prod).Hex, res.Lo.Hex(), "%d * %d", entry.a, entry.b)

		fits := prod >= -2147483648 && prod <= 2147483647
		assert.Equal(!fits, res.Overflow, "%d * %d", entry.a, entry.b)
	}
}

package bitvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		in  string
		out string
	}){
		{"0x7f_ff_ff_ff", "0x7fffffff"},
		{"0X00AF", "0xaf"},
		{"d", "0xd"},
		{"0x0", "0x0"},
		{"", "0x0"},
		{"0x0000_0000", "0x0"},
		{"80000000", "0x80000000"},
	}

	for _, entry := range table {
		b, err := FromHex(entry.in)
		require.NoError(t, err, entry.in)
		assert.Equal(entry.out, b.Hex(), entry.in)
	}
}

func TestFromHexInvalid(t *testing.T) {
	assert := assert.New(t)

	_, err := FromHex("0x12g4")
	assert.ErrorIs(err, ErrHexDigit('g'))
}

func TestPrettyBin(t *testing.T) {
	assert := assert.New(t)

	b, err := FromHex("0x00af")
	require.NoError(t, err)

	b16 := b.ZeroExtend(16)
	assert.Equal("0000_0000_1010_1111", b16.PrettyBin(4, '_'))
	assert.Equal("0000000010101111", b16.PrettyBin(0, 0))
}

func TestExtendAndSlice(t *testing.T) {
	assert := assert.New(t)

	b, err := FromHex("0xa")
	require.NoError(t, err)

	z := b.ZeroExtend(8)
	assert.Equal(8, z.Width())
	assert.Equal("00001010", z.PrettyBin(0, 0))

	s := b.SignExtend(8)
	assert.Equal("11111010", s.PrettyBin(0, 0))

	sl, err := z.Slice(3, 0)
	require.NoError(t, err)
	assert.Equal("1010", sl.PrettyBin(0, 0))

	_, err = z.Slice(2, 5)
	assert.ErrorIs(err, ErrSliceReversed)

	_, err = z.Slice(8, 0)
	assert.ErrorIs(err, ErrSliceRange)
}

func TestZeroExtendIdempotent(t *testing.T) {
	assert := assert.New(t)

	b, err := FromHex("0x5a")
	require.NoError(t, err)

	once := b.ZeroExtend(32)
	twice := once.ZeroExtend(32)
	assert.Equal(once, twice)
}

func TestPadLeftTruncates(t *testing.T) {
	assert := assert.New(t)

	b, err := FromHex("0x1ff")
	require.NoError(t, err)

	assert.Equal("0xff", b.PadLeft(8, 0).Hex())
}

func TestNegate(t *testing.T) {
	assert := assert.New(t)

	b, err := FromHex("0x05")
	require.NoError(t, err)

	n := b.PadLeft(8, 0).Negate()
	assert.Equal("0xfb", n.Hex())
}

func TestNegateInvolution(t *testing.T) {
	assert := assert.New(t)

	table := []string{"0x0", "0x1", "0xd", "0x7fffffff", "0x80000000", "0xffffffff"}

	for _, hex := range table {
		b, err := FromHex(hex)
		require.NoError(t, err, hex)

		w := b.ZeroExtend(32)
		assert.Equal(w, w.Negate().Negate(), hex)
	}
}

func TestTrim(t *testing.T) {
	assert := assert.New(t)

	b := Bits{1, 0, 1, 0, 0, 0}
	assert.Equal(Bits{1, 0, 1}, b.Trim())
	assert.Equal(Bits{0}, Bits{0, 0, 0}.Trim())
	assert.Equal(Bits{0}, Bits(nil).Trim())
}

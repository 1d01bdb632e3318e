package twos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/rvbit/bitvec"
)

func TestEncodeDecodeBoundaries(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value    int64
		hex      string
		overflow bool
	}){
		// In-range values
		{-2147483648, "0x80000000", false},
		{-1, "0xffffffff", false},
		{-13, "0xfffffff3", false},
		{-7, "0xfffffff9", false},
		{0, "0x0", false},
		{13, "0xd", false},
		{2147483647, "0x7fffffff", false},

		// Out-of-range values wrap but flag overflow
		{2147483648, "0x80000000", true},
		{-2147483649, "0x7fffffff", true},
	}

	for _, entry := range table {
		enc := Encode(entry.value)

		assert.Equal(Width, enc.Bits.Width(), "value=%d", entry.value)
		assert.Equal(entry.hex, enc.Hex, "value=%d", entry.value)
		assert.Equal(entry.overflow, enc.Overflow, "value=%d", entry.value)

		if !entry.overflow {
			assert.Equal(entry.value, Decode(enc.Bits), "value=%d", entry.value)
		}
	}
}

func TestPrettySnapshot(t *testing.T) {
	assert := assert.New(t)

	enc := Encode(0x1234abcd)
	assert.Equal(
		"0001_0010_0011_0100_1010_1011_1100_1101",
		enc.Bits.PrettyBin(4, '_'),
	)
}

func TestDecodeWidths(t *testing.T) {
	assert := assert.New(t)

	// Short vectors are sign-extended.
	b, err := bitvec.FromHex("0xa") // 1010, sign digit set
	require.NoError(t, err)
	assert.Equal(int64(-6), Decode(b))

	// Wide vectors are truncated to 32 digits.
	wide, err := bitvec.FromHex("0x1ffffffff")
	require.NoError(t, err)
	assert.Equal(int64(-1), Decode(wide))
}

func TestDecomposeCompose(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value int64
		sign  bitvec.Bit
		mag   string
	}){
		{0, 0, "0x0"},
		{13, 0, "0xd"},
		{-13, 1, "0xd"},
		{2147483647, 0, "0x7fffffff"},
		{-2147483648, 1, "0x80000000"},
	}

	for _, entry := range table {
		enc := Encode(entry.value)
		sm := Decompose(enc.Bits)

		assert.Equal(entry.sign, sm.Sign, "value=%d", entry.value)
		assert.Equal(entry.mag, sm.Mag.Hex(), "value=%d", entry.value)

		back := Compose(sm.Sign, sm.Mag)
		assert.Equal(enc.Hex, back.Hex(), "value=%d", entry.value)
	}
}

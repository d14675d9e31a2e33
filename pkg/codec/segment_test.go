package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/z64forge/pkg/errs"
)

func TestEncodeSegmentedAddress(t *testing.T) {
	table := SegmentTable{0x04: {0x80100000, 0x80200000}}

	got, err := EncodeSegmentedAddress(0x80100000, table)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x04, 0x00, 0x00, 0x00}, got)

	got, err = EncodeSegmentedAddress(0x80150010, table)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x04, 0x05, 0x00, 0x10}, got)

	// End is exclusive.
	_, err = EncodeSegmentedAddress(0x80200000, table)
	assert.ErrorIs(t, err, errs.ErrResource)

	_, err = EncodeSegmentedAddress(0x00000010, table)
	assert.ErrorIs(t, err, errs.ErrResource)
}

func TestSegmentOfPrefersLowestID(t *testing.T) {
	table := SegmentTable{
		0x06: {0x1000, 0x3000},
		0x02: {0x2000, 0x4000},
	}
	id, err := SegmentOf(0x2800, table)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), id)
}

func TestDecodeSegmentedAddress(t *testing.T) {
	table := SegmentTable{
		0x04: {0x80100000, 0x80200000},
		0x0E: {0x00000008, 0x00010000},
	}

	for _, addr := range []uint32{0x80100000, 0x801ABCDE, 0x00000008, 0x0000FFFF} {
		enc, err := EncodeSegmentedAddress(addr, table)
		require.NoError(t, err)
		dec, err := DecodeSegmentedAddress(enc, table)
		require.NoError(t, err)
		assert.Equal(t, addr, dec)
	}

	_, err := DecodeSegmentedAddress([4]byte{0x09, 0, 0, 0}, table)
	assert.ErrorIs(t, err, errs.ErrResource)
}

func TestSegmentRangeString(t *testing.T) {
	assert.Equal(t, "0x80100000:0x80200000", SegmentRange{0x80100000, 0x80200000}.String())
}

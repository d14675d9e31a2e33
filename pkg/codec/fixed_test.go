package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zmath "github.com/Faultbox/z64forge/pkg/math"
)

func TestFloatToFixed16(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int16
	}{
		{"zero", 0, 0},
		{"one", 1, 32},
		{"negative", -2.5, -80},
		{"fraction", 0.25, 8},
		{"half rounds to even", 0.5 / 32, 0},
		{"odd half rounds up", 1.5 / 32, 2},
		{"max representable", 32767.0 / 32, math.MaxInt16},
		{"overflow clamps", 1024, math.MaxInt16},
		{"far overflow clamps", 1e9, math.MaxInt16},
		{"underflow clamps", -1025, math.MinInt16},
		{"min representable", -1024, math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FloatToFixed16(tt.in))
		})
	}
}

func TestFloatToFixed16InRange(t *testing.T) {
	for x := -1000.0; x < 1000; x += 0.37 {
		assert.Equal(t, int16(math.RoundToEven(x*32)), FloatToFixed16(x), "x=%v", x)
	}
}

func TestFloatToFixed16Bytes(t *testing.T) {
	assert.Equal(t, [2]byte{0x00, 0x20}, FloatToFixed16Bytes(1))
	assert.Equal(t, [2]byte{0xFF, 0xE0}, FloatToFixed16Bytes(-1))
	assert.Equal(t, [2]byte{0x7F, 0xFF}, FloatToFixed16Bytes(5000))
}

func TestConvertUV(t *testing.T) {
	assert.Equal(t, [4]byte{0x02, 0x00, 0x02, 0x00}, ConvertUV(0.5, 0.25, 32, 64))
}

func TestConvertPosition(t *testing.T) {
	assert.Equal(t, [6]byte{0x00, 0x01, 0xFF, 0xFF, 0x01, 0x2C}, ConvertPosition(1.9, -1.9, 300))
}

func TestRoundShort(t *testing.T) {
	tests := []struct {
		in      float64
		want    int16
		wantErr bool
	}{
		{2.5, 2, false},
		{3.5, 4, false},
		{-0.4, 0, false},
		{32767.4, math.MaxInt16, false},
		{-32768, math.MinInt16, false},
		{32767.6, 0, true},
		{-40000, 0, true},
		{math.NaN(), 0, true},
	}
	for _, tt := range tests {
		got, err := RoundShort(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrOutOfRange, "RoundShort(%v)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "RoundShort(%v)", tt.in)
	}
}

func TestConvertTranslation(t *testing.T) {
	got, err := ConvertTranslation(zmath.V3(10.5, -3.2, 0))
	require.NoError(t, err)
	assert.Equal(t, [3]int16{10, -3, 0}, got)

	_, err = ConvertTranslation(zmath.V3(0, 1e6, 0))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// FixedPointScale is the s10.5 scale factor (2^5).
const FixedPointScale = 1 << 5

// ErrOutOfRange is returned when a value does not fit its integer encoding.
var ErrOutOfRange = errors.New("value out of range")

// FloatToFixed16 converts v to s10.5 fixed point. Values that do not fit
// are clamped to the int16 range; they never wrap.
func FloatToFixed16(v float64) int16 {
	v *= FixedPointScale
	v = math.Min(math.Max(v, math.MinInt16), math.MaxInt16)
	return int16(math.RoundToEven(v))
}

// FloatToFixed16Bytes returns FloatToFixed16(v) as two big-endian bytes.
func FloatToFixed16Bytes(v float64) [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(FloatToFixed16(v)))
	return b
}

// ConvertUV scales a normalized UV pair to texel space and encodes both
// coordinates as fixed point.
func ConvertUV(u, v float64, width, height int) [4]byte {
	s := FloatToFixed16Bytes(u * float64(width))
	t := FloatToFixed16Bytes(v * float64(height))
	return [4]byte{s[0], s[1], t[0], t[1]}
}

// ConvertPosition truncates each coordinate toward zero and encodes it as a
// big-endian s16.
func ConvertPosition(x, y, z float64) [6]byte {
	var b [6]byte
	binary.BigEndian.PutUint16(b[0:], uint16(CastInteger(int64(x), 16, true)))
	binary.BigEndian.PutUint16(b[2:], uint16(CastInteger(int64(y), 16, true)))
	binary.BigEndian.PutUint16(b[4:], uint16(CastInteger(int64(z), 16, true)))
	return b
}

// RoundShort rounds v half to even. Unlike FloatToFixed16 it rejects
// values outside the int16 range.
func RoundShort(v float64) (int16, error) {
	r := math.RoundToEven(v)
	if math.IsNaN(r) || r < math.MinInt16 || r > math.MaxInt16 {
		return 0, fmt.Errorf("%w: %g does not fit in 16 bits", ErrOutOfRange, v)
	}
	return int16(r), nil
}

// ConvertTranslation rounds each component of v with RoundShort.
func ConvertTranslation(v zmath.Vec3) ([3]int16, error) {
	var out [3]int16
	for i, f := range v.Array() {
		s, err := RoundShort(float64(f))
		if err != nil {
			return out, err
		}
		out[i] = s
	}
	return out, nil
}

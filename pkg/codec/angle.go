package codec

import (
	"math"

	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// CastInteger reduces v modulo 2^bits and, when signed, reinterprets the
// result as two's complement.
func CastInteger(v int64, bits uint, signed bool) int64 {
	wrap := int64(1) << bits
	v %= wrap
	if v < 0 {
		v += wrap
	}
	if signed && v&(int64(1)<<(bits-1)) != 0 {
		return v - wrap
	}
	return v
}

// IntFromS16 sign-extends the low 16 bits of v.
func IntFromS16(v int64) int16 {
	return int16(uint16(v & 0xFFFF))
}

// EulerRadiansToShort converts an euler angle in radians to whole degrees,
// wrapped to 16 bits.
func EulerRadiansToShort(v float64) int16 {
	deg := math.RoundToEven(v * 180 / math.Pi)
	return int16(CastInteger(int64(deg), 16, true))
}

// RadiansToBinaryAngle converts radians to a binary angle where 0x10000 is
// one full turn.
func RadiansToBinaryAngle(v float64) int16 {
	ba := math.RoundToEven(v * 0x10000 / (2 * math.Pi))
	return int16(CastInteger(int64(ba), 16, true))
}

// BinaryAngleToRadians is the inverse of RadiansToBinaryAngle.
func BinaryAngleToRadians(v int16) float64 {
	return float64(v) * 2 * math.Pi / 0x10000
}

// ConvertRotation returns the XYZ euler angles of q as binary angles.
func ConvertRotation(q zmath.Quat) [3]int16 {
	e := q.Euler()
	return [3]int16{
		RadiansToBinaryAngle(float64(e.X)),
		RadiansToBinaryAngle(float64(e.Y)),
		RadiansToBinaryAngle(float64(e.Z)),
	}
}

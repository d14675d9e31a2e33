package codec

import (
	"errors"
	"math"

	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// NormalL1 is the constant L1 norm of packed normals.
const NormalL1 = 127

// ErrZeroNormal is returned when packing a vector with no direction.
var ErrZeroNormal = errors.New("cannot pack zero-length normal")

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PackNormal projects n onto the octahedron |x|+|y|+|z| = 127 and packs it
// into the two-byte F3DEX3 format. UnpackNormalS8 restores the exact
// integer triple chosen here.
func PackNormal(n zmath.Vec3) (uint16, error) {
	l1 := float64(n.L1())
	if l1 == 0 {
		return 0, ErrZeroNormal
	}

	xo := int(math.RoundToEven(float64(n.X) * NormalL1 / l1))
	yo := int(math.RoundToEven(float64(n.Y) * NormalL1 / l1))
	zo := int(math.RoundToEven(float64(n.Z) * NormalL1 / l1))
	if absInt(xo)+absInt(yo) > NormalL1 {
		yo = sign(yo) * (NormalL1 - absInt(xo))
	}
	zo = sign(zo) * (NormalL1 - absInt(xo) - absInt(yo))

	xsign, ysign := uint16(xo)&0x80, uint16(yo)&0x80
	x, y := uint16(absInt(xo)), uint16(absInt(yo))
	if zo < 0 {
		x, y = 0x7F-x, 0x7F-y
	}
	return (x|xsign)<<8 | (y | ysign), nil
}

// UnpackNormalS8 decodes a packed normal into its integer triple, following
// the microcode's decode sequence.
func UnpackNormalS8(packed uint16) (x, y, z int) {
	xo, yo := int(packed>>8), int(packed&0xFF)
	x, y = xo&0x7F, yo&0x7F
	z = x + y
	zNeg := z&0x80 != 0
	x2, y2 := x^0x7F, y^0x7F
	z ^= 0x7F
	if zNeg {
		x, y = x2, y2
	}
	if xo&0x80 != 0 {
		x = -x
	}
	if yo&0x80 != 0 {
		y = -y
	}
	if z&0x80 != 0 {
		z -= 0x100
	}
	return x, y, z
}

// UnpackNormal decodes a packed normal into a unit vector.
func UnpackNormal(packed uint16) zmath.Vec3 {
	x, y, z := UnpackNormalS8(packed)
	return zmath.V3(float32(x), float32(y), float32(z)).Normalize()
}

// UnitToShort scales a unit vector component to the s16 range used by
// collision normals.
func UnitToShort(v float32) int16 {
	r := math.Round(float64(v) * math.MaxInt16)
	return int16(math.Min(math.Max(r, -math.MaxInt16), math.MaxInt16))
}

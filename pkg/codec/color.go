package codec

import (
	"encoding/binary"
	"math"
)

// Color is a normalized RGBA color.
type Color struct {
	R, G, B, A float64
}

// Luminance coefficients matching the authoring tool's RGB to BW conversion.
const (
	LumR = 0.2126729
	LumG = 0.7151522
	LumB = 0.0721750
)

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ColorTo16bitRGBA packs c as RGBA5551. Channels round half up; alpha is
// set when above one half.
func ColorTo16bitRGBA(c Color) uint16 {
	r := roundHalfUp(c.R * 31)
	g := roundHalfUp(c.G * 31)
	b := roundHalfUp(c.B * 31)
	a := 0
	if c.A > 0.5 {
		a = 1
	}
	return uint16(r<<11 | g<<6 | b<<1 | a)
}

// RGBA16 is ColorTo16bitRGBA with every channel masked to five bits, so
// out-of-range inputs cannot bleed into neighbouring channels.
func RGBA16(c Color) uint16 {
	r := roundHalfUp(c.R*0x1F) & 0x1F
	g := roundHalfUp(c.G*0x1F) & 0x1F
	b := roundHalfUp(c.B*0x1F) & 0x1F
	a := 0
	if c.A > 0.5 {
		a = 1
	}
	return uint16(r<<11 | g<<6 | b<<1 | a)
}

func bitMask(data uint16, offset, amount uint) uint16 {
	return (data >> offset) & (1<<amount - 1)
}

// Read16bitRGBA unpacks an RGBA5551 value into normalized channels.
func Read16bitRGBA(v uint16) Color {
	return Color{
		R: float64(bitMask(v, 11, 5)) / 31,
		G: float64(bitMask(v, 6, 5)) / 31,
		B: float64(bitMask(v, 1, 5)) / 31,
		A: float64(bitMask(v, 0, 1)),
	}
}

// Luminance returns the perceptual intensity of c's RGB channels.
func Luminance(c Color) float64 {
	return LumR*c.R + LumG*c.G + LumB*c.B
}

// IA16 packs c as an 8-bit intensity / 8-bit alpha pair.
func IA16(c Color) uint16 {
	i := int(math.RoundToEven(Luminance(c) * 0xFF))
	a := int(c.A * 0xFF)
	return uint16(i<<8 | a)
}

// Convert32To16bitRGBA reduces an 8-bit-per-channel pixel to RGBA5551,
// returned big-endian.
func Convert32To16bitRGBA(r, g, b, a uint8) [2]byte {
	var alpha uint16
	if a > 127 {
		alpha = 1
	}
	v := uint16(r>>3)<<11 | uint16(g>>3)<<6 | uint16(b>>3)<<1 | alpha
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], v)
	return out
}

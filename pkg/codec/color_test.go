package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorTo16bitRGBA(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want uint16
	}{
		{"white", Color{1, 1, 1, 1}, 0xFFFF},
		{"transparent black", Color{0, 0, 0, 0}, 0x0000},
		{"red", Color{1, 0, 0, 1}, 0xF801},
		{"green", Color{0, 1, 0, 0}, 0x07C0},
		{"blue", Color{0, 0, 1, 0}, 0x003E},
		{"alpha threshold", Color{0, 0, 0, 0.5}, 0x0000},
		{"half grey rounds up", Color{0.5, 0.5, 0.5, 0.51}, 16<<11 | 16<<6 | 16<<1 | 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorTo16bitRGBA(tt.c))
		})
	}
}

func TestRGBA16Masks(t *testing.T) {
	// 2.0 * 31 = 62 = 0b111110; masked to five bits it is 0b11110.
	assert.Equal(t, uint16(30<<11), RGBA16(Color{R: 2}))
	assert.Equal(t, ColorTo16bitRGBA(Color{0.2, 0.4, 0.6, 1}), RGBA16(Color{0.2, 0.4, 0.6, 1}))
}

func TestRead16bitRGBA(t *testing.T) {
	assert.Equal(t, Color{1, 0, 0, 1}, Read16bitRGBA(0xF801))
	assert.Equal(t, Color{0, 0, 1, 0}, Read16bitRGBA(0x003E))
}

func TestColorRoundTripWithinQuantization(t *testing.T) {
	for r := 0.0; r <= 1; r += 0.05 {
		for g := 0.0; g <= 1; g += 0.1 {
			c := Color{r, g, 1 - r, 1}
			back := Read16bitRGBA(ColorTo16bitRGBA(c))
			assert.InDelta(t, c.R, back.R, 1.0/31, "r")
			assert.InDelta(t, c.G, back.G, 1.0/31, "g")
			assert.InDelta(t, c.B, back.B, 1.0/31, "b")
			assert.Equal(t, 1.0, back.A)
		}
	}
}

func TestIA16(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), IA16(Color{1, 1, 1, 1}))
	assert.Equal(t, uint16(0x0000), IA16(Color{0, 0, 0, 0}))
	// Pure green: 0.7151522 * 255 = 182.36 -> 182.
	assert.Equal(t, uint16(182<<8|0x7F), IA16(Color{0, 1, 0, 0.5}))
}

func TestConvert32To16bitRGBA(t *testing.T) {
	assert.Equal(t, [2]byte{0xFF, 0xFF}, Convert32To16bitRGBA(255, 255, 255, 255))
	assert.Equal(t, [2]byte{0x08, 0x86}, Convert32To16bitRGBA(8, 16, 24, 127))
	assert.Equal(t, [2]byte{0x00, 0x01}, Convert32To16bitRGBA(7, 7, 7, 128))
}

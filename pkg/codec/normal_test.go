package codec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zmath "github.com/Faultbox/z64forge/pkg/math"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestPackNormalAxes(t *testing.T) {
	tests := []struct {
		name string
		n    zmath.Vec3
		want uint16
	}{
		{"+z", zmath.V3(0, 0, 1), 0x0000},
		{"-z", zmath.V3(0, 0, -1), 0x7F7F},
		{"+x", zmath.V3(1, 0, 0), 0x7F00},
		{"-x", zmath.V3(-1, 0, 0), 0xFF00},
		{"+y", zmath.V3(0, 1, 0), 0x007F},
		{"-y", zmath.V3(0, -1, 0), 0x00FF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PackNormal(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPackNormalZero(t *testing.T) {
	_, err := PackNormal(zmath.Vec3{})
	assert.ErrorIs(t, err, ErrZeroNormal)
}

// Every integer triple on the octahedron packs and unpacks exactly.
func TestPackNormalExactRoundTrip(t *testing.T) {
	count := 0
	for x := -NormalL1; x <= NormalL1; x++ {
		rest := NormalL1 - abs(x)
		for y := -rest; y <= rest; y++ {
			zAbs := rest - abs(y)
			for _, z := range []int{zAbs, -zAbs} {
				n := zmath.V3(float32(x), float32(y), float32(z))
				packed, err := PackNormal(n)
				require.NoError(t, err)

				ux, uy, uz := UnpackNormalS8(packed)
				if ux != x || uy != y || uz != z {
					t.Fatalf("(%d,%d,%d) packed to 0x%04X, unpacked to (%d,%d,%d)", x, y, z, packed, ux, uy, uz)
				}
				count++
				if zAbs == 0 {
					break
				}
			}
		}
	}
	assert.Greater(t, count, 30000)
}

func TestPackNormalUnitVectors(t *testing.T) {
	rng := rand.New(rand.NewSource(64))
	for i := 0; i < 5000; i++ {
		n := zmath.V3(rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1).Normalize()
		if n.Length() == 0 {
			continue
		}
		packed, err := PackNormal(n)
		require.NoError(t, err)

		x, y, z := UnpackNormalS8(packed)
		require.Equal(t, NormalL1, abs(x)+abs(y)+abs(z), "normal %v", n)

		again, err := PackNormal(zmath.V3(float32(x), float32(y), float32(z)))
		require.NoError(t, err)
		require.Equal(t, packed, again)

		// Quantization error stays small.
		assert.Greater(t, UnpackNormal(packed).Dot(n), float32(0.98))
	}
}

func TestUnpackNormalAllValuesOnOctahedron(t *testing.T) {
	for p := 0; p <= 0xFFFF; p++ {
		x, y, z := UnpackNormalS8(uint16(p))
		if abs(x)+abs(y)+abs(z) != NormalL1 {
			t.Fatalf("0x%04X unpacked to (%d,%d,%d)", p, x, y, z)
		}
	}
}

func TestUnitToShort(t *testing.T) {
	assert.Equal(t, int16(0x7FFF), UnitToShort(1))
	assert.Equal(t, int16(-0x7FFF), UnitToShort(-1))
	assert.Equal(t, int16(0), UnitToShort(0))
	assert.Equal(t, int16(16384), UnitToShort(0.5))
	assert.Equal(t, int16(0x7FFF), UnitToShort(1.0001))
}

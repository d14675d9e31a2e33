package scene

import (
	"math"

	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/errs"
	zmath "github.com/Faultbox/z64forge/pkg/math"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// Polygon vertex index flags, stored in the top three bits of the first
// two indices.
const (
	PolyIndexMask     = 0x1FFF
	PolyFlagIgnoreCam = 1 << 13
	PolyFlagIgnoreAll = 1 << 14
	PolyFlagConveyor  = 1 << 13 // on the second index
)

// NewCollisionPoly builds a polygon over vertices a, b, c of verts,
// computing its unit normal and plane distance.
func NewCollisionPoly(verts []Vec3s, a, b, c uint16, surface uint16) (CollisionPoly, error) {
	for _, i := range [3]uint16{a, b, c} {
		if int(i) >= len(verts) {
			return CollisionPoly{}, errs.Validation("scene.collision", "vertex index %d out of range (%d vertices)", i, len(verts))
		}
	}
	v1, v2, v3 := toVec3(verts[a]), toVec3(verts[b]), toVec3(verts[c])
	n := v2.Sub(v1).Cross(v3.Sub(v1))
	if n.Length() == 0 {
		return CollisionPoly{}, errs.Validation("scene.collision", "degenerate triangle (%d, %d, %d)", a, b, c)
	}
	n = n.Normalize()
	return CollisionPoly{
		Type:    surface,
		Indices: [3]uint16{a, b, c},
		Normal:  Vec3s{codec.UnitToShort(n.X), codec.UnitToShort(n.Y), codec.UnitToShort(n.Z)},
		Dist:    int32(math.Round(-float64(n.Dot(v1)))),
	}, nil
}

func toVec3(v Vec3s) zmath.Vec3 {
	return zmath.V3(float32(v[0]), float32(v[1]), float32(v[2]))
}

// ComputeBounds sets MinBounds and MaxBounds from the vertices.
func (h *CollisionHeader) ComputeBounds() {
	if len(h.Vertices) == 0 {
		h.MinBounds, h.MaxBounds = Vec3s{}, Vec3s{}
		return
	}
	h.MinBounds, h.MaxBounds = h.Vertices[0], h.Vertices[0]
	for _, v := range h.Vertices[1:] {
		for i := range v {
			h.MinBounds[i] = min(h.MinBounds[i], v[i])
			h.MaxBounds[i] = max(h.MaxBounds[i], v[i])
		}
	}
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Words packs the surface type into its two 32-bit words.
func (s SurfaceType) Words() (uint32, uint32) {
	w0 := uint32(s.BgCamIndex) |
		uint32(s.ExitIndex&0x1F)<<8 |
		uint32(s.FloorType&0x1F)<<13 |
		uint32(s.Unk18&0x07)<<18 |
		uint32(s.WallType&0x1F)<<21 |
		uint32(s.FloorProperty&0x0F)<<26 |
		b2u(s.IsSoft)<<30 |
		b2u(s.IsHorseBlocked)<<31
	w1 := uint32(s.Material&0x0F) |
		uint32(s.FloorEffect&0x03)<<4 |
		uint32(s.LightSetting&0x1F)<<6 |
		uint32(s.Echo&0x3F)<<11 |
		b2u(s.CanHookshot)<<17 |
		uint32(s.ConveyorSpeed&0x07)<<18 |
		uint32(s.ConveyorDirection&0x3F)<<21 |
		b2u(s.Unk27)<<27
	return w0, w1
}

// SurfaceTypeFromWords unpacks two packed words.
func SurfaceTypeFromWords(w0, w1 uint32) SurfaceType {
	return SurfaceType{
		BgCamIndex:     uint8(w0),
		ExitIndex:      uint8(w0>>8) & 0x1F,
		FloorType:      uint8(w0>>13) & 0x1F,
		Unk18:          uint8(w0>>18) & 0x07,
		WallType:       uint8(w0>>21) & 0x1F,
		FloorProperty:  uint8(w0>>26) & 0x0F,
		IsSoft:         w0>>30&1 == 1,
		IsHorseBlocked: w0>>31 == 1,

		Material:          uint8(w1) & 0x0F,
		FloorEffect:       uint8(w1>>4) & 0x03,
		LightSetting:      uint8(w1>>6) & 0x1F,
		Echo:              uint8(w1>>11) & 0x3F,
		CanHookshot:       w1>>17&1 == 1,
		ConveyorSpeed:     uint8(w1>>18) & 0x07,
		ConveyorDirection: uint8(w1>>21) & 0x3F,
		Unk27:             w1>>27&1 == 1,
	}
}

// camDataIndices returns the index of each camera's first data point in
// the flattened camera data list.
func (h *CollisionHeader) camDataIndices() ([]uint32, []Vec3s) {
	idx := make([]uint32, len(h.BgCams))
	var data []Vec3s
	for i, c := range h.BgCams {
		idx[i] = uint32(len(data))
		data = append(data, c.Data...)
	}
	return idx, data
}

// clampDist maps a plane distance onto the unsigned 16-bit range of the
// O2R polygon record.
func clampDist(d int32) uint16 {
	return uint16(min(max(d, 0), math.MaxUint16))
}

// O2R encodes the collision header as a collision resource.
func (h *CollisionHeader) O2R() []byte {
	w := o2r.NewWriter(o2r.TypeCollision)
	for _, v := range [2]Vec3s{h.MinBounds, h.MaxBounds} {
		writeVec3s(w, v)
	}

	w.U32(uint32(len(h.Vertices)))
	for _, v := range h.Vertices {
		writeVec3s(w, v)
	}

	w.U32(uint32(len(h.Polygons)))
	for _, p := range h.Polygons {
		w.U16(p.Type)
		for _, i := range p.Indices {
			w.U16(i)
		}
		writeVec3s(w, p.Normal)
		w.U16(clampDist(p.Dist))
	}

	w.U32(uint32(len(h.SurfaceTypes)))
	for _, s := range h.SurfaceTypes {
		w0, w1 := s.Words()
		w.U32(w0)
		w.U32(w1)
	}

	idx, data := h.camDataIndices()
	w.U32(uint32(len(h.BgCams)))
	for i, c := range h.BgCams {
		w.U16(c.Setting)
		w.U16(uint16(len(c.Data)))
		w.U32(idx[i])
	}
	w.U32(uint32(len(data)))
	for _, v := range data {
		writeVec3s(w, v)
	}

	// Water boxes are carried by the legacy path only.
	w.U32(0)
	return w.Bytes()
}

func writeVec3s(w *o2r.Writer, v Vec3s) {
	w.I16(v[0])
	w.I16(v[1])
	w.I16(v[2])
}

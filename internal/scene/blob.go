package scene

import (
	"encoding/binary"

	"github.com/Faultbox/z64forge/pkg/codec"
)

// Sizes of the big-endian collision structures.
const (
	CollisionHeaderSize = 0x2C
	polySize            = 0x10
	surfaceTypeSize     = 0x08
	bgCamSize           = 0x08
	waterBoxSize        = 0x10
)

func align4(n int) int {
	return (n + 3) &^ 3
}

// Binary encodes the collision header as a big-endian blob meant to be
// inserted into a ROM at virtual address base. The header comes first,
// followed by vertices, polygons, surface types, cameras, camera data
// and water boxes, each section 4-byte aligned. Internal pointers are
// segmented addresses resolved through table; empty lists get a null
// pointer.
func (h *CollisionHeader) Binary(base uint32, table codec.SegmentTable) ([]byte, error) {
	idx, camData := h.camDataIndices()

	off := CollisionHeaderSize
	section := func(count, size int) int {
		if count == 0 {
			return -1
		}
		start := off
		off = align4(off + count*size)
		return start
	}
	vtxOff := section(len(h.Vertices), 6)
	polyOff := section(len(h.Polygons), polySize)
	typeOff := section(len(h.SurfaceTypes), surfaceTypeSize)
	camOff := section(len(h.BgCams), bgCamSize)
	dataOff := section(len(camData), 6)
	waterOff := section(len(h.WaterBoxes), waterBoxSize)

	buf := make([]byte, off)
	be := binary.BigEndian

	var err error
	ptr := func(at, target int) {
		if err != nil || target < 0 {
			return
		}
		var seg [4]byte
		seg, err = codec.EncodeSegmentedAddress(base+uint32(target), table)
		copy(buf[at:], seg[:])
	}
	putVec := func(at int, v Vec3s) {
		be.PutUint16(buf[at:], uint16(v[0]))
		be.PutUint16(buf[at+2:], uint16(v[1]))
		be.PutUint16(buf[at+4:], uint16(v[2]))
	}

	putVec(0x00, h.MinBounds)
	putVec(0x06, h.MaxBounds)
	be.PutUint16(buf[0x0C:], uint16(len(h.Vertices)))
	ptr(0x10, vtxOff)
	be.PutUint16(buf[0x14:], uint16(len(h.Polygons)))
	ptr(0x18, polyOff)
	ptr(0x1C, typeOff)
	ptr(0x20, camOff)
	be.PutUint16(buf[0x24:], uint16(len(h.WaterBoxes)))
	ptr(0x28, waterOff)

	for i, v := range h.Vertices {
		putVec(vtxOff+i*6, v)
	}
	for i, p := range h.Polygons {
		at := polyOff + i*polySize
		be.PutUint16(buf[at:], p.Type)
		be.PutUint16(buf[at+2:], p.Indices[0])
		be.PutUint16(buf[at+4:], p.Indices[1])
		be.PutUint16(buf[at+6:], p.Indices[2])
		putVec(at+8, p.Normal)
		be.PutUint16(buf[at+14:], uint16(clampS16(p.Dist)))
	}
	for i, st := range h.SurfaceTypes {
		at := typeOff + i*surfaceTypeSize
		w0, w1 := st.Words()
		be.PutUint32(buf[at:], w0)
		be.PutUint32(buf[at+4:], w1)
	}
	for i, c := range h.BgCams {
		at := camOff + i*bgCamSize
		be.PutUint16(buf[at:], c.Setting)
		be.PutUint16(buf[at+2:], uint16(len(c.Data)))
		if len(c.Data) > 0 {
			ptr(at+4, dataOff+int(idx[i])*6)
		}
	}
	for i, v := range camData {
		putVec(dataOff+i*6, v)
	}
	for i, wb := range h.WaterBoxes {
		at := waterOff + i*waterBoxSize
		be.PutUint16(buf[at:], uint16(wb.XMin))
		be.PutUint16(buf[at+2:], uint16(wb.YSurface))
		be.PutUint16(buf[at+4:], uint16(wb.ZMin))
		be.PutUint16(buf[at+6:], uint16(wb.XLength))
		be.PutUint16(buf[at+8:], uint16(wb.ZLength))
		be.PutUint32(buf[at+12:], wb.Properties)
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

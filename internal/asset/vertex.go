package asset

import (
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/z64forge/pkg/cdata"
	"github.com/Faultbox/z64forge/pkg/codec"
	zmath "github.com/Faultbox/z64forge/pkg/math"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// VertexSize is the size of one Vtx record in bytes.
const VertexSize = 16

// Vertex is one F3D vertex.
type Vertex struct {
	Pos   [3]int16
	Flag  uint16
	ST    [2]int16 // s10.5 texture coordinates
	Color [4]uint8 // color or packed normal plus alpha
}

// VertexList is a named array of vertices.
type VertexList struct {
	Name     string
	Vertices []Vertex
}

// ParseVertices decodes big-endian Vtx records.
func ParseVertices(name string, data []byte) (*VertexList, error) {
	if len(data)%VertexSize != 0 {
		return nil, fmt.Errorf("%w: vertex list %s is %d bytes", ErrMisaligned, name, len(data))
	}
	be := binary.BigEndian
	vl := &VertexList{Name: name, Vertices: make([]Vertex, len(data)/VertexSize)}
	for i := range vl.Vertices {
		b := data[i*VertexSize:]
		vl.Vertices[i] = Vertex{
			Pos:   [3]int16{int16(be.Uint16(b[0:])), int16(be.Uint16(b[2:])), int16(be.Uint16(b[4:]))},
			Flag:  be.Uint16(b[6:]),
			ST:    [2]int16{int16(be.Uint16(b[8:])), int16(be.Uint16(b[10:]))},
			Color: [4]uint8{b[12], b[13], b[14], b[15]},
		}
	}
	return vl, nil
}

// VertexSource is an unencoded vertex. UV is normalized to the texture,
// origin top left.
type VertexSource struct {
	Pos   [3]float64
	UV    [2]float64
	Color [4]uint8
	// Normal is packed into the flag field. Nil leaves the flag zero.
	Normal *zmath.Vec3
}

// EncodeVertices builds a vertex list from unencoded vertices, scaling UVs
// to a texture of width by height texels.
func EncodeVertices(name string, src []VertexSource, width, height int) (*VertexList, error) {
	data := make([]byte, 0, len(src)*VertexSize)
	for i, v := range src {
		pos := codec.ConvertPosition(v.Pos[0], v.Pos[1], v.Pos[2])
		data = append(data, pos[:]...)

		var flag uint16
		if v.Normal != nil {
			packed, err := codec.PackNormal(*v.Normal)
			if err != nil {
				return nil, fmt.Errorf("vertex %d of %s: %w", i, name, err)
			}
			flag = packed
		}
		data = binary.BigEndian.AppendUint16(data, flag)

		st := codec.ConvertUV(v.UV[0], v.UV[1], width, height)
		data = append(data, st[:]...)
		data = append(data, v.Color[:]...)
	}
	return ParseVertices(name, data)
}

// Bytes encodes the vertices back to big-endian Vtx records.
func (vl *VertexList) Bytes() []byte {
	be := binary.BigEndian
	out := make([]byte, len(vl.Vertices)*VertexSize)
	for i, v := range vl.Vertices {
		b := out[i*VertexSize:]
		be.PutUint16(b[0:], uint16(v.Pos[0]))
		be.PutUint16(b[2:], uint16(v.Pos[1]))
		be.PutUint16(b[4:], uint16(v.Pos[2]))
		be.PutUint16(b[6:], v.Flag)
		be.PutUint16(b[8:], uint16(v.ST[0]))
		be.PutUint16(b[10:], uint16(v.ST[1]))
		copy(b[12:16], v.Color[:])
	}
	return out
}

// O2R encodes the vertex list as a little-endian resource.
func (vl *VertexList) O2R() []byte {
	w := o2r.NewWriter(o2r.TypeVertex)
	w.U32(uint32(len(vl.Vertices)))
	for _, v := range vl.Vertices {
		w.I16(v.Pos[0])
		w.I16(v.Pos[1])
		w.I16(v.Pos[2])
		w.U16(v.Flag)
		w.I16(v.ST[0])
		w.I16(v.ST[1])
		w.Raw(v.Color[:])
	}
	return w.Bytes()
}

// C returns the vertex list as a Vtx array of VTX macros.
func (vl *VertexList) C() *cdata.CData {
	c := cdata.New()
	c.Headerf("extern Vtx %s[%d];\n", vl.Name, len(vl.Vertices))

	c.Sourcef("Vtx %s[%d] = {\n", vl.Name, len(vl.Vertices))
	for _, v := range vl.Vertices {
		c.Sourcef("\tVTX(%d, %d, %d, %d, %d, 0x%02X, 0x%02X, 0x%02X, 0x%02X),\n",
			v.Pos[0], v.Pos[1], v.Pos[2], v.ST[0], v.ST[1],
			v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	}
	c.Sourcef("};\n\n")
	return c
}

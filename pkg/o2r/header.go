// Package o2r reads and writes O2R resources: a fixed 64-byte little-endian
// preamble followed by a resource-specific body.
package o2r

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of the resource preamble in bytes.
const HeaderSize = 64

// MagicID identifies an O2R resource.
const MagicID uint64 = 0xDEADBEEFDEADBEEF

// O2R format errors.
var (
	ErrTruncated    = errors.New("truncated O2R data")
	ErrInvalidMagic = errors.New("invalid O2R magic")
)

// ResourceType tags what a resource contains.
type ResourceType uint32

// Resource types.
const (
	TypeRoom         ResourceType = 0x4F524F4D // "OROM", also used for scenes
	TypeCollision    ResourceType = 0x4F434F4C // "OCOL"
	TypeSkeleton     ResourceType = 0x4F534B4C // "OSKL"
	TypeSkeletonLimb ResourceType = 0x4F534C42 // "OSLB"
	TypeDisplayList  ResourceType = 0x4F444C54 // "ODLT"
	TypeTexture      ResourceType = 0x4F544558 // "OTEX"
	TypeVertex       ResourceType = 0x4F565458 // "OVTX"
	TypeMaterial     ResourceType = 0x4F4D4154 // "OMAT"
)

// String returns the resource type name.
func (t ResourceType) String() string {
	switch t {
	case TypeRoom:
		return "Room"
	case TypeCollision:
		return "Collision"
	case TypeSkeleton:
		return "Skeleton"
	case TypeSkeletonLimb:
		return "SkeletonLimb"
	case TypeDisplayList:
		return "DisplayList"
	case TypeTexture:
		return "Texture"
	case TypeVertex:
		return "Vertex"
	case TypeMaterial:
		return "Material"
	default:
		return fmt.Sprintf("Unknown(0x%08X)", uint32(t))
	}
}

// Header is the resource preamble.
type Header struct {
	Endianness      uint32 // 0 = little
	Type            ResourceType
	GameVersion     uint32
	Magic           uint64
	ResourceVersion uint32
}

// NewHeader returns a little-endian, version 0 header of the given type.
func NewHeader(t ResourceType) Header {
	return Header{Type: t, Magic: MagicID}
}

// Bytes encodes the header. Reserved fields are zero.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Endianness)
	le.PutUint32(b[4:], uint32(h.Type))
	le.PutUint32(b[8:], h.GameVersion)
	le.PutUint64(b[12:], h.Magic)
	le.PutUint32(b[20:], h.ResourceVersion)
	return b
}

// ParseHeader decodes the preamble at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	le := binary.LittleEndian
	h := Header{
		Endianness:      le.Uint32(data[0:]),
		Type:            ResourceType(le.Uint32(data[4:])),
		GameVersion:     le.Uint32(data[8:]),
		Magic:           le.Uint64(data[12:]),
		ResourceVersion: le.Uint32(data[20:]),
	}
	if h.Magic != MagicID {
		return Header{}, fmt.Errorf("%w: 0x%016X", ErrInvalidMagic, h.Magic)
	}
	return h, nil
}

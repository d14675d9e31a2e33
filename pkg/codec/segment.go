package codec

import (
	"fmt"
	"sort"

	"github.com/Faultbox/z64forge/pkg/errs"
)

// SegmentRange is a half-open absolute address interval [Start, End).
type SegmentRange struct {
	Start, End uint32
}

// Contains reports whether addr lies in the range.
func (r SegmentRange) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End
}

// SegmentTable maps segment ids to the address range each is loaded at.
type SegmentTable map[uint8]SegmentRange

// ids returns the segment ids in ascending order so lookups are stable when
// ranges overlap.
func (t SegmentTable) ids() []uint8 {
	ids := make([]uint8, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SegmentOf returns the segment whose range contains addr.
func SegmentOf(addr uint32, table SegmentTable) (uint8, error) {
	for _, id := range table.ids() {
		if table[id].Contains(addr) {
			return id, nil
		}
	}
	return 0, errs.Resource("codec.segment", nil, "address 0x%08X is not found in any of the provided segments", addr)
}

// EncodeSegmentedAddress converts an absolute address to segment id plus a
// 24-bit big-endian offset.
func EncodeSegmentedAddress(addr uint32, table SegmentTable) ([4]byte, error) {
	id, err := SegmentOf(addr, table)
	if err != nil {
		return [4]byte{}, err
	}
	off := addr - table[id].Start
	if off > 0xFFFFFF {
		return [4]byte{}, errs.Resource("codec.segment", nil, "offset 0x%X exceeds 24 bits in segment 0x%02X", off, id)
	}
	return [4]byte{id, byte(off >> 16), byte(off >> 8), byte(off)}, nil
}

// DecodeSegmentedAddress converts a segmented address back to an absolute
// one.
func DecodeSegmentedAddress(b [4]byte, table SegmentTable) (uint32, error) {
	r, ok := table[b[0]]
	if !ok {
		return 0, errs.Resource("codec.segment", nil, "segment %d not found in segment list", b[0])
	}
	return r.Start + (uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

// String formats a range as start:end in hex.
func (r SegmentRange) String() string {
	return fmt.Sprintf("0x%08X:0x%08X", r.Start, r.End)
}

package o2r

import (
	"encoding/binary"
	"fmt"
)

// Reader walks a little-endian resource body. The first short read sets a
// sticky error; later reads return zero values.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader returns a reader positioned after the preamble.
func NewReader(data []byte) (*Reader, Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, Header{}, err
	}
	return &Reader{data: data, off: HeaderSize}, h, nil
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.data)-r.off {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, n, r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *Reader) I8() int8 { return int8(r.U8()) }

func (r *Reader) U16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *Reader) I16() int16 { return int16(r.U16()) }

func (r *Reader) U32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *Reader) U64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// Text reads a u32-length-prefixed string.
func (r *Reader) Text() string {
	n := r.U32()
	if b := r.take(int(n)); b != nil {
		return string(b)
	}
	return ""
}

// Count reads a u32 element count. A count whose elements of at least
// size bytes each cannot fit in the unread body sets the error.
func (r *Reader) Count(size int) int {
	n := r.U32()
	if r.err != nil {
		return 0
	}
	if uint64(n)*uint64(size) > uint64(r.Remaining()) {
		r.err = fmt.Errorf("%w: %d elements of %d bytes at offset %d", ErrTruncated, n, size, r.off-4)
		return 0
	}
	return int(n)
}

// Skip advances n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.off
}

// Err returns the first read error.
func (r *Reader) Err() error {
	return r.err
}

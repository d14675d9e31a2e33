package codec

import (
	"fmt"
	"hash"
)

// CRC64Poly is the CRC-64/ECMA-182 polynomial in MSB-first form.
const CRC64Poly = 0x42F0E1EBA9EA3693

// CRC64Size is the size of a CRC64 checksum in bytes.
const CRC64Size = 8

var crc64Table = makeCRC64Table()

func makeCRC64Table() *[256]uint64 {
	var t [256]uint64
	for i := range t {
		crc := uint64(i) << 56
		for j := 0; j < 8; j++ {
			if crc&(1<<63) != 0 {
				crc = crc<<1 ^ CRC64Poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func crc64Update(crc uint64, p []byte) uint64 {
	for _, b := range p {
		crc = crc64Table[byte(crc>>56)^b] ^ crc<<8
	}
	return crc
}

// UpdateCRC64 feeds buf into crc and returns the bitwise complement of the
// result. Start a fresh checksum with crc = ^uint64(0).
func UpdateCRC64(buf []byte, crc uint64) uint64 {
	return ^crc64Update(crc, buf)
}

// CRC64Sum returns the un-inverted checksum of text, the value used to
// name resources by content.
func CRC64Sum(text string) uint64 {
	return crc64Update(^uint64(0), []byte(text))
}

// CRC64 returns CRC64Sum(text) as 16 lowercase hex digits.
func CRC64(text string) string {
	return fmt.Sprintf("%016x", CRC64Sum(text))
}

type digest struct {
	crc uint64
}

// NewCRC64 returns a streaming hash whose Sum64 equals CRC64Sum of the
// bytes written.
func NewCRC64() hash.Hash64 {
	d := &digest{}
	d.Reset()
	return d
}

func (d *digest) Size() int      { return CRC64Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = ^uint64(0) }
func (d *digest) Sum64() uint64  { return d.crc }

func (d *digest) Write(p []byte) (int, error) {
	d.crc = crc64Update(d.crc, p)
	return len(p), nil
}

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum64()
	return append(in, byte(s>>56), byte(s>>48), byte(s>>40), byte(s>>32), byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

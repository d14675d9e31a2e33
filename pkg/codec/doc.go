// Package codec implements the bit-exact numeric encodings of the F3D
// display-list microcode and the engine resource formats: s10.5 fixed-point
// texture coordinates, binary angles, constant-L1 packed normals, 16-bit
// colors, CRC64 content hashes and segmented addresses.
//
// Every function is pure. Byte-producing helpers use big-endian order, the
// order the microcode reads.
package codec

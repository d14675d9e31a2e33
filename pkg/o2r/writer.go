package o2r

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates a little-endian resource body.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns a writer that starts with the preamble for t.
func NewWriter(t ResourceType) *Writer {
	w := &Writer{}
	w.buf.Write(NewHeader(t).Bytes())
	return w
}

// NewBodyWriter returns a writer with no preamble, for payload fragments.
func NewBodyWriter() *Writer {
	return &Writer{}
}

func (w *Writer) put(v any) {
	// bytes.Buffer writes never fail.
	_ = binary.Write(&w.buf, binary.LittleEndian, v)
}

func (w *Writer) U8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) I8(v int8)    { w.buf.WriteByte(byte(v)) }
func (w *Writer) U16(v uint16) { w.put(v) }
func (w *Writer) I16(v int16)  { w.put(v) }
func (w *Writer) U32(v uint32) { w.put(v) }
func (w *Writer) U64(v uint64) { w.put(v) }

// Bool writes a single byte, 1 for true.
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
		return
	}
	w.U8(0)
}

// String writes a u32 length followed by the raw bytes.
func (w *Writer) String(s string) {
	w.U32(uint32(len(s)))
	w.buf.WriteString(s)
}

// Raw appends b unchanged.
func (w *Writer) Raw(b []byte) {
	w.buf.Write(b)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

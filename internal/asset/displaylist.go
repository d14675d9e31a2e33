// Package asset holds the graphics resources an export emits: display
// lists, vertex lists, textures and materials, grouped into a Model.
//
// Geometry arrives already encoded as big-endian F3DEX2 command and vertex
// buffers. This package only names, deduplicates and re-encodes them for
// the O2R and C outputs.
package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path"

	"github.com/Faultbox/z64forge/pkg/cdata"
	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// CommandSize is the size of one display-list command in bytes.
const CommandSize = 8

// Asset errors.
var (
	ErrMisaligned = errors.New("buffer size is not a multiple of the record size")
	ErrConflict   = errors.New("resource already processed with different content")
)

// ResourcePath joins folder and name with forward slashes, the form
// resources are addressed by inside an archive.
func ResourcePath(folder, name string) string {
	return path.Join(folder, name)
}

// ResourceHash is the CRC64 content name of a resource path.
func ResourceHash(folder, name string) uint64 {
	return codec.CRC64Sum(ResourcePath(folder, name))
}

// DisplayList is an opaque F3DEX2 command buffer.
type DisplayList struct {
	Name       string
	Data       []byte   // big-endian commands
	References []string // names of resources the commands point at
}

// NewDisplayList validates data and returns a display list.
func NewDisplayList(name string, data []byte, refs ...string) (*DisplayList, error) {
	if len(data)%CommandSize != 0 {
		return nil, fmt.Errorf("%w: display list %s is %d bytes", ErrMisaligned, name, len(data))
	}
	return &DisplayList{Name: name, Data: data, References: refs}, nil
}

// Commands returns the number of commands.
func (d *DisplayList) Commands() int {
	return len(d.Data) / CommandSize
}

// Hash returns the CRC64 of the commands and references.
func (d *DisplayList) Hash() uint64 {
	h := codec.NewCRC64()
	h.Write(d.Data)
	for _, r := range d.References {
		h.Write([]byte{0})
		h.Write([]byte(r))
	}
	return h.Sum64()
}

// Equal reports whether two display lists have the same name and content.
func (d *DisplayList) Equal(other *DisplayList) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Name == other.Name && d.Hash() == other.Hash()
}

func (d *DisplayList) body(w *o2r.Writer, folder string) {
	// GBI version byte, padded to one command.
	w.U8(0)
	w.Raw(make([]byte, 7))

	w.U32(uint32(d.Commands()))
	for i := 0; i < len(d.Data); i += CommandSize {
		w.U32(binary.BigEndian.Uint32(d.Data[i:]))
		w.U32(binary.BigEndian.Uint32(d.Data[i+4:]))
	}

	w.U32(uint32(len(d.References)))
	for _, r := range d.References {
		w.U64(ResourceHash(folder, r))
	}
}

// O2R encodes the display list as a resource under folder.
func (d *DisplayList) O2R(folder string) []byte {
	w := o2r.NewWriter(o2r.TypeDisplayList)
	d.body(w, folder)
	return w.Bytes()
}

// C returns the display list as a Gfx array.
func (d *DisplayList) C() *cdata.CData {
	c := cdata.New()
	c.Headerf("extern Gfx %s[];\n", d.Name)

	c.Sourcef("Gfx %s[] = {\n", d.Name)
	for i := 0; i < len(d.Data); i += CommandSize {
		c.Sourcef("\t{{ 0x%08X, 0x%08X }},\n",
			binary.BigEndian.Uint32(d.Data[i:]),
			binary.BigEndian.Uint32(d.Data[i+4:]))
	}
	c.Sourcef("};\n\n")
	return c
}

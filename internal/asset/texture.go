package asset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// TextureFormat is a texel encoding.
type TextureFormat int

// Supported texel formats.
const (
	FormatRGBA16 TextureFormat = iota
	FormatIA16
)

// String returns the format's file suffix name.
func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA16:
		return "rgba16"
	case FormatIA16:
		return "ia16"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// ParseTextureFormat resolves a format name such as "RGBA16" or "G_IM_FMT_IA16".
func ParseTextureFormat(s string) (TextureFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "g_im_fmt_") {
	case "rgba16", "":
		return FormatRGBA16, nil
	case "ia16":
		return FormatIA16, nil
	default:
		return 0, fmt.Errorf("unsupported texture format %q", s)
	}
}

// o2rType is the resource texture type code.
func (f TextureFormat) o2rType() uint32 {
	if f == FormatIA16 {
		return 9
	}
	return 2
}

// Texture is an encoded 16-bit texture.
type Texture struct {
	Name   string
	Format TextureFormat
	Width  int
	Height int
	Data   []byte // big-endian texels

	// Source is the decoded image the texels came from, kept for previews.
	Source image.Image
}

var (
	pngMagic = []byte("\x89PNG")
	bmpMagic = []byte("BM")
)

// DecodeImage decodes a PNG, BMP or TGA image. TGA has no magic number,
// so anything that is neither PNG nor BMP is read as TGA.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	var img image.Image
	switch {
	case bytes.HasPrefix(data, pngMagic):
		img, err = png.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, bmpMagic):
		img, err = bmp.Decode(bytes.NewReader(data))
	default:
		img, err = tga.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// NewTexture encodes img in format f.
func NewTexture(name string, img image.Image, f TextureFormat) *Texture {
	b := img.Bounds()
	t := &Texture{
		Name:   name,
		Format: f,
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   make([]byte, 0, b.Dx()*b.Dy()*2),
		Source: img,
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			switch f {
			case FormatIA16:
				v := codec.IA16(codec.Color{
					R: float64(c.R) / 255,
					G: float64(c.G) / 255,
					B: float64(c.B) / 255,
					A: float64(c.A) / 255,
				})
				t.Data = binary.BigEndian.AppendUint16(t.Data, v)
			default:
				px := codec.Convert32To16bitRGBA(c.R, c.G, c.B, c.A)
				t.Data = append(t.Data, px[:]...)
			}
		}
	}
	return t
}

// Hash returns the CRC64 of the texel data.
func (t *Texture) Hash() uint64 {
	h := codec.NewCRC64()
	h.Write(t.Data)
	return h.Sum64()
}

// O2R encodes the texture as a resource.
func (t *Texture) O2R() []byte {
	w := o2r.NewWriter(o2r.TypeTexture)
	w.U32(t.Format.o2rType())
	w.U32(uint32(t.Width))
	w.U32(uint32(t.Height))
	w.U32(uint32(len(t.Data)))
	w.Raw(t.Data)
	return w.Bytes()
}

// WriteWebP writes a lossless preview of the source image.
func (t *Texture) WriteWebP(w io.Writer) error {
	if t.Source == nil {
		return fmt.Errorf("texture %s has no source image", t.Name)
	}
	return nativewebp.Encode(w, t.Source, nil)
}

// words returns the texels as u64 words, zero padded.
func (t *Texture) words() []uint64 {
	data := t.Data
	if rem := len(data) % 8; rem != 0 {
		data = append(bytes.Clone(data), make([]byte, 8-rem)...)
	}
	out := make([]uint64, len(data)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(data[i*8:])
	}
	return out
}

// Package bmp decodes the device-independent bitmaps stored as icon frames.
//
// An icon DIB has no BITMAPFILEHEADER, its header height covers the color
// bitmap and the 1-bpp AND mask together, and transparency comes from the
// mask unless a 32-bpp bitmap carries its own alpha.
package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

const infoHeaderSize = 40

const (
	biRGB       = 0
	biBitfields = 3
)

// ErrUnsupported is returned for bit depths and compression methods icon
// frames do not use.
var ErrUnsupported = errors.New("bmp: unsupported bitmap")

// InfoHeader is a BITMAPINFOHEADER. Larger header versions share this prefix.
type InfoHeader struct {
	Size           uint32
	Width          int32
	Height         int32
	Planes         uint16
	BitCount       uint16
	Compression    uint32
	SizeImage      uint32
	XPelsPerMeter  int32
	YPelsPerMeter  int32
	ColorUsed      uint32
	ColorImportant uint32
}

// ReadInfoHeader reads the header at the start of data.
func ReadInfoHeader(data []byte) (InfoHeader, error) {
	h := InfoHeader{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return InfoHeader{}, fmt.Errorf("bmp: read info header: %w", err)
	}

	if h.Size < infoHeaderSize || int64(h.Size) > int64(len(data)) {
		return InfoHeader{}, fmt.Errorf("bmp: invalid info header size (got: %d)", h.Size)
	}

	if h.Width <= 0 {
		return InfoHeader{}, fmt.Errorf("bmp: width should be greater than zero (got: %d)", h.Width)
	}

	// the header height counts the XOR bitmap and the AND mask
	if h.Height/2 == 0 {
		return InfoHeader{}, fmt.Errorf("bmp: height should cover at least one row (got: %d)", h.Height)
	}

	return h, nil
}

func (h InfoHeader) config() image.Config {
	height := h.Height / 2
	if height < 0 {
		height = -height
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(height),
	}
}

type decoder struct {
	bpp     int
	topDown bool
	config  image.Config
	palette []color.NRGBA
	xor     []byte
	and     []byte
}

// stride returns the bytes per row for width pixels at bpp, which must be an
// integer multiple of 4 bytes.
func stride(width, bpp int) int {
	return (width*bpp + 31) / 32 * 4
}

func newDecoder(data []byte) (*decoder, error) {
	h, err := ReadInfoHeader(data)
	if err != nil {
		return nil, err
	}

	switch h.BitCount {
	case 1, 4, 8, 24, 32:
	default:
		return nil, fmt.Errorf("%w: bit count (got: %d)", ErrUnsupported, h.BitCount)
	}

	pos := int(h.Size)
	switch {
	case h.Compression == biRGB:
	case h.Compression == biBitfields && h.BitCount == 32:
		// a v1 header is followed by three channel masks; the standard
		// BGRA layout is assumed
		if h.Size == infoHeaderSize {
			pos += 12
		}
	default:
		return nil, fmt.Errorf("%w: compression (got: %d)", ErrUnsupported, h.Compression)
	}

	d := &decoder{
		bpp:     int(h.BitCount),
		topDown: h.Height < 0,
		config:  h.config(),
	}

	if d.bpp <= 8 {
		n := int(h.ColorUsed)
		if n == 0 || n > 1<<d.bpp {
			n = 1 << d.bpp
		}
		if pos+n*4 > len(data) {
			return nil, fmt.Errorf("bmp: read color table: %w", io.ErrUnexpectedEOF)
		}
		d.palette = make([]color.NRGBA, n)
		for i := range d.palette {
			// BGR order plus one reserved byte
			c := data[pos+i*4:]
			d.palette[i] = color.NRGBA{R: c[2], G: c[1], B: c[0], A: 0xff}
		}
		pos += n * 4
	}

	xorSize := stride(d.config.Width, d.bpp) * d.config.Height
	if pos+xorSize > len(data) {
		return nil, fmt.Errorf("bmp: read bitmap: %w", io.ErrUnexpectedEOF)
	}
	d.xor = data[pos : pos+xorSize]
	d.and = data[pos+xorSize:]

	return d, nil
}

func (d *decoder) index(row []byte, x int) color.NRGBA {
	var i int
	switch d.bpp {
	case 1:
		i = int(row[x/8]>>(7-uint(x%8))) & 0x01
	case 4:
		i = int(row[x/2]>>(4*uint(1-x%2))) & 0x0f
	case 8:
		i = int(row[x])
	}
	if i >= len(d.palette) {
		return color.NRGBA{A: 0xff}
	}
	return d.palette[i]
}

// y maps a stored row to an image row.
func (d *decoder) y(row int) int {
	if d.topDown {
		return row
	}
	return d.config.Height - 1 - row
}

func (d *decoder) decode() *image.NRGBA {
	w, h := d.config.Width, d.config.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	xs := stride(w, d.bpp)

	hasAlpha := false
	for r := 0; r < h; r++ {
		row := d.xor[r*xs : (r+1)*xs]
		p := img.Pix[d.y(r)*img.Stride:]

		for x := 0; x < w; x++ {
			var c color.NRGBA
			switch d.bpp {
			case 1, 4, 8:
				c = d.index(row, x)
			case 24:
				// BGR order
				c = color.NRGBA{R: row[x*3+2], G: row[x*3+1], B: row[x*3], A: 0xff}
			case 32:
				// BGRA order
				c = color.NRGBA{R: row[x*4+2], G: row[x*4+1], B: row[x*4], A: row[x*4+3]}
				if c.A != 0 {
					hasAlpha = true
				}
			}
			p[x*4+0] = c.R
			p[x*4+1] = c.G
			p[x*4+2] = c.B
			p[x*4+3] = c.A
		}
	}

	if d.bpp == 32 {
		if hasAlpha {
			return img
		}
		// old 32-bpp frames leave alpha zeroed and rely on the mask
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
	}

	d.applyMask(img)
	return img
}

// applyMask clears every pixel whose AND-mask bit is set. Frames that omit
// the mask stay opaque.
func (d *decoder) applyMask(img *image.NRGBA) {
	w, h := d.config.Width, d.config.Height
	as := stride(w, 1)
	if len(d.and) < as*h {
		return
	}

	for r := 0; r < h; r++ {
		row := d.and[r*as : (r+1)*as]
		p := img.Pix[d.y(r)*img.Stride:]
		for x := 0; x < w; x++ {
			if row[x/8]>>(7-uint(x%8))&0x01 == 1 {
				p[x*4+3] = 0
			}
		}
	}
}

// Decode reads an icon DIB and returns it as an *image.NRGBA.
func Decode(data []byte) (image.Image, error) {
	d, err := newDecoder(data)
	if err != nil {
		return nil, err
	}
	return d.decode(), nil
}

// DecodeConfig returns the dimensions of an icon DIB.
func DecodeConfig(data []byte) (image.Config, error) {
	h, err := ReadInfoHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return h.config(), nil
}

// Package ico reads and writes multi-resolution icon containers (.ico).
//
// A container is a 6-byte header, one 16-byte directory entry per frame and
// the frames' image payloads, all integers little-endian. Encode stores the
// payloads it is given, normally PNG; Decode reads PNG and legacy DIB frames.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/appasset/go-ico/internal/bmp"
)

const (
	headerSize    = 6
	directorySize = 16
)

const (
	// MaxFrames is the most frames the 16-bit count field can describe.
	MaxFrames = math.MaxUint16

	// MaxSize is the largest edge length a directory entry can describe.
	// It is stored as 0.
	MaxSize = 256
)

const (
	typeIcon     = 1
	planes       = 1
	bitsPerPixel = 32
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var (
	// ErrInvalidInput is returned when frames handed to the encoder cannot
	// be described by the container format.
	ErrInvalidInput = errors.New("ico: invalid input")

	// ErrFormat is returned when a stream is not a well-formed icon container.
	ErrFormat = errors.New("ico: invalid format")
)

type header struct {
	Reserved  uint16
	ImageType uint16
	Count     uint16
}

type directory struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// Entry is one directory record of an icon container.
type Entry struct {
	Width      int
	Height     int
	ColorCount int
	Planes     int
	BitCount   int
	Size       uint32 // payload length in bytes
	Offset     uint32 // payload offset from the start of the stream
}

func (d directory) entry() Entry {
	return Entry{
		Width:      dimension(d.Width),
		Height:     dimension(d.Height),
		ColorCount: int(d.ColorCount),
		Planes:     int(d.Planes),
		BitCount:   int(d.BitCount),
		Size:       d.BytesInRes,
		Offset:     d.ImageOffset,
	}
}

// when width or height is 0, it is treated as 256 instead.
func dimension(b uint8) int {
	if b == 0 {
		return MaxSize
	}
	return int(b)
}

func readHeader(r io.Reader) (header, error) {
	h := header{}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("%w: read header: %w", ErrFormat, err)
	}

	if h.ImageType != typeIcon {
		return h, fmt.Errorf("%w: image type should be 1 (got: %d)", ErrFormat, h.ImageType)
	}

	if h.Count == 0 {
		return h, fmt.Errorf("%w: invalid number of images (got: %d)", ErrFormat, h.Count)
	}

	return h, nil
}

func readDirectories(r io.Reader, n int) ([]directory, error) {
	ds := make([]directory, n)
	if err := binary.Read(r, binary.LittleEndian, ds); err != nil {
		return nil, fmt.Errorf("%w: read directory: %w", ErrFormat, err)
	}
	return ds, nil
}

func readContainer(r io.Reader) ([]directory, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	return readDirectories(r, int(h.Count))
}

// ReadDir reads the header and directory of an icon container without
// touching the image payloads.
func ReadDir(r io.Reader) ([]Entry, error) {
	ds, err := readContainer(r)
	if err != nil {
		return nil, err
	}

	es := make([]Entry, len(ds))
	for i, d := range ds {
		es[i] = d.entry()
	}
	return es, nil
}

// payload returns the bytes of one frame, checking the directory's range
// against the stream.
func payload(buf []byte, n int, d directory) ([]byte, error) {
	start := uint64(d.ImageOffset)
	end := start + uint64(d.BytesInRes)
	if start < uint64(headerSize+directorySize*n) || end > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: payload out of range (got: offset %d, size %d, stream %d)",
			ErrFormat, d.ImageOffset, d.BytesInRes, len(buf))
	}
	return buf[start:end], nil
}

func decodeFrame(data []byte) (image.Image, error) {
	if bytes.HasPrefix(data, pngSignature) {
		return png.Decode(bytes.NewReader(data))
	}
	return bmp.Decode(data)
}

func decodeFrameConfig(data []byte) (image.Config, error) {
	if bytes.HasPrefix(data, pngSignature) {
		return png.DecodeConfig(bytes.NewReader(data))
	}
	return bmp.DecodeConfig(data)
}

// Decode decodes the given io.Reader and returns all images contained in the
// data, in directory order.
func Decode(r io.Reader) ([]image.Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	ds, err := readContainer(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}

	imgs := make([]image.Image, len(ds))
	for i, d := range ds {
		data, err := payload(buf, len(ds), d)
		if err != nil {
			return nil, err
		}

		img, err := decodeFrame(data)
		if err != nil {
			return nil, fmt.Errorf("ico: frame %d: %w", i, err)
		}
		imgs[i] = img
	}

	return imgs, nil
}

// DecodeConfig returns the color model and dimensions of the largest frame.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}

	ds, err := readContainer(bytes.NewReader(buf))
	if err != nil {
		return image.Config{}, err
	}

	es := make([]Entry, len(ds))
	for i, d := range ds {
		es[i] = d.entry()
	}

	d := ds[Largest(es)]
	data, err := payload(buf, len(ds), d)
	if err != nil {
		return image.Config{}, err
	}
	return decodeFrameConfig(data)
}

// Largest returns the index of the entry with the most pixels, preferring the
// deeper color on a tie and the earlier entry after that. It returns -1 for an
// empty slice.
func Largest(es []Entry) int {
	best := -1
	for i, e := range es {
		if best < 0 {
			best = i
			continue
		}
		b := es[best]
		switch {
		case e.Width*e.Height > b.Width*b.Height:
			best = i
		case e.Width*e.Height == b.Width*b.Height && e.BitCount > b.BitCount:
			best = i
		}
	}
	return best
}

// Nearest returns the index of the entry a renderer should draw at size×size:
// the smallest entry at least that wide, so it is only ever scaled down, or
// the largest entry when none is. It returns -1 for an empty slice.
func Nearest(es []Entry, size int) int {
	best := -1
	for i, e := range es {
		if e.Width < size {
			continue
		}
		if best < 0 || e.Width < es[best].Width ||
			(e.Width == es[best].Width && e.BitCount > es[best].BitCount) {
			best = i
		}
	}
	if best < 0 {
		return Largest(es)
	}
	return best
}

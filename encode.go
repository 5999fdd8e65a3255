package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
)

// Frame is one resolution of an icon: Data holds an encoded Size×Size image,
// normally PNG. The encoder trusts Size and never decodes Data.
type Frame struct {
	Size int
	Data []byte
}

// sizeByte stores an edge length in a directory byte; 256 is written as 0.
func sizeByte(size int) uint8 {
	if size >= MaxSize {
		return 0
	}
	return uint8(size)
}

func checkSize(i, size int) error {
	if size <= 0 || size > MaxSize {
		return fmt.Errorf("%w: frame %d: size should be in [1, %d] (got: %d)", ErrInvalidInput, i, MaxSize, size)
	}
	return nil
}

func checkCount(n int) error {
	if n == 0 || n > MaxFrames {
		return fmt.Errorf("%w: number of frames should be in [1, %d] (got: %d)", ErrInvalidInput, MaxFrames, n)
	}
	return nil
}

// Encode serializes frames into an icon container: the header, one directory
// entry per frame in input order, then the payloads concatenated in the same
// order. Every entry declares 32-bit true color with one plane.
//
// Encode fails with ErrInvalidInput when there are no frames, more than
// MaxFrames frames, a size outside [1, MaxSize], or more payload than 32-bit
// offsets can address. The frames are not modified.
func Encode(frames []Frame) ([]byte, error) {
	if err := checkCount(len(frames)); err != nil {
		return nil, err
	}

	total := uint64(headerSize + directorySize*len(frames))
	for i, f := range frames {
		if err := checkSize(i, f.Size); err != nil {
			return nil, err
		}
		total += uint64(len(f.Data))
	}
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("%w: container too large (got: %d bytes)", ErrInvalidInput, total)
	}

	h := header{
		Reserved:  0,
		ImageType: typeIcon,
		Count:     uint16(len(frames)),
	}

	ds := make([]directory, len(frames))
	offset := uint32(headerSize + directorySize*len(frames))
	for i, f := range frames {
		ds[i] = directory{
			Width:       sizeByte(f.Size),
			Height:      sizeByte(f.Size),
			ColorCount:  0,
			Reserved:    0,
			Planes:      planes,
			BitCount:    bitsPerPixel,
			BytesInRes:  uint32(len(f.Data)),
			ImageOffset: offset,
		}
		offset += uint32(len(f.Data))
	}

	bb := bytes.NewBuffer(make([]byte, 0, int(total)))
	if err := binary.Write(bb, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if err := binary.Write(bb, binary.LittleEndian, ds); err != nil {
		return nil, err
	}
	for _, f := range frames {
		bb.Write(f.Data)
	}

	return bb.Bytes(), nil
}

// EncodeTo encodes frames and writes the container to w. Nothing is written
// when the frames are rejected.
func EncodeTo(w io.Writer, frames []Frame) error {
	b, err := Encode(frames)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeImages PNG-encodes each square image as one frame, in argument order,
// and returns the container.
func EncodeImages(imgs ...image.Image) ([]byte, error) {
	if err := checkCount(len(imgs)); err != nil {
		return nil, err
	}

	frames := make([]Frame, len(imgs))
	for i, img := range imgs {
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("%w: frame %d: image should be square (got: %dx%d)", ErrInvalidInput, i, b.Dx(), b.Dy())
		}
		if err := checkSize(i, b.Dx()); err != nil {
			return nil, err
		}

		bb := &bytes.Buffer{}
		if err := png.Encode(bb, img); err != nil {
			return nil, fmt.Errorf("ico: frame %d: %w", i, err)
		}
		frames[i] = Frame{Size: b.Dx(), Data: bb.Bytes()}
	}

	return Encode(frames)
}

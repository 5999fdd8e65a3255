// Package resize turns a source image into the square frames an icon
// container holds.
package resize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	ico "github.com/appasset/go-ico"
)

// Contain scales src to fit inside a size×size square, keeping its aspect
// ratio, and centres it on a transparent canvas.
func Contain(src image.Image, size int) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))

	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}

	scale := math.Min(float64(size)/float64(sb.Dx()), float64(size)/float64(sb.Dy()))
	w := max(1, int(math.Round(float64(sb.Dx())*scale)))
	h := max(1, int(math.Round(float64(sb.Dy())*scale)))

	off := image.Pt((size-w)/2, (size-h)/2)
	dr := image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}
	draw.CatmullRom.Scale(dst, dr, src, sb, draw.Over, nil)
	return dst
}

// Cover scales src to fill a size×size square, keeping its aspect ratio and
// cropping the overflow evenly from both sides.
func Cover(src image.Image, size int) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))

	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}

	side := min(sb.Dx(), sb.Dy())
	off := sb.Min.Add(image.Pt((sb.Dx()-side)/2, (sb.Dy()-side)/2))
	sr := image.Rectangle{Min: off, Max: off.Add(image.Pt(side, side))}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, draw.Over, nil)
	return dst
}

// Load decodes a PNG, JPEG, GIF, BMP or WebP file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// PNG encodes img at best compression.
func PNG(img image.Image) ([]byte, error) {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	bb := &bytes.Buffer{}
	if err := enc.Encode(bb, img); err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

// Frames renders src once per size, in the given order.
func Frames(src image.Image, sizes []int) ([]ico.Frame, error) {
	frames := make([]ico.Frame, 0, len(sizes))
	for _, size := range sizes {
		if size <= 0 || size > ico.MaxSize {
			return nil, fmt.Errorf("%w: size should be in [1, %d] (got: %d)", ico.ErrInvalidInput, ico.MaxSize, size)
		}
		data, err := PNG(Contain(src, size))
		if err != nil {
			return nil, fmt.Errorf("encode %dx%d: %w", size, size, err)
		}
		frames = append(frames, ico.Frame{Size: size, Data: data})
	}
	return frames, nil
}

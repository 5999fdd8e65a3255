package resize

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	ico "github.com/appasset/go-ico"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestContainWide(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img := Contain(solid(200, 100, red), 32)

	if got := img.Bounds(); got != image.Rect(0, 0, 32, 32) {
		t.Fatalf("bounds = %v, want 32x32", got)
	}
	// 200x100 scales to 32x16, leaving 8 transparent rows above and below
	if got := img.NRGBAAt(16, 0); got.A != 0 {
		t.Fatalf("expected transparent padding at top, got %v", got)
	}
	if got := img.NRGBAAt(16, 31); got.A != 0 {
		t.Fatalf("expected transparent padding at bottom, got %v", got)
	}
	if got := img.NRGBAAt(16, 16); got.A < 250 || got.R < 250 {
		t.Fatalf("expected opaque red in the centre, got %v", got)
	}
}

func TestContainTall(t *testing.T) {
	img := Contain(solid(10, 40, color.White), 16)
	if got := img.NRGBAAt(0, 8); got.A != 0 {
		t.Fatalf("expected transparent padding at left, got %v", got)
	}
	if got := img.NRGBAAt(8, 8); got.A < 250 {
		t.Fatalf("expected opaque centre, got %v", got)
	}
}

func TestCover(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	// left and right thirds are blue, the middle third red
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			c := color.RGBA{B: 255, A: 255}
			if x >= 100 && x < 200 {
				c = color.RGBA{R: 255, A: 255}
			}
			src.Set(x, y, c)
		}
	}

	img := Cover(src, 20)
	if got := img.Bounds(); got != image.Rect(0, 0, 20, 20) {
		t.Fatalf("bounds = %v, want 20x20", got)
	}
	// only the centre square survives the crop
	for _, p := range []image.Point{{0, 0}, {19, 19}, {10, 10}} {
		got := img.NRGBAAt(p.X, p.Y)
		if got.A < 250 || got.R < 250 || got.B > 5 {
			t.Errorf("pixel %v = %v, want opaque red", p, got)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	bb := &bytes.Buffer{}
	if err := png.Encode(bb, solid(12, 7, color.White)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, bb.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 12 || got.Dy() != 7 {
		t.Fatalf("bounds = %v, want 12x7", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestContainEdgeCases(t *testing.T) {
	if got := Contain(solid(4, 4, color.White), 0).Bounds(); !got.Empty() {
		t.Fatalf("expected empty image for size 0, got %v", got)
	}
	if got := Cover(solid(4, 4, color.White), -1).Bounds(); !got.Empty() {
		t.Fatalf("expected empty image for negative size, got %v", got)
	}
	if got := Contain(image.NewRGBA(image.Rectangle{}), 8).Bounds(); got.Dx() != 8 {
		t.Fatalf("expected 8x8 canvas for empty source, got %v", got)
	}
}

func TestFrames(t *testing.T) {
	sizes := []int{16, 32, 48}
	frames, err := Frames(solid(64, 64, color.White), sizes)
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	if len(frames) != len(sizes) {
		t.Fatalf("expected %d frames, got %d", len(sizes), len(frames))
	}
	for i, f := range frames {
		if f.Size != sizes[i] {
			t.Errorf("frame %d size = %d, want %d", i, f.Size, sizes[i])
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(f.Data))
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if cfg.Width != sizes[i] || cfg.Height != sizes[i] {
			t.Errorf("frame %d is %dx%d, want %dx%d", i, cfg.Width, cfg.Height, sizes[i], sizes[i])
		}
	}
}

func TestFramesRejectsSize(t *testing.T) {
	for _, size := range []int{0, -16, 512} {
		if _, err := Frames(solid(8, 8, color.White), []int{16, size}); !errors.Is(err, ico.ErrInvalidInput) {
			t.Errorf("size %d: expected ErrInvalidInput, got %v", size, err)
		}
	}
}

// Package ico2png extracts every frame of an icon container as a PNG file.
package ico2png

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	ico "github.com/appasset/go-ico"
)

// Config holds configuration for one extraction.
type Config struct {
	Input  string
	OutDir string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{OutDir: "."}
	fs.StringVar(&cfg.OutDir, "o", cfg.OutDir, "output directory")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: ico2png [-o OUTDIR] ICO_FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() != 1 {
		return Config{}, errors.New("exactly one icon file is required")
	}
	cfg.Input = fs.Arg(0)
	return cfg, nil
}

func readIcon(path string) ([]image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ico.Decode(f)
}

// Run writes frame i of the input to OutDir/<base>NN.png, numbered from 01.
func Run(cfg Config, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	imgs, err := readIcon(cfg.Input)
	if err != nil {
		return fmt.Errorf("decode icon: %w", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
	for i, img := range imgs {
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("%s%02d.png", base, i+1))
		if err := writePNG(path, img); err != nil {
			return err
		}
		logger.Printf("%s: %dx%d", path, img.Bounds().Dx(), img.Bounds().Dy())
	}

	return nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

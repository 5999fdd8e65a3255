// Package iconset renders one source image into the iOS and web icon files
// an app ships with.
package iconset

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	ico "github.com/appasset/go-ico"
	"github.com/appasset/go-ico/internal/config"
	"github.com/appasset/go-ico/internal/resize"
)

const (
	FormatIOS = "ios"
	FormatWeb = "web"
	FormatAll = "all"
)

// BaseSize is the edge of the master image every other file is cut from.
const BaseSize = 1024

// IOSSizes are the App Store and home-screen icon edges, written as
// AppIcon-N.png.
var IOSSizes = []int{1024, 180, 167, 152, 120, 76, 60, 40, 29, 20}

// FaviconSizes are the frames of favicon.ico.
var FaviconSizes = []int{16, 32, 48}

type webIcon struct {
	name string
	size int
}

var webIcons = []webIcon{
	{"favicon-16x16.png", 16},
	{"favicon-32x32.png", 32},
	{"apple-touch-icon.png", 180},
	{"android-chrome-192x192.png", 192},
	{"android-chrome-512x512.png", 512},
}

// Config holds configuration for one icon set.
type Config struct {
	Input  string
	OutDir string
	Name   string `env:"ICONSET_NAME" envDefault:"App"`
	Format string `env:"ICONSET_FORMAT" envDefault:"all"`
}

// ParseConfig reads defaults from the environment, then parses flags into a
// Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.OutDir, "o", "", "output directory (default: IMAGE without extension, plus -icons)")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "app name for site.webmanifest (env ICONSET_NAME)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "ios, web or all (env ICONSET_FORMAT)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: iconset [-o OUTDIR] [-name App] [-format ios|web|all] IMAGE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() != 1 {
		return Config{}, errors.New("exactly one input image is required")
	}
	cfg.Input = fs.Arg(0)

	switch cfg.Format {
	case FormatIOS, FormatWeb, FormatAll:
	default:
		return Config{}, fmt.Errorf("format should be ios, web or all (got: %q)", cfg.Format)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = strings.TrimSuffix(cfg.Input, filepath.Ext(cfg.Input)) + "-icons"
	}
	return cfg, nil
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Icons           []manifestIcon `json:"icons"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Display         string         `json:"display"`
}

func webManifest(name string) ([]byte, error) {
	m := manifest{
		Name:      name,
		ShortName: name,
		Icons: []manifestIcon{
			{Src: "/android-chrome-192x192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/android-chrome-512x512.png", Sizes: "512x512", Type: "image/png"},
		},
		ThemeColor:      "#ffffff",
		BackgroundColor: "#ffffff",
		Display:         "standalone",
	}
	return json.MarshalIndent(m, "", "  ")
}

type writer struct {
	dir    string
	logger *log.Logger
}

func (w writer) file(name string, data []byte) error {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.logger.Printf("%s", path)
	return nil
}

func (w writer) png(name string, img image.Image) error {
	data, err := resize.PNG(img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return w.file(name, data)
}

// Run writes AppIcon-1024.png and, depending on the format, the iOS sizes
// (cropped to fill) and the web set: padded PNGs, favicon.ico and
// site.webmanifest.
func Run(cfg Config, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	src, err := resize.Load(cfg.Input)
	if err != nil {
		return fmt.Errorf("decode source: %w", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	w := writer{dir: cfg.OutDir, logger: logger}

	base := resize.Cover(src, BaseSize)
	if err := w.png(fmt.Sprintf("AppIcon-%d.png", BaseSize), base); err != nil {
		return err
	}

	if cfg.Format == FormatIOS || cfg.Format == FormatAll {
		for _, size := range IOSSizes {
			if size == BaseSize {
				continue
			}
			if err := w.png(fmt.Sprintf("AppIcon-%d.png", size), resize.Cover(base, size)); err != nil {
				return err
			}
		}
	}

	if cfg.Format == FormatWeb || cfg.Format == FormatAll {
		for _, wi := range webIcons {
			if err := w.png(wi.name, resize.Contain(base, wi.size)); err != nil {
				return err
			}
		}

		frames, err := resize.Frames(base, FaviconSizes)
		if err != nil {
			return fmt.Errorf("favicon: %w", err)
		}
		data, err := ico.Encode(frames)
		if err != nil {
			return fmt.Errorf("favicon: %w", err)
		}
		if err := w.file("favicon.ico", data); err != nil {
			return err
		}

		m, err := webManifest(cfg.Name)
		if err != nil {
			return fmt.Errorf("webmanifest: %w", err)
		}
		if err := w.file("site.webmanifest", m); err != nil {
			return err
		}
	}

	return nil
}

// Package png2ico builds an icon container from a single source image.
package png2ico

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ico "github.com/appasset/go-ico"
	"github.com/appasset/go-ico/internal/config"
	"github.com/appasset/go-ico/internal/resize"
)

// Config holds configuration for one conversion.
type Config struct {
	Input  string
	Output string
	Sizes  []int `env:"PNG2ICO_SIZES" envSeparator:"," envDefault:"16,32,48"`
}

type sizeList []int

func (s *sizeList) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, len(*s))
	for i, n := range *s {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Set replaces the list; the flag is not cumulative.
func (s *sizeList) Set(v string) error {
	var sizes []int
	for _, f := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return fmt.Errorf("invalid size %q", f)
		}
		sizes = append(sizes, n)
	}
	*s = sizes
	return nil
}

func checkDuplicates(sizes []int) error {
	seen := make(map[int]bool, len(sizes))
	for _, n := range sizes {
		if seen[n] {
			return fmt.Errorf("size %d listed more than once", n)
		}
		seen[n] = true
	}
	return nil
}

// ParseConfig reads defaults from the environment, then parses flags into a
// Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Output, "o", "", "output .ico path (default: IMAGE with an .ico extension)")
	fs.Var((*sizeList)(&cfg.Sizes), "sizes", "comma-separated frame sizes (env PNG2ICO_SIZES)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: png2ico [-o OUT.ico] [-sizes 16,32,48] IMAGE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() != 1 {
		return Config{}, errors.New("exactly one input image is required")
	}
	cfg.Input = fs.Arg(0)

	if cfg.Output == "" {
		cfg.Output = strings.TrimSuffix(cfg.Input, filepath.Ext(cfg.Input)) + ".ico"
	}
	if len(cfg.Sizes) == 0 {
		return Config{}, errors.New("at least one size is required")
	}
	if err := checkDuplicates(cfg.Sizes); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run resizes the input to every configured size and writes the container.
// The output file is only created once encoding has succeeded.
func Run(cfg Config, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	src, err := resize.Load(cfg.Input)
	if err != nil {
		return fmt.Errorf("decode source: %w", err)
	}

	frames, err := resize.Frames(src, cfg.Sizes)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}

	data, err := ico.Encode(frames)
	if err != nil {
		return fmt.Errorf("encode icon: %w", err)
	}

	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}

	logger.Printf("%s: %d frames %v, %d bytes", cfg.Output, len(frames), cfg.Sizes, len(data))
	return nil
}

// ico2png writes every frame of an .ico file as a PNG.
//
//	ico2png [-o OUTDIR] ICO_FILE
package main

import (
	"flag"
	"os"

	"github.com/appasset/go-ico/internal/config"
	"github.com/appasset/go-ico/internal/tools/ico2png"
)

func main() {
	cfg, err := ico2png.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("ico2png: %v", err)
	}
	if err := ico2png.Run(cfg, nil); err != nil {
		config.Exitf("ico2png: %v", err)
	}
}

// png2ico resizes one image to each icon size and writes an .ico file.
//
//	png2ico [-o OUT.ico] [-sizes 16,32,48] IMAGE
package main

import (
	"flag"
	"os"

	"github.com/appasset/go-ico/internal/config"
	"github.com/appasset/go-ico/internal/tools/png2ico"
)

func main() {
	cfg, err := png2ico.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("png2ico: %v", err)
	}
	if err := png2ico.Run(cfg, nil); err != nil {
		config.Exitf("png2ico: %v", err)
	}
}

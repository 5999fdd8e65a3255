// iconset writes the iOS and web icon files for an app from one image.
//
//	iconset [-o OUTDIR] [-name App] [-format ios|web|all] IMAGE
package main

import (
	"flag"
	"os"

	"github.com/appasset/go-ico/internal/config"
	"github.com/appasset/go-ico/internal/tools/iconset"
)

func main() {
	cfg, err := iconset.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("iconset: %v", err)
	}
	if err := iconset.Run(cfg, nil); err != nil {
		config.Exitf("iconset: %v", err)
	}
}

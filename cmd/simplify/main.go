// Command simplify is the CLI entry point (SPEC_FULL §6): it parses
// flags, loads the input APK/DEX through an external binary-format
// adapter, and hands the resulting dex.ClassManager to launcher.Run.
// Grounded on main.go's own top-level shape (ParseArgs, then a single
// top-level dispatch into the package that does the real work), trimmed
// of everything that package does beyond flag parsing and dispatch.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/errs"
	"github.com/k5h4tr1y4/simplify/launcher"
)

func main() {
	config.Register()
	if err := config.ParseArgs(); err != nil {
		log.Println(err)
		os.Exit(-1)
	}

	opts := config.Opts()
	cm, err := loadClassManager(opts.Input())
	if err != nil {
		log.Println(err)
		os.Exit(-1)
	}

	out := opts.Out()
	if out == "" {
		out = opts.Input()
	}

	if _, err := launcher.Run(cm, out); err != nil {
		log.Println(err)
		os.Exit(-1)
	}
}

// loadClassManager is the seam SPEC_FULL §1 leaves to an external
// binary-format library: DEX/APK parsing and emission are explicitly
// out of scope for this engine, which instead defines the narrow
// dex.ClassManager/dex.Builder contract such a library's public surface
// must be adapted to. Wiring a concrete reader here (zip-opening an APK,
// walking its classes.dex) is left to that adapter.
func loadClassManager(path string) (dex.ClassManager, error) {
	return nil, errs.New(errs.ConfigError, fmt.Sprintf(
		"no APK/DEX reader is wired in; provide a dex.ClassManager adapter for %q", path))
}

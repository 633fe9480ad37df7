// Package config implements the engine's CLI surface, resource bounds,
// and safe-invoke catalog (SPEC_FULL §6), mirroring the teacher's own
// package-level options()+Opts() accessor idiom built on the standard
// library flag package rather than a CLI framework.
package config

import (
	"flag"
	"fmt"
)

type options struct {
	input                string
	out                  string
	includeFilter        string
	excludeFilter        string
	includeSupportLib    bool
	outputAPILevel       int
	maxAddressVisits     int
	maxCallDepth         int
	maxMethodVisits      int
	maxExecutionTime     int
	maxOptimizationPasses int
	safeCatalog          string
	visualize            bool
	quiet                bool
	verbose              int
}

var opts = &options{}

// Register wires every CLI flag into the standard library's flag
// package, mirroring the teacher's Init idiom. Called once from main
// before flag.Parse.
func Register() {
	flag.StringVar(&opts.out, "out", "", "output path for the rewritten DEX/APK")
	flag.StringVar(&opts.includeFilter, "include-filter", "", "regex of method signatures to include")
	flag.StringVar(&opts.excludeFilter, "exclude-filter", "", "regex of method signatures to exclude")
	flag.BoolVar(&opts.includeSupportLib, "include-support-library", false, "disable the default skip of Landroid/support/(annotation|vNN)/... classes")
	flag.IntVar(&opts.outputAPILevel, "output-api-level", 0, "target Android API level for the rewritten DEX")
	flag.IntVar(&opts.maxAddressVisits, "max-address-visits", 10000, "per-location visit bound before a method's graph build is abandoned")
	flag.IntVar(&opts.maxCallDepth, "max-call-depth", 20, "recursive invoke depth bound")
	flag.IntVar(&opts.maxMethodVisits, "max-method-visits", 1000000, "total node-visit bound for one method's graph build")
	flag.IntVar(&opts.maxExecutionTime, "max-execution-time", 30, "wall-clock seconds before a method's graph build is abandoned")
	flag.IntVar(&opts.maxOptimizationPasses, "max-optimization-passes", 20, "re-execute-on-change bound for the optimizer pipeline")
	flag.StringVar(&opts.safeCatalog, "safe-catalog", "", "YAML file of additional safe classes/methods merged into the built-in catalog")
	flag.BoolVar(&opts.visualize, "visualize", false, "emit a Graphviz .dot file (no rendered image) of each optimized method's final execution graph")
	flag.BoolVar(&opts.quiet, "quiet", false, "suppress non-error output")
	flag.IntVar(&opts.verbose, "verbose", 0, "verbosity level (1, 2, or 3)")
}

// ParseArgs runs flag.Parse and captures the single positional <input>
// argument, returning a plain usage error if it's missing — config
// itself stays dependency-light; cmd/simplify logs the error and exits
// with -1.
func ParseArgs() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: simplify [options] <input.apk|input.dex>")
	}
	opts.input = flag.Arg(0)
	return nil
}

// Opts returns the accessor handle for parsed flag values, the same
// pattern as the teacher's Opts() returning a zero-size receiver type.
func Opts() optInterface { return optInterface{} }

type optInterface struct{}

func (optInterface) Input() string             { return opts.input }
func (optInterface) Out() string                { return opts.out }
func (optInterface) IncludeFilter() string      { return opts.includeFilter }
func (optInterface) ExcludeFilter() string      { return opts.excludeFilter }
func (optInterface) IncludeSupportLibrary() bool { return opts.includeSupportLib }
func (optInterface) OutputAPILevel() int        { return opts.outputAPILevel }
func (optInterface) SafeCatalog() string        { return opts.safeCatalog }
func (optInterface) Visualize() bool            { return opts.visualize }
func (optInterface) Quiet() bool                { return opts.quiet }
func (optInterface) Verbose() int               { return opts.verbose }

// Bounds builds the resource-bound record (SPEC_FULL §9) from the parsed
// flags, for the vm.Driver and optimize.Pipeline to consume.
func (optInterface) Bounds() Bounds {
	return Bounds{
		MaxAddressVisits:      opts.maxAddressVisits,
		MaxCallDepth:          opts.maxCallDepth,
		MaxMethodVisits:       opts.maxMethodVisits,
		MaxExecutionTime:      opts.maxExecutionTime,
		MaxOptimizationPasses: opts.maxOptimizationPasses,
	}
}

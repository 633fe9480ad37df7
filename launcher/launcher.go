// Package launcher is the top-level orchestrator (SPEC_FULL §6): it
// enumerates a DEX's classes, filters out framework/skip-listed ones,
// drives and optimizes every surviving method, emits the rewritten DEX,
// and prints a colorized summary — grounded on main.go's top-level task
// dispatch and its color.*String-wrapped log.Println status-line idiom.
package launcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/k5h4tr1y4/simplify/cache"
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/errs"
	"github.com/k5h4tr1y4/simplify/execgraph"
	"github.com/k5h4tr1y4/simplify/graph"
	"github.com/k5h4tr1y4/simplify/optimize"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/vm"
)

// Summary reports what a Run call did, for a caller (main, or a test)
// that wants the counts without scraping stdout.
type Summary struct {
	ClassesVisited   int
	MethodsAttempted int
	MethodsOptimized int
	MethodsSkipped   int
	Elapsed          time.Duration
}

var opts = config.Opts()

// Run drives every local, non-skipped method of cm through the VM
// driver and optimizer pipeline, writes the rewritten DEX via
// cm.Builder().Write(), and — when --visualize is set — a .dot of each
// optimized method's final graph alongside outPath.
func Run(cm dex.ClassManager, outPath string) (Summary, error) {
	start := time.Now()
	summary := Summary{}

	safe := config.NewSafeList(opts.IncludeSupportLibrary())
	if err := safe.MergeFile(opts.SafeCatalog()); err != nil {
		return summary, errs.Wrap(errs.ConfigError, err, "loading --safe-catalog")
	}

	methodCache, err := cache.New()
	if err != nil {
		return summary, errs.Wrap(errs.IOError, err, "constructing safe-method cache")
	}

	bounds := opts.Bounds()
	pipeline := optimize.NewPipeline(bounds)

	include, exclude, err := compileFilters(opts.IncludeFilter(), opts.ExcludeFilter())
	if err != nil {
		return summary, errs.Wrap(errs.ConfigError, err, "compiling --include-filter/--exclude-filter")
	}

	for _, className := range cm.ClassNames() {
		if safe.IsSkippedFramework(className) {
			continue
		}
		class, ok := cm.Class(className)
		if !ok {
			continue
		}
		summary.ClassesVisited++

		for _, method := range class.AllMethods() {
			sig := method.Signature.String()
			if exclude != nil && exclude.MatchString(sig) {
				continue
			}
			if include != nil && !include.MatchString(sig) {
				continue
			}
			if method.Access.IsNative() || method.Access.IsAbstract() {
				continue
			}
			summary.MethodsAttempted++

			driver := vm.NewDriver(cm, safe, methodCache, bounds)
			ctx := state.NewExecutionContext(method.RegisterCount)

			g, _, err := pipeline.Optimize(driver, method, cm, ctx)
			if err != nil {
				if !opts.Quiet() {
					log.Println(color.RedString("Skipped"), sig, "-", err)
				}
				summary.MethodsSkipped++
				continue
			}
			summary.MethodsOptimized++
			if opts.Verbose() > 0 && !opts.Quiet() {
				log.Println(color.GreenString("Optimized"), sig)
			}
			if opts.Verbose() >= 3 && !opts.Quiet() {
				log.Println(graph.Pretty(g))
			}

			if opts.Visualize() {
				if err := visualizeMethod(outPath, sig, g); err != nil && !opts.Quiet() {
					log.Println(color.YellowString("Visualize failed for"), sig, "-", err)
				}
			}
		}
	}

	if err := writeOutput(cm, outPath); err != nil {
		return summary, errs.Wrap(errs.IOError, err, "writing output")
	}

	summary.Elapsed = time.Since(start)
	if !opts.Quiet() {
		printSummary(summary)
	}
	return summary, nil
}

func compileFilters(include, exclude string) (*regexp.Regexp, *regexp.Regexp, error) {
	var inc, exc *regexp.Regexp
	var err error
	if include != "" {
		if inc, err = regexp.Compile(include); err != nil {
			return nil, nil, err
		}
	}
	if exclude != "" {
		if exc, err = regexp.Compile(exclude); err != nil {
			return nil, nil, err
		}
	}
	return inc, exc, nil
}

func writeOutput(cm dex.ClassManager, outPath string) error {
	b := cm.Builder()
	if b == nil {
		return nil
	}
	out, err := b.Write()
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

func visualizeMethod(outPath, sig string, g *execgraph.Graph) error {
	return graph.Render(sig, g, methodDotPath(outPath, sig), "", "")
}

func methodDotPath(outPath, sig string) string {
	safe := strings.NewReplacer("/", "_", ";", "", "(", "_", ")", "_", "->", "-").Replace(sig)
	return filepath.Join(filepath.Dir(outPath), safe+".dot")
}

func printSummary(s Summary) {
	fmt.Println(color.BlueString("simplify"), "finished in", s.Elapsed)
	fmt.Println("  classes visited:   ", s.ClassesVisited)
	fmt.Println("  methods attempted: ", s.MethodsAttempted)
	fmt.Println("  methods optimized: ", color.GreenString("%d", s.MethodsOptimized))
	fmt.Println("  methods skipped:   ", color.RedString("%d", s.MethodsSkipped))
}

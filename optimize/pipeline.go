// Package optimize implements the fixpoint optimizer pipeline (SPEC_FULL
// §4.3): a fixed ordered list of passes, each rewriting method
// instructions in place against the execution graph the driver just
// built, re-driving the method whenever a pass reports it changed
// something that could change that graph, until either no pass reports a
// change or maxOptimizationPasses is exhausted — grounded on
// pipeline.go's stage-announcing, bounded-iteration shape in the teacher
// repo.
package optimize

import (
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/errs"
	"github.com/k5h4tr1y4/simplify/execgraph"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/vm"
)

// Pass is one optimizer transformation over a method's freshly-built
// execution graph.
type Pass interface {
	Name() string
	Run(g *execgraph.Graph, method *dex.Method, cm dex.ClassManager) PassResult
}

// PassResult reports what a single pass invocation did. ShouldReexecute
// is set whenever MadeChanges is, since every pass in this pipeline
// rewrites dex.Method.Instructions directly and any such rewrite can
// change what the next drive of the method observes.
type PassResult struct {
	MadeChanges     bool
	ShouldReexecute bool
}

// PassCount records how many times one named pass reported a change,
// across every iteration of the pipeline.
type PassCount struct {
	Name    string
	Applied int
}

// Summary reports what a full Optimize call did.
type Summary struct {
	Iterations int
	Passes     []PassCount
}

// Pipeline runs the fixed ordered pass list to a fixpoint.
type Pipeline struct {
	passes []Pass
	bounds config.Bounds
}

// NewPipeline constructs the pipeline with SPEC_FULL §4.3's fixed pass
// ordering: constant propagation and dead-assignment elimination first
// (each exposes opportunities for the other across iterations),
// unreachable-branch removal and nop cleanup next, and predictable-call
// collapsing last, since it depends on a graph built from the already-
// simplified instruction stream.
func NewPipeline(bounds config.Bounds) *Pipeline {
	return &Pipeline{
		bounds: bounds,
		passes: []Pass{
			ConstantPropagator{},
			DeadAssignmentEliminator{},
			UnreachableBranchRemover{},
			PeepholeNopRemover{},
			PredictableCallCollapser{},
		},
	}
}

// Optimize drives method, runs every pass over the resulting graph, and
// repeats (rebuilding the graph from scratch each time, since a pass may
// have changed which locations are even reachable) until an iteration
// makes no changes or MaxOptimizationPasses is reached. It returns the
// last graph built, which reflects the fully-optimized method on a
// clean exit.
func (p *Pipeline) Optimize(driver *vm.Driver, method *dex.Method, cm dex.ClassManager, ctx state.ExecutionContext) (*execgraph.Graph, Summary, error) {
	counts := make(map[string]int, len(p.passes))
	summary := Summary{}

	var g *execgraph.Graph
	for iter := 0; iter < p.bounds.MaxOptimizationPasses; iter++ {
		summary.Iterations++

		built, err := driver.Drive(method, ctx)
		if err != nil {
			return nil, summary, err
		}
		g = built

		anyChange := false
		for _, pass := range p.passes {
			res := pass.Run(g, method, cm)
			if res.MadeChanges {
				counts[pass.Name()]++
				anyChange = true
			}
			if res.ShouldReexecute {
				// The graph this pass just looked at is now stale for
				// any pass after it in this same iteration too, since
				// the instruction stream moved under it.
				built, err = driver.Drive(method, ctx)
				if err != nil {
					return nil, summary, err
				}
				g = built
			}
		}

		if !anyChange {
			summary.Passes = passCountSlice(p.passes, counts)
			return g, summary, nil
		}
	}

	return nil, summary, errs.New(errs.ResourceBoundExceeded, "optimizer did not reach a fixpoint within MaxOptimizationPasses")
}

func passCountSlice(passes []Pass, counts map[string]int) []PassCount {
	out := make([]PassCount, len(passes))
	for i, pass := range passes {
		out[i] = PassCount{Name: pass.Name(), Applied: counts[pass.Name()]}
	}
	return out
}

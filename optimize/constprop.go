package optimize

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/execgraph"
	"github.com/k5h4tr1y4/simplify/value"
)

// ConstantPropagator replaces an instruction with a const* materializing
// its destination register's value when every node built at that
// instruction's location agrees on a single concrete value for it, and
// the instruction's side effect never exceeded WEAK (SPEC_FULL §4.3).
// The STRONG guard matters only for invoke (the one destRegister-bearing
// shape whose side effect can be STRONG in a run — arithmetic, moves and
// instance-field reads are always NONE, and a static-field read carries
// its class's level, which only sput raises, to WEAK): an invoke that happens to
// return the same concrete value on every path can still have an
// observable STRONG side effect the value lattice doesn't model, so
// folding it away would silently drop that effect, exactly what
// PredictableCallCollapser's own STRONG exclusion guards against
// downstream in the pipeline.
type ConstantPropagator struct{}

func (ConstantPropagator) Name() string { return "ConstantPropagator" }

func (ConstantPropagator) Run(g *execgraph.Graph, method *dex.Method, cm dex.ClassManager) PassResult {
	changed := false

	for idx, insn := range method.Instructions {
		if _, ok := insn.(dex.ConstInstruction); ok {
			continue
		}
		dest, ok := destRegister(insn)
		if !ok {
			continue
		}

		if nodeSetHasStrongEffect(g, insn.Location()) {
			continue
		}

		item, ok := g.ConsensusRegister(insn.Location(), dest)
		if !ok || !item.IsConcrete() {
			continue
		}

		method.Instructions[idx] = dex.ConstInstruction{
			Base:  dex.Base{Loc: insn.Location(), Succs: insn.Successors()},
			Mnem:  constMnemonic(item.Type),
			Dest:  dest,
			Type:  item.Type,
			Value: mustConcrete(item),
		}
		changed = true
	}

	if changed {
		cm.MarkMutated(method)
	}
	return PassResult{MadeChanges: changed, ShouldReexecute: changed}
}

func constMnemonic(declaredType string) string {
	switch {
	case declaredType == value.TypeString:
		return "const-string"
	case declaredType == value.TypeClass:
		return "const-class"
	case dex.IsWide(declaredType):
		return "const-wide"
	default:
		return "const"
	}
}

func mustConcrete(item value.HeapItem) any {
	v, _ := item.ConcreteValue()
	return v
}

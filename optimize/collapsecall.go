package optimize

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/execgraph"
)

// PredictableCallCollapser replaces an invoke with a const* when its
// side-effect level never exceeded WEAK and every node at its location
// agrees on a single concrete result register value (SPEC_FULL §4.3).
// Since this engine's InvokeInstruction already fuses its paired
// move-result into MoveDest/HasResult rather than modeling it as a
// separate instruction, collapsing the invoke itself also eliminates the
// move-result in the same step.
type PredictableCallCollapser struct{}

func (PredictableCallCollapser) Name() string { return "PredictableCallCollapser" }

func (PredictableCallCollapser) Run(g *execgraph.Graph, method *dex.Method, cm dex.ClassManager) PassResult {
	changed := false

	for idx, insn := range method.Instructions {
		invoke, ok := insn.(dex.InvokeInstruction)
		if !ok || !invoke.HasResult {
			continue
		}

		if len(g.NodesAt(insn.Location())) == 0 {
			continue
		}
		if nodeSetHasStrongEffect(g, insn.Location()) {
			continue
		}

		item, ok := g.ConsensusRegister(insn.Location(), invoke.MoveDest)
		if !ok || !item.IsConcrete() {
			continue
		}

		method.Instructions[idx] = dex.ConstInstruction{
			Base:  dex.Base{Loc: insn.Location(), Succs: insn.Successors()},
			Mnem:  constMnemonic(item.Type),
			Dest:  invoke.MoveDest,
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

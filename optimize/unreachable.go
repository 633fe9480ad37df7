package optimize

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/execgraph"
)

// UnreachableBranchRemover collapses an if-test to an unconditional goto
// when every node built at its location took the same single successor
// (SPEC_FULL §4.3) — i.e. the handler never had to explore both sides
// for an Unknown operand. The branch not taken becomes unreferenced, and
// DeadAssignmentEliminator/PeepholeNopRemover clean up reached
// assignments that only that side depended on over subsequent
// iterations. The instructions of the untaken side themselves stay in
// the method: no pass removes an instruction that has no node in the
// graph.
type UnreachableBranchRemover struct{}

func (UnreachableBranchRemover) Name() string { return "UnreachableBranchRemover" }

func (UnreachableBranchRemover) Run(g *execgraph.Graph, method *dex.Method, cm dex.ClassManager) PassResult {
	changed := false

	for idx, insn := range method.Instructions {
		if _, ok := insn.(dex.IfTestInstruction); !ok {
			continue
		}

		ids := g.NodesAt(insn.Location())
		if len(ids) == 0 {
			continue
		}

		var taken dex.MethodLocation
		consistent := true
		for i, id := range ids {
			children := g.Node(id).Children()
			if len(children) != 1 {
				consistent = false
				break
			}
			loc := g.Node(children[0]).Location()
			if i == 0 {
				taken = loc
			} else if loc != taken {
				consistent = false
				break
			}
		}
		if !consistent {
			continue
		}

		method.Instructions[idx] = dex.GotoInstruction{
			Base: dex.Base{Loc: insn.Location(), Succs: []dex.MethodLocation{taken}},
			Mnem: "goto",
		}
		changed = true
	}

	if changed {
		cm.MarkMutated(method)
	}
	return PassResult{MadeChanges: changed, ShouldReexecute: changed}
}

package execgraph

import (
	"github.com/spakin/disjoint"

	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
)

// LoopMerger implements the driver's merge-at-loop-back-edge policy
// (SPEC_FULL §4.2 step 5): when two paths reach the same loop-header
// location, their register files are merged via the value lattice and
// at most one continuation node is ever (re-)enqueued for that
// location, preventing unbounded fan-out on loops with variable
// iteration counts.
//
// Every location a loop header is ever merged at gets one disjoint-set
// equivalence class. Each further arrival at that location unions its
// own (fresh) element into the class instead of running an O(n)
// re-comparison against every prior arrival, so that a hot loop visited
// many times keeps this bookkeeping O(1) amortized per visit rather
// than O(visits) per visit.
type LoopMerger struct {
	reps    map[dex.MethodLocation]NodeID
	sets    map[dex.MethodLocation]*disjoint.Element
	arrivals map[dex.MethodLocation]int
}

// NewLoopMerger creates an empty merger, one per method-execution run.
func NewLoopMerger() *LoopMerger {
	return &LoopMerger{
		reps:     map[dex.MethodLocation]NodeID{},
		sets:     map[dex.MethodLocation]*disjoint.Element{},
		arrivals: map[dex.MethodLocation]int{},
	}
}

// MergeOrCreate is called by the driver whenever it is about to enqueue
// a node at a location known to be a loop back-edge target. If this is
// the first arrival at loc, it creates a fresh node from ctx and
// returns (id, true). On every subsequent arrival, it merges ctx's
// MethodState into the existing representative node's context in
// place, unions the arrival into loc's equivalence class, and returns
// (repID, false) — the driver must not enqueue a second continuation in
// that case, only reuse the returned ID to continue building from.
func (m *LoopMerger) MergeOrCreate(g *Graph, insn dex.Instruction, ctx state.ExecutionContext) (NodeID, bool) {
	loc := insn.Location()
	repID, seen := m.reps[loc]
	elem := disjoint.NewElement()
	m.arrivals[loc]++

	if !seen {
		repID = g.NewNode(insn, ctx)
		m.reps[loc] = repID
		m.sets[loc] = elem
		return repID, true
	}

	disjoint.Union(m.sets[loc], elem)

	rep := g.Node(repID)
	merged := rep.Context()
	merged.Method = state.Merge(merged.Method, ctx.Method)
	rep.SetContext(merged)
	return repID, false
}

// VisitCount reports how many arrivals a loop header location has
// absorbed so far. The driver does not read it; MaxAddressVisits is
// counted separately by the driver's bounds checker.
func (m *LoopMerger) VisitCount(loc dex.MethodLocation) int {
	return m.arrivals[loc]
}

// SameGroup reports whether two locations' arrivals have ever been
// unioned into the same equivalence class — always false for distinct
// locations, since each location has its own class; exposed for tests
// exercising the disjoint-set bookkeeping directly.
func (m *LoopMerger) SameGroup(a, b dex.MethodLocation) bool {
	sa, ok1 := m.sets[a]
	sb, ok2 := m.sets[b]
	if !ok1 || !ok2 {
		return false
	}
	return sa.Find() == sb.Find()
}

package execgraph

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// Graph is the per-method execution graph (SPEC_FULL §3): an arena of
// nodes plus a mapping from instruction location to every node ever
// built at that location (more than one, due to loops or multiple
// predecessors with incompatible incoming states).
type Graph struct {
	Method *dex.Method

	arena    []*Node
	byLoc    map[dex.MethodLocation][]NodeID
	rootID   NodeID
	// aggregateLevel is the join of every node's side-effect level,
	// computed once the graph is fully built.
	aggregateLevel value.Level
}

// New creates an empty graph for method, ready to accept its root node.
func New(method *dex.Method) *Graph {
	return &Graph{
		Method: method,
		byLoc:  map[dex.MethodLocation][]NodeID{},
		rootID: Invalid,
	}
}

// NewNode allocates a node in the arena at insn's location with the
// given context, registers it under its location, and returns its ID.
// If the arena currently has no root, this node becomes the root.
func (g *Graph) NewNode(insn dex.Instruction, ctx state.ExecutionContext) NodeID {
	id := NodeID(len(g.arena))
	n := newNode(id, insn, ctx)
	g.arena = append(g.arena, n)
	loc := insn.Location()
	g.byLoc[loc] = append(g.byLoc[loc], id)
	if g.rootID == Invalid {
		g.rootID = id
	}
	return id
}

// Node dereferences a NodeID into its Node. Panics on an out-of-range
// ID, which indicates an engine bug (a NodeID from a different graph,
// or arena corruption), not a recoverable condition.
func (g *Graph) Node(id NodeID) *Node {
	return g.arena[id]
}

// Root returns the method-entry node's ID.
func (g *Graph) Root() NodeID { return g.rootID }

// NodesAt returns every node ID built at location loc, in the order
// they were created.
func (g *Graph) NodesAt(loc dex.MethodLocation) []NodeID {
	return g.byLoc[loc]
}

// IsReachable reports whether any node was ever built at loc — i.e.
// whether loc is reachable under the abstract semantics from entry
// (the quantified invariant of SPEC_FULL §8).
func (g *Graph) IsReachable(loc dex.MethodLocation) bool {
	return len(g.byLoc[loc]) > 0
}

// Locations returns every instruction location that has at least one
// node, in arena-creation order of each location's first node.
func (g *Graph) Locations() []dex.MethodLocation {
	type entry struct {
		loc   dex.MethodLocation
		first NodeID
	}
	entries := make([]entry, 0, len(g.byLoc))
	for loc, ids := range g.byLoc {
		first := ids[0]
		for _, id := range ids[1:] {
			if id < first {
				first = id
			}
		}
		entries = append(entries, entry{loc, first})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].first > entries[j].first; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
	out := make([]dex.MethodLocation, len(entries))
	for i, e := range entries {
		out[i] = e.loc
	}
	return out
}

// TerminalNodes returns every node with no children: return/throw
// nodes and unrecovered-exception nodes.
func (g *Graph) TerminalNodes() []*Node {
	var out []*Node
	for _, n := range g.arena {
		if n.IsTerminal() {
			out = append(out, n)
		}
	}
	return out
}

// AllNodes returns every node in the arena, in creation order.
func (g *Graph) AllNodes() []*Node {
	return g.arena
}

// ConsensusRegister reports whether every node at loc agrees on a
// single concrete value for register r, returning that value if so.
// This is the query ConstantPropagator uses (SPEC_FULL §4.3): "do all
// nodes at L agree on register R's value?".
func (g *Graph) ConsensusRegister(loc dex.MethodLocation, r int) (value.HeapItem, bool) {
	ids := g.byLoc[loc]
	if len(ids) == 0 {
		return value.HeapItem{}, false
	}
	first := g.arena[ids[0]].Context().Method.Peek(r)
	if first.IsUnknown() || first.IsException() {
		return value.HeapItem{}, false
	}
	for _, id := range ids[1:] {
		other := g.arena[id].Context().Method.Peek(r)
		if other.IsUnknown() {
			return value.HeapItem{}, false
		}
		merged := value.Merge(first, other)
		if merged.IsUnknown() {
			return value.HeapItem{}, false
		}
	}
	return first, true
}

// ConsensusResult reports whether every terminal node agrees on a
// single concrete outcome (return value or thrown exception),
// equivalent to ConsensusRegister but over Node.Result rather than a
// register — used by MethodInliner/PredictableCallCollapser to decide
// whether an invoke's result is safe to collapse to a constant.
func (g *Graph) ConsensusResult() (value.HeapItem, bool) {
	terms := g.TerminalNodes()
	if len(terms) == 0 {
		return value.HeapItem{}, false
	}
	first, ok := terms[0].Result()
	if !ok || first.IsUnknown() {
		return value.HeapItem{}, false
	}
	for _, n := range terms[1:] {
		other, ok := n.Result()
		if !ok || other.IsUnknown() {
			return value.HeapItem{}, false
		}
		if value.Merge(first, other).IsUnknown() {
			return value.HeapItem{}, false
		}
	}
	return first, true
}

// AggregateLevel returns the join of every node's side-effect level
// (SPEC_FULL §4.2, "Side-effect aggregation").
func (g *Graph) AggregateLevel() value.Level {
	return g.aggregateLevel
}

// Finalize computes the aggregate side-effect level. Called by the
// driver once the graph's work-list has drained.
func (g *Graph) Finalize() {
	lvl := value.NONE
	for _, n := range g.arena {
		lvl = lvl.Join(n.Level())
	}
	g.aggregateLevel = lvl
}

// NodeCount returns how many nodes are in the arena (MaxAddressVisits is
// checked against per-location counts, not this total).
func (g *Graph) NodeCount() int {
	return len(g.arena)
}

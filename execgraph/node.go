// Package execgraph implements the per-method execution graph: an
// arena of ExecutionNodes mirroring the control-flow graph, where an
// instruction location may have more than one node (one per distinct
// incoming abstract state), per SPEC_FULL §3 and the re-architecture
// guidance of §9.
package execgraph

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// NodeID is an arena index. Nodes reference each other by NodeID, never
// by pointer, so that a graph containing back-edges (loops) can be
// built, merged, and garbage-discarded without anyone outside the arena
// chasing a live pointer into it.
type NodeID int

// Invalid is the sentinel NodeID (-1), never assigned to a real node.
const Invalid NodeID = -1

// Node is one ExecutionNode: an instruction location, the abstract
// context that reached it, its children (by NodeID), and an optional
// attached exception (SPEC_FULL §3).
type Node struct {
	id       NodeID
	insn     dex.Instruction
	context  state.ExecutionContext
	children []NodeID
	// exception is set by a handler that raised one (e.g. DIV/REM by
	// zero); a node with exception set has no children. Try/catch
	// handlers are not modeled, so no catch-head child is ever built.
	exception *value.HeapItem
	// level is the side-effect level of the instruction this node
	// executed, refined by the handler during Execute.
	level value.Level
	// result, for a terminal node (return/throw), is the value the
	// method produced: its return value, or its thrown exception.
	result *value.HeapItem
}

func newNode(id NodeID, insn dex.Instruction, ctx state.ExecutionContext) *Node {
	return &Node{id: id, insn: insn, context: ctx, level: value.NONE}
}

// ID returns this node's arena index.
func (n *Node) ID() NodeID { return n.id }

// Instruction returns the instruction this node executes.
func (n *Node) Instruction() dex.Instruction { return n.insn }

// Location returns the instruction location this node sits at.
func (n *Node) Location() dex.MethodLocation { return n.insn.Location() }

// Context returns the abstract execution context this node carries.
func (n *Node) Context() state.ExecutionContext { return n.context }

// SetContext replaces the node's context (used by a handler after it
// computes the post-execution state, before children are derived from it).
func (n *Node) SetContext(ctx state.ExecutionContext) { n.context = ctx }

// Children returns the NodeIDs of this node's successors in the graph.
func (n *Node) Children() []NodeID { return n.children }

// AddChild appends a child NodeID, preserving the FIFO order in which
// the driver enqueues and later executes them (SPEC_FULL §5 ordering
// guarantee: fall-through first, then explicit branches).
func (n *Node) AddChild(id NodeID) { n.children = append(n.children, id) }

// ClearChildren drops every child (used for terminal nodes: return,
// throw, and unhandled-exception nodes), per invariant I3.
func (n *Node) ClearChildren() { n.children = nil }

// SetException attaches a VirtualException to this node; per the
// engine's policy (exceptions are values, not control-flow), the
// caller must also call ClearChildren.
func (n *Node) SetException(exc value.HeapItem) { n.exception = &exc }

// ClearExceptions removes any attached exception. The driver does not
// call it: each node is built fresh and executed once, so it never
// carries an exception from an earlier execution.
func (n *Node) ClearExceptions() { n.exception = nil }

// Exception returns the attached VirtualException, if any.
func (n *Node) Exception() (value.HeapItem, bool) {
	if n.exception == nil {
		return value.HeapItem{}, false
	}
	return *n.exception, true
}

// Level returns this node's side-effect level.
func (n *Node) Level() value.Level { return n.level }

// JoinLevel raises this node's side-effect level (it only ever grows,
// invariant I5).
func (n *Node) JoinLevel(l value.Level) { n.level = n.level.Join(l) }

// SetResult records the method-level outcome (return value or thrown
// exception) a terminal node produced.
func (n *Node) SetResult(item value.HeapItem) { n.result = &item }

// Result returns the recorded outcome, if this is a terminal node.
func (n *Node) Result() (value.HeapItem, bool) {
	if n.result == nil {
		return value.HeapItem{}, false
	}
	return *n.result, true
}

// IsTerminal reports whether this node has no children (either by
// reaching return/throw, or by an unrecovered exception).
func (n *Node) IsTerminal() bool {
	return len(n.children) == 0
}

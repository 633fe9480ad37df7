// Package state implements the register file and static-field store the
// symbolic execution engine threads through every execution-graph edge:
// MethodState, ClassState, and the ExecutionContext that bundles them.
package state

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/k5h4tr1y4/simplify/value"
)

// MethodState is the register file [0..N) of value.HeapItem, plus a
// parallel "assigned this node" bitset (SPEC_FULL §3). The register
// vector is backed by a persistent immutable.List so that Branch (the
// "branched copy" operation the driver performs on every node fan-out)
// is O(1) structural sharing rather than an O(N) deep copy: Branch just
// hands the child a MethodState value that points at the same
// underlying persistent tree, and the child's own Assign calls build new
// tree nodes without mutating anything the parent (or any sibling
// branch) can see.
type MethodState struct {
	registers *immutable.List[value.HeapItem]
	assigned  map[int]bool
}

// NewMethodState creates a register file of size n, every register
// holding Unknown with declared type Ljava/lang/Object;.
func NewMethodState(n int) MethodState {
	b := immutable.NewListBuilder[value.HeapItem]()
	for i := 0; i < n; i++ {
		b.Append(value.NewUnknown(value.TypeObject))
	}
	return MethodState{registers: b.List(), assigned: map[int]bool{}}
}

// Count returns the number of registers in the file.
func (s MethodState) Count() int {
	return s.registers.Len()
}

// Peek reads register r without marking it as read by the current
// instruction; the opcode handlers read their operands through it.
func (s MethodState) Peek(r int) value.HeapItem {
	return s.registers.Get(r)
}

// Read reads register r. Reserved for callers that want to distinguish
// "read for execution" from Peek in a future dataflow extension; for now
// it is Peek's exact twin, since read-marking is tracked separately by
// the optimizer walking the execution graph rather than by MethodState
// itself (SPEC_FULL §4.3, DeadAssignmentEliminator).
func (s MethodState) Read(r int) value.HeapItem {
	return s.Peek(r)
}

// Assign writes item into register r and marks r as assigned by the
// current instruction, returning the new MethodState. The receiver is
// left untouched: this is the structural-sharing "write" half of
// copy-on-branch.
func (s MethodState) Assign(r int, item value.HeapItem) MethodState {
	assigned := make(map[int]bool, len(s.assigned)+1)
	for k := range s.assigned {
		assigned[k] = true
	}
	assigned[r] = true
	return MethodState{registers: s.registers.Set(r, item), assigned: assigned}
}

// Branch produces a copy of the receiver suitable for handing to a child
// execution node: same register contents, but a fresh, empty
// assigned-this-node bitset (the child hasn't executed anything yet).
func (s MethodState) Branch() MethodState {
	return MethodState{registers: s.registers, assigned: map[int]bool{}}
}

// WasAssigned reports whether register r was written by the instruction
// that produced this MethodState (used for display and for the
// "newly written" dataflow query in SPEC_FULL §3).
func (s MethodState) WasAssigned(r int) bool {
	return s.assigned[r]
}

// AssignedRegisters returns the set of registers the current instruction
// wrote, in ascending order.
func (s MethodState) AssignedRegisters() []int {
	out := make([]int, 0, len(s.assigned))
	for r := range s.assigned {
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Merge joins two register files register-wise, per invariant I2. The
// two states must have the same register count (invariant I1); a
// mismatch indicates an engine bug, not a recoverable condition.
func Merge(a, b MethodState) MethodState {
	if a.Count() != b.Count() {
		panic(fmt.Sprintf("cannot merge method states of differing size: %d vs %d", a.Count(), b.Count()))
	}
	out := NewMethodState(a.Count())
	for i := 0; i < a.Count(); i++ {
		out.registers = out.registers.Set(i, value.Merge(a.Peek(i), b.Peek(i)))
	}
	return out
}

func (s MethodState) String() string {
	var sb strings.Builder
	iter := s.registers.Iterator()
	for !iter.Done() {
		i, item := iter.Next()
		fmt.Fprintf(&sb, "v%d=%s", i, item)
		if i != s.registers.Len()-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

package optimize

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/execgraph"
	"github.com/k5h4tr1y4/simplify/value"
)

// nodeSetHasStrongEffect reports whether any node built at loc incurred a
// STRONG side effect, the shared guard ConstantPropagator and
// PredictableCallCollapser both use before folding an instruction to a
// const*, so an observable effect the value lattice doesn't model is
// never silently dropped.
func nodeSetHasStrongEffect(g *execgraph.Graph, loc dex.MethodLocation) bool {
	for _, id := range g.NodesAt(loc) {
		if g.Node(id).Level() == value.STRONG {
			return true
		}
	}
	return false
}

// destRegister returns the register an instruction writes, if any. Every
// opcode family with a result-bearing shape is listed explicitly rather
// than inferred, so a new instruction kind fails closed (no destination)
// instead of silently matching the wrong field.
func destRegister(insn dex.Instruction) (int, bool) {
	switch i := insn.(type) {
	case dex.BinaryMathInstruction:
		return i.Dest, true
	case dex.UnaryMathInstruction:
		return i.Dest, true
	case dex.ConstInstruction:
		return i.Dest, true
	case dex.MoveInstruction:
		return i.Dest, true
	case dex.NewArrayInstruction:
		return i.Dest, true
	case dex.ArrayLengthInstruction:
		return i.Dest, true
	case dex.InstanceOfInstruction:
		return i.Dest, true
	case dex.CmpInstruction:
		return i.Dest, true
	case dex.FieldInstruction:
		if !i.IsPut {
			return i.ValueReg, true
		}
	case dex.InvokeInstruction:
		if i.HasResult {
			return i.MoveDest, true
		}
	}
	return 0, false
}

// readRegisters returns the set of registers insn reads as operands.
func readRegisters(insn dex.Instruction) map[int]bool {
	regs := map[int]bool{}
	add := func(r int) { regs[r] = true }

	switch i := insn.(type) {
	case dex.BinaryMathInstruction:
		if !i.Lhs.IsLiteral {
			add(i.Lhs.Register)
		}
		if !i.Rhs.IsLiteral {
			add(i.Rhs.Register)
		}
	case dex.UnaryMathInstruction:
		add(i.Src)
	case dex.MoveInstruction:
		if i.Kind == dex.MoveRegister {
			add(i.Src)
		}
	case dex.ReturnInstruction:
		if i.HasValue {
			add(i.Src)
		}
	case dex.ThrowInstruction:
		add(i.Src)
	case dex.IfTestInstruction:
		add(i.Lhs)
		if !i.IsZeroTest {
			add(i.Rhs)
		}
	case dex.CmpInstruction:
		add(i.Lhs)
		add(i.Rhs)
	case dex.SwitchInstruction:
		add(i.Src)
	case dex.FieldInstruction:
		if !i.IsStatic {
			add(i.Object)
		}
		if i.IsPut {
			add(i.ValueReg)
		}
	case dex.NewArrayInstruction:
		add(i.Length)
	case dex.ArrayLengthInstruction:
		add(i.Array)
	case dex.ArrayOpInstruction:
		add(i.Array)
		add(i.Index)
		if i.IsPut {
			add(i.ValueReg)
		}
	case dex.InstanceOfInstruction:
		add(i.Src)
	case dex.CheckCastInstruction:
		add(i.Src)
	case dex.InvokeInstruction:
		for _, r := range i.Args {
			add(r)
		}
	case dex.MonitorInstruction:
		add(i.Obj)
	case dex.FillArrayDataInstruction:
		add(i.Array)
	}

	return regs
}

// computeLiveOut runs a backward fixpoint over the execution graph's node
// DAG, the standard live_in(N) = read(N) ∪ (live_out(N) \ {dest(N)}),
// live_out(N) = ∪ live_in(successors) equations, iterated until no node's
// live-in set changes. The node graph can contain cycles (a loop
// back-edge is linked to the header node LoopMerger reuses), which the
// fixpoint handles: live sets only grow, so the iteration terminates.
func computeLiveOut(g *execgraph.Graph) map[execgraph.NodeID]map[int]bool {
	nodes := g.AllNodes()
	liveIn := make(map[execgraph.NodeID]map[int]bool, len(nodes))
	liveOut := make(map[execgraph.NodeID]map[int]bool, len(nodes))
	for _, n := range nodes {
		liveIn[n.ID()] = map[int]bool{}
		liveOut[n.ID()] = map[int]bool{}
	}

	changed := true
	for changed {
		changed = false
		for i := len(nodes) - 1; i >= 0; i-- {
			n := nodes[i]
			out := map[int]bool{}
			for _, cid := range n.Children() {
				for r := range liveIn[cid] {
					out[r] = true
				}
			}

			in := map[int]bool{}
			for r := range readRegisters(n.Instruction()) {
				in[r] = true
			}
			dest, hasDest := destRegister(n.Instruction())
			for r := range out {
				if hasDest && r == dest {
					continue
				}
				in[r] = true
			}

			if !sameRegisterSet(in, liveIn[n.ID()]) {
				liveIn[n.ID()] = in
				changed = true
			}
			liveOut[n.ID()] = out
		}
	}

	return liveOut
}

func sameRegisterSet(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if !b[r] {
			return false
		}
	}
	return true
}

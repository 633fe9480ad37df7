package optimize

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/execgraph"
)

// PeepholeNopRemover is the late cleanup pass (SPEC_FULL §4.3): it drops
// every nop (including ones DeadAssignmentEliminator produced this run)
// and rewires any instruction that branched to a dropped nop's location
// straight to the nop's own successor, chasing through runs of several
// consecutive dropped nops in one pass.
type PeepholeNopRemover struct{}

func (PeepholeNopRemover) Name() string { return "PeepholeNopRemover" }

func (PeepholeNopRemover) Run(g *execgraph.Graph, method *dex.Method, cm dex.ClassManager) PassResult {
	redirect := map[dex.MethodLocation]dex.MethodLocation{}
	kept := make([]dex.Instruction, 0, len(method.Instructions))

	for _, insn := range method.Instructions {
		nop, ok := insn.(dex.NopInstruction)
		if !ok {
			kept = append(kept, insn)
			continue
		}
		if len(nop.Successors()) != 1 {
			// A dangling nop (no successor, or more than one — never
			// produced by this engine, but not this pass's job to fix)
			// is left in place rather than silently dropped.
			kept = append(kept, insn)
			continue
		}
		redirect[nop.Location()] = nop.Successors()[0]
	}

	if len(redirect) == 0 {
		return PassResult{}
	}

	resolve := func(loc dex.MethodLocation) dex.MethodLocation {
		seen := map[dex.MethodLocation]bool{}
		for {
			next, ok := redirect[loc]
			if !ok || seen[loc] {
				return loc
			}
			seen[loc] = true
			loc = next
		}
	}

	for i, insn := range kept {
		kept[i] = retarget(insn, resolve)
	}

	method.Instructions = kept
	cm.MarkMutated(method)
	return PassResult{MadeChanges: true, ShouldReexecute: true}
}

// retarget rebuilds insn with every successor location passed through
// resolve, preserving its concrete type. Every Instruction variant
// embeds Base by value, so each case just copies the local switch
// binding, overwrites its Base, and returns it.
func retarget(insn dex.Instruction, resolve func(dex.MethodLocation) dex.MethodLocation) dex.Instruction {
	succs := insn.Successors()
	newSuccs := make([]dex.MethodLocation, len(succs))
	for i, s := range succs {
		newSuccs[i] = resolve(s)
	}
	base := dex.Base{Loc: insn.Location(), Succs: newSuccs}

	switch i := insn.(type) {
	case dex.BinaryMathInstruction:
		i.Base = base
		return i
	case dex.UnaryMathInstruction:
		i.Base = base
		return i
	case dex.ConstInstruction:
		i.Base = base
		return i
	case dex.MoveInstruction:
		i.Base = base
		return i
	case dex.ReturnInstruction:
		i.Base = base
		return i
	case dex.ThrowInstruction:
		i.Base = base
		return i
	case dex.GotoInstruction:
		i.Base = base
		return i
	case dex.IfTestInstruction:
		i.Base = base
		return i
	case dex.CmpInstruction:
		i.Base = base
		return i
	case dex.SwitchInstruction:
		i.Base = base
		return i
	case dex.FieldInstruction:
		i.Base = base
		return i
	case dex.NewInstanceInstruction:
		i.Base = base
		return i
	case dex.NewArrayInstruction:
		i.Base = base
		return i
	case dex.ArrayLengthInstruction:
		i.Base = base
		return i
	case dex.ArrayOpInstruction:
		i.Base = base
		return i
	case dex.InstanceOfInstruction:
		i.Base = base
		return i
	case dex.CheckCastInstruction:
		i.Base = base
		return i
	case dex.InvokeInstruction:
		i.Base = base
		return i
	case dex.MonitorInstruction:
		i.Base = base
		return i
	case dex.NopInstruction:
		i.Base = base
		return i
	case dex.FillArrayDataInstruction:
		i.Base = base
		return i
	default:
		return insn
	}
}

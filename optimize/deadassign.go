package optimize

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/execgraph"
)

// DeadAssignmentEliminator replaces an instruction with a nop when its
// destination register is live on no forward path from any node that
// executed it (SPEC_FULL §4.3). Converting to Nop rather than slicing
// the instruction out of the method keeps every other instruction's
// successor locations valid; PeepholeNopRemover physically drops it on
// a later iteration.
type DeadAssignmentEliminator struct{}

func (DeadAssignmentEliminator) Name() string { return "DeadAssignmentEliminator" }

func (DeadAssignmentEliminator) Run(g *execgraph.Graph, method *dex.Method, cm dex.ClassManager) PassResult {
	liveOut := computeLiveOut(g)
	changed := false

	for idx, insn := range method.Instructions {
		if !isPureAssignment(insn) {
			continue
		}
		dest, ok := destRegister(insn)
		if !ok {
			continue
		}

		ids := g.NodesAt(insn.Location())
		if len(ids) == 0 {
			continue
		}

		dead := true
		for _, id := range ids {
			if liveOut[id][dest] {
				dead = false
				break
			}
		}
		if !dead {
			continue
		}

		method.Instructions[idx] = dex.NopInstruction{
			Base: dex.Base{Loc: insn.Location(), Succs: insn.Successors()},
		}
		changed = true
	}

	if changed {
		cm.MarkMutated(method)
	}
	return PassResult{MadeChanges: changed, ShouldReexecute: changed}
}

// isPureAssignment reports whether insn's only effect is writing its
// destination register, making it safe to discard outright once that
// register is known dead — unlike an allocation, a field read, or a call,
// which a real device might still observe indirectly (class init,
// receiver nullness) even with the result unused. An integer/long DIV or
// REM is excluded even though it's a BinaryMathInstruction: per
// opcode/binary.go's binaryResult, those two raise ArithmeticException on
// a zero divisor (float/double DIV/REM never raise, only produce
// Inf/NaN), so discarding one changes observable behavior from "throws"
// to "falls through" regardless of whether the destination is read.
func isPureAssignment(insn dex.Instruction) bool {
	switch i := insn.(type) {
	case dex.BinaryMathInstruction:
		if (i.Op == dex.DIV || i.Op == dex.REM) && (i.Type == dex.OpInt || i.Type == dex.OpLong) {
			return false
		}
		return true
	case dex.UnaryMathInstruction, dex.MoveInstruction,
		dex.CmpInstruction, dex.InstanceOfInstruction, dex.ConstInstruction:
		return true
	default:
		return false
	}
}

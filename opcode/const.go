package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// constOp covers const, const/4, const/16, const-wide*, const-string,
// and const-class: dest = a literal already fully known at verification
// time, so it is always a Concrete HeapItem, never Unknown.
type constOp struct{}

func (constOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.ConstInstruction)
	item := value.NewConcrete(i.Value, i.Type)
	return ms.Assign(i.Dest, item), withLevel(value.NONE, i.Successors()...)
}

package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// moveOp covers move, move/from16, move-wide, move-object. An invoke's
// result register is carried on the InvokeInstruction itself
// (MoveDest/HasResult), and try/catch handlers are not modeled, so there
// is no pending result or exception slot to read: a standalone
// MoveResult/MoveException conservatively assigns Unknown.
type moveOp struct{}

func (moveOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.MoveInstruction)

	var item value.HeapItem
	switch i.Kind {
	case dex.MoveRegister:
		item = ms.Peek(i.Src)
	default:
		item = value.NewUnknown(value.TypeObject)
	}

	return ms.Assign(i.Dest, item), withLevel(value.NONE, i.Successors()...)
}

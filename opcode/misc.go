package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// monitorOp covers monitor-enter/monitor-exit. Neither register state
// nor side effects change from the abstract domain's perspective:
// synchronization is a runtime concern this engine does not model.
type monitorOp struct{}

func (monitorOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	return ms, withLevel(value.NONE, insn.Successors()...)
}

// nopOp covers nop.
type nopOp struct{}

func (nopOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	return ms, withLevel(value.NONE, insn.Successors()...)
}

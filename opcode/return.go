package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// returnOp covers return-void, return, return-wide, and return-object:
// always a terminal node, per invariant I3. The method's outcome is
// whatever HeapItem occupied the returned register, or an explicit void
// Unknown-free marker for return-void.
type returnOp struct{}

func (returnOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.ReturnInstruction)
	if !i.HasValue {
		return ms, terminal(value.NONE, value.NewConcrete(nil, value.TypeVoid))
	}
	return ms, terminal(value.NONE, ms.Peek(i.Src))
}

// throwOp covers throw. The thrown value is reinterpreted as an
// exception if the register doesn't already hold one (e.g. it holds a
// plain ObjectRef constructed by new-instance+invoke-direct <init>, per
// SPEC_FULL §4.1's exceptions-as-values design): the engine doesn't model
// the throwable's declared type hierarchy, so it carries the register's
// declared type forward as the exception kind.
type throwOp struct{}

func (throwOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.ThrowInstruction)
	item := ms.Peek(i.Src)

	if exc, ok := item.Value.(value.VirtualException); ok {
		return ms, raises(value.NONE, value.HeapItem{Value: exc, Type: item.Type})
	}

	return ms, raises(value.NONE, value.NewVirtualException(item.Type, ""))
}

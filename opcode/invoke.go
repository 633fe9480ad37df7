package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// invokeOp covers invoke-virtual/super/direct/static/interface and their
// /range forms. Only the driver can build the callee's ExecutionContext,
// check the call-depth bound, decide between recursing into a local
// method and resolving a reflective "safe" library call, and assign the
// eventual result into MoveDest, so this handler only resolves the
// argument HeapItems from the caller's registers and hands back a
// CallRequest describing what to invoke.
type invokeOp struct{}

func (invokeOp) PrepareCall(insn dex.InvokeInstruction, ctx state.ExecutionContext) CallRequest {
	args := make([]value.HeapItem, len(insn.Args))
	for idx, reg := range insn.Args {
		args[idx] = ctx.Method.Peek(reg)
	}
	return CallRequest{Insn: insn, Args: args}
}

package opcode

import (
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// newInstanceOp is the canonical side-effecting opcode (SPEC_FULL §4.1):
// dest = a fresh UninitializedInstance of ClassName. Three cases, exactly
// NewInstanceOp.java's local/safe/conservative decision:
//
//   - ClassName is local to the analyzed DEX: the instruction's own
//     side-effect level is the aggregate level of the ClassState ctx
//     carries for that class. No part of this engine runs a <clinit>, so
//     that state exists only if an earlier static-field access in the
//     same context chain created it.
//   - ClassName is not local but is declared safe in the operator's
//     catalog: the level is NONE.
//   - ClassName is not local and not declared safe: STRONG, the
//     conservative default for an unknown external allocation — matching
//     NewInstanceOp.java, which only lowers to NONE when isSafe(className).
//
// A local class with no ClassState in ctx falls back to the conservative
// STRONG default rather than silently under-reporting — the register is
// still assigned a concrete UninitializedInstance, since the allocation
// site itself is valid regardless of whether the class's side effects
// could be proven safe.
type newInstanceOp struct{}

func (newInstanceOp) ExecuteContext(insn dex.Instruction, ctx state.ExecutionContext, cm dex.ClassManager, safe *config.SafeList) (state.ExecutionContext, Result) {
	i := insn.(dex.NewInstanceInstruction)
	instance := value.NewUninitialized(i.ClassName)

	level := value.STRONG
	if cm.IsLocal(i.ClassName) {
		if cs, ok := ctx.ClassState(i.ClassName); ok {
			level = cs.Level()
		}
	} else if safe.IsSafe(i.ClassName) {
		level = value.NONE
	}

	ctx.Method = ctx.Method.Assign(i.Dest, instance)
	return ctx, withLevel(level, i.Successors()...)
}

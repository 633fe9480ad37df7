package opcode

import (
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// instanceOfOp covers instance-of: dest = whether Src's runtime type is
// ClassName or a subtype. The engine retains no class hierarchy, so this
// only resolves the two cases it can prove without one: null is never an
// instance of anything, and an exact declared-type match is always one;
// anything else is Unknown, since neither "is a subtype" nor "is not any
// subtype" can be ruled out.
type instanceOfOp struct{}

func (instanceOfOp) ExecuteContext(insn dex.Instruction, ctx state.ExecutionContext, cm dex.ClassManager, safe *config.SafeList) (state.ExecutionContext, Result) {
	i := insn.(dex.InstanceOfInstruction)
	item := ctx.Method.Peek(i.Src)

	switch {
	case item.IsUnknown():
		ctx.Method = ctx.Method.Assign(i.Dest, value.NewUnknown(value.TypeBoolean))
	case isNull(item):
		ctx.Method = ctx.Method.Assign(i.Dest, value.NewConcrete(false, value.TypeBoolean))
	case item.Type == i.ClassName:
		ctx.Method = ctx.Method.Assign(i.Dest, value.NewConcrete(true, value.TypeBoolean))
	default:
		ctx.Method = ctx.Method.Assign(i.Dest, value.NewUnknown(value.TypeBoolean))
	}
	return ctx, withLevel(value.NONE, i.Successors()...)
}

func isNull(item value.HeapItem) bool {
	c, ok := item.Value.(value.Concrete)
	return ok && c.IsNull()
}

// checkCastOp covers check-cast: a verification-time assertion that Src
// is an instance of ClassName, raising ClassCastException when it
// provably is not (a known, non-null, exact declared-type mismatch);
// otherwise it is a pass-through — Src's register, value and declared
// type are all left unchanged.
type checkCastOp struct{}

func (checkCastOp) ExecuteContext(insn dex.Instruction, ctx state.ExecutionContext, cm dex.ClassManager, safe *config.SafeList) (state.ExecutionContext, Result) {
	i := insn.(dex.CheckCastInstruction)
	item := ctx.Method.Peek(i.Src)

	if !item.IsUnknown() && !isNull(item) && item.Type != "" && item.Type != i.ClassName {
		exc := value.NewVirtualException("Ljava/lang/ClassCastException;", item.Type+" cannot be cast to "+i.ClassName)
		return ctx, raises(value.NONE, exc)
	}
	return ctx, withLevel(value.NONE, i.Successors()...)
}

package opcode

import (
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// fieldOp covers sget*/sput*/iget*/iput*. The s-family reads/writes a
// static field of ClassName in the ClassState ctx carries for it,
// creating an empty one on first access (no <clinit> is run); the
// instruction's level is that class's aggregate level, which sput raises
// to at least WEAK. The i-family reads/writes a field on whatever
// ObjectRef occupies the Object register: a concrete null receiver raises
// NullPointerException, and any other receiver that isn't a concrete
// object makes iput a no-op and iget yield Unknown.
type fieldOp struct{}

func (fieldOp) ExecuteContext(insn dex.Instruction, ctx state.ExecutionContext, cm dex.ClassManager, safe *config.SafeList) (state.ExecutionContext, Result) {
	i := insn.(dex.FieldInstruction)
	if i.IsStatic {
		return executeStaticField(i, ctx)
	}
	return executeInstanceField(i, ctx)
}

func executeStaticField(i dex.FieldInstruction, ctx state.ExecutionContext) (state.ExecutionContext, Result) {
	cs, ok := ctx.ClassState(i.ClassName)
	if !ok {
		cs = state.NewClassState(i.ClassName)
	}

	if i.IsPut {
		val := ctx.Method.Peek(i.ValueReg)
		cs = cs.SetField(i.FieldName, val).WithLevel(value.WEAK)
		ctx = ctx.WithClassState(i.ClassName, cs)
		return ctx, withLevel(cs.Level(), i.Successors()...)
	}

	item := cs.GetField(i.FieldName)
	ctx.Method = ctx.Method.Assign(i.ValueReg, item)
	ctx = ctx.WithClassState(i.ClassName, cs)
	return ctx, withLevel(cs.Level(), i.Successors()...)
}

func executeInstanceField(i dex.FieldInstruction, ctx state.ExecutionContext) (state.ExecutionContext, Result) {
	recv := ctx.Method.Peek(i.Object)
	if isNull(recv) {
		return ctx, raises(value.NONE, value.NewVirtualException("Ljava/lang/NullPointerException;", ""))
	}
	obj, ok := asObjectRef(recv)
	if !ok {
		if i.IsPut {
			return ctx, withLevel(value.WEAK, i.Successors()...)
		}
		ctx.Method = ctx.Method.Assign(i.ValueReg, value.NewUnknown(i.FieldType))
		return ctx, withLevel(value.NONE, i.Successors()...)
	}

	if i.IsPut {
		ctx.Method = ctx.Method.Assign(i.Object, withObjectField(recv, obj, i.FieldName, ctx.Method.Peek(i.ValueReg)))
		return ctx, withLevel(value.WEAK, i.Successors()...)
	}

	item, ok := obj.Fields[i.FieldName]
	if !ok {
		item = value.NewUnknown(i.FieldType)
	}
	ctx.Method = ctx.Method.Assign(i.ValueReg, item)
	return ctx, withLevel(value.NONE, i.Successors()...)
}

func asObjectRef(item value.HeapItem) (*value.ObjectRef, bool) {
	c, ok := item.Value.(value.Concrete)
	if !ok {
		return nil, false
	}
	obj, ok := c.Val.(*value.ObjectRef)
	return obj, ok
}

// withObjectField returns a HeapItem wrapping a fresh *ObjectRef with
// field name set to v, copying the field map rather than mutating
// obj.Fields in place — the same cross-branch aliasing concern
// withArrayElement guards against in array.go, since MethodState.Branch
// never deep-copies the heap objects a register's Concrete value points
// to.
func withObjectField(orig value.HeapItem, obj *value.ObjectRef, name string, v value.HeapItem) value.HeapItem {
	fields := make(map[string]value.HeapItem, len(obj.Fields))
	for k, fv := range obj.Fields {
		fields[k] = fv
	}
	fields[name] = v
	next := value.ObjectRef{ClassName: obj.ClassName, Fields: fields}
	return value.HeapItem{Value: value.Conc(&next), Type: orig.Type}
}

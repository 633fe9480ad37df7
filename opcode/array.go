package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// newArrayOp covers new-array: dest = a fresh array of Length elements
// of ElementType, each Unknown. Unlike new-instance, this never triggers
// class initialization (arrays have no <clinit>), so it is a
// MethodStateOp, never needing a ClassManager.
type newArrayOp struct{}

func (newArrayOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.NewArrayInstruction)
	lengthItem := ms.Peek(i.Length)

	var n int
	if !lengthItem.IsUnknown() {
		if v, ok := lengthItem.ConcreteValue(); ok {
			n = int(asInt32(v))
		}
	}
	if n < 0 {
		n = 0
	}

	elems := make([]value.HeapItem, n)
	for idx := range elems {
		elems[idx] = value.NewUnknown(i.ElementType)
	}
	arr := value.ArrayRef{ElementType: i.ElementType, Elements: elems}
	item := value.HeapItem{Value: value.Conc(&arr), Type: "[" + i.ElementType}

	return ms.Assign(i.Dest, item), withLevel(value.NONE, i.Successors()...)
}

// arrayLengthOp covers array-length.
type arrayLengthOp struct{}

func (arrayLengthOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.ArrayLengthInstruction)
	item := ms.Peek(i.Array)

	arr, ok := asArrayRef(item)
	if !ok {
		return ms.Assign(i.Dest, value.NewUnknown(value.TypeInt)), withLevel(value.NONE, i.Successors()...)
	}
	return ms.Assign(i.Dest, value.NewConcrete(int32(len(arr.Elements)), value.TypeInt)), withLevel(value.NONE, i.Successors()...)
}

// arrayOp covers aget*/aput*. An out-of-declared-bounds or Unknown index
// yields Unknown on read and is a no-op on write, rather than raising
// ArrayIndexOutOfBoundsException as a VirtualException — the engine does
// not track array bounds precisely enough to distinguish a genuine
// out-of-bounds access from an index it simply couldn't resolve.
type arrayOp struct{}

func (arrayOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.ArrayOpInstruction)
	arrItem := ms.Peek(i.Array)
	idxItem := ms.Peek(i.Index)

	arr, ok := asArrayRef(arrItem)
	if !ok {
		if i.IsPut {
			return ms, withLevel(value.NONE, i.Successors()...)
		}
		return ms.Assign(i.ValueReg, value.NewUnknown(value.TypeObject)), withLevel(value.NONE, i.Successors()...)
	}

	idx := -1
	if !idxItem.IsUnknown() {
		if v, ok := idxItem.ConcreteValue(); ok {
			idx = int(asInt32(v))
		}
	}
	if idx < 0 || idx >= len(arr.Elements) {
		if i.IsPut {
			return ms, withLevel(value.NONE, i.Successors()...)
		}
		return ms.Assign(i.ValueReg, value.NewUnknown(arr.ElementType)), withLevel(value.NONE, i.Successors()...)
	}

	if i.IsPut {
		return ms.Assign(i.Array, withArrayElement(arrItem, arr, idx, ms.Peek(i.ValueReg))), withLevel(value.NONE, i.Successors()...)
	}
	return ms.Assign(i.ValueReg, arr.Elements[idx]), withLevel(value.NONE, i.Successors()...)
}

// withArrayElement returns a HeapItem wrapping a fresh *ArrayRef with
// element idx replaced, copying the element slice rather than mutating
// arr.Elements in place. MethodState.Branch only structurally shares the
// register file, never the heap objects a register's Concrete value
// points to, so an in-place write through a shared *ArrayRef would leak
// across sibling branches that hold the same pointer via a common
// ancestor register. Reassigning the owning register to a new ArrayRef
// keeps that branch's future reads seeing the write while any other
// branch's copy of the register still sees the original elements.
func withArrayElement(orig value.HeapItem, arr *value.ArrayRef, idx int, v value.HeapItem) value.HeapItem {
	elems := make([]value.HeapItem, len(arr.Elements))
	copy(elems, arr.Elements)
	elems[idx] = v
	next := value.ArrayRef{ElementType: arr.ElementType, Elements: elems}
	return value.HeapItem{Value: value.Conc(&next), Type: orig.Type}
}

// fillArrayDataOp covers fill-array-data: populates Array's elements
// with the compile-time-constant Values table that follows it in the
// bytecode stream. A non-concrete Array register is a no-op.
type fillArrayDataOp struct{}

func (fillArrayDataOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.FillArrayDataInstruction)
	item := ms.Peek(i.Array)

	arr, ok := asArrayRef(item)
	if !ok {
		return ms, withLevel(value.NONE, i.Successors()...)
	}

	elems := make([]value.HeapItem, len(arr.Elements))
	copy(elems, arr.Elements)
	for idx, v := range i.Values {
		if idx >= len(elems) {
			break
		}
		elems[idx] = value.NewConcrete(v, arr.ElementType)
	}
	next := value.ArrayRef{ElementType: arr.ElementType, Elements: elems}
	newItem := value.HeapItem{Value: value.Conc(&next), Type: item.Type}
	return ms.Assign(i.Array, newItem), withLevel(value.NONE, i.Successors()...)
}

func asArrayRef(item value.HeapItem) (*value.ArrayRef, bool) {
	c, ok := item.Value.(value.Concrete)
	if !ok {
		return nil, false
	}
	arr, ok := c.Val.(*value.ArrayRef)
	return arr, ok
}

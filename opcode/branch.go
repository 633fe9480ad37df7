package opcode

import (
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// gotoOp covers goto/goto-16/goto-32: a single, always-taken successor.
type gotoOp struct{}

func (gotoOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	return ms, withLevel(value.NONE, insn.Successors()...)
}

// ifTestOp covers if-eq/if-ne/if-lt/if-ge/if-gt/if-le and their
// if-*z zero-compare counterparts. When both operands are known, exactly
// one successor is taken; when either is Unknown, both are live and the
// driver must explore both (the lattice-sound over-approximation of a
// branch it cannot resolve).
type ifTestOp struct{}

func (ifTestOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.IfTestInstruction)
	lhsItem := ms.Peek(i.Lhs)

	var rhsVal int32
	if i.IsZeroTest {
		rhsVal = 0
	} else {
		rhsItem := ms.Peek(i.Rhs)
		if rhsItem.IsUnknown() {
			return ms, withLevel(value.NONE, insn.Successors()...)
		}
		v, ok := rhsItem.ConcreteValue()
		if !ok {
			return ms, withLevel(value.NONE, insn.Successors()...)
		}
		rhsVal = asInt32(v)
	}

	if lhsItem.IsUnknown() {
		return ms, withLevel(value.NONE, insn.Successors()...)
	}
	lv, ok := lhsItem.ConcreteValue()
	if !ok {
		return ms, withLevel(value.NONE, insn.Successors()...)
	}
	lhsVal := asInt32(lv)

	taken := testHolds(i.Test, lhsVal, rhsVal)
	succs := insn.Successors()
	idx := i.NotTaken
	if taken {
		idx = i.Taken
	}
	return ms, withLevel(value.NONE, succs[idx])
}

func testHolds(t dex.IfTest, lhs, rhs int32) bool {
	switch t {
	case dex.IfEq:
		return lhs == rhs
	case dex.IfNe:
		return lhs != rhs
	case dex.IfLt:
		return lhs < rhs
	case dex.IfGe:
		return lhs >= rhs
	case dex.IfGt:
		return lhs > rhs
	default:
		return lhs <= rhs
	}
}

// cmpOp covers cmp-long, cmpg-float, cmpl-float, cmpg-double, and
// cmpl-double: dest = -1/0/1 by operand ordering. The cmpg/cmpl pair
// differ only in how they treat a NaN operand: cmpg-* yields 1 (so the
// compiler-emitted if-gt-after-cmp treats NaN as "greater", matching the
// Java language's `a > b` being false for any NaN-involving comparison),
// cmpl-* yields -1.
type cmpOp struct{}

func (cmpOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.CmpInstruction)
	lhs := ms.Peek(i.Lhs)
	rhs := ms.Peek(i.Rhs)

	if lhs.IsUnknown() || rhs.IsUnknown() {
		return ms.Assign(i.Dest, value.NewUnknown(value.TypeInt)), withLevel(value.NONE, i.Successors()...)
	}
	lv, lok := lhs.ConcreteValue()
	rv, rok := rhs.ConcreteValue()
	if !lok || !rok {
		return ms.Assign(i.Dest, value.NewUnknown(value.TypeInt)), withLevel(value.NONE, i.Successors()...)
	}

	var result int32
	switch i.Kind {
	case dex.CmpLong:
		result = cmp3(asInt64(lv), asInt64(rv))
	case dex.CmpgFloat:
		result = cmpFloatG(asFloat32(lv), asFloat32(rv))
	case dex.CmplFloat:
		result = cmpFloatL(asFloat32(lv), asFloat32(rv))
	case dex.CmpgDouble:
		result = cmpDoubleG(asFloat64(lv), asFloat64(rv))
	default:
		result = cmpDoubleL(asFloat64(lv), asFloat64(rv))
	}

	return ms.Assign(i.Dest, value.NewConcrete(result, value.TypeInt)), withLevel(value.NONE, i.Successors()...)
}

func cmp3[T int64 | float64](l, r T) int32 {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func cmpFloatG(l, r float32) int32 {
	if l != l || r != r {
		return 1
	}
	return cmp3(float64(l), float64(r))
}

func cmpFloatL(l, r float32) int32 {
	if l != l || r != r {
		return -1
	}
	return cmp3(float64(l), float64(r))
}

func cmpDoubleG(l, r float64) int32 {
	if l != l || r != r {
		return 1
	}
	return cmp3(l, r)
}

func cmpDoubleL(l, r float64) int32 {
	if l != l || r != r {
		return -1
	}
	return cmp3(l, r)
}

// switchOp covers packed-switch and sparse-switch: Keys[i] maps to
// Successors()[i], and the final Successors() entry is the default. An
// Unknown switch value must explore every branch, default included.
type switchOp struct{}

func (switchOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	i := insn.(dex.SwitchInstruction)
	item := ms.Peek(i.Src)

	if item.IsUnknown() {
		return ms, withLevel(value.NONE, insn.Successors()...)
	}
	v, ok := item.ConcreteValue()
	if !ok {
		return ms, withLevel(value.NONE, insn.Successors()...)
	}
	key := asInt32(v)

	succs := insn.Successors()
	for idx, k := range i.Keys {
		if k == key {
			return ms, withLevel(value.NONE, succs[idx])
		}
	}
	return ms, withLevel(value.NONE, succs[len(succs)-1])
}

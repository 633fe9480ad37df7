package opcode

import (
	"math"

	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// mathOp runs both BinaryMathInstruction and UnaryMathInstruction: the
// canonical pure opcode family (SPEC_FULL §4.1). Dispatch is by operand
// type first, then by operator, mirroring ops/binary.go's
// dispatch-by-Go-type switch rather than a table of opcode strings.
type mathOp struct{}

func (mathOp) ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result) {
	switch i := insn.(type) {
	case dex.BinaryMathInstruction:
		return evalBinary(i, ms)
	case dex.UnaryMathInstruction:
		return evalUnary(i, ms)
	}
	return ms, withLevel(value.NONE, insn.Successors()...)
}

func evalBinary(i dex.BinaryMathInstruction, ms state.MethodState) (state.MethodState, Result) {
	var lhs value.HeapItem
	if i.Lhs.IsLiteral {
		lhs = value.NewConcrete(int32(i.Lhs.Literal), value.TypeInt)
	} else {
		lhs = ms.Peek(i.Lhs.Register)
	}
	var rhs value.HeapItem
	if i.Rhs.IsLiteral {
		rhs = value.NewConcrete(int32(i.Rhs.Literal), value.TypeInt)
	} else {
		rhs = ms.Peek(i.Rhs.Register)
	}

	declType := mathDeclaredType(i.Type)

	if lhs.IsUnknown() || rhs.IsUnknown() {
		return ms.Assign(i.Dest, value.NewUnknown(declType)), withLevel(value.NONE, i.Successors()...)
	}

	lv, lok := lhs.ConcreteValue()
	rv, rok := rhs.ConcreteValue()
	if !lok || !rok {
		return ms.Assign(i.Dest, value.NewUnknown(declType)), withLevel(value.NONE, i.Successors()...)
	}

	result, exc := binaryResult(i.Type, i.Op, lv, rv)
	if exc != nil {
		return ms, raises(value.NONE, *exc)
	}

	return ms.Assign(i.Dest, value.NewConcrete(result, declType)), withLevel(value.NONE, i.Successors()...)
}

func evalUnary(i dex.UnaryMathInstruction, ms state.MethodState) (state.MethodState, Result) {
	src := ms.Peek(i.Src)
	declType := mathDeclaredType(i.ToType)

	if src.IsUnknown() {
		return ms.Assign(i.Dest, value.NewUnknown(declType)), withLevel(value.NONE, i.Successors()...)
	}
	v, ok := src.ConcreteValue()
	if !ok {
		return ms.Assign(i.Dest, value.NewUnknown(declType)), withLevel(value.NONE, i.Successors()...)
	}

	var result any
	switch i.Op {
	case dex.NEG:
		result = negate(i.FromType, v)
	case dex.NOT:
		result = bitwiseNot(i.FromType, v)
	default:
		result = convert(i.FromType, i.ToType, v)
	}

	return ms.Assign(i.Dest, value.NewConcrete(result, declType)), withLevel(value.NONE, i.Successors()...)
}

func mathDeclaredType(t dex.OperandType) string {
	switch t {
	case dex.OpLong:
		return value.TypeLong
	case dex.OpFloat:
		return value.TypeFloat
	case dex.OpDouble:
		return value.TypeDouble
	default:
		return value.TypeInt
	}
}

// binaryResult computes the Dalvik binary-math result for already-known
// operands, or returns a non-nil exception for integer/long division or
// remainder by zero — float/double DIV/REM by zero produce the IEEE
// Inf/NaN result instead, per the language's floating-point semantics,
// so only the integer paths ever raise.
func binaryResult(t dex.OperandType, op dex.ArithOp, lhs, rhs any) (any, *value.HeapItem) {
	switch t {
	case dex.OpInt:
		l, r := asInt32(lhs), asInt32(rhs)
		if (op == dex.DIV || op == dex.REM) && r == 0 {
			exc := value.NewVirtualException("Ljava/lang/ArithmeticException;", "/ by zero")
			return nil, &exc
		}
		return intBinOp(op, l, r), nil
	case dex.OpLong:
		l, r := asInt64(lhs), asInt64(rhs)
		if (op == dex.DIV || op == dex.REM) && r == 0 {
			exc := value.NewVirtualException("Ljava/lang/ArithmeticException;", "/ by zero")
			return nil, &exc
		}
		return longBinOp(op, l, r), nil
	case dex.OpFloat:
		l, r := asFloat32(lhs), asFloat32(rhs)
		return floatBinOp(op, l, r), nil
	default:
		l, r := asFloat64(lhs), asFloat64(rhs)
		return doubleBinOp(op, l, r), nil
	}
}

func intBinOp(op dex.ArithOp, l, r int32) int32 {
	switch op {
	case dex.ADD:
		return l + r
	case dex.SUB:
		return l - r
	case dex.RSUB:
		return r - l
	case dex.MUL:
		return l * r
	case dex.DIV:
		return l / r
	case dex.REM:
		return l % r
	case dex.AND:
		return l & r
	case dex.OR:
		return l | r
	case dex.XOR:
		return l ^ r
	case dex.SHL:
		return l << (uint32(r) & 0x1f)
	case dex.SHR:
		return l >> (uint32(r) & 0x1f)
	case dex.USHR:
		return int32(uint32(l) >> (uint32(r) & 0x1f))
	default:
		return 0
	}
}

func longBinOp(op dex.ArithOp, l, r int64) int64 {
	switch op {
	case dex.ADD:
		return l + r
	case dex.SUB:
		return l - r
	case dex.MUL:
		return l * r
	case dex.DIV:
		return l / r
	case dex.REM:
		return l % r
	case dex.AND:
		return l & r
	case dex.OR:
		return l | r
	case dex.XOR:
		return l ^ r
	case dex.SHL:
		return l << (uint64(r) & 0x3f)
	case dex.SHR:
		return l >> (uint64(r) & 0x3f)
	case dex.USHR:
		return int64(uint64(l) >> (uint64(r) & 0x3f))
	default:
		return 0
	}
}

func floatBinOp(op dex.ArithOp, l, r float32) float32 {
	switch op {
	case dex.ADD:
		return l + r
	case dex.SUB:
		return l - r
	case dex.MUL:
		return l * r
	case dex.DIV:
		return l / r
	case dex.REM:
		return float32(math.Mod(float64(l), float64(r)))
	default:
		return 0
	}
}

func doubleBinOp(op dex.ArithOp, l, r float64) float64 {
	switch op {
	case dex.ADD:
		return l + r
	case dex.SUB:
		return l - r
	case dex.MUL:
		return l * r
	case dex.DIV:
		return l / r
	case dex.REM:
		return math.Mod(l, r)
	default:
		return 0
	}
}

func negate(t dex.OperandType, v any) any {
	switch t {
	case dex.OpLong:
		return -asInt64(v)
	case dex.OpFloat:
		return -asFloat32(v)
	case dex.OpDouble:
		return -asFloat64(v)
	default:
		return -asInt32(v)
	}
}

func bitwiseNot(t dex.OperandType, v any) any {
	if t == dex.OpLong {
		return ^asInt64(v)
	}
	return ^asInt32(v)
}

// convert implements the Dalvik numeric-conversion family
// (int-to-long, long-to-float, double-to-int, ...): from is the source
// operand's runtime type, to is the destination's.
func convert(from, to dex.OperandType, v any) any {
	switch from {
	case dex.OpLong:
		l := asInt64(v)
		switch to {
		case dex.OpInt:
			return int32(l)
		case dex.OpFloat:
			return float32(l)
		case dex.OpDouble:
			return float64(l)
		default:
			return l
		}
	case dex.OpFloat:
		f := asFloat32(v)
		switch to {
		case dex.OpInt:
			return int32(f)
		case dex.OpLong:
			return int64(f)
		case dex.OpDouble:
			return float64(f)
		default:
			return f
		}
	case dex.OpDouble:
		d := asFloat64(v)
		switch to {
		case dex.OpInt:
			return int32(d)
		case dex.OpLong:
			return int64(d)
		case dex.OpFloat:
			return float32(d)
		default:
			return d
		}
	default:
		i := asInt32(v)
		switch to {
		case dex.OpLong:
			return int64(i)
		case dex.OpFloat:
			return float32(i)
		case dex.OpDouble:
			return float64(i)
		default:
			return i
		}
	}
}

func asInt32(v any) int32 {
	switch n := v.(type) {
	case int32:
		return n
	case int64:
		return int32(n)
	case float32:
		return int32(n)
	case float64:
		return int32(n)
	default:
		return 0
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat32(v any) float32 {
	switch n := v.(type) {
	case int32:
		return float32(n)
	case int64:
		return float32(n)
	case float32:
		return n
	case float64:
		return float32(n)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

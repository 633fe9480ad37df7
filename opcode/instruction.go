// Package opcode implements the execution semantics of every Dalvik
// instruction shape defined in dex.Instruction. Handlers are grouped by
// the capability they need, rather than by subclassing a common base as
// the source engine does: register-only handlers implement
// MethodStateOp, handlers that may touch static-field/class-init state
// implement ExecutionContextOp, and the one family that must hand
// control back to the driver (to recurse into a callee) implements
// InvokeOp. Dispatch type-switches an instruction onto its concrete Go
// type and returns the handler instance that knows how to run it.
package opcode

import (
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

// Result is everything a handler reports back about one instruction's
// execution: the side-effect level it incurred, the successor locations
// actually taken (a subset of insn.Successors(), since a handler picks
// the live branch of an if-test/switch/exception edge), an exception it
// raised, and — for return/throw — the method-level outcome.
type Result struct {
	Level     value.Level
	Next      []dex.MethodLocation
	Exception *value.HeapItem
	Terminal  *value.HeapItem
}

// withLevel is a small constructor helper every handler uses to build a
// non-exceptional, non-terminal Result that merely continues to next.
func withLevel(level value.Level, next ...dex.MethodLocation) Result {
	return Result{Level: level, Next: next}
}

func raises(level value.Level, exc value.HeapItem) Result {
	return Result{Level: level, Exception: &exc}
}

func terminal(level value.Level, outcome value.HeapItem) Result {
	return Result{Level: level, Terminal: &outcome}
}

// MethodStateOp is implemented by handlers whose behavior depends only
// on the current register file: arithmetic, moves, consts, comparisons,
// branches, array element access, monitor/nop. It never needs to
// resolve a class, so it cannot trigger <clinit>.
type MethodStateOp interface {
	ExecuteState(insn dex.Instruction, ms state.MethodState) (state.MethodState, Result)
}

// ExecutionContextOp is implemented by handlers that may need to read or
// initialize class state: sget*/sput*, new-instance, instance-of, and
// check-cast (the latter two only to decide local-vs-safe, not to run
// <clinit>, but they still need the ClassManager). safe is threaded
// through so a handler can consult the operator's safe-class catalog
// (new-instance on a non-local class needs it to decide NONE vs. STRONG).
type ExecutionContextOp interface {
	ExecuteContext(insn dex.Instruction, ctx state.ExecutionContext, cm dex.ClassManager, safe *config.SafeList) (state.ExecutionContext, Result)
}

// CallRequest is what an InvokeOp hands back instead of performing the
// call itself: only the VM driver can build a callee ExecutionContext,
// check the call-depth bound, and run the callee's own execution graph,
// so the handler just describes the call.
type CallRequest struct {
	Insn      dex.InvokeInstruction
	Args      []value.HeapItem
}

// InvokeOp is implemented by invoke-*: it resolves the argument list from
// the caller's registers and hands back a CallRequest for the driver.
type InvokeOp interface {
	PrepareCall(insn dex.InvokeInstruction, ctx state.ExecutionContext) CallRequest
}

// Dispatch type-switches insn onto its concrete Go type and returns the
// handler that can run it, as one of MethodStateOp, ExecutionContextOp,
// or InvokeOp — at most one of the three return values is non-nil, and
// all three are nil for an instruction type with no handler.
func Dispatch(insn dex.Instruction) (MethodStateOp, ExecutionContextOp, InvokeOp) {
	switch insn.(type) {
	case dex.BinaryMathInstruction, dex.UnaryMathInstruction:
		return mathOp{}, nil, nil
	case dex.ConstInstruction:
		return constOp{}, nil, nil
	case dex.MoveInstruction:
		return moveOp{}, nil, nil
	case dex.ReturnInstruction:
		return returnOp{}, nil, nil
	case dex.ThrowInstruction:
		return throwOp{}, nil, nil
	case dex.GotoInstruction:
		return gotoOp{}, nil, nil
	case dex.IfTestInstruction:
		return ifTestOp{}, nil, nil
	case dex.CmpInstruction:
		return cmpOp{}, nil, nil
	case dex.SwitchInstruction:
		return switchOp{}, nil, nil
	case dex.NewArrayInstruction:
		return newArrayOp{}, nil, nil
	case dex.ArrayLengthInstruction:
		return arrayLengthOp{}, nil, nil
	case dex.ArrayOpInstruction:
		return arrayOp{}, nil, nil
	case dex.FillArrayDataInstruction:
		return fillArrayDataOp{}, nil, nil
	case dex.MonitorInstruction:
		return monitorOp{}, nil, nil
	case dex.NopInstruction:
		return nopOp{}, nil, nil
	case dex.FieldInstruction:
		return nil, fieldOp{}, nil
	case dex.NewInstanceInstruction:
		return nil, newInstanceOp{}, nil
	case dex.InstanceOfInstruction:
		return nil, instanceOfOp{}, nil
	case dex.CheckCastInstruction:
		return nil, checkCastOp{}, nil
	case dex.InvokeInstruction:
		return nil, nil, invokeOp{}
	default:
		return nil, nil, nil
	}
}

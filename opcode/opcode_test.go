package opcode

import (
	"testing"

	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

type fakeClassManager struct {
	local map[string]bool
}

func (f fakeClassManager) ClassNames() []string { return nil }
func (f fakeClassManager) Class(name string) (*dex.Class, bool) { return nil, false }
func (f fakeClassManager) IsLocal(name string) bool { return f.local[name] }
func (f fakeClassManager) Builder() dex.Builder { return nil }
func (f fakeClassManager) MarkMutated(m *dex.Method) {}

func TestBinaryMathAddConcrete(t *testing.T) {
	ms := state.NewMethodState(3)
	ms = ms.Assign(0, value.NewConcrete(int32(2), value.TypeInt))
	ms = ms.Assign(1, value.NewConcrete(int32(3), value.TypeInt))

	insn := dex.BinaryMathInstruction{
		Base: dex.Base{Loc: dex.MethodLocation{Index: 0}, Succs: []dex.MethodLocation{{Index: 1}}},
		Mnem: "add-int", Op: dex.ADD, Type: dex.OpInt, Dest: 2, Lhs: dex.Reg(0), Rhs: dex.Reg(1),
	}

	out, res := mathOp{}.ExecuteState(insn, ms)
	got := out.Peek(2)
	v, ok := got.ConcreteValue()
	if !ok || v != int32(5) {
		t.Fatalf("expected 5, got %v (ok=%v)", v, ok)
	}
	if len(res.Next) != 1 || res.Next[0] != (dex.MethodLocation{Index: 1}) {
		t.Fatalf("expected single successor, got %v", res.Next)
	}
}

func TestBinaryMathDivByZeroRaises(t *testing.T) {
	ms := state.NewMethodState(3)
	ms = ms.Assign(0, value.NewConcrete(int32(10), value.TypeInt))
	ms = ms.Assign(1, value.NewConcrete(int32(0), value.TypeInt))

	insn := dex.BinaryMathInstruction{
		Base: dex.Base{Loc: dex.MethodLocation{Index: 0}},
		Mnem: "div-int", Op: dex.DIV, Type: dex.OpInt, Dest: 2, Lhs: dex.Reg(0), Rhs: dex.Reg(1),
	}

	_, res := mathOp{}.ExecuteState(insn, ms)
	if res.Exception == nil {
		t.Fatalf("expected an exception for division by zero")
	}
	if res.Exception.Value.(value.VirtualException).Kind != "Ljava/lang/ArithmeticException;" {
		t.Fatalf("expected ArithmeticException, got %v", res.Exception.Value)
	}
}

func TestBinaryMathUnknownOperandPropagates(t *testing.T) {
	ms := state.NewMethodState(3)
	ms = ms.Assign(0, value.NewConcrete(int32(10), value.TypeInt))

	insn := dex.BinaryMathInstruction{
		Base: dex.Base{Loc: dex.MethodLocation{Index: 0}},
		Mnem: "add-int", Op: dex.ADD, Type: dex.OpInt, Dest: 2, Lhs: dex.Reg(0), Rhs: dex.Reg(1),
	}

	out, res := mathOp{}.ExecuteState(insn, ms)
	if !out.Peek(2).IsUnknown() {
		t.Fatalf("expected Unknown result when an operand is Unknown")
	}
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %v", res.Exception)
	}
}

func TestNewInstanceLocalReadsClassLevel(t *testing.T) {
	ctx := state.NewExecutionContext(1)
	cs := state.NewClassState("Lcom/app/Foo;").WithLevel(value.STRONG)
	ctx = ctx.WithClassState("Lcom/app/Foo;", cs)

	cm := fakeClassManager{local: map[string]bool{"Lcom/app/Foo;": true}}
	insn := dex.NewInstanceInstruction{Base: dex.Base{Loc: dex.MethodLocation{Index: 0}}, Dest: 0, ClassName: "Lcom/app/Foo;"}

	safe := config.NewSafeList(false)
	newCtx, res := newInstanceOp{}.ExecuteContext(insn, ctx, cm, safe)
	if res.Level != value.STRONG {
		t.Fatalf("expected STRONG level read off the class's state, got %v", res.Level)
	}
	item := newCtx.Method.Peek(0)
	if _, ok := item.Value.(value.UninitializedInstance); !ok {
		t.Fatalf("expected an UninitializedInstance, got %T", item.Value)
	}
}

func TestNewInstanceLocalMissingClassStateFallsBackStrong(t *testing.T) {
	ctx := state.NewExecutionContext(1)
	cm := fakeClassManager{local: map[string]bool{"Lcom/app/Bar;": true}}
	insn := dex.NewInstanceInstruction{Base: dex.Base{Loc: dex.MethodLocation{Index: 0}}, Dest: 0, ClassName: "Lcom/app/Bar;"}

	safe := config.NewSafeList(false)
	newCtx, res := newInstanceOp{}.ExecuteContext(insn, ctx, cm, safe)
	if res.Level != value.STRONG {
		t.Fatalf("expected conservative STRONG when a local class's state is missing, got %v", res.Level)
	}
	item := newCtx.Method.Peek(0)
	if _, ok := item.Value.(value.UninitializedInstance); !ok {
		t.Fatalf("expected the register still assigned an UninitializedInstance, got %T", item.Value)
	}
}

func TestNewInstanceNonLocalSafeIsNone(t *testing.T) {
	ctx := state.NewExecutionContext(1)
	cm := fakeClassManager{}
	insn := dex.NewInstanceInstruction{Base: dex.Base{Loc: dex.MethodLocation{Index: 0}}, Dest: 0, ClassName: "Ljava/lang/String;"}

	safe := config.NewSafeList(false)
	_, res := newInstanceOp{}.ExecuteContext(insn, ctx, cm, safe)
	if res.Level != value.NONE {
		t.Fatalf("expected NONE level for a non-local, catalog-safe class, got %v", res.Level)
	}
}

func TestNewInstanceNonLocalUnsafeIsStrong(t *testing.T) {
	ctx := state.NewExecutionContext(1)
	cm := fakeClassManager{}
	insn := dex.NewInstanceInstruction{Base: dex.Base{Loc: dex.MethodLocation{Index: 0}}, Dest: 0, ClassName: "Lcom/unknown/Widget;"}

	safe := config.NewSafeList(false)
	_, res := newInstanceOp{}.ExecuteContext(insn, ctx, cm, safe)
	if res.Level != value.STRONG {
		t.Fatalf("expected conservative STRONG for a non-local, non-catalog class, got %v", res.Level)
	}
}

func TestIfTestBothConcreteTakesOneBranch(t *testing.T) {
	ms := state.NewMethodState(2)
	ms = ms.Assign(0, value.NewConcrete(int32(5), value.TypeInt))
	ms = ms.Assign(1, value.NewConcrete(int32(5), value.TypeInt))

	taken := dex.MethodLocation{Index: 10}
	notTaken := dex.MethodLocation{Index: 20}
	insn := dex.IfTestInstruction{
		Base:     dex.Base{Loc: dex.MethodLocation{Index: 0}, Succs: []dex.MethodLocation{taken, notTaken}},
		Test:     dex.IfEq,
		Lhs:      0, Rhs: 1,
		Taken:    0, NotTaken: 1,
	}

	_, res := ifTestOp{}.ExecuteState(insn, ms)
	if len(res.Next) != 1 || res.Next[0] != taken {
		t.Fatalf("expected only the taken branch, got %v", res.Next)
	}
}

func TestIfTestUnknownExploresBothBranches(t *testing.T) {
	ms := state.NewMethodState(2)
	ms = ms.Assign(0, value.NewConcrete(int32(5), value.TypeInt))

	succs := []dex.MethodLocation{{Index: 10}, {Index: 20}}
	insn := dex.IfTestInstruction{
		Base:     dex.Base{Loc: dex.MethodLocation{Index: 0}, Succs: succs},
		Test:     dex.IfEq,
		Lhs:      0, Rhs: 1,
		Taken:    0, NotTaken: 1,
	}

	_, res := ifTestOp{}.ExecuteState(insn, ms)
	if len(res.Next) != 2 {
		t.Fatalf("expected both branches when an operand is Unknown, got %v", res.Next)
	}
}

func TestDispatchReturnsExactlyOneHandler(t *testing.T) {
	m, c, iv := Dispatch(dex.BinaryMathInstruction{})
	if m == nil || c != nil || iv != nil {
		t.Fatalf("expected only MethodStateOp for BinaryMathInstruction")
	}

	m, c, iv = Dispatch(dex.NewInstanceInstruction{})
	if m != nil || c == nil || iv != nil {
		t.Fatalf("expected only ExecutionContextOp for NewInstanceInstruction")
	}

	m, c, iv = Dispatch(dex.InvokeInstruction{})
	if m != nil || c != nil || iv == nil {
		t.Fatalf("expected only InvokeOp for InvokeInstruction")
	}
}

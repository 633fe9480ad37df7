package optimize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/k5h4tr1y4/simplify/cache"
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/vm"
)

type goldenClassManager struct{}

func (goldenClassManager) ClassNames() []string           { return nil }
func (goldenClassManager) Class(string) (*dex.Class, bool) { return nil, false }
func (goldenClassManager) IsLocal(string) bool            { return false }
func (goldenClassManager) Builder() dex.Builder           { return nil }
func (goldenClassManager) MarkMutated(*dex.Method)        {}

func newGoldenPipeline() (*vm.Driver, *Pipeline, dex.ClassManager) {
	cm := goldenClassManager{}
	safe := config.NewSafeList(false)
	c, err := cache.New()
	if err != nil {
		panic(err)
	}
	bounds := config.DefaultBounds()
	driver := vm.NewDriver(cm, safe, c, bounds)
	return driver, NewPipeline(bounds), cm
}

func disassemble(method *dex.Method) string {
	var b strings.Builder
	for _, insn := range method.Instructions {
		fmt.Fprintf(&b, "%04d: %s\n", insn.Location().Offset, insn.Mnemonic())
	}
	return b.String()
}

// TestOptimizeConstantFold mirrors SPEC_FULL's `int f(){ return 2+3; }`
// example: ConstantPropagator folds the literal add into a const,
// leaving nothing for any other pass to do.
func TestOptimizeConstantFold(t *testing.T) {
	method := &dex.Method{
		RegisterCount: 1,
		Instructions: []dex.Instruction{
			dex.BinaryMathInstruction{
				Base: dex.Base{Loc: dex.MethodLocation{Index: 0, Offset: 0}, Succs: []dex.MethodLocation{{Index: 1, Offset: 2}}},
				Mnem: "add-int/lit8", Op: dex.ADD, Type: dex.OpInt,
				Dest: 0, Lhs: dex.Lit(2), Rhs: dex.Lit(3),
			},
			dex.ReturnInstruction{
				Base:     dex.Base{Loc: dex.MethodLocation{Index: 1, Offset: 2}},
				Mnem:     "return",
				HasValue: true,
				Src:      0,
			},
		},
	}

	driver, pipeline, cm := newGoldenPipeline()
	_, summary, err := pipeline.Optimize(driver, method, cm, state.NewExecutionContext(method.RegisterCount))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Iterations == 0 {
		t.Fatalf("expected at least one iteration")
	}

	goldie.New(t).Assert(t, t.Name(), []byte(disassemble(method)))
}

// TestOptimizeUnreachableBranch mirrors SPEC_FULL's
// `int g(int x){ if (1==1) return 7; else return x; }` example: the
// condition resolves deterministically to true, so UnreachableBranchRemover
// collapses the if-test to a goto, DeadAssignmentEliminator then finds the
// two comparison operands dead, and PeepholeNopRemover drops them.
func TestOptimizeUnreachableBranch(t *testing.T) {
	loc := func(i int, off uint32) dex.MethodLocation { return dex.MethodLocation{Index: i, Offset: off} }
	l0, l2, l4, l6, l8, l10 := loc(0, 0), loc(1, 2), loc(2, 4), loc(3, 6), loc(4, 8), loc(5, 10)

	method := &dex.Method{
		RegisterCount: 4,
		Instructions: []dex.Instruction{
			dex.ConstInstruction{Base: dex.Base{Loc: l0, Succs: []dex.MethodLocation{l2}}, Mnem: "const", Dest: 1, Type: "I", Value: int32(1)},
			dex.ConstInstruction{Base: dex.Base{Loc: l2, Succs: []dex.MethodLocation{l4}}, Mnem: "const", Dest: 2, Type: "I", Value: int32(1)},
			dex.IfTestInstruction{
				Base: dex.Base{Loc: l4, Succs: []dex.MethodLocation{l6, l10}},
				Mnem: "if-eq", Test: dex.IfEq, Lhs: 1, Rhs: 2, Taken: 0, NotTaken: 1,
			},
			dex.ConstInstruction{Base: dex.Base{Loc: l6, Succs: []dex.MethodLocation{l8}}, Mnem: "const", Dest: 0, Type: "I", Value: int32(7)},
			dex.ReturnInstruction{Base: dex.Base{Loc: l8}, Mnem: "return", HasValue: true, Src: 0},
			dex.ReturnInstruction{Base: dex.Base{Loc: l10}, Mnem: "return", HasValue: true, Src: 3},
		},
	}

	driver, pipeline, cm := newGoldenPipeline()
	_, summary, err := pipeline.Optimize(driver, method, cm, state.NewExecutionContext(method.RegisterCount))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Iterations < 2 {
		t.Fatalf("expected the branch collapse and the dead-assignment cleanup to each take an iteration, got %d", summary.Iterations)
	}

	goldie.New(t).Assert(t, t.Name(), []byte(disassemble(method)))
}

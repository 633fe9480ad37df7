package vm

import (
	"testing"

	"github.com/k5h4tr1y4/simplify/cache"
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/errs"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

type fakeClassManager struct {
	local   map[string]bool
	classes map[string]*dex.Class
}

func (f fakeClassManager) ClassNames() []string { return nil }
func (f fakeClassManager) Class(name string) (*dex.Class, bool) {
	c, ok := f.classes[name]
	return c, ok
}
func (f fakeClassManager) IsLocal(name string) bool    { return f.local[name] }
func (f fakeClassManager) Builder() dex.Builder        { return nil }
func (f fakeClassManager) MarkMutated(m *dex.Method)   {}

func newDriver() *Driver {
	cm := fakeClassManager{local: map[string]bool{}, classes: map[string]*dex.Class{}}
	safe := config.NewSafeList(false)
	c, err := cache.New()
	if err != nil {
		panic(err)
	}
	return NewDriver(cm, safe, c, config.DefaultBounds())
}

func TestDriveEmptyMethodReturnVoid(t *testing.T) {
	method := &dex.Method{
		RegisterCount: 1,
		Instructions: []dex.Instruction{
			dex.ReturnInstruction{
				Base: dex.Base{Loc: dex.MethodLocation{Index: 0, Offset: 0}},
				Mnem: "return-void",
			},
		},
	}

	d := newDriver()
	g, err := d.Drive(method, state.NewExecutionContext(method.RegisterCount))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected a single-node graph, got %d nodes", g.NodeCount())
	}
	terms := g.TerminalNodes()
	if len(terms) != 1 {
		t.Fatalf("expected one terminal node, got %d", len(terms))
	}
	if _, ok := terms[0].Result(); !ok {
		t.Fatalf("expected the return node to record a result")
	}
}

// TestDriveUnknownDiamondsHitAddressVisitBound chains two forward-only
// "explore both branches on an Unknown condition" diamonds that reconverge
// downstream (L1/L2 -> L3, then L4/L5 -> L6). Since none of these branches
// point backward, loopHeaderSet never marks L6 a loop header, so the
// driver clones rather than merges at it (the non-loop re-arrival policy
// decided in DESIGN.md) — four distinct paths reach L6, so a
// MaxAddressVisits of 3 must fail on the fourth.
func TestDriveUnknownDiamondsHitAddressVisitBound(t *testing.T) {
	loc := func(i int) dex.MethodLocation { return dex.MethodLocation{Index: i, Offset: uint32(i * 2)} }
	l0, l1, l2, l3, l4, l5, l6 := loc(0), loc(1), loc(2), loc(3), loc(4), loc(5), loc(6)

	zeroIf := func(here dex.MethodLocation, succs []dex.MethodLocation) dex.IfTestInstruction {
		return dex.IfTestInstruction{
			Base:       dex.Base{Loc: here, Succs: succs},
			Mnem:       "if-eqz",
			Test:       dex.IfEq,
			IsZeroTest: true,
			Lhs:        0,
			Taken:      0,
			NotTaken:   1,
		}
	}
	gotoTo := func(here, target dex.MethodLocation) dex.GotoInstruction {
		return dex.GotoInstruction{Base: dex.Base{Loc: here, Succs: []dex.MethodLocation{target}}, Mnem: "goto"}
	}

	method := &dex.Method{
		RegisterCount: 1,
		Instructions: []dex.Instruction{
			zeroIf(l0, []dex.MethodLocation{l1, l2}),
			gotoTo(l1, l3),
			gotoTo(l2, l3),
			zeroIf(l3, []dex.MethodLocation{l4, l5}),
			gotoTo(l4, l6),
			gotoTo(l5, l6),
			dex.ReturnInstruction{Base: dex.Base{Loc: l6}, Mnem: "return-void"},
		},
	}

	d := newDriver()
	d.bounds.MaxAddressVisits = 3
	_, err := d.Drive(method, state.NewExecutionContext(method.RegisterCount))
	if err == nil {
		t.Fatalf("expected a resource-bound error once L6 is reached a fourth time")
	}
	if !errs.Is(err, errs.ResourceBoundExceeded) {
		t.Fatalf("expected ResourceBoundExceeded, got %v", err)
	}
}

func TestDriveDivByZeroProducesExceptionNode(t *testing.T) {
	loc0 := dex.MethodLocation{Index: 0, Offset: 0}
	method := &dex.Method{
		RegisterCount: 3,
		Instructions: []dex.Instruction{
			dex.BinaryMathInstruction{
				Base: dex.Base{Loc: loc0},
				Mnem: "div-int/lit8", Op: dex.DIV, Type: dex.OpInt,
				Dest: 0, Lhs: dex.Reg(0), Rhs: dex.Lit(0),
			},
		},
	}

	ctx := state.NewExecutionContext(method.RegisterCount)
	ctx.Method = ctx.Method.Assign(0, value.NewConcrete(int32(10), value.TypeInt))

	d := newDriver()
	g, err := d.Drive(method, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	terms := g.TerminalNodes()
	if len(terms) != 1 {
		t.Fatalf("expected one terminal node, got %d", len(terms))
	}
	if _, ok := terms[0].Exception(); !ok {
		t.Fatalf("expected the div-by-zero node to carry an exception")
	}
	if len(terms[0].Children()) != 0 {
		t.Fatalf("expected the exception node to have no children")
	}
}

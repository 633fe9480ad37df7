package execgraph

import (
	"testing"

	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/value"
)

func loc(i int) dex.MethodLocation { return dex.MethodLocation{Index: i, Offset: uint32(i)} }

func TestIsReachableOnlyAfterNodeCreated(t *testing.T) {
	m := &dex.Method{RegisterCount: 1}
	g := New(m)

	insn := dex.NopInstruction{Base: dex.Base{Loc: loc(0)}}
	if g.IsReachable(loc(0)) {
		t.Fatalf("location should not be reachable before any node is built there")
	}
	g.NewNode(insn, state.NewExecutionContext(1))
	if !g.IsReachable(loc(0)) {
		t.Fatalf("location should be reachable once a node is built there")
	}
	if g.IsReachable(loc(1)) {
		t.Fatalf("an untouched location should not be reachable")
	}
}

func TestConsensusRegisterAgreement(t *testing.T) {
	m := &dex.Method{RegisterCount: 1}
	g := New(m)
	insn := dex.NopInstruction{Base: dex.Base{Loc: loc(0)}}

	ctx1 := state.NewExecutionContext(1)
	ctx1.Method = ctx1.Method.Assign(0, value.NewConcrete(int32(7), value.TypeInt))
	ctx2 := state.NewExecutionContext(1)
	ctx2.Method = ctx2.Method.Assign(0, value.NewConcrete(int32(7), value.TypeInt))

	g.NewNode(insn, ctx1)
	g.NewNode(insn, ctx2)

	got, ok := g.ConsensusRegister(loc(0), 0)
	if !ok {
		t.Fatalf("expected consensus on register 0")
	}
	v, _ := got.ConcreteValue()
	if v != int32(7) {
		t.Fatalf("expected 7, got %v", v)
	}
}

func TestConsensusRegisterDisagreement(t *testing.T) {
	m := &dex.Method{RegisterCount: 1}
	g := New(m)
	insn := dex.NopInstruction{Base: dex.Base{Loc: loc(0)}}

	ctx1 := state.NewExecutionContext(1)
	ctx1.Method = ctx1.Method.Assign(0, value.NewConcrete(int32(7), value.TypeInt))
	ctx2 := state.NewExecutionContext(1)
	ctx2.Method = ctx2.Method.Assign(0, value.NewConcrete(int32(8), value.TypeInt))

	g.NewNode(insn, ctx1)
	g.NewNode(insn, ctx2)

	if _, ok := g.ConsensusRegister(loc(0), 0); ok {
		t.Fatalf("expected no consensus when nodes disagree")
	}
}

func TestTerminalNodes(t *testing.T) {
	m := &dex.Method{RegisterCount: 1}
	g := New(m)
	a := g.NewNode(dex.NopInstruction{Base: dex.Base{Loc: loc(0)}}, state.NewExecutionContext(1))
	b := g.NewNode(dex.ReturnInstruction{Base: dex.Base{Loc: loc(1)}}, state.NewExecutionContext(1))
	g.Node(a).AddChild(b)

	terms := g.TerminalNodes()
	if len(terms) != 1 || terms[0].ID() != b {
		t.Fatalf("expected exactly the return node to be terminal, got %v", terms)
	}
}

func TestLoopMergerSingleContinuation(t *testing.T) {
	m := &dex.Method{RegisterCount: 1}
	g := New(m)
	merger := NewLoopMerger()
	insn := dex.NopInstruction{Base: dex.Base{Loc: loc(5)}}

	ctx1 := state.NewExecutionContext(1)
	id1, isNew1 := merger.MergeOrCreate(g, insn, ctx1)
	if !isNew1 {
		t.Fatalf("first arrival at a loop header should create a new node")
	}

	ctx2 := state.NewExecutionContext(1)
	id2, isNew2 := merger.MergeOrCreate(g, insn, ctx2)
	if isNew2 {
		t.Fatalf("second arrival should reuse the representative node")
	}
	if id1 != id2 {
		t.Fatalf("expected the same representative NodeID, got %v vs %v", id1, id2)
	}
	if merger.VisitCount(loc(5)) != 2 {
		t.Fatalf("expected 2 arrivals recorded, got %d", merger.VisitCount(loc(5)))
	}
}

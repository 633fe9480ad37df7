package state

import (
	"testing"

	"github.com/k5h4tr1y4/simplify/value"
)

func TestBranchDoesNotLeakAssignments(t *testing.T) {
	s := NewMethodState(2)
	s = s.Assign(0, value.NewConcrete(int32(5), value.TypeInt))
	if !s.WasAssigned(0) {
		t.Fatalf("expected register 0 to be marked assigned")
	}

	child := s.Branch()
	if child.WasAssigned(0) {
		t.Fatalf("branch should start with a clean assigned set")
	}
	if got := child.Peek(0); got.IsUnknown() {
		t.Fatalf("branch should retain register contents, got %v", got)
	}
}

func TestAssignIsStructurallyShared(t *testing.T) {
	parent := NewMethodState(1)
	child := parent.Branch()
	child = child.Assign(0, value.NewConcrete(int32(1), value.TypeInt))

	if !parent.Peek(0).IsUnknown() {
		t.Fatalf("writing to a branch must not mutate the parent")
	}
}

func TestMergeMethodStateRegisterWise(t *testing.T) {
	a := NewMethodState(1).Assign(0, value.NewConcrete(int32(1), value.TypeInt))
	b := NewMethodState(1).Assign(0, value.NewConcrete(int32(1), value.TypeInt))
	merged := Merge(a, b)
	if merged.Peek(0).IsUnknown() {
		t.Fatalf("merging equal values should not produce Unknown")
	}

	c := NewMethodState(1).Assign(0, value.NewConcrete(int32(2), value.TypeInt))
	merged2 := Merge(a, c)
	if !merged2.Peek(0).IsUnknown() {
		t.Fatalf("merging distinct values should produce Unknown")
	}
}

func TestClassStateCopyOnBranchIsolation(t *testing.T) {
	base := NewClassState("Lcom/app/Foo;")
	base = base.SetField("x", value.NewConcrete(int32(1), value.TypeInt))

	other := base.SetField("y", value.NewConcrete(int32(2), value.TypeInt))
	if _, ok := base.Fields()["y"]; ok {
		t.Fatalf("setting a field on a derived ClassState must not affect the original")
	}
	if _, ok := other.Fields()["x"]; !ok {
		t.Fatalf("derived ClassState should retain prior fields")
	}
}

func TestInitStatusReentrance(t *testing.T) {
	cs := NewClassState("Lcom/app/Foo;").WithStatus(InProgress)
	if cs.Status() != InProgress {
		t.Fatalf("expected InProgress, got %v", cs.Status())
	}
}

func TestExecutionContextChildSharesClassState(t *testing.T) {
	root := NewExecutionContext(1)
	cs := NewClassState("Lcom/app/Foo;").SetField("x", value.NewConcrete(int32(9), value.TypeInt))
	root = root.WithClassState("Lcom/app/Foo;", cs)

	child := root.Child(2)
	got, ok := child.ClassState("Lcom/app/Foo;")
	if !ok {
		t.Fatalf("child context should see parent's class state")
	}
	if got.GetField("x").IsUnknown() {
		t.Fatalf("expected concrete field value to be visible to child")
	}
	if child.CallDepth != 1 {
		t.Fatalf("expected call depth 1, got %d", child.CallDepth)
	}
}

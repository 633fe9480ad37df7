package value

import "testing"

func TestMergeIdempotent(t *testing.T) {
	a := NewConcrete(int32(5), TypeInt)
	got := Merge(a, a)
	if got.IsUnknown() {
		t.Fatalf("x ⊔ x should not be Unknown, got %v", got)
	}
	v, ok := got.ConcreteValue()
	if !ok || v != int32(5) {
		t.Fatalf("expected concrete 5, got %v", got)
	}
}

func TestMergeWithUnknownIsUnknown(t *testing.T) {
	a := NewConcrete(int32(5), TypeInt)
	b := NewUnknown(TypeInt)
	if !Merge(a, b).IsUnknown() {
		t.Fatalf("x ⊔ Unknown should be Unknown")
	}
	if !Merge(b, a).IsUnknown() {
		t.Fatalf("Unknown ⊔ x should be Unknown (commutative)")
	}
}

func TestMergeDistinctConcreteIsUnknown(t *testing.T) {
	a := NewConcrete(int32(5), TypeInt)
	b := NewConcrete(int32(6), TypeInt)
	if !Merge(a, b).IsUnknown() {
		t.Fatalf("distinct concrete values should meet to Unknown")
	}
}

func TestMergeCommutative(t *testing.T) {
	a := NewConcrete("x", TypeString)
	b := NewConcrete("y", TypeString)
	x := Merge(a, b)
	y := Merge(b, a)
	if x.IsUnknown() != y.IsUnknown() {
		t.Fatalf("merge should be commutative")
	}
}

func TestMergeAssociative(t *testing.T) {
	a := NewConcrete(int32(1), TypeInt)
	b := NewConcrete(int32(1), TypeInt)
	c := NewConcrete(int32(2), TypeInt)

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))
	if left.IsUnknown() != right.IsUnknown() {
		t.Fatalf("merge should be associative: %v vs %v", left, right)
	}
}

func TestMergeDifferingDeclaredTypeFallsBackToObject(t *testing.T) {
	a := NewConcrete(int32(1), TypeInt)
	b := NewConcrete(int32(1), TypeLong)
	got := Merge(a, b)
	if got.Type != TypeUnknown {
		t.Fatalf("expected generic object type on declared-type mismatch, got %s", got.Type)
	}
}

func TestSideEffectJoinIsMonotone(t *testing.T) {
	cases := []struct {
		a, b, want Level
	}{
		{NONE, NONE, NONE},
		{NONE, WEAK, WEAK},
		{WEAK, NONE, WEAK},
		{WEAK, STRONG, STRONG},
		{STRONG, NONE, STRONG},
		{STRONG, STRONG, STRONG},
	}
	for _, c := range cases {
		if got := c.a.Join(c.b); got != c.want {
			t.Fatalf("%v.Join(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestVirtualExceptionIsNotUnknown(t *testing.T) {
	item := NewVirtualException("Ljava/lang/ArithmeticException;", "/ by zero")
	if item.IsUnknown() {
		t.Fatalf("a virtual exception should not be Unknown")
	}
	if !item.IsException() {
		t.Fatalf("expected IsException to be true")
	}
}

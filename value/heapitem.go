package value

// Well-known Dalvik primitive type descriptors.
const (
	TypeBoolean = "Z"
	TypeByte    = "B"
	TypeChar    = "C"
	TypeShort   = "S"
	TypeInt     = "I"
	TypeLong    = "J"
	TypeFloat   = "F"
	TypeDouble  = "D"
	TypeVoid    = "V"
	TypeString  = "Ljava/lang/String;"
	TypeClass   = "Ljava/lang/Class;"
	TypeObject  = "Ljava/lang/Object;"
	TypeUnknown = "Ljava/lang/Object;" // generic type assigned at merges of incompatible declared types
)

// HeapItem is (value, declaredType) — the unit every register, static
// field, and instance field stores (SPEC_FULL §3). declaredType is kept
// alongside the value itself so that narrowing/widening conversions and
// merges of incompatibly-typed operands have an explicit common type to
// fall back to (invariant I2), rather than inferring one from a Go type
// switch on the Value's dynamic type.
type HeapItem struct {
	Value Value
	Type  string
}

// NewUnknown builds a HeapItem holding Unknown with the given declared type.
func NewUnknown(declaredType string) HeapItem {
	return HeapItem{Value: Unknown, Type: declaredType}
}

// NewConcrete builds a HeapItem holding a known value with the given
// declared type.
func NewConcrete(v any, declaredType string) HeapItem {
	return HeapItem{Value: Conc(v), Type: declaredType}
}

// NewUninitialized builds a HeapItem holding a fresh, not-yet-constructed
// instance of className.
func NewUninitialized(className string) HeapItem {
	return HeapItem{Value: UninitializedInstance{ClassName: className}, Type: className}
}

// NewVirtualException builds a HeapItem holding an exception value.
func NewVirtualException(kind, message string) HeapItem {
	return HeapItem{Value: VirtualException{Kind: kind, Message: message}, Type: kind}
}

// IsUnknown reports whether the item's value is the lattice top.
func (h HeapItem) IsUnknown() bool {
	return h.Value == nil || h.Value.IsUnknown()
}

// IsException reports whether the item carries a VirtualException.
func (h HeapItem) IsException() bool {
	_, ok := h.Value.(VirtualException)
	return ok
}

// IsConcrete reports whether the item's value is fully known.
func (h HeapItem) IsConcrete() bool {
	_, ok := h.Value.(Concrete)
	return ok
}

// ConcreteValue returns the boxed value and true if the item is Concrete.
func (h HeapItem) ConcreteValue() (any, bool) {
	if c, ok := h.Value.(Concrete); ok {
		return c.Val, true
	}
	return nil, false
}

func (h HeapItem) String() string {
	if h.Value == nil {
		return "<nil> " + h.Type
	}
	return h.Value.String() + " (" + h.Type + ")"
}

// commonSupertype picks the declared type to use when merging two items
// of differing declared type. Real supertype computation requires a
// class hierarchy the engine does not retain in the abstract domain, so
// this falls back to the generic object type per invariant I2; an exact
// match of both declared types is preserved without falling back.
func commonSupertype(t1, t2 string) string {
	if t1 == t2 {
		return t1
	}
	return TypeUnknown
}

// Merge computes a ⊔ b per invariant I2: two equal concrete values merge
// to themselves, any pair of distinct values (including either being
// Unknown) merges to Unknown, and the resulting declared type is the
// common type of a and b, or the generic object type if they disagree.
func Merge(a, b HeapItem) HeapItem {
	declType := commonSupertype(a.Type, b.Type)

	if a.IsUnknown() || b.IsUnknown() {
		return NewUnknown(declType)
	}

	if valuesEqual(a.Value, b.Value) {
		return HeapItem{Value: a.Value, Type: declType}
	}

	return NewUnknown(declType)
}

// valuesEqual reports whether two non-Unknown values are the same
// lattice element, used by Merge to implement x ⊔ x = x.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Concrete:
		bv, ok := b.(Concrete)
		return ok && av.Val == bv.Val
	case UninitializedInstance:
		bv, ok := b.(UninitializedInstance)
		return ok && av.ClassName == bv.ClassName
	case VirtualException:
		bv, ok := b.(VirtualException)
		return ok && av.Kind == bv.Kind && av.Message == bv.Message
	default:
		return false
	}
}

// MergeAll folds Merge over one or more items, used when a node at a
// loop back-edge has more than two predecessors to reconcile at once.
func MergeAll(items ...HeapItem) HeapItem {
	if len(items) == 0 {
		return NewUnknown(TypeUnknown)
	}
	acc := items[0]
	for _, it := range items[1:] {
		acc = Merge(acc, it)
	}
	return acc
}

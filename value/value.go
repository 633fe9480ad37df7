// Package value implements the abstract value domain the symbolic
// execution engine carries along every execution-graph edge: the flat
// lattice of {Unknown, concrete values, uninitialized instances, virtual
// exceptions}, wrapped in a HeapItem that also carries the Dalvik
// declared type of the slot the value occupies.
package value

import "fmt"

// Value is the tagged union at the heart of the abstract domain. It is
// implemented by Concrete, unknownValue, UninitializedInstance and
// VirtualException. Unlike a class hierarchy, dispatch on the concrete
// kind of a Value is always a type switch at the use site (see
// opcode.Dispatch for the same pattern applied to dex.Instruction).
type Value interface {
	fmt.Stringer
	// IsUnknown reports whether this is the lattice's top element.
	IsUnknown() bool
	isValue()
}

// Unknown is the singleton top element of the value lattice: "this slot
// may hold any concrete value of its declared type". Any operation whose
// operand is Unknown is Unknown, short of special-cased identities.
var Unknown Value = unknownValue{}

type unknownValue struct{}

func (unknownValue) String() string   { return "Unknown" }
func (unknownValue) IsUnknown() bool  { return true }
func (unknownValue) isValue()         {}

// Concrete wraps a fully-known boxed primitive or object reference:
// int32, int64, float32, float64, bool, string, nil (object null), or a
// *ArrayRef/*ObjectRef allocated by the engine itself.
type Concrete struct {
	Val any
}

func Conc(v any) Concrete         { return Concrete{Val: v} }
func (c Concrete) String() string { return fmt.Sprintf("%v", c.Val) }
func (Concrete) IsUnknown() bool  { return false }
func (Concrete) isValue()         {}

// IsNull reports whether this concrete value is the null object reference.
func (c Concrete) IsNull() bool {
	return c.Val == nil
}

// UninitializedInstance is produced by new-instance before the matching
// <init> call has run. It carries the class name so that a later
// invoke-direct of <init> can be matched against it, and so the engine
// can tell an apart-from-null, apart-from-fully-built object apart from
// both Unknown and a fully Concrete object reference.
type UninitializedInstance struct {
	ClassName string
}

func (u UninitializedInstance) String() string { return "uninitialized " + u.ClassName }
func (UninitializedInstance) IsUnknown() bool  { return false }
func (UninitializedInstance) isValue()         {}

// VirtualException is an exception represented as a value flowing along
// execution-graph edges, per the engine's "exceptions are values, not
// control-flow" design (SPEC_FULL §9). Kind is the Dalvik/Java exception
// type descriptor (e.g. "Ljava/lang/ArithmeticException;"); Message is
// the human-readable detail message, if any.
type VirtualException struct {
	Kind    string
	Message string
}

func (v VirtualException) String() string {
	if v.Message == "" {
		return v.Kind
	}
	return v.Kind + ": " + v.Message
}
func (VirtualException) IsUnknown() bool { return false }
func (VirtualException) isValue()        {}

// ArrayRef is a concrete array allocation: a fixed length and, per
// element, the HeapItem currently occupying it. new-array allocates one
// with every element Unknown (SPEC_FULL §4.1); fill-array-data may then
// populate elements with constants.
type ArrayRef struct {
	ElementType string
	Elements    []HeapItem
}

// ObjectRef is a concrete, fully-initialized object allocation: its
// declared class and a map of field name to current HeapItem, used by
// iget*/iput*.
type ObjectRef struct {
	ClassName string
	Fields    map[string]HeapItem
}

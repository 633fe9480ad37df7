package state

import (
	"github.com/benbjohnson/immutable"

	"github.com/k5h4tr1y4/simplify/value"
)

// InitStatus is the small state machine tracking <clinit> execution for
// one class within one VM instance (SPEC_FULL §9): a class starts
// NotStarted, moves to InProgress while its <clinit> is itself being
// symbolically executed, and finally Done. Re-entry while InProgress
// (a class's <clinit> transitively referencing itself) is detected by
// ClassState.Status returning InProgress rather than recursing, modeling
// the JVM guarantee that a thread re-entering its own <clinit> observes
// whatever static fields have been assigned so far.
type InitStatus int

const (
	NotStarted InitStatus = iota
	InProgress
	Done
)

func (s InitStatus) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case InProgress:
		return "InProgress"
	case Done:
		return "Done"
	default:
		return "InvalidInitStatus"
	}
}

// ClassState is the per-class static-field store (SPEC_FULL §3): a
// mapping from field identifier to value.HeapItem, the class's <clinit>
// status, and a cached aggregate side-effect level (the join of every
// instruction level ever executed while building or using this class's
// state, invariant I5).
type ClassState struct {
	ClassName string
	fields    *immutable.Map[string, value.HeapItem]
	status    InitStatus
	level     value.Level
}

// NewClassState creates an empty, NotStarted ClassState for className.
func NewClassState(className string) ClassState {
	return ClassState{
		ClassName: className,
		fields:    immutable.NewMap[string, value.HeapItem](nil),
		status:    NotStarted,
		level:     value.NONE,
	}
}

// Status returns the class's current initialization status.
func (c ClassState) Status() InitStatus { return c.status }

// Level returns the class's current aggregate side-effect level.
func (c ClassState) Level() value.Level { return c.level }

// WithStatus returns a copy of the receiver with a new init status.
func (c ClassState) WithStatus(s InitStatus) ClassState {
	c.status = s
	return c
}

// WithLevel returns a copy of the receiver whose aggregate level is
// joined with lvl (invariant I5: the level only ever grows).
func (c ClassState) WithLevel(lvl value.Level) ClassState {
	c.level = c.level.Join(lvl)
	return c
}

// GetField reads a static field's value, or Unknown-typed-as-object if
// the field has never been assigned (e.g. a field this engine doesn't
// know the declared type of yet).
func (c ClassState) GetField(name string) value.HeapItem {
	if v, ok := c.fields.Get(name); ok {
		return v
	}
	return value.NewUnknown(value.TypeObject)
}

// SetField returns a copy of the receiver with field name set to item.
// The underlying immutable.Map is shared structurally with the
// receiver: only the path to the changed leaf is reallocated, so two
// branches that each set a different, or the same, field never observe
// each other's writes (copy-on-branch for class state).
func (c ClassState) SetField(name string, item value.HeapItem) ClassState {
	c.fields = c.fields.Set(name, item)
	return c
}

// Fields returns the full name→value.HeapItem snapshot, used by tests.
func (c ClassState) Fields() map[string]value.HeapItem {
	out := make(map[string]value.HeapItem, c.fields.Len())
	iter := c.fields.Iterator()
	for !iter.Done() {
		k, v, _ := iter.Next()
		out[k] = v
	}
	return out
}

// MergeClassState joins two class states for the same class, used when
// two execution paths that each ran (or didn't run) <clinit> reconverge.
// Status and level both take their least-surprising upper bound: Done
// beats InProgress beats NotStarted, and the level joins per I5.
func MergeClassState(a, b ClassState) ClassState {
	if a.ClassName != b.ClassName {
		panic("cannot merge class state for different classes: " + a.ClassName + " vs " + b.ClassName)
	}
	out := NewClassState(a.ClassName)
	out.status = mergeStatus(a.status, b.status)
	out.level = a.level.Join(b.level)

	seen := map[string]bool{}
	merge := func(m *immutable.Map[string, value.HeapItem]) {
		iter := m.Iterator()
		for !iter.Done() {
			k, _, _ := iter.Next()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = out.SetField(k, value.Merge(a.GetField(k), b.GetField(k)))
		}
	}
	merge(a.fields)
	merge(b.fields)
	return out
}

func mergeStatus(a, b InitStatus) InitStatus {
	if a > b {
		return a
	}
	return b
}

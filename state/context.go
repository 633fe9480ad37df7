package state

import "github.com/benbjohnson/immutable"

// ExecutionContext bundles a MethodState with a lazily-populated map of
// className to ClassState, plus a reference to the caller's context
// (SPEC_FULL §3). A class's state is present only once a handler has
// stored one with WithClassState; looking up any other class finds
// nothing, and no <clinit> is run for it.
type ExecutionContext struct {
	Method     MethodState
	classes    *immutable.Map[string, ClassState]
	Parent     *ExecutionContext
	CallDepth  int
}

// NewExecutionContext creates a root context (no parent, call depth 0)
// with the given register count.
func NewExecutionContext(registerCount int) ExecutionContext {
	return ExecutionContext{
		Method:  NewMethodState(registerCount),
		classes: immutable.NewMap[string, ClassState](nil),
	}
}

// Child derives a context for a freshly invoked method, one call level
// deeper, sharing (structurally) the same class-state map: static fields
// initialized by the caller are visible to the callee without copying.
func (c ExecutionContext) Child(registerCount int) ExecutionContext {
	return ExecutionContext{
		Method:    NewMethodState(registerCount),
		classes:   c.classes,
		Parent:    &c,
		CallDepth: c.CallDepth + 1,
	}
}

// Branch derives a context for a sibling execution-graph node: the
// method state's register file is structurally shared (copy-on-branch),
// and the class-state map likewise, until one of them is next written.
func (c ExecutionContext) Branch() ExecutionContext {
	return ExecutionContext{
		Method:    c.Method.Branch(),
		classes:   c.classes,
		Parent:    c.Parent,
		CallDepth: c.CallDepth,
	}
}

// ClassState looks up className's cached state; the second return value
// is false if no state has been stored for the class in this context
// chain (the static-field handler then starts from an empty NotStarted
// ClassState; new-instance treats the class as STRONG).
func (c ExecutionContext) ClassState(className string) (ClassState, bool) {
	return c.classes.Get(className)
}

// WithClassState returns a copy of the receiver with className's state
// updated. This is the only way the class-state cache is written; the
// static-field handler calls it on every sget/sput.
func (c ExecutionContext) WithClassState(className string, cs ClassState) ExecutionContext {
	c.classes = c.classes.Set(className, cs)
	return c
}

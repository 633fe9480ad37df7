// Package dex defines the narrow contract the symbolic execution engine
// expects from an external DEX/APK binary-format library: type
// descriptors, method locations, and a ClassManager/Builder pair. It
// does not parse or emit DEX bytes — that is explicitly out of scope
// for this spec (SPEC_FULL §1) — but its types are grounded in the real
// DEX constant-pool shapes (access flags, descriptor strings) so that a
// real binary-format library's public surface can be adapted to satisfy
// it with a thin wrapper.
package dex

import "strings"

// AccessFlags mirrors the DEX access_flags bitfield (dex.AccessFlags in
// a real binary-format library), used by the engine to distinguish
// static fields/methods and to decide whether an invoke is to a
// constructor.
type AccessFlags uint32

const (
	AccPublic       AccessFlags = 1 << iota
	AccPrivate
	AccProtected
	AccStatic
	AccFinal
	AccSynchronized
	AccVolatile
	AccBridge                 AccessFlags = 0x40
	AccTransient              AccessFlags = 0x80
	AccVarargs                AccessFlags = 0x80
	AccNative                 AccessFlags = 0x100
	AccInterface              AccessFlags = 0x200
	AccAbstract               AccessFlags = 0x400
	AccStrict                 AccessFlags = 0x800
	AccSynthetic              AccessFlags = 0x1000
	AccAnnotation             AccessFlags = 0x2000
	AccEnum                   AccessFlags = 0x4000
	AccConstructor            AccessFlags = 0x10000
	AccDeclaredSynchronized   AccessFlags = 0x20000
)

func (f AccessFlags) IsStatic() bool      { return f&AccStatic != 0 }
func (f AccessFlags) IsConstructor() bool { return f&AccConstructor != 0 }
func (f AccessFlags) IsNative() bool      { return f&AccNative != 0 }
func (f AccessFlags) IsAbstract() bool    { return f&AccAbstract != 0 }

// IsPrimitiveType reports whether descriptor t names a Dalvik primitive
// type (as opposed to an object or array type).
func IsPrimitiveType(t string) bool {
	switch t {
	case "Z", "B", "C", "S", "I", "J", "F", "D", "V":
		return true
	default:
		return false
	}
}

// IsArrayType reports whether descriptor t names an array type.
func IsArrayType(t string) bool {
	return strings.HasPrefix(t, "[")
}

// IsWide reports whether a value of type t occupies two consecutive
// registers (the Dalvik `-wide` opcode family), i.e. long or double.
func IsWide(t string) bool {
	return t == "J" || t == "D"
}

// ClassDescriptorToBinaryName converts "Lcom/app/Foo;" to
// "com.app.Foo", the form reflection APIs expect when resolving a
// "safe" class for the engine's InvokeOp reflective-call path.
func ClassDescriptorToBinaryName(descriptor string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(descriptor, "L"), ";")
	return strings.ReplaceAll(inner, "/", ".")
}

// MethodSignature identifies a method independent of any particular
// MethodLocation instance: owning class descriptor, method name, and
// parameter/return descriptors. It is what --include-filter/
// --exclude-filter match against (SPEC_FULL §6).
type MethodSignature struct {
	ClassName  string
	Name       string
	ParamTypes []string
	ReturnType string
}

// String renders a signature the way simplify's original CLI filters
// expect to match against, e.g. "Lcom/app/Foo;->bar(I)Ljava/lang/String;".
func (m MethodSignature) String() string {
	var sb strings.Builder
	sb.WriteString(m.ClassName)
	sb.WriteString("->")
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for _, p := range m.ParamTypes {
		sb.WriteString(p)
	}
	sb.WriteByte(')')
	sb.WriteString(m.ReturnType)
	return sb.String()
}

// Method is the narrow view of a DEX encoded_method the engine needs:
// its signature, access flags, declared register count, and its
// instruction stream, reachable via a MethodLocation handle for each
// instruction.
type Method struct {
	Signature     MethodSignature
	Access        AccessFlags
	RegisterCount int
	ParamRegStart int // index of the first register holding a parameter
	Instructions  []Instruction
}

// InstructionAt returns the instruction at loc, or nil if not found.
func (m *Method) InstructionAt(loc MethodLocation) Instruction {
	if loc.Index >= 0 && loc.Index < len(m.Instructions) {
		insn := m.Instructions[loc.Index]
		if insn.Location() == loc {
			return insn
		}
	}
	for _, insn := range m.Instructions {
		if insn.Location() == loc {
			return insn
		}
	}
	return nil
}

// MethodLocation is an opaque handle to one instruction within a
// Method's instruction stream, as produced by a real DEX library.
// Index is the ordinal position of the instruction; Offset is its
// code-unit offset, used for branch target resolution.
type MethodLocation struct {
	Index  int
	Offset uint32
}

// Class is the narrow view of a DEX class_def_item the engine needs.
type Class struct {
	Name            string
	SuperclassName  string
	Access          AccessFlags
	DirectMethods   []*Method
	VirtualMethods  []*Method
	StaticFields    map[string]string // field name -> declared type descriptor
	InstanceFields  map[string]string
}

// AllMethods returns direct and virtual methods concatenated, the order
// the launcher walks a class in.
func (c *Class) AllMethods() []*Method {
	out := make([]*Method, 0, len(c.DirectMethods)+len(c.VirtualMethods))
	out = append(out, c.DirectMethods...)
	out = append(out, c.VirtualMethods...)
	return out
}

// ClassManager is the collaborator contract of SPEC_FULL §4.4: enumerate
// non-framework classes, retrieve a class's methods, expose the builder
// for emission, and register that a method's instructions were mutated
// so a fresh view is returned on next access (invalidating any cached
// ClassState derived from the old instructions).
type ClassManager interface {
	// ClassNames enumerates every non-framework class in the analyzed DEX.
	ClassNames() []string
	// Class retrieves the named class, or (nil, false) if it is not
	// local to this DEX (a framework/library class).
	Class(name string) (*Class, bool)
	// IsLocal reports whether name is present in the analyzed DEX, as
	// opposed to a framework class only ever referenced.
	IsLocal(name string) bool
	// Builder exposes the mutable DEX builder for emission.
	Builder() Builder
	// MarkMutated registers that method's instruction stream changed, so
	// that the next Class/Method lookup reflects the rewrite and any
	// downstream ClassState cache for its owning class is invalidated.
	MarkMutated(method *Method)
}

// Builder is the narrow emission contract: replace one method's
// instructions and finally serialize the whole DEX to bytes.
type Builder interface {
	// ReplaceInstructions swaps method's instruction stream for
	// rewritten, keeping its signature and register count unchanged.
	ReplaceInstructions(method *Method, rewritten []Instruction)
	// Write serializes the current state of the DEX (reflecting every
	// ReplaceInstructions call so far) to bytes suitable for writing to
	// --out, or for replacing classes.dex inside an APK zip.
	Write() ([]byte, error)
}

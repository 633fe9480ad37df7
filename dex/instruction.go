package dex

// Instruction is the sum type every Dalvik opcode is a variant of
// (SPEC_FULL §9 re-architecture guidance): a single interface giving a
// location and static successor set, implemented by one small value type
// per opcode family below. The opcode package's handlers type-switch on
// the concrete variant to interpret it; Instruction itself carries no
// execution behavior, only shape — exactly the same split a real binary
// format library draws between "what the bytes say" and "what it means
// to run it".
type Instruction interface {
	// Location identifies this instruction's position in its method.
	Location() MethodLocation
	// Mnemonic is the Dalvik opcode name, e.g. "add-int/2addr".
	Mnemonic() string
	// Successors lists every instruction location control may statically
	// transfer to from here (fall-through and/or explicit branch
	// targets). A handler's Execute chooses which of these are actually
	// taken for a given abstract state; Successors is the upper bound.
	Successors() []MethodLocation
}

// Base is embedded by every concrete instruction type to supply the
// common Location/Successors bookkeeping.
type Base struct {
	Loc   MethodLocation
	Succs []MethodLocation
}

func (b Base) Location() MethodLocation    { return b.Loc }
func (b Base) Successors() []MethodLocation { return b.Succs }

// Operand identifies where an operand comes from: a register, or (for
// the "/lit8"-"/lit16" binary-math forms) an immediate.
type Operand struct {
	IsLiteral bool
	Register  int
	Literal   int64 // interpreted per the consuming instruction's operand type
}

func Reg(r int) Operand        { return Operand{Register: r} }
func Lit(v int64) Operand      { return Operand{IsLiteral: true, Literal: v} }

// ArithOp enumerates the Dalvik binary/unary arithmetic operators
// (SPEC_FULL §4.1).
type ArithOp int

const (
	ADD ArithOp = iota
	SUB
	MUL
	DIV
	REM
	AND
	OR
	XOR
	SHL
	SHR
	USHR
	RSUB
	NEG
	NOT
)

// OperandType enumerates the Dalvik arithmetic operand types.
type OperandType int

const (
	OpInt OperandType = iota
	OpLong
	OpFloat
	OpDouble
)

// BinaryMathInstruction is the canonical pure opcode (SPEC_FULL §4.1):
// dest = lhs OP rhs, where rhs may be a register or (for */lit8,
// */lit16 forms) an int immediate always typed "I".
type BinaryMathInstruction struct {
	Base
	Mnem    string
	Op      ArithOp
	Type    OperandType
	Dest    int
	Lhs     Operand
	Rhs     Operand
}

func (i BinaryMathInstruction) Mnemonic() string { return i.Mnem }

// UnaryMathInstruction covers neg-*, not-*, and the numeric conversion
// family (int-to-long, long-to-float, ...).
type UnaryMathInstruction struct {
	Base
	Mnem     string
	Op       ArithOp // NEG or NOT; zero value for pure conversions
	FromType OperandType
	ToType   OperandType
	Dest     int
	Src      int
}

func (i UnaryMathInstruction) Mnemonic() string { return i.Mnem }

// ConstInstruction covers const, const/4, const/16, const-wide*,
// const-string, and const-class.
type ConstInstruction struct {
	Base
	Mnem string
	Dest int
	Type string // declared type of the materialized value
	// Value holds the literal payload: an int32/int64/float32/float64
	// for numeric consts, a string for const-string, or a class
	// descriptor string for const-class.
	Value any
}

func (i ConstInstruction) Mnemonic() string { return i.Mnem }

// MoveKind distinguishes the move-result/move-exception pseudo-sources
// from ordinary register-to-register moves.
type MoveKind int

const (
	MoveRegister MoveKind = iota
	MoveResult
	MoveException
)

// MoveInstruction covers move, move/from16, move-wide, move-object,
// move-result*, and move-exception.
type MoveInstruction struct {
	Base
	Mnem string
	Kind MoveKind
	Dest int
	Src  int // meaningful only when Kind == MoveRegister
}

func (i MoveInstruction) Mnemonic() string { return i.Mnem }

// ReturnInstruction covers return-void, return, return-wide, and
// return-object.
type ReturnInstruction struct {
	Base
	Mnem     string
	HasValue bool
	Src      int
}

func (i ReturnInstruction) Mnemonic() string { return i.Mnem }

// ThrowInstruction covers throw.
type ThrowInstruction struct {
	Base
	Src int
}

func (i ThrowInstruction) Mnemonic() string { return "throw" }

// GotoInstruction covers goto, goto/16, and goto/32 (a single
// unconditional successor, also reachable via Successors()[0]).
type GotoInstruction struct {
	Base
	Mnem string
}

func (i GotoInstruction) Mnemonic() string { return i.Mnem }

// IfTest enumerates the six register/register branch comparisons.
type IfTest int

const (
	IfEq IfTest = iota
	IfNe
	IfLt
	IfGe
	IfGt
	IfLe
)

// IfTestInstruction covers if-eq/if-ne/if-lt/if-ge/if-gt/if-le (two
// register operands) and, when Rhs is absent (IsZeroTest), their
// if-eqz/if-nez/... zero-compare unary counterparts.
type IfTestInstruction struct {
	Base
	Mnem       string
	Test       IfTest
	IsZeroTest bool
	Lhs        int
	Rhs        int // meaningful only when !IsZeroTest
	// Taken and NotTaken index into Successors(): Successors()[Taken] is
	// the branch target, Successors()[NotTaken] is fall-through.
	Taken, NotTaken int
}

func (i IfTestInstruction) Mnemonic() string { return i.Mnem }

// CmpKind enumerates the five Dalvik comparison opcodes.
type CmpKind int

const (
	CmpLong CmpKind = iota
	CmpgFloat
	CmplFloat
	CmpgDouble
	CmplDouble
)

// CmpInstruction covers cmp-long, cmpg-float, cmpl-float, cmpg-double,
// and cmpl-double.
type CmpInstruction struct {
	Base
	Kind CmpKind
	Dest int
	Lhs  int
	Rhs  int
}

func (i CmpInstruction) Mnemonic() string {
	switch i.Kind {
	case CmpLong:
		return "cmp-long"
	case CmpgFloat:
		return "cmpg-float"
	case CmplFloat:
		return "cmpl-float"
	case CmpgDouble:
		return "cmpg-double"
	default:
		return "cmpl-double"
	}
}

// SwitchInstruction covers packed-switch and sparse-switch: Keys[i]
// maps to Successors()[i]; the final entry of Successors() is always
// the default (fall-through) target.
type SwitchInstruction struct {
	Base
	Mnem string
	Src  int
	Keys []int32
}

func (i SwitchInstruction) Mnemonic() string { return i.Mnem }

// FieldInstruction covers sget*/sput*/iget*/iput*. IsStatic
// distinguishes the s-family (ClassName is the declaring class) from
// the i-family (Object is the register holding the receiver).
type FieldInstruction struct {
	Base
	Mnem      string
	IsStatic  bool
	IsPut     bool
	ValueReg  int
	Object    int // meaningful only when !IsStatic
	ClassName string
	FieldName string
	FieldType string
}

func (i FieldInstruction) Mnemonic() string { return i.Mnem }

// NewInstanceInstruction is new-instance (SPEC_FULL §4.1, canonical
// side-effecting opcode): dest = a fresh, uninitialized ClassName.
type NewInstanceInstruction struct {
	Base
	Dest      int
	ClassName string
}

func (i NewInstanceInstruction) Mnemonic() string { return "new-instance" }

// NewArrayInstruction is new-array: dest = a fresh array of Length
// elements of ElementType. Unlike new-instance, this never triggers
// class initialization.
type NewArrayInstruction struct {
	Base
	Dest        int
	Length      int // register holding the requested length
	ElementType string
}

func (i NewArrayInstruction) Mnemonic() string { return "new-array" }

// ArrayLengthInstruction is array-length.
type ArrayLengthInstruction struct {
	Base
	Dest  int
	Array int
}

func (i ArrayLengthInstruction) Mnemonic() string { return "array-length" }

// ArrayOpInstruction covers aget*/aput*.
type ArrayOpInstruction struct {
	Base
	Mnem     string
	IsPut    bool
	ValueReg int
	Array    int
	Index    int
}

func (i ArrayOpInstruction) Mnemonic() string { return i.Mnem }

// InstanceOfInstruction is instance-of.
type InstanceOfInstruction struct {
	Base
	Dest      int
	Src       int
	ClassName string
}

func (i InstanceOfInstruction) Mnemonic() string { return "instance-of" }

// CheckCastInstruction is check-cast.
type CheckCastInstruction struct {
	Base
	Src       int
	ClassName string
}

func (i CheckCastInstruction) Mnemonic() string { return "check-cast" }

// InvokeKind enumerates the five invoke-* forms.
type InvokeKind int

const (
	InvokeVirtual InvokeKind = iota
	InvokeSuper
	InvokeDirect
	InvokeStatic
	InvokeInterface
)

// InvokeInstruction covers invoke-virtual/super/direct/static/interface
// and their /range forms.
type InvokeInstruction struct {
	Base
	Kind      InvokeKind
	Target    MethodSignature
	Args      []int // argument register list, receiver first unless static
	MoveDest  int   // register the paired move-result(-object/-wide) writes, if any
	HasResult bool
}

func (i InvokeInstruction) Mnemonic() string { return "invoke" }

// MonitorInstruction covers monitor-enter/monitor-exit.
type MonitorInstruction struct {
	Base
	Enter bool
	Obj   int
}

func (i MonitorInstruction) Mnemonic() string {
	if i.Enter {
		return "monitor-enter"
	}
	return "monitor-exit"
}

// NopInstruction is nop.
type NopInstruction struct{ Base }

func (i NopInstruction) Mnemonic() string { return "nop" }

// FillArrayDataInstruction is fill-array-data.
type FillArrayDataInstruction struct {
	Base
	Array  int
	Values []any
}

func (i FillArrayDataInstruction) Mnemonic() string { return "fill-array-data" }

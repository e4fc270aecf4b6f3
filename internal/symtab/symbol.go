package symtab

import "github.com/eel-lang/eelc/internal/sequence"

// SymbolID uniquely identifies a Symbol within a SymbolTable. The zero
// value is the null handle: no symbol ever receives id 0, so a zero
// SymbolID unambiguously means "no symbol".
type SymbolID int

// ScopeID uniquely identifies a Scope within a SymbolTable. The root
// scope is always id 1; zero is the null handle, matching SymbolID.
type ScopeID int

// SymbolKind discriminates the payload carried by a Symbol. Symbols are
// a tagged union (kind + payload), not an interface hierarchy, per the
// corpus's "polymorphism over symbol kinds" design note: every pass
// switches on Kind rather than doing virtual dispatch.
type SymbolKind int

const (
	invalidKind SymbolKind = iota
	Variable
	Constant
	Function
	ExternFunction
	TypeDecl
	Namespace
	Event
	Indirect
)

func (k SymbolKind) String() string {
	switch k {
	case Variable:
		return "Variable"
	case Constant:
		return "Constant"
	case Function:
		return "Function"
	case ExternFunction:
		return "ExternFunction"
	case TypeDecl:
		return "Type"
	case Namespace:
		return "Namespace"
	case Event:
		return "Event"
	case Indirect:
		return "Indirect"
	default:
		return "Invalid"
	}
}

// TypeDescKind classifies a TypeDecl symbol's descriptor.
type TypeDescKind int

const (
	Primitive TypeDescKind = iota
	Struct
	Union
	Enum
	Trait
)

// VariableInfo is the payload for a Variable symbol.
type VariableInfo struct {
	Type     SymbolRef // may itself be Indirect until resolved
	IsStatic bool
	HasValue bool
}

// ConstantInfo is the payload for a Constant symbol. The constant
// expression is opaque to the symbol table (owned by the AST node the
// declaration came from); analyses that need it read it off the
// declaration node directly, not off this payload.
type ConstantInfo struct {
	Type SymbolRef
}

// Param is a single function parameter: a name plus its (possibly
// still-Indirect) type.
type Param struct {
	Name string
	Type SymbolRef
}

// FunctionInfo is the payload for a Function symbol: setup/loop bodies,
// event predicates, and event handlers are all Function symbols.
type FunctionInfo struct {
	Scope         ScopeRef // the function's own derived scope
	Params        []Param
	ReturnType    SymbolRef
	HasReturnType bool
	Sequence      *sequence.Sequence // the function's sequence graph
	TypeID        string             // mangled identifier emitted by codegen
}

// ExternFunctionInfo is the payload for an ExternFunction symbol —
// declared by the test-library hookup (assert_true, fail, pass, ...).
type ExternFunctionInfo struct {
	TargetName    string
	Params        []SymbolRef
	ReturnType    SymbolRef
	HasReturnType bool
}

// TypeInfo is the payload for a Type symbol.
type TypeInfo struct {
	DescKind   TypeDescKind
	SourceName string // name reachable from EEL source, e.g. "digital"
	TargetName string // name emitted into target source, e.g. "pin<digital>"
	// PrimitiveID backfills to the symbol's own id once registered, the
	// way original_source's declare_type does for symbols::Primitive —
	// used by type analysis's literal/primitive unification table.
	PrimitiveID SymbolID
}

// EventInfo is the payload for an Event symbol.
type EventInfo struct {
	Predicate    SymbolRef // Function symbol; null if HasPredicate is false
	HasPredicate bool
	IsComplete   bool
	IsAwaited    bool // never consistently set upstream; see DESIGN.md Open Questions
	// Handlers is keyed by a packed source position (column<<32 | line,
	// per the corpus's design note) so declaration order is recoverable
	// deterministically across recompilations.
	Handlers   map[uint64]SymbolRef
	handleSeq  int // next handle{k} suffix to assign, independent of Handlers iteration order
	StableID   string // "event{symbolID}"
}

// IndirectInfo is the payload for a forward-reference placeholder.
type IndirectInfo struct {
	ExpectedKind SymbolKind
	ResolvedID   SymbolID // 0 until try_resolve_unresolved patches it
}

// Symbol is a single entry in the table's symbol arena. Exactly one of
// the payload pointers below is non-nil, matching Kind.
type Symbol struct {
	ID   SymbolID
	Name string
	Kind SymbolKind

	VariableInfo  *VariableInfo
	ConstantInfo  *ConstantInfo
	FunctionInfo  *FunctionInfo
	ExternInfo    *ExternFunctionInfo
	TypeInfo      *TypeInfo
	NamespaceInfo ScopeRef
	EventInfo     *EventInfo
	IndirectInfo  *IndirectInfo
}

// PackPosition forms the stable handler-map key described in the
// corpus's "Event handler ordering" design note: (column<<32 | line).
func PackPosition(line, column int) uint64 {
	return uint64(uint32(column))<<32 | uint64(uint32(line))
}

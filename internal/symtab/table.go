package symtab

// Package symtab implements the compiler's symbol table: two append-only
// arenas (scopes, symbols) plus a pending list of forward references,
// addressed from the outside only through fat handles (SymbolRef,
// ScopeRef) so growth of the arenas never invalidates a reference held
// by a caller.
//
// Grounded on original_source/includes/symbol_table.hpp and
// src/symbol_table.cc for the TablePtr<T> fat-handle pattern and the
// declare_*/find/defer_symbol/try_resolve_unresolved semantics, and on
// internal/resolver/symbol_table.go for the Go shape of a
// scope-map-backed table (arena slices, id-based lookup, statistics
// counters for -debug reporting).

// UnresolvedSymbol is a pending forward reference: a name looked up
// before its declaration was seen, recorded so try_resolve_unresolved
// can patch it once all declarations are in.
type UnresolvedSymbol struct {
	ExpectedKind       SymbolKind
	OriginScope        ScopeID
	IndirectionSymbol  SymbolID
	Name               string
}

// Scope is one entry in the table's scope arena: a name→symbol map and
// a parent link (zero for the root scope).
type Scope struct {
	ID      ScopeID
	Parent  ScopeID
	Symbols map[string]SymbolID
}

// SymbolTable owns every scope and symbol created during compilation of
// one EEL source file.
type SymbolTable struct {
	scopes     []Scope
	symbols    []Symbol
	unresolved []UnresolvedSymbol

	rootScopeID ScopeID

	// Ambient statistics with no effect on resolution semantics.
	// LookupCount counts Find calls; CacheHitCount is never incremented,
	// since the table has no lookup cache. Nothing in the driver reports
	// either counter.
	LookupCount   int
	CacheHitCount int
}

// ReservedSetup and ReservedLoop are the process-wide reserved function
// names the driver and codegen both key off of.
const (
	ReservedSetup = "__eel_setup"
	ReservedLoop  = "__eel_loop"
)

// IntegerPrimitives and FloatPrimitives list the sized integer and
// float source names the type-analysis literal/primitive unification
// rule (§4.4 rule 4) matches against; registered once at construction.
// usize is registered as a primitive but deliberately excluded from
// this set — see DESIGN.md's Open Question notes on the "seven integer
// primitives" count.
var IntegerPrimitives = []string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64"}
var FloatPrimitives = []string{"f32", "f64"}

// primitiveTargetNames maps a handful of primitives whose target name
// differs from their source name; anything absent here emits under its
// source name unchanged.
var primitiveTargetNames = map[string]string{
	"digital": "pin<digital>",
	"analog":  "pin<analog>",
}

// New constructs a SymbolTable with its root scope and the full
// primitive registry (unsigned/signed integers, floats, bool, usize,
// and the two pin element types digital/analog) already declared.
func New() *SymbolTable {
	t := &SymbolTable{}
	root := t.allocScope(0)
	t.rootScopeID = root.ID

	rootRef := ScopeRef{ID: root.ID, Table: t}
	for _, name := range IntegerPrimitives {
		rootRef.declarePrimitive(name, name)
	}
	rootRef.declarePrimitive("usize", "usize")
	for _, name := range FloatPrimitives {
		rootRef.declarePrimitive(name, name)
	}
	rootRef.declarePrimitive("bool", "bool")
	rootRef.declarePrimitive("digital", primitiveTargetNames["digital"])
	rootRef.declarePrimitive("analog", primitiveTargetNames["analog"])

	return t
}

func (t *SymbolTable) allocScope(parent ScopeID) *Scope {
	id := ScopeID(len(t.scopes) + 1)
	t.scopes = append(t.scopes, Scope{ID: id, Parent: parent, Symbols: make(map[string]SymbolID)})
	return &t.scopes[len(t.scopes)-1]
}

func (t *SymbolTable) allocSymbol() *Symbol {
	id := SymbolID(len(t.symbols) + 1)
	t.symbols = append(t.symbols, Symbol{ID: id})
	return &t.symbols[len(t.symbols)-1]
}

// RootScope returns a handle to the table's single root scope.
func (t *SymbolTable) RootScope() ScopeRef {
	return ScopeRef{ID: t.rootScopeID, Table: t}
}

// DeriveScope allocates a new scope whose parent is the given scope
// (the root scope if parent is the null handle) and returns a stable
// handle to it.
func (t *SymbolTable) DeriveScope(parent ScopeRef) ScopeRef {
	parentID := t.rootScopeID
	if !parent.IsNull() {
		parentID = parent.ID
	}
	s := t.allocScope(parentID)
	return ScopeRef{ID: s.ID, Table: t}
}

// GetScope looks up a scope by id. Failure (an id past the arena's
// current length) is an implementation bug, not a user error — callers
// that can't prove the id is in range should treat an out-of-range id as
// a SymbolTable-subsystem internal error themselves.
func (t *SymbolTable) GetScope(id ScopeID) ScopeRef {
	if int(id) < 1 || int(id) > len(t.scopes) {
		return ScopeRef{}
	}
	return ScopeRef{ID: id, Table: t}
}

// SymbolCount returns the number of symbols allocated so far, letting a
// caller enumerate every symbol (e.g. codegen's final sweep for
// complete events, by ascending id) via repeated GetSymbol calls
// without the table exposing its arena directly.
func (t *SymbolTable) SymbolCount() int {
	return len(t.symbols)
}

// GetSymbol looks up a symbol by id, analogous to GetScope.
func (t *SymbolTable) GetSymbol(id SymbolID) SymbolRef {
	if int(id) < 1 || int(id) > len(t.symbols) {
		return SymbolRef{}
	}
	return SymbolRef{ID: id, Table: t}
}

// reportUnresolved files a forward reference for later batch
// resolution.
func (t *SymbolTable) reportUnresolved(rec UnresolvedSymbol) {
	t.unresolved = append(t.unresolved, rec)
}

// Unresolved returns the current pending list, e.g. so the driver can
// surface one UndefinedType/identifier diagnostic per leftover record
// after TryResolveUnresolved has run.
func (t *SymbolTable) Unresolved() []UnresolvedSymbol {
	return t.unresolved
}

// TryResolveUnresolved attempts to resolve every pending forward
// reference: for each record, look up Name in OriginScope; if found,
// matches ExpectedKind, and (when ExpectedKind is Variable) the match
// is static, patch the Indirect symbol's ResolvedID and drop the
// record. Safe to call repeatedly — resolving nothing a second time in
// a row is a no-op, preserving idempotence across repeated calls.
func (t *SymbolTable) TryResolveUnresolved() {
	remaining := t.unresolved[:0]
	for _, rec := range t.unresolved {
		if t.tryResolveOne(rec) {
			continue
		}
		remaining = append(remaining, rec)
	}
	t.unresolved = remaining
}

func (t *SymbolTable) tryResolveOne(rec UnresolvedSymbol) bool {
	scope := t.GetScope(rec.OriginScope)
	if scope.IsNull() {
		return false
	}
	match := scope.Find(rec.Name)
	if match.IsNull() {
		return false
	}
	sym := match.Get()
	if sym.Kind != rec.ExpectedKind {
		return false
	}
	if rec.ExpectedKind == Variable && !sym.VariableInfo.IsStatic {
		return false
	}

	indirection := t.GetSymbol(rec.IndirectionSymbol)
	indirection.Get().IndirectInfo.ResolvedID = sym.ID
	return true
}

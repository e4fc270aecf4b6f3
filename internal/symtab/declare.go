package symtab

import (
	"sort"

	"github.com/eel-lang/eelc/internal/diag"
)

func internalDuplicateDefer(name string) error {
	return diag.Internal(diag.SymbolTable, "defer_symbol called for %q, which already has a declaration in this scope", name)
}

// Find searches this scope, then ascends to the parent chain until the
// root, returning the null handle if no scope in the chain declares
// name.
func (r ScopeRef) Find(name string) SymbolRef {
	r.Table.LookupCount++
	for cur := r; !cur.IsNull(); cur = cur.parent() {
		if id, ok := cur.scope().Symbols[name]; ok {
			return SymbolRef{ID: id, Table: r.Table}
		}
		if cur.IsRoot() {
			break
		}
	}
	return SymbolRef{}
}

// FindMember looks up name in this scope only, without ascending — the
// member-access primitive (`a.b` / `a::b` resolve to a FindMember call
// in the original, though both are in practice stubbed by callers to a
// single Find on the whole dotted text; see DESIGN.md).
func (r ScopeRef) FindMember(name string) SymbolRef {
	if id, ok := r.scope().Symbols[name]; ok {
		return SymbolRef{ID: id, Table: r.Table}
	}
	return SymbolRef{}
}

// Members returns every symbol declared directly in this scope (not
// ascending to parents), ordered by ascending SymbolID — i.e.
// declaration order, since ids are handed out from a single
// monotonically increasing arena. Codegen's async-state-field
// discovery (§4.5) walks a scope's Members to decide which variables
// of an Async block become fields of the enclosing functor's State.
func (r ScopeRef) Members() []SymbolRef {
	ids := make([]SymbolID, 0, len(r.scope().Symbols))
	for _, id := range r.scope().Symbols {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]SymbolRef, len(ids))
	for i, id := range ids {
		out[i] = SymbolRef{ID: id, Table: r.Table}
	}
	return out
}

// DeferSymbol creates an Indirect placeholder symbol for a
// use-before-declaration reference, files an UnresolvedSymbol record
// against this scope, and returns the placeholder's handle. Deferring
// an already-present name is an internal error: scope analysis is only
// supposed to defer a name once it has confirmed Find found nothing.
func (r ScopeRef) DeferSymbol(name string, expectedKind SymbolKind) (SymbolRef, error) {
	if _, exists := r.scope().Symbols[name]; exists {
		return SymbolRef{}, internalDuplicateDefer(name)
	}

	sym := r.Table.allocSymbol()
	sym.Name = name
	sym.Kind = Indirect
	sym.IndirectInfo = &IndirectInfo{ExpectedKind: expectedKind}

	r.Table.reportUnresolved(UnresolvedSymbol{
		ExpectedKind:      expectedKind,
		OriginScope:       r.ID,
		IndirectionSymbol: sym.ID,
		Name:              name,
	})

	return SymbolRef{ID: sym.ID, Table: r.Table}, nil
}

// declarePrimitive registers a Type symbol for a built-in primitive
// under its source name, backfilling PrimitiveID the way the original
// does for symbols::Primitive.
func (r ScopeRef) declarePrimitive(sourceName, targetName string) SymbolRef {
	sym := r.Table.allocSymbol()
	sym.Name = sourceName
	sym.Kind = TypeDecl
	sym.TypeInfo = &TypeInfo{DescKind: Primitive, SourceName: sourceName, TargetName: targetName}
	sym.TypeInfo.PrimitiveID = sym.ID
	r.scope().Symbols[sourceName] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}
}

// DeclareVar creates a Variable symbol in this scope. ok is false if
// name already names something in this scope — a same-scope
// collision left as an error for the caller to report; the
// scope analysis visitor turns a false ok into an AlreadyDefined
// diagnostic (see DESIGN.md).
func (r ScopeRef) DeclareVar(typ SymbolRef, name string, isStatic bool) (SymbolRef, bool) {
	if _, exists := r.scope().Symbols[name]; exists {
		return SymbolRef{}, false
	}
	sym := r.Table.allocSymbol()
	sym.Name = name
	sym.Kind = Variable
	sym.VariableInfo = &VariableInfo{Type: typ, IsStatic: isStatic}
	r.scope().Symbols[name] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}, true
}

// DeclareConst creates a Constant symbol, analogous to DeclareVar.
func (r ScopeRef) DeclareConst(typ SymbolRef, name string) (SymbolRef, bool) {
	if _, exists := r.scope().Symbols[name]; exists {
		return SymbolRef{}, false
	}
	sym := r.Table.allocSymbol()
	sym.Name = name
	sym.Kind = Constant
	sym.ConstantInfo = &ConstantInfo{Type: typ}
	r.scope().Symbols[name] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}, true
}

// DeclareType registers a non-primitive type under its source name
// (structs/unions/enums/traits are stubbed descriptors only, per the
// spec's Non-goals).
func (r ScopeRef) DeclareType(info *TypeInfo) (SymbolRef, bool) {
	if _, exists := r.scope().Symbols[info.SourceName]; exists {
		return SymbolRef{}, false
	}
	sym := r.Table.allocSymbol()
	sym.Name = info.SourceName
	sym.Kind = TypeDecl
	sym.TypeInfo = info
	r.scope().Symbols[info.SourceName] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}, true
}

// DeclareNamespace registers a Namespace symbol whose value is a freshly
// derived child scope.
func (r ScopeRef) DeclareNamespace(name string) (SymbolRef, bool) {
	if _, exists := r.scope().Symbols[name]; exists {
		return SymbolRef{}, false
	}
	sym := r.Table.allocSymbol()
	sym.Name = name
	sym.Kind = Namespace
	sym.NamespaceInfo = r.Table.DeriveScope(r)
	r.scope().Symbols[name] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}, true
}

// DeclareFunc always installs into the root scope, regardless of which
// scope r is — matching the original's declare_func, which is only
// ever called on the root scope but defensively ascends to root anyway
// (setup/loop/top-level functions are never nested).
func (r ScopeRef) DeclareFunc(name string, returnType SymbolRef, hasReturnType bool) (SymbolRef, bool) {
	root := r.Table.RootScope()
	if _, exists := root.scope().Symbols[name]; exists {
		return SymbolRef{}, false
	}

	sym := r.Table.allocSymbol()
	sym.Name = name
	sym.Kind = Function
	fnScope := r.Table.DeriveScope(root)
	sym.FunctionInfo = &FunctionInfo{
		Scope:         fnScope,
		ReturnType:    returnType,
		HasReturnType: hasReturnType,
	}
	root.scope().Symbols[name] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}, true
}

// DeclareExternFunc installs an ExternFunction symbol into the root
// scope — used by the --test helper-library hookup
// (assert_true/assert_false/fail/pass).
func (r ScopeRef) DeclareExternFunc(eelName, targetName string, returnType SymbolRef, hasReturnType bool, params []SymbolRef) (SymbolRef, bool) {
	root := r.Table.RootScope()
	if _, exists := root.scope().Symbols[eelName]; exists {
		return SymbolRef{}, false
	}
	sym := r.Table.allocSymbol()
	sym.Name = eelName
	sym.Kind = ExternFunction
	sym.ExternInfo = &ExternFunctionInfo{
		TargetName:    targetName,
		Params:        params,
		ReturnType:    returnType,
		HasReturnType: hasReturnType,
	}
	root.scope().Symbols[eelName] = sym.ID
	return SymbolRef{ID: sym.ID, Table: r.Table}, true
}

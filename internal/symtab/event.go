package symtab

import "fmt"

// EventDeclResult classifies the outcome of DeclareEvent /
// DeclareEventWithPredicate, letting the scope analysis visitor (which
// holds the source position the symbol table doesn't) decide which
// diag.Diagnostic, if any, to raise.
type EventDeclResult int

const (
	// EventDeclared: a brand new event was created, or a previously
	// incomplete one was completed. No diagnostic.
	EventDeclared EventDeclResult = iota
	// EventAlreadyComplete: an event with this name already exists and
	// is complete — DuplicateEvent.
	EventAlreadyComplete
	// EventNameKindConflict: a non-Event symbol already owns this name
	// — AlreadyDefined.
	EventNameKindConflict
)

func eventSymbol(t *SymbolTable, name string) *Symbol {
	sym := t.allocSymbol()
	sym.Name = name
	sym.Kind = Event
	sym.EventInfo = &EventInfo{Handlers: make(map[uint64]SymbolRef)}
	sym.EventInfo.StableID = fmt.Sprintf("event%d", sym.ID)
	return sym
}

// DeclareEvent installs (or completes) a predicateless event named name
// in the root scope.
func (r ScopeRef) DeclareEvent(name string) (SymbolRef, EventDeclResult) {
	return r.declareEventImpl(name, SymbolRef{}, false)
}

// DeclareEventWithPredicate is DeclareEvent plus attaching predicate as
// the event's predicate function.
func (r ScopeRef) DeclareEventWithPredicate(name string, predicate SymbolRef) (SymbolRef, EventDeclResult) {
	return r.declareEventImpl(name, predicate, true)
}

func (r ScopeRef) declareEventImpl(name string, predicate SymbolRef, hasPredicate bool) (SymbolRef, EventDeclResult) {
	root := r.Table.RootScope()
	existing := root.FindMember(name)

	var sym *Symbol
	if !existing.IsNull() {
		sym = existing.Get()
		if sym.Kind != Event {
			return existing, EventNameKindConflict
		}
		if sym.EventInfo.IsComplete {
			return existing, EventAlreadyComplete
		}
	} else {
		sym = eventSymbol(r.Table, name)
		root.scope().Symbols[name] = sym.ID
	}

	sym.EventInfo.HasPredicate = hasPredicate
	sym.EventInfo.Predicate = predicate
	sym.EventInfo.IsAwaited = false
	sym.EventInfo.IsComplete = true

	return SymbolRef{ID: sym.ID, Table: r.Table}, EventDeclared
}

// DeclareEventHandle registers a handler function for eventName, keyed
// by posKey (see PackPosition), auto-creating the event as incomplete
// if it doesn't exist yet. The handler itself is allocated here as a
// Function symbol with a fresh scope derived from root (handlers, like
// setup/loop, are always top-level); its TypeID is assigned
// event{id}_handle{k} where k is the 1-based order handlers were
// declared in (independent of posKey ordering, which only governs
// dispatch order at runtime, not the identifier suffix).
func (r ScopeRef) DeclareEventHandle(eventName string, posKey uint64) (event SymbolRef, handler SymbolRef) {
	root := r.Table.RootScope()
	eventRef := root.FindMember(eventName)

	var evSym *Symbol
	if eventRef.IsNull() {
		evSym = eventSymbol(r.Table, eventName)
		evSym.EventInfo.IsComplete = false
		root.scope().Symbols[eventName] = evSym.ID
		eventRef = SymbolRef{ID: evSym.ID, Table: r.Table}
	} else {
		evSym = eventRef.Get()
	}

	handlerScope := r.Table.DeriveScope(root)
	handlerSym := r.Table.allocSymbol()
	handlerSym.Name = fmt.Sprintf("%s_handle", eventName)
	handlerSym.Kind = Function
	evSym.EventInfo.handleSeq++
	handlerSym.FunctionInfo = &FunctionInfo{
		Scope:  handlerScope,
		TypeID: fmt.Sprintf("%s_handle%d", evSym.EventInfo.StableID, evSym.EventInfo.handleSeq),
	}

	evSym.EventInfo.Handlers[posKey] = SymbolRef{ID: handlerSym.ID, Table: r.Table}

	return eventRef, SymbolRef{ID: handlerSym.ID, Table: r.Table}
}

// Package codegen implements the compiler's third tree walk: it emits
// the target C++-equivalent source the runtime interface of §6 expects,
// lowering every setup/loop/event-predicate/handler function into a
// synchronous invoke() or, when its sequence graph says the function
// suspends, a switch-based resumable state machine (§4.5).
//
// Patterned on the internal/hir-to-backend pipeline for the
// overall "visitor that returns target-source strings and accumulates
// into ordered sections before a final assembly pass" shape, adapted
// end to end for EEL's functor/Event<> target rather than x64 — none of
// the HIR/MIR/LIR/register-allocation machinery applies to a
// source-to-source generator, so this package does not reuse it
// directly (see DESIGN.md for the corresponding deletion entry).
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/symtab"
)

// Generator walks a cst.Program a third time, having already been
// validated diagnostic-free by scope and type analysis, and renders it
// into target source. It implements cst.Visitor; expression nodes
// dispatch through the ordinary Accept mechanism and return their
// rendered text as the interface{} result, while declaration/statement
// nodes accumulate into the Generator's section buffers and the
// currently active funcEmit.
type Generator struct {
	cst.BaseVisitor

	Table      *symtab.SymbolTable
	FunctionOf map[cst.Node]symtab.SymbolRef

	currentScope    symtab.ScopeRef
	currentFunction symtab.SymbolRef
	scopeIndex      int

	fe *funcEmit // the function currently being emitted; nil at top level

	pinIDs map[symtab.SymbolID]int64 // variable SymbolID -> pin number, from the pin-number prescan

	globals  []string // top-level var/pin declarations, in source order
	functors []string // struct definitions, in the order their owning decl was visited
}

// New creates a Generator. functionOf must be the FunctionOf map scope
// analysis produced for the same program (the same synchronization
// mechanism type analysis consumes, reused here so codegen's own
// scope_index replay can never drift from the other two passes').
func New(table *symtab.SymbolTable, functionOf map[cst.Node]symtab.SymbolRef) *Generator {
	g := &Generator{Table: table, FunctionOf: functionOf}
	g.currentScope = table.RootScope()
	// scope_index starts at the root scope: the first scope scope
	// analysis derived has the next id after it.
	g.scopeIndex = int(table.RootScope().ID)
	return g
}

// TargetSpec is the validated target selection codegen adjusts exactly
// two things for (§4.5 "Target-conditioned emission"): the runtime
// header path and a leading source comment. Name is e.g. "avr"; Version
// is the matched concrete version string, e.g. "2.1.0".
type TargetSpec struct {
	Name    string
	Version string
}

// defaultTarget is used when the driver selects no explicit target —
// the default from §6's registry.
var defaultTarget = TargetSpec{Name: "avr"}

// Generate renders the whole program. err is a fatal internal error for
// an invariant scope/type analysis should already have guaranteed (an
// incomplete event reaching codegen, a non-ExternFunction call, an
// unresolved identifier); callers only invoke Generate once the input
// is known diagnostic-free.
func (g *Generator) Generate(program *cst.Program, target TargetSpec) (out string, err *diag.InternalError) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*diag.InternalError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()

	if target.Name == "" {
		target = defaultTarget
	}

	g.pinIDs = newPinScanner(g.Table, g.FunctionOf).scan(program)

	program.Accept(g)

	return g.assemble(target), nil
}

func (g *Generator) fatal(e *diag.InternalError) {
	panic(e)
}

// mangledName implements §4.5's "every variable symbol emits as
// __v{id}" rule; it is also used for constants, which share the same
// naming scheme (there is no distinction between the two at the
// codegen layer).
func mangledName(id symtab.SymbolID) string {
	return fmt.Sprintf("__v%d", id)
}

// targetTypeName resolves a TypeDecl symbol to the name it should carry
// in emitted target source (primitives like digital/analog differ from
// their EEL source name; everything else emits under its source name).
// ref may still be an unresolved Indirect placeholder in malformed input
// that somehow reached codegen; that resolves to the undefined-type
// placeholder text rather than panicking, since a failure here is
// already reported elsewhere as a diagnostic.
func targetTypeName(ref symtab.SymbolRef) string {
	if ref.IsNull() {
		return "/* undefined type */"
	}
	sym := ref.Get()
	if sym.Kind == symtab.Indirect {
		if sym.IndirectInfo.ResolvedID == 0 {
			return "/* undefined type */"
		}
		ref = symtab.SymbolRef{ID: sym.IndirectInfo.ResolvedID, Table: ref.Table}
		sym = ref.Get()
	}
	if sym.TypeInfo == nil {
		return "/* undefined type */"
	}
	if sym.TypeInfo.TargetName != "" {
		return sym.TypeInfo.TargetName
	}
	return sym.TypeInfo.SourceName
}

// returnTypeName is targetTypeName plus the void case for a function
// with no declared return type.
func returnTypeName(fn *symtab.FunctionInfo) string {
	if !fn.HasReturnType {
		return "void"
	}
	return targetTypeName(fn.ReturnType)
}

// enterFunction mirrors typeanalysis's own enterFunction: advance
// scope_index exactly once per function descended into, matching the
// single DeriveScope/function-scope-creation event scope analysis
// performed for the same node.
func (g *Generator) enterFunction(fnRef symtab.SymbolRef) (prevScope symtab.ScopeRef, prevFn symtab.SymbolRef) {
	prevScope, prevFn = g.currentScope, g.currentFunction
	g.scopeIndex++
	scope := g.Table.GetScope(symtab.ScopeID(g.scopeIndex))
	if scope.IsNull() {
		g.fatal(diag.Internal(diag.Codegen, "scope_index %d has no corresponding scope", g.scopeIndex))
	}
	g.currentScope = scope
	g.currentFunction = fnRef
	return
}

func (g *Generator) leaveFunction(prevScope symtab.ScopeRef, prevFn symtab.SymbolRef) {
	g.currentScope, g.currentFunction = prevScope, prevFn
}

// descendIfRecorded is type analysis's helper of the same name,
// adapted to return the rendered functor struct text (or "" if scope
// analysis skipped owner entirely — a duplicate/conflicting
// declaration that never got its own scope or sequence, already
// reported as a diagnostic by an earlier pass and therefore never
// reached by a codegen run at all in practice).
func (g *Generator) descendIfRecorded(owner cst.Node, body *cst.StmtBlock) string {
	fnRef, ok := g.FunctionOf[owner]
	if !ok {
		return ""
	}
	prevScope, prevFn := g.enterFunction(fnRef)
	text := g.emitFunctor(fnRef, body)
	g.leaveFunction(prevScope, prevFn)
	return text
}

// assemble concatenates every section into the final target source.
func (g *Generator) assemble(target TargetSpec) string {
	var b strings.Builder

	if target.Version != "" {
		fmt.Fprintf(&b, "// eelc: target=%s@%s\n", target.Name, target.Version)
	} else {
		fmt.Fprintf(&b, "// eelc: target=%s\n", target.Name)
	}

	header := "runtime/all.hpp"
	if target.Name != defaultTarget.Name {
		header = fmt.Sprintf("runtime/targets/%s.hpp", target.Name)
	}
	fmt.Fprintf(&b, "#include <%s>\n\n", header)

	for _, gl := range g.globals {
		b.WriteString(gl)
		b.WriteByte('\n')
	}
	if len(g.globals) > 0 {
		b.WriteByte('\n')
	}

	for _, fn := range g.functors {
		b.WriteString(fn)
		b.WriteByte('\n')
	}

	events := g.collectCompleteEvents()
	for _, ev := range events {
		b.WriteString(g.emitEventInstance(ev))
		b.WriteByte('\n')
	}
	if len(events) > 0 {
		b.WriteByte('\n')
	}

	b.WriteString(g.emitMain(events))

	return b.String()
}

// collectCompleteEvents enumerates every complete Event symbol in the
// table, in ascending SymbolID order (i.e. declaration/completion
// order) — a final sweep over the symbol table rather than AST
// visitation order, since a given event's completing node (EventDecl or
// OnDecl) can appear in either order relative to its handlers.
func (g *Generator) collectCompleteEvents() []symtab.SymbolRef {
	var out []symtab.SymbolRef
	for id := 1; id <= g.Table.SymbolCount(); id++ {
		ref := g.Table.GetSymbol(symtab.SymbolID(id))
		sym := ref.Get()
		if sym.Kind != symtab.Event {
			continue
		}
		if !sym.EventInfo.IsComplete {
			g.fatal(diag.Internal(diag.Codegen, "incomplete event %q reached codegen", sym.Name))
		}
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

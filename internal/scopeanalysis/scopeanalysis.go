// Package scopeanalysis implements the compiler's first tree walk: it
// creates scopes, declares every named thing the rest of the pipeline
// will need (variables, constants, functions, events, handlers), and
// builds each function's sequence graph.
//
// Grounded on the contract in original_source/src/symbol_table.cc's
// declare_event/declare_event_handle branching and on
// internal/resolver's "one pass, local mutable cursor
// state, errors accumulated rather than thrown" visitor shape.
package scopeanalysis

import (
	"fmt"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/sequence"
	"github.com/eel-lang/eelc/internal/symtab"
)

// Analyzer walks a cst.Program once, mutating a SymbolTable as it goes.
// It implements cst.Visitor by embedding cst.BaseVisitor and overriding
// every method that has work to do.
type Analyzer struct {
	cst.BaseVisitor

	Table *symtab.SymbolTable
	Diags diag.List

	currentScope    symtab.ScopeRef
	currentFunction symtab.SymbolRef // Function symbol; null outside any function/predicate/handler
	activeSequence  *sequence.Sequence

	// FunctionOf records, for every SetupDecl/LoopDecl/EventDecl/OnDecl
	// node this pass actually descended into, which Function symbol it
	// built a sequence graph for. A node absent from this map is one
	// scope analysis chose not to descend into (a DuplicateEvent or
	// AlreadyDefined conflict) — type analysis consults this map instead
	// of re-deriving the same branching, so the two passes' scope_index
	// counters can never drift apart.
	FunctionOf map[cst.Node]symtab.SymbolRef
}

// New creates an Analyzer over a fresh or caller-supplied table.
func New(table *symtab.SymbolTable) *Analyzer {
	a := &Analyzer{Table: table, FunctionOf: make(map[cst.Node]symtab.SymbolRef)}
	a.currentScope = table.RootScope()
	return a
}

// Analyze runs the pass over program. It returns the fatal internal
// error, if any invariant the parser should have already enforced was
// violated; otherwise diagnostics are available via a.Diags.
func (a *Analyzer) Analyze(program *cst.Program) (err *diag.InternalError) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*diag.InternalError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()
	program.Accept(a)
	return nil
}

func (a *Analyzer) fatal(e *diag.InternalError) {
	panic(e)
}

func (a *Analyzer) addDiag(kind diag.Kind, node cst.Node, message, expected string) {
	a.Diags.Add(diag.New(kind, node.Text(), message, expected, node.Pos()))
}

// resolveType looks up name (a type's source name) in the current
// scope; if it isn't declared yet, it defers it so a later declaration
// can complete the reference.
func (a *Analyzer) resolveType(name string) symtab.SymbolRef {
	if ref := a.currentScope.Find(name); !ref.IsNull() {
		return ref
	}
	ref, err := a.currentScope.DeferSymbol(name, symtab.TypeDecl)
	if err != nil {
		a.fatal(err.(*diag.InternalError))
	}
	return ref
}

func (a *Analyzer) boolType() symtab.SymbolRef {
	return a.Table.RootScope().Find("bool")
}

// VisitProgram visits every top-level declaration in order.
func (a *Analyzer) VisitProgram(node *cst.Program) interface{} {
	for _, d := range node.Decls {
		d.Accept(a)
	}
	return nil
}

// VisitSetupDecl / VisitLoopDecl declare the two reserved entry point
// functions. The parser only ever produces these at the program root,
// so a non-root current scope here is an internal error.
func (a *Analyzer) VisitSetupDecl(node *cst.SetupDecl) interface{} {
	a.declareRoutine(symtab.ReservedSetup, node.Body, node)
	return nil
}

func (a *Analyzer) VisitLoopDecl(node *cst.LoopDecl) interface{} {
	a.declareRoutine(symtab.ReservedLoop, node.Body, node)
	return nil
}

func (a *Analyzer) declareRoutine(name string, body *cst.StmtBlock, node cst.Node) {
	if !a.currentScope.IsRoot() {
		a.fatal(diag.Internal(diag.ScopeAnalysis, "%s declared outside root scope", name))
	}
	fnRef, ok := a.currentScope.DeclareFunc(name, symtab.SymbolRef{}, false)
	if !ok {
		a.fatal(diag.Internal(diag.ScopeAnalysis, "%s declared more than once", name))
	}
	a.descendIntoFunction(fnRef, body, node)
}

// descendIntoFunction builds fnRef's sequence graph, then visits body's
// statements directly against the function's own scope (the function's
// scope IS the sequence's root block; it is not itself wrapped in an
// extra enter_block/leave_block pair). owner is the source node this
// descent is recorded against in FunctionOf.
func (a *Analyzer) descendIntoFunction(fnRef symtab.SymbolRef, body *cst.StmtBlock, owner cst.Node) {
	fn := fnRef.Get().FunctionInfo
	fn.Sequence = sequence.New(sequence.ScopeID(fn.Scope.ID))
	a.FunctionOf[owner] = fnRef

	prevScope, prevSeq, prevFn := a.currentScope, a.activeSequence, a.currentFunction
	a.currentScope, a.activeSequence, a.currentFunction = fn.Scope, fn.Sequence, fnRef

	a.visitStmts(body.Stmts)

	a.currentScope, a.activeSequence, a.currentFunction = prevScope, prevSeq, prevFn
}

func (a *Analyzer) visitStmts(stmts []cst.Stmt) {
	for _, s := range stmts {
		s.Accept(a)
	}
}

// VisitVarDecl handles variable, constant, and static declarations,
// both as top-level globals and as statements inside a block.
func (a *Analyzer) VisitVarDecl(node *cst.VarDecl) interface{} {
	typ := a.resolveType(node.TypeName)

	var ok bool
	var ref symtab.SymbolRef
	if node.Kind == cst.VarKindConst {
		ref, ok = a.currentScope.DeclareConst(typ, node.Name)
	} else {
		ref, ok = a.currentScope.DeclareVar(typ, node.Name, node.Kind == cst.VarKindStatic)
	}
	if !ok {
		a.addDiag(diag.AlreadyDefined, node, "redeclaration of", node.Name)
	} else if node.Kind != cst.VarKindConst {
		ref.Get().VariableInfo.HasValue = node.HasInit
	}

	if node.HasInit {
		node.Init.Accept(a)
	}
	return nil
}

// VisitPinDecl resolves the digital/analog primitive and declares a
// variable of that type.
func (a *Analyzer) VisitPinDecl(node *cst.PinDecl) interface{} {
	elementName := "digital"
	if node.Element == cst.PinAnalog {
		elementName = "analog"
	}
	typ := a.Table.RootScope().Find(elementName)
	if ref, ok := a.currentScope.DeclareVar(typ, node.Name, false); !ok {
		a.addDiag(diag.AlreadyDefined, node, "redeclaration of", node.Name)
	} else {
		ref.Get().VariableInfo.HasValue = node.HasInit
	}
	if node.HasInit {
		node.Init.Accept(a)
	}
	return nil
}

// VisitEventDecl implements the event declare/complete/conflict state
// machine (§4.3): lookup in root, then branch on presence, kind, and
// completeness.
func (a *Analyzer) VisitEventDecl(node *cst.EventDecl) interface{} {
	root := a.Table.RootScope()
	existing := root.FindMember(node.Name)

	if existing.IsNull() {
		if !node.HasBody {
			root.DeclareEvent(node.Name)
			return nil
		}
		a.declareEventWithFreshPredicate(root, node.Name, node.Body, node)
		return nil
	}

	sym := existing.Get()
	if sym.Kind != symtab.Event {
		a.addDiag(diag.AlreadyDefined, node, "redeclared as event but already defined as", sym.Kind.String())
		return nil
	}
	if sym.EventInfo.IsComplete || !node.HasBody {
		a.addDiag(diag.DuplicateEvent, node, "event already declared", node.Name)
		return nil
	}

	a.declareEventWithFreshPredicate(root, node.Name, node.Body, node)
	return nil
}

func (a *Analyzer) declareEventWithFreshPredicate(root symtab.ScopeRef, name string, body *cst.StmtBlock, owner cst.Node) {
	predRef, ok := root.DeclareFunc(fmt.Sprintf("%s_predicate", name), a.boolType(), true)
	if !ok {
		a.fatal(diag.Internal(diag.ScopeAnalysis, "predicate function for event %q already declared", name))
	}
	_, result := root.DeclareEventWithPredicate(name, predRef)
	if result != symtab.EventDeclared {
		a.fatal(diag.Internal(diag.ScopeAnalysis, "declare_event_with_predicate for %q returned %v after a presence check that should have prevented it", name, result))
	}
	a.descendIntoFunction(predRef, body, owner)
}

// VisitOnDecl declares (or completes the auto-creation of) the named
// event's handler and builds its sequence graph.
func (a *Analyzer) VisitOnDecl(node *cst.OnDecl) interface{} {
	root := a.Table.RootScope()
	posKey := symtab.PackPosition(node.Pos().Line, node.Pos().Column)
	_, handler := root.DeclareEventHandle(node.EventName, posKey)
	a.descendIntoFunction(handler, node.Body, node)
	return nil
}

// VisitStmtBlock handles a *nested* block (if/while bodies, explicit
// braces) — unlike a function's top-level body, these do get their own
// enter_block/derive_scope/leave_block cycle.
func (a *Analyzer) VisitStmtBlock(node *cst.StmtBlock) interface{} {
	if a.activeSequence == nil {
		a.fatal(diag.Internal(diag.ScopeAnalysis, "statement block visited with no active sequence"))
	}

	innerScope := a.Table.DeriveScope(a.currentScope)
	a.activeSequence.EnterBlock(sequence.ScopeID(innerScope.ID))

	prevScope := a.currentScope
	a.currentScope = innerScope
	a.visitStmts(node.Stmts)
	a.currentScope = prevScope

	a.activeSequence.LeaveBlock()
	return nil
}

func (a *Analyzer) VisitExprStmt(node *cst.ExprStmt) interface{} {
	node.Expr.Accept(a)
	return nil
}

// VisitAwaitStmt promotes the enclosing block chain to Async before
// visiting the awaited expression.
func (a *Analyzer) VisitAwaitStmt(node *cst.AwaitStmt) interface{} {
	if a.activeSequence == nil {
		a.fatal(diag.Internal(diag.ScopeAnalysis, "await outside any active sequence"))
	}
	a.activeSequence.Yield()
	node.Expr.Accept(a)
	return nil
}

func (a *Analyzer) VisitReturnStmt(node *cst.ReturnStmt) interface{} {
	if node.HasExpr {
		node.Expr.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitIfStmt(node *cst.IfStmt) interface{} {
	node.Cond.Accept(a)
	node.Then.Accept(a)
	if node.HasElse {
		node.Else.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitWhileStmt(node *cst.WhileStmt) interface{} {
	node.Cond.Accept(a)
	node.Body.Accept(a)
	return nil
}

func (a *Analyzer) VisitBreakStmt(node *cst.BreakStmt) interface{}       { return nil }
func (a *Analyzer) VisitContinueStmt(node *cst.ContinueStmt) interface{} { return nil }

func (a *Analyzer) VisitSetPinStmt(node *cst.SetPinStmt) interface{} {
	node.Target.Accept(a)
	node.Value.Accept(a)
	return nil
}

// Literal expressions carry no references to resolve during scope
// analysis; they are left to type analysis.
func (a *Analyzer) VisitIntLiteral(node *cst.IntLiteral) interface{}       { return nil }
func (a *Analyzer) VisitFloatLiteral(node *cst.FloatLiteral) interface{}   { return nil }
func (a *Analyzer) VisitBoolLiteral(node *cst.BoolLiteral) interface{}     { return nil }
func (a *Analyzer) VisitCharLiteral(node *cst.CharLiteral) interface{}     { return nil }
func (a *Analyzer) VisitStringLiteral(node *cst.StringLiteral) interface{} { return nil }

// VisitFQNExpr is the identifier-reference rule: look up the joined
// name, deferring it (as a Variable) if it isn't declared yet.
func (a *Analyzer) VisitFQNExpr(node *cst.FQNExpr) interface{} {
	if ref := a.currentScope.Find(node.Joined); !ref.IsNull() {
		return nil
	}
	if _, err := a.currentScope.DeferSymbol(node.Joined, symtab.Variable); err != nil {
		a.fatal(err.(*diag.InternalError))
	}
	return nil
}

func (a *Analyzer) VisitBinaryExpr(node *cst.BinaryExpr) interface{} {
	node.Left.Accept(a)
	node.Right.Accept(a)
	return nil
}

func (a *Analyzer) VisitUnaryExpr(node *cst.UnaryExpr) interface{} {
	node.Operand.Accept(a)
	return nil
}

func (a *Analyzer) VisitAssignExpr(node *cst.AssignExpr) interface{} {
	node.Target.Accept(a)
	node.Value.Accept(a)
	return nil
}

func (a *Analyzer) VisitCastExpr(node *cst.CastExpr) interface{} {
	node.Operand.Accept(a)
	return nil
}

func (a *Analyzer) VisitCallExpr(node *cst.CallExpr) interface{} {
	node.Callee.Accept(a)
	for _, arg := range node.Args {
		arg.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitPinReadExpr(node *cst.PinReadExpr) interface{} {
	node.Target.Accept(a)
	return nil
}

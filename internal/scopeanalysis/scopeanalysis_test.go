package scopeanalysis

import (
	"testing"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/position"
	"github.com/eel-lang/eelc/internal/symtab"
)

var zeroSpan position.Span

// program builds a *cst.Program out of top-level decls, for tests that
// don't care about source text or positions.
func program(decls ...cst.Decl) *cst.Program {
	return cst.NewProgram(zeroSpan, "", decls)
}

func block(stmts ...cst.Stmt) *cst.StmtBlock {
	return cst.NewStmtBlock(zeroSpan, "", stmts)
}

// TestScopeBleed mirrors seed scenario 1: setup{u8 x = 2;}
// loop{f32 x = 2.2;} produces three scopes (root + two function
// scopes), each containing its own Variable x with a different
// declared type.
func TestScopeBleed(t *testing.T) {
	setupBody := block(cst.NewVarDecl(zeroSpan, "u8 x = 2;", cst.VarKindVar, "x", "u8", cst.NewIntLiteral(zeroSpan, "2", 2)))
	loopBody := block(cst.NewVarDecl(zeroSpan, "f32 x = 2.2;", cst.VarKindVar, "x", "f32", cst.NewFloatLiteral(zeroSpan, "2.2", 2.2)))

	table := symtab.New()
	a := New(table)
	prog := program(
		cst.NewSetupDecl(zeroSpan, "", setupBody),
		cst.NewLoopDecl(zeroSpan, "", loopBody),
	)
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("unexpected internal error: %v", err)
	}

	setupFn := table.RootScope().Find(symtab.ReservedSetup)
	loopFn := table.RootScope().Find(symtab.ReservedLoop)
	if setupFn.IsNull() || loopFn.IsNull() {
		t.Fatal("expected both __eel_setup and __eel_loop to be declared")
	}

	setupScope := setupFn.Get().FunctionInfo.Scope
	loopScope := loopFn.Get().FunctionInfo.Scope

	setupX := setupScope.FindMember("x")
	loopX := loopScope.FindMember("x")
	if setupX.IsNull() || loopX.IsNull() {
		t.Fatal("expected x declared in both function scopes")
	}
	if setupX.ID == loopX.ID {
		t.Fatal("setup's x and loop's x must be distinct symbols")
	}
	setupType := setupX.Get().VariableInfo.Type.Get().TypeInfo.SourceName
	loopType := loopX.Get().VariableInfo.Type.Get().TypeInfo.SourceName
	if setupType != "u8" || loopType != "f32" {
		t.Fatalf("expected types u8/f32, got %s/%s", setupType, loopType)
	}
}

// TestShadowing mirrors seed scenario 2: declaring a u16 x in an inner
// block leaves setup's own x in setup's scope, still typed u8.
func TestShadowing(t *testing.T) {
	inner := block(cst.NewVarDecl(zeroSpan, "u16 x = 4;", cst.VarKindVar, "x", "u16", cst.NewIntLiteral(zeroSpan, "4", 4)))
	ifStmt := cst.NewIfStmt(zeroSpan, "", cst.NewBoolLiteral(zeroSpan, "true", true), inner, nil)
	setupBody := block(
		cst.NewVarDecl(zeroSpan, "u8 x = 2;", cst.VarKindVar, "x", "u8", cst.NewIntLiteral(zeroSpan, "2", 2)),
		ifStmt,
	)

	table := symtab.New()
	a := New(table)
	if err := a.Analyze(program(cst.NewSetupDecl(zeroSpan, "", setupBody))); err != nil {
		t.Fatalf("unexpected internal error: %v", err)
	}

	setupFn := table.RootScope().Find(symtab.ReservedSetup)
	outerX := setupFn.Get().FunctionInfo.Scope.FindMember("x")
	if outerX.IsNull() {
		t.Fatal("expected outer x declared in setup's scope")
	}
	if outerX.Get().VariableInfo.Type.Get().TypeInfo.SourceName != "u8" {
		t.Fatal("outer x should be u8")
	}
}

// TestPredicatelessEvent mirrors seed scenario 3: `event x;` declares a
// complete Event with no predicate.
func TestPredicatelessEvent(t *testing.T) {
	table := symtab.New()
	a := New(table)
	if err := a.Analyze(program(cst.NewEventDecl(zeroSpan, "event x;", "x", nil))); err != nil {
		t.Fatalf("unexpected internal error: %v", err)
	}

	ev := table.RootScope().Find("x")
	if ev.IsNull() || ev.Get().Kind != symtab.Event {
		t.Fatal("expected an Event symbol named x")
	}
	info := ev.Get().EventInfo
	if info.HasPredicate || !info.IsComplete {
		t.Fatal("predicateless event should have HasPredicate=false, IsComplete=true")
	}
	if a.Diags.HasErrors() {
		t.Fatalf("expected no diagnostics, got %d", a.Diags.Len())
	}
}

// TestDeferredEventCompletion mirrors seed scenario 4: `on x {}
// event x {return true;}` — the handler creates an incomplete event
// first; the later event decl completes it with a predicate.
func TestDeferredEventCompletion(t *testing.T) {
	table := symtab.New()
	a := New(table)
	onDecl := cst.NewOnDecl(zeroSpan, "on x {}", "x", block())
	eventDecl := cst.NewEventDecl(zeroSpan, "event x {return true;}", "x", block(
		cst.NewReturnStmt(zeroSpan, "return true;", cst.NewBoolLiteral(zeroSpan, "true", true)),
	))

	if err := a.Analyze(program(onDecl, eventDecl)); err != nil {
		t.Fatalf("unexpected internal error: %v", err)
	}

	ev := table.RootScope().Find("x")
	if ev.IsNull() {
		t.Fatal("expected event x to exist")
	}
	info := ev.Get().EventInfo
	if !info.IsComplete || !info.HasPredicate {
		t.Fatal("event should be complete with a predicate after both passes")
	}
	if len(info.Handlers) != 1 {
		t.Fatalf("expected exactly one handler, got %d", len(info.Handlers))
	}
}

// TestDuplicateEvent mirrors seed scenario 5: declaring a complete
// event twice produces exactly one DuplicateEvent diagnostic.
func TestDuplicateEvent(t *testing.T) {
	table := symtab.New()
	a := New(table)
	body := func() *cst.StmtBlock {
		return block(cst.NewReturnStmt(zeroSpan, "return true;", cst.NewBoolLiteral(zeroSpan, "true", true)))
	}
	first := cst.NewEventDecl(zeroSpan, "event x { return true; }", "x", body())
	second := cst.NewEventDecl(zeroSpan, "event x { return true; }", "x", body())

	if err := a.Analyze(program(first, second)); err != nil {
		t.Fatalf("unexpected internal error: %v", err)
	}

	if a.Diags.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", a.Diags.Len())
	}
	if got := a.Diags.Diagnostics()[0].Kind; got.String() != "DuplicateEvent" {
		t.Fatalf("expected DuplicateEvent, got %v", got)
	}
}

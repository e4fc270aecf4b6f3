package symtab

import "testing"

func TestPrimitivesRegisteredInRootScope(t *testing.T) {
	st := New()
	root := st.RootScope()

	for _, name := range append(append([]string{}, IntegerPrimitives...), FloatPrimitives...) {
		ref := root.Find(name)
		if ref.IsNull() {
			t.Fatalf("expected primitive %q to be registered in root scope", name)
		}
		if ref.Get().Kind != TypeDecl {
			t.Fatalf("primitive %q should be a Type symbol, got %s", name, ref.Get().Kind)
		}
	}

	digital := root.Find("digital")
	if digital.IsNull() || digital.Get().TypeInfo.TargetName != "pin<digital>" {
		t.Fatal("digital primitive should carry target name pin<digital>")
	}
}

// Handles must survive further allocation: grabbing a SymbolRef, then
// allocating many more symbols (forcing slice growth), must still
// dereference to the original symbol.
func TestHandlesSurviveArenaGrowth(t *testing.T) {
	st := New()
	root := st.RootScope()

	u8 := root.Find("u8")
	firstVar, ok := root.DeclareVar(u8, "x", false)
	if !ok {
		t.Fatal("expected DeclareVar to succeed")
	}

	for i := 0; i < 500; i++ {
		root.DeclareVar(u8, fakeName(i), false)
	}

	if firstVar.Get().Name != "x" {
		t.Fatalf("handle to first variable should still resolve to 'x' after growth, got %q", firstVar.Get().Name)
	}
}

func fakeName(i int) string {
	return "pad" + string(rune('a'+i%26)) + string(rune('A'+(i/26)%26))
}

func TestDeclareVarRejectsDuplicateInSameScope(t *testing.T) {
	st := New()
	root := st.RootScope()
	u8 := root.Find("u8")

	if _, ok := root.DeclareVar(u8, "x", false); !ok {
		t.Fatal("first declaration of x should succeed")
	}
	if _, ok := root.DeclareVar(u8, "x", false); ok {
		t.Fatal("second declaration of x in the same scope should fail")
	}
}

func TestShadowingAcrossScopesIsDistinctSymbols(t *testing.T) {
	st := New()
	root := st.RootScope()
	u8 := root.Find("u8")
	u16 := root.Find("u16")

	outer, _ := root.DeclareVar(u8, "x", false)

	inner := st.DeriveScope(root)
	innerVar, _ := inner.DeclareVar(u16, "x", false)

	if outer.ID == innerVar.ID {
		t.Fatal("shadowed variable should be a distinct symbol from the outer one")
	}
	if found := inner.Find("x"); found.ID != innerVar.ID {
		t.Fatal("lookup from the inner scope should find the shadowing declaration")
	}
}

func TestDeferAndResolveUnresolvedSymbol(t *testing.T) {
	st := New()
	root := st.RootScope()

	placeholder, err := root.DeferSymbol("later", TypeDecl)
	if err != nil {
		t.Fatalf("unexpected error deferring symbol: %v", err)
	}
	if placeholder.Get().Kind != Indirect {
		t.Fatal("deferred symbol should have kind Indirect")
	}

	// "later" isn't declared yet: resolution should leave it pending.
	st.TryResolveUnresolved()
	if len(st.Unresolved()) != 1 {
		t.Fatalf("expected 1 unresolved record before declaration, got %d", len(st.Unresolved()))
	}

	root.DeclareType(&TypeInfo{DescKind: Struct, SourceName: "later", TargetName: "later"})
	st.TryResolveUnresolved()

	if len(st.Unresolved()) != 0 {
		t.Fatalf("expected 0 unresolved records after declaration, got %d", len(st.Unresolved()))
	}
	if placeholder.Get().IndirectInfo.ResolvedID == 0 {
		t.Fatal("indirect symbol's ResolvedID should be patched after resolution")
	}
}

func TestDeclareEventPredicatelessThenDuplicate(t *testing.T) {
	st := New()
	root := st.RootScope()

	ev, result := root.DeclareEvent("x")
	if result != EventDeclared {
		t.Fatalf("expected EventDeclared, got %v", result)
	}
	info := ev.Get().EventInfo
	if info.HasPredicate || !info.IsComplete {
		t.Fatal("predicateless event should be complete with HasPredicate=false")
	}

	_, dup := root.DeclareEvent("x")
	if dup != EventAlreadyComplete {
		t.Fatalf("expected EventAlreadyComplete on redeclaration, got %v", dup)
	}
}

func TestDeclareEventHandleAutoCreatesIncompleteEvent(t *testing.T) {
	st := New()
	root := st.RootScope()

	posA := PackPosition(1, 1)
	event, handler := root.DeclareEventHandle("e", posA)

	if event.Get().EventInfo.IsComplete {
		t.Fatal("auto-created event should start incomplete")
	}
	if got, ok := event.Get().EventInfo.Handlers[posA]; !ok || got.ID != handler.ID {
		t.Fatal("handler should be registered under its source position key")
	}

	_, completed := root.DeclareEventWithPredicate("e", SymbolRef{})
	if completed != EventDeclared {
		t.Fatalf("completing the auto-created event should succeed, got %v", completed)
	}
	if !event.Get().EventInfo.IsComplete {
		t.Fatal("event should be complete after its predicate body is supplied")
	}
}

package symtab

import "testing"

func TestRegisterTestHelpersDeclaresFourExterns(t *testing.T) {
	st := New()
	st.RegisterTestHelpers()
	root := st.RootScope()

	cases := []struct {
		name       string
		paramKinds []string
	}{
		{"assert_true", []string{"bool"}},
		{"assert_false", []string{"bool"}},
		{"fail", nil},
		{"pass", []string{"u8"}},
	}

	for _, c := range cases {
		ref := root.Find(c.name)
		if ref.IsNull() {
			t.Fatalf("expected %q to be registered", c.name)
		}
		sym := ref.Get()
		if sym.Kind != ExternFunction {
			t.Fatalf("%q should be an ExternFunction, got %s", c.name, sym.Kind)
		}
		if sym.ExternInfo.TargetName != c.name {
			t.Fatalf("%q should target the equivalently-named runtime function, got %q", c.name, sym.ExternInfo.TargetName)
		}
		if sym.ExternInfo.HasReturnType {
			t.Fatalf("%q should have no return type", c.name)
		}
		if len(sym.ExternInfo.Params) != len(c.paramKinds) {
			t.Fatalf("%q: expected %d params, got %d", c.name, len(c.paramKinds), len(sym.ExternInfo.Params))
		}
		for i, kind := range c.paramKinds {
			if got := sym.ExternInfo.Params[i].Get().Name; got != kind {
				t.Fatalf("%q: param %d should be %q, got %q", c.name, i, kind, got)
			}
		}
	}
}

func TestRegisterTestHelpersIsIdempotentAgainstPriorDeclarations(t *testing.T) {
	st := New()
	root := st.RootScope()
	u8 := root.Find("u8")
	root.DeclareVar(u8, "assert_true", false)

	st.RegisterTestHelpers()

	ref := root.Find("assert_true")
	if ref.IsNull() {
		t.Fatal("expected assert_true to still resolve")
	}
	if ref.Get().Kind != Variable {
		t.Fatalf("pre-existing assert_true variable should win over the helper extern, got %s", ref.Get().Kind)
	}
}

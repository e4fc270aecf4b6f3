package symtab

// RegisterTestHelpers installs the `--test` helper library (§6/§9)
// referenced by DeclareExternFunc's own doc comment: assert_true,
// assert_false, fail, and pass, each an ExternFunction bound to the
// runtime header's equivalently-named free functions. Call this once,
// before scope analysis walks the program, so `assert_true(x)` resolves
// like any other call.
func (t *SymbolTable) RegisterTestHelpers() {
	root := t.RootScope()
	boolType := root.Find("bool")
	u8Type := root.Find("u8")

	root.DeclareExternFunc("assert_true", "assert_true", SymbolRef{}, false, []SymbolRef{boolType})
	root.DeclareExternFunc("assert_false", "assert_false", SymbolRef{}, false, []SymbolRef{boolType})
	root.DeclareExternFunc("fail", "fail", SymbolRef{}, false, nil)
	root.DeclareExternFunc("pass", "pass", SymbolRef{}, false, []SymbolRef{u8Type})
}

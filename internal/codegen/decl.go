package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/symtab"
)

func (g *Generator) VisitProgram(node *cst.Program) interface{} {
	for _, d := range node.Decls {
		d.Accept(g)
	}
	return nil
}

func (g *Generator) VisitSetupDecl(node *cst.SetupDecl) interface{} {
	if text := g.descendIfRecorded(node, node.Body); text != "" {
		g.functors = append(g.functors, text)
	}
	return nil
}

func (g *Generator) VisitLoopDecl(node *cst.LoopDecl) interface{} {
	if text := g.descendIfRecorded(node, node.Body); text != "" {
		g.functors = append(g.functors, text)
	}
	return nil
}

// VisitEventDecl emits the event's predicate functor, guarded by
// FunctionOf the same way a duplicate EventDecl is guarded everywhere
// else: scope analysis never recorded a sequence for a node it refused
// to declare, so descendIfRecorded silently produces nothing for it.
func (g *Generator) VisitEventDecl(node *cst.EventDecl) interface{} {
	if !node.HasBody {
		return nil
	}
	if text := g.descendIfRecorded(node, node.Body); text != "" {
		g.functors = append(g.functors, text)
	}
	return nil
}

func (g *Generator) VisitOnDecl(node *cst.OnDecl) interface{} {
	if text := g.descendIfRecorded(node, node.Body); text != "" {
		g.functors = append(g.functors, text)
	}
	return nil
}

// declaredTypeRef returns a Variable or Constant symbol's declared type
// handle — the same two-case switch typeanalysis.declaredTypeOf makes,
// minus the diagnostic-producing parts codegen never needs (type
// analysis already ran diagnostic-free by the time codegen runs).
func declaredTypeRef(sym symtab.SymbolRef) symtab.SymbolRef {
	s := sym.Get()
	switch s.Kind {
	case symtab.Variable:
		return s.VariableInfo.Type
	case symtab.Constant:
		return s.ConstantInfo.Type
	}
	return symtab.SymbolRef{}
}

// VisitVarDecl renders a variable, constant, or static declaration.
// Globals (g.fe == nil) always become a plain file-scope declaration.
// Inside a function, the declaration rule of §4.5 applies: a constant
// is always a plain local; a variable in the CURRENT block (not the
// whole function) being Async becomes a State field assignment instead
// of a declaration, since the field itself already exists in State.
func (g *Generator) VisitVarDecl(node *cst.VarDecl) interface{} {
	sym := g.currentScope.FindMember(node.Name)
	if sym.IsNull() {
		g.fatal(diag.Internal(diag.Codegen, "variable %q missing from its own scope during codegen", node.Name))
	}
	typ := targetTypeName(declaredTypeRef(sym))
	id := mangledName(sym.ID)

	var initText string
	if node.HasInit {
		initText = g.exprText(node.Init)
	}

	qualifier := ""
	if node.Kind == cst.VarKindConst {
		qualifier = "const "
	}

	if g.fe == nil {
		if node.HasInit {
			g.globals = append(g.globals, fmt.Sprintf("%s%s %s = %s;", qualifier, typ, id, initText))
		} else {
			g.globals = append(g.globals, fmt.Sprintf("%s%s %s;", qualifier, typ, id))
		}
		return nil
	}

	promoted := node.Kind != cst.VarKindConst && g.fe.curBlockAsync
	if promoted {
		if node.HasInit {
			g.fe.emit("state.%s = %s;\n", id, initText)
		}
		return nil
	}

	if node.HasInit {
		g.fe.emit("%s%s %s = %s;\n", qualifier, typ, id, initText)
	} else {
		g.fe.emit("%s%s %s;\n", qualifier, typ, id)
	}
	return nil
}

// VisitPinDecl emits the pin object's construction unconditionally —
// `{target_type} {id} { {pin_id} };` regardless of sync/async context —
// since pin objects are never state-promoted (§4.5).
func (g *Generator) VisitPinDecl(node *cst.PinDecl) interface{} {
	sym := g.currentScope.FindMember(node.Name)
	if sym.IsNull() {
		g.fatal(diag.Internal(diag.Codegen, "pin %q missing from its own scope during codegen", node.Name))
	}
	targetType := targetTypeName(sym.Get().VariableInfo.Type)
	id := mangledName(sym.ID)
	pinNum, ok := g.pinIDs[sym.ID]
	if !ok {
		g.fatal(diag.Internal(diag.Codegen, "pin %q has no resolved pin number", node.Name))
	}

	line := fmt.Sprintf("%s %s { %d };", targetType, id, pinNum)
	if g.fe == nil {
		g.globals = append(g.globals, line)
	} else {
		g.fe.emit("%s\n", line)
	}
	return nil
}

// emitFunctor renders fnRef's functor struct: a plain invoke() for a
// sync function, or an AsyncFunction-derived State/step/begin_invoke
// trio for an async one.
func (g *Generator) emitFunctor(fnRef symtab.SymbolRef, body *cst.StmtBlock) string {
	sym := fnRef.Get()
	fn := sym.FunctionInfo
	typeID := fn.TypeID
	if typeID == "" {
		typeID = sym.Name
	}
	fn.TypeID = typeID

	fe := g.scanFunction(fnRef, body)
	prevFe := g.fe
	g.fe = fe
	defer func() { g.fe = prevFe }()

	fe.cases = []*strings.Builder{{}}
	for _, st := range body.Stmts {
		st.Accept(g)
	}

	var out strings.Builder

	if !fe.isAsyncFn {
		fmt.Fprintf(&out, "struct %s {\n", typeID)
		fmt.Fprintf(&out, "    static %s invoke() {\n", returnTypeName(fn))
		out.WriteString(indent(fe.cases[0].String(), 8))
		out.WriteString("    }\n")
		out.WriteString("};\n")
		return out.String()
	}

	fe.emit("return 1;\n")

	fmt.Fprintf(&out, "struct %s : AsyncFunction {\n", typeID)
	out.WriteString("    struct State {\n")
	out.WriteString("        u8 s = 0;\n")
	if fn.HasReturnType {
		fmt.Fprintf(&out, "        %s r;\n", returnTypeName(fn))
	}
	for _, f := range fe.fields {
		fmt.Fprintf(&out, "        %s\n", f)
	}
	out.WriteString("    };\n\n")

	out.WriteString("    static int step(State& state) {\n")
	out.WriteString("        switch (state.s) {\n")
	for i, c := range fe.cases {
		fmt.Fprintf(&out, "        case %d: {\n", i)
		out.WriteString(indent(fe.resolveMarkers(c.String()), 12))
		out.WriteString("        }\n")
	}
	out.WriteString("        }\n")
	out.WriteString("        return 1;\n")
	out.WriteString("    }\n\n")

	out.WriteString("    static int begin_invoke(State& state) {\n")
	out.WriteString("        state.s = 0;\n")
	out.WriteString("        return step(state);\n")
	out.WriteString("    }\n")
	out.WriteString("};\n")

	return out.String()
}

// indent prefixes every non-blank line of s with n spaces.
func indent(s string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// emitEventInstance renders the final `Event<Predicate, Handles...>
// event{id};` global for one complete event.
func (g *Generator) emitEventInstance(evRef symtab.SymbolRef) string {
	info := evRef.Get().EventInfo

	predicateType := "PredicateLess"
	if info.HasPredicate {
		predicateType = info.Predicate.Get().FunctionInfo.TypeID
		if predicateType == "" {
			predicateType = info.Predicate.Get().Name
		}
	}

	params := append([]string{predicateType}, g.orderedHandlerTypes(info)...)
	return fmt.Sprintf("Event<%s> %s;", strings.Join(params, ", "), info.StableID)
}

// orderedHandlerTypes returns each handler's mangled type, ordered by
// the packed source position its handler was declared at — the stable
// declaration order §9's "Event handler ordering" note calls for,
// independent of the handleSeq suffix assigned to each handler's own
// identifier.
func (g *Generator) orderedHandlerTypes(info *symtab.EventInfo) []string {
	keys := make([]uint64, 0, len(info.Handlers))
	for k := range info.Handlers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = info.Handlers[k].Get().FunctionInfo.TypeID
	}
	return out
}

// emitMain assembles the program's entry point: run setup to
// completion (synchronously or by driving its State machine while
// dispatching every event's handlers each iteration), then loop forever
// doing the same for the program's steady-state body.
func (g *Generator) emitMain(events []symtab.SymbolRef) string {
	var b strings.Builder
	b.WriteString("int main() {\n")

	root := g.Table.RootScope()
	setupRef := root.FindMember(symtab.ReservedSetup)
	loopRef := root.FindMember(symtab.ReservedLoop)

	if !setupRef.IsNull() {
		fn := setupRef.Get().FunctionInfo
		if fn.Sequence != nil && fn.Sequence.Root().IsAsync() {
			fmt.Fprintf(&b, "    %s::State __eel_setup_state;\n", symtab.ReservedSetup)
			fmt.Fprintf(&b, "    while (!%s::step(__eel_setup_state)) {\n", symtab.ReservedSetup)
			for _, ev := range events {
				fmt.Fprintf(&b, "        run_handles(%s);\n", ev.Get().EventInfo.StableID)
			}
			b.WriteString("    }\n")
		} else {
			fmt.Fprintf(&b, "    %s::invoke();\n", symtab.ReservedSetup)
		}
		b.WriteString("\n")
	}

	loopAsync := !loopRef.IsNull() && loopRef.Get().FunctionInfo.Sequence != nil && loopRef.Get().FunctionInfo.Sequence.Root().IsAsync()
	if loopAsync {
		fmt.Fprintf(&b, "    %s::State __eel_loop_state;\n", symtab.ReservedLoop)
	}

	b.WriteString("    while (true) {\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "        run_handles(%s);\n", ev.Get().EventInfo.StableID)
	}
	if !loopRef.IsNull() {
		if loopAsync {
			fmt.Fprintf(&b, "        if (%s::step(__eel_loop_state)) { __eel_loop_state.s = 0; }\n", symtab.ReservedLoop)
		} else {
			fmt.Fprintf(&b, "        %s::invoke();\n", symtab.ReservedLoop)
		}
	}
	b.WriteString("    }\n")
	b.WriteString("}\n")

	return b.String()
}

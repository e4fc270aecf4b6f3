package codegen

import (
	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
)

// VisitStmtBlock dispatches to the precomputed blockInfo scan.go already
// recorded for this exact node (nil for the function's own top-level
// body, which isn't itself a nested block in the sequence graph — its
// statements run directly against curBlockAsync as set by scanFunction).
func (g *Generator) VisitStmtBlock(node *cst.StmtBlock) interface{} {
	info, ok := g.fe.blocks[node]

	prevScope := g.currentScope
	prevAsync := g.fe.curBlockAsync
	if ok {
		g.currentScope = info.scope
		g.fe.curBlockAsync = info.async
	}

	for _, st := range node.Stmts {
		st.Accept(g)
	}

	g.currentScope = prevScope
	g.fe.curBlockAsync = prevAsync
	return nil
}

func (g *Generator) VisitExprStmt(node *cst.ExprStmt) interface{} {
	g.fe.emit("%s;\n", g.exprText(node.Expr))
	return nil
}

// VisitAwaitStmt lowers `await cond;` to a spin-check-and-suspend pair:
// loop back into the same case until cond holds, then fall through to
// the next sequential case. Unlike if/while's arbitrary jump targets,
// the next case here is always known to be "the very next one", so the
// continuation uses a relative += 1 rather than an absolute marker.
func (g *Generator) VisitAwaitStmt(node *cst.AwaitStmt) interface{} {
	cond := g.exprText(node.Expr)
	g.fe.emit("if (%s) {\n", cond)
	g.fe.emit("    state.s += 1;\n")
	g.fe.emit("} else {\n")
	g.fe.emit("    return 0;\n")
	g.fe.emit("}\n")
	g.fe.openCaseNamed(g.fe.nextSequentialMarker())
	return nil
}

func (g *Generator) VisitReturnStmt(node *cst.ReturnStmt) interface{} {
	if !g.fe.isAsyncFn {
		if node.HasExpr {
			g.fe.emit("return %s;\n", g.exprText(node.Expr))
		} else {
			g.fe.emit("return;\n")
		}
		return nil
	}
	if node.HasExpr {
		g.fe.emit("state.r = %s;\n", g.exprText(node.Expr))
	}
	g.fe.emit("return 1;\n")
	return nil
}

// VisitIfStmt emits a plain C++ if/else when neither arm suspends.
// When either arm does, the condition instead steers the state machine:
// jump into Then's own case on true, into Else's case (or straight to
// the rejoin point if there is no Else) on false. Both arms' cases end
// by jumping to the same rejoin marker, so control reunifies regardless
// of which arm ran.
func (g *Generator) VisitIfStmt(node *cst.IfStmt) interface{} {
	cond := g.exprText(node.Cond)
	thenAsync := g.fe.blocks[node.Then] != nil && g.fe.blocks[node.Then].async
	elseAsync := node.HasElse && g.fe.blocks[node.Else] != nil && g.fe.blocks[node.Else].async

	if !thenAsync && !elseAsync {
		g.fe.emit("if (%s) {\n", cond)
		node.Then.Accept(g)
		g.fe.emit("}")
		if node.HasElse {
			g.fe.emit(" else {\n")
			node.Else.Accept(g)
			g.fe.emit("}")
		}
		g.fe.emit("\n")
		return nil
	}

	rejoin := g.fe.newMarker()
	thenMarker := g.fe.newMarker()

	falseTarget := rejoin
	var elseMarker string
	if node.HasElse {
		elseMarker = g.fe.newMarker()
		falseTarget = elseMarker
	}

	g.fe.emit("if (%s) {\n", cond)
	g.fe.emit("    state.s = %s;\n", thenMarker)
	g.fe.emit("} else {\n")
	g.fe.emit("    state.s = %s;\n", falseTarget)
	g.fe.emit("}\n")
	g.fe.emit("return 0;\n")

	g.fe.openCaseNamed(thenMarker)
	node.Then.Accept(g)
	g.fe.emit("state.s = %s;\n", rejoin)
	g.fe.emit("return 0;\n")

	if node.HasElse {
		g.fe.openCaseNamed(elseMarker)
		node.Else.Accept(g)
		g.fe.emit("state.s = %s;\n", rejoin)
		g.fe.emit("return 0;\n")
	}

	g.fe.openCaseNamed(rejoin)
	return nil
}

// VisitWhileStmt mirrors VisitIfStmt's sync/async split. An async loop
// needs a dedicated header case to re-test the condition on every
// resumption (the synchronous form can simply loop in place), and pushes
// a loopFrame so nested break/continue reach the right case regardless
// of whether the body they're physically inside is itself sync or
// async.
func (g *Generator) VisitWhileStmt(node *cst.WhileStmt) interface{} {
	bodyAsync := g.fe.blocks[node.Body] != nil && g.fe.blocks[node.Body].async

	if !bodyAsync {
		cond := g.exprText(node.Cond)
		g.fe.loopStack = append(g.fe.loopStack, loopFrame{async: false})
		g.fe.emit("while (%s) {\n", cond)
		node.Body.Accept(g)
		g.fe.emit("}\n")
		g.fe.loopStack = g.fe.loopStack[:len(g.fe.loopStack)-1]
		return nil
	}

	header := g.fe.newMarker()
	bodyMarker := g.fe.newMarker()
	after := g.fe.newMarker()

	g.fe.emit("state.s = %s;\n", header)
	g.fe.emit("return 0;\n")

	g.fe.openCaseNamed(header)
	cond := g.exprText(node.Cond)
	g.fe.emit("if (%s) {\n", cond)
	g.fe.emit("    state.s = %s;\n", bodyMarker)
	g.fe.emit("} else {\n")
	g.fe.emit("    state.s = %s;\n", after)
	g.fe.emit("}\n")
	g.fe.emit("return 0;\n")

	g.fe.openCaseNamed(bodyMarker)
	g.fe.loopStack = append(g.fe.loopStack, loopFrame{async: true, header: header, after: after})
	node.Body.Accept(g)
	g.fe.loopStack = g.fe.loopStack[:len(g.fe.loopStack)-1]
	g.fe.emit("state.s = %s;\n", header)
	g.fe.emit("return 0;\n")

	g.fe.openCaseNamed(after)
	return nil
}

func (g *Generator) VisitBreakStmt(node *cst.BreakStmt) interface{} {
	frame := g.fe.innermostLoop()
	if frame.async {
		g.fe.emit("state.s = %s;\n", frame.after)
		g.fe.emit("return 0;\n")
	} else {
		g.fe.emit("break;\n")
	}
	return nil
}

func (g *Generator) VisitContinueStmt(node *cst.ContinueStmt) interface{} {
	frame := g.fe.innermostLoop()
	if frame.async {
		g.fe.emit("state.s = %s;\n", frame.header)
		g.fe.emit("return 0;\n")
	} else {
		g.fe.emit("continue;\n")
	}
	return nil
}

// VisitSetPinStmt lowers the two runtime-visible set forms to method
// calls on the pin object; SetPinNumber carries no runtime effect of its
// own (the pinscan prescan already consumed it to assign the pin object
// its constructor argument).
func (g *Generator) VisitSetPinStmt(node *cst.SetPinStmt) interface{} {
	if node.Form == cst.SetPinNumber {
		return nil
	}
	target := g.exprText(node.Target)
	value := g.exprText(node.Value)
	switch node.Form {
	case cst.SetPinValue:
		g.fe.emit("%s.write(%s);\n", target, value)
	case cst.SetPinMode:
		g.fe.emit("%s.set_mode(%s);\n", target, value)
	default:
		g.fatal(diag.Internal(diag.Codegen, "unknown SetPinForm %d", node.Form))
	}
	return nil
}

package codegen

import (
	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/symtab"
)

// pinScanner runs once, before the main emission walk, to resolve every
// pin variable's numeric id: either from its own PinDecl's inline
// initializer (`digital x = 1;`) or from a later `set x pin N;`
// statement anywhere in the program. It mirrors typeanalysis's
// scope_index replay exactly (the same FunctionOf-gated descent, the
// same per-StmtBlock scope derivation) purely so FQNExpr/PinDecl names
// resolve against the right scope — it records no diagnostics and
// builds nothing the other passes consume.
type pinScanner struct {
	cst.BaseVisitor

	table      *symtab.SymbolTable
	functionOf map[cst.Node]symtab.SymbolRef

	currentScope symtab.ScopeRef
	scopeIndex   int

	ids map[symtab.SymbolID]int64
}

func newPinScanner(table *symtab.SymbolTable, functionOf map[cst.Node]symtab.SymbolRef) *pinScanner {
	s := &pinScanner{table: table, functionOf: functionOf, ids: make(map[symtab.SymbolID]int64)}
	s.currentScope = table.RootScope()
	s.scopeIndex = int(table.RootScope().ID)
	return s
}

func (s *pinScanner) scan(program *cst.Program) map[symtab.SymbolID]int64 {
	program.Accept(s)
	return s.ids
}

func (s *pinScanner) VisitProgram(node *cst.Program) interface{} {
	for _, d := range node.Decls {
		d.Accept(s)
	}
	return nil
}

func (s *pinScanner) VisitSetupDecl(node *cst.SetupDecl) interface{} {
	s.descend(node, node.Body)
	return nil
}

func (s *pinScanner) VisitLoopDecl(node *cst.LoopDecl) interface{} {
	s.descend(node, node.Body)
	return nil
}

func (s *pinScanner) VisitEventDecl(node *cst.EventDecl) interface{} {
	if node.HasBody {
		s.descend(node, node.Body)
	}
	return nil
}

func (s *pinScanner) VisitOnDecl(node *cst.OnDecl) interface{} {
	s.descend(node, node.Body)
	return nil
}

// descend only advances scope_index (and thus only resolves names) for
// a node FunctionOf actually recorded — a node scope analysis skipped
// (a duplicate/conflicting declaration) never allocated a scope, so
// there is nothing to descend into here either.
func (s *pinScanner) descend(owner cst.Node, body *cst.StmtBlock) {
	if _, ok := s.functionOf[owner]; !ok {
		return
	}
	s.scopeIndex++
	scope := s.table.GetScope(symtab.ScopeID(s.scopeIndex))
	if scope.IsNull() {
		return
	}
	prev := s.currentScope
	s.currentScope = scope
	for _, st := range body.Stmts {
		st.Accept(s)
	}
	s.currentScope = prev
}

func (s *pinScanner) VisitStmtBlock(node *cst.StmtBlock) interface{} {
	s.scopeIndex++
	scope := s.table.GetScope(symtab.ScopeID(s.scopeIndex))
	if scope.IsNull() {
		return nil
	}
	prev := s.currentScope
	s.currentScope = scope
	for _, st := range node.Stmts {
		st.Accept(s)
	}
	s.currentScope = prev
	return nil
}

func (s *pinScanner) VisitIfStmt(node *cst.IfStmt) interface{} {
	node.Then.Accept(s)
	if node.HasElse {
		node.Else.Accept(s)
	}
	return nil
}

func (s *pinScanner) VisitWhileStmt(node *cst.WhileStmt) interface{} {
	node.Body.Accept(s)
	return nil
}

// VisitPinDecl records x's pin number directly from `digital x = N;`,
// per cst.go's documented rule that the inline initializer IS the pin
// number in this form.
func (s *pinScanner) VisitPinDecl(node *cst.PinDecl) interface{} {
	if !node.HasInit {
		return nil
	}
	sym := s.currentScope.FindMember(node.Name)
	if sym.IsNull() {
		return nil
	}
	if v, ok := intLiteralValue(node.Init); ok {
		s.ids[sym.ID] = v
	}
	return nil
}

// VisitSetPinStmt records x's pin number from the separate `set x pin
// N;` form.
func (s *pinScanner) VisitSetPinStmt(node *cst.SetPinStmt) interface{} {
	if node.Form != cst.SetPinNumber {
		return nil
	}
	fqn, ok := node.Target.(*cst.FQNExpr)
	if !ok {
		return nil
	}
	sym := s.currentScope.Find(fqn.Joined)
	if sym.IsNull() {
		return nil
	}
	if v, ok := intLiteralValue(node.Value); ok {
		s.ids[sym.ID] = v
	}
	return nil
}

// intLiteralValue constant-folds the handful of literal shapes a pin
// number can take (a bare integer, or its negation — no other
// expression is valid here per §4.4's "pin initializer must be u8"
// rule, which a real parser only ever satisfies with a literal).
func intLiteralValue(e cst.Expr) (int64, bool) {
	switch n := e.(type) {
	case *cst.IntLiteral:
		return n.Value, true
	case *cst.UnaryExpr:
		if n.Op == cst.OpNeg {
			if v, ok := intLiteralValue(n.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

package typeanalysis

import (
	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/symtab"
)

// Analyzer walks a cst.Program a second time, checking every node
// scope analysis already named against the §4.4 equality rules. It
// never declares anything new — FunctionOf (produced by the first
// pass) tells it exactly which SetupDecl/LoopDecl/EventDecl/OnDecl
// nodes to descend into, so both passes derive identically many scopes
// in identical order without type analysis re-deriving any scope
// itself.
type Analyzer struct {
	cst.BaseVisitor

	Table      *symtab.SymbolTable
	FunctionOf map[cst.Node]symtab.SymbolRef
	Diags      diag.List

	currentScope    symtab.ScopeRef
	currentFunction symtab.SymbolRef
	scopeIndex      int
	expectedType    *Type
}

// New creates an Analyzer. functionOf must be the FunctionOf map scope
// analysis produced for the same program.
func New(table *symtab.SymbolTable, functionOf map[cst.Node]symtab.SymbolRef) *Analyzer {
	a := &Analyzer{Table: table, FunctionOf: functionOf}
	a.currentScope = table.RootScope()
	// scope_index starts at the root scope: the first scope scope
	// analysis derived has the next id after it.
	a.scopeIndex = int(table.RootScope().ID)
	return a
}

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

func (a *Analyzer) primitiveType(name string) Type {
	return FromSymbol(a.Table.RootScope().Find(name))
}

func (a *Analyzer) boolType() Type { return a.primitiveType("bool") }

// typeOf dispatches an expression node and asserts its Accept result
// back to a Type — every Expr Visit method below returns one.
func (a *Analyzer) typeOf(e cst.Expr) Type {
	return e.Accept(a).(Type)
}

// rawSymbolOf resolves an expression directly to the symbol it names,
// without the Variable/Constant substitution Equals performs — needed
// where a rule cares about the symbol's own kind (assignment's "target
// must be a Variable", not what the variable's declared type is).
func (a *Analyzer) rawSymbolOf(e cst.Expr) symtab.SymbolRef {
	fqn, ok := e.(*cst.FQNExpr)
	if !ok {
		return symtab.SymbolRef{}
	}
	return a.currentScope.Find(fqn.Joined)
}

func (a *Analyzer) visitStmts(stmts []cst.Stmt) {
	for _, s := range stmts {
		s.Accept(a)
	}
}

// enterFunction advances scope_index exactly once — mirroring the one
// DeriveScope/function-scope-creation event scope analysis performed
// for this same node — and switches into fnRef's scope.
func (a *Analyzer) enterFunction(fnRef symtab.SymbolRef) (prevScope symtab.ScopeRef, prevFn symtab.SymbolRef) {
	prevScope, prevFn = a.currentScope, a.currentFunction
	a.scopeIndex++
	scope := a.Table.GetScope(symtab.ScopeID(a.scopeIndex))
	if scope.IsNull() {
		a.fatal(diag.Internal(diag.TypeAnalysis, "scope_index %d has no corresponding scope", a.scopeIndex))
	}
	a.currentScope = scope
	a.currentFunction = fnRef
	return
}

func (a *Analyzer) leave(prevScope symtab.ScopeRef, prevFn symtab.SymbolRef) {
	a.currentScope, a.currentFunction = prevScope, prevFn
}

func (a *Analyzer) VisitProgram(node *cst.Program) interface{} {
	for _, d := range node.Decls {
		d.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitSetupDecl(node *cst.SetupDecl) interface{} {
	a.descendIfRecorded(node, node.Body)
	return nil
}

func (a *Analyzer) VisitLoopDecl(node *cst.LoopDecl) interface{} {
	a.descendIfRecorded(node, node.Body)
	return nil
}

// descendIfRecorded enters the function scope analysis built for owner
// and visits body, or does nothing if scope analysis skipped owner
// entirely (a conflict/duplicate node that never got its own scope).
func (a *Analyzer) descendIfRecorded(owner cst.Node, body *cst.StmtBlock) {
	fnRef, ok := a.FunctionOf[owner]
	if !ok {
		return
	}
	prevScope, prevFn := a.enterFunction(fnRef)
	a.visitStmts(body.Stmts)
	a.leave(prevScope, prevFn)
}

func (a *Analyzer) VisitEventDecl(node *cst.EventDecl) interface{} {
	if !node.HasBody {
		return nil
	}
	a.descendIfRecorded(node, node.Body)
	return nil
}

func (a *Analyzer) VisitOnDecl(node *cst.OnDecl) interface{} {
	evRef := a.Table.RootScope().Find(node.EventName)
	if evRef.IsNull() || evRef.Get().Kind != symtab.Event {
		a.addDiag(diag.TypeMismatch, node, "expected", "Event")
	}
	a.descendIfRecorded(node, node.Body)
	return nil
}

// VisitStmtBlock handles a nested block: advance scope_index exactly
// once (mirroring the DeriveScope call scope analysis made when it
// first visited this same block), switch into the scope it produced,
// visit, and restore.
func (a *Analyzer) VisitStmtBlock(node *cst.StmtBlock) interface{} {
	a.scopeIndex++
	scope := a.Table.GetScope(symtab.ScopeID(a.scopeIndex))
	if scope.IsNull() {
		a.fatal(diag.Internal(diag.TypeAnalysis, "scope_index %d has no corresponding scope", a.scopeIndex))
	}
	prevScope := a.currentScope
	a.currentScope = scope
	a.visitStmts(node.Stmts)
	a.currentScope = prevScope
	return nil
}

func (a *Analyzer) declaredTypeOf(sym symtab.SymbolRef) Type {
	s := sym.Get()
	var typeRef symtab.SymbolRef
	switch s.Kind {
	case symtab.Variable:
		typeRef = s.VariableInfo.Type
	case symtab.Constant:
		typeRef = s.ConstantInfo.Type
	default:
		a.fatal(diag.Internal(diag.TypeAnalysis, "declaredTypeOf called on a %v symbol", s.Kind))
	}
	if typeRef.IsNull() {
		return Literal(TUndefined)
	}
	if typeRef.Get().Kind == symtab.Indirect {
		if typeRef.Get().IndirectInfo.ResolvedID == 0 {
			return Literal(TUndefined)
		}
		return FromSymbol(a.Table.GetSymbol(typeRef.Get().IndirectInfo.ResolvedID))
	}
	return FromSymbol(typeRef)
}

// VisitVarDecl resolves the declaration's declared type, flags an
// undeclared type name, and — when there's an initializer — type-checks
// it against the declared type with expected_type set.
func (a *Analyzer) VisitVarDecl(node *cst.VarDecl) interface{} {
	sym := a.currentScope.FindMember(node.Name)
	if sym.IsNull() {
		a.fatal(diag.Internal(diag.TypeAnalysis, "variable %q missing from its own scope during type analysis", node.Name))
	}

	declared := a.declaredTypeOf(sym)
	if declared.isUndefined() {
		a.addDiag(diag.UndefinedType, node, "undefined type", node.TypeName)
	}

	if node.HasInit {
		prevExpected := a.expectedType
		a.expectedType = &declared
		initType := a.typeOf(node.Init)
		a.expectedType = prevExpected

		if !declared.Equals(initType) {
			a.addDiag(diag.TypeMismatch, node, "expected", node.TypeName)
		}
	}
	return nil
}

// VisitPinDecl only has one rule to apply: an explicit initializer must
// be u8.
func (a *Analyzer) VisitPinDecl(node *cst.PinDecl) interface{} {
	if node.HasInit {
		u8 := a.primitiveType("u8")
		initType := a.typeOf(node.Init)
		if !u8.Equals(initType) {
			a.addDiag(diag.TypeMismatch, node, "expected", "u8")
		}
	}
	return nil
}

func (a *Analyzer) VisitExprStmt(node *cst.ExprStmt) interface{} {
	a.typeOf(node.Expr)
	return nil
}

// VisitAwaitStmt requires its expression to be Bool — an Event operand
// satisfies this directly through Equals's rule 2.
func (a *Analyzer) VisitAwaitStmt(node *cst.AwaitStmt) interface{} {
	exprType := a.typeOf(node.Expr)
	if !exprType.Equals(a.boolType()) {
		a.addDiag(diag.TypeMismatch, node.Expr, "await expression must be", "bool")
	}
	return nil
}

// VisitReturnStmt checks a return against currentFunction's declared
// return type: a bare return inside a typed function, or a valued
// return inside a void one, are both InvalidReturnType regardless of
// what (if anything) the value's type actually is.
func (a *Analyzer) VisitReturnStmt(node *cst.ReturnStmt) interface{} {
	if a.currentFunction.IsNull() {
		a.fatal(diag.Internal(diag.TypeAnalysis, "return statement visited outside any function"))
	}
	fn := a.currentFunction.Get().FunctionInfo

	if !fn.HasReturnType {
		if node.HasExpr {
			a.typeOf(node.Expr)
			a.addDiag(diag.InvalidReturnType, node, "return with a value in a function with no return type", "")
		}
		return nil
	}

	retType := FromSymbol(fn.ReturnType)
	if !node.HasExpr {
		a.addDiag(diag.InvalidReturnType, node, "return with no value, expected", typeName(fn.ReturnType))
		return nil
	}
	exprType := a.typeOf(node.Expr)
	if !retType.Equals(exprType) {
		a.addDiag(diag.InvalidReturnType, node, "return type mismatch, expected", typeName(fn.ReturnType))
	}
	return nil
}

func typeName(ref symtab.SymbolRef) string {
	if ref.IsNull() || ref.Get().TypeInfo == nil {
		return ""
	}
	return ref.Get().TypeInfo.SourceName
}

func (a *Analyzer) VisitIfStmt(node *cst.IfStmt) interface{} {
	condType := a.typeOf(node.Cond)
	if !condType.Equals(a.boolType()) {
		a.addDiag(diag.TypeMismatch, node.Cond, "condition must be", "bool")
	}
	node.Then.Accept(a)
	if node.HasElse {
		node.Else.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitWhileStmt(node *cst.WhileStmt) interface{} {
	condType := a.typeOf(node.Cond)
	if !condType.Equals(a.boolType()) {
		a.addDiag(diag.TypeMismatch, node.Cond, "condition must be", "bool")
	}
	node.Body.Accept(a)
	return nil
}

func (a *Analyzer) VisitBreakStmt(node *cst.BreakStmt) interface{}       { return nil }
func (a *Analyzer) VisitContinueStmt(node *cst.ContinueStmt) interface{} { return nil }

// VisitSetPinStmt checks both halves of a `set` statement: the target
// must resolve to a digital or analog pin, and the value must be u8.
func (a *Analyzer) VisitSetPinStmt(node *cst.SetPinStmt) interface{} {
	targetType := a.typeOf(node.Target)
	digital, analog := a.primitiveType("digital"), a.primitiveType("analog")
	if !targetType.Equals(digital) && !targetType.Equals(analog) {
		a.addDiag(diag.TypeMismatch, node.Target, "pin target must resolve to", "digital or analog")
	}

	valueType := a.typeOf(node.Value)
	u8 := a.primitiveType("u8")
	if !valueType.Equals(u8) {
		a.addDiag(diag.TypeMismatch, node.Value, "pin value must be", "u8")
	}
	return nil
}

func (a *Analyzer) VisitIntLiteral(node *cst.IntLiteral) interface{}       { return Literal(TInteger) }
func (a *Analyzer) VisitFloatLiteral(node *cst.FloatLiteral) interface{}   { return Literal(TFloat) }
func (a *Analyzer) VisitBoolLiteral(node *cst.BoolLiteral) interface{}     { return Literal(TBool) }
func (a *Analyzer) VisitCharLiteral(node *cst.CharLiteral) interface{}     { return Literal(TChar) }
func (a *Analyzer) VisitStringLiteral(node *cst.StringLiteral) interface{} { return Literal(TString) }

// VisitFQNExpr wraps whatever the name resolves to, or Undefined if it
// doesn't resolve — scope analysis already filed a deferred reference
// for the latter case, surfaced separately once per the driver's pass
// over the table's leftover Unresolved() records, so this method itself
// never emits a diagnostic.
func (a *Analyzer) VisitFQNExpr(node *cst.FQNExpr) interface{} {
	return FromSymbol(a.currentScope.Find(node.Joined))
}

func (a *Analyzer) VisitBinaryExpr(node *cst.BinaryExpr) interface{} {
	left := a.typeOf(node.Left)
	right := a.typeOf(node.Right)

	switch {
	case node.Op.IsArithmeticOrBitwise():
		if a.expectedType != nil {
			if !left.Equals(*a.expectedType) {
				a.addDiag(diag.TypeMismatch, node.Left, "expected", typeName(a.expectedType.Symbol))
			}
			if !right.Equals(*a.expectedType) {
				a.addDiag(diag.TypeMismatch, node.Right, "expected", typeName(a.expectedType.Symbol))
			}
		} else if !left.Equals(right) {
			a.addDiag(diag.TypeMismatch, node, "incompatible operand type", left.describe())
		}
		return left
	case node.Op.IsComparison():
		if !left.Equals(right) {
			a.addDiag(diag.TypeMismatch, node, "incompatible operand type", left.describe())
		}
		return Literal(TBool)
	default: // logical
		if !left.Equals(a.boolType()) {
			a.addDiag(diag.TypeMismatch, node.Left, "logical operand must be", "bool")
		}
		if !right.Equals(a.boolType()) {
			a.addDiag(diag.TypeMismatch, node.Right, "logical operand must be", "bool")
		}
		return Literal(TBool)
	}
}

// describe renders t for a diagnostic's Expected slot: a literal
// family's name, or a symbol-kind type's source name.
func (t Type) describe() string {
	if t.Kind == KindLiteral {
		return t.Literal.String()
	}
	if name, ok := t.sourceName(); ok {
		return name
	}
	if !t.Symbol.IsNull() {
		return t.Symbol.Get().Name
	}
	return ""
}

// VisitUnaryExpr: per-node type-analysis obligations don't
// list unary expressions explicitly; codegen treats all four forms as
// simple operand wraps with no change of target type (§4.5), so this
// propagates the operand's type unchecked.
func (a *Analyzer) VisitUnaryExpr(node *cst.UnaryExpr) interface{} {
	return a.typeOf(node.Operand)
}

// VisitAssignExpr requires the target to resolve directly to a
// Variable symbol (ExpectedVariable otherwise) and the value to be
// compatible with its declared type.
func (a *Analyzer) VisitAssignExpr(node *cst.AssignExpr) interface{} {
	targetRef := a.rawSymbolOf(node.Target)
	valueType := a.typeOf(node.Value)

	if targetRef.IsNull() || targetRef.Get().Kind != symtab.Variable {
		a.addDiag(diag.ExpectedVariable, node.Target, "expected a variable", "")
		return Literal(TUndefined)
	}

	declared := a.declaredTypeOf(targetRef)
	if !declared.Equals(valueType) {
		a.addDiag(diag.TypeMismatch, node, "expected", typeName(targetRef.Get().VariableInfo.Type))
	}
	return declared
}

// VisitCastExpr resolves to the named target type; the cast is assumed
// legal (static_cast-style, per §4.5) regardless of the operand's type.
func (a *Analyzer) VisitCastExpr(node *cst.CastExpr) interface{} {
	a.typeOf(node.Operand)
	return FromSymbol(a.currentScope.Find(node.TargetType))
}

// VisitCallExpr resolves to the callee's return type when it's an
// ExternFunction (the only callee kind codegen can actually emit);
// anything else yields Undefined here and is left for codegen's own
// fatal check, since the type-analysis obligations in §4.4 don't list
// calls explicitly.
func (a *Analyzer) VisitCallExpr(node *cst.CallExpr) interface{} {
	for _, arg := range node.Args {
		a.typeOf(arg)
	}
	calleeRef := a.rawSymbolOf(node.Callee)
	if calleeRef.IsNull() || calleeRef.Get().Kind != symtab.ExternFunction {
		return Literal(TUndefined)
	}
	info := calleeRef.Get().ExternInfo
	if !info.HasReturnType {
		return Literal(TUndefined)
	}
	return FromSymbol(info.ReturnType)
}

// VisitPinReadExpr: reading a pin always yields its raw u8 value.
func (a *Analyzer) VisitPinReadExpr(node *cst.PinReadExpr) interface{} {
	a.typeOf(node.Target)
	return a.primitiveType("u8")
}

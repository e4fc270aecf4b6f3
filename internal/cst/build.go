package cst

import "github.com/eel-lang/eelc/internal/position"

// Constructors below are the contract a parser (or, as here, a test)
// builds a tree through: one function per node kind, taking the node's
// span, its exact source slice, and its fields in declaration order.

func newBase(span position.Span, source string) base {
	return base{Span: span, Source: source}
}

func NewProgram(span position.Span, source string, decls []Decl) *Program {
	return &Program{base: newBase(span, source), Decls: decls}
}

func NewSetupDecl(span position.Span, source string, body *StmtBlock) *SetupDecl {
	return &SetupDecl{base: newBase(span, source), Body: body}
}

func NewLoopDecl(span position.Span, source string, body *StmtBlock) *LoopDecl {
	return &LoopDecl{base: newBase(span, source), Body: body}
}

func NewVarDecl(span position.Span, source string, kind VarKind, name, typeName string, init Expr) *VarDecl {
	return &VarDecl{
		base:     newBase(span, source),
		Kind:     kind,
		Name:     name,
		TypeName: typeName,
		HasInit:  init != nil,
		Init:     init,
	}
}

func NewPinDecl(span position.Span, source string, name string, element PinElement, init Expr) *PinDecl {
	return &PinDecl{base: newBase(span, source), Name: name, Element: element, HasInit: init != nil, Init: init}
}

func NewEventDecl(span position.Span, source string, name string, body *StmtBlock) *EventDecl {
	return &EventDecl{base: newBase(span, source), Name: name, HasBody: body != nil, Body: body}
}

func NewOnDecl(span position.Span, source string, eventName string, body *StmtBlock) *OnDecl {
	return &OnDecl{base: newBase(span, source), EventName: eventName, Body: body}
}

func NewStmtBlock(span position.Span, source string, stmts []Stmt) *StmtBlock {
	return &StmtBlock{base: newBase(span, source), Stmts: stmts}
}

func NewExprStmt(span position.Span, source string, expr Expr) *ExprStmt {
	return &ExprStmt{base: newBase(span, source), Expr: expr}
}

func NewAwaitStmt(span position.Span, source string, expr Expr) *AwaitStmt {
	return &AwaitStmt{base: newBase(span, source), Expr: expr}
}

func NewReturnStmt(span position.Span, source string, expr Expr) *ReturnStmt {
	return &ReturnStmt{base: newBase(span, source), HasExpr: expr != nil, Expr: expr}
}

func NewIfStmt(span position.Span, source string, cond Expr, then *StmtBlock, els *StmtBlock) *IfStmt {
	return &IfStmt{base: newBase(span, source), Cond: cond, Then: then, HasElse: els != nil, Else: els}
}

func NewWhileStmt(span position.Span, source string, cond Expr, body *StmtBlock) *WhileStmt {
	return &WhileStmt{base: newBase(span, source), Cond: cond, Body: body}
}

func NewBreakStmt(span position.Span, source string) *BreakStmt {
	return &BreakStmt{base: newBase(span, source)}
}

func NewContinueStmt(span position.Span, source string) *ContinueStmt {
	return &ContinueStmt{base: newBase(span, source)}
}

func NewSetPinStmt(span position.Span, source string, target Expr, form SetPinForm, value Expr) *SetPinStmt {
	return &SetPinStmt{base: newBase(span, source), Target: target, Form: form, Value: value}
}

func NewIntLiteral(span position.Span, source string, v int64) *IntLiteral {
	return &IntLiteral{base: newBase(span, source), Value: v}
}

func NewFloatLiteral(span position.Span, source string, v float64) *FloatLiteral {
	return &FloatLiteral{base: newBase(span, source), Value: v}
}

func NewBoolLiteral(span position.Span, source string, v bool) *BoolLiteral {
	return &BoolLiteral{base: newBase(span, source), Value: v}
}

func NewCharLiteral(span position.Span, source string, v rune) *CharLiteral {
	return &CharLiteral{base: newBase(span, source), Value: v}
}

func NewStringLiteral(span position.Span, source string, v string) *StringLiteral {
	return &StringLiteral{base: newBase(span, source), Value: v}
}

// NewFQNExpr builds an identifier/qualified-name reference from its
// dot/double-colon-separated parts; Joined is the cached lookup key
// scope analysis and type analysis both search on.
func NewFQNExpr(span position.Span, source string, parts []string) *FQNExpr {
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += "." + p
	}
	return &FQNExpr{base: newBase(span, source), Parts: parts, Joined: joined}
}

func NewBinaryExpr(span position.Span, source string, op BinOp, left, right Expr) *BinaryExpr {
	return &BinaryExpr{base: newBase(span, source), Op: op, Left: left, Right: right}
}

func NewUnaryExpr(span position.Span, source string, op UnOp, operand Expr) *UnaryExpr {
	return &UnaryExpr{base: newBase(span, source), Op: op, Operand: operand}
}

func NewAssignExpr(span position.Span, source string, target, value Expr) *AssignExpr {
	return &AssignExpr{base: newBase(span, source), Target: target, Value: value}
}

func NewCastExpr(span position.Span, source string, targetType string, operand Expr) *CastExpr {
	return &CastExpr{base: newBase(span, source), TargetType: targetType, Operand: operand}
}

func NewCallExpr(span position.Span, source string, callee Expr, args []Expr) *CallExpr {
	return &CallExpr{base: newBase(span, source), Callee: callee, Args: args}
}

func NewPinReadExpr(span position.Span, source string, target Expr) *PinReadExpr {
	return &PinReadExpr{base: newBase(span, source), Target: target}
}

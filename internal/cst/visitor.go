package cst

// Visitor is implemented by each analysis pass (scope analysis, type
// analysis, ...). Every concrete node type calls back into exactly one
// method, following internal/ast's Visitor / BaseVisitor split:
// passes embed BaseVisitor and override only the methods their pass
// cares about.
type Visitor interface {
	VisitProgram(node *Program) interface{}
	VisitSetupDecl(node *SetupDecl) interface{}
	VisitLoopDecl(node *LoopDecl) interface{}
	VisitVarDecl(node *VarDecl) interface{}
	VisitPinDecl(node *PinDecl) interface{}
	VisitEventDecl(node *EventDecl) interface{}
	VisitOnDecl(node *OnDecl) interface{}

	VisitStmtBlock(node *StmtBlock) interface{}
	VisitExprStmt(node *ExprStmt) interface{}
	VisitAwaitStmt(node *AwaitStmt) interface{}
	VisitReturnStmt(node *ReturnStmt) interface{}
	VisitIfStmt(node *IfStmt) interface{}
	VisitWhileStmt(node *WhileStmt) interface{}
	VisitBreakStmt(node *BreakStmt) interface{}
	VisitContinueStmt(node *ContinueStmt) interface{}
	VisitSetPinStmt(node *SetPinStmt) interface{}

	VisitIntLiteral(node *IntLiteral) interface{}
	VisitFloatLiteral(node *FloatLiteral) interface{}
	VisitBoolLiteral(node *BoolLiteral) interface{}
	VisitCharLiteral(node *CharLiteral) interface{}
	VisitStringLiteral(node *StringLiteral) interface{}
	VisitFQNExpr(node *FQNExpr) interface{}
	VisitBinaryExpr(node *BinaryExpr) interface{}
	VisitUnaryExpr(node *UnaryExpr) interface{}
	VisitAssignExpr(node *AssignExpr) interface{}
	VisitCastExpr(node *CastExpr) interface{}
	VisitCallExpr(node *CallExpr) interface{}
	VisitPinReadExpr(node *PinReadExpr) interface{}
}

// BaseVisitor returns nil from every method; concrete visitors embed it
// and override only what they need.
type BaseVisitor struct{}

func (v *BaseVisitor) VisitProgram(node *Program) interface{}     { return nil }
func (v *BaseVisitor) VisitSetupDecl(node *SetupDecl) interface{} { return nil }
func (v *BaseVisitor) VisitLoopDecl(node *LoopDecl) interface{}   { return nil }
func (v *BaseVisitor) VisitVarDecl(node *VarDecl) interface{}     { return nil }
func (v *BaseVisitor) VisitPinDecl(node *PinDecl) interface{}     { return nil }
func (v *BaseVisitor) VisitEventDecl(node *EventDecl) interface{} { return nil }
func (v *BaseVisitor) VisitOnDecl(node *OnDecl) interface{}       { return nil }

func (v *BaseVisitor) VisitStmtBlock(node *StmtBlock) interface{}       { return nil }
func (v *BaseVisitor) VisitExprStmt(node *ExprStmt) interface{}         { return nil }
func (v *BaseVisitor) VisitAwaitStmt(node *AwaitStmt) interface{}       { return nil }
func (v *BaseVisitor) VisitReturnStmt(node *ReturnStmt) interface{}     { return nil }
func (v *BaseVisitor) VisitIfStmt(node *IfStmt) interface{}             { return nil }
func (v *BaseVisitor) VisitWhileStmt(node *WhileStmt) interface{}       { return nil }
func (v *BaseVisitor) VisitBreakStmt(node *BreakStmt) interface{}       { return nil }
func (v *BaseVisitor) VisitContinueStmt(node *ContinueStmt) interface{} { return nil }
func (v *BaseVisitor) VisitSetPinStmt(node *SetPinStmt) interface{}     { return nil }

func (v *BaseVisitor) VisitIntLiteral(node *IntLiteral) interface{}       { return nil }
func (v *BaseVisitor) VisitFloatLiteral(node *FloatLiteral) interface{}   { return nil }
func (v *BaseVisitor) VisitBoolLiteral(node *BoolLiteral) interface{}     { return nil }
func (v *BaseVisitor) VisitCharLiteral(node *CharLiteral) interface{}     { return nil }
func (v *BaseVisitor) VisitStringLiteral(node *StringLiteral) interface{} { return nil }
func (v *BaseVisitor) VisitFQNExpr(node *FQNExpr) interface{}             { return nil }
func (v *BaseVisitor) VisitBinaryExpr(node *BinaryExpr) interface{}       { return nil }
func (v *BaseVisitor) VisitUnaryExpr(node *UnaryExpr) interface{}         { return nil }
func (v *BaseVisitor) VisitAssignExpr(node *AssignExpr) interface{}       { return nil }
func (v *BaseVisitor) VisitCastExpr(node *CastExpr) interface{}           { return nil }
func (v *BaseVisitor) VisitCallExpr(node *CallExpr) interface{}           { return nil }
func (v *BaseVisitor) VisitPinReadExpr(node *PinReadExpr) interface{}     { return nil }

// Accept performs double dispatch: each concrete node type knows which
// Visitor method corresponds to it, so callers can walk a tree of Node
// without a type switch.

func (n *Program) Accept(v Visitor) interface{}      { return v.VisitProgram(n) }
func (n *SetupDecl) Accept(v Visitor) interface{}     { return v.VisitSetupDecl(n) }
func (n *LoopDecl) Accept(v Visitor) interface{}      { return v.VisitLoopDecl(n) }
func (n *VarDecl) Accept(v Visitor) interface{}       { return v.VisitVarDecl(n) }
func (n *PinDecl) Accept(v Visitor) interface{}       { return v.VisitPinDecl(n) }
func (n *EventDecl) Accept(v Visitor) interface{}     { return v.VisitEventDecl(n) }
func (n *OnDecl) Accept(v Visitor) interface{}        { return v.VisitOnDecl(n) }
func (n *StmtBlock) Accept(v Visitor) interface{}     { return v.VisitStmtBlock(n) }
func (n *ExprStmt) Accept(v Visitor) interface{}      { return v.VisitExprStmt(n) }
func (n *AwaitStmt) Accept(v Visitor) interface{}     { return v.VisitAwaitStmt(n) }
func (n *ReturnStmt) Accept(v Visitor) interface{}    { return v.VisitReturnStmt(n) }
func (n *IfStmt) Accept(v Visitor) interface{}        { return v.VisitIfStmt(n) }
func (n *WhileStmt) Accept(v Visitor) interface{}     { return v.VisitWhileStmt(n) }
func (n *BreakStmt) Accept(v Visitor) interface{}     { return v.VisitBreakStmt(n) }
func (n *ContinueStmt) Accept(v Visitor) interface{}  { return v.VisitContinueStmt(n) }
func (n *SetPinStmt) Accept(v Visitor) interface{}    { return v.VisitSetPinStmt(n) }
func (n *IntLiteral) Accept(v Visitor) interface{}    { return v.VisitIntLiteral(n) }
func (n *FloatLiteral) Accept(v Visitor) interface{}  { return v.VisitFloatLiteral(n) }
func (n *BoolLiteral) Accept(v Visitor) interface{}   { return v.VisitBoolLiteral(n) }
func (n *CharLiteral) Accept(v Visitor) interface{}   { return v.VisitCharLiteral(n) }
func (n *StringLiteral) Accept(v Visitor) interface{} { return v.VisitStringLiteral(n) }
func (n *FQNExpr) Accept(v Visitor) interface{}       { return v.VisitFQNExpr(n) }
func (n *BinaryExpr) Accept(v Visitor) interface{}    { return v.VisitBinaryExpr(n) }
func (n *UnaryExpr) Accept(v Visitor) interface{}     { return v.VisitUnaryExpr(n) }
func (n *AssignExpr) Accept(v Visitor) interface{}    { return v.VisitAssignExpr(n) }
func (n *CastExpr) Accept(v Visitor) interface{}      { return v.VisitCastExpr(n) }
func (n *CallExpr) Accept(v Visitor) interface{}      { return v.VisitCallExpr(n) }
func (n *PinReadExpr) Accept(v Visitor) interface{}   { return v.VisitPinReadExpr(n) }

package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/symtab"
)

// exprText dispatches e and asserts its Accept result is the rendered
// text every expression Visit method below returns.
func (g *Generator) exprText(e cst.Expr) string {
	return e.Accept(g).(string)
}

func (g *Generator) VisitIntLiteral(node *cst.IntLiteral) interface{} {
	return strconv.FormatInt(node.Value, 10)
}

func (g *Generator) VisitFloatLiteral(node *cst.FloatLiteral) interface{} {
	return strconv.FormatFloat(node.Value, 'g', -1, 64)
}

func (g *Generator) VisitBoolLiteral(node *cst.BoolLiteral) interface{} {
	if node.Value {
		return "true"
	}
	return "false"
}

func (g *Generator) VisitCharLiteral(node *cst.CharLiteral) interface{} {
	return fmt.Sprintf("'%s'", escapeRune(node.Value))
}

func (g *Generator) VisitStringLiteral(node *cst.StringLiteral) interface{} {
	return strconv.Quote(node.Value)
}

// escapeRune renders r as the body of a C++ character literal.
func escapeRune(r rune) string {
	switch r {
	case '\'':
		return `\'`
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case 0:
		return `\0`
	default:
		return string(r)
	}
}

// VisitFQNExpr resolves node to the symbol it names and renders it
// according to that symbol's kind — a variable or constant goes through
// accessText's state-promotion-aware prefixing, an extern function
// renders as its bound target name, an event as its stable instance
// name, and an ordinary function as its mangled functor type.
func (g *Generator) VisitFQNExpr(node *cst.FQNExpr) interface{} {
	sym := g.currentScope.Find(node.Joined)
	if sym.IsNull() {
		g.fatal(diag.Internal(diag.Codegen, "unresolved name %q reached codegen", node.Joined))
	}
	s := sym.Get()
	switch s.Kind {
	case symtab.Variable, symtab.Constant:
		return g.accessText(sym)
	case symtab.ExternFunction:
		return s.ExternInfo.TargetName
	case symtab.Event:
		return s.EventInfo.StableID
	case symtab.Function:
		if s.FunctionInfo.TypeID != "" {
			return s.FunctionInfo.TypeID
		}
		return s.Name
	default:
		g.fatal(diag.Internal(diag.Codegen, "name %q resolved to unexpected kind %v during codegen", node.Joined, s.Kind))
	}
	return ""
}

// accessText renders a Variable/Constant symbol's access expression.
// Outside an async function, or for a pin or a constant (neither is ever
// state-promoted), it is just the mangled name. Inside one, it ascends the scope chain from
// wherever emission currently stands up to (and including) the
// function's own scope to find which scope actually declares sym, then
// consults that SPECIFIC scope's async flag — not the whole function's
// — since a variable declared in a genuinely synchronous sub-block of an
// otherwise async function is neither promoted nor state-prefixed.
func (g *Generator) accessText(sym symtab.SymbolRef) string {
	name := mangledName(sym.Get().ID)
	if g.fe == nil || !g.fe.isAsyncFn || isPinVariable(sym) || sym.Get().Kind == symtab.Constant {
		return name
	}

	declScope := g.declaringScope(sym)
	if declScope.IsNull() {
		return name
	}
	if g.fe.asyncScopeIDs[declScope.ID] {
		return "state." + name
	}
	return name
}

// declaringScope finds the scope, among g.currentScope and its ancestors
// up to and including the current function's own scope, that directly
// declares sym as a member.
func (g *Generator) declaringScope(sym symtab.SymbolRef) symtab.ScopeRef {
	id := sym.Get().ID
	scope := g.currentScope
	for {
		for _, m := range scope.Members() {
			if m.ID == id {
				return scope
			}
		}
		if scope.ID == g.fe.fnScopeID {
			break
		}
		parent := scope.Parent()
		if parent.IsNull() {
			break
		}
		scope = parent
	}
	return symtab.ScopeRef{}
}

var binaryOps = map[cst.BinOp]string{
	cst.OpAdd:        "+",
	cst.OpSub:        "-",
	cst.OpMul:        "*",
	cst.OpDiv:        "/",
	cst.OpShl:        "<<",
	cst.OpShr:        ">>",
	cst.OpBitAnd:     "&",
	cst.OpBitOr:      "|",
	cst.OpBitXor:     "^",
	cst.OpEq:         "==",
	cst.OpNe:         "!=",
	cst.OpLt:         "<",
	cst.OpLe:         "<=",
	cst.OpGt:         ">",
	cst.OpGe:         ">=",
	cst.OpLogicalAnd: "&&",
	cst.OpLogicalOr:  "||",
}

func (g *Generator) VisitBinaryExpr(node *cst.BinaryExpr) interface{} {
	op, ok := binaryOps[node.Op]
	if !ok {
		g.fatal(diag.Internal(diag.Codegen, "unknown binary operator %d during codegen", node.Op))
	}
	return fmt.Sprintf("(%s %s %s)", g.exprText(node.Left), op, g.exprText(node.Right))
}

var unaryOps = map[cst.UnOp]string{
	cst.OpPlus:   "+",
	cst.OpNeg:    "-",
	cst.OpBitNot: "~",
	cst.OpNot:    "!",
}

func (g *Generator) VisitUnaryExpr(node *cst.UnaryExpr) interface{} {
	op, ok := unaryOps[node.Op]
	if !ok {
		g.fatal(diag.Internal(diag.Codegen, "unknown unary operator %d during codegen", node.Op))
	}
	return fmt.Sprintf("(%s%s)", op, g.exprText(node.Operand))
}

func (g *Generator) VisitAssignExpr(node *cst.AssignExpr) interface{} {
	return fmt.Sprintf("(%s = %s)", g.exprText(node.Target), g.exprText(node.Value))
}

func (g *Generator) VisitCastExpr(node *cst.CastExpr) interface{} {
	sym := g.currentScope.Find(node.TargetType)
	targetType := targetTypeName(sym)
	return fmt.Sprintf("static_cast<%s>(%s)", targetType, g.exprText(node.Operand))
}

// VisitCallExpr only ever needs to render ExternFunction callees (§4.5:
// only extern functions are codegen-able call targets; ordinary EEL
// functions are never called directly — they're driven by the runtime
// as functors).
func (g *Generator) VisitCallExpr(node *cst.CallExpr) interface{} {
	if fqn, ok := node.Callee.(*cst.FQNExpr); ok {
		if sym := g.currentScope.Find(fqn.Joined); !sym.IsNull() && sym.Get().Kind != symtab.ExternFunction {
			g.fatal(diag.Internal(diag.Codegen, "call to %q reached codegen: only extern functions can be called", fqn.Joined))
		}
	}
	callee := g.exprText(node.Callee)
	args := make([]string, len(node.Args))
	for i, a := range node.Args {
		args[i] = g.exprText(a)
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

func (g *Generator) VisitPinReadExpr(node *cst.PinReadExpr) interface{} {
	return fmt.Sprintf("%s.read()", g.exprText(node.Target))
}

package typeanalysis

import (
	"testing"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/position"
	"github.com/eel-lang/eelc/internal/scopeanalysis"
	"github.com/eel-lang/eelc/internal/symtab"
)

var zeroSpan position.Span

func program(decls ...cst.Decl) *cst.Program {
	return cst.NewProgram(zeroSpan, "", decls)
}

func block(stmts ...cst.Stmt) *cst.StmtBlock {
	return cst.NewStmtBlock(zeroSpan, "", stmts)
}

func ident(name string) *cst.FQNExpr {
	return cst.NewFQNExpr(zeroSpan, name, []string{name})
}

// analyze runs both passes in sequence, the way the driver does, and
// returns the type analysis Analyzer (its Diags field is what the
// tests below check).
func analyze(t *testing.T, prog *cst.Program) *Analyzer {
	t.Helper()
	table := symtab.New()
	scope := scopeanalysis.New(table)
	if err := scope.Analyze(prog); err != nil {
		t.Fatalf("unexpected scope analysis internal error: %v", err)
	}
	ta := New(table, scope.FunctionOf)
	if err := ta.Analyze(prog); err != nil {
		t.Fatalf("unexpected type analysis internal error: %v", err)
	}
	return ta
}

// TestLiteralArithmeticMismatches mirrors seed scenario 6:
// setup{ 2 + 3; 2 + 'c' + 2.0 + false + "oh no"; } produces exactly
// four TypeMismatch diagnostics — one per incompatible operator
// application in the second statement; 2 + 3 (both Integer) is clean.
func TestLiteralArithmeticMismatches(t *testing.T) {
	sum := cst.NewBinaryExpr(zeroSpan, "2+'c'", cst.OpAdd, cst.NewIntLiteral(zeroSpan, "2", 2), cst.NewCharLiteral(zeroSpan, "'c'", 'c'))
	sum = cst.NewBinaryExpr(zeroSpan, "...+2.0", cst.OpAdd, sum, cst.NewFloatLiteral(zeroSpan, "2.0", 2.0))
	sum = cst.NewBinaryExpr(zeroSpan, "...+false", cst.OpAdd, sum, cst.NewBoolLiteral(zeroSpan, "false", false))
	sum = cst.NewBinaryExpr(zeroSpan, `...+"oh no"`, cst.OpAdd, sum, cst.NewStringLiteral(zeroSpan, `"oh no"`, "oh no"))

	setupBody := block(
		cst.NewExprStmt(zeroSpan, "2+3;", cst.NewBinaryExpr(zeroSpan, "2+3", cst.OpAdd, cst.NewIntLiteral(zeroSpan, "2", 2), cst.NewIntLiteral(zeroSpan, "3", 3))),
		cst.NewExprStmt(zeroSpan, "", sum),
	)

	result := analyze(t, program(cst.NewSetupDecl(zeroSpan, "", setupBody)))

	if got := result.Diags.CountKind(diag.TypeMismatch); got != 4 {
		t.Fatalf("expected exactly four TypeMismatch diagnostics, got %d (total %d)", got, result.Diags.Len())
	}
	if result.Diags.Len() != 4 {
		t.Fatalf("expected only TypeMismatch diagnostics, got %d total", result.Diags.Len())
	}
}

// TestVoidFunctionReturn mirrors seed scenario 7:
// setup{ return true; } loop{ return; } — only setup's valued return
// inside the (void) setup function is invalid; loop's bare return is
// exactly the correct shape for a void function.
func TestVoidFunctionReturn(t *testing.T) {
	setupBody := block(cst.NewReturnStmt(zeroSpan, "return true;", cst.NewBoolLiteral(zeroSpan, "true", true)))
	loopBody := block(cst.NewReturnStmt(zeroSpan, "return;", nil))

	result := analyze(t, program(
		cst.NewSetupDecl(zeroSpan, "", setupBody),
		cst.NewLoopDecl(zeroSpan, "", loopBody),
	))

	if result.Diags.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", result.Diags.Len())
	}
	if got := result.Diags.Diagnostics()[0].Kind; got.String() != "InvalidReturnType" {
		t.Fatalf("expected InvalidReturnType, got %v", got)
	}
}

// TestPinStatementTyping mirrors seed scenario 8: of the five `set`
// statements against a digital pin and the loop's plain-u8 variable,
// exactly two are TypeMismatch — the float mode value, and the mode
// statement targeting a non-pin variable.
func TestPinStatementTyping(t *testing.T) {
	setupBody := block(
		cst.NewPinDecl(zeroSpan, "digital x;", "x", cst.PinDigital, nil),
		cst.NewSetPinStmt(zeroSpan, "set x pin 1;", ident("x"), cst.SetPinNumber, cst.NewIntLiteral(zeroSpan, "1", 1)),
		cst.NewSetPinStmt(zeroSpan, "set x 2;", ident("x"), cst.SetPinValue, cst.NewIntLiteral(zeroSpan, "2", 2)),
		cst.NewSetPinStmt(zeroSpan, "set x mode 1;", ident("x"), cst.SetPinMode, cst.NewIntLiteral(zeroSpan, "1", 1)),
		cst.NewSetPinStmt(zeroSpan, "set x mode 4.0;", ident("x"), cst.SetPinMode, cst.NewFloatLiteral(zeroSpan, "4.0", 4.0)),
	)
	loopBody := block(
		cst.NewVarDecl(zeroSpan, "u8 y;", cst.VarKindVar, "y", "u8", nil),
		cst.NewSetPinStmt(zeroSpan, "set y mode 0;", ident("y"), cst.SetPinMode, cst.NewIntLiteral(zeroSpan, "0", 0)),
	)

	result := analyze(t, program(
		cst.NewSetupDecl(zeroSpan, "", setupBody),
		cst.NewLoopDecl(zeroSpan, "", loopBody),
	))

	if got := result.Diags.CountKind(diag.TypeMismatch); got != 2 {
		t.Fatalf("expected exactly two TypeMismatch diagnostics, got %d (total %d)", got, result.Diags.Len())
	}
}

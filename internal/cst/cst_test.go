package cst

import (
	"testing"

	"github.com/eel-lang/eelc/internal/position"
)

func TestFQNExprJoinsPartsWithDot(t *testing.T) {
	n := NewFQNExpr(position.Span{}, "a.b.c", []string{"a", "b", "c"})
	if n.Joined != "a.b.c" {
		t.Fatalf("expected joined name a.b.c, got %q", n.Joined)
	}
}

func TestBinOpClassification(t *testing.T) {
	if !OpAdd.IsArithmeticOrBitwise() || OpAdd.IsComparison() || OpAdd.IsLogical() {
		t.Fatal("OpAdd should be arithmetic/bitwise only")
	}
	if !OpEq.IsComparison() || OpEq.IsArithmeticOrBitwise() {
		t.Fatal("OpEq should be comparison only")
	}
	if !OpLogicalAnd.IsLogical() || OpLogicalAnd.IsComparison() {
		t.Fatal("OpLogicalAnd should be logical only")
	}
}

func TestAcceptDispatchesToMatchingVisitMethod(t *testing.T) {
	lit := NewIntLiteral(position.Span{}, "2", 2)
	v := &recordingVisitor{}
	lit.Accept(v)
	if !v.sawInt {
		t.Fatal("Accept on IntLiteral should call VisitIntLiteral")
	}
}

type recordingVisitor struct {
	BaseVisitor
	sawInt bool
}

func (v *recordingVisitor) VisitIntLiteral(node *IntLiteral) interface{} {
	v.sawInt = true
	return nil
}

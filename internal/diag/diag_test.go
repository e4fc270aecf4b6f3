package diag

import (
	"strings"
	"testing"

	"github.com/eel-lang/eelc/internal/position"
)

func TestRenderFormatsCaretAndLocation(t *testing.T) {
	pos := position.Position{Filename: "f.eel", Line: 3, Column: 5, Offset: 0}
	d := New(TypeMismatch, "2 + 'c'", "incompatible operand type", "Integer", pos)

	rendered := d.Render()
	lines := strings.Split(rendered, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a two-line render, got %d lines: %q", len(lines), rendered)
	}
	if lines[0] != "2 + 'c'" {
		t.Fatalf("expected first line to be the source, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    ^~ ") {
		t.Fatalf("expected caret at the offset-4 column, got %q", lines[1])
	}
	if !strings.Contains(rendered, "incompatible operand type Integer on Line: 3 Column: 5") {
		t.Fatalf("expected message/expected/location suffix, got %q", rendered)
	}
}

func TestRenderAccountsForFullWidthRunes(t *testing.T) {
	pos := position.Position{Line: 1, Column: 1, Offset: 0}
	// A fullwidth CJK character before the offending token should push
	// the caret two columns, not one.
	d := New(UndefinedType, "Ａx", "unknown type", "", pos)
	d.Offset = len("Ａ")

	rendered := d.Render()
	lines := strings.Split(rendered, "\n")
	if !strings.HasPrefix(lines[1], "  ^~ ") {
		t.Fatalf("expected 2-space pad for a fullwidth rune, got %q", lines[1])
	}
}

func TestListCountKindAndFormat(t *testing.T) {
	var l List
	l.Add(New(TypeMismatch, "a", "m1", "", position.Position{Line: 1, Column: 1}))
	l.Add(New(TypeMismatch, "b", "m2", "", position.Position{Line: 2, Column: 1}))
	l.Add(New(DuplicateEvent, "c", "m3", "", position.Position{Line: 3, Column: 1}))

	if l.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", l.Len())
	}
	if got := l.CountKind(TypeMismatch); got != 2 {
		t.Fatalf("expected 2 TypeMismatch diagnostics, got %d", got)
	}
	if !l.HasErrors() {
		t.Fatal("expected HasErrors to be true with diagnostics present")
	}
	formatted := l.Format()
	if strings.Count(formatted, "\n\n") < 2 {
		t.Fatalf("expected diagnostics separated by blank lines, got %q", formatted)
	}
}

func TestInternalErrorMessage(t *testing.T) {
	err := Internal(ScopeAnalysis, "loop declared outside root scope")
	if err.Subsystem != ScopeAnalysis {
		t.Fatalf("expected subsystem ScopeAnalysis, got %v", err.Subsystem)
	}
	if got := err.Error(); !strings.Contains(got, "ScopeAnalysis") || !strings.Contains(got, "loop declared outside root scope") {
		t.Fatalf("unexpected error text: %q", got)
	}
}

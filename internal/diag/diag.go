// Package diag implements the two error channels of the compiler core:
// user-visible Diagnostics accumulated by the analysis passes, and fatal
// InternalErrors for invariants the parser or an earlier pass should
// have already enforced.
//
// Patterned on internal/diagnostic (fluent builder,
// engine with sort/format) and grounded on original_source/includes/error.hpp
// and src/error.cc for the exact Kind taxonomy and rendering format.
package diag

import (
	"fmt"
	"strings"

	"github.com/eel-lang/eelc/internal/position"
	"golang.org/x/text/width"
)

// Kind enumerates the diagnostic categories the analysis passes can
// produce. The zero value, None, never appears in an accumulated list.
type Kind int

const (
	None Kind = iota
	TypeMismatch
	InvalidReturnType
	DuplicateEvent
	AlreadyDefined
	ExpectedVariable
	UndefinedType
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case InvalidReturnType:
		return "InvalidReturnType"
	case DuplicateEvent:
		return "DuplicateEvent"
	case AlreadyDefined:
		return "AlreadyDefined"
	case ExpectedVariable:
		return "ExpectedVariable"
	case UndefinedType:
		return "UndefinedType"
	default:
		return "None"
	}
}

// Diagnostic is the uniform error record shared by scope analysis and
// type analysis: kind, offending source slice, an expected-vs-actual
// descriptor, and a location used for rendering.
type Diagnostic struct {
	Kind     Kind
	Source   string // the offending source slice (the rendered "source" line)
	Message  string
	Expected string // empty if not applicable
	Pos      position.Position
	Offset   int // byte offset into Source where the caret should point
}

// New builds a Diagnostic. Offset defaults to Pos.Column-1 (the common
// case of pointing at the start of the offending token); callers with a
// multi-byte-aware offset should set Diagnostic.Offset directly.
func New(kind Kind, source, message, expected string, pos position.Position) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Source:   source,
		Message:  message,
		Expected: expected,
		Pos:      pos,
		Offset:   pos.Column - 1,
	}
}

// Render produces the reference text form:
//
//	source
//	    ^~ message expected on Line: L Column: C
//
// The caret column accounts for full-width runes preceding it (CJK
// punctuation, fullwidth forms) so the marker still lines up under the
// offending token when the source line mixes ASCII and wide glyphs —
// the original renderer only ever faced single-width ASCII source.
func (d Diagnostic) Render() string {
	var b strings.Builder
	b.WriteString(d.Source)
	b.WriteByte('\n')

	pad := visualWidth(d.Source, d.Offset)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString("^~ ")
	b.WriteString(d.Message)
	if d.Expected != "" {
		b.WriteByte(' ')
		b.WriteString(d.Expected)
	}
	fmt.Fprintf(&b, " on Line: %d Column: %d", d.Pos.Line, d.Pos.Column)

	return b.String()
}

// visualWidth returns the display width of source[:byteOffset], counting
// East Asian Wide/Fullwidth runes as width 2 and everything else as 1.
func visualWidth(source string, byteOffset int) int {
	if byteOffset < 0 {
		byteOffset = 0
	}
	if byteOffset > len(source) {
		byteOffset = len(source)
	}
	w := 0
	for _, r := range source[:byteOffset] {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

// Subsystem tags an InternalError with the component that detected an
// invariant violation.
type Subsystem string

const (
	SymbolTable   Subsystem = "SymbolTable"
	ScopeAnalysis Subsystem = "ScopeAnalysis"
	TypeAnalysis  Subsystem = "TypeAnalysis"
	Codegen       Subsystem = "Codegen"
)

// InternalError reports a violation of an invariant the parser or an
// earlier pass should already have prevented. These are fatal: the pass
// that raises one is expected to stop, not to keep accumulating
// diagnostics.
type InternalError struct {
	Subsystem Subsystem
	Message   string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("[%s] internal error: %s", e.Subsystem, e.Message)
}

// Internal constructs an *InternalError, matching the fmt.Errorf calling
// convention for the message.
func Internal(subsystem Subsystem, format string, args ...interface{}) *InternalError {
	return &InternalError{Subsystem: subsystem, Message: fmt.Sprintf(format, args...)}
}

// List accumulates diagnostics for a single pass, in the order they were
// raised (the order rendering and the seed-scenario counts rely on).
type List struct {
	items []Diagnostic
}

func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

func (l *List) Diagnostics() []Diagnostic {
	return l.items
}

func (l *List) Len() int {
	return len(l.items)
}

func (l *List) HasErrors() bool {
	return len(l.items) > 0
}

// CountKind returns how many accumulated diagnostics have the given
// kind — used directly by the seed-scenario tests ("exactly four
// diagnostics, all kind TypeMismatch").
func (l *List) CountKind(k Kind) int {
	n := 0
	for _, d := range l.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Format renders every accumulated diagnostic, reference format, one
// after another separated by a blank line.
func (l *List) Format() string {
	parts := make([]string, len(l.items))
	for i, d := range l.items {
		parts[i] = d.Render()
	}
	return strings.Join(parts, "\n\n")
}

// Package typeanalysis implements the compiler's second tree walk: it
// checks every expression, declaration, and statement the scope
// analysis pass already gave names to against the equality rules of
// §4.4, accumulating TypeMismatch/InvalidReturnType/ExpectedVariable/
// UndefinedType diagnostics.
//
// Grounded on original_source/src/type.cc's type_t::operator== (the
// four-rule compatibility contract reproduced below) and on the
// teacher's internal/typesystem package for the "variant struct plus an
// Equals method" shape.
package typeanalysis

import "github.com/eel-lang/eelc/internal/symtab"

// Kind discriminates a Type's payload.
type Kind int

const (
	KindLiteral Kind = iota
	KindSymbol
)

// LiteralKind enumerates the literal families a bare expression (one
// with no declared symbol behind it) can carry.
type LiteralKind int

const (
	TNone LiteralKind = iota
	TUndefined
	TNotAType
	TInteger
	TFloat
	TBool
	TChar
	TString
)

func (k LiteralKind) String() string {
	switch k {
	case TUndefined:
		return "Undefined"
	case TNotAType:
		return "NotAType"
	case TInteger:
		return "Integer"
	case TFloat:
		return "Float"
	case TBool:
		return "Bool"
	case TChar:
		return "Char"
	case TString:
		return "String"
	default:
		return "None"
	}
}

// Type is the value every typed node in the tree reduces to: either a
// bare literal family (an int/float/bool/char/string expression with no
// declared type behind it) or a wrapped symbol (a Variable, Constant,
// Event, or TypeDecl — Equals resolves the first three down to their
// declared/substituted type before comparing).
type Type struct {
	Kind    Kind
	Literal LiteralKind
	Symbol  symtab.SymbolRef
}

// Literal builds a literal-family Type.
func Literal(k LiteralKind) Type {
	return Type{Kind: KindLiteral, Literal: k}
}

// FromSymbol wraps a symbol as a Type. A null ref is folded to
// Undefined so callers never need to special-case "lookup failed" apart
// from everywhere else an unresolved name shows up.
func FromSymbol(ref symtab.SymbolRef) Type {
	if ref.IsNull() {
		return Literal(TUndefined)
	}
	return Type{Kind: KindSymbol, Symbol: ref}
}

func (t Type) isUndefined() bool {
	return t.Kind == KindLiteral && t.Literal == TUndefined
}

// resolve substitutes a Variable or Constant symbol for its declared
// type, repeatedly (a declared type can itself be Indirect until
// try_resolve_unresolved has run, in which case resolution bottoms out
// at Undefined rather than looping). Event and TypeDecl symbols are
// left as-is — they're compared specially (Event) or directly by source
// name (TypeDecl), not substituted further.
func (t Type) resolve() Type {
	for t.Kind == KindSymbol && !t.Symbol.IsNull() {
		sym := t.Symbol.Get()
		switch sym.Kind {
		case symtab.Variable:
			t = FromSymbol(sym.VariableInfo.Type)
		case symtab.Constant:
			t = FromSymbol(sym.ConstantInfo.Type)
		case symtab.Indirect:
			if sym.IndirectInfo.ResolvedID == 0 {
				return Literal(TUndefined)
			}
			t = FromSymbol(t.Symbol.Table.GetSymbol(sym.IndirectInfo.ResolvedID))
		default:
			return t
		}
	}
	return t
}

func (t Type) isEvent() bool {
	return t.Kind == KindSymbol && !t.Symbol.IsNull() && t.Symbol.Get().Kind == symtab.Event
}

// isBool reports whether t is the Bool literal family or the bool
// primitive.
func (t Type) isBool() bool {
	if t.Kind == KindLiteral {
		return t.Literal == TBool
	}
	name, ok := t.sourceName()
	return ok && name == "bool"
}

// sourceName returns a TypeDecl symbol's EEL-visible name; ok is false
// for anything else (Function, Namespace, Indirect, ExternFunction —
// none of these are ever a legal operand of a typed comparison, so
// Equals treats them as simply never matching rather than panicking).
func (t Type) sourceName() (string, bool) {
	if t.Kind != KindSymbol || t.Symbol.IsNull() {
		return "", false
	}
	sym := t.Symbol.Get()
	if sym.Kind != symtab.TypeDecl || sym.TypeInfo == nil {
		return "", false
	}
	return sym.TypeInfo.SourceName, true
}

// literalMatchesPrimitive implements rule 4 (§4.4): a bare literal
// unifies with a symbol-kind type exactly when the symbol is a
// primitive from the matching family.
func literalMatchesPrimitive(lit LiteralKind, primitiveName string) bool {
	switch lit {
	case TInteger:
		return containsName(symtab.IntegerPrimitives, primitiveName)
	case TFloat:
		return containsName(symtab.FloatPrimitives, primitiveName)
	case TBool:
		return primitiveName == "bool"
	default:
		return false
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Equals implements the four-rule type-compatibility
// contract:
//
//  1. A Variable or Constant operand substitutes in for its declared
//     type before anything else happens (handled by resolve, called on
//     both sides up front).
//  2. An Event operand is equal to the other side exactly when the
//     other side is Bool, either the literal family or the bool
//     primitive (an awaited event reads as its predicate's truth value).
//  3. Two literal-family operands are equal exactly when their
//     families match exactly (no numeric promotion — char and string
//     are therefore never compatible with anything but themselves).
//  4. Two symbol-kind operands (both TypeDecl) are equal exactly when
//     their source names match; a literal and a symbol-kind operand are
//     equal exactly when the literal's family unifies with the symbol's
//     primitive family (Integer/Float against the sized-integer/float
//     tables, Bool against "bool" — Char and String never unify with
//     any symbol).
func (t Type) Equals(other Type) bool {
	t = t.resolve()
	other = other.resolve()

	if t.isEvent() {
		return other.isBool()
	}
	if other.isEvent() {
		return t.isBool()
	}

	if t.Kind == KindLiteral && other.Kind == KindLiteral {
		return t.Literal == other.Literal
	}

	if t.Kind == KindSymbol && other.Kind == KindSymbol {
		tn, tok := t.sourceName()
		on, ook := other.sourceName()
		return tok && ook && tn == on
	}

	lit, sym := t, other
	if sym.Kind == KindLiteral {
		lit, sym = other, t
	}
	name, ok := sym.sourceName()
	if !ok {
		return false
	}
	return literalMatchesPrimitive(lit.Literal, name)
}

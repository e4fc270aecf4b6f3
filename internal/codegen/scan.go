package codegen

import (
	"fmt"
	"strings"

	"github.com/eel-lang/eelc/internal/cst"
	"github.com/eel-lang/eelc/internal/diag"
	"github.com/eel-lang/eelc/internal/sequence"
	"github.com/eel-lang/eelc/internal/symtab"
)

// blockInfo is what scanFunction records for one nested *cst.StmtBlock:
// the scope it runs in and whether its sequence Block was promoted to
// Async. The emission pass looks this up by AST node identity instead
// of re-walking the sequence graph itself.
type blockInfo struct {
	scope symtab.ScopeRef
	async bool
}

// loopFrame is pushed for the duration of a while body's emission so
// break/continue (§4.5) know both whether they're inside an async loop
// at all and, if so, which markers to jump to.
type loopFrame struct {
	async  bool
	header string
	after  string
}

// funcEmit holds everything specific to the function currently being
// emitted: whether it is async at all, the precomputed per-block
// lookup table, the State struct's fields, and the growing list of case
// bodies (a single entry, used directly as invoke()'s body, for a sync
// function).
type funcEmit struct {
	fn          *symtab.FunctionInfo
	fnScopeID   symtab.ScopeID
	isAsyncFn   bool

	curBlockAsync bool

	blocks        map[*cst.StmtBlock]*blockInfo
	asyncScopeIDs map[symtab.ScopeID]bool
	fields        []string

	cases        []*strings.Builder
	markerSeq    int
	markerValues map[string]int

	loopStack []loopFrame
}

func (fe *funcEmit) cur() *strings.Builder {
	return fe.cases[len(fe.cases)-1]
}

func (fe *funcEmit) emit(format string, args ...interface{}) {
	fmt.Fprintf(fe.cur(), format, args...)
}

// newMarker mints a placeholder token for a jump target whose case
// number isn't known yet (the rejoin case of an if, or either side of a
// while's header/after pair depend on how many cases the intervening
// body consumes). Resolved by a literal string replace once the real
// case index is known, via openCaseNamed.
func (fe *funcEmit) newMarker() string {
	fe.markerSeq++
	return fmt.Sprintf("@M%d@", fe.markerSeq)
}

// openCaseNamed opens the next case, binds marker to its (now known)
// index, and makes it the active case for subsequent emit calls.
func (fe *funcEmit) openCaseNamed(marker string) int {
	idx := len(fe.cases)
	fe.markerValues[marker] = idx
	fe.cases = append(fe.cases, &strings.Builder{})
	return idx
}

// nextSequentialMarker mints a marker meant to be opened immediately
// after the current case closes — a thin naming wrapper over newMarker
// for the await lowering's relative continuation, kept distinct so a
// reader isn't left wondering why an unconditional jump target needed
// "new"-ing at all.
func (fe *funcEmit) nextSequentialMarker() string {
	return fe.newMarker()
}

// innermostLoop returns the loopFrame for the nearest enclosing while,
// sync or async. Statically unreachable outside one — scope/type
// analysis both already reject a bare break/continue (§4.3) before
// codegen ever runs.
func (fe *funcEmit) innermostLoop() loopFrame {
	return fe.loopStack[len(fe.loopStack)-1]
}

// resolveMarkers substitutes every marker token a case body still
// contains with its final numeric case index.
func (fe *funcEmit) resolveMarkers(text string) string {
	if len(fe.markerValues) == 0 {
		return text
	}
	pairs := make([]string, 0, len(fe.markerValues)*2)
	for m, idx := range fe.markerValues {
		pairs = append(pairs, m, fmt.Sprintf("%d", idx))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// scanFunction walks fn's sequence graph once, in lockstep with an AST
// traversal shaped exactly like typeanalysis's own (same FunctionOf
// gating, same per-StmtBlock scope derivation), recording per nested
// block whether it is Async and which variables any Async block
// contributes to the eventual State struct. Folding "find Async blocks"
// and "collect State fields" into the same walk means the real
// emission pass never touches fn.Sequence's cursor at all — it only
// ever consults the blocks/fields this prepares.
func (g *Generator) scanFunction(fnRef symtab.SymbolRef, body *cst.StmtBlock) *funcEmit {
	fn := fnRef.Get().FunctionInfo
	isAsyncFn := fn.Sequence.Root().IsAsync()

	fe := &funcEmit{
		fn:            fn,
		fnScopeID:     fn.Scope.ID,
		isAsyncFn:     isAsyncFn,
		curBlockAsync: isAsyncFn,
		blocks:        make(map[*cst.StmtBlock]*blockInfo),
		asyncScopeIDs: make(map[symtab.ScopeID]bool),
		markerValues:  make(map[string]int),
	}

	if !isAsyncFn {
		return fe
	}

	fe.asyncScopeIDs[fn.Scope.ID] = true
	g.collectFields(fe, fn.Scope)

	fn.Sequence.Reset()
	g.scanStmts(fn.Sequence, body.Stmts, fe)

	return fe
}

func (g *Generator) scanStmts(seq *sequence.Sequence, stmts []cst.Stmt, fe *funcEmit) {
	for _, st := range stmts {
		switch n := st.(type) {
		case *cst.StmtBlock:
			g.scanBlock(seq, n, fe)
		case *cst.IfStmt:
			g.scanBlock(seq, n.Then, fe)
			if n.HasElse {
				g.scanBlock(seq, n.Else, fe)
			}
		case *cst.WhileStmt:
			g.scanBlock(seq, n.Body, fe)
		case *cst.AwaitStmt:
			seq.Next()
		}
	}
}

func (g *Generator) scanBlock(seq *sequence.Sequence, block *cst.StmtBlock, fe *funcEmit) {
	point := seq.Next()
	b, ok := point.AsBlock()
	if !ok {
		g.fatal(diag.Internal(diag.Codegen, "sequence graph desynchronized: expected a block point during codegen's discovery pass"))
	}
	scopeID := symtab.ScopeID(b.Scope)
	scopeRef := g.Table.GetScope(scopeID)
	async := b.IsAsync()
	fe.blocks[block] = &blockInfo{scope: scopeRef, async: async}
	if async {
		fe.asyncScopeIDs[scopeID] = true
		g.collectFields(fe, scopeRef)
	}
	g.scanStmts(seq, block.Stmts, fe)
}

// collectFields appends one field per Variable member of scope, in
// ascending SymbolID order, excluding pins (never state-promoted, per
// §4.5's pin-decl rule).
func (g *Generator) collectFields(fe *funcEmit, scope symtab.ScopeRef) {
	for _, m := range scope.Members() {
		sym := m.Get()
		if sym.Kind != symtab.Variable || isPinVariable(m) {
			continue
		}
		fe.fields = append(fe.fields, fmt.Sprintf("%s %s;", targetTypeName(sym.VariableInfo.Type), mangledName(sym.ID)))
	}
}

// isPinVariable reports whether sym is a Variable symbol declared by a
// PinDecl (its declared type is the digital or analog primitive) —
// pins are excluded from state promotion and from the async-access
// "state." prefix regardless of which block declares them.
func isPinVariable(sym symtab.SymbolRef) bool {
	s := sym.Get()
	if s.Kind != symtab.Variable {
		return false
	}
	typeRef := s.VariableInfo.Type
	if typeRef.IsNull() {
		return false
	}
	t := typeRef.Get()
	if t.Kind == symtab.Indirect {
		if t.IndirectInfo.ResolvedID == 0 {
			return false
		}
		typeRef = symtab.SymbolRef{ID: t.IndirectInfo.ResolvedID, Table: typeRef.Table}
		t = typeRef.Get()
	}
	if t.TypeInfo == nil {
		return false
	}
	return t.TypeInfo.SourceName == "digital" || t.TypeInfo.SourceName == "analog"
}

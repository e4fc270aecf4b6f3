// Package sequence implements the per-function sequence graph: the
// tree of blocks and yield points that records where a function's
// execution may suspend, so the code generator can decide, per block,
// whether it needs a plain thunk or a resumable state machine.
//
// Grounded on original_source/includes/sequence.hpp and src/sequence.cc.
// The reference C++ Sequence::next() computes a descend-into-child (or
// follow-next) result and then unconditionally overwrites it with a
// second sibling-or-parent computation — the first branch is never
// actually observed by any caller, which looks like a leftover
// half-edit rather than intended behavior. This package instead
// implements the coherent preorder contract instead: into a
// block's first child if present, else along next, else back up the
// parent chain's next sibling.
package sequence

// ScopeID is an opaque scope handle. It is a plain int rather than a
// symtab.ScopeRef so this package never needs to import symtab (which
// itself stores a *Sequence per function symbol) — callers convert
// their own scope handle type to ScopeID when building the graph.
type ScopeID int

// Kind classifies a SequencePoint.
type Kind int

const (
	Sync Kind = iota
	Async
	Yield
)

// Point is either a Block or a plain yield marker. Block embeds Point
// so both can be threaded through the same next chain.
type Point struct {
	kind Kind
	next *Point
	// block is non-nil iff this Point is actually a Block; kept as a
	// separate field (rather than a type switch) since Go has no
	// built-in downcast as cheap as the original's dynamic_cast<Block*>.
	block *Block
}

// IsAsync reports whether the point has been promoted out of Sync.
func (p *Point) IsAsync() bool {
	return p != nil && p.kind != Sync
}

// Kind returns the point's current classification.
func (p *Point) Kind() Kind {
	if p == nil {
		return Sync
	}
	return p.kind
}

// Block is a sequence point that owns a scope and a possible first
// child; like any Point it also chains to a sibling via next.
type Block struct {
	Point
	Scope  ScopeID
	parent *Block
	child  *Point
}

func newBlock(scope ScopeID, parent *Block) *Block {
	b := &Block{Scope: scope, parent: parent}
	b.block = b
	return b
}

// markAsync promotes this block and every ancestor to Async. Promotion
// is monotone: once Async, a block is never demoted back to Sync.
func (b *Block) markAsync() {
	for cur := b; cur != nil; cur = cur.parent {
		cur.kind = Async
	}
}

// Sequence owns the block tree for one function body and a cursor used
// both by scope analysis (building the graph) and by codegen (walking
// it, possibly more than once via snapshot/restore).
type Sequence struct {
	start        *Block
	currentBlock *Block
	currentPoint *Point
}

// New creates a Sequence rooted at a fresh Block over the given scope.
// The root block is always present, even for a function with no
// statements at all.
func New(rootScope ScopeID) *Sequence {
	root := newBlock(rootScope, nil)
	return &Sequence{start: root, currentBlock: root, currentPoint: &root.Point}
}

// Root returns the sequence's root block — a function is asynchronous
// iff Root().IsAsync().
func (s *Sequence) Root() *Block {
	return s.start
}

// EnterBlock creates a new Block as the child of the current point (if
// the current point is itself the current block, i.e. the block has no
// children yet) or as the next sibling of the current point, then
// descends the cursor into it.
func (s *Sequence) EnterBlock(scope ScopeID) *Sequence {
	block := newBlock(scope, s.currentBlock)

	if s.currentPoint == &s.currentBlock.Point {
		s.currentBlock.child = &block.Point
	} else {
		s.currentPoint.next = &block.Point
	}

	s.currentPoint = &block.Point
	s.currentBlock = block

	return s
}

// LeaveBlock ascends the cursor to the current block's parent. Calling
// LeaveBlock past the root is a caller bug (mirrored on the parent
// chain being nil), matched by callers never doing so: scope analysis
// always pairs EnterBlock/LeaveBlock.
func (s *Sequence) LeaveBlock() *Sequence {
	s.currentPoint = &s.currentBlock.Point
	if s.currentBlock.parent != nil {
		s.currentBlock = s.currentBlock.parent
	}
	return s
}

// Yield inserts a Yield point at the current position, advances the
// cursor onto it, and promotes the current block (and its ancestors) to
// Async.
func (s *Sequence) Yield() *Sequence {
	point := &Point{kind: Yield}

	if s.currentPoint == &s.currentBlock.Point {
		s.currentBlock.child = point
	} else {
		s.currentPoint.next = point
	}

	s.currentPoint = point
	s.currentBlock.markAsync()

	return s
}

// Reset moves the cursor back to the sequence's start.
func (s *Sequence) Reset() {
	s.currentBlock = s.start
	s.currentPoint = &s.start.Point
}

// Next advances the cursor in preorder: into the current point's first
// child if it is a Block with one, else along its next sibling, else up
// the parent chain's next sibling. Returns the new current point (nil
// once traversal is exhausted).
func (s *Sequence) Next() *Point {
	cur := s.currentPoint

	if cur.block != nil && cur.block.child != nil {
		s.currentPoint = cur.block.child
	} else if cur.next != nil {
		s.currentPoint = cur.next
	} else {
		// Neither a child nor a sibling of cur itself: ascend from the
		// enclosing block (cur.block if cur is a block, else whatever
		// block the cursor was last inside — a yield point is always
		// created as a child/sibling within currentBlock) looking for a
		// next sibling up the parent chain.
		b := cur.block
		if b == nil {
			b = s.currentBlock
		}
		for b != nil && b.next == nil {
			b = b.parent
		}
		if b != nil {
			s.currentPoint = b.next
		} else {
			s.currentPoint = nil
		}
	}

	if s.currentPoint != nil && s.currentPoint.block != nil {
		s.currentBlock = s.currentPoint.block
	}

	return s.currentPoint
}

// Snapshot captures the cursor so codegen can pre-scan a branch (e.g.
// to decide whether an if/else arm is async) without disturbing the
// position other code relies on.
type Snapshot struct {
	point *Point
	block *Block
}

func (s *Sequence) Snapshot() Snapshot {
	return Snapshot{point: s.currentPoint, block: s.currentBlock}
}

func (s *Sequence) Restore(snap Snapshot) {
	s.currentPoint = snap.point
	s.currentBlock = snap.block
}

// IsNextAsync snapshots, advances once, inspects the resulting point's
// kind, and restores — used by codegen to decide whether the statement
// about to be visited needs its own case.
func (s *Sequence) IsNextAsync() bool {
	snap := s.Snapshot()
	result := s.Next().IsAsync()
	s.Restore(snap)
	return result
}

// AsBlock reports whether p is itself a Block (as opposed to a Yield
// marker) and returns it. Used by codegen's state-field discovery,
// which walks the whole graph a second time via Next() and needs each
// Block's Scope to look up its locally-declared variables.
func (p *Point) AsBlock() (*Block, bool) {
	if p == nil || p.block == nil {
		return nil, false
	}
	return p.block, true
}

// CurrentBlock exposes the cursor's current block, e.g. so a caller can
// call EnterBlock/LeaveBlock/Yield without re-deriving the cursor.
func (s *Sequence) CurrentBlock() *Block {
	return s.currentBlock
}

package sequence

import "testing"

// A synchronous function with no await anywhere stays Sync throughout.
func TestSyncBodyStaysSync(t *testing.T) {
	seq := New(1)

	seq.EnterBlock(2) // e.g. an "if" body with no awaits
	seq.LeaveBlock()

	if seq.Root().IsAsync() {
		t.Fatal("root block should remain Sync when no await was recorded")
	}
}

// A single yield() promotes the block it occurs in, and every ancestor,
// to Async — this is the invariant the code generator relies on to
// decide whether a function needs a state machine at all.
func TestYieldPromotesAncestorsToAsync(t *testing.T) {
	seq := New(1)

	seq.EnterBlock(2)
	seq.EnterBlock(3)
	seq.Yield()
	seq.LeaveBlock()
	seq.LeaveBlock()

	if !seq.Root().IsAsync() {
		t.Fatal("root block should be promoted to Async by a nested yield")
	}
}

// Promotion is monotone: once Async, a sibling block entered afterwards
// does not get reclassified, and the already-Async block stays Async.
func TestPromotionIsMonotone(t *testing.T) {
	seq := New(1)

	seq.EnterBlock(2)
	seq.Yield()
	asyncBlock := seq.CurrentBlock()
	seq.LeaveBlock()

	seq.EnterBlock(3)
	syncBlock := seq.CurrentBlock()
	seq.LeaveBlock()

	if !asyncBlock.IsAsync() {
		t.Fatal("block containing the yield should stay Async")
	}
	if syncBlock.IsAsync() {
		t.Fatal("sibling block with no yield should not be promoted")
	}
	// The root is an ancestor of asyncBlock, so it must also be Async.
	if !seq.Root().IsAsync() {
		t.Fatal("root should be promoted transitively")
	}
}

// snapshot/restore must be a true no-op on the cursor: next() after a
// restore should observe exactly the same point as it would have
// before the snapshot/next/restore round-trip.
func TestSnapshotRestoreRoundTrips(t *testing.T) {
	seq := New(1)
	seq.EnterBlock(2)
	seq.Yield()
	seq.LeaveBlock()
	seq.EnterBlock(3)
	seq.LeaveBlock()
	seq.Reset()

	before := seq.Snapshot()
	first := seq.Next()
	seq.Restore(before)

	after := seq.Snapshot()
	if after.point != before.point || after.block != before.block {
		t.Fatal("restore did not reproduce the pre-snapshot cursor")
	}

	second := seq.Next()
	if first != second {
		t.Fatal("next() after restore should revisit the same point")
	}
}

// IsNextAsync must not advance the cursor.
func TestIsNextAsyncDoesNotAdvance(t *testing.T) {
	seq := New(1)
	seq.EnterBlock(2)
	seq.Yield()
	seq.LeaveBlock()
	seq.Reset()

	before := seq.Snapshot()
	_ = seq.IsNextAsync()
	after := seq.Snapshot()

	if before.point != after.point || before.block != after.block {
		t.Fatal("IsNextAsync must restore the cursor after peeking")
	}
}

// Preorder traversal visits a block's own child before its sibling.
func TestNextVisitsChildBeforeSibling(t *testing.T) {
	seq := New(1) // root

	seq.EnterBlock(2) // root's child block A
	childOfA := seq.CurrentBlock()
	seq.LeaveBlock()

	seq.EnterBlock(3) // A's next sibling B, also a child of root
	siblingOfA := seq.CurrentBlock()
	seq.LeaveBlock()

	seq.Reset()
	first := seq.Next() // should land on A (root's child)
	if first == nil || first.block != childOfA {
		t.Fatalf("expected first Next() to reach root's child block, got %v", first)
	}

	second := seq.Next() // should land on B (A's sibling)
	if second == nil || second.block != siblingOfA {
		t.Fatalf("expected second Next() to reach A's next-sibling block, got %v", second)
	}
}

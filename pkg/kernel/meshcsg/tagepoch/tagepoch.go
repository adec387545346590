// Package tagepoch provides O(1) per-primitive "first visit in this
// query" detection without allocating a per-query visited set.
//
// A single process-wide counter is advanced before each top-level
// octree query; every primitive carries a Tag recording the epoch it
// was last seen in. TagOnce compares and updates that stamp in one
// step. See carve::tagable in the Carve CSG library, which this
// package's contract mirrors.
package tagepoch

import "sync/atomic"

// epoch is the process-wide monotonically increasing query counter.
var epoch uint64

// Begin advances the global epoch. Call once before each top-level
// near-neighbour query; every TagOnce call issued afterward, up to the
// next Begin, shares this epoch.
func Begin() {
	atomic.AddUint64(&epoch, 1)
}

// current returns the epoch in effect for calls to TagOnce right now.
func current() uint64 {
	return atomic.LoadUint64(&epoch)
}

// Tag is embedded in a geometric primitive (vertex, edge, face) to give
// it a one-shot "seen this epoch" predicate.
//
// Wraparound of the epoch counter is not handled; callers running long
// enough to wrap a uint64 are not a concern in practice.
type Tag struct {
	seen uint64
}

// TagOnce reports whether this is the first call against t since the
// current epoch began. The first caller in an epoch gets true; every
// subsequent caller in the same epoch gets false.
func (t *Tag) TagOnce() bool {
	now := current()
	if t.seen >= now {
		return false
	}
	t.seen = now
	return true
}

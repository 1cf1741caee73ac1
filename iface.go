// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"iter"

	"github.com/gaissmai/hibit/internal/bitset"
)

// Source is the traversal contract shared by the concrete [Tree] and
// every lazy view composed of trees. A source knows its depth, can
// answer point lookups and can spawn cursors for iteration.
//
// The method set is unexported, the implementations in this package
// form a closed set: Tree, Map, Union, Intersection, MultiUnion and
// MultiIntersection.
//
// D is the per-element data type a source yields: *V for a Tree[V],
// the mapped output for Map, pairs for the binary views and
// per-source value sequences for the n-ary views.
type Source[D any] interface {
	// levelCount returns the number of levels from root to terminal.
	levelCount() int

	// exactHierarchy reports whether the mask at every internal level
	// equals the union of its reachable terminals, i.e. carries no
	// false-positive bits. Trees are exact; AND-composed masks are
	// conservative and lose the property.
	exactHierarchy() bool

	// newCursor spawns an unpositioned cursor over this source.
	newCursor() cursor[D]

	// getValue is the point lookup through the composition.
	getValue(key uint64) (D, bool)
}

// cursor is a stateful traversal object, its node path is cached from
// root to terminal while selectLevelNode walks down level by level.
//
// The caller must respect the protocol: selectLevelNode(0, 0) primes
// the root; a call at level n with index idx requires that bit idx
// was set in the mask returned by the most recent call at level n-1.
// The data methods require a complete path, all levels selected.
//
// Cursors borrow their source for their whole lifetime and are not
// safe for concurrent use; every goroutine needs its own.
type cursor[D any] interface {
	// selectLevelNode positions the cursor at child idx of the node
	// selected at level n-1 and returns that child's occupancy mask.
	// An absent child resolves to the immutable empty sentinel, whose
	// zero mask safely ends the traversal.
	selectLevelNode(n int, idx uint) bitset.BitSet64

	// selectLevelNodeUnchecked is selectLevelNode with the caller
	// asserting that bit idx is set; the contains test may be skipped.
	selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64

	// data returns the value at the terminal leaf index, if any.
	data(idx uint) (D, bool)

	// dataUnchecked returns the value at the terminal leaf index, the
	// caller asserts that the leaf is present.
	dataUnchecked(idx uint) D
}

// Get is the point lookup on any source: the value stored at key and
// true, or the zero value and false.
//
// For composed views Get recomputes the composition along the key's
// path; nothing is materialized.
func Get[D any](s Source[D], key uint64) (D, bool) {
	return s.getValue(key)
}

// LevelCount returns the number of tree levels of s.
func LevelCount[D any](s Source[D]) int {
	return s.levelCount()
}

// ExactHierarchy reports whether s guarantees that every set bit in
// every internal mask has at least one stored value below it.
func ExactHierarchy[D any](s Source[D]) bool {
	return s.exactHierarchy()
}

// All returns an iterator over the elements of s in ascending key
// order.
//
// The yielded data of the n-ary views borrows per-advance cursor
// state, see [MultiIntersection].
func All[D any](s Source[D]) iter.Seq2[uint64, D] {
	return func(yield func(uint64, D) bool) {
		it := NewIter(s)
		for {
			key, value, ok := it.Next()
			if !ok {
				return
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

// checkSameDepth panics if the operands of a view disagree on depth.
// Composing sources of different key ranges is a precondition
// violation, not a runtime condition.
func checkSameDepth(depth, other int) {
	if depth != other {
		panic("hibit: composed sources must have the same depth")
	}
}

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import "github.com/gaissmai/hibit/internal/bitset"

// Iter walks any [Source] in ascending key order by driving one bit
// queue per level with the source's cursor. It visits only occupied
// branches, the per-element work is bounded by the popcount work per
// level.
//
// An Iter consumes its state and is not restartable, but it is cheap
// to rebuild. It must not be shared between goroutines.
type Iter[D any] struct {
	cur     cursor[D]
	queues  [maxDepth]bitset.BitQueue
	indices [maxDepth]uint
	depth   int
}

// NewIter returns an iterator over s, primed at the root.
func NewIter[D any](s Source[D]) *Iter[D] {
	it := &Iter[D]{
		cur:   s.newCursor(),
		depth: s.levelCount(),
	}
	it.queues[0] = it.cur.selectLevelNodeUnchecked(0, 0).Queue()
	return it
}

// Next returns the next key-value pair in ascending key order, or ok
// false when the iteration is exhausted.
//
// The yielded value of a composed view may borrow cursor state that
// is overwritten by the following Next call, see [MultiIntersection].
func (it *Iter[D]) Next() (key uint64, value D, ok bool) {
	for {
		// driven by the terminal level queue
		if leaf, ok := it.queues[it.depth-1].Pop(); ok {
			value = it.cur.dataUnchecked(leaf)
			key = joinKey(&it.indices, leaf, it.depth)
			return key, value, true
		}

		// walk up to the next level with bits left, select that child
		// and reseed the queue one level deeper
		refilled := false
		for n := it.depth - 2; n >= 0; n-- {
			j, ok := it.queues[n].Pop()
			if !ok {
				continue
			}

			it.indices[n] = j
			it.queues[n+1] = it.cur.selectLevelNodeUnchecked(n+1, j).Queue()
			refilled = true
			break
		}

		if !refilled {
			// the root queue ran dry
			return key, value, false
		}
	}
}

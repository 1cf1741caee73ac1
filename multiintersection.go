// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"iter"
	"math"
	"slices"

	"github.com/gaissmai/hibit/internal/bitset"
)

// Values is the per-key data of a [MultiIntersection]: one value per
// source, in source order. It always holds exactly one entry per
// source of the view.
//
// A Values yielded by iteration borrows a scratch buffer of the
// cursor and is overwritten by the next advance; use [Values.Collect]
// to keep it. A Values returned by [Get] is freshly allocated.
type Values[D any] struct {
	items []D
}

// Len returns the number of values, equal to the source count.
func (v Values[D]) Len() int { return len(v.items) }

// At returns the value of the source at position i.
func (v Values[D]) At(i int) D { return v.items[i] }

// All iterates the values in source order.
func (v Values[D]) All() iter.Seq[D] {
	return slices.Values(v.items)
}

// Collect returns the values as a freshly allocated slice.
func (v Values[D]) Collect() []D {
	return slices.Clone(v.items)
}

// MultiIntersectionView is the lazy view produced by
// [MultiIntersection]. Per level the occupancy mask is the AND across
// all sources.
type MultiIntersectionView[D any] struct {
	srcs  []Source[D]
	depth int
}

// MultiIntersection returns the lazy set intersection of all sources.
// All sources must have the same depth, it panics otherwise. With no
// sources the view is empty.
func MultiIntersection[D any](srcs ...Source[D]) *MultiIntersectionView[D] {
	depth := 1
	for pos, s := range srcs {
		if pos == 0 {
			depth = s.levelCount()
			continue
		}
		checkSameDepth(depth, s.levelCount())
	}

	return &MultiIntersectionView[D]{srcs: srcs, depth: depth}
}

// Source returns the view as a composition operand, see
// [Tree.Source].
func (x *MultiIntersectionView[D]) Source() Source[Values[D]] { return x }

// Get returns the per-source values stored at key and true, or the
// zero value and false unless every source holds the key. The
// returned Values is freshly allocated.
func (x *MultiIntersectionView[D]) Get(key uint64) (Values[D], bool) {
	return x.getValue(key)
}

// All returns an iterator over the intersection in ascending key
// order. The yielded Values borrows cursor state, see [Values].
func (x *MultiIntersectionView[D]) All() iter.Seq2[uint64, Values[D]] {
	return All[Values[D]](x)
}

func (x *MultiIntersectionView[D]) levelCount() int { return x.depth }

// exactHierarchy is false, the AND-composed masks are conservative.
func (x *MultiIntersectionView[D]) exactHierarchy() bool { return false }

func (x *MultiIntersectionView[D]) getValue(key uint64) (v Values[D], ok bool) {
	if len(x.srcs) == 0 {
		return v, false
	}

	// collect all source data up front; on the first miss the
	// half-built buffer is thrown away. No special cases surface to
	// the caller, the latency trade-off on failed intersections is
	// accepted.
	items := make([]D, 0, len(x.srcs))
	for _, s := range x.srcs {
		d, ok := s.getValue(key)
		if !ok {
			return v, false
		}
		items = append(items, d)
	}
	return Values[D]{items: items}, true
}

func (x *MultiIntersectionView[D]) newCursor() cursor[Values[D]] {
	c := &multiIntersectionCursor[D]{
		curs:       make([]cursor[D], 0, min(len(x.srcs), inlineCursors)),
		scratch:    make([]D, 0, min(len(x.srcs), inlineCursors)),
		depth:      x.depth,
		emptyBelow: math.MaxInt,
	}
	for _, s := range x.srcs {
		c.curs = append(c.curs, s.newCursor())
	}
	return c
}

// multiIntersectionCursor holds one delegated cursor per source plus
// an emptyBelow watermark: once a level returns an empty intersection
// mask, all deeper selections short-circuit without querying the
// sources.
type multiIntersectionCursor[D any] struct {
	curs []cursor[D]

	// emptyBelow is the level that last produced an empty mask,
	// math.MaxInt while the path is live.
	emptyBelow int

	// terminalMask caches the AND mask of the last level, data
	// presence is answered from it without touching the sources.
	terminalMask bitset.BitSet64

	depth   int
	scratch []D
}

func (c *multiIntersectionCursor[D]) selectLevelNode(n int, idx uint) bitset.BitSet64 {
	// upper level already empty, stay empty
	if n > c.emptyBelow {
		if n == c.depth-1 {
			c.terminalMask = 0
		}
		return 0
	}
	if len(c.curs) == 0 {
		return 0
	}

	acc := c.curs[0].selectLevelNode(n, idx)
	for _, cc := range c.curs[1:] {
		acc = acc.Intersection(cc.selectLevelNode(n, idx))
	}

	if acc.IsEmpty() {
		c.emptyBelow = n
	} else {
		c.emptyBelow = math.MaxInt
	}

	if n == c.depth-1 {
		c.terminalMask = acc
	}
	return acc
}

func (c *multiIntersectionCursor[D]) selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64 {
	if len(c.curs) == 0 {
		return 0
	}

	// a bit set in the AND mask is set in every source
	acc := c.curs[0].selectLevelNodeUnchecked(n, idx)
	for _, cc := range c.curs[1:] {
		acc = acc.Intersection(cc.selectLevelNodeUnchecked(n, idx))
	}

	if n == c.depth-1 {
		c.terminalMask = acc
	}
	return acc
}

func (c *multiIntersectionCursor[D]) data(idx uint) (v Values[D], ok bool) {
	if !c.terminalMask.Test(idx) {
		return v, false
	}
	return c.dataUnchecked(idx), true
}

func (c *multiIntersectionCursor[D]) dataUnchecked(idx uint) Values[D] {
	c.scratch = c.scratch[:0]
	for _, cc := range c.curs {
		c.scratch = append(c.scratch, cc.dataUnchecked(idx))
	}
	return Values[D]{items: c.scratch}
}

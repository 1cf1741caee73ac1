// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"iter"

	"github.com/gaissmai/hibit/internal/bitset"
)

// Both holds the per-key data of a binary [Intersection]: the paired
// values of the two operands.
type Both[D0, D1 any] struct {
	A D0
	B D1
}

// IntersectionView is the lazy view produced by [Intersection]. Per
// level the occupancy mask is the AND of the operands' masks.
type IntersectionView[D0, D1 any] struct {
	s0 Source[D0]
	s1 Source[D1]
}

// Intersection returns the lazy set intersection of s0 and s1. Both
// operands must have the same depth, it panics otherwise.
func Intersection[D0, D1 any](s0 Source[D0], s1 Source[D1]) *IntersectionView[D0, D1] {
	checkSameDepth(s0.levelCount(), s1.levelCount())
	return &IntersectionView[D0, D1]{s0: s0, s1: s1}
}

// Source returns the view as a composition operand, see
// [Tree.Source].
func (x *IntersectionView[D0, D1]) Source() Source[Both[D0, D1]] { return x }

// Get returns the paired data stored at key and true, or the zero
// value and false unless both operands hold the key.
func (x *IntersectionView[D0, D1]) Get(key uint64) (Both[D0, D1], bool) {
	return x.getValue(key)
}

// All returns an iterator over the intersection in ascending key
// order.
func (x *IntersectionView[D0, D1]) All() iter.Seq2[uint64, Both[D0, D1]] {
	return All[Both[D0, D1]](x)
}

func (x *IntersectionView[D0, D1]) levelCount() int { return x.s0.levelCount() }

// exactHierarchy is false: the AND of two masks may keep a bit whose
// subtrees intersect nowhere, internal levels carry false positives.
func (x *IntersectionView[D0, D1]) exactHierarchy() bool { return false }

func (x *IntersectionView[D0, D1]) getValue(key uint64) (b Both[D0, D1], ok bool) {
	d0, ok0 := x.s0.getValue(key)
	if !ok0 {
		return b, false
	}
	d1, ok1 := x.s1.getValue(key)
	if !ok1 {
		return b, false
	}
	return Both[D0, D1]{A: d0, B: d1}, true
}

func (x *IntersectionView[D0, D1]) newCursor() cursor[Both[D0, D1]] {
	return &intersectionCursor[D0, D1]{
		c0: x.s0.newCursor(),
		c1: x.s1.newCursor(),
	}
}

type intersectionCursor[D0, D1 any] struct {
	c0 cursor[D0]
	c1 cursor[D1]
}

func (c *intersectionCursor[D0, D1]) selectLevelNode(n int, idx uint) bitset.BitSet64 {
	return c.c0.selectLevelNode(n, idx).Intersection(c.c1.selectLevelNode(n, idx))
}

// selectLevelNodeUnchecked: a bit set in the AND mask is set in both
// operands, the inner selections may skip their contains tests.
func (c *intersectionCursor[D0, D1]) selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64 {
	return c.c0.selectLevelNodeUnchecked(n, idx).
		Intersection(c.c1.selectLevelNodeUnchecked(n, idx))
}

func (c *intersectionCursor[D0, D1]) data(idx uint) (b Both[D0, D1], ok bool) {
	d0, ok0 := c.c0.data(idx)
	if !ok0 {
		return b, false
	}
	d1, ok1 := c.c1.data(idx)
	if !ok1 {
		return b, false
	}
	return Both[D0, D1]{A: d0, B: d1}, true
}

func (c *intersectionCursor[D0, D1]) dataUnchecked(idx uint) Both[D0, D1] {
	return Both[D0, D1]{
		A: c.c0.dataUnchecked(idx),
		B: c.c1.dataUnchecked(idx),
	}
}

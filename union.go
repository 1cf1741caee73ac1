// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"iter"

	"github.com/gaissmai/hibit/internal/bitset"
)

// Either holds the per-key data of a binary [Union]: the value of
// each operand that has the key. At least one of OkA, OkB is true for
// every yielded element.
type Either[D0, D1 any] struct {
	A   D0
	B   D1
	OkA bool
	OkB bool
}

// UnionView is the lazy view produced by [Union]. Per level the
// occupancy mask is the OR of the operands' masks.
type UnionView[D0, D1 any] struct {
	s0 Source[D0]
	s1 Source[D1]
}

// Union returns the lazy set union of s0 and s1. Both operands must
// have the same depth, it panics otherwise.
func Union[D0, D1 any](s0 Source[D0], s1 Source[D1]) *UnionView[D0, D1] {
	checkSameDepth(s0.levelCount(), s1.levelCount())
	return &UnionView[D0, D1]{s0: s0, s1: s1}
}

// Source returns the view as a composition operand, see
// [Tree.Source].
func (u *UnionView[D0, D1]) Source() Source[Either[D0, D1]] { return u }

// Get returns the paired data stored at key and true, or the zero
// value and false if the key is in neither operand.
func (u *UnionView[D0, D1]) Get(key uint64) (Either[D0, D1], bool) {
	return u.getValue(key)
}

// All returns an iterator over the union in ascending key order.
func (u *UnionView[D0, D1]) All() iter.Seq2[uint64, Either[D0, D1]] {
	return All[Either[D0, D1]](u)
}

func (u *UnionView[D0, D1]) levelCount() int { return u.s0.levelCount() }

// exactHierarchy: the OR of two exact masks is exact, a single
// inexact operand poisons the union.
func (u *UnionView[D0, D1]) exactHierarchy() bool {
	return u.s0.exactHierarchy() && u.s1.exactHierarchy()
}

func (u *UnionView[D0, D1]) getValue(key uint64) (e Either[D0, D1], ok bool) {
	e.A, e.OkA = u.s0.getValue(key)
	e.B, e.OkB = u.s1.getValue(key)
	return e, e.OkA || e.OkB
}

func (u *UnionView[D0, D1]) newCursor() cursor[Either[D0, D1]] {
	return &unionCursor[D0, D1]{
		c0: u.s0.newCursor(),
		c1: u.s1.newCursor(),
	}
}

type unionCursor[D0, D1 any] struct {
	c0 cursor[D0]
	c1 cursor[D1]
}

func (c *unionCursor[D0, D1]) selectLevelNode(n int, idx uint) bitset.BitSet64 {
	return c.c0.selectLevelNode(n, idx).Union(c.c1.selectLevelNode(n, idx))
}

// selectLevelNodeUnchecked: a bit set in the OR mask need not be set
// in both operands, so the inner selections stay checked, they
// already resolve absent children to the empty sentinel.
func (c *unionCursor[D0, D1]) selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64 {
	return c.selectLevelNode(n, idx)
}

func (c *unionCursor[D0, D1]) data(idx uint) (e Either[D0, D1], ok bool) {
	e.A, e.OkA = c.c0.data(idx)
	e.B, e.OkB = c.c1.data(idx)
	return e, e.OkA || e.OkB
}

func (c *unionCursor[D0, D1]) dataUnchecked(idx uint) Either[D0, D1] {
	e, _ := c.data(idx)
	return e
}

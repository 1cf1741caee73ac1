// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"iter"
	"slices"

	"github.com/gaissmai/hibit/internal/bitset"
)

// IndexedValue is one entry of [IndexedValues]: the value of the
// source at position Pos of the view's source list.
type IndexedValue[D any] struct {
	Pos int
	Val D
}

// IndexedValues is the per-key data of a [MultiUnion]: the values of
// the sources holding the key, in source order, each tagged with its
// source position. It holds at least one entry for every yielded
// element.
//
// An IndexedValues yielded by iteration borrows a scratch buffer of
// the cursor and is overwritten by the next advance; use
// [IndexedValues.Collect] to keep it. One returned by [Get] is
// freshly allocated.
type IndexedValues[D any] struct {
	items []IndexedValue[D]
}

// Len returns the number of sources holding the key.
func (v IndexedValues[D]) Len() int { return len(v.items) }

// At returns the i-th present entry in source order.
func (v IndexedValues[D]) At(i int) IndexedValue[D] { return v.items[i] }

// All iterates the entries in source order.
func (v IndexedValues[D]) All() iter.Seq[IndexedValue[D]] {
	return slices.Values(v.items)
}

// Collect returns the entries as a freshly allocated slice.
func (v IndexedValues[D]) Collect() []IndexedValue[D] {
	return slices.Clone(v.items)
}

// MultiUnionView is the lazy view produced by [MultiUnion]. Per level
// the occupancy mask is the OR across all sources.
type MultiUnionView[D any] struct {
	srcs  []Source[D]
	depth int
}

// MultiUnion returns the lazy set union of all sources. All sources
// must have the same depth, it panics otherwise. With no sources the
// view is empty.
func MultiUnion[D any](srcs ...Source[D]) *MultiUnionView[D] {
	depth := 1
	for pos, s := range srcs {
		if pos == 0 {
			depth = s.levelCount()
			continue
		}
		checkSameDepth(depth, s.levelCount())
	}

	return &MultiUnionView[D]{srcs: srcs, depth: depth}
}

// Source returns the view as a composition operand, see
// [Tree.Source].
func (u *MultiUnionView[D]) Source() Source[IndexedValues[D]] { return u }

// Get returns the per-source entries stored at key and true, or the
// zero value and false if no source holds the key. The returned
// IndexedValues is freshly allocated.
func (u *MultiUnionView[D]) Get(key uint64) (IndexedValues[D], bool) {
	return u.getValue(key)
}

// All returns an iterator over the union in ascending key order. The
// yielded IndexedValues borrows cursor state, see [IndexedValues].
func (u *MultiUnionView[D]) All() iter.Seq2[uint64, IndexedValues[D]] {
	return All[IndexedValues[D]](u)
}

func (u *MultiUnionView[D]) levelCount() int { return u.depth }

// exactHierarchy: the OR of exact masks is exact, any inexact source
// poisons the union.
func (u *MultiUnionView[D]) exactHierarchy() bool {
	for _, s := range u.srcs {
		if !s.exactHierarchy() {
			return false
		}
	}
	return true
}

func (u *MultiUnionView[D]) getValue(key uint64) (v IndexedValues[D], ok bool) {
	var items []IndexedValue[D]
	for pos, s := range u.srcs {
		if d, ok := s.getValue(key); ok {
			items = append(items, IndexedValue[D]{Pos: pos, Val: d})
		}
	}
	return IndexedValues[D]{items: items}, len(items) > 0
}

func (u *MultiUnionView[D]) newCursor() cursor[IndexedValues[D]] {
	c := &multiUnionCursor[D]{
		curs:    make([]cursor[D], 0, min(len(u.srcs), inlineCursors)),
		scratch: make([]IndexedValue[D], 0, min(len(u.srcs), inlineCursors)),
	}
	for _, s := range u.srcs {
		c.curs = append(c.curs, s.newCursor())
	}
	return c
}

type multiUnionCursor[D any] struct {
	curs    []cursor[D]
	scratch []IndexedValue[D]
}

func (c *multiUnionCursor[D]) selectLevelNode(n int, idx uint) bitset.BitSet64 {
	var acc bitset.BitSet64
	for _, cc := range c.curs {
		acc = acc.Union(cc.selectLevelNode(n, idx))
	}
	return acc
}

// selectLevelNodeUnchecked: a bit set in the OR mask need not be set
// in every source, the inner selections stay checked.
func (c *multiUnionCursor[D]) selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64 {
	return c.selectLevelNode(n, idx)
}

func (c *multiUnionCursor[D]) data(idx uint) (v IndexedValues[D], ok bool) {
	c.scratch = c.scratch[:0]
	for pos, cc := range c.curs {
		if d, ok := cc.data(idx); ok {
			c.scratch = append(c.scratch, IndexedValue[D]{Pos: pos, Val: d})
		}
	}

	if len(c.scratch) == 0 {
		return v, false
	}
	return IndexedValues[D]{items: c.scratch}, true
}

func (c *multiUnionCursor[D]) dataUnchecked(idx uint) IndexedValues[D] {
	v, _ := c.data(idx)
	return v
}

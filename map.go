// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"iter"

	"github.com/gaissmai/hibit/internal/bitset"
)

// MapView is the lazy view produced by [Map]. It composes a source
// with a function applied to every yielded value; masks delegate
// untouched, no tree structure is allocated.
type MapView[D, O any] struct {
	src Source[D]
	fn  func(D) O
}

// Map returns a view of s with fn applied to every value. fn must be
// pure: it is re-evaluated on every lookup and every iteration step.
func Map[D, O any](s Source[D], fn func(D) O) *MapView[D, O] {
	return &MapView[D, O]{src: s, fn: fn}
}

// Source returns the view as a composition operand, see
// [Tree.Source].
func (m *MapView[D, O]) Source() Source[O] { return m }

// Get returns the mapped value stored at key and true, or the zero
// value and false.
func (m *MapView[D, O]) Get(key uint64) (O, bool) {
	return m.getValue(key)
}

// All returns an iterator over the mapped elements in ascending key
// order.
func (m *MapView[D, O]) All() iter.Seq2[uint64, O] {
	return All[O](m)
}

func (m *MapView[D, O]) levelCount() int { return m.src.levelCount() }

func (m *MapView[D, O]) exactHierarchy() bool { return m.src.exactHierarchy() }

func (m *MapView[D, O]) getValue(key uint64) (out O, ok bool) {
	d, ok := m.src.getValue(key)
	if !ok {
		return out, false
	}
	return m.fn(d), true
}

func (m *MapView[D, O]) newCursor() cursor[O] {
	return &mapCursor[D, O]{src: m.src.newCursor(), fn: m.fn}
}

// mapCursor delegates all mask queries to the inner cursor and wraps
// data outputs through fn. No state of its own.
type mapCursor[D, O any] struct {
	src cursor[D]
	fn  func(D) O
}

func (c *mapCursor[D, O]) selectLevelNode(n int, idx uint) bitset.BitSet64 {
	return c.src.selectLevelNode(n, idx)
}

func (c *mapCursor[D, O]) selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64 {
	return c.src.selectLevelNodeUnchecked(n, idx)
}

func (c *mapCursor[D, O]) data(idx uint) (out O, ok bool) {
	d, ok := c.src.data(idx)
	if !ok {
		return out, false
	}
	return c.fn(d), true
}

func (c *mapCursor[D, O]) dataUnchecked(idx uint) O {
	return c.fn(c.src.dataUnchecked(idx))
}

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"fmt"
	"iter"
	"slices"

	"github.com/gaissmai/hibit/internal/bitset"
)

// node is a tree level node with popcount compression.
//
// Each node contains two conceptually different dense arrays, indexed
// by the rank of the occupancy mask:
//   - kids: child nodes, used on all levels above the terminal one.
//   - data: indexes into the owning tree's values/keys slices, used
//     on the terminal level only.
//
// Array slots are not pre-allocated; insertion and lookup rely on
// fast bitset operations and the rank index. Slot order follows the
// ascending bit order of the mask, insert shifts the suffix right,
// delete compacts.
type node[V any] struct {
	mask bitset.BitSet64

	kids []*node[V]
	data []uint32
}

// insertSlot inserts slot at rank, shifts the rest one pos right.
func insertSlot[S any](slots []S, rank int, slot S) []S {
	if len(slots) < cap(slots) {
		slots = slots[:len(slots)+1] // fast resize, no alloc
	} else {
		var zero S
		slots = append(slots, zero)
	}

	copy(slots[rank+1:], slots[rank:])
	slots[rank] = slot
	return slots
}

// deleteSlot removes the slot at rank, shifts the rest one pos left
// and clears the tail slot.
func deleteSlot[S any](slots []S, rank int) []S {
	var zero S

	nl := len(slots) - 1
	copy(slots[rank:], slots[rank+1:])

	slots[nl] = zero
	return slots[:nl]
}

// mustChild returns the child at i, the caller asserts bit i is set.
func (n *node[V]) mustChild(i uint) *node[V] {
	return n.kids[n.mask.Rank0(i)]
}

func (n *node[V]) insertChild(i uint, child *node[V]) {
	n.mask.MustSet(i)
	n.kids = insertSlot(n.kids, n.mask.Rank0(i), child)
}

func (n *node[V]) deleteChild(i uint) {
	n.kids = deleteSlot(n.kids, n.mask.Rank0(i))
	n.mask.MustClear(i)
}

// dataIndex returns the dense data index for the terminal slot i, or
// 0 when bit i is clear. Index 0 references the reserved dummy slot
// of the tree, whose key can never compare equal, so absent slots
// need no separate handling on the lookup path.
func (n *node[V]) dataIndex(i uint) uint32 {
	if n.mask.Test(i) {
		return n.data[n.mask.Rank0(i)]
	}
	return 0
}

// mustDataIndex returns the dense data index for the terminal slot i,
// the caller asserts bit i is set.
func (n *node[V]) mustDataIndex(i uint) uint32 {
	return n.data[n.mask.Rank0(i)]
}

func (n *node[V]) insertData(i uint, di uint32) {
	n.mask.MustSet(i)
	n.data = insertSlot(n.data, n.mask.Rank0(i), di)
}

func (n *node[V]) deleteData(i uint) {
	n.data = deleteSlot(n.data, n.mask.Rank0(i))
	n.mask.MustClear(i)
}

func (n *node[V]) setDataIndex(i uint, di uint32) {
	n.data[n.mask.Rank0(i)] = di
}

// Tree is a hierarchical bitmap tree mapping keys in [0, 64^depth)
// to values of type V. The zero Tree is not ready for use, construct
// with [New].
//
// A Tree may be read concurrently from multiple goroutines only while
// no writer exists; mutation requires exclusive access.
type Tree[V any] struct {
	root *node[V]

	// values[0] is a permanently reserved dummy slot, never read
	// through a present key; stored values occupy [1:]. Missing
	// terminal slots resolve to data index 0, which dereferences to
	// the dummy and is rejected by the key compare, never by a nil
	// check in the hot path.
	values []V

	// keys[i] is the key that stored values[i]; keys[0] is the noKey
	// sentinel of the dummy slot.
	keys []uint64

	depth int

	// empty is the shared, deeply-empty sentinel node. Cursors resolve
	// absent children to it: its mask is zero, so every deeper
	// selection stays on the sentinel and terminal reads yield the
	// dummy data index. It must never be mutated.
	empty *node[V]
}

// New returns an empty Tree of the given depth. The key range is
// [0, 64^depth). It panics if depth is outside [1, 10].
func New[V any](depth int) *Tree[V] {
	if depth < 1 || depth > maxDepth {
		panic(fmt.Sprintf("hibit: depth %d out of range [1, %d]", depth, maxDepth))
	}

	return &Tree[V]{
		root:   &node[V]{},
		values: make([]V, 1),
		keys:   []uint64{noKey},
		depth:  depth,
		empty:  &node[V]{},
	}
}

// checkKey panics if key is outside the tree's key range. Mutating
// with an out-of-range key would alias another key's path.
func (t *Tree[V]) checkKey(key uint64) {
	if key >= maxKey(t.depth) {
		panic(fmt.Sprintf("hibit: key %d out of range [0, 64^%d)", key, t.depth))
	}
}

// childOrEmpty returns the child at i, or the empty sentinel if bit i
// is clear.
func (t *Tree[V]) childOrEmpty(n *node[V], i uint) *node[V] {
	if n.mask.Test(i) {
		return n.mustChild(i)
	}
	return t.empty
}

// Depth returns the number of tree levels.
func (t *Tree[V]) Depth() int {
	return t.depth
}

// Len returns the number of stored key-value pairs.
func (t *Tree[V]) Len() int {
	return len(t.values) - 1
}

// Get returns the value stored at key and true, or the zero value and
// false. Lookup of an out-of-range key misses.
func (t *Tree[V]) Get(key uint64) (val V, ok bool) {
	if ptr := t.GetPtr(key); ptr != nil {
		return *ptr, true
	}
	return
}

// GetPtr returns a pointer to the value stored at key, or nil. The
// pointer stays valid until the next mutation of the tree.
//
// The descent has no early exit on a missing slot; an absent path
// runs through the empty sentinel into the dummy slot and is rejected
// by the final key compare.
func (t *Tree[V]) GetPtr(key uint64) *V {
	n := t.root
	for lvl := range t.depth - 1 {
		n = t.childOrEmpty(n, levelIndex(key, lvl, t.depth))
	}

	di := n.dataIndex(levelIndex(key, t.depth-1, t.depth))
	if t.keys[di] == key {
		return &t.values[di]
	}
	return nil
}

// Insert adds or overwrites the value at key.
func (t *Tree[V]) Insert(key uint64, val V) {
	t.getOrInsert(key, true, val)
}

// GetOrInsert returns a pointer to the value at key, inserting the
// zero value first if the key was absent. The pointer stays valid
// until the next mutation of the tree.
func (t *Tree[V]) GetOrInsert(key uint64) *V {
	var zero V
	return t.getOrInsert(key, false, zero)
}

func (t *Tree[V]) getOrInsert(key uint64, overwrite bool, val V) *V {
	t.checkKey(key)

	// walk-and-create down to the terminal node
	n := t.root
	for lvl := range t.depth - 1 {
		i := levelIndex(key, lvl, t.depth)
		if n.mask.Test(i) {
			n = n.mustChild(i)
			continue
		}

		child := &node[V]{}
		n.insertChild(i, child)
		n = child
	}

	i := levelIndex(key, t.depth-1, t.depth)
	if n.mask.Test(i) {
		di := n.mustDataIndex(i)
		if overwrite {
			t.values[di] = val
		}
		return &t.values[di]
	}

	di := uint32(len(t.values))
	t.values = append(t.values, val)
	t.keys = append(t.keys, key)
	n.insertData(i, di)
	return &t.values[di]
}

// Remove deletes key and returns its value and true, or the zero
// value and false if the key was absent.
//
// Empty branches collapse: after Remove no internal node except the
// root is left without children. The last stored value is swapped
// into the freed values slot, so value pointers obtained earlier are
// invalidated.
func (t *Tree[V]) Remove(key uint64) (val V, ok bool) {
	// walk down, record the branch for the collapse pass
	var branch [maxDepth]*node[V]

	n := t.root
	branch[0] = n
	for lvl := range t.depth - 1 {
		i := levelIndex(key, lvl, t.depth)
		if !n.mask.Test(i) {
			return val, false
		}
		n = n.mustChild(i)
		branch[lvl+1] = n
	}

	ti := levelIndex(key, t.depth-1, t.depth)
	if !n.mask.Test(ti) {
		return val, false
	}

	// the masked walk of an out-of-range key aliases an in-range one
	di := int(n.mustDataIndex(ti))
	if t.keys[di] != key {
		return val, false
	}

	// 1. remove the terminal slot, collapse empty branches upwards,
	// the root is exempt
	n.deleteData(ti)
	if t.depth > 1 && n.mask.IsEmpty() {
		for lvl := t.depth - 2; lvl >= 0; lvl-- {
			parent := branch[lvl]
			parent.deleteChild(levelIndex(key, lvl, t.depth))

			if lvl == 0 || !parent.mask.IsEmpty() {
				break
			}
		}
	}

	// 2. swap-delete: move the last entry into the freed slot and
	// patch the data index in its terminal node
	last := len(t.keys) - 1
	val = t.values[di]

	if di != last {
		lastKey := t.keys[last]
		t.keys[di] = lastKey
		t.values[di] = t.values[last]

		term := t.root
		for lvl := range t.depth - 1 {
			term = term.mustChild(levelIndex(lastKey, lvl, t.depth))
		}
		term.setDataIndex(levelIndex(lastKey, t.depth-1, t.depth), uint32(di))
	}

	// 3. pop the tail, clear the value for the garbage collector
	var zero V
	t.values[last] = zero
	t.values = t.values[:last]
	t.keys = t.keys[:last]

	return val, true
}

// KeyValues returns the stored keys and values as parallel slices,
// in insertion/swap order, not sorted by key. The slices alias the
// tree's backing storage: values may be mutated through them, the
// keys must not be.
func (t *Tree[V]) KeyValues() ([]uint64, []V) {
	return t.keys[1:], t.values[1:]
}

// Clone returns a deep copy of the tree structure. The values are
// copied using assignment, pointerish payloads stay shared between
// the clone and the original.
func (t *Tree[V]) Clone() *Tree[V] {
	return &Tree[V]{
		root:   t.root.cloneRec(),
		values: slices.Clone(t.values),
		keys:   slices.Clone(t.keys),
		depth:  t.depth,
		empty:  &node[V]{},
	}
}

func (n *node[V]) cloneRec() *node[V] {
	c := &node[V]{
		mask: n.mask,
		data: slices.Clone(n.data),
	}
	if n.kids != nil {
		c.kids = make([]*node[V], len(n.kids))
		for i, kid := range n.kids {
			c.kids[i] = kid.cloneRec()
		}
	}
	return c
}

// All returns an iterator over all key-value pairs in ascending key
// order. The yielded pointers stay valid until the next mutation.
func (t *Tree[V]) All() iter.Seq2[uint64, *V] {
	return All[*V](t)
}

// Tree implements Source[*V].

// Source returns the tree as a composition operand. The data type of
// a tree source is *V, so views can hand out and pair stored values
// without copying.
//
// The method exists for type inference at composition points:
// Union(a.Source(), b.Source()) infers its type parameters, while
// Union(a, b) would need them spelled out.
func (t *Tree[V]) Source() Source[*V] { return t }

func (t *Tree[V]) levelCount() int { return t.depth }

// exactHierarchy is always true for a Tree: remove collapses empty
// branches, so every set mask bit has a stored value below it.
func (t *Tree[V]) exactHierarchy() bool { return true }

func (t *Tree[V]) getValue(key uint64) (*V, bool) {
	ptr := t.GetPtr(key)
	return ptr, ptr != nil
}

func (t *Tree[V]) newCursor() cursor[*V] {
	c := &treeCursor[V]{tree: t}
	c.nodes[0] = t.root
	return c
}

// treeCursor caches the node path from root to terminal; nodes[n] is
// the node selected at level n, nodes[0] is always the root.
type treeCursor[V any] struct {
	tree  *Tree[V]
	nodes [maxDepth]*node[V]
}

func (c *treeCursor[V]) selectLevelNode(n int, idx uint) bitset.BitSet64 {
	if n == 0 {
		return c.tree.root.mask
	}

	nd := c.tree.childOrEmpty(c.nodes[n-1], idx)
	c.nodes[n] = nd
	return nd.mask
}

func (c *treeCursor[V]) selectLevelNodeUnchecked(n int, idx uint) bitset.BitSet64 {
	if n == 0 {
		return c.tree.root.mask
	}

	nd := c.nodes[n-1].mustChild(idx)
	c.nodes[n] = nd
	return nd.mask
}

func (c *treeCursor[V]) data(idx uint) (*V, bool) {
	term := c.nodes[c.tree.depth-1]
	if term.mask.Test(idx) {
		return &c.tree.values[term.mustDataIndex(idx)], true
	}
	return nil, false
}

func (c *treeCursor[V]) dataUnchecked(idx uint) *V {
	term := c.nodes[c.tree.depth-1]
	return &c.tree.values[term.mustDataIndex(idx)]
}

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"math/rand/v2"
	"testing"

	"github.com/gaissmai/hibit/internal/golden"
)

// checkTreeInvariants walks every reachable node and validates the
// structural invariants of the tree:
//
//   - the dense slot slice length equals the popcount of the mask
//   - internal nodes use kids, terminal nodes use data
//   - no internal node is empty, the root is exempt
//   - terminal data indexes are in bounds and never reference the
//     reserved dummy slot 0
//   - the key stored behind a terminal slot decomposes to exactly the
//     path of that slot
//   - every stored key round-trips through the tree to its own
//     data index
func checkTreeInvariants[V any](t *testing.T, tree *Tree[V]) {
	t.Helper()

	var walk func(n *node[V], lvl int, prefix uint64)
	walk = func(n *node[V], lvl int, prefix uint64) {
		terminal := lvl == tree.depth-1

		if terminal {
			if got, want := len(n.data), n.mask.Size(); got != want {
				t.Fatalf("terminal slot count, got: %d, want popcount: %d", got, want)
			}
			if len(n.kids) != 0 {
				t.Fatalf("terminal node carries children")
			}
		} else {
			if got, want := len(n.kids), n.mask.Size(); got != want {
				t.Fatalf("child count, got: %d, want popcount: %d", got, want)
			}
			if len(n.data) != 0 {
				t.Fatalf("internal node carries data slots")
			}
		}

		if lvl > 0 && n.mask.IsEmpty() {
			t.Fatalf("empty internal node at level %d not collapsed", lvl)
		}

		for _, i := range n.mask.All() {
			path := prefix<<log2Radix | uint64(i)

			if !terminal {
				walk(n.mustChild(i), lvl+1, path)
				continue
			}

			di := n.mustDataIndex(i)
			if di == 0 || int(di) >= len(tree.values) {
				t.Fatalf("data index %d out of bounds [1, %d)", di, len(tree.values))
			}
			if key := tree.keys[di]; key != path {
				t.Fatalf("slot path %#x holds key %#x", path, key)
			}
		}
	}
	walk(tree.root, 0, 0)

	// every stored key reaches its own data index
	for j := 1; j < len(tree.keys); j++ {
		key := tree.keys[j]

		n := tree.root
		for lvl := range tree.depth - 1 {
			i := levelIndex(key, lvl, tree.depth)
			if !n.mask.Test(i) {
				t.Fatalf("key %#x lost its path at level %d", key, lvl)
			}
			n = n.mustChild(i)
		}

		ti := levelIndex(key, tree.depth-1, tree.depth)
		if !n.mask.Test(ti) {
			t.Fatalf("key %#x lost its terminal slot", key)
		}
		if di := n.mustDataIndex(ti); int(di) != j {
			t.Fatalf("key %#x: data index, got: %d, want: %d", key, di, j)
		}
	}

	if len(tree.keys) != len(tree.values) {
		t.Fatalf("keys/values length mismatch: %d != %d", len(tree.keys), len(tree.values))
	}
	if tree.keys[0] != noKey {
		t.Fatalf("dummy slot key overwritten: %#x", tree.keys[0])
	}
}

func TestInvariantsAfterInserts(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	for _, depth := range []int{1, 2, 3, 4} {
		// stay well below the key range of shallow trees
		n := int(min(2_000, maxKey(depth)/2))

		tree := New[int](depth)
		for i, key := range golden.RandomKeys(prng, n, maxKey(depth)) {
			tree.Insert(key, i)
		}
		checkTreeInvariants(t, tree)
	}
}

func TestInvariantsInsertRemoveChurn(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	const depth = 3
	tree := New[int](depth)
	gold := golden.GoldMap[int]{}

	// interleave inserts and removes, re-check the structure
	// after every batch
	for round := range 20 {
		for range 500 {
			key := prng.Uint64N(maxKey(depth))
			if prng.IntN(3) == 0 {
				tree.Remove(key)
				gold.Delete(key)
			} else {
				tree.Insert(key, round)
				gold.Insert(key, round)
			}
		}

		checkTreeInvariants(t, tree)

		if tree.Len() != gold.Len() {
			t.Fatalf("round %d: Len, got: %d, want: %d", round, tree.Len(), gold.Len())
		}
	}

	// drain the tree completely, the structure must collapse to the
	// bare root
	for _, key := range gold.AllSorted() {
		if _, ok := tree.Remove(key); !ok {
			t.Fatalf("drain: Remove(%d) missed", key)
		}
	}

	checkTreeInvariants(t, tree)

	if tree.Len() != 0 {
		t.Fatalf("Len after drain, got: %d, want: 0", tree.Len())
	}
	if !tree.root.mask.IsEmpty() {
		t.Fatalf("root not empty after drain")
	}
}

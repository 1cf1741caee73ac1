// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package golden provides a simple and slow reference map
// and random key helpers for testing the hibit tree.
package golden

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// GoldMap is a simple and slow integer keyed map, implemented as a
// slice of key-value items as a golden reference for hibit.
type GoldMap[V any] []GoldMapItem[V]

type GoldMapItem[V any] struct {
	Key uint64
	Val V
}

func (g GoldMapItem[V]) String() string {
	return fmt.Sprintf("(%d, %v)", g.Key, g.Val)
}

func (m *GoldMap[V]) Insert(key uint64, val V) {
	for i, item := range *m {
		if item.Key == key {
			(*m)[i].Val = val // de-dupe
			return
		}
	}
	*m = append(*m, GoldMapItem[V]{key, val})
}

func (m *GoldMap[V]) Delete(key uint64) (exists bool) {
	for i, item := range *m {
		if item.Key == key {
			*m = slices.Delete(*m, i, i+1)
			return true
		}
	}
	return false
}

func (m GoldMap[V]) Get(key uint64) (val V, ok bool) {
	for _, item := range m {
		if item.Key == key {
			return item.Val, true
		}
	}
	return
}

func (m GoldMap[V]) Len() int {
	return len(m)
}

// AllSorted returns the keys in ascending order.
func (m GoldMap[V]) AllSorted() []uint64 {
	result := make([]uint64, 0, len(m))
	for _, item := range m {
		result = append(result, item.Key)
	}
	slices.Sort(result)
	return result
}

// RandomKeys returns n distinct randomly generated keys below limit.
func RandomKeys(prng *rand.Rand, n int, limit uint64) []uint64 {
	set := make(map[uint64]struct{}, n)
	keys := make([]uint64, 0, n)

	for len(set) < n {
		key := prng.Uint64N(limit)
		if _, ok := set[key]; !ok {
			set[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// RandomClusteredKeys returns n distinct keys below limit, drawn from
// a small number of dense clusters. The tree is designed for
// sparse-but-clustered key spaces, so tests should exercise that shape
// too, not only uniform noise.
func RandomClusteredKeys(prng *rand.Rand, n int, limit uint64) []uint64 {
	clusters := max(1, n/64)

	set := make(map[uint64]struct{}, n)
	keys := make([]uint64, 0, n)

	for len(set) < n {
		base := prng.Uint64N(uint64(clusters)) * (limit / uint64(clusters))
		key := base + prng.Uint64N(128)
		if key >= limit {
			continue
		}
		if _, ok := set[key]; !ok {
			set[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitset

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestZeroValue(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("a zero value bitset must not panic: %v", r)
		}
	}()

	var b BitSet64

	b = 0
	b.Test(42)

	b = 0
	b.MustClear(42)

	b = 0
	b.Size()

	b = 0
	b.Rank0(42)

	b = 0
	b.FirstSet()

	b = 0
	b.NextSet(0)

	b = 0
	b.AsSlice(make([]uint, 0, 64))

	b = 0
	b.All()

	b = 0
	_ = b.Union(0)

	b = 0
	_ = b.Intersection(0)

	q := b.Queue()
	q.Pop()
}

func TestTest(t *testing.T) {
	t.Parallel()
	var b BitSet64
	b.MustSet(42)
	if !b.Test(42) {
		t.Errorf("Test(42) is false")
	}
	if b.Test(41) {
		t.Errorf("Test(41) is true")
	}
	if b.Test(63) {
		t.Errorf("Test(63) is true")
	}
}

func TestSetClear(t *testing.T) {
	t.Parallel()
	var b BitSet64
	for i := range uint(64) {
		b.MustSet(i)
		if !b.Test(i) {
			t.Errorf("Test(%d) after MustSet is false", i)
		}
		b.MustClear(i)
		if b.Test(i) {
			t.Errorf("Test(%d) after MustClear is true", i)
		}
	}
	if !b.IsEmpty() {
		t.Errorf("IsEmpty after clearing all bits is false")
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	var b BitSet64
	b.MustSet(0)
	b.MustSet(42)
	b.MustSet(63)

	want := "[0 42 63]"
	got := b.String()
	if got != want {
		t.Errorf("String, got: %q, want: %q", got, want)
	}
}

func TestFirstSet(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		bits    []uint
		wantBit uint
		wantOK  bool
	}{
		{bits: nil, wantBit: 0, wantOK: false},
		{bits: []uint{0}, wantBit: 0, wantOK: true},
		{bits: []uint{5, 7}, wantBit: 5, wantOK: true},
		{bits: []uint{63}, wantBit: 63, wantOK: true},
	}

	for _, tc := range testCases {
		var b BitSet64
		for _, bit := range tc.bits {
			b.MustSet(bit)
		}
		gotBit, gotOK := b.FirstSet()
		if gotBit != tc.wantBit || gotOK != tc.wantOK {
			t.Errorf("FirstSet of %v, got: (%d, %v), want: (%d, %v)",
				tc.bits, gotBit, gotOK, tc.wantBit, tc.wantOK)
		}
	}
}

func TestNextSet(t *testing.T) {
	t.Parallel()
	var b BitSet64
	b.MustSet(3)
	b.MustSet(17)
	b.MustSet(63)

	testCases := []struct {
		start   uint
		wantBit uint
		wantOK  bool
	}{
		{start: 0, wantBit: 3, wantOK: true},
		{start: 3, wantBit: 3, wantOK: true},
		{start: 4, wantBit: 17, wantOK: true},
		{start: 18, wantBit: 63, wantOK: true},
		{start: 63, wantBit: 63, wantOK: true},
		{start: 64, wantBit: 0, wantOK: false},
	}

	for _, tc := range testCases {
		gotBit, gotOK := b.NextSet(tc.start)
		if gotBit != tc.wantBit || gotOK != tc.wantOK {
			t.Errorf("NextSet(%d), got: (%d, %v), want: (%d, %v)",
				tc.start, gotBit, gotOK, tc.wantBit, tc.wantOK)
		}
	}
}

func TestRank0(t *testing.T) {
	t.Parallel()
	var b BitSet64
	b.MustSet(0)
	b.MustSet(5)
	b.MustSet(33)
	b.MustSet(63)

	testCases := []struct {
		idx  uint
		want int
	}{
		{idx: 0, want: 0},
		{idx: 5, want: 1},
		{idx: 33, want: 2},
		{idx: 63, want: 3},
	}

	for _, tc := range testCases {
		if got := b.Rank0(tc.idx); got != tc.want {
			t.Errorf("Rank0(%d), got: %d, want: %d", tc.idx, got, tc.want)
		}
	}
}

func TestRank0Random(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	for range 10_000 {
		b := BitSet64(prng.Uint64())

		// reference: count the set bits below idx by looping
		for _, idx := range b.All() {
			var want int
			for bit := uint(0); bit < idx; bit++ {
				if b.Test(bit) {
					want++
				}
			}
			if got := b.Rank0(idx); got != want {
				t.Fatalf("Rank0(%d) of %#x, got: %d, want: %d", idx, uint64(b), got, want)
			}
		}
	}
}

func TestAsSliceAll(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	var buf [64]uint
	for range 10_000 {
		b := BitSet64(prng.Uint64())

		var want []uint
		for bit := uint(0); bit < 64; bit++ {
			if b.Test(bit) {
				want = append(want, bit)
			}
		}

		got := b.AsSlice(buf[:0])
		if !slices.Equal(got, want) {
			t.Fatalf("AsSlice of %#x, got: %v, want: %v", uint64(b), got, want)
		}
		if !slices.Equal(b.All(), want) {
			t.Fatalf("All of %#x, got: %v, want: %v", uint64(b), b.All(), want)
		}
		if b.Size() != len(want) {
			t.Fatalf("Size of %#x, got: %d, want: %d", uint64(b), b.Size(), len(want))
		}
	}
}

func TestIntersectionUnion(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	for range 10_000 {
		b := BitSet64(prng.Uint64())
		c := BitSet64(prng.Uint64())

		if got, want := b.Intersection(c), b&c; got != want {
			t.Fatalf("Intersection, got: %#x, want: %#x", uint64(got), uint64(want))
		}
		if got, want := b.Union(c), b|c; got != want {
			t.Fatalf("Union, got: %#x, want: %#x", uint64(got), uint64(want))
		}
	}
}

func TestBitQueue(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	for range 10_000 {
		b := BitSet64(prng.Uint64())

		q := b.Queue()
		var got []uint
		for {
			bit, ok := q.Pop()
			if !ok {
				break
			}
			got = append(got, bit)
		}

		// popping order is ascending bit order
		if !slices.Equal(got, b.All()) {
			t.Fatalf("BitQueue of %#x, got: %v, want: %v", uint64(b), got, b.All())
		}
		if !q.IsEmpty() {
			t.Fatalf("BitQueue not empty after draining")
		}
	}
}

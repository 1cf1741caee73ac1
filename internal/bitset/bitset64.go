// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package bitset implements a fixed size bitset of one machine word,
// the occupancy mask of a hierarchical bitmap tree node.
//
// Studied [github.com/bits-and-blooms/bitset] inside out
// and rewrote needed parts from scratch for this project.
//
// This implementation is heavily optimized for this internal use case.
package bitset

import (
	"fmt"
	"math/bits"
)

// BitSet64 represents a fixed size bitset from [0..63].
//
// The whole mask fits in a single register, so child selection in a
// node is one popcount over the masked low bits.
type BitSet64 uint64

func (b BitSet64) String() string {
	return fmt.Sprint(b.All())
}

// MustSet sets the bit, without range check, bit must be < 64.
func (b *BitSet64) MustSet(bit uint) {
	*b |= 1 << (bit & 63)
}

// MustClear clears the bit, without range check, bit must be < 64.
func (b *BitSet64) MustClear(bit uint) {
	*b &^= 1 << (bit & 63)
}

// Test if the bit is set.
func (b BitSet64) Test(bit uint) bool {
	return b&(1<<(bit&63)) != 0 // [bit&63] saves the bounds check
}

// FirstSet returns the first bit set along with an ok code.
func (b BitSet64) FirstSet() (first uint, ok bool) {
	if x := bits.TrailingZeros64(uint64(b)); x != 64 {
		return uint(x), true
	}
	return
}

// NextSet returns the next bit set from the specified start bit,
// including possibly the current bit along with an ok code.
func (b BitSet64) NextSet(bit uint) (uint, bool) {
	if bit > 63 {
		return 0, false
	}
	if word := uint64(b) >> (bit & 63); word != 0 {
		return bit + uint(bits.TrailingZeros64(word)), true
	}
	return 0, false
}

// Rank0 returns the set bits up to and including idx, minus 1.
//
// If bit idx is set, Rank0(idx) is its position in the dense slot
// slice of a node. The bounds check is eliminated, idx must be < 64.
func (b BitSet64) Rank0(idx uint) int {
	return bits.OnesCount64(uint64(b)<<(63-idx&63)) - 1
}

// IsEmpty returns true if no bit is set.
func (b BitSet64) IsEmpty() bool {
	return b == 0
}

// Intersection computes the intersection of base set with the compare set.
// This is the BitSet equivalent of & (and).
func (b BitSet64) Intersection(c BitSet64) BitSet64 {
	return b & c
}

// Union creates the union of base set with compare set.
// This is the BitSet equivalent of | (or).
func (b BitSet64) Union(c BitSet64) BitSet64 {
	return b | c
}

// AsSlice returns all set bits as slice of uint without
// heap allocations.
//
// This is faster than All, but also more dangerous,
// it panics if the capacity of buf is < b.Size()
func (b BitSet64) AsSlice(buf []uint) []uint {
	buf = buf[:cap(buf)] // use cap as max len

	size := 0
	for word := uint64(b); word != 0; size++ {
		// panics if capacity of buf is exceeded.
		buf[size] = uint(bits.TrailingZeros64(word))

		// clear the rightmost set bit
		word &= word - 1
	}

	buf = buf[:size]
	return buf
}

// All returns all set bits. This has a simpler API but is slower than AsSlice.
func (b BitSet64) All() []uint {
	return b.AsSlice(make([]uint, 0, 64))
}

// Size is the number of set bits (popcount).
func (b BitSet64) Size() int {
	return bits.OnesCount64(uint64(b))
}

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hibit

import (
	"fmt"
	"io"
	"strings"
)

// dumpString is just a wrapper for dump.
func (t *Tree[V]) dumpString() string {
	w := new(strings.Builder)
	if err := t.dump(w); err != nil {
		panic(err)
	}
	return w.String()
}

// dump the tree to w.
// Useful during development and debugging.
//
//	 Output:
//
//		depth: 2 len: 3
//
//		[NODE] depth:  0 path: [] len: 2
//		kids(#2): [0 3]
//
//		.[LEAF] depth:  1 path: [0] len: 2
//		.slots(#2): [10 15]
//		.key/val: (10, 10) (15, 15)
//
//		.[LEAF] depth:  1 path: [3] len: 1
//		.slots(#1): [8]
//		.key/val: (200, 200)
func (t *Tree[V]) dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "depth: %d len: %d\n", t.depth, t.Len()); err != nil {
		return err
	}
	t.dumpRec(w, t.root, nil)
	return nil
}

// dumpRec, rec-descent the tree.
func (t *Tree[V]) dumpRec(w io.Writer, n *node[V], path []uint) {
	t.dumpNode(w, n, path)

	if len(path) == t.depth-1 {
		return
	}

	var buf [radix]uint
	for _, i := range n.mask.AsSlice(buf[:0]) {
		t.dumpRec(w, n.mustChild(i), append(path, i))
	}
}

// dumpNode dumps the node to w.
func (t *Tree[V]) dumpNode(w io.Writer, n *node[V], path []uint) {
	must := func(_ int, err error) {
		if err != nil {
			panic(err)
		}
	}

	depth := len(path)
	indent := strings.Repeat(".", depth)

	kind := "NODE"
	if depth == t.depth-1 {
		kind = "LEAF"
	}

	must(fmt.Fprintf(w, "\n%s[%s] depth:  %d path: %v len: %d\n",
		indent, kind, depth, path, n.mask.Size()))

	var buf [radix]uint
	bits := n.mask.AsSlice(buf[:0])

	if depth < t.depth-1 {
		must(fmt.Fprintf(w, "%skids(#%d): %v\n", indent, len(bits), bits))
		return
	}

	must(fmt.Fprintf(w, "%sslots(#%d): %v\n", indent, len(bits), bits))

	must(fmt.Fprintf(w, "%skey/val:", indent))
	for _, i := range bits {
		di := n.mustDataIndex(i)
		must(fmt.Fprintf(w, " (%d, %v)", t.keys[di], t.values[di]))
	}
	must(fmt.Fprintf(w, "\n"))
}

// Copyright 2024 The gccl Authors
// This file is part of gccl.
//
// gccl is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gccl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gccl. If not, see <http://www.gnu.org/licenses/>.

// Package suffixtree is the Ukkonen suffix tree (C12): an implicit suffix
// tree over a single text, built in O(n) with suffix links and the
// skip/count trick, answering substring membership queries.
package suffixtree

import (
	"io"

	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/serialize"
)

// NotFound is returned by Find when w does not occur in the built text.
const NotFound = -1

// terminator is the internal, caller-forbidden byte appended once to the
// text so every suffix ends at a leaf (§4.12, open question (c)).
const terminator = 0

// Text is a byte view guaranteed not to contain the internal terminator,
// encoding the precondition in the type rather than leaving it implicit.
type Text []byte

// NewText validates s and wraps it as a Text.
func NewText(s []byte) (Text, error) {
	for _, b := range s {
		if b == terminator {
			return nil, errs.Raise(errs.Site("Text", "NewText"), errs.BadArg, nil)
		}
	}
	out := make([]byte, len(s))
	copy(out, s)
	return Text(out), nil
}

type node struct {
	start        int
	end          *int
	sons         *node
	leftSibling  *node
	rightSibling *node
	father       *node
	suffixLink   *node
	pathPosition int // -1 for internal nodes
}

func (n *node) edgeLength() int { return *n.end - n.start + 1 }

// Tree is the suffix tree of §4.12, built over a single text.
type Tree struct {
	container.Header

	text []byte // original text plus the internal terminator
	n    int    // len(text), including terminator

	root *node

	// shared end index of every leaf edge: each leaf's end points here, so
	// after Build it stays at the last text index and edge lengths read it;
	// construction never resumes after Build returns.
	globalEnd int

	built bool
}

func site(fn string) string { return errs.Site("Tree", fn) }

// New constructs an empty, unbuilt suffix tree.
func New() *Tree {
	return &Tree{Header: container.NewHeader(nil)}
}

func newLeaf(start int, end *int, pathPos int) *node {
	return &node{start: start, end: end, pathPosition: pathPos}
}

func newInternal(start, end int) *node {
	e := end
	return &node{start: start, end: &e, pathPosition: -1}
}

// addChild prepends child to parent's son list.
func addChild(parent, child *node) {
	child.father = parent
	child.leftSibling = nil
	child.rightSibling = parent.sons
	if parent.sons != nil {
		parent.sons.leftSibling = child
	}
	parent.sons = child
}

// findChild walks the sibling list for the child whose edge starts with b.
func (t *Tree) findChild(parent *node, b byte) *node {
	for c := parent.sons; c != nil; c = c.rightSibling {
		if t.text[c.start] == b {
			return c
		}
	}
	return nil
}

// replaceChild swaps oldChild for newChild in parent's son list, preserving
// position (used when an edge is split).
func replaceChild(parent, oldChild, newChild *node) {
	newChild.father = parent
	newChild.leftSibling = oldChild.leftSibling
	newChild.rightSibling = oldChild.rightSibling
	if oldChild.leftSibling != nil {
		oldChild.leftSibling.rightSibling = newChild
	} else {
		parent.sons = newChild
	}
	if oldChild.rightSibling != nil {
		oldChild.rightSibling.leftSibling = newChild
	}
}

type activePoint struct {
	node   *node
	edge   int
	length int
}

// Build runs Ukkonen's algorithm over s, appending the internal terminator.
// Construction only fails on allocation failure, in which case the
// partially built tree is finalized (§4.12's failure model); since this
// implementation allocates nodes with the language's native allocator,
// that failure mode does not arise in practice.
func (t *Tree) Build(s Text) error {
	if err := t.CheckWritable(site("Build")); err != nil {
		return err
	}
	t.text = append(append([]byte{}, s...), terminator)
	t.n = len(t.text)
	rootEnd := -1
	t.root = &node{start: -1, end: &rootEnd, pathPosition: -1}
	t.root.father = nil

	ap := activePoint{node: t.root, edge: -1, length: 0}
	remainder := 0
	var lastNewNode *node

	t.globalEnd = -1
	for pos := 0; pos < t.n; pos++ {
		t.globalEnd = pos
		remainder++
		lastNewNode = nil

		for remainder > 0 {
			if ap.length == 0 {
				ap.edge = pos
			}
			c := t.findChild(ap.node, t.text[ap.edge])
			if c == nil {
				leaf := newLeaf(pos, &t.globalEnd, pos-remainder+1)
				addChild(ap.node, leaf)
				if lastNewNode != nil {
					lastNewNode.suffixLink = ap.node
					lastNewNode = nil
				}
			} else {
				if t.walkDown(c, &ap) {
					continue
				}
				if t.text[c.start+ap.length] == t.text[pos] {
					if lastNewNode != nil && ap.node != t.root {
						lastNewNode.suffixLink = ap.node
						lastNewNode = nil
					}
					ap.length++
					break
				}
				splitEnd := c.start + ap.length - 1
				split := newInternal(c.start, splitEnd)
				replaceChild(ap.node, c, split)

				leaf := newLeaf(pos, &t.globalEnd, pos-remainder+1)
				addChild(split, leaf)

				c.start += ap.length
				addChild(split, c)

				if lastNewNode != nil {
					lastNewNode.suffixLink = split
				}
				lastNewNode = split
			}

			remainder--
			if ap.node == t.root && ap.length > 0 {
				ap.length--
				ap.edge = pos - remainder + 1
			} else if ap.node != t.root {
				ap.node = ap.node.suffixLink
				if ap.node == nil {
					ap.node = t.root
				}
			}
		}
	}

	t.built = true
	t.Bump()
	return nil
}

// walkDown applies the skip/count trick: if the active length already
// reaches past c's edge, hop onto c and consume its length in O(1) rather
// than character by character.
func (t *Tree) walkDown(c *node, ap *activePoint) bool {
	if ap.length >= c.edgeLength() {
		ap.edge += c.edgeLength()
		ap.length -= c.edgeLength()
		ap.node = c
		return true
	}
	return false
}

// Find returns the first text index at which w occurs as a substring, or
// NotFound. An empty w matches at 0.
func (t *Tree) Find(w []byte) int {
	if len(w) == 0 {
		return 0
	}
	cur := t.root
	idx := 0
	for idx < len(w) {
		c := t.findChild(cur, w[idx])
		if c == nil {
			return NotFound
		}
		p := c.start - idx
		edgeLen := c.edgeLength()
		matchLen := edgeLen
		if rem := len(w) - idx; rem < matchLen {
			matchLen = rem
		}
		for k := 0; k < matchLen; k++ {
			if t.text[c.start+k] != w[idx+k] {
				return NotFound
			}
		}
		idx += matchLen
		if idx == len(w) {
			return p
		}
		cur = c
	}
	return NotFound
}

// Contains reports whether w occurs as a substring of the built text.
func (t *Tree) Contains(w []byte) bool { return t.Find(w) != NotFound }

// Clear discards the tree, leaving it unbuilt.
func (t *Tree) Clear() error {
	if err := t.CheckWritable(site("Clear")); err != nil {
		return err
	}
	t.root = nil
	t.text = nil
	t.n = 0
	t.built = false
	t.Bump()
	return nil
}

// Finalize releases the tree's storage.
func (t *Tree) Finalize() { _ = t.Clear() }

// Save writes the underlying text through the C14 framing; the tree
// itself is reconstructed from it on Load since it is fully determined by
// the text.
func (t *Tree) Save(w io.Writer) error {
	raw := t.text
	if t.built {
		raw = t.text[:len(t.text)-1] // drop the internal terminator
	}
	header := serialize.Header{Count: uint64(len(raw)), Flags: uint32(t.Flags()), ElementSize: 1}
	i := 0
	return serialize.WriteFrame(w, serialize.KindSuffixTree, header, serialize.WriteFixed[byte], func() (byte, bool) {
		if i >= len(raw) {
			return 0, false
		}
		b := raw[i]
		i++
		return b, true
	})
}

// Load reads the framing written by Save and rebuilds the tree.
func Load(r io.Reader) (*Tree, error) {
	var raw []byte
	_, err := serialize.ReadFrame(r, serialize.KindSuffixTree, serialize.ReadFixed[byte], func(b byte) error {
		raw = append(raw, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	text, err := NewText(raw)
	if err != nil {
		return nil, err
	}
	out := New()
	if err := out.Build(text); err != nil {
		return nil, err
	}
	return out, nil
}

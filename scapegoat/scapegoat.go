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

// Package scapegoat is the scapegoat-rebalanced binary search tree (C11):
// an α-weight-balanced BST rebuilt, on violation, via the Stout–Warren
// tree-to-vine-to-tree flattening.
package scapegoat

import (
	"io"
	"math"
	"math/bits"
	"reflect"

	"golang.org/x/exp/slices"

	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/observer"
	"github.com/jnavia/gccl/serialize"
)

// alpha is the weight-balance constant (§4.11), √2/2.
var alpha = math.Sqrt2 / 2

// invLogAlphaInv is 1/ln(1/alpha), used to evaluate log_{1/alpha}(n).
var invLogAlphaInv = 1 / math.Log(1/alpha)

func hAlpha(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Floor(math.Log(float64(n)) * invLogAlphaInv))
}

// CompareFunc orders elements the tree is keyed by.
type CompareFunc[T any] func(a, b T) int

type bbNode[T any] struct {
	val  T
	up   *bbNode[T]
	down [2]*bbNode[T]
}

func side(c int) int {
	if c < 0 {
		return 0
	}
	return 1
}

// Tree is the scapegoat tree of §4.11.
type Tree[T any] struct {
	container.Header

	root    *bbNode[T]
	count   int
	maxSize int
	compare CompareFunc[T]
}

func site(fn string) string { return errs.Site("Tree", fn) }

// New constructs an empty tree ordered by compare.
func New[T any](compare CompareFunc[T]) *Tree[T] {
	return &Tree[T]{Header: container.NewHeader(nil), compare: compare}
}

// NewWithAllocator pins a to the tree's lifetime.
func NewWithAllocator[T any](compare CompareFunc[T], a alloc.Allocator) *Tree[T] {
	return &Tree[T]{Header: container.NewHeader(a), compare: compare}
}

// Size returns the element count.
func (t *Tree[T]) Size() int { return t.count }

func (t *Tree[T]) notify(ev observer.Event, e1, e2 any) {
	if t.HasObserver() {
		observer.Notify(t, ev, e1, e2)
	}
}

func subtreeSize[T any](n *bbNode[T]) int {
	if n == nil {
		return 0
	}
	return 1 + subtreeSize(n.down[0]) + subtreeSize(n.down[1])
}

// Find returns a pointer to the stored element equal to v, or nil.
func (t *Tree[T]) Find(v T) (*T, bool) {
	n := t.root
	for n != nil {
		c := t.compare(v, n.val)
		if c == 0 {
			return &n.val, true
		}
		n = n.down[side(c)]
	}
	return nil, false
}

// Contains reports whether v is present.
func (t *Tree[T]) Contains(v T) bool {
	_, ok := t.Find(v)
	return ok
}

// insertRaw performs a plain BST insert (duplicates go to the right,
// i.e. are treated as greater-or-equal) and returns the new node and its
// depth (edges from root).
func (t *Tree[T]) insertRaw(v T) (*bbNode[T], int) {
	n := &bbNode[T]{val: v}
	if t.root == nil {
		t.root = n
		return n, 0
	}
	depth := 0
	cur := t.root
	for {
		depth++
		c := t.compare(v, cur.val)
		s := 0
		if c >= 0 {
			s = 1
		}
		if cur.down[s] == nil {
			cur.down[s] = n
			n.up = cur
			return n, depth
		}
		cur = cur.down[s]
	}
}

// Add inserts v (duplicates are kept, placed to the right of equal keys),
// rebalancing via the scapegoat rule if the new leaf's depth exceeds
// h_α(size).
func (t *Tree[T]) Add(v T) error {
	if err := t.CheckWritable(site("Add")); err != nil {
		return err
	}
	n, depth := t.insertRaw(v)
	t.count++
	if t.count > t.maxSize {
		t.maxSize = t.count
	}
	if depth > hAlpha(t.count) {
		t.rebalanceFrom(n)
	}
	t.Bump()
	t.notify(observer.Add, v, nil)
	return nil
}

// Insert is Add's non-duplicating twin: an equal element already present
// leaves the tree unchanged.
func (t *Tree[T]) Insert(v T) (bool, error) {
	if err := t.CheckWritable(site("Insert")); err != nil {
		return false, err
	}
	if t.Contains(v) {
		return false, nil
	}
	return true, t.Add(v)
}

// rebalanceFrom walks up from the newly inserted leaf n, computing
// subtree sizes, until it finds the scapegoat — the ancestor g whose own
// subtree violates the α-weight-balance condition (one of its children
// outweighs α·size(g)) — then rebuilds the subtree rooted at g with
// Stout–Warren, reattaching it at g's former position under g's parent.
func (t *Tree[T]) rebalanceFrom(n *bbNode[T]) {
	childSize := 1
	cur := n
	for cur.up != nil {
		parent := cur.up
		var siblingSize int
		if parent.down[1] == cur {
			siblingSize = subtreeSize(parent.down[0])
		} else {
			siblingSize = subtreeSize(parent.down[1])
		}
		total := childSize + siblingSize + 1
		if float64(childSize) > alpha*float64(total) {
			grandparent := parent.up
			gs := 0
			if grandparent != nil && grandparent.down[1] == parent {
				gs = 1
			}
			t.rebuildSubtree(grandparent, gs)
			return
		}
		childSize = total
		cur = parent
	}
}

// rebuildSubtree flattens and perfectly rebalances the subtree hanging off
// parent's side s; with parent == nil it rebuilds the whole tree from
// t.root and s is ignored. rebuildWhole rebuilds the whole tree without
// going through here.
func (t *Tree[T]) rebuildSubtree(parent *bbNode[T], s int) {
	var root *bbNode[T]
	if parent == nil {
		root = t.root
	} else {
		root = parent.down[s]
	}
	newRoot := stoutWarrenRebuild(root)
	if parent == nil {
		t.root = newRoot
		if newRoot != nil {
			newRoot.up = nil
		}
	} else {
		parent.down[s] = newRoot
		if newRoot != nil {
			newRoot.up = parent
		}
	}
}

// rebuildWhole rebuilds the entire tree, used after Erase drops the count
// below ¾ of the historical max size (§4.11).
func (t *Tree[T]) rebuildWhole() {
	t.root = stoutWarrenRebuild(t.root)
	if t.root != nil {
		t.root.up = nil
	}
	t.maxSize = t.count
}

// stoutWarrenRebuild flattens root into a vine (repeated right rotation
// until it's a singly-right-linked list), then performs leafCount
// compressions followed by halving compressions until the vine collapses
// into a perfectly balanced tree (§4.11).
func stoutWarrenRebuild[T any](root *bbNode[T]) *bbNode[T] {
	if root == nil {
		return nil
	}
	pseudo := &bbNode[T]{}
	pseudo.down[1] = root

	// tree to vine
	tail := pseudo
	rest := tail.down[1]
	for rest != nil {
		if rest.down[0] == nil {
			tail = rest
			rest = rest.down[1]
		} else {
			tmp := rest.down[0]
			rest.down[0] = tmp.down[1]
			tmp.down[1] = rest
			rest = tmp
			tail.down[1] = tmp
		}
	}

	size := 0
	for n := pseudo.down[1]; n != nil; n = n.down[1] {
		size++
	}

	compress := func(count int) {
		scanner := pseudo
		for i := 0; i < count; i++ {
			child := scanner.down[1]
			scanner.down[1] = child.down[1]
			scanner = scanner.down[1]
			child.down[1] = scanner.down[0]
			scanner.down[0] = child
		}
	}

	leafCount := size + 1 - (1 << (bits.Len(uint(size+1)) - 1))
	compress(leafCount)
	remaining := size - leafCount
	for remaining > 1 {
		remaining /= 2
		compress(remaining)
	}

	newRoot := pseudo.down[1]
	fixupParents(newRoot, nil)
	return newRoot
}

func fixupParents[T any](n, parent *bbNode[T]) {
	if n == nil {
		return
	}
	n.up = parent
	fixupParents(n.down[0], n)
	fixupParents(n.down[1], n)
}

// minNode/maxNode find the left/rightmost descendant of n.
func minNode[T any](n *bbNode[T]) *bbNode[T] {
	for n.down[0] != nil {
		n = n.down[0]
	}
	return n
}

// Erase removes the first element equal to v, rebuilding the whole tree
// if the count drops below ¾ of the historical max size.
func (t *Tree[T]) Erase(v T) (bool, error) {
	if err := t.CheckWritable(site("Erase")); err != nil {
		return false, err
	}
	n := t.root
	for n != nil {
		c := t.compare(v, n.val)
		if c == 0 {
			break
		}
		n = n.down[side(c)]
	}
	if n == nil {
		return false, nil
	}
	t.deleteNode(n)
	t.count--
	if t.maxSize > 0 && t.count < (t.maxSize*3)/4 {
		t.rebuildWhole()
	}
	t.Bump()
	t.notify(observer.EraseAt, v, nil)
	return true, nil
}

func (t *Tree[T]) replaceChild(parent, oldChild, newChild *bbNode[T]) {
	if parent == nil {
		t.root = newChild
	} else if parent.down[0] == oldChild {
		parent.down[0] = newChild
	} else {
		parent.down[1] = newChild
	}
	if newChild != nil {
		newChild.up = parent
	}
}

func (t *Tree[T]) deleteNode(n *bbNode[T]) {
	if n.down[0] != nil && n.down[1] != nil {
		succ := minNode(n.down[1])
		n.val = succ.val
		t.deleteNode(succ)
		return
	}
	var child *bbNode[T]
	if n.down[0] != nil {
		child = n.down[0]
	} else {
		child = n.down[1]
	}
	t.replaceChild(n.up, n, child)
}

// Clear empties the tree.
func (t *Tree[T]) Clear() error {
	if err := t.CheckWritable(site("Clear")); err != nil {
		return err
	}
	t.root = nil
	t.count = 0
	t.maxSize = 0
	t.Bump()
	t.notify(observer.Clear, nil, nil)
	return nil
}

// Finalize releases the tree's storage.
func (t *Tree[T]) Finalize() {
	_ = t.Clear()
	t.notify(observer.Finalize, nil, nil)
}

// Apply walks the tree in-order, calling fn on a pointer to each element;
// fn returning false stops the walk early.
func (t *Tree[T]) Apply(fn func(*T) bool) {
	var walk func(n *bbNode[T]) bool
	walk = func(n *bbNode[T]) bool {
		if n == nil {
			return true
		}
		if !walk(n.down[0]) {
			return false
		}
		if !fn(&n.val) {
			return false
		}
		return walk(n.down[1])
	}
	walk(t.root)
}

// Each walks the tree in-order by value.
func (t *Tree[T]) Each(fn func(T) bool) {
	t.Apply(func(p *T) bool { return fn(*p) })
}

// Copy returns an independent deep copy built by in-order insertion.
func (t *Tree[T]) Copy() *Tree[T] {
	out := NewWithAllocator[T](t.compare, t.Allocator)
	t.Each(func(v T) bool {
		_ = out.Add(v)
		return true
	})
	return out
}

// Equal compares two trees element-wise in sorted (in-order) order.
func (t *Tree[T]) Equal(other *Tree[T]) bool {
	if t.count != other.count {
		return false
	}
	var a, b []T
	t.Each(func(v T) bool { a = append(a, v); return true })
	other.Each(func(v T) bool { b = append(b, v); return true })
	return slices.EqualFunc(a, b, func(x, y T) bool { return t.compare(x, y) == 0 })
}

func elementSize(v any) int {
	return int(reflect.TypeOf(v).Size())
}

// Save writes the tree through the C14 framing, in-order.
func (t *Tree[T]) Save(w io.Writer, saveFn serialize.SaveFn[T]) error {
	if saveFn == nil {
		saveFn = serialize.WriteFixed[T]
	}
	var zero T
	header := serialize.Header{Count: uint64(t.count), Flags: uint32(t.Flags()), ElementSize: uint32(elementSize(zero))}
	var pending []T
	t.Each(func(v T) bool { pending = append(pending, v); return true })
	i := 0
	return serialize.WriteFrame(w, serialize.KindScapegoat, header, saveFn, func() (T, bool) {
		if i >= len(pending) {
			var z T
			return z, false
		}
		v := pending[i]
		i++
		return v, true
	})
}

// Load constructs a new tree from the C14 framing, inserting elements in
// their saved (sorted) order.
func Load[T any](r io.Reader, compare CompareFunc[T], readFn serialize.ReadFn[T]) (*Tree[T], error) {
	if readFn == nil {
		readFn = serialize.ReadFixed[T]
	}
	out := New[T](compare)
	_, err := serialize.ReadFrame(r, serialize.KindScapegoat, readFn, func(v T) error {
		return out.Add(v)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MaxLeafDepth returns the deepest leaf's distance from the root, the
// quantity §8.1 invariant 10 bounds at h_α(size)+1.
func (t *Tree[T]) MaxLeafDepth() int {
	var walk func(n *bbNode[T], depth int) int
	walk = func(n *bbNode[T], depth int) int {
		if n == nil {
			return depth - 1
		}
		l := walk(n.down[0], depth+1)
		r := walk(n.down[1], depth+1)
		if l > r {
			return l
		}
		return r
	}
	if t.root == nil {
		return -1
	}
	return walk(t.root, 0)
}

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

// Package pq is the priority queue (C10): a Fibonacci heap giving
// amortized O(1) insert/front/union and O(log n) extract-min, with
// O(1)-amortized decrease-key via cut/cascade-cut.
package pq

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/observer"
	"github.com/jnavia/gccl/serialize"
)

// Priority clamp sentinels (§4.10): PriorityMin < 0 < PriorityMax.
const (
	PriorityMin int64 = -(1 << 62)
	PriorityMax int64 = (1 << 62) - 1
)

func clamp(key int64) int64 {
	if key < PriorityMin {
		return PriorityMin
	}
	if key > PriorityMax {
		return PriorityMax
	}
	return key
}

type node[T any] struct {
	key          int64
	val          T
	parent       *node[T]
	child        *node[T]
	left, right  *node[T] // circular sibling list; self-linked when alone
	degree       int
	marked       bool
}

func newNode[T any](key int64, val T) *node[T] {
	n := &node[T]{key: key, val: val}
	n.left, n.right = n, n
	return n
}

// Handle lets a caller hold on to an inserted element to later
// DecreaseKey it.
type Handle[T any] struct{ n *node[T] }

// PriorityQueue is the Fibonacci-heap-backed min-priority-queue of §4.10.
type PriorityQueue[T any] struct {
	container.Header

	min   *node[T]
	count int
}

// New constructs an empty priority queue.
func New[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{Header: container.NewHeader(nil)}
}

// NewWithAllocator pins a to the queue's lifetime.
func NewWithAllocator[T any](a alloc.Allocator) *PriorityQueue[T] {
	return &PriorityQueue[T]{Header: container.NewHeader(a)}
}

func site(fn string) string { return errs.Site("PriorityQueue", fn) }

// Size returns the element count.
func (pq *PriorityQueue[T]) Size() int { return pq.count }

func (pq *PriorityQueue[T]) notify(ev observer.Event, e1, e2 any) {
	if pq.HasObserver() {
		observer.Notify(pq, ev, e1, e2)
	}
}

// spliceIntoRootList inserts n (a singleton) next to reference r in the
// circular root list (or makes n the sole root if r is nil).
func spliceIntoRootList[T any](r, n *node[T]) *node[T] {
	if r == nil {
		return n
	}
	n.left = r
	n.right = r.right
	r.right.left = n
	r.right = n
	return r
}

func removeFromSiblingList[T any](n *node[T]) {
	n.left.right = n.right
	n.right.left = n.left
	n.left, n.right = n, n
}

// Insert wraps (key, val) in a new root, returning a Handle for later
// DecreaseKey. O(1).
func (pq *PriorityQueue[T]) Insert(key int64, val T) (*Handle[T], error) {
	if err := pq.CheckWritable(site("Insert")); err != nil {
		return nil, err
	}
	key = clamp(key)
	n := newNode[T](key, val)
	pq.min = spliceIntoRootList(pq.min, n)
	if pq.min == n {
		// first node; spliceIntoRootList already made it the anchor
	} else if key < pq.min.key {
		pq.min = n
	}
	pq.count++
	pq.Bump()
	pq.notify(observer.Add, key, val)
	return &Handle[T]{n}, nil
}

// Front peeks the minimum without removing it.
func (pq *PriorityQueue[T]) Front() (T, int64, error) {
	var zero T
	if pq.min == nil {
		return zero, 0, pq.Header.Report(site("Front"), errs.NotEmpty)
	}
	return pq.min.val, pq.min.key, nil
}

// Pop extracts and returns the minimum, consolidating the root list
// afterwards. O(log n) amortized.
func (pq *PriorityQueue[T]) Pop() (T, int64, error) {
	var zero T
	if err := pq.CheckWritable(site("Pop")); err != nil {
		return zero, 0, err
	}
	if pq.min == nil {
		return zero, 0, pq.Header.Report(site("Pop"), errs.NotEmpty)
	}
	z := pq.min
	// splice z's children into the root list
	if z.child != nil {
		c := z.child
		for {
			next := c.right
			c.parent = nil
			removeFromSiblingList(c)
			pq.min = spliceIntoRootList(pq.min, c)
			if next == z.child {
				break
			}
			c = next
		}
	}
	next := z.right
	empty := next == z && z.child == nil
	removeFromSiblingList(z)
	if empty {
		pq.min = nil
	} else {
		if pq.min == z {
			pq.min = next
		}
		pq.consolidate()
	}
	pq.count--
	pq.Bump()
	pq.notify(observer.Pop, z.key, z.val)
	return z.val, z.key, nil
}

// consolidate links roots of equal degree until every root has a distinct
// degree, using an array of per-degree slots sized ⌈log n⌉+2 (§4.10).
func (pq *PriorityQueue[T]) consolidate() {
	if pq.min == nil {
		return
	}
	maxDeg := bits.Len(uint(pq.count)) + 2
	bucket := make([]*node[T], maxDeg)

	var roots []*node[T]
	start := pq.min
	cur := start
	for {
		roots = append(roots, cur)
		cur = cur.right
		if cur == start {
			break
		}
	}

	for _, w := range roots {
		x := w
		d := x.degree
		for bucket[d] != nil {
			y := bucket[d]
			if y.key < x.key {
				x, y = y, x
			}
			pq.link(y, x)
			bucket[d] = nil
			d++
		}
		bucket[d] = x
	}

	pq.min = nil
	for _, n := range bucket {
		if n == nil {
			continue
		}
		n.left, n.right = n, n
		pq.min = spliceIntoRootList(pq.min, n)
		if n.key < pq.min.key {
			pq.min = n
		}
	}
}

// link makes y a child of x (y.key >= x.key).
func (pq *PriorityQueue[T]) link(y, x *node[T]) {
	removeFromSiblingList(y)
	y.parent = x
	y.marked = false
	if x.child == nil {
		x.child = y
		y.left, y.right = y, y
	} else {
		x.child = spliceIntoRootList(x.child, y)
	}
	x.degree++
}

// DecreaseKey lowers h's key, cutting it into the root list (and cascading
// up through marked ancestors) if it now violates heap order against its
// parent — the cut/cascade-cut mechanism of §4.10.
func (pq *PriorityQueue[T]) DecreaseKey(h *Handle[T], newKey int64) error {
	if err := pq.CheckWritable(site("DecreaseKey")); err != nil {
		return err
	}
	newKey = clamp(newKey)
	n := h.n
	if newKey > n.key {
		return pq.Header.Report(site("DecreaseKey"), errs.BadArg)
	}
	n.key = newKey
	p := n.parent
	if p != nil && n.key < p.key {
		pq.cut(n, p)
		pq.cascadeCut(p)
	}
	if n.key < pq.min.key {
		pq.min = n
	}
	pq.Bump()
	return nil
}

func (pq *PriorityQueue[T]) cut(n, p *node[T]) {
	if p.child == n {
		if n.right == n {
			p.child = nil
		} else {
			p.child = n.right
		}
	}
	removeFromSiblingList(n)
	p.degree--
	n.parent = nil
	n.marked = false
	pq.min = spliceIntoRootList(pq.min, n)
}

func (pq *PriorityQueue[T]) cascadeCut(n *node[T]) {
	p := n.parent
	if p == nil {
		return
	}
	if !n.marked {
		n.marked = true
		return
	}
	pq.cut(n, p)
	pq.cascadeCut(p)
}

// Union concatenates other's root list into pq, picking the smaller
// minimum; pq's allocator wins and other's header is released.
func (pq *PriorityQueue[T]) Union(other *PriorityQueue[T]) error {
	if err := pq.CheckWritable(site("Union")); err != nil {
		return err
	}
	if other.min == nil {
		return nil
	}
	if pq.min == nil {
		pq.min = other.min
	} else {
		a, b := pq.min, other.min
		aNext, bNext := a.right, b.right
		a.right, bNext.left = bNext, a
		b.right, aNext.left = aNext, b
		if other.min.key < pq.min.key {
			pq.min = other.min
		}
	}
	pq.count += other.count
	other.min, other.count = nil, 0
	pq.Bump()
	return nil
}

// Each walks every live node in heap (pre-order, root-list-major) order,
// the "iteration order" Copy/Equal are defined against.
func (pq *PriorityQueue[T]) Each(fn func(key int64, v T) bool) {
	if pq.min == nil {
		return
	}
	var walk func(n *node[T]) bool
	walk = func(n *node[T]) bool {
		start := n
		cur := n
		for {
			if !fn(cur.key, cur.val) {
				return false
			}
			if cur.child != nil {
				if !walk(cur.child) {
					return false
				}
			}
			cur = cur.right
			if cur == start {
				return true
			}
		}
	}
	walk(pq.min)
}

// Copy performs insertion in iteration order, preserving priorities.
func (pq *PriorityQueue[T]) Copy() *PriorityQueue[T] {
	out := NewWithAllocator[T](pq.Allocator)
	pq.Each(func(key int64, v T) bool {
		_, _ = out.Insert(key, v)
		return true
	})
	return out
}

// Equal compares by iteration order and requires identical allocator and
// count (§4.10).
func (pq *PriorityQueue[T]) Equal(other *PriorityQueue[T]) bool {
	if pq.count != other.count || pq.Allocator != other.Allocator {
		return false
	}
	var a, b []int64
	pq.Each(func(k int64, _ T) bool { a = append(a, k); return true })
	other.Each(func(k int64, _ T) bool { b = append(b, k); return true })
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clear empties the queue.
func (pq *PriorityQueue[T]) Clear() error {
	if err := pq.CheckWritable(site("Clear")); err != nil {
		return err
	}
	pq.min = nil
	pq.count = 0
	pq.Bump()
	pq.notify(observer.Clear, nil, nil)
	return nil
}

// Finalize releases the queue's storage.
func (pq *PriorityQueue[T]) Finalize() {
	_ = pq.Clear()
	pq.notify(observer.Finalize, nil, nil)
}

// Save writes the queue through the C14 framing: each element is its
// int64 key followed by the value, in the order Each walks the heap.
func (pq *PriorityQueue[T]) Save(w io.Writer, saveFn serialize.SaveFn[T]) error {
	if saveFn == nil {
		saveFn = serialize.WriteFixed[T]
	}
	type pair struct {
		key int64
		val T
	}
	var pairs []pair
	pq.Each(func(k int64, v T) bool {
		pairs = append(pairs, pair{k, v})
		return true
	})
	idx := 0
	header := serialize.Header{Count: uint64(len(pairs)), Flags: uint32(pq.Flags())}
	return serialize.WriteFrame[pair](w, serialize.KindPQ, header,
		func(w io.Writer, p pair) error {
			if err := binary.Write(w, binary.LittleEndian, p.key); err != nil {
				return err
			}
			return saveFn(w, p.val)
		},
		func() (pair, bool) {
			if idx >= len(pairs) {
				return pair{}, false
			}
			p := pairs[idx]
			idx++
			return p, true
		})
}

// Load constructs a new priority queue from the C14 framing, reinserting
// each element at its saved key.
func Load[T any](r io.Reader, readFn serialize.ReadFn[T]) (*PriorityQueue[T], error) {
	if readFn == nil {
		readFn = serialize.ReadFixed[T]
	}
	out := New[T]()
	type pair struct {
		key int64
		val T
	}
	_, err := serialize.ReadFrame[pair](r, serialize.KindPQ,
		func(r io.Reader) (pair, error) {
			var key int64
			if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
				return pair{}, err
			}
			v, err := readFn(r)
			if err != nil {
				return pair{}, err
			}
			return pair{key, v}, nil
		},
		func(p pair) error {
			_, err := out.Insert(p.key, p.val)
			return err
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

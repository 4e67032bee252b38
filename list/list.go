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

// Package list is the singly-linked list (C8): element-sized nodes backed
// by an optional slab, with sort/reverse/rotate/splice/select and an
// element-handle view for traversal that doesn't need invalidation
// checks.
package list

import (
	"io"
	"reflect"

	"golang.org/x/exp/slices"

	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/bitmask"
	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/observer"
	"github.com/jnavia/gccl/serialize"
)

type node[T any] struct {
	val  T
	next *node[T]
}

// CompareFunc orders two elements the way the list's Sort/IndexOf/Contains
// need: negative if a<b, 0 if equal, positive if a>b.
type CompareFunc[T any] func(a, b T) int

// List is the singly-linked list described in §4.8.
type List[T any] struct {
	container.Header

	first, last *node[T]
	count       int

	compare    CompareFunc[T]
	destructor func(*T)

	heap *alloc.Slab[node[T]]
}

// New constructs an empty list. compare may be nil if the list never needs
// IndexOf/Contains/Sort.
func New[T any](compare CompareFunc[T]) *List[T] {
	return &List[T]{Header: container.NewHeader(nil), compare: compare}
}

// NewWithAllocator is CreateWithAllocator (§4.2): the allocator is pinned
// for the list's lifetime.
func NewWithAllocator[T any](compare CompareFunc[T], a alloc.Allocator) *List[T] {
	return &List[T]{Header: container.NewHeader(a), compare: compare}
}

func site(fn string) string { return errs.Site("List", fn) }

func (l *List[T]) newNode() *node[T] {
	if l.heap != nil {
		return l.heap.NewObject()
	}
	return &node[T]{}
}

func (l *List[T]) freeNode(n *node[T]) {
	if l.destructor != nil {
		l.destructor(&n.val)
	}
	if l.heap != nil {
		l.heap.FreeObject(n)
	}
}

// Size returns the element count.
func (l *List[T]) Size() int { return l.count }

// SetDestructor installs the per-element cleanup invoked on removal/clear.
func (l *List[T]) SetDestructor(fn func(*T)) { l.destructor = fn }

// SetCompareFunction installs (or replaces) the ordering function.
func (l *List[T]) SetCompareFunction(fn CompareFunc[T]) { l.compare = fn }

// SetErrorFunction installs a per-container reporter, overriding the
// process-wide default.
func (l *List[T]) SetErrorFunction(r errs.Reporter) { l.Reporter = r }

// UseHeap enables slab allocation for future nodes; rejected once the list
// already holds elements.
func (l *List[T]) UseHeap(a alloc.Allocator) error {
	if l.count > 0 {
		return l.Header.Report(site("UseHeap"), errs.NotEmpty)
	}
	l.heap = alloc.NewSlab[node[T]](a)
	return nil
}

// UseHeapSized is UseHeap with a caller-chosen slab chunk size, the hook
// config.Config's slab setting threads through (config.SlabChunkSize()).
func (l *List[T]) UseHeapSized(chunkSize int) error {
	if l.count > 0 {
		return l.Header.Report(site("UseHeapSized"), errs.NotEmpty)
	}
	l.heap = alloc.NewSlabSized[node[T]](chunkSize)
	return nil
}

func (l *List[T]) notify(ev observer.Event, e1, e2 any) {
	if l.HasObserver() {
		observer.Notify(l, ev, e1, e2)
	}
}

// Add appends v at the tail in O(1).
func (l *List[T]) Add(v T) (int, error) {
	if err := l.CheckWritable(site("Add")); err != nil {
		return 0, err
	}
	n := l.newNode()
	n.val = v
	if l.last == nil {
		l.first, l.last = n, n
	} else {
		l.last.next = n
		l.last = n
	}
	l.count++
	l.Bump()
	l.notify(observer.Add, v, nil)
	return l.count, nil
}

// PushBack is Add, named for parity with the pop/push pair.
func (l *List[T]) PushBack(v T) (int, error) { return l.Add(v) }

// PushFront prepends v in O(1).
func (l *List[T]) PushFront(v T) (int, error) {
	if err := l.CheckWritable(site("PushFront")); err != nil {
		return 0, err
	}
	n := l.newNode()
	n.val = v
	n.next = l.first
	l.first = n
	if l.last == nil {
		l.last = n
	}
	l.count++
	l.Bump()
	l.notify(observer.Push, v, nil)
	return l.count, nil
}

// PopFront removes and returns the head element.
func (l *List[T]) PopFront() (T, error) {
	var zero T
	if err := l.CheckWritable(site("PopFront")); err != nil {
		return zero, err
	}
	if l.first == nil {
		return zero, l.Header.Report(site("PopFront"), errs.NotEmpty)
	}
	n := l.first
	v := n.val
	l.first = n.next
	if l.first == nil {
		l.last = nil
	}
	l.count--
	destructor := l.destructor
	l.destructor = nil // value is returned to the caller, not destroyed
	l.freeNode(n)
	l.destructor = destructor
	l.Bump()
	l.notify(observer.Pop, v, nil)
	return v, nil
}

// PopBack removes and returns the tail element; O(n) since the list is
// singly linked.
func (l *List[T]) PopBack() (T, error) {
	var zero T
	if err := l.CheckWritable(site("PopBack")); err != nil {
		return zero, err
	}
	if l.last == nil {
		return zero, l.Header.Report(site("PopBack"), errs.NotEmpty)
	}
	v := l.last.val
	if l.first == l.last {
		old := l.destructor
		l.destructor = nil
		l.freeNode(l.first)
		l.destructor = old
		l.first, l.last = nil, nil
	} else {
		prev := l.first
		for prev.next != l.last {
			prev = prev.next
		}
		old := l.destructor
		l.destructor = nil
		l.freeNode(l.last)
		l.destructor = old
		prev.next = nil
		l.last = prev
	}
	l.count--
	l.Bump()
	l.notify(observer.Pop, v, nil)
	return v, nil
}

func (l *List[T]) nodeAt(i int) *node[T] {
	n := l.first
	for ; i > 0 && n != nil; i-- {
		n = n.next
	}
	return n
}

// GetElement returns a pointer to the i-th element, valid until the next
// mutation.
func (l *List[T]) GetElement(i int) (*T, error) {
	if i < 0 || i >= l.count {
		return nil, l.Header.Report(site("GetElement"), errs.Index)
	}
	return &l.nodeAt(i).val, nil
}

// CopyElement copies the i-th element into *out.
func (l *List[T]) CopyElement(i int, out *T) error {
	p, err := l.GetElement(i)
	if err != nil {
		return err
	}
	*out = *p
	return nil
}

// InsertAt inserts v so it becomes element i; i == Size() appends.
func (l *List[T]) InsertAt(i int, v T) error {
	if err := l.CheckWritable(site("InsertAt")); err != nil {
		return err
	}
	if i < 0 || i > l.count {
		return l.Header.Report(site("InsertAt"), errs.Index)
	}
	if i == 0 {
		_, err := l.PushFront(v)
		return err
	}
	if i == l.count {
		_, err := l.Add(v)
		return err
	}
	prev := l.nodeAt(i - 1)
	n := l.newNode()
	n.val = v
	n.next = prev.next
	prev.next = n
	l.count++
	l.Bump()
	l.notify(observer.InsertAt, i, v)
	return nil
}

// EraseAt removes element i.
func (l *List[T]) EraseAt(i int) error {
	if err := l.CheckWritable(site("EraseAt")); err != nil {
		return err
	}
	if i < 0 || i >= l.count {
		return l.Header.Report(site("EraseAt"), errs.Index)
	}
	var doomed *node[T]
	if i == 0 {
		doomed = l.first
		l.first = doomed.next
		if l.first == nil {
			l.last = nil
		}
	} else {
		prev := l.nodeAt(i - 1)
		doomed = prev.next
		prev.next = doomed.next
		if doomed == l.last {
			l.last = prev
		}
	}
	l.freeNode(doomed)
	l.count--
	l.Bump()
	l.notify(observer.EraseAt, i, nil)
	return nil
}

func (l *List[T]) eq(a, b T) bool {
	if l.compare != nil {
		return l.compare(a, b) == 0
	}
	return reflect.DeepEqual(a, b)
}

// Remove deletes the first element equal to v, reporting whether one was
// found.
func (l *List[T]) Remove(v T) (bool, error) {
	if err := l.CheckWritable(site("Remove")); err != nil {
		return false, err
	}
	var prev *node[T]
	for n := l.first; n != nil; n = n.next {
		if l.eq(n.val, v) {
			if prev == nil {
				l.first = n.next
			} else {
				prev.next = n.next
			}
			if n == l.last {
				l.last = prev
			}
			l.freeNode(n)
			l.count--
			l.Bump()
			l.notify(observer.EraseAt, v, nil)
			return true, nil
		}
		prev = n
	}
	return false, nil
}

// RemoveAll deletes every element equal to v, returning the count removed.
func (l *List[T]) RemoveAll(v T) (int, error) {
	if err := l.CheckWritable(site("RemoveAll")); err != nil {
		return 0, err
	}
	removed := 0
	var prev *node[T]
	n := l.first
	for n != nil {
		next := n.next
		if l.eq(n.val, v) {
			if prev == nil {
				l.first = next
			} else {
				prev.next = next
			}
			if n == l.last {
				l.last = prev
			}
			l.freeNode(n)
			l.count--
			removed++
		} else {
			prev = n
		}
		n = next
	}
	if removed > 0 {
		l.Bump()
		l.notify(observer.EraseAt, v, removed)
	}
	return removed, nil
}

// EraseRange removes elements [start,end); end is clamped to Size().
func (l *List[T]) EraseRange(start, end int) error {
	if err := l.CheckWritable(site("EraseRange")); err != nil {
		return err
	}
	if start < 0 || start > l.count {
		return l.Header.Report(site("EraseRange"), errs.Index)
	}
	if end > l.count {
		end = l.count
	}
	if end <= start {
		return nil
	}
	for i := start; i < end; i++ {
		if err := l.EraseAt(start); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceAt overwrites element i with v, running the destructor on the
// outgoing value first.
func (l *List[T]) ReplaceAt(i int, v T) error {
	if err := l.CheckWritable(site("ReplaceAt")); err != nil {
		return err
	}
	if i < 0 || i >= l.count {
		return l.Header.Report(site("ReplaceAt"), errs.Index)
	}
	n := l.nodeAt(i)
	if l.destructor != nil {
		l.destructor(&n.val)
	}
	n.val = v
	l.Bump()
	l.notify(observer.ReplaceAt, i, v)
	return nil
}

// IndexOf returns the index of the first element equal to v, or
// NotFound.
func (l *List[T]) IndexOf(v T) (int, error) {
	i := 0
	for n := l.first; n != nil; n = n.next {
		if l.eq(n.val, v) {
			return i, nil
		}
		i++
	}
	return -1, l.Header.Report(site("IndexOf"), errs.NotFound)
}

// Contains reports whether v appears in the list.
func (l *List[T]) Contains(v T) bool {
	_, err := l.IndexOf(v)
	return err == nil
}

// Sort reorders nodes in place according to compare. Node identities are
// preserved (the node carrying a given value may move, but no node is
// reallocated), mirroring the source's index-vector qsort over node
// pointers.
func (l *List[T]) Sort() error {
	if l.compare == nil {
		return l.Header.Report(site("Sort"), errs.BadArg)
	}
	if l.count < 2 {
		return nil
	}
	nodes := make([]*node[T], 0, l.count)
	for n := l.first; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *node[T]) int { return l.compare(a.val, b.val) })
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].next = nodes[i+1]
	}
	nodes[len(nodes)-1].next = nil
	l.first = nodes[0]
	l.last = nodes[len(nodes)-1]
	l.Bump()
	return nil
}

// Reverse reverses the list in place, O(n).
func (l *List[T]) Reverse() {
	var prev *node[T]
	n := l.first
	l.last = l.first
	for n != nil {
		next := n.next
		n.next = prev
		prev = n
		n = next
	}
	l.first = prev
	if l.count > 0 {
		l.Bump()
	}
}

// RotateLeft moves the first n elements (mod Size()) to the tail.
func (l *List[T]) RotateLeft(n int) {
	if l.count == 0 {
		return
	}
	n = ((n % l.count) + l.count) % l.count
	if n == 0 {
		return
	}
	cut := l.nodeAt(n - 1)
	newFirst := cut.next
	cut.next = nil
	l.last.next = l.first
	l.first = newFirst
	last := newFirst
	for last.next != nil {
		last = last.next
	}
	l.last = last
	l.Bump()
}

// RotateRight moves the last n elements (mod Size()) to the head.
func (l *List[T]) RotateRight(n int) {
	if l.count == 0 {
		return
	}
	n = ((n % l.count) + l.count) % l.count
	if n == 0 {
		return
	}
	l.RotateLeft(l.count - n)
}

// GetRange returns a new list holding a copy of elements [start,end).
func (l *List[T]) GetRange(start, end int) (*List[T], error) {
	if start < 0 || start > l.count || end < start {
		return nil, l.Header.Report(site("GetRange"), errs.Index)
	}
	if end > l.count {
		end = l.count
	}
	out := NewWithAllocator[T](l.compare, l.Allocator)
	n := l.nodeAt(start)
	for i := start; i < end && n != nil; i++ {
		if _, err := out.Add(n.val); err != nil {
			return nil, err
		}
		n = n.next
	}
	return out, nil
}

// InsertIn deep-copies other's elements into this list starting at
// position i.
func (l *List[T]) InsertIn(i int, other *List[T]) error {
	if err := l.CheckWritable(site("InsertIn")); err != nil {
		return err
	}
	if i < 0 || i > l.count {
		return l.Header.Report(site("InsertIn"), errs.Index)
	}
	idx := i
	var err error
	other.Each(func(v T) bool {
		if err = l.InsertAt(idx, v); err != nil {
			return false
		}
		idx++
		return true
	})
	return err
}

// Append moves other's nodes into this list and finalizes other's header.
// Both lists must share element type (enforced by the type system) and
// use the same allocator.
func (l *List[T]) Append(other *List[T]) error {
	if err := l.CheckWritable(site("Append")); err != nil {
		return err
	}
	if other.Allocator != l.Allocator {
		return l.Header.Report(site("Append"), errs.Incompatible)
	}
	if other.count == 0 {
		return nil
	}
	if l.last == nil {
		l.first = other.first
	} else {
		l.last.next = other.first
	}
	l.last = other.last
	l.count += other.count
	other.first, other.last, other.count = nil, nil, 0
	l.Bump()
	l.notify(observer.Append, other, nil)
	return nil
}

// Handle is the element-handle view (§4.8): a traversal cursor that
// doesn't carry invalidation-check overhead, for callers that don't need
// it.
type Handle[T any] struct{ n *node[T] }

// FirstElement returns a handle to the head, or nil if empty.
func (l *List[T]) FirstElement() *Handle[T] {
	if l.first == nil {
		return nil
	}
	return &Handle[T]{l.first}
}

// LastElement returns a handle to the tail, or nil if empty.
func (l *List[T]) LastElement() *Handle[T] {
	if l.last == nil {
		return nil
	}
	return &Handle[T]{l.last}
}

// NextElement returns the handle following h, or nil at the tail.
func (l *List[T]) NextElement(h *Handle[T]) *Handle[T] {
	if h == nil || h.n.next == nil {
		return nil
	}
	return &Handle[T]{h.n.next}
}

// ElementData returns a pointer to h's element.
func (l *List[T]) ElementData(h *Handle[T]) *T { return &h.n.val }

// SetElementData overwrites h's element in place (no destructor call; use
// ReplaceAt for destructor semantics).
func (l *List[T]) SetElementData(h *Handle[T], v T) { h.n.val = v }

// Advance moves *h to the next handle, reporting whether it remains valid.
func (l *List[T]) Advance(h **Handle[T]) bool {
	if *h == nil {
		return false
	}
	nx := l.NextElement(*h)
	*h = nx
	return nx != nil
}

// Skip advances h by n positions, or to nil if the list ends first.
func (l *List[T]) Skip(h *Handle[T], n int) *Handle[T] {
	cur := h
	for i := 0; i < n && cur != nil; i++ {
		cur = l.NextElement(cur)
	}
	return cur
}

// SplitAfter cuts the chain immediately after h's element; the remainder
// becomes a new list and this list's tail becomes h.
func (l *List[T]) SplitAfter(h *Handle[T]) (*List[T], error) {
	if err := l.CheckWritable(site("SplitAfter")); err != nil {
		return nil, err
	}
	if h == nil || h.n == nil {
		return nil, l.Header.Report(site("SplitAfter"), errs.BadArg)
	}
	tailFirst := h.n.next
	if tailFirst == nil {
		return NewWithAllocator[T](l.compare, l.Allocator), nil
	}
	tail := NewWithAllocator[T](l.compare, l.Allocator)
	tail.first = tailFirst
	tail.last = l.last
	n := 0
	for cur := tailFirst; cur != nil; cur = cur.next {
		n++
	}
	tail.count = n
	h.n.next = nil
	l.last = h.n
	l.count -= n
	l.Bump()
	return tail, nil
}

// Select drops every element whose mask bit is clear, in place. mask.Size
// must equal Size().
func (l *List[T]) Select(mask *bitmask.Mask) error {
	if err := l.CheckWritable(site("Select")); err != nil {
		return err
	}
	if mask.Size() != l.count {
		return l.Header.Report(site("Select"), errs.BadMask)
	}
	i := 0
	var prev *node[T]
	n := l.first
	for n != nil {
		next := n.next
		if !mask.Get(i) {
			if prev == nil {
				l.first = next
			} else {
				prev.next = next
			}
			if n == l.last {
				l.last = prev
			}
			l.freeNode(n)
			l.count--
		} else {
			prev = n
		}
		n = next
		i++
	}
	l.Bump()
	return nil
}

// SelectCopy returns a new list holding only the masked-in elements.
func (l *List[T]) SelectCopy(mask *bitmask.Mask) (*List[T], error) {
	if mask.Size() != l.count {
		return nil, l.Header.Report(site("SelectCopy"), errs.BadMask)
	}
	out := NewWithAllocator[T](l.compare, l.Allocator)
	i := 0
	for n := l.first; n != nil; n = n.next {
		if mask.Get(i) {
			if _, err := out.Add(n.val); err != nil {
				return nil, err
			}
		}
		i++
	}
	return out, nil
}

// Each walks every element in order; fn returning false stops the walk.
func (l *List[T]) Each(fn func(T) bool) {
	for n := l.first; n != nil; n = n.next {
		if !fn(n.val) {
			return
		}
	}
}

// Apply invokes fn on a pointer to every element in order, allowing
// in-place mutation without bumping the timestamp per element.
func (l *List[T]) Apply(fn func(*T) bool) {
	for n := l.first; n != nil; n = n.next {
		if !fn(&n.val) {
			return
		}
	}
}

// Clear removes every element, running the destructor (if any) on each.
func (l *List[T]) Clear() error {
	if err := l.CheckWritable(site("Clear")); err != nil {
		return err
	}
	for n := l.first; n != nil; {
		next := n.next
		l.freeNode(n)
		n = next
	}
	l.first, l.last = nil, nil
	l.count = 0
	l.Bump()
	l.notify(observer.Clear, nil, nil)
	return nil
}

// Finalize releases the list's storage, including its slab if UseHeap was
// called. Safe on an already-cleared list.
func (l *List[T]) Finalize() {
	_ = l.Clear()
	if l.heap != nil {
		l.heap.Finalize()
	}
	l.notify(observer.Finalize, nil, nil)
}

// Copy returns an independent deep copy; mutating it never affects l
// (§8.1 invariant 5).
func (l *List[T]) Copy() *List[T] {
	out := NewWithAllocator[T](l.compare, l.Allocator)
	out.destructor = l.destructor
	l.Each(func(v T) bool {
		_, _ = out.Add(v)
		return true
	})
	return out
}

// Equal compares element-wise in order using compare (or reflect.DeepEqual
// if none is set).
func (l *List[T]) Equal(other *List[T]) bool {
	if l.count != other.count {
		return false
	}
	a, b := l.first, other.first
	for a != nil {
		if !l.eq(a.val, b.val) {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

// Save writes the list through the C14 framing.
func (l *List[T]) Save(w io.Writer, saveFn serialize.SaveFn[T]) error {
	if saveFn == nil {
		saveFn = serialize.WriteFixed[T]
	}
	n := l.first
	var zero T
	header := serialize.Header{Count: uint64(l.count), Flags: uint32(l.Flags()), ElementSize: uint32(elementSize(zero))}
	return serialize.WriteFrame(w, serialize.KindList, header, saveFn, func() (T, bool) {
		if n == nil {
			var z T
			return z, false
		}
		v := n.val
		n = n.next
		return v, true
	})
}

// Load constructs a new list from the C14 framing.
func Load[T any](r io.Reader, compare CompareFunc[T], readFn serialize.ReadFn[T]) (*List[T], error) {
	if readFn == nil {
		readFn = serialize.ReadFixed[T]
	}
	out := New[T](compare)
	_, err := serialize.ReadFrame(r, serialize.KindList, readFn, func(v T) error {
		_, err := out.Add(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func elementSize(v any) int {
	return int(reflect.TypeOf(v).Size())
}

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

package scapegoat

import "github.com/jnavia/gccl/errs"

// Iterator walks a Tree in sorted (in-order) order, forward or backward,
// per §4.11's First/Next/Prev/Last requirement.
type Iterator[T any] struct {
	t         *Tree[T]
	cur       *bbNode[T]
	started   bool
	timestamp uint64
	err       error
}

// NewIterator returns a fresh iterator over t.
func (t *Tree[T]) NewIterator() *Iterator[T] {
	return &Iterator[T]{t: t, timestamp: t.Timestamp()}
}

func (it *Iterator[T]) checkFresh(fn string) bool {
	if it.timestamp != it.t.Timestamp() {
		it.err = errs.Raise(errs.Site("TreeIterator", fn), errs.ObjectChanged, nil)
		return false
	}
	return true
}

func successor[T any](n *bbNode[T]) *bbNode[T] {
	if n.down[1] != nil {
		return minNode(n.down[1])
	}
	cur := n
	for cur.up != nil && cur.up.down[1] == cur {
		cur = cur.up
	}
	return cur.up
}

func predecessor[T any](n *bbNode[T]) *bbNode[T] {
	if n.down[0] != nil {
		return maxNode(n.down[0])
	}
	cur := n
	for cur.up != nil && cur.up.down[0] == cur {
		cur = cur.up
	}
	return cur.up
}

func maxNode[T any](n *bbNode[T]) *bbNode[T] {
	for n.down[1] != nil {
		n = n.down[1]
	}
	return n
}

// First positions the iterator at the smallest element.
func (it *Iterator[T]) First() (*T, bool) {
	it.started = true
	if !it.checkFresh("First") {
		return nil, false
	}
	if it.t.root == nil {
		it.cur = nil
		return nil, false
	}
	it.cur = minNode(it.t.root)
	return &it.cur.val, true
}

// Last positions the iterator at the largest element.
func (it *Iterator[T]) Last() (*T, bool) {
	it.started = true
	if !it.checkFresh("Last") {
		return nil, false
	}
	if it.t.root == nil {
		it.cur = nil
		return nil, false
	}
	it.cur = maxNode(it.t.root)
	return &it.cur.val, true
}

// Next advances to the next-larger element.
func (it *Iterator[T]) Next() (*T, bool) {
	if !it.started {
		return it.First()
	}
	if !it.checkFresh("Next") {
		return nil, false
	}
	if it.cur == nil {
		return nil, false
	}
	it.cur = successor(it.cur)
	if it.cur == nil {
		return nil, false
	}
	return &it.cur.val, true
}

// Prev retreats to the next-smaller element.
func (it *Iterator[T]) Prev() (*T, bool) {
	if !it.started {
		return it.Last()
	}
	if !it.checkFresh("Prev") {
		return nil, false
	}
	if it.cur == nil {
		return nil, false
	}
	it.cur = predecessor(it.cur)
	if it.cur == nil {
		return nil, false
	}
	return &it.cur.val, true
}

// Current returns the element at the iterator's position, if any.
func (it *Iterator[T]) Current() (*T, bool) {
	if !it.checkFresh("Current") || it.cur == nil {
		return nil, false
	}
	return &it.cur.val, true
}

// Err reports whether the iterator observed a concurrent structural change.
func (it *Iterator[T]) Err() error { return it.err }

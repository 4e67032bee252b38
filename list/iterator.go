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

package list

import (
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/iterator"
)

// Iterator is the list's cursor (§4.7). It supports First/Next/Current/
// Seek/Position/Replace but not Previous/Last (the source is a forward-
// only singly-linked chain), matching the "unsupported capabilities are
// null vtable entries" rule by simply reporting NotImplemented.
type Iterator[T any] struct {
	l         *List[T]
	cur       *node[T]
	pos       int
	started   bool
	timestamp uint64
	err       error
}

// NewIterator returns a fresh iterator over l, capturing the current
// timestamp.
func (l *List[T]) NewIterator() *Iterator[T] {
	return &Iterator[T]{l: l, timestamp: l.Timestamp()}
}

func (it *Iterator[T]) checkFresh(fn string) error {
	if it.timestamp != it.l.Timestamp() {
		it.err = errs.Raise(errs.Site("ListIterator", fn), errs.ObjectChanged, nil)
		return it.err
	}
	return nil
}

func (it *Iterator[T]) First() (T, bool) {
	var zero T
	if err := it.checkFresh("First"); err != nil {
		return zero, false
	}
	it.cur = it.l.first
	it.pos = 0
	it.started = true
	if it.cur == nil {
		return zero, false
	}
	return it.cur.val, true
}

func (it *Iterator[T]) Next() (T, bool) {
	var zero T
	if err := it.checkFresh("Next"); err != nil {
		return zero, false
	}
	if !it.started {
		return it.First()
	}
	if it.cur == nil {
		return zero, false
	}
	it.cur = it.cur.next
	it.pos++
	if it.cur == nil {
		return zero, false
	}
	return it.cur.val, true
}

func (it *Iterator[T]) Previous() (T, bool) {
	var zero T
	it.err = errs.Raise(errs.Site("ListIterator", "Previous"), errs.NotImplemented, nil)
	return zero, false
}

func (it *Iterator[T]) Current() (T, bool) {
	var zero T
	if err := it.checkFresh("Current"); err != nil {
		return zero, false
	}
	if it.cur == nil {
		return zero, false
	}
	return it.cur.val, true
}

func (it *Iterator[T]) Last() (T, bool) {
	var zero T
	it.err = errs.Raise(errs.Site("ListIterator", "Last"), errs.NotImplemented, nil)
	return zero, false
}

func (it *Iterator[T]) Seek(index int) (T, bool) {
	var zero T
	if err := it.checkFresh("Seek"); err != nil {
		return zero, false
	}
	if index < 0 || index >= it.l.count {
		it.err = errs.Raise(errs.Site("ListIterator", "Seek"), errs.Index, nil)
		return zero, false
	}
	it.cur = it.l.nodeAt(index)
	it.pos = index
	it.started = true
	return it.cur.val, true
}

func (it *Iterator[T]) Position() int { return it.pos }

// Replace overwrites the current slot (deleting it if data is nil), then
// advances in dir, resynchronizing the captured timestamp on success.
func (it *Iterator[T]) Replace(data *T, dir iterator.Direction) error {
	if it.cur == nil {
		return errs.Raise(errs.Site("ListIterator", "Replace"), errs.BadPointer, nil)
	}
	if err := it.checkFresh("Replace"); err != nil {
		return err
	}
	pos := it.pos
	if data == nil {
		if err := it.l.EraseAt(pos); err != nil {
			return err
		}
	} else {
		if err := it.l.ReplaceAt(pos, *data); err != nil {
			return err
		}
	}
	it.timestamp = it.l.Timestamp()
	if data == nil {
		if dir == iterator.Forward {
			if pos < it.l.count {
				it.cur = it.l.nodeAt(pos)
			} else {
				it.cur = nil
			}
		} else if pos > 0 {
			it.pos = pos - 1
			it.cur = it.l.nodeAt(it.pos)
		} else {
			it.cur = nil
		}
	} else if dir == iterator.Forward {
		if pos+1 < it.l.count {
			it.pos = pos + 1
			it.cur = it.l.nodeAt(it.pos)
		} else {
			it.cur = nil
		}
	} else if pos > 0 {
		it.pos = pos - 1
		it.cur = it.l.nodeAt(it.pos)
	} else {
		it.cur = nil
	}
	return nil
}

func (it *Iterator[T]) Err() error { return it.err }

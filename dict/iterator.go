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

package dict

import "github.com/jnavia/gccl/errs"

// KV is what the dictionary iterator yields: a key/value pair. It does not
// implement the generic iterator.Of[T] interface (dictionaries have no
// meaningful Previous/Seek-by-index), just First/Next/Current plus the
// timestamp check every iterator shares.
type KV[V any] struct {
	Key []byte
	Val V
}

// Iterator holds (bucket_index, chain_cursor) (§4.9) and skips empty
// buckets as it advances.
type Iterator[V any] struct {
	d         *Dictionary[V]
	bucket    int
	cur       *entry[V]
	started   bool
	timestamp uint64
	err       error
}

// NewIterator returns a fresh iterator over d.
func (d *Dictionary[V]) NewIterator() *Iterator[V] {
	return &Iterator[V]{d: d, timestamp: d.Timestamp()}
}

func (it *Iterator[V]) checkFresh(fn string) bool {
	if it.timestamp != it.d.Timestamp() {
		it.err = errs.Raise(errs.Site("DictIterator", fn), errs.ObjectChanged, nil)
		return false
	}
	return true
}

func (it *Iterator[V]) First() (KV[V], bool) {
	it.bucket, it.cur, it.started = 0, nil, true
	return it.advanceToNext(true)
}

func (it *Iterator[V]) Next() (KV[V], bool) {
	if !it.started {
		return it.First()
	}
	if it.cur != nil {
		it.cur = it.cur.next
	}
	return it.advanceToNext(false)
}

func (it *Iterator[V]) advanceToNext(fromFirst bool) (KV[V], bool) {
	var zero KV[V]
	if !it.checkFresh("Next") {
		return zero, false
	}
	if fromFirst && len(it.d.buckets) > 0 {
		it.cur = it.d.buckets[0]
	}
	for it.cur == nil {
		it.bucket++
		if it.bucket >= len(it.d.buckets) {
			return zero, false
		}
		it.cur = it.d.buckets[it.bucket]
	}
	return KV[V]{Key: it.cur.key, Val: it.cur.val}, true
}

func (it *Iterator[V]) Current() (KV[V], bool) {
	if !it.checkFresh("Current") {
		var zero KV[V]
		return zero, false
	}
	if it.cur == nil {
		var zero KV[V]
		return zero, false
	}
	return KV[V]{Key: it.cur.key, Val: it.cur.val}, true
}

func (it *Iterator[V]) Err() error { return it.err }

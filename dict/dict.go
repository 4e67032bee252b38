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

// Package dict is the hash dictionary (C9): byte-string keys, times-33
// hashing, chained buckets, and the dual-allocation discipline that keeps
// Add all-or-nothing on a failed allocation.
package dict

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/observer"
	"github.com/jnavia/gccl/serialize"
)

type entry[V any] struct {
	key  []byte
	val  V
	next *entry[V]
}

// Dictionary maps byte-string keys to values of type V (§4.9).
type Dictionary[V any] struct {
	container.Header

	buckets    []*entry[V]
	count      int
	destructor func(*V)
}

func site(fn string) string { return errs.Site("Dictionary", fn) }

// New constructs an empty dictionary whose bucket count is the smallest
// schedule entry ≥ bucketHint.
func New[V any](bucketHint int) *Dictionary[V] {
	return &Dictionary[V]{
		Header:  container.NewHeader(nil),
		buckets: make([]*entry[V], bucketCountFor(bucketHint)),
	}
}

// NewWithAllocator pins a to the dictionary's lifetime.
func NewWithAllocator[V any](bucketHint int, a alloc.Allocator) *Dictionary[V] {
	return &Dictionary[V]{
		Header:  container.NewHeader(a),
		buckets: make([]*entry[V], bucketCountFor(bucketHint)),
	}
}

// SetDestructor installs the per-value cleanup invoked on Erase/Replace/Clear.
func (d *Dictionary[V]) SetDestructor(fn func(*V)) { d.destructor = fn }

// SetErrorFunction installs a per-container reporter.
func (d *Dictionary[V]) SetErrorFunction(r errs.Reporter) { d.Reporter = r }

// Size returns the key count.
func (d *Dictionary[V]) Size() int { return d.count }

// LoadFactor is count / bucket-count, exposed so callers can decide when
// to reconstruct with a larger hint (§4.9: resize is not automatic).
func (d *Dictionary[V]) LoadFactor() float64 {
	return float64(d.count) / float64(len(d.buckets))
}

func (d *Dictionary[V]) bucketIndex(key []byte) int {
	return int(hashBytes(key) % uint32(len(d.buckets)))
}

func (d *Dictionary[V]) find(key []byte) (*entry[V], int) {
	idx := d.bucketIndex(key)
	for e := d.buckets[idx]; e != nil; e = e.next {
		if bytes.Equal(e.key, key) {
			return e, idx
		}
	}
	return nil, idx
}

func (d *Dictionary[V]) notify(ev observer.Event, e1, e2 any) {
	if d.HasObserver() {
		observer.Notify(d, ev, e1, e2)
	}
}

// Add inserts key→value, overwriting in place if key is already present
// (returning 0), or wiring in a freshly allocated entry+key-copy if absent
// (returning 1). The entry and the copied key buffer are both prepared
// before either is linked in, so a failure midway leaves the dictionary
// untouched (§4.9, §7, §9) — in Go the only failure mode left is a
// read-only container, but the gather-then-wire shape is kept regardless.
func (d *Dictionary[V]) Add(key []byte, v V) (int, error) {
	if err := d.CheckWritable(site("Add")); err != nil {
		return 0, err
	}
	if e, _ := d.find(key); e != nil {
		e.val = v
		d.Bump()
		d.notify(observer.Replace, key, v)
		return 0, nil
	}
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	e := &entry[V]{key: keyCopy, val: v}
	idx := d.bucketIndex(key)
	e.next = d.buckets[idx]
	d.buckets[idx] = e
	d.count++
	d.Bump()
	d.notify(observer.Add, key, v)
	return 1, nil
}

// Insert is Add's non-overwriting twin: an existing key leaves the
// dictionary unchanged and returns 0.
func (d *Dictionary[V]) Insert(key []byte, v V) (int, error) {
	if err := d.CheckWritable(site("Insert")); err != nil {
		return 0, err
	}
	if e, _ := d.find(key); e != nil {
		return 0, nil
	}
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	e := &entry[V]{key: keyCopy, val: v}
	idx := d.bucketIndex(key)
	e.next = d.buckets[idx]
	d.buckets[idx] = e
	d.count++
	d.Bump()
	d.notify(observer.Insert, key, v)
	return 1, nil
}

// Replace overwrites an existing key's value, running the destructor on
// the outgoing value; NotFound if key is absent.
func (d *Dictionary[V]) Replace(key []byte, v V) (int, error) {
	if err := d.CheckWritable(site("Replace")); err != nil {
		return 0, err
	}
	e, _ := d.find(key)
	if e == nil {
		return 0, d.Header.Report(site("Replace"), errs.NotFound)
	}
	if d.destructor != nil {
		d.destructor(&e.val)
	}
	e.val = v
	d.Bump()
	d.notify(observer.Replace, key, v)
	return 1, nil
}

// Erase removes key, running the destructor on its value.
func (d *Dictionary[V]) Erase(key []byte) (int, error) {
	if err := d.CheckWritable(site("Erase")); err != nil {
		return 0, err
	}
	idx := d.bucketIndex(key)
	var prev *entry[V]
	for e := d.buckets[idx]; e != nil; e = e.next {
		if bytes.Equal(e.key, key) {
			if prev == nil {
				d.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			if d.destructor != nil {
				d.destructor(&e.val)
			}
			d.count--
			d.Bump()
			d.notify(observer.EraseAt, key, nil)
			return 1, nil
		}
		prev = e
	}
	return 0, d.Header.Report(site("Erase"), errs.NotFound)
}

// Get returns key's value and whether it was present.
func (d *Dictionary[V]) Get(key []byte) (V, bool) {
	e, _ := d.find(key)
	if e == nil {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Contains reports whether key is present.
func (d *Dictionary[V]) Contains(key []byte) bool {
	e, _ := d.find(key)
	return e != nil
}

// Clear removes every entry, running the destructor (if any) on each value.
func (d *Dictionary[V]) Clear() error {
	if err := d.CheckWritable(site("Clear")); err != nil {
		return err
	}
	if d.destructor != nil {
		for _, head := range d.buckets {
			for e := head; e != nil; e = e.next {
				d.destructor(&e.val)
			}
		}
	}
	for i := range d.buckets {
		d.buckets[i] = nil
	}
	d.count = 0
	d.Bump()
	d.notify(observer.Clear, nil, nil)
	return nil
}

// Finalize releases the dictionary's storage. Safe on an already-cleared
// dictionary.
func (d *Dictionary[V]) Finalize() {
	_ = d.Clear()
	d.buckets = nil
	d.notify(observer.Finalize, nil, nil)
}

// Each walks every (key, value) pair; order is bucket-major, chain-minor.
// fn returning false stops the walk.
func (d *Dictionary[V]) Each(fn func(key []byte, v V) bool) {
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, e.val) {
				return
			}
		}
	}
}

// Apply invokes fn on a pointer to every value, allowing in-place mutation.
func (d *Dictionary[V]) Apply(fn func(key []byte, v *V) bool) {
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, &e.val) {
				return
			}
		}
	}
}

// Copy returns an independent deep copy.
func (d *Dictionary[V]) Copy() *Dictionary[V] {
	out := NewWithAllocator[V](len(d.buckets), d.Allocator)
	out.destructor = d.destructor
	d.Each(func(k []byte, v V) bool {
		_, _ = out.Add(k, v)
		return true
	})
	return out
}

// Equal is position-sensitive within buckets (§4.9, flagged in §9 as a
// possibly surprising choice): two dictionaries are equal iff they share
// count, flags, bucket count, element type and every bucket's chain is
// element-wise equal by key and value bytes (compared with
// reflect.DeepEqual on V).
func (d *Dictionary[V]) Equal(other *Dictionary[V]) bool {
	if d.count != other.count || d.Flags() != other.Flags() || len(d.buckets) != len(other.buckets) {
		return false
	}
	for i := range d.buckets {
		a, b := d.buckets[i], other.buckets[i]
		for a != nil && b != nil {
			if !bytes.Equal(a.key, b.key) || !valuesEqual(a.val, b.val) {
				return false
			}
			a, b = a.next, b.next
		}
		if a != nil || b != nil {
			return false
		}
	}
	return true
}

// Save writes the dictionary through the C14 framing: the element_stream is
// two sub-frames, each with its own kind tag and header — a string
// collection of keys, then a value array (§6.1:282), rather than a single
// interleaved element stream (that layout is the hash table's, not the
// dictionary's).
func (d *Dictionary[V]) Save(w io.Writer, saveFn serialize.SaveFn[V]) error {
	if saveFn == nil {
		saveFn = serialize.WriteFixed[V]
	}
	var keys [][]byte
	var vals []V
	d.Each(func(k []byte, v V) bool {
		kc := make([]byte, len(k))
		copy(kc, k)
		keys = append(keys, kc)
		vals = append(vals, v)
		return true
	})
	if _, err := w.Write(serialize.KindDict[:]); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	header := serialize.Header{Count: uint64(len(keys)), Flags: uint32(d.Flags())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	ki := 0
	if err := serialize.WriteFrame[[]byte](w, serialize.KindStringColl,
		serialize.Header{Count: uint64(len(keys))},
		func(w io.Writer, k []byte) error { return serialize.WriteLenPrefixedBytes(w, k) },
		func() ([]byte, bool) {
			if ki >= len(keys) {
				return nil, false
			}
			k := keys[ki]
			ki++
			return k, true
		}); err != nil {
		return err
	}
	vi := 0
	return serialize.WriteFrame[V](w, serialize.KindValueArray,
		serialize.Header{Count: uint64(len(vals))}, saveFn,
		func() (V, bool) {
			if vi >= len(vals) {
				var zero V
				return zero, false
			}
			v := vals[vi]
			vi++
			return v, true
		})
}

// Load constructs a new dictionary from the two-sub-frame C14 layout Save
// writes.
func Load[V any](r io.Reader, bucketHint int, readFn serialize.ReadFn[V]) (*Dictionary[V], error) {
	if readFn == nil {
		readFn = serialize.ReadFixed[V]
	}
	var got [16]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errs.Raise(site("Load"), errs.FileRead, err)
	}
	if serialize.KindTag(got) != serialize.KindDict {
		return nil, errs.Raise(site("Load"), errs.WrongFile, nil)
	}
	var outerHeader serialize.Header
	if err := binary.Read(r, binary.LittleEndian, &outerHeader); err != nil {
		return nil, errs.Raise(site("Load"), errs.FileRead, err)
	}
	var keys [][]byte
	if _, err := serialize.ReadFrame[[]byte](r, serialize.KindStringColl,
		serialize.ReadLenPrefixedBytes,
		func(k []byte) error { keys = append(keys, k); return nil }); err != nil {
		return nil, err
	}
	var vals []V
	if _, err := serialize.ReadFrame[V](r, serialize.KindValueArray, readFn,
		func(v V) error { vals = append(vals, v); return nil }); err != nil {
		return nil, err
	}
	if len(keys) != len(vals) {
		return nil, errs.Raise(site("Load"), errs.Internal, nil)
	}
	out := New[V](bucketHint)
	for i := range keys {
		if _, err := out.Add(keys[i], vals[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

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

import (
	"encoding/binary"
	"io"

	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/observer"
	"github.com/jnavia/gccl/serialize"
)

type wideEntry[V any] struct {
	key  []uint16
	val  V
	next *wideEntry[V]
}

// WideDictionary is the wide-character-key variant of Dictionary (§4.9):
// the macro-restamped typed variant the source generates from the same
// hashtable.c template, keyed by []uint16 code units instead of bytes.
type WideDictionary[V any] struct {
	container.Header

	buckets    []*wideEntry[V]
	count      int
	destructor func(*V)
}

func wideSite(fn string) string { return errs.Site("WideDictionary", fn) }

// NewWide constructs an empty wide dictionary.
func NewWide[V any](bucketHint int) *WideDictionary[V] {
	return &WideDictionary[V]{
		Header:  container.NewHeader(nil),
		buckets: make([]*wideEntry[V], bucketCountFor(bucketHint)),
	}
}

// NewWideWithAllocator pins a to the dictionary's lifetime.
func NewWideWithAllocator[V any](bucketHint int, a alloc.Allocator) *WideDictionary[V] {
	return &WideDictionary[V]{
		Header:  container.NewHeader(a),
		buckets: make([]*wideEntry[V], bucketCountFor(bucketHint)),
	}
}

func (d *WideDictionary[V]) SetDestructor(fn func(*V))         { d.destructor = fn }
func (d *WideDictionary[V]) SetErrorFunction(r errs.Reporter)   { d.Reporter = r }
func (d *WideDictionary[V]) Size() int                          { return d.count }
func (d *WideDictionary[V]) LoadFactor() float64 {
	return float64(d.count) / float64(len(d.buckets))
}

func wideEqual(a, b []uint16) bool {
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

func (d *WideDictionary[V]) bucketIndex(key []uint16) int {
	return int(hashWide(key) % uint32(len(d.buckets)))
}

func (d *WideDictionary[V]) find(key []uint16) *wideEntry[V] {
	idx := d.bucketIndex(key)
	for e := d.buckets[idx]; e != nil; e = e.next {
		if wideEqual(e.key, key) {
			return e
		}
	}
	return nil
}

func (d *WideDictionary[V]) notify(ev observer.Event, e1, e2 any) {
	if d.HasObserver() {
		observer.Notify(d, ev, e1, e2)
	}
}

// Add overwrites in place if key is present (returns 0), otherwise wires
// in a fresh entry and copied key (returns 1).
func (d *WideDictionary[V]) Add(key []uint16, v V) (int, error) {
	if err := d.CheckWritable(wideSite("Add")); err != nil {
		return 0, err
	}
	if e := d.find(key); e != nil {
		e.val = v
		d.Bump()
		d.notify(observer.Replace, key, v)
		return 0, nil
	}
	keyCopy := make([]uint16, len(key))
	copy(keyCopy, key)
	idx := d.bucketIndex(key)
	e := &wideEntry[V]{key: keyCopy, val: v, next: d.buckets[idx]}
	d.buckets[idx] = e
	d.count++
	d.Bump()
	d.notify(observer.Add, key, v)
	return 1, nil
}

// Insert leaves the dictionary unchanged if key is already present.
func (d *WideDictionary[V]) Insert(key []uint16, v V) (int, error) {
	if err := d.CheckWritable(wideSite("Insert")); err != nil {
		return 0, err
	}
	if d.find(key) != nil {
		return 0, nil
	}
	keyCopy := make([]uint16, len(key))
	copy(keyCopy, key)
	idx := d.bucketIndex(key)
	e := &wideEntry[V]{key: keyCopy, val: v, next: d.buckets[idx]}
	d.buckets[idx] = e
	d.count++
	d.Bump()
	d.notify(observer.Insert, key, v)
	return 1, nil
}

// Replace overwrites an existing key's value; NotFound if absent.
func (d *WideDictionary[V]) Replace(key []uint16, v V) (int, error) {
	if err := d.CheckWritable(wideSite("Replace")); err != nil {
		return 0, err
	}
	e := d.find(key)
	if e == nil {
		return 0, d.Header.Report(wideSite("Replace"), errs.NotFound)
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
func (d *WideDictionary[V]) Erase(key []uint16) (int, error) {
	if err := d.CheckWritable(wideSite("Erase")); err != nil {
		return 0, err
	}
	idx := d.bucketIndex(key)
	var prev *wideEntry[V]
	for e := d.buckets[idx]; e != nil; e = e.next {
		if wideEqual(e.key, key) {
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
	return 0, d.Header.Report(wideSite("Erase"), errs.NotFound)
}

// Get returns key's value and whether it was present.
func (d *WideDictionary[V]) Get(key []uint16) (V, bool) {
	e := d.find(key)
	if e == nil {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Contains reports whether key is present.
func (d *WideDictionary[V]) Contains(key []uint16) bool { return d.find(key) != nil }

// Clear removes every entry.
func (d *WideDictionary[V]) Clear() error {
	if err := d.CheckWritable(wideSite("Clear")); err != nil {
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

// Finalize releases the dictionary's storage.
func (d *WideDictionary[V]) Finalize() {
	_ = d.Clear()
	d.buckets = nil
	d.notify(observer.Finalize, nil, nil)
}

// Each walks every (key, value) pair in bucket-major, chain-minor order.
func (d *WideDictionary[V]) Each(fn func(key []uint16, v V) bool) {
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, e.val) {
				return
			}
		}
	}
}

// Apply invokes fn on a pointer to every value, allowing in-place mutation.
func (d *WideDictionary[V]) Apply(fn func(key []uint16, v *V) bool) {
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, &e.val) {
				return
			}
		}
	}
}

// Copy returns an independent deep copy.
func (d *WideDictionary[V]) Copy() *WideDictionary[V] {
	out := NewWideWithAllocator[V](len(d.buckets), d.Allocator)
	out.destructor = d.destructor
	d.Each(func(k []uint16, v V) bool {
		_, _ = out.Add(k, v)
		return true
	})
	return out
}

// Equal is position-sensitive within buckets, mirroring Dictionary.Equal.
func (d *WideDictionary[V]) Equal(other *WideDictionary[V]) bool {
	if d.count != other.count || d.Flags() != other.Flags() || len(d.buckets) != len(other.buckets) {
		return false
	}
	for i := range d.buckets {
		a, b := d.buckets[i], other.buckets[i]
		for a != nil && b != nil {
			if !wideEqual(a.key, b.key) || !valuesEqual(a.val, b.val) {
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

// Save writes the wide dictionary through the same two-sub-frame layout
// Dictionary.Save uses, with KindWideDict as the outer tag and a uint16
// string collection in place of the byte one.
func (d *WideDictionary[V]) Save(w io.Writer, saveFn serialize.SaveFn[V]) error {
	if saveFn == nil {
		saveFn = serialize.WriteFixed[V]
	}
	var keys [][]uint16
	var vals []V
	d.Each(func(k []uint16, v V) bool {
		kc := make([]uint16, len(k))
		copy(kc, k)
		keys = append(keys, kc)
		vals = append(vals, v)
		return true
	})
	if _, err := w.Write(serialize.KindWideDict[:]); err != nil {
		return errs.Raise(wideSite("Save"), errs.FileWrite, err)
	}
	header := serialize.Header{Count: uint64(len(keys)), Flags: uint32(d.Flags())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errs.Raise(wideSite("Save"), errs.FileWrite, err)
	}
	ki := 0
	if err := serialize.WriteFrame[[]uint16](w, serialize.KindStringColl,
		serialize.Header{Count: uint64(len(keys))},
		func(w io.Writer, k []uint16) error { return serialize.WriteLenPrefixedUint16s(w, k) },
		func() ([]uint16, bool) {
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

// LoadWide constructs a new wide dictionary from the two-sub-frame layout
// Save writes.
func LoadWide[V any](r io.Reader, bucketHint int, readFn serialize.ReadFn[V]) (*WideDictionary[V], error) {
	if readFn == nil {
		readFn = serialize.ReadFixed[V]
	}
	var got [16]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errs.Raise(wideSite("Load"), errs.FileRead, err)
	}
	if serialize.KindTag(got) != serialize.KindWideDict {
		return nil, errs.Raise(wideSite("Load"), errs.WrongFile, nil)
	}
	var outerHeader serialize.Header
	if err := binary.Read(r, binary.LittleEndian, &outerHeader); err != nil {
		return nil, errs.Raise(wideSite("Load"), errs.FileRead, err)
	}
	var keys [][]uint16
	if _, err := serialize.ReadFrame[[]uint16](r, serialize.KindStringColl,
		serialize.ReadLenPrefixedUint16s,
		func(k []uint16) error { keys = append(keys, k); return nil }); err != nil {
		return nil, err
	}
	var vals []V
	if _, err := serialize.ReadFrame[V](r, serialize.KindValueArray, readFn,
		func(v V) error { vals = append(vals, v); return nil }); err != nil {
		return nil, err
	}
	if len(keys) != len(vals) {
		return nil, errs.Raise(wideSite("Load"), errs.Internal, nil)
	}
	out := NewWide[V](bucketHint)
	for i := range keys {
		if _, err := out.Add(keys[i], vals[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

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

// Package container is the generic vtable façade (C15): the common header
// every concrete container embeds, and the capability interfaces the
// generic operations (Size, Clear, Append across heterogeneous sequential
// containers, …) dispatch through instead of a literal C-style vtable.
package container

import (
	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/errs"
)

// Flags is the bitset every container header carries (§3.1).
type Flags uint32

const (
	ReadOnly Flags = 1 << iota
	HasObserver

	// FirstPrivateFlag is the first bit a concrete container may define
	// its own flags from, so private flags never collide with the
	// common ones above.
	FirstPrivateFlag Flags = 1 << 8
)

// Header is the common container prefix (§3.1), embedded as the first
// field of every concrete container. Go doesn't need an element_size or
// vtable-pointer field the way the C source does (generics monomorphize
// per element type and methods dispatch directly); Header keeps exactly
// the parts that are observable through the public API: flags, the
// mutation timestamp, the pinned allocator and the per-container error
// reporter.
type Header struct {
	flags     Flags
	timestamp uint64
	Allocator alloc.Allocator
	Reporter  errs.Reporter
}

// NewHeader builds a Header pinned to the given allocator (alloc.Current()
// if nil) with the process-wide default reporter.
func NewHeader(a alloc.Allocator) Header {
	if a == nil {
		a = alloc.Current()
	}
	return Header{Allocator: a, Reporter: nil}
}

// Flags returns the current flag bits.
func (h *Header) Flags() Flags { return h.flags }

// SetFlags overwrites the flag bits. Setting ReadOnly is itself a
// mutation but is always permitted even on an already-read-only
// container (§7).
func (h *Header) SetFlags(f Flags) {
	h.flags = f
	h.Bump()
}

// ReadOnly reports whether the container currently rejects mutation.
func (h *Header) ReadOnly() bool { return h.flags&ReadOnly != 0 }

// HasObserver reports whether mutations should be published to the
// observer registry.
func (h *Header) HasObserver() bool { return h.flags&HasObserver != 0 }

// Timestamp returns the monotone mutation counter iterators capture.
func (h *Header) Timestamp() uint64 { return h.timestamp }

// Bump increments the timestamp; every successful mutation (including a
// successful Clear) calls this at least once (§3.1), and the list's
// EraseRange and InsertIn call it once per element they remove or insert.
func (h *Header) Bump() { h.timestamp++ }

// CheckWritable returns a ReadOnly *errs.Error if the container is marked
// read-only, nil otherwise. Every mutating operation calls this first.
func (h *Header) CheckWritable(site string) error {
	if h.ReadOnly() {
		return report(h, site, errs.ReadOnly)
	}
	return nil
}

func report(h *Header, site string, code errs.Code) error {
	if h.Reporter != nil {
		e := errs.RaiseSilent(site, code, nil)
		h.Reporter(site, code, nil)
		return e
	}
	return errs.Raise(site, code, nil)
}

// Report is the public hook concrete containers call for any precondition
// violation, routing through the container's own reporter if one was
// configured via SetErrorFunction, else the process-wide one.
func (h *Header) Report(site string, code errs.Code) error {
	return report(h, site, code)
}

// Sized is the minimal generic capability: anything with a Size.
type Sized interface {
	Size() int
}

// Clearer is implemented by every container kind; Clear returns an error
// because CheckWritable can reject it on a read-only container.
type Clearer interface {
	Clear() error
}

// Adder is the minimal capability Append (§4.15) dispatches against: a
// destination that can receive elements one at a time.
type Adder[T any] interface {
	Add(v T) (int, error)
}

// Source is the minimal capability Append needs from the origin side: a
// way to walk every element in order.
type Source[T any] interface {
	Each(fn func(T) bool)
}

// Append iterates src and Adds every element to dst, the generic
// cross-container operation described in §4.15 ("an append across
// heterogeneous sequential containers is implemented generically by
// iterating the source and adding to the destination").
func Append[T any](dst Adder[T], src Source[T]) (int, error) {
	n := 0
	var firstErr error
	src.Each(func(v T) bool {
		if _, err := dst.Add(v); err != nil {
			firstErr = err
			return false
		}
		n++
		return true
	})
	return n, firstErr
}

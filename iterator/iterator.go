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

// Package iterator is the iterator protocol (C7): a capability interface
// every container-specific cursor implements a (possibly partial) subset
// of, plus the timestamp-based invalidation check shared by all of them.
package iterator

// Direction selects which way Replace advances after mutating the current
// slot.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Of is the full iterator capability set (§4.7). Containers that don't
// support a capability (e.g. Previous on a singly-linked list) simply
// return ("not implemented") from it. The Bidirectional and Seekable marker
// interfaces below name such capabilities; no iterator in this module
// implements either marker.
type Of[T any] interface {
	First() (T, bool)
	Next() (T, bool)
	Previous() (T, bool)
	Current() (T, bool)
	Last() (T, bool)
	Seek(index int) (T, bool)
	Position() int
	// Replace overwrites the current slot with data (deleting it if data
	// is nil) then advances in dir, resynchronizing the captured
	// timestamp on success.
	Replace(data *T, dir Direction) error
	// Err returns the sticky error from the most recent operation, in
	// particular an *errs.Error with Code errs.ObjectChanged when the subject
	// mutated since this iterator's last successful position.
	Err() error
}

// Bidirectional is the marker for iterators that support Previous. No
// iterator in this module implements it; the scapegoat tree's iterator
// walks backward through its own Prev method instead.
type Bidirectional interface {
	SupportsPrevious() bool
}

// Seekable is the marker for iterators that support Seek/Position by
// index. No iterator in this module implements it.
type Seekable interface {
	SupportsSeek() bool
}

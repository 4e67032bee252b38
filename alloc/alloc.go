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

// Package alloc is the allocator interface (C2), the slab heap (C3) and the
// pool/arena allocator (C4).
//
// Go's garbage collector means "alloc" here never frees raw memory back to
// the OS the way the C library's malloc/free pair does; instead Allocator
// models the shape of the C contract (alloc/free/realloc/zeroed-alloc) over
// byte slices, so slab and pool can implement the same free-list and
// bump-allocation discipline the source library uses, including the
// "free_object stores its own index" and "pool bump pointer" tricks that
// make those containers interesting. Container code is written against
// Allocator rather than make([]byte, n) directly so CreateWithAllocator
// (§4.2) and the pool/slab arenas can be swapped in transparently.
package alloc

import (
	"github.com/jnavia/gccl/logging"
	"github.com/jnavia/gccl/mathutil"
)

// Allocator is the four-operation allocator object every container is
// pinned to at construction (§4.2).
type Allocator interface {
	Alloc(n int) []byte
	Free(p []byte)
	Realloc(p []byte, n int) []byte
	AllocZeroed(count, eltSize int) []byte
}

// Default is the system allocator: Alloc/Realloc build fresh byte slices,
// Free is a no-op (the Go runtime reclaims unreferenced slices), and
// AllocZeroed relies on make's zero-fill guarantee.
type systemAllocator struct{}

func (systemAllocator) Alloc(n int) []byte { return make([]byte, n) }

func (systemAllocator) Free([]byte) {}

func (systemAllocator) Realloc(p []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, p)
	return out
}

func (systemAllocator) AllocZeroed(count, eltSize int) []byte {
	total, overflow := mathutil.SafeMul(uint64(count), uint64(eltSize))
	if overflow {
		logging.L().Errorw("alloc: AllocZeroed size overflow", "count", count, "eltSize", eltSize)
		return nil
	}
	return make([]byte, total)
}

// Default is the process's built-in allocator, delegating to the system.
var Default Allocator = systemAllocator{}

var current = Default

// Current returns the process-wide default allocator new containers use
// when none is supplied explicitly.
func Current() Allocator { return current }

// SetCurrentAllocator swaps the process default allocator, returning the
// previous one.
func SetCurrentAllocator(a Allocator) Allocator {
	old := current
	if a == nil {
		a = Default
	}
	current = a
	return old
}

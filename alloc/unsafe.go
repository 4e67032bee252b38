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

package alloc

import "unsafe"

// ptrDiff returns the number of T-sized steps from base to p, or -1 if p
// does not land exactly on a T boundary at or after base. Slab.indexOf
// uses this to recover the global slot index of a pointer NewObject handed
// out, the same way the C slab recovers a slot's index from the pointer
// arithmetic against its block base.
func ptrDiff[T any](p, base *T) int {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return 0
	}
	pa := uintptr(unsafe.Pointer(p))
	ba := uintptr(unsafe.Pointer(base))
	if pa < ba {
		return -1
	}
	diff := pa - ba
	if diff%size != 0 {
		return -1
	}
	return int(diff / size)
}

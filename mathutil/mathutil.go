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

// Package mathutil is the small set of overflow-checked integer helpers
// the allocator and sizing code share.
package mathutil

import "math/bits"

// Integer limit values.
const (
	MaxInt64  = 1<<63 - 1
	MinInt64  = -1 << 63
	MaxUint32 = 1<<32 - 1
)

// SafeMul returns x*y and reports whether it overflowed 64 bits.
func SafeMul(x, y uint64) (product uint64, overflow bool) {
	hi, lo := bits.Mul64(x, y)
	return lo, hi != 0
}

// SafeAdd returns x+y and reports whether it overflowed 64 bits.
func SafeAdd(x, y uint64) (sum uint64, overflow bool) {
	s, carryOut := bits.Add64(x, y, 0)
	return s, carryOut != 0
}

// AbsoluteDifference returns |x-y| without risking signed underflow.
func AbsoluteDifference(x, y uint64) uint64 {
	if x > y {
		return x - y
	}
	return y - x
}

// CeilDiv returns ⌈x/y⌉, or 0 if y is 0.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

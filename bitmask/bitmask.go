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

// Package bitmask is the bit mask (C5): a fixed-length inclusion mask used
// by Select/SelectCopy across the sequential containers.
package bitmask

import (
	"github.com/willf/bitset"

	"github.com/jnavia/gccl/errs"
)

// Mask is a dense, fixed-length byte-per-bit inclusion mask (0 = excluded,
// non-zero = included in the source C library; here a plain bool per bit
// backed by a willf/bitset.BitSet for the storage and population count).
type Mask struct {
	bits *bitset.BitSet
	n    uint
}

// New builds a Mask of length n, all bits clear.
func New(n int) *Mask {
	return &Mask{bits: bitset.New(uint(n)), n: uint(n)}
}

// Size returns the mask's bit length.
func (m *Mask) Size() int { return int(m.n) }

// Set assigns bit i to b.
func (m *Mask) Set(i int, b bool) error {
	if i < 0 || uint(i) >= m.n {
		return errs.Raise(errs.Site("Mask", "Set"), errs.Index, nil)
	}
	if b {
		m.bits.Set(uint(i))
	} else {
		m.bits.Clear(uint(i))
	}
	return nil
}

// Get reports whether bit i is included.
func (m *Mask) Get(i int) bool {
	if i < 0 || uint(i) >= m.n {
		return false
	}
	return m.bits.Test(uint(i))
}

// ClearAll clears every bit.
func (m *Mask) ClearAll() { m.bits.ClearAll() }

// PopulationCount returns the number of set bits.
func (m *Mask) PopulationCount() int { return int(m.bits.Count()) }

// Copy returns an independent copy of m.
func (m *Mask) Copy() *Mask {
	return &Mask{bits: m.bits.Clone(), n: m.n}
}

// And returns the bitwise AND of m and other, failing with Incompatible if
// their lengths differ.
func (m *Mask) And(other *Mask) (*Mask, error) {
	if m.n != other.n {
		return nil, errs.Raise(errs.Site("Mask", "And"), errs.Incompatible, nil)
	}
	return &Mask{bits: m.bits.Intersection(other.bits), n: m.n}, nil
}

// Or returns the bitwise OR of m and other, failing with Incompatible if
// their lengths differ.
func (m *Mask) Or(other *Mask) (*Mask, error) {
	if m.n != other.n {
		return nil, errs.Raise(errs.Site("Mask", "Or"), errs.Incompatible, nil)
	}
	return &Mask{bits: m.bits.Union(other.bits), n: m.n}, nil
}

// Not returns the bitwise complement of m within its own length.
func (m *Mask) Not() *Mask {
	out := bitset.New(m.n)
	for i := uint(0); i < m.n; i++ {
		if !m.bits.Test(i) {
			out.Set(i)
		}
	}
	return &Mask{bits: out, n: m.n}
}

// Finalize releases the mask's storage.
func (m *Mask) Finalize() { m.bits = nil }

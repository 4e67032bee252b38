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

// Package bloom is the Bloom filter (C13): a fixed-capacity, fixed
// false-positive-rate membership sketch using a MurmurHash-2-flavoured
// mixer with k independent seeds.
package bloom

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"

	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/errs"
	"github.com/jnavia/gccl/mathutil"
	"github.com/jnavia/gccl/serialize"
)

const (
	murmurM uint32 = 0x5bd1e995
	murmurR        = 24
)

// murmur2 is MurmurHash2 (32-bit), seeded. Its 4-byte chunks are
// interpreted little-endian here, a concrete choice the original mixer
// leaves to host endianness (§4.13's closing note, §9 open question (b)):
// this implementation will not agree bit-for-bit with a big-endian host's.
func murmur2(data []byte, seed uint32) uint32 {
	h := seed ^ uint32(len(data))
	i := 0
	for len(data)-i >= 4 {
		k := binary.LittleEndian.Uint32(data[i : i+4])
		k *= murmurM
		k ^= k >> murmurR
		k *= murmurM
		h *= murmurM
		h ^= k
		i += 4
	}
	switch len(data) - i {
	case 3:
		h ^= uint32(data[i+2]) << 16
		fallthrough
	case 2:
		h ^= uint32(data[i+1]) << 8
		fallthrough
	case 1:
		h ^= uint32(data[i])
		h *= murmurM
	}
	h ^= h >> 13
	h *= murmurM
	h ^= h >> 15
	return h
}

// sizing computes (m bits, k hashes) for a filter holding n elements at
// target false-positive rate p (§4.13).
func sizing(n int, p float64) (m uint64, k int) {
	mf := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	m = uint64(mf)
	k = int(math.Ceil(0.7 * mf / float64(n)))
	if k < 1 {
		k = 1
	}
	return m, k
}

// CalculateSpace returns the byte footprint of a Filter sized for (n, p)
// without constructing one.
func CalculateSpace(n int, p float64) int {
	m, _ := sizing(n, p)
	return mathutil.CeilDiv(int(m), 8)
}

// Filter is the Bloom filter of §4.13.
type Filter struct {
	container.Header

	bits  []byte
	m     uint64
	k     int
	seeds []uint32
	count int
	max   int
}

func site(fn string) string { return errs.Site("Filter", fn) }

// New constructs a filter sized to hold n elements at false-positive rate
// p, drawing k seeds from the process PRNG.
func New(n int, p float64) *Filter {
	m, k := sizing(n, p)
	seeds := make([]uint32, k)
	for i := range seeds {
		seeds[i] = rand.Uint32()
	}
	return &Filter{
		Header: container.NewHeader(nil),
		bits:   make([]byte, mathutil.CeilDiv(int(m), 8)),
		m:      m,
		k:      k,
		seeds:  seeds,
		max:    n,
	}
}

func (f *Filter) getBit(i uint64) bool {
	return f.bits[i/8]&(1<<(i%8)) != 0
}

func (f *Filter) setBit(i uint64) {
	f.bits[i/8] |= 1 << (i % 8)
}

// Add inserts key, failing with Full once count reaches the filter's
// designed capacity n.
func (f *Filter) Add(key []byte) error {
	if err := f.CheckWritable(site("Add")); err != nil {
		return err
	}
	if f.count >= f.max {
		return f.Header.Report(site("Add"), errs.Full)
	}
	for _, seed := range f.seeds {
		idx := uint64(murmur2(key, seed)) % f.m
		f.setBit(idx)
	}
	f.count++
	f.Bump()
	return nil
}

// Find reports whether key may be a member: false means definitely not
// present, true means present or a false positive.
func (f *Filter) Find(key []byte) bool {
	for _, seed := range f.seeds {
		idx := uint64(murmur2(key, seed)) % f.m
		if !f.getBit(idx) {
			return false
		}
	}
	return true
}

// Size returns the number of elements added so far.
func (f *Filter) Size() int { return f.count }

// Clear zeroes the bit array and the element count; k/m/seeds are kept.
func (f *Filter) Clear() error {
	if err := f.CheckWritable(site("Clear")); err != nil {
		return err
	}
	for i := range f.bits {
		f.bits[i] = 0
	}
	f.count = 0
	f.Bump()
	return nil
}

// Finalize releases the filter's bit array.
func (f *Filter) Finalize() {
	f.bits = nil
	f.count = 0
}

// Save writes the filter through the C14 framing: the kind tag and a
// header snapshot, then the sketch's own state (m, k, seeds, the designed
// capacity and the bit array) rather than a per-element stream — a Bloom
// filter has no element sequence to replay, only a sketch to restore
// bit-for-bit.
func (f *Filter) Save(w io.Writer) error {
	if _, err := w.Write(serialize.KindBloom[:]); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	header := serialize.Header{Count: uint64(f.count), Flags: uint32(f.Flags())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, f.m); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(f.max)); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(f.seeds))); err != nil {
		return errs.Raise(site("Save"), errs.FileWrite, err)
	}
	for _, s := range f.seeds {
		if err := binary.Write(w, binary.LittleEndian, s); err != nil {
			return errs.Raise(site("Save"), errs.FileWrite, err)
		}
	}
	return serialize.WriteLenPrefixedBytes(w, f.bits)
}

// Load restores a filter from the framing Save writes.
func Load(r io.Reader) (*Filter, error) {
	var got [16]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
	}
	if serialize.KindTag(got) != serialize.KindBloom {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.WrongFile, nil)
	}
	var header serialize.Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
	}
	f := &Filter{Header: container.NewHeader(nil)}
	if err := binary.Read(r, binary.LittleEndian, &f.m); err != nil {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
	}
	var max uint64
	if err := binary.Read(r, binary.LittleEndian, &max); err != nil {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
	}
	f.max = int(max)
	var numSeeds uint64
	if err := binary.Read(r, binary.LittleEndian, &numSeeds); err != nil {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
	}
	f.seeds = make([]uint32, numSeeds)
	for i := range f.seeds {
		if err := binary.Read(r, binary.LittleEndian, &f.seeds[i]); err != nil {
			return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
		}
	}
	f.k = len(f.seeds)
	bits, err := serialize.ReadLenPrefixedBytes(r)
	if err != nil {
		return nil, errs.Raise(errs.Site("Filter", "Load"), errs.FileRead, err)
	}
	f.bits = bits
	f.count = int(header.Count)
	return f, nil
}

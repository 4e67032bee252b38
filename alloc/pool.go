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

// Pool-allocator tuning constants (§4.4).
const (
	MaxIndex     = 20         // number of size-class free lists
	BoundarySize = 1 << 12    // bytes per size-class step
	MinAlloc     = 8192       // minimum node capacity
)

// Pool is the region arena (C4): callers Alloc/Calloc out of it and either
// Clear it (release everything but keep the pool alive) or Finalize it
// (release everything, including the pool itself). Freed memory is never
// tracked per-allocation; the whole region goes at once.
type Pool interface {
	Alloc(size int) []byte
	Calloc(n, size int) []byte
	Clear()
	Finalize()
	// Owns reports whether p was handed out by this pool. The arena
	// variant always returns true for any non-nil slice (it has no
	// record of individual allocations); the debug variant (§4.4)
	// actually walks its allocation records.
	Owns(p []byte) bool
}

type poolNode struct {
	buf  []byte
	used int
}

func (n *poolNode) free() int { return len(n.buf) - n.used }

// ArenaPool is the bump-allocating pool described in §4.4: the active node
// is always the head of nodes; allocation bumps within it, falls forward to
// the first node with enough room, or pulls a fresh node from the
// allocator (checking the internal size-class free lists first).
type ArenaPool struct {
	allocator Allocator
	nodes     []*poolNode
	// freeLists[i] holds detached node buffers whose capacity falls in
	// size-class i, recycled by Clear before asking allocator for more.
	freeLists [][][]byte

	boundarySize int
	minAlloc     int
	maxIndex     int
}

// NewPool constructs an empty arena pool against the given allocator (or
// alloc.Current() if nil), using the spec's hard-coded sizing constants.
func NewPool(a Allocator) *ArenaPool {
	return NewPoolSized(a, BoundarySize, MinAlloc, MaxIndex)
}

// NewPoolSized constructs an arena pool with caller-chosen sizing, the hook
// config.Config's pool settings are wired through.
func NewPoolSized(a Allocator, boundarySize, minAlloc, maxIndex int) *ArenaPool {
	if a == nil {
		a = Current()
	}
	if maxIndex <= 0 {
		maxIndex = MaxIndex
	}
	return &ArenaPool{
		allocator:    a,
		freeLists:    make([][][]byte, maxIndex),
		boundarySize: boundarySize,
		minAlloc:     minAlloc,
		maxIndex:     maxIndex,
	}
}

func align8(n int) int { return (n + 7) &^ 7 }

func (p *ArenaPool) sizeClass(n int) int {
	c := n / p.boundarySize
	if c >= p.maxIndex {
		c = p.maxIndex - 1
	}
	return c
}

func (p *ArenaPool) Alloc(size int) []byte {
	n := align8(size)
	if n == 0 {
		n = 8
	}
	if idx := p.findRoom(n); idx >= 0 {
		return p.bump(idx, n)
	}
	node := p.newNode(n)
	p.nodes = append([]*poolNode{node}, p.nodes...)
	return p.bump(0, n)
}

func (p *ArenaPool) Calloc(count, size int) []byte {
	buf := p.Alloc(count * size)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// findRoom returns the index of the first node (active node first, then
// forward) with at least n bytes free, or -1.
func (p *ArenaPool) findRoom(n int) int {
	for i, nd := range p.nodes {
		if nd.free() >= n {
			return i
		}
	}
	return -1
}

func (p *ArenaPool) bump(idx, n int) []byte {
	nd := p.nodes[idx]
	start := nd.used
	nd.used += n
	// promote the node that satisfied the request to active by swapping it
	// with the head; the former head takes its slot, so the other nodes are
	// not re-sorted by remaining capacity.
	if idx != 0 {
		p.nodes[idx], p.nodes[0] = p.nodes[0], p.nodes[idx]
	}
	return nd.buf[start : start+n : start+n]
}

func (p *ArenaPool) newNode(need int) *poolNode {
	class := p.sizeClass(need)
	if len(p.freeLists[class]) > 0 {
		last := len(p.freeLists[class]) - 1
		buf := p.freeLists[class][last]
		p.freeLists[class] = p.freeLists[class][:last]
		if len(buf) >= need {
			return &poolNode{buf: buf}
		}
	}
	cap := p.minAlloc
	if want := (class + 1) * p.boundarySize; want > cap {
		cap = want
	}
	if need > cap {
		cap = need
	}
	return &poolNode{buf: p.allocator.Alloc(cap)}
}

// Clear detaches every node, recycling their buffers into the size-class
// free lists, and leaves the pool ready for fresh Alloc calls.
func (p *ArenaPool) Clear() {
	for _, nd := range p.nodes {
		class := p.sizeClass(len(nd.buf))
		p.freeLists[class] = append(p.freeLists[class], nd.buf[:0:len(nd.buf)])
	}
	p.nodes = nil
}

// Finalize clears the pool, then drops every recycled free-list buffer so
// the underlying allocator can reclaim them.
func (p *ArenaPool) Finalize() {
	p.Clear()
	for i := range p.freeLists {
		for _, buf := range p.freeLists[i] {
			p.allocator.Free(buf)
		}
		p.freeLists[i] = nil
	}
}

// Owns always reports true: the arena keeps no per-allocation record, only
// the debug variant can answer this precisely.
func (p *ArenaPool) Owns(b []byte) bool { return b != nil }

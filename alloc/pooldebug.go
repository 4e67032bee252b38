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

import "github.com/jnavia/gccl/logging"

// poisonByte overwrites every released block before it is freed, so a
// caller that kept a stale slice observes garbage instead of silently
// reusing live data (§4.4).
const poisonByte = 0xDD

// debugRecord is one of the fixed-size "debug node" entries the C pool
// chains 64-at-a-time; gccl keeps the same per-allocation bookkeeping but
// grows it as a plain slice since Go has no reason to hand-roll a
// fixed-arity chain.
type debugRecord struct {
	buf  []byte
	live bool
}

// DebugPool is the debug pool variant (§4.4): every Alloc is a distinct
// allocation, individually recorded, so Owns can confirm a pointer belongs
// to this pool and Clear can poison every live block before releasing it
// (catching caller use-after-free).
type DebugPool struct {
	allocator Allocator
	records   []*debugRecord
}

// NewDebugPool constructs a debug pool against the given allocator (or
// alloc.Current() if nil). Selecting DebugPool over ArenaPool is the
// "build configuration" choice described in §4.4.
func NewDebugPool(a Allocator) *DebugPool {
	if a == nil {
		a = Current()
	}
	return &DebugPool{allocator: a}
}

func (p *DebugPool) Alloc(size int) []byte {
	n := align8(size)
	if n == 0 {
		n = 8
	}
	buf := p.allocator.Alloc(n)
	p.records = append(p.records, &debugRecord{buf: buf, live: true})
	return buf
}

func (p *DebugPool) Calloc(count, size int) []byte {
	return p.Alloc(count * size) // allocator.Alloc already zero-fills
}

// Clear poisons and releases every live block, logging a warning for each
// so a leak (a block never explicitly handed back) is visible.
func (p *DebugPool) Clear() {
	for _, r := range p.records {
		if !r.live {
			continue
		}
		for i := range r.buf {
			r.buf[i] = poisonByte
		}
		logging.L().Warnw("debug pool releasing live block", "bytes", len(r.buf))
		p.allocator.Free(r.buf)
		r.live = false
	}
	p.records = p.records[:0]
}

// Finalize is Clear for the debug pool: there is no separate self-node to
// preserve, since the DebugPool struct is ordinary Go-GC-managed memory.
func (p *DebugPool) Finalize() { p.Clear() }

// Owns walks the allocation records to confirm p was handed out by this
// pool and is still live, the debug-only find_pool_from_data check.
func (p *DebugPool) Owns(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, r := range p.records {
		if r.live && sameBacking(r.buf, b) {
			return true
		}
	}
	return false
}

func sameBacking(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == 0 && len(b) == 0 && cap(a) == cap(b)
	}
	return &a[0] == &b[0]
}

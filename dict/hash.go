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

// scatter is the 256-entry randomizer table of 32-bit words the times-33
// accumulator mixes each byte through (§4.9). Built once, deterministically
// (a fixed-seed splitmix64 stream) so hashing is reproducible across
// processes.
var scatter [256]uint32

func init() {
	var state uint64 = 0x9e3779b97f4a7c15
	next := func() uint64 {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}
	for i := range scatter {
		scatter[i] = uint32(next())
	}
}

// hashBytes is the narrow times-33 hash (§4.9): h ← 0; for each byte b:
// h ← h*33 + scatter[b].
func hashBytes(key []byte) uint32 {
	var h uint32
	for _, b := range key {
		h = h*33 + scatter[b]
	}
	return h
}

// hashWide folds each uint16 code unit through the same accumulator,
// scattering its low and high bytes the way the narrow hash scatters a
// single byte (§4.9's "wide variant folds code units the same way").
func hashWide(key []uint16) uint32 {
	var h uint32
	for _, u := range key {
		h = h*33 + scatter[byte(u)]
		h = h*33 + scatter[byte(u>>8)]
	}
	return h
}

// bucketSchedule is the closed set of bucket counts a constructor hint
// rounds up to (§4.9); SetBucketSchedule overrides it process-wide, the
// hook config.Config's dict.bucket_schedule setting threads through
// (config.Config.DictBucketSchedule()).
var bucketSchedule = []int{509, 1021, 2053, 4093, 8191, 16381, 32771, 65521, 131071}

// SetBucketSchedule replaces the process-wide bucket-count schedule every
// subsequent New/NewWide call rounds a hint up against.
func SetBucketSchedule(schedule []int) {
	if len(schedule) == 0 {
		return
	}
	bucketSchedule = schedule
}

func bucketCountFor(hint int) int {
	for _, n := range bucketSchedule {
		if n >= hint {
			return n
		}
	}
	return bucketSchedule[len(bucketSchedule)-1]
}

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

// Package config loads the tunables the spec otherwise hard-codes: slab
// block size, pool boundary/minimum-allocation sizes, the dictionary's
// bucket-count schedule, and the bloom filter's default (n, p). A
// zero-value Config yields those hard-coded constants, so existing call
// sites need no configuration at all.
package config

import (
	"io"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/jnavia/gccl/errs"
)

// Defaults mirror the spec's hard-coded constants.
const (
	DefaultSlabChunkSize  = 1000
	DefaultPoolBoundary   = datasize.ByteSize(1 << 12)
	DefaultPoolMinAlloc   = datasize.ByteSize(8192)
	DefaultPoolMaxIndex   = 20
	DefaultBloomN         = 10000
	DefaultBloomP         = 0.01
)

// DefaultBucketSchedule is the dictionary's default bucket-count ladder.
var DefaultBucketSchedule = []int{509, 1021, 2053, 4093, 8191, 16381, 32771, 65521, 131071}

// Config holds every tunable a document may override; zero values fall
// back to the package defaults above.
type Config struct {
	Slab struct {
		ChunkSize int `yaml:"chunk_size"`
	} `yaml:"slab"`

	Pool struct {
		BoundarySize datasize.ByteSize `yaml:"boundary_size"`
		MinAlloc     datasize.ByteSize `yaml:"min_alloc"`
		MaxIndex     int               `yaml:"max_index"`
	} `yaml:"pool"`

	Dict struct {
		BucketSchedule []int `yaml:"bucket_schedule"`
	} `yaml:"dict"`

	Bloom struct {
		N int     `yaml:"n"`
		P float64 `yaml:"p"`
	} `yaml:"bloom"`
}

// Load parses a YAML document from r into a Config.
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, errs.Raise(errs.Site("config", "Load"), errs.FileRead, err)
	}
	return &c, nil
}

// LoadFile opens path and parses it as a Config.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Raise(errs.Site("config", "LoadFile"), errs.FileOpen, err)
	}
	defer f.Close()
	return Load(f)
}

// SlabChunkSize returns the configured value or the default.
func (c *Config) SlabChunkSize() int {
	if c == nil || c.Slab.ChunkSize == 0 {
		return DefaultSlabChunkSize
	}
	return c.Slab.ChunkSize
}

// PoolBoundarySize returns the configured value or the default.
func (c *Config) PoolBoundarySize() datasize.ByteSize {
	if c == nil || c.Pool.BoundarySize == 0 {
		return DefaultPoolBoundary
	}
	return c.Pool.BoundarySize
}

// PoolMinAlloc returns the configured value or the default.
func (c *Config) PoolMinAlloc() datasize.ByteSize {
	if c == nil || c.Pool.MinAlloc == 0 {
		return DefaultPoolMinAlloc
	}
	return c.Pool.MinAlloc
}

// PoolMaxIndex returns the configured value or the default.
func (c *Config) PoolMaxIndex() int {
	if c == nil || c.Pool.MaxIndex == 0 {
		return DefaultPoolMaxIndex
	}
	return c.Pool.MaxIndex
}

// DictBucketSchedule returns the configured schedule or the default.
func (c *Config) DictBucketSchedule() []int {
	if c == nil || len(c.Dict.BucketSchedule) == 0 {
		return DefaultBucketSchedule
	}
	return c.Dict.BucketSchedule
}

// BloomDefaults returns the configured (n, p) or the spec defaults.
func (c *Config) BloomDefaults() (n int, p float64) {
	if c == nil || c.Bloom.N == 0 {
		return DefaultBloomN, DefaultBloomP
	}
	p = c.Bloom.P
	if p == 0 {
		p = DefaultBloomP
	}
	return c.Bloom.N, p
}

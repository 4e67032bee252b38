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

// Package serialize is the serialization framing (C14):
//
//	frame := kind_tag(16 bytes) ∥ header_snapshot ∥ element_stream
//
// one 16-byte kind tag per container kind, a fixed header record, then
// count invocations of the caller's save_fn/read_fn.
package serialize

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/jnavia/gccl/errs"
)

// KindTag is the 16-byte container-kind identifier prefixed to every
// frame. Values are fixed uuid.UUID literals so they reproduce bit-exactly
// across processes, never generated at runtime.
type KindTag = uuid.UUID

// The closed set of kind tags, one per container kind (§6.1).
var (
	KindList       = uuid.MustParse("3f6a1d1e-7b1a-4e6a-9f0a-1a2b3c4d5e6f")
	KindDict       = uuid.MustParse("5a2b3c4d-8e1f-4a2b-9c3d-2b3c4d5e6f70")
	KindWideDict   = uuid.MustParse("6b3c4d5e-9f20-4b3c-ad4e-3c4d5e6f7081")
	KindPQ         = uuid.MustParse("7c4d5e6f-a031-4c4d-be5f-4d5e6f708192")
	KindScapegoat  = uuid.MustParse("8d5e6f70-b142-4d5e-cf60-5e6f708192a3")
	KindSuffixTree = uuid.MustParse("9e6f7081-c253-4e6f-d071-6f708192a3b4")
	KindBloom      = uuid.MustParse("af708192-d364-4f70-e182-708192a3b4c5")
	KindStringColl = uuid.MustParse("b0819293-e475-4081-f293-8192a3b4c5d6")
	KindValueArray = uuid.MustParse("c192a3a4-f586-4192-a3a4-92a3b4c5d6e7")
)

// Header is the portable subset of the header_snapshot: count, flags and
// element size, the fields a reader consults regardless of container kind
// (§6.1 says readers consult only the portable subfields).
type Header struct {
	Count       uint64
	Flags       uint32
	ElementSize uint32
}

// SaveFn writes one element to w; the default implementation (WriteFixed)
// writes ElementSize raw bytes.
type SaveFn[T any] func(w io.Writer, v T) error

// ReadFn reads one element from r.
type ReadFn[T any] func(r io.Reader) (T, error)

// WriteFrame writes kind, header, then count(header) elements produced by
// next() and encoded by saveFn. next returns (zero, false) once exhausted.
func WriteFrame[T any](w io.Writer, kind KindTag, header Header, saveFn SaveFn[T], next func() (T, bool)) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(kind[:]); err != nil {
		return errs.Raise(errs.Site("serialize", "WriteFrame"), errs.FileWrite, err)
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return errs.Raise(errs.Site("serialize", "WriteFrame"), errs.FileWrite, err)
	}
	var n uint64
	for {
		v, ok := next()
		if !ok {
			break
		}
		if err := saveFn(bw, v); err != nil {
			return errs.Raise(errs.Site("serialize", "WriteFrame"), errs.FileWrite, err)
		}
		n++
	}
	if n != header.Count {
		return errs.Raise(errs.Site("serialize", "WriteFrame"), errs.Internal, nil)
	}
	return bw.Flush()
}

// ReadFrame reads and validates the kind tag (WrongFile on mismatch), the
// header, then invokes readFn once per element, calling add for each. It
// reads from r without read-ahead, so r is left positioned just past the
// frame and a following frame can be read from the same reader.
func ReadFrame[T any](r io.Reader, expectedKind KindTag, readFn ReadFn[T], add func(T) error) (Header, error) {
	br := r
	var got [16]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return Header{}, errs.Raise(errs.Site("serialize", "ReadFrame"), errs.FileRead, err)
	}
	if KindTag(got) != expectedKind {
		return Header{}, errs.Raise(errs.Site("serialize", "ReadFrame"), errs.WrongFile, nil)
	}
	var h Header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return Header{}, errs.Raise(errs.Site("serialize", "ReadFrame"), errs.FileRead, err)
	}
	for i := uint64(0); i < h.Count; i++ {
		v, err := readFn(br)
		if err != nil {
			return Header{}, errs.Raise(errs.Site("serialize", "ReadFrame"), errs.FileRead, err)
		}
		if err := add(v); err != nil {
			return Header{}, err
		}
	}
	return h, nil
}

// WriteFixed is the default SaveFn: a raw binary.Write of the element,
// i.e. element_size bytes per the spec's default save_fn. An int, which
// encoding/binary has no fixed size for, is written as its int64 form.
func WriteFixed[T any](w io.Writer, v T) error {
	if x, ok := any(v).(int); ok {
		return binary.Write(w, binary.LittleEndian, int64(x))
	}
	return binary.Write(w, binary.LittleEndian, v)
}

// ReadFixed is the default ReadFn, the inverse of WriteFixed.
func ReadFixed[T any](r io.Reader) (T, error) {
	var v T
	if p, ok := any(&v).(*int); ok {
		var x int64
		err := binary.Read(r, binary.LittleEndian, &x)
		*p = int(x)
		return v, err
	}
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// PutULEB128 appends the ULEB128 encoding of v to buf and returns the
// extended slice: 7-bit little-endian groups, high bit set on all but the
// last byte, 0 encodes as a single zero byte.
func PutULEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}

// WriteULEB128 writes the ULEB128 encoding of v to w.
func WriteULEB128(w io.Writer, v uint64) error {
	var tmp [10]byte
	buf := PutULEB128(tmp[:0], v)
	_, err := w.Write(buf)
	return err
}

// ReadULEB128 decodes a ULEB128-encoded uint64 from r.
func ReadULEB128(r io.Reader) (uint64, error) {
	var v uint64
	var shift uint
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		v |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

// WriteLenPrefixedBytes writes a ULEB128 length prefix followed by the key
// bytes, the framing hash tables use for each key (§6.1).
func WriteLenPrefixedBytes(w io.Writer, key []byte) error {
	if err := WriteULEB128(w, uint64(len(key))); err != nil {
		return err
	}
	_, err := w.Write(key)
	return err
}

// ReadLenPrefixedBytes reads the inverse of WriteLenPrefixedBytes.
func ReadLenPrefixedBytes(r io.Reader) ([]byte, error) {
	n, err := ReadULEB128(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteLenPrefixedUint16s is WriteLenPrefixedBytes' wide-character-key
// twin: a ULEB128 code-unit count followed by each uint16 little-endian,
// for the wide dictionary's string collection sub-frame.
func WriteLenPrefixedUint16s(w io.Writer, key []uint16) error {
	if err := WriteULEB128(w, uint64(len(key))); err != nil {
		return err
	}
	buf := make([]byte, 2*len(key))
	for i, u := range key {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	_, err := w.Write(buf)
	return err
}

// ReadLenPrefixedUint16s reads the inverse of WriteLenPrefixedUint16s.
func ReadLenPrefixedUint16s(r io.Reader) ([]uint16, error) {
	n, err := ReadULEB128(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 2*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	key := make([]uint16, n)
	for i := range key {
		key[i] = binary.LittleEndian.Uint16(buf[2*i:])
	}
	return key, nil
}

// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package rowbinary implements the RowBinary wire codec:
// little-endian fixed-width primitives, LEB128-length-prefixed strings
// and containers, and the byte layouts for UUID/Decimal/DateTime64/geo.
//
// Decoding is pull-based over a Cursor (satisfied by *chframe.FrameReader)
// that is asked for exactly N bytes at a time; encoding is push-based,
// appending to a caller-owned []byte buffer.
package rowbinary

import (
	"context"

	"golang.org/x/exp/constraints"
)

// Cursor is the pull-based byte source decoding reads from. It is
// satisfied by *chframe.FrameReader; kept as an interface here so the
// decoders depend only on the byte contract, not on the frame/compression
// machinery (rowbinary uses chframe only for its LEB128 helpers).
type Cursor interface {
	Next(ctx context.Context, n int) ([]byte, error)
}

// Uint is the constraint satisfied by every unsigned fixed-width integer
// RowBinary encodes directly (8/16/32/64 bits).
type Uint interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Int is the constraint satisfied by every signed fixed-width integer
// RowBinary encodes directly (8/16/32/64 bits).
type Int interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// AppendUint appends v as a little-endian fixed-width unsigned integer.
func AppendUint[T Uint](dst []byte, v T) []byte {
	switch any(v).(type) {
	case uint8:
		return append(dst, byte(v))
	case uint16:
		u := uint16(v)
		return append(dst, byte(u), byte(u>>8))
	case uint32:
		u := uint32(v)
		return append(dst, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
	default:
		u := uint64(v)
		return append(dst, byte(u), byte(u>>8), byte(u>>16), byte(u>>24),
			byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56))
	}
}

// AppendInt appends v as a little-endian fixed-width signed integer
// (two's complement, identical bit pattern to the unsigned case).
func AppendInt[T Int](dst []byte, v T) []byte {
	switch x := any(v).(type) {
	case int8:
		return AppendUint(dst, uint8(x))
	case int16:
		return AppendUint(dst, uint16(x))
	case int32:
		return AppendUint(dst, uint32(x))
	default:
		return AppendUint(dst, uint64(any(v).(int64)))
	}
}

// DecodeUint reads a little-endian fixed-width unsigned integer.
func DecodeUint[T Uint](ctx context.Context, c Cursor) (T, error) {
	var zero T
	n := sizeOfUint(zero)
	b, err := c.Next(ctx, n)
	if err != nil {
		return zero, err
	}
	var u uint64
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return T(u), nil
}

// DecodeInt reads a little-endian fixed-width signed integer.
func DecodeInt[T Int](ctx context.Context, c Cursor) (T, error) {
	var zero T
	n := sizeOfInt(zero)
	b, err := c.Next(ctx, n)
	if err != nil {
		return zero, err
	}
	var u uint64
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	switch n {
	case 1:
		return T(int8(u)), nil
	case 2:
		return T(int16(u)), nil
	case 4:
		return T(int32(u)), nil
	default:
		return T(int64(u)), nil
	}
}

func sizeOfUint[T Uint](v T) int {
	switch any(v).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

func sizeOfInt[T Int](v T) int {
	switch any(v).(type) {
	case int8:
		return 1
	case int16:
		return 2
	case int32:
		return 4
	default:
		return 8
	}
}

// Float is the constraint satisfied by Float32/Float64, reusing
// x/exp/constraints rather than redeclaring the union.
type Float = constraints.Float

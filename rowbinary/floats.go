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

package rowbinary

import (
	"context"
	"math"
)

// AppendFloat32 appends v as 4 little-endian bytes.
func AppendFloat32(dst []byte, v float32) []byte {
	return AppendUint(dst, math.Float32bits(v))
}

// AppendFloat64 appends v as 8 little-endian bytes.
func AppendFloat64(dst []byte, v float64) []byte {
	return AppendUint(dst, math.Float64bits(v))
}

// DecodeFloat32 reads a 4-byte little-endian float.
func DecodeFloat32(ctx context.Context, c Cursor) (float32, error) {
	u, err := DecodeUint[uint32](ctx, c)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// DecodeFloat64 reads an 8-byte little-endian float.
func DecodeFloat64(ctx context.Context, c Cursor) (float64, error) {
	u, err := DecodeUint[uint64](ctx, c)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// AppendBFloat16 appends v (already truncated to bfloat16 precision by
// the caller) as its top-16-bits-of-float32 representation.
func AppendBFloat16(dst []byte, v float32) []byte {
	bits := math.Float32bits(v)
	return AppendUint(dst, uint16(bits>>16))
}

// DecodeBFloat16 reads a bfloat16 value, widening it to float32.
func DecodeBFloat16(ctx context.Context, c Cursor) (float32, error) {
	u, err := DecodeUint[uint16](ctx, c)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(u) << 16), nil
}

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

import "context"

// Int128 and Int256 (and their unsigned counterparts) are carried as raw
// little-endian byte arrays rather than a big-integer type: the core
// never does arithmetic on these values, only passes them between the
// wire and the application, so a bignum dependency would buy nothing.
// Applications that need arithmetic convert through math/big themselves.
type (
	Uint128 [16]byte
	Int128  [16]byte
	Uint256 [32]byte
	Int256  [32]byte
)

// AppendUint128 appends v's 16 bytes unchanged (already little-endian).
func AppendUint128(dst []byte, v Uint128) []byte { return append(dst, v[:]...) }

// AppendInt128 appends v's 16 bytes unchanged (two's complement,
// little-endian).
func AppendInt128(dst []byte, v Int128) []byte { return append(dst, v[:]...) }

// AppendUint256 appends v's 32 bytes unchanged.
func AppendUint256(dst []byte, v Uint256) []byte { return append(dst, v[:]...) }

// AppendInt256 appends v's 32 bytes unchanged.
func AppendInt256(dst []byte, v Int256) []byte { return append(dst, v[:]...) }

// DecodeUint128 reads 16 raw bytes.
func DecodeUint128(ctx context.Context, c Cursor) (Uint128, error) {
	var v Uint128
	b, err := c.Next(ctx, 16)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// DecodeInt128 reads 16 raw bytes.
func DecodeInt128(ctx context.Context, c Cursor) (Int128, error) {
	var v Int128
	b, err := c.Next(ctx, 16)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// DecodeUint256 reads 32 raw bytes.
func DecodeUint256(ctx context.Context, c Cursor) (Uint256, error) {
	var v Uint256
	b, err := c.Next(ctx, 32)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// DecodeInt256 reads 32 raw bytes.
func DecodeInt256(ctx context.Context, c Cursor) (Int256, error) {
	var v Int256
	b, err := c.Next(ctx, 32)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

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
	"fmt"

	"github.com/sneller-chcore/chgo/chtype"
)

// Decimal encodes a fixed-point value as an unscaled signed integer:
// the real value is Unscaled * 10^-Scale. Size must match the column's
// derived DecimalSize (chtype.DecimalSizeFor(Precision)); Wide carries
// the 128/256-bit encodings as raw two's-complement bytes when Size
// exceeds 64 bits.
type Decimal struct {
	Unscaled int64 // valid when Size is Decimal32 or Decimal64
	Wide     Int256
	Scale    int
	Size     chtype.DecimalSize
}

// AppendDecimal appends d's unscaled integer at d.Size width.
func AppendDecimal(dst []byte, d Decimal) []byte {
	switch d.Size {
	case chtype.Decimal32:
		return AppendInt(dst, int32(d.Unscaled))
	case chtype.Decimal64:
		return AppendInt(dst, d.Unscaled)
	case chtype.Decimal128:
		var v Int128
		copy(v[:], d.Wide[:16])
		return AppendInt128(dst, v)
	default:
		return AppendInt256(dst, d.Wide)
	}
}

// DecodeDecimal reads a Decimal(P,S) value at the given size and scale.
func DecodeDecimal(ctx context.Context, c Cursor, size chtype.DecimalSize, scale int) (Decimal, error) {
	switch size {
	case chtype.Decimal32:
		v, err := DecodeInt[int32](ctx, c)
		if err != nil {
			return Decimal{}, err
		}
		return Decimal{Unscaled: int64(v), Scale: scale, Size: size}, nil
	case chtype.Decimal64:
		v, err := DecodeInt[int64](ctx, c)
		if err != nil {
			return Decimal{}, err
		}
		return Decimal{Unscaled: v, Scale: scale, Size: size}, nil
	case chtype.Decimal128:
		v, err := DecodeInt128(ctx, c)
		if err != nil {
			return Decimal{}, err
		}
		var wide Int256
		copy(wide[:16], v[:])
		signExtend(wide[:], 16)
		return Decimal{Wide: wide, Scale: scale, Size: size}, nil
	case chtype.Decimal256:
		v, err := DecodeInt256(ctx, c)
		if err != nil {
			return Decimal{}, err
		}
		return Decimal{Wide: v, Scale: scale, Size: size}, nil
	default:
		return Decimal{}, fmt.Errorf("rowbinary: unknown decimal size %v", size)
	}
}

// signExtend sign-extends buf[:n] (little-endian two's complement) out
// to fill the rest of buf, based on buf[n-1]'s high bit.
func signExtend(buf []byte, n int) {
	if n == 0 || n >= len(buf) {
		return
	}
	fill := byte(0)
	if buf[n-1]&0x80 != 0 {
		fill = 0xff
	}
	for i := n; i < len(buf); i++ {
		buf[i] = fill
	}
}

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

	"github.com/sneller-chcore/chgo/cherr"
)

// AppendBool appends v as a single 0/1 byte.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

// DecodeBool reads a single tag byte, failing with KindInvalidTag if it
// is anything other than 0 or 1.
func DecodeBool(ctx context.Context, c Cursor) (bool, error) {
	b, err := c.Next(ctx, 1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, cherr.New(cherr.KindInvalidTag, "bool tag byte was neither 0 nor 1")
	}
}

// AppendOptionFlag appends a Nullable(T) presence flag: 0 when present, 1
// when null (the server's flag polarity is inverted
// relative to a plain bool).
func AppendOptionFlag(dst []byte, null bool) []byte {
	if null {
		return append(dst, 1)
	}
	return append(dst, 0)
}

// DecodeOptionFlag reads a Nullable(T) presence flag, reporting whether
// the following value is null.
func DecodeOptionFlag(ctx context.Context, c Cursor) (null bool, err error) {
	b, err := c.Next(ctx, 1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, cherr.New(cherr.KindInvalidTag, "nullable tag byte was neither 0 nor 1")
	}
}

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
	"github.com/sneller-chcore/chgo/chframe"
)

// AppendString appends a LEB128 length prefix followed by s's bytes.
// UTF-8 validity is not enforced on encode, matching the server's own
// leniency.
func AppendString(dst []byte, s string) []byte {
	dst = chframe.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// AppendBytes is AppendString for a raw byte slice.
func AppendBytes(dst []byte, b []byte) []byte {
	dst = chframe.AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

// AppendFixedBytes appends exactly n bytes with no length prefix
// (FixedString(n)). The caller must supply exactly n bytes; shorter
// input is zero-padded, matching the server's own FixedString semantics.
func AppendFixedBytes(dst []byte, b []byte, n int) []byte {
	dst = append(dst, b...)
	for i := len(b); i < n; i++ {
		dst = append(dst, 0)
	}
	return dst
}

// decodeLeb128 reads a LEB128 length prefix one byte at a time (the
// Cursor contract only supports fixed-size reads).
func decodeLeb128(ctx context.Context, c Cursor) (uint64, error) {
	var buf []byte
	for i := 0; i < 10; i++ {
		b, err := c.Next(ctx, 1)
		if err != nil {
			return 0, err
		}
		buf = append(buf, b[0])
		if b[0] < 0x80 {
			v, _, err := chframe.DecodeUvarint(buf)
			return v, err
		}
	}
	return 0, cherr.New(cherr.KindInvalidLeb128, "varint overflows 10 bytes")
}

// DecodeBytes reads a LEB128-length-prefixed byte string and returns a
// owned copy (valid past the next Cursor call).
func DecodeBytes(ctx context.Context, c Cursor) ([]byte, error) {
	n, err := decodeLeb128(ctx, c)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	b, err := c.Next(ctx, int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// DecodeString is DecodeBytes with the result converted to a string.
func DecodeString(ctx context.Context, c Cursor) (string, error) {
	b, err := DecodeBytes(ctx, c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeFixedBytes reads exactly n unprefixed bytes (FixedString(n)).
func DecodeFixedBytes(ctx context.Context, c Cursor, n int) ([]byte, error) {
	b, err := c.Next(ctx, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// DecodeLen reads a LEB128 sequence-length prefix (Array/Map element
// count). Exported so chschema and higher layers can read the count
// ahead of dispatching per-element decode calls.
func DecodeLen(ctx context.Context, c Cursor) (int, error) {
	n, err := decodeLeb128(ctx, c)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// AppendLen appends a LEB128 sequence-length prefix.
func AppendLen(dst []byte, n int) []byte {
	return chframe.AppendUvarint(dst, uint64(n))
}

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

package chframe

import (
	"context"

	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/chtype"
)

// Column is one entry of a parsed column vector: a name paired with its
// server-declared type.
type Column struct {
	Name string
	Type chtype.DataType
}

// ParseHeader reads the leading column-name/column-type preamble of a
// RowBinaryWithNamesAndTypes stream:
//
//	[LEB128 num_columns]
//	[LEB128 len][name bytes]  × num_columns
//	[LEB128 len][type bytes]  × num_columns
//
// It is called exactly once per cursor lifetime, before any row is read.
func ParseHeader(ctx context.Context, r *FrameReader) ([]Column, error) {
	numColumns, err := readLeb128(ctx, r)
	if err != nil {
		return nil, err
	}
	if numColumns == 0 {
		return nil, cherr.New(cherr.KindHeaderParsing, "header declares zero columns")
	}

	names := make([]string, numColumns)
	for i := range names {
		s, err := readLenPrefixed(ctx, r)
		if err != nil {
			return nil, cherr.Wrap(cherr.KindHeaderParsing, "reading column name", err)
		}
		names[i] = string(s)
	}

	cols := make([]Column, numColumns)
	for i := range cols {
		s, err := readLenPrefixed(ctx, r)
		if err != nil {
			return nil, cherr.Wrap(cherr.KindHeaderParsing, "reading column type", err)
		}
		t, err := chtype.Parse(string(s))
		if err != nil {
			return nil, cherr.Wrap(cherr.KindHeaderParsing, "parsing column type "+string(s), err)
		}
		cols[i] = Column{Name: names[i], Type: t}
	}
	return cols, nil
}

func readLeb128(ctx context.Context, r *FrameReader) (uint64, error) {
	// LEB128 values are self-delimiting but FrameReader.Next requires a
	// known byte count up front, so read one byte at a time until the
	// continuation bit clears.
	var buf []byte
	for i := 0; i < 10; i++ {
		b, err := r.Next(ctx, 1)
		if err != nil {
			return 0, err
		}
		buf = append(buf, b[0])
		if b[0] < 0x80 {
			v, _, err := DecodeUvarint(buf)
			return v, err
		}
	}
	return 0, cherr.New(cherr.KindInvalidLeb128, "varint overflows 10 bytes")
}

func readLenPrefixed(ctx context.Context, r *FrameReader) ([]byte, error) {
	n, err := readLeb128(ctx, r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	b, err := r.Next(ctx, int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

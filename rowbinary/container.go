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

// AppendArray encodes an Array(T): a LEB128 count followed by each
// element in turn, via encodeElem. The Go slice elems always has a known
// length, which is what satisfies the wire format's
// SequenceMustHaveLength contract — there is no
// unknown-length path to reject at runtime because the type system
// already requires one.
func AppendArray[T any](dst []byte, elems []T, encodeElem func([]byte, T) []byte) []byte {
	dst = AppendLen(dst, len(elems))
	for _, e := range elems {
		dst = encodeElem(dst, e)
	}
	return dst
}

// DecodeArray decodes an Array(T) into a freshly allocated slice.
func DecodeArray[T any](ctx context.Context, c Cursor, decodeElem func(context.Context, Cursor) (T, error)) ([]T, error) {
	n, err := DecodeLen(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		v, err := decodeElem(ctx, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// MapEntry is one key/value pair of a Map(K,V) column.
type MapEntry[K, V any] struct {
	Key   K
	Value V
}

// AppendMap encodes a Map(K,V): a LEB128 count followed by count ×
// (key, value).
func AppendMap[K, V any](dst []byte, entries []MapEntry[K, V], encodeKey func([]byte, K) []byte, encodeValue func([]byte, V) []byte) []byte {
	dst = AppendLen(dst, len(entries))
	for _, e := range entries {
		dst = encodeKey(dst, e.Key)
		dst = encodeValue(dst, e.Value)
	}
	return dst
}

// DecodeMap decodes a Map(K,V) into a freshly allocated slice of entries
// (order preserved, since RowBinary maps are not required to be sorted).
func DecodeMap[K, V any](ctx context.Context, c Cursor, decodeKey func(context.Context, Cursor) (K, error), decodeValue func(context.Context, Cursor) (V, error)) ([]MapEntry[K, V], error) {
	n, err := DecodeLen(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]MapEntry[K, V], n)
	for i := range out {
		k, err := decodeKey(ctx, c)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(ctx, c)
		if err != nil {
			return nil, err
		}
		out[i] = MapEntry[K, V]{Key: k, Value: v}
	}
	return out, nil
}

// AppendEnum8 appends an Enum8 discriminant as Int8.
func AppendEnum8(dst []byte, v int8) []byte { return AppendInt(dst, v) }

// DecodeEnum8 reads an Enum8 discriminant.
func DecodeEnum8(ctx context.Context, c Cursor) (int8, error) { return DecodeInt[int8](ctx, c) }

// AppendEnum16 appends an Enum16 discriminant as Int16.
func AppendEnum16(dst []byte, v int16) []byte { return AppendInt(dst, v) }

// DecodeEnum16 reads an Enum16 discriminant.
func DecodeEnum16(ctx context.Context, c Cursor) (int16, error) { return DecodeInt[int16](ctx, c) }

// AppendVariantTag appends a Variant discriminator: a UInt8 index into
// the column's alternative list.
func AppendVariantTag(dst []byte, alt uint8) []byte { return append(dst, alt) }

// DecodeVariantTag reads a Variant discriminator, failing with
// KindInvalidTag if it does not index into an alternative list of length
// numAlts.
func DecodeVariantTag(ctx context.Context, c Cursor, numAlts int) (uint8, error) {
	b, err := c.Next(ctx, 1)
	if err != nil {
		return 0, err
	}
	if int(b[0]) >= numAlts {
		return 0, cherr.New(cherr.KindInvalidTag, "variant discriminator out of range")
	}
	return b[0], nil
}

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

// Package chschema cross-checks the wire primitive call the codec is
// about to perform against the server's declared column type, in
// lock-step with (de)serialization.
package chschema

import (
	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/chtype"
)

// Mode selects how much validation work the cursor does per row.
type Mode int

const (
	// Disabled skips validation entirely; the caller is trusting a prior
	// EachRow pass (typically at cursor construction) already confirmed
	// the shape.
	Disabled Mode = iota
	// EachRow validates every primitive call against every column.
	EachRow
)

// CallKind tags the wire primitive call the codec is about to perform,
// mirroring the serialize/deserialize operations a codec performs.
type CallKind int

const (
	CallBool CallKind = iota
	CallI8
	CallI16
	CallI32
	CallI64
	CallI128
	CallI256
	CallU8
	CallU16
	CallU32
	CallU64
	CallU128
	CallU256
	CallF32
	CallF64
	CallStr
	CallBytes
	CallOption
	CallSeq
	CallTuple
	CallMap
	CallEnum
)

// Call describes one primitive operation the codec is about to perform.
// Len carries the FixedString/Tuple/Map arity where the call kind needs
// one (e.g. CallBytes: the declared fixed length; CallTuple: the
// descriptor's element count).
type Call struct {
	Kind CallKind
	Len  int
}

// Validate checks call against t (the column's declared type, transparent
// LowCardinality already or not — Validate strips it), returning the
// inner type to descend into for calls that imply a descent (Option,
// Seq, Map) or the i'th element type for Tuple via ValidateTupleElem.
// column and allColumns feed cherr.SchemaMismatch's diagnostic on
// failure.
func Validate(call Call, t chtype.DataType, column string, allColumns []string) (descend *chtype.DataType, err error) {
	// Only an Option call is allowed to see through Nullable; every other
	// call sees through LowCardinality only, so a non-Option call against
	// a Nullable column falls through to the mismatch at the bottom (the
	// codec is expected to issue Option first and recurse with the inner
	// type it returns).
	t2 := stripLowCardinalityOnly(t)

	switch call.Kind {
	case CallOption:
		if t2.Kind != chtype.KindNullable {
			return nil, mismatch(column, t, "Option", allColumns)
		}
		return t2.Elem, nil
	case CallBool:
		if t2.Kind == chtype.KindBool || t2.Kind == chtype.KindUInt8 {
			return nil, nil
		}
	case CallI8:
		if t2.Kind == chtype.KindInt8 || t2.Kind == chtype.KindEnum8 {
			return nil, nil
		}
	case CallI16:
		if t2.Kind == chtype.KindInt16 || t2.Kind == chtype.KindEnum16 {
			return nil, nil
		}
	case CallI32:
		if t2.Kind == chtype.KindInt32 || t2.Kind == chtype.KindDate32 || isDecimalOfSize(t2, chtype.Decimal32) {
			return nil, nil
		}
	case CallI64:
		if t2.Kind == chtype.KindInt64 || t2.Kind == chtype.KindDateTime64 || isDecimalOfSize(t2, chtype.Decimal64) {
			return nil, nil
		}
	case CallI128:
		if t2.Kind == chtype.KindInt128 || isDecimalOfSize(t2, chtype.Decimal128) {
			return nil, nil
		}
	case CallI256:
		if t2.Kind == chtype.KindInt256 || isDecimalOfSize(t2, chtype.Decimal256) {
			return nil, nil
		}
	case CallU8:
		if t2.Kind == chtype.KindUInt8 {
			return nil, nil
		}
	case CallU16:
		if t2.Kind == chtype.KindUInt16 || t2.Kind == chtype.KindDate {
			return nil, nil
		}
	case CallU32:
		if t2.Kind == chtype.KindUInt32 || t2.Kind == chtype.KindDateTime || t2.Kind == chtype.KindIPv4 {
			return nil, nil
		}
	case CallU64:
		if t2.Kind == chtype.KindUInt64 {
			return nil, nil
		}
	case CallU128:
		if t2.Kind == chtype.KindUInt128 {
			return nil, nil
		}
	case CallU256:
		if t2.Kind == chtype.KindUInt256 {
			return nil, nil
		}
	case CallF32:
		if t2.Kind == chtype.KindFloat32 || t2.Kind == chtype.KindBFloat16 {
			return nil, nil
		}
	case CallF64:
		if t2.Kind == chtype.KindFloat64 {
			return nil, nil
		}
	case CallStr:
		if t2.Kind == chtype.KindString || t2.Kind == chtype.KindJSON {
			return nil, nil
		}
	case CallBytes:
		if t2.Kind == chtype.KindString {
			return nil, nil
		}
		if t2.Kind == chtype.KindFixedString && t2.FixedLen == call.Len {
			return nil, nil
		}
	case CallSeq:
		if t2.Kind == chtype.KindArray {
			return t2.Elem, nil
		}
		if t2.Kind == chtype.KindMap {
			return nil, nil // caller descends via ValidateMapKV instead
		}
	case CallTuple:
		switch t2.Kind {
		case chtype.KindTuple:
			if len(t2.Elems) == call.Len {
				return nil, nil
			}
		case chtype.KindFixedString:
			if t2.FixedLen == call.Len {
				return nil, nil
			}
		case chtype.KindIPv6:
			if call.Len == 16 {
				return nil, nil
			}
		case chtype.KindUUID:
			if call.Len == 2 {
				return nil, nil
			}
		}
	case CallMap:
		if t2.Kind == chtype.KindMap {
			return nil, nil
		}
	case CallEnum:
		if t2.Kind == chtype.KindVariant {
			return nil, nil
		}
	}
	return nil, mismatch(column, t, callName(call.Kind), allColumns)
}

// ValidateTupleElem returns the i'th element type of a Tuple(...) column
// for a codec that has already passed a CallTuple check.
func ValidateTupleElem(t chtype.DataType, i int) chtype.DataType {
	t2 := stripLowCardinalityOnly(t)
	switch t2.Kind {
	case chtype.KindTuple:
		return t2.Elems[i]
	default:
		return t2
	}
}

// ValidateMapKV returns the (key, value) element types of a Map(K,V)
// column for a codec that has already passed a CallMap/CallSeq(Map)
// check.
func ValidateMapKV(t chtype.DataType) (key, value chtype.DataType) {
	t2 := stripLowCardinalityOnly(t)
	return *t2.Key, *t2.Value
}

// ValidateEnumValue checks that value is a member of t's Enum8/Enum16
// map: I8/I16 enum calls additionally check value ∈ enum map.
func ValidateEnumValue(t chtype.DataType, value int32, column string, allColumns []string) error {
	t2 := stripLowCardinalityOnly(t)
	if t2.Kind != chtype.KindEnum8 && t2.Kind != chtype.KindEnum16 {
		return nil
	}
	for _, e := range t2.Enum {
		if e.Value == value {
			return nil
		}
	}
	return mismatch(column, t, "enum value check", allColumns)
}

func isDecimalOfSize(t chtype.DataType, size chtype.DecimalSize) bool {
	return t.Kind == chtype.KindDecimal && t.DecimalSizeBits == size
}

func stripLowCardinalityOnly(t chtype.DataType) chtype.DataType {
	for t.Kind == chtype.KindLowCardinality {
		t = *t.Elem
	}
	return t
}

func mismatch(column string, t chtype.DataType, wireCall string, allColumns []string) error {
	return cherr.AsSchemaMismatch(column, chtype.Render(t), wireCall, allColumns)
}

func callName(k CallKind) string {
	switch k {
	case CallBool:
		return "Bool"
	case CallI8:
		return "I8"
	case CallI16:
		return "I16"
	case CallI32:
		return "I32"
	case CallI64:
		return "I64"
	case CallI128:
		return "I128"
	case CallI256:
		return "I256"
	case CallU8:
		return "U8"
	case CallU16:
		return "U16"
	case CallU32:
		return "U32"
	case CallU64:
		return "U64"
	case CallU128:
		return "U128"
	case CallU256:
		return "U256"
	case CallF32:
		return "F32"
	case CallF64:
		return "F64"
	case CallStr:
		return "Str"
	case CallBytes:
		return "Bytes"
	case CallOption:
		return "Option"
	case CallSeq:
		return "Seq"
	case CallTuple:
		return "Tuple"
	case CallMap:
		return "Map"
	case CallEnum:
		return "Enum"
	default:
		return "unknown"
	}
}

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

package chtype

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render renders a DataType back to the server's textual grammar. The
// result always round-trips through Parse to an equal DataType (modulo
// Enum entry order: Render always emits entries sorted by numeric value,
// for Parse).
func Render(d DataType) string {
	var b strings.Builder
	renderInto(&b, d)
	return b.String()
}

func renderInto(b *strings.Builder, d DataType) {
	switch d.Kind {
	case KindUInt8:
		b.WriteString("UInt8")
	case KindUInt16:
		b.WriteString("UInt16")
	case KindUInt32:
		b.WriteString("UInt32")
	case KindUInt64:
		b.WriteString("UInt64")
	case KindUInt128:
		b.WriteString("UInt128")
	case KindUInt256:
		b.WriteString("UInt256")
	case KindInt8:
		b.WriteString("Int8")
	case KindInt16:
		b.WriteString("Int16")
	case KindInt32:
		b.WriteString("Int32")
	case KindInt64:
		b.WriteString("Int64")
	case KindInt128:
		b.WriteString("Int128")
	case KindInt256:
		b.WriteString("Int256")
	case KindFloat32:
		b.WriteString("Float32")
	case KindFloat64:
		b.WriteString("Float64")
	case KindBFloat16:
		b.WriteString("BFloat16")
	case KindBool:
		b.WriteString("Bool")
	case KindString:
		b.WriteString("String")
	case KindFixedString:
		fmt.Fprintf(b, "FixedString(%d)", d.FixedLen)
	case KindUUID:
		b.WriteString("UUID")
	case KindIPv4:
		b.WriteString("IPv4")
	case KindIPv6:
		b.WriteString("IPv6")
	case KindDate:
		b.WriteString("Date")
	case KindDate32:
		b.WriteString("Date32")
	case KindDateTime:
		if d.Timezone == "" {
			b.WriteString("DateTime")
		} else {
			b.WriteString("DateTime(")
			writeQuoted(b, d.Timezone)
			b.WriteByte(')')
		}
	case KindDateTime64:
		b.WriteString("DateTime64(")
		b.WriteString(strconv.Itoa(d.Precision))
		if d.Timezone != "" {
			b.WriteString(", ")
			writeQuoted(b, d.Timezone)
		}
		b.WriteByte(')')
	case KindDecimal:
		fmt.Fprintf(b, "Decimal(%d, %d)", d.DecimalPrecision, d.DecimalScale)
	case KindNullable:
		b.WriteString("Nullable(")
		renderInto(b, *d.Elem)
		b.WriteByte(')')
	case KindLowCardinality:
		b.WriteString("LowCardinality(")
		renderInto(b, *d.Elem)
		b.WriteByte(')')
	case KindArray:
		b.WriteString("Array(")
		renderInto(b, *d.Elem)
		b.WriteByte(')')
	case KindTuple:
		b.WriteString("Tuple(")
		for i, e := range d.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			renderInto(b, e)
		}
		b.WriteByte(')')
	case KindMap:
		b.WriteString("Map(")
		renderInto(b, *d.Key)
		b.WriteString(", ")
		renderInto(b, *d.Value)
		b.WriteByte(')')
	case KindVariant:
		b.WriteString("Variant(")
		for i, e := range d.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			renderInto(b, e)
		}
		b.WriteByte(')')
	case KindEnum8:
		b.WriteString("Enum8(")
		writeEnumEntries(b, d.Enum)
		b.WriteByte(')')
	case KindEnum16:
		b.WriteString("Enum16(")
		writeEnumEntries(b, d.Enum)
		b.WriteByte(')')
	case KindDynamic:
		b.WriteString("Dynamic")
	case KindJSON:
		b.WriteString("JSON")
	default:
		fmt.Fprintf(b, "<unknown kind %d>", d.Kind)
	}
}

func writeEnumEntries(b *strings.Builder, entries []EnumEntry) {
	sorted := make([]EnumEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })
	for i, e := range sorted {
		if i > 0 {
			b.WriteString(", ")
		}
		writeQuoted(b, e.Name)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(int(e.Value)))
	}
}

// writeQuoted writes s as a 'single-quoted' string, backslash-escaping
// any embedded quote or backslash.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
}

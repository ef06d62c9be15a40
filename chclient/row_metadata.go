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

package chclient

import (
	"strings"

	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/chframe"
	"github.com/sneller-chcore/chgo/chschema"
	"github.com/sneller-chcore/chgo/chtype"
)

// AccessType selects how a RowCursor maps server column index to struct
// field index while decoding a KindStruct row.
type AccessType int

const (
	// SequentialAccess means the struct's declared field order already
	// matches the schema order; decoding is a zero-overhead linear scan.
	SequentialAccess AccessType = iota
	// MapAccess means the server's column order differs from the
	// struct's declared field order (but the name sets match);
	// Permutation[structFieldIndex] gives the schema column index to
	// read that field from. This path is ~40% slower.
	MapAccess
)

// RowMetadata is computed once per (RowDescriptor, server-schema) pair
// and never mutated afterward, so it is safely shared by pointer across
// the metadata cache and any concurrent cursors/inserts that target the
// same table.
type RowMetadata struct {
	Columns     []chframe.Column
	Access      AccessType
	Permutation []int // valid only when Access == MapAccess
	TypeHints   [][]chtype.TypeHint
	// Mode controls whether a Row.Decode implementation is expected to
	// call chschema.Validate per field (EachRow) or skip validation on
	// the hot path, trusting the header-time pre-check (Disabled).
	Mode chschema.Mode
}

// NewRowMetadata validates desc against columns and builds a
// *RowMetadata, computing the field-order permutation for KindStruct
// rows. Mismatches are reported as cherr.KindRowSchemaMismatch errors
// rather than panics, so the first decode of a mismatched row surfaces
// the problem as an ordinary error return.
func NewRowMetadata(desc RowDescriptor, columns []chframe.Column, mode chschema.Mode) (*RowMetadata, error) {
	hints := make([][]chtype.TypeHint, len(columns))
	for i, c := range columns {
		hints[i] = chtype.Hints(c.Type)
	}

	switch desc.Kind {
	case KindPrimitive, KindVec:
		if len(columns) != 1 {
			return nil, rowKindMismatch(desc, columns, "expected exactly 1 column")
		}
		return &RowMetadata{Columns: columns, Access: SequentialAccess, TypeHints: hints, Mode: mode}, nil

	case KindTuple:
		if desc.ColumnCount != len(columns) {
			return nil, rowKindMismatch(desc, columns, "")
		}
		return &RowMetadata{Columns: columns, Access: SequentialAccess, TypeHints: hints, Mode: mode}, nil

	case KindStruct:
		if len(columns) != len(desc.ColumnNames) {
			return nil, rowKindMismatch(desc, columns, "")
		}
		permutation := make([]int, len(desc.ColumnNames))
		useMap := false
		for schemaIdx, col := range columns {
			fieldIdx := indexOf(desc.ColumnNames, col.Name)
			if fieldIdx < 0 {
				return nil, cherr.AsRowSchemaMismatch("struct", len(desc.ColumnNames), len(columns),
					"column "+col.Name+" was not found in the struct definition")
			}
			if fieldIdx != schemaIdx {
				useMap = true
			}
			permutation[fieldIdx] = schemaIdx
		}
		access := SequentialAccess
		if useMap {
			access = MapAccess
		}
		return &RowMetadata{Columns: columns, Access: access, Permutation: permutation, TypeHints: hints, Mode: mode}, nil

	default:
		return nil, cherr.New(cherr.KindRowSchemaMismatch, "unknown row kind")
	}
}

// SchemaIndex maps a declared struct field index to the server column
// index it should be read from.
func (m *RowMetadata) SchemaIndex(fieldIdx int) int {
	if m.Access == MapAccess {
		return m.Permutation[fieldIdx]
	}
	return fieldIdx
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func rowKindMismatch(desc RowDescriptor, columns []chframe.Column, details string) error {
	hint := "server columns: " + strings.Join(columnNamesHint(columns), ", ")
	if details == "" {
		details = hint
	} else {
		details += "; " + hint
	}
	expected := desc.ColumnCount
	switch desc.Kind {
	case KindPrimitive, KindVec:
		expected = 1
	case KindStruct:
		expected = len(desc.ColumnNames)
	}
	return cherr.AsRowSchemaMismatch(kindName(desc.Kind), expected, len(columns), details)
}

func kindName(k RowKind) string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindVec:
		return "vector"
	default:
		return "unknown"
	}
}

// columnNamesHint renders a schema's columns for diagnostics, one
// "name: Type" string per column.
func columnNamesHint(columns []chframe.Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		var b strings.Builder
		b.WriteString(c.Name)
		b.WriteString(": ")
		b.WriteString(chtype.Render(c.Type))
		out[i] = b.String()
	}
	return out
}

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

package cherr

import (
	"fmt"
	"strings"
)

// SchemaMismatch carries everything needed to diagnose a validator
// rejection: the column that failed, the server's rendered type for it,
// the wire primitive the codec attempted, and every column in the schema
// (so an application can print the whole table shape, not just the one
// offending field).
type SchemaMismatch struct {
	Column     string
	ServerType string
	WireCall   string
	AllColumns []string
}

func (s *SchemaMismatch) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "column %q has type %s, which is incompatible with the requested wire call %s",
		s.Column, s.ServerType, s.WireCall)
	if len(s.AllColumns) > 0 {
		b.WriteString("\n#### all schema columns:\n")
		for _, c := range s.AllColumns {
			b.WriteString("- ")
			b.WriteString(c)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// AsSchemaMismatch builds a *Error of KindSchemaMismatch wrapping a
// *SchemaMismatch.
func AsSchemaMismatch(column, serverType, wireCall string, allColumns []string) *Error {
	return Wrap(KindSchemaMismatch, "", &SchemaMismatch{
		Column:     column,
		ServerType: serverType,
		WireCall:   wireCall,
		AllColumns: allColumns,
	})
}

// RowSchemaMismatch describes an incompatibility between the application's
// static RowDescriptor and the server-sent column header: either a column
// count mismatch, or (for Struct rows) a mismatched name set.
type RowSchemaMismatch struct {
	RowKind      string
	ExpectedCols int
	GotCols      int
	Details      string
}

func (r *RowSchemaMismatch) Error() string {
	msg := fmt.Sprintf("while processing a %s row: database schema has %d columns, but the row type declares %d",
		r.RowKind, r.GotCols, r.ExpectedCols)
	if r.Details != "" {
		msg += ": " + r.Details
	}
	return msg
}

// AsRowSchemaMismatch builds a *Error of KindRowSchemaMismatch wrapping a
// *RowSchemaMismatch.
func AsRowSchemaMismatch(rowKind string, expectedCols, gotCols int, details string) *Error {
	return Wrap(KindRowSchemaMismatch, "", &RowSchemaMismatch{
		RowKind:      rowKind,
		ExpectedCols: expectedCols,
		GotCols:      gotCols,
		Details:      details,
	})
}

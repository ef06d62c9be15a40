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

// Package chclient is the client-facing surface: the RowCursor and
// BytesCursor read paths, the InsertPipeline and Inserter write paths,
// the process-wide MetadataCache, and the Transport interface the core
// consumes instead of doing its own HTTP.
package chclient

import (
	"context"

	"github.com/sneller-chcore/chgo/rowbinary"
)

// RowKind tags the shape of an application record type, mirroring
// RowDescriptor.Kind.
type RowKind int

const (
	// KindPrimitive rows decode a single scalar column.
	KindPrimitive RowKind = iota
	// KindTuple rows decode a fixed sequence of columns positionally,
	// with no name matching.
	KindTuple
	// KindStruct rows decode named columns, tolerating server column
	// order that differs from the declared field order.
	KindStruct
	// KindVec rows decode a single Array(T) column into a Go slice.
	KindVec
)

// RowDescriptor is the static, application-supplied shape of a row type:
// everything RowMetadata needs to validate against the server schema,
// independent of any particular (de)serialization call.
type RowDescriptor struct {
	Name        string
	ColumnNames []string // KindStruct only, declared field order
	ColumnCount int
	Kind        RowKind
}

// Row is implemented by application record types. There is deliberately
// no struct-tag/reflection derive layer here — a caller writes
// Encode/Decode the way it would hand-write a Marshal/Unmarshal
// implementation for encoding/json.
type Row interface {
	Descriptor() RowDescriptor
	// Encode appends this row's wire encoding to dst. m is nil when
	// encoding outside any schema pre-check (e.g. in contexts where the
	// server schema has not been fetched); implementations that need
	// column types for e.g. Decimal scale must consult m themselves.
	Encode(dst []byte, m *RowMetadata) ([]byte, error)
	// Decode populates the receiver's fields from c, consulting m for
	// the server's column types and (for KindStruct) any field-order
	// permutation.
	Decode(ctx context.Context, c rowbinary.Cursor, m *RowMetadata) error
}

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
	"testing"

	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/chframe"
	"github.com/sneller-chcore/chgo/chschema"
	"github.com/sneller-chcore/chgo/chtype"
)

func col(name string, t chtype.DataType) chframe.Column {
	return chframe.Column{Name: name, Type: t}
}

func TestNewRowMetadataPrimitive(t *testing.T) {
	desc := RowDescriptor{Kind: KindPrimitive}
	m, err := NewRowMetadata(desc, []chframe.Column{col("v", chtype.UInt64)}, chschema.EachRow)
	if err != nil {
		t.Fatalf("NewRowMetadata: %v", err)
	}
	if m.Access != SequentialAccess {
		t.Fatalf("expected SequentialAccess for a primitive row")
	}
}

func TestNewRowMetadataPrimitiveRejectsMultipleColumns(t *testing.T) {
	desc := RowDescriptor{Kind: KindPrimitive}
	_, err := NewRowMetadata(desc, []chframe.Column{col("a", chtype.UInt64), col("b", chtype.String)}, chschema.EachRow)
	if !cherr.Is(err, cherr.KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch, got %v", err)
	}
}

func TestNewRowMetadataTupleArityMismatch(t *testing.T) {
	desc := RowDescriptor{Kind: KindTuple, ColumnCount: 2}
	_, err := NewRowMetadata(desc, []chframe.Column{col("a", chtype.UInt64)}, chschema.EachRow)
	if !cherr.Is(err, cherr.KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch, got %v", err)
	}
}

func TestNewRowMetadataTupleMatches(t *testing.T) {
	desc := RowDescriptor{Kind: KindTuple, ColumnCount: 2}
	m, err := NewRowMetadata(desc, []chframe.Column{col("a", chtype.UInt64), col("b", chtype.String)}, chschema.EachRow)
	if err != nil {
		t.Fatalf("NewRowMetadata: %v", err)
	}
	if m.Access != SequentialAccess {
		t.Fatalf("expected SequentialAccess for a tuple row")
	}
}

func TestNewRowMetadataStructSequentialWhenOrderMatches(t *testing.T) {
	desc := RowDescriptor{Kind: KindStruct, ColumnNames: []string{"id", "name"}}
	m, err := NewRowMetadata(desc, []chframe.Column{col("id", chtype.UInt64), col("name", chtype.String)}, chschema.EachRow)
	if err != nil {
		t.Fatalf("NewRowMetadata: %v", err)
	}
	if m.Access != SequentialAccess {
		t.Fatalf("expected SequentialAccess when server order matches struct field order")
	}
}

func TestNewRowMetadataStructMapAccessWhenOrderDiffers(t *testing.T) {
	desc := RowDescriptor{Kind: KindStruct, ColumnNames: []string{"id", "name"}}
	m, err := NewRowMetadata(desc, []chframe.Column{col("name", chtype.String), col("id", chtype.UInt64)}, chschema.EachRow)
	if err != nil {
		t.Fatalf("NewRowMetadata: %v", err)
	}
	if m.Access != MapAccess {
		t.Fatalf("expected MapAccess when server column order differs")
	}
	// field 0 ("id") lives at schema index 1; field 1 ("name") at schema index 0.
	if m.SchemaIndex(0) != 1 || m.SchemaIndex(1) != 0 {
		t.Fatalf("unexpected permutation: %v", m.Permutation)
	}
}

func TestNewRowMetadataStructMissingColumn(t *testing.T) {
	desc := RowDescriptor{Kind: KindStruct, ColumnNames: []string{"id", "name"}}
	_, err := NewRowMetadata(desc, []chframe.Column{col("id", chtype.UInt64), col("unexpected", chtype.String)}, chschema.EachRow)
	if !cherr.Is(err, cherr.KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch, got %v", err)
	}
}

func TestNewRowMetadataStructColumnCountMismatch(t *testing.T) {
	desc := RowDescriptor{Kind: KindStruct, ColumnNames: []string{"id", "name"}}
	_, err := NewRowMetadata(desc, []chframe.Column{col("id", chtype.UInt64)}, chschema.EachRow)
	if !cherr.Is(err, cherr.KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch, got %v", err)
	}
}

func TestNewRowMetadataVecSingleColumn(t *testing.T) {
	desc := RowDescriptor{Kind: KindVec}
	m, err := NewRowMetadata(desc, []chframe.Column{col("v", chtype.ArrayOf(chtype.UInt32))}, chschema.Disabled)
	if err != nil {
		t.Fatalf("NewRowMetadata: %v", err)
	}
	if m.Mode != chschema.Disabled {
		t.Fatalf("expected Mode to carry through from the constructor argument")
	}
}

func TestNewRowMetadataUnknownKind(t *testing.T) {
	desc := RowDescriptor{Kind: RowKind(99)}
	_, err := NewRowMetadata(desc, []chframe.Column{col("a", chtype.UInt64)}, chschema.EachRow)
	if !cherr.Is(err, cherr.KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch, got %v", err)
	}
}

func TestRowKindMismatchDetailsIncludesColumnHint(t *testing.T) {
	desc := RowDescriptor{Kind: KindPrimitive}
	_, err := NewRowMetadata(desc, []chframe.Column{col("a", chtype.UInt64), col("b", chtype.String)}, chschema.EachRow)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !cherr.Is(err, cherr.KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "a: UInt64") || !strings.Contains(msg, "b: String") {
		t.Fatalf("Error() = %q, want it to mention both server columns", msg)
	}
}

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
	"errors"
	"strings"
	"testing"
)

func TestAsSchemaMismatchKindAndMessage(t *testing.T) {
	err := AsSchemaMismatch("age", "String", "I64", []string{"age", "name"})
	if !Is(err, KindSchemaMismatch) {
		t.Fatalf("expected KindSchemaMismatch")
	}
	msg := err.Error()
	for _, want := range []string{"age", "String", "I64", "name"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestAsSchemaMismatchUnwrapsToSchemaMismatch(t *testing.T) {
	err := AsSchemaMismatch("age", "String", "I64", nil)
	var sm *SchemaMismatch
	if !errors.As(error(err), &sm) {
		t.Fatalf("expected *SchemaMismatch to be reachable via Unwrap")
	}
	if sm.Column != "age" || sm.ServerType != "String" || sm.WireCall != "I64" {
		t.Fatalf("unexpected SchemaMismatch fields: %+v", sm)
	}
}

func TestAsRowSchemaMismatchKindAndMessage(t *testing.T) {
	err := AsRowSchemaMismatch("Struct", 3, 4, "server columns: a, b, c, d")
	if !Is(err, KindRowSchemaMismatch) {
		t.Fatalf("expected KindRowSchemaMismatch")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Struct") || !strings.Contains(msg, "server columns") {
		t.Fatalf("Error() = %q, missing expected substrings", msg)
	}
}

func TestRowSchemaMismatchWithoutDetails(t *testing.T) {
	err := AsRowSchemaMismatch("Tuple", 2, 2, "")
	msg := err.Error()
	if strings.Contains(msg, ":  ") {
		t.Fatalf("Error() = %q, should not have a trailing empty details separator", msg)
	}
}

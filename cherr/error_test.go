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
	"fmt"
	"testing"
)

func TestIsMatchesSameKind(t *testing.T) {
	err := New(KindTimedOut, "send timeout fired")
	if !Is(err, KindTimedOut) {
		t.Fatalf("Is(err, KindTimedOut) = false, want true")
	}
	if Is(err, KindTransport) {
		t.Fatalf("Is(err, KindTransport) = true, want false")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindTransport, "POST /query failed", cause)
	wrapped := fmt.Errorf("client: %w", err)
	if !Is(wrapped, KindTransport) {
		t.Fatalf("Is should see through fmt.Errorf wrapping")
	}
}

func TestOfReportsFalseForPlainError(t *testing.T) {
	_, ok := Of(errors.New("plain"))
	if ok {
		t.Fatalf("Of(plain error) ok = true, want false")
	}
}

func TestOfReportsKind(t *testing.T) {
	err := New(KindRowNotFound, "")
	k, ok := Of(err)
	if !ok || k != KindRowNotFound {
		t.Fatalf("Of = (%v, %v), want (KindRowNotFound, true)", k, ok)
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(KindDecompression, "bad frame", cause)
	if errors.Unwrap(err) != cause {
		t.Fatalf("Unwrap did not return the wrapped cause")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}
}

func TestErrorStringIncludesKindAndText(t *testing.T) {
	err := New(KindTypeParsing, "unexpected token")
	msg := err.Error()
	if msg == "" {
		t.Fatalf("Error() returned empty string")
	}
	want := "type parsing: unexpected token"
	if msg != want {
		t.Fatalf("Error() = %q, want %q", msg, want)
	}
}

func TestErrorStringWithNoText(t *testing.T) {
	err := New(KindRowNotFound, "")
	if err.Error() != "row not found" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "row not found")
	}
}

func TestErrorStringWithTextAndCause(t *testing.T) {
	cause := errors.New("EOF")
	err := Wrap(KindNotEnoughData, "reading header", cause)
	want := "not enough data: reading header: EOF"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if KindCustom.String() != "custom" {
		t.Fatalf("KindCustom.String() = %q", KindCustom.String())
	}
	if Kind(999).String() != "unknown" {
		t.Fatalf("Kind(999).String() = %q, want %q", Kind(999).String(), "unknown")
	}
}

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
	"testing"

	"github.com/sneller-chcore/chgo/chtype"
)

func TestDecimal32RoundTrip(t *testing.T) {
	d := Decimal{Unscaled: -12345, Scale: 2, Size: chtype.Decimal32}
	buf := AppendDecimal(nil, d)
	c := &sliceCursor{buf: buf}
	got, err := DecodeDecimal(context.Background(), c, chtype.Decimal32, 2)
	if err != nil {
		t.Fatalf("DecodeDecimal: %v", err)
	}
	if got.Unscaled != -12345 || got.Size != chtype.Decimal32 {
		t.Fatalf("got %+v, want Unscaled=-12345", got)
	}
}

func TestDecimal64RoundTrip(t *testing.T) {
	d := Decimal{Unscaled: 1234567890123, Scale: 4, Size: chtype.Decimal64}
	buf := AppendDecimal(nil, d)
	c := &sliceCursor{buf: buf}
	got, err := DecodeDecimal(context.Background(), c, chtype.Decimal64, 4)
	if err != nil {
		t.Fatalf("DecodeDecimal: %v", err)
	}
	if got.Unscaled != 1234567890123 {
		t.Fatalf("got %+v, want Unscaled=1234567890123", got)
	}
}

func TestDecimal128RoundTrip(t *testing.T) {
	var wide Int256
	var v Int128
	for i := range v {
		v[i] = byte(i + 1)
	}
	copy(wide[:16], v[:])
	d := Decimal{Wide: wide, Scale: 6, Size: chtype.Decimal128}
	buf := AppendDecimal(nil, d)
	if len(buf) != 16 {
		t.Fatalf("AppendDecimal(Decimal128) wrote %d bytes, want 16", len(buf))
	}
	c := &sliceCursor{buf: buf}
	got, err := DecodeDecimal(context.Background(), c, chtype.Decimal128, 6)
	if err != nil {
		t.Fatalf("DecodeDecimal: %v", err)
	}
	var gotLow Int128
	copy(gotLow[:], got.Wide[:16])
	if gotLow != v {
		t.Fatalf("got low 16 bytes %v, want %v", gotLow, v)
	}
}

func TestDecimal128SignExtension(t *testing.T) {
	// a negative Decimal128 value (high bit of byte 15 set) must
	// sign-extend into bytes 16..31 of the widened Int256.
	var v Int128
	v[15] = 0x80
	d := Decimal{Wide: func() Int256 { var w Int256; copy(w[:16], v[:]); return w }(), Scale: 0, Size: chtype.Decimal128}
	buf := AppendDecimal(nil, d)
	c := &sliceCursor{buf: buf}
	got, err := DecodeDecimal(context.Background(), c, chtype.Decimal128, 0)
	if err != nil {
		t.Fatalf("DecodeDecimal: %v", err)
	}
	for i := 16; i < 32; i++ {
		if got.Wide[i] != 0xff {
			t.Fatalf("byte %d = %#x, want 0xff (sign extended)", i, got.Wide[i])
		}
	}
}

func TestDecimal256RoundTrip(t *testing.T) {
	var wide Int256
	for i := range wide {
		wide[i] = byte(i)
	}
	d := Decimal{Wide: wide, Scale: 8, Size: chtype.Decimal256}
	buf := AppendDecimal(nil, d)
	c := &sliceCursor{buf: buf}
	got, err := DecodeDecimal(context.Background(), c, chtype.Decimal256, 8)
	if err != nil {
		t.Fatalf("DecodeDecimal: %v", err)
	}
	if got.Wide != wide {
		t.Fatalf("got %v, want %v", got.Wide, wide)
	}
}

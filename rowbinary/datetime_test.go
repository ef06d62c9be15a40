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
)

func TestDateRoundTrip(t *testing.T) {
	buf := AppendDate(nil, 19000)
	c := &sliceCursor{buf: buf}
	if v, err := DecodeDate(context.Background(), c); err != nil || v != 19000 {
		t.Fatalf("got (%v, %v), want (19000, nil)", v, err)
	}
}

func TestDate32RoundTrip(t *testing.T) {
	buf := AppendDate32(nil, -500)
	c := &sliceCursor{buf: buf}
	if v, err := DecodeDate32(context.Background(), c); err != nil || v != -500 {
		t.Fatalf("got (%v, %v), want (-500, nil)", v, err)
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	buf := AppendDateTime(nil, 1690000000)
	c := &sliceCursor{buf: buf}
	if v, err := DecodeDateTime(context.Background(), c); err != nil || v != 1690000000 {
		t.Fatalf("got (%v, %v), want (1690000000, nil)", v, err)
	}
}

func TestDateTime64RoundTrip(t *testing.T) {
	buf := AppendDateTime64(nil, 1690000000123456789)
	c := &sliceCursor{buf: buf}
	if v, err := DecodeDateTime64(context.Background(), c); err != nil || v != 1690000000123456789 {
		t.Fatalf("got (%v, %v), want (1690000000123456789, nil)", v, err)
	}
}

func TestDateTime64Negative(t *testing.T) {
	// precision ticks may be negative for pre-epoch instants.
	buf := AppendDateTime64(nil, -123456789)
	c := &sliceCursor{buf: buf}
	if v, err := DecodeDateTime64(context.Background(), c); err != nil || v != -123456789 {
		t.Fatalf("got (%v, %v), want (-123456789, nil)", v, err)
	}
}

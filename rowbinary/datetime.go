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

import "context"

// AppendDate appends days (since 1970-01-01) as UInt16.
func AppendDate(dst []byte, days uint16) []byte { return AppendUint(dst, days) }

// DecodeDate reverses AppendDate.
func DecodeDate(ctx context.Context, c Cursor) (uint16, error) { return DecodeUint[uint16](ctx, c) }

// AppendDate32 appends days (since 1970-01-01, may be negative) as Int32.
func AppendDate32(dst []byte, days int32) []byte { return AppendInt(dst, days) }

// DecodeDate32 reverses AppendDate32.
func DecodeDate32(ctx context.Context, c Cursor) (int32, error) { return DecodeInt[int32](ctx, c) }

// AppendDateTime appends secs (since the Unix epoch) as UInt32.
func AppendDateTime(dst []byte, secs uint32) []byte { return AppendUint(dst, secs) }

// DecodeDateTime reverses AppendDateTime.
func DecodeDateTime(ctx context.Context, c Cursor) (uint32, error) { return DecodeUint[uint32](ctx, c) }

// AppendDateTime64 appends ticks (of 10^-precision seconds) as Int64. The
// precision itself lives in the column type, not on the wire.
func AppendDateTime64(dst []byte, ticks int64) []byte { return AppendInt(dst, ticks) }

// DecodeDateTime64 reverses AppendDateTime64.
func DecodeDateTime64(ctx context.Context, c Cursor) (int64, error) { return DecodeInt[int64](ctx, c) }

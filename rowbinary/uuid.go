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
	"encoding/binary"

	"github.com/google/uuid"
)

// AppendUUID appends id as two little-endian UInt64 words, each
// byte-swapped within itself relative to the canonical big-endian 16
// byte form.
func AppendUUID(dst []byte, id uuid.UUID) []byte {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	dst = AppendUint(dst, hi)
	dst = AppendUint(dst, lo)
	return dst
}

// DecodeUUID reverses AppendUUID.
func DecodeUUID(ctx context.Context, c Cursor) (uuid.UUID, error) {
	var id uuid.UUID
	hi, err := DecodeUint[uint64](ctx, c)
	if err != nil {
		return id, err
	}
	lo, err := DecodeUint[uint64](ctx, c)
	if err != nil {
		return id, err
	}
	binary.BigEndian.PutUint64(id[0:8], hi)
	binary.BigEndian.PutUint64(id[8:16], lo)
	return id, nil
}

// AppendIPv4 appends addr (4 bytes, network order) as the numeric value
// of those 4 bytes, little-endian on the wire.
func AppendIPv4(dst []byte, addr [4]byte) []byte {
	v := uint32(addr[0])<<24 | uint32(addr[1])<<16 | uint32(addr[2])<<8 | uint32(addr[3])
	return AppendUint(dst, v)
}

// DecodeIPv4 reverses AppendIPv4.
func DecodeIPv4(ctx context.Context, c Cursor) ([4]byte, error) {
	var addr [4]byte
	v, err := DecodeUint[uint32](ctx, c)
	if err != nil {
		return addr, err
	}
	addr[0] = byte(v >> 24)
	addr[1] = byte(v >> 16)
	addr[2] = byte(v >> 8)
	addr[3] = byte(v)
	return addr, nil
}

// AppendIPv6 appends addr's 16 bytes unchanged (network order on the
// wire).
func AppendIPv6(dst []byte, addr [16]byte) []byte {
	return append(dst, addr[:]...)
}

// DecodeIPv6 reverses AppendIPv6.
func DecodeIPv6(ctx context.Context, c Cursor) ([16]byte, error) {
	var addr [16]byte
	b, err := c.Next(ctx, 16)
	if err != nil {
		return addr, err
	}
	copy(addr[:], b)
	return addr, nil
}

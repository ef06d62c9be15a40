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

// Package chframe turns an inbound chunk stream into a logically
// contiguous byte view for the wire codec: LEB128 varints, the optional
// LZ4 block frame, and the rebuffering FrameReader that sits between the
// two.
package chframe

import "github.com/sneller-chcore/chgo/cherr"

// maxLeb128Bytes bounds a varint to 10 bytes (70 payload bits), enough
// for any uint64 with room to spare; the decoder rejects anything
// longer.
const maxLeb128Bytes = 10

// AppendUvarint appends the LEB128 encoding of v to dst and returns the
// extended slice. It always emits the minimal encoding.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// SizeUvarint returns the number of bytes AppendUvarint would emit for v.
func SizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// DecodeUvarint decodes a LEB128 varint from the front of src, returning
// the value and the number of bytes consumed. It returns
// cherr.KindNotEnoughData if src is exhausted before a terminating byte
// is seen, and cherr.KindInvalidLeb128 if the encoding exceeds 10 bytes
// or the 10th byte carries more than the single bit (bit 63) that fits a
// uint64.
func DecodeUvarint(src []byte) (v uint64, n int, err error) {
	var shift uint
	for n = 0; n < maxLeb128Bytes; n++ {
		if n >= len(src) {
			return 0, 0, cherr.New(cherr.KindNotEnoughData, "leb128 varint truncated")
		}
		b := src[n]
		if n == maxLeb128Bytes-1 && b > 1 {
			return 0, 0, cherr.New(cherr.KindInvalidLeb128, "varint overflows 64 bits")
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, n + 1, nil
		}
		shift += 7
	}
	return 0, 0, cherr.New(cherr.KindInvalidLeb128, "varint overflows 10 bytes")
}

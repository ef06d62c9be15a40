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

package chframe

import "encoding/binary"

// EncodeFrame wraps plain into one LZ4 (or equivalent) block frame per
// appending it to dst: a 16-byte checksum, a 9-byte header
// (magic, compressed size including the header, uncompressed size), and
// the compressed payload.
func EncodeFrame(dst []byte, plain []byte, comp Compressor, checker Checksummer128) []byte {
	headerAndPayload := make([]byte, lz4HeaderSize, lz4HeaderSize+len(plain))
	headerAndPayload[0] = lz4Magic
	headerAndPayload = comp.Compress(plain, headerAndPayload)
	compressedSize := uint32(len(headerAndPayload))
	binary.LittleEndian.PutUint32(headerAndPayload[1:5], compressedSize)
	binary.LittleEndian.PutUint32(headerAndPayload[5:9], uint32(len(plain)))

	lo, hi := checker.Sum128(headerAndPayload)

	out := dst
	var checksum [16]byte
	binary.LittleEndian.PutUint64(checksum[0:8], lo)
	binary.LittleEndian.PutUint64(checksum[8:16], hi)
	out = append(out, checksum[:]...)
	out = append(out, headerAndPayload...)
	return out
}

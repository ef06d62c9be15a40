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

// Compressor is the interface EncodeFrame (and so an InsertPipeline) uses to
// compress an outbound chunk before it is framed and sent, mirroring the
// shape of compr.Compressor: a name for diagnostics, and an append-style
// Compress call.
type Compressor interface {
	Name() string
	Compress(src, dst []byte) []byte
}

// Decompressor is the interface a FrameReader uses to turn a compressed
// frame payload back into plain bytes, mirroring compr.Decompressor.
type Decompressor interface {
	Name() string
	// Decompress decompresses src into a buffer of exactly the given
	// uncompressed size, reusing dst's backing array when it has enough
	// capacity.
	Decompress(src, dst []byte, uncompressedSize int) ([]byte, error)
}

// Checksummer128 computes the 128-bit hash used to verify an LZ4 block
// frame. The server's own checksum is CityHash v1.0.2; internal/cityhash
// implements Sum128 with this exact signature.
type Checksummer128 interface {
	Sum128(data []byte) (lo, hi uint64)
}

// ChecksummerFunc adapts a bare function to Checksummer128.
type ChecksummerFunc func(data []byte) (lo, hi uint64)

func (f ChecksummerFunc) Sum128(data []byte) (lo, hi uint64) { return f(data) }

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

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec implements Compressor and Decompressor over raw LZ4 blocks
// (no frame magic, no checksum — that's FrameReader/FrameWriter's job),
// the same division of labor as compr.Compressor/compr.Decompressor.
type lz4Codec struct{}

// LZ4 is the default block codec for the server's LZ4 frame, grounded on
// the shape of compr.zstdCompressor/compr.s2Compressor: a stateless value
// wrapping a third-party block (de)compressor.
var LZ4 = lz4Codec{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Compress(src, dst []byte) []byte {
	bound := lz4.CompressBlockBound(len(src))
	out := dst
	if cap(out)-len(out) < bound {
		grown := make([]byte, len(out), len(out)+bound)
		copy(grown, out)
		out = grown
	}
	var c lz4.Compressor
	n, err := c.CompressBlock(src, out[len(out):len(out)+bound])
	if err != nil {
		panic(fmt.Sprintf("chframe: lz4 block compress: %v", err))
	}
	if n == 0 {
		// incompressible input: lz4 requires callers fall back to an
		// uncompressed block when CompressBlock reports n == 0.
		out = append(out, src...)
		return out
	}
	return out[:len(out)+n]
}

func (lz4Codec) Decompress(src, dst []byte, uncompressedSize int) ([]byte, error) {
	var out []byte
	if cap(dst) >= uncompressedSize {
		out = dst[:uncompressedSize]
	} else {
		out = make([]byte, uncompressedSize)
	}
	n, err := lz4.UncompressBlock(src, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 block decompress: %w", err)
	}
	if n != uncompressedSize {
		return nil, fmt.Errorf("lz4 block decompress: expected %d bytes, got %d", uncompressedSize, n)
	}
	return out, nil
}

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
	"runtime"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec is an alternate block codec for the frame, for deployments
// that run the server with zstd-compressed native protocol instead of
// LZ4 (the block framing is codec-agnostic: only the payload
// interpretation changes).
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var (
	zstdOnce    sync.Once
	zstdDefault *zstdCodec
)

// Zstd returns the process-wide zstd codec, built lazily on first use so
// that importing chframe never pays zstd's encoder/decoder setup cost
// unless a caller actually selects it. The returned value implements
// both Compressor and Decompressor.
func Zstd() *zstdCodec {
	zstdOnce.Do(func() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
		if err != nil {
			panic(err)
		}
		zstdDefault = &zstdCodec{enc: enc, dec: dec}
	})
	return zstdDefault
}

func (z *zstdCodec) Name() string { return "zstd" }

func (z *zstdCodec) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

func (z *zstdCodec) Decompress(src, dst []byte, uncompressedSize int) ([]byte, error) {
	var out []byte
	if cap(dst) >= uncompressedSize {
		out = dst[:0]
	}
	ret, err := z.dec.DecodeAll(src, out)
	if err != nil {
		return nil, err
	}
	if len(ret) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress: expected %d bytes, got %d", uncompressedSize, len(ret))
	}
	return ret, nil
}

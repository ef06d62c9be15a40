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
	"context"
	"encoding/binary"
	"io"

	"github.com/sneller-chcore/chgo/cherr"
)

const (
	lz4Magic       = 0x82
	lz4HeaderSize  = 9  // magic(1) + compressed_size(4) + uncompressed_size(4)
	lz4MetaSize    = 25 // checksum(16) + header(9)
	maxCompressed  = 1 << 30
)

// ChunkSource is the narrow streaming interface FrameReader consumes: it
// asks the transport layer for the next logically-delivered chunk of
// bytes. Implementations return io.EOF (with a nil chunk) once the
// underlying body is exhausted. This is deliberately not io.Reader: the
// wire protocol cares about chunk boundaries for its chunk-boundary
// invariance guarantees, and io.Reader's "may return a short read"
// contract would blur that.
type ChunkSource interface {
	NextChunk(ctx context.Context) ([]byte, error)
}

// ReaderChunkSource adapts an io.Reader to ChunkSource by reading into a
// fixed-size buffer and handing back whatever was read as one chunk.
type ReaderChunkSource struct {
	R    io.Reader
	Size int // buffer size per read; defaults to 32KiB if zero
}

func (r *ReaderChunkSource) NextChunk(ctx context.Context) ([]byte, error) {
	sz := r.Size
	if sz <= 0 {
		sz = 32 * 1024
	}
	buf := make([]byte, sz)
	n, err := r.R.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

// FrameReader turns a ChunkSource into a logically contiguous byte view,
// transparently rebuffering across chunk boundaries and, when a
// Decompressor is configured, transparently unwrapping the LZ4 (or zstd)
// block frame.
type FrameReader struct {
	src     ChunkSource
	decomp  Decompressor
	checker Checksummer128

	residual []byte // unconsumed bytes of the current logical chunk
	scratch  []byte // rebuffering scratch, reused across calls

	// rawReader rebuffers the pre-decompression byte stream when decomp
	// is set; built lazily on first use.
	rawReader *FrameReader

	receivedBytes uint64
	decodedBytes  uint64

	closed bool
}

// NewFrameReader builds a FrameReader with no decompression: callers get
// the raw uncompressed wire bytes.
func NewFrameReader(src ChunkSource) *FrameReader {
	return &FrameReader{src: src}
}

// NewCompressedFrameReader builds a FrameReader that unwraps the LZ4 (or
// equivalent) block frame using decomp and checker before handing bytes
// to callers.
func NewCompressedFrameReader(src ChunkSource, decomp Decompressor, checker Checksummer128) *FrameReader {
	return &FrameReader{src: src, decomp: decomp, checker: checker}
}

// ReceivedBytes is the number of raw, post-transport, pre-decompression
// bytes seen so far.
func (f *FrameReader) ReceivedBytes() uint64 { return f.receivedBytes }

// DecodedBytes is the number of post-decompression bytes handed to
// callers so far.
func (f *FrameReader) DecodedBytes() uint64 { return f.decodedBytes }

// Close aborts the underlying chunk source; no further reads are
// performed. It is safe to call multiple times.
func (f *FrameReader) Close() error {
	f.closed = true
	if c, ok := f.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Next returns exactly n bytes of logical (post-decompression, if
// enabled) stream content, rebuffering across chunk/frame boundaries as
// needed. The returned slice is only valid until the next call to Next.
// io.EOF is returned (with a nil slice) only when n bytes could not be
// produced because the stream ended cleanly with no partial data
// pending; a stream that ends mid-request yields cherr.KindNotEnoughData
// instead.
func (f *FrameReader) Next(ctx context.Context, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	// Fast path: the residual already satisfies the request, or an
	// about-to-be-fetched chunk will — checked after the fetch below.
	if len(f.residual) >= n {
		out := f.residual[:n]
		f.residual = f.residual[n:]
		f.decodedBytes += uint64(n)
		return out, nil
	}

	if len(f.residual) == 0 {
		chunk, err := f.fetchLogicalChunk(ctx)
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
		if len(chunk) >= n {
			out := chunk[:n]
			f.residual = chunk[n:]
			f.decodedBytes += uint64(n)
			return out, nil
		}
		f.residual = chunk
	}

	// Slow path: rebuffer into scratch until we have >= n bytes.
	f.scratch = f.scratch[:0]
	f.scratch = append(f.scratch, f.residual...)
	f.residual = nil
	for len(f.scratch) < n {
		chunk, err := f.fetchLogicalChunk(ctx)
		if err != nil {
			if err == io.EOF {
				if len(f.scratch) == 0 {
					return nil, io.EOF
				}
				return nil, cherr.New(cherr.KindNotEnoughData, "stream ended mid-record")
			}
			return nil, err
		}
		f.scratch = append(f.scratch, chunk...)
	}
	out := f.scratch[:n]
	f.residual = append([]byte(nil), f.scratch[n:]...)
	f.decodedBytes += uint64(n)
	return out, nil
}

// fetchLogicalChunk returns the next chunk of logical (decompressed, if
// enabled) bytes, or io.EOF.
func (f *FrameReader) fetchLogicalChunk(ctx context.Context) ([]byte, error) {
	if f.closed {
		return nil, io.EOF
	}
	if f.decomp == nil {
		chunk, err := f.src.NextChunk(ctx)
		if err != nil {
			return nil, err
		}
		f.receivedBytes += uint64(len(chunk))
		return chunk, nil
	}
	return f.readOneLZ4Frame(ctx)
}

// rawChunkSource lets readOneLZ4Frame reuse FrameReader.Next's
// rebuffering logic over the *raw* (pre-decompression) chunk stream by
// presenting itself as a plain ChunkSource.
type rawChunkSource struct{ f *FrameReader }

func (r rawChunkSource) NextChunk(ctx context.Context) ([]byte, error) {
	chunk, err := r.f.src.NextChunk(ctx)
	if err != nil {
		return nil, err
	}
	r.f.receivedBytes += uint64(len(chunk))
	return chunk, nil
}

// readOneLZ4Frame reads and validates one LZ4 block frame: a 16-byte
// checksum, a 9-byte header (magic + two LE uint32 sizes), then the
// compressed payload, yielding the decompressed bytes.
func (f *FrameReader) readOneLZ4Frame(ctx context.Context) ([]byte, error) {
	if f.rawReader == nil {
		f.rawReader = NewFrameReader(rawChunkSource{f})
	}
	meta, err := f.rawReader.Next(ctx, lz4MetaSize)
	if err != nil {
		return nil, err
	}
	checksum := append([]byte(nil), meta[:16]...)
	header := meta[16:lz4MetaSize]
	if header[0] != lz4Magic {
		return nil, cherr.New(cherr.KindDecompression, "incorrect magic")
	}
	compressedSize := binary.LittleEndian.Uint32(header[1:5])
	uncompressedSize := binary.LittleEndian.Uint32(header[5:9])
	if compressedSize > maxCompressed {
		return nil, cherr.New(cherr.KindDecompression, "too big")
	}
	if compressedSize < lz4HeaderSize {
		return nil, cherr.New(cherr.KindDecompression, "malformed data")
	}
	payloadSize := int(compressedSize) - lz4HeaderSize
	payload, err := f.rawReader.Next(ctx, payloadSize)
	if err != nil {
		if err == io.EOF {
			return nil, cherr.New(cherr.KindDecompression, "malformed data")
		}
		return nil, err
	}

	checkBuf := make([]byte, 0, lz4HeaderSize+len(payload))
	checkBuf = append(checkBuf, header...)
	checkBuf = append(checkBuf, payload...)
	lo, hi := f.checker.Sum128(checkBuf)
	wantLo := binary.LittleEndian.Uint64(checksum[0:8])
	wantHi := binary.LittleEndian.Uint64(checksum[8:16])
	if lo != wantLo || hi != wantHi {
		return nil, cherr.New(cherr.KindDecompression, "checksum mismatch")
	}

	out, err := f.decomp.Decompress(payload, nil, int(uncompressedSize))
	if err != nil {
		return nil, cherr.Wrap(cherr.KindDecompression, "malformed data", err)
	}
	return out, nil
}

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

package chclient

import (
	"bufio"
	"context"
	"io"

	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/chframe"
)

// BytesCursor streams raw decoded bytes with no header parsing or row
// decoding, for formats other than RowBinary (CSV, TSV, JSONEachRow)
// that an application wants to post-process itself.
type BytesCursor struct {
	reader *chframe.FrameReader
	buf    []byte
}

// NewBytesCursor builds a BytesCursor over reader.
func NewBytesCursor(reader *chframe.FrameReader) *BytesCursor {
	return &BytesCursor{reader: reader}
}

// ReceivedBytes is the number of raw, pre-decompression bytes seen so far.
func (b *BytesCursor) ReceivedBytes() uint64 { return b.reader.ReceivedBytes() }

// DecodedBytes is the number of post-decompression bytes seen so far.
func (b *BytesCursor) DecodedBytes() uint64 { return b.reader.DecodedBytes() }

// Close aborts the underlying stream.
func (b *BytesCursor) Close() error { return b.reader.Close() }

// Next returns the next single decoded byte as a one-byte slice, or
// io.EOF at end of stream. The returned slice is only valid until the
// next call.
func (b *BytesCursor) Next(ctx context.Context) ([]byte, error) {
	chunk, err := b.reader.Next(ctx, 1)
	if err != nil {
		return nil, err
	}
	// FrameReader.Next only returns fixed-size reads, so Next reads one
	// byte at a time. Callers that want larger reads use Reader or
	// Scanner below.
	return chunk, nil
}

// Reader returns an io.Reader view over the remaining bytes, suitable
// for bufio.Scanner (line-buffered formats like JSONEachRow) or
// io.ReadAll (whole-body formats like CSV).
func (b *BytesCursor) Reader(ctx context.Context) io.Reader {
	return &bytesCursorReader{ctx: ctx, cursor: b}
}

// Scanner returns a *bufio.Scanner over the remaining bytes, split by
// line, for line-buffered formats such as JSONEachRow.
func (b *BytesCursor) Scanner(ctx context.Context) *bufio.Scanner {
	return bufio.NewScanner(b.Reader(ctx))
}

type bytesCursorReader struct {
	ctx    context.Context
	cursor *BytesCursor
	pend   []byte
}

func (r *bytesCursorReader) Read(p []byte) (int, error) {
	if len(r.pend) == 0 {
		chunk, err := r.cursor.reader.Next(r.ctx, 1)
		if err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			if cherr.Is(err, cherr.KindNotEnoughData) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		r.pend = chunk
	}
	n := copy(p, r.pend)
	r.pend = r.pend[n:]
	return n, nil
}

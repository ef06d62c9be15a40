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
	"context"
	"io"

	"github.com/sneller-chcore/chgo/chframe"
	"github.com/sneller-chcore/chgo/chschema"
)

// RowCursor iterates over decoded RowBinaryWithNamesAndTypes records. It
// exclusively owns its FrameReader: closing the cursor aborts the
// underlying transport stream.
type RowCursor struct {
	reader *chframe.FrameReader
	desc   RowDescriptor
	newRow func() Row
	mode   chschema.Mode

	meta         *RowMetadata
	decodedCount uint64
	started      bool
}

// NewRowCursor builds a cursor over reader. newRow constructs a fresh
// zero-value Row for each call to Next (e.g. `func() Row { return new(MyRow) }`).
func NewRowCursor(reader *chframe.FrameReader, desc RowDescriptor, newRow func() Row, mode chschema.Mode) *RowCursor {
	return &RowCursor{reader: reader, desc: desc, newRow: newRow, mode: mode}
}

// ReceivedBytes is the number of raw, pre-decompression bytes seen so far.
func (c *RowCursor) ReceivedBytes() uint64 { return c.reader.ReceivedBytes() }

// DecodedBytes is the number of post-decompression bytes seen so far.
func (c *RowCursor) DecodedBytes() uint64 { return c.reader.DecodedBytes() }

// Close aborts the underlying stream; no further reads are performed.
func (c *RowCursor) Close() error { return c.reader.Close() }

// Next decodes and returns the next record, or returns io.EOF once the
// stream is exhausted cleanly. On the very first call it parses the
// column header and builds the cursor's RowMetadata, pre-checking it
// against desc.
func (c *RowCursor) Next(ctx context.Context) (Row, error) {
	if !c.started {
		c.started = true
		cols, err := chframe.ParseHeader(ctx, c.reader)
		if err != nil {
			return nil, err
		}
		meta, err := NewRowMetadata(c.desc, cols, c.mode)
		if err != nil {
			return nil, err
		}
		c.meta = meta
	}

	row := c.newRow()
	if err := row.Decode(ctx, c.reader, c.meta); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	c.decodedCount++
	return row, nil
}

// Metadata returns the cursor's RowMetadata, valid only after the first
// call to Next has succeeded.
func (c *RowCursor) Metadata() *RowMetadata { return c.meta }

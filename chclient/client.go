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
	"net/http"
	"net/url"
	"time"

	"github.com/sneller-chcore/chgo/chframe"
	"github.com/sneller-chcore/chgo/chschema"
	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/internal/cityhash"
)

// Compression selects the wire compression scheme used for both query
// results and inserts.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

// Options configures a Client: authentication, target database, and
// wire compression. All fields are optional.
type Options struct {
	User        string
	Password    string
	Database    string
	Compression Compression
	UserAgent   string
	Header      http.Header // extra user-supplied headers, merged in
}

// Client is a cheaply-copyable handle to one ClickHouse-protocol server:
// it snapshots a Transport, base URL, and Options, and owns a
// MetadataCache of its own (one per NewClient call, not shared between
// clients) that only Metadata consults; QueryRows and Insert do not use it.
type Client struct {
	transport Transport
	baseURL   *url.URL
	opts      Options
	cache     *MetadataCache
}

// NewClient builds a Client. transport is typically NewHTTPTransport(nil).
func NewClient(transport Transport, baseURL *url.URL, opts Options) *Client {
	return &Client{
		transport: transport,
		baseURL:   baseURL,
		opts:      opts,
		cache:     NewMetadataCache(),
	}
}

func (c *Client) compressor() chframe.Compressor {
	switch c.opts.Compression {
	case CompressionLZ4:
		return chframe.LZ4
	case CompressionZstd:
		return chframe.Zstd()
	default:
		return nil
	}
}

func (c *Client) decompressor() chframe.Decompressor {
	switch c.opts.Compression {
	case CompressionLZ4:
		return chframe.LZ4
	case CompressionZstd:
		return chframe.Zstd()
	default:
		return nil
	}
}

func (c *Client) checksummer() chframe.Checksummer128 {
	return chframe.ChecksummerFunc(cityhash.Sum128)
}

// buildURL constructs {base}?database=...&query=...&decompress=1&user_options
// with sql embedded as the query parameter, following the request
// descriptor layout.
func (c *Client) buildURL(sql string, extra url.Values) *url.URL {
	u := *c.baseURL
	q := u.Query()
	if c.opts.Database != "" {
		q.Set("database", c.opts.Database)
	}
	if sql != "" {
		q.Set("query", sql)
	}
	if c.opts.Compression != CompressionNone {
		q.Set("decompress", "1")
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return &u
}

func (c *Client) buildHeader() http.Header {
	h := make(http.Header)
	if c.opts.User != "" {
		h.Set("X-ClickHouse-User", c.opts.User)
	}
	if c.opts.Password != "" {
		h.Set("X-ClickHouse-Key", c.opts.Password)
	}
	if c.opts.Database != "" {
		h.Set("X-ClickHouse-Database", c.opts.Database)
	}
	ua := c.opts.UserAgent
	if ua == "" {
		ua = "chgo/1"
	}
	h.Set("User-Agent", ua)
	for k, vs := range c.opts.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	return h
}

// queryFrameReader issues sql as a GET (queries carry no body) and
// returns a FrameReader over the decompressed response body.
func (c *Client) queryFrameReader(ctx context.Context, sql string) (*chframe.FrameReader, error) {
	req := &Request{
		Method: http.MethodGet,
		URL:    c.buildURL(sql, nil),
		Header: c.buildHeader(),
	}
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		return nil, err
	}
	src := &chframe.ReaderChunkSource{R: resp.Body}
	if decomp := c.decompressor(); decomp != nil {
		return chframe.NewCompressedFrameReader(src, decomp, c.checksummer()), nil
	}
	return chframe.NewFrameReader(src), nil
}

// QueryRows runs sql (expected to return RowBinaryWithNamesAndTypes
// output, e.g. `... FORMAT RowBinaryWithNamesAndTypes`) and returns a
// RowCursor decoding into rows built by newRow.
func (c *Client) QueryRows(ctx context.Context, sql string, desc RowDescriptor, newRow func() Row, mode chschema.Mode) (*RowCursor, error) {
	reader, err := c.queryFrameReader(ctx, sql)
	if err != nil {
		return nil, err
	}
	return NewRowCursor(reader, desc, newRow, mode), nil
}

// QueryBytes runs sql (any output format the caller will parse itself,
// e.g. `... FORMAT CSV`) and returns a BytesCursor over the raw
// decompressed response body.
func (c *Client) QueryBytes(ctx context.Context, sql string) (*BytesCursor, error) {
	reader, err := c.queryFrameReader(ctx, sql)
	if err != nil {
		return nil, err
	}
	return NewBytesCursor(reader), nil
}

// FetchOne runs sql and decodes exactly one row, returning
// cherr.KindRowNotFound if the cursor is empty.
func (c *Client) FetchOne(ctx context.Context, sql string, desc RowDescriptor, newRow func() Row, mode chschema.Mode) (Row, error) {
	cursor, err := c.QueryRows(ctx, sql, desc, newRow, mode)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()
	row, err := cursor.Next(ctx)
	if err == io.EOF {
		return nil, cherr.New(cherr.KindRowNotFound, "query returned no rows")
	}
	return row, err
}

// describeColumns issues `SELECT * FROM <table> LIMIT 0` with the
// WithNamesAndTypes format and returns the whole (small) response body,
// for use as a MetadataCache introspect callback.
func (c *Client) describeColumns(ctx context.Context, table string) ([]byte, error) {
	sql := "SELECT * FROM " + table + " LIMIT 0 FORMAT RowBinaryWithNamesAndTypes"
	req := &Request{
		Method: http.MethodGet,
		URL:    c.buildURL(sql, nil),
		Header: c.buildHeader(),
	}
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cherr.Wrap(cherr.KindTransport, "reading schema introspection response", err)
	}
	return body, nil
}

// Metadata returns the (possibly cached) RowMetadata for table, matched
// against desc, introspecting the schema on a cache miss.
func (c *Client) Metadata(ctx context.Context, table string, desc RowDescriptor, mode chschema.Mode) (*RowMetadata, error) {
	return c.cache.Fetch(ctx, table, desc, mode, func(ctx context.Context) ([]byte, error) {
		return c.describeColumns(ctx, table)
	})
}

// Insert builds an InsertPipeline that streams rows to table using
// RowBinaryWithNamesAndTypes, with the given send/end timeouts and the
// Client's configured compression mode.
func (c *Client) Insert(table string, sendTimeout, endTimeout time.Duration) *InsertPipeline {
	sql := "INSERT INTO " + table + " FORMAT RowBinaryWithNamesAndTypes"
	cfg := InsertConfig{
		Transport:   c.transport,
		URL:         c.buildURL(sql, nil),
		Header:      c.buildHeader(),
		Compressor:  c.compressor(),
		Checker:     c.checksummer(),
		SendTimeout: sendTimeout,
		EndTimeout:  endTimeout,
	}
	return NewInsertPipeline(cfg, table)
}

// Inserter builds an Inserter that opens fresh InsertPipelines against
// table via Client.Insert as each batch seals.
func (c *Client) Inserter(table string, sendTimeout, endTimeout time.Duration, maxRows, maxBytes uint64, period time.Duration, periodBias float64) *Inserter {
	return NewInserter(func() *InsertPipeline {
		return c.Insert(table, sendTimeout, endTimeout)
	}, maxRows, maxBytes, period, periodBias)
}

// InvalidateTable drops table's cached RowMetadata, for callers to wire
// up after running a DDL statement that changes the table's shape; the
// core has no notion of which statements are DDL, so it never calls this
// automatically.
func (c *Client) InvalidateTable(table string) {
	c.cache.Invalidate(table)
}

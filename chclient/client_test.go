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
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/sneller-chcore/chgo/chframe"
	"github.com/sneller-chcore/chgo/chschema"
)

// queryTransport serves a fixed body for every Do call and records the
// last request issued, so tests can assert on the URL/headers the Client
// built without a real server.
type queryTransport struct {
	body       []byte
	statusCode int
	lastReq    *Request
}

func (qt *queryTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	qt.lastReq = req
	if req.Body != nil {
		io.ReadAll(req.Body)
	}
	status := qt.statusCode
	if status == 0 {
		status = 200
	}
	return &Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(qt.body)),
	}, nil
}

func testClient(qt *queryTransport, opts Options) *Client {
	u, _ := url.Parse("http://localhost:8123/")
	return NewClient(qt, u, opts)
}

func TestClientBuildURLIncludesQueryAndDatabase(t *testing.T) {
	c := testClient(&queryTransport{}, Options{Database: "mydb"})
	u := c.buildURL("SELECT 1", nil)
	q := u.Query()
	if q.Get("database") != "mydb" {
		t.Fatalf("got database=%q, want mydb", q.Get("database"))
	}
	if q.Get("query") != "SELECT 1" {
		t.Fatalf("got query=%q, want %q", q.Get("query"), "SELECT 1")
	}
	if q.Get("decompress") != "" {
		t.Fatalf("expected no decompress flag with CompressionNone")
	}
}

func TestClientBuildURLSetsDecompressWhenCompressing(t *testing.T) {
	c := testClient(&queryTransport{}, Options{Compression: CompressionLZ4})
	u := c.buildURL("SELECT 1", nil)
	if u.Query().Get("decompress") != "1" {
		t.Fatalf("expected decompress=1 when compression is enabled")
	}
}

func TestClientBuildHeaderIncludesAuthAndUserAgent(t *testing.T) {
	c := testClient(&queryTransport{}, Options{User: "alice", Password: "secret", Database: "mydb"})
	h := c.buildHeader()
	if h.Get("X-ClickHouse-User") != "alice" || h.Get("X-ClickHouse-Key") != "secret" {
		t.Fatalf("missing auth headers: %v", h)
	}
	if h.Get("X-ClickHouse-Database") != "mydb" {
		t.Fatalf("missing database header: %v", h)
	}
	if h.Get("User-Agent") != "chgo/1" {
		t.Fatalf("got User-Agent=%q, want default", h.Get("User-Agent"))
	}
}

func TestClientBuildHeaderMergesExtraHeaders(t *testing.T) {
	extra := make(http.Header)
	extra.Set("X-Custom", "v")
	c := testClient(&queryTransport{}, Options{Header: extra})
	h := c.buildHeader()
	if h.Get("X-Custom") != "v" {
		t.Fatalf("expected extra header to be merged in, got %v", h)
	}
}

func TestClientCompressorSelectionByOption(t *testing.T) {
	none := testClient(&queryTransport{}, Options{})
	if none.compressor() != nil || none.decompressor() != nil {
		t.Fatalf("expected nil (de)compressor for CompressionNone")
	}
	lz4 := testClient(&queryTransport{}, Options{Compression: CompressionLZ4})
	if lz4.compressor() != chframe.LZ4 || lz4.decompressor() != chframe.LZ4 {
		t.Fatalf("expected chframe.LZ4 for CompressionLZ4")
	}
	zstd := testClient(&queryTransport{}, Options{Compression: CompressionZstd})
	if zstd.compressor() == nil || zstd.decompressor() == nil {
		t.Fatalf("expected a zstd (de)compressor for CompressionZstd")
	}
}

func TestClientQueryRowsDecodesResultSet(t *testing.T) {
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	wire = appendUint64(wire, 10)
	wire = appendUint64(wire, 20)
	qt := &queryTransport{body: wire}
	c := testClient(qt, Options{})

	cursor, err := c.QueryRows(context.Background(), "SELECT id FROM t", RowDescriptor{Kind: KindPrimitive}, func() Row { return &idRow{} }, chschema.EachRow)
	if err != nil {
		t.Fatalf("QueryRows: %v", err)
	}
	var got []uint64
	for {
		row, err := cursor.Next(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, row.(*idRow).ID)
	}
	if len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Fatalf("got %v, want [10 20]", got)
	}
	if qt.lastReq.Method != http.MethodGet {
		t.Fatalf("expected queries to be issued as GET")
	}
}

func TestClientQueryBytesReturnsRawBody(t *testing.T) {
	qt := &queryTransport{body: []byte("a,b\n1,2\n")}
	c := testClient(qt, Options{})
	cursor, err := c.QueryBytes(context.Background(), "SELECT * FROM t FORMAT CSV")
	if err != nil {
		t.Fatalf("QueryBytes: %v", err)
	}
	got, err := io.ReadAll(cursor.Reader(context.Background()))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("got %q, want %q", got, "a,b\n1,2\n")
	}
}

func TestClientFetchOneReturnsRowNotFoundOnEmptyResult(t *testing.T) {
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	qt := &queryTransport{body: wire}
	c := testClient(qt, Options{})
	_, err := c.FetchOne(context.Background(), "SELECT id FROM t", RowDescriptor{Kind: KindPrimitive}, func() Row { return &idRow{} }, chschema.EachRow)
	if err == nil {
		t.Fatalf("expected an error for an empty result set")
	}
}

func TestClientFetchOneReturnsFirstRow(t *testing.T) {
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	wire = appendUint64(wire, 99)
	qt := &queryTransport{body: wire}
	c := testClient(qt, Options{})
	row, err := c.FetchOne(context.Background(), "SELECT id FROM t", RowDescriptor{Kind: KindPrimitive}, func() Row { return &idRow{} }, chschema.EachRow)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if row.(*idRow).ID != 99 {
		t.Fatalf("got ID=%d, want 99", row.(*idRow).ID)
	}
}

func TestClientMetadataUsesDescribeColumnsAndCaches(t *testing.T) {
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	qt := &queryTransport{body: wire}
	c := testClient(qt, Options{})

	m1, err := c.Metadata(context.Background(), "events", RowDescriptor{Kind: KindPrimitive}, chschema.EachRow)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	m2, err := c.Metadata(context.Background(), "events", RowDescriptor{Kind: KindPrimitive}, chschema.EachRow)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if m1 != m2 {
		t.Fatalf("expected the cached metadata to be reused")
	}

	c.InvalidateTable("events")
	req := qt.lastReq
	if req == nil {
		t.Fatalf("expected describeColumns to have issued a request")
	}
}

func TestClientInsertBuildsPipelineWithClientSettings(t *testing.T) {
	qt := &queryTransport{}
	c := testClient(qt, Options{Compression: CompressionLZ4})
	p := c.Insert("events", 0, 0)
	if p == nil {
		t.Fatalf("expected a non-nil InsertPipeline")
	}
	if _, err := p.End(context.Background()); err != nil {
		t.Fatalf("End: %v", err)
	}
	if qt.lastReq.Method != http.MethodPost {
		t.Fatalf("expected inserts to be issued as POST")
	}
}

func TestClientInserterBuildsFreshPipelinesAgainstTable(t *testing.T) {
	qt := &queryTransport{}
	c := testClient(qt, Options{})
	ins := c.Inserter("events", 0, 0, 1, 0, 0, 0)
	if err := ins.Write(context.Background(), []byte("row")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := ins.End(context.Background()); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func appendUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return append(dst, b[:]...)
}

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

	"github.com/sneller-chcore/chgo/cherr"
)

// Request is the request descriptor the core hands to a Transport,
// Body is nil for GET requests.
type Request struct {
	Method  string
	URL     *url.URL
	Header  http.Header
	Body    io.Reader
}

// Response is what a Transport hands back: status, headers, and a
// streamed body the core reads incrementally.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Transport is the request executor the core consumes instead of doing
// its own connection pooling, TLS, or redirect handling.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport is the default Transport, wrapping a *http.Client: build
// the request, call Do, and return the Response whatever its status.
// Status checking is left to CheckStatus, which turns a non-2xx status
// into a *cherr.Error carrying the response body.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport builds an HTTPTransport around client, or
// http.DefaultClient if client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), req.Body)
	if err != nil {
		return nil, cherr.Wrap(cherr.KindTransport, "building request", err)
	}
	httpReq.Header = req.Header

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, cherr.Wrap(cherr.KindTransport, "", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// CheckStatus reads and returns a BadResponse error carrying resp's body
// when resp.StatusCode is not a 2xx, closing the body. It returns nil
// (leaving the body open for the caller) otherwise.
func CheckStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return cherr.New(cherr.KindBadResponse, string(body))
}

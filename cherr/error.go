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

// Package cherr defines the flat, tagged error taxonomy shared by every
// layer of the client core: the type parser, the wire codec, the frame
// reader, the schema validator and the cursor/insert pipeline all return
// (or wrap) a *cherr.Error so that callers can switch on Kind without
// parsing message text.
package cherr

import (
	"errors"
	"fmt"
)

// Kind tags the category of a client-core error.
type Kind int

const (
	// KindTransport wraps an upstream I/O failure from the injected
	// request executor.
	KindTransport Kind = iota
	// KindBadResponse means the server answered with a non-2xx status;
	// Error.Text carries the (possibly decompressed) response body.
	KindBadResponse
	// KindDecompression covers bad magic, size overflow, checksum
	// mismatch, or truncation in the LZ4/zstd frame layer.
	KindDecompression
	// KindHeaderParsing means the WithNamesAndTypes column preamble was
	// malformed.
	KindHeaderParsing
	// KindTypeParsing means the textual type grammar failed to parse.
	KindTypeParsing
	// KindNotEnoughData means the decoder reached EOF mid-record.
	KindNotEnoughData
	// KindInvalidTag means a Bool/Option tag byte was not 0 or 1.
	KindInvalidTag
	// KindInvalidLeb128 means a LEB128 varint overran 10 bytes.
	KindInvalidLeb128
	// KindUTF8 is only produced when the caller opted into &str-style
	// decoding and the bytes were not valid UTF-8.
	KindUTF8
	// KindSchemaMismatch means the validator rejected a wire primitive
	// call against the server's column type.
	KindSchemaMismatch
	// KindRowSchemaMismatch means the static RowDescriptor shape is
	// incompatible with the server-sent header (column count or name
	// set mismatch).
	KindRowSchemaMismatch
	// KindSequenceMustHaveLength means the encoder was asked to write a
	// sequence whose length isn't known up front.
	KindSequenceMustHaveLength
	// KindTimedOut means a send-timeout or end-timeout fired.
	KindTimedOut
	// KindRowNotFound means FetchOne was called against an empty cursor.
	KindRowNotFound
	// KindCustom is a catch-all for caller-supplied (de)serialization
	// errors.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBadResponse:
		return "bad response"
	case KindDecompression:
		return "decompression"
	case KindHeaderParsing:
		return "header parsing"
	case KindTypeParsing:
		return "type parsing"
	case KindNotEnoughData:
		return "not enough data"
	case KindInvalidTag:
		return "invalid tag encoding"
	case KindInvalidLeb128:
		return "invalid leb128"
	case KindUTF8:
		return "utf8"
	case KindSchemaMismatch:
		return "schema mismatch"
	case KindRowSchemaMismatch:
		return "row schema mismatch"
	case KindSequenceMustHaveLength:
		return "sequence must have length"
	case KindTimedOut:
		return "timed out"
	case KindRowNotFound:
		return "row not found"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across the client core.
// It is intentionally flat (one struct, tagged by Kind) rather than a
// hierarchy of named types.
type Error struct {
	Kind Kind
	Text string
	Err  error
}

func (e *Error) Error() string {
	if e.Text == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s", e.Kind, e.Err)
		}
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Text, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Text)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, cherr.New(cherr.KindTimedOut, "")) reads naturally.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.Kind == e.Kind
	}
	return false
}

// New builds a bare *Error with no wrapped cause.
func New(kind Kind, text string) *Error {
	return &Error{Kind: kind, Text: text}
}

// Wrap builds an *Error that wraps cause.
func Wrap(kind Kind, text string, cause error) *Error {
	return &Error{Kind: kind, Text: text, Err: cause}
}

// Of reports the Kind of err if err is (or wraps) a *Error, and false
// otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is tagged with kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}

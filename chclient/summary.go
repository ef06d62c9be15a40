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
	"encoding/json"
	"fmt"
	"strconv"
)

// Summary is the X-ClickHouse-Summary response header, decoded as JSON
// The server is inconsistent about whether these fields
// arrive as JSON numbers or JSON strings, so each one goes through
// summaryNumber's custom UnmarshalJSON instead of a plain uint64.
type Summary struct {
	ReadRows        summaryNumber `json:"read_rows"`
	ReadBytes       summaryNumber `json:"read_bytes"`
	WrittenRows     summaryNumber `json:"written_rows"`
	WrittenBytes    summaryNumber `json:"written_bytes"`
	TotalRowsToRead summaryNumber `json:"total_rows_to_read"`
	ResultRows      summaryNumber `json:"result_rows"`
	ResultBytes     summaryNumber `json:"result_bytes"`
	ElapsedNs       summaryNumber `json:"elapsed_ns"`
}

// ParseSummary decodes the X-ClickHouse-Summary header value.
func ParseSummary(headerValue string) (Summary, error) {
	var s Summary
	if headerValue == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(headerValue), &s); err != nil {
		return Summary{}, fmt.Errorf("parsing X-ClickHouse-Summary: %w", err)
	}
	return s, nil
}

// summaryNumber unmarshals either a JSON number or a JSON string
// containing a number into a uint64.
type summaryNumber uint64

func (n *summaryNumber) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("summary field %q is not a number: %w", string(data), err)
	}
	*n = summaryNumber(v)
	return nil
}

func (n summaryNumber) Uint64() uint64 { return uint64(n) }

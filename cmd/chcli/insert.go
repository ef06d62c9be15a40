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

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type insertFlags struct {
	sendTimeout time.Duration
	endTimeout  time.Duration
}

// newInsertCmd wires `chcli insert <table>`: it reads pre-encoded
// RowBinary rows from stdin, one per line, and streams them through an
// InsertPipeline. There is no JSON/CSV-to-RowBinary conversion here;
// producing wire bytes is left to whatever wrote them (this library has
// no reflection-based row encoder, see chclient.Row).
func newInsertCmd() *cobra.Command {
	inf := &insertFlags{}
	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Stream pre-encoded RowBinary rows from stdin into a table",
		Long: `insert reads newline-delimited RowBinary-encoded rows from stdin and
streams them into <table> via a single InsertPipeline. Each input line
is one row's raw encoded bytes (no column header, no delimiters beyond
the newline); producing that encoding is the caller's job.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(cmd.Context(), args[0], inf)
		},
	}
	cmd.Flags().DurationVar(&inf.sendTimeout, "send-timeout", 30*time.Second, "max time to block offering a chunk to the sender")
	cmd.Flags().DurationVar(&inf.endTimeout, "end-timeout", 5*time.Minute, "max time to wait for the server's response after closing")
	return cmd
}

func runInsert(ctx context.Context, table string, inf *insertFlags) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	pipeline := client.Insert(table, inf.sendTimeout, inf.endTimeout)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var rows uint64
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := pipeline.Write(ctx, line); err != nil {
			pipeline.Abort()
			return fmt.Errorf("writing row %d: %w", rows, err)
		}
		rows++
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		pipeline.Abort()
		return fmt.Errorf("reading stdin: %w", err)
	}

	summary, err := pipeline.End(ctx)
	if err != nil {
		return fmt.Errorf("ending insert into %s: %w", table, err)
	}
	fmt.Fprintf(os.Stderr, "# %d rows written, server summary: %+v\n", rows, summary)
	return nil
}

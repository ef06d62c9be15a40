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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type queryFlags struct {
	format string
}

func newQueryCmd() *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SQL statement and stream the result to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args[0], qf)
		},
	}
	cmd.Flags().StringVarP(&qf.format, "format", "f", "CSVWithNames", "output FORMAT clause appended to the query")
	return cmd
}

func runQuery(ctx context.Context, sql string, qf *queryFlags) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	if qf.format != "" && !strings.Contains(strings.ToUpper(sql), "FORMAT") {
		sql = sql + " FORMAT " + qf.format
	}

	cursor, err := client.QueryBytes(ctx, sql)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	defer cursor.Close()

	if _, err := io.Copy(os.Stdout, cursor.Reader(ctx)); err != nil {
		return fmt.Errorf("streaming result: %w", err)
	}
	fmt.Fprintf(os.Stderr, "# %d bytes received, %d bytes decoded\n", cursor.ReceivedBytes(), cursor.DecodedBytes())
	return nil
}

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

// Package main implements chcli, a small command-line client for
// servers speaking the ClickHouse HTTP interface, built on top of
// chgo/chclient.
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sneller-chcore/chgo/chclient"
)

type globalFlags struct {
	configPath  string
	serverURL   string
	user        string
	password    string
	database    string
	compression string
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chcli",
		Short: "A command-line client for ClickHouse-protocol servers",
		SilenceUsage: true,
	}

	home, _ := os.UserHomeDir()
	defaultConfig := filepath.Join(home, ".chcli.yaml")

	root.PersistentFlags().StringVar(&flags.configPath, "config", defaultConfig, "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.serverURL, "url", "", "server base URL, e.g. http://localhost:8123")
	root.PersistentFlags().StringVar(&flags.user, "user", "", "username")
	root.PersistentFlags().StringVar(&flags.password, "password", "", "password")
	root.PersistentFlags().StringVar(&flags.database, "database", "", "default database")
	root.PersistentFlags().StringVar(&flags.compression, "compression", "", "wire compression: none, lz4, or zstd")

	root.AddCommand(newQueryCmd())
	root.AddCommand(newInsertCmd())
	return root
}

// buildClient merges the config file with any flags explicitly set on
// the command line (flags win) and returns a ready-to-use Client.
func buildClient() (*chclient.Client, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	serverURL := firstNonEmpty(flags.serverURL, cfg.URL, "http://localhost:8123")
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parsing --url %q: %w", serverURL, err)
	}

	opts := chclient.Options{
		User:     firstNonEmpty(flags.user, cfg.User),
		Password: firstNonEmpty(flags.password, cfg.Password),
		Database: firstNonEmpty(flags.database, cfg.Database),
	}
	switch firstNonEmpty(flags.compression, cfg.Compression, "lz4") {
	case "none":
		opts.Compression = chclient.CompressionNone
	case "zstd":
		opts.Compression = chclient.CompressionZstd
	default:
		opts.Compression = chclient.CompressionLZ4
	}

	transport := chclient.NewHTTPTransport(nil)
	return chclient.NewClient(transport, u, opts), nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chcli:", err)
		os.Exit(1)
	}
}

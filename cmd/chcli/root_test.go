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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstNonEmptyPicksEarliestSetValue(t *testing.T) {
	require.Equal(t, "a", firstNonEmpty("a", "b", "c"))
	require.Equal(t, "b", firstNonEmpty("", "b", "c"))
	require.Equal(t, "c", firstNonEmpty("", "", "c"))
	require.Equal(t, "", firstNonEmpty("", ""))
}

func TestBuildClientFromFlagsWithMissingConfigFile(t *testing.T) {
	defer func(saved globalFlags) { flags = saved }(flags)

	flags = globalFlags{
		configPath:  filepath.Join(t.TempDir(), "missing.yaml"),
		serverURL:   "http://flag-host:8123",
		user:        "flag-user",
		compression: "none",
	}

	client, err := buildClient()
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestBuildClientWithoutCompressionSetting(t *testing.T) {
	defer func(saved globalFlags) { flags = saved }(flags)

	flags = globalFlags{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		serverURL:  "http://localhost:8123",
	}

	client, err := buildClient()
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestBuildClientRejectsInvalidURL(t *testing.T) {
	defer func(saved globalFlags) { flags = saved }(flags)

	flags = globalFlags{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		serverURL:  "://not-a-url",
	}

	_, err := buildClient()
	require.Error(t, err)
}

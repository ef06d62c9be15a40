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

import "testing"

func TestShardForIsDeterministic(t *testing.T) {
	a := shardFor("events")
	b := shardFor("events")
	if a != b {
		t.Fatalf("shardFor is not deterministic: %d vs %d", a, b)
	}
}

func TestShardForInRange(t *testing.T) {
	names := []string{"a", "ab", "table_1", "table_2", "events", "", "a_very_long_table_name_for_good_measure"}
	for _, n := range names {
		s := shardFor(n)
		if s < 0 || s >= cacheShardCount {
			t.Fatalf("shardFor(%q) = %d, out of range [0,%d)", n, s, cacheShardCount)
		}
	}
}

func TestShardForSpreadsAcrossDistinctNames(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 64; i++ {
		seen[shardFor(tableNameN(i))] = true
	}
	if len(seen) < 2 {
		t.Fatalf("shardFor mapped 64 distinct names into only %d shard(s)", len(seen))
	}
}

func tableNameN(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "table_" + string(letters[n%len(letters)]) + string(letters[(n/len(letters))%len(letters)])
}

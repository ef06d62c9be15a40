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

import "github.com/dchest/siphash"

// cacheShardKey0/cacheShardKey1 are fixed random siphash keys: any fixed
// pair works as long as it's consistent within a process.
const (
	cacheShardKey0 = 0x5d1ec810febed702
	cacheShardKey1 = 0x1ec8105d02d7befe
)

// cacheShardCount is the number of stripes MetadataCache splits its
// table map across, each with its own RWMutex, to reduce contention
// under many concurrently-queried tables.
const cacheShardCount = 16

// shardFor picks a stable shard index for a table name via a keyed hash
// and modulo, so shard assignment doesn't skew toward adjacent names the
// way a non-cryptographic string hash sometimes does.
func shardFor(table string) int {
	h := siphash.Hash(cacheShardKey0, cacheShardKey1, []byte(table))
	return int(h % cacheShardCount)
}

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
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sneller-chcore/chgo/chframe"
	"github.com/sneller-chcore/chgo/chschema"
)

// MetadataCache is a process-wide table-name → *RowMetadata cache,
// sharded across cacheShardCount stripes to reduce contention, each
// guarded by its own sync.RWMutex so readers never block readers.
// Concurrent misses for the same table are de-duplicated with
// golang.org/x/sync/singleflight, the idiomatic Go analogue of the
// read-lock/write-lock-upgrade dance a hand-rolled cache would otherwise
// need.
type MetadataCache struct {
	shards [cacheShardCount]cacheShard
	group  singleflight.Group
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]*RowMetadata
}

// NewMetadataCache builds an empty cache.
func NewMetadataCache() *MetadataCache {
	c := &MetadataCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]*RowMetadata)
	}
	return c
}

// Fetch returns the cached *RowMetadata for table, calling introspect (a
// schema-introspection query, typically Client.describeColumns) on a
// cache miss. Concurrent calls for the same table share a single
// introspect call.
func (c *MetadataCache) Fetch(ctx context.Context, table string, desc RowDescriptor, mode chschema.Mode, introspect func(context.Context) ([]byte, error)) (*RowMetadata, error) {
	shard := &c.shards[shardFor(table)]

	shard.mu.RLock()
	if m, ok := shard.entries[table]; ok {
		shard.mu.RUnlock()
		return m, nil
	}
	shard.mu.RUnlock()

	v, err, _ := c.group.Do(table, func() (any, error) {
		shard.mu.RLock()
		if m, ok := shard.entries[table]; ok {
			shard.mu.RUnlock()
			return m, nil
		}
		shard.mu.RUnlock()

		header, err := introspect(ctx)
		if err != nil {
			return nil, err
		}
		columns, err := parseHeaderBytes(ctx, header)
		if err != nil {
			return nil, err
		}
		m, err := NewRowMetadata(desc, columns, mode)
		if err != nil {
			return nil, err
		}

		shard.mu.Lock()
		shard.entries[table] = m
		shard.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RowMetadata), nil
}

// Invalidate drops any cached metadata for table, so the next Fetch
// re-introspects the schema (e.g. after an ALTER TABLE).
func (c *MetadataCache) Invalidate(table string) {
	shard := &c.shards[shardFor(table)]
	shard.mu.Lock()
	delete(shard.entries, table)
	shard.mu.Unlock()
}

// oneShotChunkSource hands back a single pre-fetched buffer as the sole
// chunk of a ChunkSource, so a whole introspection response body can be
// run through the same header parser the streaming cursor uses.
type oneShotChunkSource struct {
	data []byte
	done bool
}

func (s *oneShotChunkSource) NextChunk(ctx context.Context) ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.data, nil
}

// parseHeaderBytes parses a RowBinaryWithNamesAndTypes column header out
// of a complete, already-buffered response body (as opposed to the
// streaming case, where ParseHeader runs directly against the cursor's
// FrameReader).
func parseHeaderBytes(ctx context.Context, body []byte) ([]chframe.Column, error) {
	r := chframe.NewFrameReader(&oneShotChunkSource{data: body})
	return chframe.ParseHeader(ctx, r)
}

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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sneller-chcore/chgo/chschema"
)

func TestMetadataCacheFetchCachesResult(t *testing.T) {
	cache := NewMetadataCache()
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	desc := RowDescriptor{Kind: KindPrimitive}

	var calls int32
	introspect := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return wire, nil
	}

	m1, err := cache.Fetch(context.Background(), "events", desc, chschema.EachRow, introspect)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	m2, err := cache.Fetch(context.Background(), "events", desc, chschema.EachRow, introspect)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if m1 != m2 {
		t.Fatalf("expected the same cached *RowMetadata pointer on the second fetch")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("introspect called %d times, want 1", calls)
	}
}

func TestMetadataCacheFetchDifferentTablesIndependent(t *testing.T) {
	cache := NewMetadataCache()
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	desc := RowDescriptor{Kind: KindPrimitive}
	introspect := func(ctx context.Context) ([]byte, error) { return wire, nil }

	if _, err := cache.Fetch(context.Background(), "a", desc, chschema.EachRow, introspect); err != nil {
		t.Fatalf("Fetch(a): %v", err)
	}
	if _, err := cache.Fetch(context.Background(), "b", desc, chschema.EachRow, introspect); err != nil {
		t.Fatalf("Fetch(b): %v", err)
	}
}

func TestMetadataCacheInvalidateForcesReintrospection(t *testing.T) {
	cache := NewMetadataCache()
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	desc := RowDescriptor{Kind: KindPrimitive}

	var calls int32
	introspect := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return wire, nil
	}

	if _, err := cache.Fetch(context.Background(), "events", desc, chschema.EachRow, introspect); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	cache.Invalidate("events")
	if _, err := cache.Fetch(context.Background(), "events", desc, chschema.EachRow, introspect); err != nil {
		t.Fatalf("Fetch after invalidate: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("introspect called %d times after invalidate, want 2", calls)
	}
}

func TestMetadataCacheFetchPropagatesIntrospectError(t *testing.T) {
	cache := NewMetadataCache()
	desc := RowDescriptor{Kind: KindPrimitive}
	wantErr := errBoom
	introspect := func(ctx context.Context) ([]byte, error) { return nil, wantErr }

	_, err := cache.Fetch(context.Background(), "events", desc, chschema.EachRow, introspect)
	if err != wantErr {
		t.Fatalf("Fetch error = %v, want %v", err, wantErr)
	}
}

func TestMetadataCacheFetchDeduplicatesConcurrentMisses(t *testing.T) {
	cache := NewMetadataCache()
	wire := encodeHeaderWire([]string{"id"}, []string{"UInt64"})
	desc := RowDescriptor{Kind: KindPrimitive}

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	introspect := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return wire, nil
	}

	var wg sync.WaitGroup
	results := make([]*RowMetadata, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := cache.Fetch(context.Background(), "events", desc, chschema.EachRow, introspect)
			if err != nil {
				t.Errorf("Fetch: %v", err)
				return
			}
			results[i] = m
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("introspect called %d times for concurrent misses, want 1", calls)
	}
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent fetches returned distinct *RowMetadata pointers")
		}
	}
}

type boomError struct{}

func (boomError) Error() string { return "introspect boom" }

var errBoom error = boomError{}

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
	"time"
)

// DefaultMaxRows is the row-count threshold Inserter uses when none is
// configured explicitly.
const DefaultMaxRows = 250_000

// Quantities reports how much an Inserter has flushed: across one
// sealed commit, or, from End, since the last sealed commit.
type Quantities struct {
	Rows         uint64
	Transactions uint64
	Bytes        uint64
}

// Inserter wraps a sequence of InsertPipelines, batching writes and
// sealing the current pipeline once a row-count, byte-count, or elapsed
// time threshold is met. It never spawns a timer of its own; threshold
// checks happen only inside commit, so an application that wants
// wall-clock-driven flushing drives commit itself (TimeLeft helps size
// that loop).
type Inserter struct {
	newPipeline func() *InsertPipeline
	pipeline    *InsertPipeline

	maxRows  uint64
	maxBytes uint64
	ticks    *ticks

	mu               sync.Mutex
	committed        Quantities
	uncommittedRows  uint64
	uncommittedBytes uint64
}

// NewInserter builds an Inserter over pipelines produced by newPipeline
// (called once now and again after every sealed commit). maxRows of zero
// falls back to DefaultMaxRows; maxBytes of zero disables the byte
// threshold; period of zero disables the time threshold.
func NewInserter(newPipeline func() *InsertPipeline, maxRows, maxBytes uint64, period time.Duration, periodBias float64) *Inserter {
	if maxRows == 0 {
		maxRows = DefaultMaxRows
	}
	return &Inserter{
		newPipeline: newPipeline,
		pipeline:    newPipeline(),
		maxRows:     maxRows,
		maxBytes:    maxBytes,
		ticks:       newTicks(period, periodBias),
	}
}

// SetPeriod reconfigures the time threshold and its jitter fraction,
// rescheduling the next tick immediately.
func (ins *Inserter) SetPeriod(period time.Duration, periodBias float64) {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.ticks.configure(period, periodBias)
}

// TimeLeft reports how long until the next time-based commit threshold
// fires, or zero if no period is configured.
func (ins *Inserter) TimeLeft() time.Duration {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.ticks.timeLeft(time.Now())
}

// Write buffers row into the current pipeline.
func (ins *Inserter) Write(ctx context.Context, row []byte) error {
	if err := ins.pipeline.Write(ctx, row); err != nil {
		return err
	}
	ins.mu.Lock()
	ins.uncommittedRows++
	ins.uncommittedBytes += uint64(len(row))
	ins.mu.Unlock()
	return nil
}

// Commit folds buffered writes into the running totals and, if any
// threshold is met, seals the current pipeline, starts a new one, and
// returns the Quantities flushed. If no threshold is met it returns a
// zero Quantities without touching the pipeline.
func (ins *Inserter) Commit(ctx context.Context) (Quantities, error) {
	ins.mu.Lock()
	ins.foldUncommittedLocked()
	now := time.Now()
	if !ins.thresholdReachedLocked(now) {
		ins.mu.Unlock()
		return Quantities{}, nil
	}
	flushed := ins.committed
	ins.committed = Quantities{}
	pipeline := ins.pipeline
	ins.mu.Unlock()

	_, err := pipeline.End(ctx)

	ins.mu.Lock()
	ins.pipeline = ins.newPipeline()
	ins.ticks.reschedule(now)
	ins.mu.Unlock()

	if err != nil {
		return Quantities{}, err
	}
	return flushed, nil
}

// End unconditionally seals the current pipeline and returns the
// Quantities written since the last sealed commit; totals already
// returned by Commit are not included.
func (ins *Inserter) End(ctx context.Context) (Quantities, error) {
	ins.mu.Lock()
	ins.foldUncommittedLocked()
	flushed := ins.committed
	pipeline := ins.pipeline
	ins.mu.Unlock()

	if _, err := pipeline.End(ctx); err != nil {
		return Quantities{}, err
	}
	return flushed, nil
}

func (ins *Inserter) foldUncommittedLocked() {
	if ins.uncommittedRows == 0 {
		return
	}
	ins.committed.Rows += ins.uncommittedRows
	ins.committed.Bytes += ins.uncommittedBytes
	ins.committed.Transactions++
	ins.uncommittedRows = 0
	ins.uncommittedBytes = 0
}

func (ins *Inserter) thresholdReachedLocked(now time.Time) bool {
	return ins.committed.Rows >= ins.maxRows ||
		(ins.maxBytes > 0 && ins.committed.Bytes >= ins.maxBytes) ||
		ins.ticks.due(now)
}

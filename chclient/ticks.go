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

import "time"

// ticks schedules periodic Inserter commits with bounded jitter, so a
// fleet of inserters running the same period don't all flush at once
// without needing a shared clock. The jitter seed is derived from the
// low 16 bits of the elapsed nanoseconds at each reschedule, so two
// inserters started at different moments land on different offsets.
type ticks struct {
	period  time.Duration // zero means "no period configured"
	maxBias time.Duration
	origin  time.Time
	nextAt  time.Time
}

func newTicks(period time.Duration, periodBias float64) *ticks {
	now := time.Now()
	t := &ticks{origin: now, nextAt: now}
	t.configure(period, periodBias)
	return t
}

func (t *ticks) configure(period time.Duration, periodBias float64) {
	t.period = period
	t.maxBias = time.Duration(float64(period) * periodBias)
	if period > 0 {
		t.reschedule(time.Now())
	}
}

// reschedule recomputes nextAt from now, per the formula
// origin + (n+1)*period + 2*bias - maxBias, where bias = maxBias*coef
// and coef is derived from the low 16 bits of the elapsed nanoseconds.
func (t *ticks) reschedule(now time.Time) {
	if t.period <= 0 {
		return
	}
	elapsed := now.Sub(t.origin)
	coef := float64(elapsed.Nanoseconds()&0xffff) / 65535.0
	bias := time.Duration(float64(t.maxBias) * coef)
	n := elapsed.Nanoseconds() / int64(t.period)
	t.nextAt = t.origin.Add(time.Duration(n+1)*t.period + 2*bias - t.maxBias)
	if !t.nextAt.After(now) {
		t.nextAt = t.nextAt.Add(t.period)
	}
}

// due reports whether now has reached the scheduled tick. It always
// returns false when no period is configured.
func (t *ticks) due(now time.Time) bool {
	return t.period > 0 && !now.Before(t.nextAt)
}

// timeLeft returns the duration until the next tick, or zero if no
// period is configured.
func (t *ticks) timeLeft(now time.Time) time.Duration {
	if t.period <= 0 {
		return 0
	}
	if !now.Before(t.nextAt) {
		return 0
	}
	return t.nextAt.Sub(now)
}

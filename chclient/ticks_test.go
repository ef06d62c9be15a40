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
	"testing"
	"time"
)

func TestTicksNoPeriodNeverDue(t *testing.T) {
	tk := newTicks(0, 0.1)
	if tk.due(time.Now().Add(24 * time.Hour)) {
		t.Fatalf("a ticks with no period configured should never be due")
	}
	if tk.timeLeft(time.Now()) != 0 {
		t.Fatalf("timeLeft with no period configured should be zero")
	}
}

func TestTicksBecomesDueAfterPeriod(t *testing.T) {
	tk := newTicks(10*time.Millisecond, 0)
	now := time.Now()
	if tk.due(now) {
		t.Fatalf("should not be due immediately after construction")
	}
	if tk.due(now.Add(20 * time.Millisecond)) != true {
		t.Fatalf("should be due after the period elapses")
	}
}

func TestTicksTimeLeftDecreasesTowardZero(t *testing.T) {
	tk := newTicks(100*time.Millisecond, 0)
	now := time.Now()
	left1 := tk.timeLeft(now)
	left2 := tk.timeLeft(now.Add(50 * time.Millisecond))
	if left1 <= 0 {
		t.Fatalf("timeLeft should be positive right after construction, got %v", left1)
	}
	if left2 >= left1 {
		t.Fatalf("timeLeft should decrease as time passes: %v then %v", left1, left2)
	}
}

func TestTicksRescheduleAdvancesNextTick(t *testing.T) {
	tk := newTicks(10*time.Millisecond, 0)
	now := time.Now()
	due := now.Add(15 * time.Millisecond)
	if !tk.due(due) {
		t.Fatalf("expected due at %v", due)
	}
	tk.reschedule(due)
	if tk.due(due) {
		t.Fatalf("should not be immediately due again right after reschedule")
	}
}

func TestTicksConfigureZeroDisablesPeriod(t *testing.T) {
	tk := newTicks(10*time.Millisecond, 0)
	tk.configure(0, 0)
	if tk.due(time.Now().Add(time.Hour)) {
		t.Fatalf("configure(0, _) should disable the time threshold")
	}
}

func TestTicksJitterStaysWithinBias(t *testing.T) {
	// reschedule must never push nextAt more than period+maxBias beyond
	// "now", and never land at or before "now".
	period := 50 * time.Millisecond
	tk := newTicks(period, 0.2)
	now := time.Now()
	tk.reschedule(now)
	if !tk.nextAt.After(now) {
		t.Fatalf("nextAt must be strictly after now")
	}
	maxBias := time.Duration(float64(period) * 0.2)
	if tk.nextAt.Sub(now) > period+maxBias {
		t.Fatalf("nextAt %v exceeds period+maxBias bound of %v", tk.nextAt.Sub(now), period+maxBias)
	}
}

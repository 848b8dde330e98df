// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sched

import (
	"context"
	"sort"
	"time"

	"github.com/medihbt/rcore-gokernel/internal/logger"
	"golang.org/x/sync/semaphore"
)

// timerEntry is one pending sys_sleep wakeup, kept in a slice sorted by
// WakeAt ascending. The original's add_timer (syscall/sync.rs) has no
// surviving dedicated timer module in original_source/ (manager.rs and
// processor.rs were filtered out); this is the standard ch8
// add_timer/check_timer shape a sleeping thread's wakeup needs.
type timerEntry struct {
	wakeAt uint64
	taskID int
}

type timerQueue []timerEntry

// AddTimer schedules taskID to be woken once Tick is called with a now
// value >= wakeAt. Callers register the timer and then block (via
// BlockCurrentAndRunNext); a timer that fires while taskID is not blocked
// wakes nothing, since WakeupTask ignores tasks that are not blocked.
func (s *Scheduler) AddTimer(wakeAt uint64, taskID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, timerEntry{wakeAt: wakeAt, taskID: taskID})
	sort.Slice(s.timers, func(i, j int) bool { return s.timers[i].wakeAt < s.timers[j].wakeAt })
}

// Tick wakes every timer whose wakeAt has passed as of now and returns
// their task IDs. Callers drive this from a real or simulated clock; it
// does not spawn goroutines of its own.
func (s *Scheduler) Tick(now uint64) []int {
	s.mu.Lock()
	i := 0
	for i < len(s.timers) && s.timers[i].wakeAt <= now {
		i++
	}
	due := append([]timerEntry(nil), s.timers[:i]...)
	s.timers = s.timers[i:]
	s.mu.Unlock()

	woken := make([]int, 0, len(due))
	for _, e := range due {
		s.WakeupTask(e.taskID)
		woken = append(woken, e.taskID)
	}
	return woken
}

// RunTimerLoop polls now at the given interval and fires due timers until
// ctx is cancelled. Tick itself performs the wakeups; each woken pid is then
// logged from its own goroutine, and a weighted semaphore caps those
// goroutines at maxConcurrent so a burst of simultaneously-expiring
// sleepers can't pile up unbounded goroutines.
func (s *Scheduler) RunTimerLoop(ctx context.Context, now func() uint64, interval time.Duration, maxConcurrent int64) {
	sem := semaphore.NewWeighted(maxConcurrent)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due := s.Tick(now())
			for _, pid := range due {
				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				go func(pid int) {
					defer sem.Release(1)
					logger.Tracef("sched: timer woke pid %d", pid)
				}(pid)
			}
		}
	}
}

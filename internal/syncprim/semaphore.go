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

package syncprim

import "sync"

// healthCheckThreshold is the access-count watermark down's return value
// signals past, mirroring the original's "access_cnt >= 10000" magic
// number. Its exact purpose (probably a coarse wear/contention signal
// surfaced to whatever calls sem_down) is not otherwise documented.
const healthCheckThreshold = 10000

// Semaphore is a counting semaphore with a FIFO wait queue. SemID is the
// slot this semaphore occupies in its owning process's semaphore table,
// stamped in at creation and otherwise unused here.
type Semaphore struct {
	SemID int

	sched     Scheduler
	mu        sync.Mutex
	count     int
	accessCnt int
	waitQueue []int
}

// NewSemaphore returns a semaphore initialized with resCount available
// units, occupying slot semID in its process's table.
func NewSemaphore(sched Scheduler, resCount, semID int) *Semaphore {
	return &Semaphore{SemID: semID, sched: sched, count: resCount}
}

// Up releases one unit, waking the longest-waiting blocked task if the
// semaphore was in deficit.
func (s *Semaphore) Up() bool {
	s.mu.Lock()
	s.count++
	var wake int
	shouldWake := false
	if s.count <= 0 && len(s.waitQueue) > 0 {
		wake = s.waitQueue[0]
		s.waitQueue = s.waitQueue[1:]
		shouldWake = true
	}
	s.mu.Unlock()
	if shouldWake {
		s.sched.WakeupTask(wake)
	}
	return true
}

// Down acquires one unit, blocking the caller if none are available. The
// returned bool is the health-check signal, true once this semaphore has
// been accessed healthCheckThreshold times or more; it is independent of
// whether the caller actually had to block.
func (s *Semaphore) Down() bool {
	s.mu.Lock()
	s.count--
	s.accessCnt++
	ret := s.accessCnt >= healthCheckThreshold
	mustBlock := s.count < 0
	if mustBlock {
		s.waitQueue = append(s.waitQueue, s.sched.CurrentTaskID())
	}
	s.mu.Unlock()
	if mustBlock {
		s.sched.BlockCurrentAndRunNext()
	}
	return ret
}

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

// Condvar is a condition variable: Wait releases the caller's mutex and
// blocks it until some other task calls Signal, then reacquires the
// mutex before returning. There is no spurious-wakeup loop here (the
// sys_condvar_wait syscall this backs does not retest a predicate) so
// callers must be prepared for the same signal-without-predicate-check
// semantics the syscall exposes.
type Condvar struct {
	sched     Scheduler
	mu        sync.Mutex
	waitQueue []int
}

// NewCondvar returns an empty condition variable bound to sched.
func NewCondvar(sched Scheduler) *Condvar {
	return &Condvar{sched: sched}
}

// Signal wakes the longest-waiting task blocked in Wait, if any.
func (c *Condvar) Signal() {
	c.mu.Lock()
	var wake int
	shouldWake := false
	if len(c.waitQueue) > 0 {
		wake = c.waitQueue[0]
		c.waitQueue = c.waitQueue[1:]
		shouldWake = true
	}
	c.mu.Unlock()
	if shouldWake {
		c.sched.WakeupTask(wake)
	}
}

// Wait unlocks mutex, blocks the caller until woken, then relocks mutex
// before returning. mutex must be held by the caller on entry.
func (c *Condvar) Wait(mutex Mutex) {
	mutex.Unlock()
	c.mu.Lock()
	c.waitQueue = append(c.waitQueue, c.sched.CurrentTaskID())
	c.mu.Unlock()
	c.sched.BlockCurrentAndRunNext()
	mutex.Lock()
}

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

import (
	"sync"

	"github.com/medihbt/rcore-gokernel/internal/logger"
)

// Mutex is the common surface both mutex flavors implement: lock, unlock,
// and a best-effort self-cycle probe the mutex_lock syscall runs before
// blocking when deadlock tracing is enabled.
type Mutex interface {
	Lock()
	Unlock()
	// TryTraceLockIsDead reports whether acquiring this lock right now
	// would deadlock the calling task against itself (already holds it,
	// or is already queued waiting for it). Always false for MutexSpin:
	// a spinlock never blocks, so self-deadlock shows up as livelock
	// instead, which this probe cannot see.
	TryTraceLockIsDead() bool
}

// MutexSpin busy-waits: a task that finds the lock held yields the CPU
// (staying on the ready queue) and retries, rather than blocking.
type MutexSpin struct {
	sched  Scheduler
	mu     sync.Mutex
	locked bool
}

// NewMutexSpin returns an unlocked spinlock bound to sched.
func NewMutexSpin(sched Scheduler) *MutexSpin {
	return &MutexSpin{sched: sched}
}

func (m *MutexSpin) Lock() {
	for {
		m.mu.Lock()
		if m.locked {
			m.mu.Unlock()
			m.sched.SuspendCurrentAndRunNext()
			continue
		}
		m.locked = true
		m.mu.Unlock()
		return
	}
}

func (m *MutexSpin) Unlock() {
	m.mu.Lock()
	m.locked = false
	m.mu.Unlock()
}

func (m *MutexSpin) TryTraceLockIsDead() bool { return false }

// MutexBlocking puts a task that finds the lock held onto a FIFO wait
// queue and blocks it; unlock wakes the head of the queue rather than
// clearing the locked flag, so the lock passes directly from holder to
// waiter without a race window where a third task could steal it.
type MutexBlocking struct {
	sched      Scheduler
	mu         sync.Mutex
	locked     bool
	waitQueue  []int
	lockHolder int
}

// NewMutexBlocking returns an unlocked blocking mutex bound to sched.
func NewMutexBlocking(sched Scheduler) *MutexBlocking {
	return &MutexBlocking{sched: sched, lockHolder: NoHolder}
}

func (m *MutexBlocking) Lock() {
	m.mu.Lock()
	if m.locked {
		tid := m.sched.CurrentTaskID()
		m.waitQueue = append(m.waitQueue, tid)
		m.mu.Unlock()
		m.sched.BlockCurrentAndRunNext()
		return
	}
	m.locked = true
	m.lockHolder = m.sched.CurrentTaskID()
	m.mu.Unlock()
}

func (m *MutexBlocking) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.locked {
		panic("syncprim: unlock of unlocked MutexBlocking")
	}
	if len(m.waitQueue) > 0 {
		next := m.waitQueue[0]
		m.waitQueue = m.waitQueue[1:]
		m.sched.WakeupTask(next)
		// lock_holder is deliberately left pointing at the task that just
		// unlocked: the woken task returns from Lock without updating it,
		// matching the original's unlock impl.
		return
	}
	m.locked = false
	m.lockHolder = NoHolder
}

func (m *MutexBlocking) TryTraceLockIsDead() bool {
	if !m.sched.DeadlockTracingEnabled() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.locked {
		return false
	}
	return m.traceLockIsDeadLocked()
}

func (m *MutexBlocking) traceLockIsDeadLocked() bool {
	current := m.sched.CurrentTaskID()
	if m.lockHolder == current {
		logger.Warnf("syncprim: self-deadlock, task %d already holds this mutex", current)
		return true
	}
	for _, tid := range m.waitQueue {
		if tid == current {
			logger.Warnf("syncprim: self-deadlock, task %d already waits on this mutex", current)
			return true
		}
	}
	return false
}

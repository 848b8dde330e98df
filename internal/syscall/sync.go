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

package syscall

import (
	"fmt"

	"github.com/medihbt/rcore-gokernel/internal/kerr"
	"github.com/medihbt/rcore-gokernel/internal/logger"
	"github.com/medihbt/rcore-gokernel/internal/syncprim"
	"github.com/medihbt/rcore-gokernel/internal/task"
)

// bankerThread is the banker-table row every sync primitive on a task
// charges against. The task package models one process as exactly one
// schedulable thread (there is no surviving thread table from the original's
// multi-threaded process_inner), so there is only ever one row to use.
const bankerThread = 0

// MutexCreate implements syscall 1001.
func (d *Dispatcher) MutexCreate(blocking bool) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysMutexCreate)
	if t == nil {
		return -1
	}
	var id int
	t.Access(func(inner *task.Inner) {
		var m syncprim.Mutex
		if blocking {
			m = syncprim.NewMutexBlocking(d.Sched)
		} else {
			m = syncprim.NewMutexSpin(d.Sched)
		}
		id = allocMutexSlot(inner, m)
	})
	return int64(id)
}

func allocMutexSlot(inner *task.Inner, m syncprim.Mutex) int {
	for i, slot := range inner.Mutexes {
		if slot == nil {
			inner.Mutexes[i] = m
			return i
		}
	}
	inner.Mutexes = append(inner.Mutexes, m)
	return len(inner.Mutexes) - 1
}

// MutexLock implements syscall 1002, returning kerr.DeadlockErrno if the
// pre-lock probe finds the caller would deadlock against itself.
func (d *Dispatcher) MutexLock(mutexID int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysMutexLock)
	if t == nil {
		return -1
	}
	m := lookupMutex(t, mutexID)
	if m == nil {
		return -1
	}
	if m.TryTraceLockIsDead() {
		logger.Warnf("syscall: sys_mutex_lock mutex %d would deadlock pid %d", mutexID, t.Pid)
		return kerr.DeadlockErrno
	}
	m.Lock()
	return 0
}

// MutexUnlock implements syscall 1003.
func (d *Dispatcher) MutexUnlock(mutexID int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysMutexUnlock)
	if t == nil {
		return -1
	}
	m := lookupMutex(t, mutexID)
	if m == nil {
		return -1
	}
	m.Unlock()
	return 0
}

func lookupMutex(t *task.TaskControlBlock, mutexID int) syncprim.Mutex {
	var m syncprim.Mutex
	t.Access(func(inner *task.Inner) {
		if mutexID < 0 || mutexID >= len(inner.Mutexes) {
			return
		}
		m = inner.Mutexes[mutexID]
	})
	return m
}

// SemaphoreCreate implements syscall 1004.
func (d *Dispatcher) SemaphoreCreate(resCount int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysSemaphoreCreate)
	if t == nil {
		return -1
	}
	var id int
	t.Access(func(inner *task.Inner) {
		id = allocSemaphoreSlot(inner)
		inner.Semaphores[id] = syncprim.NewSemaphore(d.Sched, resCount, id)
		inner.Banker.SetupResources(id, resCount)
	})
	return int64(id)
}

func allocSemaphoreSlot(inner *task.Inner) int {
	for i, slot := range inner.Semaphores {
		if slot == nil {
			return i
		}
	}
	inner.Semaphores = append(inner.Semaphores, nil)
	return len(inner.Semaphores) - 1
}

// SemaphoreUp implements syscall 1005.
func (d *Dispatcher) SemaphoreUp(semID int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysSemaphoreUp)
	if t == nil {
		return -1
	}
	sem := lookupSemaphore(t, semID)
	if sem == nil {
		return -1
	}
	t.Access(func(inner *task.Inner) { inner.Banker.DynExpandDealloc(bankerThread, semID) })
	sem.Up()
	return 0
}

// SemaphoreDown implements syscall 1006. It follows sys_semaphore_down's
// exact sequence: bump Need before any safety check, roll back and refuse
// with kerr.DeadlockErrno if deadlock tracing is on and the banker reports
// unsafe, otherwise block (or not) through the semaphore and finish with an
// unchecked allocation. The original's additional "every other thread in
// this process is already blocked" refusal has no analogue here: this
// kernel's process is exactly one schedulable task, so there is no thread
// table to count over (see DESIGN.md).
func (d *Dispatcher) SemaphoreDown(semID int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysSemaphoreDown)
	if t == nil {
		return -1
	}
	sem := lookupSemaphore(t, semID)
	if sem == nil {
		return -1
	}
	var tracing bool
	t.Access(func(inner *task.Inner) {
		inner.Banker.Need[bankerThread][semID]++
		tracing = inner.TraceDeadlock
	})
	if tracing {
		var safe bool
		t.Access(func(inner *task.Inner) { safe = inner.Banker.IsSafe() })
		if !safe {
			t.Access(func(inner *task.Inner) { inner.Banker.Need[bankerThread][semID]-- })
			d.Recorder.BankerVeto(fmt.Sprintf("sem-%d", semID))
			if d.VetoLimiter.Allow() {
				logger.Warnf("syscall: pid %d sem %d down refused, unsafe", t.Pid, semID)
			}
			return kerr.DeadlockErrno
		}
	}
	healthy := sem.Down()
	t.Access(func(inner *task.Inner) { inner.Banker.AllocateOneNoCheck(bankerThread, semID) })
	if !healthy {
		return kerr.DeadlockErrno
	}
	return 0
}

func lookupSemaphore(t *task.TaskControlBlock, semID int) *syncprim.Semaphore {
	var sem *syncprim.Semaphore
	t.Access(func(inner *task.Inner) {
		if semID < 0 || semID >= len(inner.Semaphores) {
			return
		}
		sem = inner.Semaphores[semID]
	})
	return sem
}

// CondvarCreate implements syscall 1007.
func (d *Dispatcher) CondvarCreate() (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysCondvarCreate)
	if t == nil {
		return -1
	}
	var id int
	t.Access(func(inner *task.Inner) {
		cv := syncprim.NewCondvar(d.Sched)
		for i, slot := range inner.Condvars {
			if slot == nil {
				inner.Condvars[i] = cv
				id = i
				return
			}
		}
		inner.Condvars = append(inner.Condvars, cv)
		id = len(inner.Condvars) - 1
	})
	return int64(id)
}

// CondvarSignal implements syscall 1008.
func (d *Dispatcher) CondvarSignal(condvarID int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysCondvarSignal)
	if t == nil {
		return -1
	}
	cv := lookupCondvar(t, condvarID)
	if cv == nil {
		return -1
	}
	cv.Signal()
	return 0
}

// CondvarWait implements syscall 1009.
func (d *Dispatcher) CondvarWait(condvarID, mutexID int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysCondvarWait)
	if t == nil {
		return -1
	}
	cv := lookupCondvar(t, condvarID)
	m := lookupMutex(t, mutexID)
	if cv == nil || m == nil {
		return -1
	}
	cv.Wait(m)
	return 0
}

func lookupCondvar(t *task.TaskControlBlock, condvarID int) *syncprim.Condvar {
	var cv *syncprim.Condvar
	t.Access(func(inner *task.Inner) {
		if condvarID < 0 || condvarID >= len(inner.Condvars) {
			return
		}
		cv = inner.Condvars[condvarID]
	})
	return cv
}

// EnableDeadlock implements syscall 1020.
func (d *Dispatcher) EnableDeadlock(enabled bool) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysEnableDeadlock)
	if t == nil {
		return -1
	}
	t.Access(func(inner *task.Inner) { inner.TraceDeadlock = enabled })
	return 0
}

// Sleep implements the supplemented sys_sleep: it registers a wakeup timer
// ms milliseconds out and blocks the caller, the same add_timer then
// block_current_and_run_next sequence sync.rs's sys_sleep uses. It has no
// syscall number of its own in spec.md's table.
func (d *Dispatcher) Sleep(ms uint64) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysSleep)
	if t == nil {
		return -1
	}
	wakeAt := d.Clock.Millis() + ms
	d.Sched.AddTimer(wakeAt, t.Pid)
	d.Sched.BlockCurrentAndRunNext()
	return 0
}

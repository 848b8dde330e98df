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

// Package sched is the stride scheduler: a container/heap-ordered ready
// queue plus the suspend/block/wakeup transitions internal/syncprim's
// blocking primitives call back into. The original splits this across
// task/manager.rs (the ready queue) and task/processor.rs (current-task
// tracking, schedule()); neither file survived the source filter that
// produced original_source/, so this package is built from task/mod.rs's
// suspend_current_and_run_next/exit_current_and_run_next call shape plus
// the standard rCore-tutorial ch8 stride-scheduling design those functions
// assume.
package sched

import (
	"container/heap"
	"strconv"
	"sync"

	"github.com/medihbt/rcore-gokernel/internal/metrics"
	"github.com/medihbt/rcore-gokernel/internal/task"
)

// Scheduler owns the ready queue and current-task pointer for one kernel
// instance. It implements syncprim.Scheduler so blocking primitives can
// suspend/block/wake through it without syncprim importing this package.
type Scheduler struct {
	mu sync.Mutex

	tasks   map[int]*task.TaskControlBlock
	ready   readyQueue
	blocked map[int]*task.TaskControlBlock
	current *task.TaskControlBlock

	deadlockTracing bool
	recorder        metrics.Recorder

	timers timerQueue
}

// New returns an empty scheduler. deadlockTracing is the process-wide
// default for TaskControlBlock.TraceDeadlock on tasks this scheduler adds
// that don't override it; recorder may be metrics.NewNoop().
func New(deadlockTracing bool, recorder metrics.Recorder) *Scheduler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Scheduler{
		tasks:           map[int]*task.TaskControlBlock{},
		blocked:         map[int]*task.TaskControlBlock{},
		deadlockTracing: deadlockTracing,
		recorder:        recorder,
	}
}

// AddTask registers t and pushes it onto the ready queue, the Go analogue
// of the original's add_task.
func (s *Scheduler) AddTask(t *task.TaskControlBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.Pid] = t
	if s.deadlockTracing {
		t.Access(func(inner *task.Inner) { inner.TraceDeadlock = true })
	}
	heap.Push(&s.ready, t)
}

// PickNext pops the lowest-stride ready task, marks it Running, and makes
// it current. It returns nil if the ready queue is empty, the point at
// which a caller (cmd's boot loop) should stop or idle.
func (s *Scheduler) PickNext() *task.TaskControlBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickNextLocked()
}

func (s *Scheduler) pickNextLocked() *task.TaskControlBlock {
	if s.ready.Len() == 0 {
		s.current = nil
		return nil
	}
	next := heap.Pop(&s.ready).(*task.TaskControlBlock)
	s.current = next
	next.OnActivate()
	s.recorder.SchedulerTick(taskLabel(next))
	return next
}

// CurrentTaskID implements syncprim.Scheduler. It returns syncprim.NoHolder
// when no task is currently running.
func (s *Scheduler) CurrentTaskID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return -1
	}
	return s.current.Pid
}

// SuspendCurrentAndRunNext implements syncprim.Scheduler: the current task
// goes back to Ready and rejoins the heap, then the next-lowest-stride task
// becomes current. Mirrors suspend_current_and_run_next in task/mod.rs.
func (s *Scheduler) SuspendCurrentAndRunNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current
	if cur == nil {
		return
	}
	cur.OnDeactivate(task.StatusReady)
	heap.Push(&s.ready, cur)
	s.pickNextLocked()
}

// BlockCurrentAndRunNext implements syncprim.Scheduler: the current task
// moves to Blocked and out of the ready queue entirely (it will only come
// back via WakeupTask), then the next task runs.
func (s *Scheduler) BlockCurrentAndRunNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current
	if cur == nil {
		return
	}
	cur.OnDeactivate(task.StatusBlocked)
	s.blocked[cur.Pid] = cur
	s.pickNextLocked()
}

// ExitCurrentAndRunNext marks the current task Zombie with exitCode,
// reparents its children onto init, and picks the next ready task. Unlike
// BlockCurrentAndRunNext the exiting task is not kept in the blocked map:
// a zombie is only ever reached again through Lookup by a wait() syscall,
// never woken. Mirrors exit_current_and_run_next in task/mod.rs.
func (s *Scheduler) ExitCurrentAndRunNext(exitCode int, init *task.TaskControlBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current
	if cur == nil {
		return
	}
	cur.Exit(exitCode, init)
	s.pickNextLocked()
}

// WakeupTask implements syncprim.Scheduler: moves a blocked task back onto
// the ready queue. A wakeup for a task that isn't blocked (already woken,
// unknown pid) is a silent no-op, matching a spurious wakeup racing a
// second waker under the original's coarse locking.
func (s *Scheduler) WakeupTask(taskID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.blocked[taskID]
	if !ok {
		return
	}
	delete(s.blocked, taskID)
	heap.Push(&s.ready, t)
}

// DeadlockTracingEnabled implements syncprim.Scheduler, reporting whether
// the current task opted into the banker-backed deadlock probe via
// sys_enable_deadlock_detect.
func (s *Scheduler) DeadlockTracingEnabled() bool {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return s.deadlockTracing
	}
	traced := false
	cur.Access(func(inner *task.Inner) { traced = inner.TraceDeadlock })
	return traced
}

// Lookup returns the registered task for pid, or nil.
func (s *Scheduler) Lookup(pid int) *task.TaskControlBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[pid]
}

// Forget drops a zombie task's bookkeeping once it has been reaped. It does
// not touch the ready/blocked queues: callers must only forget tasks that
// are neither.
func (s *Scheduler) Forget(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, pid)
}

func taskLabel(t *task.TaskControlBlock) string {
	return "pid-" + strconv.Itoa(t.Pid)
}

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

// Package syscall is the one user/kernel boundary every syscall in spec.md
// §6 crosses: it resolves the calling task through a Dispatcher's
// Scheduler, stages arguments through internal/usermem, and calls into
// internal/diskfs, internal/mmap, and internal/syncprim on the kernel side.
// It corresponds to the original's syscall/ directory (process.rs, fs.rs,
// sync.rs), fanned out here across dispatcher.go, fs.go, mm.go, and sync.go
// the same way.
package syscall

import (
	"github.com/medihbt/rcore-gokernel/internal/banker"
	"github.com/medihbt/rcore-gokernel/internal/clock"
	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/medihbt/rcore-gokernel/internal/logger"
	"github.com/medihbt/rcore-gokernel/internal/metrics"
	"github.com/medihbt/rcore-gokernel/internal/sched"
	"github.com/medihbt/rcore-gokernel/internal/task"
)

// Dispatcher holds everything a syscall implementation needs to reach: the
// scheduler (current task, suspend/block/wake), the filesystem root
// (path resolution for open/linkat/unlinkat), a device id stamped into
// every Stat this process observes, the boot clock get_time/task_info read
// from, and a metrics sink.
type Dispatcher struct {
	Sched    *sched.Scheduler
	Root     *diskfs.Inode
	DevID    uint64
	Clock    *clock.KernelClock
	Recorder metrics.Recorder
	// VetoLimiter bounds how often a banker-veto warning is logged; nil
	// logs every veto.
	VetoLimiter *banker.VetoRateLimiter

	init *task.TaskControlBlock
}

// New returns a Dispatcher wired to sched and root. init is the task that
// inherits orphaned children on exit (see Exit); recorder may be nil, in
// which case metrics are discarded.
func New(s *sched.Scheduler, root *diskfs.Inode, devID uint64, clk *clock.KernelClock, init *task.TaskControlBlock, recorder metrics.Recorder) *Dispatcher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Dispatcher{Sched: s, Root: root, DevID: devID, Clock: clk, init: init, Recorder: recorder}
}

// current returns the task the running syscall belongs to, recording the
// syscall number against its statistics. Every dispatcher method starts by
// calling this so per-task syscall counters (for sys_task_info) stay
// accurate without every method repeating the Lookup/Access dance.
func (d *Dispatcher) current(syscallID int) *task.TaskControlBlock {
	pid := d.Sched.CurrentTaskID()
	t := d.Sched.Lookup(pid)
	if t == nil {
		return nil
	}
	t.Access(func(inner *task.Inner) { inner.Statistics.OnSyscall(syscallID) })
	return t
}

// Recover turns a panic raised by a fatal invariant violation deep in
// diskfs/mmap/task (spec.md §7's "fatal invariant" class: a non-directory
// inode used as a directory, an unlock of an unlocked mutex, and similar
// programming errors) into a -1 syscall return instead of crashing the
// whole kernel simulation. Call as `defer d.Recover(&ret)` at the top of a
// dispatcher method.
func (d *Dispatcher) Recover(ret *int64) {
	if r := recover(); r != nil {
		logger.Errorf("syscall: recovered fatal invariant violation: %v", r)
		*ret = -1
	}
}

// Exit implements syscall 93. It never returns to the caller in the
// original (sys_exit is marked `-> !`); here it simply performs the state
// transition and lets the dispatcher's own caller (cmd's run loop) notice
// there is no return address to resume.
func (d *Dispatcher) Exit(exitCode int) {
	pid := d.Sched.CurrentTaskID()
	d.current(SysExit)
	logger.Tracef("syscall: pid %d sys_exit(%d)", pid, exitCode)
	d.Sched.ExitCurrentAndRunNext(exitCode, d.init)
}

// Yield implements syscall 124.
func (d *Dispatcher) Yield() int64 {
	d.current(SysYield)
	d.Sched.SuspendCurrentAndRunNext()
	return 0
}

// Sbrk implements syscall 214, growing or shrinking the calling task's heap
// by delta bytes and returning the break value from before the change, or
// -1 if the change was refused.
func (d *Dispatcher) Sbrk(delta int64) int64 {
	t := d.current(SysSbrk)
	if t == nil {
		return -1
	}
	oldBrk, ok := t.ChangeProgramBrk(delta)
	if !ok {
		return -1
	}
	return int64(oldBrk)
}

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
	"github.com/medihbt/rcore-gokernel/internal/clock"
	"github.com/medihbt/rcore-gokernel/internal/task"
	"github.com/medihbt/rcore-gokernel/internal/usermem"
)

// TimeVal is sys_get_time's output record.
type TimeVal struct {
	Sec  uint64
	Usec uint64
}

// TaskInfo is sys_task_info's output record: status, per-syscall counters,
// and total running time in milliseconds since first activation.
type TaskInfo struct {
	Status       task.TaskStatus
	SyscallTimes [task.MaxSyscallNum]uint32
	TimeMillis   uint64
}

// GetTime implements syscall 169.
func (d *Dispatcher) GetTime(userTs uintptr) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysGetTime)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	sec, usec := d.Clock.SecUsec()
	tv := TimeVal{Sec: sec, Usec: usec}
	if err := usermem.CopyObjToUser(tr, userTs, &tv); err != nil {
		return -1
	}
	return 0
}

// TaskInfo implements syscall 410.
func (d *Dispatcher) TaskInfo(userTi uintptr) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysTaskInfo)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	var info TaskInfo
	var startup uint64
	t.Access(func(inner *task.Inner) {
		info.Status = inner.Status
		info.SyscallTimes = inner.Statistics.SyscallTimes
		startup = inner.Statistics.StartupTime
	})
	info.TimeMillis = (d.Clock.Ticks() - startup) * 1000 / clock.Freq
	if err := usermem.CopyObjToUser(tr, userTi, &info); err != nil {
		return -1
	}
	return 0
}

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

package task

// MaxSyscallNum bounds TcbStatistics' per-syscall counter array, sized to
// the original's MAX_SYSCALL_NUM. Syscall numbers at or above it (the
// 1001.. sync family, 1020 and 1100) are not counted.
const MaxSyscallNum = 512

// TcbStatistics is a task's runtime bookkeeping: when it first ran, how
// many times it has issued each syscall, and the timestamps needed to
// compute how long its last run slice lasted (which SchedInfo.Update
// consumes to advance stride).
type TcbStatistics struct {
	StartupTime        uint64
	SyscallTimes       [MaxSyscallNum]uint32
	LastActivateTime   uint64
	LastDeactivateTime uint64
}

// nowFunc is overridden in tests; production code wires it to internal/clock
// through SetClock.
var nowFunc = func() uint64 { return 0 }

// SetClock installs f as the tick source every TcbStatistics in this process
// reads from. cmd's boot wiring calls this once with an internal/clock
// KernelClock's Ticks method before spawning the init task.
func SetClock(f func() uint64) {
	nowFunc = f
}

// OnActivate records the task becoming Running.
func (s *TcbStatistics) OnActivate() {
	now := nowFunc()
	if s.StartupTime == 0 {
		s.StartupTime = now
	}
	s.LastActivateTime = now
}

// OnDeactivate records the task leaving Running.
func (s *TcbStatistics) OnDeactivate() {
	s.LastDeactivateTime = nowFunc()
}

// LastRunTime returns the duration of the most recently completed run
// slice. Panics if called before a matching OnActivate/OnDeactivate pair,
// mirroring the original's assert.
func (s *TcbStatistics) LastRunTime() uint64 {
	if s.LastDeactivateTime < s.LastActivateTime {
		panic("task: LastRunTime called with no completed run slice")
	}
	return s.LastDeactivateTime - s.LastActivateTime
}

// OnSyscall increments the counter for syscallID; ids outside
// [0, MaxSyscallNum) are ignored.
func (s *TcbStatistics) OnSyscall(syscallID int) {
	if syscallID < 0 || syscallID >= MaxSyscallNum {
		return
	}
	s.SyscallTimes[syscallID]++
}

// Reset clears startup time and every syscall counter, keeping the
// activate/deactivate timestamps (exec keeps the process's wall-clock
// history, only its "since when has this image been running" resets).
func (s *TcbStatistics) Reset() {
	s.StartupTime = 0
	s.SyscallTimes = [MaxSyscallNum]uint32{}
}

// OnExec reacts to exec() replacing the task's program image.
func (s *TcbStatistics) OnExec() {
	s.Reset()
}

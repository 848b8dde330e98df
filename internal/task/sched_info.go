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

const (
	// BigStride is the stride-scheduling constant BIG_STRIDE/priority is
	// divided from. 65537 (2^16+1, a prime) is large enough to keep pass big enough
	// that integer division by any legal priority still leaves meaningful
	// precision.
	BigStride = 65537
	// DefaultPriority is the priority new tasks start with.
	DefaultPriority = 16
	// DefaultPass is BigStride/DefaultPriority, precomputed since nearly
	// every task runs at DefaultPriority.
	DefaultPass = BigStride / DefaultPriority
)

// SchedInfo is a task's stride-scheduling state: priority (and the pass it
// implies) plus the accumulated stride the scheduler orders its ready
// queue by.
type SchedInfo struct {
	priority int
	pass     int
	stride   int
}

// NewSchedInfo returns scheduling info at DefaultPriority.
func NewSchedInfo() SchedInfo {
	return SchedInfo{priority: DefaultPriority, pass: DefaultPass}
}

// NewSchedInfoWithPriority returns scheduling info at the given priority.
// Priority must be >= 2 so pass stays finite and bounded; callers are
// expected to validate this before calling (internal/config validates the
// configured default).
func NewSchedInfoWithPriority(priority int) SchedInfo {
	return SchedInfo{priority: priority, pass: passFor(priority)}
}

func passFor(priority int) int {
	if priority == DefaultPriority {
		return DefaultPass
	}
	return BigStride / priority
}

// CloneFrom returns scheduling info for a forked child: same priority and
// pass as the parent, stride reset to zero so the child starts at the
// front of the ready queue rather than inheriting the parent's history.
func CloneFrom(parent SchedInfo) SchedInfo {
	return SchedInfo{priority: parent.priority, pass: parent.pass}
}

// FullReset restores DefaultPriority, called by exec.
func (s *SchedInfo) FullReset() {
	*s = NewSchedInfo()
}

// Stride returns the accumulated stride.
func (s *SchedInfo) Stride() int { return s.stride }

// ResetStride zeroes the accumulated stride.
func (s *SchedInfo) ResetStride() { s.stride = 0 }

// Pass returns the current pass.
func (s *SchedInfo) Pass() int { return s.pass }

// Priority returns the current priority.
func (s *SchedInfo) Priority() int { return s.priority }

// SetPriority updates priority and recomputes pass.
func (s *SchedInfo) SetPriority(priority int) {
	s.priority = priority
	s.pass = passFor(priority)
}

// Update advances stride by pass*dtime, called on deactivation with the
// number of ticks the task just ran.
func (s *SchedInfo) Update(dtime int) {
	s.stride += s.pass * dtime
}

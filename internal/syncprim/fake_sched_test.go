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

// fakeSched is a single-goroutine-at-a-time scheduler double: the current
// task is whatever the test last set with setCurrent, blocking/suspending
// are recorded rather than actually switching execution, and WakeupTask
// just records which tids were woken. Good enough to exercise the
// bookkeeping in mutex/semaphore/condvar without a real scheduler.
type fakeSched struct {
	mu              sync.Mutex
	current         int
	deadlockTracing bool
	suspended       []int
	blocked         []int
	woken           []int
	// onSuspend, if set, runs synchronously inside SuspendCurrentAndRunNext
	// -- lets a test simulate another task releasing a spinlock mid-spin
	// without needing a second goroutine.
	onSuspend func()
}

func newFakeSched() *fakeSched {
	return &fakeSched{}
}

func (f *fakeSched) setCurrent(tid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = tid
}

func (f *fakeSched) CurrentTaskID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSched) SuspendCurrentAndRunNext() {
	f.mu.Lock()
	f.suspended = append(f.suspended, f.current)
	hook := f.onSuspend
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (f *fakeSched) BlockCurrentAndRunNext() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked = append(f.blocked, f.current)
}

func (f *fakeSched) WakeupTask(taskID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.woken = append(f.woken, taskID)
}

func (f *fakeSched) DeadlockTracingEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deadlockTracing
}

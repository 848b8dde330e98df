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

// Package syncprim implements the user-facing synchronization primitives a
// process hands out through the 1001..1010 syscall family: spin and
// blocking mutexes, counting semaphores, and condition variables. None of
// them touch the ready queue directly; each one is handed a Scheduler at
// construction time and calls back into it exactly where the original
// sync/mutex.rs and sync/semaphore.rs call into task::, so this package can
// be built and tested before the scheduler it runs on top of exists.
package syncprim

// Scheduler is the narrow slice of scheduling operations a synchronization
// primitive needs: who is currently running, how to give up the CPU while
// staying runnable (spin wait), how to give up the CPU while becoming
// non-runnable until woken (blocking wait), how to wake a blocked task back
// onto the ready queue, and whether the current process has deadlock
// tracing turned on. internal/sched implements this; this package's tests
// supply a fake.
type Scheduler interface {
	// CurrentTaskID returns the tid of the task calling into the primitive.
	CurrentTaskID() int
	// SuspendCurrentAndRunNext yields the CPU but keeps the caller on the
	// ready queue (used by the spinlock's busy-wait).
	SuspendCurrentAndRunNext()
	// BlockCurrentAndRunNext removes the caller from the ready queue until
	// some other task calls WakeupTask on it.
	BlockCurrentAndRunNext()
	// WakeupTask returns taskID to the ready queue.
	WakeupTask(taskID int)
	// DeadlockTracingEnabled reports whether the caller's process has
	// enabled deadlock detection (syscall 1020, EnableDeadlock).
	DeadlockTracingEnabled() bool
}

// NoHolder marks a mutex as currently unheld, matching the original's
// usize::MAX sentinel for lock_holder.
const NoHolder = -1

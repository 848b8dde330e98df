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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexSpin_LockUnlockCycles(t *testing.T) {
	sched := newFakeSched()
	sched.setCurrent(1)
	m := NewMutexSpin(sched)

	m.Lock()
	assert.True(t, m.locked)
	m.Unlock()
	assert.False(t, m.locked)
	assert.False(t, m.TryTraceLockIsDead())
}

func TestMutexSpin_SecondLockerSuspendsUntilUnlocked(t *testing.T) {
	sched := newFakeSched()
	m := NewMutexSpin(sched)

	sched.setCurrent(1)
	m.Lock()

	// Task 2 finds the lock held; the fake scheduler's SuspendCurrentAndRunNext
	// hook simulates task 1 releasing the lock during the first spin so
	// task 2's retry succeeds instead of looping forever.
	sched.setCurrent(2)
	sched.onSuspend = func() {
		m.Unlock()
		sched.onSuspend = nil
	}
	m.Lock()

	assert.Equal(t, []int{2}, sched.suspended)
	assert.True(t, m.locked)
}

func TestMutexBlocking_SecondLockerBlocksAndIsWokenByUnlock(t *testing.T) {
	sched := newFakeSched()
	m := NewMutexBlocking(sched)

	sched.setCurrent(1)
	m.Lock()
	assert.Equal(t, 1, m.lockHolder)

	sched.setCurrent(2)
	m.Lock() // lock held, so this just records tid 2 on the wait queue
	assert.Contains(t, sched.blocked, 2)
	assert.Equal(t, []int{2}, m.waitQueue)

	sched.setCurrent(1)
	m.Unlock()
	assert.Contains(t, sched.woken, 2)
	assert.Empty(t, m.waitQueue)
}

func TestMutexBlocking_UnlockOfUnlockedPanics(t *testing.T) {
	sched := newFakeSched()
	m := NewMutexBlocking(sched)
	assert.Panics(t, func() { m.Unlock() })
}

func TestMutexBlocking_TryTraceLockIsDead_DetectsSelfHolder(t *testing.T) {
	sched := newFakeSched()
	sched.deadlockTracing = true
	m := NewMutexBlocking(sched)

	sched.setCurrent(1)
	m.Lock()
	require.Equal(t, 1, m.lockHolder)

	assert.True(t, m.TryTraceLockIsDead())
}

func TestMutexBlocking_TryTraceLockIsDead_FalseWhenTracingDisabled(t *testing.T) {
	sched := newFakeSched()
	m := NewMutexBlocking(sched)
	sched.setCurrent(1)
	m.Lock()

	assert.False(t, m.TryTraceLockIsDead())
}

func TestMutexBlocking_TryTraceLockIsDead_DetectsAlreadyWaiting(t *testing.T) {
	sched := newFakeSched()
	sched.deadlockTracing = true
	m := NewMutexBlocking(sched)

	sched.setCurrent(1)
	m.Lock()
	sched.setCurrent(2)
	m.Lock() // blocks, tid 2 now on wait queue

	assert.True(t, m.TryTraceLockIsDead())
}

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

func TestCondvar_WaitReleasesMutexAndBlocksUntilSignal(t *testing.T) {
	sched := newFakeSched()
	m := NewMutexBlocking(sched)
	cv := NewCondvar(sched)

	sched.setCurrent(1)
	m.Lock()
	require.True(t, m.locked)

	sched.onSuspend = nil
	// Wait unlocks m, parks tid 1 on the condvar, then immediately
	// re-locks m once BlockCurrentAndRunNext "returns" (our fake does not
	// actually suspend execution, it just records the call).
	cv.Wait(m)

	assert.Contains(t, sched.blocked, 1)
	assert.True(t, m.locked, "Wait must reacquire the mutex before returning")
	assert.Equal(t, 1, m.lockHolder)
}

func TestCondvar_SignalWakesOldestWaiter(t *testing.T) {
	sched := newFakeSched()
	cv := NewCondvar(sched)

	sched.mu.Lock()
	cv.waitQueue = []int{3, 7}
	sched.mu.Unlock()

	cv.Signal()
	assert.Equal(t, []int{3}, sched.woken)
	assert.Equal(t, []int{7}, cv.waitQueue)
}

func TestCondvar_SignalWithNoWaitersIsNoop(t *testing.T) {
	sched := newFakeSched()
	cv := NewCondvar(sched)
	cv.Signal()
	assert.Empty(t, sched.woken)
}

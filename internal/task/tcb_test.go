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

import (
	"bytes"
	"testing"

	"github.com/medihbt/rcore-gokernel/internal/mmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMemorySet is a minimal mmap.MemorySet double: a set of mapped page
// numbers, good enough to exercise brk growth/shrink and fork's address
// space clone callback without a real page table.
type fakeMemorySet struct {
	mapped map[uint64]mmap.MapPermission
}

func newFakeMemorySet() *fakeMemorySet {
	return &fakeMemorySet{mapped: map[uint64]mmap.MapPermission{}}
}

func (m *fakeMemorySet) Translate(vpn uint64) bool {
	_, ok := m.mapped[vpn]
	return ok
}

func (m *fakeMemorySet) InsertFramedArea(start, end uint64, perm mmap.MapPermission) error {
	for vpn := start / pageSize; vpn < end/pageSize; vpn++ {
		m.mapped[vpn] = perm
	}
	return nil
}

func (m *fakeMemorySet) UnmapRange(startVPN, npages uint64) bool {
	for vpn := startVPN; vpn < startVPN+npages; vpn++ {
		if _, ok := m.mapped[vpn]; !ok {
			return false
		}
		delete(m.mapped, vpn)
	}
	return true
}

func (m *fakeMemorySet) clone() *fakeMemorySet {
	cp := newFakeMemorySet()
	for k, v := range m.mapped {
		cp.mapped[k] = v
	}
	return cp
}

func newTestTask(pid int) *TaskControlBlock {
	stdin := &Stdin{Source: bytes.NewReader(nil)}
	stdout := &Stdout{Sink: &bytes.Buffer{}}
	return New(pid, newFakeMemorySet(), stdin, stdout, 0x1000)
}

func TestTaskControlBlock_NewWiresFdTableAndDefaults(t *testing.T) {
	tsk := newTestTask(1)
	tsk.Access(func(inner *Inner) {
		assert.Equal(t, StatusReady, inner.Status)
		assert.Equal(t, uint64(0x1000), inner.HeapBottom)
		assert.Equal(t, uint64(0x1000), inner.ProgramBrk)
		assert.NotNil(t, inner.FdTable.Get(1))
		assert.NotNil(t, inner.Banker)
	})
}

func TestTaskControlBlock_ActivateDeactivateAdvancesStride(t *testing.T) {
	withFakeClock(t, 0, 50)
	tsk := newTestTask(1)
	tsk.OnActivate()
	tsk.OnDeactivate(StatusReady)
	tsk.Access(func(inner *Inner) {
		assert.Equal(t, StatusReady, inner.Status)
		assert.Equal(t, inner.SchedInfo.Pass()*50, inner.SchedInfo.Stride())
	})
}

func TestTaskControlBlock_ForkClonesFdTableAndResetsStride(t *testing.T) {
	withFakeClock(t, 0, 10)
	parent := newTestTask(1)
	parent.OnActivate()
	parent.OnDeactivate(StatusReady)

	child := parent.Fork(2, func(ms mmap.MemorySet) mmap.MemorySet {
		return ms.(*fakeMemorySet).clone()
	})

	assert.Equal(t, 2, child.Pid)
	child.Access(func(inner *Inner) {
		assert.Equal(t, 0, inner.SchedInfo.Stride())
		assert.Same(t, parent, inner.Parent)
	})
	parent.Access(func(inner *Inner) {
		require.Len(t, inner.Children, 1)
		assert.Same(t, child, inner.Children[0])
	})
}

func TestTaskControlBlock_ExecResetsStatisticsAndSchedInfo(t *testing.T) {
	withFakeClock(t, 0, 10)
	tsk := newTestTask(1)
	tsk.OnActivate()
	tsk.OnDeactivate(StatusReady)
	newMs := newFakeMemorySet()
	tsk.Exec(newMs, 0x2000)
	tsk.Access(func(inner *Inner) {
		assert.Equal(t, uint64(0x2000), inner.HeapBottom)
		assert.Equal(t, uint64(0x2000), inner.ProgramBrk)
		assert.Equal(t, 0, inner.SchedInfo.Stride())
		assert.Equal(t, DefaultPriority, inner.SchedInfo.Priority())
		assert.Same(t, newMs, inner.MemorySet)
	})
}

func TestTaskControlBlock_ChangeProgramBrkGrowAndShrink(t *testing.T) {
	tsk := newTestTask(1)

	old, ok := tsk.ChangeProgramBrk(8192)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1000), old)
	tsk.Access(func(inner *Inner) {
		assert.Equal(t, uint64(0x1000+8192), inner.ProgramBrk)
	})

	_, ok = tsk.ChangeProgramBrk(-8192)
	require.True(t, ok)
	tsk.Access(func(inner *Inner) {
		assert.Equal(t, uint64(0x1000), inner.ProgramBrk)
	})
}

func TestTaskControlBlock_ChangeProgramBrkRejectsShrinkBelowHeapBottom(t *testing.T) {
	tsk := newTestTask(1)
	_, ok := tsk.ChangeProgramBrk(-1)
	assert.False(t, ok)
}

func TestTaskControlBlock_ExitReparentsChildrenToInit(t *testing.T) {
	withFakeClock(t, 0, 1, 2, 3)
	parent := newTestTask(1)
	init := newTestTask(0)
	child := parent.Spawn(2, newFakeMemorySet(), &Stdin{Source: bytes.NewReader(nil)}, &Stdout{Sink: &bytes.Buffer{}}, 0x1000)

	parent.Exit(7, init)

	assert.True(t, parent.IsZombie())
	parent.Access(func(inner *Inner) {
		assert.Equal(t, 7, inner.ExitCode)
		assert.Empty(t, inner.Children)
	})
	init.Access(func(inner *Inner) {
		require.Len(t, inner.Children, 1)
		assert.Same(t, child, inner.Children[0])
	})
	child.Access(func(inner *Inner) {
		assert.Same(t, init, inner.Parent)
	})
}

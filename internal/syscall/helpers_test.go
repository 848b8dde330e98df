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
	"bytes"
	"testing"

	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/medihbt/rcore-gokernel/internal/clock"
	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/medihbt/rcore-gokernel/internal/metrics"
	"github.com/medihbt/rcore-gokernel/internal/mmap"
	"github.com/medihbt/rcore-gokernel/internal/sched"
	"github.com/medihbt/rcore-gokernel/internal/task"
)

const fakeAddrSpaceSize = 1 << 20

// fakeMemorySet is a flat-backed MemorySet that also satisfies
// usermem.Translator, standing in for a real page-table-backed address
// space the way mmap_test.go's fakeMemorySet stands in within that package.
type fakeMemorySet struct {
	backing []byte
	mapped  map[uint64]mmap.MapPermission
}

func newFakeMemorySet() *fakeMemorySet {
	return &fakeMemorySet{backing: make([]byte, fakeAddrSpaceSize), mapped: make(map[uint64]mmap.MapPermission)}
}

func (f *fakeMemorySet) Translate(vpn uint64) bool {
	_, ok := f.mapped[vpn]
	return ok
}

func (f *fakeMemorySet) InsertFramedArea(start, end uint64, perm mmap.MapPermission) error {
	for vpn := start / 4096; vpn < end/4096; vpn++ {
		f.mapped[vpn] = perm
	}
	return nil
}

func (f *fakeMemorySet) UnmapRange(startVPN, npages uint64) bool {
	for vpn := startVPN; vpn < startVPN+npages; vpn++ {
		if _, ok := f.mapped[vpn]; !ok {
			return false
		}
	}
	for vpn := startVPN; vpn < startVPN+npages; vpn++ {
		delete(f.mapped, vpn)
	}
	return true
}

func (f *fakeMemorySet) TranslatedByteBuffer(userAddr uintptr, length int) [][]byte {
	return [][]byte{f.backing[userAddr : userAddr+uintptr(length)]}
}

// testHarness wires one Dispatcher against an in-memory filesystem and a
// single running task, the minimal environment every syscall method needs.
type testHarness struct {
	t    *testing.T
	d    *Dispatcher
	sc   *sched.Scheduler
	root *diskfs.Inode
	ms   *fakeMemorySet
	task *task.TaskControlBlock
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	dev := blockdev.NewMemory(8192)
	_, root := diskfs.Create(dev, 8192, 4, 32)

	ms := newFakeMemorySet()
	stdin := &task.Stdin{Source: bytes.NewReader(nil)}
	stdout := &task.Stdout{Sink: &bytes.Buffer{}}
	tsk := task.New(1, ms, stdin, stdout, 0x10000)

	sc := sched.New(false, metrics.NewNoop())
	sc.AddTask(tsk)
	sc.PickNext()

	d := New(sc, root, 0xdead, clock.New(), tsk, metrics.NewNoop())
	return &testHarness{t: t, d: d, sc: sc, root: root, ms: ms, task: tsk}
}

// writeUserCString writes s plus a trailing NUL into the fake address
// space at addr, the way a user program's argv/path buffer would look.
func (h *testHarness) writeUserCString(addr uintptr, s string) {
	copy(h.ms.backing[addr:], append([]byte(s), 0))
}

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
	"github.com/medihbt/rcore-gokernel/internal/banker"
	"github.com/medihbt/rcore-gokernel/internal/mmap"
	"github.com/medihbt/rcore-gokernel/internal/syncprim"
)

// TaskStatus is a task's lifecycle state. Legal transitions:
// UnInit -> Ready -> Running -> (Ready | Blocked | Zombie); Blocked -> Ready
// only through a wakeup; Zombie is terminal until reaped.
type TaskStatus int

const (
	StatusUnInit TaskStatus = iota
	StatusReady
	StatusRunning
	StatusBlocked
	StatusZombie
)

// Inner is everything about a task that changes during its lifetime,
// held under the owning TaskControlBlock's ExclusiveCell. trap_cx_ppn and
// task_cx from the original are intentionally absent: they belong to the
// trap-vectoring and context-switch subsystems, which spec.md §1 treats as
// external collaborators this core does not model.
type Inner struct {
	Status TaskStatus

	MemorySet  mmap.MemorySet
	Parent     *TaskControlBlock // weak by convention: never walked for liveness, see DESIGN.md
	Children   []*TaskControlBlock
	ExitCode   int
	HeapBottom uint64
	ProgramBrk uint64

	FdTable *FdTable

	Statistics TcbStatistics
	SchedInfo  SchedInfo

	Mutexes       []syncprim.Mutex
	Semaphores    []*syncprim.Semaphore
	Condvars      []*syncprim.Condvar
	Banker        *banker.Banker
	TraceDeadlock bool
}

// TaskControlBlock is the single mutable record of one task: identity
// (Pid) is immutable and exported directly; everything else lives behind
// the exclusive cell.
type TaskControlBlock struct {
	Pid int

	inner *ExclusiveCell[Inner]
}

// New creates a fresh task at StatusReady with an empty address space
// mapping (ms), fd table wired to stdin/stdout, default scheduling info,
// and a zeroed banker. heapBottom is also the initial program break.
func New(pid int, ms mmap.MemorySet, stdin *Stdin, stdout *Stdout, heapBottom uint64) *TaskControlBlock {
	return &TaskControlBlock{
		Pid: pid,
		inner: NewExclusiveCell(Inner{
			Status:     StatusReady,
			MemorySet:  ms,
			FdTable:    NewFdTable(stdin, stdout),
			HeapBottom: heapBottom,
			ProgramBrk: heapBottom,
			SchedInfo:  NewSchedInfo(),
			Banker:     banker.New(),
		}),
	}
}

// Access runs f with exclusive access to t's mutable state.
func (t *TaskControlBlock) Access(f func(inner *Inner)) {
	t.inner.Access(f)
}

// IsZombie reports whether t has exited.
func (t *TaskControlBlock) IsZombie() bool {
	zombie := false
	t.inner.Access(func(inner *Inner) { zombie = inner.Status == StatusZombie })
	return zombie
}

// OnActivate transitions t to Running and records the activation in its
// statistics.
func (t *TaskControlBlock) OnActivate() {
	t.inner.Access(func(inner *Inner) {
		inner.Status = StatusRunning
		inner.Statistics.OnActivate()
	})
}

// OnDeactivate transitions t to newStatus, records the deactivation, and
// feeds the just-completed run slice into SchedInfo.Update so stride
// advances.
func (t *TaskControlBlock) OnDeactivate(newStatus TaskStatus) {
	t.inner.Access(func(inner *Inner) {
		inner.Status = newStatus
		inner.Statistics.OnDeactivate()
		inner.SchedInfo.Update(int(inner.Statistics.LastRunTime()))
	})
}

// OnDead deactivates t and additionally records its exit code, used by
// Exit.
func (t *TaskControlBlock) OnDead(status TaskStatus, exitCode int) {
	t.inner.Access(func(inner *Inner) {
		inner.Statistics.OnDeactivate()
		inner.SchedInfo.Update(int(inner.Statistics.LastRunTime()))
		inner.Status = status
		inner.ExitCode = exitCode
	})
}

// Fork clones t's address space, fd table, and scheduling priority into a
// new child task at pid childPid. cloneMemorySet performs the actual
// address-space copy (external collaborator, spec.md §1); the child's
// banker starts fresh (a forked process does not inherit the parent's
// outstanding allocations) and its stride is reset to zero.
func (t *TaskControlBlock) Fork(childPid int, cloneMemorySet func(mmap.MemorySet) mmap.MemorySet) *TaskControlBlock {
	child := &TaskControlBlock{Pid: childPid}
	t.inner.Access(func(parent *Inner) {
		child.inner = NewExclusiveCell(Inner{
			Status:     StatusReady,
			MemorySet:  cloneMemorySet(parent.MemorySet),
			FdTable:    parent.FdTable.Clone(),
			HeapBottom: parent.HeapBottom,
			ProgramBrk: parent.ProgramBrk,
			SchedInfo:  CloneFrom(parent.SchedInfo),
			Banker:     banker.New(),
			Parent:     t,
		})
		parent.Children = append(parent.Children, child)
	})
	return child
}

// Exec replaces t's address space with ms, resetting statistics and
// scheduling info the way a fresh program image demands. The fd table is
// preserved (open files survive exec).
func (t *TaskControlBlock) Exec(ms mmap.MemorySet, heapBottom uint64) {
	t.inner.Access(func(inner *Inner) {
		inner.MemorySet = ms
		inner.HeapBottom = heapBottom
		inner.ProgramBrk = heapBottom
		inner.Statistics.OnExec()
		inner.SchedInfo.FullReset()
	})
}

// Spawn creates a brand-new task parented to t, the way fork+exec in one
// step would, but without cloning t's address space: newMemorySet builds
// the child's address space directly (e.g. from an ELF image).
func (t *TaskControlBlock) Spawn(childPid int, newMemorySet mmap.MemorySet, stdin *Stdin, stdout *Stdout, heapBottom uint64) *TaskControlBlock {
	child := New(childPid, newMemorySet, stdin, stdout, heapBottom)
	child.inner.Access(func(inner *Inner) { inner.Parent = t })
	t.inner.Access(func(inner *Inner) { inner.Children = append(inner.Children, child) })
	return child
}

// ChangeProgramBrk moves the program break by delta bytes, growing or
// shrinking the heap region via ms's framed-area calls. It returns the
// break value from before the change and true on success; on failure
// (shrinking below HeapBottom, or the memory set refusing the mapping
// change) it returns 0, false and leaves ProgramBrk untouched.
func (t *TaskControlBlock) ChangeProgramBrk(delta int64) (oldBrk uint64, ok bool) {
	t.inner.Access(func(inner *Inner) {
		newBrk := int64(inner.ProgramBrk) + delta
		if newBrk < int64(inner.HeapBottom) {
			return
		}
		if delta < 0 {
			if !shrinkHeap(inner.MemorySet, uint64(newBrk), inner.ProgramBrk) {
				return
			}
		} else if delta > 0 {
			if !growHeap(inner.MemorySet, inner.ProgramBrk, uint64(newBrk)) {
				return
			}
		}
		oldBrk = inner.ProgramBrk
		inner.ProgramBrk = uint64(newBrk)
		ok = true
	})
	return oldBrk, ok
}

const pageSize = 4096

func pageRoundUp(addr uint64) uint64 {
	return (addr + pageSize - 1) &^ (pageSize - 1)
}

func growHeap(ms mmap.MemorySet, from, to uint64) bool {
	start, end := pageRoundUp(from), pageRoundUp(to)
	if start == end {
		return true
	}
	const rw = mmap.MapPermission(1<<1|1<<2) | mmap.MapPermissionUser
	return ms.InsertFramedArea(start, end, rw) == nil
}

// shrinkHeap unmaps the pages between the new (lower) break and the old
// (higher) break, the mirror image of growHeap.
func shrinkHeap(ms mmap.MemorySet, newBrk, oldBrk uint64) bool {
	start, end := pageRoundUp(newBrk), pageRoundUp(oldBrk)
	if start == end {
		return true
	}
	npages := (end - start) / pageSize
	return ms.UnmapRange(start/pageSize, npages)
}

// Exit marks t Zombie with exitCode, re-parents its children onto init,
// and recycles its address space by dropping its MemorySet reference. The
// TCB itself stays alive so a subsequent wait() can observe the exit code.
func (t *TaskControlBlock) Exit(exitCode int, init *TaskControlBlock) {
	t.OnDead(StatusZombie, exitCode)
	t.inner.Access(func(inner *Inner) {
		init.inner.Access(func(initInner *Inner) {
			for _, child := range inner.Children {
				child.inner.Access(func(childInner *Inner) { childInner.Parent = init })
				initInner.Children = append(initInner.Children, child)
			}
		})
		inner.Children = nil
		inner.MemorySet = nil
	})
}

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

// Package banker implements the deadlock-avoidance matrices (allocated,
// need, available) and the safety algorithm a process runs before
// granting a resource request with deadlock detection enabled.
package banker

import "github.com/medihbt/rcore-gokernel/internal/logger"

const (
	// MaxThreads is the per-process thread table width.
	MaxThreads = 16
	// MaxResource is the per-process resource table width.
	MaxResource = 8
)

// Banker holds one process's resource-allocation state: how much each
// thread has been granted, how much more each thread needs, and how much
// of each resource remains available. The invariant
// available[r] + sum_t allocated[t][r] == total[r] holds after every
// exported mutation.
type Banker struct {
	Allocated [MaxThreads][MaxResource]int
	Need      [MaxThreads][MaxResource]int
	Available [MaxResource]int
}

// New returns a Banker with every matrix zeroed.
func New() *Banker {
	return &Banker{}
}

// Clone deep-copies this Banker (used by fork to give a child process its
// own independent resource-accounting state).
func (b *Banker) Clone() *Banker {
	clone := *b
	return &clone
}

// IsSafe runs the banker safety algorithm: starting from a working copy of
// available, repeatedly finds a thread whose remaining need can be
// satisfied by the current work vector, credits its allocation back to
// work, and marks it finished. The state is safe iff every thread
// eventually finishes.
func (b *Banker) IsSafe() bool {
	work := b.Available
	var finish [MaxThreads]bool
	safeSeq := make([]int, 0, MaxThreads)

	for {
		found := false
		for i := 0; i < MaxThreads; i++ {
			if finish[i] {
				continue
			}
			canFinish := true
			for r := 0; r < MaxResource; r++ {
				if b.Need[i][r] > work[r] {
					canFinish = false
					break
				}
			}
			if !canFinish {
				continue
			}
			for r := 0; r < MaxResource; r++ {
				work[r] += b.Allocated[i][r]
			}
			finish[i] = true
			found = true
			safeSeq = append(safeSeq, i)
		}
		if !found {
			break
		}
	}

	for _, done := range finish {
		if !done {
			return false
		}
	}
	logger.Tracef("banker: no deadlock, safe sequence %v", safeSeq)
	return true
}

// TryAllocateOne tentatively grants one unit of resourceID to threadID,
// then runs IsSafe; if the resulting state is unsafe it rolls the grant
// back and reports failure.
func (b *Banker) TryAllocateOne(threadID, resourceID int) bool {
	if !b.canAllocate(threadID, resourceID) {
		return false
	}
	b.Available[resourceID]--
	b.Allocated[threadID][resourceID]++
	b.Need[threadID][resourceID]--

	if !b.IsSafe() {
		b.Available[resourceID]++
		b.Allocated[threadID][resourceID]--
		b.Need[threadID][resourceID]++
		return false
	}
	return true
}

// AllocateOneNoCheck grants one unit of resourceID to threadID without
// running the safety algorithm, for the post-block allocation step of
// sem_down (spec.md open question 2).
func (b *Banker) AllocateOneNoCheck(threadID, resourceID int) bool {
	if !b.canAllocate(threadID, resourceID) {
		return false
	}
	b.Need[threadID][resourceID]--
	b.Available[resourceID]--
	b.Allocated[threadID][resourceID]++
	return true
}

func (b *Banker) canAllocate(threadID, resourceID int) bool {
	if threadID < 0 || threadID >= MaxThreads {
		return false
	}
	if resourceID < 0 || resourceID >= MaxResource || b.Need[threadID][resourceID] == 0 {
		return false
	}
	return b.Available[resourceID] > 0
}

// TryDeallocateOne returns one unit of resourceID from threadID back to
// available, re-adding it to need (the thread may ask for it again).
func (b *Banker) TryDeallocateOne(threadID, resourceID int) bool {
	if !b.hasAllocation(threadID, resourceID) {
		return false
	}
	b.Available[resourceID]++
	b.Allocated[threadID][resourceID]--
	b.Need[threadID][resourceID]++
	return true
}

// DynExpandDealloc returns one unit of resourceID from threadID back to
// available without touching need, for a release that does not imply the
// thread will ask for it again.
func (b *Banker) DynExpandDealloc(threadID, resourceID int) bool {
	if !b.hasAllocation(threadID, resourceID) {
		return false
	}
	b.Available[resourceID]++
	b.Allocated[threadID][resourceID]--
	return true
}

func (b *Banker) hasAllocation(threadID, resourceID int) bool {
	if threadID < 0 || threadID >= MaxThreads || resourceID < 0 || resourceID >= MaxResource {
		return false
	}
	return b.Allocated[threadID][resourceID] > 0
}

// SetupThread records threadID's need vector.
func (b *Banker) SetupThread(threadID int, need [MaxResource]int) bool {
	if threadID < 0 || threadID >= MaxThreads {
		return false
	}
	b.Need[threadID] = need
	return true
}

// SetupResources sets the total available units of resourceID.
func (b *Banker) SetupResources(resourceID int, maxAvailable int) bool {
	if resourceID < 0 || resourceID >= MaxResource {
		return false
	}
	b.Available[resourceID] = maxAvailable
	return true
}

// DestroyThread returns every resource threadID holds to available and
// clears its need vector.
func (b *Banker) DestroyThread(threadID int) bool {
	if threadID < 0 || threadID >= MaxThreads {
		return false
	}
	for r := 0; r < MaxResource; r++ {
		b.Available[r] += b.Allocated[threadID][r]
		b.Allocated[threadID][r] = 0
		b.Need[threadID][r] = 0
	}
	return true
}

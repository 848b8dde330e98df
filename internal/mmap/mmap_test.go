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

package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMemorySet is a minimal MemorySet backed by a set of mapped VPNs,
// just enough to drive DoMmap/DoMunmap's policy decisions.
type fakeMemorySet struct {
	mapped map[uint64]MapPermission
}

func newFakeMemorySet() *fakeMemorySet {
	return &fakeMemorySet{mapped: make(map[uint64]MapPermission)}
}

func (f *fakeMemorySet) Translate(vpn uint64) bool {
	_, ok := f.mapped[vpn]
	return ok
}

func (f *fakeMemorySet) InsertFramedArea(start, end uint64, perm MapPermission) error {
	for vpn := start / pageSize; vpn < end/pageSize; vpn++ {
		f.mapped[vpn] = perm
	}
	return nil
}

func (f *fakeMemorySet) UnmapRange(startVPN uint64, npages uint64) bool {
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

func TestDoMmap_RejectsUnalignedStart(t *testing.T) {
	ms := newFakeMemorySet()
	assert.ErrorIs(t, DoMmap(ms, 0x1001, 4096, PermRead), ErrUnaligned)
}

func TestDoMmap_RejectsInvalidPermission(t *testing.T) {
	ms := newFakeMemorySet()
	assert.ErrorIs(t, DoMmap(ms, 0x1000, 4096, 0), ErrInvalidPerm)
	assert.ErrorIs(t, DoMmap(ms, 0x1000, 4096, 8), ErrInvalidPerm)
}

func TestDoMmap_RejectsOverlap(t *testing.T) {
	ms := newFakeMemorySet()
	require.NoError(t, DoMmap(ms, 0x10000000, 8192, PermRead|PermWrite))
	err := DoMmap(ms, 0x10001000, 4096, PermRead)
	assert.ErrorIs(t, err, ErrAlreadyMapped)
}

func TestMmapMunmap_Idempotence(t *testing.T) {
	ms := newFakeMemorySet()
	require.NoError(t, DoMmap(ms, 0x10000000, 8192, PermRead|PermWrite))
	assert.True(t, ms.Translate(0x10000000/pageSize))

	require.NoError(t, DoMunmap(ms, 0x10000000, 8192))
	assert.False(t, ms.Translate(0x10000000/pageSize))

	// The range is free again: a fresh mmap over the same addresses
	// succeeds, matching the prior (unmapped) translation.
	require.NoError(t, DoMmap(ms, 0x10000000, 8192, PermExecute))
}

func TestDoMunmap_FailsOnPartiallyUnmappedRange(t *testing.T) {
	ms := newFakeMemorySet()
	require.NoError(t, DoMmap(ms, 0, 4096, PermRead))
	err := DoMunmap(ms, 0, 8192) // second page was never mapped
	assert.ErrorIs(t, err, ErrNotMapped)
}

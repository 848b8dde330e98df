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

package diskfs

import (
	"testing"

	"github.com/medihbt/rcore-gokernel/internal/blockcache"
	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskInode_MarshalRoundTrip(t *testing.T) {
	var d DiskInode
	d.Initialize(InodeDir)
	d.RefThis()
	d.Direct[0] = 42
	d.Indirect1 = 7
	d.Indirect2 = 9

	buf := d.MarshalBinary()
	require.Len(t, buf, DiskInodeSize)

	got := UnmarshalDiskInode(buf)
	assert.Equal(t, d, got)
}

func TestDiskInode_Unref(t *testing.T) {
	var d DiskInode
	d.Initialize(InodeFile)
	assert.True(t, d.Unref() == false || d.RefCount == 0)
}

func TestDiskInode_RoundTripAcrossIndirectBoundary(t *testing.T) {
	dev := blockdev.NewMemory(4096)
	cache := blockcache.New(dev, 32, nil)

	var d DiskInode
	d.Initialize(InodeFile)

	payload := make([]byte, 20*1024) // crosses direct -> indirect1 boundary
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	needed := d.BlocksNumNeeded(uint32(len(payload)))
	fresh := make([]uint32, needed)
	for i := range fresh {
		fresh[i] = uint32(100 + i)
	}
	d.IncreaseSize(uint32(len(payload)), fresh, cache)
	assert.Equal(t, uint32(len(payload)), d.Size)

	written := d.WriteAt(0, payload, cache)
	assert.Equal(t, len(payload), written)

	out := make([]byte, len(payload))
	readN := d.ReadAt(0, out, cache)
	assert.Equal(t, len(payload), readN)
	assert.Equal(t, payload, out)

	freed := d.ClearSize(cache)
	assert.ElementsMatch(t, fresh, freed)
}

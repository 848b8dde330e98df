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
)

func TestBitmap_AllocAndDealloc(t *testing.T) {
	dev := blockdev.NewMemory(4)
	cache := blockcache.New(dev, 4, nil)
	b := bitmap{startBlock: 0, numBlocks: 1}

	id0, ok := b.alloc(cache)
	require := assert.New(t)
	require.True(ok)
	assert.Equal(t, uint32(0), id0)

	id1, ok := b.alloc(cache)
	require.True(ok)
	assert.Equal(t, uint32(1), id1)

	b.dealloc(cache, id0)
	id2, ok := b.alloc(cache)
	require.True(ok)
	assert.Equal(t, id0, id2, "dealloc'd bit should be reused before advancing")
}

func TestBitmap_ExhaustsCapacity(t *testing.T) {
	dev := blockdev.NewMemory(2)
	cache := blockcache.New(dev, 2, nil)
	b := bitmap{startBlock: 0, numBlocks: 1}

	for i := uint32(0); i < b.capacity(); i++ {
		_, ok := b.alloc(cache)
		assert.True(t, ok)
	}
	_, ok := b.alloc(cache)
	assert.False(t, ok)
}

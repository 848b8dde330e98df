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

import "github.com/medihbt/rcore-gokernel/internal/blockcache"

const bitsPerBlock = blockSize * 8

// bitmap is a free-list over a contiguous run of blocks starting at
// startBlock, each bit marking one allocatable unit (an inode slot or a
// data block) as free (0) or used (1).
type bitmap struct {
	startBlock uint32
	numBlocks  uint32
}

// alloc finds and marks the first free bit, returning its absolute index
// within the bitmap, or false if the bitmap is full.
func (b *bitmap) alloc(cache *blockcache.Cache) (uint32, bool) {
	for blk := uint32(0); blk < b.numBlocks; blk++ {
		found := false
		var bitIdx int
		cache.Get(b.startBlock+blk).Modify(0, func(data []byte) {
			for byteIdx := 0; byteIdx < blockSize; byteIdx++ {
				if data[byteIdx] == 0xFF {
					continue
				}
				for bit := 0; bit < 8; bit++ {
					mask := byte(1 << uint(bit))
					if data[byteIdx]&mask == 0 {
						data[byteIdx] |= mask
						bitIdx = byteIdx*8 + bit
						found = true
						return
					}
				}
			}
		})
		if found {
			return blk*bitsPerBlock + uint32(bitIdx), true
		}
	}
	return 0, false
}

// dealloc clears the bit at absolute index id.
func (b *bitmap) dealloc(cache *blockcache.Cache, id uint32) {
	blk := id / bitsPerBlock
	bit := id % bitsPerBlock
	byteIdx := bit / 8
	mask := byte(1 << (bit % 8))
	cache.Get(b.startBlock+blk).Modify(0, func(data []byte) {
		data[byteIdx] &^= mask
	})
}

// capacity is the maximum number of bits this bitmap can track.
func (b *bitmap) capacity() uint32 {
	return b.numBlocks * bitsPerBlock
}

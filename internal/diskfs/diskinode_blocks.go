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
	"encoding/binary"

	"github.com/medihbt/rcore-gokernel/internal/blockcache"
)

// indirectSlot reads/writes one uint32 slot at index idx within the index
// block identified by blockID.
func indirectSlot(cache *blockcache.Cache, blockID uint32, idx uint32) uint32 {
	var v uint32
	cache.Get(blockID).Read(int(idx*4), func(data []byte) {
		v = binary.LittleEndian.Uint32(data[:4])
	})
	return v
}

func setIndirectSlot(cache *blockcache.Cache, blockID uint32, idx uint32, value uint32) {
	cache.Get(blockID).Modify(int(idx*4), func(data []byte) {
		binary.LittleEndian.PutUint32(data[:4], value)
	})
}

// blockIDFor resolves the inner-th data block (0-based, inner < data
// block count) to its physical block id, following direct pointers then
// the one- and two-level indirect chains.
func (d *DiskInode) blockIDFor(cache *blockcache.Cache, inner uint32) uint32 {
	if inner < DirectBlockCount {
		return d.Direct[inner]
	}
	inner -= DirectBlockCount
	if inner < idsPerIndirectBlock {
		return indirectSlot(cache, d.Indirect1, inner)
	}
	inner -= idsPerIndirectBlock
	idx1 := inner / idsPerIndirectBlock
	idx2 := inner % idsPerIndirectBlock
	level1Block := indirectSlot(cache, d.Indirect2, idx1)
	return indirectSlot(cache, level1Block, idx2)
}

// IncreaseSize installs the caller-supplied freshly-allocated blocks
// (exactly BlocksNumNeeded(newSize) of them) to grow the inode to newSize,
// zero-filling every newly mapped data block, then sets Size.
func (d *DiskInode) IncreaseSize(newSize uint32, freshBlocks []uint32, cache *blockcache.Cache) {
	if newSize <= d.Size {
		return
	}
	oldDataBlocks := dataBlocks(d.Size)
	newDataBlocks := dataBlocks(newSize)
	remaining := freshBlocks

	take := func() uint32 {
		b := remaining[0]
		remaining = remaining[1:]
		return b
	}

	// Direct region.
	for cur := oldDataBlocks; cur < newDataBlocks && cur < DirectBlockCount; cur++ {
		d.Direct[cur] = take()
		zeroBlock(cache, d.Direct[cur])
	}
	if newDataBlocks <= DirectBlockCount {
		d.Size = newSize
		return
	}

	// Indirect1 region.
	if d.Indirect1 == 0 {
		d.Indirect1 = take()
	}
	for cur := max32(oldDataBlocks, DirectBlockCount); cur < newDataBlocks && cur < DirectBlockCount+idsPerIndirectBlock; cur++ {
		blk := take()
		setIndirectSlot(cache, d.Indirect1, cur-DirectBlockCount, blk)
		zeroBlock(cache, blk)
	}
	if newDataBlocks <= DirectBlockCount+idsPerIndirectBlock {
		d.Size = newSize
		return
	}

	// Indirect2 region: a block of pointers to indirect1-style blocks.
	if d.Indirect2 == 0 {
		d.Indirect2 = take()
	}
	base := DirectBlockCount + idsPerIndirectBlock
	startIdx2 := max32(oldDataBlocks, uint32(base)) - uint32(base)
	endIdx2 := newDataBlocks - uint32(base)
	for cur := startIdx2; cur < endIdx2; {
		idx1 := cur / idsPerIndirectBlock
		level1Block := indirectSlot(cache, d.Indirect2, idx1)
		if level1Block == 0 {
			level1Block = take()
			setIndirectSlot(cache, d.Indirect2, idx1, level1Block)
		}
		idx2 := cur % idsPerIndirectBlock
		for ; idx2 < idsPerIndirectBlock && cur < endIdx2; idx2++ {
			blk := take()
			setIndirectSlot(cache, level1Block, idx2, blk)
			zeroBlock(cache, blk)
			cur++
		}
	}
	d.Size = newSize
}

func zeroBlock(cache *blockcache.Cache, blockID uint32) {
	cache.Get(blockID).Modify(0, func(data []byte) {
		for i := range data {
			data[i] = 0
		}
	})
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// DeallocTo shrinks the inode to newSize, returning the data+index block
// ids that are now free (caller must return them to the FS free list).
func (d *DiskInode) DeallocTo(newSize uint32, cache *blockcache.Cache) []uint32 {
	if newSize >= d.Size {
		return nil
	}
	oldDataBlocks := dataBlocks(d.Size)
	newDataBlocks := dataBlocks(newSize)
	var freed []uint32

	base := DirectBlockCount + idsPerIndirectBlock
	// Indirect2 region, highest first.
	if oldDataBlocks > uint32(base) {
		startIdx2 := max32(newDataBlocks, uint32(base)) - uint32(base)
		endIdx2 := oldDataBlocks - uint32(base)
		for cur := startIdx2; cur < endIdx2; {
			idx1 := cur / idsPerIndirectBlock
			idx1Start := idx1 * idsPerIndirectBlock
			level1Block := indirectSlot(cache, d.Indirect2, idx1)
			idx2 := cur % idsPerIndirectBlock
			for ; idx2 < idsPerIndirectBlock && cur < endIdx2; idx2++ {
				freed = append(freed, indirectSlot(cache, level1Block, idx2))
				cur++
			}
			// A shrink always drops a contiguous suffix, so a level-1 block
			// whose own range starts at or after startIdx2 is freed whole.
			if idx1Start >= startIdx2 {
				freed = append(freed, level1Block)
			}
		}
		if newDataBlocks <= uint32(base) {
			freed = append(freed, d.Indirect2)
			d.Indirect2 = 0
		}
	}

	// Indirect1 region.
	if oldDataBlocks > DirectBlockCount {
		start := max32(newDataBlocks, DirectBlockCount) - DirectBlockCount
		end := min32(oldDataBlocks, DirectBlockCount+idsPerIndirectBlock) - DirectBlockCount
		for cur := start; cur < end; cur++ {
			freed = append(freed, indirectSlot(cache, d.Indirect1, cur))
		}
		if newDataBlocks <= DirectBlockCount {
			freed = append(freed, d.Indirect1)
			d.Indirect1 = 0
		}
	}

	// Direct region.
	start := newDataBlocks
	end := min32(oldDataBlocks, DirectBlockCount)
	for cur := start; cur < end; cur++ {
		freed = append(freed, d.Direct[cur])
		d.Direct[cur] = 0
	}

	d.Size = newSize
	return freed
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// ClearSize frees every data block and resets Size to zero.
func (d *DiskInode) ClearSize(cache *blockcache.Cache) []uint32 {
	return d.DeallocTo(0, cache)
}

// ReadAt copies up to len(buf) bytes starting at off into buf, bounded by
// the inode's current Size, returning the number of bytes actually read.
func (d *DiskInode) ReadAt(off int, buf []byte, cache *blockcache.Cache) int {
	end := int(d.Size)
	if off >= end {
		return 0
	}
	if off+len(buf) > end {
		buf = buf[:end-off]
	}
	readSize := len(buf)
	read := 0
	for read < readSize {
		curBlockOff := (off + read) % blockSize
		curBlock := uint32((off + read) / blockSize)
		physID := d.blockIDFor(cache, curBlock)
		chunk := blockSize - curBlockOff
		if chunk > readSize-read {
			chunk = readSize - read
		}
		dst := buf[read : read+chunk]
		cache.Get(physID).Read(curBlockOff, func(data []byte) {
			copy(dst, data[:chunk])
		})
		read += chunk
	}
	return read
}

// WriteAt writes buf starting at off. It never grows the inode — the
// caller must have already called IncreaseSize for any bytes beyond the
// current Size.
func (d *DiskInode) WriteAt(off int, buf []byte, cache *blockcache.Cache) int {
	end := int(d.Size)
	if off >= end {
		return 0
	}
	if off+len(buf) > end {
		buf = buf[:end-off]
	}
	writeSize := len(buf)
	written := 0
	for written < writeSize {
		curBlockOff := (off + written) % blockSize
		curBlock := uint32((off + written) / blockSize)
		physID := d.blockIDFor(cache, curBlock)
		chunk := blockSize - curBlockOff
		if chunk > writeSize-written {
			chunk = writeSize - written
		}
		src := buf[written : written+chunk]
		cache.Get(physID).Modify(curBlockOff, func(data []byte) {
			copy(data[:chunk], src)
		})
		written += chunk
	}
	return written
}

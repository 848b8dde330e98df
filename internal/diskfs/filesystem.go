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
	"sync"

	"github.com/medihbt/rcore-gokernel/internal/blockcache"
	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/medihbt/rcore-gokernel/internal/logger"
)

const inodesPerBlock = blockSize / DiskInodeSize

// FileSystem owns the on-disk geometry and the single global lock every
// VFS operation acquires before touching the inode/data bitmaps or any
// cache entry (spec.md §4.3, §5).
type FileSystem struct {
	mu sync.Mutex

	cache *blockcache.Cache

	inodeBitmap bitmap
	dataBitmap  bitmap

	inodeAreaStart uint32
	dataAreaStart  uint32
	totalBlocks    uint32
}

// Create formats a fresh filesystem over totalBlocks blocks of dev,
// reserving inodeBitmapBlocks blocks for the inode bitmap (the rest of the
// device, after subtracting a proportional data bitmap, becomes data
// blocks), and returns its root directory inode.
func Create(dev blockdev.Device, totalBlocks uint32, inodeBitmapBlocks uint32, cacheCapacity int) (*FileSystem, *Inode) {
	cache := blockcache.New(dev, cacheCapacity, nil)
	inodeArea := (inodeBitmapBlocks * bitsPerBlock * DiskInodeSize) / blockSize
	remaining := totalBlocks - 1 - inodeBitmapBlocks - inodeArea
	dataBitmapBlocks := (remaining + bitsPerBlock) / (bitsPerBlock + 1)
	if dataBitmapBlocks == 0 {
		dataBitmapBlocks = 1
	}
	dataArea := totalBlocks - 1 - inodeBitmapBlocks - inodeArea - dataBitmapBlocks

	fs := &FileSystem{
		cache:          cache,
		inodeBitmap:    bitmap{startBlock: 1, numBlocks: inodeBitmapBlocks},
		dataBitmap:     bitmap{startBlock: 1 + inodeBitmapBlocks + inodeArea, numBlocks: dataBitmapBlocks},
		inodeAreaStart: 1 + inodeBitmapBlocks,
		dataAreaStart:  1 + inodeBitmapBlocks + inodeArea + dataBitmapBlocks,
		totalBlocks:    totalBlocks,
	}

	sb := superblock{
		Magic:          superblockMagic,
		TotalBlocks:    totalBlocks,
		InodeBitmapLen: inodeBitmapBlocks,
		InodeAreaLen:   inodeArea,
		DataBitmapLen:  dataBitmapBlocks,
		DataAreaLen:    dataArea,
	}
	cache.Get(0).Modify(0, func(data []byte) {
		copy(data, sb.marshal())
	})

	// Zero every bitmap block so alloc() sees all-free.
	for blk := uint32(0); blk < inodeBitmapBlocks; blk++ {
		zeroBlock(cache, fs.inodeBitmap.startBlock+blk)
	}
	for blk := uint32(0); blk < dataBitmapBlocks; blk++ {
		zeroBlock(cache, fs.dataBitmap.startBlock+blk)
	}

	rootID := fs.allocInodeLocked()
	blockID, offset := fs.diskInodePos(rootID)
	cache.Get(blockID).Modify(offset, func(data []byte) {
		var root DiskInode
		root.Initialize(InodeDir)
		copy(data[:DiskInodeSize], root.MarshalBinary())
	})
	cache.SyncAll()

	root := &Inode{fs: fs, blockID: blockID, blockOffset: offset}
	logger.Infof("diskfs: formatted %d blocks, root inode at block %d", totalBlocks, blockID)
	return fs, root
}

// Open loads an already-formatted filesystem from dev.
func Open(dev blockdev.Device, cacheCapacity int) (*FileSystem, *Inode) {
	cache := blockcache.New(dev, cacheCapacity, nil)
	var sb superblock
	cache.Get(0).Read(0, func(data []byte) {
		sb = unmarshalSuperblock(data)
	})
	if !sb.valid() {
		panic("diskfs: bad superblock magic")
	}
	fs := &FileSystem{
		cache:          cache,
		inodeBitmap:    bitmap{startBlock: 1, numBlocks: sb.InodeBitmapLen},
		dataBitmap:     bitmap{startBlock: 1 + sb.InodeBitmapLen + sb.InodeAreaLen, numBlocks: sb.DataBitmapLen},
		inodeAreaStart: 1 + sb.InodeBitmapLen,
		dataAreaStart:  1 + sb.InodeBitmapLen + sb.InodeAreaLen + sb.DataBitmapLen,
		totalBlocks:    sb.TotalBlocks,
	}
	blockID, offset := fs.diskInodePos(0)
	root := &Inode{fs: fs, blockID: blockID, blockOffset: offset}
	return fs, root
}

func (fs *FileSystem) diskInodePos(inodeID uint32) (uint32, int) {
	blockID := fs.inodeAreaStart + inodeID/inodesPerBlock
	offset := int(inodeID%inodesPerBlock) * DiskInodeSize
	return blockID, offset
}

func (fs *FileSystem) allocInodeLocked() uint32 {
	id, ok := fs.inodeBitmap.alloc(fs.cache)
	if !ok {
		panic("diskfs: inode table exhausted")
	}
	return id
}

func (fs *FileSystem) allocInode() uint32 {
	return fs.allocInodeLocked()
}

func (fs *FileSystem) allocData() uint32 {
	id, ok := fs.dataBitmap.alloc(fs.cache)
	if !ok {
		panic("diskfs: data blocks exhausted")
	}
	return fs.dataAreaStart + id
}

func (fs *FileSystem) deallocData(blockID uint32) {
	fs.dataBitmap.dealloc(fs.cache, blockID-fs.dataAreaStart)
}

func (fs *FileSystem) deallocInode(inodeID uint32) {
	fs.inodeBitmap.dealloc(fs.cache, inodeID)
}

// SyncAll is a thin pass-through used by the Inode layer after every
// externally-visible mutation (spec.md §5).
func (fs *FileSystem) SyncAll() {
	fs.cache.SyncAll()
}

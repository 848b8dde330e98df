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

// Package diskfs implements the on-disk inode/directory layout (C2) and
// the VFS Inode handle that coordinates access to it under the
// filesystem's global lock (C3).
package diskfs

import (
	"encoding/binary"

	"github.com/medihbt/rcore-gokernel/internal/blockdev"
)

// InodeType distinguishes a file from a directory inode.
type InodeType uint8

const (
	InodeFile InodeType = iota
	InodeDir
)

const (
	// DirectBlockCount is the number of direct data-block pointers a
	// DiskInode carries before spilling into the indirect levels.
	DirectBlockCount = 28
	// DiskInodeSize is the fixed on-disk size of a DiskInode record.
	DiskInodeSize = 128
	// blockSize is the underlying device block size; data and index
	// blocks are the same fixed size.
	blockSize = blockdev.BlockSize
	// idsPerIndirectBlock is how many uint32 block ids fit in one
	// index block.
	idsPerIndirectBlock = blockSize / 4
)

// DiskInode is the fixed 128-byte on-disk inode record: size in bytes,
// type, hard-link refcount, 28 direct block pointers, and two levels of
// indirect block pointers.
type DiskInode struct {
	Size      uint32
	Type      InodeType
	RefCount  uint16
	Direct    [DirectBlockCount]uint32
	Indirect1 uint32
	Indirect2 uint32
}

// MarshalBinary packs the inode into its 128-byte on-disk form.
func (d *DiskInode) MarshalBinary() []byte {
	buf := make([]byte, DiskInodeSize)
	binary.LittleEndian.PutUint32(buf[0:4], d.Size)
	buf[4] = byte(d.Type)
	binary.LittleEndian.PutUint16(buf[6:8], d.RefCount)
	for i, id := range d.Direct {
		off := 8 + i*4
		binary.LittleEndian.PutUint32(buf[off:off+4], id)
	}
	off := 8 + DirectBlockCount*4
	binary.LittleEndian.PutUint32(buf[off:off+4], d.Indirect1)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], d.Indirect2)
	return buf
}

// UnmarshalDiskInode reads a DiskInode from its 128-byte on-disk form.
func UnmarshalDiskInode(buf []byte) DiskInode {
	var d DiskInode
	d.Size = binary.LittleEndian.Uint32(buf[0:4])
	d.Type = InodeType(buf[4])
	d.RefCount = binary.LittleEndian.Uint16(buf[6:8])
	for i := range d.Direct {
		off := 8 + i*4
		d.Direct[i] = binary.LittleEndian.Uint32(buf[off : off+4])
	}
	off := 8 + DirectBlockCount*4
	d.Indirect1 = binary.LittleEndian.Uint32(buf[off : off+4])
	d.Indirect2 = binary.LittleEndian.Uint32(buf[off+4 : off+8])
	return d
}

// Initialize resets the inode to an empty instance of the given type with
// ref_count 1 (a freshly-created entry always starts with one reference).
func (d *DiskInode) Initialize(t InodeType) {
	*d = DiskInode{Type: t, RefCount: 1}
}

func (d *DiskInode) IsDir() bool  { return d.Type == InodeDir }
func (d *DiskInode) IsFile() bool { return d.Type == InodeFile }

// RefThis increments the hard-link refcount.
func (d *DiskInode) RefThis() {
	d.RefCount++
}

// Unref decrements the hard-link refcount and reports whether the inode is
// still referenced (alive) afterward.
func (d *DiskInode) Unref() bool {
	if d.RefCount > 0 {
		d.RefCount--
	}
	return d.RefCount > 0
}

// totalBlocks returns how many 512-byte data blocks are needed to hold
// size bytes.
func totalBlocks(size uint32) uint32 {
	return (size + blockSize - 1) / blockSize
}

// dataBlocks returns how many data blocks (excluding index blocks) size
// bytes requires.
func dataBlocks(size uint32) uint32 {
	return totalBlocks(size)
}

// totalBlocksWithIndex returns data blocks plus the index blocks needed to
// address them (direct entries need none; beyond DirectBlockCount needs
// one indirect1 block; beyond that needs indirect2 plus its own
// second-level index blocks).
func totalBlocksWithIndex(size uint32) uint32 {
	data := dataBlocks(size)
	total := data
	if data > DirectBlockCount {
		total++ // indirect1 block itself
	}
	if data > DirectBlockCount+idsPerIndirectBlock {
		indirect2Data := data - DirectBlockCount - idsPerIndirectBlock
		total++ // indirect2 block itself
		total += (indirect2Data + idsPerIndirectBlock - 1) / idsPerIndirectBlock
	}
	return total
}

// BlocksNumNeeded computes the additional data+index blocks required to
// grow this inode from its current size to newSize.
func (d *DiskInode) BlocksNumNeeded(newSize uint32) uint32 {
	if newSize <= d.Size {
		return 0
	}
	return totalBlocksWithIndex(newSize) - totalBlocksWithIndex(d.Size)
}

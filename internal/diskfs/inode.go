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

import "github.com/medihbt/rcore-gokernel/internal/kerr"

// Inode is a VFS handle onto one on-disk inode record, addressed by the
// block holding it and the byte offset within that block. Every exported
// method acquires the owning FileSystem's lock before touching the disk
// inode or any bitmap.
type Inode struct {
	fs          *FileSystem
	blockID     uint32
	blockOffset int
}

func (i *Inode) readDisk(f func(d *DiskInode)) {
	i.fs.cache.Get(i.blockID).Read(i.blockOffset, func(data []byte) {
		d := UnmarshalDiskInode(data[:DiskInodeSize])
		f(&d)
	})
}

func (i *Inode) modifyDisk(f func(d *DiskInode)) {
	i.fs.cache.Get(i.blockID).Modify(i.blockOffset, func(data []byte) {
		d := UnmarshalDiskInode(data[:DiskInodeSize])
		f(&d)
		copy(data[:DiskInodeSize], d.MarshalBinary())
	})
}

func (i *Inode) findInodeID(name string, d *DiskInode) (uint32, bool) {
	if !d.IsDir() {
		panic("diskfs: non-directory inode used as directory")
	}
	fileCount := int(d.Size) / DirEntrySize
	var buf [DirEntrySize]byte
	for n := 0; n < fileCount; n++ {
		d.ReadAt(n*DirEntrySize, buf[:], i.fs.cache)
		e := UnmarshalDirEntry(buf[:])
		if e.Name() == name {
			return e.InodeID, true
		}
	}
	return 0, false
}

func (i *Inode) findEntryIndexByInode(inodeID uint32, d *DiskInode) (int, bool) {
	if !d.IsDir() {
		panic("diskfs: non-directory inode used as directory")
	}
	fileCount := int(d.Size) / DirEntrySize
	var buf [DirEntrySize]byte
	for n := 0; n < fileCount; n++ {
		d.ReadAt(n*DirEntrySize, buf[:], i.fs.cache)
		e := UnmarshalDirEntry(buf[:])
		if e.InodeID == inodeID {
			return n, true
		}
	}
	return 0, false
}

func (i *Inode) newHandleFor(inodeID uint32) *Inode {
	blockID, offset := i.fs.diskInodePos(inodeID)
	return &Inode{fs: i.fs, blockID: blockID, blockOffset: offset}
}

// Find looks up name in this directory, returning its Inode handle.
func (i *Inode) Find(name string) (*Inode, bool) {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	var id uint32
	var ok bool
	i.readDisk(func(d *DiskInode) {
		id, ok = i.findInodeID(name, d)
	})
	if !ok {
		return nil, false
	}
	return i.newHandleFor(id), true
}

func (i *Inode) increaseSizeLocked(newSize uint32, d *DiskInode) {
	if newSize <= d.Size {
		return
	}
	needed := d.BlocksNumNeeded(newSize)
	fresh := make([]uint32, needed)
	for n := range fresh {
		fresh[n] = i.fs.allocData()
	}
	d.IncreaseSize(newSize, fresh, i.fs.cache)
}

func (i *Inode) decreaseSizeLocked(newSize uint32, d *DiskInode) {
	if newSize >= d.Size {
		return
	}
	freed := d.DeallocTo(newSize, i.fs.cache)
	for _, b := range freed {
		i.fs.deallocData(b)
	}
}

// Create makes a new regular file named name in this directory. It fails
// with kerr.ErrExists if the name is already taken.
func (i *Inode) Create(name string) (*Inode, error) {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()

	var exists bool
	i.readDisk(func(d *DiskInode) {
		_, exists = i.findInodeID(name, d)
	})
	if exists {
		return nil, kerr.ErrExists
	}

	newID := i.fs.allocInode()
	newHandle := i.newHandleFor(newID)
	newHandle.modifyDisk(func(d *DiskInode) {
		d.Initialize(InodeFile)
	})

	i.modifyDisk(func(d *DiskInode) {
		fileCount := int(d.Size) / DirEntrySize
		newSize := uint32((fileCount + 1) * DirEntrySize)
		i.increaseSizeLocked(newSize, d)
		entry := NewDirEntry(name, newID)
		d.WriteAt(fileCount*DirEntrySize, entry.MarshalBinary(), i.fs.cache)
	})
	i.fs.SyncAll()
	return newHandle, nil
}

// HardLink adds toName in this directory pointing at from, incrementing
// from's link count. Fails with kerr.ErrExists if toName is already taken.
func (i *Inode) HardLink(from *Inode, toName string) error {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()

	var isDir bool
	i.readDisk(func(d *DiskInode) { isDir = d.IsDir() })
	if !isDir {
		return kerr.ErrInvalidArgument
	}
	var taken bool
	i.readDisk(func(d *DiskInode) {
		_, taken = i.findInodeID(toName, d)
	})
	if taken {
		return kerr.ErrExists
	}

	fromID := from.GetIDLocked()
	from.modifyDisk(func(d *DiskInode) { d.RefThis() })
	i.modifyDisk(func(d *DiskInode) {
		oldSize := d.Size
		newSize := oldSize + DirEntrySize
		i.increaseSizeLocked(newSize, d)
		entry := NewDirEntry(toName, fromID)
		d.WriteAt(int(oldSize), entry.MarshalBinary(), i.fs.cache)
	})
	i.fs.SyncAll()
	return nil
}

// HardUnlink removes name from this directory and drops one reference from
// the inode it named. When the link count reaches zero the inode's content
// is freed and its slot returned to the inode bitmap. This is the
// POSIX-correct redesign: the directory entry is always removed regardless
// of the resulting link count (see DESIGN.md).
func (i *Inode) HardUnlink(name string) error {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()

	var isDir bool
	i.readDisk(func(d *DiskInode) { isDir = d.IsDir() })
	if !isDir {
		return kerr.ErrInvalidArgument
	}

	var targetID uint32
	var found bool
	i.readDisk(func(d *DiskInode) {
		targetID, found = i.findInodeID(name, d)
	})
	if !found {
		return kerr.ErrNotFound
	}
	target := i.newHandleFor(targetID)

	var refCount uint16
	target.readDisk(func(d *DiskInode) { refCount = d.RefCount })
	if refCount == 0 {
		return kerr.ErrDoubleFree
	}

	// Remove the entry by name, not by inode id: another name in this
	// directory may link the same inode.
	i.modifyDisk(func(d *DiskInode) {
		lastIdx := int(d.Size)/DirEntrySize - 1
		var buf [DirEntrySize]byte
		for n := 0; n <= lastIdx; n++ {
			d.ReadAt(n*DirEntrySize, buf[:], i.fs.cache)
			if UnmarshalDirEntry(buf[:]).Name() == name {
				d.ReadAt(lastIdx*DirEntrySize, buf[:], i.fs.cache)
				d.WriteAt(n*DirEntrySize, buf[:], i.fs.cache)
				i.decreaseSizeLocked(d.Size-DirEntrySize, d)
				return
			}
		}
	})

	var alive bool
	target.modifyDisk(func(d *DiskInode) { alive = d.Unref() })
	if !alive {
		target.clearLocked()
		i.fs.deallocInode(targetID)
	}
	i.fs.SyncAll()
	return nil
}

// HardUnlinkLegacy preserves the original implementation's behavior: the
// directory entry is only removed once the link count drops to zero,
// leaving stale entries reachable while other hard links to the same inode
// remain. Kept for callers that depend on that historical quirk.
func (i *Inode) HardUnlinkLegacy(name string) error {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()

	var isDir bool
	i.readDisk(func(d *DiskInode) { isDir = d.IsDir() })
	if !isDir {
		return kerr.ErrInvalidArgument
	}

	var targetID uint32
	var found bool
	i.readDisk(func(d *DiskInode) {
		targetID, found = i.findInodeID(name, d)
	})
	if !found {
		return kerr.ErrNotFound
	}
	target := i.newHandleFor(targetID)

	var refCount uint16
	target.readDisk(func(d *DiskInode) { refCount = d.RefCount })
	if refCount == 0 {
		return kerr.ErrDoubleFree
	}

	var alive bool
	target.modifyDisk(func(d *DiskInode) { alive = d.Unref() })
	if !alive {
		target.clearLocked()
		i.removeEntryLocked(targetID)
		i.fs.deallocInode(targetID)
	}
	i.fs.SyncAll()
	return nil
}

// removeEntryLocked swaps the directory entry for inodeID with the
// directory's last entry, then shrinks the directory by one DirEntrySize.
// Caller holds fs.mu.
func (i *Inode) removeEntryLocked(inodeID uint32) {
	i.modifyDisk(func(d *DiskInode) {
		selfSize := d.Size
		numEntries := selfSize / DirEntrySize
		lastIdx := int(numEntries) - 1
		idx, ok := i.findEntryIndexByInode(inodeID, d)
		if !ok {
			return
		}
		if idx != lastIdx {
			var buf [DirEntrySize]byte
			d.ReadAt(lastIdx*DirEntrySize, buf[:], i.fs.cache)
			d.WriteAt(idx*DirEntrySize, buf[:], i.fs.cache)
		}
		i.decreaseSizeLocked(selfSize-DirEntrySize, d)
	})
}

// Ls lists the names of every entry in this directory.
func (i *Inode) Ls() []string {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	var names []string
	i.readDisk(func(d *DiskInode) {
		fileCount := int(d.Size) / DirEntrySize
		var buf [DirEntrySize]byte
		for n := 0; n < fileCount; n++ {
			d.ReadAt(n*DirEntrySize, buf[:], i.fs.cache)
			names = append(names, UnmarshalDirEntry(buf[:]).Name())
		}
	})
	return names
}

// ReadAt reads this inode's content starting at offset into buf.
func (i *Inode) ReadAt(offset int, buf []byte) int {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	var n int
	i.readDisk(func(d *DiskInode) {
		n = d.ReadAt(offset, buf, i.fs.cache)
	})
	return n
}

// WriteAt writes buf into this inode's content starting at offset,
// growing the inode first if necessary.
func (i *Inode) WriteAt(offset int, buf []byte) int {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	var n int
	i.modifyDisk(func(d *DiskInode) {
		i.increaseSizeLocked(uint32(offset+len(buf)), d)
		n = d.WriteAt(offset, buf, i.fs.cache)
	})
	i.fs.SyncAll()
	return n
}

// Clear truncates this inode's content to zero length, returning its data
// blocks to the free list.
func (i *Inode) Clear() {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	i.clearLocked()
	i.fs.SyncAll()
}

func (i *Inode) clearLocked() {
	i.modifyDisk(func(d *DiskInode) {
		freed := d.ClearSize(i.fs.cache)
		for _, b := range freed {
			i.fs.deallocData(b)
		}
	})
}

// GetID returns this inode's integer id within the inode table.
func (i *Inode) GetID() uint32 {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	return i.GetIDLocked()
}

// GetIDLocked is GetID for callers that already hold fs.mu.
func (i *Inode) GetIDLocked() uint32 {
	relBlock := i.blockID - i.fs.inodeAreaStart
	return relBlock*inodesPerBlock + uint32(i.blockOffset/DiskInodeSize)
}

// IsDir reports whether this inode is a directory.
func (i *Inode) IsDir() bool {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	var isDir bool
	i.readDisk(func(d *DiskInode) { isDir = d.IsDir() })
	return isDir
}

// GetRefCount returns this inode's current hard-link count.
func (i *Inode) GetRefCount() uint32 {
	i.fs.mu.Lock()
	defer i.fs.mu.Unlock()
	var rc uint16
	i.readDisk(func(d *DiskInode) { rc = d.RefCount })
	return uint32(rc)
}

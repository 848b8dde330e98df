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

package syscall

import (
	"errors"

	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/medihbt/rcore-gokernel/internal/kerr"
	"github.com/medihbt/rcore-gokernel/internal/logger"
	"github.com/medihbt/rcore-gokernel/internal/task"
	"github.com/medihbt/rcore-gokernel/internal/usermem"
)

// translator narrows a task's MemorySet down to the usermem.Translator this
// package needs; every concrete mmap.MemorySet implementation must satisfy
// it too, checked here via a type assertion rather than widening
// mmap.MemorySet's interface for one external collaborator.
func (d *Dispatcher) translator(t *task.TaskControlBlock) usermem.Translator {
	var tr usermem.Translator
	t.Access(func(inner *task.Inner) {
		if ms, ok := inner.MemorySet.(usermem.Translator); ok {
			tr = ms
		}
	})
	return tr
}

// Read implements syscall 63.
func (d *Dispatcher) Read(fd int, userBuf uintptr, length int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysRead)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	var file task.File
	t.Access(func(inner *task.Inner) { file = inner.FdTable.Get(fd) })
	if file == nil || !file.Readable() {
		logger.Warnf("syscall: sys_read fd %d not readable", fd)
		return -1
	}
	kbuf := make([]byte, length)
	n := file.Read(kbuf)
	if err := usermem.CopyToUser(tr, userBuf, n, kbuf[:n]); err != nil {
		return -1
	}
	return int64(n)
}

// Write implements syscall 64.
func (d *Dispatcher) Write(fd int, userBuf uintptr, length int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysWrite)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	var file task.File
	t.Access(func(inner *task.Inner) { file = inner.FdTable.Get(fd) })
	if file == nil || !file.Writable() {
		logger.Warnf("syscall: sys_write fd %d not writable", fd)
		return -1
	}
	kbuf := make([]byte, length)
	if err := usermem.CopyFromUser(kbuf, tr, userBuf, length); err != nil {
		return -1
	}
	return int64(file.Write(kbuf))
}

// openFile resolves path under root per flags, the Go analogue of the
// original's fs::open_file: CREATE makes a fresh empty file if the name is
// absent (an existing file is simply opened, never re-created); TRUNC
// clears an existing file's content.
func openFile(root *diskfs.Inode, path string, flags OpenFlags) (*diskfs.Inode, error) {
	inode, ok := root.Find(path)
	if !ok {
		if flags&OpenCREATE == 0 {
			return nil, kerr.ErrNotFound
		}
		return root.Create(path)
	}
	if flags&OpenTRUNC != 0 {
		inode.Clear()
	}
	return inode, nil
}

// Open implements syscall 56.
func (d *Dispatcher) Open(userPath uintptr, flags OpenFlags) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysOpen)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	path, err := usermem.ReadCString(tr, userPath)
	if err != nil {
		return -1
	}
	inode, err := openFile(d.Root, path, flags)
	if err != nil {
		logger.Warnf("syscall: sys_open %q: %v", path, err)
		return -1
	}
	file := task.NewRegularInode(inode, flags.readable(), flags.writable(), d.DevID)
	var fd int
	t.Access(func(inner *task.Inner) { fd = inner.FdTable.Alloc(file) })
	return int64(fd)
}

// Close implements syscall 57.
func (d *Dispatcher) Close(fd int) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysClose)
	if t == nil {
		return -1
	}
	ok := false
	t.Access(func(inner *task.Inner) { ok = inner.FdTable.Close(fd) })
	if !ok {
		return -1
	}
	return 0
}

// Fstat implements syscall 80. The wire size written is Stat.MarshalBinary's
// 64 bytes, deliberately not a raw unsafe.Sizeof copy of the Go struct
// (80 bytes, since Stat.Pad holds seven words).
func (d *Dispatcher) Fstat(fd int, userStat uintptr) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysFstat)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	var file task.File
	t.Access(func(inner *task.Inner) { file = inner.FdTable.Get(fd) })
	if file == nil {
		return -1
	}
	stat := file.Stat()
	if err := usermem.CopyToUser(tr, userStat, diskfs.StatSize, stat.MarshalBinary()); err != nil {
		return -1
	}
	return 0
}

// Linkat implements syscall 37.
func (d *Dispatcher) Linkat(userOldPath, userNewPath uintptr) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysLinkat)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	oldPath, err := usermem.ReadCString(tr, userOldPath)
	if err != nil {
		return -1
	}
	newPath, err := usermem.ReadCString(tr, userNewPath)
	if err != nil {
		return -1
	}
	if _, err := diskfs.LinkFile(d.Root, oldPath, newPath); err != nil {
		logger.Warnf("syscall: sys_linkat %q -> %q: %v", oldPath, newPath, err)
		return -1
	}
	return 0
}

// Unlinkat implements syscall 35.
func (d *Dispatcher) Unlinkat(userPath uintptr) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysUnlinkat)
	if t == nil {
		return -1
	}
	tr := d.translator(t)
	if tr == nil {
		return -1
	}
	path, err := usermem.ReadCString(tr, userPath)
	if err != nil {
		return -1
	}
	if err := diskfs.UnlinkFile(d.Root, path); err != nil {
		if errors.Is(err, kerr.ErrNotFound) {
			logger.Warnf("syscall: sys_unlinkat %q: not found", path)
		}
		return -1
	}
	return 0
}

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
	"github.com/medihbt/rcore-gokernel/internal/mmap"
	"github.com/medihbt/rcore-gokernel/internal/task"
)

// Mmap implements syscall 222.
func (d *Dispatcher) Mmap(start, length uint64, prot mmap.Perm) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysMmap)
	if t == nil {
		return -1
	}
	var err error
	t.Access(func(inner *task.Inner) { err = mmap.DoMmap(inner.MemorySet, start, length, prot) })
	if err != nil {
		return -1
	}
	return 0
}

// Munmap implements syscall 215.
func (d *Dispatcher) Munmap(start, length uint64) (ret int64) {
	defer d.Recover(&ret)
	t := d.current(SysMunmap)
	if t == nil {
		return -1
	}
	var err error
	t.Access(func(inner *task.Inner) { err = mmap.DoMunmap(inner.MemorySet, start, length) })
	if err != nil {
		return -1
	}
	return 0
}

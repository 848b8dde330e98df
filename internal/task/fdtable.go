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

package task

// FdTable is a process's ordered sequence of file descriptor slots, each
// either nil (free) or holding a File. Allocation always picks the lowest
// free index, growing the table by exactly one slot when none is free.
type FdTable struct {
	slots []File
}

// NewFdTable returns a table with descriptors 0, 1, 2 wired to stdin and
// stdout (the original wires fd 2 to the same Stdout as fd 1; there is no
// separate stderr object).
func NewFdTable(stdin *Stdin, stdout *Stdout) *FdTable {
	return &FdTable{slots: []File{stdin, stdout, stdout}}
}

// Clone returns a new table of the same length referencing the same
// underlying File objects as t (fork shares fd table entries, not their
// contents).
func (t *FdTable) Clone() *FdTable {
	slots := make([]File, len(t.slots))
	copy(slots, t.slots)
	return &FdTable{slots: slots}
}

// Alloc installs f at the lowest free slot, growing the table if every
// slot is occupied, and returns the slot index.
func (t *FdTable) Alloc(f File) int {
	for i, slot := range t.slots {
		if slot == nil {
			t.slots[i] = f
			return i
		}
	}
	t.slots = append(t.slots, f)
	return len(t.slots) - 1
}

// Get returns the File at fd, or nil if fd is out of range or free.
func (t *FdTable) Get(fd int) File {
	if fd < 0 || fd >= len(t.slots) {
		return nil
	}
	return t.slots[fd]
}

// Close frees fd's slot. Returns false if fd was already free or out of
// range.
func (t *FdTable) Close(fd int) bool {
	if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
		return false
	}
	t.slots[fd] = nil
	return true
}

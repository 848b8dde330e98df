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

package mmap

// FlatMemorySet is the concrete MemorySet this simulator boots a task
// against when no real page-table walker is plugged in: a single flat host
// byte array stands in for physical memory, and a per-page permission map
// stands in for the page table. It also satisfies usermem.Translator
// directly, since "virtual" and "host" addresses coincide here.
type FlatMemorySet struct {
	backing []byte
	mapped  map[uint64]MapPermission
}

// NewFlatMemorySet returns a FlatMemorySet backed by a host array of size
// bytes, the simulated address space's entire span.
func NewFlatMemorySet(size uint64) *FlatMemorySet {
	return &FlatMemorySet{backing: make([]byte, size), mapped: make(map[uint64]MapPermission)}
}

func (f *FlatMemorySet) Translate(vpn uint64) bool {
	_, ok := f.mapped[vpn]
	return ok
}

func (f *FlatMemorySet) InsertFramedArea(start, end uint64, perm MapPermission) error {
	if end > uint64(len(f.backing)) {
		return ErrNotMapped
	}
	for vpn := start / pageSize; vpn < end/pageSize; vpn++ {
		f.mapped[vpn] = perm
	}
	return nil
}

func (f *FlatMemorySet) UnmapRange(startVPN, npages uint64) bool {
	for vpn := startVPN; vpn < startVPN+npages; vpn++ {
		if _, ok := f.mapped[vpn]; !ok {
			return false
		}
	}
	for vpn := startVPN; vpn < startVPN+npages; vpn++ {
		delete(f.mapped, vpn)
	}
	return true
}

// Poke writes data directly into the backing array at addr, bypassing the
// mapped-page check. It stands in for the argv/envp copy a real loader
// performs before a task's first instruction ever runs; callers still map
// the covering pages with InsertFramedArea first so later Translate calls
// see them as valid.
func (f *FlatMemorySet) Poke(addr uint64, data []byte) {
	copy(f.backing[addr:], data)
}

// TranslatedByteBuffer implements usermem.Translator. Every byte in
// [userAddr, userAddr+length) must fall on a currently-mapped page.
func (f *FlatMemorySet) TranslatedByteBuffer(userAddr uintptr, length int) [][]byte {
	end := uint64(userAddr) + uint64(length)
	for vpn := uint64(userAddr) / pageSize; vpn < (end+pageSize-1)/pageSize; vpn++ {
		if _, ok := f.mapped[vpn]; !ok {
			return nil
		}
	}
	return [][]byte{f.backing[uint64(userAddr):end]}
}

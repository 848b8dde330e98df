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

// Package mmap implements the do_mmap/do_munmap policy layer over an
// external memory-set API (page-table walking and frame allocation are
// out of scope for this core — see spec.md §1).
package mmap

import "github.com/medihbt/rcore-gokernel/internal/logger"

const pageSize = 4096
const pageAlignMask = pageSize - 1

// Perm is the 3-bit user-requested protection bitmask: R=1, W=2, X=4.
type Perm uint8

const (
	PermRead    Perm = 1
	PermWrite   Perm = 2
	PermExecute Perm = 4
)

// MapPermission is the page-table-level permission bitmask: Perm shifted
// left by one bit to make room for the U (user-accessible) bit, which
// every mapping installed through this package carries.
type MapPermission uint8

const MapPermissionUser MapPermission = 1 << 0

// VPNRange is a half-open range of virtual page numbers.
type VPNRange struct {
	Start, End uint64
}

// MemorySet is the external collaborator this package drives: a process's
// page table plus frame allocator, exposing exactly the operations
// mmap/munmap need (spec.md §1).
type MemorySet interface {
	// Translate reports whether vpn currently has a valid mapping.
	Translate(vpn uint64) (valid bool)
	// InsertFramedArea installs a fresh anonymous mapping for [start, end)
	// with the given permission.
	InsertFramedArea(start, end uint64, perm MapPermission) error
	// UnmapRange removes exactly npages pages starting at startVPN,
	// reporting whether every page in range was actually unmapped.
	UnmapRange(startVPN uint64, npages uint64) bool
}

func pageAligned(addr uint64) bool {
	return addr&pageAlignMask == 0
}

func pageRoundUp(addr uint64) uint64 {
	if pageAligned(addr) {
		return addr
	}
	return (addr | pageAlignMask) + 1
}

func uprotToPermission(prot Perm) (MapPermission, bool) {
	if prot >= 8 || prot&0x7 == 0 {
		return 0, false
	}
	return MapPermission(prot<<1) | MapPermissionUser, true
}

func rangeMapped(ms MemorySet, startAddr, endAddr uint64) bool {
	for vpn := startAddr / pageSize; vpn < (endAddr+pageSize-1)/pageSize; vpn++ {
		if ms.Translate(vpn) {
			return true
		}
	}
	return false
}

// DoMmap installs a fresh anonymous mapping at [start, start+len) with
// permission prot, returning nil on success or an error describing why the
// request was refused. Callers map this onto the mmap syscall's 0/-1
// return convention.
func DoMmap(ms MemorySet, start, length uint64, prot Perm) error {
	if !pageAligned(start) {
		logger.Warnf("mmap: start 0x%x not page-aligned", start)
		return ErrUnaligned
	}
	perm, ok := uprotToPermission(prot)
	if !ok {
		logger.Warnf("mmap: invalid permission bitmask 0b%03b", prot)
		return ErrInvalidPerm
	}
	length = pageRoundUp(length)
	if rangeMapped(ms, start, start+length) {
		logger.Warnf("mmap: range 0x%x..0x%x already mapped", start, start+length)
		return ErrAlreadyMapped
	}
	return ms.InsertFramedArea(start, start+length, perm)
}

// DoMunmap removes the npages pages covering [start, start+len). It fails
// if start is unaligned or any page in range was not part of a
// user-installed framed area.
func DoMunmap(ms MemorySet, start, length uint64) error {
	if !pageAligned(start) {
		logger.Warnf("munmap: start 0x%x not page-aligned", start)
		return ErrUnaligned
	}
	length = pageRoundUp(length)
	npages := length / pageSize
	startVPN := start / pageSize
	logger.Infof("munmap: unmap len 0x%x, %d pages", length, npages)
	if !ms.UnmapRange(startVPN, npages) {
		return ErrNotMapped
	}
	return nil
}

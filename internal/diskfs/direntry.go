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
	"bytes"
	"encoding/binary"
)

const (
	// MaxNameLen is the longest name a DirEntry can hold, excluding the
	// guaranteed trailing NUL.
	MaxNameLen = 27
	// nameFieldSize is the on-disk width of the name field, including
	// its terminating NUL byte.
	nameFieldSize = MaxNameLen + 1
	// DirEntrySize is the fixed on-disk size of a directory entry.
	DirEntrySize = nameFieldSize + 4
)

// DirEntry is a fixed 32-byte directory record: a NUL-padded name and the
// inode id it names.
type DirEntry struct {
	name    [nameFieldSize]byte
	InodeID uint32
}

// NewDirEntry builds a DirEntry for name/inodeID. It panics if name is
// longer than MaxNameLen — callers validate path components before this
// point.
func NewDirEntry(name string, inodeID uint32) DirEntry {
	if len(name) > MaxNameLen {
		panic("diskfs: directory entry name too long")
	}
	var e DirEntry
	copy(e.name[:], name)
	e.InodeID = inodeID
	return e
}

// Name returns the entry's name with its NUL padding stripped.
func (e DirEntry) Name() string {
	n := bytes.IndexByte(e.name[:], 0)
	if n < 0 {
		n = len(e.name)
	}
	return string(e.name[:n])
}

// MarshalBinary packs the entry into its 32-byte on-disk form.
func (e DirEntry) MarshalBinary() []byte {
	buf := make([]byte, DirEntrySize)
	copy(buf[:nameFieldSize], e.name[:])
	binary.LittleEndian.PutUint32(buf[nameFieldSize:], e.InodeID)
	return buf
}

// UnmarshalDirEntry reads a DirEntry from its 32-byte on-disk form.
func UnmarshalDirEntry(buf []byte) DirEntry {
	var e DirEntry
	copy(e.name[:], buf[:nameFieldSize])
	e.InodeID = binary.LittleEndian.Uint32(buf[nameFieldSize:])
	return e
}

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

import "encoding/binary"

// StatMode is the mode bitmask reported in Stat.Mode. Only FILE and DIR are
// ever produced by this package; the remaining bits are carried so the
// polymorphic File layer (pipes, ttys) can report accurate modes without a
// second bitmask type.
type StatMode uint32

const (
	StatModeFile StatMode = 0o100000
	StatModeDir  StatMode = 0o040000
	StatModeFIFO StatMode = 0o010000
	StatModeChr  StatMode = 0o020000
	StatModeBlk  StatMode = 0o060000
	StatModeLnk  StatMode = 0o120000
	StatModeSock StatMode = 0o140000
)

// StatSize is the fixed on-disk/wire size of Stat, matching spec.md §6.
const StatSize = 64

// Stat mirrors the fstat(2) record this kernel exposes to user space: a
// device id, inode number, mode bitmask, link count, and reserved padding.
// The Go struct is 80 bytes (Pad holds seven words); its 64-byte wire form
// from MarshalBinary carries only the first five pad words.
type Stat struct {
	Dev   uint64
	Ino   uint64
	Mode  StatMode
	Nlink uint32
	Pad   [7]uint64
}

// MarshalBinary packs Stat into its 64-byte wire form.
func (s Stat) MarshalBinary() []byte {
	buf := make([]byte, StatSize)
	binary.LittleEndian.PutUint64(buf[0:8], s.Dev)
	binary.LittleEndian.PutUint64(buf[8:16], s.Ino)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(s.Mode))
	binary.LittleEndian.PutUint32(buf[20:24], s.Nlink)
	for i := 0; 24+i*8+8 <= StatSize; i++ {
		off := 24 + i*8
		binary.LittleEndian.PutUint64(buf[off:off+8], s.Pad[i])
	}
	return buf
}

// StatOf builds the Stat record for inode, using devID as the caller's
// filesystem/boot identifier (spec.md leaves "device id" unspecified; see
// DESIGN.md).
func StatOf(inode *Inode, devID uint64) Stat {
	mode := StatModeFile
	if inode.IsDir() {
		mode = StatModeDir
	}
	return Stat{
		Dev:   devID,
		Ino:   uint64(inode.GetID()),
		Mode:  mode,
		Nlink: inode.GetRefCount(),
	}
}

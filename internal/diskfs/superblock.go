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

// superblockMagic identifies a block 0 written by this filesystem.
const superblockMagic uint32 = 0x3b800001

// superblock describes the on-disk geometry: [superblock][inode
// bitmap][inode blocks][data bitmap][data blocks], per spec.md §6.
type superblock struct {
	Magic          uint32
	TotalBlocks    uint32
	InodeBitmapLen uint32
	InodeAreaLen   uint32
	DataBitmapLen  uint32
	DataAreaLen    uint32
}

func (s *superblock) marshal() []byte {
	buf := make([]byte, blockSize)
	binary.LittleEndian.PutUint32(buf[0:4], s.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], s.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[8:12], s.InodeBitmapLen)
	binary.LittleEndian.PutUint32(buf[12:16], s.InodeAreaLen)
	binary.LittleEndian.PutUint32(buf[16:20], s.DataBitmapLen)
	binary.LittleEndian.PutUint32(buf[20:24], s.DataAreaLen)
	return buf
}

func unmarshalSuperblock(buf []byte) superblock {
	return superblock{
		Magic:          binary.LittleEndian.Uint32(buf[0:4]),
		TotalBlocks:    binary.LittleEndian.Uint32(buf[4:8]),
		InodeBitmapLen: binary.LittleEndian.Uint32(buf[8:12]),
		InodeAreaLen:   binary.LittleEndian.Uint32(buf[12:16]),
		DataBitmapLen:  binary.LittleEndian.Uint32(buf[16:20]),
		DataAreaLen:    binary.LittleEndian.Uint32(buf[20:24]),
	}
}

func (s *superblock) valid() bool { return s.Magic == superblockMagic }

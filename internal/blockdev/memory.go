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

package blockdev

import "sync"

// Memory is a fixed-capacity, entirely in-RAM Device. It exists for tests
// and for running the simulator with a scratch disk image that need not
// survive the process.
type Memory struct {
	mu     sync.Mutex
	blocks [][BlockSize]byte
}

// NewMemory returns a Memory device with totalBlocks zeroed blocks.
func NewMemory(totalBlocks uint32) *Memory {
	return &Memory{blocks: make([][BlockSize]byte, totalBlocks)}
}

func (m *Memory) ReadBlock(blockID uint32, buf *[BlockSize]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*buf = m.blocks[blockID]
}

func (m *Memory) WriteBlock(blockID uint32, buf *[BlockSize]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[blockID] = *buf
}

// TotalBlocks reports the device's fixed capacity.
func (m *Memory) TotalBlocks() uint32 {
	return uint32(len(m.blocks))
}

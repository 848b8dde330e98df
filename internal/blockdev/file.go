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

import (
	"os"
	"sync"
)

// File is a Device backed by a regular file on the host filesystem, used
// to persist a disk image across simulator runs.
type File struct {
	mu sync.Mutex
	f  *os.File
}

// OpenFile opens (creating if necessary) path as a block device image.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

func (d *File) ReadBlock(blockID uint32, buf *[BlockSize]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.f.ReadAt(buf[:], int64(blockID)*BlockSize); err != nil {
		panic(err)
	}
}

func (d *File) WriteBlock(blockID uint32, buf *[BlockSize]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.f.WriteAt(buf[:], int64(blockID)*BlockSize); err != nil {
		panic(err)
	}
}

// Close releases the underlying file handle.
func (d *File) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}

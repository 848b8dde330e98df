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

// Package blockdev defines the narrow synchronous block-device boundary the
// filesystem layer is built against, plus an in-memory and a file-backed
// implementation of it. The real block device driver is out of scope (see
// spec §1); callers supply whichever implementation fits their harness.
package blockdev

// BlockSize is the fixed block size every component above this boundary
// assumes.
const BlockSize = 512

// Device is the synchronous block device contract. Implementations are not
// required to be safe for concurrent use from multiple goroutines without
// external locking — the block cache above it serializes access per block.
type Device interface {
	ReadBlock(blockID uint32, buf *[BlockSize]byte)
	WriteBlock(blockID uint32, buf *[BlockSize]byte)
}

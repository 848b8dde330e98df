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

// Package blockcache implements a bounded, write-back cache of fixed-size
// disk blocks sitting in front of a blockdev.Device. It does not enforce
// filesystem-level ordering or atomicity; callers call SyncAll at the end
// of every externally-visible mutation.
package blockcache

import (
	"container/list"
	"sync"

	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/medihbt/rcore-gokernel/internal/logger"
	"github.com/medihbt/rcore-gokernel/internal/metrics"
)

// CachedBlock is a single cache slot: a 512-byte buffer, a dirty flag, and
// the lock guarding both. Multiple Read/Modify calls may coalesce against
// the same dirty buffer before it is ever written back.
type CachedBlock struct {
	mu      sync.Mutex
	blockID uint32
	data    [blockdev.BlockSize]byte
	dirty   bool
}

// Read applies f to a read-only view of the block's bytes starting at off.
func (b *CachedBlock) Read(off int, f func(data []byte)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b.data[off:])
}

// Modify applies f to a mutable view of the block's bytes starting at off
// and marks the block dirty.
func (b *CachedBlock) Modify(off int, f func(data []byte)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b.data[off:])
	b.dirty = true
}

// Cache is a bounded LRU cache of CachedBlocks, backed by a blockdev.Device.
// Eviction writes back the evicted entry first if it is dirty.
type Cache struct {
	mu       sync.Mutex
	dev      blockdev.Device
	capacity int
	ll       *list.List // front = most recently used
	index    map[uint32]*list.Element
	rec      metrics.Recorder
}

type entry struct {
	blockID uint32
	block   *CachedBlock
}

// New returns a Cache with the given capacity (default 16 per spec.md §4.1
// when capacity <= 0) over dev. rec may be nil, in which case a no-op
// recorder is used.
func New(dev blockdev.Device, capacity int, rec metrics.Recorder) *Cache {
	if capacity <= 0 {
		capacity = 16
	}
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &Cache{
		dev:      dev,
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[uint32]*list.Element),
		rec:      rec,
	}
}

// Get returns the CachedBlock for blockID, loading it from the device and
// evicting the least-recently-used entry if the cache is at capacity.
func (c *Cache) Get(blockID uint32) *CachedBlock {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[blockID]; ok {
		c.ll.MoveToFront(el)
		c.rec.BlockCacheAccess(true)
		return el.Value.(*entry).block
	}
	c.rec.BlockCacheAccess(false)

	block := &CachedBlock{blockID: blockID}
	c.dev.ReadBlock(blockID, &block.data)

	if c.ll.Len() >= c.capacity {
		c.evictOldestLocked()
	}
	el := c.ll.PushFront(&entry{blockID: blockID, block: block})
	c.index[blockID] = el
	return block
}

// evictOldestLocked must be called with c.mu held.
func (c *Cache) evictOldestLocked() {
	back := c.ll.Back()
	if back == nil {
		return
	}
	ent := back.Value.(*entry)
	c.flushLocked(ent)
	c.ll.Remove(back)
	delete(c.index, ent.blockID)
}

func (c *Cache) flushLocked(ent *entry) {
	ent.block.mu.Lock()
	dirty := ent.block.dirty
	data := ent.block.data
	ent.block.dirty = false
	ent.block.mu.Unlock()
	if dirty {
		c.dev.WriteBlock(ent.blockID, &data)
	}
}

// SyncAll flushes every dirty entry currently resident in the cache. After
// it returns, every prior write is durable on the underlying device — the
// only durability barrier this layer offers (spec.md §9 open question 4).
func (c *Cache) SyncAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.ll.Front(); el != nil; el = el.Next() {
		c.flushLocked(el.Value.(*entry))
	}
	logger.Tracef("blockcache: sync_all flushed %d entries", c.ll.Len())
}

// Len reports the number of blocks currently resident, for tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

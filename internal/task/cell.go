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

// Package task implements the task control block: the single mutable
// record of one kernel task's lifecycle, address space handle, fd table,
// scheduling info, and per-task synchronization-object tables.
package task

import "sync"

// ExclusiveCell is a single-writer cell around a T, standing in for the
// uniprocessor "exclusive access" cell the original kernel wraps every TCB
// in: on a single core, holding two live borrows at once is always a
// programmer error, never a legitimate race, so this cell panics on
// reentrant access rather than deadlocking silently.
type ExclusiveCell[T any] struct {
	mu   sync.Mutex
	held bool
	val  T
}

// NewExclusiveCell wraps val.
func NewExclusiveCell[T any](val T) *ExclusiveCell[T] {
	return &ExclusiveCell[T]{val: val}
}

// Access runs f against the cell's contents with exclusive access. It
// panics if called reentrantly (f calling back into Access/TryAccess on
// the same cell before returning).
func (c *ExclusiveCell[T]) Access(f func(v *T)) {
	c.mu.Lock()
	if c.held {
		c.mu.Unlock()
		panic("task: reentrant ExclusiveCell access")
	}
	c.held = true
	c.mu.Unlock()

	f(&c.val)

	c.mu.Lock()
	c.held = false
	c.mu.Unlock()
}

// TryAccess is like Access but returns false instead of panicking when the
// cell is already held.
func (c *ExclusiveCell[T]) TryAccess(f func(v *T)) bool {
	c.mu.Lock()
	if c.held {
		c.mu.Unlock()
		return false
	}
	c.held = true
	c.mu.Unlock()

	f(&c.val)

	c.mu.Lock()
	c.held = false
	c.mu.Unlock()
	return true
}

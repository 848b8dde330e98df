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

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusiveCell_AccessMutatesInPlace(t *testing.T) {
	c := NewExclusiveCell(42)
	c.Access(func(v *int) { *v += 1 })
	c.Access(func(v *int) { assert.Equal(t, 43, *v) })
}

func TestExclusiveCell_ReentrantAccessPanics(t *testing.T) {
	c := NewExclusiveCell(0)
	assert.Panics(t, func() {
		c.Access(func(v *int) {
			c.Access(func(v2 *int) {})
		})
	})
}

func TestExclusiveCell_TryAccessFailsWhileHeld(t *testing.T) {
	c := NewExclusiveCell(0)
	c.Access(func(v *int) {
		ok := c.TryAccess(func(v2 *int) {})
		assert.False(t, ok)
	})
	ok := c.TryAccess(func(v *int) {})
	assert.True(t, ok)
}

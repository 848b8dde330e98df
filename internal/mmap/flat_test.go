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

package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatMemorySet_MmapThenMunmapRoundTrips(t *testing.T) {
	f := NewFlatMemorySet(1 << 20)
	require.NoError(t, DoMmap(f, 0x1000, 8192, PermRead|PermWrite))
	assert.True(t, f.Translate(1))
	assert.True(t, f.Translate(2))

	require.NoError(t, DoMunmap(f, 0x1000, 8192))
	assert.False(t, f.Translate(1))
}

func TestFlatMemorySet_TranslatedByteBufferRequiresFullyMappedRange(t *testing.T) {
	f := NewFlatMemorySet(1 << 20)
	assert.Nil(t, f.TranslatedByteBuffer(0x1000, 16))

	require.NoError(t, DoMmap(f, 0x1000, 4096, PermRead|PermWrite))
	buf := f.TranslatedByteBuffer(0x1000, 16)
	require.Len(t, buf, 1)
	assert.Len(t, buf[0], 16)
}

func TestFlatMemorySet_InsertFramedAreaRejectsOutOfBounds(t *testing.T) {
	f := NewFlatMemorySet(4096)
	assert.Error(t, f.InsertFramedArea(0, 8192, MapPermissionUser))
}

func TestFlatMemorySet_PokeWritesDirectlyIntoBacking(t *testing.T) {
	f := NewFlatMemorySet(4096)
	require.NoError(t, DoMmap(f, 0, 4096, PermRead|PermWrite))
	f.Poke(16, []byte("hello\x00"))
	buf := f.TranslatedByteBuffer(16, 6)
	require.Len(t, buf, 1)
	assert.Equal(t, "hello\x00", string(buf[0]))
}

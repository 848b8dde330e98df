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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirEntry_RoundTrip(t *testing.T) {
	e := NewDirEntry("hello.txt", 17)
	buf := e.MarshalBinary()
	require.Len(t, buf, DirEntrySize)

	got := UnmarshalDirEntry(buf)
	assert.Equal(t, "hello.txt", got.Name())
	assert.Equal(t, uint32(17), got.InodeID)
}

func TestNewDirEntry_PanicsOnLongName(t *testing.T) {
	longName := make([]byte, MaxNameLen+1)
	for i := range longName {
		longName[i] = 'a'
	}
	assert.Panics(t, func() { NewDirEntry(string(longName), 1) })
}

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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	dev := NewMemory(4)
	var in, out [BlockSize]byte
	copy(in[:], "hello block")

	dev.WriteBlock(2, &in)
	dev.ReadBlock(2, &out)

	assert.Equal(t, in, out)
	assert.Equal(t, uint32(4), dev.TotalBlocks())
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := OpenFile(path)
	require.NoError(t, err)
	defer dev.Close()

	var in, out [BlockSize]byte
	copy(in[:], "persisted block")

	dev.WriteBlock(5, &in)
	dev.ReadBlock(5, &out)

	assert.Equal(t, in, out)
}

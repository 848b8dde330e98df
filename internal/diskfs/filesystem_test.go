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

	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) (*FileSystem, *Inode) {
	t.Helper()
	dev := blockdev.NewMemory(8192)
	fs, root := Create(dev, 8192, 4, 32)
	require.NotNil(t, fs)
	require.NotNil(t, root)
	return fs, root
}

func TestCreate_FormatsAndReopens(t *testing.T) {
	dev := blockdev.NewMemory(8192)
	fs, root := Create(dev, 8192, 4, 32)
	require.True(t, root.IsDir())
	fs.SyncAll()

	_, root2 := Open(dev, 32)
	assert.True(t, root2.IsDir())
	assert.Equal(t, root.GetID(), root2.GetID())
}

func TestInode_CreateFindLs(t *testing.T) {
	_, root := newTestFS(t)

	child, err := root.Create("a.txt")
	require.NoError(t, err)
	require.NotNil(t, child)

	_, err = root.Create("a.txt")
	assert.Error(t, err)

	found, ok := root.Find("a.txt")
	require.True(t, ok)
	assert.Equal(t, child.GetID(), found.GetID())

	assert.Equal(t, []string{"a.txt"}, root.Ls())
}

func TestInode_WriteAtReadAtRoundTrip(t *testing.T) {
	_, root := newTestFS(t)
	f, err := root.Create("big.bin")
	require.NoError(t, err)

	payload := make([]byte, 20*1024)
	for i := range payload {
		payload[i] = byte(i % 197)
	}
	n := f.WriteAt(0, payload)
	require.Equal(t, len(payload), n)

	out := make([]byte, len(payload))
	readN := f.ReadAt(0, out)
	require.Equal(t, len(payload), readN)
	assert.Equal(t, payload, out)
}

func TestInode_HardLinkAndFstat(t *testing.T) {
	_, root := newTestFS(t)
	a, err := root.Create("a")
	require.NoError(t, err)
	a.WriteAt(0, []byte("hello"))

	err = root.HardLink(a, "b")
	require.NoError(t, err)

	b, ok := root.Find("b")
	require.True(t, ok)
	assert.Equal(t, uint32(2), b.GetRefCount())

	buf := make([]byte, 5)
	a.ReadAt(0, buf)
	assert.Equal(t, "hello", string(buf))
}

func TestInode_HardUnlink_POSIXSemantics(t *testing.T) {
	_, root := newTestFS(t)
	a, err := root.Create("a")
	require.NoError(t, err)
	a.WriteAt(0, []byte("hello"))
	require.NoError(t, root.HardLink(a, "b"))

	require.NoError(t, root.HardUnlink("a"))

	_, found := root.Find("a")
	assert.False(t, found)

	b, ok := root.Find("b")
	require.True(t, ok)
	assert.Equal(t, uint32(1), b.GetRefCount())

	buf := make([]byte, 5)
	b.ReadAt(0, buf)
	assert.Equal(t, "hello", string(buf))
}

func TestInode_HardUnlinkLegacy_KeepsEntryWhileAliased(t *testing.T) {
	_, root := newTestFS(t)
	a, err := root.Create("a")
	require.NoError(t, err)
	require.NoError(t, root.HardLink(a, "b"))

	require.NoError(t, root.HardUnlinkLegacy("a"))

	// The legacy behavior only drops the entry once refcount hits zero, so
	// "a" is still listed even though it has effectively been unlinked once.
	_, found := root.Find("a")
	assert.True(t, found)
}

func TestInode_Clear(t *testing.T) {
	_, root := newTestFS(t)
	f, err := root.Create("c")
	require.NoError(t, err)
	f.WriteAt(0, []byte("some content"))
	f.Clear()

	buf := make([]byte, 12)
	n := f.ReadAt(0, buf)
	assert.Equal(t, 0, n)
}

func TestLinkFile_RejectsSelfLinkAndMissingSource(t *testing.T) {
	_, root := newTestFS(t)
	_, err := root.Create("a")
	require.NoError(t, err)

	_, err = LinkFile(root, "a", "a")
	assert.Error(t, err)

	_, err = LinkFile(root, "missing", "b")
	assert.Error(t, err)
}

func TestInode_FindAndCreatePanicOnNonDirectoryReceiver(t *testing.T) {
	_, root := newTestFS(t)
	file, err := root.Create("regular.txt")
	require.NoError(t, err)
	require.False(t, file.IsDir())

	assert.Panics(t, func() { file.Find("anything") })
	assert.Panics(t, func() { file.Create("child") })
}

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

package syscall

import (
	"encoding/binary"
	"testing"

	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_OpenWriteReadCloseRoundTrips(t *testing.T) {
	h := newTestHarness(t)
	h.writeUserCString(0x1000, "greeting.txt")

	fd := h.d.Open(0x1000, OpenCREATE|OpenRDWR)
	require.GreaterOrEqual(t, fd, int64(3)) // 0,1,2 are stdio

	copy(h.ms.backing[0x2000:], []byte("hello"))
	n := h.d.Write(int(fd), 0x2000, 5)
	assert.Equal(t, int64(5), n)

	// fd's cursor now sits past the five written bytes; read them back
	// through a second handle that starts at offset 0.
	rfd := h.d.Open(0x1000, OpenRDONLY)
	require.GreaterOrEqual(t, rfd, int64(3))
	got := h.d.Read(int(rfd), 0x3000, 5)
	assert.Equal(t, int64(5), got)
	assert.Equal(t, "hello", string(h.ms.backing[0x3000:0x3005]))

	assert.Equal(t, int64(0), h.d.Close(int(fd)))
	assert.Equal(t, int64(-1), h.d.Close(int(fd)), "double close fails")
}

func TestDispatcher_OpenWithoutCreateOnMissingPathFails(t *testing.T) {
	h := newTestHarness(t)
	h.writeUserCString(0x1000, "nope.txt")
	assert.Equal(t, int64(-1), h.d.Open(0x1000, OpenRDONLY))
}

func TestDispatcher_WriteToUnwritableFdFails(t *testing.T) {
	h := newTestHarness(t)
	// fd 0 is stdin, read-only.
	assert.Equal(t, int64(-1), h.d.Write(0, 0x2000, 1))
}

func TestDispatcher_FstatReportsFileMode(t *testing.T) {
	h := newTestHarness(t)
	h.writeUserCString(0x1000, "f.txt")
	fd := h.d.Open(0x1000, OpenCREATE|OpenRDWR)
	require.Equal(t, int64(0), h.d.Fstat(int(fd), 0x4000))

	wire := h.ms.backing[0x4000 : 0x4000+diskfs.StatSize]
	dev := binary.LittleEndian.Uint64(wire[0:8])
	mode := binary.LittleEndian.Uint32(wire[16:20])
	assert.Equal(t, uint64(0xdead), dev)
	assert.Equal(t, uint32(diskfs.StatModeFile), mode)
}

func TestDispatcher_LinkatThenUnlinkat(t *testing.T) {
	h := newTestHarness(t)
	h.writeUserCString(0x1000, "orig.txt")
	fd := h.d.Open(0x1000, OpenCREATE|OpenRDWR)
	require.GreaterOrEqual(t, fd, int64(3))

	h.writeUserCString(0x1100, "orig.txt")
	h.writeUserCString(0x1200, "alias.txt")
	require.Equal(t, int64(0), h.d.Linkat(0x1100, 0x1200))

	_, ok := h.root.Find("alias.txt")
	assert.True(t, ok)

	h.writeUserCString(0x1300, "alias.txt")
	require.Equal(t, int64(0), h.d.Unlinkat(0x1300))
	_, ok = h.root.Find("alias.txt")
	assert.False(t, ok)

	// the original file under its first name must still be reachable.
	_, ok = h.root.Find("orig.txt")
	assert.True(t, ok)
}

func TestDispatcher_UnlinkatOnMissingNameFails(t *testing.T) {
	h := newTestHarness(t)
	h.writeUserCString(0x1000, "ghost.txt")
	assert.Equal(t, int64(-1), h.d.Unlinkat(0x1000))
}

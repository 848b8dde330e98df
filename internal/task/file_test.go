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
	"bytes"
	"strings"
	"testing"

	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_WriteThenReadRoundTrips(t *testing.T) {
	r, w := NewPipe()
	assert.True(t, r.Readable())
	assert.False(t, r.Writable())
	assert.True(t, w.Writable())
	assert.False(t, w.Readable())

	n := w.Write([]byte("hello"))
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	got := r.Read(buf)
	assert.Equal(t, 5, got)
	assert.Equal(t, "hello", string(buf))
}

func TestPipe_ReadOnEmptyOpenPipeReturnsZero(t *testing.T) {
	r, _ := NewPipe()
	buf := make([]byte, 4)
	assert.Equal(t, 0, r.Read(buf))
	assert.False(t, r.AtEOF())
}

func TestPipe_AtEOFOnceWriteEndClosedAndDrained(t *testing.T) {
	r, w := NewPipe()
	w.Write([]byte("x"))
	w.Close()
	assert.False(t, r.AtEOF(), "data still buffered")

	buf := make([]byte, 1)
	r.Read(buf)
	assert.True(t, r.AtEOF())
}

func TestStdin_ReadsFromInjectedSource(t *testing.T) {
	stdin := &Stdin{Source: strings.NewReader("abc")}
	buf := make([]byte, 3)
	n := stdin.Read(buf)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(buf))
	assert.True(t, stdin.Readable())
	assert.False(t, stdin.Writable())
}

func TestStdout_WritesToInjectedSink(t *testing.T) {
	var buf bytes.Buffer
	stdout := &Stdout{Sink: &buf}
	n := stdout.Write([]byte("out"))
	assert.Equal(t, 3, n)
	assert.Equal(t, "out", buf.String())
}

func TestRegularInode_ReadWriteAdvanceOffset(t *testing.T) {
	dev := blockdev.NewMemory(8192)
	_, root := diskfs.Create(dev, 8192, 4, 32)
	inode, err := root.Create("greeting")
	require.NoError(t, err)

	f := NewRegularInode(inode, true, true, 7)
	n := f.Write([]byte("hi"))
	require.Equal(t, 2, n)

	f2 := NewRegularInode(inode, true, true, 7)
	buf := make([]byte, 2)
	got := f2.Read(buf)
	assert.Equal(t, 2, got)
	assert.Equal(t, "hi", string(buf))

	st := f.Stat()
	assert.Equal(t, diskfs.StatModeFile, st.Mode)
	assert.Equal(t, uint64(7), st.Dev)
}

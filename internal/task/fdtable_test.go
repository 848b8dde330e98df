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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFdTable_StdinStdoutPrewired(t *testing.T) {
	stdin := &Stdin{Source: bytes.NewReader(nil)}
	stdout := &Stdout{Sink: &bytes.Buffer{}}
	tbl := NewFdTable(stdin, stdout)

	assert.Same(t, File(stdin), tbl.Get(0))
	assert.Same(t, File(stdout), tbl.Get(1))
	assert.Same(t, File(stdout), tbl.Get(2))
}

func TestFdTable_AllocPicksLowestFreeSlot(t *testing.T) {
	stdin := &Stdin{Source: bytes.NewReader(nil)}
	stdout := &Stdout{Sink: &bytes.Buffer{}}
	tbl := NewFdTable(stdin, stdout)

	r, w := NewPipe()
	fd := tbl.Alloc(r)
	require.Equal(t, 3, fd)

	require.True(t, tbl.Close(fd))
	fd2 := tbl.Alloc(w)
	assert.Equal(t, 3, fd2, "freed slot must be reused before growing the table")
}

func TestFdTable_CloseUnknownFdFails(t *testing.T) {
	tbl := NewFdTable(&Stdin{Source: bytes.NewReader(nil)}, &Stdout{Sink: &bytes.Buffer{}})
	assert.False(t, tbl.Close(99))
	assert.True(t, tbl.Close(0))
	assert.False(t, tbl.Close(0), "closing an already-free slot fails")
}

func TestFdTable_CloneSharesUnderlyingFiles(t *testing.T) {
	stdin := &Stdin{Source: bytes.NewReader(nil)}
	stdout := &Stdout{Sink: &bytes.Buffer{}}
	tbl := NewFdTable(stdin, stdout)
	clone := tbl.Clone()

	assert.Same(t, tbl.Get(1), clone.Get(1))
	clone.Close(1)
	assert.NotNil(t, tbl.Get(1), "closing a clone's slot must not affect the original table")
}

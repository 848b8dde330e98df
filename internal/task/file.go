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
	"io"
	"sync"

	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/medihbt/rcore-gokernel/internal/mailbox"
)

// File is the polymorphic object an fd table slot owns. Unlike the
// original's File::read/write, which take a scatter-gather UserBuffer
// directly, these operate on a plain kernel-side buffer: the syscall
// dispatcher stages user memory through internal/usermem before and after
// calling into a File, keeping the user/kernel boundary in one place.
type File interface {
	Readable() bool
	Writable() bool
	Read(buf []byte) int
	Write(buf []byte) int
	Stat() diskfs.Stat
}

// RegularInode adapts a diskfs.Inode (a seekless random-access handle)
// into a File with an implicit cursor, the way OSInode wraps easy_fs::Inode
// in the original.
type RegularInode struct {
	readable bool
	writable bool
	devID    uint64

	mu     sync.Mutex
	offset int
	inode  *diskfs.Inode
}

// NewRegularInode wraps inode as a File opened with the given access mode.
// devID is stamped into Stat() the way diskfs.StatOf expects.
func NewRegularInode(inode *diskfs.Inode, readable, writable bool, devID uint64) *RegularInode {
	return &RegularInode{readable: readable, writable: writable, devID: devID, inode: inode}
}

func (f *RegularInode) Readable() bool { return f.readable }
func (f *RegularInode) Writable() bool { return f.writable }

func (f *RegularInode) Read(buf []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.inode.ReadAt(f.offset, buf)
	f.offset += n
	return n
}

func (f *RegularInode) Write(buf []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.inode.WriteAt(f.offset, buf)
	f.offset += n
	return n
}

func (f *RegularInode) Stat() diskfs.Stat {
	return diskfs.StatOf(f.inode, f.devID)
}

// pipeBuffer is the shared ring buffer a paired Pipe's two ends read and
// write through, reusing internal/mailbox's ring rather than a second
// copy of the same wraparound arithmetic.
type pipeBuffer struct {
	mu          sync.Mutex
	ring        *mailbox.RingBuffer
	writeClosed bool
}

// Pipe is one end (read or write, never both) of an anonymous pipe.
type Pipe struct {
	readable bool
	writable bool
	buffer   *pipeBuffer
}

// NewPipe returns the paired read and write ends of a fresh anonymous
// pipe, the Go analogue of the original's make_pipe.
func NewPipe() (read *Pipe, write *Pipe) {
	buf := &pipeBuffer{ring: mailbox.NewRingBuffer()}
	return &Pipe{readable: true, buffer: buf}, &Pipe{writable: true, buffer: buf}
}

func (p *Pipe) Readable() bool { return p.readable }
func (p *Pipe) Writable() bool { return p.writable }

// Read drains whatever is currently buffered, up to len(buf). It never
// blocks: a read against an empty, still-open pipe returns 0, same as the
// original's pipe read loop would see on its first poll before it yields
// to the scheduler. The syscall dispatcher's Read does not wait for data
// either: it returns whatever this call returns.
func (p *Pipe) Read(buf []byte) int {
	p.buffer.mu.Lock()
	defer p.buffer.mu.Unlock()
	return p.buffer.ring.PopBytes(buf)
}

func (p *Pipe) Write(buf []byte) int {
	p.buffer.mu.Lock()
	defer p.buffer.mu.Unlock()
	return p.buffer.ring.PushBytes(buf)
}

// Close marks the write end closed so readers observe EOF once the buffer
// drains. A no-op on the read end.
func (p *Pipe) Close() {
	if !p.writable {
		return
	}
	p.buffer.mu.Lock()
	p.buffer.writeClosed = true
	p.buffer.mu.Unlock()
}

// AtEOF reports whether a read end will never see more data: the write
// end is closed and the buffer is currently empty.
func (p *Pipe) AtEOF() bool {
	p.buffer.mu.Lock()
	defer p.buffer.mu.Unlock()
	return p.buffer.writeClosed && p.buffer.ring.IsEmpty()
}

func (p *Pipe) Stat() diskfs.Stat {
	return diskfs.Stat{Mode: diskfs.StatModeFIFO, Nlink: 1}
}

// Stdin is fd 0, reading from an injected console source.
type Stdin struct {
	Source io.Reader
}

func (s *Stdin) Readable() bool { return true }
func (s *Stdin) Writable() bool { return false }

func (s *Stdin) Read(buf []byte) int {
	n, _ := s.Source.Read(buf)
	return n
}

func (s *Stdin) Write(buf []byte) int { panic("task: write to Stdin") }

func (s *Stdin) Stat() diskfs.Stat {
	return diskfs.Stat{Mode: diskfs.StatModeChr, Nlink: 1}
}

// Stdout is fd 1 or 2, writing to an injected console sink.
type Stdout struct {
	Sink io.Writer
}

func (s *Stdout) Readable() bool { return false }
func (s *Stdout) Writable() bool { return true }

func (s *Stdout) Read(buf []byte) int { panic("task: read from Stdout") }

func (s *Stdout) Write(buf []byte) int {
	n, _ := s.Sink.Write(buf)
	return n
}

func (s *Stdout) Stat() diskfs.Stat {
	return diskfs.Stat{Mode: diskfs.StatModeChr, Nlink: 1}
}

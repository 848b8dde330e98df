// Copyright 2025 Google LLC
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

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger decouples log writes from the underlying sink (typically a
// rotating file) so a stalled disk never blocks the simulated kernel's
// scheduling loop. Messages queue onto a bounded channel; a single
// background goroutine drains them in order. A full buffer drops the
// message rather than blocking the caller.
type AsyncLogger struct {
	w       io.Writer
	ch      chan []byte
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
}

// NewAsyncLogger starts the drain goroutine and returns a ready-to-use
// AsyncLogger wrapping w. bufferSize is the number of queued messages
// allowed before new writes are dropped.
func NewAsyncLogger(w io.Writer, bufferSize int) *AsyncLogger {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	a := &AsyncLogger{
		w:    w,
		ch:   make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *AsyncLogger) drain() {
	defer close(a.done)
	for msg := range a.ch {
		a.w.Write(msg)
	}
}

// Write queues p for asynchronous delivery. It always reports len(p), nil
// unless the logger has been closed, even when the message is dropped for
// a full buffer, matching the fire-and-forget contract callers expect from
// a logging sink.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	a.closeMu.Lock()
	defer a.closeMu.Unlock()
	if a.closed {
		return 0, os.ErrClosed
	}

	buf := make([]byte, len(p))
	copy(buf, p)

	select {
	case a.ch <- buf:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close stops accepting new writes, waits for the drain goroutine to flush
// everything already queued, and closes the underlying writer if it
// implements io.Closer.
func (a *AsyncLogger) Close() error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.closeMu.Unlock()

	<-a.done
	if c, ok := a.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

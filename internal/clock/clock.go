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

// Package clock is this kernel's substitute for the original's mtime-backed
// timer.rs: a monotonic tick source counted from process start, which
// sys_get_time/sys_task_info convert to seconds+microseconds and
// internal/sched's timer loop drives sys_sleep's wakeups from. There is no
// surviving timer.rs in original_source/ (only syscall/process.rs's
// CLOCK_FREQ import hints at its shape), so the tick frequency below is the
// standard QEMU virt-board value the rest of the rCore-tutorial line uses.
//
// Source/RealClock/FakeClock/SimulatedClock are carried over from the
// teacher's own clock package almost verbatim: KernelClock is built on top
// of that same Now/After seam so tests can drive it with a SimulatedClock
// instead of sleeping on the wall clock.
package clock

import "time"

// Freq is ticks per second, matching QEMU's virt machine mtime frequency.
const Freq = 12500000

// Source is the seam every time-dependent component in this kernel reads
// through, instead of calling time.Now()/time.After() directly, so a
// SimulatedClock can drive deterministic tests of boot-relative timestamps.
type Source interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

var _ Source = RealClock{}
var _ Source = (*FakeClock)(nil)
var _ Source = (*SimulatedClock)(nil)

// KernelClock is a monotonic millisecond/tick source, one per running
// kernel instance (spec.md assumes a single hart, so one wall clock is
// enough). It converts a Source's elapsed-time-since-boot into the
// tick/millisecond/(sec,usec) units the syscall layer needs.
type KernelClock struct {
	src  Source
	boot time.Time
}

// New returns a KernelClock reading the real wall clock, with its epoch at
// the moment of the call.
func New() *KernelClock {
	return NewFromSource(RealClock{})
}

// NewFromSource returns a KernelClock reading src, with its epoch at the
// moment of the call. Tests pass a FakeClock or SimulatedClock here to
// control elapsed time deterministically.
func NewFromSource(src Source) *KernelClock {
	return &KernelClock{src: src, boot: src.Now()}
}

// Ticks returns elapsed ticks since boot at Freq ticks/second, the unit
// TcbStatistics' timestamps and SchedInfo.Update's dtime are counted in.
func (c *KernelClock) Ticks() uint64 {
	return uint64(c.src.Now().Sub(c.boot).Seconds() * Freq)
}

// Millis returns elapsed milliseconds since boot, the unit sys_sleep and
// internal/sched's timer queue schedule wakeups in.
func (c *KernelClock) Millis() uint64 {
	return uint64(c.src.Now().Sub(c.boot).Milliseconds())
}

// SecUsec returns elapsed time since boot split into seconds and the
// microsecond remainder the way sys_get_time's TimeVal reports them.
func (c *KernelClock) SecUsec() (sec, usec uint64) {
	us := uint64(c.src.Now().Sub(c.boot).Microseconds())
	return us / 1_000_000, us % 1_000_000
}

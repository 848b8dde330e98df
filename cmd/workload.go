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

package cmd

import (
	"fmt"
	"time"

	"github.com/medihbt/rcore-gokernel/internal/logger"
	"github.com/medihbt/rcore-gokernel/internal/mmap"
	"github.com/medihbt/rcore-gokernel/internal/syscall"
)

const (
	pathBufAddr    = 0x1000
	writeBufAddr   = 0x1020
	readBufAddr    = 0x1040
	scratchPageLen = 0x1000
)

// runDemoWorkload exercises a cross-section of the syscall families spec.md
// §6 names (mmap, file open/read/write/close, mutex, semaphore, the
// deadlock-trace toggle, sleep and exit) against one init task: there is no trap-vectoring front end in scope (spec.md
// §1 treats it as an external collaborator), so this stands in for a real
// user program's instruction stream, calling straight into the Dispatcher
// the way a trap handler would after decoding an ecall.
func runDemoWorkload(d *syscall.Dispatcher, ms *mmap.FlatMemorySet) error {
	pid := d.Sched.CurrentTaskID()
	if pid < 0 {
		return fmt.Errorf("workload: no current task to run as")
	}

	if ret := d.Mmap(pathBufAddr, scratchPageLen, mmap.PermRead|mmap.PermWrite); ret != 0 {
		return fmt.Errorf("workload: mmap scratch page: ret=%d", ret)
	}

	const greeting = "hello from the demo workload\n"
	ms.Poke(pathBufAddr, []byte("/greeting\x00"))
	ms.Poke(writeBufAddr, []byte(greeting))

	fd := d.Open(pathBufAddr, syscall.OpenCREATE|syscall.OpenRDWR)
	if fd < 0 {
		return fmt.Errorf("workload: open /greeting: ret=%d", fd)
	}
	if n := d.Write(int(fd), writeBufAddr, len(greeting)); n != int64(len(greeting)) {
		return fmt.Errorf("workload: write /greeting: ret=%d", n)
	}
	if ret := d.Close(int(fd)); ret != 0 {
		return fmt.Errorf("workload: close write fd: ret=%d", ret)
	}

	rfd := d.Open(pathBufAddr, syscall.OpenRDONLY)
	if rfd < 0 {
		return fmt.Errorf("workload: reopen /greeting: ret=%d", rfd)
	}
	n := d.Read(int(rfd), readBufAddr, len(greeting))
	if n != int64(len(greeting)) {
		return fmt.Errorf("workload: read /greeting: ret=%d", n)
	}
	if got := string(ms.TranslatedByteBuffer(readBufAddr, len(greeting))[0]); got != greeting {
		return fmt.Errorf("workload: read back %q, want %q", got, greeting)
	}
	if ret := d.Close(int(rfd)); ret != 0 {
		return fmt.Errorf("workload: close read fd: ret=%d", ret)
	}
	logger.Infof("workload: round-tripped %d bytes through /greeting", n)

	mutexID := d.MutexCreate(true)
	if mutexID < 0 {
		return fmt.Errorf("workload: mutex_create: ret=%d", mutexID)
	}
	if ret := d.MutexLock(int(mutexID)); ret != 0 {
		return fmt.Errorf("workload: mutex_lock: ret=%d", ret)
	}
	if ret := d.MutexUnlock(int(mutexID)); ret != 0 {
		return fmt.Errorf("workload: mutex_unlock: ret=%d", ret)
	}

	semID := d.SemaphoreCreate(1)
	if semID < 0 {
		return fmt.Errorf("workload: semaphore_create: ret=%d", semID)
	}
	d.SemaphoreDown(int(semID))
	if ret := d.SemaphoreUp(int(semID)); ret != 0 {
		return fmt.Errorf("workload: semaphore_up: ret=%d", ret)
	}

	if ret := d.EnableDeadlock(true); ret != 0 {
		return fmt.Errorf("workload: enable_deadlock(true): ret=%d", ret)
	}
	if ret := d.EnableDeadlock(false); ret != 0 {
		return fmt.Errorf("workload: enable_deadlock(false): ret=%d", ret)
	}

	if ret := d.Sleep(20); ret != 0 {
		return fmt.Errorf("workload: sleep: ret=%d", ret)
	}
	if err := waitUntilScheduled(d, pid); err != nil {
		return err
	}

	d.Exit(0)
	return nil
}

// waitUntilScheduled polls the scheduler until pid is current again, the
// role a real timer interrupt plus scheduler tick would play in waking a
// sleeper and resuming its instruction stream.
func waitUntilScheduled(d *syscall.Dispatcher, pid int) error {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d.Sched.CurrentTaskID() == pid {
			return nil
		}
		if d.Sched.CurrentTaskID() == -1 {
			d.Sched.PickNext()
		}
		time.Sleep(time.Millisecond)
	}
	return fmt.Errorf("workload: pid %d never rescheduled after sleep", pid)
}

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
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medihbt/rcore-gokernel/internal/blockdev"
	"github.com/medihbt/rcore-gokernel/internal/clock"
	"github.com/medihbt/rcore-gokernel/internal/config"
	"github.com/medihbt/rcore-gokernel/internal/diskfs"
	"github.com/medihbt/rcore-gokernel/internal/logger"
	"github.com/medihbt/rcore-gokernel/internal/metrics"
	"github.com/medihbt/rcore-gokernel/internal/mmap"
	"github.com/medihbt/rcore-gokernel/internal/sched"
	"github.com/medihbt/rcore-gokernel/internal/syscall"
	"github.com/medihbt/rcore-gokernel/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// userAddrSpaceSize is the span of the flat simulated address space every
// demo task boots into. 4 MiB is plenty for the scripted workload's scratch
// page and leaves headroom for Sbrk growth.
const userAddrSpaceSize = 4 << 20

func openDevice(diskPath string, totalBlocks uint32) (blockdev.Device, error) {
	if diskPath == "" {
		return blockdev.NewMemory(totalBlocks), nil
	}
	return blockdev.OpenFile(diskPath)
}

func newRecorder(kind string) (metrics.Recorder, error) {
	switch kind {
	case "", "noop":
		return metrics.NewNoop(), nil
	case "prometheus":
		return metrics.NewPrometheus(prometheus.NewRegistry()), nil
	case "otel":
		return nil, fmt.Errorf("metrics backend %q needs a caller-supplied otel meter; pass a prebuilt Recorder instead", kind)
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", kind)
	}
}

// bootID returns a process-unique device id stamped into every Stat this
// boot's filesystem surfaces, derived from a fresh random UUID the way the
// original kernel's dev_id is a compile-time constant this simulation
// instead mints once per run.
func bootID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

// Run formats or opens a disk image, boots a single init task against it,
// and drives the scheduler and a scripted demo workload to completion.
func Run(cfg config.Config, diskPath string, diskBlocks uint32, metricsKind string) error {
	logger.Init(cfg.Logging)

	dev, err := openDevice(diskPath, diskBlocks)
	if err != nil {
		return fmt.Errorf("opening disk device: %w", err)
	}
	if closer, ok := dev.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var fs *diskfs.FileSystem
	var root *diskfs.Inode
	if diskPath == "" {
		fs, root = diskfs.Create(dev, diskBlocks, 4, cfg.Cache.BlockCacheCapacity)
	} else {
		fs, root = diskfs.Open(dev, cfg.Cache.BlockCacheCapacity)
	}
	defer fs.SyncAll()

	recorder, err := newRecorder(metricsKind)
	if err != nil {
		return err
	}

	devID := bootID()
	logger.Infof("boot: device id %#x", devID)

	clk := clock.New()
	task.SetClock(clk.Ticks)

	sc := sched.New(cfg.Sync.DeadlockDetectDefault, recorder)

	ms := mmap.NewFlatMemorySet(userAddrSpaceSize)
	stdin := &task.Stdin{Source: bytes.NewReader(nil)}
	stdout := &task.Stdout{Sink: logWriter{}}
	initTask := task.New(1, ms, stdin, stdout, 0x10000)
	initTask.Access(func(inner *task.Inner) { inner.SchedInfo = task.NewSchedInfoWithPriority(int(cfg.Scheduling.DefaultPriority)) })
	sc.AddTask(initTask)
	sc.PickNext()

	d := syscall.New(sc, root, devID, clk, initTask, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sc.RunTimerLoop(gctx, clk.Millis, 5*time.Millisecond, 8)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return runDemoWorkload(d, ms)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("boot sequence: %w", err)
	}
	logger.Infof("boot: workload complete, scheduler idle=%v", sc.CurrentTaskID() == -1)
	return nil
}

// logWriter adapts init's stdout onto the kernel's own log stream, since
// there is no real console device wired into this simulation.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	logger.Infof("console: %s", p)
	return len(p), nil
}

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

// Package config holds every tunable of the simulated kernel: scheduling
// weights, resource-matrix bounds, cache sizes and the deadlock-detect
// default. It is decoded from flags/env/file by spf13/viper in cmd, the
// same split the rest of this tree uses between a plain config struct and
// its cobra/viper wiring.
package config

// Config is the full set of boot-time tunables for one kernel instance.
type Config struct {
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Resources  ResourceConfig   `mapstructure:"resources"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SchedulingConfig carries the stride-scheduler constants from spec.md §3.
type SchedulingConfig struct {
	// BigStride is the numerator used to compute a task's pass from its
	// priority: pass = BigStride / priority.
	BigStride uint64 `mapstructure:"big-stride"`
	// DefaultPriority is assigned to a task that never calls set_priority.
	DefaultPriority uint64 `mapstructure:"default-priority"`
	// MinPriority is the lowest priority value accepted by set_priority;
	// spec.md requires priority >= 2.
	MinPriority uint64 `mapstructure:"min-priority"`
}

// ResourceConfig bounds the banker's matrices (spec.md §3, C10).
type ResourceConfig struct {
	MaxThreads   int `mapstructure:"max-threads"`
	MaxResources int `mapstructure:"max-resources"`
}

// CacheConfig bounds the block cache (C1).
type CacheConfig struct {
	BlockCacheCapacity int `mapstructure:"block-cache-capacity"`
}

// SyncConfig carries defaults for synchronization primitives and mailboxes.
type SyncConfig struct {
	MailboxCapacity       int  `mapstructure:"mailbox-capacity"`
	DeadlockDetectDefault bool `mapstructure:"deadlock-detect-default"`
	// SemaphoreAccessWarnThreshold mirrors the original access_cnt health
	// threshold. Nothing reads it: syncprim.Semaphore compares against its
	// own fixed threshold of 10000, and sys_semaphore_down returns -0xDEAD
	// once a Down reports that threshold reached.
	SemaphoreAccessWarnThreshold int64 `mapstructure:"semaphore-access-warn-threshold"`
}

// LoggingConfig mirrors the teacher's LoggingConfig shape (internal/logger).
type LoggingConfig struct {
	Severity  string          `mapstructure:"severity"`
	Format    string          `mapstructure:"format"`
	LogRotate LogRotateConfig `mapstructure:"log-rotate"`
}

// LogRotateConfig configures the lumberjack-backed rotating file writer.
type LogRotateConfig struct {
	Path            string `mapstructure:"path"`
	MaxFileSizeMB   int    `mapstructure:"max-file-size-mb"`
	BackupFileCount int    `mapstructure:"backup-file-count"`
	Compress        bool   `mapstructure:"compress"`
}

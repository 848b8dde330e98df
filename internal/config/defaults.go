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

package config

// Default values matching the original kernel's compile-time constants.
const (
	DefaultBigStride       uint64 = 65537
	DefaultPriority        uint64 = 16
	DefaultMinPriority     uint64 = 2
	DefaultMaxThreads      int    = 16
	DefaultMaxResources    int    = 8
	DefaultBlockCacheCap   int    = 16
	DefaultMailboxCapacity int    = 511 // 512-byte ring, 1 byte sacrificed to disambiguate full/empty
)

// Default returns the configuration used during application startup, before
// any flag/env/file value has been parsed.
func Default() Config {
	return Config{
		Scheduling: SchedulingConfig{
			BigStride:       DefaultBigStride,
			DefaultPriority: DefaultPriority,
			MinPriority:     DefaultMinPriority,
		},
		Resources: ResourceConfig{
			MaxThreads:   DefaultMaxThreads,
			MaxResources: DefaultMaxResources,
		},
		Cache: CacheConfig{
			BlockCacheCapacity: DefaultBlockCacheCap,
		},
		Sync: SyncConfig{
			MailboxCapacity:              DefaultMailboxCapacity,
			DeadlockDetectDefault:        false,
			SemaphoreAccessWarnThreshold: 10000,
		},
		Logging: LoggingConfig{
			Severity: "INFO",
			Format:   "text",
			LogRotate: LogRotateConfig{
				MaxFileSizeMB:   512,
				BackupFileCount: 10,
				Compress:        true,
			},
		},
	}
}

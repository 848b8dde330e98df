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

import (
	"errors"
	"fmt"
)

// Validate collects every configuration error instead of failing on the
// first one, the way the teacher's cfg.validate does for its flag set.
func (c *Config) Validate() error {
	var errs []error

	if c.Scheduling.BigStride == 0 {
		errs = append(errs, fmt.Errorf("scheduling.big-stride must be positive"))
	}
	if c.Scheduling.DefaultPriority < c.Scheduling.MinPriority {
		errs = append(errs, fmt.Errorf("scheduling.default-priority (%d) must be >= scheduling.min-priority (%d)",
			c.Scheduling.DefaultPriority, c.Scheduling.MinPriority))
	}
	if c.Scheduling.MinPriority < 2 {
		errs = append(errs, fmt.Errorf("scheduling.min-priority must be >= 2"))
	}

	if c.Resources.MaxThreads <= 0 || c.Resources.MaxThreads > DefaultMaxThreads {
		errs = append(errs, fmt.Errorf("resources.max-threads must be in (0, %d]", DefaultMaxThreads))
	}
	if c.Resources.MaxResources <= 0 || c.Resources.MaxResources > DefaultMaxResources {
		errs = append(errs, fmt.Errorf("resources.max-resources must be in (0, %d]", DefaultMaxResources))
	}

	if c.Cache.BlockCacheCapacity <= 0 {
		errs = append(errs, fmt.Errorf("cache.block-cache-capacity must be positive"))
	}

	if c.Sync.MailboxCapacity <= 0 || c.Sync.MailboxCapacity >= 512 {
		errs = append(errs, fmt.Errorf("sync.mailbox-capacity must be in (0, 512)"))
	}

	switch c.Logging.Severity {
	case "TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF":
	default:
		errs = append(errs, fmt.Errorf("logging.severity %q is not a recognized level", c.Logging.Severity))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be \"text\" or \"json\"", c.Logging.Format))
	}

	return errors.Join(errs...)
}

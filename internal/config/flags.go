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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlags registers every Config field as a persistent flag on flagSet
// and binds it to the matching viper key, the same flagSet.<Type>P +
// viper.BindPFlag pairing the teacher's cfg.BindFlags uses for every field
// of its own Config. Viper keys match the mapstructure tags in config.go
// so viper.Unmarshal(&Config{}) decodes env/file/flag values without a
// custom decoder hook.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.Uint64P("big-stride", "", DefaultBigStride, "Numerator of pass = big-stride / priority.")
	if err = viper.BindPFlag("scheduling.big-stride", flagSet.Lookup("big-stride")); err != nil {
		return err
	}

	flagSet.Uint64P("default-priority", "", DefaultPriority, "Priority assigned to a task that never calls set_priority.")
	if err = viper.BindPFlag("scheduling.default-priority", flagSet.Lookup("default-priority")); err != nil {
		return err
	}

	flagSet.Uint64P("min-priority", "", DefaultMinPriority, "Lowest priority value set_priority accepts.")
	if err = viper.BindPFlag("scheduling.min-priority", flagSet.Lookup("min-priority")); err != nil {
		return err
	}

	flagSet.IntP("max-threads", "", DefaultMaxThreads, "Row bound of the banker's Allocated/Need/Available matrices.")
	if err = viper.BindPFlag("resources.max-threads", flagSet.Lookup("max-threads")); err != nil {
		return err
	}

	flagSet.IntP("max-resources", "", DefaultMaxResources, "Column bound of the banker's Allocated/Need/Available matrices.")
	if err = viper.BindPFlag("resources.max-resources", flagSet.Lookup("max-resources")); err != nil {
		return err
	}

	flagSet.IntP("block-cache-capacity", "", DefaultBlockCacheCap, "Number of disk blocks the filesystem's LRU cache keeps resident.")
	if err = viper.BindPFlag("cache.block-cache-capacity", flagSet.Lookup("block-cache-capacity")); err != nil {
		return err
	}

	flagSet.IntP("mailbox-capacity", "", DefaultMailboxCapacity, "Usable byte capacity of a process mailbox's ring buffer.")
	if err = viper.BindPFlag("sync.mailbox-capacity", flagSet.Lookup("mailbox-capacity")); err != nil {
		return err
	}

	flagSet.BoolP("deadlock-detect-default", "", false, "Enable the banker's deadlock probe on every new task by default.")
	if err = viper.BindPFlag("sync.deadlock-detect-default", flagSet.Lookup("deadlock-detect-default")); err != nil {
		return err
	}

	flagSet.Int64P("semaphore-access-warn-threshold", "", 10000, "Recorded in the config only; the semaphore health check uses a fixed 10000 Down() calls.")
	if err = viper.BindPFlag("sync.semaphore-access-warn-threshold", flagSet.Lookup("semaphore-access-warn-threshold")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", "INFO", "Minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Log line format: text or json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-path", "", "", "File to rotate logs into via lumberjack; empty logs to stderr.")
	if err = viper.BindPFlag("logging.log-rotate.path", flagSet.Lookup("log-path")); err != nil {
		return err
	}

	flagSet.IntP("log-max-size-mb", "", 512, "Rotate the log file once it reaches this size.")
	if err = viper.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-max-size-mb")); err != nil {
		return err
	}

	flagSet.IntP("log-backup-count", "", 10, "Rotated log files kept before the oldest is deleted.")
	if err = viper.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-backup-count")); err != nil {
		return err
	}

	flagSet.BoolP("log-compress", "", true, "Gzip rotated log files.")
	if err = viper.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-compress")); err != nil {
		return err
	}

	return nil
}

// Decode unmarshals viper's current state (flags, env, config file, in that
// precedence) into a fresh Config seeded with Default() so any key neither
// bound above nor present in a config file keeps its compiled-in default.
func Decode() (Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

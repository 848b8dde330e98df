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

// Package cmd wires internal/config's flags into a cobra root command and
// drives one boot of the simulated kernel, the same split the teacher's
// cmd package keeps between flag binding (root.go's init, mirroring
// cfg.BindFlags) and the actual run (boot.go, mirroring mountWithArgs).
package cmd

import (
	"fmt"
	"os"

	"github.com/medihbt/rcore-gokernel/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error

	// Cfg is the fully decoded configuration for this run, populated by
	// initConfig before rootCmd's RunE executes.
	Cfg config.Config

	diskPath    string
	diskBlocks  uint32
	metricsKind string
)

var rootCmd = &cobra.Command{
	Use:   "rcore-gokernel",
	Short: "Boot a simulated RISC-V teaching kernel against a disk image",
	Long: `rcore-gokernel simulates the process/thread, synchronization,
filesystem and memory-access core of a small teaching OS: it formats or
opens a disk image, spawns an init task, and drives the stride scheduler
and a scripted demo workload through the syscall dispatcher until the
task tree goes idle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if err := Cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return Run(Cfg, diskPath, diskBlocks, metricsKind)
	},
}

// Execute runs the root command, exiting the process with status 1 on
// failure, the same top-level shape as the teacher's cmd.Execute.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file overriding flag defaults.")
	rootCmd.PersistentFlags().StringVar(&diskPath, "disk-path", "", "Path to a disk image file; empty uses an in-memory disk.")
	rootCmd.PersistentFlags().Uint32Var(&diskBlocks, "disk-blocks", 8192, "Total blocks to format when creating a fresh disk image.")
	rootCmd.PersistentFlags().StringVar(&metricsKind, "metrics", "noop", "Metrics backend: noop, prometheus, or otel.")

	bindErr = config.BindFlags(rootCmd.PersistentFlags())
}

// mergeYAMLConfigFile decodes path with yaml.v3 into a generic key tree and
// merges it into viper, rather than letting viper's own config-file reader
// parse the bytes. Decoding through yaml.v3 directly surfaces yaml.v3's own
// parse error on a malformed file instead of viper's wrapped
// ConfigParseError, and keeps the YAML-parsing dependency an explicit,
// visible import rather than one viper pulls in transitively.
func mergeYAMLConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	return viper.MergeConfigMap(tree)
}

func initConfig() {
	if cfgFile != "" {
		if err := mergeYAMLConfigFile(cfgFile); err != nil {
			configFileErr = fmt.Errorf("reading config file: %w", err)
			return
		}
	}
	cfg, err := config.Decode()
	if err != nil {
		configFileErr = fmt.Errorf("decoding configuration: %w", err)
		return
	}
	Cfg = cfg
}

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
	"testing"

	"github.com/medihbt/rcore-gokernel/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRun_BootsInMemoryDiskAndCompletesWorkload(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, Run(cfg, "", 8192, "noop"))
}

func TestRun_RejectsUnknownMetricsBackend(t *testing.T) {
	cfg := config.Default()
	require.Error(t, Run(cfg, "", 8192, "bogus"))
}

func TestRun_PrometheusBackendRegistersCounters(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, Run(cfg, "", 8192, "prometheus"))
}

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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	c := Default()
	c.Scheduling.BigStride = 0
	c.Resources.MaxThreads = 0
	c.Sync.MailboxCapacity = 512

	err := c.Validate()
	assert.Error(t, err)
	assert.ErrorContains(t, err, "big-stride")
	assert.ErrorContains(t, err, "max-threads")
	assert.ErrorContains(t, err, "mailbox-capacity")
}

func TestValidate_PriorityBelowMinimum(t *testing.T) {
	c := Default()
	c.Scheduling.MinPriority = 2
	c.Scheduling.DefaultPriority = 1

	err := c.Validate()
	assert.ErrorContains(t, err, "default-priority")
}

func TestValidate_UnknownSeverity(t *testing.T) {
	c := Default()
	c.Logging.Severity = "VERY_LOUD"

	assert.ErrorContains(t, c.Validate(), "severity")
}

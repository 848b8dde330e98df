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

// Package metrics exposes the handful of counters a running kernel
// simulation wants to observe: scheduler activity, banker vetoes, block
// cache hit/miss, and mailbox drops. Two independent backends (Prometheus
// and OpenTelemetry) implement the same Recorder interface, following the
// teacher's side-by-side OC/OTel recorder split in common/.
package metrics

// Recorder is the subsystem-facing metrics sink. Every method is safe to
// call from any goroutine.
type Recorder interface {
	// SchedulerTick records one scheduling decision for the named task.
	SchedulerTick(taskLabel string)
	// BankerVeto records a -0xDEAD refusal for the named resource.
	BankerVeto(resourceLabel string)
	// BlockCacheAccess records a cache lookup outcome.
	BlockCacheAccess(hit bool)
	// MailboxDrop records a push_bytes call that had to truncate.
	MailboxDrop(mailboxLabel string)
}

// NewNoop returns a Recorder that discards everything, used by default in
// tests and anywhere metrics wiring would otherwise be optional ceremony.
func NewNoop() Recorder { return noopRecorder{} }

type noopRecorder struct{}

func (noopRecorder) SchedulerTick(string)  {}
func (noopRecorder) BankerVeto(string)     {}
func (noopRecorder) BlockCacheAccess(bool) {}
func (noopRecorder) MailboxDrop(string)    {}

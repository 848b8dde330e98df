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

package mailbox

// Mailbox is a single task's inbox: a ring buffer other tasks write
// messages into.
type Mailbox struct {
	Ring *RingBuffer
}

// New returns an empty mailbox.
func New() *Mailbox {
	return &Mailbox{Ring: NewRingBuffer()}
}

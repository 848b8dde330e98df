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

package banker

import "golang.org/x/time/rate"

// VetoRateLimiter bounds how often a repeated unsafe request gets logged. A
// thread spinning on sem_down against a banker veto would otherwise flood
// the log with one identical warning per retry; this throttles that down to
// a steady trickle without silencing it outright. A nil *VetoRateLimiter
// always allows, the same as an unconfigured limiter.
type VetoRateLimiter struct {
	lim *rate.Limiter
}

// NewVetoRateLimiter returns a limiter permitting r events/sec with bursts
// up to burst.
func NewVetoRateLimiter(r rate.Limit, burst int) *VetoRateLimiter {
	return &VetoRateLimiter{lim: rate.NewLimiter(r, burst)}
}

// Allow reports whether the caller should log this veto now.
func (v *VetoRateLimiter) Allow() bool {
	if v == nil {
		return true
	}
	return v.lim.Allow()
}

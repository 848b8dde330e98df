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

package metrics

import "github.com/prometheus/client_golang/prometheus"

type prometheusRecorder struct {
	schedulerTicks *prometheus.CounterVec
	bankerVetoes   *prometheus.CounterVec
	blockCacheHits prometheus.Counter
	blockCacheMiss prometheus.Counter
	mailboxDrops   *prometheus.CounterVec
}

// NewPrometheus registers the kernel's counters against reg and returns a
// Recorder backed by them. Pass prometheus.DefaultRegisterer to expose them
// on the process-wide /metrics endpoint.
func NewPrometheus(reg prometheus.Registerer) Recorder {
	r := &prometheusRecorder{
		schedulerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rcore",
			Subsystem: "sched",
			Name:      "ticks_total",
			Help:      "Number of times a task was picked by the stride scheduler.",
		}, []string{"task"}),
		bankerVetoes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rcore",
			Subsystem: "banker",
			Name:      "vetoes_total",
			Help:      "Number of -0xDEAD refusals issued by the banker.",
		}, []string{"resource"}),
		blockCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rcore",
			Subsystem: "blockcache",
			Name:      "hits_total",
			Help:      "Block cache lookups satisfied without a device read.",
		}),
		blockCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rcore",
			Subsystem: "blockcache",
			Name:      "misses_total",
			Help:      "Block cache lookups that required a device read.",
		}),
		mailboxDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rcore",
			Subsystem: "mailbox",
			Name:      "drops_total",
			Help:      "push_bytes calls truncated because the ring was full.",
		}, []string{"mailbox"}),
	}
	reg.MustRegister(r.schedulerTicks, r.bankerVetoes, r.blockCacheHits, r.blockCacheMiss, r.mailboxDrops)
	return r
}

func (r *prometheusRecorder) SchedulerTick(taskLabel string) {
	r.schedulerTicks.WithLabelValues(taskLabel).Inc()
}

func (r *prometheusRecorder) BankerVeto(resourceLabel string) {
	r.bankerVetoes.WithLabelValues(resourceLabel).Inc()
}

func (r *prometheusRecorder) BlockCacheAccess(hit bool) {
	if hit {
		r.blockCacheHits.Inc()
	} else {
		r.blockCacheMiss.Inc()
	}
}

func (r *prometheusRecorder) MailboxDrop(mailboxLabel string) {
	r.mailboxDrops.WithLabelValues(mailboxLabel).Inc()
}

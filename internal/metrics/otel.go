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

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type otelRecorder struct {
	ctx            context.Context
	schedulerTicks metric.Int64Counter
	bankerVetoes   metric.Int64Counter
	blockCacheHits metric.Int64Counter
	blockCacheMiss metric.Int64Counter
	mailboxDrops   metric.Int64Counter
}

// NewOTel builds a Recorder on top of an OpenTelemetry meter, the
// alternative backend the teacher keeps alive next to its Prometheus path
// in common/otel_metrics.go.
func NewOTel(meter metric.Meter) (Recorder, error) {
	schedulerTicks, err := meter.Int64Counter("rcore.sched.ticks",
		metric.WithDescription("Number of times a task was picked by the stride scheduler."))
	if err != nil {
		return nil, err
	}
	bankerVetoes, err := meter.Int64Counter("rcore.banker.vetoes",
		metric.WithDescription("Number of -0xDEAD refusals issued by the banker."))
	if err != nil {
		return nil, err
	}
	blockCacheHits, err := meter.Int64Counter("rcore.blockcache.hits")
	if err != nil {
		return nil, err
	}
	blockCacheMiss, err := meter.Int64Counter("rcore.blockcache.misses")
	if err != nil {
		return nil, err
	}
	mailboxDrops, err := meter.Int64Counter("rcore.mailbox.drops")
	if err != nil {
		return nil, err
	}
	return &otelRecorder{
		ctx:            context.Background(),
		schedulerTicks: schedulerTicks,
		bankerVetoes:   bankerVetoes,
		blockCacheHits: blockCacheHits,
		blockCacheMiss: blockCacheMiss,
		mailboxDrops:   mailboxDrops,
	}, nil
}

func (r *otelRecorder) SchedulerTick(taskLabel string) {
	r.schedulerTicks.Add(r.ctx, 1, metric.WithAttributes(attribute.String("task", taskLabel)))
}

func (r *otelRecorder) BankerVeto(resourceLabel string) {
	r.bankerVetoes.Add(r.ctx, 1, metric.WithAttributes(attribute.String("resource", resourceLabel)))
}

func (r *otelRecorder) BlockCacheAccess(hit bool) {
	if hit {
		r.blockCacheHits.Add(r.ctx, 1)
	} else {
		r.blockCacheMiss.Add(r.ctx, 1)
	}
}

func (r *otelRecorder) MailboxDrop(mailboxLabel string) {
	r.mailboxDrops.Add(r.ctx, 1, metric.WithAttributes(attribute.String("mailbox", mailboxLabel)))
}

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

package sched

import "github.com/medihbt/rcore-gokernel/internal/task"

// readyQueue is a container/heap.Interface over ready tasks ordered by
// ascending Stride. The original builds its ready queue on a BinaryHeap
// with Stride's Ord reversed so the max-heap surfaces the minimum stride;
// container/heap is already a min-heap by Less, so no reversal is needed
// here, just a direct ascending comparison.
type readyQueue []*task.TaskControlBlock

func (q readyQueue) Len() int { return len(q) }

func (q readyQueue) Less(i, j int) bool {
	var si, sj int
	q[i].Access(func(inner *task.Inner) { si = inner.SchedInfo.Stride() })
	q[j].Access(func(inner *task.Inner) { sj = inner.SchedInfo.Stride() })
	return si < sj
}

func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) {
	*q = append(*q, x.(*task.TaskControlBlock))
}

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

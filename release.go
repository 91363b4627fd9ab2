/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmdlist

import (
	"slices"
	"sync"
)

type Destroyer interface {
	Destroy()
}

type DestroyFunc func()

func (f DestroyFunc) Destroy() {
	f()
}

type releaseBatch struct {
	value      uint64
	destroyers []Destroyer
}

/*
ReleaseQueue defers destruction of resources still referenced by submitted GPU work.
Batches are keyed by the completion value (timeline semaphore or fence serial) the work
signals, Collect destroys every batch at or below the value the device has reached.
Safe for concurrent use.
*/
type ReleaseQueue struct {
	mtx       sync.Mutex
	batches   []releaseBatch
	completed uint64
}

func NewReleaseQueue() *ReleaseQueue {
	return &ReleaseQueue{}
}

/*
Enqueue schedules destroyers for release once value is reached. If value was already
collected the destroyers run immediately.
*/
func (q *ReleaseQueue) Enqueue(value uint64, destroyers ...Destroyer) {
	if len(destroyers) == 0 {
		return
	}

	q.mtx.Lock()
	if value <= q.completed {
		q.mtx.Unlock()
		instance.logger.VPrintf("Release value %d already completed, destroying %d now", value, len(destroyers))
		for _, d := range destroyers {
			d.Destroy()
		}
		return
	}
	defer q.mtx.Unlock()

	i, found := slices.BinarySearchFunc(q.batches, value, func(b releaseBatch, v uint64) int {
		switch {
		case b.value < v:
			return -1
		case b.value > v:
			return 1
		}
		return 0
	})
	if found {
		q.batches[i].destroyers = append(q.batches[i].destroyers, destroyers...)
		return
	}
	q.batches = slices.Insert(q.batches, i, releaseBatch{value: value, destroyers: slices.Clone(destroyers)})
}

// Collect destroys everything enqueued at or below completed and returns how many ran.
func (q *ReleaseQueue) Collect(completed uint64) int {
	q.mtx.Lock()
	q.completed = max(q.completed, completed)
	n := 0
	for n < len(q.batches) && q.batches[n].value <= q.completed {
		n++
	}
	ready := slices.Clone(q.batches[:n])
	q.batches = slices.Delete(q.batches, 0, n)
	q.mtx.Unlock()

	count := 0
	for _, b := range ready {
		for _, d := range b.destroyers {
			d.Destroy()
			count++
		}
	}
	if count > 0 {
		instance.logger.VPrintf("Released %d resource(s) up to value %d", count, completed)
	}
	return count
}

// DestroyAll destroys every pending resource regardless of value, used on device teardown after an idle wait.
func (q *ReleaseQueue) DestroyAll() int {
	q.mtx.Lock()
	ready := q.batches
	q.batches = nil
	q.mtx.Unlock()

	count := 0
	for _, b := range ready {
		for _, d := range b.destroyers {
			d.Destroy()
			count++
		}
	}
	return count
}

// Len returns the number of resources waiting for release.
func (q *ReleaseQueue) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	n := 0
	for _, b := range q.batches {
		n += len(b.destroyers)
	}
	return n
}

func (q *ReleaseQueue) Completed() uint64 {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return q.completed
}

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

package cmdlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goarrg.com/rhi/cmdlist"
)

func TestReleaseQueueCollect(t *testing.T) {
	q := cmdlist.NewReleaseQueue()
	var released []string
	rel := func(name string) cmdlist.Destroyer {
		return cmdlist.DestroyFunc(func() { released = append(released, name) })
	}

	q.Enqueue(3, rel("c"))
	q.Enqueue(1, rel("a0"), rel("a1"))
	q.Enqueue(2, rel("b"))
	q.Enqueue(1, rel("a2"))
	q.Enqueue(5)
	assert.Equal(t, 5, q.Len())

	assert.Zero(t, q.Collect(0))
	assert.Equal(t, 4, q.Collect(2))
	assert.Equal(t, []string{"a0", "a1", "a2", "b"}, released)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, uint64(2), q.Completed())

	// already reached values release immediately
	q.Enqueue(2, rel("late"))
	assert.Equal(t, "late", released[len(released)-1])

	assert.Zero(t, q.Collect(1))
	assert.Equal(t, uint64(2), q.Completed())
	assert.Equal(t, 1, q.Collect(10))
	assert.Zero(t, q.Len())
}

func TestReleaseQueueDestroyAll(t *testing.T) {
	q := cmdlist.NewReleaseQueue()
	n := 0
	q.Enqueue(10, cmdlist.DestroyFunc(func() { n++ }))
	q.Enqueue(20, cmdlist.DestroyFunc(func() { n++ }))
	assert.Equal(t, 2, q.DestroyAll())
	assert.Equal(t, 2, n)
	assert.Zero(t, q.Len())
}

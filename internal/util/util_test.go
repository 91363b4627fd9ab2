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

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyRowsBulk(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 6)
	n := CopyRows(dst, 3, src, 3, 3, 2)
	assert.Equal(t, uint64(6), n)
	assert.Equal(t, src, dst)
}

func TestCopyRowsPitched(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 8)
	n := CopyRows(dst, 4, src, 3, 3, 2)
	assert.Equal(t, uint64(6), n)
	assert.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, dst)
}

func TestCopyRowsLastRowUnpadded(t *testing.T) {
	src := []byte{1, 2, 0, 0, 3, 4}
	dst := make([]byte, 4)
	CopyRows(dst, 2, src, 4, 2, 2)
	assert.Equal(t, []byte{1, 2, 3, 4}, dst)
}

func TestCopyRowsOverflow(t *testing.T) {
	assert.Panics(t, func() {
		CopyRows(make([]byte, 2), 2, make([]byte, 4), 2, 2, 2)
	})
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(12), AlignUp(12, 4))
	assert.Equal(t, uint64(16), AlignUp(13, 4))
	assert.Equal(t, uint64(7), AlignUp(7, 0))
	assert.Equal(t, uint64(7), AlignUp(7, 1))
}

func TestNoCopy(t *testing.T) {
	var n NoCopy
	n.Init()
	assert.NotPanics(t, n.Check)
	assert.False(t, n.InitLazy())
	n.Close()
	assert.Panics(t, n.Check)
}

func TestGrowZeroesReusedCapacity(t *testing.T) {
	s := []int{1, 2, 3}
	s = s[:0]
	s = Grow(s, 2)
	assert.Equal(t, []int{0, 0}, s)

	s[1] = 7
	s = Grow(s, 5)
	assert.Equal(t, []int{0, 7, 0, 0, 0}, s)

	assert.Len(t, Grow(s, 1), 5)
}

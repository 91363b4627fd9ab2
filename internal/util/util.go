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
	"goarrg.com"
	"goarrg.com/debug"
)

type platform struct{}

func (platform) Abort()                           { panic("Fatal Error") }
func (platform) AbortPopup(f string, args ...any) { panic("Fatal Error") }

var instance = struct {
	platform goarrg.PlatformInterface
	logger   *debug.Logger
}{
	platform: platform{},
	logger:   debug.NewLogger("cmdlist", "internal", "util"),
}

func abort(fmt string, args ...any) {
	instance.logger.EPrintf(fmt, args...)
	instance.platform.Abort()
}

func Init(platform goarrg.PlatformInterface) {
	instance.platform = platform
}

/*
CopyRows copies numRows rows of rowSize bytes from src, where rows are srcPitch bytes apart,
into dst where rows are dstPitch bytes apart. When both pitches equal rowSize the copy is a
single bulk copy. Returns the number of bytes written into dst.
*/
func CopyRows(dst []byte, dstPitch uint64, src []byte, srcPitch uint64, rowSize uint64, numRows uint64) uint64 {
	if numRows == 0 || rowSize == 0 {
		return 0
	}
	if rowSize > dstPitch || rowSize > srcPitch {
		abort("CopyRows row size [%d] is larger than pitch, dst: %d src: %d", rowSize, dstPitch, srcPitch)
	}
	srcNeed := (numRows-1)*srcPitch + rowSize
	dstNeed := (numRows-1)*dstPitch + rowSize
	if uint64(len(src)) < srcNeed {
		abort("CopyRows(%d rows) will overflow src of size %d", numRows, len(src))
	}
	if uint64(len(dst)) < dstNeed {
		abort("CopyRows(%d rows) will overflow dst of size %d", numRows, len(dst))
	}

	if dstPitch == rowSize && srcPitch == rowSize {
		return uint64(copy(dst[:dstNeed], src[:srcNeed]))
	}

	written := uint64(0)
	for row := uint64(0); row < numRows; row++ {
		written += uint64(copy(dst[row*dstPitch:row*dstPitch+rowSize], src[row*srcPitch:row*srcPitch+rowSize]))
	}
	return written
}

func AlignUp(v, alignment uint64) uint64 {
	if alignment <= 1 {
		return v
	}
	return ((v + alignment - 1) / alignment) * alignment
}

/*
Grow returns s extended to at least n elements, every element past the old length is zero
even when the backing array is reused.
*/
func Grow[S ~[]E, E any](s S, n int) S {
	l := len(s)
	if n <= l {
		return s
	}
	if n > cap(s) {
		s = append(s[:cap(s)], make([]E, n-cap(s))...)
	}
	s = s[:n]
	clear(s[l:])
	return s
}

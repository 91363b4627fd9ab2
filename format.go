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
	"goarrg.com/gmath"
)

type Format uint32

const (
	FormatUndefined Format = iota
	FormatR8Unorm
	FormatR8G8Unorm
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb
	FormatR16G16B16A16Float
	FormatR32Float
	FormatR32G32B32A32Float
	FormatBC1RGBAUnorm
	FormatBC3RGBAUnorm
	FormatBC7Unorm
	FormatD16Unorm
	FormatD32Float
	FormatD24UnormS8Uint
	FormatD32FloatS8Uint
	formatCount
)

type formatInfo struct {
	name        string
	blockSize   uint32
	blockExtent gmath.Extent3u32
	depth       bool
	stencil     bool
}

var formatInfos = [formatCount]formatInfo{
	FormatUndefined:         {name: "Undefined"},
	FormatR8Unorm:           {name: "R8Unorm", blockSize: 1, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatR8G8Unorm:         {name: "R8G8Unorm", blockSize: 2, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatR8G8B8A8Unorm:     {name: "R8G8B8A8Unorm", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatR8G8B8A8Srgb:      {name: "R8G8B8A8Srgb", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatB8G8R8A8Unorm:     {name: "B8G8R8A8Unorm", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatB8G8R8A8Srgb:      {name: "B8G8R8A8Srgb", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatR16G16B16A16Float: {name: "R16G16B16A16Float", blockSize: 8, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatR32Float:          {name: "R32Float", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatR32G32B32A32Float: {name: "R32G32B32A32Float", blockSize: 16, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}},
	FormatBC1RGBAUnorm:      {name: "BC1RGBAUnorm", blockSize: 8, blockExtent: gmath.Extent3u32{X: 4, Y: 4, Z: 1}},
	FormatBC3RGBAUnorm:      {name: "BC3RGBAUnorm", blockSize: 16, blockExtent: gmath.Extent3u32{X: 4, Y: 4, Z: 1}},
	FormatBC7Unorm:          {name: "BC7Unorm", blockSize: 16, blockExtent: gmath.Extent3u32{X: 4, Y: 4, Z: 1}},
	FormatD16Unorm:          {name: "D16Unorm", blockSize: 2, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}, depth: true},
	FormatD32Float:          {name: "D32Float", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}, depth: true},
	FormatD24UnormS8Uint:    {name: "D24UnormS8Uint", blockSize: 4, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}, depth: true, stencil: true},
	FormatD32FloatS8Uint:    {name: "D32FloatS8Uint", blockSize: 8, blockExtent: gmath.Extent3u32{X: 1, Y: 1, Z: 1}, depth: true, stencil: true},
}

func (f Format) info() formatInfo {
	if f >= formatCount {
		abort("Unknown format: %d", f)
	}
	return formatInfos[f]
}

func (f Format) Valid() bool {
	return f > FormatUndefined && f < formatCount
}

func (f Format) String() string {
	if f >= formatCount {
		return "Invalid"
	}
	return formatInfos[f].name
}

// BlockSize returns the size in bytes of one texel block, a single texel for uncompressed formats.
func (f Format) BlockSize() uint32 {
	return f.info().blockSize
}

func (f Format) BlockExtent() gmath.Extent3u32 {
	return f.info().blockExtent
}

func (f Format) Compressed() bool {
	e := f.info().blockExtent
	return e.X > 1 || e.Y > 1
}

func (f Format) HasDepth() bool {
	return f.info().depth
}

func (f Format) HasStencil() bool {
	return f.info().stencil
}

// RowPitch returns the tightly packed size in bytes of one row of blocks covering width texels.
func (f Format) RowPitch(width uint32) uint64 {
	i := f.info()
	if i.blockSize == 0 {
		abort("RowPitch of format %s", i.name)
	}
	return uint64(ceilDiv(width, i.blockExtent.X)) * uint64(i.blockSize)
}

// NumRows returns the number of block rows covering height texels.
func (f Format) NumRows(height uint32) uint64 {
	i := f.info()
	if i.blockSize == 0 {
		abort("NumRows of format %s", i.name)
	}
	return uint64(ceilDiv(height, i.blockExtent.Y))
}

func (f Format) ImageSize(width, height uint32) uint64 {
	return f.RowPitch(width) * f.NumRows(height)
}

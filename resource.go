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
	"strings"

	"goarrg.com/gmath"
)

// Handle is an opaque native object handle, 0 is the null handle.
type Handle uint64

const NullHandle Handle = 0

func (h Handle) String() string {
	return toHex(h)
}

type BufferUsageFlags uint32

const (
	BufferUsageVertexBuffer BufferUsageFlags = 1 << iota
	BufferUsageIndexBuffer
	BufferUsageUniformBuffer
	BufferUsageStorageBuffer
	BufferUsageTransferDst
	BufferUsageDynamic
)

func (u BufferUsageFlags) HasBits(want BufferUsageFlags) bool {
	return hasBits(u, want)
}

func (u BufferUsageFlags) String() string {
	str := ""
	if u.HasBits(BufferUsageVertexBuffer) {
		str += "VertexBuffer|"
	}
	if u.HasBits(BufferUsageIndexBuffer) {
		str += "IndexBuffer|"
	}
	if u.HasBits(BufferUsageUniformBuffer) {
		str += "UniformBuffer|"
	}
	if u.HasBits(BufferUsageStorageBuffer) {
		str += "StorageBuffer|"
	}
	if u.HasBits(BufferUsageTransferDst) {
		str += "TransferDst|"
	}
	if u.HasBits(BufferUsageDynamic) {
		str += "Dynamic|"
	}
	return strings.TrimSuffix(str, "|")
}

type IndexFormat uint32

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

func (f IndexFormat) String() string {
	switch f {
	case IndexFormatUint16:
		return "Uint16"
	case IndexFormatUint32:
		return "Uint32"
	}
	return "Invalid"
}

func (f IndexFormat) Size() uint32 {
	switch f {
	case IndexFormatUint16:
		return 2
	case IndexFormatUint32:
		return 4
	}
	abort("Unknown index format: %d", f)
	return 0
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type ClearColor struct {
	R, G, B, A float32
}

type ResourceLayoutElement struct {
	Name   string
	Kind   ResourceKind
	Stages ShaderStage
	Slot   uint32
}

type ResourceLayout struct {
	Elements []ResourceLayoutElement
}

/*
Resource interfaces are implemented by each backend's concrete types, passing a resource
created for one backend to a command list of the other fails with ErrorInvalidArgument.
*/
type Pipeline interface {
	// VertexStrides returns one stride per vertex buffer slot the pipeline consumes.
	VertexStrides() []uint32
}

type Buffer interface {
	Size() uint64
	Usage() BufferUsageFlags
}

type ResourceSet interface {
	Layout() ResourceLayout
	Len() int
}

type Framebuffer interface {
	Extent() gmath.Extent3i32
	NumColorTargets() int
	HasDepthTarget() bool
	// Swapchain reports whether the color targets are swapchain images.
	Swapchain() bool
}

type Texture interface {
	Format() Format
	Extent() gmath.Extent3i32
	MipLevels() uint32
	ArrayLayers() uint32
	Cube() bool
}

// Artifact is the compiled or finalized output of a command list ready for submission.
type Artifact interface {
	Handle() Handle
}

// ValidateTexture checks the description a backend texture is created from.
func ValidateTexture(op string, format Format, extent gmath.Extent3i32) error {
	if !format.Valid() {
		return ErrorInvalidEnumValue{Type: "Format", Value: int64(format)}
	}
	if extent.X <= 0 || extent.Y <= 0 {
		return ErrorInvalidArgument{Op: op, Reason: "extent must be positive"}
	}
	return nil
}

/*
ValidateTextureRegion checks that a region of a texture is addressable and that data holds
at least the tightly packed size of the region.
*/
func ValidateTextureRegion(op string, t Texture, data []byte, x, y, width, height, mipLevel, arrayLayer uint32) error {
	if !t.Format().Valid() {
		return ErrorInvalidEnumValue{Type: "Format", Value: int64(t.Format())}
	}
	if mipLevel >= t.MipLevels() {
		return ErrorInvalidArgument{Op: op, Reason: "mip level out of range"}
	}
	if arrayLayer >= t.ArrayLayers() {
		return ErrorInvalidArgument{Op: op, Reason: "array layer out of range"}
	}
	e := t.Extent()
	mipW := max(uint32(e.X)>>mipLevel, 1)
	mipH := max(uint32(e.Y)>>mipLevel, 1)
	if uint64(x)+uint64(width) > uint64(mipW) || uint64(y)+uint64(height) > uint64(mipH) {
		return ErrorInvalidArgument{Op: op, Reason: "region exceeds mip extent"}
	}
	if need := t.Format().ImageSize(width, height); uint64(len(data)) < need {
		return ErrorInvalidArgument{Op: op, Reason: "source data smaller than region"}
	}
	return nil
}

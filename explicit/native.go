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

package explicit

import (
	"fmt"
	"strings"

	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
)

// Result mirrors native result codes, negative values are errors.
type Result int32

const (
	ResultSuccess                   Result = 0
	ResultNotReady                  Result = 1
	ResultTimeout                   Result = 2
	ResultErrorOutOfHostMemory      Result = -1
	ResultErrorOutOfDeviceMemory    Result = -2
	ResultErrorInitializationFailed Result = -3
	ResultErrorDeviceLost           Result = -4
	ResultErrorMemoryMapFailed      Result = -5
)

func (r Result) Failed() bool {
	return r < 0
}

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultNotReady:
		return "NotReady"
	case ResultTimeout:
		return "Timeout"
	case ResultErrorOutOfHostMemory:
		return "ErrorOutOfHostMemory"
	case ResultErrorOutOfDeviceMemory:
		return "ErrorOutOfDeviceMemory"
	case ResultErrorInitializationFailed:
		return "ErrorInitializationFailed"
	case ResultErrorDeviceLost:
		return "ErrorDeviceLost"
	case ResultErrorMemoryMapFailed:
		return "ErrorMemoryMapFailed"
	}
	return fmt.Sprintf("Result(%d)", int32(r))
}

func nativeError(call string, r Result) error {
	return cmdlist.ErrorNativeCall{Call: call, Code: int64(r), Result: r.String()}
}

type PipelineStage uint32

const (
	PipelineStageNone                  PipelineStage = 0
	PipelineStageTopOfPipe             PipelineStage = 0x00000001
	PipelineStageVertexInput           PipelineStage = 0x00000004
	PipelineStageVertexShader          PipelineStage = 0x00000008
	PipelineStageFragmentShader        PipelineStage = 0x00000080
	PipelineStageEarlyFragmentTests    PipelineStage = 0x00000100
	PipelineStageLateFragmentTests     PipelineStage = 0x00000200
	PipelineStageColorAttachmentOutput PipelineStage = 0x00000400
	PipelineStageTransfer              PipelineStage = 0x00001000
	PipelineStageBottomOfPipe          PipelineStage = 0x00002000
	PipelineStageHost                  PipelineStage = 0x00004000
	PipelineStageAllCommands           PipelineStage = 0x00010000
)

func (s PipelineStage) HasBits(want PipelineStage) bool {
	return (s & want) == want
}

func (s PipelineStage) String() string {
	str := ""
	if s.HasBits(PipelineStageTopOfPipe) {
		str += "TopOfPipe|"
	}
	if s.HasBits(PipelineStageVertexInput) {
		str += "VertexInput|"
	}
	if s.HasBits(PipelineStageVertexShader) {
		str += "VertexShader|"
	}
	if s.HasBits(PipelineStageFragmentShader) {
		str += "FragmentShader|"
	}
	if s.HasBits(PipelineStageEarlyFragmentTests) {
		str += "EarlyFragmentTests|"
	}
	if s.HasBits(PipelineStageLateFragmentTests) {
		str += "LateFragmentTests|"
	}
	if s.HasBits(PipelineStageColorAttachmentOutput) {
		str += "ColorAttachmentOutput|"
	}
	if s.HasBits(PipelineStageTransfer) {
		str += "Transfer|"
	}
	if s.HasBits(PipelineStageBottomOfPipe) {
		str += "BottomOfPipe|"
	}
	if s.HasBits(PipelineStageHost) {
		str += "Host|"
	}
	if s.HasBits(PipelineStageAllCommands) {
		str += "AllCommands|"
	}
	if str == "" {
		return "None"
	}
	return strings.TrimSuffix(str, "|")
}

type AccessFlags uint32

const (
	AccessNone                        AccessFlags = 0
	AccessShaderRead                  AccessFlags = 0x00000020
	AccessColorAttachmentWrite        AccessFlags = 0x00000100
	AccessDepthStencilAttachmentRead  AccessFlags = 0x00000200
	AccessDepthStencilAttachmentWrite AccessFlags = 0x00000400
	AccessTransferRead                AccessFlags = 0x00000800
	AccessTransferWrite               AccessFlags = 0x00001000
	AccessHostWrite                   AccessFlags = 0x00004000
	AccessMemoryRead                  AccessFlags = 0x00008000
	AccessMemoryWrite                 AccessFlags = 0x00010000
)

type ImageAspectFlags uint32

const (
	ImageAspectColor   ImageAspectFlags = 0x1
	ImageAspectDepth   ImageAspectFlags = 0x2
	ImageAspectStencil ImageAspectFlags = 0x4
)

func (a ImageAspectFlags) HasBits(want ImageAspectFlags) bool {
	return (a & want) == want
}

func (a ImageAspectFlags) String() string {
	str := ""
	if a.HasBits(ImageAspectColor) {
		str += "Color|"
	}
	if a.HasBits(ImageAspectDepth) {
		str += "Depth|"
	}
	if a.HasBits(ImageAspectStencil) {
		str += "Stencil|"
	}
	return strings.TrimSuffix(str, "|")
}

func aspectOf(format cmdlist.Format) ImageAspectFlags {
	if !format.HasDepth() {
		return ImageAspectColor
	}
	if format.HasStencil() {
		return ImageAspectDepth | ImageAspectStencil
	}
	return ImageAspectDepth
}

type ImageTiling uint32

const (
	ImageTilingOptimal ImageTiling = iota
	ImageTilingLinear
)

type ImageUsageFlags uint32

const (
	ImageUsageTransferSrc            ImageUsageFlags = 0x01
	ImageUsageTransferDst            ImageUsageFlags = 0x02
	ImageUsageSampled                ImageUsageFlags = 0x04
	ImageUsageColorAttachment        ImageUsageFlags = 0x10
	ImageUsageDepthStencilAttachment ImageUsageFlags = 0x20
)

type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal  MemoryPropertyFlags = 0x1
	MemoryPropertyHostVisible  MemoryPropertyFlags = 0x2
	MemoryPropertyHostCoherent MemoryPropertyFlags = 0x4
)

type ImageCreateInfo struct {
	Format        cmdlist.Format
	Extent        gmath.Extent3i32
	MipLevels     uint32
	ArrayLayers   uint32
	Tiling        ImageTiling
	Usage         ImageUsageFlags
	InitialLayout ImageLayout
	Cube          bool
}

type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

type SubresourceLayout struct {
	Offset     uint64
	Size       uint64
	RowPitch   uint64
	ArrayPitch uint64
	DepthPitch uint64
}

// MemoryBlock is a sub allocation of a device memory object.
type MemoryBlock struct {
	Memory cmdlist.Handle
	Offset uint64
	Size   uint64
}

type Device interface {
	CreateImage(info ImageCreateInfo) (cmdlist.Handle, Result)
	DestroyImage(image cmdlist.Handle)
	ImageMemoryRequirements(image cmdlist.Handle) MemoryRequirements
	BindImageMemory(image cmdlist.Handle, memory cmdlist.Handle, offset uint64) Result
	ImageSubresourceLayout(image cmdlist.Handle, aspect ImageAspectFlags, mipLevel, arrayLayer uint32) SubresourceLayout
	MapMemory(memory cmdlist.Handle, offset, size uint64) ([]byte, Result)
	UnmapMemory(memory cmdlist.Handle)
}

type Allocator interface {
	Allocate(req MemoryRequirements, properties MemoryPropertyFlags) (MemoryBlock, error)
	Free(block MemoryBlock)
}

type ImageSubresourceRange struct {
	Aspect ImageAspectFlags

	BaseMipLevel uint32
	NumMipLevels uint32

	BaseArrayLayer uint32
	NumArrayLayers uint32
}

type ImageBarrierInfo struct {
	Stage  PipelineStage
	Access AccessFlags
	Layout ImageLayout
}

type ImageBarrier struct {
	Image cmdlist.Handle
	Src   ImageBarrierInfo
	Dst   ImageBarrierInfo
	Range ImageSubresourceRange
}

type ImageSubresourceLayers struct {
	Aspect   ImageAspectFlags
	MipLevel uint32

	BaseArrayLayer uint32
	NumArrayLayers uint32
}

type ImageCopy struct {
	SrcSubresource ImageSubresourceLayers
	SrcOffset      gmath.Vector3i32
	DstSubresource ImageSubresourceLayers
	DstOffset      gmath.Vector3i32
	Extent         gmath.Extent3i32
}

type RenderPassBeginInfo struct {
	RenderPass  cmdlist.Handle
	Framebuffer cmdlist.Handle
	Area        gmath.Recti32
}

type ClearAttachment struct {
	Aspect          ImageAspectFlags
	ColorAttachment uint32
	Color           cmdlist.ClearColor
	Depth           float32
	Stencil         uint32
}

type ClearRect struct {
	Rect           gmath.Recti32
	BaseArrayLayer uint32
	NumArrayLayers uint32
}

type CommandBufferUsageFlags uint32

const (
	CommandBufferUsageOneTimeSubmit CommandBufferUsageFlags = 0x1
)

// CommandBuffer is a natively encoded command buffer, commands are recorded in call order.
type CommandBuffer interface {
	Handle() cmdlist.Handle
	Begin(flags CommandBufferUsageFlags) Result
	End() Result
	Reset() Result

	BindPipeline(pipeline cmdlist.Handle)
	BindVertexBuffers(firstBinding uint32, buffers []cmdlist.Handle, offsets []uint64)
	BindIndexBuffer(buffer cmdlist.Handle, offset uint64, format cmdlist.IndexFormat)
	BindDescriptorSets(layout cmdlist.Handle, firstSet uint32, sets []cmdlist.Handle)
	SetViewport(first uint32, viewports []cmdlist.Viewport)
	SetScissor(first uint32, rects []gmath.Recti32)

	BeginRenderPass(info RenderPassBeginInfo)
	EndRenderPass()
	ClearAttachments(attachments []ClearAttachment, rects []ClearRect)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)

	PipelineBarrier(src, dst PipelineStage, barriers []ImageBarrier)
	CopyImage(src cmdlist.Handle, srcLayout ImageLayout, dst cmdlist.Handle, dstLayout ImageLayout, regions []ImageCopy)

	BeginDebugLabel(name string)
	EndDebugLabel()
}

type CommandPool interface {
	Allocate() (CommandBuffer, Result)
	Free(cb CommandBuffer)
}

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

package trace

import (
	"sync"

	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/explicit"
	"goarrg.com/rhi/cmdlist/internal/util"
)

// oneShot returns r and clears it, injected failures only apply to the next call.
func oneShot(r *explicit.Result) explicit.Result {
	ret := *r
	*r = explicit.ResultSuccess
	return ret
}

type CommandBuffer struct {
	log    *Log
	handle cmdlist.Handle

	BeginResult explicit.Result
	EndResult   explicit.Result
	ResetResult explicit.Result
	Recording   bool
}

var _ explicit.CommandBuffer = (*CommandBuffer)(nil)

func (cb *CommandBuffer) Handle() cmdlist.Handle {
	return cb.handle
}

func (cb *CommandBuffer) Begin(flags explicit.CommandBufferUsageFlags) explicit.Result {
	r := oneShot(&cb.BeginResult)
	cb.log.Record("BeginCommandBuffer", cb.handle, flags, r)
	if !r.Failed() {
		cb.Recording = true
	}
	return r
}

func (cb *CommandBuffer) End() explicit.Result {
	r := oneShot(&cb.EndResult)
	cb.log.Record("EndCommandBuffer", cb.handle, r)
	cb.Recording = false
	return r
}

func (cb *CommandBuffer) Reset() explicit.Result {
	r := oneShot(&cb.ResetResult)
	cb.log.Record("ResetCommandBuffer", cb.handle, r)
	cb.Recording = false
	return r
}

func (cb *CommandBuffer) BindPipeline(pipeline cmdlist.Handle) {
	cb.log.Record("CmdBindPipeline", pipeline)
}

func (cb *CommandBuffer) BindVertexBuffers(firstBinding uint32, buffers []cmdlist.Handle, offsets []uint64) {
	cb.log.Record("CmdBindVertexBuffers", firstBinding, append([]cmdlist.Handle(nil), buffers...), append([]uint64(nil), offsets...))
}

func (cb *CommandBuffer) BindIndexBuffer(buffer cmdlist.Handle, offset uint64, format cmdlist.IndexFormat) {
	cb.log.Record("CmdBindIndexBuffer", buffer, offset, format)
}

func (cb *CommandBuffer) BindDescriptorSets(layout cmdlist.Handle, firstSet uint32, sets []cmdlist.Handle) {
	cb.log.Record("CmdBindDescriptorSets", layout, firstSet, append([]cmdlist.Handle(nil), sets...))
}

func (cb *CommandBuffer) SetViewport(first uint32, viewports []cmdlist.Viewport) {
	cb.log.Record("CmdSetViewport", first, append([]cmdlist.Viewport(nil), viewports...))
}

func (cb *CommandBuffer) SetScissor(first uint32, rects []gmath.Recti32) {
	cb.log.Record("CmdSetScissor", first, append([]gmath.Recti32(nil), rects...))
}

func (cb *CommandBuffer) BeginRenderPass(info explicit.RenderPassBeginInfo) {
	cb.log.Record("CmdBeginRenderPass", info)
}

func (cb *CommandBuffer) EndRenderPass() {
	cb.log.Record("CmdEndRenderPass")
}

func (cb *CommandBuffer) ClearAttachments(attachments []explicit.ClearAttachment, rects []explicit.ClearRect) {
	cb.log.Record("CmdClearAttachments", append([]explicit.ClearAttachment(nil), attachments...), append([]explicit.ClearRect(nil), rects...))
}

func (cb *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	cb.log.Record("CmdDrawIndexed", indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (cb *CommandBuffer) PipelineBarrier(src, dst explicit.PipelineStage, barriers []explicit.ImageBarrier) {
	cb.log.Record("CmdPipelineBarrier", src, dst, append([]explicit.ImageBarrier(nil), barriers...))
}

func (cb *CommandBuffer) CopyImage(src cmdlist.Handle, srcLayout explicit.ImageLayout, dst cmdlist.Handle, dstLayout explicit.ImageLayout, regions []explicit.ImageCopy) {
	cb.log.Record("CmdCopyImage", src, srcLayout, dst, dstLayout, append([]explicit.ImageCopy(nil), regions...))
}

func (cb *CommandBuffer) BeginDebugLabel(name string) {
	cb.log.Record("CmdBeginDebugUtilsLabel", name)
}

func (cb *CommandBuffer) EndDebugLabel() {
	cb.log.Record("CmdEndDebugUtilsLabel")
}

type CommandPool struct {
	Log            *Log
	AllocateResult explicit.Result
	Buffers        []*CommandBuffer
	Freed          int
}

var _ explicit.CommandPool = (*CommandPool)(nil)

func NewCommandPool(log *Log) *CommandPool {
	return &CommandPool{Log: log}
}

func (p *CommandPool) Allocate() (explicit.CommandBuffer, explicit.Result) {
	if r := oneShot(&p.AllocateResult); r.Failed() {
		p.Log.Record("AllocateCommandBuffers", r)
		return nil, r
	}
	cb := &CommandBuffer{log: p.Log, handle: p.Log.NewHandle()}
	p.Buffers = append(p.Buffers, cb)
	p.Log.Record("AllocateCommandBuffers", cb.handle)
	return cb, explicit.ResultSuccess
}

func (p *CommandPool) Free(cb explicit.CommandBuffer) {
	p.Log.Record("FreeCommandBuffers", cb.Handle())
	p.Freed++
}

/*
Device implements both explicit.Device and explicit.Allocator on host memory. Linear images
have rows aligned to RowAlignment so pitched copies can be observed.
*/
type Device struct {
	Log          *Log
	RowAlignment uint64

	CreateImageResult explicit.Result
	BindResult        explicit.Result
	MapResult         explicit.Result
	AllocateError     error

	mtx    sync.Mutex
	images map[cmdlist.Handle]explicit.ImageCreateInfo
	memory map[cmdlist.Handle][]byte
}

var (
	_ explicit.Device    = (*Device)(nil)
	_ explicit.Allocator = (*Device)(nil)
)

func NewDevice(log *Log) *Device {
	return &Device{
		Log:    log,
		images: map[cmdlist.Handle]explicit.ImageCreateInfo{},
		memory: map[cmdlist.Handle][]byte{},
	}
}

func (d *Device) rowPitch(info explicit.ImageCreateInfo) uint64 {
	pitch := info.Format.RowPitch(uint32(info.Extent.X))
	if info.Tiling == explicit.ImageTilingLinear {
		pitch = util.AlignUp(pitch, d.RowAlignment)
	}
	return pitch
}

func (d *Device) CreateImage(info explicit.ImageCreateInfo) (cmdlist.Handle, explicit.Result) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if r := oneShot(&d.CreateImageResult); r.Failed() {
		d.Log.Record("CreateImage", info.Extent, r)
		return cmdlist.NullHandle, r
	}
	h := d.Log.NewHandle()
	d.images[h] = info
	d.Log.Record("CreateImage", h, info.Format, info.Extent, info.InitialLayout)
	return h, explicit.ResultSuccess
}

func (d *Device) DestroyImage(image cmdlist.Handle) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	delete(d.images, image)
	d.Log.Record("DestroyImage", image)
}

func (d *Device) ImageMemoryRequirements(image cmdlist.Handle) explicit.MemoryRequirements {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	info := d.images[image]
	size := d.rowPitch(info) * info.Format.NumRows(uint32(info.Extent.Y)) * uint64(max(info.ArrayLayers, 1))
	return explicit.MemoryRequirements{Size: size, Alignment: 16, MemoryTypeBits: 0x1}
}

func (d *Device) BindImageMemory(image cmdlist.Handle, memory cmdlist.Handle, offset uint64) explicit.Result {
	r := oneShot(&d.BindResult)
	d.Log.Record("BindImageMemory", image, memory, offset, r)
	return r
}

func (d *Device) ImageSubresourceLayout(image cmdlist.Handle, aspect explicit.ImageAspectFlags, mipLevel, arrayLayer uint32) explicit.SubresourceLayout {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	info := d.images[image]
	pitch := d.rowPitch(info)
	size := pitch * info.Format.NumRows(uint32(info.Extent.Y))
	return explicit.SubresourceLayout{
		Offset:     uint64(arrayLayer) * size,
		Size:       size,
		RowPitch:   pitch,
		ArrayPitch: size,
		DepthPitch: size,
	}
}

func (d *Device) MapMemory(memory cmdlist.Handle, offset, size uint64) ([]byte, explicit.Result) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if r := oneShot(&d.MapResult); r.Failed() {
		d.Log.Record("MapMemory", memory, offset, size, r)
		return nil, r
	}
	m, ok := d.memory[memory]
	if !ok || offset > uint64(len(m)) || size > uint64(len(m))-offset {
		d.Log.Record("MapMemory", memory, offset, size, explicit.ResultErrorMemoryMapFailed)
		return nil, explicit.ResultErrorMemoryMapFailed
	}
	d.Log.Record("MapMemory", memory, offset, size)
	return m[offset : offset+size], explicit.ResultSuccess
}

func (d *Device) UnmapMemory(memory cmdlist.Handle) {
	d.Log.Record("UnmapMemory", memory)
}

func (d *Device) Allocate(req explicit.MemoryRequirements, properties explicit.MemoryPropertyFlags) (explicit.MemoryBlock, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.AllocateError; err != nil {
		d.AllocateError = nil
		d.Log.Record("AllocateMemory", req.Size, properties, err)
		return explicit.MemoryBlock{}, debug.ErrorWrapf(err, "Allocate")
	}
	h := d.Log.NewHandle()
	d.memory[h] = make([]byte, req.Size)
	d.Log.Record("AllocateMemory", h, req.Size, properties)
	return explicit.MemoryBlock{Memory: h, Offset: 0, Size: req.Size}, nil
}

func (d *Device) Free(block explicit.MemoryBlock) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	delete(d.memory, block.Memory)
	d.Log.Record("FreeMemory", block.Memory)
}

// Memory returns the host copy of a memory object, nil once freed.
func (d *Device) Memory(memory cmdlist.Handle) []byte {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.memory[memory]
}

func (d *Device) LiveImages() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return len(d.images)
}

func (d *Device) LiveMemory() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return len(d.memory)
}

// NewBuffer allocates a host visible buffer.
func (d *Device) NewBuffer(size uint64, usage cmdlist.BufferUsageFlags) *explicit.Buffer {
	block, err := d.Allocate(explicit.MemoryRequirements{Size: size, Alignment: 16}, explicit.MemoryPropertyHostVisible)
	if err != nil {
		panic(err)
	}
	return &explicit.Buffer{
		Buffer:     d.Log.NewHandle(),
		Memory:     block,
		SizeBytes:  size,
		UsageFlags: usage,
	}
}

// NewImage registers an optimally tiled image and returns its handle.
func (d *Device) NewImage(info explicit.ImageCreateInfo) cmdlist.Handle {
	h, r := d.CreateImage(info)
	if r.Failed() {
		panic(r.String())
	}
	return h
}

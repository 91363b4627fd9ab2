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

/*
Package explicit records command lists directly into a native command buffer. Framebuffer
changes open and close render passes, resource sets are rebound before every draw, and
texture uploads go through a linear staging image with explicit layout transitions.
*/
package explicit

import (
	"slices"

	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/internal/container"
	"goarrg.com/rhi/cmdlist/internal/util"
)

type renderPass struct {
	framebuffer *Framebuffer
}

type CommandList struct {
	noCopy    util.NoCopy
	config    cmdlist.Config
	device    Device
	allocator Allocator
	pool      CommandPool
	cb        CommandBuffer
	registry  *cmdlist.SwapchainRegistry

	state             cmdlist.State
	currentRenderPass renderPass
	staging           []*stagingImage
	// staging[:submitted] belongs to ended recordings and may still be in use by the device
	submitted int

	pipeline      *Pipeline
	resourceSet   *ResourceSet
	framebuffer   *Framebuffer
	indexBuffer   *Buffer
	vertexBuffers []*Buffer
	viewports     []cmdlist.Viewport
	scissors      []gmath.Recti32
	regions       container.Stack[string]

	vertexHandles []cmdlist.Handle
	vertexOffsets []uint64
}

var _ cmdlist.CommandList = (*CommandList)(nil)

/*
New allocates the list's command buffer from pool, it is returned to the pool by Destroy.
registry may be nil if no swapchain framebuffers are used.
*/
func New(device Device, allocator Allocator, pool CommandPool, config cmdlist.Config, registry *cmdlist.SwapchainRegistry) (*CommandList, error) {
	if device == nil || allocator == nil || pool == nil {
		return nil, cmdlist.ErrorInvalidArgument{Op: "explicit.New", Reason: "nil device, allocator or command pool"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cb, r := pool.Allocate()
	if r.Failed() {
		logger.EPrintf("[%s] Failed to allocate command buffer: %s", config.Name, r)
		return nil, nativeError("AllocateCommandBuffers", r)
	}

	l := &CommandList{
		config:    config,
		device:    device,
		allocator: allocator,
		pool:      pool,
		cb:        cb,
		registry:  registry,
	}
	l.noCopy.Init()
	logger.IPrintf("[%s] Created command list with command buffer %s", config.Name, cb.Handle())
	return l, nil
}

/*
Destroy frees the command buffer and any staging image never handed to QueueRelease, the
device must have finished every submission of the list.
*/
func (l *CommandList) Destroy() {
	if l == nil || !l.noCopy.Alive() {
		return
	}
	if err := l.Reset(); err != nil {
		logger.WPrintf("[%s] Reset failed while destroying: %s", l.config.Name, err)
	}
	l.destroyStaging()
	if l.registry != nil {
		l.registry.Remove(l)
	}
	l.pool.Free(l.cb)
	l.cb = nil
	l.noCopy.Close()
	logger.IPrintf("[%s] Destroyed command list", l.config.Name)
}

func (l *CommandList) State() cmdlist.State {
	l.noCopy.Check()
	return l.state
}

func (l *CommandList) clearTracking() {
	l.currentRenderPass = renderPass{}
	l.pipeline = nil
	l.resourceSet = nil
	l.framebuffer = nil
	l.indexBuffer = nil
	clear(l.vertexBuffers)
	l.vertexBuffers = l.vertexBuffers[:0]
	l.viewports = l.viewports[:0]
	l.scissors = l.scissors[:0]
	l.regions.Clear()
}

func (l *CommandList) Begin() error {
	l.noCopy.Check()
	if l.state == cmdlist.StateRecording {
		return cmdlist.ErrorIllegalState{Op: "Begin", Reason: "already recording, call End or Reset first"}
	}

	if l.submitted > 0 {
		logger.VPrintf("[%s] Keeping %d staging image(s) of the previous recording until QueueRelease", l.config.Name, l.submitted)
	}
	if r := l.cb.Begin(CommandBufferUsageOneTimeSubmit); r.Failed() {
		logger.EPrintf("[%s] BeginCommandBuffer failed: %s", l.config.Name, r)
		return nativeError("BeginCommandBuffer", r)
	}

	l.clearTracking()
	l.state = cmdlist.StateRecording
	logger.VPrintf("[%s] Begin", l.config.Name)
	return nil
}

// closeOpen ends the active render pass and every open named region.
func (l *CommandList) closeOpen(warn bool) {
	if l.currentRenderPass != (renderPass{}) {
		l.cb.EndRenderPass()
		l.currentRenderPass = renderPass{}
	}
	if !l.regions.Empty() {
		if warn {
			logger.WPrintf("[%s] End called with %d named region(s) open: %q", l.config.Name, l.regions.Len(), l.regions.Data())
		}
		for !l.regions.Empty() {
			l.regions.Pop()
			l.cb.EndDebugLabel()
		}
	}
}

func (l *CommandList) End() error {
	l.noCopy.Check()
	if err := l.state.Require("End", cmdlist.StateRecording); err != nil {
		return err
	}

	l.closeOpen(true)
	if r := l.cb.End(); r.Failed() {
		logger.EPrintf("[%s] EndCommandBuffer failed: %s", l.config.Name, r)
		return nativeError("EndCommandBuffer", r)
	}

	l.clearTracking()
	l.submitted = len(l.staging)
	l.state = cmdlist.StateEnded
	logger.VPrintf("[%s] Finalized command buffer %s with %d staging image(s)", l.config.Name, l.cb.Handle(), len(l.staging))
	return nil
}

/*
Reset force ends an open recording and resets the command buffer. The list is
Uninitialized afterwards even if the native reset fails. Staging images of the discarded
recording are destroyed, those of ended recordings are kept until QueueRelease.
*/
func (l *CommandList) Reset() error {
	l.noCopy.Check()

	if l.state == cmdlist.StateRecording {
		l.closeOpen(false)
		if r := l.cb.End(); r.Failed() {
			logger.WPrintf("[%s] EndCommandBuffer failed while resetting: %s", l.config.Name, r)
		}
		l.discardStaging()
	}
	l.clearTracking()
	l.state = cmdlist.StateUninitialized

	if r := l.cb.Reset(); r.Failed() {
		logger.EPrintf("[%s] ResetCommandBuffer failed: %s", l.config.Name, r)
		return nativeError("ResetCommandBuffer", r)
	}
	logger.VPrintf("[%s] Reset", l.config.Name)
	return nil
}

func (l *CommandList) Artifact() (cmdlist.Artifact, error) {
	l.noCopy.Check()
	if err := l.state.Require("Artifact", cmdlist.StateEnded); err != nil {
		return nil, err
	}
	return l.cb, nil
}

func (l *CommandList) Bindings() cmdlist.Bindings {
	l.noCopy.Check()
	b := cmdlist.Bindings{}
	if l.pipeline != nil {
		b.Pipeline = l.pipeline
	}
	if l.resourceSet != nil {
		b.ResourceSet = l.resourceSet
	}
	if l.framebuffer != nil {
		b.Framebuffer = l.framebuffer
	}
	if l.indexBuffer != nil {
		b.IndexBuffer = l.indexBuffer
	}
	for _, vb := range l.vertexBuffers {
		var buffer cmdlist.Buffer
		if vb != nil {
			buffer = vb
		}
		b.VertexBuffers = append(b.VertexBuffers, buffer)
	}
	return b
}

func (l *CommandList) Viewports() []cmdlist.Viewport {
	l.noCopy.Check()
	return slices.Clone(l.viewports)
}

func (l *CommandList) ScissorRects() []gmath.Recti32 {
	l.noCopy.Check()
	return slices.Clone(l.scissors)
}

// InRenderPass reports whether a render pass is open on the command buffer.
func (l *CommandList) InRenderPass() bool {
	l.noCopy.Check()
	return l.currentRenderPass != (renderPass{})
}

func (l *CommandList) recording(op string) error {
	l.noCopy.Check()
	return l.state.Require(op, cmdlist.StateRecording)
}

func (l *CommandList) SetPipeline(p cmdlist.Pipeline) error {
	if err := l.recording("SetPipeline"); err != nil {
		return err
	}
	pipeline, ok := p.(*Pipeline)
	if !ok || pipeline == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetPipeline", Reason: "not an explicit pipeline"}
	}

	l.cb.BindPipeline(pipeline.Pipeline)
	l.pipeline = pipeline
	return nil
}

func (l *CommandList) SetVertexBuffer(slot uint32, b cmdlist.Buffer) error {
	if err := l.recording("SetVertexBuffer"); err != nil {
		return err
	}
	if err := l.config.CheckVertexBufferSlot("SetVertexBuffer", slot); err != nil {
		return err
	}
	buffer, ok := b.(*Buffer)
	if !ok || buffer == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetVertexBuffer", Reason: "not an explicit buffer"}
	}

	l.vertexBuffers = util.Grow(l.vertexBuffers, int(slot)+1)
	l.vertexBuffers[slot] = buffer
	return nil
}

func (l *CommandList) SetIndexBuffer(b cmdlist.Buffer, format cmdlist.IndexFormat) error {
	if err := l.recording("SetIndexBuffer"); err != nil {
		return err
	}
	buffer, ok := b.(*Buffer)
	if !ok || buffer == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetIndexBuffer", Reason: "not an explicit buffer"}
	}
	if format != cmdlist.IndexFormatUint16 && format != cmdlist.IndexFormatUint32 {
		return cmdlist.ErrorInvalidEnumValue{Type: "IndexFormat", Value: int64(format)}
	}

	l.cb.BindIndexBuffer(buffer.Buffer, 0, format)
	l.indexBuffer = buffer
	return nil
}

// SetResourceSet only records the set, the descriptor set is bound right before each draw.
func (l *CommandList) SetResourceSet(s cmdlist.ResourceSet) error {
	if err := l.recording("SetResourceSet"); err != nil {
		return err
	}
	set, ok := s.(*ResourceSet)
	if !ok || set == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetResourceSet", Reason: "not an explicit resource set"}
	}
	l.resourceSet = set
	return nil
}

func (l *CommandList) beginRenderPass(fb *Framebuffer) {
	l.cb.BeginRenderPass(RenderPassBeginInfo{
		RenderPass:  fb.RenderPass,
		Framebuffer: fb.Framebuffer,
		Area:        cmdlist.FullScissorRect(fb),
	})
	l.currentRenderPass = renderPass{framebuffer: fb}
}

func (l *CommandList) endRenderPass() {
	l.cb.EndRenderPass()
	l.currentRenderPass = renderPass{}
}

func (l *CommandList) SetFramebuffer(f cmdlist.Framebuffer) error {
	if err := l.recording("SetFramebuffer"); err != nil {
		return err
	}
	fb, ok := f.(*Framebuffer)
	if !ok || fb == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetFramebuffer", Reason: "not an explicit framebuffer"}
	}

	if l.currentRenderPass != (renderPass{}) {
		l.endRenderPass()
	}
	l.beginRenderPass(fb)
	l.framebuffer = fb

	if fb.SwapchainTarget && l.registry != nil {
		l.registry.Register(l)
	}
	return nil
}

func (l *CommandList) SetViewport(index uint32, v cmdlist.Viewport) error {
	if err := l.recording("SetViewport"); err != nil {
		return err
	}
	if err := l.config.CheckViewportIndex("SetViewport", index); err != nil {
		return err
	}
	l.viewports = util.Grow(l.viewports, int(index)+1)
	l.viewports[index] = v

	native := v
	if l.config.FlipViewport {
		native.Y = v.Y + v.Height
		native.Height = -v.Height
	}
	l.cb.SetViewport(index, []cmdlist.Viewport{native})
	return nil
}

func (l *CommandList) SetScissorRect(index uint32, r gmath.Recti32) error {
	if err := l.recording("SetScissorRect"); err != nil {
		return err
	}
	if err := l.config.CheckViewportIndex("SetScissorRect", index); err != nil {
		return err
	}
	l.scissors = util.Grow(l.scissors, int(index)+1)
	l.scissors[index] = r
	l.cb.SetScissor(index, []gmath.Recti32{r})
	return nil
}

func (l *CommandList) SetFullViewport(index uint32) error {
	if err := l.recording("SetFullViewport"); err != nil {
		return err
	}
	if l.framebuffer == nil {
		return cmdlist.ErrorIllegalState{Op: "SetFullViewport", Reason: "no framebuffer set"}
	}
	return l.SetViewport(index, cmdlist.FullViewport(l.framebuffer))
}

func (l *CommandList) SetFullScissorRect(index uint32) error {
	if err := l.recording("SetFullScissorRect"); err != nil {
		return err
	}
	if l.framebuffer == nil {
		return cmdlist.ErrorIllegalState{Op: "SetFullScissorRect", Reason: "no framebuffer set"}
	}
	return l.SetScissorRect(index, cmdlist.FullScissorRect(l.framebuffer))
}

func (l *CommandList) flushVertexBuffers() {
	n := len(l.vertexBuffers)
	if n == 0 {
		return
	}
	l.vertexHandles = util.Grow(l.vertexHandles[:0], n)
	l.vertexOffsets = util.Grow(l.vertexOffsets[:0], n)
	for i, vb := range l.vertexBuffers {
		if vb != nil {
			l.vertexHandles[i] = vb.Buffer
		}
	}
	l.cb.BindVertexBuffers(0, l.vertexHandles, l.vertexOffsets)
}

func (l *CommandList) Draw(indexCount, instanceCount, indexStart uint32, vertexOffset int32, instanceStart uint32) error {
	if err := l.recording("Draw"); err != nil {
		return err
	}
	if l.currentRenderPass == (renderPass{}) {
		return cmdlist.ErrorIllegalState{Op: "Draw", Reason: "no render pass active, set a framebuffer first"}
	}
	if l.pipeline == nil {
		return cmdlist.ErrorIllegalState{Op: "Draw", Reason: "no pipeline set"}
	}

	l.flushVertexBuffers()
	if l.resourceSet != nil {
		l.cb.BindDescriptorSets(l.pipeline.Layout, 0, []cmdlist.Handle{l.resourceSet.DescriptorSet})
	}
	l.cb.DrawIndexed(indexCount, instanceCount, indexStart, vertexOffset, instanceStart)
	return nil
}

func (l *CommandList) fullClearRect() []ClearRect {
	return []ClearRect{{
		Rect:           cmdlist.FullScissorRect(l.framebuffer),
		BaseArrayLayer: 0,
		NumArrayLayers: 1,
	}}
}

func (l *CommandList) ClearColorTarget(index uint32, c cmdlist.ClearColor) error {
	if err := l.recording("ClearColorTarget"); err != nil {
		return err
	}
	if l.framebuffer == nil || l.currentRenderPass == (renderPass{}) {
		return cmdlist.ErrorIllegalState{Op: "ClearColorTarget", Reason: "no framebuffer set"}
	}
	if int(index) >= l.framebuffer.ColorTargets {
		return cmdlist.ErrorInvalidArgument{Op: "ClearColorTarget", Reason: "color target index out of range"}
	}

	l.cb.ClearAttachments([]ClearAttachment{{
		Aspect:          ImageAspectColor,
		ColorAttachment: index,
		Color:           c,
	}}, l.fullClearRect())
	return nil
}

func (l *CommandList) ClearDepthTarget(depth float32, stencil uint8) error {
	if err := l.recording("ClearDepthTarget"); err != nil {
		return err
	}
	if l.framebuffer == nil || l.currentRenderPass == (renderPass{}) {
		return cmdlist.ErrorIllegalState{Op: "ClearDepthTarget", Reason: "no framebuffer set"}
	}
	if !l.framebuffer.HasDepthTarget() {
		return cmdlist.ErrorIllegalState{Op: "ClearDepthTarget", Reason: "framebuffer has no depth target"}
	}

	l.cb.ClearAttachments([]ClearAttachment{{
		Aspect:  aspectOf(l.framebuffer.DepthFormat),
		Depth:   depth,
		Stencil: uint32(stencil),
	}}, l.fullClearRect())
	return nil
}

func (l *CommandList) BeginNamedRegion(name string) error {
	if err := l.recording("BeginNamedRegion"); err != nil {
		return err
	}
	l.cb.BeginDebugLabel(name)
	l.regions.Push(name)
	return nil
}

func (l *CommandList) EndNamedRegion() error {
	if err := l.recording("EndNamedRegion"); err != nil {
		return err
	}
	if l.regions.Empty() {
		return cmdlist.ErrorIllegalState{Op: "EndNamedRegion", Reason: "no named region open"}
	}
	l.regions.Pop()
	l.cb.EndDebugLabel()
	return nil
}

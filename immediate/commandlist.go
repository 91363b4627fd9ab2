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
Package immediate records command lists onto a push-state deferred context. State is
pushed into the context as it is set, viewports, scissors and vertex buffers are flushed
right before each draw, and End compiles the context into a replayable CompiledList.
*/
package immediate

import (
	"slices"

	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/internal/container"
	"goarrg.com/rhi/cmdlist/internal/util"
)

type CommandList struct {
	noCopy   util.NoCopy
	config   cmdlist.Config
	context  Context
	registry *cmdlist.SwapchainRegistry

	state    cmdlist.State
	compiled CompiledList

	pipeline      *Pipeline
	resourceSet   *ResourceSet
	framebuffer   *Framebuffer
	indexBuffer   *Buffer
	vertexBuffers []*Buffer
	viewports     []cmdlist.Viewport
	scissors      []gmath.Recti32
	regions       container.Stack[string]

	vertexHandles []cmdlist.Handle
	vertexStrides []uint32
	vertexOffsets []uint32
	scissorRects  []Rect
}

var _ cmdlist.CommandList = (*CommandList)(nil)

/*
New wraps context, the list owns it from now on and releases it in Destroy. registry may
be nil if no swapchain framebuffers are used.
*/
func New(context Context, config cmdlist.Config, registry *cmdlist.SwapchainRegistry) (*CommandList, error) {
	if context == nil {
		return nil, cmdlist.ErrorInvalidArgument{Op: "immediate.New", Reason: "nil context"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l := &CommandList{
		config:   config,
		context:  context,
		registry: registry,
	}
	l.noCopy.Init()
	logger.IPrintf("[%s] Created command list", config.Name)
	return l, nil
}

func (l *CommandList) Destroy() {
	if l == nil || !l.noCopy.Alive() {
		return
	}
	l.Reset()
	if l.registry != nil {
		l.registry.Remove(l)
	}
	l.context.Release()
	l.context = nil
	l.noCopy.Close()
	logger.IPrintf("[%s] Destroyed command list", l.config.Name)
}

func (l *CommandList) State() cmdlist.State {
	l.noCopy.Check()
	return l.state
}

func (l *CommandList) clearTracking() {
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

func (l *CommandList) releaseCompiled() {
	if l.compiled != nil {
		l.compiled.Release()
		l.compiled = nil
	}
}

func (l *CommandList) Begin() error {
	l.noCopy.Check()
	if l.state == cmdlist.StateRecording {
		return cmdlist.ErrorIllegalState{Op: "Begin", Reason: "already recording, call End or Reset first"}
	}

	l.releaseCompiled()
	l.context.ClearState()
	l.clearTracking()
	l.state = cmdlist.StateRecording
	logger.VPrintf("[%s] Begin", l.config.Name)
	return nil
}

func (l *CommandList) End() error {
	l.noCopy.Check()
	if err := l.state.Require("End", cmdlist.StateRecording); err != nil {
		return err
	}

	if !l.regions.Empty() {
		logger.WPrintf("[%s] End called with %d named region(s) open: %q", l.config.Name, l.regions.Len(), l.regions.Data())
		for !l.regions.Empty() {
			l.regions.Pop()
			l.context.EndEvent()
		}
	}

	compiled, r := l.context.FinishCommandList(false)
	if r.Failed() {
		logger.EPrintf("[%s] FinishCommandList failed: %s", l.config.Name, r)
		return nativeError("FinishCommandList", r)
	}

	l.compiled = compiled
	l.clearTracking()
	l.state = cmdlist.StateEnded
	logger.VPrintf("[%s] Compiled command list %s", l.config.Name, compiled.Handle())
	return nil
}

/*
Reset discards the compiled list, or if still recording, finishes the context and discards
the result so the context starts from a clean slate.
*/
func (l *CommandList) Reset() error {
	l.noCopy.Check()

	l.releaseCompiled()
	if l.state == cmdlist.StateRecording {
		for !l.regions.Empty() {
			l.regions.Pop()
			l.context.EndEvent()
		}
		discard, r := l.context.FinishCommandList(false)
		if r.Failed() {
			logger.WPrintf("[%s] FinishCommandList failed while resetting: %s", l.config.Name, r)
			l.context.ClearState()
		} else if discard != nil {
			discard.Release()
		}
	}

	l.clearTracking()
	l.state = cmdlist.StateUninitialized
	logger.VPrintf("[%s] Reset", l.config.Name)
	return nil
}

func (l *CommandList) Artifact() (cmdlist.Artifact, error) {
	l.noCopy.Check()
	if err := l.state.Require("Artifact", cmdlist.StateEnded); err != nil {
		return nil, err
	}
	return l.compiled, nil
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
		return cmdlist.ErrorInvalidArgument{Op: "SetPipeline", Reason: "not an immediate pipeline"}
	}

	l.context.SetBlendState(pipeline.BlendState, pipeline.BlendFactor, pipeline.SampleMask)
	l.context.SetDepthStencilState(pipeline.DepthStencilState, pipeline.StencilReference)
	l.context.SetRasterizerState(pipeline.RasterizerState)
	l.context.SetPrimitiveTopology(pipeline.Topology)
	l.context.SetInputLayout(pipeline.InputLayout)

	// unused stages get a null shader so nothing from a previous pipeline stays bound
	for _, s := range cmdlist.ShaderStages {
		l.context.Stage(s).SetShader(pipeline.Shaders.For(s))
	}

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
		return cmdlist.ErrorInvalidArgument{Op: "SetVertexBuffer", Reason: "not an immediate buffer"}
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
		return cmdlist.ErrorInvalidArgument{Op: "SetIndexBuffer", Reason: "not an immediate buffer"}
	}
	if format != cmdlist.IndexFormatUint16 && format != cmdlist.IndexFormatUint32 {
		return cmdlist.ErrorInvalidEnumValue{Type: "IndexFormat", Value: int64(format)}
	}

	l.context.SetIndexBuffer(buffer.Resource, format, 0)
	l.indexBuffer = buffer
	return nil
}

type stageBinder struct {
	context Context
}

func (b stageBinder) BindUniformBuffer(stage cmdlist.ShaderStage, slot uint32, h cmdlist.Handle) {
	b.context.Stage(stage).SetConstantBuffers(slot, []cmdlist.Handle{h})
}

func (b stageBinder) BindTextureView(stage cmdlist.ShaderStage, slot uint32, h cmdlist.Handle) {
	b.context.Stage(stage).SetShaderResources(slot, []cmdlist.Handle{h})
}

func (b stageBinder) BindSampler(stage cmdlist.ShaderStage, slot uint32, h cmdlist.Handle) {
	b.context.Stage(stage).SetSamplers(slot, []cmdlist.Handle{h})
}

func (l *CommandList) SetResourceSet(s cmdlist.ResourceSet) error {
	if err := l.recording("SetResourceSet"); err != nil {
		return err
	}
	set, ok := s.(*ResourceSet)
	if !ok || set == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetResourceSet", Reason: "not an immediate resource set"}
	}
	if len(set.Resources) != len(set.ResourceLayout.Elements) {
		return cmdlist.ErrorInvalidArgument{Op: "SetResourceSet", Reason: "resource count does not match layout"}
	}

	binder := stageBinder{context: l.context}
	for i, e := range set.ResourceLayout.Elements {
		if _, err := cmdlist.DispatchResource(binder, e.Kind, e.Slot, e.Stages, set.Resources[i]); err != nil {
			return err
		}
	}

	l.resourceSet = set
	return nil
}

func (l *CommandList) SetFramebuffer(f cmdlist.Framebuffer) error {
	if err := l.recording("SetFramebuffer"); err != nil {
		return err
	}
	fb, ok := f.(*Framebuffer)
	if !ok || fb == nil {
		return cmdlist.ErrorInvalidArgument{Op: "SetFramebuffer", Reason: "not an immediate framebuffer"}
	}

	l.context.SetRenderTargets(fb.ColorTargets, fb.DepthTarget)
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

func (l *CommandList) flushViewports() {
	if len(l.viewports) > 0 {
		l.context.SetViewports(l.viewports)
	}
}

func (l *CommandList) flushScissorRects() {
	// zero length scissor arrays are never submitted
	if len(l.scissors) == 0 {
		return
	}
	l.scissorRects = util.Grow(l.scissorRects[:0], len(l.scissors))
	for i, r := range l.scissors {
		l.scissorRects[i] = Rect{Left: r.X, Top: r.Y, Right: r.X + r.W, Bottom: r.Y + r.H}
	}
	l.context.SetScissorRects(l.scissorRects)
}

func (l *CommandList) flushVertexBuffers() {
	n := len(l.vertexBuffers)
	if n == 0 {
		return
	}

	var strides []uint32
	if l.pipeline != nil {
		strides = l.pipeline.Strides
	}

	l.vertexHandles = util.Grow(l.vertexHandles[:0], n)
	l.vertexStrides = util.Grow(l.vertexStrides[:0], n)
	l.vertexOffsets = util.Grow(l.vertexOffsets[:0], n)
	for i, vb := range l.vertexBuffers {
		if vb != nil {
			l.vertexHandles[i] = vb.Resource
		}
		if i < len(strides) {
			l.vertexStrides[i] = strides[i]
		}
	}
	l.context.SetVertexBuffers(0, l.vertexHandles, l.vertexStrides, l.vertexOffsets)
}

func (l *CommandList) Draw(indexCount, instanceCount, indexStart uint32, vertexOffset int32, instanceStart uint32) error {
	if err := l.recording("Draw"); err != nil {
		return err
	}
	if l.pipeline == nil {
		return cmdlist.ErrorIllegalState{Op: "Draw", Reason: "no pipeline set"}
	}

	l.flushViewports()
	l.flushScissorRects()
	l.flushVertexBuffers()

	if instanceCount == 1 && instanceStart == 0 {
		l.context.DrawIndexed(indexCount, indexStart, vertexOffset)
	} else {
		l.context.DrawIndexedInstanced(indexCount, instanceCount, indexStart, vertexOffset, instanceStart)
	}
	return nil
}

func (l *CommandList) ClearColorTarget(index uint32, c cmdlist.ClearColor) error {
	if err := l.recording("ClearColorTarget"); err != nil {
		return err
	}
	if l.framebuffer == nil {
		return cmdlist.ErrorIllegalState{Op: "ClearColorTarget", Reason: "no framebuffer set"}
	}
	if int(index) >= len(l.framebuffer.ColorTargets) {
		return cmdlist.ErrorInvalidArgument{Op: "ClearColorTarget", Reason: "color target index out of range"}
	}
	l.context.ClearRenderTargetView(l.framebuffer.ColorTargets[index], [4]float32{c.R, c.G, c.B, c.A})
	return nil
}

func (l *CommandList) ClearDepthTarget(depth float32, stencil uint8) error {
	if err := l.recording("ClearDepthTarget"); err != nil {
		return err
	}
	if l.framebuffer == nil {
		return cmdlist.ErrorIllegalState{Op: "ClearDepthTarget", Reason: "no framebuffer set"}
	}
	if !l.framebuffer.HasDepthTarget() {
		return cmdlist.ErrorIllegalState{Op: "ClearDepthTarget", Reason: "framebuffer has no depth target"}
	}

	flags := ClearDepth
	if l.framebuffer.DepthFormat.Valid() && l.framebuffer.DepthFormat.HasStencil() {
		flags |= ClearStencil
	}
	l.context.ClearDepthStencilView(l.framebuffer.DepthTarget, flags, depth, stencil)
	return nil
}

func (l *CommandList) BeginNamedRegion(name string) error {
	if err := l.recording("BeginNamedRegion"); err != nil {
		return err
	}
	l.context.BeginEvent(name)
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
	l.context.EndEvent()
	return nil
}

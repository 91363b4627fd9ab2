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
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/immediate"
)

type CompiledList struct {
	log      *Log
	handle   cmdlist.Handle
	Released bool
}

var _ immediate.CompiledList = (*CompiledList)(nil)

func (c *CompiledList) Handle() cmdlist.Handle {
	return c.handle
}

func (c *CompiledList) Release() {
	c.log.Record("ReleaseCommandList", c.handle)
	c.Released = true
}

// Context is a deferred context, FinishResult makes the next FinishCommandList fail when set.
type Context struct {
	Log          *Log
	FinishResult immediate.HResult
	Compiled     []*CompiledList
	Released     bool
}

var _ immediate.Context = (*Context)(nil)

func NewContext(log *Log) *Context {
	return &Context{Log: log}
}

type stageContext struct {
	log    *Log
	prefix string
}

func (s stageContext) SetShader(shader cmdlist.Handle) {
	s.log.Record(s.prefix+"SetShader", shader)
}

func (s stageContext) SetShaderResources(startSlot uint32, views []cmdlist.Handle) {
	s.log.Record(s.prefix+"SetShaderResources", startSlot, append([]cmdlist.Handle(nil), views...))
}

func (s stageContext) SetConstantBuffers(startSlot uint32, buffers []cmdlist.Handle) {
	s.log.Record(s.prefix+"SetConstantBuffers", startSlot, append([]cmdlist.Handle(nil), buffers...))
}

func (s stageContext) SetSamplers(startSlot uint32, samplers []cmdlist.Handle) {
	s.log.Record(s.prefix+"SetSamplers", startSlot, append([]cmdlist.Handle(nil), samplers...))
}

func (c *Context) Stage(stage cmdlist.ShaderStage) immediate.StageContext {
	return stageContext{log: c.Log, prefix: immediate.StagePrefix(stage)}
}

func (c *Context) SetBlendState(state cmdlist.Handle, blendFactor [4]float32, sampleMask uint32) {
	c.Log.Record("OMSetBlendState", state, blendFactor, sampleMask)
}

func (c *Context) SetDepthStencilState(state cmdlist.Handle, stencilRef uint32) {
	c.Log.Record("OMSetDepthStencilState", state, stencilRef)
}

func (c *Context) SetRasterizerState(state cmdlist.Handle) {
	c.Log.Record("RSSetState", state)
}

func (c *Context) SetPrimitiveTopology(topology immediate.PrimitiveTopology) {
	c.Log.Record("IASetPrimitiveTopology", topology)
}

func (c *Context) SetInputLayout(layout cmdlist.Handle) {
	c.Log.Record("IASetInputLayout", layout)
}

func (c *Context) SetVertexBuffers(startSlot uint32, buffers []cmdlist.Handle, strides []uint32, offsets []uint32) {
	c.Log.Record("IASetVertexBuffers", startSlot,
		append([]cmdlist.Handle(nil), buffers...), append([]uint32(nil), strides...), append([]uint32(nil), offsets...))
}

func (c *Context) SetIndexBuffer(buffer cmdlist.Handle, format cmdlist.IndexFormat, offset uint32) {
	c.Log.Record("IASetIndexBuffer", buffer, format, offset)
}

func (c *Context) SetViewports(viewports []cmdlist.Viewport) {
	c.Log.Record("RSSetViewports", append([]cmdlist.Viewport(nil), viewports...))
}

func (c *Context) SetScissorRects(rects []immediate.Rect) {
	c.Log.Record("RSSetScissorRects", append([]immediate.Rect(nil), rects...))
}

func (c *Context) SetRenderTargets(colors []cmdlist.Handle, depthStencil cmdlist.Handle) {
	c.Log.Record("OMSetRenderTargets", append([]cmdlist.Handle(nil), colors...), depthStencil)
}

func (c *Context) ClearRenderTargetView(view cmdlist.Handle, color [4]float32) {
	c.Log.Record("ClearRenderTargetView", view, color)
}

func (c *Context) ClearDepthStencilView(view cmdlist.Handle, flags immediate.ClearFlags, depth float32, stencil uint8) {
	c.Log.Record("ClearDepthStencilView", view, flags, depth, stencil)
}

func (c *Context) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	c.Log.Record("DrawIndexed", indexCount, startIndex, baseVertex)
}

func (c *Context) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	c.Log.Record("DrawIndexedInstanced", indexCount, instanceCount, startIndex, baseVertex, startInstance)
}

func (c *Context) UpdateSubresource(resource cmdlist.Handle, subresource uint32, box *immediate.Box, data []byte, rowPitch, depthPitch uint32) {
	var b any
	if box != nil {
		b = *box
	}
	c.Log.Record("UpdateSubresource", resource, subresource, b, len(data), rowPitch, depthPitch)
}

func (c *Context) ClearState() {
	c.Log.Record("ClearState")
}

func (c *Context) FinishCommandList(restoreState bool) (immediate.CompiledList, immediate.HResult) {
	if r := c.FinishResult; r.Failed() {
		c.Log.Record("FinishCommandList", restoreState, r)
		c.FinishResult = immediate.ResultOK
		return nil, r
	}
	list := &CompiledList{log: c.Log, handle: c.Log.NewHandle()}
	c.Compiled = append(c.Compiled, list)
	c.Log.Record("FinishCommandList", restoreState, list.handle)
	return list, immediate.ResultOK
}

func (c *Context) BeginEvent(name string) {
	c.Log.Record("BeginEvent", name)
}

func (c *Context) EndEvent() {
	c.Log.Record("EndEvent")
}

func (c *Context) Release() {
	c.Log.Record("ReleaseContext")
	c.Released = true
}

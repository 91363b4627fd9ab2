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

package immediate

import (
	"fmt"

	"goarrg.com/rhi/cmdlist"
)

// HResult is a native result code, negative values are failures.
type HResult int32

const (
	ResultOK            HResult = 0
	ResultFalse         HResult = 1
	ResultFail          HResult = -0x7FFFBFFB // 0x80004005
	ResultInvalidArg    HResult = -0x7FF8FFA9 // 0x80070057
	ResultOutOfMemory   HResult = -0x7FF8FFF2 // 0x8007000E
	ResultDeviceRemoved HResult = -0x7785FFFB // 0x887A0005
)

func (r HResult) Failed() bool {
	return r < 0
}

func (r HResult) String() string {
	switch r {
	case ResultOK:
		return "S_OK"
	case ResultFalse:
		return "S_FALSE"
	case ResultFail:
		return "E_FAIL"
	case ResultInvalidArg:
		return "E_INVALIDARG"
	case ResultOutOfMemory:
		return "E_OUTOFMEMORY"
	case ResultDeviceRemoved:
		return "DXGI_ERROR_DEVICE_REMOVED"
	}
	return fmt.Sprintf("0x%08X", uint32(r))
}

func nativeError(call string, r HResult) error {
	return cmdlist.ErrorNativeCall{Call: call, Code: int64(r), Result: r.String()}
}

type PrimitiveTopology uint32

const (
	PrimitiveTopologyUndefined PrimitiveTopology = iota
	PrimitiveTopologyPointList
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangleList
	PrimitiveTopologyTriangleStrip
)

type ClearFlags uint32

const (
	ClearDepth ClearFlags = 1 << iota
	ClearStencil
)

// Box selects a region of a resource, Right, Bottom and Back are exclusive.
type Box struct {
	Left, Top, Front    uint32
	Right, Bottom, Back uint32
}

type Rect struct {
	Left, Top, Right, Bottom int32
}

// StageContext is the bind surface of one shader stage of a Context.
type StageContext interface {
	SetShader(shader cmdlist.Handle)
	SetShaderResources(startSlot uint32, views []cmdlist.Handle)
	SetConstantBuffers(startSlot uint32, buffers []cmdlist.Handle)
	SetSamplers(startSlot uint32, samplers []cmdlist.Handle)
}

// CompiledList is a replayable list produced by FinishCommandList.
type CompiledList interface {
	Handle() cmdlist.Handle
	Release()
}

/*
Context is a deferred device context. State set on it is recorded and compiled into a
CompiledList by FinishCommandList, which also returns the context to its default state.
*/
type Context interface {
	Stage(stage cmdlist.ShaderStage) StageContext

	SetBlendState(state cmdlist.Handle, blendFactor [4]float32, sampleMask uint32)
	SetDepthStencilState(state cmdlist.Handle, stencilRef uint32)
	SetRasterizerState(state cmdlist.Handle)
	SetPrimitiveTopology(topology PrimitiveTopology)
	SetInputLayout(layout cmdlist.Handle)

	SetVertexBuffers(startSlot uint32, buffers []cmdlist.Handle, strides []uint32, offsets []uint32)
	SetIndexBuffer(buffer cmdlist.Handle, format cmdlist.IndexFormat, offset uint32)
	SetViewports(viewports []cmdlist.Viewport)
	SetScissorRects(rects []Rect)
	SetRenderTargets(colors []cmdlist.Handle, depthStencil cmdlist.Handle)

	ClearRenderTargetView(view cmdlist.Handle, color [4]float32)
	ClearDepthStencilView(view cmdlist.Handle, flags ClearFlags, depth float32, stencil uint8)

	DrawIndexed(indexCount, startIndex uint32, baseVertex int32)
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32)

	// UpdateSubresource writes data into subresource, a nil box writes the whole subresource.
	UpdateSubresource(resource cmdlist.Handle, subresource uint32, box *Box, data []byte, rowPitch, depthPitch uint32)

	ClearState()
	FinishCommandList(restoreState bool) (CompiledList, HResult)

	BeginEvent(name string)
	EndEvent()

	Release()
}

var stagePrefix = map[cmdlist.ShaderStage]string{
	cmdlist.ShaderStageVertex:      "VS",
	cmdlist.ShaderStageGeometry:    "GS",
	cmdlist.ShaderStageTessControl: "HS",
	cmdlist.ShaderStageTessEval:    "DS",
	cmdlist.ShaderStageFragment:    "PS",
}

// StagePrefix returns the native two letter prefix of a single stage, "VS" for vertex.
func StagePrefix(stage cmdlist.ShaderStage) string {
	if p, ok := stagePrefix[stage]; ok {
		return p
	}
	return "??"
}

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

package immediate_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/explicit"
	"goarrg.com/rhi/cmdlist/immediate"
	"goarrg.com/rhi/cmdlist/internal/trace"
)

type fixture struct {
	log      *trace.Log
	context  *trace.Context
	registry *cmdlist.SwapchainRegistry
	list     *immediate.CommandList
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := trace.NewLog()
	f := &fixture{
		log:      log,
		context:  trace.NewContext(log),
		registry: cmdlist.NewSwapchainRegistry(),
	}
	l, err := immediate.New(f.context, cmdlist.DefaultConfig(), f.registry)
	require.NoError(t, err)
	t.Cleanup(l.Destroy)
	f.list = l
	return f
}

func (f *fixture) begin(t *testing.T) {
	t.Helper()
	require.NoError(t, f.list.Begin())
	f.log.Clear()
}

func newPipeline(log *trace.Log) *immediate.Pipeline {
	return &immediate.Pipeline{
		BlendState:        log.NewHandle(),
		DepthStencilState: log.NewHandle(),
		RasterizerState:   log.NewHandle(),
		Topology:          immediate.PrimitiveTopologyTriangleList,
		InputLayout:       log.NewHandle(),
		Shaders: immediate.Shaders{
			Vertex:   log.NewHandle(),
			Fragment: log.NewHandle(),
		},
		Strides: []uint32{24, 8},
	}
}

func newFramebuffer(log *trace.Log, swapchain bool) *immediate.Framebuffer {
	return &immediate.Framebuffer{
		ColorTargets:    []cmdlist.Handle{log.NewHandle(), log.NewHandle()},
		DepthTarget:     log.NewHandle(),
		DepthFormat:     cmdlist.FormatD24UnormS8Uint,
		Size:            gmath.Extent3i32{X: 1280, Y: 720, Z: 1},
		SwapchainTarget: swapchain,
	}
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	_, err := immediate.New(nil, cmdlist.DefaultConfig(), nil)
	assert.ErrorIs(t, err, cmdlist.ErrorInvalidArgument{})

	config := cmdlist.DefaultConfig()
	config.MaxViewports = 0
	_, err = immediate.New(trace.NewContext(trace.NewLog()), config, nil)
	assert.Error(t, err)
}

func TestBeginResetClearsState(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	require.NoError(t, f.list.SetPipeline(newPipeline(f.log)))
	require.NoError(t, f.list.SetVertexBuffer(1, &immediate.Buffer{Resource: f.log.NewHandle()}))
	require.NoError(t, f.list.SetFramebuffer(newFramebuffer(f.log, false)))
	require.NoError(t, f.list.SetViewport(2, cmdlist.Viewport{Width: 10}))
	require.NoError(t, f.list.SetScissorRect(0, gmath.Recti32{W: 5, H: 5}))
	assert.False(t, f.list.Bindings().Empty())

	require.NoError(t, f.list.Reset())
	assert.Equal(t, cmdlist.StateUninitialized, f.list.State())
	assert.True(t, f.list.Bindings().Empty())
	assert.Empty(t, f.list.Viewports())
	assert.Empty(t, f.list.ScissorRects())

	// the open recording was finished and thrown away
	require.Len(t, f.context.Compiled, 1)
	assert.True(t, f.context.Compiled[0].Released)

	_, err := f.list.Artifact()
	assert.ErrorIs(t, err, cmdlist.ErrorIllegalState{})
}

func TestBeginTwice(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	assert.ErrorIs(t, f.list.Begin(), cmdlist.ErrorIllegalState{})
	assert.Equal(t, cmdlist.StateRecording, f.list.State())
	assert.Zero(t, f.log.Count("ClearState"))
}

func TestBeginDiscardsCompiledList(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	require.NoError(t, f.list.End())
	require.Len(t, f.context.Compiled, 1)

	require.NoError(t, f.list.Begin())
	assert.True(t, f.context.Compiled[0].Released)
	assert.Equal(t, 1, f.log.Count("ClearState"))
}

func TestViewportScissorSparse(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	v3 := cmdlist.Viewport{X: 1, Y: 2, Width: 3, Height: 4, MaxDepth: 1}
	v1 := cmdlist.Viewport{Width: 100, Height: 50, MaxDepth: 1}
	require.NoError(t, f.list.SetViewport(3, v3))
	require.NoError(t, f.list.SetViewport(1, cmdlist.Viewport{Width: 7}))
	require.NoError(t, f.list.SetViewport(1, v1))
	assert.Equal(t, []cmdlist.Viewport{{}, v1, {}, v3}, f.list.Viewports())

	r := gmath.Recti32{X: 4, Y: 4, W: 16, H: 16}
	require.NoError(t, f.list.SetScissorRect(2, r))
	assert.Equal(t, []gmath.Recti32{{}, {}, r}, f.list.ScissorRects())

	assert.ErrorIs(t, f.list.SetViewport(16, v1), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetScissorRect(16, r), cmdlist.ErrorInvalidArgument{})

	// nothing reaches the context until a draw
	assert.Zero(t, f.log.Count("RSSetViewports"))
	assert.Zero(t, f.log.Count("RSSetScissorRects"))
}

func TestViewportsZeroedAfterRestart(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	require.NoError(t, f.list.SetViewport(3, cmdlist.Viewport{Width: 9}))
	require.NoError(t, f.list.End())

	f.begin(t)
	require.NoError(t, f.list.SetViewport(1, cmdlist.Viewport{Width: 1}))
	assert.Equal(t, []cmdlist.Viewport{{}, {Width: 1}}, f.list.Viewports())
}

func TestSetPipelineClearsUnusedStages(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	p := newPipeline(f.log)
	require.NoError(t, f.list.SetPipeline(p))

	assert.Equal(t, []any{p.Shaders.Vertex}, f.log.Find("VSSetShader")[0].Args)
	assert.Equal(t, []any{p.Shaders.Fragment}, f.log.Find("PSSetShader")[0].Args)
	for _, stage := range []string{"GS", "HS", "DS"} {
		e := f.log.Find(stage + "SetShader")
		require.Len(t, e, 1, stage)
		assert.Equal(t, []any{cmdlist.NullHandle}, e[0].Args, stage)
	}
	assert.Equal(t, 1, f.log.Count("OMSetBlendState"))
	assert.Equal(t, 1, f.log.Count("OMSetDepthStencilState"))
	assert.Equal(t, 1, f.log.Count("RSSetState"))
	assert.Equal(t, []any{immediate.PrimitiveTopologyTriangleList}, f.log.Find("IASetPrimitiveTopology")[0].Args)
	assert.Equal(t, 1, f.log.Count("IASetInputLayout"))
	assert.Equal(t, p, f.list.Bindings().Pipeline)
}

func TestResourceSetDispatch(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	texture, ubo, sampler := f.log.NewHandle(), f.log.NewHandle(), f.log.NewHandle()
	set := &immediate.ResourceSet{
		ResourceLayout: cmdlist.ResourceLayout{Elements: []cmdlist.ResourceLayoutElement{
			{Name: "albedo", Kind: cmdlist.ResourceKindTextureView, Stages: cmdlist.ShaderStageVertex | cmdlist.ShaderStageFragment, Slot: 2},
			{Name: "camera", Kind: cmdlist.ResourceKindUniformBuffer, Stages: cmdlist.ShaderStageVertex, Slot: 0},
			{Name: "linear", Kind: cmdlist.ResourceKindSampler, Stages: cmdlist.ShaderStageFragment, Slot: 1},
		}},
		Resources: []cmdlist.Handle{texture, ubo, sampler},
	}
	require.NoError(t, f.list.SetResourceSet(set))

	assert.Equal(t, []any{uint32(2), []cmdlist.Handle{texture}}, f.log.Find("VSSetShaderResources")[0].Args)
	assert.Equal(t, []any{uint32(2), []cmdlist.Handle{texture}}, f.log.Find("PSSetShaderResources")[0].Args)
	assert.Equal(t, 1, f.log.Count("VSSetShaderResources"))
	assert.Equal(t, 1, f.log.Count("PSSetShaderResources"))
	for _, stage := range []string{"GS", "HS", "DS"} {
		assert.Zero(t, f.log.Count(stage+"SetShaderResources"), stage)
		assert.Zero(t, f.log.Count(stage+"SetConstantBuffers"), stage)
		assert.Zero(t, f.log.Count(stage+"SetSamplers"), stage)
	}
	assert.Equal(t, []any{uint32(0), []cmdlist.Handle{ubo}}, f.log.Find("VSSetConstantBuffers")[0].Args)
	assert.Zero(t, f.log.Count("PSSetConstantBuffers"))
	assert.Equal(t, []any{uint32(1), []cmdlist.Handle{sampler}}, f.log.Find("PSSetSamplers")[0].Args)
	assert.Equal(t, 4, f.log.Len())

	mismatched := &immediate.ResourceSet{ResourceLayout: set.ResourceLayout}
	assert.ErrorIs(t, f.list.SetResourceSet(mismatched), cmdlist.ErrorInvalidArgument{})
}

// Begin, SetPipeline, SetVertexBuffer, SetIndexBuffer, SetFramebuffer, one draw, End.
func TestRecordSingleDraw(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	p := newPipeline(f.log)
	vb := &immediate.Buffer{Resource: f.log.NewHandle(), SizeBytes: 1024, UsageFlags: cmdlist.BufferUsageVertexBuffer}
	ib := &immediate.Buffer{Resource: f.log.NewHandle(), SizeBytes: 12, UsageFlags: cmdlist.BufferUsageIndexBuffer}
	fb := newFramebuffer(f.log, false)

	require.NoError(t, f.list.SetPipeline(p))
	require.NoError(t, f.list.SetVertexBuffer(0, vb))
	require.NoError(t, f.list.SetIndexBuffer(ib, cmdlist.IndexFormatUint16))
	require.NoError(t, f.list.SetFramebuffer(fb))
	require.NoError(t, f.list.Draw(6, 1, 0, 0, 0))
	require.NoError(t, f.list.End())

	draws := f.log.Find("DrawIndexed")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{uint32(6), uint32(0), int32(0)}, draws[0].Args)
	assert.Zero(t, f.log.Count("DrawIndexedInstanced"))

	assert.Equal(t, []any{uint32(0), []cmdlist.Handle{vb.Resource}, []uint32{24}, []uint32{0}},
		f.log.Find("IASetVertexBuffers")[0].Args)
	assert.Equal(t, []any{ib.Resource, cmdlist.IndexFormatUint16, uint32(0)}, f.log.Find("IASetIndexBuffer")[0].Args)
	assert.Equal(t, []any{fb.ColorTargets, fb.DepthTarget}, f.log.Find("OMSetRenderTargets")[0].Args)

	names := f.log.Names()
	assert.Less(t, slices.Index(names, "IASetVertexBuffers"), slices.Index(names, "DrawIndexed"))
	assert.Equal(t, "FinishCommandList", names[len(names)-1])

	assert.Equal(t, cmdlist.StateEnded, f.list.State())
	assert.True(t, f.list.Bindings().Empty())
	assert.Empty(t, f.list.Viewports())
	artifact, err := f.list.Artifact()
	require.NoError(t, err)
	assert.Equal(t, f.context.Compiled[0].Handle(), artifact.Handle())
}

func TestEndTwice(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	require.NoError(t, f.list.End())
	first, err := f.list.Artifact()
	require.NoError(t, err)
	calls := f.log.Len()

	assert.ErrorIs(t, f.list.End(), cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, f.list.End(), cmdlist.ErrorIllegalState{})
	assert.Equal(t, calls, f.log.Len())

	again, err := f.list.Artifact()
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.False(t, f.context.Compiled[0].Released)
}

func TestEndWithoutBegin(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.list.End(), cmdlist.ErrorIllegalState{})
	assert.Zero(t, f.log.Count("FinishCommandList"))
}

func TestEndFailureThenReset(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	f.context.FinishResult = immediate.ResultOutOfMemory

	err := f.list.End()
	assert.ErrorIs(t, err, cmdlist.ErrorNativeCall{})
	var native cmdlist.ErrorNativeCall
	require.ErrorAs(t, err, &native)
	assert.Equal(t, int64(immediate.ResultOutOfMemory), native.Code)
	assert.Equal(t, cmdlist.StateRecording, f.list.State())

	require.NoError(t, f.list.Reset())
	assert.Equal(t, cmdlist.StateUninitialized, f.list.State())
	require.Len(t, f.context.Compiled, 1)
	assert.True(t, f.context.Compiled[0].Released)

	require.NoError(t, f.list.Begin())
}

func TestRecordingRequiredForCommands(t *testing.T) {
	f := newFixture(t)
	buffer := &immediate.Buffer{Resource: f.log.NewHandle(), SizeBytes: 4}

	assert.ErrorIs(t, f.list.SetPipeline(newPipeline(f.log)), cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, f.list.SetVertexBuffer(0, buffer), cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, f.list.Draw(3, 1, 0, 0, 0), cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, f.list.UpdateBuffer(buffer, 0, []byte{1}), cmdlist.ErrorIllegalState{})
	assert.Zero(t, f.log.Len())
}

func TestDrawFlushOrder(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	require.NoError(t, f.list.SetPipeline(newPipeline(f.log)))
	vb0 := &immediate.Buffer{Resource: f.log.NewHandle()}
	vb1 := &immediate.Buffer{Resource: f.log.NewHandle()}
	require.NoError(t, f.list.SetVertexBuffer(1, vb1))
	require.NoError(t, f.list.SetVertexBuffer(0, vb0))
	require.NoError(t, f.list.SetVertexBuffer(2, vb0))
	require.NoError(t, f.list.SetViewport(1, cmdlist.Viewport{Width: 3}))
	require.NoError(t, f.list.SetScissorRect(0, gmath.Recti32{X: 1, Y: 2, W: 10, H: 20}))
	f.log.Clear()

	require.NoError(t, f.list.Draw(3, 1, 0, 0, 0))
	assert.Equal(t, []string{"RSSetViewports", "RSSetScissorRects", "IASetVertexBuffers", "DrawIndexed"}, f.log.Names())

	e := f.log.Entries()
	assert.Equal(t, []any{[]cmdlist.Viewport{{}, {Width: 3}}}, e[0].Args)
	assert.Equal(t, []any{[]immediate.Rect{{Left: 1, Top: 2, Right: 11, Bottom: 22}}}, e[1].Args)
	// slot 2 has no stride in the pipeline
	assert.Equal(t, []any{uint32(0), []cmdlist.Handle{vb0.Resource, vb1.Resource, vb0.Resource}, []uint32{24, 8, 0}, []uint32{0, 0, 0}}, e[2].Args)

	f.log.Clear()
	require.NoError(t, f.list.Draw(3, 1, 0, 0, 0))
	assert.Equal(t, 1, f.log.Count("RSSetViewports"), "state is flushed before every draw")
}

func TestDrawSkipsEmptyArrays(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	require.NoError(t, f.list.SetPipeline(newPipeline(f.log)))
	f.log.Clear()

	require.NoError(t, f.list.Draw(3, 1, 0, 0, 0))
	assert.Equal(t, []string{"DrawIndexed"}, f.log.Names())
}

func TestDrawRequiresPipeline(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	assert.ErrorIs(t, f.list.Draw(3, 1, 0, 0, 0), cmdlist.ErrorIllegalState{})
	assert.Zero(t, f.log.Len())
}

func TestDrawInstanced(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	require.NoError(t, f.list.SetPipeline(newPipeline(f.log)))

	require.NoError(t, f.list.Draw(36, 4, 6, -2, 1))
	require.NoError(t, f.list.Draw(36, 1, 0, 0, 3))
	instanced := f.log.Find("DrawIndexedInstanced")
	require.Len(t, instanced, 2)
	assert.Equal(t, []any{uint32(36), uint32(4), uint32(6), int32(-2), uint32(1)}, instanced[0].Args)
	assert.Equal(t, []any{uint32(36), uint32(1), uint32(0), int32(0), uint32(3)}, instanced[1].Args)
	assert.Zero(t, f.log.Count("DrawIndexed"))
}

func TestClearTargets(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	assert.ErrorIs(t, f.list.ClearColorTarget(0, cmdlist.ClearColor{}), cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, f.list.ClearDepthTarget(1, 0), cmdlist.ErrorIllegalState{})

	fb := newFramebuffer(f.log, false)
	require.NoError(t, f.list.SetFramebuffer(fb))
	require.NoError(t, f.list.ClearColorTarget(1, cmdlist.ClearColor{R: 1, A: 1}))
	require.NoError(t, f.list.ClearDepthTarget(1, 7))
	assert.ErrorIs(t, f.list.ClearColorTarget(2, cmdlist.ClearColor{}), cmdlist.ErrorInvalidArgument{})

	assert.Equal(t, []any{fb.ColorTargets[1], [4]float32{1, 0, 0, 1}}, f.log.Find("ClearRenderTargetView")[0].Args)
	assert.Equal(t, []any{fb.DepthTarget, immediate.ClearDepth | immediate.ClearStencil, float32(1), uint8(7)},
		f.log.Find("ClearDepthStencilView")[0].Args)

	noDepth := &immediate.Framebuffer{ColorTargets: []cmdlist.Handle{f.log.NewHandle()}, Size: gmath.Extent3i32{X: 4, Y: 4, Z: 1}}
	require.NoError(t, f.list.SetFramebuffer(noDepth))
	assert.ErrorIs(t, f.list.ClearDepthTarget(1, 0), cmdlist.ErrorIllegalState{})
}

func TestFullViewportAndScissor(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	assert.ErrorIs(t, f.list.SetFullViewport(0), cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, f.list.SetFullScissorRect(0), cmdlist.ErrorIllegalState{})

	require.NoError(t, f.list.SetFramebuffer(newFramebuffer(f.log, false)))
	require.NoError(t, f.list.SetFullViewport(0))
	require.NoError(t, f.list.SetFullScissorRect(1))
	assert.Equal(t, []cmdlist.Viewport{{Width: 1280, Height: 720, MaxDepth: 1}}, f.list.Viewports())
	assert.Equal(t, []gmath.Recti32{{}, {W: 1280, H: 720}}, f.list.ScissorRects())
}

func TestSwapchainRegistration(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	require.NoError(t, f.list.SetFramebuffer(newFramebuffer(f.log, false)))
	assert.Zero(t, f.registry.Len())

	sc := newFramebuffer(f.log, true)
	require.NoError(t, f.list.SetFramebuffer(sc))
	require.NoError(t, f.list.SetFramebuffer(sc))
	assert.Equal(t, []cmdlist.CommandList{f.list}, f.registry.Drain())

	require.NoError(t, f.list.SetFramebuffer(sc))
	f.list.Destroy()
	assert.Zero(t, f.registry.Len(), "destroyed lists leave the registry")
}

func TestNamedRegions(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	assert.ErrorIs(t, f.list.EndNamedRegion(), cmdlist.ErrorIllegalState{})
	require.NoError(t, f.list.BeginNamedRegion("shadows"))
	require.NoError(t, f.list.BeginNamedRegion("cascade0"))
	require.NoError(t, f.list.EndNamedRegion())
	require.NoError(t, f.list.BeginNamedRegion("cascade1"))
	require.NoError(t, f.list.End())

	assert.Equal(t, []string{"BeginEvent", "BeginEvent", "EndEvent", "BeginEvent", "EndEvent", "EndEvent", "FinishCommandList"}, f.log.Names())
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	require.NoError(t, f.list.End())

	f.list.Destroy()
	f.list.Destroy()
	assert.True(t, f.context.Released)
	assert.Equal(t, 1, f.log.Count("ReleaseContext"))
	assert.True(t, f.context.Compiled[0].Released)
	assert.Panics(t, func() { f.list.State() })
}

func TestRejectsForeignResources(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	assert.ErrorIs(t, f.list.SetPipeline(&explicit.Pipeline{}), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetVertexBuffer(0, &explicit.Buffer{}), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetIndexBuffer(&explicit.Buffer{}, cmdlist.IndexFormatUint32), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetFramebuffer(&explicit.Framebuffer{}), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetResourceSet(nil), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetVertexBuffer(16, &immediate.Buffer{}), cmdlist.ErrorInvalidArgument{})
	assert.ErrorIs(t, f.list.SetIndexBuffer(&immediate.Buffer{}, cmdlist.IndexFormat(9)), cmdlist.ErrorInvalidEnumValue{})
	assert.Zero(t, f.log.Len())
}

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

package main

import (
	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/explicit"
	"goarrg.com/rhi/cmdlist/immediate"
	"goarrg.com/rhi/cmdlist/internal/trace"
)

type backend uint32

const (
	backendImmediate backend = iota
	backendExplicit
)

func (b *backend) UnmarshalText(data []byte) error {
	switch string(data) {
	case "immediate":
		*b = backendImmediate
	case "explicit":
		*b = backendExplicit
	default:
		return debug.Errorf("Invalid value: %q", data)
	}
	return nil
}

func (b backend) MarshalText() (text []byte, err error) {
	switch b {
	case backendImmediate:
		return ([]byte)("immediate"), nil
	case backendExplicit:
		return ([]byte)("explicit"), nil
	default:
		return nil, debug.Errorf("Invalid value: %d", b)
	}
}

// natives builds the trace native layer of one backend and the resources of a script on it.
type natives interface {
	newList(config cmdlist.Config, registry *cmdlist.SwapchainRegistry) (cmdlist.CommandList, error)
	newBuffer(bufferDesc) cmdlist.Buffer
	newTexture(textureDesc) (cmdlist.Texture, error)
	newFramebuffer(framebufferDesc) cmdlist.Framebuffer
	newPipeline(pipelineDesc) cmdlist.Pipeline
	newResourceSet(resourceSetDesc) cmdlist.ResourceSet
	// finish hands off whatever the Ended list must keep alive until value is reached.
	finish(l cmdlist.CommandList, q *cmdlist.ReleaseQueue, value uint64) error
}

func newNatives(b backend, log *trace.Log) natives {
	switch b {
	case backendImmediate:
		return &immediateNatives{log: log}
	case backendExplicit:
		return &explicitNatives{log: log, device: trace.NewDevice(log), pool: trace.NewCommandPool(log)}
	}
	panic(debug.Errorf("Invalid backend: %d", b))
}

func textureExtent(t textureDesc) gmath.Extent3i32 {
	return gmath.Extent3i32{X: t.Width, Y: t.Height, Z: 1}
}

type immediateNatives struct {
	log *trace.Log
}

func (n *immediateNatives) newList(config cmdlist.Config, registry *cmdlist.SwapchainRegistry) (cmdlist.CommandList, error) {
	return immediate.New(trace.NewContext(n.log), config, registry)
}

func (n *immediateNatives) newBuffer(b bufferDesc) cmdlist.Buffer {
	return &immediate.Buffer{Resource: n.log.NewHandle(), SizeBytes: b.Size, UsageFlags: cmdlist.BufferUsageFlags(b.Usage)}
}

func (n *immediateNatives) newTexture(t textureDesc) (cmdlist.Texture, error) {
	var tex *immediate.Texture
	var err error
	if t.Cube {
		tex, err = immediate.NewTextureCube(n.log.NewHandle(), cmdlist.Format(t.Format), t.Width, t.Mips)
	} else {
		tex, err = immediate.NewTexture2D(n.log.NewHandle(), cmdlist.Format(t.Format), textureExtent(t), t.Mips, t.Layers)
	}
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (n *immediateNatives) newFramebuffer(f framebufferDesc) cmdlist.Framebuffer {
	fb := &immediate.Framebuffer{
		ColorTargets:    make([]cmdlist.Handle, f.ColorTargets),
		DepthFormat:     cmdlist.Format(f.DepthFormat),
		Size:            gmath.Extent3i32{X: f.Width, Y: f.Height, Z: 1},
		SwapchainTarget: f.Swapchain,
	}
	for i := range fb.ColorTargets {
		fb.ColorTargets[i] = n.log.NewHandle()
	}
	if fb.DepthFormat.Valid() {
		fb.DepthTarget = n.log.NewHandle()
	}
	return fb
}

func (n *immediateNatives) newPipeline(p pipelineDesc) cmdlist.Pipeline {
	shader := func(stage cmdlist.ShaderStage) cmdlist.Handle {
		if cmdlist.ShaderStage(p.Stages).HasBits(stage) {
			return n.log.NewHandle()
		}
		return cmdlist.NullHandle
	}
	return &immediate.Pipeline{
		BlendState:        n.log.NewHandle(),
		BlendFactor:       [4]float32{1, 1, 1, 1},
		SampleMask:        0xFFFFFFFF,
		DepthStencilState: n.log.NewHandle(),
		RasterizerState:   n.log.NewHandle(),
		Topology:          immediate.PrimitiveTopologyTriangleList,
		InputLayout:       n.log.NewHandle(),
		Shaders: immediate.Shaders{
			Vertex:      shader(cmdlist.ShaderStageVertex),
			Geometry:    shader(cmdlist.ShaderStageGeometry),
			TessControl: shader(cmdlist.ShaderStageTessControl),
			TessEval:    shader(cmdlist.ShaderStageTessEval),
			Fragment:    shader(cmdlist.ShaderStageFragment),
		},
		Strides: p.Strides,
	}
}

func (n *immediateNatives) newResourceSet(s resourceSetDesc) cmdlist.ResourceSet {
	set := &immediate.ResourceSet{ResourceLayout: s.layout(), Resources: make([]cmdlist.Handle, len(s.Elements))}
	for i := range set.Resources {
		set.Resources[i] = n.log.NewHandle()
	}
	return set
}

func (n *immediateNatives) finish(cmdlist.CommandList, *cmdlist.ReleaseQueue, uint64) error {
	return nil
}

type explicitNatives struct {
	log    *trace.Log
	device *trace.Device
	pool   *trace.CommandPool
}

func (n *explicitNatives) newList(config cmdlist.Config, registry *cmdlist.SwapchainRegistry) (cmdlist.CommandList, error) {
	return explicit.New(n.device, n.device, n.pool, config, registry)
}

func (n *explicitNatives) newBuffer(b bufferDesc) cmdlist.Buffer {
	return n.device.NewBuffer(b.Size, cmdlist.BufferUsageFlags(b.Usage))
}

func (n *explicitNatives) newTexture(t textureDesc) (cmdlist.Texture, error) {
	info := explicit.ImageCreateInfo{
		Format:        cmdlist.Format(t.Format),
		Extent:        textureExtent(t),
		MipLevels:     max(t.Mips, 1),
		ArrayLayers:   max(t.Layers, 1),
		Tiling:        explicit.ImageTilingOptimal,
		Usage:         explicit.ImageUsageTransferDst | explicit.ImageUsageSampled,
		InitialLayout: explicit.ImageLayoutUndefined,
		Cube:          t.Cube,
	}
	var tex *explicit.Texture
	var err error
	if t.Cube {
		info.ArrayLayers = cmdlist.CubeFaceCount
		tex, err = explicit.NewTextureCube(n.device.NewImage(info), info.Format, t.Width, info.MipLevels, info.InitialLayout)
	} else {
		tex, err = explicit.NewTexture2D(n.device.NewImage(info), info.Format, info.Extent, info.MipLevels, info.ArrayLayers, info.InitialLayout)
	}
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (n *explicitNatives) newFramebuffer(f framebufferDesc) cmdlist.Framebuffer {
	return &explicit.Framebuffer{
		Framebuffer:     n.log.NewHandle(),
		RenderPass:      n.log.NewHandle(),
		Size:            gmath.Extent3i32{X: f.Width, Y: f.Height, Z: 1},
		ColorTargets:    f.ColorTargets,
		DepthFormat:     cmdlist.Format(f.DepthFormat),
		SwapchainTarget: f.Swapchain,
	}
}

func (n *explicitNatives) newPipeline(p pipelineDesc) cmdlist.Pipeline {
	return &explicit.Pipeline{Pipeline: n.log.NewHandle(), Layout: n.log.NewHandle(), Strides: p.Strides}
}

func (n *explicitNatives) newResourceSet(s resourceSetDesc) cmdlist.ResourceSet {
	return &explicit.ResourceSet{ResourceLayout: s.layout(), DescriptorSet: n.log.NewHandle()}
}

func (n *explicitNatives) finish(l cmdlist.CommandList, q *cmdlist.ReleaseQueue, value uint64) error {
	return l.(*explicit.CommandList).QueueRelease(q, value)
}

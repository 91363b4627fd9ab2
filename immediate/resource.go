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
	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
)

type Shaders struct {
	Vertex      cmdlist.Handle
	Geometry    cmdlist.Handle
	TessControl cmdlist.Handle
	TessEval    cmdlist.Handle
	Fragment    cmdlist.Handle
}

// For returns the shader bound to a single stage, NullHandle if the stage is unused.
func (s Shaders) For(stage cmdlist.ShaderStage) cmdlist.Handle {
	switch stage {
	case cmdlist.ShaderStageVertex:
		return s.Vertex
	case cmdlist.ShaderStageGeometry:
		return s.Geometry
	case cmdlist.ShaderStageTessControl:
		return s.TessControl
	case cmdlist.ShaderStageTessEval:
		return s.TessEval
	case cmdlist.ShaderStageFragment:
		return s.Fragment
	}
	return cmdlist.NullHandle
}

type Pipeline struct {
	BlendState        cmdlist.Handle
	BlendFactor       [4]float32
	SampleMask        uint32
	DepthStencilState cmdlist.Handle
	StencilReference  uint32
	RasterizerState   cmdlist.Handle
	Topology          PrimitiveTopology
	InputLayout       cmdlist.Handle
	Shaders           Shaders
	Strides           []uint32
}

var _ cmdlist.Pipeline = (*Pipeline)(nil)

func (p *Pipeline) VertexStrides() []uint32 {
	return p.Strides
}

type Buffer struct {
	Resource   cmdlist.Handle
	SizeBytes  uint64
	UsageFlags cmdlist.BufferUsageFlags
}

var _ cmdlist.Buffer = (*Buffer)(nil)

func (b *Buffer) Size() uint64 {
	return b.SizeBytes
}

func (b *Buffer) Usage() cmdlist.BufferUsageFlags {
	return b.UsageFlags
}

// ResourceSet pairs Resources[i] with ResourceLayout.Elements[i].
type ResourceSet struct {
	ResourceLayout cmdlist.ResourceLayout
	Resources      []cmdlist.Handle
}

var _ cmdlist.ResourceSet = (*ResourceSet)(nil)

func (s *ResourceSet) Layout() cmdlist.ResourceLayout {
	return s.ResourceLayout
}

func (s *ResourceSet) Len() int {
	return len(s.Resources)
}

type Framebuffer struct {
	ColorTargets    []cmdlist.Handle
	DepthTarget     cmdlist.Handle
	DepthFormat     cmdlist.Format
	Size            gmath.Extent3i32
	SwapchainTarget bool
}

var _ cmdlist.Framebuffer = (*Framebuffer)(nil)

func (f *Framebuffer) Extent() gmath.Extent3i32 {
	return f.Size
}

func (f *Framebuffer) NumColorTargets() int {
	return len(f.ColorTargets)
}

func (f *Framebuffer) HasDepthTarget() bool {
	return f.DepthTarget != cmdlist.NullHandle
}

func (f *Framebuffer) Swapchain() bool {
	return f.SwapchainTarget
}

type Texture struct {
	resource  cmdlist.Handle
	format    cmdlist.Format
	extent    gmath.Extent3i32
	mipLevels uint32
	layers    uint32
	cube      bool
}

var _ cmdlist.Texture = (*Texture)(nil)

// NewTexture2D wraps resource, zero mipLevels or arrayLayers count as one.
func NewTexture2D(resource cmdlist.Handle, format cmdlist.Format, extent gmath.Extent3i32, mipLevels, arrayLayers uint32) (*Texture, error) {
	if err := cmdlist.ValidateTexture("NewTexture2D", format, extent); err != nil {
		return nil, err
	}
	return &Texture{
		resource:  resource,
		format:    format,
		extent:    extent,
		mipLevels: max(mipLevels, 1),
		layers:    max(arrayLayers, 1),
	}, nil
}

func NewTextureCube(resource cmdlist.Handle, format cmdlist.Format, size int32, mipLevels uint32) (*Texture, error) {
	extent := gmath.Extent3i32{X: size, Y: size, Z: 1}
	if err := cmdlist.ValidateTexture("NewTextureCube", format, extent); err != nil {
		return nil, err
	}
	return &Texture{
		resource:  resource,
		format:    format,
		extent:    extent,
		mipLevels: max(mipLevels, 1),
		layers:    cmdlist.CubeFaceCount,
		cube:      true,
	}, nil
}

func (t *Texture) Resource() cmdlist.Handle {
	return t.resource
}

func (t *Texture) Format() cmdlist.Format {
	return t.format
}

func (t *Texture) Extent() gmath.Extent3i32 {
	return t.extent
}

func (t *Texture) MipLevels() uint32 {
	return t.mipLevels
}

func (t *Texture) ArrayLayers() uint32 {
	return t.layers
}

func (t *Texture) Cube() bool {
	return t.cube
}

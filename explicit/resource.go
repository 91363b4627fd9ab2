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
	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
)

type Pipeline struct {
	Pipeline cmdlist.Handle
	Layout   cmdlist.Handle
	Strides  []uint32
}

var _ cmdlist.Pipeline = (*Pipeline)(nil)

func (p *Pipeline) VertexStrides() []uint32 {
	return p.Strides
}

// Buffer must be backed by host visible memory to be updated through a command list.
type Buffer struct {
	Buffer     cmdlist.Handle
	Memory     MemoryBlock
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

type ResourceSet struct {
	ResourceLayout cmdlist.ResourceLayout
	DescriptorSet  cmdlist.Handle
}

var _ cmdlist.ResourceSet = (*ResourceSet)(nil)

func (s *ResourceSet) Layout() cmdlist.ResourceLayout {
	return s.ResourceLayout
}

func (s *ResourceSet) Len() int {
	return len(s.ResourceLayout.Elements)
}

type Framebuffer struct {
	Framebuffer     cmdlist.Handle
	RenderPass      cmdlist.Handle
	Size            gmath.Extent3i32
	ColorTargets    int
	DepthFormat     cmdlist.Format
	SwapchainTarget bool
}

var _ cmdlist.Framebuffer = (*Framebuffer)(nil)

func (f *Framebuffer) Extent() gmath.Extent3i32 {
	return f.Size
}

func (f *Framebuffer) NumColorTargets() int {
	return f.ColorTargets
}

func (f *Framebuffer) HasDepthTarget() bool {
	return f.DepthFormat.Valid()
}

func (f *Framebuffer) Swapchain() bool {
	return f.SwapchainTarget
}

/*
Texture tracks the layout of every mip of every array layer, cube textures have six layers
one per face. Layouts are only changed by uploads recorded through a command list and are
assumed to be up to date with the device. Concurrent uploads to one texture from several
lists are not synchronized.
*/
type Texture struct {
	image     cmdlist.Handle
	format    cmdlist.Format
	extent    gmath.Extent3i32
	mipLevels uint32
	layers    uint32
	cube      bool
	layouts   []ImageLayout
}

var _ cmdlist.Texture = (*Texture)(nil)

func newTexture(op string, image cmdlist.Handle, format cmdlist.Format, extent gmath.Extent3i32, mipLevels, layers uint32, cube bool, layout ImageLayout) (*Texture, error) {
	if err := cmdlist.ValidateTexture(op, format, extent); err != nil {
		return nil, err
	}
	t := &Texture{
		image:     image,
		format:    format,
		extent:    extent,
		mipLevels: max(mipLevels, 1),
		layers:    max(layers, 1),
		cube:      cube,
	}
	t.layouts = make([]ImageLayout, t.mipLevels*t.layers)
	for i := range t.layouts {
		t.layouts[i] = layout
	}
	return t, nil
}

// NewTexture2D wraps image, every subresource starts in layout.
func NewTexture2D(image cmdlist.Handle, format cmdlist.Format, extent gmath.Extent3i32, mipLevels, arrayLayers uint32, layout ImageLayout) (*Texture, error) {
	return newTexture("NewTexture2D", image, format, extent, mipLevels, arrayLayers, false, layout)
}

func NewTextureCube(image cmdlist.Handle, format cmdlist.Format, size int32, mipLevels uint32, layout ImageLayout) (*Texture, error) {
	return newTexture("NewTextureCube", image, format, gmath.Extent3i32{X: size, Y: size, Z: 1}, mipLevels, cmdlist.CubeFaceCount, true, layout)
}

func (t *Texture) Image() cmdlist.Handle {
	return t.image
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

// Layout returns the recorded layout of (mipLevel, arrayLayer), for cube textures the layer is the face.
func (t *Texture) Layout(mipLevel, arrayLayer uint32) (ImageLayout, error) {
	if mipLevel >= t.mipLevels || arrayLayer >= t.layers {
		return ImageLayoutUndefined, cmdlist.ErrorInvalidArgument{Op: "Layout", Reason: "subresource out of range"}
	}
	return t.layouts[cmdlist.Subresource(mipLevel, arrayLayer, t.mipLevels)], nil
}

func (t *Texture) setLayout(mipLevel, arrayLayer uint32, layout ImageLayout) {
	t.layouts[cmdlist.Subresource(mipLevel, arrayLayer, t.mipLevels)] = layout
}

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
	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/internal/util"
)

// stagingImage is a linear host visible image owned by a command list until its work completes.
type stagingImage struct {
	device    Device
	allocator Allocator
	image     cmdlist.Handle
	memory    MemoryBlock
	bound     bool
}

var _ cmdlist.Destroyer = (*stagingImage)(nil)

func (s *stagingImage) Destroy() {
	if s.image != cmdlist.NullHandle {
		s.device.DestroyImage(s.image)
		s.image = cmdlist.NullHandle
	}
	if s.bound {
		s.allocator.Free(s.memory)
		s.bound = false
	}
}

func (l *CommandList) createStagingImage(format cmdlist.Format, width, height uint32) (*stagingImage, error) {
	s := &stagingImage{device: l.device, allocator: l.allocator}

	image, r := l.device.CreateImage(ImageCreateInfo{
		Format:        format,
		Extent:        gmath.Extent3i32{X: int32(width), Y: int32(height), Z: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Tiling:        ImageTilingLinear,
		Usage:         ImageUsageTransferSrc,
		InitialLayout: ImageLayoutPreinitialized,
	})
	if r.Failed() {
		return nil, nativeError("CreateImage", r)
	}
	s.image = image

	req := l.device.ImageMemoryRequirements(image)
	block, err := l.allocator.Allocate(req, MemoryPropertyHostVisible|MemoryPropertyHostCoherent)
	if err != nil {
		s.Destroy()
		return nil, debug.ErrorWrapf(err, "Failed to allocate %d bytes for staging image", req.Size)
	}
	s.memory = block
	s.bound = true

	if r := l.device.BindImageMemory(image, block.Memory, block.Offset); r.Failed() {
		s.Destroy()
		return nil, nativeError("BindImageMemory", r)
	}
	return s, nil
}

func (l *CommandList) fillStagingImage(s *stagingImage, format cmdlist.Format, data []byte, width, height uint32) error {
	layout := l.device.ImageSubresourceLayout(s.image, aspectOf(format), 0, 0)
	mapped, r := l.device.MapMemory(s.memory.Memory, s.memory.Offset, s.memory.Size)
	if r.Failed() {
		return nativeError("MapMemory", r)
	}
	defer l.device.UnmapMemory(s.memory.Memory)

	rowSize := format.RowPitch(width)
	numRows := format.NumRows(height)
	pitch := max(layout.RowPitch, rowSize)
	if layout.Offset > uint64(len(mapped)) || (numRows-1)*pitch+rowSize > uint64(len(mapped))-layout.Offset {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateTexture", Reason: "staging subresource outside mapped memory"}
	}
	util.CopyRows(mapped[layout.Offset:], pitch, data, rowSize, rowSize, numRows)
	return nil
}

func (l *CommandList) UpdateTexture2D(t cmdlist.Texture, data []byte, x, y, width, height, mipLevel, arrayLayer uint32) error {
	if err := l.recording("UpdateTexture2D"); err != nil {
		return err
	}
	tex, ok := t.(*Texture)
	if !ok || tex == nil {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateTexture2D", Reason: "not an explicit texture"}
	}
	return l.uploadTexture("UpdateTexture2D", tex, data, x, y, width, height, mipLevel, arrayLayer)
}

func (l *CommandList) UpdateTextureCube(t cmdlist.Texture, data []byte, face cmdlist.CubeFace, x, y, width, height, mipLevel uint32) error {
	if err := l.recording("UpdateTextureCube"); err != nil {
		return err
	}
	tex, ok := t.(*Texture)
	if !ok || tex == nil || !tex.cube {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateTextureCube", Reason: "not an explicit cube texture"}
	}
	layer, err := face.ArrayLayer()
	if err != nil {
		return err
	}
	return l.uploadTexture("UpdateTextureCube", tex, data, x, y, width, height, mipLevel, layer)
}

/*
uploadTexture copies data through a staging image into one mip of one layer of tex and
leaves that subresource in ShaderReadOnly. Copies cannot be recorded inside a render pass.
*/
func (l *CommandList) uploadTexture(op string, tex *Texture, data []byte, x, y, width, height, mipLevel, arrayLayer uint32) error {
	if x != 0 || y != 0 {
		return cmdlist.ErrorUnsupportedOperation{Op: op, Feature: "texture update at a non zero offset"}
	}
	if width == 0 || height == 0 {
		return nil
	}
	if err := cmdlist.ValidateTextureRegion(op, tex, data, x, y, width, height, mipLevel, arrayLayer); err != nil {
		return err
	}
	if l.currentRenderPass != (renderPass{}) {
		return cmdlist.ErrorIllegalState{Op: op, Reason: "texture upload inside a render pass"}
	}
	oldLayout, err := tex.Layout(mipLevel, arrayLayer)
	if err != nil {
		return err
	}

	staging, err := l.createStagingImage(tex.format, width, height)
	if err != nil {
		logger.EPrintf("[%s] %s: %s", l.config.Name, op, err)
		return err
	}
	if err := l.fillStagingImage(staging, tex.format, data, width, height); err != nil {
		staging.Destroy()
		logger.EPrintf("[%s] %s: %s", l.config.Name, op, err)
		return err
	}

	aspect := aspectOf(tex.format)

	l.cb.PipelineBarrier(PipelineStageHost, PipelineStageTransfer, []ImageBarrier{
		transition(staging.image, ImageSubresourceRange{
			Aspect:       aspect,
			NumMipLevels: 1, NumArrayLayers: 1,
		}, ImageLayoutPreinitialized, ImageLayoutTransferSrc),
	})

	dstRange := ImageSubresourceRange{
		Aspect:       aspect,
		BaseMipLevel: mipLevel, NumMipLevels: 1,
		BaseArrayLayer: arrayLayer, NumArrayLayers: 1,
	}
	toDst := transition(tex.image, dstRange, oldLayout, ImageLayoutTransferDst)
	l.cb.PipelineBarrier(toDst.Src.Stage, toDst.Dst.Stage, []ImageBarrier{toDst})

	l.cb.CopyImage(staging.image, ImageLayoutTransferSrc, tex.image, ImageLayoutTransferDst, []ImageCopy{{
		SrcSubresource: ImageSubresourceLayers{Aspect: aspect, MipLevel: 0, BaseArrayLayer: 0, NumArrayLayers: 1},
		DstSubresource: ImageSubresourceLayers{Aspect: aspect, MipLevel: mipLevel, BaseArrayLayer: arrayLayer, NumArrayLayers: 1},
		DstOffset:      gmath.Vector3i32{X: int32(x), Y: int32(y), Z: 0},
		Extent:         gmath.Extent3i32{X: int32(width), Y: int32(height), Z: 1},
	}})

	toRead := transition(tex.image, dstRange, ImageLayoutTransferDst, ImageLayoutShaderReadOnly)
	l.cb.PipelineBarrier(toRead.Src.Stage, toRead.Dst.Stage, []ImageBarrier{toRead})
	tex.setLayout(mipLevel, arrayLayer, ImageLayoutShaderReadOnly)

	l.staging = append(l.staging, staging)
	logger.VPrintf("[%s] %s mip %d layer %d %dx%d: %s -> %s", l.config.Name, op, mipLevel, arrayLayer, width, height,
		oldLayout, ImageLayoutShaderReadOnly)
	return nil
}

// UpdateBuffer maps the buffer's memory and writes data at offset right away.
func (l *CommandList) UpdateBuffer(b cmdlist.Buffer, offset uint64, data []byte) error {
	if err := l.recording("UpdateBuffer"); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	buffer, ok := b.(*Buffer)
	if !ok || buffer == nil {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateBuffer", Reason: "not an explicit buffer"}
	}

	size := uint64(len(data))
	if offset > buffer.SizeBytes || size > buffer.SizeBytes-offset {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateBuffer", Reason: "write exceeds buffer size"}
	}

	mapped, r := l.device.MapMemory(buffer.Memory.Memory, buffer.Memory.Offset+offset, size)
	if r.Failed() {
		logger.EPrintf("[%s] MapMemory failed: %s", l.config.Name, r)
		return nativeError("MapMemory", r)
	}
	copy(mapped, data)
	l.device.UnmapMemory(buffer.Memory.Memory)
	return nil
}

// Staging returns the number of staging images held by the list.
func (l *CommandList) Staging() int {
	l.noCopy.Check()
	return len(l.staging)
}

/*
QueueRelease hands the staging images of an Ended list to q, they are destroyed once the
submission that executes this list signals value. Images of earlier recordings that were
never handed off go with them, value is at least as late as their own submissions.
*/
func (l *CommandList) QueueRelease(q *cmdlist.ReleaseQueue, value uint64) error {
	l.noCopy.Check()
	if err := l.state.Require("QueueRelease", cmdlist.StateEnded); err != nil {
		return err
	}
	if len(l.staging) == 0 {
		return nil
	}

	destroyers := make([]cmdlist.Destroyer, len(l.staging))
	for i, s := range l.staging {
		destroyers[i] = s
	}
	q.Enqueue(value, destroyers...)
	logger.VPrintf("[%s] Queued %d staging image(s) for release at %d", l.config.Name, len(destroyers), value)
	clear(l.staging)
	l.staging = l.staging[:0]
	l.submitted = 0
	return nil
}

// discardStaging destroys the staging images of the recording being discarded, it never reached the device.
func (l *CommandList) discardStaging() {
	for _, s := range l.staging[l.submitted:] {
		s.Destroy()
	}
	clear(l.staging[l.submitted:])
	l.staging = l.staging[:l.submitted]
}

func (l *CommandList) destroyStaging() {
	if l.submitted > 0 {
		logger.VPrintf("[%s] Destroying %d staging image(s) never queued for release", l.config.Name, l.submitted)
	}
	for _, s := range l.staging {
		s.Destroy()
	}
	clear(l.staging)
	l.staging = l.staging[:0]
	l.submitted = 0
}

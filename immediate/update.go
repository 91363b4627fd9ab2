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
	"math"

	"goarrg.com/rhi/cmdlist"
)

/*
UpdateBuffer writes data at offset. Constant buffers only accept whole buffer updates, a
partial update of one fails with ErrorUnsupportedOperation.
*/
func (l *CommandList) UpdateBuffer(b cmdlist.Buffer, offset uint64, data []byte) error {
	if err := l.recording("UpdateBuffer"); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	buffer, ok := b.(*Buffer)
	if !ok || buffer == nil {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateBuffer", Reason: "not an immediate buffer"}
	}

	size := uint64(len(data))
	if offset > buffer.SizeBytes || size > buffer.SizeBytes-offset {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateBuffer", Reason: "write exceeds buffer size"}
	}
	if offset+size > math.MaxUint32 {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateBuffer", Reason: "write exceeds addressable range"}
	}

	if buffer.UsageFlags.HasBits(cmdlist.BufferUsageUniformBuffer) {
		if offset != 0 || size != buffer.SizeBytes {
			return cmdlist.ErrorUnsupportedOperation{Op: "UpdateBuffer", Feature: "partial constant buffer update"}
		}
		l.context.UpdateSubresource(buffer.Resource, 0, nil, data, 0, 0)
		return nil
	}

	box := Box{
		Left: uint32(offset), Right: uint32(offset + size),
		Top: 0, Bottom: 1,
		Front: 0, Back: 1,
	}
	l.context.UpdateSubresource(buffer.Resource, 0, &box, data, 0, 0)
	return nil
}

func (l *CommandList) UpdateTexture2D(t cmdlist.Texture, data []byte, x, y, width, height, mipLevel, arrayLayer uint32) error {
	if err := l.recording("UpdateTexture2D"); err != nil {
		return err
	}
	tex, ok := t.(*Texture)
	if !ok || tex == nil {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateTexture2D", Reason: "not an immediate texture"}
	}
	return l.updateTexture("UpdateTexture2D", tex, data, x, y, width, height, mipLevel, arrayLayer)
}

func (l *CommandList) UpdateTextureCube(t cmdlist.Texture, data []byte, face cmdlist.CubeFace, x, y, width, height, mipLevel uint32) error {
	if err := l.recording("UpdateTextureCube"); err != nil {
		return err
	}
	tex, ok := t.(*Texture)
	if !ok || tex == nil || !tex.cube {
		return cmdlist.ErrorInvalidArgument{Op: "UpdateTextureCube", Reason: "not an immediate cube texture"}
	}
	layer, err := face.ArrayLayer()
	if err != nil {
		return err
	}
	return l.updateTexture("UpdateTextureCube", tex, data, x, y, width, height, mipLevel, layer)
}

func (l *CommandList) updateTexture(op string, tex *Texture, data []byte, x, y, width, height, mipLevel, arrayLayer uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if err := cmdlist.ValidateTextureRegion(op, tex, data, x, y, width, height, mipLevel, arrayLayer); err != nil {
		return err
	}

	rowPitch := tex.format.RowPitch(width)
	depthPitch := rowPitch * tex.format.NumRows(height)
	if depthPitch > math.MaxUint32 {
		return cmdlist.ErrorInvalidArgument{Op: op, Reason: "region exceeds addressable range"}
	}

	box := Box{
		Left: x, Right: x + width,
		Top: y, Bottom: y + height,
		Front: 0, Back: 1,
	}
	sub := cmdlist.Subresource(mipLevel, arrayLayer, tex.mipLevels)
	l.context.UpdateSubresource(tex.resource, sub, &box, data[:depthPitch], uint32(rowPitch), uint32(depthPitch))
	logger.VPrintf("[%s] %s subresource %d %dx%d at (%d, %d)", l.config.Name, op, sub, width, height, x, y)
	return nil
}

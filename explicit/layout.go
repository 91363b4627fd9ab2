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
	"fmt"

	"goarrg.com/rhi/cmdlist"
)

type ImageLayout uint32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutGeneral                ImageLayout = 1
	ImageLayoutColorAttachment        ImageLayout = 2
	ImageLayoutDepthStencilAttachment ImageLayout = 3
	ImageLayoutDepthStencilReadOnly   ImageLayout = 4
	ImageLayoutShaderReadOnly         ImageLayout = 5
	ImageLayoutTransferSrc            ImageLayout = 6
	ImageLayoutTransferDst            ImageLayout = 7
	ImageLayoutPreinitialized         ImageLayout = 8
	ImageLayoutPresent                ImageLayout = 1000001002
)

func (l ImageLayout) String() string {
	switch l {
	case ImageLayoutUndefined:
		return "Undefined"
	case ImageLayoutGeneral:
		return "General"
	case ImageLayoutColorAttachment:
		return "ColorAttachment"
	case ImageLayoutDepthStencilAttachment:
		return "DepthStencilAttachment"
	case ImageLayoutDepthStencilReadOnly:
		return "DepthStencilReadOnly"
	case ImageLayoutShaderReadOnly:
		return "ShaderReadOnly"
	case ImageLayoutTransferSrc:
		return "TransferSrc"
	case ImageLayoutTransferDst:
		return "TransferDst"
	case ImageLayoutPreinitialized:
		return "Preinitialized"
	case ImageLayoutPresent:
		return "Present"
	}
	return fmt.Sprintf("ImageLayout(%d)", uint32(l))
}

/*
barrierInfo returns the stages and accesses that may touch an image in layout l, used as
the source scope when leaving l and the destination scope when entering it.
*/
func barrierInfo(l ImageLayout) ImageBarrierInfo {
	switch l {
	case ImageLayoutUndefined:
		return ImageBarrierInfo{Stage: PipelineStageTopOfPipe, Access: AccessNone, Layout: l}
	case ImageLayoutPreinitialized:
		return ImageBarrierInfo{Stage: PipelineStageHost, Access: AccessHostWrite, Layout: l}
	case ImageLayoutTransferSrc:
		return ImageBarrierInfo{Stage: PipelineStageTransfer, Access: AccessTransferRead, Layout: l}
	case ImageLayoutTransferDst:
		return ImageBarrierInfo{Stage: PipelineStageTransfer, Access: AccessTransferWrite, Layout: l}
	case ImageLayoutShaderReadOnly:
		return ImageBarrierInfo{Stage: PipelineStageVertexShader | PipelineStageFragmentShader, Access: AccessShaderRead, Layout: l}
	case ImageLayoutColorAttachment:
		return ImageBarrierInfo{Stage: PipelineStageColorAttachmentOutput, Access: AccessColorAttachmentWrite, Layout: l}
	case ImageLayoutDepthStencilAttachment:
		return ImageBarrierInfo{
			Stage:  PipelineStageEarlyFragmentTests | PipelineStageLateFragmentTests,
			Access: AccessDepthStencilAttachmentRead | AccessDepthStencilAttachmentWrite, Layout: l,
		}
	case ImageLayoutDepthStencilReadOnly:
		return ImageBarrierInfo{
			Stage:  PipelineStageEarlyFragmentTests | PipelineStageLateFragmentTests | PipelineStageFragmentShader,
			Access: AccessDepthStencilAttachmentRead | AccessShaderRead, Layout: l,
		}
	case ImageLayoutPresent:
		return ImageBarrierInfo{Stage: PipelineStageBottomOfPipe, Access: AccessNone, Layout: l}
	}
	return ImageBarrierInfo{Stage: PipelineStageAllCommands, Access: AccessMemoryRead | AccessMemoryWrite, Layout: l}
}

// transition builds the barrier moving subresource range r of image from one layout to another.
func transition(image cmdlist.Handle, r ImageSubresourceRange, from, to ImageLayout) ImageBarrier {
	return ImageBarrier{
		Image: image,
		Src:   barrierInfo(from),
		Dst:   barrierInfo(to),
		Range: r,
	}
}

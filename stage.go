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

package cmdlist

import (
	"strings"
)

type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageGeometry
	ShaderStageTessControl
	ShaderStageTessEval
	ShaderStageFragment
)

// ShaderStages lists every stage in the order the dispatcher visits them.
var ShaderStages = [...]ShaderStage{
	ShaderStageVertex,
	ShaderStageGeometry,
	ShaderStageTessControl,
	ShaderStageTessEval,
	ShaderStageFragment,
}

func (s ShaderStage) HasBits(want ShaderStage) bool {
	return hasBits(s, want)
}

func (s ShaderStage) String() string {
	str := ""
	if s.HasBits(ShaderStageVertex) {
		str += "Vertex|"
	}
	if s.HasBits(ShaderStageGeometry) {
		str += "Geometry|"
	}
	if s.HasBits(ShaderStageTessControl) {
		str += "TessControl|"
	}
	if s.HasBits(ShaderStageTessEval) {
		str += "TessEval|"
	}
	if s.HasBits(ShaderStageFragment) {
		str += "Fragment|"
	}
	return strings.TrimSuffix(str, "|")
}

type ResourceKind uint32

const (
	ResourceKindUniformBuffer ResourceKind = iota
	ResourceKindTextureView
	ResourceKindSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindUniformBuffer:
		return "UniformBuffer"
	case ResourceKindTextureView:
		return "TextureView"
	case ResourceKindSampler:
		return "Sampler"
	}
	return "Unknown"
}

/*
StageBinder is the per-stage bind surface of a push-state backend, each call binds h at
slot for exactly one stage.
*/
type StageBinder interface {
	BindUniformBuffer(stage ShaderStage, slot uint32, h Handle)
	BindTextureView(stage ShaderStage, slot uint32, h Handle)
	BindSampler(stage ShaderStage, slot uint32, h Handle)
}

/*
DispatchResource issues one bind call on b for each stage present in stages. Stages not in
the mask receive nothing. Returns the number of bind calls made.
*/
func DispatchResource(b StageBinder, kind ResourceKind, slot uint32, stages ShaderStage, h Handle) (int, error) {
	var bind func(ShaderStage, uint32, Handle)

	switch kind {
	case ResourceKindUniformBuffer:
		bind = b.BindUniformBuffer
	case ResourceKindTextureView:
		bind = b.BindTextureView
	case ResourceKindSampler:
		bind = b.BindSampler
	default:
		return 0, ErrorInvalidEnumValue{Type: "ResourceKind", Value: int64(kind)}
	}

	n := 0
	for _, s := range ShaderStages {
		if stages.HasBits(s) {
			bind(s, slot, h)
			n++
		}
	}
	instance.logger.VPrintf("Dispatched %s at slot %d to %d stage(s) [%s]", kind, slot, n, stages)
	return n, nil
}

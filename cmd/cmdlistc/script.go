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
	"io"
	"strings"

	"goarrg.com/debug"
	"goarrg.com/rhi/cmdlist"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

type flagBits interface {
	constraints.Unsigned
	String() string
}

// parseFlags parses "A|B" where every part is the String() of a single bit of T.
func parseFlags[T flagBits](data []byte) (T, error) {
	var ret T
	for _, part := range strings.Split(string(data), "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for i := 0; i < 32; i++ {
			bit := T(1) << i
			if strings.EqualFold(bit.String(), part) {
				ret |= bit
				found = true
				break
			}
		}
		if !found {
			return 0, debug.Errorf("Invalid flag: %q", part)
		}
	}
	return ret, nil
}

type stages cmdlist.ShaderStage

func (s *stages) UnmarshalText(data []byte) error {
	v, err := parseFlags[cmdlist.ShaderStage](data)
	*s = stages(v)
	return err
}

type usage cmdlist.BufferUsageFlags

func (u *usage) UnmarshalText(data []byte) error {
	v, err := parseFlags[cmdlist.BufferUsageFlags](data)
	*u = usage(v)
	return err
}

type format cmdlist.Format

func (f *format) UnmarshalText(data []byte) error {
	for v := cmdlist.Format(1); v.Valid(); v++ {
		if strings.EqualFold(v.String(), string(data)) {
			*f = format(v)
			return nil
		}
	}
	return debug.Errorf("Invalid format: %q", data)
}

type kind cmdlist.ResourceKind

func (k *kind) UnmarshalText(data []byte) error {
	for _, v := range []cmdlist.ResourceKind{cmdlist.ResourceKindUniformBuffer, cmdlist.ResourceKindTextureView, cmdlist.ResourceKindSampler} {
		if strings.EqualFold(v.String(), string(data)) {
			*k = kind(v)
			return nil
		}
	}
	return debug.Errorf("Invalid resource kind: %q", data)
}

type indexFormat cmdlist.IndexFormat

func (f *indexFormat) UnmarshalText(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "uint16":
		*f = indexFormat(cmdlist.IndexFormatUint16)
	case "uint32":
		*f = indexFormat(cmdlist.IndexFormatUint32)
	default:
		return debug.Errorf("Invalid index format: %q", data)
	}
	return nil
}

type cubeFace cmdlist.CubeFace

func (f *cubeFace) UnmarshalText(data []byte) error {
	for v := cmdlist.CubeFace(0); v.Valid(); v++ {
		if strings.EqualFold(v.String(), string(data)) {
			*f = cubeFace(v)
			return nil
		}
	}
	return debug.Errorf("Invalid cube face: %q", data)
}

type bufferDesc struct {
	Name  string `yaml:"name"`
	Size  uint64 `yaml:"size"`
	Usage usage  `yaml:"usage"`
}

type textureDesc struct {
	Name   string `yaml:"name"`
	Format format `yaml:"format"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
	Mips   uint32 `yaml:"mips"`
	Layers uint32 `yaml:"layers"`
	Cube   bool   `yaml:"cube"`
}

type framebufferDesc struct {
	Name         string `yaml:"name"`
	Width        int32  `yaml:"width"`
	Height       int32  `yaml:"height"`
	ColorTargets int    `yaml:"colorTargets"`
	DepthFormat  format `yaml:"depthFormat"`
	Swapchain    bool   `yaml:"swapchain"`
}

type pipelineDesc struct {
	Name    string   `yaml:"name"`
	Stages  stages   `yaml:"stages"`
	Strides []uint32 `yaml:"strides"`
}

type elementDesc struct {
	Name   string `yaml:"name"`
	Kind   kind   `yaml:"kind"`
	Stages stages `yaml:"stages"`
	Slot   uint32 `yaml:"slot"`
}

type resourceSetDesc struct {
	Name     string        `yaml:"name"`
	Elements []elementDesc `yaml:"elements"`
}

func (s resourceSetDesc) layout() cmdlist.ResourceLayout {
	l := cmdlist.ResourceLayout{Elements: make([]cmdlist.ResourceLayoutElement, len(s.Elements))}
	for i, e := range s.Elements {
		l.Elements[i] = cmdlist.ResourceLayoutElement{
			Name:   e.Name,
			Kind:   cmdlist.ResourceKind(e.Kind),
			Stages: cmdlist.ShaderStage(e.Stages),
			Slot:   e.Slot,
		}
	}
	return l
}

// command is one recorded call, Op selects which of the other fields are read.
type command struct {
	Op string `yaml:"op"`

	Pipeline    string      `yaml:"pipeline"`
	Buffer      string      `yaml:"buffer"`
	Texture     string      `yaml:"texture"`
	ResourceSet string      `yaml:"resourceSet"`
	Framebuffer string      `yaml:"framebuffer"`
	IndexFormat indexFormat `yaml:"indexFormat"`

	Slot     uint32    `yaml:"slot"`
	Index    uint32    `yaml:"index"`
	Viewport []float32 `yaml:"viewport"`
	Rect     []int32   `yaml:"rect"`
	Color    []float32 `yaml:"color"`
	Depth    float32   `yaml:"depth"`
	Stencil  uint8     `yaml:"stencil"`

	IndexCount    uint32  `yaml:"indexCount"`
	InstanceCount *uint32 `yaml:"instanceCount"`
	IndexStart    uint32  `yaml:"indexStart"`
	VertexOffset  int32   `yaml:"vertexOffset"`
	InstanceStart uint32  `yaml:"instanceStart"`

	Offset uint64   `yaml:"offset"`
	Size   uint64   `yaml:"size"`
	X      uint32   `yaml:"x"`
	Y      uint32   `yaml:"y"`
	Width  uint32   `yaml:"width"`
	Height uint32   `yaml:"height"`
	Mip    uint32   `yaml:"mip"`
	Layer  uint32   `yaml:"layer"`
	Face   cubeFace `yaml:"face"`

	Name string `yaml:"name"`
}

type listDesc struct {
	Name     string    `yaml:"name"`
	Commands []command `yaml:"commands"`
}

type script struct {
	Buffers      []bufferDesc      `yaml:"buffers"`
	Textures     []textureDesc     `yaml:"textures"`
	Framebuffers []framebufferDesc `yaml:"framebuffers"`
	Pipelines    []pipelineDesc    `yaml:"pipelines"`
	ResourceSets []resourceSetDesc `yaml:"resourceSets"`
	Lists        []listDesc        `yaml:"lists"`
}

func parseScript(r io.Reader) (*script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	s := &script{}
	if err := dec.Decode(s); err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to decode script")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *script) validate() error {
	if len(s.Lists) == 0 {
		return debug.Errorf("Script has no lists")
	}

	names := map[string]string{}
	add := func(typ, name string) error {
		if name == "" {
			return debug.Errorf("Unnamed %s", typ)
		}
		if other, ok := names[name]; ok {
			return debug.Errorf("%s %q conflicts with %s of the same name", typ, name, other)
		}
		names[name] = typ
		return nil
	}

	for _, b := range s.Buffers {
		if err := add("buffer", b.Name); err != nil {
			return err
		}
	}
	for _, t := range s.Textures {
		if err := add("texture", t.Name); err != nil {
			return err
		}
		if !cmdlist.Format(t.Format).Valid() {
			return debug.Errorf("texture %q has no format", t.Name)
		}
		if t.Width <= 0 || t.Height <= 0 {
			return debug.Errorf("texture %q has an empty extent", t.Name)
		}
		if t.Cube && t.Width != t.Height {
			return debug.Errorf("cube texture %q is not square", t.Name)
		}
	}
	for _, f := range s.Framebuffers {
		if err := add("framebuffer", f.Name); err != nil {
			return err
		}
	}
	for _, p := range s.Pipelines {
		if err := add("pipeline", p.Name); err != nil {
			return err
		}
	}
	for _, rs := range s.ResourceSets {
		if err := add("resource set", rs.Name); err != nil {
			return err
		}
	}
	for _, l := range s.Lists {
		if err := add("list", l.Name); err != nil {
			return err
		}
	}
	return nil
}

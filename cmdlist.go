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

/*
Package cmdlist defines a backend agnostic command list for recording draws, clears, state
changes and resource uploads. The immediate package translates it onto a push-state device
context and the explicit package onto an explicitly encoded command buffer with render
passes and image layout tracking.
*/
package cmdlist

import (
	"goarrg.com/gmath"
)

type State uint32

const (
	StateUninitialized State = iota
	StateRecording
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateRecording:
		return "Recording"
	case StateEnded:
		return "Ended"
	}
	return "Invalid"
}

// Require returns ErrorIllegalState for op unless s is want.
func (s State) Require(op string, want State) error {
	if s != want {
		return ErrorIllegalState{Op: op, Reason: "command list is " + s.String() + ", expected " + want.String()}
	}
	return nil
}

// Bindings is a snapshot of the state tracked by a command list.
type Bindings struct {
	Pipeline      Pipeline
	ResourceSet   ResourceSet
	Framebuffer   Framebuffer
	IndexBuffer   Buffer
	VertexBuffers []Buffer
}

func (b Bindings) Empty() bool {
	return b.Pipeline == nil && b.ResourceSet == nil && b.Framebuffer == nil &&
		b.IndexBuffer == nil && len(b.VertexBuffers) == 0
}

/*
CommandList records rendering operations for later execution. A list is recorded by one
goroutine at a time, distinct lists may be recorded concurrently.

Lifecycle: Begin moves Uninitialized to Recording, End moves Recording to Ended and
produces the Artifact, Reset returns to Uninitialized from any state. Recording operations
fail with ErrorIllegalState outside of Recording.
*/
type CommandList interface {
	State() State
	Begin() error
	End() error
	Reset() error
	Destroy()

	// Artifact returns the compiled output, only valid while Ended.
	Artifact() (Artifact, error)
	Bindings() Bindings
	Viewports() []Viewport
	ScissorRects() []gmath.Recti32

	SetPipeline(p Pipeline) error
	SetVertexBuffer(slot uint32, b Buffer) error
	SetIndexBuffer(b Buffer, format IndexFormat) error
	SetResourceSet(set ResourceSet) error
	SetFramebuffer(fb Framebuffer) error

	SetViewport(index uint32, v Viewport) error
	SetScissorRect(index uint32, r gmath.Recti32) error
	SetFullViewport(index uint32) error
	SetFullScissorRect(index uint32) error

	Draw(indexCount, instanceCount, indexStart uint32, vertexOffset int32, instanceStart uint32) error
	ClearColorTarget(index uint32, c ClearColor) error
	ClearDepthTarget(depth float32, stencil uint8) error

	UpdateBuffer(b Buffer, offset uint64, data []byte) error
	UpdateTexture2D(t Texture, data []byte, x, y, width, height, mipLevel, arrayLayer uint32) error
	UpdateTextureCube(t Texture, data []byte, face CubeFace, x, y, width, height, mipLevel uint32) error

	BeginNamedRegion(name string) error
	EndNamedRegion() error
}

// FullViewport returns a viewport covering fb with a [0, 1] depth range.
func FullViewport(fb Framebuffer) Viewport {
	e := fb.Extent()
	return Viewport{Width: float32(e.X), Height: float32(e.Y), MinDepth: 0, MaxDepth: 1}
}

func FullScissorRect(fb Framebuffer) gmath.Recti32 {
	e := fb.Extent()
	return gmath.Recti32{X: 0, Y: 0, W: e.X, H: e.Y}
}

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
	"fmt"
	"io"

	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/cmdlist"
	"goarrg.com/rhi/cmdlist/internal/trace"
	"golang.org/x/sync/errgroup"
)

type resources struct {
	buffers      map[string]cmdlist.Buffer
	textures     map[string]cmdlist.Texture
	framebuffers map[string]cmdlist.Framebuffer
	pipelines    map[string]cmdlist.Pipeline
	resourceSets map[string]cmdlist.ResourceSet
}

func newResources(s *script, n natives) (*resources, error) {
	r := &resources{
		buffers:      map[string]cmdlist.Buffer{},
		textures:     map[string]cmdlist.Texture{},
		framebuffers: map[string]cmdlist.Framebuffer{},
		pipelines:    map[string]cmdlist.Pipeline{},
		resourceSets: map[string]cmdlist.ResourceSet{},
	}
	for _, b := range s.Buffers {
		r.buffers[b.Name] = n.newBuffer(b)
	}
	for _, t := range s.Textures {
		tex, err := n.newTexture(t)
		if err != nil {
			return nil, debug.ErrorWrapf(err, "Texture %q", t.Name)
		}
		r.textures[t.Name] = tex
	}
	for _, f := range s.Framebuffers {
		r.framebuffers[f.Name] = n.newFramebuffer(f)
	}
	for _, p := range s.Pipelines {
		r.pipelines[p.Name] = n.newPipeline(p)
	}
	for _, rs := range s.ResourceSets {
		r.resourceSets[rs.Name] = n.newResourceSet(rs)
	}
	return r, nil
}

func lookup[T any](m map[string]T, typ, name string) (T, error) {
	v, ok := m[name]
	if !ok {
		return v, debug.Errorf("Unknown %s: %q", typ, name)
	}
	return v, nil
}

// fill returns size bytes of a repeating pattern so uploads are recognizable in memory dumps.
func fill(size uint64) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func floats(v []float32, n int) ([]float32, error) {
	if len(v) != n {
		return nil, debug.Errorf("Expected %d values, got %d", n, len(v))
	}
	return v, nil
}

func (r *resources) run(l cmdlist.CommandList, c command) error {
	switch c.Op {
	case "setPipeline":
		p, err := lookup(r.pipelines, "pipeline", c.Pipeline)
		if err != nil {
			return err
		}
		return l.SetPipeline(p)

	case "setVertexBuffer":
		b, err := lookup(r.buffers, "buffer", c.Buffer)
		if err != nil {
			return err
		}
		return l.SetVertexBuffer(c.Slot, b)

	case "setIndexBuffer":
		b, err := lookup(r.buffers, "buffer", c.Buffer)
		if err != nil {
			return err
		}
		return l.SetIndexBuffer(b, cmdlist.IndexFormat(c.IndexFormat))

	case "setResourceSet":
		s, err := lookup(r.resourceSets, "resource set", c.ResourceSet)
		if err != nil {
			return err
		}
		return l.SetResourceSet(s)

	case "setFramebuffer":
		f, err := lookup(r.framebuffers, "framebuffer", c.Framebuffer)
		if err != nil {
			return err
		}
		return l.SetFramebuffer(f)

	case "setViewport":
		v, err := floats(c.Viewport, 6)
		if err != nil {
			return err
		}
		return l.SetViewport(c.Index, cmdlist.Viewport{X: v[0], Y: v[1], Width: v[2], Height: v[3], MinDepth: v[4], MaxDepth: v[5]})

	case "setScissorRect":
		if len(c.Rect) != 4 {
			return debug.Errorf("Expected 4 values, got %d", len(c.Rect))
		}
		return l.SetScissorRect(c.Index, gmath.Recti32{X: c.Rect[0], Y: c.Rect[1], W: c.Rect[2], H: c.Rect[3]})

	case "setFullViewport":
		return l.SetFullViewport(c.Index)

	case "setFullScissorRect":
		return l.SetFullScissorRect(c.Index)

	case "draw":
		instances := uint32(1)
		if c.InstanceCount != nil {
			instances = *c.InstanceCount
		}
		return l.Draw(c.IndexCount, instances, c.IndexStart, c.VertexOffset, c.InstanceStart)

	case "clearColor":
		v, err := floats(c.Color, 4)
		if err != nil {
			return err
		}
		return l.ClearColorTarget(c.Index, cmdlist.ClearColor{R: v[0], G: v[1], B: v[2], A: v[3]})

	case "clearDepth":
		return l.ClearDepthTarget(c.Depth, c.Stencil)

	case "updateBuffer":
		b, err := lookup(r.buffers, "buffer", c.Buffer)
		if err != nil {
			return err
		}
		return l.UpdateBuffer(b, c.Offset, fill(c.Size))

	case "updateTexture2D", "updateTextureCube":
		t, err := lookup(r.textures, "texture", c.Texture)
		if err != nil {
			return err
		}
		size := t.Format().ImageSize(c.Width, c.Height)
		if c.Op == "updateTextureCube" {
			return l.UpdateTextureCube(t, fill(size), cmdlist.CubeFace(c.Face), c.X, c.Y, c.Width, c.Height, c.Mip)
		}
		return l.UpdateTexture2D(t, fill(size), c.X, c.Y, c.Width, c.Height, c.Mip, c.Layer)

	case "beginRegion":
		return l.BeginNamedRegion(c.Name)

	case "endRegion":
		return l.EndNamedRegion()
	}
	return debug.Errorf("Unknown op: %q", c.Op)
}

type recording struct {
	name string
	log  *trace.Log
	list cmdlist.CommandList
}

type replayResult struct {
	recordings []recording
	swapchain  []string
	released   int
}

/*
replay records every list of s on its own trace natives, one goroutine per list. Lists
share the swapchain registry and the release queue, the i-th list hands its staging
resources off at value i+1 and the queue is collected once all lists ended.
*/
func replay(s *script, b backend, config cmdlist.Config) (*replayResult, error) {
	registry := cmdlist.NewSwapchainRegistry()
	queue := cmdlist.NewReleaseQueue()
	recordings := make([]recording, len(s.Lists))

	g := errgroup.Group{}
	for i, desc := range s.Lists {
		log := trace.NewLog()
		n := newNatives(b, log)
		recordings[i] = recording{name: desc.Name, log: log}

		g.Go(func() error {
			res, err := newResources(s, n)
			if err != nil {
				return debug.ErrorWrapf(err, "List %q", desc.Name)
			}
			listConfig := config
			listConfig.Name = desc.Name
			l, err := n.newList(listConfig, registry)
			if err != nil {
				return debug.ErrorWrapf(err, "List %q", desc.Name)
			}
			recordings[i].list = l

			if err := l.Begin(); err != nil {
				return debug.ErrorWrapf(err, "List %q", desc.Name)
			}
			for j, c := range desc.Commands {
				if err := res.run(l, c); err != nil {
					return debug.ErrorWrapf(err, "List %q command %d (%s)", desc.Name, j, c.Op)
				}
			}
			if err := l.End(); err != nil {
				return debug.ErrorWrapf(err, "List %q", desc.Name)
			}
			if err := n.finish(l, queue, uint64(i+1)); err != nil {
				return debug.ErrorWrapf(err, "List %q", desc.Name)
			}
			return nil
		})
	}

	err := g.Wait()
	defer func() {
		for _, r := range recordings {
			if r.list != nil {
				r.list.Destroy()
			}
		}
	}()
	if err != nil {
		return nil, err
	}

	result := &replayResult{recordings: recordings}
	for _, l := range registry.Drain() {
		for _, r := range recordings {
			if r.list == l {
				result.swapchain = append(result.swapchain, r.name)
			}
		}
	}
	result.released = queue.Collect(uint64(len(s.Lists)))
	return result, nil
}

func (r *replayResult) print(w io.Writer) {
	for _, rec := range r.recordings {
		fmt.Fprintf(w, "# list %q\n%s", rec.name, rec.log.String())
	}
	fmt.Fprintf(w, "# swapchain lists: %q\n", r.swapchain)
	fmt.Fprintf(w, "# released %d staging resource(s)\n", r.released)
}

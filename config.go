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
	"bytes"
	"fmt"

	"goarrg.com/debug"
)

const (
	maxVertexBufferSlots = 32
	maxViewportSlots     = 16
)

type Config struct {
	// Name prefixes native debug names and log lines of lists created with this config.
	Name             string
	MaxVertexBuffers uint32
	MaxViewports     uint32
	// FlipViewport makes the explicit backend record viewports with a negative height so both
	// backends share a Y down coordinate convention.
	FlipViewport bool
}

func DefaultConfig() Config {
	return Config{
		Name:             "cmdlist",
		MaxVertexBuffers: 16,
		MaxViewports:     16,
	}
}

func (c *Config) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"Name\": %q,", c.Name))
	buff.WriteString(fmt.Sprintf("\"MaxVertexBuffers\": %d,", c.MaxVertexBuffers))
	buff.WriteString(fmt.Sprintf("\"MaxViewports\": %d,", c.MaxViewports))
	buff.WriteString(fmt.Sprintf("\"FlipViewport\": %t", c.FlipViewport))

	buff.WriteString("}")
	return buff.Bytes(), nil
}

func (c *Config) Validate() error {
	if c.MaxVertexBuffers == 0 || c.MaxVertexBuffers > maxVertexBufferSlots {
		return debug.Errorf("Config.MaxVertexBuffers must be in range [1, %d], got %d", maxVertexBufferSlots, c.MaxVertexBuffers)
	}
	if c.MaxViewports == 0 || c.MaxViewports > maxViewportSlots {
		return debug.Errorf("Config.MaxViewports must be in range [1, %d], got %d", maxViewportSlots, c.MaxViewports)
	}
	return nil
}

func (c *Config) CheckVertexBufferSlot(op string, slot uint32) error {
	if slot >= c.MaxVertexBuffers {
		return ErrorInvalidArgument{Op: op, Reason: fmt.Sprintf("vertex buffer slot %d >= MaxVertexBuffers %d", slot, c.MaxVertexBuffers)}
	}
	return nil
}

func (c *Config) CheckViewportIndex(op string, index uint32) error {
	if index >= c.MaxViewports {
		return ErrorInvalidArgument{Op: op, Reason: fmt.Sprintf("index %d >= MaxViewports %d", index, c.MaxViewports)}
	}
	return nil
}

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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goarrg.com/rhi/cmdlist"
)

func mustParse(t *testing.T, src string) *script {
	t.Helper()
	s, err := parseScript(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func TestReplayExplicit(t *testing.T) {
	result, err := replay(mustParse(t, testScript), backendExplicit, cmdlist.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, result.recordings, 2)
	mainLog, shadow := result.recordings[0].log, result.recordings[1].log
	assert.Equal(t, 2, mainLog.Count("CmdDrawIndexed"))
	assert.Equal(t, 2, mainLog.Count("CmdBindDescriptorSets"))
	assert.Equal(t, 2, mainLog.Count("CmdCopyImage"))
	assert.Equal(t, 1, mainLog.Count("CmdBeginDebugUtilsLabel"))
	assert.Equal(t, 1, shadow.Count("CmdBeginRenderPass"))
	assert.Zero(t, shadow.Count("CmdDrawIndexed"))

	assert.Equal(t, []string{"main"}, result.swapchain)
	assert.Equal(t, 2, result.released)
	assert.Equal(t, 2, mainLog.Count("DestroyImage"))

	out := bytes.Buffer{}
	result.print(&out)
	assert.Contains(t, out.String(), "# list \"main\"\n")
	assert.Contains(t, out.String(), "# list \"shadow\"\n")
	assert.Contains(t, out.String(), "# released 2 staging resource(s)\n")
}

func TestReplayImmediate(t *testing.T) {
	result, err := replay(mustParse(t, testScript), backendImmediate, cmdlist.DefaultConfig())
	require.NoError(t, err)

	mainLog := result.recordings[0].log
	assert.Equal(t, 1, mainLog.Count("DrawIndexed"))
	assert.Equal(t, 1, mainLog.Count("DrawIndexedInstanced"))
	assert.Equal(t, 3, mainLog.Count("UpdateSubresource"))
	assert.Equal(t, 1, mainLog.Count("FinishCommandList"))
	assert.Equal(t, []string{"main"}, result.swapchain)
	assert.Zero(t, result.released)
}

func TestReplayErrors(t *testing.T) {
	s := mustParse(t, `
framebuffers:
  - {name: fb, width: 4, height: 4, colorTargets: 1}
lists:
  - name: ok
    commands:
      - {op: setFramebuffer, framebuffer: fb}
  - name: broken
    commands:
      - {op: draw, indexCount: 3}
`)
	_, err := replay(s, backendExplicit, cmdlist.DefaultConfig())
	assert.ErrorIs(t, err, cmdlist.ErrorIllegalState{})

	for _, src := range []string{
		"lists: [{name: a, commands: [{op: setPipeline, pipeline: missing}]}]",
		"lists: [{name: a, commands: [{op: explode}]}]",
		"lists: [{name: a, commands: [{op: setViewport, viewport: [1, 2]}]}]",
		"lists: [{name: a, commands: [{op: setScissorRect, rect: [1]}]}]",
	} {
		_, err := replay(mustParse(t, src), backendImmediate, cmdlist.DefaultConfig())
		assert.Error(t, err, src)
	}
}

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

package cmdlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goarrg.com/debug"
	"goarrg.com/rhi/cmdlist"
)

func TestErrorsMatchByType(t *testing.T) {
	err := debug.ErrorWrapf(cmdlist.ErrorNativeCall{Call: "vkEndCommandBuffer", Code: -1, Result: "ErrorOutOfHostMemory"}, "End")
	assert.ErrorIs(t, err, cmdlist.ErrorNativeCall{})
	assert.NotErrorIs(t, err, cmdlist.ErrorIllegalState{})

	assert.ErrorIs(t, cmdlist.ErrorIllegalState{Op: "End"}, cmdlist.ErrorIllegalState{})
	assert.ErrorIs(t, cmdlist.ErrorUnsupportedOperation{Op: "UpdateTexture2D"}, cmdlist.ErrorUnsupportedOperation{})
	assert.ErrorIs(t, cmdlist.ErrorInvalidArgument{Op: "SetViewport"}, cmdlist.ErrorInvalidArgument{})
}

func TestErrorNativeCallMessage(t *testing.T) {
	assert.Equal(t, "vkEndCommandBuffer failed: ErrorOutOfHostMemory (-1)",
		cmdlist.ErrorNativeCall{Call: "vkEndCommandBuffer", Code: -1, Result: "ErrorOutOfHostMemory"}.Error())
	assert.Equal(t, "FinishCommandList failed: 0x8007000E",
		cmdlist.ErrorNativeCall{Call: "FinishCommandList", Code: int64(int32(-2147024882))}.Error())
}

func TestStateRequire(t *testing.T) {
	assert.NoError(t, cmdlist.StateRecording.Require("Draw", cmdlist.StateRecording))
	assert.ErrorIs(t, cmdlist.StateEnded.Require("Draw", cmdlist.StateRecording), cmdlist.ErrorIllegalState{})
}

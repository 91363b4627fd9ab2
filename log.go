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
	"goarrg.com"
	"goarrg.com/debug"
	"goarrg.com/rhi/cmdlist/internal/util"
)

type state struct {
	platform goarrg.PlatformInterface
	logger   *debug.Logger
}

type platform struct{}

func (platform) Abort()                           { panic("Fatal Error") }
func (platform) AbortPopup(f string, args ...any) { panic("Fatal Error") }

var instance = state{
	platform: platform{},
	logger:   debug.NewLogger("cmdlist"),
}

/*
Init sets the platform used to abort on programming errors such as use of a destroyed
command list. Without it a panic is raised.
*/
func Init(platform goarrg.PlatformInterface) {
	instance.platform = platform
	util.Init(platform)
	instance.logger.IPrintf("Initialized")
}

func SetLogLevel(l uint32) {
	instance.logger.SetLevel(l)
}

func abort(fmt string, args ...any) {
	instance.logger.EPrintf(fmt, args...)
	instance.platform.Abort()
}

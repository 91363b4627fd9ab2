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
	"slices"
	"sync"
)

/*
SwapchainRegistry collects the command lists that target swapchain images. Lists register
themselves from SetFramebuffer, the presentation service drains the registry before it
presents or recreates the swapchain. Safe for concurrent use.
*/
type SwapchainRegistry struct {
	mtx   sync.Mutex
	lists []CommandList
}

func NewSwapchainRegistry() *SwapchainRegistry {
	return &SwapchainRegistry{}
}

// Register adds l, returns false if l was already registered.
func (r *SwapchainRegistry) Register(l CommandList) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if slices.Contains(r.lists, l) {
		return false
	}
	r.lists = append(r.lists, l)
	instance.logger.VPrintf("Registered swapchain command list %p, %d registered", l, len(r.lists))
	return true
}

// Remove drops l without draining, destroyed lists call this.
func (r *SwapchainRegistry) Remove(l CommandList) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if i := slices.Index(r.lists, l); i >= 0 {
		r.lists = slices.Delete(r.lists, i, i+1)
	}
}

func (r *SwapchainRegistry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.lists)
}

// Drain returns the registered lists in registration order and empties the registry.
func (r *SwapchainRegistry) Drain() []CommandList {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	lists := r.lists
	r.lists = nil
	return lists
}

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
	"fmt"

	"golang.org/x/exp/constraints"
)

func toHex[N constraints.Unsigned](v N) string {
	return fmt.Sprintf("0x%016X", uint64(v))
}

func hasBits[N constraints.Unsigned](t, want N) bool {
	return (t & want) == want
}

func ceilDiv[N constraints.Unsigned](v, d N) N {
	return (v + d - 1) / d
}

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
)

// ErrorIllegalState is returned when an operation is not valid in the command list's current lifecycle state.
type ErrorIllegalState struct {
	Op     string
	Reason string
}

func (ErrorIllegalState) Is(target error) bool {
	_, ok := target.(ErrorIllegalState)
	return ok
}

func (e ErrorIllegalState) Error() string {
	return fmt.Sprintf("Illegal state for %s: %s", e.Op, e.Reason)
}

// ErrorUnsupportedOperation is returned for features that are recognized but not implemented by a backend.
type ErrorUnsupportedOperation struct {
	Op      string
	Feature string
}

func (ErrorUnsupportedOperation) Is(target error) bool {
	_, ok := target.(ErrorUnsupportedOperation)
	return ok
}

func (e ErrorUnsupportedOperation) Error() string {
	return fmt.Sprintf("Unsupported operation %s: %s", e.Op, e.Feature)
}

type ErrorInvalidEnumValue struct {
	Type  string
	Value int64
}

func (ErrorInvalidEnumValue) Is(target error) bool {
	_, ok := target.(ErrorInvalidEnumValue)
	return ok
}

func (e ErrorInvalidEnumValue) Error() string {
	return fmt.Sprintf("Invalid %s value: %d", e.Type, e.Value)
}

/*
ErrorNativeCall wraps a failing native call, Code is the raw result code and Result its
name if the backend knows one.
*/
type ErrorNativeCall struct {
	Call   string
	Code   int64
	Result string
}

func (ErrorNativeCall) Is(target error) bool {
	_, ok := target.(ErrorNativeCall)
	return ok
}

func (e ErrorNativeCall) Error() string {
	if e.Result != "" {
		return fmt.Sprintf("%s failed: %s (%d)", e.Call, e.Result, e.Code)
	}
	return fmt.Sprintf("%s failed: 0x%08X", e.Call, uint32(e.Code))
}

type ErrorInvalidArgument struct {
	Op     string
	Reason string
}

func (ErrorInvalidArgument) Is(target error) bool {
	_, ok := target.(ErrorInvalidArgument)
	return ok
}

func (e ErrorInvalidArgument) Error() string {
	return fmt.Sprintf("Invalid argument to %s: %s", e.Op, e.Reason)
}

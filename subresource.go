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

type CubeFace uint32

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
)

const CubeFaceCount = 6

func (f CubeFace) String() string {
	switch f {
	case CubeFacePositiveX:
		return "+X"
	case CubeFaceNegativeX:
		return "-X"
	case CubeFacePositiveY:
		return "+Y"
	case CubeFaceNegativeY:
		return "-Y"
	case CubeFacePositiveZ:
		return "+Z"
	case CubeFaceNegativeZ:
		return "-Z"
	}
	return "Invalid"
}

func (f CubeFace) Valid() bool {
	return f < CubeFaceCount
}

// ArrayLayer returns the array layer backing the face in a six layer cube image.
func (f CubeFace) ArrayLayer() (uint32, error) {
	if !f.Valid() {
		return 0, ErrorInvalidEnumValue{Type: "CubeFace", Value: int64(f)}
	}
	return uint32(f), nil
}

// Subresource returns the linear subresource index of (mip, layer), mips vary fastest.
func Subresource(mipLevel, arrayLayer, mipLevels uint32) uint32 {
	return mipLevel + arrayLayer*mipLevels
}

func CubeSubresource(face CubeFace, mipLevel, mipLevels uint32) (uint32, error) {
	layer, err := face.ArrayLayer()
	if err != nil {
		return 0, err
	}
	return Subresource(mipLevel, layer, mipLevels), nil
}

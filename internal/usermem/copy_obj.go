// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package usermem

import "unsafe"

// CopyObjFromUser copies exactly sizeof(T) bytes from userSrc into *kobj.
// T must be a plain-old-data struct: no pointers, slices, maps, interfaces,
// or anything else whose zero-copy byte reinterpretation would be unsound.
func CopyObjFromUser[T any](kobj *T, t Translator, userSrc uintptr) error {
	size := int(unsafe.Sizeof(*kobj))
	view := unsafe.Slice((*byte)(unsafe.Pointer(kobj)), size)
	return CopyFromUser(view, t, userSrc, size)
}

// CopyObjToUser copies exactly sizeof(T) bytes from *kobj to userDst.
func CopyObjToUser[T any](t Translator, userDst uintptr, kobj *T) error {
	size := int(unsafe.Sizeof(*kobj))
	view := unsafe.Slice((*byte)(unsafe.Pointer(kobj)), size)
	return CopyToUser(t, userDst, size, view)
}

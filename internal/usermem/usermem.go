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

// Package usermem copies bytes between kernel buffers and a process's
// user-space address range, tolerating a user buffer that straddles page
// boundaries. The page-table walk itself is an external collaborator
// (see Translator) — this package only sequences the scatter-gather copy.
package usermem

import "errors"

// ErrNilUserPointer is returned when a user pointer is the null address.
var ErrNilUserPointer = errors.New("usermem: user pointer is null")

// Translator resolves a user virtual address range to the physical-memory
// slices backing it, one slice per page (or partial page) the range spans.
// It is implemented by a process's memory set; this package never walks
// page tables itself.
type Translator interface {
	TranslatedByteBuffer(userAddr uintptr, length int) [][]byte
}

// CopyFromUser copies length bytes starting at userSrc into dst, which
// must have capacity for at least length bytes.
func CopyFromUser(dst []byte, t Translator, userSrc uintptr, length int) error {
	if userSrc == 0 {
		return ErrNilUserPointer
	}
	if len(dst) < length {
		panic("usermem: destination buffer shorter than requested length")
	}
	chunks := t.TranslatedByteBuffer(userSrc, length)
	kbegin := 0
	for _, phys := range chunks {
		kend := kbegin + len(phys)
		copy(dst[kbegin:kend], phys)
		kbegin = kend
	}
	return nil
}

// CopyToUser copies min(len(src), length) bytes from src to userDst.
func CopyToUser(t Translator, userDst uintptr, length int, src []byte) error {
	if userDst == 0 {
		return ErrNilUserPointer
	}
	chunks := t.TranslatedByteBuffer(userDst, length)
	kbegin := 0
	safeEnd := len(src)
	if length < safeEnd {
		safeEnd = length
	}
	for _, phys := range chunks {
		kend := kbegin + len(phys)
		if kend > safeEnd {
			kend = safeEnd
		}
		copy(phys, src[kbegin:kend])
		if kend >= safeEnd {
			break
		}
		kbegin += len(phys)
	}
	return nil
}

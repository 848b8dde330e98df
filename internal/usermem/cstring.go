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

import "bytes"

// MaxCStringLen bounds ReadCString against a runaway user pointer with no
// NUL byte anywhere reachable (a missing trap context would otherwise let
// this loop walk arbitrary memory).
const MaxCStringLen = 4096

// cstringChunk is how many bytes ReadCString translates per probe; chosen
// to cover a typical path argument in one call without translating the
// full MaxCStringLen up front.
const cstringChunk = 256

// ReadCString reads a NUL-terminated string starting at userSrc, the
// variable-length counterpart to CopyFromUser's fixed-length copy. It
// walks the user address space in cstringChunk-sized probes (tolerating a
// chunk straddling a page boundary the same way CopyFromUser does) until
// it finds a NUL byte or hits MaxCStringLen.
func ReadCString(t Translator, userSrc uintptr) (string, error) {
	if userSrc == 0 {
		return "", ErrNilUserPointer
	}
	var out []byte
	for total := 0; total < MaxCStringLen; total += cstringChunk {
		n := cstringChunk
		if total+n > MaxCStringLen {
			n = MaxCStringLen - total
		}
		for _, phys := range t.TranslatedByteBuffer(userSrc+uintptr(total), n) {
			if idx := bytes.IndexByte(phys, 0); idx >= 0 {
				out = append(out, phys[:idx]...)
				return string(out), nil
			}
			out = append(out, phys...)
		}
	}
	return string(out), nil
}

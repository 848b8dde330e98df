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

package mmap

import "errors"

var (
	ErrUnaligned     = errors.New("mmap: address not page-aligned")
	ErrInvalidPerm   = errors.New("mmap: invalid permission bitmask")
	ErrAlreadyMapped = errors.New("mmap: range already mapped")
	ErrNotMapped     = errors.New("mmap: range not fully mapped by a user area")
)

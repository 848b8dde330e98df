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

// Package kerr holds the sentinel errors every kernel component returns for
// an expected failure, so callers can distinguish them with errors.Is
// instead of string-matching.
package kerr

import "errors"

var (
	// ErrNotFound covers a missing file, directory entry, fd, or sync object.
	ErrNotFound = errors.New("kerr: not found")
	// ErrExists covers a link/create target that is already present.
	ErrExists = errors.New("kerr: already exists")
	// ErrNoSpace covers inode/data-block/fd-table exhaustion.
	ErrNoSpace = errors.New("kerr: exhausted")
	// ErrUnsafe is returned when the banker vetoes an allocation (-0xDEAD).
	ErrUnsafe = errors.New("kerr: unsafe request refused")
	// ErrDoubleFree covers unlink on a zero-refcount inode.
	ErrDoubleFree = errors.New("kerr: double free")
	// ErrInvalidArgument covers bad fd, unaligned address, null pointer, bad flags.
	ErrInvalidArgument = errors.New("kerr: invalid argument")
	// ErrConflict covers a link target that already names something else.
	ErrConflict = errors.New("kerr: conflict")
)

// DeadlockErrno is the distinguished syscall return value spec.md's source
// calls -0xDEAD: refusal because granting the request could deadlock.
const DeadlockErrno = -0xDEAD

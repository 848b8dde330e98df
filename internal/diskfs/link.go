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

package diskfs

import (
	"github.com/medihbt/rcore-gokernel/internal/kerr"
	"github.com/medihbt/rcore-gokernel/internal/logger"
)

// LinkFile creates toName as a new hard link to fromName under root. It
// rejects self-links, directory targets, a missing source, or an
// already-taken target name before touching the VFS layer.
func LinkFile(root *Inode, fromName, toName string) (*Inode, error) {
	if fromName == toName {
		logger.Warnf("diskfs: link name %q is the same as the source", toName)
		return nil, kerr.ErrInvalidArgument
	}
	from, ok := root.Find(fromName)
	if !ok {
		logger.Warnf("diskfs: link source %q not found", fromName)
		return nil, kerr.ErrNotFound
	}
	if from.IsDir() {
		logger.Warnf("diskfs: cannot link directory %q", fromName)
		return nil, kerr.ErrInvalidArgument
	}
	if _, exists := root.Find(toName); exists {
		logger.Warnf("diskfs: link name %q already exists", toName)
		return nil, kerr.ErrExists
	}
	if err := root.HardLink(from, toName); err != nil {
		return nil, err
	}
	return root.Find(toName) // freshly written, must resolve
}

// UnlinkFile removes name from root. It rejects directory targets and a
// missing name before touching the VFS layer.
func UnlinkFile(root *Inode, name string) error {
	target, ok := root.Find(name)
	if !ok {
		logger.Warnf("diskfs: unlink target %q not found", name)
		return kerr.ErrNotFound
	}
	if target.IsDir() {
		return kerr.ErrInvalidArgument
	}
	return root.HardUnlink(name)
}

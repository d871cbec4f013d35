// Copyright (c) 2026 Rick Henry
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

package mail

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rickh94/attaskcreator/internal/models"
)

// SaveAttachments writes a message's attachments to dir, one file per
// attachment, named with a YYYY-MM-DD- date prefix. The directory is
// created if absent; on permission failure (creating the directory or
// writing a file) the system temp directory is used instead. Returns
// ErrNoAttachment when the message carries none.
func SaveAttachments(msg models.Message, dir string) ([]string, error) {
	if len(msg.Attachments) == 0 {
		return nil, ErrNoAttachment
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("create attachment dir %s: %w", dir, err)
		}
		slog.Warn("cannot create attachment dir, falling back to temp dir",
			"dir", dir,
			"fallback", os.TempDir(),
		)
		dir = os.TempDir()
	}

	prefix := time.Now().Format("2006-01-02-")

	paths := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		name := prefix + filepath.Base(att.Name)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, att.Data, 0o644); err != nil {
			if !errors.Is(err, fs.ErrPermission) {
				return nil, fmt.Errorf("write attachment %s: %w", path, err)
			}
			path = filepath.Join(os.TempDir(), name)
			if err := os.WriteFile(path, att.Data, 0o644); err != nil {
				return nil, fmt.Errorf("write attachment %s: %w", path, err)
			}
		}
		paths = append(paths, path)
	}

	return paths, nil
}

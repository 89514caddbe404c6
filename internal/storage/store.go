// store.go
//
// An investment team CRM service for firms, funds, companies, notes and deals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of endowment-crm.
// endowment-crm is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// endowment-crm is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with endowment-crm.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/localnerve/endowment-crm/internal/config"
)

// ErrBlobNotFound is returned when a key has no stored object
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds attachment bodies by key. Metadata lives in the database.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// PresignURL returns a time-limited direct download URL, or "" when the store
	// can only be read through Get.
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New builds the blob store named by STORAGE_TYPE
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageType {
	case "s3":
		return NewS3Store(cfg)
	case "filesystem":
		return NewFileStore(cfg.StorageDir)
	}
	return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFileName replaces everything outside [a-zA-Z0-9._-] with an underscore.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// ObjectKey lays out an attachment key as <folder>/<owner>/<unix-millis>_<sanitized name>.
func ObjectKey(folder, ownerID string, at time.Time, fileName string) string {
	return path.Join(folder, SanitizeFileName(ownerID), fmt.Sprintf("%d_%s", at.UnixMilli(), SanitizeFileName(fileName)))
}

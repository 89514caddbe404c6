// files.go
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

package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/localnerve/endowment-crm/internal/metrics"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/gorm"
)

// DownloadURLTTL bounds presigned download links
const DownloadURLTTL = 15 * time.Minute

// FileFilter narrows attachment lists to an entity or a note
type FileFilter struct {
	Target *models.EntityRef
	NoteID string
}

// FileInput is the body of an attachment metadata create
type FileInput struct {
	FileName   string  `json:"fileName" validate:"required,max=255"`
	FilePath   string  `json:"filePath" validate:"required,max=1024"`
	FileSize   int64   `json:"fileSize" validate:"gt=0"`
	FileType   string  `json:"fileType" validate:"required,max=255"`
	EntityType *string `json:"entityType"`
	EntityID   *string `json:"entityId"`
	NoteID     *string `json:"noteId"`
}

// UploadInput describes a blob to store and record
type UploadInput struct {
	FileName string
	FileType string
	FileSize int64
	Body     io.Reader
	Target   *models.EntityRef
	NoteID   string
}

// FileDownload is either a direct URL or a body to stream, never both.
type FileDownload struct {
	File models.FileAttachment
	URL  string
	Body io.ReadCloser
}

// ListFiles returns attachments newest first
func ListFiles(ctx context.Context, db *gorm.DB, filter FileFilter) ([]models.FileAttachment, error) {
	q := db.WithContext(ctx)
	if filter.Target != nil {
		q = q.Where("entity_type = ? AND entity_id = ?", filter.Target.Type, filter.Target.ID)
	}
	if filter.NoteID != "" {
		q = q.Where("note_id = ?", filter.NoteID)
	}

	files := []models.FileAttachment{}
	if err := q.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, translateError("listFiles", "file", "", err)
	}
	return files, nil
}

// GetFile returns attachment metadata by id
func GetFile(ctx context.Context, db *gorm.DB, id string) (*models.FileAttachment, error) {
	var file models.FileAttachment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, translateError("getFile", "file", id, err)
	}
	return &file, nil
}

// CreateFile records metadata for a blob that is already stored
func CreateFile(ctx context.Context, db *gorm.DB, id *Identity, input FileInput) (*models.FileAttachment, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	input.FileName = strings.TrimSpace(input.FileName)
	input.FilePath = strings.TrimSpace(input.FilePath)
	input.FileType = strings.TrimSpace(input.FileType)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	var target *models.EntityRef
	entityType, entityID := trimmed(input.EntityType), trimmed(input.EntityID)
	if entityType != nil || entityID != nil {
		if entityType == nil || entityID == nil {
			return nil, types.NewValidationError("entityType", "entityType and entityId must be given together")
		}
		ref, err := models.ParseEntityRef(*entityType, *entityID)
		if err != nil {
			return nil, types.NewValidationError("entityType", "%v", err)
		}
		target = &ref
	}

	noteID := ""
	if n := trimmed(input.NoteID); n != nil {
		noteID = *n
	}

	file := models.FileAttachment{
		FileName:   input.FileName,
		FilePath:   input.FilePath,
		FileSize:   input.FileSize,
		FileType:   input.FileType,
		UploadedBy: id.UserID,
	}
	if err := recordFile(ctx, db, &file, target, noteID); err != nil {
		return nil, err
	}
	return &file, nil
}

func recordFile(ctx context.Context, db *gorm.DB, file *models.FileAttachment, target *models.EntityRef, noteID string) error {
	if target != nil {
		if err := RequireEntity(ctx, db, *target); err != nil {
			return err
		}
		file.SetRef(*target)
	}
	if noteID != "" {
		if err := requireNote(ctx, db, noteID); err != nil {
			return err
		}
		file.NoteID = &noteID
	}

	if err := db.WithContext(ctx).Create(file).Error; err != nil {
		return translateError("createFile", "file", "", err)
	}

	metrics.RecordsCreated.WithLabelValues("file").Inc()
	return nil
}

// UploadFile stores the body under <entityType|notes>/<owner id>/<millis>_<name> and
// records its metadata. The blob is removed again if the row cannot be written.
func UploadFile(ctx context.Context, db *gorm.DB, blobs storage.BlobStore, id *Identity, input UploadInput) (*models.FileAttachment, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, types.NewValidationError("file", "is required")
	}
	if input.FileSize <= 0 {
		return nil, types.NewValidationError("file", "must not be empty")
	}

	var folder, owner string
	switch {
	case input.Target != nil:
		if err := input.Target.Validate(); err != nil {
			return nil, types.NewValidationError("entityType", "%v", err)
		}
		folder, owner = string(input.Target.Type), input.Target.ID
	case input.NoteID != "":
		folder, owner = "notes", input.NoteID
	default:
		return nil, types.NewValidationError("entityType", "an entity or a note is required")
	}

	if input.FileType == "" {
		input.FileType = "application/octet-stream"
	}
	key := storage.ObjectKey(folder, owner, time.Now(), input.FileName)

	file := models.FileAttachment{
		FileName:   input.FileName,
		FilePath:   key,
		FileSize:   input.FileSize,
		FileType:   input.FileType,
		UploadedBy: id.UserID,
	}

	// Check targets before writing the blob.
	if input.Target != nil {
		if err := RequireEntity(ctx, db, *input.Target); err != nil {
			return nil, err
		}
	}
	if input.NoteID != "" {
		if err := requireNote(ctx, db, input.NoteID); err != nil {
			return nil, err
		}
	}

	if err := blobs.Put(ctx, key, input.Body, input.FileSize, input.FileType); err != nil {
		return nil, &types.StorageError{Op: "upload", Err: err}
	}
	metrics.BlobBytes.Add(float64(input.FileSize))

	if err := recordFile(ctx, db, &file, input.Target, input.NoteID); err != nil {
		removeBlobs(ctx, blobs, []string{key})
		return nil, err
	}
	return &file, nil
}

// DownloadFile returns a presigned URL when the store supports one, else an open body.
func DownloadFile(ctx context.Context, db *gorm.DB, blobs storage.BlobStore, id string) (*FileDownload, error) {
	file, err := GetFile(ctx, db, id)
	if err != nil {
		return nil, err
	}

	url, err := blobs.PresignURL(ctx, file.FilePath, DownloadURLTTL)
	if err != nil {
		return nil, &types.StorageError{Op: "presign", Err: err}
	}
	if url != "" {
		return &FileDownload{File: *file, URL: url}, nil
	}

	body, err := blobs.Get(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, &types.NotFoundError{Entity: "file content", ID: id}
		}
		return nil, &types.StorageError{Op: "download", Err: err}
	}
	return &FileDownload{File: *file, Body: body}, nil
}

// DeleteFile removes the metadata row, then the blob. Blob failures are logged only.
func DeleteFile(ctx context.Context, db *gorm.DB, blobs storage.BlobStore, id string) error {
	file, err := GetFile(ctx, db, id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.FileAttachment{}).Error; err != nil {
		return translateError("deleteFile", "file", id, err)
	}

	metrics.RecordsDeleted.WithLabelValues("file").Inc()
	removeBlobs(ctx, blobs, []string{file.FilePath})
	return nil
}
